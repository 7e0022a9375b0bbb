package fare

import "strings"

type routeInfo struct {
	DistanceKm  float64
	DurationMin int
}

// routeTable holds distance and duration for the city pairs the service
// operates on. Both directions of every pair are populated.
var routeTable = map[string]routeInfo{}

func init() {
	pairs := []struct {
		a, b     string
		km       float64
		duration int
	}{
		{"raipur", "bilaspur", 120, 150},
		{"raipur", "durg", 40, 60},
		{"raipur", "bhilai", 30, 45},
		{"raipur", "rajnandgaon", 70, 95},
		{"raipur", "dhamtari", 65, 90},
		{"raipur", "mahasamund", 55, 80},
		{"raipur", "korba", 200, 240},
		{"raipur", "raigarh", 250, 300},
		{"raipur", "jagdalpur", 290, 360},
		{"raipur", "ambikapur", 300, 370},
		{"bilaspur", "korba", 85, 110},
		{"bilaspur", "raigarh", 135, 170},
		{"bilaspur", "ambikapur", 185, 235},
		{"bilaspur", "durg", 150, 185},
		{"durg", "bhilai", 12, 20},
		{"durg", "rajnandgaon", 32, 45},
	}
	for _, p := range pairs {
		routeTable[routeKey(p.a, p.b)] = routeInfo{DistanceKm: p.km, DurationMin: p.duration}
		routeTable[routeKey(p.b, p.a)] = routeInfo{DistanceKm: p.km, DurationMin: p.duration}
	}
}

func routeKey(origin, destination string) string {
	return normalizePlace(origin) + "|" + normalizePlace(destination)
}

func normalizePlace(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
