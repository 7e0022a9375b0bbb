package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HealthStatus is supplied by main with live dependency probes.
type HealthStatus struct {
	StorageType string
	RedisOK     func() bool
	DatabaseOK  func() bool
}

// Health returns a monitoring endpoint handler.
func Health(status HealthStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		healthy := true
		deps := fiber.Map{"storage": status.StorageType}

		if status.DatabaseOK != nil {
			ok := status.DatabaseOK()
			deps["database"] = ok
			healthy = healthy && ok
		}
		if status.RedisOK != nil {
			ok := status.RedisOK()
			deps["redis"] = ok
			healthy = healthy && ok
		}

		code := fiber.StatusOK
		state := "healthy"
		if !healthy {
			code = fiber.StatusServiceUnavailable
			state = "unhealthy"
		}

		return c.Status(code).JSON(fiber.Map{
			"status":   state,
			"services": deps,
		})
	}
}
