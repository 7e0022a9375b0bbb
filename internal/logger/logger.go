package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the service-wide structured logger.
// Production logs JSON for log aggregation; development logs human-readable text.
func New(environment string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if environment == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
		log.SetLevel(logrus.InfoLevel)
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}
