package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// SetupLogger configures the global logrus logger for JSON output at the given level.
func SetupLogger(logLevel string) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(level)
}
