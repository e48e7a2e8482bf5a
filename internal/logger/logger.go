package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Init configures the global logrus logger. JSON output in release mode,
// human-readable text otherwise. LOG_LEVEL overrides the default info level.
func Init() {
	if os.Getenv("GIN_MODE") == "release" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	logrus.SetOutput(os.Stdout)
}
