package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/segyhp/loan-console/internal/config"
)

// New builds the application logger from LOG_LEVEL and LOG_FORMAT.
// An unknown level falls back to info.
func New(cfg config.LoggingConfig) *logrus.Logger {
	return newWithOutput(cfg, os.Stdout)
}

func newWithOutput(cfg config.LoggingConfig, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	if strings.EqualFold(cfg.Format, "text") {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	return log
}

// Discard returns a logger that drops everything, for tests
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
