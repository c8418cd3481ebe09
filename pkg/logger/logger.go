// Package logger defines the leveled logging contract used by the
// command layer and provides a logrus-backed constructor.
package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the minimal logging interface consumed by commands and
// pipelines. *logrus.Logger satisfies it directly.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// New returns a logrus logger configured for terminal output at the
// given level. Unknown level names fall back to info.
func New(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
