// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup applies level and format to the standard logrus logger and returns it.
// Unknown levels fall back to info; format "json" selects the JSON formatter.
func Setup(level, format string, out io.Writer) *logrus.Logger {
	logger := logrus.StandardLogger()
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// Component returns an entry tagged with the component name.
func Component(name string) *logrus.Entry {
	return logrus.WithField("component", name)
}
