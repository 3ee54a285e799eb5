package config

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

var logLevels = map[string]xlog.LogLevel{
	"DEBUG":   xlog.DEBUG,
	"INFO":    xlog.INFO,
	"WARNING": xlog.WARNING,
	"WARN":    xlog.WARNING,
	"ERROR":   xlog.ERROR,
}

// ParseLogLevel returns the log level by its name, case-insensitive.
func ParseLogLevel(name string) (xlog.LogLevel, error) {
	l, ok := logLevels[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return l, errors.Errorf("unsupported log level: %s", name)
	}
	return l, nil
}

// SetupLogging sends the logs to w at the level.
func SetupLogging(w io.Writer, level string) error {
	l, err := ParseLogLevel(level)
	if err != nil {
		return err
	}
	xlog.SetFormatter(xlog.NewStringFormatter(w))
	xlog.SetGlobalLogLevel(l)
	return nil
}
