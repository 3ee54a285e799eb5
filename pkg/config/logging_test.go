package config_test

import (
	"bytes"
	"testing"

	"github.com/effective-security/mcpvolume/pkg/config"
	"github.com/effective-security/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tcases := map[string]xlog.LogLevel{
		"debug":    xlog.DEBUG,
		"INFO":     xlog.INFO,
		" warning": xlog.WARNING,
		"warn":     xlog.WARNING,
		"Error":    xlog.ERROR,
	}
	for name, exp := range tcases {
		l, err := config.ParseLogLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, exp, l, name)
	}

	_, err := config.ParseLogLevel("loud")
	assert.EqualError(t, err, "unsupported log level: loud")
}

func TestSetupLogging(t *testing.T) {
	var buf bytes.Buffer
	defer xlog.SetGlobalLogLevel(xlog.INFO)

	require.Error(t, config.SetupLogging(&buf, "loud"))
	require.NoError(t, config.SetupLogging(&buf, "debug"))

	logger := xlog.NewPackageLogger("github.com/effective-security/mcpvolume", "config_test")
	logger.KV(xlog.DEBUG, "status", "logged")
	assert.Contains(t, buf.String(), "logged")
}
