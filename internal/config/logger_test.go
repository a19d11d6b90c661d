package config

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{name: "Debug", level: "debug", expected: zerolog.DebugLevel},
		{name: "Info", level: "info", expected: zerolog.InfoLevel},
		{name: "Warn", level: "warn", expected: zerolog.WarnLevel},
		{name: "Error", level: "error", expected: zerolog.ErrorLevel},
		{name: "Unknown falls back to info", level: "verbose", expected: zerolog.InfoLevel},
		{name: "Empty falls back to info", level: "", expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(LoggerConfig{Level: tt.level, Format: "json"})
			assert.Equal(t, tt.expected, logger.GetLevel())
		})
	}
}

func TestNewLogger_StampsServiceField(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(LoggerConfig{Level: "info", Format: "json"}, &buf)

	logger.Info().Msg("snapshot replaced")

	assert.Contains(t, buf.String(), `"service":"pizza-desk"`)
	assert.Contains(t, buf.String(), `"snapshot replaced"`)
}

func TestNewLogger_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(LoggerConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info().Msg("dropped")
	logger.Warn().Msg("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
