package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatJSON, Level: slog.LevelInfo})
	log.Info("book added", "id", 7)

	assert.Contains(t, buf.String(), `"msg":"book added"`)
	assert.Contains(t, buf.String(), `"id":7`)
}

func TestNew_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatText, Level: slog.LevelWarn})
	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelWarn},
		{"nonsense", slog.LevelWarn},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestNew_AddSourceShortensPath(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: FormatText, Level: slog.LevelDebug, AddSource: true})
	log.Debug("traced")

	assert.Contains(t, buf.String(), "source=logger_test.go:")
}
