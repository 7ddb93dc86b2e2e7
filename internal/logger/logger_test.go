package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_FormatFromEnvironment(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Writer: &buf, Environment: tt.environment, Level: slog.LevelInfo})
			log.Info("hello", "user_id", "user-1")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"hello"`)
				assert.Contains(t, buf.String(), `"user_id":"user-1"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.Contains(t, buf.String(), "user_id=user-1")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).
		With("service", "shelf").
		WithGroup("req").
		With("id", "r1")

	log.Warn("slow", "took", 1500*time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "service=shelf")
	assert.Contains(t, out, "req.id=r1")
	assert.Contains(t, out, "req.took=1.5s")
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json"})

	log.WithError(errors.New("boom")).WithField("op", "login").Error("failed")

	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.Contains(t, buf.String(), `"op":"login"`)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Info("dropped") })
}
