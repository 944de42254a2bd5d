package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/assert"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}

	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewWriter_FileOutputUsesRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	w := newWriter(Options{Output: path, MaxSizeMB: 5, MaxBackups: 2, MaxAgeDays: 3})

	rotator, ok := w.(*lumberjack.Logger)
	if assert.True(t, ok) {
		assert.Equal(t, path, rotator.Filename)
		assert.Equal(t, 5, rotator.MaxSize)
		assert.Equal(t, 2, rotator.MaxBackups)
	}
}

func TestWith_ReturnsIndependentLogger(t *testing.T) {
	base := NewNoop()
	child := base.With("request_id", "abc")

	assert.NotSame(t, base, child)
	child.Info("message", map[string]interface{}{"k": "v"})
}

func TestAddFields_TypedValues(t *testing.T) {
	var buf bytes.Buffer
	l := &zerologLogger{logger: zerolog.New(&buf)}
	id := uuid.MustParse("6f1c2a9e-3b4d-4e5f-8a7b-1c2d3e4f5a6b")

	l.Error("failed", map[string]interface{}{
		"error":    errors.New("boom"),
		"record":   id,
		"duration": 1500 * time.Millisecond,
		"count":    3,
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "failed", entry["message"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, id.String(), entry["record"])
	assert.Equal(t, float64(1500), entry["duration"])
	assert.Equal(t, float64(3), entry["count"])
}
