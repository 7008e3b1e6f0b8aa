package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Debug, ParseLevel("DEBUG"))
	assert.Equal(t, Info, ParseLevel(""))
	assert.Equal(t, Warn, ParseLevel("warning"))
	assert.Equal(t, Error, ParseLevel(" error "))
	assert.Equal(t, Info, ParseLevel("verbose"))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("console"))
}

func TestZapLogger_WithAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).With(map[string]any{"app": "mbs"})

	l.Warn("appointment has no status history", map[string]any{
		"appointment_id": "a-1",
		"":               "ignored",
		"err":            errors.New("boom"),
	})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		e := entries[0]
		assert.Equal(t, zapcore.WarnLevel, e.Level)
		ctx := e.ContextMap()
		assert.Equal(t, "mbs", ctx["app"])
		assert.Equal(t, "a-1", ctx["appointment_id"])
		assert.Equal(t, "boom", ctx["err"])
		_, hasEmpty := ctx[""]
		assert.False(t, hasEmpty)
	}
}

func TestNew_JSONAndText(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatText} {
		l, err := New(Options{Level: Info, Format: f, App: "test"})
		assert.NoError(t, err)
		assert.NotNil(t, l)
	}
}
