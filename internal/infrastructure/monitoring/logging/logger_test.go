package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// newTestLogger creates a logger that writes JSON entries to a buffer.
func newTestLogger(t *testing.T) (Logger, *zaptest.Buffer) {
	t.Helper()
	buf := &zaptest.Buffer{}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)
	core := zapcore.NewCore(encoder, buf, zapcore.DebugLevel)
	z := zap.New(core)
	return &zapLogger{z: z}, buf
}

func TestNewLogger_JSONFormat(t *testing.T) {
	cfg := LogConfig{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stdout"},
	}
	l, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	cfg := LogConfig{
		Level:       "debug",
		Format:      "console",
		OutputPaths: []string{"stdout"},
	}
	l, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_DefaultsApplied(t *testing.T) {
	l, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewNopLogger_NotNil(t *testing.T) {
	l := NewNopLogger()
	assert.NotNil(t, l)
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	// Should not panic.
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
}

func TestNopLogger_With_ReturnsSelf(t *testing.T) {
	l := NewNopLogger()
	assert.Equal(t, l, l.With(String("k", "v")))
	assert.Equal(t, l, l.Named("sub"))
}

func TestZapLogger_LevelsWriteLog(t *testing.T) {
	cases := []struct {
		level string
		log   func(Logger)
	}{
		{"debug", func(l Logger) { l.Debug("debug msg") }},
		{"info", func(l Logger) { l.Info("info msg") }},
		{"warn", func(l Logger) { l.Warn("warn msg") }},
		{"error", func(l Logger) { l.Error("error msg") }},
	}
	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			l, buf := newTestLogger(t)
			tc.log(l)
			assert.Contains(t, buf.String(), tc.level+" msg")
			assert.Contains(t, buf.String(), "\"level\":\""+tc.level+"\"")
		})
	}
}

func TestZapLogger_With_AddsFields(t *testing.T) {
	l, buf := newTestLogger(t)
	l.With(String("provider", "ols")).Info("msg")
	assert.Contains(t, buf.String(), "\"provider\":\"ols\"")
}

func TestZapLogger_Named_PrefixesEntries(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Named("annotator").Info("msg")
	assert.Contains(t, buf.String(), "\"logger\":\"annotator\"")
}

func TestZapLogger_TypedFields(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Info("msg",
		String("term", "aspirin"),
		Int("matches", 3),
		Int64("elapsed_ns", 42),
		Float64("confidence", 0.98),
		Bool("fallback", true),
		Duration("took", 5*time.Millisecond),
	)
	out := buf.String()
	assert.Contains(t, out, "\"term\":\"aspirin\"")
	assert.Contains(t, out, "\"matches\":3")
	assert.Contains(t, out, "\"confidence\":0.98")
	assert.Contains(t, out, "\"fallback\":true")
}

func TestErr_FieldCapturesError(t *testing.T) {
	l, buf := newTestLogger(t)
	l.Error("msg", Err(errors.New("boom")))
	assert.Contains(t, buf.String(), "\"error\":\"boom\"")
}

func TestErr_NilError(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("unknown"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestSetDefault_UpdatesDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	l := NewNopLogger()
	SetDefault(l)
	assert.Equal(t, l, Default())
}

func TestSetDefault_IgnoresNil(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	SetDefault(nil)
	assert.NotNil(t, Default())
}
