package logger

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colortrawl/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{name: "info level", cfg: &config.LoggingConfig{Level: "info"}},
		{name: "debug level without color", cfg: &config.LoggingConfig{Level: "debug", NoColor: true}},
		{name: "invalid level", cfg: &config.LoggingConfig{Level: "invalid"}, wantErr: true},
		{name: "file output", cfg: &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "trawl.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func newBufferLogger(buf *bytes.Buffer) *zerologLogger {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	zlog := zerolog.New(buf).Level(zerolog.DebugLevel)
	return &zerologLogger{logger: &zlog, fields: map[string]interface{}{}}
}

func TestWithFieldsDoesNotLeak(t *testing.T) {
	var buf bytes.Buffer
	base := newBufferLogger(&buf)

	scoped := base.WithFields(map[string]interface{}{
		"page":  3,
		"ok":    true,
		"after": 250 * time.Millisecond,
	})
	scoped.Info("scoped message")

	out := buf.String()
	assert.Contains(t, out, "scoped message")
	assert.Contains(t, out, `"page":3`)
	assert.Contains(t, out, `"ok":true`)

	buf.Reset()
	base.Info("base message")
	assert.NotContains(t, buf.String(), `"page"`)
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.WithError(errors.New("boom")).Error("failed")
	assert.True(t, strings.Contains(buf.String(), `"error":"boom"`))

	assert.Same(t, l, l.WithError(nil))
}

func TestLogRequestLevels(t *testing.T) {
	tl := NewTestLogger()

	LogRequest(tl, "GET", "http://x", 200, time.Millisecond)
	LogRequest(tl, "GET", "http://x", 429, time.Millisecond)
	LogRequest(tl, "GET", "http://x", 503, time.Millisecond)

	msgs := tl.GetMessages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "DEBUG", msgs[0].Level)
	assert.Equal(t, "WARN", msgs[1].Level)
	assert.Equal(t, "ERROR", msgs[2].Level)
}

func TestTestLoggerCapturesScope(t *testing.T) {
	tl := NewTestLogger()

	tl.WithField("run_id", "abc").WithError(errors.New("nope")).WarnWithFields("scoped", map[string]interface{}{"page": 2})

	require.True(t, tl.HasMessage("scoped"))
	msg := tl.GetMessagesByLevel("WARN")[0]
	assert.Equal(t, "abc", msg.Fields["run_id"])
	assert.Equal(t, 2, msg.Fields["page"])
	assert.EqualError(t, msg.Error, "nope")
	assert.Contains(t, tl.String(), "error=nope")

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
	assert.False(t, tl.HasError())
}
