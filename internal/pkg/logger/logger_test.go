package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Levels(t *testing.T) {
	cases := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, c := range cases {
		t.Run(c.level, func(t *testing.T) {
			log, err := NewLogger(c.level, "json", "timesheet-engine")
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(c.want))
			if c.want > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(c.want-1))
			}
		})
	}
}

func TestNewLogger_Console(t *testing.T) {
	log, err := NewLogger("debug", "console", "")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
