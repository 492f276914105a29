package vidreader

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"quiet":   LogQuiet,
		"Error":   LogError,
		" warn ":  LogWarning,
		"warning": LogWarning,
		"debug":   LogDebug,
		"32":      LogInfo,
		"-8":      LogQuiet,
	}
	for in, want := range tests {
		got, err := ParseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLogLevel("loud")
	assert.Error(t, err)
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "quiet", LogQuiet.String())
	assert.Equal(t, "error", LogError.String())
	assert.Equal(t, "info", LogInfo.String())
	assert.Equal(t, "info", LogLevel(30).String())
	assert.Equal(t, "trace", LogTrace.String())
}

func TestParseSlogLevel(t *testing.T) {
	l, err := ParseSlogLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, l)

	l, err = ParseSlogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)

	_, err = ParseSlogLevel("trace")
	assert.Error(t, err)
}
