//go:build ios || android || !(amd64 || arm64)

package vidreader

import (
	"errors"
	"fmt"

	"github.com/obinnaokechukwu/vidreader/engine"
)

var errUnsupportedPlatform = errors.New("vidreader: FFmpeg engine requires a 64-bit desktop platform")

// NewEngine reports ErrEngineUnavailable: the FFmpeg engine needs a 64-bit
// desktop platform. Pass an engine with WithEngine instead.
func NewEngine() (engine.Engine, error) {
	return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, errUnsupportedPlatform)
}

func defaultEngine() (engine.Engine, error) {
	return nil, errUnsupportedPlatform
}

func setEngineLogLevel(LogLevel) error {
	return ErrEngineUnavailable
}

// EngineVersions reports ErrEngineUnavailable.
func EngineVersions() (map[string]string, error) {
	return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, errUnsupportedPlatform)
}
