//go:build !ios && !android && (amd64 || arm64)

package vidreader

import (
	"fmt"

	"github.com/obinnaokechukwu/vidreader/engine"
	"github.com/obinnaokechukwu/vidreader/internal/ffmpeg"
)

// NewEngine loads the FFmpeg shared libraries and returns the engine Open
// uses by default.
func NewEngine() (engine.Engine, error) {
	e, err := defaultEngine()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	return e, nil
}

func defaultEngine() (engine.Engine, error) {
	e, err := ffmpeg.New()
	if err != nil {
		return nil, err
	}
	return e, nil
}

func setEngineLogLevel(l LogLevel) error {
	return ffmpeg.SetLogLevel(int32(l))
}

// EngineVersions reports the FFmpeg library versions in use.
func EngineVersions() (map[string]string, error) {
	v, err := ffmpeg.Versions()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
	}
	return v, nil
}
