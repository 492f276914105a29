package vidreader

import (
	"fmt"
	"log/slog"

	"github.com/obinnaokechukwu/vidreader/engine"
)

// Defaults for Options.
const (
	DefaultFallbackFPS     = 25.0
	DefaultEndOffsetFrames = 1
	DefaultScaleAlgorithm  = engine.ScaleBilinear
)

// Options configures a Reader.
type Options struct {
	// Engine performs demuxing, decoding and conversion. Nil selects the
	// FFmpeg engine.
	Engine engine.Engine

	// Logger receives session events. Nil uses slog.Default().
	Logger *slog.Logger

	// FallbackFPS is used for frame arithmetic when the video stream
	// reports no average frame rate.
	FallbackFPS float64

	// EndOffsetFrames is how many frames before the end StopEnd seeks to.
	EndOffsetFrames int

	// ScaleAlgorithm is the interpolation used for RGB conversion.
	ScaleAlgorithm engine.ScaleAlgorithm

	// Audio enables decoding of the best audio stream.
	Audio bool

	// EngineLogLevel, when set, is applied to the engine's global logger.
	EngineLogLevel *LogLevel
}

// DefaultOptions returns the options Open starts from.
func DefaultOptions() Options {
	return Options{
		FallbackFPS:     DefaultFallbackFPS,
		EndOffsetFrames: DefaultEndOffsetFrames,
		ScaleAlgorithm:  DefaultScaleAlgorithm,
		Audio:           true,
	}
}

func (o *Options) validate() error {
	if o.FallbackFPS <= 0 {
		return fmt.Errorf("vidreader: fallback fps must be positive, got %v", o.FallbackFPS)
	}
	if o.EndOffsetFrames < 0 {
		return fmt.Errorf("vidreader: end offset must not be negative, got %d", o.EndOffsetFrames)
	}
	return nil
}

// Option is a functional option for Open.
type Option func(*Options)

// WithOptions replaces all options at once, e.g. with values loaded from
// a configuration file.
func WithOptions(opts Options) Option {
	return func(o *Options) {
		*o = opts
	}
}

// WithEngine sets the media engine.
func WithEngine(e engine.Engine) Option {
	return func(o *Options) {
		o.Engine = e
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithFallbackFPS sets the frame rate assumed when the stream has none.
func WithFallbackFPS(fps float64) Option {
	return func(o *Options) {
		o.FallbackFPS = fps
	}
}

// WithEndOffsetFrames sets how many frames before the end StopEnd lands.
func WithEndOffsetFrames(n int) Option {
	return func(o *Options) {
		o.EndOffsetFrames = n
	}
}

// WithScaleAlgorithm sets the RGB conversion interpolation.
func WithScaleAlgorithm(alg engine.ScaleAlgorithm) Option {
	return func(o *Options) {
		o.ScaleAlgorithm = alg
	}
}

// WithAudio enables or disables audio decoding.
func WithAudio(enabled bool) Option {
	return func(o *Options) {
		o.Audio = enabled
	}
}

// WithoutAudio opens a video-only session.
func WithoutAudio() Option {
	return WithAudio(false)
}

// WithEngineLogLevel sets the engine's global log verbosity on open.
func WithEngineLogLevel(l LogLevel) Option {
	return func(o *Options) {
		o.EngineLogLevel = &l
	}
}
