// Package vidreader is a sequential, pull-based reader over a media file.
// It yields decoded video frames as packed RGB24 and decoded audio as
// interleaved signed 16-bit stereo PCM, and supports time-based seeking.
//
// A Reader is not safe for concurrent use. The video and audio paths share
// one demux cursor: reading video discards audio packets and the other way
// round.
//
//	r, err := vidreader.Open("input.mp4")
//	if err != nil {
//		return err
//	}
//	defer r.Close()
//
//	for {
//		ok, err := r.ReadFrame()
//		if err != nil || !ok {
//			break
//		}
//		render(r.RGB(), r.Width(), r.Height())
//	}
package vidreader

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/obinnaokechukwu/vidreader/engine"
)

// Reader is an open media session. It owns the container, the decoders,
// the conversion contexts and the output buffers.
type Reader struct {
	opts Options
	eng  engine.Engine
	log  *slog.Logger
	path string

	container engine.Container
	video     *track
	audio     *track

	scaler    engine.Scaler
	resampler engine.Resampler
	outAudio  engine.AudioFormat

	rgb    []byte
	stride int
	width  int
	height int
	pcm    pcmBuffer

	// haveFrame is set once the RGB buffer holds a decoded frame.
	haveFrame bool

	// Last decoded video timestamp, or the target of the last seek.
	pts      int64
	audioPTS int64
	audioErr error
	closed   bool
}

// Open opens path and prepares video and, if present, audio decoding.
// On failure it returns a nil Reader and every partially acquired
// resource has been released.
func Open(path string, options ...Option) (*Reader, error) {
	opts := DefaultOptions()
	for _, opt := range options {
		opt(&opts)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	eng := opts.Engine
	if eng == nil {
		var err error
		if eng, err = defaultEngine(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "vidreader", "path", path)

	if opts.EngineLogLevel != nil {
		if err := setEngineLogLevel(*opts.EngineLogLevel); err != nil {
			logger.Warn("cannot set engine log level", "level", opts.EngineLogLevel.String(), "err", err)
		}
	}

	r := &Reader{
		opts:     opts,
		eng:      eng,
		log:      logger,
		path:     path,
		pts:      engine.NoPTS,
		audioPTS: engine.NoPTS,
	}
	if err := r.open(); err != nil {
		if relErr := r.release(); relErr != nil {
			logger.Warn("release after failed open", "err", relErr)
		}
		return nil, err
	}

	attrs := []any{
		"width", r.width, "height", r.height,
		"fps", r.FPS(), "time_base", r.video.info.TimeBase.String(),
		"codec", r.video.info.CodecName,
	}
	if r.audio != nil {
		attrs = append(attrs, "audio_codec", r.audio.info.CodecName, "sample_rate", r.outAudio.SampleRate)
	}
	logger.Debug("opened", attrs...)
	return r, nil
}

func (r *Reader) open() error {
	c, err := r.eng.OpenInput(r.path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOpen, r.path, err)
	}
	r.container = c

	if err := c.FindStreamInfo(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrProbe, r.path, err)
	}
	if err := r.selectStreams(); err != nil {
		return err
	}
	if err := r.setupVideo(); err != nil {
		return err
	}
	if r.audio != nil {
		if err := r.setupAudio(); err != nil {
			r.disableAudio(err)
		}
	}
	return nil
}

// release frees everything the session owns: conversion contexts, then
// buffers, then decoders, then the container. Each field is cleared as it
// is released, so release is safe after a partial open.
func (r *Reader) release() error {
	var errs []error
	if r.resampler != nil {
		errs = append(errs, r.resampler.Close())
		r.resampler = nil
	}
	if r.scaler != nil {
		errs = append(errs, r.scaler.Close())
		r.scaler = nil
	}
	if r.rgb != nil {
		r.eng.Free(r.rgb)
		r.rgb = nil
	}
	r.pcm.free(r.eng)
	if r.audio != nil {
		errs = append(errs, r.audio.close())
		r.audio = nil
	}
	if r.video != nil {
		errs = append(errs, r.video.close())
		r.video = nil
	}
	if r.container != nil {
		errs = append(errs, r.container.Close())
		r.container = nil
	}
	return errors.Join(errs...)
}

// Close releases every resource. Calling Close again is a no-op; any
// other call on a closed Reader reports ErrInvalidSession or a zero value.
func (r *Reader) Close() error {
	if r == nil || r.closed {
		return nil
	}
	r.closed = true
	err := r.release()
	r.log.Debug("closed")
	return err
}

func (r *Reader) valid() bool {
	return r != nil && !r.closed
}

// Path returns the path the Reader was opened with.
func (r *Reader) Path() string {
	if r == nil {
		return ""
	}
	return r.path
}

// Width returns the frame width in pixels.
func (r *Reader) Width() int {
	if !r.valid() {
		return 0
	}
	return r.width
}

// Height returns the frame height in pixels.
func (r *Reader) Height() int {
	if !r.valid() {
		return 0
	}
	return r.height
}

// Stride returns the length of one RGB row in bytes.
func (r *Reader) Stride() int {
	if !r.valid() {
		return 0
	}
	return r.stride
}

// RGB returns the frame buffer, width*height*3 bytes of packed RGB24. The
// slice is the same for the whole session and is overwritten by every
// successful ReadFrame; copy it to keep a frame.
func (r *Reader) RGB() []byte {
	if !r.valid() {
		return nil
	}
	return r.rgb
}

// CopyRGB copies the current frame into dst and returns the number of
// bytes copied.
func (r *Reader) CopyRGB(dst []byte) int {
	return copy(dst, r.RGB())
}

// Audio returns the PCM produced by the last ReadAudio: interleaved
// signed 16-bit little-endian stereo. It is valid until the next
// ReadAudio and empty when the session has no audio.
func (r *Reader) Audio() []byte {
	if !r.valid() {
		return nil
	}
	return r.pcm.bytes()
}

// AudioSize returns len(Audio()).
func (r *Reader) AudioSize() int {
	return len(r.Audio())
}

// AudioSamples returns the number of stereo samples in Audio().
func (r *Reader) AudioSamples() int {
	if !r.HasAudio() {
		return 0
	}
	if n := r.outAudio.FrameBytes(1); n > 0 {
		return r.AudioSize() / n
	}
	return 0
}

// PCMAllocations returns how many times the PCM buffer was allocated.
func (r *Reader) PCMAllocations() int {
	if r == nil {
		return 0
	}
	return r.pcm.allocs
}

// HasAudio reports whether the session decodes audio.
func (r *Reader) HasAudio() bool {
	return r.valid() && r.audio != nil
}

// AudioErr returns why audio was disabled at open, wrapping
// ErrDegradedAudio, or nil.
func (r *Reader) AudioErr() error {
	if r == nil {
		return nil
	}
	return r.audioErr
}

// SampleRate returns the PCM sample rate, or 0 without audio.
func (r *Reader) SampleRate() int {
	if !r.HasAudio() {
		return 0
	}
	return r.outAudio.SampleRate
}

// Channels returns the PCM channel count (2), or 0 without audio.
func (r *Reader) Channels() int {
	if !r.HasAudio() {
		return 0
	}
	return r.outAudio.Channels
}

// VideoStream describes the selected video stream.
func (r *Reader) VideoStream() engine.StreamInfo {
	if !r.valid() {
		return engine.StreamInfo{Index: -1, Type: engine.MediaTypeUnknown}
	}
	return r.video.info
}

// AudioStream describes the selected audio stream, if any.
func (r *Reader) AudioStream() (engine.StreamInfo, bool) {
	if !r.HasAudio() {
		return engine.StreamInfo{Index: -1, Type: engine.MediaTypeUnknown}, false
	}
	return r.audio.info, true
}

// FPS returns the video stream's average frame rate, or 0 when the
// container reports none.
func (r *Reader) FPS() float64 {
	if !r.valid() {
		return 0
	}
	return r.video.info.AvgFrameRate.Float64()
}

// DurationTicks returns the video stream duration in its own time base
// ticks, as reported by the container (engine.NoPTS when unknown), or -1
// on a closed Reader. Use Duration for a normalized value.
func (r *Reader) DurationTicks() int64 {
	if !r.valid() {
		return -1
	}
	return r.video.info.Duration
}

// TimeBase returns the video stream's time base.
func (r *Reader) TimeBase() engine.Rational {
	if !r.valid() {
		return engine.Rational{}
	}
	return r.video.info.TimeBase
}

// Duration returns the video duration, falling back to the container
// duration. Zero means unknown.
func (r *Reader) Duration() time.Duration {
	if !r.valid() {
		return 0
	}
	if d := r.video.info.Duration; d != engine.NoPTS && d > 0 {
		return TicksToDuration(d, r.video.info.TimeBase)
	}
	if d := r.container.Duration(); d != engine.NoPTS && d > 0 {
		return TicksToDuration(d, engine.TimeBaseMicro)
	}
	return 0
}

// DurationSeconds is Duration in seconds.
func (r *Reader) DurationSeconds() float64 {
	return r.Duration().Seconds()
}

// PTS returns the timestamp of the last decoded video frame in seconds,
// or 0 if none was decoded or its timestamp is unknown. After a seek and
// before the next ReadFrame it returns the seek target.
func (r *Reader) PTS() float64 {
	if !r.valid() {
		return 0
	}
	return TicksToSeconds(r.pts, r.video.info.TimeBase)
}

// Position is PTS as a time.Duration.
func (r *Reader) Position() time.Duration {
	if !r.valid() {
		return 0
	}
	return TicksToDuration(r.pts, r.video.info.TimeBase)
}

// AudioPTS returns the timestamp of the last decoded audio frame in
// seconds, or 0.
func (r *Reader) AudioPTS() float64 {
	if !r.HasAudio() {
		return 0
	}
	return TicksToSeconds(r.audioPTS, r.audio.info.TimeBase)
}
