package vidreader

import (
	"fmt"
	"math"

	"github.com/obinnaokechukwu/vidreader/engine"
)

// StopMode selects where Stop repositions the reader.
type StopMode int

const (
	// StopStart seeks to the first frame.
	StopStart StopMode = 0
	// StopEnd seeks to Options.EndOffsetFrames frames before the end.
	StopEnd StopMode = 1
)

func (m StopMode) String() string {
	switch m {
	case StopStart:
		return "start"
	case StopEnd:
		return "end"
	}
	return fmt.Sprintf("StopMode(%d)", int(m))
}

// SeekForward moves offset seconds past the current position, allowing
// the landing point to be any frame.
func (r *Reader) SeekForward(offset float64) error {
	if !r.valid() {
		return ErrInvalidSession
	}
	ts, err := r.targetTicks(r.PTS()+offset, "forward")
	if err != nil {
		return err
	}
	return r.seek(ts, engine.SeekAny, "forward")
}

// SeekBackward moves offset seconds before the current position, clamped
// at 0. The landing point is never after the target.
func (r *Reader) SeekBackward(offset float64) error {
	if !r.valid() {
		return ErrInvalidSession
	}
	ts, err := r.targetTicks(max(r.PTS()-offset, 0), "backward")
	if err != nil {
		return err
	}
	return r.seek(ts, engine.SeekBackward, "backward")
}

// SeekTo moves to an absolute position in seconds, landing at or before
// it.
func (r *Reader) SeekTo(seconds float64) error {
	if !r.valid() {
		return ErrInvalidSession
	}
	ts, err := r.targetTicks(max(seconds, 0), "absolute")
	if err != nil {
		return err
	}
	return r.seek(ts, engine.SeekBackward, "absolute")
}

// targetTicks converts a seek target to video ticks. Targets that are not
// finite or do not fit the time base are rejected before the container
// is touched.
func (r *Reader) targetTicks(seconds float64, kind string) (int64, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("%w: %s target %v", ErrSeek, kind, seconds)
	}
	ts := SecondsToTicks(seconds, r.video.info.TimeBase)
	if ts == math.MaxInt64 || ts == math.MinInt64+1 {
		return 0, fmt.Errorf("%w: %s target %gs out of range", ErrSeek, kind, seconds)
	}
	return ts, nil
}

// Stop repositions the reader at the start or near the end.
func (r *Reader) Stop(mode StopMode) error {
	if !r.valid() {
		return ErrInvalidSession
	}
	switch mode {
	case StopStart:
		return r.seek(0, engine.SeekBackward, "start")
	case StopEnd:
		ts, err := r.endTarget()
		if err != nil {
			return err
		}
		return r.seek(ts, engine.SeekBackward, "end")
	}
	return fmt.Errorf("%w: unknown stop mode %d", ErrSeek, int(mode))
}

// endTarget is the stream duration (or the container duration rescaled
// to the stream time base) minus EndOffsetFrames frames, clamped at 0.
func (r *Reader) endTarget() (int64, error) {
	tb := r.video.info.TimeBase
	end := r.video.info.Duration
	if end == engine.NoPTS {
		end = RescaleTicks(r.container.Duration(), engine.TimeBaseMicro, tb)
	}
	if end == engine.NoPTS || end < 0 {
		return 0, fmt.Errorf("%w: duration unknown", ErrSeek)
	}

	fps := r.FPS()
	if fps <= 0 {
		fps = r.opts.FallbackFPS
	}
	ts := end - int64(r.opts.EndOffsetFrames)*FrameTicks(tb, fps)
	return max(ts, 0), nil
}

// seek moves the demux cursor on the video stream and flushes both
// decoders. All targets use the video time base. On failure the position
// is whatever the container left.
func (r *Reader) seek(ts int64, flags engine.SeekFlag, kind string) error {
	r.log.Debug("seek", "kind", kind, "ts", ts, "seconds", TicksToSeconds(ts, r.video.info.TimeBase))
	if err := r.container.Seek(r.video.info.Index, ts, flags); err != nil {
		return fmt.Errorf("%w: %s to %d: %w", ErrSeek, kind, ts, err)
	}
	r.video.reset()
	if r.audio != nil {
		r.audio.reset()
	}
	r.pts = ts
	r.audioPTS = engine.NoPTS
	r.pcm.size = 0
	return nil
}
