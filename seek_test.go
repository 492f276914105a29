package vidreader

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/vidreader/engine"
	"github.com/obinnaokechukwu/vidreader/internal/enginetest"
)

func lastSeek(t *testing.T, e *enginetest.Engine) enginetest.SeekCall {
	t.Helper()
	seeks := e.Seeks()
	require.NotEmpty(t, seeks)
	return seeks[len(seeks)-1]
}

func TestStopStart(t *testing.T) {
	r, e, _ := openClip(t, enginetest.ClipOptions{Audio: true})
	readN(t, r, 20)

	require.NoError(t, r.Stop(StopStart))
	assert.Equal(t, enginetest.SeekCall{Stream: 0, TS: 0, Flags: engine.SeekBackward}, lastSeek(t, e))
	assert.Zero(t, r.PTS())

	readN(t, r, 1)
	assert.LessOrEqual(t, r.PTS(), 1/r.FPS())
	assert.Equal(t, 2, e.Flushes())
}

func TestStopStartAfterEnd(t *testing.T) {
	r, _, m := openClip(t, enginetest.ClipOptions{Frames: 10})
	readAll(t, r)

	require.NoError(t, r.Stop(StopStart))
	assert.Len(t, readAll(t, r), m.Frames(0))
}

func TestStopStartDiscardsBufferedFrames(t *testing.T) {
	m := enginetest.Clip(enginetest.ClipOptions{Frames: 30})
	e := newEngine(t, m)
	e.VideoDelay = 3
	r := openMedia(t, e)

	readN(t, r, 10)
	require.NoError(t, r.Stop(StopStart))
	pts := readAll(t, r)
	require.Len(t, pts, 30)
	assert.Zero(t, pts[0])
}

func TestStopEnd(t *testing.T) {
	step := enginetest.FrameTicks(25)

	tests := []struct {
		name   string
		clip   enginetest.ClipOptions
		opts   []Option
		wantTS int64
	}{
		{name: "stream duration", clip: enginetest.ClipOptions{}, wantTS: 50*step - step},
		{name: "container duration", clip: enginetest.ClipOptions{UnknownStreamDuration: true}, wantTS: 50*step - step},
		{name: "fallback fps", clip: enginetest.ClipOptions{NoFrameRate: true}, wantTS: 50*step - step},
		{name: "custom fallback fps", clip: enginetest.ClipOptions{NoFrameRate: true}, opts: []Option{WithFallbackFPS(50)}, wantTS: 50*step - step/2},
		{name: "zero offset", clip: enginetest.ClipOptions{}, opts: []Option{WithEndOffsetFrames(0)}, wantTS: 50 * step},
		{name: "offset past start", clip: enginetest.ClipOptions{Frames: 3}, opts: []Option{WithEndOffsetFrames(10)}, wantTS: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.clip.GOP = 1
			r, e, _ := openClip(t, tt.clip, tt.opts...)

			require.NoError(t, r.Stop(StopEnd))
			assert.Equal(t, enginetest.SeekCall{Stream: 0, TS: tt.wantTS, Flags: engine.SeekBackward}, lastSeek(t, e))
		})
	}
}

func TestStopEndReadsLastFrame(t *testing.T) {
	r, _, _ := openClip(t, enginetest.ClipOptions{Frames: 50, GOP: 1, Audio: true})

	require.NoError(t, r.Stop(StopEnd))
	pts := readAll(t, r)
	require.NotEmpty(t, pts)
	assert.LessOrEqual(t, len(pts), 2)
	assert.InDelta(t, 49.0/25, pts[len(pts)-1], 1e-9)
}

func TestStopEndUnknownDuration(t *testing.T) {
	r, e, _ := openClip(t, enginetest.ClipOptions{UnknownStreamDuration: true, UnknownDuration: true})

	err := r.Stop(StopEnd)
	assert.ErrorIs(t, err, ErrSeek)
	assert.Empty(t, e.Seeks())
}

func TestStopUnknownMode(t *testing.T) {
	r, e, _ := openClip(t, enginetest.ClipOptions{})

	assert.ErrorIs(t, r.Stop(StopMode(7)), ErrSeek)
	assert.Empty(t, e.Seeks())
	assert.Equal(t, "StopMode(7)", StopMode(7).String())
	assert.Equal(t, "start", StopStart.String())
	assert.Equal(t, "end", StopEnd.String())
}

func TestSeekForward(t *testing.T) {
	r, e, _ := openClip(t, enginetest.ClipOptions{})

	require.NoError(t, r.SeekForward(0.4))
	assert.Equal(t, enginetest.SeekCall{Stream: 0, TS: 36000, Flags: engine.SeekAny}, lastSeek(t, e))
	assert.InDelta(t, 0.4, r.PTS(), 1e-9)

	readN(t, r, 1)
	assert.InDelta(t, 0.4, r.PTS(), 1e-9)
}

func TestSeekBackwardClampsAtZero(t *testing.T) {
	r, e, _ := openClip(t, enginetest.ClipOptions{})
	readN(t, r, 5)

	require.NoError(t, r.SeekBackward(5))
	assert.Equal(t, enginetest.SeekCall{Stream: 0, TS: 0, Flags: engine.SeekBackward}, lastSeek(t, e))

	readN(t, r, 1)
	assert.Zero(t, r.PTS())
}

func TestSeekBackwardLandsOnKeyframe(t *testing.T) {
	r, _, _ := openClip(t, enginetest.ClipOptions{GOP: 10})
	readN(t, r, 40)

	require.NoError(t, r.SeekTo(0.6))
	assert.InDelta(t, 0.6, r.PTS(), 1e-9)

	readN(t, r, 1)
	assert.InDelta(t, 0.4, r.PTS(), 1e-9)
}

func TestSeekRoundTrip(t *testing.T) {
	r, _, _ := openClip(t, enginetest.ClipOptions{GOP: 1, Audio: true})
	readN(t, r, 31)
	start := r.PTS()
	require.InDelta(t, 1.2, start, 1e-9)

	require.NoError(t, r.SeekBackward(0.4))
	require.NoError(t, r.SeekForward(0.4))
	readN(t, r, 1)
	assert.InDelta(t, start, r.PTS(), 1/r.FPS())
}

func TestSeekResetsAudio(t *testing.T) {
	r, e, _ := openClip(t, enginetest.ClipOptions{Audio: true})
	ok, err := r.ReadAudio()
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, r.SeekForward(1))
	assert.Empty(t, r.Audio())
	assert.Zero(t, r.AudioPTS())
	assert.Equal(t, 2, e.Flushes())

	ok, err = r.ReadAudio()
	require.NoError(t, err)
	require.True(t, ok)
	assert.GreaterOrEqual(t, r.AudioPTS(), 1.0)
}

func TestSeekFailure(t *testing.T) {
	r, e, _ := openClip(t, enginetest.ClipOptions{})
	e.Faults.Seek = enginetest.ErrInjected

	err := r.SeekForward(1)
	assert.ErrorIs(t, err, ErrSeek)
	assert.ErrorIs(t, err, enginetest.ErrInjected)
	assert.Zero(t, e.Flushes())

	e.Faults.Seek = nil
	readN(t, r, 1)
}

func TestSeekPastEnd(t *testing.T) {
	r, _, _ := openClip(t, enginetest.ClipOptions{Frames: 10})

	assert.ErrorIs(t, r.SeekForward(60), ErrSeek)
}

func TestSeekRejectsUnrepresentableTarget(t *testing.T) {
	tests := []struct {
		name string
		seek func(r *Reader) error
	}{
		{name: "huge forward", seek: func(r *Reader) error { return r.SeekForward(1e15) }},
		{name: "NaN forward", seek: func(r *Reader) error { return r.SeekForward(math.NaN()) }},
		{name: "infinite forward", seek: func(r *Reader) error { return r.SeekForward(math.Inf(1)) }},
		{name: "NaN backward", seek: func(r *Reader) error { return r.SeekBackward(math.NaN()) }},
		{name: "huge absolute", seek: func(r *Reader) error { return r.SeekTo(1e15) }},
		{name: "NaN absolute", seek: func(r *Reader) error { return r.SeekTo(math.NaN()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, e, _ := openClip(t, enginetest.ClipOptions{})
			readN(t, r, 10)
			before := r.PTS()

			assert.ErrorIs(t, tt.seek(r), ErrSeek)
			assert.Empty(t, e.Seeks())
			assert.Zero(t, e.Flushes())
			assert.InDelta(t, before, r.PTS(), 1e-9)

			readN(t, r, 1)
			assert.Greater(t, r.PTS(), before)
		})
	}
}
