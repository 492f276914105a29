package vidreader

import (
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/vidreader/engine"
	"github.com/obinnaokechukwu/vidreader/internal/enginetest"
)

func TestOpenVideoOnly(t *testing.T) {
	r, e, _ := openClip(t, enginetest.ClipOptions{Width: 64, Height: 48})

	assert.Equal(t, 64, r.Width())
	assert.Equal(t, 48, r.Height())
	assert.Equal(t, 64*3, r.Stride())
	assert.Len(t, r.RGB(), 64*48*3)
	assert.Equal(t, 25.0, r.FPS())
	assert.False(t, r.HasAudio())
	assert.NoError(t, r.AudioErr())

	ok, err := r.ReadFrame()
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.ReadAudio()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, r.SampleRate())
	assert.Zero(t, r.Channels())
	assert.Zero(t, r.AudioSize())
	assert.Empty(t, r.Audio())

	assert.Equal(t, 1, e.Live(enginetest.KindContainer))
	assert.Equal(t, 1, e.Live(enginetest.KindDecoder))
	assert.Equal(t, 1, e.Live(enginetest.KindScaler))
	assert.Equal(t, 1, e.Live(enginetest.KindBuffer))
}

func TestOpenWithAudio(t *testing.T) {
	r, e, _ := openClip(t, enginetest.ClipOptions{Audio: true, SampleRate: 44100, Channels: 6})

	assert.True(t, r.HasAudio())
	assert.Equal(t, 44100, r.SampleRate())
	assert.Equal(t, 2, r.Channels())
	info, ok := r.AudioStream()
	require.True(t, ok)
	assert.Equal(t, 6, info.Channels)
	assert.Equal(t, 2, e.Live(enginetest.KindDecoder))
	assert.Equal(t, 1, e.Live(enginetest.KindResampler))
}

func TestOpenWithoutAudio(t *testing.T) {
	r, e, _ := openClip(t, enginetest.ClipOptions{Audio: true}, WithoutAudio())

	assert.False(t, r.HasAudio())
	assert.NoError(t, r.AudioErr())
	assert.Equal(t, 1, e.Total(enginetest.KindDecoder))
	assert.Zero(t, e.Total(enginetest.KindResampler))
}

func TestOpenFailures(t *testing.T) {
	audioOnly := &enginetest.Media{
		Streams: []engine.StreamInfo{{
			Index: 0, Type: engine.MediaTypeAudio, CodecName: "aac",
			TimeBase: engine.Rational{Num: 1, Den: 48000}, Duration: engine.NoPTS,
			SampleRate: 48000, Channels: 2, SampleFormat: engine.SampleFormatFltP,
		}},
		Duration: engine.NoPTS,
	}

	tests := []struct {
		name   string
		media  *enginetest.Media
		path   string
		faults enginetest.Faults
		want   error
	}{
		{name: "missing file", media: enginetest.Clip(enginetest.ClipOptions{}), path: "missing.mp4", want: ErrOpen},
		{name: "unrecognized container", media: enginetest.Clip(enginetest.ClipOptions{}), faults: enginetest.Faults{Open: enginetest.ErrInjected}, want: ErrOpen},
		{name: "bad headers", media: enginetest.Clip(enginetest.ClipOptions{}), faults: enginetest.Faults{Probe: enginetest.ErrInjected}, want: ErrProbe},
		{name: "no video", media: audioOnly, want: ErrNoVideoStream},
		{
			name:   "no video decoder",
			media:  enginetest.Clip(enginetest.ClipOptions{Audio: true}),
			faults: enginetest.Faults{NoDecoder: map[engine.MediaType]bool{engine.MediaTypeVideo: true}},
			want:   ErrUnsupportedCodec,
		},
		{name: "scaler", media: enginetest.Clip(enginetest.ClipOptions{Audio: true}), faults: enginetest.Faults{Scaler: enginetest.ErrInjected}, want: ErrConvert},
		{name: "frame buffer", media: enginetest.Clip(enginetest.ClipOptions{Audio: true}), faults: enginetest.Faults{AllocAt: 1}, want: enginetest.ErrInjected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, tt.media)
			e.Faults = tt.faults
			path := tt.path
			if path == "" {
				path = clipPath
			}

			r, err := Open(path, WithEngine(e), WithLogger(quietLogger()))
			require.Error(t, err)
			assert.Nil(t, r)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOpenWrapsEngineCause(t *testing.T) {
	e := newEngine(t, enginetest.Clip(enginetest.ClipOptions{}))
	e.Faults.NoDecoder = map[engine.MediaType]bool{engine.MediaTypeVideo: true}

	_, err := Open(clipPath, WithEngine(e), WithLogger(quietLogger()))
	assert.ErrorIs(t, err, ErrUnsupportedCodec)
	assert.ErrorIs(t, err, engine.ErrDecoderNotFound)

	_, err = Open("nope.mkv", WithEngine(e), WithLogger(quietLogger()))
	assert.ErrorIs(t, err, ErrOpen)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOpenInvalidOptions(t *testing.T) {
	e := newEngine(t, enginetest.Clip(enginetest.ClipOptions{}))

	_, err := Open(clipPath, WithEngine(e), WithFallbackFPS(0))
	assert.Error(t, err)
	_, err = Open(clipPath, WithEngine(e), WithEndOffsetFrames(-1))
	assert.Error(t, err)
	assert.Zero(t, e.Total(enginetest.KindContainer))
}

func TestDegradedAudio(t *testing.T) {
	t.Run("resampler", func(t *testing.T) {
		m := enginetest.Clip(enginetest.ClipOptions{Audio: true})
		e := newEngine(t, m)
		e.Faults.Resampler = enginetest.ErrInjected
		r := openMedia(t, e)

		assert.False(t, r.HasAudio())
		assert.ErrorIs(t, r.AudioErr(), ErrDegradedAudio)
		assert.ErrorIs(t, r.AudioErr(), enginetest.ErrInjected)
		assert.Zero(t, e.Live(enginetest.KindResampler))
		assert.Equal(t, 1, e.Live(enginetest.KindDecoder), "audio decoder released")

		ok, err := r.ReadAudio()
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Len(t, readAll(t, r), m.Frames(0))
	})

	t.Run("decoder", func(t *testing.T) {
		e := newEngine(t, enginetest.Clip(enginetest.ClipOptions{Audio: true}))
		e.Faults.NoDecoder = map[engine.MediaType]bool{engine.MediaTypeAudio: true}
		r := openMedia(t, e)

		assert.False(t, r.HasAudio())
		assert.ErrorIs(t, r.AudioErr(), ErrDegradedAudio)
		assert.ErrorIs(t, r.AudioErr(), engine.ErrDecoderNotFound)
		assert.Zero(t, r.SampleRate())
	})
}

func TestAudioBufferAllocFailure(t *testing.T) {
	e := newEngine(t, enginetest.Clip(enginetest.ClipOptions{Audio: true}))
	e.Faults.AllocAt = 2
	r := openMedia(t, e)

	ok, err := r.ReadAudio()
	assert.False(t, ok)
	assert.ErrorIs(t, err, enginetest.ErrInjected)
	assert.Empty(t, r.Audio())
	assert.Zero(t, r.PCMAllocations())
}

func TestCloseIdempotent(t *testing.T) {
	m := enginetest.Clip(enginetest.ClipOptions{Audio: true})
	e := newEngine(t, m)
	r, err := Open(clipPath, WithEngine(e), WithLogger(quietLogger()))
	require.NoError(t, err)

	readN(t, r, 3)
	ok, err := r.ReadAudio()
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	require.NoError(t, e.Leaks())

	ok, err = r.ReadFrame()
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInvalidSession)
	_, err = r.ReadAudio()
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.ErrorIs(t, r.SeekForward(1), ErrInvalidSession)
	assert.ErrorIs(t, r.SeekBackward(1), ErrInvalidSession)
	assert.ErrorIs(t, r.Stop(StopStart), ErrInvalidSession)

	assert.Equal(t, int64(-1), r.DurationTicks())
	assert.Zero(t, r.Width())
	assert.Zero(t, r.Height())
	assert.Zero(t, r.FPS())
	assert.Zero(t, r.PTS())
	assert.Nil(t, r.RGB())
	assert.Nil(t, r.Audio())
	assert.Zero(t, r.SampleRate())
}

func TestNilReader(t *testing.T) {
	var r *Reader
	assert.NoError(t, r.Close())
	assert.Equal(t, int64(-1), r.DurationTicks())
	assert.Zero(t, r.PTS())
	assert.Zero(t, r.AudioSamples())
	_, err := r.ReadFrame()
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestQueriesAreStable(t *testing.T) {
	r, _, _ := openClip(t, enginetest.ClipOptions{FPS: 30, Width: 320, Height: 240})

	for i := 0; i < 3; i++ {
		assert.Equal(t, 320, r.Width())
		assert.Equal(t, 240, r.Height())
		assert.Equal(t, 30.0, r.FPS())
	}
}

func TestDuration(t *testing.T) {
	t.Run("stream", func(t *testing.T) {
		r, _, _ := openClip(t, enginetest.ClipOptions{Frames: 50, FPS: 25})
		assert.Equal(t, int64(50*3600), r.DurationTicks())
		assert.Equal(t, 2*time.Second, r.Duration())
		assert.Equal(t, 2.0, r.DurationSeconds())
	})

	t.Run("container fallback", func(t *testing.T) {
		r, _, _ := openClip(t, enginetest.ClipOptions{Frames: 50, FPS: 25, UnknownStreamDuration: true})
		assert.Equal(t, engine.NoPTS, r.DurationTicks())
		assert.Equal(t, 2*time.Second, r.Duration())
	})

	t.Run("unknown", func(t *testing.T) {
		r, _, _ := openClip(t, enginetest.ClipOptions{UnknownStreamDuration: true, UnknownDuration: true})
		assert.Zero(t, r.Duration())
	})
}

func TestFPSMissing(t *testing.T) {
	r, _, _ := openClip(t, enginetest.ClipOptions{NoFrameRate: true})
	assert.Zero(t, r.FPS())
}

func TestStreamInfo(t *testing.T) {
	r, _, _ := openClip(t, enginetest.ClipOptions{Audio: true, Subtitles: true})

	v := r.VideoStream()
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, engine.MediaTypeVideo, v.Type)
	assert.Equal(t, "h264", v.CodecName)

	a, ok := r.AudioStream()
	require.True(t, ok)
	assert.Equal(t, 1, a.Index)
}
