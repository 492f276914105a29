package vidreader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/vidreader/engine"
	"github.com/obinnaokechukwu/vidreader/internal/enginetest"
)

func TestReadFrameAll(t *testing.T) {
	r, e, m := openClip(t, enginetest.ClipOptions{Frames: 50, FPS: 25, Audio: true, Subtitles: true})

	pts := readAll(t, r)
	require.Len(t, pts, m.Frames(0))
	for i, p := range pts {
		assert.InDelta(t, float64(i)/25, p, 1e-9, "frame %d", i)
	}
	assert.Equal(t, m.Frames(0), e.Scaled())
	assert.Zero(t, e.Live(enginetest.KindPacket))
}

func TestReadFrameEndIsSticky(t *testing.T) {
	r, _, _ := openClip(t, enginetest.ClipOptions{Frames: 5})

	readAll(t, r)
	last := r.PTS()
	for i := 0; i < 3; i++ {
		ok, err := r.ReadFrame()
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, last, r.PTS())
}

func TestReadFrameDrainsDecoderDelay(t *testing.T) {
	m := enginetest.Clip(enginetest.ClipOptions{Frames: 12})
	e := newEngine(t, m)
	e.VideoDelay = 4
	r := openMedia(t, e)

	pts := readAll(t, r)
	assert.Len(t, pts, 12)
	assert.InDelta(t, 11.0/25, pts[len(pts)-1], 1e-9)
}

func TestReadFrameFillsRGB(t *testing.T) {
	r, _, _ := openClip(t, enginetest.ClipOptions{})
	assert.Nil(t, r.Image())

	readN(t, r, 2)
	step := enginetest.FrameTicks(25)
	want := byte(step)
	for i, b := range r.RGB() {
		if b != want {
			t.Fatalf("RGB[%d] = %d, want %d", i, b, want)
		}
	}

	dst := make([]byte, len(r.RGB()))
	assert.Equal(t, len(dst), r.CopyRGB(dst))
	assert.Equal(t, r.RGB(), dst)
}

func TestReadFrameSkipsCorruptPackets(t *testing.T) {
	m := enginetest.Clip(enginetest.ClipOptions{Frames: 20})
	m.Packets[7].Corrupt = true
	e := newEngine(t, m)
	r := openMedia(t, e)

	assert.Len(t, readAll(t, r), 19)
}

func TestReadFrameUnknownTimestamp(t *testing.T) {
	m := enginetest.Clip(enginetest.ClipOptions{Frames: 3})
	m.Packets[0].PTS = engine.NoPTS
	e := newEngine(t, m)
	r := openMedia(t, e)

	readN(t, r, 1)
	assert.Zero(t, r.PTS())
	assert.Zero(t, r.Position())
}

func TestPTSBeforeFirstFrame(t *testing.T) {
	r, _, _ := openClip(t, enginetest.ClipOptions{})
	assert.Zero(t, r.PTS())
}

func TestReadAudio(t *testing.T) {
	r, _, m := openClip(t, enginetest.ClipOptions{Audio: true, SamplesPerFrame: 1024})

	n := 0
	for {
		ok, err := r.ReadAudio()
		require.NoError(t, err)
		if !ok {
			break
		}
		n++
		assert.Equal(t, 1024*4, r.AudioSize())
		assert.Equal(t, 1024, r.AudioSamples())
	}
	assert.Equal(t, m.Frames(1), n)
	assert.Zero(t, r.AudioSize())
	assert.Equal(t, 1, r.PCMAllocations())
}

func TestReadAudioMultiFramePackets(t *testing.T) {
	r, _, m := openClip(t, enginetest.ClipOptions{Audio: true, FramesPerPacket: 3, SamplesPerFrame: 960})
	require.Less(t, m.Count(1), m.Frames(1))

	var stamps []float64
	for {
		ok, err := r.ReadAudio()
		require.NoError(t, err)
		if !ok {
			break
		}
		stamps = append(stamps, r.AudioPTS())
	}
	require.Len(t, stamps, m.Frames(1))
	for i := 1; i < len(stamps); i++ {
		assert.InDelta(t, 960.0/48000, stamps[i]-stamps[i-1], 1e-9)
	}
}

func TestPCMBufferGrowsOnlyWhenNeeded(t *testing.T) {
	m := enginetest.Clip(enginetest.ClipOptions{Audio: true})
	sizes := []int{512, 1024, 256, 1024, 128}
	i := 0
	for j := range m.Packets {
		if m.Packets[j].Stream != 1 {
			continue
		}
		m.Packets[j].Samples = sizes[min(i, len(sizes)-1)]
		i++
	}
	e := newEngine(t, m)
	r := openMedia(t, e)

	for _, want := range sizes {
		ok, err := r.ReadAudio()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want*4, r.AudioSize())
	}
	assert.Equal(t, 2, r.PCMAllocations())
	assert.Equal(t, 2, e.Live(enginetest.KindBuffer), "frame buffer and one PCM buffer")
}

func TestReadAudioResamplerDelay(t *testing.T) {
	m := enginetest.Clip(enginetest.ClipOptions{Audio: true})
	e := newEngine(t, m)
	e.ResamplerSlack = 32
	r := openMedia(t, e)

	ok, err := r.ReadAudio()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1024*4, r.AudioSize())
}

func TestReadAudioSkipsEmptyFrames(t *testing.T) {
	for _, slack := range []int{0, 32} {
		m := enginetest.Clip(enginetest.ClipOptions{Audio: true})
		var second int64
		audio := 0
		for j := range m.Packets {
			if m.Packets[j].Stream != 1 {
				continue
			}
			switch audio {
			case 0:
				m.Packets[j].Samples = 0
			case 1:
				second = m.Packets[j].PTS
			}
			audio++
		}
		e := newEngine(t, m)
		e.ResamplerSlack = slack
		r := openMedia(t, e)

		ok, err := r.ReadAudio()
		require.NoError(t, err)
		require.True(t, ok, "slack %d", slack)
		assert.Equal(t, 1024*4, r.AudioSize(), "slack %d", slack)
		assert.InDelta(t, float64(second)/48000, r.AudioPTS(), 1e-9, "slack %d", slack)
	}
}

func TestSharedCursor(t *testing.T) {
	t.Run("video consumes audio packets", func(t *testing.T) {
		r, _, _ := openClip(t, enginetest.ClipOptions{Audio: true})
		readAll(t, r)

		ok, err := r.ReadAudio()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("audio consumes video packets", func(t *testing.T) {
		r, _, _ := openClip(t, enginetest.ClipOptions{Audio: true})
		for {
			ok, err := r.ReadAudio()
			require.NoError(t, err)
			if !ok {
				break
			}
		}
		assert.Empty(t, readAll(t, r))
	})

	t.Run("interleaved", func(t *testing.T) {
		r, _, _ := openClip(t, enginetest.ClipOptions{Audio: true})
		for i := 0; i < 10; i++ {
			readN(t, r, 1)
			ok, err := r.ReadAudio()
			require.NoError(t, err)
			require.True(t, ok)
		}
		assert.Greater(t, r.PTS(), 0.0)
		assert.Greater(t, r.AudioPTS(), 0.0)
	})
}

func TestConvertFailure(t *testing.T) {
	e := newEngine(t, enginetest.Clip(enginetest.ClipOptions{Audio: true}))
	r := openMedia(t, e)
	e.Faults.Convert = enginetest.ErrInjected

	ok, err := r.ReadAudio()
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrConvert)
	assert.ErrorIs(t, err, enginetest.ErrInjected)

	readN(t, r, 1)
}
