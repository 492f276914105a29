//go:build !ios && !android && (amd64 || arm64)

package vidreader

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestVideo writes a two second 320x240 intra-only clip at 25 fps
// with a mono tone.
func createTestVideo(t *testing.T) string {
	t.Helper()

	testFile := filepath.Join(t.TempDir(), "test.mp4")
	cmd := exec.Command("ffmpeg", "-y",
		"-f", "lavfi", "-i", "testsrc=duration=2:size=320x240:rate=25",
		"-f", "lavfi", "-i", "sine=frequency=440:duration=2:sample_rate=44100",
		"-c:v", "libx264", "-preset", "ultrafast", "-g", "1",
		"-c:a", "aac", "-ac", "1",
		"-pix_fmt", "yuv420p",
		testFile)
	if err := cmd.Run(); err != nil {
		t.Skipf("ffmpeg not available or failed: %v", err)
	}
	if _, err := os.Stat(testFile); err != nil {
		t.Skipf("test file not created: %v", err)
	}
	return testFile
}

func openFFmpeg(t *testing.T, path string, opts ...Option) *Reader {
	t.Helper()
	if _, err := NewEngine(); err != nil {
		t.Skipf("FFmpeg libraries not available: %v", err)
	}
	r, err := Open(path, append([]Option{WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestFFmpegReader(t *testing.T) {
	path := createTestVideo(t)
	r := openFFmpeg(t, path)

	assert.Equal(t, 320, r.Width())
	assert.Equal(t, 240, r.Height())
	assert.InDelta(t, 25, r.FPS(), 0.01)
	assert.Greater(t, r.DurationTicks(), int64(0))
	assert.InDelta(t, 2.0, r.DurationSeconds(), 0.1)

	require.True(t, r.HasAudio())
	assert.Equal(t, 44100, r.SampleRate())

	pts := readAll(t, r)
	assert.InDelta(t, 50, len(pts), 1)
	for i := 1; i < len(pts); i++ {
		assert.Greater(t, pts[i], pts[i-1])
	}

	require.NoError(t, r.Stop(StopStart))
	ok, err := r.ReadAudio()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Positive(t, r.AudioSize())
	assert.Zero(t, r.AudioSize()%4)
}

func TestFFmpegSeek(t *testing.T) {
	path := createTestVideo(t)
	r := openFFmpeg(t, path, WithoutAudio())

	readN(t, r, 31)
	start := r.PTS()

	require.NoError(t, r.SeekBackward(0.4))
	require.NoError(t, r.SeekForward(0.4))
	readN(t, r, 1)
	assert.InDelta(t, start, r.PTS(), 1/r.FPS()+1e-6)

	require.NoError(t, r.Stop(StopEnd))
	pts := readAll(t, r)
	require.NotEmpty(t, pts)
	assert.InDelta(t, 2.0-1/r.FPS(), pts[len(pts)-1], 0.05)
}

func TestFFmpegOpenMissing(t *testing.T) {
	if _, err := NewEngine(); err != nil {
		t.Skipf("FFmpeg libraries not available: %v", err)
	}
	_, err := Open(filepath.Join(t.TempDir(), "missing.mp4"), WithLogger(quietLogger()))
	assert.ErrorIs(t, err, ErrOpen)
}
