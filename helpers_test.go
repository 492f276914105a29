package vidreader

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokechukwu/vidreader/internal/enginetest"
)

const clipPath = "clip.mp4"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newEngine serves m as clipPath and checks for leaks when the test ends.
func newEngine(t *testing.T, m *enginetest.Media) *enginetest.Engine {
	t.Helper()
	e := enginetest.New(map[string]*enginetest.Media{clipPath: m})
	t.Cleanup(func() {
		assert.NoError(t, e.Leaks())
	})
	return e
}

func openMedia(t *testing.T, e *enginetest.Engine, opts ...Option) *Reader {
	t.Helper()
	r, err := Open(clipPath, append([]Option{WithEngine(e), WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	require.NotNil(t, r)
	t.Cleanup(func() {
		assert.NoError(t, r.Close())
	})
	return r
}

func openClip(t *testing.T, o enginetest.ClipOptions, opts ...Option) (*Reader, *enginetest.Engine, *enginetest.Media) {
	t.Helper()
	m := enginetest.Clip(o)
	e := newEngine(t, m)
	return openMedia(t, e, opts...), e, m
}

// readAll reads video frames until end of stream and returns their PTS
// in seconds.
func readAll(t *testing.T, r *Reader) []float64 {
	t.Helper()
	var pts []float64
	for {
		ok, err := r.ReadFrame()
		require.NoError(t, err)
		if !ok {
			return pts
		}
		pts = append(pts, r.PTS())
	}
}

func readN(t *testing.T, r *Reader, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		ok, err := r.ReadFrame()
		require.NoError(t, err)
		require.True(t, ok, "frame %d", i)
	}
}
