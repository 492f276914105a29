package vidreader

import (
	"fmt"

	"github.com/obinnaokechukwu/vidreader/engine"
)

// outputChannels and outputSampleFormat define the PCM layout handed to
// consumers. The sample rate follows the source.
const (
	outputChannels     = 2
	outputSampleFormat = engine.SampleFormatS16
)

// setupVideo allocates the RGB buffer and configures the scaler for
// (source format, W, H) -> (RGB24, W, H).
func (r *Reader) setupVideo() error {
	src := r.video.decoder.VideoFormat()
	if src.Width <= 0 || src.Height <= 0 {
		src.Width, src.Height = r.video.info.Width, r.video.info.Height
	}
	if src.PixelFormat == engine.PixelFormatNone {
		src.PixelFormat = r.video.info.PixelFormat
	}
	if src.Width <= 0 || src.Height <= 0 {
		return fmt.Errorf("%w: video stream %d has no dimensions", ErrUnsupportedCodec, r.video.info.Index)
	}

	r.width, r.height = src.Width, src.Height
	r.stride = r.width * 3

	buf, err := r.eng.Alloc(r.stride * r.height)
	if err != nil {
		return fmt.Errorf("vidreader: allocate %dx%d frame buffer: %w", r.width, r.height, err)
	}
	r.rgb = buf

	dst := engine.VideoFormat{Width: r.width, Height: r.height, PixelFormat: engine.PixelFormatRGB24}
	sc, err := r.eng.NewScaler(src, dst, r.opts.ScaleAlgorithm)
	if err != nil {
		return fmt.Errorf("%w: scaler %dx%d fmt %d: %w", ErrConvert, src.Width, src.Height, src.PixelFormat, err)
	}
	r.scaler = sc
	return nil
}

// setupAudio configures the resampler for the source layout -> stereo S16
// at the source rate.
func (r *Reader) setupAudio() error {
	src := r.audio.decoder.AudioFormat()
	if src.SampleRate <= 0 {
		src.SampleRate = r.audio.info.SampleRate
	}
	if src.Channels <= 0 {
		src.Channels = r.audio.info.Channels
	}
	if src.SampleFormat == engine.SampleFormatNone {
		src.SampleFormat = r.audio.info.SampleFormat
	}
	if src.SampleRate <= 0 || src.Channels <= 0 {
		return fmt.Errorf("%w: audio stream %d has no sample layout", ErrConvert, r.audio.info.Index)
	}

	dst := engine.AudioFormat{SampleRate: src.SampleRate, Channels: outputChannels, SampleFormat: outputSampleFormat}
	rs, err := r.eng.NewResampler(src, dst)
	if err != nil {
		return fmt.Errorf("%w: resampler %+v: %w", ErrConvert, src, err)
	}
	r.resampler = rs
	r.outAudio = dst
	return nil
}

// convertVideo scales a decoded frame into the RGB buffer.
func (r *Reader) convertVideo(f engine.Frame) error {
	if err := r.scaler.Scale(f, r.rgb, r.stride); err != nil {
		return fmt.Errorf("%w: scale frame: %w", ErrConvert, err)
	}
	return nil
}

// convertAudio resamples a decoded frame into the PCM buffer, growing it
// when the frame needs more room, and returns the samples per channel
// written.
func (r *Reader) convertAudio(f engine.Frame) (int, error) {
	r.pcm.size = 0
	limit := r.resampler.OutputSamples(f.NumSamples())
	if limit <= 0 {
		return 0, nil
	}
	buf, err := r.pcm.reserve(r.eng, r.outAudio.FrameBytes(limit))
	if err != nil {
		return 0, fmt.Errorf("vidreader: allocate audio buffer: %w", err)
	}
	n, err := r.resampler.Convert(f, buf, limit)
	if err != nil {
		return 0, fmt.Errorf("%w: resample frame: %w", ErrConvert, err)
	}
	r.pcm.size = r.outAudio.FrameBytes(n)
	return n, nil
}
