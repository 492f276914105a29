//go:build !ios && !android && (amd64 || arm64)

package ffmpeg

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/obinnaokechukwu/vidreader/engine"
)

// Scaler wraps an SwsContext.
type Scaler struct {
	ctx unsafe.Pointer
	dst engine.VideoFormat
}

// NewScaler creates an SwsContext converting src to dst.
func (e *Engine) NewScaler(src, dst engine.VideoFormat, alg engine.ScaleAlgorithm) (engine.Scaler, error) {
	ctx := swsGetContext(
		int32(src.Width), int32(src.Height), int32(src.PixelFormat),
		int32(dst.Width), int32(dst.Height), int32(dst.PixelFormat),
		int32(alg), nil, nil, nil,
	)
	if ctx == nil {
		return nil, fmt.Errorf("ffmpeg: sws_getContext failed for %dx%d fmt %d -> %dx%d fmt %d",
			src.Width, src.Height, src.PixelFormat, dst.Width, dst.Height, dst.PixelFormat)
	}
	return &Scaler{ctx: ctx, dst: dst}, nil
}

// Scale converts src into the packed buffer dst, which should come from
// Engine.Alloc.
func (s *Scaler) Scale(src engine.Frame, dst []byte, stride int) error {
	f, err := asFrame(src)
	if err != nil {
		return err
	}
	if s.ctx == nil {
		return fmt.Errorf("ffmpeg: scaler closed")
	}
	if len(dst) < stride*s.dst.Height {
		return fmt.Errorf("ffmpeg: destination too small: %d < %d", len(dst), stride*s.dst.Height)
	}

	dstData := [4]unsafe.Pointer{unsafe.Pointer(unsafe.SliceData(dst))}
	dstStride := [4]int32{int32(stride)}
	ret := swsScale(s.ctx,
		unsafe.Add(f.ptr, offFrameData), unsafe.Add(f.ptr, offFrameLinesize),
		0, readInt32(f.ptr, offFrameHeight),
		unsafe.Pointer(&dstData), unsafe.Pointer(&dstStride),
	)
	runtime.KeepAlive(dst)
	if ret < 0 {
		return newError(ret, "sws_scale")
	}
	return nil
}

// Close frees the SwsContext.
func (s *Scaler) Close() error {
	if s.ctx != nil {
		swsFreeContext(s.ctx)
		s.ctx = nil
	}
	return nil
}

// Resampler wraps an SwrContext producing interleaved output.
type Resampler struct {
	ctx unsafe.Pointer
	dst engine.AudioFormat
}

// NewResampler creates and initializes an SwrContext. Channel layouts are
// the FFmpeg defaults for each channel count.
func (e *Engine) NewResampler(src, dst engine.AudioFormat) (engine.Resampler, error) {
	if src.Channels <= 0 || src.SampleRate <= 0 {
		return nil, fmt.Errorf("ffmpeg: invalid source audio format %+v", src)
	}
	if dst.SampleFormat.IsPlanar() {
		return nil, fmt.Errorf("ffmpeg: planar output format %d not supported", dst.SampleFormat)
	}

	var in, out channelLayout
	avChannelLayoutDefault(unsafe.Pointer(&in), int32(src.Channels))
	avChannelLayoutDefault(unsafe.Pointer(&out), int32(dst.Channels))
	defer avChannelLayoutUninit(unsafe.Pointer(&in))
	defer avChannelLayoutUninit(unsafe.Pointer(&out))

	r := &Resampler{dst: dst}
	ret := swrAllocSetOpts2(&r.ctx,
		unsafe.Pointer(&out), int32(dst.SampleFormat), int32(dst.SampleRate),
		unsafe.Pointer(&in), int32(src.SampleFormat), int32(src.SampleRate),
		0, nil)
	if ret < 0 {
		return nil, newError(ret, "swr_alloc_set_opts2")
	}
	if ret := swrInit(r.ctx); ret < 0 {
		r.Close()
		return nil, newError(ret, "swr_init")
	}
	return r, nil
}

// OutputSamples wraps swr_get_out_samples.
func (r *Resampler) OutputSamples(in int) int {
	if r.ctx == nil {
		return 0
	}
	n := swrGetOutSamples(r.ctx, int32(in))
	if n < 0 {
		return 0
	}
	return int(n)
}

// Convert resamples src into dst, writing at most maxSamples per channel.
func (r *Resampler) Convert(src engine.Frame, dst []byte, maxSamples int) (int, error) {
	f, err := asFrame(src)
	if err != nil {
		return 0, err
	}
	if r.ctx == nil {
		return 0, fmt.Errorf("ffmpeg: resampler closed")
	}
	if need := r.dst.FrameBytes(maxSamples); len(dst) < need {
		return 0, fmt.Errorf("ffmpeg: destination too small: %d < %d", len(dst), need)
	}

	out := [1]unsafe.Pointer{unsafe.Pointer(unsafe.SliceData(dst))}
	in := readPointer(f.ptr, offFrameExtendedData)
	ret := swrConvert(r.ctx, unsafe.Pointer(&out), int32(maxSamples), in, readInt32(f.ptr, offFrameNbSamples))
	runtime.KeepAlive(dst)
	if ret < 0 {
		return 0, newError(ret, "swr_convert")
	}
	return int(ret), nil
}

// Close frees the SwrContext.
func (r *Resampler) Close() error {
	if r.ctx != nil {
		swrFree(&r.ctx)
	}
	return nil
}
