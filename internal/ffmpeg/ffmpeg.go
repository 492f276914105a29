//go:build !ios && !android && (amd64 || arm64)

// Package ffmpeg implements engine.Engine on top of the FFmpeg shared
// libraries, called through purego without cgo.
//
// Struct fields are read at fixed offsets that match FFmpeg 6.x
// (avformat 60, avcodec 60, avutil 58).
package ffmpeg

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/obinnaokechukwu/vidreader/engine"
	"github.com/obinnaokechukwu/vidreader/internal/bindings"
	"github.com/obinnaokechukwu/vidreader/internal/platform"
)

// libavutil
var (
	avMalloc               func(size uintptr) unsafe.Pointer
	avFree                 func(ptr unsafe.Pointer)
	avStrerror             func(errnum int32, buf unsafe.Pointer, size uintptr) int32
	avFrameAlloc           func() unsafe.Pointer
	avFrameFree            func(frame *unsafe.Pointer)
	avChannelLayoutDefault func(layout unsafe.Pointer, channels int32)
	avChannelLayoutUninit  func(layout unsafe.Pointer)
	avLogSetLevel          func(level int32)
	avLogGetLevel          func() int32
)

// libavformat
var (
	avformatOpenInput      func(ctx *unsafe.Pointer, url string, fmt, options unsafe.Pointer) int32
	avformatFindStreamInfo func(ctx unsafe.Pointer, options unsafe.Pointer) int32
	avformatCloseInput     func(ctx *unsafe.Pointer)
	avFindBestStream       func(ctx unsafe.Pointer, kind, wanted, related int32, decoder unsafe.Pointer, flags int32) int32
	avReadFrame            func(ctx, pkt unsafe.Pointer) int32
	avSeekFrame            func(ctx unsafe.Pointer, stream int32, ts int64, flags int32) int32
)

// libavcodec
var (
	avcodecFindDecoder         func(id int32) unsafe.Pointer
	avcodecGetName             func(id int32) string
	avcodecAllocContext3       func(codec unsafe.Pointer) unsafe.Pointer
	avcodecFreeContext         func(ctx *unsafe.Pointer)
	avcodecParametersToContext func(ctx, par unsafe.Pointer) int32
	avcodecOpen2               func(ctx, codec unsafe.Pointer, options unsafe.Pointer) int32
	avcodecSendPacket          func(ctx, pkt unsafe.Pointer) int32
	avcodecReceiveFrame        func(ctx, frame unsafe.Pointer) int32
	avcodecFlushBuffers        func(ctx unsafe.Pointer)
	avPacketAlloc              func() unsafe.Pointer
	avPacketFree               func(pkt *unsafe.Pointer)
	avPacketUnref              func(pkt unsafe.Pointer)
)

// libswscale
var (
	swsGetContext  func(srcW, srcH, srcFormat, dstW, dstH, dstFormat, flags int32, srcFilter, dstFilter, param unsafe.Pointer) unsafe.Pointer
	swsScale       func(ctx, srcSlice, srcStride unsafe.Pointer, srcSliceY, srcSliceH int32, dst, dstStride unsafe.Pointer) int32
	swsFreeContext func(ctx unsafe.Pointer)
)

// libswresample
var (
	swrAllocSetOpts2 func(ps *unsafe.Pointer,
		outLayout unsafe.Pointer, outFmt, outRate int32,
		inLayout unsafe.Pointer, inFmt, inRate int32,
		logOffset int32, logCtx unsafe.Pointer) int32
	swrInit          func(s unsafe.Pointer) int32
	swrConvert       func(s, out unsafe.Pointer, outCount int32, in unsafe.Pointer, inCount int32) int32
	swrGetOutSamples func(s unsafe.Pointer, inSamples int32) int32
	swrFree          func(s *unsafe.Pointer)
)

var (
	registerOnce sync.Once
	registerErr  error
)

// Load opens the FFmpeg libraries and binds every function this package
// uses. It is safe to call more than once.
func Load() error {
	registerOnce.Do(func() {
		if !platform.Is64Bit {
			registerErr = errors.New("ffmpeg: struct offsets require a 64-bit platform")
			return
		}
		if err := bindings.Load(); err != nil {
			registerErr = err
			return
		}
		registerErr = register()
	})
	return registerErr
}

func register() (err error) {
	// purego panics on missing symbols; report them as errors instead.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", bindings.ErrNotLoaded, r)
		}
	}()

	bindings.Register(&avMalloc, bindings.AVUtil, "av_malloc")
	bindings.Register(&avFree, bindings.AVUtil, "av_free")
	bindings.Register(&avStrerror, bindings.AVUtil, "av_strerror")
	bindings.Register(&avFrameAlloc, bindings.AVUtil, "av_frame_alloc")
	bindings.Register(&avFrameFree, bindings.AVUtil, "av_frame_free")
	bindings.Register(&avChannelLayoutDefault, bindings.AVUtil, "av_channel_layout_default")
	bindings.Register(&avChannelLayoutUninit, bindings.AVUtil, "av_channel_layout_uninit")
	bindings.Register(&avLogSetLevel, bindings.AVUtil, "av_log_set_level")
	bindings.Register(&avLogGetLevel, bindings.AVUtil, "av_log_get_level")

	bindings.Register(&avformatOpenInput, bindings.AVFormat, "avformat_open_input")
	bindings.Register(&avformatFindStreamInfo, bindings.AVFormat, "avformat_find_stream_info")
	bindings.Register(&avformatCloseInput, bindings.AVFormat, "avformat_close_input")
	bindings.Register(&avFindBestStream, bindings.AVFormat, "av_find_best_stream")
	bindings.Register(&avReadFrame, bindings.AVFormat, "av_read_frame")
	bindings.Register(&avSeekFrame, bindings.AVFormat, "av_seek_frame")

	bindings.Register(&avcodecFindDecoder, bindings.AVCodec, "avcodec_find_decoder")
	bindings.Register(&avcodecGetName, bindings.AVCodec, "avcodec_get_name")
	bindings.Register(&avcodecAllocContext3, bindings.AVCodec, "avcodec_alloc_context3")
	bindings.Register(&avcodecFreeContext, bindings.AVCodec, "avcodec_free_context")
	bindings.Register(&avcodecParametersToContext, bindings.AVCodec, "avcodec_parameters_to_context")
	bindings.Register(&avcodecOpen2, bindings.AVCodec, "avcodec_open2")
	bindings.Register(&avcodecSendPacket, bindings.AVCodec, "avcodec_send_packet")
	bindings.Register(&avcodecReceiveFrame, bindings.AVCodec, "avcodec_receive_frame")
	bindings.Register(&avcodecFlushBuffers, bindings.AVCodec, "avcodec_flush_buffers")
	bindings.Register(&avPacketAlloc, bindings.AVCodec, "av_packet_alloc")
	bindings.Register(&avPacketFree, bindings.AVCodec, "av_packet_free")
	bindings.Register(&avPacketUnref, bindings.AVCodec, "av_packet_unref")

	bindings.Register(&swsGetContext, bindings.SWScale, "sws_getContext")
	bindings.Register(&swsScale, bindings.SWScale, "sws_scale")
	bindings.Register(&swsFreeContext, bindings.SWScale, "sws_freeContext")

	bindings.Register(&swrAllocSetOpts2, bindings.SWResample, "swr_alloc_set_opts2")
	bindings.Register(&swrInit, bindings.SWResample, "swr_init")
	bindings.Register(&swrConvert, bindings.SWResample, "swr_convert")
	bindings.Register(&swrGetOutSamples, bindings.SWResample, "swr_get_out_samples")
	bindings.Register(&swrFree, bindings.SWResample, "swr_free")
	return nil
}

// Engine is the FFmpeg-backed engine.Engine.
type Engine struct{}

var _ engine.Engine = (*Engine)(nil)

// New loads FFmpeg and returns an engine.
func New() (*Engine, error) {
	if err := Load(); err != nil {
		return nil, err
	}
	return &Engine{}, nil
}

// Versions returns the version of every loaded library keyed by library
// file name, e.g. "libavcodec": "60.31.102".
func Versions() (map[string]string, error) {
	if err := Load(); err != nil {
		return nil, err
	}
	libs := []bindings.Library{bindings.AVUtil, bindings.AVCodec, bindings.AVFormat, bindings.SWScale, bindings.SWResample}
	out := make(map[string]string, len(libs))
	for _, lib := range libs {
		if v := bindings.Version(lib); v != 0 {
			out[lib.String()] = bindings.VersionString(v)
		}
	}
	return out, nil
}

// SetLogLevel sets FFmpeg's global log verbosity (AV_LOG_* values).
func SetLogLevel(level int32) error {
	if err := Load(); err != nil {
		return err
	}
	avLogSetLevel(level)
	return nil
}

// LogLevel returns FFmpeg's current log verbosity.
func LogLevel() int32 {
	if Load() != nil {
		return 0
	}
	return avLogGetLevel()
}

// Alloc returns size bytes from av_malloc. The memory is outside the Go
// heap, so its address is stable and FFmpeg may write into it.
func (e *Engine) Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("ffmpeg: invalid allocation size %d", size)
	}
	p := avMalloc(uintptr(size))
	if p == nil {
		return nil, newError(errENOMEM, "av_malloc")
	}
	return unsafe.Slice((*byte)(p), size), nil
}

// Free releases a buffer returned by Alloc.
func (e *Engine) Free(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	avFree(unsafe.Pointer(unsafe.SliceData(buf)))
}
