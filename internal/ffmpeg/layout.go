//go:build !ios && !android && (amd64 || arm64)

package ffmpeg

import (
	"unsafe"

	"github.com/obinnaokechukwu/vidreader/engine"
)

// AVFormatContext (avformat 60.x)
const (
	offFmtNbStreams = 44 // unsigned int nb_streams
	offFmtStreams   = 48 // AVStream **streams
	offFmtDuration  = 72 // int64_t duration
)

// AVStream (avformat 60.x)
const (
	offStreamCodecPar     = 16 // AVCodecParameters *codecpar
	offStreamTimeBase     = 32 // AVRational time_base
	offStreamDuration     = 48 // int64_t duration
	offStreamAvgFrameRate = 88 // AVRational avg_frame_rate
)

// AVCodecParameters (avcodec 60.x)
const (
	offParType       = 0   // enum AVMediaType codec_type
	offParCodecID    = 4   // enum AVCodecID codec_id
	offParFormat     = 28  // int format
	offParWidth      = 56  // int width
	offParHeight     = 60  // int height
	offParSampleRate = 116 // int sample_rate
	offParChannels   = 148 // ch_layout.nb_channels
)

// AVCodecContext (avcodec 60.x)
const (
	offCtxWidth      = 116 // int width
	offCtxHeight     = 120 // int height
	offCtxPixFmt     = 136 // enum AVPixelFormat pix_fmt
	offCtxSampleRate = 352 // int sample_rate
	offCtxSampleFmt  = 360 // enum AVSampleFormat sample_fmt
	offCtxChannels   = 916 // ch_layout.nb_channels
)

// AVFrame (avutil 58.x)
const (
	offFrameData         = 0   // uint8_t *data[8]
	offFrameLinesize     = 64  // int linesize[8]
	offFrameExtendedData = 96  // uint8_t **extended_data
	offFrameHeight       = 108 // int height
	offFrameNbSamples    = 112 // int nb_samples
	offFramePTS          = 136 // int64_t pts
)

// AVPacket (avcodec 60.x)
const (
	offPacketPTS         = 8  // int64_t pts
	offPacketStreamIndex = 36 // int stream_index
)

// channelLayout mirrors AVChannelLayout.
type channelLayout struct {
	order      int32
	nbChannels int32
	mask       uint64
	opaque     unsafe.Pointer
}

func readInt32(p unsafe.Pointer, off uintptr) int32 {
	return *(*int32)(unsafe.Add(p, off))
}

func readInt64(p unsafe.Pointer, off uintptr) int64 {
	return *(*int64)(unsafe.Add(p, off))
}

func readPointer(p unsafe.Pointer, off uintptr) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Add(p, off))
}

func readRational(p unsafe.Pointer, off uintptr) engine.Rational {
	return engine.Rational{Num: readInt32(p, off), Den: readInt32(p, off+4)}
}

func streamAt(fmtCtx unsafe.Pointer, i int) unsafe.Pointer {
	streams := readPointer(fmtCtx, offFmtStreams)
	return readPointer(streams, uintptr(i)*unsafe.Sizeof(uintptr(0)))
}

func streamInfo(stream unsafe.Pointer, index int) engine.StreamInfo {
	par := readPointer(stream, offStreamCodecPar)
	info := engine.StreamInfo{
		Index:        index,
		Type:         engine.MediaType(readInt32(par, offParType)),
		CodecID:      readInt32(par, offParCodecID),
		TimeBase:     readRational(stream, offStreamTimeBase),
		AvgFrameRate: readRational(stream, offStreamAvgFrameRate),
		Duration:     readInt64(stream, offStreamDuration),
		PixelFormat:  engine.PixelFormatNone,
		SampleFormat: engine.SampleFormatNone,
	}
	info.CodecName = avcodecGetName(info.CodecID)

	switch info.Type {
	case engine.MediaTypeVideo:
		info.Width = int(readInt32(par, offParWidth))
		info.Height = int(readInt32(par, offParHeight))
		info.PixelFormat = engine.PixelFormat(readInt32(par, offParFormat))
	case engine.MediaTypeAudio:
		info.SampleRate = int(readInt32(par, offParSampleRate))
		info.Channels = int(readInt32(par, offParChannels))
		info.SampleFormat = engine.SampleFormat(readInt32(par, offParFormat))
	}
	return info
}
