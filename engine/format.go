package engine

import (
	"fmt"
	"math"
)

// NoPTS marks an unknown timestamp or duration (AV_NOPTS_VALUE).
const NoPTS int64 = math.MinInt64

// TimeBaseMicro is the unit of container-level durations (AV_TIME_BASE_Q).
var TimeBaseMicro = Rational{Num: 1, Den: 1000000}

// Rational is a fraction used for time bases and frame rates (AVRational).
type Rational struct {
	Num int32 // Numerator
	Den int32 // Denominator
}

// Float64 converts the rational to a float64.
// Returns 0 if the denominator is 0.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Invert returns den/num.
func (r Rational) Invert() Rational {
	return Rational{Num: r.Den, Den: r.Num}
}

// IsZero reports whether the numerator is zero.
func (r Rational) IsZero() bool {
	return r.Num == 0
}

// Valid reports whether both terms are positive.
func (r Rational) Valid() bool {
	return r.Num > 0 && r.Den > 0
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// MediaType is the kind of data carried by a stream.
type MediaType int32

const (
	MediaTypeUnknown    MediaType = -1
	MediaTypeVideo      MediaType = 0
	MediaTypeAudio      MediaType = 1
	MediaTypeData       MediaType = 2
	MediaTypeSubtitle   MediaType = 3
	MediaTypeAttachment MediaType = 4
)

func (t MediaType) String() string {
	switch t {
	case MediaTypeVideo:
		return "video"
	case MediaTypeAudio:
		return "audio"
	case MediaTypeData:
		return "data"
	case MediaTypeSubtitle:
		return "subtitle"
	case MediaTypeAttachment:
		return "attachment"
	default:
		return "unknown"
	}
}

// PixelFormat uses FFmpeg's AVPixelFormat numbering.
type PixelFormat int32

const (
	PixelFormatNone     PixelFormat = -1
	PixelFormatYUV420P  PixelFormat = 0
	PixelFormatYUYV422  PixelFormat = 1
	PixelFormatRGB24    PixelFormat = 2
	PixelFormatBGR24    PixelFormat = 3
	PixelFormatYUV422P  PixelFormat = 4
	PixelFormatYUV444P  PixelFormat = 5
	PixelFormatGray8    PixelFormat = 8
	PixelFormatYUVJ420P PixelFormat = 12
	PixelFormatNV12     PixelFormat = 23
	PixelFormatRGBA     PixelFormat = 26
	PixelFormatBGRA     PixelFormat = 28
)

// SampleFormat uses FFmpeg's AVSampleFormat numbering.
type SampleFormat int32

const (
	SampleFormatNone SampleFormat = -1
	SampleFormatU8   SampleFormat = 0
	SampleFormatS16  SampleFormat = 1
	SampleFormatS32  SampleFormat = 2
	SampleFormatFlt  SampleFormat = 3
	SampleFormatDbl  SampleFormat = 4
	SampleFormatU8P  SampleFormat = 5
	SampleFormatS16P SampleFormat = 6
	SampleFormatS32P SampleFormat = 7
	SampleFormatFltP SampleFormat = 8
	SampleFormatDblP SampleFormat = 9
	SampleFormatS64  SampleFormat = 10
	SampleFormatS64P SampleFormat = 11
)

// BytesPerSample returns the size of one sample of one channel, or 0 for
// unknown formats.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case SampleFormatU8, SampleFormatU8P:
		return 1
	case SampleFormatS16, SampleFormatS16P:
		return 2
	case SampleFormatS32, SampleFormatS32P, SampleFormatFlt, SampleFormatFltP:
		return 4
	case SampleFormatDbl, SampleFormatDblP, SampleFormatS64, SampleFormatS64P:
		return 8
	default:
		return 0
	}
}

// IsPlanar reports whether each channel is stored in its own plane.
func (f SampleFormat) IsPlanar() bool {
	return f >= SampleFormatU8P && f <= SampleFormatDblP || f == SampleFormatS64P
}

// SeekFlag mirrors the AVSEEK_FLAG_* bits.
type SeekFlag int32

const (
	// SeekBackward lands at or before the requested timestamp.
	SeekBackward SeekFlag = 1
	SeekByte     SeekFlag = 2
	// SeekAny allows landing on non-keyframes.
	SeekAny   SeekFlag = 4
	SeekFrame SeekFlag = 8
)

// ScaleAlgorithm mirrors the SWS_* interpolation flags.
type ScaleAlgorithm int32

const (
	ScaleFastBilinear ScaleAlgorithm = 0x1
	ScaleBilinear     ScaleAlgorithm = 0x2
	ScaleBicubic      ScaleAlgorithm = 0x4
	ScalePoint        ScaleAlgorithm = 0x10
	ScaleArea         ScaleAlgorithm = 0x20
	ScaleLanczos      ScaleAlgorithm = 0x200
)

// VideoFormat describes raw video frames.
type VideoFormat struct {
	Width       int
	Height      int
	PixelFormat PixelFormat
}

// AudioFormat describes raw audio frames.
type AudioFormat struct {
	SampleRate   int
	Channels     int
	SampleFormat SampleFormat
}

// FrameBytes returns the size of an interleaved buffer holding samples
// frames of this format.
func (f AudioFormat) FrameBytes(samples int) int {
	return samples * f.Channels * f.SampleFormat.BytesPerSample()
}

// StreamInfo is the negotiated description of one container track.
type StreamInfo struct {
	Index     int
	Type      MediaType
	CodecID   int32
	CodecName string

	TimeBase     Rational
	AvgFrameRate Rational
	// Duration in TimeBase ticks, NoPTS when unknown.
	Duration int64

	Width       int
	Height      int
	PixelFormat PixelFormat

	SampleRate   int
	Channels     int
	SampleFormat SampleFormat
}

// Video returns the stream's video geometry.
func (s StreamInfo) Video() VideoFormat {
	return VideoFormat{Width: s.Width, Height: s.Height, PixelFormat: s.PixelFormat}
}

// Audio returns the stream's audio layout.
func (s StreamInfo) Audio() AudioFormat {
	return AudioFormat{SampleRate: s.SampleRate, Channels: s.Channels, SampleFormat: s.SampleFormat}
}
