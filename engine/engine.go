// Package engine describes the demuxing, decoding and conversion services a
// reader session is built on. Implementations live elsewhere: the FFmpeg
// binding in internal/ffmpeg and an instrumented fake in internal/enginetest.
//
// End of stream is reported as io.EOF by Container.ReadPacket and
// Decoder.ReceiveFrame.
package engine

import "errors"

var (
	// ErrAgain means the decoder wants input before it can produce output,
	// or output must be received before more input is accepted.
	ErrAgain = errors.New("engine: resource temporarily unavailable")

	// ErrDecoderNotFound means no decoder is available for a codec.
	ErrDecoderNotFound = errors.New("engine: decoder not found")
)

// Engine opens containers and creates conversion contexts.
type Engine interface {
	Allocator

	// OpenInput opens a container. Stream information is not probed yet.
	OpenInput(path string) (Container, error)
	NewScaler(src, dst VideoFormat, alg ScaleAlgorithm) (Scaler, error)
	NewResampler(src, dst AudioFormat) (Resampler, error)
}

// Allocator hands out buffers the engine can write into directly.
// Every buffer returned by Alloc must be passed to Free exactly once.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Free(buf []byte)
}

// Container is an open media file with a single demux cursor.
type Container interface {
	FindStreamInfo() error
	Streams() []StreamInfo
	// BestStream returns the index of the preferred stream of kind, or -1.
	BestStream(kind MediaType) int
	// Duration returns the container duration in microseconds, or NoPTS.
	Duration() int64
	// ReadPacket advances the demux cursor. The packet must be released
	// before the next call.
	ReadPacket() (Packet, error)
	// Seek moves the demux cursor; ts is in the stream's time base.
	Seek(stream int, ts int64, flags SeekFlag) error
	OpenDecoder(stream int) (Decoder, error)
	Close() error
}

// Packet is one demuxed, still-encoded unit.
type Packet interface {
	StreamIndex() int
	PTS() int64
	Release()
}

// Decoder turns packets of one stream into frames.
type Decoder interface {
	VideoFormat() VideoFormat
	AudioFormat() AudioFormat
	// SendPacket submits input. A nil packet puts the decoder in draining
	// mode, after which ReceiveFrame yields buffered frames then io.EOF.
	SendPacket(pkt Packet) error
	// ReceiveFrame returns the next decoded frame. The frame is owned by
	// the decoder and valid until the next ReceiveFrame, Flush or Close.
	ReceiveFrame() (Frame, error)
	// Flush drops buffered state and leaves draining mode.
	Flush()
	Close() error
}

// Frame is a decoded picture or block of audio samples.
type Frame interface {
	PTS() int64
	NumSamples() int
}

// Scaler converts decoded pictures into a packed destination buffer.
type Scaler interface {
	Scale(src Frame, dst []byte, stride int) error
	Close() error
}

// Resampler converts decoded audio into an interleaved destination buffer.
type Resampler interface {
	// OutputSamples returns an upper bound of samples produced for in
	// input samples, including anything buffered internally.
	OutputSamples(in int) int
	// Convert writes at most maxSamples per channel into dst and returns
	// the number written.
	Convert(src Frame, dst []byte, maxSamples int) (int, error)
	Close() error
}
