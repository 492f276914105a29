//go:build !ios && !android && (amd64 || arm64)

package ffmpeg

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/obinnaokechukwu/vidreader/engine"
)

// Decoder is an opened AVCodecContext with one reusable AVFrame.
type Decoder struct {
	ctx    unsafe.Pointer
	frame  frame
	stream int
	closed bool
}

// OpenDecoder finds and opens a decoder matching the stream's codec id.
func (c *Container) OpenDecoder(stream int) (engine.Decoder, error) {
	if c.closed {
		return nil, errClosed
	}
	n := int(uint32(readInt32(c.ctx, offFmtNbStreams)))
	if stream < 0 || stream >= n {
		return nil, fmt.Errorf("ffmpeg: stream %d out of range (%d streams)", stream, n)
	}
	par := readPointer(streamAt(c.ctx, stream), offStreamCodecPar)
	codecID := readInt32(par, offParCodecID)

	codec := avcodecFindDecoder(codecID)
	if codec == nil {
		return nil, fmt.Errorf("%w: %s", engine.ErrDecoderNotFound, avcodecGetName(codecID))
	}

	d := &Decoder{stream: stream}
	d.ctx = avcodecAllocContext3(codec)
	if d.ctx == nil {
		return nil, newError(errENOMEM, "avcodec_alloc_context3")
	}
	if err := newError(avcodecParametersToContext(d.ctx, par), "avcodec_parameters_to_context"); err != nil {
		d.Close()
		return nil, err
	}
	if err := newError(avcodecOpen2(d.ctx, codec, nil), "avcodec_open2"); err != nil {
		d.Close()
		return nil, err
	}
	d.frame.ptr = avFrameAlloc()
	if d.frame.ptr == nil {
		d.Close()
		return nil, newError(errENOMEM, "av_frame_alloc")
	}
	return d, nil
}

// VideoFormat reports the negotiated picture geometry.
func (d *Decoder) VideoFormat() engine.VideoFormat {
	return engine.VideoFormat{
		Width:       int(readInt32(d.ctx, offCtxWidth)),
		Height:      int(readInt32(d.ctx, offCtxHeight)),
		PixelFormat: engine.PixelFormat(readInt32(d.ctx, offCtxPixFmt)),
	}
}

// AudioFormat reports the negotiated sample layout.
func (d *Decoder) AudioFormat() engine.AudioFormat {
	return engine.AudioFormat{
		SampleRate:   int(readInt32(d.ctx, offCtxSampleRate)),
		Channels:     int(readInt32(d.ctx, offCtxChannels)),
		SampleFormat: engine.SampleFormat(readInt32(d.ctx, offCtxSampleFmt)),
	}
}

// SendPacket wraps avcodec_send_packet. A nil packet starts draining.
func (d *Decoder) SendPacket(pkt engine.Packet) error {
	if d.closed {
		return errors.New("ffmpeg: decoder closed")
	}
	var ptr unsafe.Pointer
	if pkt != nil {
		p, ok := pkt.(*packet)
		if !ok {
			return fmt.Errorf("ffmpeg: foreign packet type %T", pkt)
		}
		ptr = p.ptr
	}
	return newError(avcodecSendPacket(d.ctx, ptr), "avcodec_send_packet")
}

// ReceiveFrame wraps avcodec_receive_frame. The returned frame is reused
// by the next call.
func (d *Decoder) ReceiveFrame() (engine.Frame, error) {
	if d.closed {
		return nil, errors.New("ffmpeg: decoder closed")
	}
	if err := newError(avcodecReceiveFrame(d.ctx, d.frame.ptr), "avcodec_receive_frame"); err != nil {
		return nil, err
	}
	return &d.frame, nil
}

// Flush wraps avcodec_flush_buffers.
func (d *Decoder) Flush() {
	if d.closed || d.ctx == nil {
		return
	}
	avcodecFlushBuffers(d.ctx)
}

// Close frees the frame and the codec context. Safe to call twice.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.frame.ptr != nil {
		avFrameFree(&d.frame.ptr)
	}
	if d.ctx != nil {
		avcodecFreeContext(&d.ctx)
	}
	return nil
}

type frame struct {
	ptr unsafe.Pointer
}

func (f *frame) PTS() int64      { return readInt64(f.ptr, offFramePTS) }
func (f *frame) NumSamples() int { return int(readInt32(f.ptr, offFrameNbSamples)) }

func asFrame(f engine.Frame) (*frame, error) {
	ff, ok := f.(*frame)
	if !ok || ff == nil || ff.ptr == nil {
		return nil, fmt.Errorf("ffmpeg: foreign frame type %T", f)
	}
	return ff, nil
}
