//go:build !ios && !android && (amd64 || arm64)

package ffmpeg

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/obinnaokechukwu/vidreader/engine"
)

var errClosed = errors.New("ffmpeg: container closed")

// Container is an open AVFormatContext with one reusable AVPacket.
type Container struct {
	ctx    unsafe.Pointer
	pkt    packet
	path   string
	closed bool
}

// OpenInput opens path with avformat_open_input.
func (e *Engine) OpenInput(path string) (engine.Container, error) {
	c := &Container{path: path}
	ret := avformatOpenInput(&c.ctx, path, nil, nil)
	runtime.KeepAlive(path)
	if ret < 0 {
		return nil, newError(ret, "avformat_open_input")
	}
	c.pkt.ptr = avPacketAlloc()
	if c.pkt.ptr == nil {
		avformatCloseInput(&c.ctx)
		return nil, newError(errENOMEM, "av_packet_alloc")
	}
	return c, nil
}

// FindStreamInfo probes the container headers.
func (c *Container) FindStreamInfo() error {
	if c.closed {
		return errClosed
	}
	return newError(avformatFindStreamInfo(c.ctx, nil), "avformat_find_stream_info")
}

// Streams describes every track in the container.
func (c *Container) Streams() []engine.StreamInfo {
	if c.closed {
		return nil
	}
	n := int(uint32(readInt32(c.ctx, offFmtNbStreams)))
	infos := make([]engine.StreamInfo, 0, n)
	for i := 0; i < n; i++ {
		infos = append(infos, streamInfo(streamAt(c.ctx, i), i))
	}
	return infos
}

// BestStream wraps av_find_best_stream.
func (c *Container) BestStream(kind engine.MediaType) int {
	if c.closed {
		return -1
	}
	idx := avFindBestStream(c.ctx, int32(kind), -1, -1, nil, 0)
	if idx < 0 {
		return -1
	}
	return int(idx)
}

// Duration returns AVFormatContext.duration in microseconds.
func (c *Container) Duration() int64 {
	if c.closed {
		return engine.NoPTS
	}
	return readInt64(c.ctx, offFmtDuration)
}

// ReadPacket reads into the container's packet. The previous packet must
// have been released.
func (c *Container) ReadPacket() (engine.Packet, error) {
	if c.closed {
		return nil, errClosed
	}
	if ret := avReadFrame(c.ctx, c.pkt.ptr); ret < 0 {
		return nil, newError(ret, "av_read_frame")
	}
	return &c.pkt, nil
}

// Seek wraps av_seek_frame.
func (c *Container) Seek(stream int, ts int64, flags engine.SeekFlag) error {
	if c.closed {
		return errClosed
	}
	return newError(avSeekFrame(c.ctx, int32(stream), ts, int32(flags)), "av_seek_frame")
}

// Close frees the packet and closes the input. Safe to call twice.
func (c *Container) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.pkt.ptr != nil {
		avPacketFree(&c.pkt.ptr)
	}
	if c.ctx != nil {
		avformatCloseInput(&c.ctx)
	}
	return nil
}

func (c *Container) String() string {
	return fmt.Sprintf("ffmpeg.Container(%s)", c.path)
}

type packet struct {
	ptr unsafe.Pointer
}

func (p *packet) StreamIndex() int { return int(readInt32(p.ptr, offPacketStreamIndex)) }
func (p *packet) PTS() int64       { return readInt64(p.ptr, offPacketPTS) }
func (p *packet) Release()         { avPacketUnref(p.ptr) }
