package enginetest

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"

	"github.com/obinnaokechukwu/vidreader/engine"
)

// ErrInjected is returned by every injected fault unless a custom error is set.
var ErrInjected = errors.New("enginetest: injected failure")

// Resource kinds tracked by Engine.
const (
	KindBuffer    = "buffer"
	KindContainer = "container"
	KindDecoder   = "decoder"
	KindScaler    = "scaler"
	KindResampler = "resampler"
	KindPacket    = "packet"
)

// Faults selects which engine operations fail.
type Faults struct {
	Open      error
	Probe     error
	Seek      error
	Scaler    error
	Resampler error
	Convert   error
	// NoDecoder makes OpenDecoder fail for streams of these types.
	NoDecoder map[engine.MediaType]bool
	// AllocAt makes the n-th Alloc call fail (1-based); zero disables it.
	AllocAt int
}

// SeekCall records one Container.Seek.
type SeekCall struct {
	Stream int
	TS     int64
	Flags  engine.SeekFlag
}

// Engine is an instrumented engine.Engine over scripted media.
type Engine struct {
	Files  map[string]*Media
	Faults Faults
	// VideoDelay is how many frames a video decoder buffers before
	// producing output, like B-frame reordering.
	VideoDelay int
	// ResamplerSlack is added to OutputSamples to model resampler delay.
	ResamplerSlack int

	live    map[string]int
	total   map[string]int
	bad     []string
	buffers map[*byte]int
	allocs  int

	seeks   []SeekCall
	flushes int
	scaled  int
}

var _ engine.Engine = (*Engine)(nil)

// New returns an engine serving the given files.
func New(files map[string]*Media) *Engine {
	return &Engine{
		Files:   files,
		live:    make(map[string]int),
		total:   make(map[string]int),
		buffers: make(map[*byte]int),
	}
}

func (e *Engine) acquire(kind string) {
	e.live[kind]++
	e.total[kind]++
}

func (e *Engine) release(kind string) {
	if e.live[kind] == 0 {
		e.bad = append(e.bad, "double release of "+kind)
		return
	}
	e.live[kind]--
}

// Live returns how many resources of kind are currently held.
func (e *Engine) Live(kind string) int { return e.live[kind] }

// Total returns how many resources of kind were ever acquired.
func (e *Engine) Total(kind string) int { return e.total[kind] }

// Seeks returns every seek issued so far.
func (e *Engine) Seeks() []SeekCall { return e.seeks }

// Flushes returns how many decoder flushes happened.
func (e *Engine) Flushes() int { return e.flushes }

// Scaled returns how many frames were scaled.
func (e *Engine) Scaled() int { return e.scaled }

// Leaks reports unreleased resources and double releases.
func (e *Engine) Leaks() error {
	problems := append([]string(nil), e.bad...)
	kinds := make([]string, 0, len(e.live))
	for k := range e.live {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		if n := e.live[k]; n != 0 {
			problems = append(problems, fmt.Sprintf("%d %s(s) not released", n, k))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.New("enginetest: " + strings.Join(problems, "; "))
}

// Alloc hands out a Go-allocated buffer and tracks it.
func (e *Engine) Alloc(size int) ([]byte, error) {
	e.allocs++
	if e.Faults.AllocAt == e.allocs {
		return nil, fmt.Errorf("%w: alloc %d", ErrInjected, size)
	}
	if size <= 0 {
		return nil, fmt.Errorf("enginetest: invalid allocation size %d", size)
	}
	buf := make([]byte, size)
	e.buffers[&buf[0]]++
	e.acquire(KindBuffer)
	return buf, nil
}

// Free releases a buffer from Alloc.
func (e *Engine) Free(buf []byte) {
	if cap(buf) == 0 {
		e.bad = append(e.bad, "free of empty buffer")
		return
	}
	p := &buf[:1][0]
	if e.buffers[p] == 0 {
		e.bad = append(e.bad, "free of unknown buffer")
		return
	}
	delete(e.buffers, p)
	e.release(KindBuffer)
}

// OpenInput opens a scripted file.
func (e *Engine) OpenInput(path string) (engine.Container, error) {
	if e.Faults.Open != nil {
		return nil, e.Faults.Open
	}
	m, ok := e.Files[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	e.acquire(KindContainer)
	return &Container{eng: e, media: m}, nil
}

// NewScaler creates a scaler that fills the destination with a pattern
// derived from the frame's timestamp.
func (e *Engine) NewScaler(src, dst engine.VideoFormat, alg engine.ScaleAlgorithm) (engine.Scaler, error) {
	if e.Faults.Scaler != nil {
		return nil, e.Faults.Scaler
	}
	if src.Width <= 0 || src.Height <= 0 || dst.PixelFormat != engine.PixelFormatRGB24 {
		return nil, fmt.Errorf("enginetest: unsupported scale %+v -> %+v", src, dst)
	}
	e.acquire(KindScaler)
	return &Scaler{eng: e, dst: dst}, nil
}

// NewResampler creates a resampler that emits one output sample per input
// sample.
func (e *Engine) NewResampler(src, dst engine.AudioFormat) (engine.Resampler, error) {
	if e.Faults.Resampler != nil {
		return nil, e.Faults.Resampler
	}
	if src.Channels <= 0 || dst.SampleFormat.BytesPerSample() == 0 {
		return nil, fmt.Errorf("enginetest: unsupported resample %+v -> %+v", src, dst)
	}
	e.acquire(KindResampler)
	return &Resampler{eng: e, src: src, dst: dst}, nil
}

// Container replays a Media's packets with a single cursor.
type Container struct {
	eng    *Engine
	media  *Media
	cursor int
	probed bool
	closed bool
}

func (c *Container) FindStreamInfo() error {
	if c.eng.Faults.Probe != nil {
		return c.eng.Faults.Probe
	}
	c.probed = true
	return nil
}

func (c *Container) Streams() []engine.StreamInfo {
	return append([]engine.StreamInfo(nil), c.media.Streams...)
}

func (c *Container) BestStream(kind engine.MediaType) int {
	for _, s := range c.media.Streams {
		if s.Type == kind {
			return s.Index
		}
	}
	return -1
}

func (c *Container) Duration() int64 { return c.media.Duration }

// Position returns the index of the next packet ReadPacket will return.
func (c *Container) Position() int { return c.cursor }

func (c *Container) ReadPacket() (engine.Packet, error) {
	if c.closed {
		return nil, errors.New("enginetest: container closed")
	}
	if c.cursor >= len(c.media.Packets) {
		return nil, io.EOF
	}
	p := &Packet{eng: c.eng, spec: c.media.Packets[c.cursor]}
	c.cursor++
	c.eng.acquire(KindPacket)
	return p, nil
}

// Seek positions the cursor. SeekBackward lands on the last keyframe at or
// before ts; SeekAny lands on the first packet at or after ts; otherwise
// the first keyframe at or after ts is used.
func (c *Container) Seek(stream int, ts int64, flags engine.SeekFlag) error {
	c.eng.seeks = append(c.eng.seeks, SeekCall{Stream: stream, TS: ts, Flags: flags})
	if c.eng.Faults.Seek != nil {
		return c.eng.Faults.Seek
	}
	if stream < 0 || stream >= len(c.media.Streams) {
		return fmt.Errorf("enginetest: seek on invalid stream %d", stream)
	}

	target := -1
	switch {
	case flags&engine.SeekBackward != 0:
		target = 0
		for i, p := range c.media.Packets {
			if p.Stream == stream && p.Key && p.PTS <= ts {
				target = i
			}
		}
	default:
		for i, p := range c.media.Packets {
			if p.Stream == stream && p.PTS >= ts && (p.Key || flags&engine.SeekAny != 0) {
				target = i
				break
			}
		}
	}
	if target < 0 {
		return fmt.Errorf("enginetest: no packet at or after %d", ts)
	}
	c.cursor = target
	return nil
}

func (c *Container) OpenDecoder(stream int) (engine.Decoder, error) {
	if stream < 0 || stream >= len(c.media.Streams) {
		return nil, fmt.Errorf("enginetest: invalid stream %d", stream)
	}
	info := c.media.Streams[stream]
	if c.eng.Faults.NoDecoder[info.Type] {
		return nil, fmt.Errorf("%w: %s", engine.ErrDecoderNotFound, info.CodecName)
	}
	d := &Decoder{eng: c.eng, info: info}
	if info.Type == engine.MediaTypeVideo {
		d.delay = c.eng.VideoDelay
	}
	c.eng.acquire(KindDecoder)
	return d, nil
}

func (c *Container) Close() error {
	if c.closed {
		c.eng.bad = append(c.eng.bad, "double close of container")
		return nil
	}
	c.closed = true
	c.eng.release(KindContainer)
	return nil
}

// Packet is a scripted packet.
type Packet struct {
	eng      *Engine
	spec     PacketSpec
	released bool
}

func (p *Packet) StreamIndex() int { return p.spec.Stream }
func (p *Packet) PTS() int64       { return p.spec.PTS }

func (p *Packet) Release() {
	if p.released {
		p.eng.bad = append(p.eng.bad, "double release of packet")
		return
	}
	p.released = true
	p.eng.release(KindPacket)
}

// Frame is a decoded fake frame.
type Frame struct {
	Stream  int
	Pts     int64
	Samples int
}

func (f *Frame) PTS() int64      { return f.Pts }
func (f *Frame) NumSamples() int { return f.Samples }

// Decoder buffers decoded frames and releases them once more than delay
// frames are queued, or when draining.
type Decoder struct {
	eng      *Engine
	info     engine.StreamInfo
	delay    int
	queue    []*Frame
	draining bool
	closed   bool
}

func (d *Decoder) VideoFormat() engine.VideoFormat { return d.info.Video() }
func (d *Decoder) AudioFormat() engine.AudioFormat { return d.info.Audio() }

func (d *Decoder) SendPacket(pkt engine.Packet) error {
	if d.draining {
		return io.EOF
	}
	if pkt == nil {
		d.draining = true
		return nil
	}
	p, ok := pkt.(*Packet)
	if !ok {
		return fmt.Errorf("enginetest: foreign packet %T", pkt)
	}
	if p.released {
		d.eng.bad = append(d.eng.bad, "decode of released packet")
	}
	if p.spec.Stream != d.info.Index {
		return fmt.Errorf("enginetest: packet for stream %d sent to decoder of stream %d", p.spec.Stream, d.info.Index)
	}
	if p.spec.Corrupt {
		return errors.New("enginetest: invalid data found when processing input")
	}
	pts := p.spec.PTS
	for i := 0; i < max(p.spec.Frames, 1); i++ {
		d.queue = append(d.queue, &Frame{Stream: d.info.Index, Pts: pts, Samples: p.spec.Samples})
		pts += int64(p.spec.Samples)
	}
	return nil
}

func (d *Decoder) ReceiveFrame() (engine.Frame, error) {
	if len(d.queue) > d.delay || (d.draining && len(d.queue) > 0) {
		f := d.queue[0]
		d.queue = d.queue[1:]
		return f, nil
	}
	if d.draining {
		return nil, io.EOF
	}
	return nil, engine.ErrAgain
}

func (d *Decoder) Flush() {
	d.queue = nil
	d.draining = false
	d.eng.flushes++
}

func (d *Decoder) Close() error {
	if d.closed {
		d.eng.bad = append(d.eng.bad, "double close of decoder")
		return nil
	}
	d.closed = true
	d.eng.release(KindDecoder)
	return nil
}

// Scaler writes the low byte of the frame PTS into every output byte.
type Scaler struct {
	eng    *Engine
	dst    engine.VideoFormat
	closed bool
}

func (s *Scaler) Scale(src engine.Frame, dst []byte, stride int) error {
	f, ok := src.(*Frame)
	if !ok {
		return fmt.Errorf("enginetest: foreign frame %T", src)
	}
	if len(dst) < stride*s.dst.Height {
		return fmt.Errorf("enginetest: destination too small: %d < %d", len(dst), stride*s.dst.Height)
	}
	fill(dst[:stride*s.dst.Height], f.Pts)
	s.eng.scaled++
	return nil
}

func (s *Scaler) Close() error {
	if s.closed {
		s.eng.bad = append(s.eng.bad, "double close of scaler")
		return nil
	}
	s.closed = true
	s.eng.release(KindScaler)
	return nil
}

// Resampler converts sample-for-sample and fills output like Scaler.
type Resampler struct {
	eng      *Engine
	src, dst engine.AudioFormat
	closed   bool
}

func (r *Resampler) OutputSamples(in int) int { return in + r.eng.ResamplerSlack }

func (r *Resampler) Convert(src engine.Frame, dst []byte, maxSamples int) (int, error) {
	if r.eng.Faults.Convert != nil {
		return 0, r.eng.Faults.Convert
	}
	f, ok := src.(*Frame)
	if !ok {
		return 0, fmt.Errorf("enginetest: foreign frame %T", src)
	}
	if need := r.dst.FrameBytes(maxSamples); len(dst) < need {
		return 0, fmt.Errorf("enginetest: destination too small: %d < %d", len(dst), need)
	}
	n := min(f.Samples, maxSamples)
	fill(dst[:r.dst.FrameBytes(n)], f.Pts)
	return n, nil
}

func (r *Resampler) Close() error {
	if r.closed {
		r.eng.bad = append(r.eng.bad, "double close of resampler")
		return nil
	}
	r.closed = true
	r.eng.release(KindResampler)
	return nil
}

func fill(b []byte, pts int64) {
	v := byte(pts)
	for i := range b {
		b[i] = v
	}
}
