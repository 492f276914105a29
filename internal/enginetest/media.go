// Package enginetest provides an in-memory engine.Engine for tests. It
// replays scripted packet sequences, models decoder lookahead and
// multi-frame audio packets, injects faults, and counts every resource it
// hands out so tests can assert that nothing leaks.
package enginetest

import (
	"math"
	"sort"

	"github.com/obinnaokechukwu/vidreader/engine"
)

// PacketSpec is one scripted packet.
type PacketSpec struct {
	Stream int
	PTS    int64
	Key    bool
	// Frames is how many frames the packet decodes to. Zero means one.
	Frames int
	// Samples per decoded audio frame.
	Samples int
	// Corrupt packets are rejected by the decoder.
	Corrupt bool
}

// Media is a scripted container.
type Media struct {
	Streams []engine.StreamInfo
	Packets []PacketSpec
	// Duration in microseconds, engine.NoPTS when unknown.
	Duration int64
}

// ClipOptions describes a synthetic clip built by Clip.
type ClipOptions struct {
	Frames int // video frames, default 50
	FPS    int // default 25
	Width  int // default 64
	Height int // default 48
	// GOP is the keyframe interval in frames, default 10.
	GOP int

	Audio           bool
	SampleRate      int // default 48000
	Channels        int // default 2
	SampleFormat    *engine.SampleFormat // nil selects FltP
	SamplesPerFrame int // default 1024
	// FramesPerPacket is how many audio frames each audio packet yields.
	FramesPerPacket int

	Subtitles bool

	UnknownStreamDuration bool
	UnknownDuration       bool
	NoFrameRate           bool
}

// VideoTimeBase is the time base Clip uses for video streams.
var VideoTimeBase = engine.Rational{Num: 1, Den: 90000}

func (o *ClipOptions) defaults() {
	if o.Frames == 0 {
		o.Frames = 50
	}
	if o.FPS == 0 {
		o.FPS = 25
	}
	if o.Width == 0 {
		o.Width = 64
	}
	if o.Height == 0 {
		o.Height = 48
	}
	if o.GOP == 0 {
		o.GOP = 10
	}
	if o.SampleRate == 0 {
		o.SampleRate = 48000
	}
	if o.Channels == 0 {
		o.Channels = 2
	}
	if o.SampleFormat == nil {
		f := engine.SampleFormatFltP
		o.SampleFormat = &f
	}
	if o.SamplesPerFrame == 0 {
		o.SamplesPerFrame = 1024
	}
	if o.FramesPerPacket == 0 {
		o.FramesPerPacket = 1
	}
}

// FrameTicks returns the video frame duration of a clip with fps in
// VideoTimeBase ticks.
func FrameTicks(fps int) int64 {
	return int64(VideoTimeBase.Den) / int64(fps)
}

// Clip builds an interleaved clip. Video is stream 0, audio stream 1 and
// subtitles follow.
func Clip(o ClipOptions) *Media {
	o.defaults()
	step := FrameTicks(o.FPS)
	seconds := float64(o.Frames) / float64(o.FPS)

	video := engine.StreamInfo{
		Index:        0,
		Type:         engine.MediaTypeVideo,
		CodecID:      27,
		CodecName:    "h264",
		TimeBase:     VideoTimeBase,
		AvgFrameRate: engine.Rational{Num: int32(o.FPS), Den: 1},
		Duration:     int64(o.Frames) * step,
		Width:        o.Width,
		Height:       o.Height,
		PixelFormat:  engine.PixelFormatYUV420P,
		SampleFormat: engine.SampleFormatNone,
	}
	if o.UnknownStreamDuration {
		video.Duration = engine.NoPTS
	}
	if o.NoFrameRate {
		video.AvgFrameRate = engine.Rational{}
	}

	m := &Media{Streams: []engine.StreamInfo{video}, Duration: int64(math.Round(seconds * 1e6))}
	if o.UnknownDuration {
		m.Duration = engine.NoPTS
	}

	type timed struct {
		at  float64
		pkt PacketSpec
	}
	var all []timed
	for i := 0; i < o.Frames; i++ {
		all = append(all, timed{
			at:  float64(i) / float64(o.FPS),
			pkt: PacketSpec{Stream: 0, PTS: int64(i) * step, Key: i%o.GOP == 0},
		})
	}

	if o.Audio {
		idx := len(m.Streams)
		m.Streams = append(m.Streams, engine.StreamInfo{
			Index:        idx,
			Type:         engine.MediaTypeAudio,
			CodecID:      86018,
			CodecName:    "aac",
			TimeBase:     engine.Rational{Num: 1, Den: int32(o.SampleRate)},
			Duration:     int64(math.Round(seconds * float64(o.SampleRate))),
			PixelFormat:  engine.PixelFormatNone,
			SampleRate:   o.SampleRate,
			Channels:     o.Channels,
			SampleFormat: *o.SampleFormat,
		})
		perPacket := int64(o.SamplesPerFrame * o.FramesPerPacket)
		total := int64(math.Ceil(seconds * float64(o.SampleRate)))
		for pts := int64(0); pts < total; pts += perPacket {
			all = append(all, timed{
				at: float64(pts) / float64(o.SampleRate),
				pkt: PacketSpec{
					Stream: idx, PTS: pts, Key: true,
					Frames: o.FramesPerPacket, Samples: o.SamplesPerFrame,
				},
			})
		}
	}

	if o.Subtitles {
		idx := len(m.Streams)
		m.Streams = append(m.Streams, engine.StreamInfo{
			Index:        idx,
			Type:         engine.MediaTypeSubtitle,
			CodecID:      94213,
			CodecName:    "mov_text",
			TimeBase:     engine.Rational{Num: 1, Den: 1000},
			Duration:     int64(seconds * 1000),
			PixelFormat:  engine.PixelFormatNone,
			SampleFormat: engine.SampleFormatNone,
		})
		for ms := int64(0); ms < int64(seconds*1000); ms += 500 {
			all = append(all, timed{at: float64(ms) / 1000, pkt: PacketSpec{Stream: idx, PTS: ms, Key: true}})
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].at < all[j].at })
	for _, t := range all {
		m.Packets = append(m.Packets, t.pkt)
	}
	return m
}

// Count returns how many packets belong to stream.
func (m *Media) Count(stream int) int {
	n := 0
	for _, p := range m.Packets {
		if p.Stream == stream {
			n++
		}
	}
	return n
}

// Frames returns how many frames stream decodes to in total.
func (m *Media) Frames(stream int) int {
	n := 0
	for _, p := range m.Packets {
		if p.Stream == stream && !p.Corrupt {
			n += max(p.Frames, 1)
		}
	}
	return n
}
