package vidreader

import (
	"errors"
	"io"

	"github.com/obinnaokechukwu/vidreader/engine"
)

// ReadFrame decodes the next video frame into the RGB buffer. It returns
// false with a nil error at end of stream, and keeps doing so until the
// next seek.
func (r *Reader) ReadFrame() (bool, error) {
	if !r.valid() {
		return false, ErrInvalidSession
	}
	f := r.next(r.video)
	if f == nil {
		return false, nil
	}
	if err := r.convertVideo(f); err != nil {
		return false, err
	}
	r.pts = f.PTS()
	r.haveFrame = true
	return true, nil
}

// ReadAudio decodes the next audio frame into the PCM buffer. Every frame
// a packet decodes to is delivered by its own call; frames that resample
// to no samples are skipped. Without audio it always returns false.
func (r *Reader) ReadAudio() (bool, error) {
	if !r.valid() {
		return false, ErrInvalidSession
	}
	if r.audio == nil {
		return false, nil
	}
	for {
		f := r.next(r.audio)
		if f == nil {
			r.pcm.size = 0
			return false, nil
		}
		n, err := r.convertAudio(f)
		if err != nil {
			return false, err
		}
		if n > 0 {
			r.audioPTS = f.PTS()
			return true, nil
		}
		r.log.Debug("skip empty audio frame", "stream", r.audio.info.Index, "pts", f.PTS())
	}
}

// next returns the next decoded frame of t, or nil at end of stream.
//
// Frames the decoder already holds are taken first; only then is the
// shared demux cursor advanced. Packets of other streams are discarded.
// At end of input the decoder is drained so buffered frames still come
// out.
func (r *Reader) next(t *track) engine.Frame {
	if t.done {
		return nil
	}
	for {
		f, err := t.decoder.ReceiveFrame()
		switch {
		case err == nil:
			return f
		case errors.Is(err, io.EOF):
			t.done = true
			return nil
		case errors.Is(err, engine.ErrAgain):
		default:
			r.log.Debug("decode error", "stream", t.info.Index, "err", err)
		}
		if t.draining {
			t.done = true
			return nil
		}

		pkt, err := r.container.ReadPacket()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.log.Warn("read packet", "stream", t.info.Index, "err", err)
			}
			r.drain(t)
			continue
		}
		if pkt.StreamIndex() != t.info.Index {
			pkt.Release()
			continue
		}
		err = t.decoder.SendPacket(pkt)
		pkt.Release()
		if err != nil && !errors.Is(err, engine.ErrAgain) {
			r.log.Debug("skip undecodable packet", "stream", t.info.Index, "err", err)
		}
	}
}

func (r *Reader) drain(t *track) {
	t.draining = true
	if err := t.decoder.SendPacket(nil); err != nil && !errors.Is(err, io.EOF) {
		r.log.Debug("drain decoder", "stream", t.info.Index, "err", err)
	}
}
