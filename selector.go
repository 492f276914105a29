package vidreader

import (
	"fmt"

	"github.com/obinnaokechukwu/vidreader/engine"
)

// track is one selected stream with its decoder and decode-loop state.
type track struct {
	info    engine.StreamInfo
	decoder engine.Decoder
	// draining is set once end of input was signalled to the decoder.
	draining bool
	// done is sticky until the next seek.
	done bool
}

func (t *track) reset() {
	t.decoder.Flush()
	t.draining = false
	t.done = false
}

func (t *track) close() error {
	if t.decoder == nil {
		return nil
	}
	err := t.decoder.Close()
	t.decoder = nil
	return err
}

// selectStreams picks the best video stream, which is mandatory, and the
// best audio stream, which is not, and opens their decoders.
func (r *Reader) selectStreams() error {
	streams := r.container.Streams()
	lookup := func(kind engine.MediaType) (engine.StreamInfo, bool) {
		idx := r.container.BestStream(kind)
		if idx < 0 || idx >= len(streams) {
			return engine.StreamInfo{}, false
		}
		return streams[idx], true
	}

	vinfo, ok := lookup(engine.MediaTypeVideo)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoVideoStream, r.path)
	}
	vdec, err := r.container.OpenDecoder(vinfo.Index)
	if err != nil {
		return fmt.Errorf("%w: video stream %d (%s): %w", ErrUnsupportedCodec, vinfo.Index, vinfo.CodecName, err)
	}
	r.video = &track{info: vinfo, decoder: vdec}

	if !r.opts.Audio {
		return nil
	}
	ainfo, ok := lookup(engine.MediaTypeAudio)
	if !ok {
		r.log.Debug("no audio stream")
		return nil
	}
	adec, err := r.container.OpenDecoder(ainfo.Index)
	if err != nil {
		r.disableAudio(fmt.Errorf("%w: audio stream %d (%s): %w", ErrUnsupportedCodec, ainfo.Index, ainfo.CodecName, err))
		return nil
	}
	r.audio = &track{info: ainfo, decoder: adec}
	return nil
}

// disableAudio drops the audio path and records why. The session keeps
// working video-only.
func (r *Reader) disableAudio(cause error) {
	r.audioErr = fmt.Errorf("%w: %w", ErrDegradedAudio, cause)
	r.log.Warn("audio disabled", "err", cause)

	if r.resampler != nil {
		if err := r.resampler.Close(); err != nil {
			r.log.Debug("close resampler", "err", err)
		}
		r.resampler = nil
	}
	if r.audio != nil {
		if err := r.audio.close(); err != nil {
			r.log.Debug("close audio decoder", "err", err)
		}
		r.audio = nil
	}
	r.outAudio = engine.AudioFormat{}
}
