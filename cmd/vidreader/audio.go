package main

import (
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/urfave/cli/v2"

	"github.com/obinnaokechukwu/vidreader"
)

var errNoAudio = errors.New("input has no audio stream")

func (rn *runner) audioCommand() *cli.Command {
	return &cli.Command{
		Name:      "audio",
		Usage:     "decode the audio track to a 16-bit stereo WAV file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "WAV file to write", Required: true},
			&cli.Float64Flag{Name: "limit-seconds", Usage: "stop after this many seconds, 0 for all"},
		},
		Action: rn.audio,
	}
}

func (rn *runner) audio(c *cli.Context) error {
	s, err := rn.session(c)
	if err != nil {
		return err
	}
	s.cfg.Audio = true

	r, err := s.open(c)
	if err != nil {
		return err
	}
	defer r.Close()

	out, err := os.Create(c.String("output"))
	if err != nil {
		return err
	}
	samples, err := exportAudio(r, out, c.Float64("limit-seconds"))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	s.log.Info("audio written", "file", c.String("output"), "samples", samples, "sample_rate", r.SampleRate())
	return nil
}

// exportAudio pulls PCM from r and encodes it as WAV into w. It returns
// the number of stereo samples written. The WAV header is finalized even
// when decoding stops on an error.
func exportAudio(r *vidreader.Reader, w io.WriteSeeker, limitSeconds float64) (total int, err error) {
	if !r.HasAudio() {
		if err := r.AudioErr(); err != nil {
			return 0, err
		}
		return 0, errNoAudio
	}

	channels := r.Channels()
	enc := wav.NewEncoder(w, r.SampleRate(), 16, channels, 1)
	defer func() {
		if cerr := enc.Close(); err == nil {
			err = cerr
		}
	}()
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: r.SampleRate()},
		SourceBitDepth: 16,
	}

	limit := int(limitSeconds * float64(r.SampleRate()))
	for limit <= 0 || total < limit {
		ok, err := r.ReadAudio()
		if err != nil {
			return total, err
		}
		if !ok {
			break
		}
		n := r.AudioSamples()
		if limit > 0 && total+n > limit {
			n = limit - total
		}
		buf.Data = appendPCM(buf.Data[:0], r.Audio()[:n*channels*2])
		if err := enc.Write(buf); err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// appendPCM appends little-endian signed 16-bit samples to dst.
func appendPCM(dst []int, pcm []byte) []int {
	for i := 0; i+1 < len(pcm); i += 2 {
		dst = append(dst, int(int16(binary.LittleEndian.Uint16(pcm[i:]))))
	}
	return dst
}
