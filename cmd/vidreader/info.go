package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/urfave/cli/v2"

	"github.com/obinnaokechukwu/vidreader"
)

func (rn *runner) infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "print stream geometry, timing and audio format",
		ArgsUsage: "<file>",
		Action:    rn.info,
	}
}

func (rn *runner) info(c *cli.Context) error {
	s, err := rn.session(c)
	if err != nil {
		return err
	}
	r, err := s.open(c)
	if err != nil {
		return err
	}
	defer r.Close()

	w := c.App.Writer
	printInfo(w, r)

	path := r.Path()
	if !isISOBMFF(path) {
		return nil
	}
	tracks, err := readMP4Tracks(path)
	if err != nil {
		s.log.Debug("mp4 track table unavailable", "path", path, "err", err)
		return nil
	}
	fmt.Fprintln(w)
	printMP4Tracks(w, tracks)
	return nil
}

func printInfo(w io.Writer, r *vidreader.Reader) {
	v := r.VideoStream()
	fmt.Fprintf(w, "file:      %s\n", r.Path())
	fmt.Fprintf(w, "video:     stream %d, %s, %dx%d\n", v.Index, v.CodecName, r.Width(), r.Height())
	fmt.Fprintf(w, "fps:       %.3f\n", r.FPS())
	fmt.Fprintf(w, "time base: %s\n", r.TimeBase())
	fmt.Fprintf(w, "duration:  %d ticks (%.3fs)\n", r.DurationTicks(), r.DurationSeconds())

	if a, ok := r.AudioStream(); ok {
		fmt.Fprintf(w, "audio:     stream %d, %s, %d Hz, %d ch -> s16 stereo\n", a.Index, a.CodecName, r.SampleRate(), a.Channels)
		return
	}
	if err := r.AudioErr(); err != nil {
		fmt.Fprintf(w, "audio:     disabled (%v)\n", err)
		return
	}
	fmt.Fprintln(w, "audio:     none")
}

func isISOBMFF(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".m4v", ".m4a", ".mov", ".3gp":
		return true
	}
	return false
}

// mp4Track is one row of the ISOBMFF track table.
type mp4Track struct {
	ID        uint32
	Handler   string
	Format    string
	Timescale uint32
	Duration  uint64
}

func readMP4Tracks(path string) ([]mp4Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeMP4Tracks(f)
}

func decodeMP4Tracks(r io.Reader) ([]mp4Track, error) {
	file, err := mp4.DecodeFile(r)
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}

	moov := file.Moov
	if moov == nil && file.Init != nil {
		moov = file.Init.Moov
	}
	if moov == nil {
		return nil, errors.New("no moov box")
	}

	var tracks []mp4Track
	for _, trak := range moov.Traks {
		t := mp4Track{}
		if trak.Tkhd != nil {
			t.ID = trak.Tkhd.TrackID
		}
		if trak.Mdia != nil {
			if trak.Mdia.Mdhd != nil {
				t.Timescale = trak.Mdia.Mdhd.Timescale
				t.Duration = trak.Mdia.Mdhd.Duration
			}
			if trak.Mdia.Hdlr != nil {
				t.Handler = trak.Mdia.Hdlr.HandlerType
			}
			if m := trak.Mdia.Minf; m != nil && m.Stbl != nil && m.Stbl.Stsd != nil && len(m.Stbl.Stsd.Children) > 0 {
				t.Format = m.Stbl.Stsd.Children[0].Type()
			}
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

func printMP4Tracks(w io.Writer, tracks []mp4Track) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRACK\tHANDLER\tFORMAT\tTIMESCALE\tDURATION")
	for _, t := range tracks {
		seconds := 0.0
		if t.Timescale > 0 {
			seconds = float64(t.Duration) / float64(t.Timescale)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d (%.3fs)\n", t.ID, t.Handler, t.Format, t.Timescale, t.Duration, seconds)
	}
	tw.Flush()
}
