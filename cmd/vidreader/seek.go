package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/obinnaokechukwu/vidreader"
)

func (rn *runner) seekCommand() *cli.Command {
	return &cli.Command{
		Name:      "seek",
		Usage:     "seek, decode one frame and print where it landed",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "skip", Usage: "frames to read before seeking"},
			&cli.Float64Flag{Name: "forward", Usage: "seek forward by seconds"},
			&cli.Float64Flag{Name: "backward", Usage: "seek backward by seconds"},
			&cli.StringFlag{Name: "stop", Usage: "start or end"},
		},
		Action: rn.seek,
	}
}

func parseStopMode(s string) (vidreader.StopMode, error) {
	switch strings.ToLower(s) {
	case "start", "0":
		return vidreader.StopStart, nil
	case "end", "1":
		return vidreader.StopEnd, nil
	}
	return 0, fmt.Errorf("unknown stop mode %q, want start or end", s)
}

func (rn *runner) seek(c *cli.Context) error {
	s, err := rn.session(c)
	if err != nil {
		return err
	}
	r, err := s.open(c, vidreader.WithoutAudio())
	if err != nil {
		return err
	}
	defer r.Close()

	for i := 0; i < c.Int("skip"); i++ {
		ok, err := r.ReadFrame()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	from := r.PTS()

	switch {
	case c.IsSet("stop"):
		mode, err := parseStopMode(c.String("stop"))
		if err != nil {
			return err
		}
		if err := r.Stop(mode); err != nil {
			return err
		}
	case c.IsSet("forward"):
		if err := r.SeekForward(c.Float64("forward")); err != nil {
			return err
		}
	case c.IsSet("backward"):
		if err := r.SeekBackward(c.Float64("backward")); err != nil {
			return err
		}
	default:
		return cli.Exit("one of --forward, --backward or --stop is required", 2)
	}
	target := r.PTS()

	ok, err := r.ReadFrame()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(c.App.Writer, "from %.3fs target %.3fs: end of stream\n", from, target)
		return nil
	}
	fmt.Fprintf(c.App.Writer, "from %.3fs target %.3fs landed %.3fs\n", from, target, r.PTS())
	return nil
}
