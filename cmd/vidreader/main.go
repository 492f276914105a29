// Command vidreader inspects media files and pulls frames and audio out of
// them.
//
// Usage:
//
//	vidreader info <file>
//	vidreader frames -o dir [--every N] [--limit N] [--format png|bmp|jpeg] <file>
//	vidreader audio -o out.wav [--limit-seconds S] <file>
//	vidreader seek --forward S | --backward S | --stop start|end <file>
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/obinnaokechukwu/vidreader"
	"github.com/obinnaokechukwu/vidreader/config"
	"github.com/obinnaokechukwu/vidreader/engine"
)

var version = "dev"

func main() {
	if err := newApp(nil).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "vidreader: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the command tree. A nil eng selects the FFmpeg engine.
func newApp(eng engine.Engine) *cli.App {
	rn := &runner{eng: eng}
	return &cli.App{
		Name:    "vidreader",
		Usage:   "pull decoded video frames and audio out of media files",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				EnvVars: []string{"VIDREADER_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.BoolFlag{
				Name:  "no-audio",
				Usage: "do not decode audio",
			},
		},
		Commands: []*cli.Command{
			rn.infoCommand(),
			rn.framesCommand(),
			rn.audioCommand(),
			rn.seekCommand(),
		},
	}
}

type runner struct {
	eng engine.Engine
}

// session is the per-invocation state shared by every command.
type session struct {
	cfg config.Config
	log *slog.Logger
	eng engine.Engine
}

func (rn *runner) session(c *cli.Context) (*session, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return nil, err
		}
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.Bool("no-audio") {
		cfg.Audio = false
	}

	level, err := vidreader.ParseSlogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))
	return &session{cfg: cfg, log: logger, eng: rn.eng}, nil
}

// open opens the file named by the first argument.
func (s *session) open(c *cli.Context, extra ...vidreader.Option) (*vidreader.Reader, error) {
	path := c.Args().First()
	if path == "" {
		return nil, cli.Exit(fmt.Sprintf("usage: %s %s %s", c.App.Name, c.Command.Name, c.Command.ArgsUsage), 2)
	}
	opts, err := s.cfg.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, vidreader.WithLogger(s.log))
	if s.eng != nil {
		opts = append(opts, vidreader.WithEngine(s.eng))
	}
	return vidreader.Open(path, append(opts, extra...)...)
}
