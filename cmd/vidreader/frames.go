package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/obinnaokechukwu/vidreader"
)

func (rn *runner) framesCommand() *cli.Command {
	return &cli.Command{
		Name:      "frames",
		Usage:     "write decoded video frames as images",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output directory"},
			&cli.IntFlag{Name: "every", Usage: "keep every Nth frame"},
			&cli.IntFlag{Name: "limit", Usage: "stop after N images, 0 for all"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "png, bmp or jpeg"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: "image encoding workers"},
			&cli.Float64Flag{Name: "start", Usage: "start position in seconds"},
		},
		Action: rn.frames,
	}
}

type frameOptions struct {
	dir     string
	format  string
	every   int
	limit   int
	workers int
	start   float64
}

func (rn *runner) frames(c *cli.Context) error {
	s, err := rn.session(c)
	if err != nil {
		return err
	}
	if c.IsSet("output") {
		s.cfg.Frames.OutputDir = c.String("output")
	}
	if c.IsSet("every") {
		s.cfg.Frames.Every = c.Int("every")
	}
	if c.IsSet("limit") {
		s.cfg.Frames.Limit = c.Int("limit")
	}
	if c.IsSet("format") {
		s.cfg.Frames.Format = c.String("format")
	}
	if c.IsSet("workers") {
		s.cfg.Frames.Workers = c.Int("workers")
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	r, err := s.open(c, vidreader.WithoutAudio())
	if err != nil {
		return err
	}
	defer r.Close()

	opts := frameOptions{
		dir:     s.cfg.Frames.OutputDir,
		format:  s.cfg.Frames.Format,
		every:   s.cfg.Frames.Every,
		limit:   s.cfg.Frames.Limit,
		workers: s.cfg.Frames.Workers,
		start:   c.Float64("start"),
	}
	p := newProgress(c.App.ErrWriter)
	pool := newImagePool(r.Width(), r.Height())
	n, err := exportFrames(c.Context, r, opts, pool, func(n int, pts float64) {
		p.update("%d frames, %.2fs", n, pts)
	})
	p.done()
	if err != nil {
		return err
	}
	s.log.Info("frames written", "count", n, "dir", opts.dir, "format", opts.format, "images", pool.allocations())
	return nil
}

type frameJob struct {
	index int
	pts   float64
	img   *image.RGBA
}

// exportFrames decodes on one goroutine and encodes images on
// opts.workers goroutines. The reader is only touched by the decoder;
// images travel through pool.
func exportFrames(ctx context.Context, r *vidreader.Reader, opts frameOptions, pool *imagePool, onFrame func(n int, pts float64)) (int, error) {
	if err := os.MkdirAll(opts.dir, 0o755); err != nil {
		return 0, err
	}
	if opts.start > 0 {
		if err := r.SeekTo(opts.start); err != nil {
			return 0, err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan frameJob, opts.workers)
	var written atomic.Int64

	g.Go(func() error {
		defer close(jobs)
		n := 0
		for i := 0; opts.limit == 0 || n < opts.limit; i++ {
			ok, err := r.ReadFrame()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if i%opts.every != 0 {
				continue
			}
			img := pool.get()
			r.ImageInto(img)
			job := frameJob{index: n, pts: r.PTS(), img: img}
			n++
			select {
			case jobs <- job:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < opts.workers; w++ {
		g.Go(func() error {
			for job := range jobs {
				err := writeFrame(opts.dir, opts.format, job)
				pool.put(job.img)
				if err != nil {
					return err
				}
				n := written.Add(1)
				if onFrame != nil {
					onFrame(int(n), job.pts)
				}
			}
			return nil
		})
	}

	err := g.Wait()
	return int(written.Load()), err
}

func frameName(index int, format string) string {
	ext := format
	if ext == "jpeg" {
		ext = "jpg"
	}
	return fmt.Sprintf("frame_%06d.%s", index, ext)
}

func writeFrame(dir, format string, job frameJob) error {
	path := filepath.Join(dir, frameName(job.index, format))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := vidreader.EncodeImage(f, job.img, format); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
