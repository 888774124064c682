package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/olivier-w/spectty/internal/logger"
	"github.com/olivier-w/spectty/internal/media"
	"github.com/olivier-w/spectty/internal/player"
	"github.com/olivier-w/spectty/internal/ui"
	"github.com/olivier-w/spectty/internal/visualizer"
)

type options struct {
	transform string
	logLevel  string
	logFormat string
	help      bool
}

func main() {
	os.Exit(run(os.Args))
}

func parseFlags(args []string) (*pflag.FlagSet, options, error) {
	var opts options
	fs := pflag.NewFlagSet(filepath.Base(args[0]), pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {}
	fs.StringVar(&opts.transform, "transform", "fft", "spectrum transform: fft or radix2")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	fs.BoolVarP(&opts.help, "help", "h", false, "show this help")
	err := fs.Parse(args[1:])
	return fs, opts, err
}

func newLogger(opts options) (*slog.Logger, error) {
	cfg := logger.DefaultConfig()
	if opts.logLevel != "" {
		level, err := logger.ParseLevel(opts.logLevel)
		if err != nil {
			return nil, err
		}
		cfg.Level = level
	}
	switch opts.logFormat {
	case "text", "json":
		cfg.Format = opts.logFormat
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.logFormat)
	}
	return logger.NewLogger(cfg), nil
}

func run(args []string) int {
	fs, opts, err := parseFlags(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if opts.help {
		fmt.Fprint(os.Stderr, ui.Usage(fs.Name(), fs.FlagUsages()))
		return 0
	}
	log, err := newLogger(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	transform, ok := visualizer.TransformByName(opts.transform)
	if !ok {
		log.Error("unknown transform", "transform", opts.transform)
		return 2
	}

	if fs.NArg() < 1 {
		log.Info("No file name provided.")
		return 0
	}
	path := fs.Arg(0)

	info, err := os.Stat(path)
	if err != nil {
		log.Error("cannot open file", "path", path, "err", err)
		return 1
	}
	if info.IsDir() {
		log.Error("path is a directory", "path", path)
		return 1
	}
	if !media.IsSupportedPath(path) {
		log.Error("unsupported format", "path", path, "supported", media.SupportedExtsList())
		return 1
	}

	p, err := player.Open(path)
	if err != nil {
		log.Error("cannot start playback", "path", path, "err", err)
		return 1
	}
	defer func() {
		if err := p.Close(); err != nil {
			log.Warn("close player", "err", err)
		}
	}()
	log.Info("playing", "track", player.ReadMetadata(path),
		"sample_rate", p.SampleRate(), "channels", p.Channels())

	ring := visualizer.NewSampleRing(visualizer.DefaultWindow)
	channels := p.Channels()
	p.AttachProcessor(func(samples []float32, frames int) {
		ring.PushFrames(samples, frames, channels)
	})

	rows, cols, err := ui.TerminalSize(int(os.Stdout.Fd()))
	if err != nil {
		rows, cols = ui.DefaultRows, ui.DefaultCols
		log.Warn("using default geometry", "rows", rows, "cols", cols, "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := bufio.NewWriter(os.Stdout)
	loop := ui.NewLoop(ui.Config{
		Engine:   p,
		Ring:     ring,
		Spectrum: visualizer.NewSpectrum(transform, ring.Len()),
		Canvas:   visualizer.NewCanvas(rows, cols),
		Renderer: visualizer.NewRenderer(nil),
		Keys:     ui.NewKeyPoller(os.Stdin),
		Out:      out,
		Log:      log,
	})

	if err := p.Play(); err != nil {
		log.Error("cannot start playback", "err", err)
		return 1
	}
	if err := loop.Run(ctx); err != nil {
		log.Error("visualizer stopped", "err", err)
		return 1
	}
	log.Debug("done", "reason", loop.StopReason())
	return 0
}
