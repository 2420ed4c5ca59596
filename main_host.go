//go:build !tinygo

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"boardlet/core/applet"
	"boardlet/core/applet/wasmer"
	"boardlet/core/sched"
	"boardlet/hal"
	"boardlet/internal/buildinfo"
	"boardlet/internal/config"
	"boardlet/internal/image"
	"boardlet/kernel"
)

func main() {
	fs := pflag.NewFlagSet("boardlet", pflag.ExitOnError)
	flags := config.BindFlags(fs)
	ticks := fs.Uint64("ticks", 0, "Stop after N ticks in headless mode (0 = run until the applet ends).")
	_ = fs.Parse(os.Args[1:])

	cfg, err := flags.Resolve()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	level, _ := cfg.Runner.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	os.Exit(exitCode(logger, run(cfg, *ticks, logger)))
}

func run(cfg *config.Config, ticks uint64, logger *slog.Logger) error {
	code, err := loadApplet(cfg.Runner.Applet)
	if err != nil {
		return err
	}
	queue, err := kernel.NewQueue(cfg.Board.Queue)
	if err != nil {
		return err
	}
	host, err := hal.NewHost(cfg.Board, logger, queue)
	if err != nil {
		return err
	}
	s := sched.New(host, queue, logger)
	logger.Info("boardlet starting",
		"version", buildinfo.String(),
		"board", cfg.Board.Name,
		"applet", cfg.Runner.Applet,
		"headless", cfg.Runner.Headless,
	)

	start := func(ctx context.Context) error {
		mod, err := wasmer.Load(code, s)
		if err != nil {
			return err
		}
		return s.Run(ctx, mod)
	}
	defer func() {
		p := s.Perf()
		logger.Info("perf", "platform_us", p.Platform, "applets_us", p.Applets, "waiting_us", p.Waiting,
			"dropped_events", queue.Drops())
	}()

	if cfg.Runner.Headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return hal.RunHeadless(ctx, host, hal.HeadlessConfig{Hz: cfg.Runner.Hz, Ticks: ticks}, start)
	}
	return hal.RunWindow(host, cfg.Runner.Hz, start)
}

// loadApplet reads a .wasm module, optionally zstd-compressed or wrapped in
// an update image.
func loadApplet(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("no applet given (use --applet)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read applet: %w", err)
	}
	return image.Unwrap(data)
}

// exitCode maps how the applet ended to the process exit status.
func exitCode(logger *slog.Logger, err error) int {
	if err == nil {
		return 0
	}
	var term *applet.Termination
	if !errors.As(err, &term) {
		logger.Error("boardlet failed", "error", err)
		return 1
	}
	switch term.Reason {
	case applet.ReasonExit:
		return int(term.Code & 0xFF)
	case applet.ReasonKill, applet.ReasonReboot:
		return 0
	default:
		return 1
	}
}
