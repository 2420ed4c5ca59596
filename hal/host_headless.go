//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Hz int
	// Ticks stops the run after that many ticks. Zero runs until the applet
	// ends or ctx is cancelled.
	Ticks uint64
}

// RunHeadless runs the applet without opening a window. Every tick flushes
// the USB serial output.
func RunHeadless(ctx context.Context, h *Host, cfg HeadlessConfig, run func(context.Context) error) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case err := <-done:
			_ = h.usb.Flush()
			return err
		case <-ctx.Done():
			err := <-done
			_ = h.usb.Flush()
			return err
		case <-t.C:
			_ = h.usb.Flush()
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				cancel()
			}
		}
	}
}
