//go:build !tinygo

// Command mkimage wraps a payload into an update image for the platform
// update protocol, or inspects an existing image.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"boardlet/internal/image"
)

const defaultChunk = 256

type options struct {
	in, out       string
	name, version string
	zstd          bool
	chunk         int
	inspect       bool
}

func main() {
	var o options
	fs := pflag.NewFlagSet("mkimage", pflag.ExitOnError)
	fs.StringVar(&o.in, "in", "", "Payload to wrap, or image to inspect.")
	fs.StringVar(&o.out, "out", "", "Output image path.")
	fs.StringVar(&o.name, "name", "", "Payload name recorded in the header.")
	fs.StringVar(&o.version, "version", "", "Payload version recorded in the header.")
	fs.BoolVar(&o.zstd, "zstd", false, "Compress the payload with zstd.")
	fs.IntVar(&o.chunk, "chunk", defaultChunk, "Pad the image to a multiple of this many bytes.")
	fs.BoolVar(&o.inspect, "inspect", false, "Verify --in and print its header instead of building.")
	_ = fs.Parse(os.Args[1:])

	if err := run(o); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(o options) error {
	if o.in == "" {
		return errors.New("--in is required")
	}
	data, err := os.ReadFile(o.in)
	if err != nil {
		return err
	}
	if o.inspect {
		h, payload, err := image.Parse(data)
		if err != nil {
			return err
		}
		fmt.Printf("name=%q version=%q size=%d compressed=%t digest=%x overhead=%d\n",
			h.Name, h.Version, h.Size, h.Compressed, h.Digest, len(data)-len(payload))
		return nil
	}

	if o.out == "" {
		return errors.New("--out is required")
	}
	if o.chunk < 0 {
		return fmt.Errorf("--chunk must not be negative, got %d", o.chunk)
	}
	payload := data
	if o.zstd {
		payload = image.Compress(data)
	}
	img, err := image.Build(image.Header{Name: o.name, Version: o.version, Compressed: o.zstd}, payload, o.chunk)
	if err != nil {
		return err
	}
	if err := os.WriteFile(o.out, img, 0o644); err != nil {
		return fmt.Errorf("write image %q: %w", o.out, err)
	}
	fmt.Printf("%s: %d bytes (payload %d)\n", o.out, len(img), len(payload))
	return nil
}
