//go:build !tinygo

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boardlet/internal/image"
)

func TestRunBuildsVerifiableImage(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "applet.wasm")
	out := filepath.Join(dir, "applet.img")
	payload := bytes.Repeat([]byte{0, 'a', 's', 'm'}, 100)
	require.NoError(t, os.WriteFile(in, payload, 0o644))

	require.NoError(t, run(options{in: in, out: out, name: "blink", zstd: true, chunk: 64}))

	img, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Zero(t, len(img)%64)
	h, _, err := image.Parse(img)
	require.NoError(t, err)
	assert.Equal(t, "blink", h.Name)
	assert.True(t, h.Compressed)

	raw, err := image.Unwrap(img)
	require.NoError(t, err)
	assert.Equal(t, payload, raw)

	assert.NoError(t, run(options{in: out, inspect: true}))
}

func TestRunValidatesOptions(t *testing.T) {
	assert.Error(t, run(options{}))
	assert.Error(t, run(options{in: filepath.Join(t.TempDir(), "missing")}))
}
