package image

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrap(t *testing.T) {
	payload := bytes.Repeat([]byte("\x00asm applet "), 64)

	raw, err := Unwrap(payload)
	require.NoError(t, err)
	assert.Equal(t, payload, raw)

	frame := Compress(payload)
	assert.Less(t, len(frame), len(payload))
	raw, err = Unwrap(frame)
	require.NoError(t, err)
	assert.Equal(t, payload, raw)

	img, err := Build(Header{Name: "blink", Compressed: true}, frame, 256)
	require.NoError(t, err)
	raw, err = Unwrap(img)
	require.NoError(t, err)
	assert.Equal(t, payload, raw)
}

func TestDecompressRejectsGarbage(t *testing.T) {
	_, err := Decompress(append(append([]byte(nil), zstdMagic...), 0xFF, 0xFF, 0xFF))
	assert.Error(t, err)
}
