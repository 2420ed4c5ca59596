package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPadsToChunk(t *testing.T) {
	payload := []byte("hello applet")
	img, err := Build(Header{Name: "demo", Version: "1.0"}, payload, 64)
	require.NoError(t, err)
	assert.Zero(t, len(img)%64)

	h, got, err := Parse(img)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, "demo", h.Name)
	assert.Equal(t, uint32(len(payload)), h.Size)
}

func TestParseRejectsTampering(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	img, err := Build(Header{}, payload, 0)
	require.NoError(t, err)

	bad := append([]byte(nil), img...)
	bad[len(bad)-1] ^= 0x01
	_, _, err = Parse(bad)
	assert.ErrorIs(t, err, ErrDigest)

	_, _, err = Parse(img[:len(img)-1])
	assert.ErrorIs(t, err, ErrSize)

	padded := append(append([]byte(nil), img...), 0x00)
	_, _, err = Parse(padded)
	assert.ErrorIs(t, err, ErrSize)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, _, err := Parse([]byte{0xFF, 0xFF, 0xFF})
	assert.Error(t, err)
}
