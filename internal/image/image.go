// Package image is the container format accepted by the platform update
// protocol: a CBOR header followed by the payload, padded with 0xFF to a
// whole number of chunks.
package image

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"

	"boardlet/internal/codec"
)

// Magic opens every image header.
const Magic = "BLET"

var (
	ErrMagic  = errors.New("image: bad magic")
	ErrSize   = errors.New("image: payload size mismatch")
	ErrDigest = errors.New("image: digest mismatch")
)

// Header describes the payload that follows it.
type Header struct {
	Magic   string   `cbor:"1,keyasint"`
	Name    string   `cbor:"2,keyasint,omitempty"`
	Version string   `cbor:"3,keyasint,omitempty"`
	Size    uint32   `cbor:"4,keyasint"`
	Digest  [32]byte `cbor:"5,keyasint"`
	// Compressed is true when the payload is zstd-compressed.
	Compressed bool `cbor:"6,keyasint,omitempty"`
}

// Digest is the BLAKE3-256 hash of payload.
func Digest(payload []byte) [32]byte {
	return blake3.Sum256(payload)
}

// Build wraps payload into an image. When chunk is positive the result is
// padded with 0xFF to a multiple of chunk bytes.
func Build(h Header, payload []byte, chunk int) ([]byte, error) {
	if len(payload) > int(^uint32(0)) {
		return nil, fmt.Errorf("image: payload of %d bytes too large", len(payload))
	}
	h.Magic = Magic
	h.Size = uint32(len(payload))
	h.Digest = Digest(payload)
	head, err := codec.Marshal(&h)
	if err != nil {
		return nil, fmt.Errorf("image: encode header: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(head) + len(payload) + chunk)
	buf.Write(head)
	buf.Write(payload)
	if chunk > 0 {
		if rem := buf.Len() % chunk; rem != 0 {
			buf.Write(bytes.Repeat([]byte{0xFF}, chunk-rem))
		}
	}
	return buf.Bytes(), nil
}

// Parse decodes and verifies an image. Trailing bytes after the payload must
// all be 0xFF padding.
func Parse(data []byte) (Header, []byte, error) {
	var h Header
	rest, err := codec.UnmarshalFirst(data, &h)
	if err != nil {
		return Header{}, nil, fmt.Errorf("image: decode header: %w", err)
	}
	if h.Magic != Magic {
		return Header{}, nil, ErrMagic
	}
	if uint64(h.Size) > uint64(len(rest)) {
		return Header{}, nil, fmt.Errorf("%w: header says %d, have %d", ErrSize, h.Size, len(rest))
	}
	payload, pad := rest[:h.Size], rest[h.Size:]
	for _, b := range pad {
		if b != 0xFF {
			return Header{}, nil, fmt.Errorf("%w: non-padding byte after payload", ErrSize)
		}
	}
	if Digest(payload) != h.Digest {
		return Header{}, nil, ErrDigest
	}
	return h, payload, nil
}
