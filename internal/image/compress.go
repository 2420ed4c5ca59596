package image

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic opens every zstd frame.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// The encoder and decoder are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		panic("image: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(64<<20))
	if err != nil {
		panic("image: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress returns payload as a single zstd frame.
func Compress(payload []byte) []byte {
	return zstdEncoder.EncodeAll(payload, nil)
}

// Decompress inflates a zstd frame.
func Decompress(data []byte) ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("image: zstd: %w", err)
	}
	return out, nil
}

// Unwrap returns the raw payload carried by data, which may be an update
// image, a bare zstd frame or the payload itself.
func Unwrap(data []byte) ([]byte, error) {
	if h, payload, err := Parse(data); err == nil {
		if h.Compressed {
			return Decompress(payload)
		}
		return payload, nil
	}
	if bytes.HasPrefix(data, zstdMagic) {
		return Decompress(data)
	}
	return data, nil
}
