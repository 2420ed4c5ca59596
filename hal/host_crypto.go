//go:build !tinygo

package hal

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// hostCrypto implements every HashAlg in software.
type hostCrypto struct{}

func hashFactory(alg HashAlg) func() hash.Hash {
	switch alg {
	case HashSHA256:
		return sha256.New
	case HashSHA384:
		return sha512.New384
	case HashSHA3_256:
		return sha3.New256
	case HashBLAKE3:
		return func() hash.Hash { return blake3.New() }
	default:
		return nil
	}
}

func (hostCrypto) Supported() bool { return true }

func (hostCrypto) HashSupported(alg HashAlg) bool { return hashFactory(alg) != nil }

func (hostCrypto) NewHash(alg HashAlg) (hash.Hash, error) {
	f := hashFactory(alg)
	if f == nil {
		return nil, Errorf(SpaceUser, CodeInvalidArgument, "hash algorithm %d", alg)
	}
	return f(), nil
}

func (hostCrypto) NewHMAC(alg HashAlg, key []byte) (hash.Hash, error) {
	f := hashFactory(alg)
	if f == nil {
		return nil, Errorf(SpaceUser, CodeInvalidArgument, "hmac algorithm %d", alg)
	}
	return hmac.New(f, key), nil
}
