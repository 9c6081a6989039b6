package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// NonceSource supplies the per-signature secret k used by Sign.
//
// Implementations should return scalars uniformly distributed in [0, n).
// Sign rejects and redraws zero or otherwise unusable nonces.
type NonceSource interface {
	Nonce() (Scalar, error)
}

// NonceSourceFunc adapts a function to the NonceSource interface.
type NonceSourceFunc func() (Scalar, error)

// Nonce calls f.
func (f NonceSourceFunc) Nonce() (Scalar, error) {
	return f()
}

// RandomNonceSource draws nonces from Rand, or from crypto/rand when Rand is
// nil. Values at or above n are rejected and redrawn.
//
// RandomNonceSource is safe for concurrent use if Rand is.
type RandomNonceSource struct {
	Rand io.Reader
}

// Nonce returns a uniformly random scalar in [1, n-1].
func (s RandomNonceSource) Nonce() (Scalar, error) {
	reader := s.Rand
	if reader == nil {
		reader = rand.Reader
	}

	key, err := secp256k1.GeneratePrivateKeyFromRand(reader)
	if err != nil {
		return Scalar{}, fmt.Errorf("reading random nonce: %w", err)
	}
	k := Scalar{v: key.Key}
	key.Zero()
	return k, nil
}

// FixedNonceSource returns the given nonces in order and then fails. It is
// intended for reproducing known signature vectors.
func FixedNonceSource(nonces ...Scalar) NonceSource {
	next := 0
	return NonceSourceFunc(func() (Scalar, error) {
		if next >= len(nonces) {
			return Scalar{}, fmt.Errorf("fixed nonce source exhausted after %d nonces", len(nonces))
		}
		k := nonces[next]
		next++
		return k, nil
	})
}
