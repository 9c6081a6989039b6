package crypto

import (
	"errors"
	"fmt"
)

// MaxSignAttempts bounds the number of nonces Sign draws before giving up.
// Each redraw happens only when k, r or s is zero, which a working nonce
// source hits with negligible probability.
const MaxSignAttempts = 64

// ErrNonceExhausted is returned by Sign when MaxSignAttempts nonces in a row
// were unusable.
var ErrNonceExhausted = errors.New("no usable nonce after maximum attempts")

// Sign produces an ECDSA signature over a 32-byte message digest.
//
// The algorithm is the textbook one:
//
//  1. Draw k from nonces; redraw if k = 0
//  2. R = k*G, r = R.x mod n; redraw if r = 0
//  3. s = k^-1 (z + r*d) mod n; redraw if s = 0
//  4. Return (r, s)
//
// where z is the digest reduced mod n and d the private key. s is not
// normalised to the lower half of the order. If nonces is nil, a
// RandomNonceSource backed by crypto/rand is used.
func Sign(digest [32]byte, key *PrivateKey, nonces NonceSource) (*Signature, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: nil key", ErrInvalidPrivateKey)
	}
	if nonces == nil {
		nonces = RandomNonceSource{}
	}

	z := ScalarFromDigest(digest)
	for attempt := 0; attempt < MaxSignAttempts; attempt++ {
		k, err := nonces.Nonce()
		if err != nil {
			return nil, fmt.Errorf("drawing nonce (attempt %d): %w", attempt+1, err)
		}
		if k.IsZero() {
			continue
		}

		x, _ := ScalarBaseMult(k).Affine()
		r := x.toScalar()
		if r.IsZero() {
			continue
		}

		s := k.Inverse().Mul(z.Add(r.Mul(key.secret)))
		if s.IsZero() {
			continue
		}

		return NewSignature(r, s), nil
	}

	return nil, ErrNonceExhausted
}

// Verify reports whether sig is a valid signature of digest under pub.
//
// Any malformed input yields false: a nil argument, the identity as public
// key, a point off the curve or not of order n, and r or s equal to zero.
// Otherwise, with w = s^-1 mod n, the signature is valid iff
// (z*w)*G + (r*w)*pub has x-coordinate congruent to r mod n.
func Verify(digest [32]byte, sig *Signature, pub *PublicKey) bool {
	if sig == nil || pub == nil {
		return false
	}

	q := pub.point
	if q.IsIdentity() || !q.IsOnCurve() || !q.HasCurveOrder() {
		return false
	}
	if sig.R.IsZero() || sig.S.IsZero() {
		return false
	}

	z := ScalarFromDigest(digest)
	w := sig.S.Inverse()
	u := z.Mul(w)
	v := sig.R.Mul(w)

	rPrime := ScalarBaseMult(u).Add(ScalarMult(v, q))
	if rPrime.IsIdentity() {
		return false
	}

	x, _ := rPrime.Affine()
	return x.toScalar().Equals(sig.R)
}
