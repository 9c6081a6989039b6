package crypto

import (
	"errors"
	"fmt"
)

// Key format errors.
var (
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrInvalidPublicKey  = errors.New("invalid public key")
)

// SEC prefix bytes.
const (
	secCompressedEven = 0x02
	secCompressedOdd  = 0x03
	secUncompressed   = 0x04

	// PubKeyBytesLenCompressed is the length of a compressed SEC public key.
	PubKeyBytesLenCompressed = 33
	// PubKeyBytesLenUncompressed is the length of an uncompressed SEC public key.
	PubKeyBytesLenUncompressed = 65
)

// PrivateKey is a secp256k1 secret: exactly 32 bytes, read as a big-endian
// scalar in [1, n-1].
type PrivateKey struct {
	raw    [32]byte
	secret Scalar
}

// PublicKey is the curve point d*G for a private key d.
type PublicKey struct {
	point Point
}

// NewPrivateKey creates a private key from its 32-byte big-endian encoding.
func NewPrivateKey(keyBytes [32]byte) (*PrivateKey, error) {
	secret, overflow := NewScalar(keyBytes)
	if overflow {
		return nil, fmt.Errorf("%w: value not below the group order", ErrInvalidPrivateKey)
	}
	if secret.IsZero() {
		return nil, fmt.Errorf("%w: value is zero", ErrInvalidPrivateKey)
	}
	return &PrivateKey{raw: keyBytes, secret: secret}, nil
}

// PrivateKeyFromBytes creates a private key from raw bytes
func PrivateKeyFromBytes(keyBytes []byte) (*PrivateKey, error) {
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("%w: must be 32 bytes, got %d", ErrInvalidPrivateKey, len(keyBytes))
	}
	return NewPrivateKey([32]byte(keyBytes))
}

// Bytes returns the raw 32-byte private key
func (pk *PrivateKey) Bytes() [32]byte {
	return pk.raw
}

// Scalar returns the private key as a scalar.
func (pk *PrivateKey) Scalar() Scalar {
	return pk.secret
}

// PublicKey derives the public key
func (pk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{point: ScalarBaseMult(pk.secret)}
}

// NewPublicKey wraps a curve point as a public key. The point is trusted:
// curve membership is checked by Verify, not here.
func NewPublicKey(point Point) *PublicKey {
	return &PublicKey{point: point}
}

// Point returns the public key's curve point.
func (pub *PublicKey) Point() Point {
	return pub.point
}

// SerializeCompressed returns the 33-byte SEC encoding:
// 0x02 (even y) or 0x03 (odd y) followed by the 32-byte big-endian x.
func (pub *PublicKey) SerializeCompressed() [33]byte {
	x, y := pub.point.Affine()

	var result [33]byte
	result[0] = secCompressedEven
	if y.IsOdd() {
		result[0] = secCompressedOdd
	}
	xBytes := x.Bytes()
	copy(result[1:], xBytes[:])
	return result
}

// SerializeUncompressed returns the 65-byte SEC encoding:
// 0x04 followed by the 32-byte big-endian x and y.
func (pub *PublicKey) SerializeUncompressed() [65]byte {
	x, y := pub.point.Affine()
	xBytes, yBytes := x.Bytes(), y.Bytes()

	var result [65]byte
	result[0] = secUncompressed
	copy(result[1:33], xBytes[:])
	copy(result[33:], yBytes[:])
	return result
}

// Bytes returns the compressed public key bytes
func (pub *PublicKey) Bytes() []byte {
	b := pub.SerializeCompressed()
	return b[:]
}

// ParsePublicKey parses a compressed (33-byte) or uncompressed (65-byte) SEC
// public key. The result is guaranteed to lie on the curve.
func ParsePublicKey(pubKeyBytes []byte) (*PublicKey, error) {
	switch len(pubKeyBytes) {
	case PubKeyBytesLenCompressed:
		prefix := pubKeyBytes[0]
		if prefix != secCompressedEven && prefix != secCompressedOdd {
			return nil, fmt.Errorf("%w: compressed prefix 0x%02x", ErrInvalidPublicKey, prefix)
		}
		x, overflow := NewFieldElement([32]byte(pubKeyBytes[1:]))
		if overflow {
			return nil, fmt.Errorf("%w: x not below the field prime", ErrInvalidPublicKey)
		}
		y, ok := decompressY(x, prefix == secCompressedOdd)
		if !ok {
			return nil, fmt.Errorf("%w: x is not on the curve", ErrInvalidPublicKey)
		}
		return &PublicKey{point: NewPoint(x, y)}, nil

	case PubKeyBytesLenUncompressed:
		if pubKeyBytes[0] != secUncompressed {
			return nil, fmt.Errorf("%w: uncompressed prefix 0x%02x", ErrInvalidPublicKey, pubKeyBytes[0])
		}
		x, xOverflow := NewFieldElement([32]byte(pubKeyBytes[1:33]))
		y, yOverflow := NewFieldElement([32]byte(pubKeyBytes[33:]))
		if xOverflow || yOverflow {
			return nil, fmt.Errorf("%w: coordinate not below the field prime", ErrInvalidPublicKey)
		}
		point := NewPoint(x, y)
		if !point.IsOnCurve() {
			return nil, fmt.Errorf("%w: point is not on the curve", ErrInvalidPublicKey)
		}
		return &PublicKey{point: point}, nil

	default:
		return nil, fmt.Errorf("%w: length %d, want %d or %d", ErrInvalidPublicKey,
			len(pubKeyBytes), PubKeyBytesLenCompressed, PubKeyBytesLenUncompressed)
	}
}

// IsEqual reports whether both keys are the same point.
func (pub *PublicKey) IsEqual(other *PublicKey) bool {
	return pub.point.Equals(other.point)
}
