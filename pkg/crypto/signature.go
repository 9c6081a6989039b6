package crypto

import (
	"errors"
	"fmt"
)

// ErrMalformedSignature is returned when DER signature bytes cannot be decoded.
var ErrMalformedSignature = errors.New("malformed DER signature")

// ASN.1 tags used by the signature encoding.
const (
	asn1SequenceID = 0x30
	asn1IntegerID  = 0x02

	// minSigLen is 30 06 02 01 r 02 01 s.
	minSigLen = 8
	// maxSigLen is 30 46 02 21 00 r[32] 02 21 00 s[32].
	maxSigLen = 72
)

// Signature is an ECDSA signature (r, s).
type Signature struct {
	R Scalar
	S Scalar
}

// NewSignature creates a signature from its two scalars.
func NewSignature(r, s Scalar) *Signature {
	return &Signature{R: r, S: s}
}

// Serialize returns the DER encoding
//
//	0x30 <total-len> 0x02 <len(r)> r 0x02 <len(s)> s
//
// where r and s use the minimal signed-integer form of EncodeDERInteger.
func (sig *Signature) Serialize() []byte {
	rEnc := EncodeDERInteger(sig.R.Bytes())
	sEnc := EncodeDERInteger(sig.S.Bytes())
	total := 2 + len(rEnc) + len(sEnc)

	out := make([]byte, 0, 2+total)
	out = append(out, asn1SequenceID, byte(total))
	out = append(out, asn1IntegerID)
	out = append(out, rEnc...)
	out = append(out, asn1IntegerID)
	out = append(out, sEnc...)
	return out
}

// IsEqual reports whether both signatures have the same r and s.
func (sig *Signature) IsEqual(other *Signature) bool {
	return sig.R.Equals(other.R) && sig.S.Equals(other.S)
}

// ParseDERSignature strictly decodes a DER signature. r and s must be minimal
// non-negative integers in [1, n-1] and no bytes may follow the sequence.
func ParseDERSignature(sig []byte) (*Signature, error) {
	if len(sig) < minSigLen {
		return nil, fmt.Errorf("%w: too short (%d bytes)", ErrMalformedSignature, len(sig))
	}
	if len(sig) > maxSigLen {
		return nil, fmt.Errorf("%w: too long (%d bytes)", ErrMalformedSignature, len(sig))
	}
	if sig[0] != asn1SequenceID {
		return nil, fmt.Errorf("%w: sequence tag 0x%02x", ErrMalformedSignature, sig[0])
	}
	if int(sig[1]) != len(sig)-2 {
		return nil, fmt.Errorf("%w: sequence length %d, have %d bytes", ErrMalformedSignature, sig[1], len(sig)-2)
	}

	offset := 2
	r, n, err := parseSignatureInteger(sig[offset:], "r")
	if err != nil {
		return nil, err
	}
	offset += n

	s, n, err := parseSignatureInteger(sig[offset:], "s")
	if err != nil {
		return nil, err
	}
	offset += n

	if offset != len(sig) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformedSignature, len(sig)-offset)
	}

	return NewSignature(r, s), nil
}

// parseSignatureInteger reads 0x02 <len> <value> and checks the value is in
// [1, n-1].
func parseSignatureInteger(data []byte, name string) (Scalar, int, error) {
	if len(data) < 1 || data[0] != asn1IntegerID {
		return Scalar{}, 0, fmt.Errorf("%w: missing integer tag for %s", ErrMalformedSignature, name)
	}

	value, n, err := ParseDERInteger(data[1:])
	if err != nil {
		return Scalar{}, 0, fmt.Errorf("%w: %s: %w", ErrMalformedSignature, name, err)
	}

	scalar, overflow := NewScalar(value)
	if overflow {
		return Scalar{}, 0, fmt.Errorf("%w: %s not below the group order", ErrMalformedSignature, name)
	}
	if scalar.IsZero() {
		return Scalar{}, 0, fmt.Errorf("%w: %s is zero", ErrMalformedSignature, name)
	}
	return scalar, 1 + n, nil
}
