// Package crypto implements secp256k1 ECDSA and the byte encodings of its
// keys and signatures.
//
// Field, scalar and group arithmetic come from
// github.com/decred/dcrd/dcrec/secp256k1/v4. This file is the only place that
// touches those types directly; everything else in the module works with
// Scalar, FieldElement and Point.
//
// Curve parameters:
//   - p = 2^256 - 2^32 - 977 (base field)
//   - n = 0xfffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141 (group order)
//   - y^2 = x^3 + 7, cofactor 1
package crypto

import (
	"encoding/binary"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Scalar is an integer modulo the group order n.
type Scalar struct {
	v secp256k1.ModNScalar
}

// NewScalar interprets b as a big-endian integer and reduces it modulo n.
// overflow reports whether b was >= n.
func NewScalar(b [32]byte) (s Scalar, overflow bool) {
	overflow = s.v.SetBytes(&b) != 0
	return s, overflow
}

// ScalarFromDigest reduces a 32-byte message digest modulo n.
func ScalarFromDigest(digest [32]byte) Scalar {
	s, _ := NewScalar(digest)
	return s
}

// ScalarFromUint64 returns v as a scalar.
func ScalarFromUint64(v uint64) Scalar {
	var b [32]byte
	binary.BigEndian.PutUint64(b[24:], v)
	s, _ := NewScalar(b)
	return s
}

// Add returns s + o mod n.
func (s Scalar) Add(o Scalar) Scalar {
	var r Scalar
	r.v.Add2(&s.v, &o.v)
	return r
}

// Mul returns s * o mod n.
func (s Scalar) Mul(o Scalar) Scalar {
	var r Scalar
	r.v.Mul2(&s.v, &o.v)
	return r
}

// Negate returns -s mod n.
func (s Scalar) Negate() Scalar {
	var r Scalar
	r.v.NegateVal(&s.v)
	return r
}

// Inverse returns s^-1 mod n. The inverse of zero is zero.
func (s Scalar) Inverse() Scalar {
	var r Scalar
	r.v.InverseValNonConst(&s.v)
	return r
}

// IsZero reports whether s is zero.
func (s Scalar) IsZero() bool {
	return s.v.IsZero()
}

// Equals reports whether s and o are the same scalar.
func (s Scalar) Equals(o Scalar) bool {
	return s.v.Equals(&o.v)
}

// Bytes returns the 32-byte big-endian representative of s.
func (s Scalar) Bytes() [32]byte {
	return s.v.Bytes()
}

// FieldElement is an integer modulo the base-field prime p.
type FieldElement struct {
	v secp256k1.FieldVal
}

// NewFieldElement interprets b as a big-endian integer and reduces it modulo
// p. overflow reports whether b was >= p.
func NewFieldElement(b [32]byte) (f FieldElement, overflow bool) {
	overflow = f.v.SetBytes(&b) != 0
	f.v.Normalize()
	return f, overflow
}

// Bytes returns the 32-byte big-endian representative of f.
func (f FieldElement) Bytes() [32]byte {
	var b [32]byte
	f.v.Normalize()
	f.v.PutBytes(&b)
	return b
}

// IsOdd reports whether the representative of f is odd.
func (f FieldElement) IsOdd() bool {
	f.v.Normalize()
	return f.v.IsOdd()
}

// IsZero reports whether f is zero.
func (f FieldElement) IsZero() bool {
	f.v.Normalize()
	return f.v.IsZero()
}

// Equals reports whether f and o are the same field element.
func (f FieldElement) Equals(o FieldElement) bool {
	f.v.Normalize()
	o.v.Normalize()
	return f.v.Equals(&o.v)
}

// toScalar reduces the field element modulo n.
func (f FieldElement) toScalar() Scalar {
	s, _ := NewScalar(f.Bytes())
	return s
}

// Point is a point on secp256k1.
//
// A Point is either the identity (point at infinity) or held in affine form
// with Z = 1. The zero value is the identity.
type Point struct {
	j secp256k1.JacobianPoint
}

// Generator returns the curve's base point G.
func Generator() Point {
	var one secp256k1.ModNScalar
	one.SetInt(1)
	var p Point
	secp256k1.ScalarBaseMultNonConst(&one, &p.j)
	p.normalize()
	return p
}

// NewPoint returns the affine point (x, y). The coordinates are not checked
// against the curve equation; use IsOnCurve for that.
func NewPoint(x, y FieldElement) Point {
	var p Point
	p.j.X.Set(&x.v)
	p.j.Y.Set(&y.v)
	p.j.Z.SetInt(1)
	p.j.X.Normalize()
	p.j.Y.Normalize()
	return p
}

// ScalarBaseMult returns k*G.
func ScalarBaseMult(k Scalar) Point {
	var p Point
	secp256k1.ScalarBaseMultNonConst(&k.v, &p.j)
	p.normalize()
	return p
}

// ScalarMult returns k*q.
func ScalarMult(k Scalar, q Point) Point {
	var p Point
	if q.IsIdentity() || k.IsZero() {
		return p
	}
	secp256k1.ScalarMultNonConst(&k.v, &q.j, &p.j)
	p.normalize()
	return p
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	if p.IsIdentity() {
		return q
	}
	if q.IsIdentity() {
		return p
	}
	var r Point
	secp256k1.AddNonConst(&p.j, &q.j, &r.j)
	r.normalize()
	return r
}

// IsIdentity reports whether p is the point at infinity.
func (p Point) IsIdentity() bool {
	p.j.X.Normalize()
	p.j.Y.Normalize()
	p.j.Z.Normalize()
	return (p.j.X.IsZero() && p.j.Y.IsZero()) || p.j.Z.IsZero()
}

// Affine returns the affine coordinates of p. The result is meaningless for
// the identity.
func (p Point) Affine() (x, y FieldElement) {
	x.v.Set(&p.j.X)
	y.v.Set(&p.j.Y)
	x.v.Normalize()
	y.v.Normalize()
	return x, y
}

// IsOnCurve reports whether p satisfies y^2 = x^3 + 7. The identity is not on
// the curve in affine terms.
func (p Point) IsOnCurve() bool {
	if p.IsIdentity() {
		return false
	}
	x, y := p.Affine()

	var lhs, rhs secp256k1.FieldVal
	lhs.SquareVal(&y.v).Normalize()
	rhs.SquareVal(&x.v).Mul(&x.v).AddInt(7).Normalize()
	return lhs.Equals(&rhs)
}

// HasCurveOrder reports whether n*p is the identity. The scalar n reduces to
// zero, so this computes (n-1)*p + p instead.
func (p Point) HasCurveOrder() bool {
	if p.IsIdentity() {
		return false
	}
	nMinusOne := ScalarFromUint64(1).Negate()
	return ScalarMult(nMinusOne, p).Add(p).IsIdentity()
}

// Equals reports whether p and q are the same point.
func (p Point) Equals(q Point) bool {
	pInf, qInf := p.IsIdentity(), q.IsIdentity()
	if pInf || qInf {
		return pInf == qInf
	}
	px, py := p.Affine()
	qx, qy := q.Affine()
	return px.Equals(qx) && py.Equals(qy)
}

// decompressY returns the y with the requested oddness such that (x, y) is on
// the curve.
func decompressY(x FieldElement, odd bool) (FieldElement, bool) {
	var y FieldElement
	if !secp256k1.DecompressY(&x.v, odd, &y.v) {
		return y, false
	}
	y.v.Normalize()
	return y, true
}

// normalize converts p to affine form unless it is the identity, in which case
// it becomes the zero value.
func (p *Point) normalize() {
	if p.IsIdentity() {
		*p = Point{}
		return
	}
	p.j.ToAffine()
}
