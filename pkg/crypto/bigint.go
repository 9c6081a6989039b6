package crypto

import (
	"errors"
	"fmt"
)

// ErrMalformedInteger is returned when a DER integer cannot be decoded.
var ErrMalformedInteger = errors.New("malformed DER integer")

// EncodeDERInteger returns the minimal ASN.1 signed-integer encoding of the
// 256-bit big-endian value b, prefixed with its one-byte content length.
//
// Leading zero bytes are stripped. If the first remaining byte has its high
// bit set, a single 0x00 is prepended so the value is not read as negative.
// Zero encodes as a single 0x00 content byte.
func EncodeDERInteger(b [32]byte) []byte {
	i := 0
	for i < len(b)-1 && b[i] == 0 {
		i++
	}
	content := b[i:]

	pad := 0
	if content[0] >= 0x80 {
		pad = 1
	}

	out := make([]byte, 0, 1+pad+len(content))
	out = append(out, byte(pad+len(content)))
	if pad == 1 {
		out = append(out, 0x00)
	}
	return append(out, content...)
}

// ParseDERInteger decodes a length-prefixed DER integer from the front of data
// as produced by EncodeDERInteger. It returns the value left-padded to 32
// bytes and the number of bytes consumed.
//
// Empty, negative, over-padded and wider-than-256-bit integers are rejected.
func ParseDERInteger(data []byte) ([32]byte, int, error) {
	var out [32]byte
	if len(data) < 1 {
		return out, 0, fmt.Errorf("%w: missing length", ErrMalformedInteger)
	}

	length := int(data[0])
	if length == 0 {
		return out, 0, fmt.Errorf("%w: zero length", ErrMalformedInteger)
	}
	if len(data) < 1+length {
		return out, 0, fmt.Errorf("%w: need %d bytes, have %d", ErrMalformedInteger, length, len(data)-1)
	}

	content := data[1 : 1+length]
	if content[0]&0x80 != 0 {
		return out, 0, fmt.Errorf("%w: negative value", ErrMalformedInteger)
	}
	if length > 1 && content[0] == 0x00 && content[1]&0x80 == 0 {
		return out, 0, fmt.Errorf("%w: excessive padding", ErrMalformedInteger)
	}
	if content[0] == 0x00 && length > 1 {
		content = content[1:]
	}
	if len(content) > 32 {
		return out, 0, fmt.Errorf("%w: value exceeds 256 bits", ErrMalformedInteger)
	}

	copy(out[32-len(content):], content)
	return out, 1 + length, nil
}
