// Package wire implements the CompactSize variable-length integer used as the
// length prefix for scripts and for the input and output counts of
// transactions.
//
// Encoding:
//   - < 0xFD: 1 byte (the value itself)
//   - <= 0xFFFF: 0xFD + 2 bytes little-endian
//   - <= 0xFFFFFFFF: 0xFE + 4 bytes little-endian
//   - otherwise: 0xFF + 8 bytes little-endian
//
// Decoding accepts non-minimal prefixes (0xFD 0x01 0x00 decodes to 1).
//
// See: https://en.bitcoin.it/wiki/Protocol_documentation#Variable_length_integer
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// CompactSize prefix bytes.
const (
	varIntUint16 = 0xFD
	varIntUint32 = 0xFE
	varIntUint64 = 0xFF
)

// VarIntSize returns the number of bytes EncodeVarInt produces for v.
func VarIntSize(v uint64) int {
	switch {
	case v < varIntUint16:
		return 1
	case v <= 0xFFFF:
		return 3
	case v <= 0xFFFFFFFF:
		return 5
	default:
		return 9
	}
}

// EncodeVarInt returns the minimal CompactSize encoding of v.
func EncodeVarInt(v uint64) []byte {
	switch {
	case v < varIntUint16:
		return []byte{byte(v)}
	case v <= 0xFFFF:
		out := make([]byte, 3)
		out[0] = varIntUint16
		binary.LittleEndian.PutUint16(out[1:], uint16(v))
		return out
	case v <= 0xFFFFFFFF:
		out := make([]byte, 5)
		out[0] = varIntUint32
		binary.LittleEndian.PutUint32(out[1:], uint32(v))
		return out
	default:
		out := make([]byte, 9)
		out[0] = varIntUint64
		binary.LittleEndian.PutUint64(out[1:], v)
		return out
	}
}

// ParseVarInt decodes a CompactSize integer from the front of data and
// returns the value together with the number of bytes consumed.
func ParseVarInt(data []byte) (uint64, int, error) {
	if len(data) == 0 {
		return 0, 0, &ParseError{Message: "varint", Cause: io.ErrUnexpectedEOF}
	}

	flag := data[0]
	width := 0
	switch flag {
	case varIntUint16:
		width = 2
	case varIntUint32:
		width = 4
	case varIntUint64:
		width = 8
	default:
		return uint64(flag), 1, nil
	}

	if len(data) < 1+width {
		return 0, 0, &ParseError{
			Message: fmt.Sprintf("varint with prefix 0x%02x needs %d bytes, have %d", flag, 1+width, len(data)),
			Cause:   io.ErrUnexpectedEOF,
		}
	}

	body := data[1 : 1+width]
	switch width {
	case 2:
		return uint64(binary.LittleEndian.Uint16(body)), 3, nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(body)), 5, nil
	default:
		return binary.LittleEndian.Uint64(body), 9, nil
	}
}

// WriteVarInt writes the CompactSize encoding of v to w.
func WriteVarInt(w io.Writer, v uint64) error {
	_, err := w.Write(EncodeVarInt(v))
	return err
}

// ReadVarInt reads a CompactSize integer from r.
//
// A stream that ends inside the integer yields io.ErrUnexpectedEOF; a stream
// that is already exhausted yields io.EOF.
func ReadVarInt(r io.Reader) (uint64, error) {
	var flag [1]byte
	if _, err := io.ReadFull(r, flag[:]); err != nil {
		return 0, err
	}

	switch flag[0] {
	case varIntUint16:
		var v uint16
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, unexpectedEOF(err)
		}
		return uint64(v), nil
	case varIntUint32:
		var v uint32
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, unexpectedEOF(err)
		}
		return uint64(v), nil
	case varIntUint64:
		var v uint64
		if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
			return 0, unexpectedEOF(err)
		}
		return v, nil
	default:
		return uint64(flag[0]), nil
	}
}

// unexpectedEOF maps a clean EOF after a prefix byte to io.ErrUnexpectedEOF.
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
