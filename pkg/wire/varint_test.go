package wire

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeVarInt(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		want  []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"one", 1, []byte{0x01}},
		{"largest single byte", 252, []byte{0xfc}},
		{"smallest uint16", 253, []byte{0xfd, 0xfd, 0x00}},
		{"62500", 62500, []byte{0xfd, 0x24, 0xf4}},
		{"largest uint16", 0xffff, []byte{0xfd, 0xff, 0xff}},
		{"smallest uint32", 0x10000, []byte{0xfe, 0x00, 0x00, 0x01, 0x00}},
		{"15625000", 15625000, []byte{0xfe, 0x28, 0x6b, 0xee, 0x00}},
		{"largest uint32", 0xffffffff, []byte{0xfe, 0xff, 0xff, 0xff, 0xff}},
		{"smallest uint64", 0x100000000, []byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}},
		{"large", 15258789066406312607, []byte{0xff, 0x9f, 0x3a, 0xc3, 0xb5, 0xcf, 0x1b, 0xc2, 0xd3}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := EncodeVarInt(tc.value)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, len(got), VarIntSize(tc.value))

			value, n, err := ParseVarInt(got)
			require.NoError(t, err)
			assert.Equal(t, tc.value, value)
			assert.Equal(t, len(got), n)

			var buf bytes.Buffer
			require.NoError(t, WriteVarInt(&buf, tc.value))
			assert.Equal(t, tc.want, buf.Bytes())

			read, err := ReadVarInt(&buf)
			require.NoError(t, err)
			assert.Equal(t, tc.value, read)
		})
	}
}

func TestParseVarIntIgnoresTrailingBytes(t *testing.T) {
	value, n, err := ParseVarInt([]byte{1, 253})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), value)
	assert.Equal(t, 1, n)

	value, n, err = ParseVarInt([]byte{0xfe, 0x28, 0x6b, 0xee, 0x00, 0x65})
	require.NoError(t, err)
	assert.Equal(t, uint64(15625000), value)
	assert.Equal(t, 5, n)
}

func TestParseVarIntAcceptsNonMinimal(t *testing.T) {
	value, n, err := ParseVarInt([]byte{0xfd, 0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), value)
	assert.Equal(t, 3, n)

	value, n, err = ParseVarInt([]byte{0xff, 0x05, 0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), value)
	assert.Equal(t, 9, n)
}

func TestParseVarIntTruncated(t *testing.T) {
	inputs := [][]byte{
		{},
		{0xfd},
		{0xfd, 0x01},
		{0xfe, 0x01, 0x02, 0x03},
		{0xff, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07},
	}

	for _, in := range inputs {
		_, _, err := ParseVarInt(in)
		require.Error(t, err, "input %x", in)

		var perr *ParseError
		require.True(t, errors.As(err, &perr), "input %x", in)
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF), "input %x", in)
	}
}

func TestReadVarIntTruncated(t *testing.T) {
	_, err := ReadVarInt(bytes.NewReader(nil))
	assert.ErrorIs(t, err, io.EOF)

	_, err = ReadVarInt(bytes.NewReader([]byte{0xfe, 0x01}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = ReadVarInt(bytes.NewReader([]byte{0xff}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestParseErrorMessage(t *testing.T) {
	err := &ParseError{Message: "script body", Cause: io.ErrUnexpectedEOF}
	assert.Equal(t, "parse error: script body: unexpected EOF", err.Error())

	err = &ParseError{Message: "invalid push"}
	assert.Equal(t, "parse error: invalid push", err.Error())
}
