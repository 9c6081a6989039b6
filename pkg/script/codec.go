package script

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/suffix-labs/btc-primitives/pkg/wire"
)

// Raw returns the encoded commands without the length prefix.
func (s *Script) Raw() []byte {
	var buf bytes.Buffer
	if s == nil {
		return buf.Bytes()
	}
	for _, c := range s.commands {
		writeCommand(&buf, c)
	}
	return buf.Bytes()
}

// Serialize returns the wire form of the script: the byte length of the
// encoded commands as a VarInt, followed by the commands.
func (s *Script) Serialize() []byte {
	raw := s.Raw()
	out := make([]byte, 0, wire.VarIntSize(uint64(len(raw)))+len(raw))
	out = append(out, wire.EncodeVarInt(uint64(len(raw)))...)
	return append(out, raw...)
}

// writeCommand appends one command using the shortest push form for its
// length.
func writeCommand(buf *bytes.Buffer, c Command) {
	if c.IsOperation() {
		buf.WriteByte(c.opcode)
		return
	}

	n := len(c.data)
	switch {
	case n < int(OpPushData1):
		buf.WriteByte(byte(n))
	case n <= math.MaxUint8:
		buf.WriteByte(OpPushData1)
		buf.WriteByte(byte(n))
	default:
		buf.WriteByte(OpPushData2)
		binary.Write(buf, binary.LittleEndian, uint16(n))
	}
	buf.Write(c.data)
}

// Parse decodes a length-prefixed script from the front of data. It returns
// the script and the number of bytes consumed, prefix included.
func Parse(data []byte) (*Script, int, error) {
	length, n, err := wire.ParseVarInt(data)
	if err != nil {
		return nil, 0, err
	}

	available := uint64(len(data) - n)
	if length > available {
		return nil, 0, &wire.ParseError{
			Message: fmt.Sprintf("script declares %d bytes, have %d", length, available),
			Cause:   io.ErrUnexpectedEOF,
		}
	}

	end := n + int(length)
	commands, err := parseCommands(data[n:end])
	if err != nil {
		return nil, 0, err
	}
	return &Script{commands: commands}, end, nil
}

// Read decodes a length-prefixed script from r.
func Read(r io.Reader) (*Script, error) {
	length, err := wire.ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("reading script length: %w", err)
	}
	if length > math.MaxInt32 {
		return nil, &wire.ParseError{Message: fmt.Sprintf("script length %d too large", length)}
	}

	var body bytes.Buffer
	if _, err := io.CopyN(&body, r, int64(length)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading script body of %d bytes: %w", length, err)
	}

	commands, err := parseCommands(body.Bytes())
	if err != nil {
		return nil, err
	}
	return &Script{commands: commands}, nil
}

// parseCommands decodes the commands of a script body. Every byte of body
// belongs to exactly one command; a push that runs past the end is an error.
func parseCommands(body []byte) ([]Command, error) {
	r := bytes.NewReader(body)
	var commands []Command

	for r.Len() > 0 {
		offset := len(body) - r.Len()
		opcode, _ := r.ReadByte()

		var size int
		switch {
		case opcode < OpPushData1:
			size = int(opcode)
		case opcode == OpPushData1:
			l, err := r.ReadByte()
			if err != nil {
				return nil, &wire.ParseError{
					Message: fmt.Sprintf("reading OP_PUSHDATA1 length at offset %d", offset),
					Cause:   io.ErrUnexpectedEOF,
				}
			}
			size = int(l)
		case opcode == OpPushData2:
			var l uint16
			if err := binary.Read(r, binary.LittleEndian, &l); err != nil {
				return nil, &wire.ParseError{
					Message: fmt.Sprintf("reading OP_PUSHDATA2 length at offset %d", offset),
					Cause:   io.ErrUnexpectedEOF,
				}
			}
			size = int(l)
		default:
			commands = append(commands, Op(opcode))
			continue
		}

		if size > r.Len() {
			return nil, &wire.ParseError{
				Message: fmt.Sprintf("push of %d bytes at offset %d overruns script (%d left)", size, offset, r.Len()),
				Cause:   io.ErrUnexpectedEOF,
			}
		}
		element := make([]byte, size)
		io.ReadFull(r, element)
		commands = append(commands, Command{data: element, isData: true})
	}

	return commands, nil
}
