// Package script models Bitcoin scripts as a list of commands and encodes
// them to and from their wire form.
//
// A command is either an operation (a single opcode byte) or an element
// (data pushed onto the stack). Push opcodes 0x00-0x4d are never stored as
// operations: they are implied by an element's length when the script is
// serialized and consumed into elements when it is parsed.
package script

import (
	"bytes"
	"fmt"
)

// MaxElementSize is the largest element OP_PUSHDATA2 can carry.
const MaxElementSize = 0xffff

// Command is a single script instruction.
type Command struct {
	data   []byte
	opcode byte
	isData bool
}

// Op returns an operation command for opcode.
func Op(opcode byte) Command {
	return Command{opcode: opcode}
}

// Data returns an element command pushing a copy of b.
func Data(b []byte) Command {
	return Command{data: append([]byte{}, b...), isData: true}
}

// IsOperation reports whether c is an operation rather than an element.
func (c Command) IsOperation() bool {
	return !c.isData
}

// Opcode returns the opcode of an operation. It is zero for elements.
func (c Command) Opcode() byte {
	return c.opcode
}

// Data returns the pushed bytes of an element, or nil for an operation.
func (c Command) Data() []byte {
	return c.data
}

// Equal reports whether both commands are the same operation or push the
// same bytes.
func (c Command) Equal(o Command) bool {
	if c.isData != o.isData {
		return false
	}
	if c.isData {
		return bytes.Equal(c.data, o.data)
	}
	return c.opcode == o.opcode
}

// ConstructionError is returned by New when a command cannot appear in a
// script.
type ConstructionError struct {
	Index  int    // Position of the offending command
	Reason string // What is wrong with it
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("invalid script command %d: %s", e.Index, e.Reason)
}

// Script is an immutable sequence of commands. A nil *Script behaves as the
// empty script.
//
// Every operation is above OP_PUSHDATA2 (77) and every element is at most
// MaxElementSize bytes.
type Script struct {
	commands []Command
}

// New builds a script from commands, rejecting operations that are push
// opcodes and elements too long for OP_PUSHDATA2.
func New(commands ...Command) (*Script, error) {
	for i, c := range commands {
		if c.IsOperation() && c.opcode <= OpPushData2 {
			return nil, &ConstructionError{
				Index:  i,
				Reason: fmt.Sprintf("opcode 0x%02x is a push opcode", c.opcode),
			}
		}
		if !c.IsOperation() && len(c.data) > MaxElementSize {
			return nil, &ConstructionError{
				Index:  i,
				Reason: fmt.Sprintf("element of %d bytes exceeds %d", len(c.data), MaxElementSize),
			}
		}
	}

	return &Script{commands: append([]Command{}, commands...)}, nil
}

// Empty returns a script with no commands.
func Empty() *Script {
	return &Script{}
}

// Commands returns the script's commands.
func (s *Script) Commands() []Command {
	if s == nil {
		return nil
	}
	return append([]Command{}, s.commands...)
}

// Len returns the number of commands.
func (s *Script) Len() int {
	if s == nil {
		return 0
	}
	return len(s.commands)
}

// Equal reports whether both scripts hold the same commands.
func (s *Script) Equal(o *Script) bool {
	a, b := s.Commands(), o.Commands()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
