package tx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/suffix-labs/btc-primitives/pkg/script"
	"github.com/suffix-labs/btc-primitives/pkg/wire"
)

// Serialize returns the wire encoding of t.
func (t *Transaction) Serialize() []byte {
	var buf bytes.Buffer
	t.writeTo(&buf)
	return buf.Bytes()
}

// writeTo writes the transaction in wire format. Writes to a bytes.Buffer
// never fail.
func (t *Transaction) writeTo(buf *bytes.Buffer) {
	binary.Write(buf, binary.LittleEndian, t.Version)

	wire.WriteVarInt(buf, uint64(len(t.Inputs)))
	for _, input := range t.Inputs {
		writeInput(buf, input.SourceID, input.SourceIndex, input.ScriptSig, input.Sequence)
	}

	writeOutputs(buf, t.Outputs)
	binary.Write(buf, binary.LittleEndian, t.Locktime)
}

func writeOutputs(buf *bytes.Buffer, outputs []Output) {
	wire.WriteVarInt(buf, uint64(len(outputs)))
	for _, output := range outputs {
		binary.Write(buf, binary.LittleEndian, output.Amount)
		buf.Write(output.ScriptPubKey.Serialize())
	}
}

func writeInput(buf *bytes.Buffer, sourceID TxID, index uint32, scriptSig *script.Script, sequence uint32) {
	prevout := sourceID.wireBytes()
	buf.Write(prevout[:])
	binary.Write(buf, binary.LittleEndian, index)
	buf.Write(scriptSig.Serialize())
	binary.Write(buf, binary.LittleEndian, sequence)
}

// Parse decodes a transaction from the front of data. It returns the
// transaction and the number of bytes consumed; bytes after the locktime are
// left for the caller.
//
// Any truncation or malformed script is reported as a *wire.ParseError whose
// message names the field being read.
func Parse(data []byte) (*Transaction, int, error) {
	r := bytes.NewReader(data)
	t, err := Read(r)
	if err != nil {
		return nil, 0, err
	}
	return t, len(data) - r.Len(), nil
}

// Read decodes one transaction from r.
func Read(r io.Reader) (*Transaction, error) {
	t, err := readTransaction(r)
	if err != nil {
		return nil, &wire.ParseError{Message: "transaction", Cause: err}
	}
	return t, nil
}

func readTransaction(r io.Reader) (*Transaction, error) {
	t := &Transaction{}

	if err := binary.Read(r, binary.LittleEndian, &t.Version); err != nil {
		return nil, fmt.Errorf("reading version: %w", eofIsUnexpected(err))
	}

	numInputs, err := wire.ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("reading input count: %w", eofIsUnexpected(err))
	}
	// The count is untrusted; preallocation is capped.
	t.Inputs = make([]Input, 0, min(numInputs, 1024))
	for i := uint64(0); i < numInputs; i++ {
		input, err := readInput(r)
		if err != nil {
			return nil, fmt.Errorf("reading input %d %w", i, err)
		}
		t.Inputs = append(t.Inputs, input)
	}

	numOutputs, err := wire.ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("reading output count: %w", eofIsUnexpected(err))
	}
	t.Outputs = make([]Output, 0, min(numOutputs, 1024))
	for i := uint64(0); i < numOutputs; i++ {
		output, err := readOutput(r)
		if err != nil {
			return nil, fmt.Errorf("reading output %d %w", i, err)
		}
		t.Outputs = append(t.Outputs, output)
	}

	if err := binary.Read(r, binary.LittleEndian, &t.Locktime); err != nil {
		return nil, fmt.Errorf("reading locktime: %w", eofIsUnexpected(err))
	}

	return t, nil
}

// readInput reads a single input. Errors start with the field name so the
// caller can prefix the input index.
func readInput(r io.Reader) (Input, error) {
	var input Input

	var prevout [32]byte
	if _, err := io.ReadFull(r, prevout[:]); err != nil {
		return input, fmt.Errorf("source txid: %w", eofIsUnexpected(err))
	}
	input.SourceID = txIDFromWire(prevout)

	if err := binary.Read(r, binary.LittleEndian, &input.SourceIndex); err != nil {
		return input, fmt.Errorf("source index: %w", eofIsUnexpected(err))
	}

	scriptSig, err := script.Read(r)
	if err != nil {
		return input, fmt.Errorf("scriptSig: %w", eofIsUnexpected(err))
	}
	input.ScriptSig = scriptSig

	if err := binary.Read(r, binary.LittleEndian, &input.Sequence); err != nil {
		return input, fmt.Errorf("sequence: %w", eofIsUnexpected(err))
	}

	return input, nil
}

// readOutput reads a single output.
func readOutput(r io.Reader) (Output, error) {
	var output Output

	if err := binary.Read(r, binary.LittleEndian, &output.Amount); err != nil {
		return output, fmt.Errorf("amount: %w", eofIsUnexpected(err))
	}

	scriptPubKey, err := script.Read(r)
	if err != nil {
		return output, fmt.Errorf("scriptPubKey: %w", eofIsUnexpected(err))
	}
	output.ScriptPubKey = scriptPubKey

	return output, nil
}

// eofIsUnexpected maps io.EOF to io.ErrUnexpectedEOF: once a transaction has
// started, running out of bytes anywhere is a truncation.
func eofIsUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
