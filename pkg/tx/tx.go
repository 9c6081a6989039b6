// Package tx models legacy (non-segwit) Bitcoin transactions and encodes them
// to and from their wire form.
//
// Transaction format:
//   - version (4 bytes, little-endian)
//   - num_inputs (varint)
//   - for each input:
//       - source txid (32 bytes, wire byte order)
//       - source output index (4 bytes, little-endian)
//       - scriptSig (varint length + commands)
//       - sequence (4 bytes, little-endian)
//   - num_outputs (varint)
//   - for each output:
//       - amount in satoshis (8 bytes, little-endian)
//       - scriptPubKey (varint length + commands)
//   - locktime (4 bytes, little-endian)
package tx

import (
	"encoding/hex"
	"fmt"
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/suffix-labs/btc-primitives/pkg/script"
)

// DefaultSequence is the sequence number of an input that opts out of
// relative locktime and replacement.
const DefaultSequence uint32 = 0xffffffff

// TxID identifies a transaction. It is held in display order: the byte
// reverse of the double-SHA256 of the serialized transaction, as printed by
// block explorers. The wire encoding uses the opposite order.
type TxID [32]byte

// ParseTxID decodes a 64-character hex txid in display order.
func ParseTxID(s string) (TxID, error) {
	if len(s) != 2*chainhash.HashSize {
		return TxID{}, fmt.Errorf("txid must be %d hex characters, got %d", 2*chainhash.HashSize, len(s))
	}
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return TxID{}, fmt.Errorf("decoding txid: %w", err)
	}
	return txIDFromWire(*h), nil
}

// String returns the txid as hex in display order.
func (id TxID) String() string {
	return hex.EncodeToString(id[:])
}

// wireBytes returns the txid in the byte order used on the wire.
func (id TxID) wireBytes() chainhash.Hash {
	var h chainhash.Hash
	for i := range id {
		h[i] = id[len(id)-1-i]
	}
	return h
}

func txIDFromWire(h chainhash.Hash) TxID {
	var id TxID
	for i := range h {
		id[i] = h[len(h)-1-i]
	}
	return id
}

// Input spends output SourceIndex of transaction SourceID.
type Input struct {
	SourceID    TxID
	SourceIndex uint32
	ScriptSig   *script.Script
	Sequence    uint32
}

// Output locks Amount satoshis to ScriptPubKey.
type Output struct {
	Amount       uint64
	ScriptPubKey *script.Script
}

// Transaction is a legacy Bitcoin transaction.
type Transaction struct {
	Version  uint32
	Inputs   []Input
	Outputs  []Output
	Locktime uint32
}

// NewInput creates an input. A nil scriptSig is replaced by the empty script.
func NewInput(sourceID TxID, sourceIndex uint32, scriptSig *script.Script, sequence uint32) Input {
	if scriptSig == nil {
		scriptSig = script.Empty()
	}
	return Input{
		SourceID:    sourceID,
		SourceIndex: sourceIndex,
		ScriptSig:   scriptSig,
		Sequence:    sequence,
	}
}

// NewOutput creates an output. A nil scriptPubKey is replaced by the empty
// script.
func NewOutput(amount uint64, scriptPubKey *script.Script) Output {
	if scriptPubKey == nil {
		scriptPubKey = script.Empty()
	}
	return Output{Amount: amount, ScriptPubKey: scriptPubKey}
}

// New creates a transaction.
func New(version uint32, inputs []Input, outputs []Output, locktime uint32) *Transaction {
	return &Transaction{
		Version:  version,
		Inputs:   inputs,
		Outputs:  outputs,
		Locktime: locktime,
	}
}

// Clone returns a copy of t whose input and output slices can be modified
// independently. Scripts are immutable and are shared.
func (t *Transaction) Clone() *Transaction {
	return &Transaction{
		Version:  t.Version,
		Inputs:   append([]Input(nil), t.Inputs...),
		Outputs:  append([]Output(nil), t.Outputs...),
		Locktime: t.Locktime,
	}
}

// TotalOutput returns the sum of all output amounts.
func (t *Transaction) TotalOutput() (uint64, error) {
	var total uint64
	for i, out := range t.Outputs {
		if out.Amount > math.MaxUint64-total {
			return 0, fmt.Errorf("output %d: amount sum overflows", i)
		}
		total += out.Amount
	}
	return total, nil
}

// ID returns the transaction's txid.
func (t *Transaction) ID() TxID {
	return txIDFromWire(chainhash.DoubleHashH(t.Serialize()))
}

// IsCoinbase reports whether t has the single null-outpoint input of a
// coinbase transaction.
func (t *Transaction) IsCoinbase() bool {
	if len(t.Inputs) != 1 {
		return false
	}
	input := t.Inputs[0]
	return input.SourceID == TxID{} && input.SourceIndex == math.MaxUint32
}
