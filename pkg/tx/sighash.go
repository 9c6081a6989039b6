package tx

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/suffix-labs/btc-primitives/pkg/script"
	"github.com/suffix-labs/btc-primitives/pkg/wire"
)

// SigHashAll commits a signature to every input and output.
const SigHashAll uint32 = 0x01

// ErrUnsupportedSigHash is returned by SigHash for any type but SigHashAll.
var ErrUnsupportedSigHash = errors.New("unsupported sighash type")

// SigHash computes the legacy signature hash for input index.
//
// The preimage is the transaction serialized with:
//  1. Every scriptSig replaced by the empty script
//  2. The scriptSig of input index replaced by prevScriptPubKey, the locking
//     script of the output being spent
//  3. The hash type appended as 4 bytes, little-endian
//
// The result is hash256 of the preimage, in the byte order that is signed.
func (t *Transaction) SigHash(index int, prevScriptPubKey *script.Script, hashType uint32) ([32]byte, error) {
	if index < 0 || index >= len(t.Inputs) {
		return [32]byte{}, fmt.Errorf("input index %d out of bounds (have %d inputs)", index, len(t.Inputs))
	}
	if hashType != SigHashAll {
		return [32]byte{}, fmt.Errorf("%w: 0x%02x", ErrUnsupportedSigHash, hashType)
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, t.Version)

	wire.WriteVarInt(&buf, uint64(len(t.Inputs)))
	for i, input := range t.Inputs {
		scriptSig := script.Empty()
		if i == index {
			scriptSig = prevScriptPubKey
		}
		writeInput(&buf, input.SourceID, input.SourceIndex, scriptSig, input.Sequence)
	}

	writeOutputs(&buf, t.Outputs)
	binary.Write(&buf, binary.LittleEndian, t.Locktime)
	binary.Write(&buf, binary.LittleEndian, hashType)

	return [32]byte(chainhash.DoubleHashH(buf.Bytes())), nil
}
