// Package api provides the high-level workflow for building and signing
// legacy P2PKH transactions.
//
// A transaction moves through these steps:
//
//  1. ProposeTransaction - Creates the unsigned transaction from inputs and outputs
//  2. VerifyBeforeSigning - Checks amounts and spent scripts before signing
//  3. GetSighash - Computes the signature hash for an input
//  4. AppendSignature - Signs an input with a private key
//  5. Combine - Merges proposals signed independently by different parties
//  6. FinalizeAndExtract - Checks every signature and returns the raw transaction
//
// A Proposal carries the amount and scriptPubKey of every spent output
// alongside the transaction, since neither is part of the transaction's
// own encoding.
package api

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/suffix-labs/btc-primitives/pkg/crypto"
	"github.com/suffix-labs/btc-primitives/pkg/script"
	"github.com/suffix-labs/btc-primitives/pkg/signer"
	"github.com/suffix-labs/btc-primitives/pkg/tx"
)

// Input is an output being spent.
type Input struct {
	TxID         tx.TxID        // Transaction that created the output
	OutputIndex  uint32         // Output index within that transaction
	Value        uint64         // Value in satoshis
	ScriptPubKey *script.Script // Locking script of the output
	Sequence     *uint32        // Sequence number (nil = 0xFFFFFFFF)
}

// Output is a new output to create.
type Output struct {
	Value        uint64         // Value in satoshis
	ScriptPubKey *script.Script // Locking script
}

// TransactionProposal contains all inputs and outputs for a transaction.
type TransactionProposal struct {
	Inputs  []Input
	Outputs []Output

	Version  uint32  // Transaction version (0 = 1)
	LockTime *uint32 // Optional nLockTime
}

// SpentOutput is the part of a spent output that signing needs.
type SpentOutput struct {
	Value        uint64
	ScriptPubKey *script.Script
}

// Proposal is a transaction in the process of being signed.
type Proposal struct {
	Tx    *tx.Transaction
	Spent []SpentOutput // One per input, in input order
}

// Fee returns total input value minus total output value.
func (p *Proposal) Fee() (uint64, error) {
	var in uint64
	for i, s := range p.Spent {
		if in+s.Value < in {
			return 0, fmt.Errorf("input %d: value sum overflows", i)
		}
		in += s.Value
	}
	out, err := p.Tx.TotalOutput()
	if err != nil {
		return 0, err
	}
	if out > in {
		return 0, fmt.Errorf("outputs spend %d satoshis but inputs provide %d", out, in)
	}
	return in - out, nil
}

// clone returns a copy whose transaction can be signed independently.
func (p *Proposal) clone() *Proposal {
	return &Proposal{
		Tx:    p.Tx.Clone(),
		Spent: append([]SpentOutput(nil), p.Spent...),
	}
}

// ProposeTransaction creates an unsigned transaction from a proposal.
//
// Every input spends a P2PKH output and starts with an empty scriptSig.
//
// Returns an error if:
//   - There are no inputs or no outputs
//   - An input is missing its scriptPubKey or has zero value
//   - The outputs spend more than the inputs provide
func ProposeTransaction(proposal *TransactionProposal) (*Proposal, error) {
	if len(proposal.Inputs) == 0 {
		return nil, errors.New("no inputs")
	}
	if len(proposal.Outputs) == 0 {
		return nil, errors.New("no outputs")
	}

	inputs := make([]tx.Input, 0, len(proposal.Inputs))
	spent := make([]SpentOutput, 0, len(proposal.Inputs))
	for i, in := range proposal.Inputs {
		if in.ScriptPubKey == nil {
			return nil, fmt.Errorf("input %d missing scriptPubKey", i)
		}
		if in.Value == 0 {
			return nil, fmt.Errorf("input %d has zero value", i)
		}

		sequence := tx.DefaultSequence
		if in.Sequence != nil {
			sequence = *in.Sequence
		}
		inputs = append(inputs, tx.NewInput(in.TxID, in.OutputIndex, nil, sequence))
		spent = append(spent, SpentOutput{Value: in.Value, ScriptPubKey: in.ScriptPubKey})
	}

	outputs := make([]tx.Output, 0, len(proposal.Outputs))
	for _, out := range proposal.Outputs {
		outputs = append(outputs, tx.NewOutput(out.Value, out.ScriptPubKey))
	}

	version := proposal.Version
	if version == 0 {
		version = 1
	}
	var lockTime uint32
	if proposal.LockTime != nil {
		lockTime = *proposal.LockTime
	}

	p := &Proposal{
		Tx:    tx.New(version, inputs, outputs, lockTime),
		Spent: spent,
	}
	if _, err := p.Fee(); err != nil {
		return nil, err
	}
	return p, nil
}

// VerifyBeforeSigning validates a proposal before it is signed.
//
// This function checks:
//   - Every input has a matching spent output
//   - Every spent output is P2PKH
//   - Outputs do not spend more than the inputs provide
func VerifyBeforeSigning(p *Proposal) error {
	if len(p.Spent) != len(p.Tx.Inputs) {
		return fmt.Errorf("have %d spent outputs for %d inputs", len(p.Spent), len(p.Tx.Inputs))
	}
	for i, s := range p.Spent {
		if !s.ScriptPubKey.IsPayToPubKeyHash() {
			return fmt.Errorf("input %d spends a non-P2PKH output", i)
		}
	}
	if _, err := p.Fee(); err != nil {
		return fmt.Errorf("value balance: %w", err)
	}
	return nil
}

// GetSighash computes the SIGHASH_ALL signature hash for an input.
func GetSighash(p *Proposal, inputIndex int) ([32]byte, error) {
	if inputIndex < 0 || inputIndex >= len(p.Spent) {
		return [32]byte{}, fmt.Errorf("input index %d out of bounds (have %d inputs)", inputIndex, len(p.Spent))
	}
	return p.Tx.SigHash(inputIndex, p.Spent[inputIndex].ScriptPubKey, tx.SigHashAll)
}

// AppendSignature signs an input with privateKey and returns the updated
// proposal. p is not modified.
//
// Multiple parties can call this function independently on copies of the
// same proposal; Combine merges the results.
func AppendSignature(p *Proposal, inputIndex int, privateKey *crypto.PrivateKey) (*Proposal, error) {
	if inputIndex < 0 || inputIndex >= len(p.Spent) {
		return nil, fmt.Errorf("input index %d out of bounds (have %d inputs)", inputIndex, len(p.Spent))
	}

	s := signer.NewSigner(p.Tx)
	if err := s.SignInput(inputIndex, p.Spent[inputIndex].ScriptPubKey, privateKey, nil); err != nil {
		return nil, fmt.Errorf("signing failed: %w", err)
	}

	signed := p.clone()
	signed.Tx = s.Finish()
	return signed, nil
}

// Combine merges proposals of the same transaction carrying different
// signatures.
//
// All proposals must have identical transactions once scriptSigs are
// ignored. An input signed in more than one proposal must carry the same
// scriptSig in each.
func Combine(proposals []*Proposal) (*Proposal, error) {
	if len(proposals) == 0 {
		return nil, errors.New("no proposals to combine")
	}

	combined := proposals[0].clone()
	base := stripped(combined.Tx)

	for i, p := range proposals[1:] {
		if !bytes.Equal(base, stripped(p.Tx)) {
			return nil, fmt.Errorf("proposal %d is for a different transaction", i+1)
		}

		for j, in := range p.Tx.Inputs {
			if in.ScriptSig.Len() == 0 {
				continue
			}
			current := combined.Tx.Inputs[j].ScriptSig
			if current.Len() != 0 && !current.Equal(in.ScriptSig) {
				return nil, fmt.Errorf("proposal %d: conflicting scriptSig for input %d", i+1, j)
			}
			combined.Tx.Inputs[j].ScriptSig = in.ScriptSig
		}
	}

	return combined, nil
}

// stripped serializes t with every scriptSig emptied.
func stripped(t *tx.Transaction) []byte {
	c := t.Clone()
	for i := range c.Inputs {
		c.Inputs[i].ScriptSig = script.Empty()
	}
	return c.Serialize()
}

// FinalizeAndExtract checks every input's signature and returns the raw
// transaction, ready to broadcast, with its txid.
func FinalizeAndExtract(p *Proposal) ([]byte, tx.TxID, error) {
	if err := VerifyBeforeSigning(p); err != nil {
		return nil, tx.TxID{}, err
	}

	for i := range p.Tx.Inputs {
		if p.Tx.Inputs[i].ScriptSig.Len() == 0 {
			return nil, tx.TxID{}, fmt.Errorf("input %d is not signed", i)
		}
		ok, err := signer.VerifyInput(p.Tx, i, p.Spent[i].ScriptPubKey)
		if err != nil {
			return nil, tx.TxID{}, err
		}
		if !ok {
			return nil, tx.TxID{}, fmt.Errorf("input %d: signature does not verify", i)
		}
	}

	return p.Tx.Serialize(), p.Tx.ID(), nil
}
