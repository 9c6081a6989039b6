package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/btc-primitives/pkg/crypto"
	"github.com/suffix-labs/btc-primitives/pkg/script"
	"github.com/suffix-labs/btc-primitives/pkg/signer"
	"github.com/suffix-labs/btc-primitives/pkg/tx"
)

type party struct {
	key          *crypto.PrivateKey
	scriptPubKey *script.Script
}

func newParty(t *testing.T, seed byte) party {
	t.Helper()
	var secret [32]byte
	for i := range secret {
		secret[i] = seed + byte(i)
	}
	key, err := crypto.NewPrivateKey(secret)
	require.NoError(t, err)

	pub := key.PublicKey().SerializeCompressed()
	return party{key: key, scriptPubKey: script.PayToPubKeyHash(crypto.Hash160(pub[:]))}
}

func twoPartyProposal(t *testing.T, alice, bob party) *TransactionProposal {
	t.Helper()
	lockTime := uint32(800_000)
	return &TransactionProposal{
		Inputs: []Input{
			{TxID: tx.TxID{1, 2, 3}, OutputIndex: 0, Value: 100_000, ScriptPubKey: alice.scriptPubKey},
			{TxID: tx.TxID{4, 5, 6}, OutputIndex: 3, Value: 50_000, ScriptPubKey: bob.scriptPubKey},
		},
		Outputs: []Output{
			{Value: 140_000, ScriptPubKey: script.PayToPubKeyHash([20]byte{0xaa})},
		},
		LockTime: &lockTime,
	}
}

// TestTwoPartySigning signs each input in a separate copy, combines them and
// extracts the final transaction.
func TestTwoPartySigning(t *testing.T) {
	alice, bob := newParty(t, 0x10), newParty(t, 0x40)

	// Step 1: Propose
	p, err := ProposeTransaction(twoPartyProposal(t, alice, bob))
	require.NoError(t, err)
	require.NoError(t, VerifyBeforeSigning(p))

	fee, err := p.Fee()
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000), fee)
	assert.Equal(t, uint32(1), p.Tx.Version)
	assert.Equal(t, uint32(800_000), p.Tx.Locktime)
	assert.Equal(t, tx.DefaultSequence, p.Tx.Inputs[0].Sequence)

	// Step 2: Each party signs its own input
	aliceSigned, err := AppendSignature(p, 0, alice.key)
	require.NoError(t, err)
	bobSigned, err := AppendSignature(p, 1, bob.key)
	require.NoError(t, err)

	// The proposal itself stays unsigned.
	assert.Equal(t, 0, p.Tx.Inputs[0].ScriptSig.Len())

	// Neither copy is complete on its own.
	_, _, err = FinalizeAndExtract(aliceSigned)
	assert.ErrorContains(t, err, "input 1 is not signed")

	// Step 3: Combine
	combined, err := Combine([]*Proposal{aliceSigned, bobSigned})
	require.NoError(t, err)

	// Step 4: Extract
	raw, txid, err := FinalizeAndExtract(combined)
	require.NoError(t, err)

	parsed, n, err := tx.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, len(raw), n)
	assert.Equal(t, txid, parsed.ID())

	for i, spent := range combined.Spent {
		ok, err := signer.VerifyInput(parsed, i, spent.ScriptPubKey)
		require.NoError(t, err)
		assert.True(t, ok, "input %d", i)
	}
}

func TestGetSighashMatchesSigner(t *testing.T) {
	alice, bob := newParty(t, 0x10), newParty(t, 0x40)
	p, err := ProposeTransaction(twoPartyProposal(t, alice, bob))
	require.NoError(t, err)

	sighash, err := GetSighash(p, 1)
	require.NoError(t, err)

	want, err := p.Tx.SigHash(1, bob.scriptPubKey, tx.SigHashAll)
	require.NoError(t, err)
	assert.Equal(t, want, sighash)

	_, err = GetSighash(p, 2)
	assert.Error(t, err)
}

func TestProposeTransactionRejects(t *testing.T) {
	alice, bob := newParty(t, 0x10), newParty(t, 0x40)

	tests := []struct {
		name   string
		modify func(*TransactionProposal)
		want   string
	}{
		{"no inputs", func(p *TransactionProposal) { p.Inputs = nil }, "no inputs"},
		{"no outputs", func(p *TransactionProposal) { p.Outputs = nil }, "no outputs"},
		{"missing script", func(p *TransactionProposal) { p.Inputs[1].ScriptPubKey = nil }, "input 1 missing scriptPubKey"},
		{"zero value", func(p *TransactionProposal) { p.Inputs[0].Value = 0 }, "input 0 has zero value"},
		{"overspend", func(p *TransactionProposal) { p.Outputs[0].Value = 150_001 }, "outputs spend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proposal := twoPartyProposal(t, alice, bob)
			tt.modify(proposal)
			_, err := ProposeTransaction(proposal)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestVerifyBeforeSigningRejectsNonP2PKH(t *testing.T) {
	alice, bob := newParty(t, 0x10), newParty(t, 0x40)
	proposal := twoPartyProposal(t, alice, bob)
	proposal.Inputs[1].ScriptPubKey = script.PayToWitnessPubKeyHash([20]byte{0xbb})

	p, err := ProposeTransaction(proposal)
	require.NoError(t, err)
	assert.ErrorContains(t, VerifyBeforeSigning(p), "input 1 spends a non-P2PKH output")

	_, err = AppendSignature(p, 1, bob.key)
	assert.Error(t, err)
}

func TestAppendSignatureWrongKey(t *testing.T) {
	alice, bob := newParty(t, 0x10), newParty(t, 0x40)
	p, err := ProposeTransaction(twoPartyProposal(t, alice, bob))
	require.NoError(t, err)

	_, err = AppendSignature(p, 0, bob.key)
	var inputErr *signer.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, 0, inputErr.InputIndex)
}

func TestCombineRejects(t *testing.T) {
	alice, bob := newParty(t, 0x10), newParty(t, 0x40)
	p, err := ProposeTransaction(twoPartyProposal(t, alice, bob))
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := Combine(nil)
		assert.Error(t, err)
	})

	t.Run("different transaction", func(t *testing.T) {
		other := twoPartyProposal(t, alice, bob)
		other.Outputs[0].Value--
		q, err := ProposeTransaction(other)
		require.NoError(t, err)

		_, err = Combine([]*Proposal{p, q})
		assert.ErrorContains(t, err, "different transaction")
	})

	t.Run("conflicting signatures", func(t *testing.T) {
		first, err := AppendSignature(p, 0, alice.key)
		require.NoError(t, err)
		second, err := AppendSignature(p, 0, alice.key)
		require.NoError(t, err)

		// Random nonces give two valid but different signatures.
		_, err = Combine([]*Proposal{first, second})
		assert.ErrorContains(t, err, "conflicting scriptSig for input 0")
	})

	t.Run("same signature twice", func(t *testing.T) {
		signed, err := AppendSignature(p, 0, alice.key)
		require.NoError(t, err)

		combined, err := Combine([]*Proposal{signed, signed, p})
		require.NoError(t, err)
		assert.True(t, combined.Tx.Inputs[0].ScriptSig.Equal(signed.Tx.Inputs[0].ScriptSig))
	})
}

func TestFinalizeAndExtractRejectsBadSignature(t *testing.T) {
	alice, bob := newParty(t, 0x10), newParty(t, 0x40)
	p, err := ProposeTransaction(twoPartyProposal(t, alice, bob))
	require.NoError(t, err)

	p, err = AppendSignature(p, 0, alice.key)
	require.NoError(t, err)
	p, err = AppendSignature(p, 1, bob.key)
	require.NoError(t, err)

	// Changing an output after signing invalidates every signature.
	p.Tx.Outputs[0].Amount--
	_, _, err = FinalizeAndExtract(p)
	assert.ErrorContains(t, err, "input 0: signature does not verify")
}
