// Package signer signs and checks P2PKH inputs of legacy transactions.
//
// Signing an input:
//  1. Computes the SIGHASH_ALL signature hash against the spent output's
//     scriptPubKey
//  2. Signs it with ECDSA
//  3. Installs <DER signature || 0x01> <public key> as the input's scriptSig
//
// The public key is serialized in whichever SEC form hashes to the
// scriptPubKey's locked hash.
package signer

import (
	"fmt"

	"github.com/suffix-labs/btc-primitives/pkg/crypto"
	"github.com/suffix-labs/btc-primitives/pkg/script"
	"github.com/suffix-labs/btc-primitives/pkg/tx"
)

// Signer adds scriptSigs to the inputs of a transaction.
//
// Each input is signed independently; the signature hash of one input does
// not depend on the scriptSigs of the others, so inputs can be signed in any
// order.
type Signer struct {
	tx *tx.Transaction
}

// NewSigner creates a Signer working on a copy of t.
func NewSigner(t *tx.Transaction) *Signer {
	return &Signer{tx: t.Clone()}
}

// SignInput signs input index, which spends an output locked by
// prevScriptPubKey, with key. Nonces are drawn from nonces, or from
// crypto/rand when nonces is nil.
//
// Returns an error if:
//   - The input index is out of bounds
//   - prevScriptPubKey is not P2PKH
//   - Neither SEC form of key's public key hashes to the locked hash
//   - Signing fails
func (s *Signer) SignInput(
	index int,
	prevScriptPubKey *script.Script,
	key *crypto.PrivateKey,
	nonces crypto.NonceSource,
) error {
	if index < 0 || index >= len(s.tx.Inputs) {
		return &InputError{
			InputIndex: index,
			Message:    fmt.Sprintf("out of bounds (have %d inputs)", len(s.tx.Inputs)),
		}
	}
	if key == nil {
		return &InputError{InputIndex: index, Message: "nil private key"}
	}

	lockedHash, ok := prevScriptPubKey.PubKeyHash()
	if !ok {
		return &InputError{InputIndex: index, Message: "previous output is not P2PKH"}
	}
	pubKey, err := matchingPubKey(key.PublicKey(), lockedHash)
	if err != nil {
		return &InputError{InputIndex: index, Message: "key does not match previous output", Cause: err}
	}

	sighash, err := s.tx.SigHash(index, prevScriptPubKey, tx.SigHashAll)
	if err != nil {
		return &InputError{InputIndex: index, Message: "computing sighash", Cause: err}
	}

	sig, err := crypto.Sign(sighash, key, nonces)
	if err != nil {
		return &InputError{InputIndex: index, Message: "signing", Cause: err}
	}

	// Bitcoin signatures carry the sighash type after the DER bytes.
	signature := append(sig.Serialize(), byte(tx.SigHashAll))

	scriptSig, err := script.P2PKHSignatureScript(signature, pubKey)
	if err != nil {
		return &InputError{InputIndex: index, Message: "building scriptSig", Cause: err}
	}
	s.tx.Inputs[index].ScriptSig = scriptSig

	return nil
}

// Finish returns the transaction with every scriptSig installed so far.
func (s *Signer) Finish() *tx.Transaction {
	return s.tx.Clone()
}

// matchingPubKey returns the SEC serialization of pub whose hash160 is
// lockedHash, preferring the compressed form.
func matchingPubKey(pub *crypto.PublicKey, lockedHash [20]byte) ([]byte, error) {
	compressed := pub.SerializeCompressed()
	if crypto.Hash160(compressed[:]) == lockedHash {
		return compressed[:], nil
	}
	uncompressed := pub.SerializeUncompressed()
	if crypto.Hash160(uncompressed[:]) == lockedHash {
		return uncompressed[:], nil
	}
	return nil, fmt.Errorf("hash160 of public key %x is not %x", compressed, lockedHash)
}

// VerifyInput checks that input index of t is a valid P2PKH spend of an
// output locked by prevScriptPubKey.
//
// An error is returned only when the input or scripts are malformed: index
// out of range, a non-P2PKH prevScriptPubKey, or a scriptSig that is not two
// pushes of a DER signature with sighash byte and a SEC public key. A well
// formed input whose public key hash or signature does not match yields
// false.
func VerifyInput(t *tx.Transaction, index int, prevScriptPubKey *script.Script) (bool, error) {
	if index < 0 || index >= len(t.Inputs) {
		return false, &InputError{
			InputIndex: index,
			Message:    fmt.Sprintf("out of bounds (have %d inputs)", len(t.Inputs)),
		}
	}

	lockedHash, ok := prevScriptPubKey.PubKeyHash()
	if !ok {
		return false, &InputError{InputIndex: index, Message: "previous output is not P2PKH"}
	}

	commands := t.Inputs[index].ScriptSig.Commands()
	if len(commands) != 2 || commands[0].IsOperation() || commands[1].IsOperation() {
		return false, &InputError{InputIndex: index, Message: "scriptSig is not <sig> <pubkey>"}
	}
	sigBytes, pubKeyBytes := commands[0].Data(), commands[1].Data()

	if len(sigBytes) < 1 {
		return false, &InputError{InputIndex: index, Message: "empty signature"}
	}
	hashType := uint32(sigBytes[len(sigBytes)-1])
	sig, err := crypto.ParseDERSignature(sigBytes[:len(sigBytes)-1])
	if err != nil {
		return false, &InputError{InputIndex: index, Message: "decoding signature", Cause: err}
	}

	pubKey, err := crypto.ParsePublicKey(pubKeyBytes)
	if err != nil {
		return false, &InputError{InputIndex: index, Message: "decoding public key", Cause: err}
	}

	if crypto.Hash160(pubKeyBytes) != lockedHash {
		return false, nil
	}

	sighash, err := t.SigHash(index, prevScriptPubKey, hashType)
	if err != nil {
		return false, &InputError{InputIndex: index, Message: "computing sighash", Cause: err}
	}

	return crypto.Verify(sighash, sig, pubKey), nil
}
