package script

import (
	"encoding/hex"
	"strings"
)

// PayToPubKeyHash returns the P2PKH locking script
//
//	OP_DUP OP_HASH160 <hash> OP_EQUALVERIFY OP_CHECKSIG
func PayToPubKeyHash(hash [20]byte) *Script {
	return &Script{commands: []Command{
		Op(OpDup),
		Op(OpHash160),
		Data(hash[:]),
		Op(OpEqualVerify),
		Op(OpCheckSig),
	}}
}

// PayToWitnessPubKeyHash returns the version 0 witness program OP_0 <hash>.
func PayToWitnessPubKeyHash(hash [20]byte) *Script {
	return &Script{commands: []Command{
		Data(nil),
		Data(hash[:]),
	}}
}

// P2PKHSignatureScript returns the unlocking script <sig> <pubkey> that spends
// a P2PKH output. sig is a DER signature with the sighash type byte appended.
func P2PKHSignatureScript(sig, pubKey []byte) (*Script, error) {
	return New(Data(sig), Data(pubKey))
}

// PubKeyHash returns the 20-byte hash locked by a P2PKH script.
func (s *Script) PubKeyHash() ([20]byte, bool) {
	var hash [20]byte
	c := s.Commands()
	if len(c) != 5 ||
		!c[0].Equal(Op(OpDup)) ||
		!c[1].Equal(Op(OpHash160)) ||
		c[2].IsOperation() || len(c[2].data) != 20 ||
		!c[3].Equal(Op(OpEqualVerify)) ||
		!c[4].Equal(Op(OpCheckSig)) {
		return hash, false
	}
	copy(hash[:], c[2].data)
	return hash, true
}

// IsPayToPubKeyHash reports whether s is a P2PKH locking script.
func (s *Script) IsPayToPubKeyHash() bool {
	_, ok := s.PubKeyHash()
	return ok
}

// String disassembles the script, e.g.
// "OP_DUP OP_HASH160 89abcdef... OP_EQUALVERIFY OP_CHECKSIG".
// Elements print as hex; the empty element prints as OP_0.
func (s *Script) String() string {
	if s == nil {
		return ""
	}
	parts := make([]string, 0, len(s.commands))
	for _, c := range s.commands {
		switch {
		case c.IsOperation():
			parts = append(parts, OpcodeName(c.opcode))
		case len(c.data) == 0:
			parts = append(parts, OpcodeName(Op0))
		default:
			parts = append(parts, hex.EncodeToString(c.data))
		}
	}
	return strings.Join(parts, " ")
}
