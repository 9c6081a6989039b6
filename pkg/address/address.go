// Package address encodes public keys as Bitcoin addresses.
//
// Two address kinds are supported:
//   - P2PKH, Base58Check of version || hash160(pubkey)
//   - P2WPKH, Bech32 (BIP-173) witness version 0 program hash160(pubkey)
//
// Encoding is one-way; addresses are never decoded back to hashes here.
package address

import (
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/btcsuite/btcutil/bech32"

	"github.com/suffix-labs/btc-primitives/pkg/crypto"
)

// Encoding selects the address format and, for Base58, the public key form
// that is hashed.
type Encoding int

const (
	// Base58 is P2PKH over the compressed public key.
	Base58 Encoding = iota
	// Base58Uncompressed is P2PKH over the uncompressed public key.
	Base58Uncompressed
	// Bech32 is P2WPKH over the compressed public key.
	Bech32
)

func (e Encoding) String() string {
	switch e {
	case Base58:
		return "base58"
	case Base58Uncompressed:
		return "base58-uncompressed"
	case Bech32:
		return "bech32"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// ParseEncoding maps the names returned by Encoding.String back to values.
func ParseEncoding(s string) (Encoding, error) {
	for _, e := range []Encoding{Base58, Base58Uncompressed, Bech32} {
		if e.String() == s {
			return e, nil
		}
	}
	return 0, fmt.Errorf("unknown address encoding %q", s)
}

// Address is an encoded address string.
type Address string

func (a Address) String() string {
	return string(a)
}

// New derives the address of pub for chain in the given encoding.
func New(pub *crypto.PublicKey, chain Chain, enc Encoding) (Address, error) {
	if pub == nil {
		return "", fmt.Errorf("nil public key")
	}

	var hash [20]byte
	switch enc {
	case Base58Uncompressed:
		sec := pub.SerializeUncompressed()
		hash = crypto.Hash160(sec[:])
	case Base58, Bech32:
		sec := pub.SerializeCompressed()
		hash = crypto.Hash160(sec[:])
	default:
		return "", fmt.Errorf("unknown address encoding %d", int(enc))
	}
	return FromPubKeyHash(hash, chain, enc)
}

// FromPubKeyHash encodes a 20-byte public key hash. Base58 and
// Base58Uncompressed give the same result here since the hash is already
// taken.
func FromPubKeyHash(hash [20]byte, chain Chain, enc Encoding) (Address, error) {
	if !chain.valid() {
		return "", fmt.Errorf("unknown chain %d", int(chain))
	}

	switch enc {
	case Base58, Base58Uncompressed:
		payload := make([]byte, 0, 1+len(hash))
		payload = append(payload, chain.Base58Version())
		payload = append(payload, hash[:]...)
		return Address(Base58Check(payload)), nil
	case Bech32:
		addr, err := SegwitV0(chain.Bech32HRP(), hash[:])
		if err != nil {
			return "", err
		}
		return Address(addr), nil
	default:
		return "", fmt.Errorf("unknown address encoding %d", int(enc))
	}
}

// Base58Check returns base58(payload || hash256(payload)[:4]). Every leading
// zero byte of payload becomes one leading '1'.
func Base58Check(payload []byte) string {
	checksum := crypto.Hash256(payload)

	data := make([]byte, 0, len(payload)+4)
	data = append(data, payload...)
	data = append(data, checksum[:4]...)
	return base58.Encode(data)
}

// SegwitV0 returns the Bech32 encoding of a version 0 witness program under
// the human-readable part hrp.
func SegwitV0(hrp string, program []byte) (string, error) {
	converted, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("converting witness program: %w", err)
	}

	data := make([]byte, 0, 1+len(converted))
	data = append(data, 0x00)
	data = append(data, converted...)

	addr, err := bech32.Encode(hrp, data)
	if err != nil {
		return "", fmt.Errorf("encoding bech32: %w", err)
	}
	return addr, nil
}
