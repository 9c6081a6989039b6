package crypto

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // RIPEMD-160 is fixed by the address format
)

// Sha256 returns SHA-256(data).
func Sha256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// Hash256 returns SHA-256(SHA-256(data)), the checksum and txid hash.
func Hash256(data []byte) [32]byte {
	return [32]byte(chainhash.DoubleHashH(data))
}

// Ripemd160 returns RIPEMD-160(data).
func Ripemd160(data []byte) [20]byte {
	h := ripemd160.New()
	h.Write(data)

	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Hash160 returns RIPEMD-160(SHA-256(data)), the public key hash used in
// addresses and P2PKH scripts.
func Hash160(data []byte) [20]byte {
	digest := sha256.Sum256(data)
	return Ripemd160(digest[:])
}
