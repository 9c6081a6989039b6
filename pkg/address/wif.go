package address

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"

	"github.com/suffix-labs/btc-primitives/pkg/crypto"
)

// WIF compression flag, appended after the key when the matching public key
// is used in compressed form.
const wifCompressedFlag = 0x01

// ErrInvalidWIF is returned when a string is not a well-formed WIF key.
var ErrInvalidWIF = errors.New("invalid WIF private key")

// EncodeWIF encodes a private key in Wallet Import Format:
// base58check(version || key (32 bytes) || [0x01 if compressed]).
func EncodeWIF(key *crypto.PrivateKey, compressed bool, chain Chain) string {
	raw := key.Bytes()

	payload := make([]byte, 0, 33)
	payload = append(payload, raw[:]...)
	if compressed {
		payload = append(payload, wifCompressedFlag)
	}
	return base58.CheckEncode(payload, chain.WIFVersion())
}

// ParsePrivateKeyWIF decodes a WIF private key and reports the chain it was
// encoded for and whether it marks a compressed public key.
func ParsePrivateKeyWIF(wif string) (*crypto.PrivateKey, Chain, bool, error) {
	payload, version, err := base58.CheckDecode(wif)
	if err != nil {
		return nil, 0, false, fmt.Errorf("%w: %w", ErrInvalidWIF, err)
	}

	var chain Chain
	switch version {
	case MainNet.WIFVersion():
		chain = MainNet
	case TestNet.WIFVersion():
		chain = TestNet
	default:
		return nil, 0, false, fmt.Errorf("%w: version byte 0x%02x", ErrInvalidWIF, version)
	}

	compressed := false
	switch {
	case len(payload) == 32:
	case len(payload) == 33 && payload[32] == wifCompressedFlag:
		compressed = true
	default:
		return nil, 0, false, fmt.Errorf("%w: payload of %d bytes", ErrInvalidWIF, len(payload))
	}

	key, err := crypto.PrivateKeyFromBytes(payload[:32])
	if err != nil {
		return nil, 0, false, fmt.Errorf("%w: %w", ErrInvalidWIF, err)
	}
	return key, chain, compressed, nil
}
