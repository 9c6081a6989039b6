package address

import "fmt"

// Chain selects the network an address or key is encoded for. It is always
// passed explicitly; there is no process-wide default.
type Chain int

const (
	TestNet Chain = iota
	MainNet
)

// Base58Version returns the P2PKH version byte.
func (c Chain) Base58Version() byte {
	if c == MainNet {
		return 0x00
	}
	return 0x6f
}

// Bech32HRP returns the human-readable part of segwit addresses.
func (c Chain) Bech32HRP() string {
	if c == MainNet {
		return "bc"
	}
	return "tb"
}

// WIFVersion returns the version byte of WIF private keys.
func (c Chain) WIFVersion() byte {
	if c == MainNet {
		return 0x80
	}
	return 0xef
}

func (c Chain) String() string {
	switch c {
	case TestNet:
		return "testnet"
	case MainNet:
		return "mainnet"
	default:
		return fmt.Sprintf("Chain(%d)", int(c))
	}
}

// ParseChain maps "testnet" or "mainnet" to a Chain.
func ParseChain(s string) (Chain, error) {
	switch s {
	case "testnet":
		return TestNet, nil
	case "mainnet":
		return MainNet, nil
	default:
		return 0, fmt.Errorf("unknown chain %q (want testnet or mainnet)", s)
	}
}

func (c Chain) valid() bool {
	return c == TestNet || c == MainNet
}
