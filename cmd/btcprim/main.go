// btcprim CLI - Bitcoin key, address and transaction tool
//
// This CLI exposes the btc-primitives packages for working with legacy
// Bitcoin transactions from the command line.
//
// Example usage:
//
//	# Derive a testnet Bech32 address from a WIF key
//	btcprim address --wif cMceqPhH... --encoding bech32
//
//	# Sign input 0 of a raw transaction
//	btcprim sign --tx 0100... --input 0 --prev-script 76a914...88ac --wif cMceqPhH...
//
//	# Decode a raw transaction
//	btcprim decode-tx 0100...
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"

	"github.com/suffix-labs/btc-primitives/pkg/address"
	"github.com/suffix-labs/btc-primitives/pkg/crypto"
	"github.com/suffix-labs/btc-primitives/pkg/script"
	"github.com/suffix-labs/btc-primitives/pkg/signer"
	"github.com/suffix-labs/btc-primitives/pkg/tx"
	"github.com/suffix-labs/btc-primitives/pkg/wire"
)

const version = "v0.1.0"

// keyOptions selects a private key either as WIF or as 32 hex bytes.
type keyOptions struct {
	WIF    string `long:"wif" env:"BTCPRIM_WIF" description:"private key in WIF"`
	KeyHex string `long:"key-hex" env:"BTCPRIM_KEY_HEX" description:"private key as 64 hex characters"`
}

type addressOptions struct {
	keyOptions
	Chain    string `long:"chain" env:"BTCPRIM_CHAIN" description:"network when --key-hex is used (mainnet, testnet)" default:"testnet"`
	Encoding string `long:"encoding" env:"BTCPRIM_ENCODING" description:"address encoding (base58, base58-uncompressed, bech32)" default:"base58"`
}

type wifOptions struct {
	KeyHex       string `long:"key-hex" env:"BTCPRIM_KEY_HEX" description:"private key as 64 hex characters" required:"true"`
	Chain        string `long:"chain" env:"BTCPRIM_CHAIN" description:"network (mainnet, testnet)" default:"testnet"`
	Uncompressed bool   `long:"uncompressed" description:"mark the key as using uncompressed public keys"`
}

type signOptions struct {
	keyOptions
	Tx         string `long:"tx" env:"BTCPRIM_TX" description:"raw transaction hex" required:"true"`
	Input      int    `long:"input" description:"index of the input to sign" default:"0"`
	PrevScript string `long:"prev-script" description:"hex scriptPubKey of the output being spent" required:"true"`
}

type verifyOptions struct {
	Tx         string `long:"tx" env:"BTCPRIM_TX" description:"raw transaction hex" required:"true"`
	Input      int    `long:"input" description:"index of the input to check" default:"0"`
	PrevScript string `long:"prev-script" description:"hex scriptPubKey of the output being spent" required:"true"`
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command, args := os.Args[1], os.Args[2:]

	switch command {
	case "address":
		err = cmdAddress(args)
	case "wif":
		err = cmdWIF(args)
	case "sign":
		err = cmdSign(args, logger)
	case "verify":
		err = cmdVerify(args, logger)
	case "decode-tx":
		err = cmdDecodeTx(args)
	case "version":
		fmt.Println("btcprim " + version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("command failed", zap.String("command", command), zap.Error(err))
	}
}

func printUsage() {
	fmt.Println(`btcprim - Bitcoin key, address and transaction tool

Usage:
  btcprim <command> [options]

Commands:
  address                      Derive an address from a private key
  wif                          Encode a hex private key as WIF
  sign                         Sign a P2PKH input of a raw transaction
  verify                       Check the signature of a P2PKH input
  decode-tx <hex>              Print the fields of a raw transaction
  version                      Show version information
  help                         Show this help message

Run 'btcprim <command> --help' for the options of a command.`)
}

func cmdAddress(args []string) error {
	var opts addressOptions
	if _, err := flags.ParseArgs(&opts, args); err != nil {
		return err
	}

	enc, err := address.ParseEncoding(opts.Encoding)
	if err != nil {
		return err
	}
	key, chain, err := opts.keyOptions.load(opts.Chain)
	if err != nil {
		return err
	}

	addr, err := address.New(key.PublicKey(), chain, enc)
	if err != nil {
		return fmt.Errorf("deriving address: %w", err)
	}
	fmt.Println(addr)
	return nil
}

func cmdWIF(args []string) error {
	var opts wifOptions
	if _, err := flags.ParseArgs(&opts, args); err != nil {
		return err
	}

	chain, err := address.ParseChain(opts.Chain)
	if err != nil {
		return err
	}
	key, err := parseKeyHex(opts.KeyHex)
	if err != nil {
		return err
	}

	fmt.Println(address.EncodeWIF(key, !opts.Uncompressed, chain))
	return nil
}

func cmdSign(args []string, logger *zap.Logger) error {
	var opts signOptions
	if _, err := flags.ParseArgs(&opts, args); err != nil {
		return err
	}

	unsigned, err := parseTxHex(opts.Tx)
	if err != nil {
		return err
	}
	prev, err := parseScriptHex(opts.PrevScript)
	if err != nil {
		return err
	}
	key, _, err := opts.keyOptions.load("")
	if err != nil {
		return err
	}

	s := signer.NewSigner(unsigned)
	if err := s.SignInput(opts.Input, prev, key, nil); err != nil {
		return err
	}
	signed := s.Finish()

	logger.Debug("signed input",
		zap.Int("input", opts.Input),
		zap.Stringer("txid", signed.ID()),
		zap.Int("size", len(signed.Serialize())))

	fmt.Println(hex.EncodeToString(signed.Serialize()))
	return nil
}

func cmdVerify(args []string, logger *zap.Logger) error {
	var opts verifyOptions
	if _, err := flags.ParseArgs(&opts, args); err != nil {
		return err
	}

	parsed, err := parseTxHex(opts.Tx)
	if err != nil {
		return err
	}
	prev, err := parseScriptHex(opts.PrevScript)
	if err != nil {
		return err
	}

	ok, err := signer.VerifyInput(parsed, opts.Input, prev)
	if err != nil {
		return err
	}
	logger.Debug("verified input", zap.Int("input", opts.Input), zap.Bool("valid", ok))

	if !ok {
		fmt.Println("invalid")
		os.Exit(2)
	}
	fmt.Println("valid")
	return nil
}

func cmdDecodeTx(args []string) error {
	if len(args) < 1 {
		return errors.New("transaction hex argument required")
	}
	parsed, err := parseTxHex(args[0])
	if err != nil {
		return err
	}
	fmt.Print(describeTx(parsed))
	return nil
}

// describeTx renders the fields of t one per line.
func describeTx(t *tx.Transaction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Transaction %s\n", t.ID())
	fmt.Fprintf(&b, "  Version:  %d\n", t.Version)
	fmt.Fprintf(&b, "  Locktime: %d\n", t.Locktime)
	if t.IsCoinbase() {
		fmt.Fprintln(&b, "  Coinbase: true")
	}

	fmt.Fprintf(&b, "Inputs: %d\n", len(t.Inputs))
	for i, in := range t.Inputs {
		fmt.Fprintf(&b, "  [%d] %s:%d\n", i, in.SourceID, in.SourceIndex)
		fmt.Fprintf(&b, "      scriptSig: %s\n", in.ScriptSig)
		fmt.Fprintf(&b, "      sequence:  0x%08x\n", in.Sequence)
	}

	fmt.Fprintf(&b, "Outputs: %d\n", len(t.Outputs))
	for i, out := range t.Outputs {
		fmt.Fprintf(&b, "  [%d] %d sat\n", i, out.Amount)
		fmt.Fprintf(&b, "      scriptPubKey: %s\n", out.ScriptPubKey)
	}
	return b.String()
}

// load returns the selected key. The chain comes from the WIF prefix when a
// WIF is given, and from chainName otherwise.
func (o keyOptions) load(chainName string) (*crypto.PrivateKey, address.Chain, error) {
	switch {
	case o.WIF != "" && o.KeyHex != "":
		return nil, 0, errors.New("--wif and --key-hex are mutually exclusive")
	case o.WIF != "":
		key, chain, _, err := address.ParsePrivateKeyWIF(o.WIF)
		return key, chain, err
	case o.KeyHex != "":
		chain := address.TestNet
		if chainName != "" {
			var err error
			if chain, err = address.ParseChain(chainName); err != nil {
				return nil, 0, err
			}
		}
		key, err := parseKeyHex(o.KeyHex)
		return key, chain, err
	default:
		return nil, 0, errors.New("one of --wif or --key-hex is required")
	}
}

func parseKeyHex(s string) (*crypto.PrivateKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding private key hex: %w", err)
	}
	return crypto.PrivateKeyFromBytes(b)
}

func parseTxHex(s string) (*tx.Transaction, error) {
	data, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("decoding transaction hex: %w", err)
	}
	parsed, n, err := tx.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing transaction: %w", err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%d trailing bytes after transaction", len(data)-n)
	}
	return parsed, nil
}

// parseScriptHex decodes a script given without its length prefix.
func parseScriptHex(s string) (*script.Script, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decoding script hex: %w", err)
	}
	parsed, _, err := script.Parse(append(wire.EncodeVarInt(uint64(len(raw))), raw...))
	if err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	return parsed, nil
}
