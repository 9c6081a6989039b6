package script

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/btc-primitives/pkg/wire"
)

const (
	// 65-byte uncompressed public key followed by OP_CHECKSIG.
	payToPubKeyHex = "434104887387e452b8eacc4acfde10d9aaf7f6d9a0f975aabb10d006e4da568744d06c61de6d95231cd89026e286df3b6ae4a894a3378e393e93a0f45b666329a0ae34ac"

	// DER signature with SIGHASH_ALL, then a compressed public key.
	signatureScriptHex = "6b483045022100ed81ff192e75a3fd2304004dcadb746fa5e24c5031ccfcf21320b0277457c98f02207a986d955c6e0cb35d446a89d3f56100f4d7f67801c31967743a9c8e10615bed01210349fc4e631e3624a545de3f89f5d8684c7b8138bd94bdd531d2e213bf016b278a"
)

func hexDecode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err, "Failed to decode hex: %s", s[:min(len(s), 20)])
	return b
}

// checkRoundTrip serializes s, parses the result and checks both directions.
func checkRoundTrip(t *testing.T, s *Script) []byte {
	t.Helper()

	encoded := s.Serialize()
	parsed, n, err := Parse(encoded)
	require.NoError(t, err)
	assert.Equal(t, len(encoded), n)
	assert.True(t, s.Equal(parsed), "round trip changed script: %s != %s", s, parsed)
	assert.Equal(t, encoded, parsed.Serialize())
	return encoded
}

func TestNew(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s, err := New()
		require.NoError(t, err)
		assert.Equal(t, 0, s.Len())
		assert.True(t, s.Equal(Empty()))
	})

	t.Run("push opcode rejected", func(t *testing.T) {
		_, err := New(Op(1))
		var ce *ConstructionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, 0, ce.Index)
	})

	t.Run("OP_PUSHDATA2 rejected at its index", func(t *testing.T) {
		_, err := New(Op(78), Op(77))
		var ce *ConstructionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, 1, ce.Index)
	})

	t.Run("first non-push opcode accepted", func(t *testing.T) {
		_, err := New(Op(78))
		require.NoError(t, err)
	})

	t.Run("mixed", func(t *testing.T) {
		_, err := New(Op(80), Data([]byte{0}), Op(107))
		require.NoError(t, err)
	})

	t.Run("largest element", func(t *testing.T) {
		_, err := New(Op(80), Data(make([]byte, 0xffff)), Op(107))
		require.NoError(t, err)
	})

	t.Run("element too large", func(t *testing.T) {
		_, err := New(Op(80), Data(make([]byte, 0x10000)), Op(107))
		var ce *ConstructionError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, 1, ce.Index)
	})
}

func TestDataCopiesInput(t *testing.T) {
	b := []byte{1, 2, 3}
	c := Data(b)
	b[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, c.Data())
	assert.NotNil(t, Data(nil).Data())
	assert.False(t, c.IsOperation())
	assert.True(t, Op(OpDup).IsOperation())
	assert.Nil(t, Op(OpDup).Data())
}

func TestSerializeFixtures(t *testing.T) {
	t.Run("pay to pubkey", func(t *testing.T) {
		encoded := hexDecode(t, payToPubKeyHex)
		s, err := New(Data(encoded[2:67]), Op(OpCheckSig))
		require.NoError(t, err)
		assert.Equal(t, encoded, checkRoundTrip(t, s))
		assert.Len(t, s.Raw(), 67)
	})

	t.Run("signature script", func(t *testing.T) {
		encoded := hexDecode(t, signatureScriptHex)
		require.Len(t, encoded, 108)

		s, n, err := Parse(encoded)
		require.NoError(t, err)
		assert.Equal(t, 108, n)
		require.Equal(t, 2, s.Len())
		assert.Len(t, s.Commands()[0].Data(), 72)
		assert.Len(t, s.Commands()[1].Data(), 33)

		rebuilt, err := P2PKHSignatureScript(s.Commands()[0].Data(), s.Commands()[1].Data())
		require.NoError(t, err)
		assert.Equal(t, encoded, rebuilt.Serialize())
	})
}

func TestElementBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		size   int
		prefix string // script length varint followed by push header
	}{
		{"empty", 0, "0100"},
		{"75 bytes", 75, "4c4b"},
		{"76 bytes", 76, "4e4c4c"},
		{"255 bytes", 255, "fd01014cff"},
		{"256 bytes", 256, "fd03014d0001"},
		{"0xffff bytes", 0xffff, "fe020001004dffff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			element := bytes.Repeat([]byte{0xab}, tt.size)
			s, err := New(Data(element))
			require.NoError(t, err)

			encoded := checkRoundTrip(t, s)
			prefix := hexDecode(t, tt.prefix)
			assert.Equal(t, prefix, encoded[:len(prefix)])
			assert.Equal(t, element, encoded[len(prefix):])
		})
	}
}

func TestParseTrailingBytes(t *testing.T) {
	data := append(hexDecode(t, payToPubKeyHex), 0xde, 0xad)
	_, n, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 68, n)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"truncated varint", "fd01"},
		{"declared length exceeds input", "05ac"},
		{"push overruns body", "0205aa"},
		{"push overruns body but not input", "0205aabbccddeeff"},
		{"missing OP_PUSHDATA1 length", "014c"},
		{"short OP_PUSHDATA2 length", "024d01"},
		{"OP_PUSHDATA1 overrun", "034c05aa"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse(hexDecode(t, tt.input))
			var pe *wire.ParseError
			require.ErrorAs(t, err, &pe)
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		})
	}
}

func TestRead(t *testing.T) {
	stream := append(hexDecode(t, payToPubKeyHex), hexDecode(t, signatureScriptHex)...)
	r := bytes.NewReader(stream)

	first, err := Read(r)
	require.NoError(t, err)
	assert.Equal(t, hexDecode(t, payToPubKeyHex), first.Serialize())

	second, err := Read(r)
	require.NoError(t, err)
	assert.Equal(t, hexDecode(t, signatureScriptHex), second.Serialize())

	_, err = Read(r)
	assert.True(t, errors.Is(err, io.EOF))

	_, err = Read(bytes.NewReader(hexDecode(t, "05acac")))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = Read(bytes.NewReader(hexDecode(t, "0205aa")))
	var pe *wire.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestStandardScripts(t *testing.T) {
	hash := [20]byte(hexDecode(t, "751e76e8199196d454941c45d1b3a323f1433bd6"))

	p2pkh := PayToPubKeyHash(hash)
	assert.Equal(t, "1976a914751e76e8199196d454941c45d1b3a323f1433bd688ac", hex.EncodeToString(p2pkh.Serialize()))
	assert.Equal(t, "OP_DUP OP_HASH160 751e76e8199196d454941c45d1b3a323f1433bd6 OP_EQUALVERIFY OP_CHECKSIG", p2pkh.String())
	checkRoundTrip(t, p2pkh)

	got, ok := p2pkh.PubKeyHash()
	require.True(t, ok)
	assert.Equal(t, hash, got)

	p2wpkh := PayToWitnessPubKeyHash(hash)
	assert.Equal(t, "160014751e76e8199196d454941c45d1b3a323f1433bd6", hex.EncodeToString(p2wpkh.Serialize()))
	assert.Equal(t, "OP_0 751e76e8199196d454941c45d1b3a323f1433bd6", p2wpkh.String())
	assert.False(t, p2wpkh.IsPayToPubKeyHash())
	checkRoundTrip(t, p2wpkh)

	_, ok = Empty().PubKeyHash()
	assert.False(t, ok)
}

func TestOpcodeName(t *testing.T) {
	assert.Equal(t, "OP_CHECKSIG", OpcodeName(OpCheckSig))
	assert.Equal(t, "OP_1", OpcodeName(Op1))
	assert.Equal(t, "OP_16", OpcodeName(Op16))
	assert.Equal(t, "OP_UNKNOWN_0xff", OpcodeName(0xff))
}
