package script

import "fmt"

// Opcodes used by the standard templates and the disassembler.
const (
	Op0         byte = 0x00
	OpPushData1 byte = 0x4c
	OpPushData2 byte = 0x4d
	OpPushData4 byte = 0x4e
	Op1Negate   byte = 0x4f
	Op1         byte = 0x51
	Op16        byte = 0x60

	OpNop    byte = 0x61
	OpIf     byte = 0x63
	OpNotIf  byte = 0x64
	OpElse   byte = 0x67
	OpEndIf  byte = 0x68
	OpVerify byte = 0x69
	OpReturn byte = 0x6a

	OpDrop byte = 0x75
	OpDup  byte = 0x76
	OpSwap byte = 0x7c

	OpEqual       byte = 0x87
	OpEqualVerify byte = 0x88

	OpAdd byte = 0x93
	OpSub byte = 0x94

	OpRipemd160           byte = 0xa6
	OpSha1                byte = 0xa7
	OpSha256              byte = 0xa8
	OpHash160             byte = 0xa9
	OpHash256             byte = 0xaa
	OpCheckSig            byte = 0xac
	OpCheckSigVerify      byte = 0xad
	OpCheckMultiSig       byte = 0xae
	OpCheckMultiSigVerify byte = 0xaf

	OpCheckLockTimeVerify byte = 0xb1
	OpCheckSequenceVerify byte = 0xb2
)

var opcodeNames = map[byte]string{
	Op0:                   "OP_0",
	OpPushData1:           "OP_PUSHDATA1",
	OpPushData2:           "OP_PUSHDATA2",
	OpPushData4:           "OP_PUSHDATA4",
	Op1Negate:             "OP_1NEGATE",
	OpNop:                 "OP_NOP",
	OpIf:                  "OP_IF",
	OpNotIf:               "OP_NOTIF",
	OpElse:                "OP_ELSE",
	OpEndIf:               "OP_ENDIF",
	OpVerify:              "OP_VERIFY",
	OpReturn:              "OP_RETURN",
	OpDrop:                "OP_DROP",
	OpDup:                 "OP_DUP",
	OpSwap:                "OP_SWAP",
	OpEqual:               "OP_EQUAL",
	OpEqualVerify:         "OP_EQUALVERIFY",
	OpAdd:                 "OP_ADD",
	OpSub:                 "OP_SUB",
	OpRipemd160:           "OP_RIPEMD160",
	OpSha1:                "OP_SHA1",
	OpSha256:              "OP_SHA256",
	OpHash160:             "OP_HASH160",
	OpHash256:             "OP_HASH256",
	OpCheckSig:            "OP_CHECKSIG",
	OpCheckSigVerify:      "OP_CHECKSIGVERIFY",
	OpCheckMultiSig:       "OP_CHECKMULTISIG",
	OpCheckMultiSigVerify: "OP_CHECKMULTISIGVERIFY",
	OpCheckLockTimeVerify: "OP_CHECKLOCKTIMEVERIFY",
	OpCheckSequenceVerify: "OP_CHECKSEQUENCEVERIFY",
}

// OpcodeName returns the conventional name of opcode, e.g. "OP_DUP".
func OpcodeName(opcode byte) string {
	if name, ok := opcodeNames[opcode]; ok {
		return name
	}
	if opcode >= Op1 && opcode <= Op16 {
		return fmt.Sprintf("OP_%d", opcode-Op1+1)
	}
	return fmt.Sprintf("OP_UNKNOWN_0x%02x", opcode)
}
