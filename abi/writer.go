package abi

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// WriteWord encodes w as a 32-byte big-endian word.
func WriteWord(w *uint256.Int) []byte {
	b := w.Bytes32()
	return b[:]
}

// WriteUint64AsWord encodes v as a 32-byte word.
func WriteUint64AsWord(v uint64) []byte {
	return WriteWord(uint256.NewInt(v))
}

// WriteUint32AsWord encodes v as a 32-byte word.
func WriteUint32AsWord(v uint32) []byte {
	return WriteUint64AsWord(uint64(v))
}

// WriteAddress left-pads an address to a word.
func WriteAddress(a common.Address) []byte {
	return common.LeftPadBytes(a.Bytes(), WordSize)
}

// WriteBool encodes b as the word 0 or 1.
func WriteBool(b bool) []byte {
	if b {
		return WriteUint64AsWord(1)
	}
	return WriteUint64AsWord(0)
}

// WriteDynamicBytes encodes b as a length word followed by the content zero-padded to a
// multiple of 32 bytes.
func WriteDynamicBytes(b []byte) []byte {
	padded := (len(b) + WordSize - 1) / WordSize * WordSize
	out := make([]byte, 0, WordSize+padded)
	out = append(out, WriteUint64AsWord(uint64(len(b)))...)
	out = append(out, b...)
	return append(out, make([]byte, padded-len(b))...)
}
