package abi

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rotisserie/eris"
)

// SelectorSize is the length of a function selector in bytes.
const SelectorSize = 4

// Selector is the 4-byte function selector as it appears on the wire.
type Selector [SelectorSize]byte

// SelectorFromSignature returns the first four bytes of the Keccak-256 hash of a canonical
// function signature such as "transfer(address,uint256)".
func SelectorFromSignature(signature string) Selector {
	var s Selector
	copy(s[:], crypto.Keccak256([]byte(signature))[:SelectorSize])
	return s
}

// SelectorFromAppType builds a selector from the ledger-side application type.
func SelectorFromAppType(appType uint32) Selector {
	var s Selector
	binary.LittleEndian.PutUint32(s[:], appType)
	return s
}

// PeekSelector returns the selector at the start of data.
func PeekSelector(data []byte) (Selector, error) {
	if len(data) < SelectorSize {
		return Selector{}, eris.Wrapf(ErrTruncatedMessage, "need %d bytes for selector, got %d", SelectorSize, len(data))
	}
	var s Selector
	copy(s[:], data[:SelectorSize])
	return s, nil
}

// AppType is the selector read as a host-order (little-endian) uint32. The ledger side
// identifies message kinds by this value, so selector 0xf45346dc has app type 0xdc4653f4.
func (s Selector) AppType() uint32 {
	return binary.LittleEndian.Uint32(s[:])
}

// Bytes returns a copy of the selector bytes.
func (s Selector) Bytes() []byte {
	return []byte{s[0], s[1], s[2], s[3]}
}

func (s Selector) String() string {
	return "0x" + hex.EncodeToString(s[:])
}
