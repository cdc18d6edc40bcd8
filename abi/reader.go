package abi

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/rotisserie/eris"
)

// WordSize is the size of an ABI word.
const WordSize = 32

// addressPadding is the number of leading bytes of a word that must be zero for the word to
// hold an address.
const addressPadding = WordSize - common.AddressLength

// ReadWord reads the 32-byte big-endian word starting at offset.
func ReadWord(data []byte, offset int) (*uint256.Int, error) {
	if offset < 0 || offset+WordSize > len(data) {
		return nil, eris.Wrapf(ErrTruncatedMessage, "word at offset %d exceeds payload of %d bytes", offset, len(data))
	}
	return new(uint256.Int).SetBytes32(data[offset : offset+WordSize]), nil
}

// ReadAddress reads the word at offset and interprets its low 20 bytes as an address.
func ReadAddress(data []byte, offset int) (common.Address, error) {
	if offset < 0 || offset+WordSize > len(data) {
		return common.Address{}, eris.Wrapf(ErrTruncatedMessage,
			"address at offset %d exceeds payload of %d bytes", offset, len(data))
	}
	word := data[offset : offset+WordSize]
	for _, b := range word[:addressPadding] {
		if b != 0 {
			return common.Address{}, eris.Wrapf(ErrInvalidAddress, "word at offset %d has non-zero high bytes", offset)
		}
	}
	return common.BytesToAddress(word[addressPadding:]), nil
}

// Reader is a cursor over an ABI payload. Every read is bounds checked and advances the cursor.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the current cursor position.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || n > r.Remaining() {
		return eris.Wrapf(ErrTruncatedMessage, "cannot skip %d bytes at offset %d of %d", n, r.off, len(r.data))
	}
	r.off += n
	return nil
}

// ReadSelector reads a 4-byte selector.
func (r *Reader) ReadSelector() (Selector, error) {
	s, err := PeekSelector(r.data[r.off:])
	if err != nil {
		return Selector{}, err
	}
	r.off += SelectorSize
	return s, nil
}

func (r *Reader) ReadWord() (*uint256.Int, error) {
	w, err := ReadWord(r.data, r.off)
	if err != nil {
		return nil, err
	}
	r.off += WordSize
	return w, nil
}

func (r *Reader) ReadAddress() (common.Address, error) {
	a, err := ReadAddress(r.data, r.off)
	if err != nil {
		return common.Address{}, err
	}
	r.off += WordSize
	return a, nil
}

// ReadUint8 reads a word that must fit in a uint8.
func (r *Reader) ReadUint8() (uint8, error) {
	w, err := r.ReadWord()
	if err != nil {
		return 0, err
	}
	if !w.IsUint64() || w.Uint64() > 0xff {
		return 0, eris.Wrapf(ErrValueOutOfRange, "word at offset %d does not fit uint8", r.off-WordSize)
	}
	return uint8(w.Uint64()), nil
}
