package units

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rotisserie/eris"
)

// AddressSpace maps native accounts onto a reserved subrange of EVM addresses and back.
type AddressSpace interface {
	// AccountFromReserved extracts the account from a reserved address. Non-reserved
	// addresses fail with ErrNotReservedAddress.
	AccountFromReserved(addr common.Address) (Account, error)

	// ReservedFromAccount always succeeds.
	ReservedFromAccount(account Account) common.Address
}

// reservedPrefixLen is the number of leading bytes shared by every reserved address.
const reservedPrefixLen = common.AddressLength - 8

// PrefixSpace reserves every address that starts with 12 copies of a fixed byte and stores
// the account big-endian in the remaining 8 bytes.
type PrefixSpace struct {
	Prefix byte
}

var _ AddressSpace = PrefixSpace{}

// DefaultAddressSpace is the reserved range used by the embedded EVM: 0xbbbb...bb followed by
// the account.
var DefaultAddressSpace = PrefixSpace{Prefix: 0xbb} //nolint:gochecknoglobals // constant value

func (p PrefixSpace) AccountFromReserved(addr common.Address) (Account, error) {
	for _, b := range addr[:reservedPrefixLen] {
		if b != p.Prefix {
			return 0, eris.Wrapf(ErrNotReservedAddress, "%s", addr.Hex())
		}
	}
	return Account(binary.BigEndian.Uint64(addr[reservedPrefixLen:])), nil
}

func (p PrefixSpace) ReservedFromAccount(account Account) common.Address {
	var addr common.Address
	for i := range reservedPrefixLen {
		addr[i] = p.Prefix
	}
	binary.BigEndian.PutUint64(addr[reservedPrefixLen:], uint64(account))
	return addr
}
