package evmutil

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rotisserie/eris"
)

// ParseAddress parses a 0x-prefixed hex address as given to the admin actions.
func ParseAddress(s string) (common.Address, error) {
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Address{}, eris.Wrapf(ErrInvalidAddressFormat, "%q: %v", s, err)
	}
	if len(b) != common.AddressLength {
		return common.Address{}, eris.Wrapf(ErrInvalidAddressLength, "%q has %d bytes", s, len(b))
	}
	return common.BytesToAddress(b), nil
}
