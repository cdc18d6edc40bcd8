package units

import "github.com/rotisserie/eris"

var (
	ErrNotReservedAddress = eris.New("evm address is not a reserved address")
	ErrDustLoss           = eris.New("amount has dust that cannot be represented natively")
	ErrAmountOverflow     = eris.New("amount overflow")
	ErrNonPositiveAmount  = eris.New("amount must be positive")

	// ErrInvalidRate covers donate rates and precision deltas outside their allowed window.
	ErrInvalidRate = eris.New("rate or precision out of range")

	ErrInvalidAccount = eris.New("invalid account name")
	ErrInvalidSymbol  = eris.New("invalid symbol")
)
