package evmutil

import (
	"github.com/rotisserie/eris"
	"pkg.world.dev/world-engine/evmutil/router"
	"pkg.world.dev/world-engine/evmutil/store"
)

var (
	ErrInvalidAddressFormat = eris.New("address must be a valid 0x EVM address")
	ErrInvalidAddressLength = eris.New("invalid length of EVM address")

	ErrTokenAlreadyRegistered = store.ErrTokenAlreadyRegistered
	ErrTokenNotRegistered     = store.ErrTokenNotRegistered

	ErrNotInitialized     = router.ErrNotInitialized
	ErrAlreadyInitialized = eris.New("evmutil config already initialized")
	// ErrInvalidInit is returned when tokens exist and Init names a non-default EVM account or
	// gas symbol.
	ErrInvalidInit = eris.New("can only init with the default evm account and gas symbol")

	ErrAlreadyDeployed  = eris.New("cannot deploy again")
	ErrNoImplementation = eris.New("no implementation contract available")
	ErrNoGasFundAccount = eris.New("gas fund account is not initialized")

	ErrInvalidSender    = eris.New("invalid sender of bridge message")
	ErrTransferRejected = eris.New("this address should not accept tokens")
)
