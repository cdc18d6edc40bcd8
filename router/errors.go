package router

import (
	"github.com/rotisserie/eris"
	"pkg.world.dev/world-engine/evmutil/store"
)

var (
	// ErrUnknownSender is returned when the sender matches no helper and no registered token.
	ErrUnknownSender = store.ErrTokenNotRegistered

	// ErrWrongReceiver is returned when a message is addressed to another native account.
	ErrWrongReceiver = eris.New("invalid message receiver")

	// ErrInvalidOperation is returned for operations a channel may never perform, such as a
	// restake through a deposit proxy.
	ErrInvalidOperation = eris.New("invalid operation")

	// ErrNotInitialized is returned when routing before the bridge configuration exists.
	ErrNotInitialized = eris.New("bridge is not initialized")
)
