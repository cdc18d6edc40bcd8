package abi

import "github.com/rotisserie/eris"

var (
	// ErrTruncatedMessage is returned when a read would run past the end of the payload.
	ErrTruncatedMessage = eris.New("not enough data in bridge message")

	// ErrInvalidAddress is returned when a word used as an address has any of its top 12 bytes set.
	ErrInvalidAddress = eris.New("invalid evm address")

	// ErrValueOutOfRange is returned when a word does not fit the narrower integer type being read.
	ErrValueOutOfRange = eris.New("abi word out of range")
)
