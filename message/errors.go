package message

import "github.com/rotisserie/eris"

var (
	// ErrUnsupportedOperation is returned for a selector the message family does not know.
	ErrUnsupportedOperation = eris.New("unsupported bridge message operation")

	// ErrUnsupportedMessageVersion is returned for any envelope version other than 0.
	ErrUnsupportedMessageVersion = eris.New("unsupported bridge message version")
)
