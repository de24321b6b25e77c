package fee

import "errors"

var (
	// ErrInsufficientFunds indicates inputs cannot cover outputs plus fee.
	ErrInsufficientFunds = errors.New("fee: insufficient funds")

	// ErrInvalidOutput indicates an output with neither an address nor a script.
	ErrInvalidOutput = errors.New("fee: output needs an address or a script")
)
