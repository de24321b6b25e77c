package protostone

import "errors"

var (
	// ErrTruncated indicates a varint ran past the end of its input.
	ErrTruncated = errors.New("protostone: truncated varint")

	// ErrOverflow indicates a varint did not terminate within 128 bits.
	ErrOverflow = errors.New("protostone: varint overflows 128 bits")

	// ErrZeroProtocol indicates an instruction with subprotocol id 0, which
	// the wire format reserves as the end-of-stream sentinel.
	ErrZeroProtocol = errors.New("protostone: subprotocol id must be non-zero")

	// ErrZeroAmount indicates an edict moving zero units.
	ErrZeroAmount = errors.New("protostone: edict amount must be non-zero")

	// ErrNativeAsset indicates an edict naming plain bitcoin instead of a token.
	ErrNativeAsset = errors.New("protostone: edict asset must be a token id")

	// ErrInvalidCarrier indicates a script is not OP_RETURN OP_13 <push>.
	ErrInvalidCarrier = errors.New("protostone: invalid carrier script")

	// ErrNotProtostone indicates a carrier whose marker is not 16383.
	ErrNotProtostone = errors.New("protostone: carrier marker mismatch")
)
