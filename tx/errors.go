package tx

import "errors"

var (
	// ErrNoInputs indicates a build with zero inputs.
	ErrNoInputs = errors.New("tx: transaction has no inputs")

	// ErrNoOutputs indicates a build with zero outputs.
	ErrNoOutputs = errors.New("tx: transaction has no outputs")

	// ErrInvalidOutput indicates an output sets both or neither of address and script.
	ErrInvalidOutput = errors.New("tx: output needs exactly one of address or script")

	// ErrInputValue indicates an input value that a transaction cannot carry.
	ErrInputValue = errors.New("tx: input value out of range")

	// ErrScriptValue indicates a script-bearing output with a non-zero value.
	ErrScriptValue = errors.New("tx: script output must carry zero value")

	// ErrInvalidAddress indicates an address that cannot be decoded.
	ErrInvalidAddress = errors.New("tx: invalid address")

	// ErrNetworkMismatch indicates an address encoded for another network.
	ErrNetworkMismatch = errors.New("tx: address is for a different network")

	// ErrInvalidTxID indicates a previous txid that is not 32 bytes of hex.
	ErrInvalidTxID = errors.New("tx: invalid previous txid")

	// ErrDuplicateInput indicates the same outpoint was added twice.
	ErrDuplicateInput = errors.New("tx: duplicate input outpoint")

	// ErrMissingKey indicates a signed input without a key reference.
	ErrMissingKey = errors.New("tx: signed input has no key")

	// ErrMissingWitness indicates a pre-witnessed input without a witness.
	ErrMissingWitness = errors.New("tx: witnessed input has no witness")

	// ErrInputIndex indicates an input index out of range.
	ErrInputIndex = errors.New("tx: input index out of range")

	// ErrNotSignable indicates an input whose witness is supplied by the caller.
	ErrNotSignable = errors.New("tx: input is not signed by the assembler")

	// ErrSignatureFormat indicates a signer returned bytes that are not a 64-byte signature.
	ErrSignatureFormat = errors.New("tx: signature must be 64 bytes")

	// ErrSigningFailed indicates the external signer failed.
	ErrSigningFailed = errors.New("tx: signing failed")

	// ErrIncomplete indicates finalization with unsigned inputs.
	ErrIncomplete = errors.New("tx: inputs are not fully signed")

	// ErrFinalized indicates an operation on an already finalized skeleton.
	ErrFinalized = errors.New("tx: skeleton already finalized")

	// ErrIncompatibleSkeleton indicates packets that do not share an unsigned transaction.
	ErrIncompatibleSkeleton = errors.New("tx: incompatible skeletons")

	// ErrInvalidPacket indicates a packet that is neither hex nor base64 PSBT.
	ErrInvalidPacket = errors.New("tx: invalid PSBT packet")
)
