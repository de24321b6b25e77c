package transfer

import "errors"

var (
	// ErrInvalidRequest indicates a withdrawal request with a missing or
	// malformed field.
	ErrInvalidRequest = errors.New("transfer: invalid withdraw request")

	// ErrAssetNotAllowed indicates the requested asset is not whitelisted.
	ErrAssetNotAllowed = errors.New("transfer: asset not allowed")

	// ErrQueueFull indicates the withdraw queue is at capacity.
	ErrQueueFull = errors.New("transfer: queue full")

	// ErrQueueEmpty indicates there is nothing to withdraw.
	ErrQueueEmpty = errors.New("transfer: queue empty")

	// ErrDuplicateRequest indicates a request with the same id is queued.
	ErrDuplicateRequest = errors.New("transfer: request already queued")

	// ErrAlreadyProcessed indicates a request id was already sent.
	ErrAlreadyProcessed = errors.New("transfer: request already processed")

	// ErrPending indicates an earlier transaction is still unconfirmed.
	ErrPending = errors.New("transfer: pending transaction unconfirmed")

	// ErrBusy indicates another pipeline is running on the same context.
	ErrBusy = errors.New("transfer: pipeline already running")

	// ErrNothingToConsolidate indicates the top-up address holds no tokens.
	ErrNothingToConsolidate = errors.New("transfer: nothing to consolidate")

	// ErrAmountOverflow indicates a balance that does not fit one record.
	ErrAmountOverflow = errors.New("transfer: asset amount overflows 64 bits")

	// ErrNoFeeRate indicates neither the node nor the fallback gave a rate.
	ErrNoFeeRate = errors.New("transfer: no fee rate available")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("transfer: required parameter is nil")

	// ErrStoreUpdate indicates the store could not record a broadcast
	// transaction. The transaction itself was sent.
	ErrStoreUpdate = errors.New("transfer: store update failed after broadcast")
)
