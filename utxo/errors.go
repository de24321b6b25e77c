package utxo

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("utxo: required parameter is nil")

	// ErrInvalidRecord indicates a record is missing its address or outpoint.
	ErrInvalidRecord = errors.New("utxo: invalid record")

	// ErrDuplicateRecord indicates the record is already stored.
	ErrDuplicateRecord = errors.New("utxo: record already exists")

	// ErrRecordNotFound indicates the record to remove is not stored.
	ErrRecordNotFound = errors.New("utxo: record not found")
)
