// Package asset identifies the fungible asset classes tracked by the
// protostone overlay.
package asset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// NativeName is the text form of plain bitcoin held by a UTXO record.
const NativeName = "native"

// ErrInvalidID indicates an asset id string is not "block:tx" or "native".
var ErrInvalidID = errors.New("asset: invalid asset id")

// ID is a (major, minor) asset identifier, written "block:tx".
// The zero value is the asset 0:0; plain bitcoin is represented by Native.
type ID struct {
	Block uint64
	Tx    uint32

	native bool
}

// Native is the marker for plain bitcoin balances.
var Native = ID{native: true}

// New returns the asset id block:tx.
func New(block uint64, tx uint32) ID {
	return ID{Block: block, Tx: tx}
}

// IsNative reports whether id denotes plain bitcoin.
func (id ID) IsNative() bool { return id.native }

// Parse reads "block:tx" or "native".
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == NativeName {
		return Native, nil
	}
	blockStr, txStr, ok := strings.Cut(s, ":")
	if !ok {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	block, err := strconv.ParseUint(blockStr, 10, 64)
	if err != nil {
		return ID{}, fmt.Errorf("%w: block %q: %w", ErrInvalidID, blockStr, err)
	}
	tx, err := strconv.ParseUint(txStr, 10, 32)
	if err != nil {
		return ID{}, fmt.Errorf("%w: tx %q: %w", ErrInvalidID, txStr, err)
	}
	return ID{Block: block, Tx: uint32(tx)}, nil
}

// String returns "block:tx", or "native".
func (id ID) String() string {
	if id.native {
		return NativeName
	}
	return strconv.FormatUint(id.Block, 10) + ":" + strconv.FormatUint(uint64(id.Tx), 10)
}

// Compare orders ids by (Block, Tx). Native sorts before every token id.
func (id ID) Compare(other ID) int {
	switch {
	case id.native && other.native:
		return 0
	case id.native:
		return -1
	case other.native:
		return 1
	}
	switch {
	case id.Block < other.Block:
		return -1
	case id.Block > other.Block:
		return 1
	case id.Tx < other.Tx:
		return -1
	case id.Tx > other.Tx:
		return 1
	}
	return 0
}

// Less reports whether id orders before other.
func (id ID) Less(other ID) bool { return id.Compare(other) < 0 }

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
