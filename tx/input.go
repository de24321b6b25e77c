package tx

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// SigScope selects what an input's signature commits to.
type SigScope uint8

const (
	// ScopeAll signs with SIGHASH_ALL: every input and output.
	ScopeAll SigScope = iota
	// ScopeAnyoneCanPay signs with SIGHASH_ALL|ANYONECANPAY: this input
	// and every output.
	ScopeAnyoneCanPay
	// ScopeWitnessed marks an input whose witness the caller supplies.
	ScopeWitnessed
)

// String returns the scope name.
func (s SigScope) String() string {
	switch s {
	case ScopeAll:
		return "all"
	case ScopeAnyoneCanPay:
		return "anyonecanpay"
	case ScopeWitnessed:
		return "witnessed"
	default:
		return fmt.Sprintf("SigScope(%d)", uint8(s))
	}
}

// SigHashType returns the taproot sighash flag for the scope.
func (s SigScope) SigHashType() txscript.SigHashType {
	if s == ScopeAnyoneCanPay {
		return txscript.SigHashAll | txscript.SigHashAnyOneCanPay
	}
	return txscript.SigHashAll
}

// KeyRef names a signer key and its derivation path.
type KeyRef struct {
	Name string
	Path [][]byte
	// Aux is handed to the signer as auxiliary nonce data. Optional.
	Aux []byte
}

// Input is a previous output to spend.
type Input struct {
	TxID    string // hex, display byte order
	Vout    uint32
	Value   uint64
	Address string // owner of the previous output

	// Key signs the input. Required unless Scope is ScopeWitnessed.
	Key   *KeyRef
	Scope SigScope
	// Witness is used verbatim when Scope is ScopeWitnessed.
	Witness wire.TxWitness
}

// Output pays Value to Address, or carries Script with a zero value.
type Output struct {
	Address string
	Value   uint64
	Script  []byte
}

// Signer produces a 64-byte BIP340 signature over a sighash with the
// named key. Implementations may call out to a remote service.
type Signer interface {
	Sign(ctx context.Context, keyName string, path [][]byte, aux []byte, hash [32]byte) ([]byte, error)
}
