// Package tx assembles taproot key-spend transactions: it validates inputs
// and outputs against a network, computes per-input sighashes under an
// explicit signing scope, attaches external signatures and finalizes to a
// broadcastable transaction. Skeletons travel between signers as PSBTs.
package tx

import (
	"fmt"
	"math"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// TxVersion is the version of every assembled transaction.
const TxVersion = 2

// knownNetworks are consulted to tell a foreign address from a malformed one.
var knownNetworks = []*chaincfg.Params{
	&chaincfg.MainNetParams,
	&chaincfg.TestNet3Params,
	&chaincfg.SigNetParams,
	&chaincfg.RegressionNetParams,
}

// Builder collects inputs and outputs for one transaction.
type Builder struct {
	params  *chaincfg.Params
	inputs  []Input
	outputs []Output
}

// NewBuilder returns a builder validating addresses against params.
func NewBuilder(params *chaincfg.Params) *Builder {
	return &Builder{params: params}
}

// AddInput appends an input.
func (b *Builder) AddInput(in Input) *Builder {
	b.inputs = append(b.inputs, in)
	return b
}

// AddOutput appends an output.
func (b *Builder) AddOutput(out Output) *Builder {
	b.outputs = append(b.outputs, out)
	return b
}

// DecodeAddress decodes addr and checks it belongs to params.
func DecodeAddress(addr string, params *chaincfg.Params) (btcutil.Address, error) {
	a, err := btcutil.DecodeAddress(addr, params)
	if err != nil {
		for _, p := range knownNetworks {
			if p == params {
				continue
			}
			if other, err2 := btcutil.DecodeAddress(addr, p); err2 == nil && other.IsForNet(p) {
				return nil, fmt.Errorf("%w: %s is for %s", ErrNetworkMismatch, addr, p.Name)
			}
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidAddress, addr, err)
	}
	if !a.IsForNet(params) {
		return nil, fmt.Errorf("%w: %s is not for %s", ErrNetworkMismatch, addr, params.Name)
	}
	return a, nil
}

// AddressScript returns the output script paying addr.
func AddressScript(addr string, params *chaincfg.Params) ([]byte, error) {
	a, err := DecodeAddress(addr, params)
	if err != nil {
		return nil, err
	}
	pk, err := txscript.PayToAddrScript(a)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidAddress, addr, err)
	}
	return pk, nil
}

// Build validates the collected inputs and outputs and returns an
// unsigned skeleton. Nothing is returned on error.
func (b *Builder) Build() (*Skeleton, error) {
	if len(b.inputs) == 0 {
		return nil, ErrNoInputs
	}
	if len(b.outputs) == 0 {
		return nil, ErrNoOutputs
	}

	msg := wire.NewMsgTx(TxVersion)
	prevScripts := make([][]byte, len(b.inputs))
	seen := make(map[wire.OutPoint]struct{}, len(b.inputs))

	for i, in := range b.inputs {
		pk, err := b.checkInput(in)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		hash, err := chainhash.NewHashFromStr(in.TxID)
		if err != nil || len(in.TxID) != 2*chainhash.HashSize {
			return nil, fmt.Errorf("input %d: %w: %q", i, ErrInvalidTxID, in.TxID)
		}
		op := wire.NewOutPoint(hash, in.Vout)
		if _, dup := seen[*op]; dup {
			return nil, fmt.Errorf("input %d: %w: %s", i, ErrDuplicateInput, op)
		}
		seen[*op] = struct{}{}
		msg.AddTxIn(wire.NewTxIn(op, nil, nil))
		prevScripts[i] = pk
	}

	for i, out := range b.outputs {
		pk, err := b.checkOutput(out)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		msg.AddTxOut(wire.NewTxOut(int64(out.Value), pk))
	}

	packet, err := psbt.NewFromUnsignedTx(msg)
	if err != nil {
		return nil, fmt.Errorf("tx: create packet: %w", err)
	}
	for i, in := range b.inputs {
		pin := &packet.Inputs[i]
		pin.WitnessUtxo = wire.NewTxOut(int64(in.Value), prevScripts[i])
		if in.Scope == ScopeWitnessed {
			w, err := serializeWitness(in.Witness)
			if err != nil {
				return nil, fmt.Errorf("input %d: %w", i, err)
			}
			pin.FinalScriptWitness = w
			continue
		}
		pin.SighashType = in.Scope.SigHashType()
	}

	return newSkeleton(packet, append([]Input(nil), b.inputs...)), nil
}

func (b *Builder) checkInput(in Input) ([]byte, error) {
	if in.Value > math.MaxInt64 {
		return nil, fmt.Errorf("%w: value %d", ErrInputValue, in.Value)
	}
	a, err := DecodeAddress(in.Address, b.params)
	if err != nil {
		return nil, err
	}
	switch in.Scope {
	case ScopeAll, ScopeAnyoneCanPay:
		if in.Key == nil {
			return nil, ErrMissingKey
		}
		if _, ok := a.(*btcutil.AddressTaproot); !ok {
			return nil, fmt.Errorf("%w: signed input owner %s is not taproot", ErrInvalidAddress, in.Address)
		}
	case ScopeWitnessed:
		if len(in.Witness) == 0 {
			return nil, ErrMissingWitness
		}
	default:
		return nil, fmt.Errorf("tx: unknown scope %s", in.Scope)
	}
	pk, err := txscript.PayToAddrScript(a)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidAddress, in.Address, err)
	}
	return pk, nil
}

func (b *Builder) checkOutput(out Output) ([]byte, error) {
	hasAddr, hasScript := out.Address != "", len(out.Script) > 0
	if hasAddr == hasScript {
		return nil, ErrInvalidOutput
	}
	if hasScript {
		if out.Value != 0 {
			return nil, fmt.Errorf("%w: got %d", ErrScriptValue, out.Value)
		}
		return append([]byte(nil), out.Script...), nil
	}
	if out.Value > math.MaxInt64 {
		return nil, fmt.Errorf("%w: value %d", ErrInvalidOutput, out.Value)
	}
	return AddressScript(out.Address, b.params)
}
