package tx

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"slices"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// State is the signing progress of a skeleton. It only moves forward.
type State uint8

const (
	StateUnsigned State = iota
	StatePartiallySigned
	StateFinalized
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnsigned:
		return "unsigned"
	case StatePartiallySigned:
		return "partially-signed"
	case StateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Result is a finalized transaction.
type Result struct {
	TxID   string // display byte order
	Hex    string // raw signed transaction
	Base64 string // finalized PSBT
	VSize  int64  // virtual size of the signed transaction
}

// Skeleton is a built transaction moving from unsigned to finalized.
type Skeleton struct {
	packet    *psbt.Packet
	inputs    []Input
	fetcher   *txscript.MultiPrevOutFetcher
	sigHashes *txscript.TxSigHashes
	state     State
}

func newSkeleton(packet *psbt.Packet, inputs []Input) *Skeleton {
	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, txIn := range packet.UnsignedTx.TxIn {
		fetcher.AddPrevOut(txIn.PreviousOutPoint, packet.Inputs[i].WitnessUtxo)
	}
	return &Skeleton{
		packet:    packet,
		inputs:    inputs,
		fetcher:   fetcher,
		sigHashes: txscript.NewTxSigHashes(packet.UnsignedTx, fetcher),
	}
}

// State returns the current state.
func (s *Skeleton) State() State { return s.state }

// NumInputs returns the number of inputs.
func (s *Skeleton) NumInputs() int { return len(s.inputs) }

// UnsignedTx returns a copy of the unsigned transaction.
func (s *Skeleton) UnsignedTx() *wire.MsgTx { return s.packet.UnsignedTx.Copy() }

// TxID returns the transaction id, which signing does not change.
func (s *Skeleton) TxID() string { return s.packet.UnsignedTx.TxHash().String() }

func (s *Skeleton) signable(i int) error {
	if i < 0 || i >= len(s.inputs) {
		return fmt.Errorf("%w: %d", ErrInputIndex, i)
	}
	if s.inputs[i].Scope == ScopeWitnessed {
		return fmt.Errorf("%w: input %d", ErrNotSignable, i)
	}
	return nil
}

// SigHash returns the taproot key-spend sighash of input i under its scope.
func (s *Skeleton) SigHash(i int) ([32]byte, error) {
	var out [32]byte
	if err := s.signable(i); err != nil {
		return out, err
	}
	h, err := txscript.CalcTaprootSignatureHash(s.sigHashes, s.inputs[i].Scope.SigHashType(),
		s.packet.UnsignedTx, i, s.fetcher)
	if err != nil {
		return out, fmt.Errorf("tx: sighash input %d: %w", i, err)
	}
	copy(out[:], h)
	return out, nil
}

// Signed reports whether input i has a signature or witness.
func (s *Skeleton) Signed(i int) bool {
	if i < 0 || i >= len(s.inputs) {
		return false
	}
	pin := s.packet.Inputs[i]
	return len(pin.TaprootKeySpendSig) > 0 || len(pin.FinalScriptWitness) > 0
}

// Complete reports whether every input is signed or witnessed.
func (s *Skeleton) Complete() bool {
	for i := range s.inputs {
		if !s.Signed(i) {
			return false
		}
	}
	return true
}

// AttachSignature stores a 64-byte BIP340 signature for input i.
func (s *Skeleton) AttachSignature(i int, sig []byte) error {
	if s.state == StateFinalized {
		return ErrFinalized
	}
	if err := s.signable(i); err != nil {
		return err
	}
	if len(sig) != 64 {
		return fmt.Errorf("%w: input %d got %d bytes", ErrSignatureFormat, i, len(sig))
	}
	full := make([]byte, 0, 65)
	full = append(full, sig...)
	full = append(full, byte(s.inputs[i].Scope.SigHashType()))
	s.packet.Inputs[i].TaprootKeySpendSig = full
	s.state = StatePartiallySigned
	return nil
}

// Sign asks signer for every input that still lacks a signature.
func (s *Skeleton) Sign(ctx context.Context, signer Signer) error {
	if s.state == StateFinalized {
		return ErrFinalized
	}
	for i, in := range s.inputs {
		if in.Scope == ScopeWitnessed || s.Signed(i) {
			continue
		}
		hash, err := s.SigHash(i)
		if err != nil {
			return err
		}
		sig, err := signer.Sign(ctx, in.Key.Name, in.Key.Path, in.Key.Aux, hash)
		if err != nil {
			return fmt.Errorf("%w: input %d key %q: %w", ErrSigningFailed, i, in.Key.Name, err)
		}
		if err := s.AttachSignature(i, sig); err != nil {
			return err
		}
	}
	return nil
}

// PSBT returns the packet in base64 for out-of-process signers.
func (s *Skeleton) PSBT() (string, error) {
	return s.packet.B64Encode()
}

// Merge folds signatures from an encoded packet of the same skeleton.
func (s *Skeleton) Merge(encoded string) error {
	if s.state == StateFinalized {
		return ErrFinalized
	}
	other, err := decodePacket(encoded)
	if err != nil {
		return err
	}
	if err := mergePackets(s.packet, other); err != nil {
		return err
	}
	for i := range s.inputs {
		if s.inputs[i].Scope != ScopeWitnessed && len(s.packet.Inputs[i].TaprootKeySpendSig) > 0 {
			s.state = StatePartiallySigned
			break
		}
	}
	return nil
}

// Finalize turns every signature into a one-element witness and extracts
// the signed transaction. It fails with ErrIncomplete if any input is
// unsigned, and any failure leaves the skeleton unchanged.
func (s *Skeleton) Finalize() (*Result, error) {
	if s.state == StateFinalized {
		return nil, ErrFinalized
	}
	for i := range s.inputs {
		if !s.Signed(i) {
			return nil, fmt.Errorf("%w: input %d", ErrIncomplete, i)
		}
	}

	// Witnesses go into a copy so a failed extract leaves the packet signed
	// but unfinalized.
	final := *s.packet
	final.Inputs = slices.Clone(s.packet.Inputs)
	for i := range final.Inputs {
		pin := &final.Inputs[i]
		if len(pin.FinalScriptWitness) > 0 {
			continue
		}
		w, err := serializeWitness(wire.TxWitness{pin.TaprootKeySpendSig})
		if err != nil {
			return nil, err
		}
		pin.FinalScriptWitness = w
		pin.TaprootKeySpendSig = nil
		pin.SighashType = 0
	}

	signed, err := psbt.Extract(&final)
	if err != nil {
		return nil, fmt.Errorf("tx: extract: %w", err)
	}
	var buf bytes.Buffer
	if err := signed.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("tx: serialize: %w", err)
	}
	b64, err := final.B64Encode()
	if err != nil {
		return nil, fmt.Errorf("tx: encode packet: %w", err)
	}
	s.packet = &final
	s.state = StateFinalized

	return &Result{
		TxID:   signed.TxHash().String(),
		Hex:    hex.EncodeToString(buf.Bytes()),
		Base64: b64,
		VSize:  VSize(signed),
	}, nil
}

// VSize returns the virtual size of tx: weight / 4 rounded up.
func VSize(tx *wire.MsgTx) int64 {
	weight := tx.SerializeSizeStripped()*3 + tx.SerializeSize()
	return int64((weight + 3) / 4)
}

func serializeWitness(w wire.TxWitness) ([]byte, error) {
	var buf bytes.Buffer
	if err := wire.WriteVarInt(&buf, 0, uint64(len(w))); err != nil {
		return nil, err
	}
	for _, item := range w {
		if err := wire.WriteVarBytes(&buf, 0, item); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
