// Package protostone encodes token-transfer instructions into the compact
// word stream carried by an OP_RETURN output, and parses them back.
//
// Wire layers, outermost first:
//
//	carrier script: OP_RETURN OP_13 PUSH(varint(16383) || varint(chunk)...)
//	chunks:         15-byte little-endian groups of the varint byte stream
//	varint stream:  LEB128 encoding of every instruction word
//	words:          subprotocol, length, tagged fields, BODY + edict run
package protostone

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/gaze-network/uint128"

	"github.com/bitfsorg/libprotostone-go/asset"
)

// Field tags inside an instruction body.
const (
	TagBody     = 0
	TagMessage  = 81
	TagBurn     = 83
	TagPointer  = 91
	TagRefund   = 93
	TagFrom     = 95
	TagCenotaph = 126 // reserved
	TagNop      = 127 // reserved
)

// messageMagic frames a message on both ends.
const messageMagic = 0x01

// Edict moves Amount units of Asset to transaction output Output.
type Edict struct {
	Asset  asset.ID
	Amount uint128.Uint128
	Output uint32
}

// Instruction is one protostone: a complete operation for a subprotocol.
// Optional scalar fields are nil when absent. Message is nil when absent
// and non-nil (possibly empty) when present.
type Instruction struct {
	Protocol uint128.Uint128
	Edicts   []Edict
	Pointer  *uint32
	Refund   *uint32
	Burn     *uint128.Uint128
	Message  []byte
	From     []uint32
}

// Uint32 returns a pointer to v, for the optional pointer fields.
func Uint32(v uint32) *uint32 { return &v }

// Amount returns a 128-bit amount from a uint64.
func Amount(v uint64) uint128.Uint128 { return uint128.From64(v) }

func word32(v uint32) uint128.Uint128 { return uint128.From64(uint64(v)) }

// Words encodes a single instruction into its word sequence.
func (in *Instruction) Words() ([]uint128.Uint128, error) {
	if in.Protocol.IsZero() {
		return nil, ErrZeroProtocol
	}
	words := make([]uint128.Uint128, 0, 16+4*len(in.Edicts))
	words = append(words, in.Protocol, uint128.Zero)

	if in.Burn != nil {
		words = append(words, uint128.From64(TagBurn), *in.Burn)
	}
	if in.Pointer != nil {
		words = append(words, uint128.From64(TagPointer), word32(*in.Pointer))
	}
	if in.Refund != nil {
		words = append(words, uint128.From64(TagRefund), word32(*in.Refund))
	}
	for _, idx := range in.From {
		words = append(words, uint128.From64(TagFrom), word32(idx))
	}
	if in.Message != nil {
		framed := make([]byte, 0, len(in.Message)+2)
		framed = append(framed, messageMagic)
		framed = append(framed, in.Message...)
		framed = append(framed, messageMagic)
		for _, w := range Pack(framed) {
			words = append(words, uint128.From64(TagMessage), w)
		}
	}
	if len(in.Edicts) > 0 {
		run, err := encodeEdicts(in.Edicts)
		if err != nil {
			return nil, err
		}
		words = append(words, uint128.From64(TagBody))
		words = append(words, run...)
	}

	words[1] = uint128.From64(uint64(len(words) - 2))
	return words, nil
}

// encodeEdicts sorts a copy of edicts by asset and delta-encodes the run.
func encodeEdicts(edicts []Edict) ([]uint128.Uint128, error) {
	sorted := slices.Clone(edicts)
	slices.SortStableFunc(sorted, func(a, b Edict) int {
		return cmp.Or(cmp.Compare(a.Asset.Block, b.Asset.Block), cmp.Compare(a.Asset.Tx, b.Asset.Tx))
	})

	run := make([]uint128.Uint128, 0, 4*len(sorted))
	var baseBlock uint64
	var baseTx uint32
	for i, e := range sorted {
		if e.Asset.IsNative() {
			return nil, fmt.Errorf("%w: edict %d", ErrNativeAsset, i)
		}
		if e.Amount.IsZero() {
			return nil, fmt.Errorf("%w: edict %d (%s)", ErrZeroAmount, i, e.Asset)
		}
		blockDelta := e.Asset.Block - baseBlock
		run = append(run, uint128.From64(blockDelta))
		if blockDelta == 0 {
			run = append(run, word32(e.Asset.Tx-baseTx))
		} else {
			run = append(run, word32(e.Asset.Tx))
		}
		run = append(run, e.Amount, word32(e.Output))
		baseBlock, baseTx = e.Asset.Block, e.Asset.Tx
	}
	return run, nil
}

// EncodeWords concatenates the word sequences of every instruction.
func EncodeWords(instructions []Instruction) ([]uint128.Uint128, error) {
	var words []uint128.Uint128
	for i := range instructions {
		w, err := instructions[i].Words()
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		words = append(words, w...)
	}
	return words, nil
}

// Encode produces the packed chunk list for instructions: every word is
// varint-encoded, and the resulting byte stream is packed into 15-byte
// chunks. An empty list encodes to no chunks.
func Encode(instructions []Instruction) ([]uint128.Uint128, error) {
	if len(instructions) == 0 {
		return nil, nil
	}
	words, err := EncodeWords(instructions)
	if err != nil {
		return nil, err
	}
	var stream []byte
	for _, w := range words {
		stream = AppendVarint(stream, w)
	}
	return Pack(stream), nil
}
