package protostone

import (
	"fmt"

	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/gaze-network/uint128"
)

// Marker identifies the protostone field inside a carrier push.
const Marker = 16383

// BuildCarrier returns the OP_RETURN script carrying instructions:
//
//	OP_RETURN OP_13 PUSH(varint(16383) || varint(chunk_0) || varint(chunk_1) ...)
func BuildCarrier(instructions []Instruction) (script.Script, error) {
	payload, err := CarrierPayload(instructions)
	if err != nil {
		return nil, err
	}
	s := &script.Script{}
	*s = append(*s, script.OpRETURN, script.Op13)
	if err := s.AppendPushData(payload); err != nil {
		return nil, fmt.Errorf("%w: push payload: %w", ErrInvalidCarrier, err)
	}
	return *s, nil
}

// CarrierPayload returns the bytes pushed by the carrier script.
func CarrierPayload(instructions []Instruction) ([]byte, error) {
	chunks, err := Encode(instructions)
	if err != nil {
		return nil, err
	}
	payload := AppendVarint(nil, uint128.From64(Marker))
	for _, c := range chunks {
		payload = AppendVarint(payload, c)
	}
	return payload, nil
}

// ParseCarrier extracts the instructions from a carrier script.
func ParseCarrier(s []byte) ([]Instruction, error) {
	if len(s) < 3 || s[0] != script.OpRETURN || s[1] != script.Op13 {
		return nil, ErrInvalidCarrier
	}
	chunks, err := script.NewFromBytes(s[2:]).Chunks()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCarrier, err)
	}
	if len(chunks) != 1 || chunks[0].Op > script.OpPUSHDATA4 {
		return nil, fmt.Errorf("%w: expected a single data push", ErrInvalidCarrier)
	}
	return ParseCarrierPayload(chunks[0].Data)
}

// ParseCarrierPayload decodes the pushed bytes of a carrier.
func ParseCarrierPayload(payload []byte) ([]Instruction, error) {
	marker, n, err := DecodeVarint(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marker: %w", ErrInvalidCarrier, err)
	}
	if marker.Cmp64(Marker) != 0 {
		return nil, fmt.Errorf("%w: got %s", ErrNotProtostone, marker)
	}
	return Decode(decodeVarintStream(payload[n:])), nil
}
