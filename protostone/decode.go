package protostone

import (
	"math"
	"slices"

	"github.com/gaze-network/uint128"

	"github.com/bitfsorg/libprotostone-go/asset"
	"github.com/bitfsorg/libprotostone-go/log"
)

// Decode parses instructions from packed chunks. Decoding never fails:
// a malformed varint ends the word stream, a zero subprotocol or zero
// length ends the instruction list, and a length running past the stream
// drops the final instruction.
func Decode(chunks []uint128.Uint128) []Instruction {
	return DecodeWords(decodeVarintStream(Unpack(chunks)))
}

// DecodeWords parses instructions from a flat word stream.
func DecodeWords(words []uint128.Uint128) []Instruction {
	var out []Instruction
	pos := 0
	for pos+2 <= len(words) {
		protocol := words[pos]
		length := words[pos+1]
		if protocol.IsZero() || length.IsZero() {
			break
		}
		if length.Hi != 0 || length.Lo > uint64(len(words)-pos-2) {
			break
		}
		start := pos + 2
		end := start + int(length.Lo)
		out = append(out, parseInstruction(protocol, words[start:end]))
		pos = end
	}
	return out
}

// smallTag maps a word to a tag value; words above 64 bits never match.
func smallTag(w uint128.Uint128) uint64 {
	if w.Hi != 0 {
		return math.MaxUint64
	}
	return w.Lo
}

func parseInstruction(protocol uint128.Uint128, body []uint128.Uint128) Instruction {
	in := Instruction{Protocol: protocol}
	var msgWords []uint128.Uint128

	for i := 0; i < len(body); {
		tag := smallTag(body[i])
		i++
		if tag == TagBody {
			in.Edicts, i = decodeEdicts(body, i)
			continue
		}
		if i >= len(body) {
			// dangling tag with no value
			break
		}
		v := body[i]
		i++
		switch tag {
		case TagBurn:
			in.Burn = &v
		case TagPointer:
			p := uint32(v.Lo)
			in.Pointer = &p
		case TagRefund:
			r := uint32(v.Lo)
			in.Refund = &r
		case TagFrom:
			in.From = append(in.From, uint32(v.Lo))
		case TagMessage:
			msgWords = append(msgWords, v)
		default:
			log.Protostone.Debug().
				Str("protocol", protocol.String()).
				Str("tag", body[i-2].String()).
				Msg("skipping unknown protostone tag")
		}
	}

	if len(msgWords) > 0 {
		if msg, ok := unframeMessage(Unpack(msgWords)); ok {
			in.Message = msg
		}
	}
	return in
}

// decodeEdicts reads 4-word groups from body[idx:] and returns the edicts
// with the index of the first unread word. A partial trailing group is
// left for the caller to scan as tags.
func decodeEdicts(body []uint128.Uint128, idx int) ([]Edict, int) {
	edicts := make([]Edict, 0, (len(body)-idx)/4)
	var baseBlock uint64
	var baseTx uint32
	for idx+3 < len(body) {
		blockDelta := body[idx].Lo
		tx := uint32(body[idx+1].Lo)
		amount := body[idx+2]
		output := uint32(body[idx+3].Lo)
		idx += 4

		block := baseBlock + blockDelta
		if blockDelta == 0 {
			tx += baseTx
		}
		baseBlock, baseTx = block, tx

		edicts = append(edicts, Edict{Asset: asset.New(block, tx), Amount: amount, Output: output})
	}
	if len(edicts) == 0 {
		edicts = nil
	}
	return edicts, idx
}

// unframeMessage strips the magic byte on both ends. Zero padding after
// the closing magic byte is ignored.
func unframeMessage(data []byte) ([]byte, bool) {
	if len(data) < 2 || data[0] != messageMagic {
		return nil, false
	}
	end := len(data) - 1
	for end > 0 && data[end] == 0 {
		end--
	}
	if data[end] != messageMagic {
		return nil, false
	}
	if end <= 1 {
		return []byte{}, true
	}
	return slices.Clone(data[1:end]), true
}
