package protostone

import (
	"github.com/gaze-network/uint128"
)

// maxVarintLen is the number of 7-bit groups needed for a 128-bit value.
const maxVarintLen = 19

// AppendVarint appends the LEB128 encoding of v to dst. Zero encodes as
// the single byte 0x00.
func AppendVarint(dst []byte, v uint128.Uint128) []byte {
	for {
		b := byte(v.Lo & 0x7f)
		v = v.Rsh(7)
		if v.IsZero() {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}

// EncodeVarint returns the LEB128 encoding of v.
func EncodeVarint(v uint128.Uint128) []byte {
	return AppendVarint(make([]byte, 0, maxVarintLen), v)
}

// DecodeVarint reads one LEB128 value from the front of b and returns it
// with the number of bytes consumed.
func DecodeVarint(b []byte) (uint128.Uint128, int, error) {
	var v uint128.Uint128
	for i, c := range b {
		v = v.Or(uint128.From64(uint64(c & 0x7f)).Lsh(uint(7 * i)))
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
		if i+1 >= maxVarintLen {
			return uint128.Zero, 0, ErrOverflow
		}
	}
	return uint128.Zero, 0, ErrTruncated
}

// decodeVarintStream decodes consecutive varints until the input ends or a
// malformed value is met. Trailing garbage is dropped.
func decodeVarintStream(b []byte) []uint128.Uint128 {
	var words []uint128.Uint128
	for len(b) > 0 {
		v, n, err := DecodeVarint(b)
		if err != nil {
			break
		}
		words = append(words, v)
		b = b[n:]
	}
	return words
}
