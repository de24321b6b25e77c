package protostone

import (
	"github.com/gaze-network/uint128"
)

// ChunkSize is the number of payload bytes carried by one packed word.
const ChunkSize = 15

// Pack splits b into 15-byte groups and reads each group as a little-endian
// integer. The last group may be shorter.
func Pack(b []byte) []uint128.Uint128 {
	if len(b) == 0 {
		return nil
	}
	words := make([]uint128.Uint128, 0, (len(b)+ChunkSize-1)/ChunkSize)
	for start := 0; start < len(b); start += ChunkSize {
		end := min(start+ChunkSize, len(b))
		var w uint128.Uint128
		for i, c := range b[start:end] {
			w = w.Or(uint128.From64(uint64(c)).Lsh(uint(8 * i)))
		}
		words = append(words, w)
	}
	return words
}

// Unpack is the inverse of Pack, with one caveat: each word yields bytes
// only until its remaining value is zero, so zero bytes at the high end of
// a group are not reproduced. A zero word yields a single zero byte.
func Unpack(words []uint128.Uint128) []byte {
	if len(words) == 0 {
		return nil
	}
	out := make([]byte, 0, len(words)*ChunkSize)
	for _, w := range words {
		if w.IsZero() {
			out = append(out, 0)
			continue
		}
		for range ChunkSize {
			out = append(out, byte(w.Lo))
			w = w.Rsh(8)
			if w.IsZero() {
				break
			}
		}
	}
	return out
}
