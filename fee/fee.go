// Package fee estimates transaction virtual size and fee from address
// kinds and embedded script sizes.
package fee

import "math"

const (
	// DustThreshold is the smallest non-script output value, in satoshis.
	DustThreshold = uint64(330)

	versionSize  = 4
	locktimeSize = 4

	// segwitAllowance covers the marker and flag bytes at witness weight.
	segwitAllowance = 0.5

	// outputValueSize is the 8-byte amount preceding every output script.
	outputValueSize = 8
)

// CompactSizeLen returns the length of the compact-size prefix for n.
func CompactSizeLen(n int) int {
	switch {
	case n <= 252:
		return 1
	case n <= 0xffff:
		return 3
	default:
		return 5
	}
}

// ScriptOutputVSize returns the size of an output with a raw script of
// scriptLen bytes.
func ScriptOutputVSize(scriptLen int) float64 {
	return float64(outputValueSize + CompactSizeLen(scriptLen) + scriptLen)
}

// Fee converts a virtual size into a fee at rate sat/vbyte, rounding up.
func Fee(vsize, rate float64) uint64 {
	if rate <= 0 || math.IsNaN(rate) {
		return 0
	}
	return uint64(math.Ceil(vsize * rate))
}

// overhead returns the fixed transaction size for the given counts.
func overhead(nIn, nOut int, witness bool) float64 {
	size := float64(versionSize + CompactSizeLen(nIn) + CompactSizeLen(nOut) + locktimeSize)
	if witness {
		size += segwitAllowance
	}
	return size
}

// Output describes an output for estimation. Script outputs are sized by
// their raw length; address outputs by the address kind.
type Output struct {
	Address string
	Script  []byte
	Value   uint64
}

// Input describes a spent output for estimation.
type Input struct {
	Address string
	Value   uint64
}

// VSize estimates the virtual size of a transaction spending inputs into
// outputs.
func VSize(inputs []Input, outputs []Output) float64 {
	witness := false
	var in float64
	for _, i := range inputs {
		k := Classify(i.Address)
		witness = witness || hasWitness(k)
		in += InputVSize(k)
	}
	var out float64
	for _, o := range outputs {
		if o.Script != nil {
			out += ScriptOutputVSize(len(o.Script))
		} else {
			out += OutputVSize(Classify(o.Address))
		}
	}
	return overhead(len(inputs), len(outputs), witness) + in + out
}

// Estimate returns the fee for VSize(inputs, outputs) at rate.
func Estimate(inputs []Input, outputs []Output, rate float64) uint64 {
	return Fee(VSize(inputs, outputs), rate)
}

// SimpleVSize sizes nIn taproot inputs and nOut taproot outputs.
func SimpleVSize(nIn, nOut int) float64 {
	return overhead(nIn, nOut, nIn > 0) + float64(nIn)*InputTaproot + float64(nOut)*OutputTaproot
}

// Simple returns the fee of a taproot-only transfer with nIn inputs and
// nOut outputs.
func Simple(nIn, nOut int, rate float64) uint64 {
	return Fee(SimpleVSize(nIn, nOut), rate)
}

// WithOpReturnVSize sizes nIn taproot inputs, nOut taproot outputs and one
// extra carrier output whose script is scriptLen bytes long.
func WithOpReturnVSize(nIn, nOut, scriptLen int) float64 {
	return overhead(nIn, nOut+1, nIn > 0) +
		float64(nIn)*InputTaproot +
		float64(nOut)*OutputTaproot +
		ScriptOutputVSize(scriptLen)
}

// WithOpReturn returns the fee of a taproot transfer that also carries an
// OP_RETURN output of scriptLen bytes. nOut excludes the carrier.
func WithOpReturn(nIn, nOut, scriptLen int, rate float64) uint64 {
	return Fee(WithOpReturnVSize(nIn, nOut, scriptLen), rate)
}

// P2TRWithOpReturn is WithOpReturn under its taproot-specific name.
func P2TRWithOpReturn(nIn, nOut, scriptLen int, rate float64) uint64 {
	return WithOpReturn(nIn, nOut, scriptLen, rate)
}
