package fee

import "strings"

// Kind is the script type inferred from an encoded address.
type Kind int

const (
	// Taproot is also the fallback for unrecognized addresses.
	Taproot Kind = iota
	SegwitV0
	Legacy
	ScriptHash
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case SegwitV0:
		return "p2wpkh"
	case Legacy:
		return "p2pkh"
	case ScriptHash:
		return "p2sh"
	default:
		return "p2tr"
	}
}

// Classify infers the address kind from its prefix alone.
func Classify(address string) Kind {
	switch {
	case hasAnyPrefix(address, "bc1q", "tb1q", "bcrt1q"):
		return SegwitV0
	case hasAnyPrefix(address, "bc1p", "tb1p", "bcrt1p"):
		return Taproot
	case hasAnyPrefix(address, "1", "m", "n"):
		return Legacy
	case hasAnyPrefix(address, "3", "2"):
		return ScriptHash
	default:
		return Taproot
	}
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Per-item virtual sizes in vbytes.
const (
	InputLegacy   = 148.0
	InputSegwitV0 = 67.5
	InputTaproot  = 57.25

	OutputLegacy     = 34.0
	OutputSegwitV0   = 31.0
	OutputScriptHash = 32.0
	OutputTaproot    = 43.0
)

// InputVSize returns the spend size of an input of kind k. Script-hash
// spends are not modeled and fall back to taproot.
func InputVSize(k Kind) float64 {
	switch k {
	case Legacy:
		return InputLegacy
	case SegwitV0:
		return InputSegwitV0
	default:
		return InputTaproot
	}
}

// OutputVSize returns the size of an output paying to kind k.
func OutputVSize(k Kind) float64 {
	switch k {
	case Legacy:
		return OutputLegacy
	case SegwitV0:
		return OutputSegwitV0
	case ScriptHash:
		return OutputScriptHash
	default:
		return OutputTaproot
	}
}

// hasWitness reports whether spending kind k puts data in the witness.
func hasWitness(k Kind) bool { return k != Legacy }
