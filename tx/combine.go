package tx

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/psbt"
)

var psbtMagic = []byte{0x70, 0x73, 0x62, 0x74, 0xff}

// decodePacket accepts a PSBT as hex or base64.
func decodePacket(s string) (*psbt.Packet, error) {
	s = strings.TrimSpace(s)
	if raw, err := hex.DecodeString(s); err == nil && bytes.HasPrefix(raw, psbtMagic) {
		p, err := psbt.NewFromRawBytes(bytes.NewReader(raw), false)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPacket, err)
		}
		return p, nil
	}
	p, err := psbt.NewFromRawBytes(strings.NewReader(s), true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPacket, err)
	}
	return p, nil
}

// Combine merges two packets of the same unsigned transaction and returns
// the result in base64. Each packet may be hex or base64.
func Combine(a, b string) (string, error) {
	pa, err := decodePacket(a)
	if err != nil {
		return "", err
	}
	pb, err := decodePacket(b)
	if err != nil {
		return "", err
	}
	if err := mergePackets(pa, pb); err != nil {
		return "", err
	}
	return pa.B64Encode()
}

// mergePackets copies into dst every per-input field src has and dst lacks.
func mergePackets(dst, src *psbt.Packet) error {
	if dst.UnsignedTx.TxHash() != src.UnsignedTx.TxHash() ||
		len(dst.Inputs) != len(src.Inputs) {
		return ErrIncompatibleSkeleton
	}
	for i := range dst.Inputs {
		d, s := &dst.Inputs[i], &src.Inputs[i]
		if d.WitnessUtxo != nil && s.WitnessUtxo != nil &&
			(d.WitnessUtxo.Value != s.WitnessUtxo.Value || !bytes.Equal(d.WitnessUtxo.PkScript, s.WitnessUtxo.PkScript)) {
			return fmt.Errorf("%w: input %d spends a different output", ErrIncompatibleSkeleton, i)
		}
		if d.WitnessUtxo == nil {
			d.WitnessUtxo = s.WitnessUtxo
		}
		if d.NonWitnessUtxo == nil {
			d.NonWitnessUtxo = s.NonWitnessUtxo
		}
		if d.SighashType == 0 {
			d.SighashType = s.SighashType
		}
		if len(d.TaprootKeySpendSig) == 0 {
			d.TaprootKeySpendSig = s.TaprootKeySpendSig
		}
		if len(d.TaprootInternalKey) == 0 {
			d.TaprootInternalKey = s.TaprootInternalKey
		}
		if len(d.FinalScriptWitness) == 0 {
			d.FinalScriptWitness = s.FinalScriptWitness
		}
		if len(d.FinalScriptSig) == 0 {
			d.FinalScriptSig = s.FinalScriptSig
		}
		for _, ps := range s.PartialSigs {
			if !hasPartialSig(d.PartialSigs, ps.PubKey) {
				d.PartialSigs = append(d.PartialSigs, ps)
			}
		}
	}
	return nil
}

func hasPartialSig(sigs []*psbt.PartialSig, pub []byte) bool {
	for _, ps := range sigs {
		if bytes.Equal(ps.PubKey, pub) {
			return true
		}
	}
	return false
}
