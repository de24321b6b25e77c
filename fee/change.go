package fee

import "fmt"

// ChangeResult is the outcome of CalculateFeeAndChange.
type ChangeResult struct {
	Fee           uint64  // fee for the chosen layout
	Change        uint64  // change value, 0 when no change output is added
	IncludeChange bool    // whether a change output is added
	VSize         float64 // estimated size of the chosen layout
	TotalInput    uint64
	TotalOutput   uint64
}

// CalculateFeeAndChange sizes the transaction with and without a change
// output to changeAddress. The change output is kept only when it carries
// at least DustThreshold; otherwise the remainder goes to the fee.
func CalculateFeeAndChange(inputs []Input, outputs []Output, changeAddress string, rate float64) (*ChangeResult, error) {
	res := &ChangeResult{}
	for _, in := range inputs {
		res.TotalInput += in.Value
	}
	for i, out := range outputs {
		if out.Address == "" && out.Script == nil {
			return nil, fmt.Errorf("%w: output %d", ErrInvalidOutput, i)
		}
		res.TotalOutput += out.Value
	}

	res.VSize = VSize(inputs, outputs)
	res.Fee = Fee(res.VSize, rate)
	if res.TotalInput < res.TotalOutput+res.Fee {
		return nil, fmt.Errorf("%w: inputs %d < outputs %d + fee %d",
			ErrInsufficientFunds, res.TotalInput, res.TotalOutput, res.Fee)
	}

	withChange := append(append([]Output(nil), outputs...), Output{Address: changeAddress})
	vsize := VSize(inputs, withChange)
	fee := Fee(vsize, rate)
	if res.TotalInput >= res.TotalOutput+fee+DustThreshold {
		res.VSize = vsize
		res.Fee = fee
		res.Change = res.TotalInput - res.TotalOutput - fee
		res.IncludeChange = true
	}
	return res, nil
}
