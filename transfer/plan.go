package transfer

import (
	"context"
	"fmt"

	"github.com/bitfsorg/libprotostone-go/asset"
	"github.com/bitfsorg/libprotostone-go/coinselect"
	"github.com/bitfsorg/libprotostone-go/fee"
	"github.com/bitfsorg/libprotostone-go/tx"
	"github.com/bitfsorg/libprotostone-go/utxo"
)

const (
	// ProtocolID is the subprotocol every carrier is addressed to.
	ProtocolID = 1

	// SafetyOutput is the output index that receives change edicts, the
	// pointer and the refund pointer.
	SafetyOutput = 0

	// WithdrawMargin is the bitcoin a withdrawal keeps above its fee when
	// choosing fee inputs.
	WithdrawMargin = 2000
)

// Plan kinds.
const (
	KindWithdraw    = "withdraw"
	KindConsolidate = "consolidate"
)

// Plan is a built transfer and the store changes it implies.
type Plan struct {
	Kind     string
	Skeleton *tx.Skeleton
	Requests []Request // withdrawals only

	// Spent lists every record consumed by the inputs, including token
	// balances that share an outpoint with a selected record.
	Spent []*utxo.Record
	// Created lists the token records the transaction creates at the
	// custody addresses.
	Created []*utxo.Record

	FeeRate float64
	Fee     uint64
	Change  uint64 // bitcoin returned to the fee address, 0 if none

	// Result is set once the transaction is broadcast.
	Result *tx.Result
}

// draft collects inputs and outputs before the fee is settled.
type draft struct {
	inputs  []tx.Input
	outputs []tx.Output
}

// spendRecords adds one input per distinct outpoint of picked, signed by
// owner under ScopeAll, and returns every record in held that those
// inputs consume.
func (d *draft) spendRecords(owner Account, picked, held []*utxo.Record) []*utxo.Record {
	used := make(map[string]struct{}, len(picked))
	for _, r := range picked {
		op := r.Outpoint()
		if _, ok := used[op]; ok {
			continue
		}
		used[op] = struct{}{}
		key := owner.Key
		d.inputs = append(d.inputs, tx.Input{
			TxID:    r.TxID,
			Vout:    r.Vout,
			Value:   r.Value,
			Address: owner.Address,
			Key:     &key,
			Scope:   tx.ScopeAll,
		})
	}
	var spent []*utxo.Record
	for _, r := range held {
		if _, ok := used[r.Outpoint()]; ok {
			spent = append(spent, r)
		}
	}
	return spent
}

func feeInputs(ins []tx.Input) []fee.Input {
	out := make([]fee.Input, len(ins))
	for i, in := range ins {
		out[i] = fee.Input{Address: in.Address, Value: in.Value}
	}
	return out
}

func feeOutputs(outs []tx.Output) []fee.Output {
	out := make([]fee.Output, len(outs))
	for i, o := range outs {
		out[i] = fee.Output{Address: o.Address, Script: o.Script, Value: o.Value}
	}
	return out
}

// fund appends fee-address inputs, largest first, until the inputs cover
// the outputs, the fee with a change output, and margin. If the margin
// cannot be met every fee input is used and the build succeeds as long as
// the fee itself is covered. A change output is added when it would not
// be dust.
func (s *Service) fund(ctx context.Context, d *draft, payer Account, rate float64, margin uint64) (feeAmt, change uint64, err error) {
	unspent, err := s.chain.ListUnspent(ctx, payer.Address)
	if err != nil {
		return 0, 0, fmt.Errorf("transfer: list fee utxos: %w", err)
	}
	candidates := make([]*utxo.Record, 0, len(unspent))
	for _, u := range unspent {
		if u.Amount == 0 {
			continue
		}
		candidates = append(candidates, &utxo.Record{
			Address: payer.Address,
			Asset:   asset.Native,
			TxID:    u.TxID,
			Vout:    u.Vout,
			Value:   u.Amount,
		})
	}

	var in, out uint64
	for _, i := range d.inputs {
		in += i.Value
	}
	for _, o := range d.outputs {
		out += o.Value
	}
	changeOut := tx.Output{Address: payer.Address}
	target := func() uint64 {
		outs := append(feeOutputs(d.outputs), fee.Output{Address: changeOut.Address})
		return out + fee.Estimate(feeInputs(d.inputs), outs, rate) + margin
	}

	for _, r := range coinselect.LargestFirst(candidates) {
		if in >= target() {
			break
		}
		key := payer.Key
		d.inputs = append(d.inputs, tx.Input{
			TxID:    r.TxID,
			Vout:    r.Vout,
			Value:   r.Value,
			Address: payer.Address,
			Key:     &key,
			Scope:   tx.ScopeAnyoneCanPay,
		})
		in += r.Value
	}

	res, err := fee.CalculateFeeAndChange(feeInputs(d.inputs), feeOutputs(d.outputs), payer.Address, rate)
	if err != nil {
		return 0, 0, err
	}
	if res.IncludeChange {
		changeOut.Value = res.Change
		d.outputs = append(d.outputs, changeOut)
		return res.Fee, res.Change, nil
	}
	return res.TotalInput - res.TotalOutput, 0, nil
}

// build turns d into a skeleton and stamps the created records with its
// txid.
func (s *Service) build(d *draft, p *Plan) error {
	b := tx.NewBuilder(s.params)
	for _, in := range d.inputs {
		b.AddInput(in)
	}
	for _, out := range d.outputs {
		b.AddOutput(out)
	}
	sk, err := b.Build()
	if err != nil {
		return err
	}
	p.Skeleton = sk
	txid := sk.TxID()
	for _, r := range p.Created {
		r.TxID = txid
	}
	return nil
}
