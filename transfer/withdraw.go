package transfer

import (
	"context"
	"fmt"
	"sort"

	"github.com/gaze-network/uint128"

	"github.com/bitfsorg/libprotostone-go/asset"
	"github.com/bitfsorg/libprotostone-go/coinselect"
	"github.com/bitfsorg/libprotostone-go/fee"
	"github.com/bitfsorg/libprotostone-go/protostone"
	"github.com/bitfsorg/libprotostone-go/tx"
	"github.com/bitfsorg/libprotostone-go/utxo"
)

// Withdraw sends every queued request of c in one transaction:
//
//	[0]      safety output to the fund address (change edicts, pointer)
//	[1..n]   one dust output per request, edict i -> output i+1
//	[n+1]    protostone carrier
//	[n+2]    bitcoin change to the fee address, if any
//
// Requests stay queued when anything before the broadcast fails.
func (s *Service) Withdraw(ctx context.Context, c *Context) (*Plan, error) {
	var plan *Plan
	err := s.run(c, func() error {
		reqs := c.Queue()
		if len(reqs) == 0 {
			return ErrQueueEmpty
		}
		lg := c.logger()
		rate, err := s.feeRate(ctx, lg)
		if err != nil {
			return err
		}
		p, err := s.planWithdraw(ctx, c.AddressBook(), reqs, rate)
		if err != nil {
			lg.Error().Err(err).Int("requests", len(reqs)).Msg("withdraw build failed")
			return err
		}
		err = s.execute(ctx, c, p)
		if p.Result != nil {
			c.complete(reqs)
			plan = p
		}
		return err
	})
	return plan, err
}

func (s *Service) planWithdraw(ctx context.Context, book AddressBook, reqs []Request, rate float64) (*Plan, error) {
	required := make(map[asset.ID]uint64)
	for _, r := range reqs {
		sum := required[r.Asset] + r.Amount
		if sum < r.Amount {
			return nil, fmt.Errorf("%w: total of %s overflows", ErrInvalidRequest, r.Asset)
		}
		required[r.Asset] = sum
	}

	held, err := s.tokenRecords(book.Fund.Address)
	if err != nil {
		return nil, err
	}
	sel, err := coinselect.Select(held, required)
	if err != nil {
		return nil, err
	}

	p := &Plan{Kind: KindWithdraw, Requests: reqs, FeeRate: rate}
	d := &draft{}
	p.Spent = d.spendRecords(book.Fund, sel.Inputs, held)

	edicts := make([]protostone.Edict, 0, len(reqs)+len(sel.Change))
	d.outputs = append(d.outputs, tx.Output{Address: book.Fund.Address, Value: fee.DustThreshold})
	for i, r := range reqs {
		edicts = append(edicts, protostone.Edict{
			Asset:  r.Asset,
			Amount: protostone.Amount(r.Amount),
			Output: uint32(i + 1),
		})
		d.outputs = append(d.outputs, tx.Output{Address: r.Address, Value: fee.DustThreshold})
	}
	edicts = append(edicts, sel.ChangeEdicts(SafetyOutput)...)

	carrier, err := buildCarrier(edicts)
	if err != nil {
		return nil, err
	}
	d.outputs = append(d.outputs, tx.Output{Script: carrier})

	if p.Created, err = leftovers(book.Fund.Address, p.Spent, required); err != nil {
		return nil, err
	}

	if p.Fee, p.Change, err = s.fund(ctx, d, book.Fee, rate, WithdrawMargin); err != nil {
		return nil, err
	}
	if err := s.build(d, p); err != nil {
		return nil, err
	}
	return p, nil
}

// tokenRecords returns the non-native records held by address.
func (s *Service) tokenRecords(address string) ([]*utxo.Record, error) {
	all, err := s.store.GetByAddress(address)
	if err != nil {
		return nil, err
	}
	tokens := all[:0]
	for _, r := range all {
		if !r.Asset.IsNative() && r.AssetAmount > 0 {
			tokens = append(tokens, r)
		}
	}
	return tokens, nil
}

// leftovers returns the records that land on the safety output: for each
// asset, everything spent minus what is sent out. A remainder too large
// for one record fails with ErrAmountOverflow.
func leftovers(address string, spent []*utxo.Record, sent map[asset.ID]uint64) ([]*utxo.Record, error) {
	in := make(map[asset.ID]uint128.Uint128)
	for _, r := range spent {
		in[r.Asset] = in[r.Asset].Add64(r.AssetAmount)
	}
	ids := make([]asset.ID, 0, len(in))
	for id := range in {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	var out []*utxo.Record
	for _, id := range ids {
		left := in[id].Sub64(sent[id])
		if !left.IsUint64() {
			return nil, fmt.Errorf("%w: %s remainder %s", ErrAmountOverflow, id, left)
		}
		if !left.IsZero() {
			out = append(out, &utxo.Record{
				Address:     address,
				Asset:       id,
				Vout:        SafetyOutput,
				Value:       fee.DustThreshold,
				AssetAmount: left.Uint64(),
			})
		}
	}
	return out, nil
}

// buildCarrier encodes edicts for ProtocolID, with the pointer and the
// refund pointer on the safety output.
func buildCarrier(edicts []protostone.Edict) ([]byte, error) {
	return protostone.BuildCarrier([]protostone.Instruction{{
		Protocol: protostone.Amount(ProtocolID),
		Edicts:   edicts,
		Pointer:  protostone.Uint32(SafetyOutput),
		Refund:   protostone.Uint32(SafetyOutput),
	}})
}
