package transfer

import (
	"context"
	"sort"

	"github.com/gaze-network/uint128"

	"github.com/bitfsorg/libprotostone-go/asset"
	"github.com/bitfsorg/libprotostone-go/fee"
	"github.com/bitfsorg/libprotostone-go/protostone"
	"github.com/bitfsorg/libprotostone-go/tx"
	"github.com/bitfsorg/libprotostone-go/utxo"
)

// Consolidate sweeps every token balance of the top-up address into the
// fund address, one output per asset in ascending id order:
//
//	[0]      safety output to the fund address (pointer)
//	[1..n]   one dust output per asset, edict i -> output i+1
//	[n+1]    protostone carrier
//	[n+2]    bitcoin change to the fee address, if any
//
// Outpoints that would push an asset total past 64 bits stay at the
// top-up address for a later call. It shares the pending gate with
// Withdraw.
func (s *Service) Consolidate(ctx context.Context, c *Context) (*Plan, error) {
	var plan *Plan
	err := s.run(c, func() error {
		lg := c.logger()
		book := c.AddressBook()
		held, err := s.tokenRecords(book.Topup.Address)
		if err != nil {
			return err
		}
		if len(held) == 0 {
			return ErrNothingToConsolidate
		}
		rate, err := s.feeRate(ctx, lg)
		if err != nil {
			return err
		}
		picked, totals, deferred := sweepable(held)
		if deferred > 0 {
			lg.Warn().Int("deferred", deferred).Msg("asset total too large for one sweep, deferring outpoints")
		}
		p, err := s.planConsolidate(ctx, book, held, picked, totals, rate)
		if err != nil {
			lg.Error().Err(err).Int("records", len(held)).Msg("consolidate build failed")
			return err
		}
		err = s.execute(ctx, c, p)
		if p.Result != nil {
			plan = p
		}
		return err
	})
	return plan, err
}

// sweepable picks whole outpoints, in store order, while every asset
// total still fits in 64 bits. Outpoints that would overflow a total stay
// at the top-up address for a later sweep; deferred counts them.
func sweepable(held []*utxo.Record) (picked []*utxo.Record, totals map[asset.ID]uint64, deferred int) {
	var order []string
	byOutpoint := make(map[string][]*utxo.Record)
	for _, r := range held {
		op := r.Outpoint()
		if _, ok := byOutpoint[op]; !ok {
			order = append(order, op)
		}
		byOutpoint[op] = append(byOutpoint[op], r)
	}

	totals = make(map[asset.ID]uint64)
outer:
	for _, op := range order {
		next := make(map[asset.ID]uint64)
		for _, r := range byOutpoint[op] {
			base, ok := next[r.Asset]
			if !ok {
				base = totals[r.Asset]
			}
			sum := uint128.From64(base).Add64(r.AssetAmount)
			if !sum.IsUint64() {
				deferred++
				continue outer
			}
			next[r.Asset] = sum.Uint64()
		}
		for id, v := range next {
			totals[id] = v
		}
		picked = append(picked, byOutpoint[op]...)
	}
	return picked, totals, deferred
}

func (s *Service) planConsolidate(ctx context.Context, book AddressBook, held, picked []*utxo.Record, totals map[asset.ID]uint64, rate float64) (*Plan, error) {
	ids := make([]asset.ID, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	p := &Plan{Kind: KindConsolidate, FeeRate: rate}
	d := &draft{}
	p.Spent = d.spendRecords(book.Topup, picked, held)

	d.outputs = append(d.outputs, tx.Output{Address: book.Fund.Address, Value: fee.DustThreshold})
	edicts := make([]protostone.Edict, 0, len(ids))
	for i, id := range ids {
		out := uint32(i + 1)
		edicts = append(edicts, protostone.Edict{Asset: id, Amount: protostone.Amount(totals[id]), Output: out})
		d.outputs = append(d.outputs, tx.Output{Address: book.Fund.Address, Value: fee.DustThreshold})
		p.Created = append(p.Created, &utxo.Record{
			Address:     book.Fund.Address,
			Asset:       id,
			Vout:        out,
			Value:       fee.DustThreshold,
			AssetAmount: totals[id],
		})
	}

	carrier, err := buildCarrier(edicts)
	if err != nil {
		return nil, err
	}
	d.outputs = append(d.outputs, tx.Output{Script: carrier})

	if p.Fee, p.Change, err = s.fund(ctx, d, book.Fee, rate, 0); err != nil {
		return nil, err
	}
	if err := s.build(d, p); err != nil {
		return nil, err
	}
	return p, nil
}
