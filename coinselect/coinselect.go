// Package coinselect picks the records that cover per-asset transfer
// amounts and reports the change left in each asset.
package coinselect

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/gaze-network/uint128"

	"github.com/bitfsorg/libprotostone-go/asset"
	"github.com/bitfsorg/libprotostone-go/protostone"
	"github.com/bitfsorg/libprotostone-go/utxo"
)

// ErrInsufficientAsset is wrapped by InsufficientAssetError.
var ErrInsufficientAsset = errors.New("coinselect: insufficient asset balance")

// InsufficientAssetError reports the asset that could not be covered.
type InsufficientAssetError struct {
	Asset     asset.ID
	Required  uint64
	Available uint64
}

func (e *InsufficientAssetError) Error() string {
	return fmt.Sprintf("%s: asset %s requires %d, available %d",
		ErrInsufficientAsset, e.Asset, e.Required, e.Available)
}

func (e *InsufficientAssetError) Unwrap() error { return ErrInsufficientAsset }

// Selection is the outcome of Select.
type Selection struct {
	// Inputs lists the chosen records, grouped by asset in ascending id
	// order and largest-first within each asset.
	Inputs []*utxo.Record

	// Totals is the selected amount per asset. It can exceed 64 bits when
	// the final record pushes a near-maximal requirement over the top.
	Totals map[asset.ID]uint128.Uint128

	// Change is Totals minus the required amount, for assets where it is
	// non-zero. It is always smaller than the last selected record.
	Change map[asset.ID]uint64
}

// Select covers every required amount with largest-first greedy selection,
// one asset at a time. If any asset's candidates sum to less than its
// requirement the whole selection fails with *InsufficientAssetError and
// nothing is returned. Zero requirements select nothing.
func Select(candidates []*utxo.Record, required map[asset.ID]uint64) (*Selection, error) {
	ids := make([]asset.ID, 0, len(required))
	for id, amt := range required {
		if amt > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	byAsset := make(map[asset.ID][]*utxo.Record, len(ids))
	for _, c := range candidates {
		if c != nil {
			byAsset[c.Asset] = append(byAsset[c.Asset], c)
		}
	}

	// Check every balance before choosing anything.
	for _, id := range ids {
		if avail := sum(byAsset[id]); avail.Cmp64(required[id]) < 0 {
			return nil, &InsufficientAssetError{Asset: id, Required: required[id], Available: avail.Uint64()}
		}
	}

	sel := &Selection{
		Totals: make(map[asset.ID]uint128.Uint128, len(ids)),
		Change: make(map[asset.ID]uint64),
	}
	for _, id := range ids {
		need := required[id]
		var total uint128.Uint128
		for _, r := range LargestFirst(byAsset[id]) {
			sel.Inputs = append(sel.Inputs, r)
			total = total.Add64(r.Amount())
			if total.Cmp64(need) >= 0 {
				break
			}
		}
		sel.Totals[id] = total
		if total.Cmp64(need) > 0 {
			sel.Change[id] = total.Sub64(need).Uint64()
		}
	}
	return sel, nil
}

// ChangeEdicts returns one edict per token asset with change, sending it
// to output, ordered by asset id. Native change needs no edict.
func (s *Selection) ChangeEdicts(output uint32) []protostone.Edict {
	ids := make([]asset.ID, 0, len(s.Change))
	for id := range s.Change {
		if !id.IsNative() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	edicts := make([]protostone.Edict, 0, len(ids))
	for _, id := range ids {
		edicts = append(edicts, protostone.Edict{
			Asset:  id,
			Amount: protostone.Amount(s.Change[id]),
			Output: output,
		})
	}
	return edicts
}

// LargestFirst returns records sorted by descending Amount. Equal amounts
// keep their input order.
func LargestFirst(records []*utxo.Record) []*utxo.Record {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b *utxo.Record) int {
		switch {
		case a.Amount() > b.Amount():
			return -1
		case a.Amount() < b.Amount():
			return 1
		}
		return 0
	})
	return sorted
}

// sum adds amounts in 128 bits, so any realistic record count fits.
func sum(records []*utxo.Record) uint128.Uint128 {
	var total uint128.Uint128
	for _, r := range records {
		total = total.Add64(r.Amount())
	}
	return total
}
