// Package utxo stores the spendable outputs a transfer can draw from,
// tagged by the asset balance each one carries.
package utxo

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/bitfsorg/libprotostone-go/asset"
)

// Record is one spendable output owned by Address. Records are created
// when a deposit is observed and removed exactly once when spent; they
// are never updated in place.
type Record struct {
	Address     string   `json:"address"`
	Asset       asset.ID `json:"asset"`
	TxID        string   `json:"txid"` // display (big-endian) hex
	Vout        uint32   `json:"vout"`
	Value       uint64   `json:"value"`        // satoshis locked in the output
	AssetAmount uint64   `json:"asset_amount"` // token units; 0 for native records
}

// Amount is the balance the record contributes to its asset: satoshis for
// native records, token units otherwise.
func (r *Record) Amount() uint64 {
	if r.Asset.IsNative() {
		return r.Value
	}
	return r.AssetAmount
}

// Outpoint returns "txid:vout".
func (r *Record) Outpoint() string {
	return r.TxID + ":" + strconv.FormatUint(uint64(r.Vout), 10)
}

// Validate checks the fields every stored record needs.
func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: record", ErrNilParam)
	}
	if r.Address == "" {
		return fmt.Errorf("%w: empty address", ErrInvalidRecord)
	}
	if b, err := hex.DecodeString(r.TxID); err != nil || len(b) != 32 {
		return fmt.Errorf("%w: txid %q must be 32 bytes of hex", ErrInvalidRecord, r.TxID)
	}
	return nil
}
