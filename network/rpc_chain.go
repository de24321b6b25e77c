package network

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
)

var _ ChainService = (*RPCClient)(nil)

// DefaultConfTarget is the estimatesmartfee block target.
const DefaultConfTarget = 6

// btcToSat converts a BTC amount from the node to satoshis.
func btcToSat(btc float64) uint64 {
	return uint64(math.Round(btc * 1e8))
}

// notFound maps Core's -5 to ErrTxNotFound.
func notFound(err error, what string) error {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) && rpcErr.Code == codeInvalidAddressOrKey {
		return fmt.Errorf("%w: %s: %s", ErrTxNotFound, what, rpcErr.Message)
	}
	return err
}

type listUnspentResult struct {
	TxID          string  `json:"txid"`
	Vout          uint32  `json:"vout"`
	Amount        float64 `json:"amount"`
	ScriptPubKey  string  `json:"scriptPubKey"`
	Address       string  `json:"address"`
	Confirmations int64   `json:"confirmations"`
}

// ListUnspent calls `listunspent 0 9999999 ["address"]`.
func (c *RPCClient) ListUnspent(ctx context.Context, address string) ([]*UTXO, error) {
	var results []listUnspentResult
	if err := c.Call(ctx, "listunspent", []any{0, 9999999, []string{address}}, &results); err != nil {
		return nil, err
	}
	utxos := make([]*UTXO, len(results))
	for i, r := range results {
		utxos[i] = &UTXO{
			TxID:          r.TxID,
			Vout:          r.Vout,
			Amount:        btcToSat(r.Amount),
			ScriptPubKey:  r.ScriptPubKey,
			Address:       r.Address,
			Confirmations: r.Confirmations,
		}
	}
	return utxos, nil
}

type gettxoutResult struct {
	Value         float64 `json:"value"`
	Confirmations int64   `json:"confirmations"`
	ScriptPubKey  struct {
		Hex     string `json:"hex"`
		Address string `json:"address"`
	} `json:"scriptPubKey"`
}

// GetUTXO calls `gettxout "txid" vout`. A null result means spent.
func (c *RPCClient) GetUTXO(ctx context.Context, txid string, vout uint32) (*UTXO, error) {
	var result *gettxoutResult
	if err := c.Call(ctx, "gettxout", []any{txid, vout}, &result); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: output %s:%d is spent", ErrTxNotFound, txid, vout)
	}
	return &UTXO{
		TxID:          txid,
		Vout:          vout,
		Amount:        btcToSat(result.Value),
		ScriptPubKey:  result.ScriptPubKey.Hex,
		Address:       result.ScriptPubKey.Address,
		Confirmations: result.Confirmations,
	}, nil
}

// BroadcastTx calls `sendrawtransaction "hex"`.
func (c *RPCClient) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	var txid string
	if err := c.Call(ctx, "sendrawtransaction", []any{rawTxHex}, &txid); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBroadcastRejected, err)
	}
	return txid, nil
}

// GetRawTx calls `getrawtransaction "txid" false`.
func (c *RPCClient) GetRawTx(ctx context.Context, txid string) ([]byte, error) {
	var rawHex string
	if err := c.Call(ctx, "getrawtransaction", []any{txid, false}, &rawHex); err != nil {
		return nil, notFound(err, txid)
	}
	data, err := hex.DecodeString(rawHex)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid tx hex: %w", ErrInvalidResponse, err)
	}
	return data, nil
}

type verboseTxResult struct {
	Confirmations int64  `json:"confirmations"`
	BlockHash     string `json:"blockhash"`
}

type blockHeaderResult struct {
	Height uint64 `json:"height"`
}

// GetTxStatus calls `getrawtransaction "txid" true`, then
// `getblockheader` for the height of a confirmed transaction.
func (c *RPCClient) GetTxStatus(ctx context.Context, txid string) (*TxStatus, error) {
	var result verboseTxResult
	if err := c.Call(ctx, "getrawtransaction", []any{txid, true}, &result); err != nil {
		return nil, notFound(err, txid)
	}
	status := &TxStatus{
		Confirmed:     result.Confirmations > 0,
		Confirmations: result.Confirmations,
		BlockHash:     result.BlockHash,
	}
	if status.Confirmed && result.BlockHash != "" {
		var hdr blockHeaderResult
		if err := c.Call(ctx, "getblockheader", []any{result.BlockHash, true}, &hdr); err != nil {
			return nil, err
		}
		status.BlockHeight = hdr.Height
	}
	return status, nil
}

// GetBestBlockHeight calls `getblockcount`.
func (c *RPCClient) GetBestBlockHeight(ctx context.Context) (uint64, error) {
	var height uint64
	if err := c.Call(ctx, "getblockcount", nil, &height); err != nil {
		return 0, err
	}
	return height, nil
}

type estimateSmartFeeResult struct {
	FeeRate *float64 `json:"feerate"`
	Errors  []string `json:"errors"`
	Blocks  int      `json:"blocks"`
}

// EstimateFeeRate calls `estimatesmartfee DefaultConfTarget` and converts
// the BTC/kvB answer to sat/vB.
func (c *RPCClient) EstimateFeeRate(ctx context.Context) (float64, error) {
	var result estimateSmartFeeResult
	if err := c.Call(ctx, "estimatesmartfee", []any{DefaultConfTarget}, &result); err != nil {
		return 0, err
	}
	if result.FeeRate == nil || *result.FeeRate <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrFeeUnavailable, result.Errors)
	}
	return *result.FeeRate * 1e8 / 1000, nil
}
