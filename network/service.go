package network

import "context"

// ChainService is what the transfer pipelines need from a node.
type ChainService interface {
	// ListUnspent returns the unspent outputs paying address.
	ListUnspent(ctx context.Context, address string) ([]*UTXO, error)

	// GetUTXO returns one unspent output, or ErrTxNotFound if it is spent.
	GetUTXO(ctx context.Context, txid string, vout uint32) (*UTXO, error)

	// BroadcastTx submits a raw transaction hex and returns its txid.
	BroadcastTx(ctx context.Context, rawTxHex string) (string, error)

	// GetRawTx returns the serialized transaction.
	GetRawTx(ctx context.Context, txid string) ([]byte, error)

	// GetTxStatus returns the confirmation status of a transaction.
	GetTxStatus(ctx context.Context, txid string) (*TxStatus, error)

	// GetBestBlockHeight returns the height of the chain tip.
	GetBestBlockHeight(ctx context.Context) (uint64, error)

	// EstimateFeeRate returns a fee rate in sat/vB for confirmation
	// within the default target.
	EstimateFeeRate(ctx context.Context) (float64, error)
}

// UTXO is an unspent output as reported by the node.
type UTXO struct {
	TxID          string `json:"txid"`
	Vout          uint32 `json:"vout"`
	Amount        uint64 `json:"amount"`
	ScriptPubKey  string `json:"script_pubkey"`
	Address       string `json:"address"`
	Confirmations int64  `json:"confirmations"`
}

// TxStatus is the confirmation status of a transaction.
type TxStatus struct {
	Confirmed     bool   `json:"confirmed"`
	Confirmations int64  `json:"confirmations"`
	BlockHash     string `json:"block_hash"`
	BlockHeight   uint64 `json:"block_height"`
}
