package network

import (
	"context"
	"errors"
)

var errMockUnset = errors.New("network: mock function not set")

// MockChainService is a ChainService test double. Unset functions return
// an error.
type MockChainService struct {
	ListUnspentFn        func(ctx context.Context, address string) ([]*UTXO, error)
	GetUTXOFn            func(ctx context.Context, txid string, vout uint32) (*UTXO, error)
	BroadcastTxFn        func(ctx context.Context, rawTxHex string) (string, error)
	GetRawTxFn           func(ctx context.Context, txid string) ([]byte, error)
	GetTxStatusFn        func(ctx context.Context, txid string) (*TxStatus, error)
	GetBestBlockHeightFn func(ctx context.Context) (uint64, error)
	EstimateFeeRateFn    func(ctx context.Context) (float64, error)
}

var _ ChainService = (*MockChainService)(nil)

func (m *MockChainService) ListUnspent(ctx context.Context, address string) ([]*UTXO, error) {
	if m.ListUnspentFn == nil {
		return nil, errMockUnset
	}
	return m.ListUnspentFn(ctx, address)
}
func (m *MockChainService) GetUTXO(ctx context.Context, txid string, vout uint32) (*UTXO, error) {
	if m.GetUTXOFn == nil {
		return nil, errMockUnset
	}
	return m.GetUTXOFn(ctx, txid, vout)
}
func (m *MockChainService) BroadcastTx(ctx context.Context, rawTxHex string) (string, error) {
	if m.BroadcastTxFn == nil {
		return "", errMockUnset
	}
	return m.BroadcastTxFn(ctx, rawTxHex)
}
func (m *MockChainService) GetRawTx(ctx context.Context, txid string) ([]byte, error) {
	if m.GetRawTxFn == nil {
		return nil, errMockUnset
	}
	return m.GetRawTxFn(ctx, txid)
}
func (m *MockChainService) GetTxStatus(ctx context.Context, txid string) (*TxStatus, error) {
	if m.GetTxStatusFn == nil {
		return nil, errMockUnset
	}
	return m.GetTxStatusFn(ctx, txid)
}
func (m *MockChainService) GetBestBlockHeight(ctx context.Context) (uint64, error) {
	if m.GetBestBlockHeightFn == nil {
		return 0, errMockUnset
	}
	return m.GetBestBlockHeightFn(ctx)
}
func (m *MockChainService) EstimateFeeRate(ctx context.Context) (float64, error) {
	if m.EstimateFeeRateFn == nil {
		return 0, errMockUnset
	}
	return m.EstimateFeeRateFn(ctx)
}
