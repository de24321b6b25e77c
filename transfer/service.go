// Package transfer runs the custody pipelines that move token balances
// on chain: queued withdrawals out of the fund address, and consolidation
// of deposits from the top-up address into it.
//
// Every pipeline follows the same steps. Token records are selected from
// the store, the edicts are encoded into a protostone carrier, plain
// bitcoin from the fee address is added to cover the fee, and the
// transaction is signed, broadcast and recorded. A context holds at most
// one unconfirmed transaction; Tick releases it once it confirms.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/rs/zerolog"

	"github.com/bitfsorg/libprotostone-go/network"
	"github.com/bitfsorg/libprotostone-go/tx"
	"github.com/bitfsorg/libprotostone-go/utxo"
)

// FeeRateSource reports the current fee rate in sat/vB.
type FeeRateSource interface {
	EstimateFeeRate(ctx context.Context) (float64, error)
}

// Options configures a Service.
type Options struct {
	Params *chaincfg.Params
	Store  utxo.Store
	Chain  network.ChainService
	Signer tx.Signer

	// FeeRate defaults to Chain.
	FeeRate FeeRateSource

	// FallbackFeeRate is used when FeeRate fails. Zero disables it.
	FallbackFeeRate float64

	// Whitelist, when set, restricts the assets that can be withdrawn.
	Whitelist utxo.Whitelist
}

// Service runs transfer pipelines against a store, a node and a signer.
type Service struct {
	params    *chaincfg.Params
	store     utxo.Store
	chain     network.ChainService
	signer    tx.Signer
	rates     FeeRateSource
	fallback  float64
	whitelist utxo.Whitelist
}

// NewService checks opts and returns a Service.
func NewService(opts Options) (*Service, error) {
	if opts.Params == nil || opts.Store == nil || opts.Chain == nil || opts.Signer == nil {
		return nil, ErrNilParam
	}
	if opts.FallbackFeeRate < 0 || math.IsNaN(opts.FallbackFeeRate) || math.IsInf(opts.FallbackFeeRate, 0) {
		return nil, fmt.Errorf("transfer: invalid fallback fee rate %v", opts.FallbackFeeRate)
	}
	rates := opts.FeeRate
	if rates == nil {
		rates = opts.Chain
	}
	return &Service{
		params:    opts.Params,
		store:     opts.Store,
		chain:     opts.Chain,
		signer:    opts.Signer,
		rates:     rates,
		fallback:  opts.FallbackFeeRate,
		whitelist: opts.Whitelist,
	}, nil
}

// Enqueue validates r and appends it to the withdraw queue of c.
func (s *Service) Enqueue(c *Context, r Request) error {
	if c == nil {
		return ErrNilParam
	}
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidRequest)
	case r.Asset.IsNative():
		return fmt.Errorf("%w: native asset", ErrInvalidRequest)
	case r.Amount == 0:
		return fmt.Errorf("%w: zero amount", ErrInvalidRequest)
	}
	if _, err := tx.DecodeAddress(r.Address, s.params); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if s.whitelist != nil {
		ok, err := s.whitelist.IsAllowed(r.Asset)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrAssetNotAllowed, r.Asset)
		}
	}
	if err := c.enqueue(r); err != nil {
		return err
	}
	lg := c.logger()
	lg.Info().
		Str("id", r.ID).
		Str("asset", r.Asset.String()).
		Uint64("amount", r.Amount).
		Str("to", r.Address).
		Msg("withdraw queued")
	return nil
}

// Tick is the periodic driver. While the pending transaction is
// unconfirmed it does nothing and returns a nil plan. Otherwise the
// pending slot is cleared and any queued requests are withdrawn.
func (s *Service) Tick(ctx context.Context, c *Context) (*Plan, error) {
	if c == nil {
		return nil, ErrNilParam
	}
	lg := c.logger()
	if txid := c.Pending(); txid != "" {
		st, err := s.chain.GetTxStatus(ctx, txid)
		if err != nil {
			return nil, fmt.Errorf("transfer: status of %s: %w", txid, err)
		}
		if !st.Confirmed {
			lg.Debug().Str("txid", txid).Msg("pending transaction unconfirmed")
			return nil, nil
		}
		c.clearPending(txid)
		lg.Info().Str("txid", txid).Int64("confirmations", st.Confirmations).Msg("pending transaction confirmed")
	}
	if len(c.Queue()) == 0 {
		return nil, nil
	}
	return s.Withdraw(ctx, c)
}

// feeRate asks the rate source, falling back to the configured rate.
func (s *Service) feeRate(ctx context.Context, lg zerolog.Logger) (float64, error) {
	rate, err := s.rates.EstimateFeeRate(ctx)
	if err == nil && rate > 0 && !math.IsInf(rate, 0) {
		return rate, nil
	}
	if s.fallback > 0 {
		lg.Warn().Err(err).Float64("fallback", s.fallback).Msg("fee rate unavailable, using fallback")
		return s.fallback, nil
	}
	if err == nil {
		err = fmt.Errorf("rate %v", rate)
	}
	return 0, fmt.Errorf("%w: %w", ErrNoFeeRate, err)
}

// run guards a pipeline with the busy flag and the pending gate.
func (s *Service) run(c *Context, fn func() error) error {
	if c == nil {
		return ErrNilParam
	}
	if err := c.acquire(); err != nil {
		return err
	}
	defer c.release()
	if txid := c.Pending(); txid != "" {
		return fmt.Errorf("%w: %s", ErrPending, txid)
	}
	return fn()
}

// execute signs, broadcasts and records p. The pending slot is set as
// soon as the node accepts the transaction.
func (s *Service) execute(ctx context.Context, c *Context, p *Plan) error {
	lg := c.logger()
	if err := p.Skeleton.Sign(ctx, s.signer); err != nil {
		return err
	}
	res, err := p.Skeleton.Finalize()
	if err != nil {
		return err
	}
	got, err := s.chain.BroadcastTx(ctx, res.Hex)
	if err != nil {
		lg.Error().Err(err).Str("kind", p.Kind).Str("txid", res.TxID).Msg("broadcast failed")
		return err
	}
	if got != "" && got != res.TxID {
		lg.Warn().Str("txid", res.TxID).Str("node_txid", got).Msg("node reported a different txid")
	}
	p.Result = res
	c.setPending(res.TxID)
	lg.Info().
		Str("kind", p.Kind).
		Str("txid", res.TxID).
		Uint64("fee", p.Fee).
		Int64("vsize", res.VSize).
		Msg("broadcast")

	if err := s.apply(p); err != nil {
		lg.Error().Err(err).Str("txid", res.TxID).Msg("store update failed")
		return err
	}
	return nil
}

// apply removes the spent records and stores the created ones. It keeps
// going past individual failures and reports them together.
func (s *Service) apply(p *Plan) error {
	var errs []error
	for _, r := range p.Spent {
		if err := s.store.Remove(r.Address, r.Asset, r.TxID, r.Vout); err != nil {
			errs = append(errs, fmt.Errorf("remove %s %s: %w", r.Outpoint(), r.Asset, err))
		}
	}
	for _, r := range p.Created {
		if err := s.store.Put(r); err != nil {
			errs = append(errs, fmt.Errorf("put %s %s: %w", r.Outpoint(), r.Asset, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrStoreUpdate, errors.Join(errs...))
	}
	return nil
}
