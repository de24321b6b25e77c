package transfer

import (
	"fmt"

	"github.com/bitfsorg/libprotostone-go/config"
	"github.com/bitfsorg/libprotostone-go/log"
	"github.com/bitfsorg/libprotostone-go/network"
	"github.com/bitfsorg/libprotostone-go/utxo"
	"github.com/bitfsorg/libprotostone-go/wallet"
)

// Runtime is a Service and Context wired from a configuration: the bolt
// store under the data directory, the encrypted seed file, and the node's
// JSON-RPC interface.
type Runtime struct {
	Config  config.Config
	Service *Service
	Context *Context
	Store   *utxo.BoltStore
	Chain   *network.RPCClient
}

// Open validates cfg, initializes logging and opens every component.
// password decrypts the seed file.
func Open(cfg config.Config, password string) (*Runtime, error) {
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if err := log.Init(cfg.LogLevel, false, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("transfer: init log: %w", err)
	}
	params, err := wallet.Params(cfg.Network)
	if err != nil {
		return nil, err
	}
	signer, err := wallet.OpenLocalSigner(cfg.SeedPath(), password)
	if err != nil {
		return nil, err
	}
	rpcCfg, err := network.ResolveConfig(&network.RPCConfig{
		URL:      cfg.RPCURL,
		User:     cfg.RPCUser,
		Password: cfg.RPCPass,
	}, network.Environ(), cfg.Network)
	if err != nil {
		return nil, err
	}
	book, err := DeriveAddressBook(signer, params, cfg.KeyName, cfg.FeeKeyName)
	if err != nil {
		return nil, err
	}

	store, err := utxo.OpenBoltStore(cfg.StorePath())
	if err != nil {
		return nil, err
	}
	chain := network.NewRPCClient(*rpcCfg)
	svc, err := NewService(Options{
		Params:          params,
		Store:           store,
		Chain:           chain,
		Signer:          signer,
		FallbackFeeRate: cfg.FallbackFeeRate,
		Whitelist:       store,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	log.Transfer.Info().
		Str("network", cfg.Network).
		Str("fund", book.Fund.Address).
		Str("topup", book.Topup.Address).
		Str("fee", book.Fee.Address).
		Msg("transfer runtime opened")

	return &Runtime{
		Config:  cfg,
		Service: svc,
		Context: NewContext(book),
		Store:   store,
		Chain:   chain,
	}, nil
}

// Close releases the store.
func (r *Runtime) Close() error {
	return r.Store.Close()
}
