package wallet

import (
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/chaincfg"
)

// networks maps network names to their chain parameters.
var networks = map[string]*chaincfg.Params{
	"mainnet": &chaincfg.MainNetParams,
	"testnet": &chaincfg.TestNet3Params,
	"signet":  &chaincfg.SigNetParams,
	"regtest": &chaincfg.RegressionNetParams,
}

// Params returns the chain parameters for a network name.
func Params(name string) (*chaincfg.Params, error) {
	if p, ok := networks[name]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidNetwork, name)
}

// Networks returns the supported network names, sorted.
func Networks() []string {
	names := make([]string, 0, len(networks))
	for n := range networks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Name returns the network name for params, or "" if unknown.
func Name(params *chaincfg.Params) string {
	for n, p := range networks {
		if p.Net == params.Net && p.Name == params.Name {
			return n
		}
	}
	return ""
}
