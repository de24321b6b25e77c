package network

import (
	"fmt"
	"os"
	"time"
)

// Environment variables read by ResolveConfig.
const (
	EnvRPCURL  = "PROTOSTONE_RPC_URL"
	EnvRPCUser = "PROTOSTONE_RPC_USER"
	EnvRPCPass = "PROTOSTONE_RPC_PASS"
)

// RPCConfig holds the connection parameters of a node's JSON-RPC interface.
type RPCConfig struct {
	URL      string        `json:"url"`
	User     string        `json:"user"`
	Password string        `json:"password"`
	Network  string        `json:"network"`
	Timeout  time.Duration `json:"timeout"`
}

// NetworkPresets holds default endpoints for local test networks.
// Mainnet has none and must be configured explicitly.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:18443", User: "protostone", Password: "protostone"},
	"testnet": {URL: "http://localhost:18332", User: "protostone", Password: "protostone"},
	"signet":  {URL: "http://localhost:38332", User: "protostone", Password: "protostone"},
}

// Environ returns the RPC variables currently set in the process environment.
func Environ() map[string]string {
	env := make(map[string]string, 3)
	for _, k := range []string{EnvRPCURL, EnvRPCUser, EnvRPCPass} {
		if v, ok := os.LookupEnv(k); ok {
			env[k] = v
		}
	}
	return env
}

// ResolveConfig layers RPC settings, highest priority first:
//  1. flags
//  2. env (PROTOSTONE_RPC_URL, PROTOSTONE_RPC_USER, PROTOSTONE_RPC_PASS)
//  3. the network preset
func ResolveConfig(flags *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}
	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	if v := env[EnvRPCURL]; v != "" {
		result.URL = v
	}
	if v := env[EnvRPCUser]; v != "" {
		result.User = v
	}
	if v := env[EnvRPCPass]; v != "" {
		result.Password = v
	}

	if flags != nil {
		if flags.URL != "" {
			result.URL = flags.URL
		}
		if flags.User != "" {
			result.User = flags.User
		}
		if flags.Password != "" {
			result.Password = flags.Password
		}
		if flags.Timeout > 0 {
			result.Timeout = flags.Timeout
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("%w: %s requires an explicit RPC URL (flag or %s)", ErrNoRPCURL, network, EnvRPCURL)
	}
	return &result, nil
}
