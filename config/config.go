// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config loads and saves the library's key = value configuration
// file and validates its values.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// DefaultDirName is the data directory name under the home directory.
	DefaultDirName = ".protostone"

	configFileName = "config"
	storeFileName  = "utxo.db"
	seedFileName   = "signer.seed"

	// DefaultFallbackFeeRate is used when the node has no fee estimate (sat/vB).
	DefaultFallbackFeeRate = 2.0
)

// Config holds the library configuration.
type Config struct {
	DataDir  string
	Network  string // mainnet, testnet, signet or regtest
	LogLevel string // debug, info, warn or error
	LogFile  string // empty logs to stderr

	// KeyName signs asset-carrying inputs; FeeKeyName signs fee inputs.
	KeyName    string
	FeeKeyName string

	FallbackFeeRate float64

	// Optional RPC overrides, layered under flags and environment.
	RPCURL  string
	RPCUser string
	RPCPass string
}

// DefaultDataDir returns ~/.protostone, or .protostone if the home
// directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}

// DefaultConfig returns a configuration for testnet with default keys.
func DefaultConfig() Config {
	return Config{
		DataDir:         DefaultDataDir(),
		Network:         "testnet",
		LogLevel:        "info",
		KeyName:         "asset",
		FeeKeyName:      "fee",
		FallbackFeeRate: DefaultFallbackFeeRate,
	}
}

// ConfigPath returns the configuration file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFileName)
}

// StorePath returns the UTXO database path.
func (c Config) StorePath() string {
	return filepath.Join(c.DataDir, storeFileName)
}

// SeedPath returns the encrypted signer seed path.
func (c Config) SeedPath() string {
	return filepath.Join(c.DataDir, seedFileName)
}

// LoadConfig reads the file at path over DefaultConfig. Blank lines and
// lines starting with # are skipped; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := parseKeyValue(line)
		if !ok {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		if err := cfg.set(key, value); err != nil {
			return cfg, fmt.Errorf("%w: line %d: %w", ErrInvalidConfigLine, lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// parseKeyValue splits on the first '='.
func parseKeyValue(line string) (string, string, bool) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

func (c *Config) set(key, value string) error {
	switch key {
	case "datadir":
		c.DataDir = value
	case "network":
		c.Network = value
	case "loglevel":
		c.LogLevel = value
	case "logfile":
		c.LogFile = value
	case "keyname":
		c.KeyName = value
	case "feekeyname":
		c.FeeKeyName = value
	case "feerate":
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("feerate: %w", err)
		}
		c.FallbackFeeRate = rate
	case "rpcurl":
		c.RPCURL = value
	case "rpcuser":
		c.RPCUser = value
	case "rpcpass":
		c.RPCPass = value
	}
	return nil
}

// SaveConfig writes cfg to path, creating parent directories. The file is
// owner-only since it may hold RPC credentials.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Protostone Configuration\n\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "network = %s\n", cfg.Network)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)
	b.WriteString("\n# Signer keys\n")
	fmt.Fprintf(&b, "keyname = %s\n", cfg.KeyName)
	fmt.Fprintf(&b, "feekeyname = %s\n", cfg.FeeKeyName)
	b.WriteString("\n# Fallback fee rate in sat/vB\n")
	fmt.Fprintf(&b, "feerate = %s\n", strconv.FormatFloat(cfg.FallbackFeeRate, 'f', -1, 64))
	b.WriteString("\n# Node RPC (flags and PROTOSTONE_RPC_* take precedence)\n")
	fmt.Fprintf(&b, "rpcurl = %s\n", cfg.RPCURL)
	fmt.Fprintf(&b, "rpcuser = %s\n", cfg.RPCUser)
	fmt.Fprintf(&b, "rpcpass = %s\n", cfg.RPCPass)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
