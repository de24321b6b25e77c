// Package wallet provides network parameters and a seed-backed taproot
// signer that satisfies the transaction assembler's signer interface.
package wallet

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"golang.org/x/crypto/hkdf"

	"github.com/bitfsorg/libprotostone-go/log"
)

const (
	// MinSeedLen is the shortest seed accepted by NewLocalSigner.
	MinSeedLen = 16

	// hkdfSalt separates signer keys from any other use of the seed.
	hkdfSalt = "protostone-taproot-key"
)

// LocalSigner derives one taproot key per (key name, derivation path) from
// a seed and signs sighashes with the tweaked key-spend key.
type LocalSigner struct {
	seed []byte

	mu   sync.Mutex
	keys map[string]*btcec.PrivateKey
}

// NewLocalSigner returns a signer over seed.
func NewLocalSigner(seed []byte) (*LocalSigner, error) {
	if len(seed) < MinSeedLen {
		return nil, fmt.Errorf("%w: need at least %d bytes", ErrInvalidSeed, MinSeedLen)
	}
	return &LocalSigner{
		seed: append([]byte(nil), seed...),
		keys: make(map[string]*btcec.PrivateKey),
	}, nil
}

// NewLocalSignerFromMnemonic returns a signer over the BIP39 seed of
// mnemonic and passphrase.
func NewLocalSignerFromMnemonic(mnemonic, passphrase string) (*LocalSigner, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	return NewLocalSigner(seed)
}

// derivationInfo serializes a key name and path unambiguously.
func derivationInfo(keyName string, path [][]byte) []byte {
	info := binary.AppendUvarint(nil, uint64(len(keyName)))
	info = append(info, keyName...)
	for _, p := range path {
		info = binary.AppendUvarint(info, uint64(len(p)))
		info = append(info, p...)
	}
	return info
}

// PrivateKey returns the untweaked internal key for keyName and path.
func (s *LocalSigner) PrivateKey(keyName string, path [][]byte) (*btcec.PrivateKey, error) {
	info := derivationInfo(keyName, path)

	s.mu.Lock()
	defer s.mu.Unlock()
	if k, ok := s.keys[string(info)]; ok {
		return k, nil
	}

	buf := make([]byte, 32)
	r := hkdf.New(sha256.New, s.seed, []byte(hkdfSalt), info)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}
	priv, _ := btcec.PrivKeyFromBytes(buf)
	if priv.Key.IsZero() {
		return nil, ErrDerivationFailed
	}
	s.keys[string(info)] = priv
	return priv, nil
}

// InternalKey returns the untweaked public key for keyName and path.
func (s *LocalSigner) InternalKey(keyName string, path [][]byte) (*btcec.PublicKey, error) {
	priv, err := s.PrivateKey(keyName, path)
	if err != nil {
		return nil, err
	}
	return priv.PubKey(), nil
}

// Address returns the key-spend-only taproot address for keyName and path.
func (s *LocalSigner) Address(keyName string, path [][]byte, params *chaincfg.Params) (*btcutil.AddressTaproot, error) {
	internal, err := s.InternalKey(keyName, path)
	if err != nil {
		return nil, err
	}
	outputKey := txscript.ComputeTaprootKeyNoScript(internal)
	return btcutil.NewAddressTaproot(schnorr.SerializePubKey(outputKey), params)
}

// Sign produces a 64-byte BIP340 signature over hash with the tweaked
// key-spend key. A 32-byte aux is used as the nonce auxiliary randomness.
func (s *LocalSigner) Sign(ctx context.Context, keyName string, path [][]byte, aux []byte, hash [32]byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	priv, err := s.PrivateKey(keyName, path)
	if err != nil {
		return nil, err
	}
	tweaked := txscript.TweakTaprootPrivKey(*priv, nil)

	var opts []schnorr.SignOption
	if len(aux) == 32 {
		var a [32]byte
		copy(a[:], aux)
		opts = append(opts, schnorr.CustomNonce(a))
	}
	sig, err := schnorr.Sign(tweaked, hash[:], opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}

	log.Wallet.Debug().Str("key", keyName).Int("path_len", len(path)).Msg("signed sighash")
	return sig.Serialize(), nil
}
