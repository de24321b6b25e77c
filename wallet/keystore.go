package wallet

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// Argon2id parameters for seed file encryption.
	Argon2Time        = 3
	Argon2Memory      = 64 * 1024
	Argon2Parallelism = 4

	saltLen = 16
)

// seedFileMagic prefixes every seed file and is bound as associated data.
var seedFileMagic = []byte("PSK1")

// kdfParams lets tests trade hardness for speed.
var kdfParams = struct {
	time, memory uint32
	threads      uint8
}{Argon2Time, Argon2Memory, Argon2Parallelism}

func seedKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, kdfParams.time, kdfParams.memory, kdfParams.threads, chacha20poly1305.KeySize)
}

// EncryptSeed seals seed under password.
//
//	magic(4) || salt(16) || nonce(12) || ChaCha20-Poly1305(seed)
func EncryptSeed(seed []byte, password string) ([]byte, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("wallet: generate salt: %w", err)
	}
	aead, err := chacha20poly1305.New(seedKey(password, salt))
	if err != nil {
		return nil, fmt.Errorf("wallet: init cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("wallet: generate nonce: %w", err)
	}

	out := make([]byte, 0, len(seedFileMagic)+saltLen+len(nonce)+len(seed)+aead.Overhead())
	out = append(out, seedFileMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, seed, seedFileMagic), nil
}

// DecryptSeed opens data produced by EncryptSeed.
func DecryptSeed(data []byte, password string) ([]byte, error) {
	if !bytes.HasPrefix(data, seedFileMagic) {
		return nil, ErrSeedFileFormat
	}
	body := data[len(seedFileMagic):]
	if len(body) < saltLen+chacha20poly1305.NonceSize+chacha20poly1305.Overhead {
		return nil, ErrDecryptionFailed
	}
	salt := body[:saltLen]
	nonce := body[saltLen : saltLen+chacha20poly1305.NonceSize]
	sealed := body[saltLen+chacha20poly1305.NonceSize:]

	aead, err := chacha20poly1305.New(seedKey(password, salt))
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	seed, err := aead.Open(nil, nonce, sealed, seedFileMagic)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return seed, nil
}

// SaveSeedFile encrypts seed and writes it to path with owner-only access.
func SaveSeedFile(path string, seed []byte, password string) error {
	data, err := EncryptSeed(seed, password)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("wallet: create seed dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("wallet: write seed file: %w", err)
	}
	return nil
}

// LoadSeedFile reads and decrypts the seed file at path.
func LoadSeedFile(path, password string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wallet: read seed file: %w", err)
	}
	return DecryptSeed(data, password)
}

// OpenLocalSigner loads the seed file at path and returns a signer over it.
func OpenLocalSigner(path, password string) (*LocalSigner, error) {
	seed, err := LoadSeedFile(path, password)
	if err != nil {
		return nil, err
	}
	return NewLocalSigner(seed)
}
