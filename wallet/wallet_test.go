package wallet

import (
	"context"
	"crypto/sha256"
	"path/filepath"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func testSigner(t *testing.T) *LocalSigner {
	t.Helper()
	s, err := NewLocalSignerFromMnemonic(testMnemonic, "")
	require.NoError(t, err)
	return s
}

func fastKDF(t *testing.T) {
	t.Helper()
	old := kdfParams
	kdfParams.time, kdfParams.memory, kdfParams.threads = 1, 1024, 1
	t.Cleanup(func() { kdfParams = old })
}

// --- Mnemonic ---

func TestGenerateMnemonic(t *testing.T) {
	m12, err := GenerateMnemonic(Mnemonic12Words)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(m12), 12)

	m24, err := GenerateMnemonic(Mnemonic24Words)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(m24), 24)

	_, err = GenerateMnemonic(192)
	assert.ErrorIs(t, err, ErrInvalidEntropy)
}

func TestSeedFromMnemonic(t *testing.T) {
	seed, err := SeedFromMnemonic(testMnemonic, "")
	require.NoError(t, err)
	assert.Len(t, seed, 64)

	other, err := SeedFromMnemonic(testMnemonic, "TREZOR")
	require.NoError(t, err)
	assert.NotEqual(t, seed, other)

	_, err = SeedFromMnemonic("foo bar baz", "")
	assert.ErrorIs(t, err, ErrInvalidMnemonic)
}

// --- Network params ---

func TestParams(t *testing.T) {
	tests := []struct {
		name string
		want *chaincfg.Params
	}{
		{"mainnet", &chaincfg.MainNetParams},
		{"testnet", &chaincfg.TestNet3Params},
		{"signet", &chaincfg.SigNetParams},
		{"regtest", &chaincfg.RegressionNetParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Params(tt.name)
			require.NoError(t, err)
			assert.Same(t, tt.want, p)
			assert.Equal(t, tt.name, Name(p))
		})
	}

	_, err := Params("bsv")
	assert.ErrorIs(t, err, ErrInvalidNetwork)
	assert.Equal(t, []string{"mainnet", "regtest", "signet", "testnet"}, Networks())
}

// --- LocalSigner ---

func TestNewLocalSignerRejectsShortSeed(t *testing.T) {
	_, err := NewLocalSigner(make([]byte, MinSeedLen-1))
	assert.ErrorIs(t, err, ErrInvalidSeed)
}

func TestSignerKeysAreDeterministicAndSeparated(t *testing.T) {
	s := testSigner(t)
	again := testSigner(t)

	a, err := s.InternalKey("fund", nil)
	require.NoError(t, err)
	b, err := again.InternalKey("fund", nil)
	require.NoError(t, err)
	assert.True(t, a.IsEqual(b))

	fee, err := s.InternalKey("fee", nil)
	require.NoError(t, err)
	assert.False(t, a.IsEqual(fee))

	child, err := s.InternalKey("fund", [][]byte{{0}})
	require.NoError(t, err)
	assert.False(t, a.IsEqual(child))

	// name/path boundaries are unambiguous
	x, err := s.InternalKey("ab", [][]byte{[]byte("c")})
	require.NoError(t, err)
	y, err := s.InternalKey("a", [][]byte{[]byte("bc")})
	require.NoError(t, err)
	assert.False(t, x.IsEqual(y))
}

func TestSignerAddress(t *testing.T) {
	s := testSigner(t)

	tb, err := s.Address("fund", nil, &chaincfg.TestNet3Params)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tb.EncodeAddress(), "tb1p"))

	rt, err := s.Address("fund", nil, &chaincfg.RegressionNetParams)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rt.EncodeAddress(), "bcrt1p"))
	assert.Equal(t, tb.ScriptAddress(), rt.ScriptAddress())
}

func TestSignVerifiesAgainstOutputKey(t *testing.T) {
	s := testSigner(t)
	hash := sha256.Sum256([]byte("sighash"))

	sig, err := s.Sign(context.Background(), "fund", nil, nil, hash)
	require.NoError(t, err)
	require.Len(t, sig, 64)

	internal, err := s.InternalKey("fund", nil)
	require.NoError(t, err)
	parsed, err := schnorr.ParseSignature(sig)
	require.NoError(t, err)
	assert.True(t, parsed.Verify(hash[:], txscript.ComputeTaprootKeyNoScript(internal)))

	// untweaked key must not verify
	assert.False(t, parsed.Verify(hash[:], internal))
}

func TestSignCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testSigner(t).Sign(ctx, "fund", nil, nil, [32]byte{1})
	assert.ErrorIs(t, err, context.Canceled)
}

// --- Seed file ---

func TestSeedFileRoundTrip(t *testing.T) {
	fastKDF(t)
	seed, err := SeedFromMnemonic(testMnemonic, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "keys", "signer.seed")
	require.NoError(t, SaveSeedFile(path, seed, "hunter2"))

	got, err := LoadSeedFile(path, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, seed, got)

	_, err = LoadSeedFile(path, "wrong")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	signer, err := OpenLocalSigner(path, "hunter2")
	require.NoError(t, err)
	want, err := testSigner(t).InternalKey("fund", nil)
	require.NoError(t, err)
	gotKey, err := signer.InternalKey("fund", nil)
	require.NoError(t, err)
	assert.True(t, want.IsEqual(gotKey))
}

func TestDecryptSeedRejectsBadInput(t *testing.T) {
	fastKDF(t)
	_, err := DecryptSeed([]byte("nope"), "x")
	assert.ErrorIs(t, err, ErrSeedFileFormat)

	_, err = DecryptSeed(append([]byte("PSK1"), make([]byte, 10)...), "x")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	enc, err := EncryptSeed([]byte("0123456789abcdef"), "pw")
	require.NoError(t, err)
	enc[len(enc)-1] ^= 0xff
	_, err = DecryptSeed(enc, "pw")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	_, err = EncryptSeed(nil, "pw")
	assert.ErrorIs(t, err, ErrInvalidSeed)
}
