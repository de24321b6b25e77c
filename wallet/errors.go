package wallet

import "errors"

var (
	// ErrInvalidMnemonic indicates the mnemonic fails BIP39 validation.
	ErrInvalidMnemonic = errors.New("wallet: invalid BIP39 mnemonic")

	// ErrInvalidEntropy indicates entropy bits is not 128 or 256.
	ErrInvalidEntropy = errors.New("wallet: entropy bits must be 128 or 256")

	// ErrInvalidNetwork indicates an unknown network name.
	ErrInvalidNetwork = errors.New("wallet: invalid network name")

	// ErrInvalidSeed indicates the seed is empty or too short.
	ErrInvalidSeed = errors.New("wallet: invalid seed")

	// ErrDerivationFailed indicates key derivation produced an unusable key.
	ErrDerivationFailed = errors.New("wallet: key derivation failed")

	// ErrSigningFailed indicates the schnorr signature could not be produced.
	ErrSigningFailed = errors.New("wallet: signing failed")
)

var (
	// ErrDecryptionFailed indicates a wrong password or corrupt seed file.
	ErrDecryptionFailed = errors.New("wallet: seed decryption failed")

	// ErrSeedFileFormat indicates the seed file header is not recognized.
	ErrSeedFileFormat = errors.New("wallet: unrecognized seed file format")
)
