package secret

import (
	"errors"
	"fmt"
)

// ErrUnknownCapability is returned for an algorithm or mask type this
// package does not provide.
var ErrUnknownCapability = errors.New("unknown capability")

// EncryptAlgo represents a supported encryption algorithm.
type EncryptAlgo string

const (
	// EncryptAES uses AES-GCM symmetric encryption.
	EncryptAES EncryptAlgo = "aes"

	// EncryptRSA uses RSA-OAEP asymmetric encryption.
	EncryptRSA EncryptAlgo = "rsa"

	// EncryptEnvelope uses envelope encryption with per-message data keys.
	EncryptEnvelope EncryptAlgo = "envelope"
)

// HashAlgo represents a supported hashing algorithm.
type HashAlgo string

const (
	// HashArgon2 uses Argon2id for password hashing (salted, slow).
	HashArgon2 HashAlgo = "argon2"

	// HashBcrypt uses bcrypt for password hashing (salted, slow).
	HashBcrypt HashAlgo = "bcrypt"

	// HashSHA256 uses SHA-256 for deterministic hashing (fast, no salt).
	// Use for fingerprinting/identification, NOT for passwords.
	HashSHA256 HashAlgo = "sha256"

	// HashSHA512 uses SHA-512 for deterministic hashing (fast, no salt).
	// Use for fingerprinting/identification, NOT for passwords.
	HashSHA512 HashAlgo = "sha512"
)

var hashers = map[HashAlgo]func() Hasher{
	HashArgon2: Argon2,
	HashBcrypt: Bcrypt,
	HashSHA256: SHA256Hasher,
	HashSHA512: SHA512Hasher,
}

// HasherFor returns a built-in hasher with default parameters.
func HasherFor(algo HashAlgo) (Hasher, error) {
	mk, ok := hashers[algo]
	if !ok {
		return nil, fmt.Errorf("%w: hash algorithm %q", ErrUnknownCapability, algo)
	}
	return mk(), nil
}

// EncryptorFor returns a symmetric encryptor for key. RSA needs a key pair
// and is built with RSA instead.
func EncryptorFor(algo EncryptAlgo, key []byte) (Encryptor, error) {
	switch algo {
	case EncryptAES:
		return AES(key)
	case EncryptEnvelope:
		return Envelope(key)
	case EncryptRSA:
		return nil, fmt.Errorf("%w: rsa requires a key pair, use RSA", ErrMissingKey)
	}
	return nil, fmt.Errorf("%w: encryption algorithm %q", ErrUnknownCapability, algo)
}

// IsValidEncryptAlgo returns true if the algorithm is a known encryption algorithm.
func IsValidEncryptAlgo(algo EncryptAlgo) bool {
	switch algo {
	case EncryptAES, EncryptRSA, EncryptEnvelope:
		return true
	}
	return false
}

// IsValidHashAlgo returns true if the algorithm is a known hash algorithm.
func IsValidHashAlgo(algo HashAlgo) bool {
	_, ok := hashers[algo]
	return ok
}

// IsValidMaskType returns true if the type is a known mask type.
func IsValidMaskType(mt MaskType) bool {
	_, ok := maskers[mt]
	return ok
}
