package secret

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastArgon2 keeps tests quick.
func fastArgon2() Hasher {
	return Argon2WithParams(Argon2Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 16, SaltLen: 8})
}

func TestArgon2_Hash(t *testing.T) {
	hash, err := fastArgon2().Hash([]byte("password123"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"), hash)
}

func TestArgon2_DifferentSalts(t *testing.T) {
	h := fastArgon2()
	hash1, err := h.Hash([]byte("password123"))
	require.NoError(t, err)
	hash2, err := h.Hash([]byte("password123"))
	require.NoError(t, err)
	assert.NotEqual(t, hash1, hash2, "random salt should vary the digest")
}

func TestArgon2_Verify(t *testing.T) {
	h := fastArgon2()
	hash, err := h.Hash([]byte("password123"))
	require.NoError(t, err)

	v := h.(Verifier)
	ok, err := v.Verify([]byte("password123"), hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify([]byte("wrong"), hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = v.Verify([]byte("x"), "$argon2id$garbage")
	assert.ErrorIs(t, err, ErrMalformedDigest)

	rec := h.(Recognizer)
	assert.True(t, rec.Recognizes(hash))
	assert.False(t, rec.Recognizes("password123"))
}

func TestDefaultArgon2Params(t *testing.T) {
	params := DefaultArgon2Params()
	assert.Equal(t, uint32(1), params.Time)
	assert.Equal(t, uint32(64*1024), params.Memory)
	assert.Equal(t, uint8(4), params.Threads)
	assert.Equal(t, uint32(32), params.KeyLen)
	assert.Equal(t, uint32(16), params.SaltLen)
}

func TestBcrypt_HashAndVerify(t *testing.T) {
	h := BcryptWithCost(BcryptMinCost)
	hash, err := h.Hash([]byte("password123"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"), hash)

	v := h.(Verifier)
	ok, err := v.Verify([]byte("password123"), hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify([]byte("wrong"), hash)
	require.NoError(t, err)
	assert.False(t, ok)

	rec := h.(Recognizer)
	assert.True(t, rec.Recognizes(hash))
	assert.False(t, rec.Recognizes("password123"))
}

func TestSHA_Deterministic(t *testing.T) {
	tests := []struct {
		name   string
		hasher Hasher
		want   string
	}{
		{"sha256", SHA256Hasher(), "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"},
		{"sha512", SHA512Hasher(), "9b71d224bd62f3785d96d46ad3ea3d73319bfbc2890caadae2dff72519673ca72323c3d99ba5c11d7c7acc6e14b8c5da0c4663475c2e5c3adef46f73bcdec043"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.hasher.Hash([]byte("hello"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := tt.hasher.Hash([]byte("hello"))
			require.NoError(t, err)
			assert.Equal(t, got, again)

			v := tt.hasher.(Verifier)
			ok, err := v.Verify([]byte("hello"), got)
			require.NoError(t, err)
			assert.True(t, ok)

			_, ok = tt.hasher.(Recognizer)
			assert.False(t, ok, "hex digests are indistinguishable from hex plaintext")
		})
	}
}

func TestHasherFor(t *testing.T) {
	for _, algo := range []HashAlgo{HashArgon2, HashBcrypt, HashSHA256, HashSHA512} {
		h, err := HasherFor(algo)
		require.NoError(t, err, algo)
		assert.NotNil(t, h)
		assert.True(t, IsValidHashAlgo(algo))
	}

	_, err := HasherFor("md5")
	assert.ErrorIs(t, err, ErrUnknownCapability)
	assert.False(t, IsValidHashAlgo("md5"))
}
