// Package recasttest provides test utilities for recast: fixture types,
// YAML-backed fixture maps and round-trip assertions.
package recasttest

import (
	"os"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoobzio/recast"
	"github.com/zoobzio/recast/secret"
)

// TestKey returns a valid 32-byte AES key for testing.
func TestKey(tb testing.TB) []byte {
	tb.Helper()
	return []byte("32-byte-key-for-aes-256-encrypt!")
}

// TestEncryptor returns an AES encryptor configured for testing.
func TestEncryptor(tb testing.TB) secret.Encryptor {
	tb.Helper()
	enc, err := secret.AES(TestKey(tb))
	require.NoError(tb, err)
	return enc
}

// NewRecaster returns a Recaster with the fixture aliases and the Secret
// transformer registered, plus any extra options.
func NewRecaster(tb testing.TB, opts ...recast.Option) *recast.Recaster {
	tb.Helper()
	base := []recast.Option{
		recast.WithAliases(Catalog{}),
		recast.WithTransformers(SecretTransformer{}),
	}
	r, err := recast.New(append(base, opts...)...)
	require.NoError(tb, err)
	return r
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Dump renders v for failure messages: nested maps, pointers and
// interface contents are expanded.
func Dump(v any) string {
	return dumper.Sdump(v)
}

// AssertRoundTrip encodes v, decodes the map back as T and asserts the
// result equals v. The encoded map is returned for further checks.
func AssertRoundTrip[T any](tb testing.TB, r *recast.Recaster, v T) *recast.Map {
	tb.Helper()

	m, err := r.ToMap(v)
	require.NoError(tb, err, "ToMap(%s)", Dump(v))

	out, err := recast.Decode[T](r, m)
	require.NoError(tb, err, "Decode of %s", m)

	assert.Equal(tb, v, out, "round trip through %s\ngot:\n%s", m, Dump(out))
	return m
}

// AssertMapEqual asserts two maps hold the same keys in the same order with
// equal values.
func AssertMapEqual(tb testing.TB, want, got *recast.Map) {
	tb.Helper()
	if !want.Equal(got) {
		assert.Fail(tb, "maps differ", "want: %s\ngot:  %s\n%s", want, got, Dump(got))
	}
}

// LoadMap reads a YAML fixture file into a Map.
func LoadMap(tb testing.TB, path string) *recast.Map {
	tb.Helper()
	data, err := os.ReadFile(path)
	require.NoError(tb, err)
	m, err := ParseMap(data)
	require.NoError(tb, err, path)
	return m
}
