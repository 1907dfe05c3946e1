// Package secret provides recast transformers for sensitive string values.
//
// Each transformer handles one named string type, so the semantics travel
// with the type rather than with tags on every field that holds it:
//
//	type Email string
//	type Password string
//
//	enc, _ := secret.AES(key)
//	r, _ := recast.New(recast.WithTransformers(
//	    secret.Seal[Email](enc),
//	    secret.Hash[Password](secret.Argon2()),
//	))
//
// # Transformers
//
//   - Seal: encrypt on encode, decrypt on decode (round-trips)
//   - Hash: one-way digest; argon2 and bcrypt digests are stored unchanged
//   - Mask: content-aware masking (ssn, email, phone, card, ip, uuid, iban, name)
//   - Redact: replace with a fixed placeholder
//
// # Encryption Algorithms
//
//   - AES(key) - AES-GCM symmetric encryption
//   - RSA(pub, priv) - RSA-OAEP asymmetric encryption
//   - Envelope(masterKey) - Envelope encryption with per-message data keys
//
// # Hash Algorithms
//
//   - Argon2() - Argon2id password hashing (salted)
//   - Bcrypt() - bcrypt password hashing (salted)
//   - SHA256Hasher() - SHA-256 deterministic hashing
//   - SHA512Hasher() - SHA-512 deterministic hashing
package secret

import (
	"encoding/base64"
	"fmt"
	"reflect"

	"github.com/zoobzio/recast"
)

// stringTransformer holds what every transformer in this package shares:
// one supported string type and the decode of plain stored text.
type stringTransformer[T ~string] struct{}

func (stringTransformer[T]) SupportedTypes() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[T]()}
}

// text extracts stored string data. Nil decodes to the zero value.
func (stringTransformer[T]) text(data any) (string, error) {
	switch d := data.(type) {
	case nil:
		return "", nil
	case string:
		return d, nil
	}
	return "", fmt.Errorf("%w: %T is not a string", recast.ErrInvalidValue, data)
}

func (s stringTransformer[T]) plain(data any) (reflect.Value, error) {
	str, err := s.text(data)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(T(str)), nil
}

// sealTransformer encrypts values as base64 ciphertext.
type sealTransformer[T ~string] struct {
	stringTransformer[T]
	enc Encryptor
}

// Seal returns a transformer that stores T encrypted with enc. The empty
// string is stored as is.
func Seal[T ~string](enc Encryptor) recast.Transformer {
	return &sealTransformer[T]{enc: enc}
}

func (s *sealTransformer[T]) Encode(_ *recast.Recaster, v reflect.Value) (any, error) {
	plaintext := v.String()
	if plaintext == "" {
		return "", nil
	}
	ciphertext, err := s.enc.Encrypt([]byte(plaintext))
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (s *sealTransformer[T]) Decode(_ *recast.Recaster, _ reflect.Type, data any) (reflect.Value, error) {
	encoded, err := s.text(data)
	if err != nil || encoded == "" {
		return reflect.ValueOf(T("")), err
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	plaintext, err := s.enc.Decrypt(ciphertext)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(T(plaintext)), nil
}

// hashTransformer stores a one-way digest.
type hashTransformer[T ~string] struct {
	stringTransformer[T]
	h Hasher
}

// Hash returns a transformer that stores T as a digest computed by h.
// Decoding yields the digest itself. When h is a Recognizer, values already
// in its digest format are stored unchanged, so decoded values re-encode
// stably. Other hashers hash every value, digests included.
func Hash[T ~string](h Hasher) recast.Transformer {
	return &hashTransformer[T]{h: h}
}

func (t *hashTransformer[T]) Encode(_ *recast.Recaster, v reflect.Value) (any, error) {
	plaintext := v.String()
	if plaintext == "" {
		return "", nil
	}
	if rec, ok := t.h.(Recognizer); ok && rec.Recognizes(plaintext) {
		return plaintext, nil
	}
	return t.h.Hash([]byte(plaintext))
}

func (t *hashTransformer[T]) Decode(_ *recast.Recaster, _ reflect.Type, data any) (reflect.Value, error) {
	return t.plain(data)
}

// maskTransformer stores a masked copy.
type maskTransformer[T ~string] struct {
	stringTransformer[T]
	m Masker
}

// Mask returns a transformer that stores T masked by m. The original value
// is not recoverable.
func Mask[T ~string](m Masker) recast.Transformer {
	return &maskTransformer[T]{m: m}
}

func (t *maskTransformer[T]) Encode(_ *recast.Recaster, v reflect.Value) (any, error) {
	return t.m.Mask(v.String()), nil
}

func (t *maskTransformer[T]) Decode(_ *recast.Recaster, _ reflect.Type, data any) (reflect.Value, error) {
	return t.plain(data)
}

// redactTransformer stores a fixed placeholder.
type redactTransformer[T ~string] struct {
	stringTransformer[T]
	placeholder string
}

// Redact returns a transformer that stores placeholder in place of every T.
func Redact[T ~string](placeholder string) recast.Transformer {
	return &redactTransformer[T]{placeholder: placeholder}
}

func (t *redactTransformer[T]) Encode(_ *recast.Recaster, _ reflect.Value) (any, error) {
	return t.placeholder, nil
}

func (t *redactTransformer[T]) Decode(_ *recast.Recaster, _ reflect.Type, data any) (reflect.Value, error) {
	return t.plain(data)
}
