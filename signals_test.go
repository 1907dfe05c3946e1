package recast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmitters(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		emit func()
	}{
		{"class cached", func() { emitClassCached(ctx, "example.com/geo.Point", 2) }},
		{"alias registered", func() { emitAliasRegistered(ctx, "Pt", "example.com/geo.Point") }},
		{"transformer added", func() { emitTransformerAdded(ctx, 3) }},
		{"registration error", func() { emitRegistrationError(ctx, ErrAliasConflict) }},
		{"encode success", func() {
			emitEncodeComplete(ctx, "example.com/geo.Point", "Pt", 100*time.Millisecond, nil)
		}},
		{"encode error", func() {
			emitEncodeComplete(ctx, "example.com/geo.Point", "", 100*time.Millisecond, errors.New("test error"))
		}},
		{"decode success", func() {
			emitDecodeComplete(ctx, "example.com/geo.Point", "Pt", 100*time.Millisecond, nil)
		}},
		{"decode error", func() {
			emitDecodeComplete(ctx, "", "ghost", 100*time.Millisecond, ErrUnknownType)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, tt.emit)
		})
	}
}

func TestSignalVariables(t *testing.T) {
	signals := map[string]any{
		"SignalClassCached":       SignalClassCached,
		"SignalAliasRegistered":   SignalAliasRegistered,
		"SignalTransformerAdded":  SignalTransformerAdded,
		"SignalEncodeComplete":    SignalEncodeComplete,
		"SignalDecodeComplete":    SignalDecodeComplete,
		"SignalRegistrationError": SignalRegistrationError,
	}
	for name, s := range signals {
		assert.NotNil(t, s, name)
	}
}

func TestKeyVariables(t *testing.T) {
	keys := map[string]any{
		"KeyTypeName":   KeyTypeName,
		"KeyIdentifier": KeyIdentifier,
		"KeyAlias":      KeyAlias,
		"KeyFieldCount": KeyFieldCount,
		"KeyTypeCount":  KeyTypeCount,
		"KeyDuration":   KeyDuration,
		"KeyError":      KeyError,
	}
	for name, k := range keys {
		assert.NotNil(t, k, name)
	}
}
