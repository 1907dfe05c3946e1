package recast

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for recast events.
var (
	SignalClassCached       = capitan.NewSignal("recast.class.cached", "Type descriptor built and cached")
	SignalAliasRegistered   = capitan.NewSignal("recast.alias.registered", "Alias bound to a type")
	SignalTransformerAdded  = capitan.NewSignal("recast.transformer.added", "Custom transformer registered")
	SignalEncodeComplete    = capitan.NewSignal("recast.encode.complete", "ToMap finished")
	SignalDecodeComplete    = capitan.NewSignal("recast.decode.complete", "FromMap finished")
	SignalRegistrationError = capitan.NewSignal("recast.registration.error", "Registration rejected")
)

// Keys for typed event data.
var (
	KeyTypeName   = capitan.NewStringKey("type_name")
	KeyIdentifier = capitan.NewStringKey("identifier")
	KeyAlias      = capitan.NewStringKey("alias")
	KeyFieldCount = capitan.NewIntKey("field_count")
	KeyTypeCount  = capitan.NewIntKey("type_count")
	KeyDuration   = capitan.NewDurationKey("duration")
	KeyError      = capitan.NewErrorKey("error")
)

// emitClassCached emits an event when a type descriptor is first built.
func emitClassCached(ctx context.Context, typeName string, fields int) {
	capitan.Emit(ctx, SignalClassCached,
		KeyTypeName.Field(typeName),
		KeyFieldCount.Field(fields),
	)
}

// emitAliasRegistered emits an event when an alias is bound.
func emitAliasRegistered(ctx context.Context, alias, typeName string) {
	capitan.Emit(ctx, SignalAliasRegistered,
		KeyAlias.Field(alias),
		KeyTypeName.Field(typeName),
	)
}

// emitTransformerAdded emits an event when a custom transformer is registered.
func emitTransformerAdded(ctx context.Context, types int) {
	capitan.Emit(ctx, SignalTransformerAdded,
		KeyTypeCount.Field(types),
	)
}

// emitRegistrationError emits an event when a registration call is rejected.
func emitRegistrationError(ctx context.Context, err error) {
	capitan.Error(ctx, SignalRegistrationError,
		KeyError.Field(err),
	)
}

// emitEncodeComplete emits an event when ToMap finishes.
func emitEncodeComplete(ctx context.Context, typeName, identifier string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyIdentifier.Field(identifier),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalEncodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalEncodeComplete, fields...)
	}
}

// emitDecodeComplete emits an event when FromMap finishes.
func emitDecodeComplete(ctx context.Context, typeName, identifier string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyIdentifier.Field(identifier),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalDecodeComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalDecodeComplete, fields...)
	}
}
