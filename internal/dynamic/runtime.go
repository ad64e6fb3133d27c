package dynamic

import (
	"context"

	executor "github.com/hanpama/graphresolve/internal/executor"
)

// Runtime supplies raw field values for schema-driven objects.
type Runtime interface {
	// ResolveSync returns the raw value of field on an object of objectType.
	// Return (nil, nil) for a GraphQL null. A field the runtime does not
	// know must yield executor.UnknownField.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args executor.Arguments) (any, error)

	// ResolveType names the concrete object type of a value declared as the
	// interface or union abstractType.
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// SerializeLeafValue turns a raw scalar or enum value into a JSON-safe
	// Go value.
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}
