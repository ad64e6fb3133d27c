// Package executor resolves GraphQL selection sets against application values
// exposed through a small capability contract.
//
// # Overview
//
// Execution is a synchronous, depth-first walk. For every selection in a
// selection set the walker:
//   - skips it when @skip/@include exclude it,
//   - answers __typename from the value's concrete type,
//   - looks up the field in the Registry, materializes its Arguments
//     (query literals and variables, then schema defaults for missing or
//     null values) and calls the value's ResolveField,
//   - for fragments, checks the type condition against the value's concrete
//     type and merges the keys of the fragment's result object.
//
// Response keys are written in first-encountered order. A key written twice
// keeps its first position and takes the last value.
//
// # Resolver Contract
//
// Application values implement Resolvable and any of the optional
// capabilities:
//   - FieldResolver: one field of an object or interface.
//   - TypeResolver: resolve a selection set as one concrete type (abstract
//     values).
//   - ConcreteTyper: name the runtime object type (abstract values).
//   - SelfResolver: produce the whole value (leaves, lists, wrappers).
//
// The package functions Resolve, ResolveIntoType and ConcreteTypeName supply
// the defaults and return ErrUnsupported where a capability is missing.
//
// # Errors and Null Propagation
//
// A field error is recorded with its response path and source location and
// the field becomes null. When the field is non-null, the whole enclosing
// object becomes null instead; this repeats upward until a nullable position
// or the root is reached. No additional errors are recorded while
// propagating, and a non-null field that resolves to null without an error
// propagates silently.
//
// Mismatches between the registry and the resolvers (unknown fields, missing
// fragments or types, malformed @skip/@include) are contract violations.
// They abort the execution and Execute returns them as a *ContractViolation
// instead of a result.
//
// # Concurrency
//
// Only the error sink is shared between derived contexts. List items may be
// resolved concurrently with WithListConcurrency; a non-null item that
// resolves to null nulls only that list.
package executor
