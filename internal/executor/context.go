package executor

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	eventbus "github.com/hanpama/graphresolve/internal/eventbus"
	events "github.com/hanpama/graphresolve/internal/events"
	language "github.com/hanpama/graphresolve/internal/language"
	logging "github.com/hanpama/graphresolve/internal/logging"
	schema "github.com/hanpama/graphresolve/internal/schema"
	value "github.com/hanpama/graphresolve/internal/value"
)

// Registry is the read-only type metadata consulted while walking.
type Registry interface {
	ConcreteTypeByName(name string) *schema.Type
	IsPossibleType(abstract, concrete string) bool
}

// executionState is shared by every context derived for one execution.
type executionState struct {
	ctx        context.Context
	registry   Registry
	fragments  language.FragmentDefinitionList
	variables  map[string]any
	appContext any
	logger     *logging.Logger
	opts       options

	mu     sync.Mutex
	errors gqlerror.List
}

// ExecutionContext is the per-position view of an execution handed to
// resolvers. Derivation never mutates the parent; only the error sink is
// shared.
type ExecutionContext struct {
	state         *executionState
	path          ast.Path
	fieldName     string
	fieldType     *schema.TypeRef
	typeCondition string
	selectionSet  language.SelectionSet
	position      *ast.Position
	// pending holds the errors of a concurrently resolved list item until
	// the list decides whether the item is kept; nil records directly.
	pending *pendingErrors
}

type pendingError struct {
	gerr *gqlerror.Error
	err  error
}

type pendingErrors struct {
	mu      sync.Mutex
	entries []pendingError
}

func (p *pendingErrors) add(gerr *gqlerror.Error, err error) {
	p.mu.Lock()
	p.entries = append(p.entries, pendingError{gerr: gerr, err: err})
	p.mu.Unlock()
}

// commitTo records the buffered errors through ec in arrival order.
func (p *pendingErrors) commitTo(ec *ExecutionContext) {
	p.mu.Lock()
	entries := p.entries
	p.entries = nil
	p.mu.Unlock()
	for _, e := range entries {
		ec.record(e.gerr, e.err)
	}
}

func newRootContext(state *executionState, rootType string, selectionSet language.SelectionSet, pos *ast.Position) *ExecutionContext {
	return &ExecutionContext{
		state:         state,
		fieldType:     schema.NonNullType(schema.NamedType(rootType)),
		typeCondition: rootType,
		selectionSet:  selectionSet,
		position:      pos,
	}
}

// FieldSubContext narrows to one field of the current object.
func (ec *ExecutionContext) FieldSubContext(responseName, fieldName string, fieldType *schema.TypeRef, pos *ast.Position, selectionSet language.SelectionSet) *ExecutionContext {
	return &ExecutionContext{
		state:        ec.state,
		path:         appendPath(ec.path, ast.PathName(responseName)),
		fieldName:    fieldName,
		fieldType:    fieldType,
		selectionSet: selectionSet,
		position:     pos,
		pending:      ec.pending,
	}
}

// TypeSubContext narrows to a fragment. The path and field are unchanged.
func (ec *ExecutionContext) TypeSubContext(typeCondition string, selectionSet language.SelectionSet) *ExecutionContext {
	sub := *ec
	sub.typeCondition = typeCondition
	sub.selectionSet = selectionSet
	return &sub
}

// IndexSubContext narrows to item i of the current list field.
func (ec *ExecutionContext) IndexSubContext(i int) *ExecutionContext {
	sub := *ec
	sub.path = appendPath(ec.path, ast.PathIndex(i))
	if elem := ec.fieldType.ListElem(); elem != nil {
		sub.fieldType = elem
	}
	return &sub
}

// Resolve resolves v against the current selection set.
func (ec *ExecutionContext) Resolve(info any, v Resolvable) (value.Value, error) {
	return Resolve(v, info, ec.selectionSet, ec)
}

// ResolveIntoValue resolves v and records a failure at the current position
// instead of returning it.
func (ec *ExecutionContext) ResolveIntoValue(info any, v Resolvable) value.Value {
	out, err := ec.Resolve(info, v)
	if err != nil {
		if isUnsupported(err) {
			violate(err, "cannot resolve value at %s", ec.path.String())
		}
		ec.PushError(err)
		return value.Null()
	}
	return out
}

// PushError records err at the current position.
func (ec *ExecutionContext) PushError(err error) { ec.PushErrorAt(err, ec.position) }

// PushErrorAt records err at pos with the current response path.
func (ec *ExecutionContext) PushErrorAt(err error, pos *ast.Position) {
	ec.record(toGraphQLError(err, ec.Path(), pos), err)
}

func (ec *ExecutionContext) record(gerr *gqlerror.Error, err error) {
	if ec.pending != nil {
		ec.pending.add(gerr, err)
		return
	}
	st := ec.state
	st.mu.Lock()
	st.errors = append(st.errors, gerr)
	st.mu.Unlock()

	st.logger.Debug("field error", "path", gerr.Path.String(), "error", gerr.Message)
	eventbus.Publish(st.ctx, events.FieldError{Path: gerr.Path.String(), Message: gerr.Message, Err: err})
}

func (ec *ExecutionContext) Context() context.Context { return ec.state.ctx }

// AppContext returns the application value passed in the Request.
func (ec *ExecutionContext) AppContext() any { return ec.state.appContext }

func (ec *ExecutionContext) Variables() map[string]any { return ec.state.variables }

func (ec *ExecutionContext) Logger() *logging.Logger { return ec.state.logger }

func (ec *ExecutionContext) Registry() Registry { return ec.state.registry }

// FragmentByName returns the named fragment definition, or nil.
func (ec *ExecutionContext) FragmentByName(name string) *language.FragmentDefinition {
	return ec.state.fragments.ForName(name)
}

func (ec *ExecutionContext) SelectionSet() language.SelectionSet { return ec.selectionSet }

// FieldName is the schema name of the field being resolved, empty at the root.
func (ec *ExecutionContext) FieldName() string { return ec.fieldName }

// FieldType is the declared type of the current field or list item.
func (ec *ExecutionContext) FieldType() *schema.TypeRef { return ec.fieldType }

// TypeCondition is the innermost fragment type condition, if any.
func (ec *ExecutionContext) TypeCondition() string { return ec.typeCondition }

func (ec *ExecutionContext) Position() *ast.Position { return ec.position }

// Path returns a copy of the response path.
func (ec *ExecutionContext) Path() ast.Path { return slices.Clone(ec.path) }

func (st *executionState) snapshotErrors() gqlerror.List {
	st.mu.Lock()
	defer st.mu.Unlock()
	return slices.Clone(st.errors)
}

func appendPath(p ast.Path, elem ast.PathElement) ast.Path {
	out := make(ast.Path, len(p)+1)
	copy(out, p)
	out[len(p)] = elem
	return out
}

// extensionsProvider lets application errors attach GraphQL extensions.
type extensionsProvider interface {
	Extensions() map[string]any
}

func toGraphQLError(err error, path ast.Path, pos *ast.Position) *gqlerror.Error {
	var gerr *gqlerror.Error
	if errors.As(err, &gerr) {
		out := *gerr
		if out.Path == nil {
			out.Path = path
		}
		if len(out.Locations) == 0 && pos != nil {
			out.Locations = []gqlerror.Location{{Line: pos.Line, Column: pos.Column}}
		}
		return &out
	}
	out := &gqlerror.Error{Err: err, Message: err.Error(), Path: path}
	if pos != nil {
		out.Locations = []gqlerror.Location{{Line: pos.Line, Column: pos.Column}}
	}
	var ep extensionsProvider
	if errors.As(err, &ep) {
		out.Extensions = ep.Extensions()
	}
	return out
}
