package executor

import (
	"errors"
	"reflect"

	language "github.com/hanpama/graphresolve/internal/language"
	value "github.com/hanpama/graphresolve/internal/value"
)

// Resolvable is any application value that can appear in a result tree.
// TypeName returns the GraphQL type name the value is exposed as; unnamed
// wrappers such as lists report false. It must be stable and side-effect free.
type Resolvable interface {
	TypeName(info any) (string, bool)
}

// FieldResolver resolves one field of an object or interface value. Field
// names the implementation does not know must yield UnknownField.
type FieldResolver interface {
	ResolveField(info any, fieldName string, args Arguments, ec *ExecutionContext) (value.Value, error)
}

// TypeResolver is implemented by abstract values (interfaces, unions) that
// can resolve a selection set as one of their concrete types.
type TypeResolver interface {
	ResolveIntoType(info any, typeName string, selectionSet language.SelectionSet, ec *ExecutionContext) (value.Value, error)
}

// ConcreteTyper names the runtime object type behind an abstract value.
type ConcreteTyper interface {
	ConcreteTypeName(appContext any, info any) string
}

// SelfResolver is implemented by leaves and wrappers that produce their own
// value instead of walking a selection set.
type SelfResolver interface {
	Resolve(info any, selectionSet language.SelectionSet, ec *ExecutionContext) (value.Value, error)
}

// Resolve produces the value of v for selectionSet. Values without their own
// Resolve walk the selection set; a non-null violation turns the whole
// object into Null.
func Resolve(v Resolvable, info any, selectionSet language.SelectionSet, ec *ExecutionContext) (value.Value, error) {
	if isNilResolvable(v) {
		return value.Null(), nil
	}
	if r, ok := v.(SelfResolver); ok {
		return r.Resolve(info, selectionSet, ec)
	}
	if selectionSet == nil {
		return value.Null(), ErrUnsupported
	}
	result := value.NewObject()
	if resolveSelectionSetInto(v, info, selectionSet, ec, result) == outcomeNull {
		return value.Null(), nil
	}
	return value.FromObject(result), nil
}

// ResolveIntoType resolves selectionSet as typeName. Without a TypeResolver
// this only succeeds when typeName is v's own type.
func ResolveIntoType(v Resolvable, info any, typeName string, selectionSet language.SelectionSet, ec *ExecutionContext) (value.Value, error) {
	if r, ok := v.(TypeResolver); ok {
		return r.ResolveIntoType(info, typeName, selectionSet, ec)
	}
	if name, ok := v.TypeName(info); ok && name == typeName {
		return Resolve(v, info, selectionSet, ec)
	}
	return value.Null(), ErrUnsupported
}

// ConcreteTypeName returns the runtime object type name of v.
func ConcreteTypeName(v Resolvable, appContext any, info any) (string, error) {
	if c, ok := v.(ConcreteTyper); ok {
		return c.ConcreteTypeName(appContext, info), nil
	}
	return "", ErrUnsupported
}

// concreteTypeOf falls back to the declared name for plain object values.
func concreteTypeOf(v Resolvable, info any, ec *ExecutionContext) string {
	name, err := ConcreteTypeName(v, ec.AppContext(), info)
	if err == nil {
		return name
	}
	if name, ok := v.TypeName(info); ok {
		return name
	}
	violate(err, "value of unnamed type has no concrete type")
	return ""
}

func resolveField(v Resolvable, info any, fieldName string, args Arguments, ec *ExecutionContext) (value.Value, error) {
	r, ok := v.(FieldResolver)
	if !ok {
		return value.Null(), ErrUnsupported
	}
	return r.ResolveField(info, fieldName, args, ec)
}

// isNilResolvable reports a nil interface or a typed nil reference.
func isNilResolvable(v Resolvable) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}

func isUnsupported(err error) bool { return errors.Is(err, ErrUnsupported) }
