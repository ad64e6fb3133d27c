package dynamic

import (
	"context"
	"fmt"
	"reflect"

	executor "github.com/hanpama/graphresolve/internal/executor"
	language "github.com/hanpama/graphresolve/internal/language"
	schema "github.com/hanpama/graphresolve/internal/schema"
	value "github.com/hanpama/graphresolve/internal/value"
)

// Object exposes a raw source value as a value of a schema type. Values
// declared as an interface or union carry the concrete type chosen by the
// runtime.
type Object struct {
	runtime  Runtime
	schema   *schema.Schema
	typeName string
	concrete string
	source   any
}

// NewRoot returns the root value for operations on the object type
// typeName.
func NewRoot(rt Runtime, sch *schema.Schema, typeName string, source any) *Object {
	return &Object{runtime: rt, schema: sch, typeName: typeName, concrete: typeName, source: source}
}

// Source returns the wrapped raw value.
func (o *Object) Source() any { return o.source }

func (o *Object) TypeName(any) (string, bool) { return o.typeName, true }

func (o *Object) ConcreteTypeName(any, any) string { return o.concrete }

func (o *Object) ResolveField(info any, fieldName string, args executor.Arguments, ec *executor.ExecutionContext) (value.Value, error) {
	raw, err := o.runtime.ResolveSync(ec.Context(), o.concrete, fieldName, o.source, args)
	if err != nil {
		return value.Null(), err
	}
	c := completion{runtime: o.runtime, schema: o.schema, typ: ec.FieldType(), raw: raw}
	return c.Resolve(info, ec.SelectionSet(), ec)
}

func (o *Object) ResolveIntoType(info any, typeName string, selectionSet language.SelectionSet, ec *executor.ExecutionContext) (value.Value, error) {
	if typeName != o.concrete {
		return value.Null(), executor.ErrUnsupported
	}
	as := *o
	as.typeName = o.concrete
	return executor.Resolve(&as, info, selectionSet, ec)
}

// completion is a raw runtime value that is completed against its declared
// type once it is resolved at its own position.
type completion struct {
	runtime Runtime
	schema  *schema.Schema
	typ     *schema.TypeRef
	raw     any
	// list items record their own error and become Null
	item bool
}

func (completion) TypeName(any) (string, bool) { return "", false }

func (c completion) Resolve(info any, selectionSet language.SelectionSet, ec *executor.ExecutionContext) (value.Value, error) {
	r, err := complete(ec.Context(), c.runtime, c.schema, c.typ, c.raw)
	if err != nil {
		if c.item {
			ec.PushError(err)
			return value.Null(), nil
		}
		return value.Null(), err
	}
	return executor.Resolve(r, info, selectionSet, ec)
}

func complete(ctx context.Context, rt Runtime, sch *schema.Schema, typ *schema.TypeRef, raw any) (executor.Resolvable, error) {
	if isNil(raw) {
		return nil, nil
	}
	if typ.IsNonNull() {
		typ = typ.OfType
	}
	if typ.IsList() {
		items, ok := listItems(raw)
		if !ok {
			return nil, fmt.Errorf("expected a list for %s, got %T", typ, raw)
		}
		elem := typ.ListElem()
		list := executor.List{Items: make([]executor.Resolvable, len(items))}
		for i, item := range items {
			list.Items[i] = completion{runtime: rt, schema: sch, typ: elem, raw: item, item: true}
		}
		return list, nil
	}

	name := typ.GetNamedType()
	def := sch.ConcreteTypeByName(name)
	if def == nil {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	switch {
	case def.Kind.IsLeaf():
		out, err := rt.SerializeLeafValue(ctx, name, raw)
		if err != nil {
			return nil, err
		}
		return executor.Leaf{Type: name, Value: out}, nil
	case def.Kind.IsAbstract():
		concrete, err := rt.ResolveType(ctx, name, raw)
		if err != nil {
			return nil, err
		}
		if !sch.IsPossibleType(name, concrete) {
			return nil, fmt.Errorf("%q is not a possible type of %q", concrete, name)
		}
		return &Object{runtime: rt, schema: sch, typeName: name, concrete: concrete, source: raw}, nil
	default:
		return &Object{runtime: rt, schema: sch, typeName: name, concrete: name, source: raw}, nil
	}
}

func isNil(v any) bool {
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

func listItems(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
