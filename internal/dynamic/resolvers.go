package dynamic

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"

	executor "github.com/hanpama/graphresolve/internal/executor"
	scalar "github.com/hanpama/graphresolve/internal/scalar"
	schema "github.com/hanpama/graphresolve/internal/schema"
)

// FieldFunc computes one field of an object.
type FieldFunc func(ctx context.Context, source any, args executor.Arguments) (any, error)

// ScalarFunc serializes a custom scalar.
type ScalarFunc func(value any) (any, error)

// TypeNamer lets source values name their own object type.
type TypeNamer interface {
	GraphQLTypeName() string
}

const typenameKey = "__typename"

// Resolvers is a Runtime driven by per-field functions. Fields without a
// function are projected from the source: map keys, or struct fields matched
// by `graphql` tag or case-insensitive name.
type Resolvers struct {
	schema  *schema.Schema
	fields  map[string]FieldFunc
	scalars map[string]ScalarFunc
}

func NewResolvers(sch *schema.Schema) *Resolvers {
	return &Resolvers{
		schema:  sch,
		fields:  make(map[string]FieldFunc),
		scalars: make(map[string]ScalarFunc),
	}
}

// Field registers fn for typeName.fieldName.
func (r *Resolvers) Field(typeName, fieldName string, fn FieldFunc) *Resolvers {
	r.fields[typeName+"."+fieldName] = fn
	return r
}

// Scalar registers the serializer of a custom scalar.
func (r *Resolvers) Scalar(name string, fn ScalarFunc) *Resolvers {
	r.scalars[name] = fn
	return r
}

func (r *Resolvers) ResolveSync(ctx context.Context, objectType, field string, source any, args executor.Arguments) (any, error) {
	if fn, ok := r.fields[objectType+"."+field]; ok {
		return fn(ctx, source, args)
	}
	if v, ok := project(source, field); ok {
		return v, nil
	}
	return nil, executor.UnknownField(objectType, field)
}

func (r *Resolvers) ResolveType(_ context.Context, abstractType string, v any) (string, error) {
	if n, ok := v.(TypeNamer); ok {
		return n.GraphQLTypeName(), nil
	}
	if m, ok := v.(map[string]any); ok {
		if name, ok := m[typenameKey].(string); ok {
			return name, nil
		}
		return "", fmt.Errorf("value of %s has no %s", abstractType, typenameKey)
	}
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil {
		if def := r.schema.ConcreteTypeByName(t.Name()); def != nil && r.schema.IsPossibleType(abstractType, def.Name) {
			return def.Name, nil
		}
	}
	return "", fmt.Errorf("cannot determine the %s type of %T", abstractType, v)
}

func (r *Resolvers) SerializeLeafValue(_ context.Context, typeName string, v any) (any, error) {
	if scalar.IsBuiltin(typeName) {
		return scalar.Serialize(typeName, v)
	}
	if fn, ok := r.scalars[typeName]; ok {
		return fn(v)
	}
	def := r.schema.ConcreteTypeByName(typeName)
	if def == nil || def.Kind != schema.TypeKindEnum {
		return v, nil
	}
	name, err := cast.ToStringE(v)
	if err != nil {
		return nil, fmt.Errorf("enum %s: %w", typeName, err)
	}
	for _, ev := range def.EnumValues {
		if ev.Name == name {
			return name, nil
		}
	}
	return nil, fmt.Errorf("value %q does not exist in enum %s", name, typeName)
}

func project(source any, field string) (any, bool) {
	if m, ok := source.(map[string]any); ok {
		v, ok := m[field]
		if !ok {
			// absent keys read as null; only unknown sources are unsupported
			return nil, true
		}
		return v, true
	}
	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(sf.Tag.Get("graphql"), ",")
		if tag == "-" {
			continue
		}
		if tag == field || (tag == "" && strings.EqualFold(sf.Name, field)) {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}
