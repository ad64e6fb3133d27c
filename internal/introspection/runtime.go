package introspection

import (
	"context"
	"sort"
	"strings"

	"github.com/spf13/cast"

	dynamic "github.com/hanpama/graphresolve/internal/dynamic"
	executor "github.com/hanpama/graphresolve/internal/executor"
	schema "github.com/hanpama/graphresolve/internal/schema"
)

// IntrospectionWrapper holds both the runtime and extended schema
type IntrospectionWrapper struct {
	Runtime dynamic.Runtime
	Schema  *schema.Schema
}

// Wrap returns a runtime that answers GraphQL introspection fields.
// It extends the schema with introspection types and fields.
func Wrap(base dynamic.Runtime, sch *schema.Schema) *IntrospectionWrapper {
	extended := extendSchemaWithIntrospection(sch)
	return &IntrospectionWrapper{
		Runtime: &runtime{base: base, queryType: extended.QueryType, described: sch},
		Schema:  extended,
	}
}

// Root returns the query root value for an execution against w.Schema.
func (w *IntrospectionWrapper) Root(source any) *dynamic.Object {
	return dynamic.NewRoot(w.Runtime, w.Schema, w.Schema.QueryType, source)
}

type runtime struct {
	base      dynamic.Runtime
	queryType string
	// described is the schema introspection queries report on
	described *schema.Schema
}

// typeNode is the source of a __Type value. Named types carry their
// definition; LIST and NON_NULL wrappers only their reference.
type typeNode struct {
	ref *schema.TypeRef
	def *schema.Type
}

type resolverTable[T any] map[string]func(r *runtime, src T, args executor.Arguments) any

func lookup[T any](table resolverTable[T], r *runtime, src T, field string, args executor.Arguments) (any, bool) {
	fn, ok := table[field]
	if !ok {
		return nil, false
	}
	return fn(r, src, args), true
}

func (r *runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args executor.Arguments) (any, error) {
	var (
		v  any
		ok bool
	)
	switch src := source.(type) {
	case *schema.Schema:
		v, ok = lookup(schemaFields, r, src, field, args)
	case typeNode:
		v, ok = lookup(typeFields, r, src, field, args)
	case *schema.Field:
		v, ok = lookup(fieldFields, r, src, field, args)
	case *schema.InputValue:
		v, ok = lookup(inputValueFields, r, src, field, args)
	case *schema.EnumValue:
		v, ok = lookup(enumValueFields, r, src, field, args)
	case *schema.Directive:
		v, ok = lookup(directiveFields, r, src, field, args)
	}
	if ok {
		return v, nil
	}

	if objectType == r.queryType {
		switch field {
		case "__schema":
			return r.described, nil
		case "__type":
			name, _ := executor.ArgumentAs[string](args, "name")
			return r.named(name), nil
		}
	}
	return r.base.ResolveSync(ctx, objectType, field, source, args)
}

func (r *runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	return r.base.ResolveType(ctx, abstractType, value)
}

func (r *runtime) SerializeLeafValue(ctx context.Context, typ string, value any) (any, error) {
	if strings.HasPrefix(typ, "__") {
		return cast.ToStringE(value)
	}
	return r.base.SerializeLeafValue(ctx, typ, value)
}

// named returns the __Type source for name, or nil when it is unknown.
func (r *runtime) named(name string) any {
	def := r.described.Types[name]
	if def == nil {
		return nil
	}
	return typeNode{ref: schema.NamedType(name), def: def}
}

// ref returns the __Type source for a type reference.
func (r *runtime) ref(t *schema.TypeRef) any {
	if t == nil {
		return nil
	}
	if t.Kind == schema.TypeRefKindNamed {
		return r.named(t.Named)
	}
	return typeNode{ref: t}
}

func (r *runtime) namedList(names []string) []any {
	out := make([]any, 0, len(names))
	for _, name := range names {
		if n := r.named(name); n != nil {
			out = append(out, n)
		}
	}
	return out
}

var schemaFields = resolverTable[*schema.Schema]{
	"description": func(_ *runtime, s *schema.Schema, _ executor.Arguments) any { return optional(s.Description) },
	"queryType":   func(r *runtime, s *schema.Schema, _ executor.Arguments) any { return r.named(s.QueryType) },
	"mutationType": func(r *runtime, s *schema.Schema, _ executor.Arguments) any {
		return r.named(s.MutationType)
	},
	"subscriptionType": func(r *runtime, s *schema.Schema, _ executor.Arguments) any {
		return r.named(s.SubscriptionType)
	},
	"types": func(r *runtime, s *schema.Schema, _ executor.Arguments) any {
		names := make([]string, 0, len(s.Types))
		for name := range s.Types {
			names = append(names, name)
		}
		sort.Strings(names)
		return r.namedList(names)
	},
	"directives": func(_ *runtime, s *schema.Schema, _ executor.Arguments) any {
		out := make([]*schema.Directive, 0, len(s.Directives))
		for _, d := range s.Directives {
			out = append(out, d)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out
	},
}

// Wrapper nodes answer only kind and ofType; every other __Type field is
// null for them.
var typeFields = resolverTable[typeNode]{
	"kind": func(_ *runtime, n typeNode, _ executor.Arguments) any {
		if n.def == nil {
			return string(n.ref.Kind)
		}
		return string(n.def.Kind)
	},
	"ofType": func(r *runtime, n typeNode, _ executor.Arguments) any {
		if n.def != nil {
			return nil
		}
		return r.ref(n.ref.OfType)
	},
	"name": onDef(func(_ *runtime, t *schema.Type, _ executor.Arguments) any { return t.Name }),
	"description": onDef(func(_ *runtime, t *schema.Type, _ executor.Arguments) any {
		return optional(t.Description)
	}),
	"specifiedByURL": onDef(func(_ *runtime, t *schema.Type, _ executor.Arguments) any {
		if t.SpecifiedByURL == nil {
			return nil
		}
		return *t.SpecifiedByURL
	}),
	"isOneOf": onDef(func(_ *runtime, t *schema.Type, _ executor.Arguments) any {
		if t.Kind != schema.TypeKindInputObject {
			return nil
		}
		return t.OneOf
	}),
	"fields": onDef(func(_ *runtime, t *schema.Type, args executor.Arguments) any {
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil
		}
		withDeprecated := boolArg(args, "includeDeprecated")
		out := []*schema.Field{}
		for _, f := range t.Fields {
			if strings.HasPrefix(f.Name, "__") || (f.IsDeprecated && !withDeprecated) {
				continue
			}
			out = append(out, f)
		}
		return out
	}),
	"interfaces": onDef(func(r *runtime, t *schema.Type, _ executor.Arguments) any {
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil
		}
		return r.namedList(t.Interfaces)
	}),
	"possibleTypes": onDef(func(r *runtime, t *schema.Type, _ executor.Arguments) any {
		if !t.Kind.IsAbstract() {
			return nil
		}
		return r.namedList(t.PossibleTypes)
	}),
	"enumValues": onDef(func(_ *runtime, t *schema.Type, args executor.Arguments) any {
		if t.Kind != schema.TypeKindEnum {
			return nil
		}
		withDeprecated := boolArg(args, "includeDeprecated")
		out := []*schema.EnumValue{}
		for _, ev := range t.EnumValues {
			if ev.IsDeprecated && !withDeprecated {
				continue
			}
			out = append(out, ev)
		}
		return out
	}),
	"inputFields": onDef(func(_ *runtime, t *schema.Type, args executor.Arguments) any {
		if t.Kind != schema.TypeKindInputObject {
			return nil
		}
		return inputValues(t.InputFields, args)
	}),
}

func onDef(fn func(*runtime, *schema.Type, executor.Arguments) any) func(*runtime, typeNode, executor.Arguments) any {
	return func(r *runtime, n typeNode, args executor.Arguments) any {
		if n.def == nil {
			return nil
		}
		return fn(r, n.def, args)
	}
}

var fieldFields = resolverTable[*schema.Field]{
	"name":         func(_ *runtime, f *schema.Field, _ executor.Arguments) any { return f.Name },
	"description":  func(_ *runtime, f *schema.Field, _ executor.Arguments) any { return optional(f.Description) },
	"args":         func(_ *runtime, f *schema.Field, args executor.Arguments) any { return inputValues(f.Arguments, args) },
	"type":         func(r *runtime, f *schema.Field, _ executor.Arguments) any { return r.ref(f.Type) },
	"isDeprecated": func(_ *runtime, f *schema.Field, _ executor.Arguments) any { return f.IsDeprecated },
	"deprecationReason": func(_ *runtime, f *schema.Field, _ executor.Arguments) any {
		return deprecationReason(f.IsDeprecated, f.DeprecationReason)
	},
}

var inputValueFields = resolverTable[*schema.InputValue]{
	"name":         func(_ *runtime, v *schema.InputValue, _ executor.Arguments) any { return v.Name },
	"description":  func(_ *runtime, v *schema.InputValue, _ executor.Arguments) any { return optional(v.Description) },
	"type":         func(r *runtime, v *schema.InputValue, _ executor.Arguments) any { return r.ref(v.Type) },
	"isDeprecated": func(_ *runtime, v *schema.InputValue, _ executor.Arguments) any { return v.IsDeprecated },
	"deprecationReason": func(_ *runtime, v *schema.InputValue, _ executor.Arguments) any {
		return deprecationReason(v.IsDeprecated, v.DeprecationReason)
	},
	"defaultValue": func(r *runtime, v *schema.InputValue, _ executor.Arguments) any {
		if v.DefaultValue == nil {
			return nil
		}
		return printLiteral(r.described, v.Type, v.DefaultValue)
	},
}

var enumValueFields = resolverTable[*schema.EnumValue]{
	"name":         func(_ *runtime, ev *schema.EnumValue, _ executor.Arguments) any { return ev.Name },
	"description":  func(_ *runtime, ev *schema.EnumValue, _ executor.Arguments) any { return optional(ev.Description) },
	"isDeprecated": func(_ *runtime, ev *schema.EnumValue, _ executor.Arguments) any { return ev.IsDeprecated },
	"deprecationReason": func(_ *runtime, ev *schema.EnumValue, _ executor.Arguments) any {
		return deprecationReason(ev.IsDeprecated, ev.DeprecationReason)
	},
}

var directiveFields = resolverTable[*schema.Directive]{
	"name":         func(_ *runtime, d *schema.Directive, _ executor.Arguments) any { return d.Name },
	"description":  func(_ *runtime, d *schema.Directive, _ executor.Arguments) any { return optional(d.Description) },
	"isRepeatable": func(_ *runtime, d *schema.Directive, _ executor.Arguments) any { return d.IsRepeatable },
	"args":         func(_ *runtime, d *schema.Directive, args executor.Arguments) any { return inputValues(d.Arguments, args) },
	"locations": func(_ *runtime, d *schema.Directive, _ executor.Arguments) any {
		locs := append([]string(nil), d.Locations...)
		sort.Strings(locs)
		return locs
	},
}

func inputValues(in []*schema.InputValue, args executor.Arguments) []*schema.InputValue {
	withDeprecated := boolArg(args, "includeDeprecated")
	out := []*schema.InputValue{}
	for _, v := range in {
		if v.IsDeprecated && !withDeprecated {
			continue
		}
		out = append(out, v)
	}
	return out
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deprecationReason(deprecated bool, reason string) any {
	if !deprecated {
		return nil
	}
	return reason
}

func boolArg(args executor.Arguments, name string) bool {
	b, _ := executor.ArgumentAs[bool](args, name)
	return b
}
