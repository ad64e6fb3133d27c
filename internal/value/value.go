// Package value holds the result tree produced by execution: a tagged union of
// null, scalar, list and insertion-ordered object.
package value

import (
	"encoding/json"
	"reflect"
)

// Kind discriminates the variants of Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindScalar
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Value is one node of a result tree. The zero Value is Null.
type Value struct {
	kind   Kind
	scalar any
	list   []Value
	object *Object
}

// Null returns the null value.
func Null() Value { return Value{} }

// Scalar wraps a JSON-safe leaf. A nil leaf is Null.
func Scalar(v any) Value {
	if v == nil {
		return Value{}
	}
	return Value{kind: KindScalar, scalar: v}
}

func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// FromObject wraps o; a nil object is Null.
func FromObject(o *Object) Value {
	if o == nil {
		return Value{}
	}
	return Value{kind: KindObject, object: o}
}

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsNull() bool  { return v.kind == KindNull }
func (v Value) AsScalar() any { return v.scalar }

// AsList returns the items of a list value, or nil.
func (v Value) AsList() []Value { return v.list }

// AsObject returns the object of an object value, or nil.
func (v Value) AsObject() *Object { return v.object }

// Clone returns a deep copy. Scalars are shared.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		items := make([]Value, len(v.list))
		for i, item := range v.list {
			items[i] = item.Clone()
		}
		return Value{kind: KindList, list: items}
	case KindObject:
		return Value{kind: KindObject, object: v.object.Clone()}
	default:
		return v
	}
}

// Equal reports structural equality. Object comparison is order sensitive.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindScalar:
		return reflect.DeepEqual(v.scalar, o.scalar)
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	default:
		return v.object.Equal(o.object)
	}
}

// Interface converts the tree to plain Go values: nil, the scalar, []any or
// map[string]any. Key order is lost for objects.
func (v Value) Interface() any {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, v.object.Len())
		for k, item := range v.object.All() {
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindScalar:
		return json.Marshal(v.scalar)
	case KindList:
		return json.Marshal(v.list)
	case KindObject:
		return v.object.MarshalJSON()
	default:
		return []byte("null"), nil
	}
}
