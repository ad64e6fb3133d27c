package value

import (
	"encoding/json"
	"iter"

	"github.com/dolmen-go/jsonmap"
)

// Object is a string-keyed map that remembers insertion order. Marshalling
// emits keys in that order.
type Object struct {
	m jsonmap.Ordered
}

func NewObject() *Object {
	return &Object{m: jsonmap.Ordered{
		Data:  make(map[string]interface{}),
		Order: make([]string, 0, 4),
	}}
}

// Add inserts key or overwrites its value. An overwritten key keeps its
// original position.
func (o *Object) Add(key string, v Value) {
	if _, ok := o.m.Data[key]; !ok {
		o.m.Order = append(o.m.Order, key)
	}
	o.m.Data[key] = v
}

func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	v, ok := o.m.Data[key]
	if !ok {
		return Value{}, false
	}
	return v.(Value), true
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.m.Order)
}

func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.m.Order...)
}

// All iterates entries in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if o == nil {
			return
		}
		for _, k := range o.m.Order {
			if !yield(k, o.m.Data[k].(Value)) {
				return
			}
		}
	}
}

func (o *Object) Clone() *Object {
	if o == nil {
		return nil
	}
	c := NewObject()
	for k, v := range o.All() {
		c.Add(k, v.Clone())
	}
	return c
}

func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	keys, otherKeys := o.Keys(), other.Keys()
	for i, k := range keys {
		if otherKeys[i] != k {
			return false
		}
		a, _ := o.Get(k)
		b, _ := other.Get(k)
		if !a.Equal(b) {
			return false
		}
	}
	return true
}

func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	return json.Marshal(&o.m)
}
