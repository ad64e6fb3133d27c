package executor

import (
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"

	language "github.com/hanpama/graphresolve/internal/language"
	schema "github.com/hanpama/graphresolve/internal/schema"
)

// ArgumentValue is one supplied argument, already resolved against the
// operation's variables.
type ArgumentValue struct {
	Name  string
	Value any
}

// Arguments is the ordered set of argument values handed to a field
// resolver. Values are plain Go input values: nil, bool, int, float64,
// string, []any or map[string]any.
type Arguments struct {
	keys   []string
	values map[string]any
	// false when the field declares no arguments and none were supplied
	present bool
}

// NewArguments merges the supplied values with the declared defaults. A nil
// supplied slice means the selection carried no arguments. Every declared
// argument whose value is missing or null receives a copy of its default.
func NewArguments(supplied []ArgumentValue, defs []*schema.InputValue) Arguments {
	var args Arguments
	if supplied != nil || len(defs) > 0 {
		args.present = true
		args.values = make(map[string]any, len(supplied)+len(defs))
	}
	for _, a := range supplied {
		args.set(a.Name, a.Value)
	}
	if !args.present {
		return args
	}
	for _, def := range defs {
		if def.DefaultValue == nil {
			continue
		}
		if v, ok := args.values[def.Name]; !ok || v == nil {
			args.set(def.Name, cloneInput(def.DefaultValue))
		}
	}
	return args
}

// argumentsFromAST resolves query literals and variables, then applies
// defaults.
func argumentsFromAST(list language.ArgumentList, variables map[string]any, defs []*schema.InputValue) Arguments {
	var supplied []ArgumentValue
	if list != nil {
		supplied = make([]ArgumentValue, 0, len(list))
		for _, a := range list {
			supplied = append(supplied, ArgumentValue{Name: a.Name, Value: language.ValueFromAST(a.Value, variables)})
		}
	}
	return NewArguments(supplied, defs)
}

func (a *Arguments) set(name string, v any) {
	if _, ok := a.values[name]; !ok {
		a.keys = append(a.keys, name)
	}
	a.values[name] = v
}

// Get returns the raw value of name. A present null yields (nil, true).
func (a Arguments) Get(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

// All iterates the arguments in order. The boolean is false when the field
// takes no arguments at all, which differs from an empty set.
func (a Arguments) All() (iter.Seq2[string, any], bool) {
	if !a.present {
		return nil, false
	}
	return func(yield func(string, any) bool) {
		for _, k := range a.keys {
			if !yield(k, a.values[k]) {
				return
			}
		}
	}, true
}

// Len returns the number of arguments.
func (a Arguments) Len() int { return len(a.keys) }

// Map returns a copy of the arguments as a plain map.
func (a Arguments) Map() map[string]any {
	out := make(map[string]any, len(a.values))
	maps.Copy(out, a.values)
	return out
}

// ArgumentAs converts argument name to T. It reports false when the argument
// is absent, null, or cannot be converted; the cases are not distinguished.
func ArgumentAs[T any](a Arguments, name string) (T, bool) {
	var out T
	raw, ok := a.values[name]
	if !ok || raw == nil {
		return out, false
	}
	if v, ok := raw.(T); ok {
		return v, true
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &out,
		TagName:     "graphql",
		ErrorUnused: true,
		DecodeHook:  exactNumber,
	})
	if err != nil {
		return out, false
	}
	if err := dec.Decode(raw); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

// exactNumber rejects numeric conversions that would truncate a fraction or
// overflow the target type. mapstructure otherwise converts them silently.
func exactNumber(from, to reflect.Value) (any, error) {
	if !from.IsValid() {
		return nil, nil
	}
	in := from.Interface()
	if n, ok := in.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			from = reflect.ValueOf(i)
		} else if f, err := n.Float64(); err == nil {
			from = reflect.ValueOf(f)
		}
	}
	lossy := false
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch {
		case from.CanInt():
			lossy = to.OverflowInt(from.Int())
		case from.CanUint():
			lossy = from.Uint() > math.MaxInt64 || to.OverflowInt(int64(from.Uint()))
		case from.CanFloat():
			f := from.Float()
			lossy = f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 || to.OverflowInt(int64(f))
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		switch {
		case from.CanInt():
			lossy = from.Int() < 0 || to.OverflowUint(uint64(from.Int()))
		case from.CanUint():
			lossy = to.OverflowUint(from.Uint())
		case from.CanFloat():
			f := from.Float()
			lossy = f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 || to.OverflowUint(uint64(f))
		}
	case reflect.Float32:
		if from.CanFloat() {
			lossy = to.OverflowFloat(from.Float())
		}
	}
	if lossy {
		return nil, fmt.Errorf("%v cannot be represented as %s", in, to.Type())
	}
	return in, nil
}

func cloneInput(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneInput(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneInput(item)
		}
		return out
	default:
		return v
	}
}
