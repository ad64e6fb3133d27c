// Package scalar coerces values of the built-in GraphQL scalars. Input
// coercion is strict and used for variables; output serialization is lenient
// and used when completing leaf values.
package scalar

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/spf13/cast"
)

const (
	Int     = "Int"
	Float   = "Float"
	String  = "String"
	Boolean = "Boolean"
	ID      = "ID"
)

// IsBuiltin reports whether name is one of the five specified scalars.
func IsBuiltin(name string) bool {
	switch name {
	case Int, Float, String, Boolean, ID:
		return true
	}
	return false
}

// CoerceInput coerces an externally supplied value (a decoded JSON or YAML
// variable) to the named scalar. Custom scalars and enums pass through.
func CoerceInput(name string, v any) (any, error) {
	if n, ok := v.(json.Number); ok {
		// integer IDs keep their text at any size
		if name == ID && isIntegerText(n.String()) {
			return n.String(), nil
		}
		v = numberValue(n)
	}
	switch name {
	case Int:
		if !isNumber(v) {
			return nil, fmt.Errorf("cannot coerce %v (%T) to Int", v, v)
		}
		f, err := cast.ToFloat64E(v)
		if err != nil || f != math.Trunc(f) {
			return nil, fmt.Errorf("cannot coerce %v (%T) to Int", v, v)
		}
		if f > math.MaxInt32 || f < math.MinInt32 {
			return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %v", v)
		}
		return int(f), nil
	case Float:
		if !isNumber(v) {
			return nil, fmt.Errorf("cannot coerce %v (%T) to Float", v, v)
		}
		return cast.ToFloat64E(v)
	case String:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("cannot coerce %v (%T) to String", v, v)
		}
		return s, nil
	case Boolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("cannot coerce %v (%T) to Boolean", v, v)
		}
		return b, nil
	case ID:
		switch x := v.(type) {
		case string:
			return x, nil
		case float32, float64:
			f := cast.ToFloat64(x)
			if f == math.Trunc(f) && !math.IsInf(f, 0) {
				return strconv.FormatFloat(f, 'f', -1, 64), nil
			}
		default:
			if isNumber(v) {
				return cast.ToStringE(v)
			}
		}
		return nil, fmt.Errorf("cannot coerce %v (%T) to ID", v, v)
	default:
		return v, nil
	}
}

// Serialize converts a resolved leaf to its JSON-safe output form. Values of
// custom scalars and enums are returned unchanged.
func Serialize(name string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch name {
	case Int:
		i, err := serializeInt(v)
		if err != nil {
			return nil, fmt.Errorf("Int cannot represent value: %v", v)
		}
		if i > math.MaxInt32 || i < math.MinInt32 {
			return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %v", v)
		}
		return int(i), nil
	case Float:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, fmt.Errorf("Float cannot represent value: %v", v)
		}
		return f, nil
	case String, ID:
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("%s cannot represent value: %v", name, v)
		}
		return s, nil
	case Boolean:
		b, err := cast.ToBoolE(v)
		if err != nil {
			return nil, fmt.Errorf("Boolean cannot represent value: %v", v)
		}
		return b, nil
	default:
		return v, nil
	}
}

// serializeInt is lenient about the Go type but never drops a fraction or
// reads a string in a base other than 10.
func serializeInt(v any) (int64, error) {
	switch x := v.(type) {
	case string:
		return strconv.ParseInt(x, 10, 32)
	case json.Number:
		return strconv.ParseInt(x.String(), 10, 32)
	case float32, float64:
		f := cast.ToFloat64(x)
		if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
			return 0, fmt.Errorf("not an integer: %v", v)
		}
		return int64(f), nil
	case uint, uint8, uint16, uint32, uint64, uintptr:
		u, err := cast.ToUint64E(x)
		if err != nil || u > math.MaxInt32 {
			return 0, fmt.Errorf("not a 32-bit integer: %v", v)
		}
		return int64(u), nil
	}
	return cast.ToInt64E(v)
}

func isIntegerText(s string) bool {
	_, ok := new(big.Int).SetString(s, 10)
	return ok
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

func numberValue(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
