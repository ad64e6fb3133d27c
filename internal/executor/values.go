package executor

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	language "github.com/hanpama/graphresolve/internal/language"
	scalar "github.com/hanpama/graphresolve/internal/scalar"
	schema "github.com/hanpama/graphresolve/internal/schema"
)

// coerceVariableValues coerces the supplied variables against the
// operation's variable definitions, applying defaults.
func coerceVariableValues(
	sch *schema.Schema,
	operation *language.OperationDefinition,
	variableValues map[string]any,
) (map[string]any, error) {
	if variableValues == nil {
		variableValues = make(map[string]any)
	}
	coerced := make(map[string]any, len(operation.VariableDefinitions))
	for _, varDef := range operation.VariableDefinitions {
		name := varDef.Variable
		t := varDef.Type
		val, ok := variableValues[name]
		if !ok {
			if v2, ok2 := variableValues[strings.TrimPrefix(name, "$")]; ok2 {
				val = v2
				ok = true
			}
		}
		if !ok {
			if varDef.DefaultValue != nil {
				val = language.ValueFromAST(varDef.DefaultValue, nil)
			} else if t.NonNull {
				return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, t.String())
			} else {
				continue
			}
		}
		if val == nil && t.NonNull {
			return nil, fmt.Errorf("variable $%s of type %s cannot be null", name, t.String())
		}
		cv, err := coerceValue(sch, val, typeRefFromAST(t))
		if err != nil {
			return nil, fmt.Errorf("variable $%s of type %s cannot be coerced: %w", name, t.String(), err)
		}
		coerced[name] = cv
	}
	return coerced, nil
}

// coerceValue coerces an external input value to the given input type.
func coerceValue(sch *schema.Schema, value any, targetType *schema.TypeRef) (any, error) {
	if targetType.IsNonNull() {
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type %s", targetType)
		}
		return coerceValue(sch, value, targetType.Unwrap())
	}
	if value == nil {
		return nil, nil
	}
	if targetType.Kind == schema.TypeRefKindList {
		return coerceListValue(sch, value, targetType)
	}

	name := targetType.GetNamedType()
	if scalar.IsBuiltin(name) {
		return scalar.CoerceInput(name, value)
	}
	t := sch.ConcreteTypeByName(name)
	if t == nil {
		return nil, fmt.Errorf("unknown input type %s", name)
	}
	switch t.Kind {
	case schema.TypeKindEnum:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("cannot coerce %v (%T) to enum %s", value, value, name)
		}
		for _, ev := range t.EnumValues {
			if ev.Name == s {
				return s, nil
			}
		}
		return nil, fmt.Errorf("value %q does not exist in enum %s", s, name)
	case schema.TypeKindInputObject:
		return coerceInputObject(sch, value, t)
	case schema.TypeKindScalar:
		return value, nil
	default:
		return nil, fmt.Errorf("type %s is not an input type", name)
	}
}

// coerceListValue coerces each item; a single value becomes a list of one.
func coerceListValue(sch *schema.Schema, value any, listType *schema.TypeRef) (any, error) {
	inner := listType.Unwrap()
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		item, err := coerceValue(sch, value, inner)
		if err != nil {
			return nil, err
		}
		return []any{item}, nil
	}
	out := make([]any, rv.Len())
	for i := range rv.Len() {
		item, err := coerceValue(sch, rv.Index(i).Interface(), inner)
		if err != nil {
			return nil, fmt.Errorf("at index %d: %w", i, err)
		}
		out[i] = item
	}
	return out, nil
}

func coerceInputObject(sch *schema.Schema, value any, t *schema.Type) (any, error) {
	in, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("cannot coerce %v (%T) to input object %s", value, value, t.Name)
	}
	known := make([]string, 0, len(t.InputFields))
	out := make(map[string]any, len(t.InputFields))
	for _, f := range t.InputFields {
		known = append(known, f.Name)
		raw, present := in[f.Name]
		if !present {
			if f.DefaultValue != nil {
				out[f.Name] = cloneInput(f.DefaultValue)
			} else if f.Type.IsNonNull() {
				return nil, fmt.Errorf("required field '%s' of input %s was not provided", f.Name, t.Name)
			}
			continue
		}
		cv, err := coerceValue(sch, raw, f.Type)
		if err != nil {
			return nil, fmt.Errorf("field '%s' of input %s: %w", f.Name, t.Name, err)
		}
		out[f.Name] = cv
	}
	for k := range in {
		if !slices.Contains(known, k) {
			return nil, fmt.Errorf("field '%s' is not defined by input %s", k, t.Name)
		}
	}
	if t.OneOf {
		set := 0
		for _, v := range out {
			if v != nil {
				set++
			}
		}
		if set != 1 || len(out) != 1 {
			return nil, fmt.Errorf("exactly one field of oneOf input %s must be provided and non-null", t.Name)
		}
	}
	return out, nil
}

func typeRefFromAST(t *language.Type) *schema.TypeRef {
	if t == nil {
		return nil
	}
	var ref *schema.TypeRef
	if t.Elem != nil {
		ref = schema.ListType(typeRefFromAST(t.Elem))
	} else {
		ref = schema.NamedType(t.NamedType)
	}
	if t.NonNull {
		return schema.NonNullType(ref)
	}
	return ref
}
