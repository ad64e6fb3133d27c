package executor

import (
	"fmt"

	language "github.com/hanpama/graphresolve/internal/language"
	value "github.com/hanpama/graphresolve/internal/value"
)

// outcome is the result of walking one selection set into an object.
type outcome uint8

const (
	// outcomeEmpty: every selection was excluded or contributed nothing.
	outcomeEmpty outcome = iota
	// outcomeMerged: at least one key was written.
	outcomeMerged
	// outcomeNull: a non-null field resolved to null; the enclosing object
	// must become Null.
	outcomeNull
)

const typenameField = "__typename"

// resolveSelectionSetInto walks selections against instance, writing response
// keys into result in first-encountered order.
func resolveSelectionSetInto(instance Resolvable, info any, selections language.SelectionSet, ec *ExecutionContext, result *value.Object) outcome {
	typeName, ok := instance.TypeName(info)
	if !ok {
		violate(nil, "resolving a selection set on an unnamed type")
	}
	metaType := ec.Registry().ConcreteTypeByName(typeName)
	if metaType == nil {
		violate(nil, "type %q not found in schema", typeName)
	}

	vars := ec.Variables()
	out := outcomeEmpty
	for _, selection := range selections {
		switch sel := selection.(type) {
		case *language.Field:
			if IsExcluded(sel.Directives, vars) {
				continue
			}
			responseName := sel.Alias
			if responseName == "" {
				responseName = sel.Name
			}

			if sel.Name == typenameField {
				result.Add(responseName, value.Scalar(concreteTypeOf(instance, info, ec)))
				out = outcomeMerged
				continue
			}

			metaField := metaType.FieldByName(sel.Name)
			if metaField == nil {
				violate(nil, "field %q not found on type %q", sel.Name, metaType.Name)
			}

			sub := ec.FieldSubContext(responseName, sel.Name, metaField.Type, sel.Position, sel.SelectionSet)
			args := argumentsFromAST(sel.Arguments, vars, metaField.Arguments)
			v, err := resolveField(instance, info, sel.Name, args, sub)
			switch {
			case err == nil && v.IsNull() && metaField.Type.IsNonNull():
				return outcomeNull
			case err == nil:
				mergeKeyInto(result, responseName, v)
			case isUnsupported(err):
				violate(err, "resolver for %q does not implement field %q", metaType.Name, sel.Name)
			default:
				sub.PushErrorAt(err, sel.Position)
				if metaField.Type.IsNonNull() {
					return outcomeNull
				}
				result.Add(responseName, value.Null())
			}
			out = outcomeMerged

		case *language.FragmentSpread:
			if IsExcluded(sel.Directives, vars) {
				continue
			}
			fragment := ec.FragmentByName(sel.Name)
			if fragment == nil {
				violate(nil, "fragment %q not found", sel.Name)
			}
			sub := ec.TypeSubContext(fragment.TypeCondition, fragment.SelectionSet)
			if resolveTypedFragment(instance, info, fragment.TypeCondition, fragment.SelectionSet, sub, sel.Position, result) {
				out = outcomeMerged
			}

		case *language.InlineFragment:
			if IsExcluded(sel.Directives, vars) {
				continue
			}
			sub := ec.TypeSubContext(sel.TypeCondition, sel.SelectionSet)
			if sel.TypeCondition != "" {
				if resolveTypedFragment(instance, info, sel.TypeCondition, sel.SelectionSet, sub, sel.Position, result) {
					out = outcomeMerged
				}
				continue
			}
			switch resolveSelectionSetInto(instance, info, sel.SelectionSet, sub, result) {
			case outcomeNull:
				return outcomeNull
			case outcomeMerged:
				out = outcomeMerged
			}

		default:
			violate(nil, "unexpected selection %T", selection)
		}
	}
	return out
}

// resolveTypedFragment merges a fragment with a type condition when the
// instance's concrete type satisfies it. A Null sub-result contributes
// nothing and does not propagate; an error is recorded at the fragment.
func resolveTypedFragment(instance Resolvable, info any, typeCondition string, selections language.SelectionSet, ec *ExecutionContext, pos *language.Position, result *value.Object) bool {
	concrete := concreteTypeOf(instance, info, ec)
	if typeCondition != concrete && !ec.Registry().IsPossibleType(typeCondition, concrete) {
		return false
	}
	v, err := ResolveIntoType(instance, info, concrete, selections, ec)
	if err != nil {
		if isUnsupported(err) {
			violate(err, "value of type %q cannot be resolved as %q", typeNameOf(instance, info), concrete)
		}
		ec.PushErrorAt(err, pos)
		return false
	}
	obj := v.AsObject()
	if obj == nil {
		return false
	}
	for k, item := range obj.All() {
		mergeKeyInto(result, k, item)
	}
	return obj.Len() > 0
}

// mergeKeyInto writes a response key. An existing key keeps its position and
// takes the new value.
func mergeKeyInto(result *value.Object, responseName string, v value.Value) {
	result.Add(responseName, v)
}

func typeNameOf(v Resolvable, info any) string {
	if name, ok := v.TypeName(info); ok {
		return name
	}
	return fmt.Sprintf("%T", v)
}
