package introspection

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/spf13/cast"

	schema "github.com/hanpama/graphresolve/internal/schema"
)

// printLiteral renders a default value as a GraphQL input literal.
func printLiteral(sch *schema.Schema, typ *schema.TypeRef, v any) string {
	if v == nil {
		return "null"
	}
	if typ.IsNonNull() {
		typ = typ.OfType
	}
	if typ.IsList() {
		items, ok := v.([]any)
		if !ok {
			// a single value stands for a one-item list
			return printLiteral(sch, typ.ListElem(), v)
		}
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = printLiteral(sch, typ.ListElem(), item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}

	def := sch.ConcreteTypeByName(typ.GetNamedType())
	switch {
	case def != nil && def.Kind == schema.TypeKindEnum:
		return cast.ToString(v)
	case def != nil && def.Kind == schema.TypeKindInputObject:
		m, ok := v.(map[string]any)
		if !ok {
			break
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			var fieldType *schema.TypeRef
			for _, f := range def.InputFields {
				if f.Name == k {
					fieldType = f.Type
				}
			}
			parts[i] = k + ": " + printLiteral(sch, fieldType, m[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}

	if s, ok := v.(string); ok {
		b, _ := json.Marshal(s)
		return string(b)
	}
	return cast.ToString(v)
}
