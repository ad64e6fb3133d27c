package executor

import (
	language "github.com/hanpama/graphresolve/internal/language"
)

// IsExcluded evaluates @skip and @include. Other directives are ignored. The
// if argument must be present and resolve to a boolean; anything else is a
// contract violation because validation guarantees it.
func IsExcluded(directives language.DirectiveList, variables map[string]any) bool {
	for _, d := range directives {
		if d.Name != "skip" && d.Name != "include" {
			continue
		}
		arg := d.Arguments.ForName("if")
		if arg == nil {
			violate(nil, "@%s without if argument", d.Name)
		}
		cond, ok := language.ValueFromAST(arg.Value, variables).(bool)
		if !ok {
			violate(nil, "@%s(if:) is not a boolean", d.Name)
		}
		if (d.Name == "skip" && cond) || (d.Name == "include" && !cond) {
			return true
		}
	}
	return false
}
