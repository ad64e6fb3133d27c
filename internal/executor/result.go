package executor

import (
	"encoding/json"
	"sort"

	"github.com/vektah/gqlparser/v2/gqlerror"

	value "github.com/hanpama/graphresolve/internal/value"
)

// Outcome classifies a completed execution.
type Outcome string

const (
	// OutcomeComplete: data present, no errors.
	OutcomeComplete Outcome = "complete"
	// OutcomePartial: data present with some fields nulled by errors.
	OutcomePartial Outcome = "partial"
	// OutcomeNull: a non-null violation reached the root.
	OutcomeNull Outcome = "null"
	// OutcomeRejected: the request failed before execution started.
	OutcomeRejected Outcome = "rejected"
)

// ExecutionResult represents the result of executing a GraphQL operation
type ExecutionResult struct {
	Data     value.Value
	Errors   gqlerror.List
	executed bool
}

func rejected(err *gqlerror.Error) *ExecutionResult {
	return &ExecutionResult{Errors: gqlerror.List{err}}
}

// Outcome reports which of the completed shapes the result has.
func (r *ExecutionResult) Outcome() Outcome {
	switch {
	case !r.executed:
		return OutcomeRejected
	case r.Data.IsNull():
		return OutcomeNull
	case len(r.Errors) > 0:
		return OutcomePartial
	default:
		return OutcomeComplete
	}
}

// MarshalJSON renders the response body. Data is omitted for rejected
// requests.
func (r *ExecutionResult) MarshalJSON() ([]byte, error) {
	type body struct {
		Data   *value.Value  `json:"data,omitempty"`
		Errors gqlerror.List `json:"errors,omitempty"`
	}
	b := body{Errors: r.Errors}
	if r.executed {
		b.Data = &r.Data
	}
	return json.Marshal(b)
}

// sortErrors orders errors by their first source location. Errors without a
// location keep their relative order and come first.
func sortErrors(errs gqlerror.List) {
	sort.SliceStable(errs, func(i, j int) bool {
		a, b := errs[i].Locations, errs[j].Locations
		if len(a) == 0 || len(b) == 0 {
			return len(a) == 0 && len(b) != 0
		}
		if a[0].Line != b[0].Line {
			return a[0].Line < b[0].Line
		}
		return a[0].Column < b[0].Column
	})
}
