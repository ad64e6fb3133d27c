package executor

import (
	"golang.org/x/sync/errgroup"

	language "github.com/hanpama/graphresolve/internal/language"
	value "github.com/hanpama/graphresolve/internal/value"
)

// Leaf is an already serialized scalar or enum value.
type Leaf struct {
	Type  string
	Value any
}

func (l Leaf) TypeName(any) (string, bool) { return l.Type, true }

func (l Leaf) Resolve(any, language.SelectionSet, *ExecutionContext) (value.Value, error) {
	return value.Scalar(l.Value), nil
}

// List resolves each item against the current selection set. Nil items are
// Null. When the list's element type is non-null, one Null item makes the
// whole list Null; the first item error becomes the list field's error.
type List struct {
	Items []Resolvable
}

func (List) TypeName(any) (string, bool) { return "", false }

func (l List) Resolve(info any, selectionSet language.SelectionSet, ec *ExecutionContext) (value.Value, error) {
	stopOnNull := ec.FieldType().ListElem().IsNonNull()
	if n := ec.state.opts.listConcurrency; n > 1 && len(l.Items) > 1 {
		return l.resolveConcurrent(info, selectionSet, ec, n, stopOnNull)
	}
	items := make([]value.Value, 0, len(l.Items))
	for i, item := range l.Items {
		v, err := Resolve(item, info, selectionSet, ec.IndexSubContext(i))
		if err != nil {
			return value.Null(), err
		}
		if stopOnNull && v.IsNull() {
			return value.Null(), nil
		}
		items = append(items, v)
	}
	return value.List(items...), nil
}

// resolveConcurrent buffers each item's errors and commits them in index
// order, stopping where the sequential walk would have stopped.
func (l List) resolveConcurrent(info any, selectionSet language.SelectionSet, ec *ExecutionContext, limit int, stopOnNull bool) (value.Value, error) {
	n := len(l.Items)
	items := make([]value.Value, n)
	errs := make([]error, n)
	panics := make([]*panicked, n)
	pending := make([]*pendingErrors, n)

	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range l.Items {
		pending[i] = &pendingErrors{}
		sub := ec.IndexSubContext(i)
		sub.pending = pending[i]
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					panics[i] = &panicked{value: r}
				}
			}()
			items[i], errs[i] = Resolve(item, info, selectionSet, sub)
			return nil
		})
	}
	_ = g.Wait()

	for i := range items {
		if p := panics[i]; p != nil {
			panic(p.value)
		}
		pending[i].commitTo(ec)
		if errs[i] != nil {
			return value.Null(), errs[i]
		}
		if stopOnNull && items[i].IsNull() {
			return value.Null(), nil
		}
	}
	return value.List(items...), nil
}
