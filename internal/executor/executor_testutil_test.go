package executor

import (
	"encoding/json"
	"sync"
	"testing"

	language "github.com/hanpama/graphresolve/internal/language"
	schema "github.com/hanpama/graphresolve/internal/schema"
	value "github.com/hanpama/graphresolve/internal/value"
)

// mustParseQuery parses a GraphQL query and fails the test on error.
func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}

func mustBuildSchema(t *testing.T, sdl string) *schema.Schema {
	t.Helper()
	s, err := schema.BuildFromSDL(sdl)
	if err != nil {
		t.Fatalf("schema error: %v", err)
	}
	return s
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	return string(b)
}

// Call records one ResolveField invocation.
type Call struct {
	Type  string
	Field string
	Args  map[string]any
	Path  string
}

type callLog struct {
	mu    sync.Mutex
	calls []Call
}

func (l *callLog) add(c Call) {
	l.mu.Lock()
	l.calls = append(l.calls, c)
	l.mu.Unlock()
}

func (l *callLog) Calls() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Call(nil), l.calls...)
}

type mockField func(args Arguments, ec *ExecutionContext) (value.Value, error)

// mockObject is a map-backed object value that logs resolver calls.
type mockObject struct {
	typeName string
	fields   map[string]mockField
	log      *callLog
}

func newMockObject(log *callLog, typeName string, fields map[string]mockField) *mockObject {
	return &mockObject{typeName: typeName, fields: fields, log: log}
}

func (o *mockObject) TypeName(any) (string, bool) { return o.typeName, true }

func (o *mockObject) ResolveField(_ any, fieldName string, args Arguments, ec *ExecutionContext) (value.Value, error) {
	if o.log != nil {
		o.log.add(Call{Type: o.typeName, Field: fieldName, Args: args.Map(), Path: ec.Path().String()})
	}
	f, ok := o.fields[fieldName]
	if !ok {
		return value.Null(), UnknownField(o.typeName, fieldName)
	}
	return f(args, ec)
}

// mockAbstract exposes a concrete object through an interface or union.
type mockAbstract struct {
	name     string
	concrete *mockObject
}

func (a *mockAbstract) TypeName(any) (string, bool) { return a.name, true }

func (a *mockAbstract) ConcreteTypeName(any, any) string { return a.concrete.typeName }

func (a *mockAbstract) ResolveField(info any, fieldName string, args Arguments, ec *ExecutionContext) (value.Value, error) {
	return a.concrete.ResolveField(info, fieldName, args, ec)
}

func (a *mockAbstract) ResolveIntoType(info any, typeName string, sel language.SelectionSet, ec *ExecutionContext) (value.Value, error) {
	if typeName != a.concrete.typeName {
		return value.Null(), ErrUnsupported
	}
	return Resolve(a.concrete, info, sel, ec)
}

func scalarField(v any) mockField {
	return func(_ Arguments, ec *ExecutionContext) (value.Value, error) {
		return ec.Resolve(nil, Leaf{Type: "String", Value: v})
	}
}

func errField(err error) mockField {
	return func(Arguments, *ExecutionContext) (value.Value, error) { return value.Null(), err }
}

func objField(o Resolvable) mockField {
	return func(_ Arguments, ec *ExecutionContext) (value.Value, error) { return ec.Resolve(nil, o) }
}

func listField(items ...Resolvable) mockField {
	return func(_ Arguments, ec *ExecutionContext) (value.Value, error) {
		return ec.Resolve(nil, List{Items: items})
	}
}

func nullField() mockField {
	return func(Arguments, *ExecutionContext) (value.Value, error) { return value.Null(), nil }
}

// extError carries GraphQL error extensions.
type extError struct {
	msg  string
	code string
}

func (e extError) Error() string { return e.msg }

func (e extError) Extensions() map[string]any { return map[string]any{"code": e.code} }
