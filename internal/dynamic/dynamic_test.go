package dynamic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	executor "github.com/hanpama/graphresolve/internal/executor"
	language "github.com/hanpama/graphresolve/internal/language"
	schema "github.com/hanpama/graphresolve/internal/schema"
)

const testSDL = `
enum Role { ADMIN MEMBER }
scalar Date

type Query {
  me: User
  users: [User!]!
  pets: [Pet]
  count: Int
  node(id: ID!): Node
  brokenItems: [Int]
  ghost: User
}

interface Node { id: ID! }

type User implements Node {
  id: ID!
  name: String
  role: Role
  joined: Date
  tags: [String!]
  friends(first: Int = 2): [User]
}

type Dog implements Node { id: ID! barks: Boolean }
type Cat implements Node { id: ID! lives: Int }
union Pet = Dog | Cat
`

type testUser struct {
	ID      string    `graphql:"id"`
	Name    string
	Role    string    `graphql:"role"`
	Joined  time.Time `graphql:"joined"`
	Tags    []string  `graphql:"tags"`
	Secret  string    `graphql:"-"`
	Friends []*testUser
}

func (*testUser) GraphQLTypeName() string { return "User" }

type Dog struct {
	ID    string `graphql:"id"`
	Barks bool   `graphql:"barks"`
}

// call records one ResolveSync invocation.
type call struct {
	Type  string
	Field string
	Args  map[string]any
}

// recordingRuntime logs every field resolution before delegating.
type recordingRuntime struct {
	Runtime
	mu    sync.Mutex
	calls []call
}

func (r *recordingRuntime) ResolveSync(ctx context.Context, objectType, field string, source any, args executor.Arguments) (any, error) {
	r.mu.Lock()
	r.calls = append(r.calls, call{Type: objectType, Field: field, Args: args.Map()})
	r.mu.Unlock()
	return r.Runtime.ResolveSync(ctx, objectType, field, source, args)
}

func mustBuildSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.BuildFromSDL(testSDL)
	require.NoError(t, err)
	return s
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func newTestResolvers(sch *schema.Schema) *Resolvers {
	ann := &testUser{ID: "u1", Name: "Ann", Role: "ADMIN", Joined: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Tags: []string{"a", "b"}, Secret: "s"}
	bob := &testUser{ID: "u2", Name: "Bob", Role: "MEMBER"}
	ann.Friends = []*testUser{bob, nil}

	return NewResolvers(sch).
		Field("Query", "me", func(context.Context, any, executor.Arguments) (any, error) { return ann, nil }).
		Field("Query", "users", func(context.Context, any, executor.Arguments) (any, error) {
			return []*testUser{ann, bob}, nil
		}).
		Field("Query", "pets", func(context.Context, any, executor.Arguments) (any, error) {
			return []any{Dog{ID: "d1", Barks: true}, map[string]any{"__typename": "Cat", "id": "c1", "lives": 9}, nil}, nil
		}).
		Field("Query", "count", func(context.Context, any, executor.Arguments) (any, error) { return int64(3), nil }).
		Field("Query", "node", func(_ context.Context, _ any, args executor.Arguments) (any, error) {
			if id, _ := executor.ArgumentAs[string](args, "id"); id == ann.ID {
				return ann, nil
			}
			return nil, nil
		}).
		Field("Query", "brokenItems", func(context.Context, any, executor.Arguments) (any, error) {
			return []any{1, "x", int64(1 << 40)}, nil
		}).
		Field("User", "friends", func(_ context.Context, src any, args executor.Arguments) (any, error) {
			n, _ := executor.ArgumentAs[int](args, "first")
			friends := src.(*testUser).Friends
			return friends[:min(n, len(friends))], nil
		}).
		Scalar("Date", func(v any) (any, error) {
			tm, ok := v.(time.Time)
			if !ok {
				return nil, fmt.Errorf("Date cannot represent %T", v)
			}
			if tm.IsZero() {
				return nil, nil
			}
			return tm.Format("2006-01-02"), nil
		})
}

func execute(t *testing.T, rt Runtime, sch *schema.Schema, query string) *executor.ExecutionResult {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	res, err := executor.New(sch).ExecuteRequest(context.Background(), doc, "", nil, NewRoot(rt, sch, sch.QueryType, nil))
	require.NoError(t, err)
	return res
}

// Pattern: Result comparison
func TestObject_Projection_Result(t *testing.T) {
	sch := mustBuildSchema(t)
	res := execute(t, newTestResolvers(sch), sch, `{ me { id name role joined tags friends { name } } count }`)
	require.Empty(t, res.Errors)

	want := `{"me":{"id":"u1","name":"Ann","role":"ADMIN","joined":"2024-03-01","tags":["a","b"],"friends":[{"name":"Bob"},null]},"count":3}`
	require.Equal(t, want, mustJSON(t, res.Data))
}

// Pattern: Result comparison
func TestObject_AbstractTypes_Result(t *testing.T) {
	sch := mustBuildSchema(t)
	res := execute(t, newTestResolvers(sch), sch, `{
		pets { __typename ... on Dog { barks } ... on Cat { lives } ... on Node { id } }
		node(id: "u1") { __typename id ... on User { name } }
		missing: node(id: "zz") { id }
	}`)
	require.Empty(t, res.Errors)

	want := `{"pets":[{"__typename":"Dog","barks":true,"id":"d1"},{"__typename":"Cat","lives":9,"id":"c1"},null],"node":{"__typename":"User","id":"u1","name":"Ann"},"missing":null}`
	require.Equal(t, want, mustJSON(t, res.Data))
}

// Pattern: Result comparison
func TestObject_ListItemErrors_Result(t *testing.T) {
	sch := mustBuildSchema(t)
	res := execute(t, newTestResolvers(sch), sch, `{ brokenItems }`)

	require.Equal(t, `{"brokenItems":[1,null,null]}`, mustJSON(t, res.Data))
	var paths []string
	for _, e := range res.Errors {
		paths = append(paths, e.Path.String())
	}
	if diff := cmp.Diff([]string{"brokenItems[1]", "brokenItems[2]"}, paths); diff != "" {
		t.Fatalf("error paths mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestObject_NonNullPropagation_Result(t *testing.T) {
	sch := mustBuildSchema(t)
	rt := newTestResolvers(sch).
		Field("Query", "users", func(context.Context, any, executor.Arguments) (any, error) {
			return []any{&testUser{ID: "u3"}, nil}, nil
		})
	res := execute(t, rt, sch, `{ users { id } count }`)

	// users is [User!]! so a null item nulls the whole response
	require.Equal(t, `null`, mustJSON(t, res.Data))
	require.Empty(t, res.Errors)
}

// Pattern: Result comparison
func TestObject_FieldErrors_Result(t *testing.T) {
	sch := mustBuildSchema(t)
	rt := newTestResolvers(sch).
		Field("Query", "me", func(context.Context, any, executor.Arguments) (any, error) {
			return nil, errors.New("unauthorized")
		}).
		Field("User", "role", func(context.Context, any, executor.Arguments) (any, error) {
			return "OWNER", nil
		})
	res := execute(t, rt, sch, `{ me { id } users { id role } }`)

	require.Equal(t, `{"me":null,"users":[{"id":"u1","role":null},{"id":"u2","role":null}]}`, mustJSON(t, res.Data))
	require.Len(t, res.Errors, 3)
	require.Equal(t, "unauthorized", res.Errors[0].Message)
	require.Equal(t, "users[0].role", res.Errors[1].Path.String())
	require.Contains(t, res.Errors[1].Message, "does not exist in enum Role")
}

func TestObject_UnknownFieldIsContractViolation(t *testing.T) {
	sch := mustBuildSchema(t)
	doc, err := language.ParseQuery(`{ ghost { id } }`)
	require.NoError(t, err)

	_, err = executor.New(sch).ExecuteRequest(context.Background(), doc, "", nil, NewRoot(NewResolvers(sch), sch, "Query", nil))
	require.Error(t, err)
	require.True(t, executor.IsContractViolation(err))
}

func TestObject_RootSourceProjection(t *testing.T) {
	sch := mustBuildSchema(t)
	doc, err := language.ParseQuery(`{ count ghost { name } }`)
	require.NoError(t, err)

	root := map[string]any{"count": 7, "ghost": map[string]any{"name": "Boo"}}
	res, err := executor.New(sch).ExecuteRequest(context.Background(), doc, "", nil, NewRoot(NewResolvers(sch), sch, "Query", root))
	require.NoError(t, err)
	require.Equal(t, `{"count":7,"ghost":{"name":"Boo"}}`, mustJSON(t, res.Data))
}

// Pattern: Result comparison
func TestObject_ResolverCalls_Result(t *testing.T) {
	sch := mustBuildSchema(t)
	rt := &recordingRuntime{Runtime: newTestResolvers(sch)}
	res := execute(t, rt, sch, `{ me { name friends(first: 1) { id } } }`)
	require.Empty(t, res.Errors)

	want := []call{
		{Type: "Query", Field: "me", Args: map[string]any{}},
		{Type: "User", Field: "name", Args: map[string]any{}},
		{Type: "User", Field: "friends", Args: map[string]any{"first": 1}},
		{Type: "User", Field: "id", Args: map[string]any{}},
	}
	if diff := cmp.Diff(want, rt.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestResolvers_ResolveType(t *testing.T) {
	sch := mustBuildSchema(t)
	r := NewResolvers(sch)
	ctx := context.Background()

	name, err := r.ResolveType(ctx, "Pet", &Dog{})
	require.NoError(t, err)
	require.Equal(t, "Dog", name)

	name, err = r.ResolveType(ctx, "Node", map[string]any{"__typename": "Cat"})
	require.NoError(t, err)
	require.Equal(t, "Cat", name)

	_, err = r.ResolveType(ctx, "Pet", map[string]any{"id": "x"})
	require.Error(t, err)

	_, err = r.ResolveType(ctx, "Pet", testUser{})
	require.Error(t, err)
}

func TestResolvers_SerializeLeafValue(t *testing.T) {
	sch := mustBuildSchema(t)
	r := NewResolvers(sch)
	ctx := context.Background()

	tests := []struct {
		typ     string
		in      any
		want    any
		wantErr bool
	}{
		{typ: "Int", in: int64(4), want: 4},
		{typ: "String", in: 12, want: "12"},
		{typ: "Role", in: "ADMIN", want: "ADMIN"},
		{typ: "Role", in: "GUEST", wantErr: true},
		{typ: "Date", in: "raw", want: "raw"},
	}
	for _, tt := range tests {
		got, err := r.SerializeLeafValue(ctx, tt.typ, tt.in)
		if tt.wantErr {
			require.Error(t, err, "%s(%v)", tt.typ, tt.in)
			continue
		}
		require.NoError(t, err, "%s(%v)", tt.typ, tt.in)
		require.Equal(t, tt.want, got)
	}
}
