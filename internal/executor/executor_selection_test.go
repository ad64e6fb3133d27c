package executor

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	language "github.com/hanpama/graphresolve/internal/language"
	value "github.com/hanpama/graphresolve/internal/value"
)

const testSDL = `
type Query {
  a: String
  b: String
  c: String
  required: String!
  user: User
  users(limit: Int = 10): [User!]
  loose: [User]
  hero: Character
  search: [SearchResult]
}

interface Character {
  id: ID!
  name: String
}

type User implements Character {
  id: ID!
  name: String
  email: String!
  friend: User
}

type Droid implements Character {
  id: ID!
  name: String
  model: String
}

union SearchResult = User | Droid
`

func newUser(log *callLog, id, name string, extra map[string]mockField) *mockObject {
	fields := map[string]mockField{
		"id":    scalarField(id),
		"name":  scalarField(name),
		"email": scalarField(name + "@example.com"),
	}
	for k, f := range extra {
		fields[k] = f
	}
	return newMockObject(log, "User", fields)
}

// Pattern: Result comparison
func TestOrdering_FieldOutput_Order_Result(t *testing.T) {
	sch := mustBuildSchema(t, testSDL)
	log := &callLog{}
	root := newMockObject(log, "Query", map[string]mockField{
		"a": scalarField("A"),
		"b": scalarField("B"),
		"c": scalarField("C"),
	})
	res, err := New(sch).ExecuteRequest(context.Background(), mustParseQuery(t, "{ c a x: b a }"), "", nil, root)
	require.NoError(t, err)

	require.Equal(t, `{"data":{"c":"C","a":"A","x":"B"}}`, mustJSON(t, res))
	require.Equal(t, OutcomeComplete, res.Outcome())

	wantCalls := []Call{
		{Type: "Query", Field: "c", Args: map[string]any{}, Path: "c"},
		{Type: "Query", Field: "a", Args: map[string]any{}, Path: "a"},
		{Type: "Query", Field: "b", Args: map[string]any{}, Path: "x"},
		{Type: "Query", Field: "a", Args: map[string]any{}, Path: "a"},
	}
	if diff := cmp.Diff(wantCalls, log.Calls()); diff != "" {
		t.Fatalf("resolver calls mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestOrdering_FragmentKeysInterleave_Result(t *testing.T) {
	sch := mustBuildSchema(t, testSDL)
	root := newMockObject(nil, "Query", map[string]mockField{
		"a": scalarField("A"),
		"b": scalarField("B"),
		"c": scalarField("C"),
	})
	doc := mustParseQuery(t, `{ b ...F c ... { a b } } fragment F on Query { a }`)
	res, err := New(sch).ExecuteRequest(context.Background(), doc, "", nil, root)
	require.NoError(t, err)
	require.Equal(t, `{"data":{"b":"B","a":"A","c":"C"}}`, mustJSON(t, res))
}

// Pattern: Result comparison
func TestNullPropagation_StopsAtNullableAncestor_Result(t *testing.T) {
	sch := mustBuildSchema(t, testSDL)
	user := newMockObject(nil, "User", map[string]mockField{
		"id":    scalarField("1"),
		"email": nullField(),
	})
	root := newMockObject(nil, "Query", map[string]mockField{
		"a":    scalarField("A"),
		"user": objField(user),
	})
	res, err := New(sch).ExecuteRequest(context.Background(), mustParseQuery(t, "{ user { id email } a }"), "", nil, root)
	require.NoError(t, err)

	// silent: a null without an error adds no error entry
	require.Equal(t, `{"data":{"user":null,"a":"A"}}`, mustJSON(t, res))
	require.Empty(t, res.Errors)
}

// Pattern: Result comparison
func TestNullPropagation_ReachesRoot_Result(t *testing.T) {
	sch := mustBuildSchema(t, testSDL)
	root := newMockObject(nil, "Query", map[string]mockField{
		"a":        scalarField("A"),
		"required": errField(fmt.Errorf("boom")),
	})
	res, err := New(sch).ExecuteRequest(context.Background(), mustParseQuery(t, "{ a required }"), "", nil, root)
	require.NoError(t, err)

	require.True(t, res.Data.IsNull())
	require.Equal(t, OutcomeNull, res.Outcome())
	require.Len(t, res.Errors, 1)
	require.Equal(t, "boom", res.Errors[0].Message)
	require.Equal(t, "required", res.Errors[0].Path.String())
	require.JSONEq(t, `{"data":null,"errors":[{"message":"boom","locations":[{"line":1,"column":5}],"path":["required"]}]}`, mustJSON(t, res))
}

// Pattern: Result comparison
func TestNullPropagation_ThroughNonNullParents_Result(t *testing.T) {
	sch := mustBuildSchema(t, testSDL)
	var mkUser func(depth int) *mockObject
	mkUser = func(depth int) *mockObject {
		if depth == 0 {
			return newMockObject(nil, "User", map[string]mockField{"email": errField(fmt.Errorf("deep"))})
		}
		return newMockObject(nil, "User", map[string]mockField{
			"id":     scalarField(fmt.Sprint(depth)),
			"friend": objField(mkUser(depth - 1)),
		})
	}
	root := newMockObject(nil, "Query", map[string]mockField{"user": objField(mkUser(2))})
	doc := mustParseQuery(t, "{ user { id friend { id friend { email } } } }")
	res, err := New(sch).ExecuteRequest(context.Background(), doc, "", nil, root)
	require.NoError(t, err)

	// friend is nullable: the innermost object is nulled, its parents survive
	require.Equal(t, `{"user":{"id":"2","friend":{"id":"1","friend":null}}}`, mustJSON(t, res.Data))
	require.Len(t, res.Errors, 1)
	require.Equal(t, "user.friend.friend.email", res.Errors[0].Path.String())
}

// Pattern: Result comparison
func TestErrors_Isolation_Result(t *testing.T) {
	sch := mustBuildSchema(t, testSDL)
	root := newMockObject(nil, "Query", map[string]mockField{
		"a": errField(extError{msg: "not allowed", code: "FORBIDDEN"}),
		"b": scalarField("B"),
	})
	res, err := New(sch).ExecuteRequest(context.Background(), mustParseQuery(t, "{\n  a\n  b\n}"), "", nil, root)
	require.NoError(t, err)

	require.Equal(t, OutcomePartial, res.Outcome())
	require.Equal(t, `{"a":null,"b":"B"}`, mustJSON(t, res.Data))
	require.JSONEq(t,
		`{"data":{"a":null,"b":"B"},"errors":[{"message":"not allowed","locations":[{"line":2,"column":3}],"path":["a"],"extensions":{"code":"FORBIDDEN"}}]}`,
		mustJSON(t, res))
}

// Pattern: Result comparison
func TestErrors_SortedByLocation_Result(t *testing.T) {
	sch := mustBuildSchema(t, testSDL)
	root := newMockObject(nil, "Query", map[string]mockField{
		"a": errField(fmt.Errorf("a failed")),
		"b": errField(fmt.Errorf("b failed")),
		"c": errField(fmt.Errorf("c failed")),
	})
	res, err := New(sch).ExecuteRequest(context.Background(), mustParseQuery(t, "{ c\n b\n a }"), "", nil, root)
	require.NoError(t, err)

	var got []string
	for _, e := range res.Errors {
		got = append(got, e.Message)
	}
	if diff := cmp.Diff([]string{"c failed", "b failed", "a failed"}, got); diff != "" {
		t.Fatalf("error order mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestDirectives_ExcludedFieldsNeverResolve_Result(t *testing.T) {
	sch := mustBuildSchema(t, testSDL)
	log := &callLog{}
	root := newMockObject(log, "Query", map[string]mockField{
		"a":        errField(fmt.Errorf("must not run")),
		"b":        scalarField("B"),
		"c":        scalarField("C"),
		"required": nullField(),
	})
	doc := mustParseQuery(t, `query ($no: Boolean!) {
		a @skip(if: true)
		b @skip(if: false) @include(if: true)
		c @include(if: $no)
		required @include(if: false)
		... @skip(if: true) { a }
	}`)
	res, err := New(sch).ExecuteRequest(context.Background(), doc, "", map[string]any{"no": false}, root)
	require.NoError(t, err)

	require.Equal(t, `{"data":{"b":"B"}}`, mustJSON(t, res))
	require.Len(t, log.Calls(), 1)
}

// Pattern: Result comparison
func TestFragments_TypeMatching_Result(t *testing.T) {
	sch := mustBuildSchema(t, testSDL)
	user := newUser(nil, "1", "Ann", nil)
	droid := newMockObject(nil, "Droid", map[string]mockField{
		"id":    scalarField("d1"),
		"name":  scalarField("R2"),
		"model": scalarField("astromech"),
	})
	root := newMockObject(nil, "Query", map[string]mockField{
		"hero": objField(&mockAbstract{name: "Character", concrete: droid}),
		"search": listField(
			&mockAbstract{name: "SearchResult", concrete: user},
			&mockAbstract{name: "SearchResult", concrete: droid},
		),
	})
	doc := mustParseQuery(t, `{
		hero {
			__typename
			id
			... on User { email }
			... on Droid { model }
		}
		search {
			__typename
			...U
			... on Droid { name model }
			... on Character { id }
		}
	}
	fragment U on User { name email }`)
	res, err := New(sch).ExecuteRequest(context.Background(), doc, "", nil, root)
	require.NoError(t, err)
	require.Empty(t, res.Errors)

	want := `{"hero":{"__typename":"Droid","id":"d1","model":"astromech"},` +
		`"search":[{"__typename":"User","name":"Ann","email":"Ann@example.com","id":"1"},` +
		`{"__typename":"Droid","name":"R2","model":"astromech","id":"d1"}]}`
	require.Equal(t, want, mustJSON(t, res.Data))
}

// Pattern: Result comparison
func TestFragments_MergeLastWriteWins_Result(t *testing.T) {
	sch := mustBuildSchema(t, testSDL)
	user := newUser(nil, "1", "Ann", nil)
	root := newMockObject(nil, "Query", map[string]mockField{
		"a":    scalarField("A"),
		"b":    scalarField("B"),
		"user": objField(user),
	})
	doc := mustParseQuery(t, `{ x: a user { name } ...F } fragment F on Query { x: b user { id } }`)
	res, err := New(sch).ExecuteRequest(context.Background(), doc, "", nil, root)
	require.NoError(t, err)

	// keys keep their first position; values come from the last writer
	require.Equal(t, `{"x":"B","user":{"id":"1"}}`, mustJSON(t, res.Data))
}

// Pattern: Result comparison
func TestFragments_ErrorRecordedAtSpread_Result(t *testing.T) {
	sch := mustBuildSchema(t, testSDL)
	failing := &failingTypeResolver{mockObject: newUser(nil, "1", "Ann", nil)}
	root := newMockObject(nil, "Query", map[string]mockField{"user": objField(failing)})
	doc := mustParseQuery(t, "{ user { id\n ... on User { name } } }")
	res, err := New(sch).ExecuteRequest(context.Background(), doc, "", nil, root)
	require.NoError(t, err)

	require.Equal(t, `{"user":{"id":"1"}}`, mustJSON(t, res.Data))
	require.Len(t, res.Errors, 1)
	require.Equal(t, "user", res.Errors[0].Path.String())
	require.Equal(t, 2, res.Errors[0].Locations[0].Line)
}

type failingTypeResolver struct{ *mockObject }

func (f *failingTypeResolver) ResolveIntoType(any, string, language.SelectionSet, *ExecutionContext) (value.Value, error) {
	return value.Null(), fmt.Errorf("fragment failed")
}

// Pattern: Result comparison
func TestLists_Result(t *testing.T) {
	sch := mustBuildSchema(t, testSDL)
	ok := newUser(nil, "1", "Ann", nil)
	broken := newMockObject(nil, "User", map[string]mockField{"email": nullField()})

	t.Run("NonNullItemNullsList", func(t *testing.T) {
		root := newMockObject(nil, "Query", map[string]mockField{
			"users": listField(ok, broken),
			"a":     scalarField("A"),
		})
		res, err := New(sch).ExecuteRequest(context.Background(), mustParseQuery(t, "{ users { email } a }"), "", nil, root)
		require.NoError(t, err)
		require.Equal(t, `{"users":null,"a":"A"}`, mustJSON(t, res.Data))
	})

	t.Run("NullableItemStaysNull", func(t *testing.T) {
		root := newMockObject(nil, "Query", map[string]mockField{"loose": listField(ok, broken, nil)})
		res, err := New(sch).ExecuteRequest(context.Background(), mustParseQuery(t, "{ loose { email } }"), "", nil, root)
		require.NoError(t, err)
		require.Equal(t, `{"loose":[{"email":"Ann@example.com"},null,null]}`, mustJSON(t, res.Data))
	})

	t.Run("ItemErrorPath", func(t *testing.T) {
		bad := newMockObject(nil, "User", map[string]mockField{"name": errField(fmt.Errorf("no name"))})
		root := newMockObject(nil, "Query", map[string]mockField{"loose": listField(ok, bad)})
		res, err := New(sch).ExecuteRequest(context.Background(), mustParseQuery(t, "{ loose { name } }"), "", nil, root)
		require.NoError(t, err)
		require.Equal(t, `{"loose":[{"name":"Ann"},{"name":null}]}`, mustJSON(t, res.Data))
		require.Equal(t, "loose[1].name", res.Errors[0].Path.String())
	})

	t.Run("Concurrent", func(t *testing.T) {
		items := make([]Resolvable, 20)
		for i := range items {
			items[i] = newUser(nil, fmt.Sprint(i), "u", nil)
		}
		root := newMockObject(nil, "Query", map[string]mockField{"users": listField(items...)})
		seq, err := New(sch).ExecuteRequest(context.Background(), mustParseQuery(t, "{ users { id } }"), "", nil, root)
		require.NoError(t, err)
		par, err := New(sch, WithListConcurrency(4)).ExecuteRequest(context.Background(), mustParseQuery(t, "{ users { id } }"), "", nil, root)
		require.NoError(t, err)
		require.Equal(t, mustJSON(t, seq), mustJSON(t, par))
		require.True(t, seq.Data.Equal(par.Data))
	})

	t.Run("ConcurrentKeepsSequentialErrors", func(t *testing.T) {
		boom := newMockObject(nil, "User", map[string]mockField{"email": errField(fmt.Errorf("boom"))})
		named := func(name string) *mockObject {
			return newMockObject(nil, "User", map[string]mockField{
				"name":  errField(fmt.Errorf("%s", name)),
				"email": scalarField("x"),
			})
		}
		cases := []struct {
			name  string
			query string
			items []Resolvable
			want  string
		}{
			{
				name:  "NullBeforeError",
				query: "{ users { email } }",
				items: []Resolvable{broken, boom},
				want:  `{"data":{"users":null}}`,
			},
			{
				name:  "ErrorsBeforeNullKept",
				query: "{ users { name email } }",
				items: []Resolvable{named("first"), broken, named("third")},
				want:  `{"errors":[{"message":"first","locations":[{"line":1,"column":11}],"path":["users",0,"name"]}],"data":{"users":null}}`,
			},
			{
				name:  "AllItemsKept",
				query: "{ users { name } }",
				items: []Resolvable{named("first"), ok, named("third")},
				want:  `{"errors":[{"message":"first","locations":[{"line":1,"column":11}],"path":["users",0,"name"]},{"message":"third","locations":[{"line":1,"column":11}],"path":["users",2,"name"]}],"data":{"users":[{"name":null},{"name":"Ann"},{"name":null}]}}`,
			},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				root := newMockObject(nil, "Query", map[string]mockField{"users": listField(c.items...)})
				seq, err := New(sch).ExecuteRequest(context.Background(), mustParseQuery(t, c.query), "", nil, root)
				require.NoError(t, err)
				par, err := New(sch, WithListConcurrency(4)).ExecuteRequest(context.Background(), mustParseQuery(t, c.query), "", nil, root)
				require.NoError(t, err)
				require.JSONEq(t, c.want, mustJSON(t, seq))
				require.JSONEq(t, c.want, mustJSON(t, par))
			})
		}
	})

	t.Run("TypedNilItem", func(t *testing.T) {
		var missing *mockObject
		root := newMockObject(nil, "Query", map[string]mockField{
			"loose": listField(ok, missing),
			"user":  objField(missing),
		})
		res, err := New(sch).ExecuteRequest(context.Background(), mustParseQuery(t, "{ loose { name } user { name } }"), "", nil, root)
		require.NoError(t, err)
		require.Equal(t, `{"loose":[{"name":"Ann"},null],"user":null}`, mustJSON(t, res.Data))
	})
}

// Pattern: Result comparison
func TestArguments_DefaultsReachResolver_Result(t *testing.T) {
	sch := mustBuildSchema(t, testSDL)
	log := &callLog{}
	root := newMockObject(log, "Query", map[string]mockField{"users": listField()})
	doc := mustParseQuery(t, `query ($n: Int) { a: users { id } b: users(limit: null) { id } c: users(limit: 5) { id } d: users(limit: $n) { id } }`)
	_, err := New(sch).ExecuteRequest(context.Background(), doc, "", nil, root)
	require.NoError(t, err)

	var got []any
	for _, c := range log.Calls() {
		got = append(got, c.Args["limit"])
	}
	if diff := cmp.Diff([]any{10, 10, 5, 10}, got); diff != "" {
		t.Fatalf("limit arguments mismatch (-want +got):\n%s", diff)
	}
}

// Pattern: Result comparison
func TestRoundTrip_Result(t *testing.T) {
	const sdl = `
	type Query { me: Person strict: Strict }
	type Person { id: ID name: String friends: [Person] }
	type Strict { id: ID name: String friends: [Strict]! }`
	sch := mustBuildSchema(t, sdl)
	doc := mustParseQuery(t, `{ me { id name friends { id } } }`)

	friend := newMockObject(nil, "Person", map[string]mockField{"id": scalarField("2")})
	me := newMockObject(nil, "Person", map[string]mockField{
		"id":      scalarField("1"),
		"name":    scalarField("Ann"),
		"friends": listField(friend),
	})
	root := newMockObject(nil, "Query", map[string]mockField{"me": objField(me)})
	res, err := New(sch).ExecuteRequest(context.Background(), doc, "", nil, root)
	require.NoError(t, err)
	require.Equal(t, `{"data":{"me":{"id":"1","name":"Ann","friends":[{"id":"2"}]}}}`, mustJSON(t, res))

	// idempotent for identical inputs
	again, err := New(sch).ExecuteRequest(context.Background(), doc, "", nil, root)
	require.NoError(t, err)
	require.True(t, res.Data.Equal(again.Data))

	strict := newMockObject(nil, "Strict", map[string]mockField{
		"id":      scalarField("1"),
		"name":    scalarField("Ann"),
		"friends": errField(fmt.Errorf("friends unavailable")),
	})
	root = newMockObject(nil, "Query", map[string]mockField{"strict": objField(strict)})
	res, err = New(sch).ExecuteRequest(context.Background(), mustParseQuery(t, `{ strict { id name friends { id } } }`), "", nil, root)
	require.NoError(t, err)
	require.Equal(t, `{"strict":null}`, mustJSON(t, res.Data))
	require.Len(t, res.Errors, 1)
	require.Equal(t, "strict.friends", res.Errors[0].Path.String())
}
