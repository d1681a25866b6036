package types

import "testing"

func TestAssignableReflexive(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	all := []TypeID{
		b.Unit, b.Bool, b.String, b.Int, b.Float,
		in.Intern(MakeList(b.String)),
		in.Intern(MakeOptional(b.Int)),
		in.Intern(MakeMap(b.String, b.Int)),
		in.Intern(MakeSet(b.Bool)),
		in.Intern(MakeResult(b.Int, b.String)),
		in.InternHostNode("Identifier"),
	}
	for _, id := range all {
		if !in.AssignableTo(id, id) {
			t.Errorf("AssignableTo(%s, %s) must hold", in.DisplayName(id), in.DisplayName(id))
		}
	}
}

func TestUnknownListAssignableToAnyList(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	unknownList := in.Intern(MakeList(b.Unknown))
	for _, elem := range []TypeID{b.String, b.Int, b.Bool, in.Intern(MakeList(b.Float))} {
		concrete := in.Intern(MakeList(elem))
		if !in.AssignableTo(unknownList, concrete) {
			t.Errorf("Vec<unknown> must be assignable to %s", in.DisplayName(concrete))
		}
	}
}

func TestUnknownMapParamsUnify(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	empty := in.Intern(MakeMap(b.Unknown, b.Unknown))
	declared := in.Intern(MakeMap(b.String, b.String))
	if !in.AssignableTo(empty, declared) {
		t.Fatalf("empty map literal type must fit a declared map field")
	}
	if !in.AssignableTo(declared, in.Intern(MakeMap(b.String, b.Unknown))) {
		t.Fatalf("unknown on the expected side must unify")
	}
}

func TestOptionalNeverInterchangesWithBare(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	opt := in.Intern(MakeOptional(b.String))
	if in.AssignableTo(b.String, opt) {
		t.Fatalf("str must not silently wrap into Option<str>")
	}
	if in.AssignableTo(opt, b.String) {
		t.Fatalf("Option<str> must not silently unwrap into str")
	}
}

func TestNullFillsOptional(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	opt := in.Intern(MakeOptional(b.Int))
	if !in.AssignableTo(b.Null, opt) {
		t.Fatalf("null must be assignable to Option<i32>")
	}
	if in.AssignableTo(b.Null, b.Int) {
		t.Fatalf("null must not be assignable to bare i32")
	}
}

func TestStructFlowsIntoSameNameHostNode(t *testing.T) {
	in := NewInterner()
	st := in.DeclareStruct(StructInfo{Name: "Identifier"})
	node := in.InternHostNode("Identifier")
	other := in.InternHostNode("CallExpression")
	if !in.AssignableTo(st, node) {
		t.Fatalf("struct must flow into the host node of the same name")
	}
	if in.AssignableTo(st, other) {
		t.Fatalf("struct must not flow into a differently named host node")
	}
}

func TestGenericNodeFlowsBothWays(t *testing.T) {
	in := NewInterner()
	generic := in.InternHostNode(GenericNodeName)
	ident := in.InternHostNode("Identifier")
	call := in.InternHostNode("CallExpression")
	if !in.AssignableTo(generic, ident) || !in.AssignableTo(ident, generic) {
		t.Fatalf("generic node must interchange with concrete categories")
	}
	if in.AssignableTo(ident, call) {
		t.Fatalf("concrete categories stay nominal")
	}
}

func TestUnifyResolvesUnknownParams(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	actual := in.Intern(MakeMap(b.Unknown, b.Unknown))
	expected := in.Intern(MakeMap(b.String, b.String))
	got := in.Unify(actual, expected)
	if got != expected {
		t.Fatalf("Unify = %s, want %s", in.DisplayName(got), in.DisplayName(expected))
	}
	if in.ContainsUnknown(got) {
		t.Fatalf("unified type must be fully concrete")
	}
}

func TestOwnershipMutation(t *testing.T) {
	cases := []struct {
		own  Ownership
		want bool
	}{
		{OwnOwned, true},
		{OwnMutBorrowed, true},
		{OwnBorrowed, false},
	}
	for _, tc := range cases {
		if got := tc.own.AllowsMutation(); got != tc.want {
			t.Errorf("%s.AllowsMutation() = %v, want %v", tc.own, got, tc.want)
		}
	}
}
