package types

import "testing"

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Unit == NoTypeID || b.Bool == NoTypeID || b.Unknown == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	unknown, _ := in.Lookup(b.Unknown)
	if unknown.Kind != KindUnknown {
		t.Fatalf("expected unknown kind, got %v", unknown.Kind)
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	elem := in.Builtins().String
	list1 := in.Intern(MakeList(elem))
	list2 := in.Intern(MakeList(elem))
	if list1 != list2 {
		t.Fatalf("list types should be deduplicated")
	}
}

func TestHostNodeNominalIdentity(t *testing.T) {
	in := NewInterner()
	a := in.InternHostNode("Identifier")
	b := in.InternHostNode("Identifier")
	c := in.InternHostNode("CallExpression")
	if a != b {
		t.Fatalf("same node name must intern to the same ID")
	}
	if a == c {
		t.Fatalf("distinct node names must differ")
	}
	name, ok := in.HostNodeName(a)
	if !ok || name != "Identifier" {
		t.Fatalf("HostNodeName = %q, %v", name, ok)
	}
}

func TestMapKeyDistinguishesIdentity(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	strToInt := in.Intern(MakeMap(b.String, b.Int))
	intToStr := in.Intern(MakeMap(b.Int, b.String))
	if strToInt == intToStr {
		t.Fatalf("map key and value order must affect identity")
	}
}

func TestDisplayNames(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	cases := []struct {
		id   TypeID
		want string
	}{
		{in.Intern(MakeList(b.String)), "Vec<str>"},
		{in.Intern(MakeOptional(b.Int)), "Option<i32>"},
		{in.Intern(MakeMap(b.String, b.Int)), "HashMap<str, i32>"},
		{in.Intern(MakeSet(b.Float)), "HashSet<f64>"},
		{in.Intern(MakeResult(b.Int, b.String)), "Result<i32, str>"},
		{in.InternHostNode("MemberExpression"), "MemberExpression"},
	}
	for _, tc := range cases {
		if got := in.DisplayName(tc.id); got != tc.want {
			t.Errorf("DisplayName = %q, want %q", got, tc.want)
		}
	}
}

func TestContainsUnknown(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	nested := in.Intern(MakeList(in.Intern(MakeMap(b.String, b.Unknown))))
	if !in.ContainsUnknown(nested) {
		t.Fatalf("nested unknown must be detected")
	}
	concrete := in.Intern(MakeList(in.Intern(MakeMap(b.String, b.Int))))
	if in.ContainsUnknown(concrete) {
		t.Fatalf("fully concrete type misreported as unknown")
	}
}

func TestStructRedeclarationKeepsID(t *testing.T) {
	in := NewInterner()
	first := in.DeclareStruct(StructInfo{Name: "State"})
	second := in.DeclareStruct(StructInfo{
		Name:   "State",
		Fields: []Field{{Name: "count", Type: in.Builtins().Int}},
	})
	if first != second {
		t.Fatalf("redeclaration must keep the nominal ID")
	}
	info, ok := in.Struct(second)
	if !ok || len(info.Fields) != 1 {
		t.Fatalf("fields not updated on redeclaration")
	}
}
