package mapping

import "testing"

func TestCatalogComplete(t *testing.T) {
	for _, m := range Nodes() {
		if m.Name == "" || m.Babel == "" || m.Swc == "" {
			t.Errorf("entry %+v is missing a backend name", m)
		}
		if m.BabelChecker == "" {
			t.Errorf("entry %s has no Babel checker", m.Name)
		}
		if m.SwcVisitor == "" {
			t.Errorf("entry %s has no SWC visitor method", m.Name)
		}
		if (m.SwcEnum == "") != (m.SwcVariant == "") {
			t.Errorf("entry %s has a dangling enum/variant half", m.Name)
		}
	}
}

func TestFieldMappingsReferenceKnownNodes(t *testing.T) {
	for _, f := range fieldMappings {
		if !Aligned(f.NodeType) {
			t.Errorf("field %s.%s references unknown node type", f.NodeType, f.Field)
		}
		if f.Babel == "" || f.Swc == "" {
			t.Errorf("field %s.%s is missing a backend name", f.NodeType, f.Field)
		}
	}
}

func TestNodeLookup(t *testing.T) {
	m, ok := Node("MemberExpression")
	if !ok {
		t.Fatalf("MemberExpression must be aligned")
	}
	if m.Swc != "MemberExpr" || m.SwcVariant != "Member" {
		t.Fatalf("unexpected SWC mapping: %+v", m)
	}
	if got := m.SwcPattern("member_expr"); got != "Expr::Member(member_expr)" {
		t.Fatalf("SwcPattern = %q", got)
	}
	if _, ok := Node("WithStatement"); ok {
		t.Fatalf("WithStatement must not be aligned")
	}
}

func TestIdentifierNameDiverges(t *testing.T) {
	f, ok := Field("Identifier", "name")
	if !ok {
		t.Fatalf("Identifier.name must be mapped")
	}
	if f.Babel != "name" || f.Swc != "sym" {
		t.Fatalf("unexpected field names: %+v", f)
	}
	if f.ReadConv != ConvHandleToString || f.WriteConv != ConvStringToHandle {
		t.Fatalf("Identifier.name must carry handle conversions")
	}
}

func TestContextVariant(t *testing.T) {
	cases := []struct {
		node, ctx            string
		enum, variant, bound string
		ok                   bool
	}{
		{"Identifier", "Expr", "Expr", "Ident", "Ident", true},
		{"Identifier", "MemberProp", "MemberProp", "Ident", "IdentName", true},
		{"Identifier", "Pat", "Pat", "Ident", "BindingIdent", true},
		{"StringLiteral", "Lit", "Lit", "Str", "Str", true},
		{"CallExpression", "Callee", "Callee", "Expr", "Expr", true},
		{"BlockStatement", "MemberProp", "", "", "", false},
	}
	for _, tc := range cases {
		enum, variant, bound, ok := ContextVariant(tc.node, tc.ctx)
		if ok != tc.ok || enum != tc.enum || variant != tc.variant || bound != tc.bound {
			t.Errorf("ContextVariant(%s, %s) = (%s, %s, %s, %v), want (%s, %s, %s, %v)",
				tc.node, tc.ctx, enum, variant, bound, ok, tc.enum, tc.variant, tc.bound, tc.ok)
		}
	}
}

func TestFieldsOfKeepsOrder(t *testing.T) {
	fields := FieldsOf("MemberExpression")
	if len(fields) != 3 {
		t.Fatalf("MemberExpression has %d mapped fields, want 3", len(fields))
	}
	if fields[0].Field != "object" || fields[1].Field != "property" {
		t.Fatalf("field order not preserved: %v, %v", fields[0].Field, fields[1].Field)
	}
}
