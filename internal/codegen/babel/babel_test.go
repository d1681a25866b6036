package babel

import (
	"strings"
	"testing"

	"reluxc/internal/ast"
	"reluxc/internal/decorate"
	"reluxc/internal/diag"
	"reluxc/internal/sema"
	"reluxc/internal/source"
)

type progBuilder struct {
	b    *ast.Builder
	span source.Span
}

func newProg() *progBuilder {
	return &progBuilder{b: ast.NewBuilder(ast.Hints{})}
}

func (p *progBuilder) visitorFn(nodeType string, body ast.StmtID) ast.ItemID {
	return p.b.Items.NewFn(p.span, ast.ItemFnData{
		Name:      "visit_" + nodeType,
		Fn:        ast.FnVisitor,
		VisitorOf: nodeType,
		Mutates:   true,
		Params: []ast.Param{{
			Name: "node",
			Mode: ast.BindMutBorrowed,
			Type: p.b.TypeSyns.NewName(p.span, nodeType),
		}},
		Body: body,
	})
}

func (p *progBuilder) generate(t *testing.T, items ...ast.ItemID) string {
	t.Helper()
	decl := p.b.Items.NewContainer(ast.ItemPlugin, p.span, "test_plugin", items)
	prog := &ast.Program{Builder: p.b, Decl: decl}
	bag := diag.NewBag(64)
	sem := sema.Check(prog, sema.Options{Reporter: diag.NewBagReporter(bag)})
	if bag.HasErrors() {
		t.Fatalf("check failed: %v", bag.Items())
	}
	dec, err := decorate.Run(sem)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	out, err := Generate(dec)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return out
}

func wantLines(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q\n%s", w, out)
		}
	}
}

func TestRenamePlugin(t *testing.T) {
	p := newProg()
	node := func() ast.ExprID { return p.b.Exprs.NewIdent(p.span, "node") }
	cond := p.b.Exprs.NewBinary(p.span, ast.OpEq,
		p.b.Exprs.NewMember(p.span, node(), "name"),
		p.b.Exprs.NewLit(p.span, ast.LitString, "foo"))
	write := p.b.Exprs.NewAssign(p.span, ast.AssignSet,
		p.b.Exprs.NewMember(p.span, node(), "name"),
		p.b.Exprs.NewLit(p.span, ast.LitString, "bar"))
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{
		p.b.Stmts.NewIf(p.span, ast.StmtIfData{
			Cond: cond,
			Then: p.b.Stmts.NewBlock(p.span, []ast.StmtID{p.b.Stmts.NewExpr(p.span, write)}),
		}),
	})
	out := p.generate(t, p.visitorFn("Identifier", body))

	wantLines(t, out,
		`"use strict";`,
		"module.exports = function testPlugin({ types: t }) {",
		`name: "test_plugin",`,
		"Identifier(path) {",
		"const node = path.node;",
		`if ((node.name === "foo")) {`,
		`node.name = "bar";`,
	)
}

func TestStateObjectAndHooks(t *testing.T) {
	p := newProg()
	state := p.b.Items.NewStruct(p.span, ast.ItemStructData{
		Name: "State",
		Fields: []ast.StructFieldDecl{
			{Name: "count", Type: p.b.TypeSyns.NewName(p.span, "i32")},
		},
	})
	incr := p.b.Exprs.NewAssign(p.span, ast.AssignAdd,
		p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "self"), "count"),
		p.b.Exprs.NewLit(p.span, ast.LitInt, "1"))
	visitBody := p.b.Stmts.NewBlock(p.span, []ast.StmtID{p.b.Stmts.NewExpr(p.span, incr)})
	reset := p.b.Exprs.NewAssign(p.span, ast.AssignSet,
		p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "self"), "count"),
		p.b.Exprs.NewLit(p.span, ast.LitInt, "0"))
	pre := p.b.Items.NewFn(p.span, ast.ItemFnData{
		Name: "begin",
		Fn:   ast.FnPre,
		Body: p.b.Stmts.NewBlock(p.span, []ast.StmtID{p.b.Stmts.NewExpr(p.span, reset)}),
	})
	out := p.generate(t, state, pre, p.visitorFn("Identifier", visitBody))

	wantLines(t, out,
		"const state = {",
		"count: 0,",
		"pre() {",
		"state.count = 0;",
		"state.count += 1;",
	)
}

func TestHookNodeReplacementGoesThroughPath(t *testing.T) {
	p := newProg()
	replacement := p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "node"), "object")
	call := p.b.Exprs.NewCall(p.span,
		p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "node"), "replace_with"),
		[]ast.ExprID{replacement})
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{p.b.Stmts.NewExpr(p.span, call)})
	out := p.generate(t, p.visitorFn("MemberExpression", body))

	wantLines(t, out, "path.replaceWith(node.object);")
}

func TestMapRemoveHelperHoisted(t *testing.T) {
	p := newProg()
	state := p.b.Items.NewStruct(p.span, ast.ItemStructData{
		Name: "State",
		Fields: []ast.StructFieldDecl{
			{Name: "seen", Type: p.b.TypeSyns.NewMap(p.span,
				p.b.TypeSyns.NewName(p.span, "str"),
				p.b.TypeSyns.NewName(p.span, "i32"))},
		},
	})
	remove := p.b.Exprs.NewCall(p.span,
		p.b.Exprs.NewMember(p.span,
			p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "self"), "seen"),
			"remove"),
		[]ast.ExprID{p.b.Exprs.NewLit(p.span, ast.LitString, "k")})
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{p.b.Stmts.NewExpr(p.span, remove)})
	out := p.generate(t, state, p.visitorFn("Identifier", body))

	wantLines(t, out,
		"function __mapRemove(m, k) {",
		`__mapRemove(state.seen, "k");`,
	)
	if strings.Index(out, "function __mapRemove") > strings.Index(out, "__mapRemove(state.seen") {
		t.Fatalf("helper must be hoisted above its use:\n%s", out)
	}
}

func TestEmptyMapLiteralInStructInit(t *testing.T) {
	p := newProg()
	config := p.b.Items.NewStruct(p.span, ast.ItemStructData{
		Name: "Config",
		Fields: []ast.StructFieldDecl{{
			Name: "names",
			Type: p.b.TypeSyns.NewMap(p.span,
				p.b.TypeSyns.NewName(p.span, "str"),
				p.b.TypeSyns.NewName(p.span, "str")),
		}},
	})
	cons := p.b.Exprs.NewStructInit(p.span, "Config",
		[]ast.StructInitField{{Name: "names", Value: p.b.Exprs.NewMapInit(p.span, nil)}})
	let := p.b.Stmts.NewLet(p.span, ast.StmtLetData{Name: "c", Init: cons})
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{let})
	out := p.generate(t, config, p.visitorFn("Identifier", body))

	wantLines(t, out, "const c = new Config(new Map());")
}

func TestStructuralMatchUsesLabeledBlock(t *testing.T) {
	p := newProg()
	armBody := p.b.Stmts.NewBlock(p.span, nil)
	match := p.b.Stmts.NewMatch(p.span, ast.StmtMatchData{
		Subject: p.b.Exprs.NewIdent(p.span, "node"),
		Arms: []ast.MatchArm{
			{
				Pat: p.b.Pats.NewNode(p.span, ast.PatNodeData{
					NodeType: "Identifier",
					Fields: []ast.PatFieldConstraint{{
						Name: "name",
						Pat:  p.b.Pats.NewLit(p.span, ast.LitString, "foo"),
					}},
				}),
				Body: armBody,
			},
			{Pat: p.b.Pats.NewWildcard(p.span), Body: p.b.Stmts.NewBlock(p.span, nil)},
		},
	})
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{match})
	out := p.generate(t, p.visitorFn("Identifier", body))

	wantLines(t, out,
		"m0: {",
		`if (t.isIdentifier(node) && node.name === "foo") {`,
		"break m0;",
	)
}

func TestGuardedValueMatchKeepsPattern(t *testing.T) {
	p := newProg()
	let := p.b.Stmts.NewLet(p.span, ast.StmtLetData{
		Name: "x",
		Init: p.b.Exprs.NewLit(p.span, ast.LitInt, "1"),
	})
	match := p.b.Stmts.NewMatch(p.span, ast.StmtMatchData{
		Subject: p.b.Exprs.NewIdent(p.span, "x"),
		Arms: []ast.MatchArm{
			{
				Pat:   p.b.Pats.NewLit(p.span, ast.LitInt, "2"),
				Guard: p.b.Exprs.NewLit(p.span, ast.LitBool, "true"),
				Body:  p.b.Stmts.NewBlock(p.span, nil),
			},
			{Pat: p.b.Pats.NewWildcard(p.span), Body: p.b.Stmts.NewBlock(p.span, nil)},
		},
	})
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{let, match})
	out := p.generate(t, p.visitorFn("Identifier", body))

	// The guard must narrow the literal test, never replace it.
	wantLines(t, out, "if (x === 2 && true) {")
}

func TestNestedShapeMatchChainsCheckers(t *testing.T) {
	p := newProg()
	memberPat := p.b.Pats.NewNode(p.span, ast.PatNodeData{
		NodeType: "MemberExpression",
		Fields: []ast.PatFieldConstraint{
			{Name: "object", Pat: p.b.Pats.NewNode(p.span, ast.PatNodeData{
				NodeType: "Identifier",
				Fields: []ast.PatFieldConstraint{{
					Name: "name",
					Pat:  p.b.Pats.NewLit(p.span, ast.LitString, "console"),
				}},
			})},
			{Name: "property", Pat: p.b.Pats.NewNode(p.span, ast.PatNodeData{
				NodeType: "Identifier",
				Fields: []ast.PatFieldConstraint{{
					Name: "name",
					Pat:  p.b.Pats.NewLit(p.span, ast.LitString, "log"),
				}},
			})},
		},
	})
	replace := p.b.Exprs.NewCall(p.span,
		p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "node"), "replace_with"),
		[]ast.ExprID{p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "node"), "object")})
	match := p.b.Stmts.NewMatch(p.span, ast.StmtMatchData{
		Subject: p.b.Exprs.NewIdent(p.span, "node"),
		Arms: []ast.MatchArm{
			{Pat: memberPat, Body: p.b.Stmts.NewBlock(p.span, []ast.StmtID{p.b.Stmts.NewExpr(p.span, replace)})},
			{Pat: p.b.Pats.NewWildcard(p.span), Body: p.b.Stmts.NewBlock(p.span, nil)},
		},
	})
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{match})
	out := p.generate(t, p.visitorFn("MemberExpression", body))

	wantLines(t, out,
		"MemberExpression(path) {",
		`if (t.isMemberExpression(node) && t.isIdentifier(node.object) && node.object.name === "console" && t.isIdentifier(node.property) && node.property.name === "log") {`,
		"path.replaceWith(node.object);",
		"break m0;",
	)
}

func TestEnumRendersFactoryTable(t *testing.T) {
	p := newProg()
	enum := p.b.Items.NewEnum(p.span, ast.ItemEnumData{
		Name: "Mode",
		Variants: []ast.EnumVariantDecl{
			{Name: "Off"},
			{Name: "Limit", Params: []ast.TypeSynID{p.b.TypeSyns.NewName(p.span, "i32")}},
		},
	})
	let := p.b.Stmts.NewLet(p.span, ast.StmtLetData{
		Name: "m",
		Init: p.b.Exprs.NewCall(p.span,
			p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "Mode"), "Limit"),
			[]ast.ExprID{p.b.Exprs.NewLit(p.span, ast.LitInt, "3")}),
	})
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{let})
	out := p.generate(t, enum, p.visitorFn("Identifier", body))

	wantLines(t, out,
		"const Mode = {",
		`Off: { tag: "Off" },`,
		`Limit: (v0) => ({ tag: "Limit", values: [v0] }),`,
		"const m = Mode.Limit(3);",
	)
}
