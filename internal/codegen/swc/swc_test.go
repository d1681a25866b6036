package swc

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

func (p *progBuilder) stateStruct(fields ...ast.StructFieldDecl) ast.ItemID {
	return p.b.Items.NewStruct(p.span, ast.ItemStructData{Name: "State", Fields: fields})
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
		"use swc_core::ecma::ast::*;",
		"use swc_core::ecma::visit::{VisitMut, VisitMutWith};",
		"pub struct TestPlugin {",
		"impl VisitMut for TestPlugin {",
		"fn visit_mut_ident(&mut self, node: &mut Ident) {",
		"node.visit_mut_children_with(self);",
		`if (node.sym.to_string() == "foo") {`,
		`node.sym = "bar".to_string().into();`,
	)
	if strings.Contains(out, "use std::collections") {
		t.Fatalf("no collection imports expected:\n%s", out)
	}
}

func TestStateFieldsAndHooks(t *testing.T) {
	p := newProg()
	state := p.stateStruct(ast.StructFieldDecl{
		Name: "count", Type: p.b.TypeSyns.NewName(p.span, "i32"),
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
		"count: i32,",
		"pub fn new() -> Self {",
		"count: 0,",
		"pub fn begin(&mut self) {",
		"self.count = 0;",
		"self.count += 1;",
	)
}

func TestCollectionStateImports(t *testing.T) {
	p := newProg()
	state := p.stateStruct(ast.StructFieldDecl{
		Name: "seen",
		Type: p.b.TypeSyns.NewMap(p.span,
			p.b.TypeSyns.NewName(p.span, "str"),
			p.b.TypeSyns.NewName(p.span, "i32")),
	})
	out := p.generate(t, state, p.visitorFn("Identifier", p.b.Stmts.NewBlock(p.span, nil)))

	wantLines(t, out,
		"use std::collections::HashMap;",
		"seen: HashMap<String, i32>,",
		"seen: HashMap::new(),",
	)
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

	wantLines(t, out,
		"use std::collections::HashMap;",
		"let c = Config { names: HashMap::new() };",
	)
}

func TestNodeRemovalTakes(t *testing.T) {
	p := newProg()
	remove := p.b.Exprs.NewCall(p.span,
		p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "node"), "remove"),
		nil)
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{p.b.Stmts.NewExpr(p.span, remove)})
	out := p.generate(t, p.visitorFn("Identifier", body))

	wantLines(t, out,
		"use swc_core::common::util::take::Take;",
		"node.take();",
	)
}

func TestWholeNodeReplacementWritesThroughRef(t *testing.T) {
	p := newProg()
	call := p.b.Exprs.NewCall(p.span,
		p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "node"), "replace_with"),
		[]ast.ExprID{p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "node"), "object")})
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{p.b.Stmts.NewExpr(p.span, call)})
	out := p.generate(t, p.visitorFn("MemberExpression", body))

	wantLines(t, out, "*node = node.obj.clone();")
}

func TestStructuralMatchLabeledBlock(t *testing.T) {
	p := newProg()
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
				Body: p.b.Stmts.NewBlock(p.span, nil),
			},
			{Pat: p.b.Pats.NewWildcard(p.span), Body: p.b.Stmts.NewBlock(p.span, nil)},
		},
	})
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{match})
	out := p.generate(t, p.visitorFn("Identifier", body))

	wantLines(t, out,
		"'m0: {",
		`if node.sym == "foo" {`,
		"break 'm0;",
	)
}

func TestNestedShapeMatchChainsIfLets(t *testing.T) {
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
		"'m0: {",
		"if let Expr::Ident(__n1) = &mut *node.obj {",
		`if __n1.sym == "console" {`,
		"if let MemberProp::Ident(__n2) = &mut node.prop {",
		`if __n2.sym == "log" {`,
		"break 'm0;",
	)
	if strings.Index(out, "__n1.sym") > strings.Index(out, "MemberProp::Ident") {
		t.Fatalf("object check must run before the property check:\n%s", out)
	}
}

func TestValueMatchIsNative(t *testing.T) {
	p := newProg()
	enum := p.b.Items.NewEnum(p.span, ast.ItemEnumData{
		Name: "Mode",
		Variants: []ast.EnumVariantDecl{
			{Name: "Off"},
			{Name: "Limit", Params: []ast.TypeSynID{p.b.TypeSyns.NewName(p.span, "i32")}},
		},
	})
	state := p.stateStruct(ast.StructFieldDecl{
		Name: "mode", Type: p.b.TypeSyns.NewName(p.span, "Mode"),
	})
	match := p.b.Stmts.NewMatch(p.span, ast.StmtMatchData{
		Subject: p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "self"), "mode"),
		Arms: []ast.MatchArm{
			{
				Pat:  p.b.Pats.NewVariant(p.span, ast.PatVariantData{Variant: "Off"}),
				Body: p.b.Stmts.NewBlock(p.span, nil),
			},
			{
				Pat: p.b.Pats.NewVariant(p.span, ast.PatVariantData{
					Variant: "Limit",
					Params:  []ast.PatID{p.b.Pats.NewBind(p.span, "n")},
				}),
				Body: p.b.Stmts.NewBlock(p.span, nil),
			},
		},
	})
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{match})
	out := p.generate(t, enum, state, p.visitorFn("Identifier", body))

	wantLines(t, out,
		"match &self.mode {",
		"Mode::Off => {",
		"Mode::Limit(n) => {",
	)
}

func TestCloneAtMarkedConsumeSite(t *testing.T) {
	p := newProg()
	strSyn := func() ast.TypeSynID { return p.b.TypeSyns.NewName(p.span, "str") }
	state := p.stateStruct(
		ast.StructFieldDecl{Name: "xs", Type: p.b.TypeSyns.NewList(p.span, strSyn())},
		ast.StructFieldDecl{Name: "ys", Type: p.b.TypeSyns.NewList(p.span, strSyn())},
	)
	let := p.b.Stmts.NewLet(p.span, ast.StmtLetData{
		Name: "a",
		Init: p.b.Exprs.NewLit(p.span, ast.LitString, "x"),
	})
	push := func(field string) ast.StmtID {
		call := p.b.Exprs.NewCall(p.span,
			p.b.Exprs.NewMember(p.span,
				p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "self"), field),
				"push"),
			[]ast.ExprID{p.b.Exprs.NewIdent(p.span, "a")})
		return p.b.Stmts.NewExpr(p.span, call)
	}
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{let, push("xs"), push("ys")})
	out := p.generate(t, state, p.visitorFn("Identifier", body))

	wantLines(t, out,
		"self.xs.push(a.clone());",
		"self.ys.push(a);",
	)
}
