package decorate

import (
	"reflect"
	"testing"

	"reluxc/internal/ast"
	"reluxc/internal/diag"
	"reluxc/internal/mapping"
	"reluxc/internal/sema"
	"reluxc/internal/source"
)

type progBuilder struct {
	b    *ast.Builder
	body []ast.ItemID
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

func (p *progBuilder) check(t *testing.T, items ...ast.ItemID) *sema.Result {
	t.Helper()
	decl := p.b.Items.NewContainer(ast.ItemPlugin, p.span, "test_plugin", items)
	prog := &ast.Program{Builder: p.b, Decl: decl}
	bag := diag.NewBag(64)
	res := sema.Check(prog, sema.Options{Reporter: diag.NewBagReporter(bag)})
	if bag.HasErrors() {
		t.Fatalf("check failed: %v", bag.Items())
	}
	return res
}

func TestVisitorPlanFromCatalog(t *testing.T) {
	p := newProg()
	sem := p.check(t, p.visitorFn("Identifier", p.b.Stmts.NewBlock(p.span, nil)))

	dec, err := Run(sem)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if len(dec.Visitors) != 1 {
		t.Fatalf("want 1 visitor plan, got %d", len(dec.Visitors))
	}
	plan := dec.Visitors[0]
	if plan.Babel != "Identifier" || plan.Checker != "isIdentifier" {
		t.Fatalf("bad dynamic plan: %+v", plan)
	}
	if plan.Swc != "Ident" || plan.SwcMethod != "visit_mut_ident" {
		t.Fatalf("bad static plan: %+v", plan)
	}
	if plan.Param != "node" || !plan.Mutates {
		t.Fatalf("bad binding plan: %+v", plan)
	}
}

func TestMemberLoweringDiverges(t *testing.T) {
	p := newProg()
	member := p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "node"), "name")
	let := p.b.Stmts.NewLet(p.span, ast.StmtLetData{
		Name: "n",
		Type: p.b.TypeSyns.NewName(p.span, "str"),
		Init: member,
	})
	sem := p.check(t, p.visitorFn("Identifier", p.b.Stmts.NewBlock(p.span, []ast.StmtID{let})))

	dec, err := Run(sem)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	low, ok := dec.Members[member]
	if !ok {
		t.Fatalf("member access not lowered")
	}
	wantDyn := []FieldStep{{Name: "name", Access: AccessField}}
	if !reflect.DeepEqual(low.Dynamic.FieldPath, wantDyn) {
		t.Fatalf("dynamic path %+v, want %+v", low.Dynamic.FieldPath, wantDyn)
	}
	wantStatic := []FieldStep{{Name: "sym", Access: AccessField}}
	if !reflect.DeepEqual(low.Static.FieldPath, wantStatic) {
		t.Fatalf("static path %+v, want %+v", low.Static.FieldPath, wantStatic)
	}
	if low.Static.Conversion != mapping.ConvHandleToString {
		t.Fatalf("read conversion %v, want handle-to-string", low.Static.Conversion)
	}
	if low.Dynamic.Conversion != mapping.ConvNone {
		t.Fatalf("dynamic backend must erase conversions, got %v", low.Dynamic.Conversion)
	}
}

func TestWriteTargetGetsWriteConversion(t *testing.T) {
	p := newProg()
	target := p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "node"), "name")
	assign := p.b.Exprs.NewAssign(p.span, ast.AssignSet, target,
		p.b.Exprs.NewLit(p.span, ast.LitString, "renamed"))
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{p.b.Stmts.NewExpr(p.span, assign)})
	sem := p.check(t, p.visitorFn("Identifier", body))

	dec, err := Run(sem)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	low := dec.Members[target]
	if low.Static.Conversion != mapping.ConvStringToHandle {
		t.Fatalf("write conversion %v, want string-to-handle", low.Static.Conversion)
	}
}

func TestShapeTestLowering(t *testing.T) {
	p := newProg()
	test := p.b.Exprs.NewMatches(p.span, p.b.Exprs.NewIdent(p.span, "node"), "Identifier")
	cond := p.b.Stmts.NewIf(p.span, ast.StmtIfData{
		Cond: test,
		Then: p.b.Stmts.NewBlock(p.span, nil),
	})
	sem := p.check(t, p.visitorFn("Identifier", p.b.Stmts.NewBlock(p.span, []ast.StmtID{cond})))

	dec, err := Run(sem)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	low, ok := dec.Tests[test]
	if !ok {
		t.Fatalf("shape test not lowered")
	}
	if low.Dynamic.FieldPath[0].Name != "isIdentifier" || low.Dynamic.FieldPath[0].Access != AccessCall {
		t.Fatalf("dynamic test %+v", low.Dynamic)
	}
	if low.Static.VariantTag != "Expr::Ident" {
		t.Fatalf("static variant tag %q, want Expr::Ident", low.Static.VariantTag)
	}
}

func TestGuardStepDecomposition(t *testing.T) {
	p := newProg()
	namePat := p.b.Pats.NewLit(p.span, ast.LitString, "foo")
	nodePat := p.b.Pats.NewNode(p.span, ast.PatNodeData{
		NodeType: "Identifier",
		Binding:  "ident",
		Fields:   []ast.PatFieldConstraint{{Name: "name", Pat: namePat}},
	})
	match := p.b.Stmts.NewMatch(p.span, ast.StmtMatchData{
		Subject: p.b.Exprs.NewIdent(p.span, "node"),
		Arms: []ast.MatchArm{
			{Pat: nodePat, Body: p.b.Stmts.NewBlock(p.span, nil)},
			{Pat: p.b.Pats.NewWildcard(p.span), Body: p.b.Stmts.NewBlock(p.span, nil)},
		},
	})
	sem := p.check(t, p.visitorFn("Identifier", p.b.Stmts.NewBlock(p.span, []ast.StmtID{match})))

	dec, err := Run(sem)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	var plans []ArmPlan
	for _, ps := range dec.Arms {
		plans = ps
	}
	if len(plans) != 2 {
		t.Fatalf("want 2 arm plans, got %d", len(plans))
	}
	steps := plans[0].Steps
	if len(steps) != 3 {
		t.Fatalf("want 3 guard steps, got %+v", steps)
	}
	if steps[0].Kind != GuardTypeTest || steps[0].FallthroughArm {
		// The subject is already checked as Identifier; failure of this
		// step is not a user condition.
		t.Fatalf("step 0: %+v", steps[0])
	}
	if steps[1].Kind != GuardBind || steps[1].Binding != "ident" {
		t.Fatalf("step 1: %+v", steps[1])
	}
	if steps[2].Kind != GuardFieldEq || !steps[2].FallthroughArm || steps[2].Lit != "foo" {
		t.Fatalf("step 2: %+v", steps[2])
	}
	if !plans[1].Wildcard {
		t.Fatalf("second arm must be the wildcard")
	}
}

func TestNestedNodePatternContextVariants(t *testing.T) {
	p := newProg()
	objPat := p.b.Pats.NewNode(p.span, ast.PatNodeData{
		NodeType: "Identifier",
		Fields: []ast.PatFieldConstraint{{
			Name: "name",
			Pat:  p.b.Pats.NewLit(p.span, ast.LitString, "console"),
		}},
	})
	propPat := p.b.Pats.NewNode(p.span, ast.PatNodeData{
		NodeType: "Identifier",
		Fields: []ast.PatFieldConstraint{{
			Name: "name",
			Pat:  p.b.Pats.NewLit(p.span, ast.LitString, "log"),
		}},
	})
	memberPat := p.b.Pats.NewNode(p.span, ast.PatNodeData{
		NodeType: "MemberExpression",
		Fields: []ast.PatFieldConstraint{
			{Name: "object", Pat: objPat},
			{Name: "property", Pat: propPat},
		},
	})
	match := p.b.Stmts.NewMatch(p.span, ast.StmtMatchData{
		Subject: p.b.Exprs.NewIdent(p.span, "node"),
		Arms: []ast.MatchArm{
			{Pat: memberPat, Body: p.b.Stmts.NewBlock(p.span, nil)},
			{Pat: p.b.Pats.NewWildcard(p.span), Body: p.b.Stmts.NewBlock(p.span, nil)},
		},
	})
	sem := p.check(t, p.visitorFn("MemberExpression", p.b.Stmts.NewBlock(p.span, []ast.StmtID{match})))

	dec, err := Run(sem)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	var plans []ArmPlan
	for _, ps := range dec.Arms {
		plans = ps
	}
	steps := plans[0].Steps
	if len(steps) != 5 {
		t.Fatalf("want 5 guard steps, got %+v", steps)
	}
	if steps[0].Kind != GuardTypeTest || steps[0].FallthroughArm {
		t.Fatalf("step 0: %+v", steps[0])
	}
	// The object sits in Expr position, the property in MemberProp
	// position; the same logical node type matches a different variant
	// in each.
	if steps[1].Kind != GuardTypeTest || steps[1].Static.VariantTag != "Expr::Ident" || steps[1].Field != "object" {
		t.Fatalf("step 1: %+v", steps[1])
	}
	if steps[2].Kind != GuardFieldEq || steps[2].Lit != "console" || steps[2].Field != "object.name" {
		t.Fatalf("step 2: %+v", steps[2])
	}
	if steps[3].Kind != GuardTypeTest || steps[3].Static.VariantTag != "MemberProp::Ident" || steps[3].Static.HostType != "IdentName" {
		t.Fatalf("step 3: %+v", steps[3])
	}
	if steps[4].Kind != GuardFieldEq || steps[4].Lit != "log" || steps[4].Field != "property.name" {
		t.Fatalf("step 4: %+v", steps[4])
	}
	for _, i := range []int{1, 2, 3, 4} {
		if !steps[i].FallthroughArm {
			t.Errorf("step %d must fall through to the next arm, got %+v", i, steps[i])
		}
	}
}

func TestCloneAtConsumeThenReuse(t *testing.T) {
	p := newProg()
	// fn keep(s: str) {}  visitor: let s = node.name; keep(s); let n = s.len()
	keep := p.b.Items.NewFn(p.span, ast.ItemFnData{
		Name:   "keep",
		Fn:     ast.FnHelper,
		Params: []ast.Param{{Name: "s", Mode: ast.BindOwned, Type: p.b.TypeSyns.NewName(p.span, "str")}},
		Body:   p.b.Stmts.NewBlock(p.span, nil),
	})
	letS := p.b.Stmts.NewLet(p.span, ast.StmtLetData{
		Name: "s",
		Init: p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "node"), "name"),
	})
	arg := p.b.Exprs.NewIdent(p.span, "s")
	callKeep := p.b.Stmts.NewExpr(p.span, p.b.Exprs.NewCall(p.span,
		p.b.Exprs.NewIdent(p.span, "keep"), []ast.ExprID{arg}))
	reuse := p.b.Stmts.NewLet(p.span, ast.StmtLetData{
		Name: "n",
		Init: p.b.Exprs.NewCall(p.span,
			p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "s"), "len"), nil),
	})
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{letS, callKeep, reuse})
	sem := p.check(t, keep, p.visitorFn("Identifier", body))

	dec, err := Run(sem)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if !dec.Clones[arg] {
		t.Fatalf("consuming use before reuse must be marked for clone")
	}
}

func TestNoCloneWithoutReuse(t *testing.T) {
	p := newProg()
	keep := p.b.Items.NewFn(p.span, ast.ItemFnData{
		Name:   "keep",
		Fn:     ast.FnHelper,
		Params: []ast.Param{{Name: "s", Mode: ast.BindOwned, Type: p.b.TypeSyns.NewName(p.span, "str")}},
		Body:   p.b.Stmts.NewBlock(p.span, nil),
	})
	letS := p.b.Stmts.NewLet(p.span, ast.StmtLetData{
		Name: "s",
		Init: p.b.Exprs.NewLit(p.span, ast.LitString, "x"),
	})
	arg := p.b.Exprs.NewIdent(p.span, "s")
	callKeep := p.b.Stmts.NewExpr(p.span, p.b.Exprs.NewCall(p.span,
		p.b.Exprs.NewIdent(p.span, "keep"), []ast.ExprID{arg}))
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{letS, callKeep})
	sem := p.check(t, keep, p.visitorFn("Identifier", body))

	dec, err := Run(sem)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if dec.Clones[arg] {
		t.Fatalf("final use must move, not clone")
	}
}

func TestCloneWhenConsumedInsideLoop(t *testing.T) {
	p := newProg()
	sink := p.b.Items.NewFn(p.span, ast.ItemFnData{
		Name:   "sink",
		Fn:     ast.FnHelper,
		Params: []ast.Param{{Name: "s", Mode: ast.BindOwned, Type: p.b.TypeSyns.NewName(p.span, "str")}},
		Body:   p.b.Stmts.NewBlock(p.span, nil),
	})
	letS := p.b.Stmts.NewLet(p.span, ast.StmtLetData{
		Name: "s",
		Init: p.b.Exprs.NewLit(p.span, ast.LitString, "x"),
	})
	letXs := p.b.Stmts.NewLet(p.span, ast.StmtLetData{
		Name: "xs",
		Type: p.b.TypeSyns.NewList(p.span, p.b.TypeSyns.NewName(p.span, "str")),
		Init: p.b.Exprs.NewListInit(p.span, nil),
	})
	arg := p.b.Exprs.NewIdent(p.span, "s")
	loopBody := p.b.Stmts.NewBlock(p.span, []ast.StmtID{
		p.b.Stmts.NewExpr(p.span, p.b.Exprs.NewCall(p.span,
			p.b.Exprs.NewIdent(p.span, "sink"), []ast.ExprID{arg})),
	})
	loop := p.b.Stmts.NewFor(p.span, ast.StmtForData{
		Binding: "x",
		Iter:    p.b.Exprs.NewIdent(p.span, "xs"),
		Body:    loopBody,
	})
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{letS, letXs, loop})
	sem := p.check(t, sink, p.visitorFn("Identifier", body))

	dec, err := Run(sem)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if !dec.Clones[arg] {
		t.Fatalf("value consumed inside a loop but declared outside must clone")
	}
}

func TestCloneWhenConsumingBorrowedProjection(t *testing.T) {
	p := newProg()
	// Replacing a node with one of its own fields moves out of a borrow;
	// the static backend must clone even though the value is never reused.
	arg := p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "node"), "object")
	call := p.b.Exprs.NewCall(p.span,
		p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "node"), "replace_with"),
		[]ast.ExprID{arg})
	body := p.b.Stmts.NewBlock(p.span, []ast.StmtID{p.b.Stmts.NewExpr(p.span, call)})
	sem := p.check(t, p.visitorFn("MemberExpression", body))

	dec, err := Run(sem)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if !dec.Clones[arg] {
		t.Fatalf("projection out of a borrowed node must clone at the consuming site")
	}
}

func TestRunIsDeterministic(t *testing.T) {
	p := newProg()
	member := p.b.Exprs.NewMember(p.span, p.b.Exprs.NewIdent(p.span, "node"), "name")
	let := p.b.Stmts.NewLet(p.span, ast.StmtLetData{
		Name: "n",
		Type: p.b.TypeSyns.NewName(p.span, "str"),
		Init: member,
	})
	sem := p.check(t, p.visitorFn("Identifier", p.b.Stmts.NewBlock(p.span, []ast.StmtID{let})))

	first, err := Run(sem)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	second, err := Run(sem)
	if err != nil {
		t.Fatalf("decorate: %v", err)
	}
	if !reflect.DeepEqual(first.Visitors, second.Visitors) {
		t.Fatalf("visitor plans differ across runs")
	}
	if !reflect.DeepEqual(first.Members, second.Members) {
		t.Fatalf("member lowerings differ across runs")
	}
	if !reflect.DeepEqual(first.Clones, second.Clones) {
		t.Fatalf("clone flags differ across runs")
	}
}
