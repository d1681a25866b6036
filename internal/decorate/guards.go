package decorate

import (
	"reluxc/internal/ast"
	"reluxc/internal/mapping"
	"reluxc/internal/types"
)

// GuardKind classifies one decomposed guard step.
type GuardKind uint8

const (
	// GuardTypeTest checks the node's physical category.
	GuardTypeTest GuardKind = iota
	// GuardFieldEq compares one lowered field against a literal.
	GuardFieldEq
	// GuardFieldSome checks presence of an optional field.
	GuardFieldSome
	// GuardBind introduces a named binding for the matched value.
	GuardBind
	// GuardExpr evaluates the arm's written guard expression.
	GuardExpr
)

// GuardStep is one ordered check or binding produced from a structural
// pattern. Steps run in order; a failed step with FallthroughArm set skips
// to the next arm, while a failed non-fallthrough step aborts the whole
// match as an internal inconsistency.
type GuardStep struct {
	Kind    GuardKind
	Field   string
	Lit     string
	LitKind ast.LitKind
	Binding string
	Guard   ast.ExprID
	Dynamic LoweringInfo
	Static  LoweringInfo
	// FallthroughArm is clear only for category tests the checker already
	// proved, where failure cannot be a user-visible condition.
	FallthroughArm bool
}

// ArmPlan is the decomposition of one match arm.
type ArmPlan struct {
	Pat      ast.PatID
	Body     ast.StmtID
	Steps    []GuardStep
	Wildcard bool
}

func (d *decorator) decorateMatch(id ast.StmtID) {
	data, _ := d.builder.Stmts.Match(id)
	d.walkExpr(data.Subject, false)

	subjectType := d.sem.ExprTypes[data.Subject]
	st, _ := d.sem.Types.Lookup(subjectType)
	structural := st.Kind == types.KindHostNode
	subjectNode := ""
	if structural {
		subjectNode, _ = d.sem.Types.HostNodeName(subjectType)
	}

	var plans []ArmPlan
	for _, arm := range data.Arms {
		plan := ArmPlan{Pat: arm.Pat, Body: arm.Body}
		pat := d.builder.Pats.Get(arm.Pat)
		if pat != nil && pat.Kind == ast.PatWildcard {
			plan.Wildcard = true
		}
		if pat != nil && pat.Kind == ast.PatNode {
			steps, err := d.nodePatSteps(arm.Pat, subjectNode, "")
			if err != nil {
				d.err = err
				return
			}
			plan.Steps = steps
		}
		if arm.Guard.IsValid() {
			d.walkExpr(arm.Guard, false)
			plan.Steps = append(plan.Steps, GuardStep{
				Kind:           GuardExpr,
				Guard:          arm.Guard,
				FallthroughArm: true,
			})
		}
		d.walkStmt(arm.Body)
		plans = append(plans, plan)
	}
	if structural || anySteps(plans) {
		d.out.Arms[id] = plans
	}
}

func anySteps(plans []ArmPlan) bool {
	for _, p := range plans {
		if len(p.Steps) > 0 {
			return true
		}
	}
	return false
}

// nodePatSteps decomposes one node-shape pattern. subjectNode is the
// checked category of the subject, empty when the subject is generic.
// swcContext names the static-backend wrapping enum of the position the
// pattern sits in; nested patterns match a context-specific variant, an
// Identifier under a member property is MemberProp::Ident, not Expr::Ident.
func (d *decorator) nodePatSteps(id ast.PatID, subjectNode, swcContext string) ([]GuardStep, error) {
	pat := d.builder.Pats.Get(id)
	data, _ := d.builder.Pats.Node(id)

	nm, ok := mapping.Node(data.NodeType)
	if !ok {
		return nil, &InternalLoweringError{NodeKind: data.NodeType, Backend: BackendStatic, Span: pat.Span}
	}

	var steps []GuardStep
	static := LoweringInfo{HostType: nm.Swc}
	if swcContext != "" {
		enum, variant, bound, ok := mapping.ContextVariant(data.NodeType, swcContext)
		if !ok {
			return nil, &InternalLoweringError{NodeKind: data.NodeType, Backend: BackendStatic, Span: pat.Span}
		}
		static.HostType = bound
		if enum != "" {
			static.VariantTag = enum + "::" + variant
		}
	} else if nm.SwcEnum != "" {
		static.VariantTag = nm.SwcEnum + "::" + nm.SwcVariant
	}
	steps = append(steps, GuardStep{
		Kind:    GuardTypeTest,
		Dynamic: LoweringInfo{HostType: nm.Babel, FieldPath: []FieldStep{{Name: nm.BabelChecker, Access: AccessCall}}},
		Static:  static,
		// The category test can only fail when the subject category was
		// not already proven upstream.
		FallthroughArm: subjectNode != data.NodeType,
	})

	if data.Binding != "" {
		steps = append(steps, GuardStep{Kind: GuardBind, Binding: data.Binding})
	}

	for _, f := range data.Fields {
		fm, ok := mapping.Field(data.NodeType, f.Name)
		if !ok {
			return nil, &InternalLoweringError{NodeKind: data.NodeType + "." + f.Name, Backend: BackendStatic, Span: f.Span}
		}
		dyn := LoweringInfo{HostType: nm.Babel, FieldPath: fieldPath(fm.Babel, false)}
		sta := LoweringInfo{HostType: nm.Swc, FieldPath: fieldPath(fm.Swc, fm.NeedsDeref), Conversion: fm.ReadConv}

		sub := d.builder.Pats.Get(f.Pat)
		if sub == nil {
			continue
		}
		switch sub.Kind {
		case ast.PatWildcard:
			if fm.Optional {
				steps = append(steps, GuardStep{
					Kind: GuardFieldSome, Field: f.Name,
					Dynamic: dyn, Static: sta, FallthroughArm: true,
				})
			}
		case ast.PatLit:
			lit, _ := d.builder.Pats.Lit(f.Pat)
			steps = append(steps, GuardStep{
				Kind: GuardFieldEq, Field: f.Name,
				Lit: lit.Value, LitKind: lit.Kind,
				Dynamic: dyn, Static: sta, FallthroughArm: true,
			})
		case ast.PatBind:
			bind, _ := d.builder.Pats.Bind(f.Pat)
			steps = append(steps, GuardStep{
				Kind: GuardBind, Field: f.Name, Binding: bind.Name,
				Dynamic: dyn, Static: sta,
			})
		case ast.PatNode:
			nested, err := d.nodePatSteps(f.Pat, "", fm.SwcType)
			if err != nil {
				return nil, err
			}
			// Nested steps test the field, not the subject; prefix the
			// field path onto each step so generators emit one chain.
			for _, n := range nested {
				n.Field = joinField(f.Name, n.Field)
				n.Dynamic.FieldPath = append(append([]FieldStep{}, dyn.FieldPath...), n.Dynamic.FieldPath...)
				n.Static.FieldPath = append(append([]FieldStep{}, sta.FieldPath...), n.Static.FieldPath...)
				steps = append(steps, n)
			}
		}
	}
	return steps, nil
}

func joinField(outer, inner string) string {
	if inner == "" {
		return outer
	}
	return outer + "." + inner
}
