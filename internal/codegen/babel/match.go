package babel

import (
	"fmt"

	"reluxc/internal/ast"
	"reluxc/internal/decorate"
	"reluxc/internal/types"
)

// match renders a match statement as a labeled block of guarded arms; a
// taken arm breaks out, a failed arm falls through to the next one.
func (g *generator) match(id ast.StmtID) {
	data, _ := g.builder.Stmts.Match(id)
	label := fmt.Sprintf("m%d", g.labels)
	g.labels++

	subject := g.expr(data.Subject)
	if _, isIdent := g.builder.Exprs.Ident(data.Subject); !isIdent {
		tmp := fmt.Sprintf("__%s", label)
		g.e.Linef("const %s = %s;", tmp, subject)
		subject = tmp
	}

	// Step chains only apply to structural matches over host nodes;
	// a guarded value match keeps its written pattern condition.
	plans, structural := g.dec.Arms[id]
	structural = structural && g.typeKind(data.Subject) == types.KindHostNode

	g.e.Linef("%s: {", label)
	g.e.Indent()
	for i, arm := range data.Arms {
		var conds, binds []string
		if structural && i < len(plans) && len(plans[i].Steps) > 0 {
			conds, binds = g.stepChecks(plans[i].Steps, subject)
		} else {
			conds, binds = g.patChecks(arm.Pat, subject)
			if arm.Guard.IsValid() {
				conds = append(conds, g.expr(arm.Guard))
			}
		}
		g.armBody(conds, binds, arm.Body, label)
	}
	g.e.Dedent()
	g.e.Line("}")
}

func (g *generator) armBody(conds, binds []string, body ast.StmtID, label string) {
	if len(conds) == 0 {
		g.e.Line("{")
	} else {
		g.e.Write("if (")
		for i, c := range conds {
			if i > 0 {
				g.e.Raw(" && ")
			}
			g.e.Raw(c)
		}
		g.e.Raw(") {\n")
	}
	g.e.Indent()
	for _, b := range binds {
		g.e.Line(b)
	}
	g.branchBody(body)
	g.e.Linef("break %s;", label)
	g.e.Dedent()
	g.e.Line("}")
}

// stepChecks turns decomposed guard steps into conditions and bindings
// relative to the subject.
func (g *generator) stepChecks(steps []decorate.GuardStep, subject string) (conds, binds []string) {
	for _, step := range steps {
		access := subject + pathJS(step.Dynamic.FieldPath)
		switch step.Kind {
		case decorate.GuardTypeTest:
			// The checker call is the last path step; everything before
			// it addresses the tested field. A test with no checker is
			// static-backend bookkeeping with no dynamic rendition.
			path := step.Dynamic.FieldPath
			if n := len(path); n > 0 && path[n-1].Access == decorate.AccessCall {
				conds = append(conds, fmt.Sprintf("t.%s(%s)", path[n-1].Name, subject+pathJS(path[:n-1])))
			}
		case decorate.GuardFieldEq:
			conds = append(conds, fmt.Sprintf("%s === %s", access, litJS(step.LitKind, step.Lit)))
		case decorate.GuardFieldSome:
			conds = append(conds, fmt.Sprintf("%s != null", access))
		case decorate.GuardBind:
			binds = append(binds, fmt.Sprintf("const %s = %s;", step.Binding, access))
		case decorate.GuardExpr:
			conds = append(conds, g.expr(step.Guard))
		}
	}
	return conds, binds
}

// patChecks renders value-pattern conditions against an accessor string.
func (g *generator) patChecks(id ast.PatID, access string) (conds, binds []string) {
	pat := g.builder.Pats.Get(id)
	if pat == nil {
		return nil, nil
	}
	switch pat.Kind {
	case ast.PatWildcard:
		return nil, nil
	case ast.PatLit:
		data, _ := g.builder.Pats.Lit(id)
		return []string{fmt.Sprintf("%s === %s", access, litJS(data.Kind, data.Value))}, nil
	case ast.PatBind:
		data, _ := g.builder.Pats.Bind(id)
		return nil, []string{fmt.Sprintf("const %s = %s;", data.Name, access)}
	case ast.PatVariant:
		data, _ := g.builder.Pats.Variant(id)
		conds = append(conds, fmt.Sprintf("%s.tag === %q", access, data.Variant))
		for i, sub := range data.Params {
			c, b := g.patChecks(sub, fmt.Sprintf("%s.values[%d]", access, i))
			conds = append(conds, c...)
			binds = append(binds, b...)
		}
		return conds, binds
	case ast.PatStruct:
		data, _ := g.builder.Pats.Struct(id)
		for _, f := range data.Fields {
			c, b := g.patChecks(f.Pat, access+"."+f.Name)
			conds = append(conds, c...)
			binds = append(binds, b...)
		}
		return conds, binds
	}
	return nil, nil
}
