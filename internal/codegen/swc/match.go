package swc

import (
	"fmt"
	"strconv"

	"reluxc/internal/ast"
	"reluxc/internal/decorate"
	"reluxc/internal/mapping"
	"reluxc/internal/types"
)

// match renders a match statement. Structural matches over host nodes
// become a labeled block of guard chains; value matches become a native
// match expression.
func (g *generator) match(id ast.StmtID) {
	data, _ := g.builder.Stmts.Match(id)
	plans, structural := g.dec.Arms[id]
	if structural && g.typeKind(data.Subject) == types.KindHostNode {
		g.structuralMatch(data, plans)
		return
	}
	g.valueMatch(data)
}

func (g *generator) structuralMatch(data *ast.StmtMatchData, plans []decorate.ArmPlan) {
	label := fmt.Sprintf("'m%d", g.labels)
	g.labels++

	subject := g.exprInner(data.Subject)

	g.e.Linef("%s: {", label)
	g.e.Indent()
	for i, arm := range data.Arms {
		var steps []decorate.GuardStep
		if i < len(plans) {
			steps = plans[i].Steps
		}
		g.armChain(steps, subject, arm.Body, label)
	}
	g.e.Dedent()
	g.e.Line("}")
}

// armChain nests one if per fallthrough step, binds in order, then runs
// the body and breaks out of the match. Each passed type test rebinds the
// access variable to the destructured payload; later steps whose field
// path extends the test's path resolve relative to that binding, so a
// nested shape pattern becomes a chain of if-lets instead of one
// unwritable field expression through an enum payload.
func (g *generator) armChain(steps []decorate.GuardStep, subject string, body ast.StmtID, label string) {
	access := subject
	var prefix []decorate.FieldStep
	depth := 0
	open := func(header string) {
		g.e.Line(header)
		g.e.Indent()
		depth++
	}
	place := func(info decorate.LoweringInfo) string {
		if rest, ok := trimPathPrefix(info.FieldPath, prefix); ok {
			return access + fieldPathRust(rest)
		}
		return subject + fieldPathRust(info.FieldPath)
	}

	for _, step := range steps {
		switch step.Kind {
		case decorate.GuardTypeTest:
			if !step.FallthroughArm {
				// Category already proven by the subject's checked type.
				continue
			}
			inner := fmt.Sprintf("__n%d", g.labels)
			g.labels++
			open(fmt.Sprintf("if let %s(%s) = %s {", step.Static.VariantTag, inner, testTarget(subject, access, prefix, step.Static.FieldPath)))
			access = inner
			prefix = step.Static.FieldPath
		case decorate.GuardFieldEq:
			open(fmt.Sprintf("if %s {", g.stepEq(step, place(step.Static))))
		case decorate.GuardFieldSome:
			open(fmt.Sprintf("if %s.is_some() {", place(step.Static)))
		case decorate.GuardBind:
			if depth == 0 {
				open("{")
			}
			g.e.Line(g.stepBind(step, place(step.Static)))
		case decorate.GuardExpr:
			open(fmt.Sprintf("if %s {", g.expr(step.Guard)))
		}
	}
	if depth == 0 {
		open("{")
	}

	g.branchBody(body)
	g.e.Linef("break %s;", label)
	for ; depth > 0; depth-- {
		g.e.Dedent()
		g.e.Line("}")
	}
}

// testTarget renders the scrutinee of a type-test if-let. A boxed field
// takes an explicit deref so the pattern sees the payload enum.
func testTarget(subject, access string, prefix, path []decorate.FieldStep) string {
	base := subject
	rest := path
	if r, ok := trimPathPrefix(path, prefix); ok {
		base, rest = access, r
	}
	if len(rest) == 0 {
		return base
	}
	deref := ""
	for _, s := range rest {
		if s.Access == decorate.AccessDeref {
			deref = "*"
		}
	}
	return fmt.Sprintf("&mut %s%s%s", deref, base, fieldPathRust(rest))
}

func trimPathPrefix(path, prefix []decorate.FieldStep) ([]decorate.FieldStep, bool) {
	if len(prefix) > len(path) {
		return nil, false
	}
	for i, p := range prefix {
		if path[i] != p {
			return nil, false
		}
	}
	return path[len(prefix):], true
}

func (g *generator) stepEq(step decorate.GuardStep, lhs string) string {
	rhs := step.Lit
	if step.LitKind == ast.LitString {
		rhs = strconv.Quote(step.Lit)
	}
	if step.Static.Conversion == mapping.ConvEnumToTag {
		return fmt.Sprintf("%s.as_str() == %s", lhs, rhs)
	}
	return fmt.Sprintf("%s == %s", lhs, rhs)
}

func (g *generator) stepBind(step decorate.GuardStep, path string) string {
	if len(step.Static.FieldPath) == 0 && step.Field == "" {
		// Whole-node binding reborrows the subject.
		return fmt.Sprintf("let %s = &mut *%s;", step.Binding, path)
	}
	switch step.Static.Conversion {
	case mapping.ConvHandleToString, mapping.ConvEnumToTag:
		return fmt.Sprintf("let %s = %s.to_string();", step.Binding, path)
	}
	return fmt.Sprintf("let %s = &%s;", step.Binding, path)
}

// valueMatch renders a native match; a synthetic wildcard arm keeps the
// match exhaustive when the written arms carry guards or literals.
func (g *generator) valueMatch(data *ast.StmtMatchData) {
	subject := g.exprInner(data.Subject)
	switch g.typeKind(data.Subject) {
	case types.KindString:
		subject += ".as_str()"
	case types.KindInt, types.KindFloat, types.KindBool:
		// Copy subjects match by value.
	default:
		subject = "&" + subject
	}

	enumName := ""
	if t, ok := g.dec.Sem.Types.Lookup(g.dec.Sem.ExprTypes[data.Subject]); ok && t.Kind == types.KindEnum {
		if info, ok := g.dec.Sem.Types.Enum(g.dec.Sem.ExprTypes[data.Subject]); ok {
			enumName = info.Name
		}
	}

	g.e.Linef("match %s {", subject)
	g.e.Indent()
	sawWildcard := false
	for _, arm := range data.Arms {
		pat := g.patRust(arm.Pat, enumName)
		if pat == "_" {
			sawWildcard = true
		}
		if arm.Guard.IsValid() {
			g.e.Linef("%s if %s => {", pat, g.expr(arm.Guard))
		} else {
			g.e.Linef("%s => {", pat)
		}
		g.e.Indent()
		g.branchBody(arm.Body)
		g.e.Dedent()
		g.e.Line("}")
	}
	if !sawWildcard {
		g.e.Line("_ => {}")
	}
	g.e.Dedent()
	g.e.Line("}")
}

func (g *generator) patRust(id ast.PatID, enumName string) string {
	pat := g.builder.Pats.Get(id)
	if pat == nil {
		return "_"
	}
	switch pat.Kind {
	case ast.PatWildcard:
		return "_"
	case ast.PatLit:
		data, _ := g.builder.Pats.Lit(id)
		if data.Kind == ast.LitString {
			return strconv.Quote(data.Value)
		}
		return data.Value
	case ast.PatBind:
		data, _ := g.builder.Pats.Bind(id)
		return data.Name
	case ast.PatVariant:
		data, _ := g.builder.Pats.Variant(id)
		name := data.Enum
		if name == "" {
			name = enumName
		}
		tag := name + "::" + data.Variant
		if len(data.Params) == 0 {
			return tag
		}
		parts := make([]string, len(data.Params))
		for i, sub := range data.Params {
			parts[i] = g.patRust(sub, enumName)
		}
		return tag + "(" + joinComma(parts) + ")"
	case ast.PatStruct:
		data, _ := g.builder.Pats.Struct(id)
		parts := make([]string, 0, len(data.Fields)+1)
		for _, f := range data.Fields {
			parts = append(parts, f.Name+": "+g.patRust(f.Pat, enumName))
		}
		parts = append(parts, "..")
		return data.Name + " { " + joinComma(parts) + " }"
	}
	return "_"
}

func joinComma(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
