package sema

import (
	"fmt"

	"reluxc/internal/ast"
	"reluxc/internal/diag"
)

// checkMutation validates a write through a place expression. The place is
// walked down member and index steps to its root binding; the root's
// qualifier decides legality. Qualifiers were fixed at resolution and are
// never revised here.
func (c *checker) checkMutation(target ast.ExprID, sc *scope) {
	root, ok := c.rootBinding(target)
	if !ok {
		expr := c.builder.Exprs.Get(target)
		diag.ReportError(c.reporter, diag.SemaIllegalMutation, expr.Span,
			"target of a mutation must be a binding, field or element")
		return
	}

	identData, _ := c.builder.Exprs.Ident(root)
	sym, found := sc.lookup(identData.Name)
	if !found {
		// Undefined root already reported by inference.
		return
	}
	span := c.builder.Exprs.Get(target).Span

	if !sym.Own.AllowsMutation() {
		diag.ReportError(c.reporter, diag.SemaIllegalMutation, span,
			fmt.Sprintf("cannot mutate through %s binding %q", sym.Own, sym.Name))
		return
	}
	if sym.Kind == SymLet && !sym.Mutable {
		diag.ReportError(c.reporter, diag.SemaIllegalMutation, span,
			fmt.Sprintf("binding %q is immutable; declare it with `let mut`", sym.Name))
	}
}

// rootBinding walks member and index steps down to the identifier the place
// expression ultimately reads. Reports false for non-place expressions.
func (c *checker) rootBinding(id ast.ExprID) (ast.ExprID, bool) {
	for {
		expr := c.builder.Exprs.Get(id)
		if expr == nil {
			return ast.NoExprID, false
		}
		switch expr.Kind {
		case ast.ExprIdent:
			return id, true
		case ast.ExprMember:
			data, _ := c.builder.Exprs.Member(id)
			id = data.Object
		case ast.ExprIndex:
			data, _ := c.builder.Exprs.Index(id)
			id = data.Object
		default:
			return ast.NoExprID, false
		}
	}
}
