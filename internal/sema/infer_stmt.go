package sema

import (
	"fmt"

	"reluxc/internal/ast"
	"reluxc/internal/diag"
	"reluxc/internal/types"
)

func (c *checker) checkFn(itemID ast.ItemID) {
	data, ok := c.builder.Items.Fn(itemID)
	if !ok {
		return
	}
	item := c.builder.Items.Get(itemID)

	fnScope := newScope(c.global)
	owns := c.result.ParamOwnership[itemID]
	for i, p := range data.Params {
		own := types.OwnOwned
		if i < len(owns) {
			own = owns[i]
		}
		sym := &Symbol{
			Name:    p.Name,
			Kind:    SymParam,
			Type:    c.typeFromSyn(p.Type),
			Own:     own,
			Mutable: own.AllowsMutation(),
			Span:    p.Span,
		}
		if prev, ok := fnScope.declare(sym); !ok {
			d := diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.SemaDuplicateSymbol,
				Message:  fmt.Sprintf("parameter %q is already declared", p.Name),
				Primary:  p.Span,
			}
			c.report(d.WithNote(prev.Span, "previous declaration here"))
		}
	}

	// Traversal hooks see the plugin state aggregate through `self`.
	c.inVisitor = data.Fn != ast.FnHelper
	if c.inVisitor && c.result.StateStruct != types.NoTypeID {
		fnScope.declare(&Symbol{
			Name:    "self",
			Kind:    SymSelf,
			Type:    c.result.StateStruct,
			Own:     types.OwnMutBorrowed,
			Mutable: true,
			Span:    item.Span,
		})
	}

	c.fnRet = c.types.Builtins().Unit
	if data.Ret.IsValid() {
		c.fnRet = c.typeFromSyn(data.Ret)
	}

	returned := c.checkBlock(data.Body, fnScope)
	if c.fnRet != c.types.Builtins().Unit && !returned {
		diag.ReportError(c.reporter, diag.SemaMissingReturn, item.Span,
			fmt.Sprintf("function %q must return %s on every path", data.Name, c.types.DisplayName(c.fnRet)))
	}
}

// checkBlock checks a block statement in a fresh scope and reports whether
// every path through it returns.
func (c *checker) checkBlock(id ast.StmtID, parent *scope) bool {
	data, ok := c.builder.Stmts.Block(id)
	if !ok {
		return false
	}
	sc := newScope(parent)
	returned := false
	for _, stmtID := range data.Stmts {
		if c.checkStmt(stmtID, sc) {
			returned = true
		}
	}
	return returned
}

// checkStmt checks one statement and reports whether it guarantees a return.
func (c *checker) checkStmt(id ast.StmtID, sc *scope) bool {
	stmt := c.builder.Stmts.Get(id)
	if stmt == nil {
		return false
	}
	b := c.types.Builtins()

	switch stmt.Kind {
	case ast.StmtBlock:
		return c.checkBlock(id, sc)

	case ast.StmtLet:
		data, _ := c.builder.Stmts.Let(id)
		expected := types.NoTypeID
		if data.Type.IsValid() {
			expected = c.typeFromSyn(data.Type)
		}
		actual := c.inferExpr(data.Init, expected, sc)

		bindType := actual
		if expected != types.NoTypeID {
			if !c.types.AssignableTo(actual, expected) {
				diag.ReportError(c.reporter, c.mismatchCode(actual, expected), stmt.Span,
					fmt.Sprintf("cannot assign %s to binding of type %s",
						c.types.DisplayName(actual), c.types.DisplayName(expected)))
			}
			bindType = c.types.Unify(actual, expected)
		}
		if c.types.ContainsUnknown(bindType) {
			diag.ReportError(c.reporter, diag.SemaResidualUnknown, stmt.Span,
				fmt.Sprintf("type of %q cannot be fully inferred; add an annotation", data.Name))
		}
		sym := &Symbol{
			Name:    data.Name,
			Kind:    SymLet,
			Type:    bindType,
			Own:     types.OwnOwned,
			Mutable: data.Mutable,
			Span:    stmt.Span,
		}
		if prev, ok := sc.declare(sym); !ok {
			d := diag.Diagnostic{
				Severity: diag.SevError,
				Code:     diag.SemaDuplicateSymbol,
				Message:  fmt.Sprintf("binding %q is already declared in this scope", data.Name),
				Primary:  stmt.Span,
			}
			c.report(d.WithNote(prev.Span, "previous declaration here"))
		}
		return false

	case ast.StmtExpr:
		data, _ := c.builder.Stmts.Expr(id)
		c.inferExpr(data.Expr, types.NoTypeID, sc)
		return false

	case ast.StmtIf:
		data, _ := c.builder.Stmts.If(id)
		cond := c.inferExpr(data.Cond, b.Bool, sc)
		if !c.types.AssignableTo(cond, b.Bool) {
			diag.ReportError(c.reporter, diag.SemaInvalidCondition, c.builder.Exprs.Get(data.Cond).Span,
				fmt.Sprintf("condition must be bool, got %s", c.types.DisplayName(cond)))
		}
		thenReturns := c.checkStmtAsBranch(data.Then, sc)
		elseReturns := false
		if data.Else.IsValid() {
			elseReturns = c.checkStmtAsBranch(data.Else, sc)
		}
		return thenReturns && elseReturns

	case ast.StmtMatch:
		data, _ := c.builder.Stmts.Match(id)
		subject := c.inferExpr(data.Subject, types.NoTypeID, sc)
		allReturn := len(data.Arms) > 0
		for _, arm := range data.Arms {
			armScope := newScope(sc)
			c.checkPat(arm.Pat, subject, armScope)
			if arm.Guard.IsValid() {
				guard := c.inferExpr(arm.Guard, b.Bool, armScope)
				if !c.types.AssignableTo(guard, b.Bool) {
					diag.ReportError(c.reporter, diag.SemaInvalidCondition, arm.Span,
						fmt.Sprintf("match guard must be bool, got %s", c.types.DisplayName(guard)))
				}
			}
			if !c.checkStmtAsBranch(arm.Body, armScope) {
				allReturn = false
			}
		}
		return allReturn

	case ast.StmtFor:
		data, _ := c.builder.Stmts.For(id)
		iter := c.inferExpr(data.Iter, types.NoTypeID, sc)
		elem := c.elementType(iter)
		if elem == types.NoTypeID {
			diag.ReportError(c.reporter, diag.SemaTypeMismatch, stmt.Span,
				fmt.Sprintf("cannot iterate over %s", c.types.DisplayName(iter)))
			elem = b.Unknown
		}
		bodyScope := newScope(sc)
		own := types.OwnBorrowed
		if t, ok := c.types.Lookup(elem); ok && t.IsCopy() {
			own = types.OwnOwned
		}
		bodyScope.declare(&Symbol{
			Name: data.Binding,
			Kind: SymLet,
			Type: elem,
			Own:  own,
			Span: stmt.Span,
		})
		c.checkBlock(data.Body, bodyScope)
		return false

	case ast.StmtWhile:
		data, _ := c.builder.Stmts.While(id)
		cond := c.inferExpr(data.Cond, b.Bool, sc)
		if !c.types.AssignableTo(cond, b.Bool) {
			diag.ReportError(c.reporter, diag.SemaInvalidCondition, c.builder.Exprs.Get(data.Cond).Span,
				fmt.Sprintf("condition must be bool, got %s", c.types.DisplayName(cond)))
		}
		c.checkBlock(data.Body, sc)
		return false

	case ast.StmtReturn:
		data, _ := c.builder.Stmts.Return(id)
		if data.Value.IsValid() {
			value := c.inferExpr(data.Value, c.fnRet, sc)
			if !c.types.AssignableTo(value, c.fnRet) {
				diag.ReportError(c.reporter, diag.SemaTypeMismatch, stmt.Span,
					fmt.Sprintf("cannot return %s from a function declared to return %s",
						c.types.DisplayName(value), c.types.DisplayName(c.fnRet)))
			}
		} else if c.fnRet != b.Unit {
			diag.ReportError(c.reporter, diag.SemaTypeMismatch, stmt.Span,
				fmt.Sprintf("bare return in a function declared to return %s", c.types.DisplayName(c.fnRet)))
		}
		return true

	case ast.StmtBreak, ast.StmtContinue:
		return false
	}
	return false
}

// checkStmtAsBranch checks an if/match branch body, which is a block in the
// grammar but tolerated as any statement here.
func (c *checker) checkStmtAsBranch(id ast.StmtID, sc *scope) bool {
	stmt := c.builder.Stmts.Get(id)
	if stmt == nil {
		return false
	}
	if stmt.Kind == ast.StmtBlock {
		return c.checkBlock(id, sc)
	}
	return c.checkStmt(id, newScope(sc))
}

// elementType returns what a for loop binds when iterating the given type.
func (c *checker) elementType(iter types.TypeID) types.TypeID {
	t, ok := c.types.Lookup(iter)
	if !ok {
		return types.NoTypeID
	}
	switch t.Kind {
	case types.KindList, types.KindSet:
		return t.Elem
	case types.KindUnknown:
		return c.types.Builtins().Unknown
	}
	return types.NoTypeID
}

// mismatchCode picks the diagnostic code for a failed assignability check:
// container-parameter failures get their own code.
func (c *checker) mismatchCode(actual, expected types.TypeID) diag.Code {
	at, aok := c.types.Lookup(actual)
	et, eok := c.types.Lookup(expected)
	if aok && eok && at.Kind == et.Kind && at.Kind.IsContainer() {
		return diag.SemaUnassignableContainer
	}
	return diag.SemaTypeMismatch
}

func (c *checker) report(d diag.Diagnostic) {
	if c.reporter != nil {
		c.reporter.Report(d)
	}
}
