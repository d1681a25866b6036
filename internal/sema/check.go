// Package sema performs semantic analysis over a parsed plugin program:
// symbol binding, bidirectional type inference, ownership validation and
// vector-alignment rejection. All failures accumulate as diagnostics; the
// checker never aborts on the first error.
package sema

import (
	"reluxc/internal/ast"
	"reluxc/internal/diag"
	"reluxc/internal/types"
)

// Options configure one semantic pass.
type Options struct {
	Reporter diag.Reporter
	Types    *types.Interner
}

// VisitorInfo records one visitor method after resolution.
type VisitorInfo struct {
	Item     ast.ItemID
	NodeType string
	Mutates  bool
}

// Result stores the semantic artefacts later phases read. Node types live
// in side tables keyed by node ID; the AST itself is never touched.
type Result struct {
	Types     *types.Interner
	Program   *ast.Program
	ExprTypes map[ast.ExprID]types.TypeID
	// BindOwnership records the resolved qualifier of every named binding,
	// keyed by declaring node. Qualifiers are never revised after Check.
	ParamOwnership map[ast.ItemID][]types.Ownership
	// Visitors lists visitor fns in declaration order.
	Visitors []VisitorInfo
	// StateStruct is the plugin-local state aggregate (NoTypeID when the
	// plugin declares none).
	StateStruct types.TypeID
	// StateItem is the declaring item of the state struct.
	StateItem ast.ItemID
	// PatBinds records the type of every pattern binding.
	PatBinds map[ast.PatID]types.TypeID
}

// Check runs the full semantic pass over one program.
func Check(program *ast.Program, opts Options) *Result {
	res := &Result{
		Program:        program,
		ExprTypes:      make(map[ast.ExprID]types.TypeID),
		ParamOwnership: make(map[ast.ItemID][]types.Ownership),
		PatBinds:       make(map[ast.PatID]types.TypeID),
	}
	if opts.Types != nil {
		res.Types = opts.Types
	} else {
		res.Types = types.NewInterner()
	}
	if program == nil || program.Builder == nil {
		return res
	}

	c := &checker{
		program:  program,
		builder:  program.Builder,
		reporter: opts.Reporter,
		types:    res.Types,
		result:   res,
	}
	c.run()
	return res
}

type checker struct {
	program  *ast.Program
	builder  *ast.Builder
	reporter diag.Reporter
	types    *types.Interner
	result   *Result

	global *scope
	// current fn context
	fnRet     types.TypeID
	inVisitor bool
}

func (c *checker) run() {
	c.global = newScope(nil)

	container, ok := c.builder.Items.Container(c.program.Decl)
	if !ok {
		return
	}

	// Phase 1: declare nominal types and function signatures so bodies can
	// reference them in any order.
	c.declareTypes(container.Body)
	c.declareFns(container.Body)

	// Phase 2: check bodies.
	for _, itemID := range container.Body {
		item := c.builder.Items.Get(itemID)
		if item == nil || item.Kind != ast.ItemFn {
			continue
		}
		c.checkFn(itemID)
	}
}
