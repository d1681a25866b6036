// Package swc renders a decorated program as an SWC VisitMut plugin. This
// backend honors ownership: borrows and derefs follow the recorded
// qualifiers and clones appear exactly where the decorator marked them.
package swc

import (
	"strings"

	"reluxc/internal/ast"
	"reluxc/internal/codegen"
	"reluxc/internal/decorate"
	"reluxc/internal/types"
)

type generator struct {
	dec     *decorate.DecoratedProgram
	builder *ast.Builder
	e       *codegen.Emitter
	// hookParam names the node binding of the hook being emitted.
	hookParam string
	labels    int
	// import flags discovered while rendering.
	needMap  bool
	needSet  bool
	needTake bool
	// fnOwners caches parameter ownership by fn name for call sites.
	fnOwners map[string][]types.Ownership
	err      error
}

// Generate renders the static-backend plugin source.
func Generate(dec *decorate.DecoratedProgram) (string, error) {
	g := &generator{
		dec:     dec,
		builder: dec.Sem.Program.Builder,
		e:       codegen.NewEmitter(),
	}
	g.program()
	if g.err != nil {
		return "", g.err
	}
	return g.e.String(), nil
}

func (g *generator) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

func pascal(name string) string {
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, "")
}

func (g *generator) program() {
	sem := g.dec.Sem
	structName := pascal(sem.Program.DeclName())

	outer := g.e
	g.e = codegen.NewEmitter()

	container, _ := g.builder.Items.Container(sem.Program.Decl)
	for _, itemID := range container.Body {
		item := g.builder.Items.Get(itemID)
		if item == nil {
			continue
		}
		switch item.Kind {
		case ast.ItemEnum:
			g.enumDecl(itemID)
		case ast.ItemStruct:
			if itemID != sem.StateItem {
				g.structDecl(itemID)
			}
		}
	}

	g.pluginStruct(structName)
	g.implBlock(structName, container.Body)
	g.visitImpl(structName)

	body := g.e
	g.e = outer
	g.header()
	g.e.Raw(body.String())
}

func (g *generator) header() {
	if g.needMap && g.needSet {
		g.e.Line("use std::collections::{HashMap, HashSet};")
		g.e.Blank()
	} else if g.needMap {
		g.e.Line("use std::collections::HashMap;")
		g.e.Blank()
	} else if g.needSet {
		g.e.Line("use std::collections::HashSet;")
		g.e.Blank()
	}
	if g.needTake {
		g.e.Line("use swc_core::common::util::take::Take;")
	}
	g.e.Line("use swc_core::ecma::ast::*;")
	g.e.Line("use swc_core::ecma::visit::{VisitMut, VisitMutWith};")
	g.e.Blank()
}

func (g *generator) enumDecl(itemID ast.ItemID) {
	data, _ := g.builder.Items.Enum(itemID)
	g.e.Line("#[derive(Clone, PartialEq)]")
	g.e.Linef("enum %s {", data.Name)
	g.e.Indent()
	for _, v := range data.Variants {
		if len(v.Params) == 0 {
			g.e.Linef("%s,", v.Name)
			continue
		}
		var params []string
		for _, p := range v.Params {
			params = append(params, g.rustSyn(p))
		}
		g.e.Linef("%s(%s),", v.Name, strings.Join(params, ", "))
	}
	g.e.Dedent()
	g.e.Line("}")
	g.e.Blank()
}

func (g *generator) structDecl(itemID ast.ItemID) {
	data, _ := g.builder.Items.Struct(itemID)
	g.e.Line("#[derive(Clone)]")
	g.e.Linef("struct %s {", data.Name)
	g.e.Indent()
	for _, f := range data.Fields {
		g.e.Linef("%s: %s,", f.Name, g.rustSyn(f.Type))
	}
	g.e.Dedent()
	g.e.Line("}")
	g.e.Blank()
}

// pluginStruct renders the plugin type carrying the state fields.
func (g *generator) pluginStruct(name string) {
	sem := g.dec.Sem
	g.e.Linef("pub struct %s {", name)
	g.e.Indent()
	if sem.StateStruct != types.NoTypeID {
		info, _ := sem.Types.Struct(sem.StateStruct)
		for _, f := range info.Fields {
			g.e.Linef("%s: %s,", f.Name, g.rustType(f.Type))
		}
	}
	g.e.Dedent()
	g.e.Line("}")
	g.e.Blank()
}

func (g *generator) implBlock(name string, body []ast.ItemID) {
	sem := g.dec.Sem
	g.e.Linef("impl %s {", name)
	g.e.Indent()

	g.e.Line("pub fn new() -> Self {")
	g.e.Indent()
	g.e.Line("Self {")
	g.e.Indent()
	if sem.StateStruct != types.NoTypeID {
		info, _ := sem.Types.Struct(sem.StateStruct)
		for _, f := range info.Fields {
			g.e.Linef("%s: %s,", f.Name, g.defaultValue(f.Type))
		}
	}
	g.e.Dedent()
	g.e.Line("}")
	g.e.Dedent()
	g.e.Line("}")

	for _, itemID := range body {
		data, ok := g.builder.Items.Fn(itemID)
		if !ok {
			continue
		}
		switch data.Fn {
		case ast.FnHelper:
			g.e.Blank()
			g.helperFn(itemID, data)
		case ast.FnPre:
			g.e.Blank()
			g.e.Line("pub fn begin(&mut self) {")
			g.e.Indent()
			g.blockBody(data.Body)
			g.e.Dedent()
			g.e.Line("}")
		case ast.FnPost:
			g.e.Blank()
			g.e.Line("pub fn finish(&mut self) {")
			g.e.Indent()
			g.blockBody(data.Body)
			g.e.Dedent()
			g.e.Line("}")
		}
	}

	g.e.Dedent()
	g.e.Line("}")
	g.e.Blank()
}

func (g *generator) helperFn(itemID ast.ItemID, data *ast.ItemFnData) {
	owns := g.dec.Sem.ParamOwnership[itemID]
	var params []string
	params = append(params, "&mut self")
	for i, p := range data.Params {
		own := types.OwnOwned
		if i < len(owns) {
			own = owns[i]
		}
		params = append(params, p.Name+": "+g.paramType(p.Type, own))
	}
	sig := "fn " + data.Name + "(" + strings.Join(params, ", ") + ")"
	if data.Ret.IsValid() {
		sig += " -> " + g.rustSyn(data.Ret)
	}
	g.e.Line(sig + " {")
	g.e.Indent()
	g.blockBody(data.Body)
	g.e.Dedent()
	g.e.Line("}")
}

func (g *generator) visitImpl(name string) {
	g.e.Linef("impl VisitMut for %s {", name)
	g.e.Indent()
	for i, plan := range g.dec.Visitors {
		if i > 0 {
			g.e.Blank()
		}
		data, _ := g.builder.Items.Fn(plan.Item)
		param := plan.Param
		if param == "" {
			param = "node"
		}
		g.e.Linef("fn %s(&mut self, %s: &mut %s) {", plan.SwcMethod, param, plan.Swc)
		g.e.Indent()
		g.e.Linef("%s.visit_mut_children_with(self);", param)
		g.e.Blank()
		g.hookParam = param
		g.blockBody(data.Body)
		g.hookParam = ""
		g.e.Dedent()
		g.e.Line("}")
	}
	g.e.Dedent()
	g.e.Line("}")
}

func (g *generator) blockBody(id ast.StmtID) {
	data, ok := g.builder.Stmts.Block(id)
	if !ok {
		return
	}
	for _, s := range data.Stmts {
		g.stmt(s)
	}
}

func (g *generator) stmt(id ast.StmtID) {
	if g.err != nil {
		return
	}
	stmt := g.builder.Stmts.Get(id)
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case ast.StmtBlock:
		g.e.Line("{")
		g.e.Indent()
		g.blockBody(id)
		g.e.Dedent()
		g.e.Line("}")
	case ast.StmtLet:
		data, _ := g.builder.Stmts.Let(id)
		kw := "let"
		if data.Mutable {
			kw = "let mut"
		}
		if data.Type.IsValid() {
			g.e.Linef("%s %s: %s = %s;", kw, data.Name, g.rustSyn(data.Type), g.expr(data.Init))
		} else {
			g.e.Linef("%s %s = %s;", kw, data.Name, g.expr(data.Init))
		}
	case ast.StmtExpr:
		data, _ := g.builder.Stmts.Expr(id)
		g.e.Linef("%s;", g.expr(data.Expr))
	case ast.StmtIf:
		g.ifChain(id)
	case ast.StmtMatch:
		g.match(id)
	case ast.StmtFor:
		data, _ := g.builder.Stmts.For(id)
		g.e.Linef("for %s in %s.iter() {", data.Binding, g.expr(data.Iter))
		g.e.Indent()
		g.blockBody(data.Body)
		g.e.Dedent()
		g.e.Line("}")
	case ast.StmtWhile:
		data, _ := g.builder.Stmts.While(id)
		g.e.Linef("while %s {", g.expr(data.Cond))
		g.e.Indent()
		g.blockBody(data.Body)
		g.e.Dedent()
		g.e.Line("}")
	case ast.StmtReturn:
		data, _ := g.builder.Stmts.Return(id)
		if data.Value.IsValid() {
			g.e.Linef("return %s;", g.expr(data.Value))
		} else {
			g.e.Line("return;")
		}
	case ast.StmtBreak:
		g.e.Line("break;")
	case ast.StmtContinue:
		g.e.Line("continue;")
	}
}

func (g *generator) ifChain(id ast.StmtID) {
	data, _ := g.builder.Stmts.If(id)
	g.e.Linef("if %s {", g.expr(data.Cond))
	g.e.Indent()
	g.branchBody(data.Then)
	g.e.Dedent()
	if !data.Else.IsValid() {
		g.e.Line("}")
		return
	}
	if elseStmt := g.builder.Stmts.Get(data.Else); elseStmt != nil && elseStmt.Kind == ast.StmtIf {
		g.e.Write("} else ")
		g.ifChain(data.Else)
		return
	}
	g.e.Line("} else {")
	g.e.Indent()
	g.branchBody(data.Else)
	g.e.Dedent()
	g.e.Line("}")
}

func (g *generator) branchBody(id ast.StmtID) {
	stmt := g.builder.Stmts.Get(id)
	if stmt != nil && stmt.Kind == ast.StmtBlock {
		g.blockBody(id)
		return
	}
	g.stmt(id)
}
