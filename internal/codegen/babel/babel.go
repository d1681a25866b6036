// Package babel renders a decorated program as a Babel visitor plugin.
// Ownership qualifiers are fully erased here; the GC host never sees them.
package babel

import (
	"fmt"
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
	// hookParam is the node binding of the hook being emitted; accesses to
	// it route through path.
	hookParam string
	labels    int
	// needMapRemove is set when a map remove call was rendered; the
	// __mapRemove helper is hoisted into the closure prologue.
	needMapRemove bool
	err           error
}

// Generate renders the dynamic-backend plugin module.
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

func camel(name string) string {
	parts := strings.Split(name, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}

func (g *generator) program() {
	sem := g.dec.Sem
	name := sem.Program.DeclName()

	// The closure body is rendered first so runtime helpers discovered
	// during rendering can be hoisted into the prologue.
	outer := g.e
	g.e = codegen.NewEmitter()
	g.e.Indent()

	g.stateObject()

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
		case ast.ItemFn:
			if data, _ := g.builder.Items.Fn(itemID); data.Fn == ast.FnHelper {
				g.helperFn(data)
			}
		}
	}

	g.e.Line("return {")
	g.e.Indent()
	g.e.Linef("name: %q,", name)
	g.hooks(container.Body)
	g.visitorObject()
	g.e.Dedent()
	g.e.Line("};")
	g.e.Dedent()

	body := g.e
	g.e = outer
	g.e.Line(`"use strict";`)
	g.e.Blank()
	g.e.Linef("module.exports = function %s({ types: t }) {", camel(name))
	if g.needMapRemove {
		g.e.Indent()
		g.e.Line("function __mapRemove(m, k) {")
		g.e.Indent()
		g.e.Line("const v = m.get(k) ?? null;")
		g.e.Line("m.delete(k);")
		g.e.Line("return v;")
		g.e.Dedent()
		g.e.Line("}")
		g.e.Blank()
		g.e.Dedent()
	}
	g.e.Raw(body.String())
	g.e.Line("};")
}

func (g *generator) stateObject() {
	sem := g.dec.Sem
	if sem.StateStruct == types.NoTypeID {
		return
	}
	info, _ := sem.Types.Struct(sem.StateStruct)
	g.e.Line("const state = {")
	g.e.Indent()
	for _, f := range info.Fields {
		g.e.Linef("%s: %s,", f.Name, g.zeroValue(f.Type))
	}
	g.e.Dedent()
	g.e.Line("};")
	g.e.Blank()
}

func (g *generator) zeroValue(id types.TypeID) string {
	t, ok := g.dec.Sem.Types.Lookup(id)
	if !ok {
		return "null"
	}
	switch t.Kind {
	case types.KindInt, types.KindFloat:
		return "0"
	case types.KindBool:
		return "false"
	case types.KindString:
		return `""`
	case types.KindList:
		return "[]"
	case types.KindMap:
		return "new Map()"
	case types.KindSet:
		return "new Set()"
	}
	return "null"
}

// enumDecl renders an enum as a tagged-value factory table.
func (g *generator) enumDecl(itemID ast.ItemID) {
	data, _ := g.builder.Items.Enum(itemID)
	g.e.Linef("const %s = {", data.Name)
	g.e.Indent()
	for _, v := range data.Variants {
		if len(v.Params) == 0 {
			g.e.Linef("%s: { tag: %q },", v.Name, v.Name)
			continue
		}
		var args []string
		for i := range v.Params {
			args = append(args, fmt.Sprintf("v%d", i))
		}
		g.e.Linef("%s: (%s) => ({ tag: %q, values: [%s] }),",
			v.Name, strings.Join(args, ", "), v.Name, strings.Join(args, ", "))
	}
	g.e.Dedent()
	g.e.Line("};")
	g.e.Blank()
}

func (g *generator) structDecl(itemID ast.ItemID) {
	data, _ := g.builder.Items.Struct(itemID)
	var params []string
	for _, f := range data.Fields {
		params = append(params, f.Name)
	}
	g.e.Linef("class %s {", data.Name)
	g.e.Indent()
	g.e.Linef("constructor(%s) {", strings.Join(params, ", "))
	g.e.Indent()
	for _, f := range data.Fields {
		g.e.Linef("this.%s = %s;", f.Name, f.Name)
	}
	g.e.Dedent()
	g.e.Line("}")
	g.e.Dedent()
	g.e.Line("}")
	g.e.Blank()
}

func (g *generator) helperFn(data *ast.ItemFnData) {
	var params []string
	for _, p := range data.Params {
		params = append(params, p.Name)
	}
	g.e.Linef("function %s(%s) {", data.Name, strings.Join(params, ", "))
	g.e.Indent()
	g.blockBody(data.Body)
	g.e.Dedent()
	g.e.Line("}")
	g.e.Blank()
}

// hooks emits pre/post handlers on the plugin object.
func (g *generator) hooks(body []ast.ItemID) {
	for _, itemID := range body {
		data, ok := g.builder.Items.Fn(itemID)
		if !ok {
			continue
		}
		switch data.Fn {
		case ast.FnPre:
			g.e.Line("pre() {")
		case ast.FnPost:
			g.e.Line("post() {")
		default:
			continue
		}
		g.e.Indent()
		g.blockBody(data.Body)
		g.e.Dedent()
		g.e.Line("},")
	}
}

func (g *generator) visitorObject() {
	g.e.Line("visitor: {")
	g.e.Indent()
	for _, plan := range g.dec.Visitors {
		data, _ := g.builder.Items.Fn(plan.Item)
		g.e.Linef("%s(path) {", plan.Babel)
		g.e.Indent()
		if plan.Param != "" {
			g.e.Linef("const %s = path.node;", plan.Param)
		}
		g.hookParam = plan.Param
		g.blockBody(data.Body)
		g.hookParam = ""
		g.e.Dedent()
		g.e.Line("},")
	}
	g.e.Dedent()
	g.e.Line("},")
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
		kw := "const"
		if data.Mutable {
			kw = "let"
		}
		g.e.Linef("%s %s = %s;", kw, data.Name, g.expr(data.Init))
	case ast.StmtExpr:
		data, _ := g.builder.Stmts.Expr(id)
		g.e.Linef("%s;", g.expr(data.Expr))
	case ast.StmtIf:
		g.ifChain(id)
	case ast.StmtMatch:
		g.match(id)
	case ast.StmtFor:
		data, _ := g.builder.Stmts.For(id)
		g.e.Linef("for (const %s of %s) {", data.Binding, g.expr(data.Iter))
		g.e.Indent()
		g.blockBody(data.Body)
		g.e.Dedent()
		g.e.Line("}")
	case ast.StmtWhile:
		data, _ := g.builder.Stmts.While(id)
		g.e.Linef("while (%s) {", g.expr(data.Cond))
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
	g.e.Linef("if (%s) {", g.expr(data.Cond))
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
