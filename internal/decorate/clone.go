package decorate

import (
	"reluxc/internal/ast"
	"reluxc/internal/types"
)

// Clone analysis. A non-copy value that is consumed and then read again, or
// consumed inside a loop body while declared outside it, needs a clone at
// the consuming site on the static backend. Values rooted at a borrowed
// binding clone at every consuming site because a borrow cannot be moved
// from. The flags are computed once here; generators only read them.

type cloneEventKind uint8

const (
	cloneRead cloneEventKind = iota
	cloneConsume
)

type cloneEvent struct {
	kind  cloneEventKind
	name  string
	expr  ast.ExprID
	depth int
}

type cloneWalker struct {
	d         *decorator
	events    []cloneEvent
	declDepth map[string]int
	borrowed  map[string]bool
	depth     int
}

func (d *decorator) analyzeClones(itemID ast.ItemID, data *ast.ItemFnData) {
	w := &cloneWalker{d: d, declDepth: make(map[string]int), borrowed: make(map[string]bool)}
	owns := d.sem.ParamOwnership[itemID]
	for i, p := range data.Params {
		w.declDepth[p.Name] = 0
		if i < len(owns) && owns[i] != types.OwnOwned {
			w.borrowed[p.Name] = true
		}
	}
	w.borrowed["self"] = true
	w.stmt(data.Body)

	for i, ev := range w.events {
		if ev.kind != cloneConsume {
			continue
		}
		if w.borrowed[ev.name] {
			d.out.Clones[ev.expr] = true
			continue
		}
		reused := false
		for _, later := range w.events[i+1:] {
			if later.name == ev.name {
				reused = true
				break
			}
		}
		if !reused {
			if decl, ok := w.declDepth[ev.name]; ok && ev.depth > decl {
				reused = true
			}
		}
		if reused {
			d.out.Clones[ev.expr] = true
		}
	}
}

func (w *cloneWalker) stmt(id ast.StmtID) {
	s := w.d.builder.Stmts.Get(id)
	if s == nil {
		return
	}
	switch s.Kind {
	case ast.StmtBlock:
		data, _ := w.d.builder.Stmts.Block(id)
		for _, sub := range data.Stmts {
			w.stmt(sub)
		}
	case ast.StmtLet:
		data, _ := w.d.builder.Stmts.Let(id)
		w.expr(data.Init, true)
		w.declDepth[data.Name] = w.depth
	case ast.StmtExpr:
		data, _ := w.d.builder.Stmts.Expr(id)
		w.expr(data.Expr, false)
	case ast.StmtIf:
		data, _ := w.d.builder.Stmts.If(id)
		w.expr(data.Cond, false)
		w.stmt(data.Then)
		w.stmt(data.Else)
	case ast.StmtMatch:
		data, _ := w.d.builder.Stmts.Match(id)
		w.expr(data.Subject, false)
		for _, arm := range data.Arms {
			w.patBinds(arm.Pat)
			if arm.Guard.IsValid() {
				w.expr(arm.Guard, false)
			}
			w.stmt(arm.Body)
		}
	case ast.StmtFor:
		data, _ := w.d.builder.Stmts.For(id)
		w.expr(data.Iter, false)
		w.depth++
		w.declDepth[data.Binding] = w.depth
		w.stmt(data.Body)
		w.depth--
	case ast.StmtWhile:
		data, _ := w.d.builder.Stmts.While(id)
		w.expr(data.Cond, false)
		w.depth++
		w.stmt(data.Body)
		w.depth--
	case ast.StmtReturn:
		data, _ := w.d.builder.Stmts.Return(id)
		w.expr(data.Value, true)
	}
}

// patBinds marks pattern bindings as borrowed views of the subject.
func (w *cloneWalker) patBinds(id ast.PatID) {
	pat := w.d.builder.Pats.Get(id)
	if pat == nil {
		return
	}
	switch pat.Kind {
	case ast.PatBind:
		data, _ := w.d.builder.Pats.Bind(id)
		w.borrowed[data.Name] = true
		w.declDepth[data.Name] = w.depth
	case ast.PatVariant:
		data, _ := w.d.builder.Pats.Variant(id)
		for _, sub := range data.Params {
			w.patBinds(sub)
		}
	case ast.PatStruct:
		data, _ := w.d.builder.Pats.Struct(id)
		for _, f := range data.Fields {
			w.patBinds(f.Pat)
		}
	case ast.PatNode:
		data, _ := w.d.builder.Pats.Node(id)
		if data.Binding != "" {
			w.borrowed[data.Binding] = true
			w.declDepth[data.Binding] = w.depth
		}
		for _, f := range data.Fields {
			w.patBinds(f.Pat)
		}
	}
}

func (w *cloneWalker) expr(id ast.ExprID, consuming bool) {
	if !id.IsValid() {
		return
	}
	e := w.d.builder.Exprs.Get(id)
	if e == nil {
		return
	}
	switch e.Kind {
	case ast.ExprIdent:
		w.record(id, consuming)
	case ast.ExprBinary:
		data, _ := w.d.builder.Exprs.Binary(id)
		w.expr(data.Left, false)
		w.expr(data.Right, false)
	case ast.ExprUnary:
		data, _ := w.d.builder.Exprs.Unary(id)
		w.expr(data.Operand, false)
	case ast.ExprCall:
		w.call(id)
	case ast.ExprMember:
		if consuming {
			w.record(id, true)
			return
		}
		data, _ := w.d.builder.Exprs.Member(id)
		w.expr(data.Object, false)
	case ast.ExprIndex:
		data, _ := w.d.builder.Exprs.Index(id)
		w.expr(data.Object, false)
		w.expr(data.Index, false)
	case ast.ExprStructInit:
		data, _ := w.d.builder.Exprs.StructInit(id)
		for _, f := range data.Fields {
			w.expr(f.Value, true)
		}
	case ast.ExprListInit:
		data, _ := w.d.builder.Exprs.ListInit(id)
		for _, el := range data.Elems {
			w.expr(el, true)
		}
	case ast.ExprMapInit:
		data, _ := w.d.builder.Exprs.MapInit(id)
		for _, entry := range data.Entries {
			w.expr(entry.Key, true)
			w.expr(entry.Value, true)
		}
	case ast.ExprSetInit:
		data, _ := w.d.builder.Exprs.SetInit(id)
		for _, el := range data.Elems {
			w.expr(el, true)
		}
	case ast.ExprAssign:
		data, _ := w.d.builder.Exprs.Assign(id)
		w.expr(data.Target, false)
		w.expr(data.Value, true)
	case ast.ExprMatches:
		data, _ := w.d.builder.Exprs.Matches(id)
		w.expr(data.Subject, false)
	}
}

// consumingMethods move their value arguments into the receiver.
var consumingMethods = map[string]bool{
	"push":         true,
	"insert":       true,
	"replace_with": true,
	"unwrap_or":    true,
}

func (w *cloneWalker) call(id ast.ExprID) {
	data, _ := w.d.builder.Exprs.Call(id)

	if member, ok := w.d.builder.Exprs.Member(data.Callee); ok {
		w.expr(member.Object, false)
		consume := consumingMethods[member.Property]
		for _, arg := range data.Args {
			w.expr(arg, consume)
		}
		return
	}

	if ident, ok := w.d.builder.Exprs.Ident(data.Callee); ok {
		switch ident.Name {
		case "Some", "Ok", "Err":
			for _, arg := range data.Args {
				w.expr(arg, true)
			}
			return
		case "None":
			return
		}
		owns := w.d.fnParamOwnership(ident.Name)
		for i, arg := range data.Args {
			consume := i < len(owns) && owns[i] == types.OwnOwned
			w.expr(arg, consume)
		}
		return
	}

	w.expr(data.Callee, false)
	for _, arg := range data.Args {
		w.expr(arg, false)
	}
}

// record notes one use of the binding rooted under expr. Copy-typed values
// never clone.
func (w *cloneWalker) record(id ast.ExprID, consuming bool) {
	name, ok := w.rootName(id)
	if !ok {
		return
	}
	et := w.d.sem.ExprTypes[id]
	if t, found := w.d.sem.Types.Lookup(et); found && t.IsCopy() {
		return
	}
	kind := cloneRead
	if consuming {
		kind = cloneConsume
	}
	w.events = append(w.events, cloneEvent{kind: kind, name: name, expr: id, depth: w.depth})
}

func (w *cloneWalker) rootName(id ast.ExprID) (string, bool) {
	for {
		e := w.d.builder.Exprs.Get(id)
		if e == nil {
			return "", false
		}
		switch e.Kind {
		case ast.ExprIdent:
			data, _ := w.d.builder.Exprs.Ident(id)
			return data.Name, true
		case ast.ExprMember:
			data, _ := w.d.builder.Exprs.Member(id)
			id = data.Object
		case ast.ExprIndex:
			data, _ := w.d.builder.Exprs.Index(id)
			id = data.Object
		default:
			return "", false
		}
	}
}

// fnParamOwnership resolves a helper's recorded qualifiers by name.
func (d *decorator) fnParamOwnership(name string) []types.Ownership {
	if d.fnOwners == nil {
		d.fnOwners = make(map[string][]types.Ownership)
		if container, ok := d.builder.Items.Container(d.sem.Program.Decl); ok {
			for _, itemID := range container.Body {
				if data, isFn := d.builder.Items.Fn(itemID); isFn {
					d.fnOwners[data.Name] = d.sem.ParamOwnership[itemID]
				}
			}
		}
	}
	return d.fnOwners[name]
}
