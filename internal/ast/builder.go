package ast

import (
	"reluxc/internal/source"
)

// Hints preallocates arena capacity per node class.
type Hints struct{ Items, Stmts, Exprs, Pats, TypeSyns uint }

// Builder owns every arena of one parsed program. The external parser fills
// it once; all later phases read it and attach side tables keyed by node ID,
// never mutating the stored nodes.
type Builder struct {
	Items    *Items
	Stmts    *Stmts
	Exprs    *Exprs
	Pats     *Pats
	TypeSyns *TypeSyns
}

func NewBuilder(hints Hints) *Builder {
	return &Builder{
		Items:    NewItems(hints.Items),
		Stmts:    NewStmts(hints.Stmts),
		Exprs:    NewExprs(hints.Exprs),
		Pats:     NewPats(hints.Pats),
		TypeSyns: NewTypeSyns(hints.TypeSyns),
	}
}

// Program is one compilation unit: a single top-level plugin, writer or
// module declaration, as handed over by the external parser.
type Program struct {
	Builder *Builder
	Decl    ItemID
	Span    source.Span
}

// DeclName returns the name of the top-level declaration.
func (p *Program) DeclName() string {
	if data, ok := p.Builder.Items.Container(p.Decl); ok {
		return data.Name
	}
	return ""
}

// DeclKind returns the kind of the top-level declaration.
func (p *Program) DeclKind() ItemKind {
	if item := p.Builder.Items.Get(p.Decl); item != nil {
		return item.Kind
	}
	return ItemModule
}
