package ast

import (
	"reluxc/internal/source"
)

type PatKind uint8

const (
	PatWildcard PatKind = iota
	PatLit
	PatBind
	// PatVariant matches one enum variant, optionally binding its payload.
	PatVariant
	// PatStruct destructures a plugin-declared struct.
	PatStruct
	// PatNode matches a host-tree node shape: a node category plus nested
	// constraints on its logical fields. This is the construct the
	// decorator decomposes into ordered guard steps.
	PatNode
)

type Pat struct {
	Kind    PatKind
	Span    source.Span
	Payload PayloadID
}

type PatLitData struct {
	Kind  LitKind
	Value string
}

type PatBindData struct {
	Name string
}

type PatVariantData struct {
	// Enum is empty when the variant name alone is unambiguous.
	Enum    string
	Variant string
	Params  []PatID
}

// PatFieldConstraint constrains one named field of a struct or node pattern.
type PatFieldConstraint struct {
	Name string
	Pat  PatID
	Span source.Span
}

type PatStructData struct {
	Name   string
	Fields []PatFieldConstraint
}

type PatNodeData struct {
	// NodeType is the logical host-node category name.
	NodeType string
	// Binding optionally names the matched node inside the arm.
	Binding string
	Fields  []PatFieldConstraint
}

// Pats manages allocation of patterns.
type Pats struct {
	Arena    *Arena[Pat]
	Lits     *Arena[PatLitData]
	Binds    *Arena[PatBindData]
	Variants *Arena[PatVariantData]
	Structs  *Arena[PatStructData]
	Nodes    *Arena[PatNodeData]
}

func NewPats(capHint uint) *Pats {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Pats{
		Arena:    NewArena[Pat](capHint),
		Lits:     NewArena[PatLitData](capHint),
		Binds:    NewArena[PatBindData](capHint),
		Variants: NewArena[PatVariantData](capHint),
		Structs:  NewArena[PatStructData](capHint),
		Nodes:    NewArena[PatNodeData](capHint),
	}
}

func (p *Pats) new(kind PatKind, span source.Span, payload PayloadID) PatID {
	return PatID(p.Arena.Allocate(Pat{Kind: kind, Span: span, Payload: payload}))
}

func (p *Pats) Get(id PatID) *Pat {
	return p.Arena.Get(uint32(id))
}

func (p *Pats) NewWildcard(span source.Span) PatID {
	return p.new(PatWildcard, span, NoPayloadID)
}

func (p *Pats) NewLit(span source.Span, kind LitKind, value string) PatID {
	payload := p.Lits.Allocate(PatLitData{Kind: kind, Value: value})
	return p.new(PatLit, span, PayloadID(payload))
}

func (p *Pats) Lit(id PatID) (*PatLitData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatLit {
		return nil, false
	}
	return p.Lits.Get(uint32(pat.Payload)), true
}

func (p *Pats) NewBind(span source.Span, name string) PatID {
	payload := p.Binds.Allocate(PatBindData{Name: name})
	return p.new(PatBind, span, PayloadID(payload))
}

func (p *Pats) Bind(id PatID) (*PatBindData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatBind {
		return nil, false
	}
	return p.Binds.Get(uint32(pat.Payload)), true
}

func (p *Pats) NewVariant(span source.Span, data PatVariantData) PatID {
	payload := p.Variants.Allocate(data)
	return p.new(PatVariant, span, PayloadID(payload))
}

func (p *Pats) Variant(id PatID) (*PatVariantData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatVariant {
		return nil, false
	}
	return p.Variants.Get(uint32(pat.Payload)), true
}

func (p *Pats) NewStruct(span source.Span, data PatStructData) PatID {
	payload := p.Structs.Allocate(data)
	return p.new(PatStruct, span, PayloadID(payload))
}

func (p *Pats) Struct(id PatID) (*PatStructData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatStruct {
		return nil, false
	}
	return p.Structs.Get(uint32(pat.Payload)), true
}

func (p *Pats) NewNode(span source.Span, data PatNodeData) PatID {
	payload := p.Nodes.Allocate(data)
	return p.new(PatNode, span, PayloadID(payload))
}

func (p *Pats) Node(id PatID) (*PatNodeData, bool) {
	pat := p.Get(id)
	if pat == nil || pat.Kind != PatNode {
		return nil, false
	}
	return p.Nodes.Get(uint32(pat.Payload)), true
}
