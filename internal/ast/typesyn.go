package ast

import (
	"reluxc/internal/source"
)

// TypeSynKind enumerates written type annotations. They are pure syntax;
// the checker interns the semantic types they denote.
type TypeSynKind uint8

const (
	TypeSynName TypeSynKind = iota
	TypeSynUnit
	TypeSynList
	TypeSynOptional
	TypeSynResult
	TypeSynMap
	TypeSynSet
)

type TypeSyn struct {
	Kind    TypeSynKind
	Span    source.Span
	Payload PayloadID
}

type TypeSynNameData struct {
	Name string
}

type TypeSynElemData struct {
	Elem TypeSynID
}

type TypeSynPairData struct {
	First  TypeSynID
	Second TypeSynID
}

// TypeSyns manages allocation of type annotations.
type TypeSyns struct {
	Arena *Arena[TypeSyn]
	Names *Arena[TypeSynNameData]
	Elems *Arena[TypeSynElemData]
	Pairs *Arena[TypeSynPairData]
}

func NewTypeSyns(capHint uint) *TypeSyns {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &TypeSyns{
		Arena: NewArena[TypeSyn](capHint),
		Names: NewArena[TypeSynNameData](capHint),
		Elems: NewArena[TypeSynElemData](capHint),
		Pairs: NewArena[TypeSynPairData](capHint),
	}
}

func (t *TypeSyns) new(kind TypeSynKind, span source.Span, payload PayloadID) TypeSynID {
	return TypeSynID(t.Arena.Allocate(TypeSyn{Kind: kind, Span: span, Payload: payload}))
}

func (t *TypeSyns) Get(id TypeSynID) *TypeSyn {
	return t.Arena.Get(uint32(id))
}

// NewName records a named annotation: a primitive (str, i32, f64, bool),
// a host-node name, or a plugin-declared struct/enum name.
func (t *TypeSyns) NewName(span source.Span, name string) TypeSynID {
	payload := t.Names.Allocate(TypeSynNameData{Name: name})
	return t.new(TypeSynName, span, PayloadID(payload))
}

func (t *TypeSyns) Name(id TypeSynID) (*TypeSynNameData, bool) {
	syn := t.Get(id)
	if syn == nil || syn.Kind != TypeSynName {
		return nil, false
	}
	return t.Names.Get(uint32(syn.Payload)), true
}

func (t *TypeSyns) NewUnit(span source.Span) TypeSynID {
	return t.new(TypeSynUnit, span, NoPayloadID)
}

func (t *TypeSyns) NewList(span source.Span, elem TypeSynID) TypeSynID {
	payload := t.Elems.Allocate(TypeSynElemData{Elem: elem})
	return t.new(TypeSynList, span, PayloadID(payload))
}

func (t *TypeSyns) NewOptional(span source.Span, elem TypeSynID) TypeSynID {
	payload := t.Elems.Allocate(TypeSynElemData{Elem: elem})
	return t.new(TypeSynOptional, span, PayloadID(payload))
}

func (t *TypeSyns) NewSet(span source.Span, elem TypeSynID) TypeSynID {
	payload := t.Elems.Allocate(TypeSynElemData{Elem: elem})
	return t.new(TypeSynSet, span, PayloadID(payload))
}

// Elem returns the element annotation of a list/optional/set annotation.
func (t *TypeSyns) Elem(id TypeSynID) (*TypeSynElemData, bool) {
	syn := t.Get(id)
	if syn == nil {
		return nil, false
	}
	switch syn.Kind {
	case TypeSynList, TypeSynOptional, TypeSynSet:
		return t.Elems.Get(uint32(syn.Payload)), true
	}
	return nil, false
}

// NewResult records Result<Ok, Err>.
func (t *TypeSyns) NewResult(span source.Span, ok, err TypeSynID) TypeSynID {
	payload := t.Pairs.Allocate(TypeSynPairData{First: ok, Second: err})
	return t.new(TypeSynResult, span, PayloadID(payload))
}

// NewMap records HashMap<Key, Value>.
func (t *TypeSyns) NewMap(span source.Span, key, value TypeSynID) TypeSynID {
	payload := t.Pairs.Allocate(TypeSynPairData{First: key, Second: value})
	return t.new(TypeSynMap, span, PayloadID(payload))
}

// Pair returns the two parameters of a result/map annotation.
func (t *TypeSyns) Pair(id TypeSynID) (*TypeSynPairData, bool) {
	syn := t.Get(id)
	if syn == nil {
		return nil, false
	}
	switch syn.Kind {
	case TypeSynResult, TypeSynMap:
		return t.Pairs.Get(uint32(syn.Payload)), true
	}
	return nil, false
}
