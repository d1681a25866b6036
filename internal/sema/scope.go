package sema

import (
	"golang.org/x/text/unicode/norm"

	"reluxc/internal/source"
	"reluxc/internal/types"
)

// SymbolKind classifies what a name resolves to.
type SymbolKind uint8

const (
	SymLet SymbolKind = iota
	SymParam
	SymFn
	SymStruct
	SymEnum
	SymSelf
)

func (k SymbolKind) String() string {
	switch k {
	case SymLet:
		return "binding"
	case SymParam:
		return "parameter"
	case SymFn:
		return "function"
	case SymStruct:
		return "struct"
	case SymEnum:
		return "enum"
	case SymSelf:
		return "state"
	}
	return "invalid"
}

// Symbol is one resolved declaration.
type Symbol struct {
	Name    string
	Kind    SymbolKind
	Type    types.TypeID
	Own     types.Ownership
	Mutable bool
	Span    source.Span
}

// scope is one lexical frame. Every block and function body opens a fresh
// frame; lookups walk outward.
type scope struct {
	parent *scope
	names  map[string]*Symbol
}

func newScope(parent *scope) *scope {
	return &scope{
		parent: parent,
		names:  make(map[string]*Symbol),
	}
}

// normName brings identifiers to NFC so visually identical names resolve to
// the same declaration.
func normName(name string) string {
	return norm.NFC.String(name)
}

// declare adds a symbol to the innermost frame. Returns the previous symbol
// when the name is already taken in this frame.
func (s *scope) declare(sym *Symbol) (prev *Symbol, ok bool) {
	key := normName(sym.Name)
	if existing, taken := s.names[key]; taken {
		return existing, false
	}
	s.names[key] = sym
	return nil, true
}

// lookup resolves a name through the frame chain.
func (s *scope) lookup(name string) (*Symbol, bool) {
	key := normName(name)
	for frame := s; frame != nil; frame = frame.parent {
		if sym, ok := frame.names[key]; ok {
			return sym, true
		}
	}
	return nil, false
}
