package ast

import (
	"reluxc/internal/source"
)

type ItemKind uint8

const (
	// ItemPlugin is a named bundle compiled into one visitor per backend.
	ItemPlugin ItemKind = iota
	// ItemWriter is compiled exactly like a plugin; the distinction only
	// matters to the downstream transpiler consuming the output.
	ItemWriter
	// ItemModule groups free helper declarations.
	ItemModule
	ItemStruct
	ItemEnum
	ItemFn
)

func (k ItemKind) String() string {
	switch k {
	case ItemPlugin:
		return "plugin"
	case ItemWriter:
		return "writer"
	case ItemModule:
		return "module"
	case ItemStruct:
		return "struct"
	case ItemEnum:
		return "enum"
	case ItemFn:
		return "fn"
	}
	return "invalid"
}

type Item struct {
	Kind    ItemKind
	Span    source.Span
	Payload PayloadID
}

// BindMode is the written ownership annotation on a parameter or receiver.
// The resolver turns it into a types.Ownership qualifier.
type BindMode uint8

const (
	BindOwned BindMode = iota
	BindBorrowed
	BindMutBorrowed
)

func (m BindMode) String() string {
	switch m {
	case BindOwned:
		return "own"
	case BindBorrowed:
		return "ref"
	case BindMutBorrowed:
		return "ref mut"
	}
	return "invalid"
}

// Param is one declared function parameter.
type Param struct {
	Name string
	Mode BindMode
	Type TypeSynID
	Span source.Span
}

// FnKind separates plain helpers from traversal hooks.
type FnKind uint8

const (
	FnHelper FnKind = iota
	// FnVisitor handles one host-node category during traversal.
	FnVisitor
	// FnPre runs once before traversal starts.
	FnPre
	// FnPost runs once after traversal completes.
	FnPost
)

type ItemContainerData struct {
	Name string
	Body []ItemID
}

type StructFieldDecl struct {
	Name string
	Type TypeSynID
	Span source.Span
}

type ItemStructData struct {
	Name   string
	Fields []StructFieldDecl
}

type EnumVariantDecl struct {
	Name   string
	Params []TypeSynID
	Span   source.Span
}

type ItemEnumData struct {
	Name     string
	Variants []EnumVariantDecl
}

type ItemFnData struct {
	Name string
	Fn   FnKind
	// VisitorOf names the host-node category a visitor fn handles
	// (empty for helpers and pre/post hooks).
	VisitorOf string
	// Mutates is set when the visitor takes the node by mutable borrow.
	Mutates bool
	Params  []Param
	Ret     TypeSynID
	Body    StmtID
}

// Items manages allocation of top-level and plugin-body items.
type Items struct {
	Arena      *Arena[Item]
	Containers *Arena[ItemContainerData]
	Structs    *Arena[ItemStructData]
	Enums      *Arena[ItemEnumData]
	Fns        *Arena[ItemFnData]
}

func NewItems(capHint uint) *Items {
	if capHint == 0 {
		capHint = 1 << 5
	}
	return &Items{
		Arena:      NewArena[Item](capHint),
		Containers: NewArena[ItemContainerData](capHint),
		Structs:    NewArena[ItemStructData](capHint),
		Enums:      NewArena[ItemEnumData](capHint),
		Fns:        NewArena[ItemFnData](capHint),
	}
}

func (it *Items) new(kind ItemKind, span source.Span, payload PayloadID) ItemID {
	return ItemID(it.Arena.Allocate(Item{Kind: kind, Span: span, Payload: payload}))
}

func (it *Items) Get(id ItemID) *Item {
	return it.Arena.Get(uint32(id))
}

// NewContainer allocates a plugin, writer or module item.
func (it *Items) NewContainer(kind ItemKind, span source.Span, name string, body []ItemID) ItemID {
	payload := it.Containers.Allocate(ItemContainerData{Name: name, Body: body})
	return it.new(kind, span, PayloadID(payload))
}

func (it *Items) Container(id ItemID) (*ItemContainerData, bool) {
	item := it.Get(id)
	if item == nil {
		return nil, false
	}
	switch item.Kind {
	case ItemPlugin, ItemWriter, ItemModule:
		return it.Containers.Get(uint32(item.Payload)), true
	}
	return nil, false
}

func (it *Items) NewStruct(span source.Span, data ItemStructData) ItemID {
	payload := it.Structs.Allocate(data)
	return it.new(ItemStruct, span, PayloadID(payload))
}

func (it *Items) Struct(id ItemID) (*ItemStructData, bool) {
	item := it.Get(id)
	if item == nil || item.Kind != ItemStruct {
		return nil, false
	}
	return it.Structs.Get(uint32(item.Payload)), true
}

func (it *Items) NewEnum(span source.Span, data ItemEnumData) ItemID {
	payload := it.Enums.Allocate(data)
	return it.new(ItemEnum, span, PayloadID(payload))
}

func (it *Items) Enum(id ItemID) (*ItemEnumData, bool) {
	item := it.Get(id)
	if item == nil || item.Kind != ItemEnum {
		return nil, false
	}
	return it.Enums.Get(uint32(item.Payload)), true
}

func (it *Items) NewFn(span source.Span, data ItemFnData) ItemID {
	payload := it.Fns.Allocate(data)
	return it.new(ItemFn, span, PayloadID(payload))
}

func (it *Items) Fn(id ItemID) (*ItemFnData, bool) {
	item := it.Get(id)
	if item == nil || item.Kind != ItemFn {
		return nil, false
	}
	return it.Fns.Get(uint32(item.Payload)), true
}
