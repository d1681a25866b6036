package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all kinds of types the plugin language can express.
// The set is closed: every kind here has a validated lowering on both
// backends, except KindUnknown which is an inference placeholder that must
// never survive into generated code.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnknown
	KindUnit
	KindNull
	KindBool
	KindString
	KindInt
	KindFloat
	KindList
	KindOptional
	KindResult
	KindMap
	KindSet
	KindHostNode
	KindStruct
	KindEnum
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnknown:
		return "unknown"
	case KindUnit:
		return "unit"
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindString:
		return "str"
	case KindInt:
		return "i32"
	case KindFloat:
		return "f64"
	case KindList:
		return "list"
	case KindOptional:
		return "optional"
	case KindResult:
		return "result"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	case KindHostNode:
		return "hostnode"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindFunction:
		return "function"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// IsContainer reports whether the kind is parametric over element types.
func (k Kind) IsContainer() bool {
	switch k {
	case KindList, KindOptional, KindResult, KindMap, KindSet:
		return true
	}
	return false
}

// Type is a compact descriptor for any supported type.
//
// Elem holds the element type for containers (list/optional/set element,
// map value, result ok). Aux holds the secondary parameter (map key,
// result err). Ref indexes the interner's side tables for host nodes,
// structs, enums and functions.
type Type struct {
	Kind Kind
	Elem TypeID
	Aux  TypeID
	Ref  uint32
}

// Descriptor helpers.

func MakeList(elem TypeID) Type {
	return Type{Kind: KindList, Elem: elem}
}

func MakeOptional(elem TypeID) Type {
	return Type{Kind: KindOptional, Elem: elem}
}

func MakeResult(ok, err TypeID) Type {
	return Type{Kind: KindResult, Elem: ok, Aux: err}
}

func MakeMap(key, value TypeID) Type {
	return Type{Kind: KindMap, Elem: value, Aux: key}
}

func MakeSet(elem TypeID) Type {
	return Type{Kind: KindSet, Elem: elem}
}

// IsCopy reports whether values of this kind are freely duplicable without
// a clone on the static backend.
func (t Type) IsCopy() bool {
	switch t.Kind {
	case KindBool, KindInt, KindFloat, KindUnit, KindNull:
		return true
	}
	return false
}
