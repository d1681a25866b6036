package types

import (
	"fmt"

	"fortio.org/safecast"

	"reluxc/internal/source"
)

// Field describes one struct field.
type Field struct {
	Name string
	Type TypeID
	Span source.Span
}

// StructInfo captures a plugin-declared struct.
type StructInfo struct {
	Name   string
	Fields []Field
	Span   source.Span
}

// FieldByName returns the field with the given name.
func (s *StructInfo) FieldByName(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Variant describes one enum variant with optional payload types.
type Variant struct {
	Name   string
	Params []TypeID
	Span   source.Span
}

// EnumInfo captures a plugin-declared enum.
type EnumInfo struct {
	Name     string
	Variants []Variant
	Span     source.Span
}

// VariantByName returns the variant with the given name.
func (e *EnumInfo) VariantByName(name string) (Variant, bool) {
	for _, v := range e.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// FnInfo is a function signature.
type FnInfo struct {
	Params []TypeID
	Ret    TypeID
}

func (f FnInfo) equal(other FnInfo) bool {
	if f.Ret != other.Ret || len(f.Params) != len(other.Params) {
		return false
	}
	for i := range f.Params {
		if f.Params[i] != other.Params[i] {
			return false
		}
	}
	return true
}

// DeclareStruct registers a struct and returns its nominal TypeID.
// Redeclaring a name returns the existing ID with fields updated, so the
// two-pass resolver can predeclare names before field types are known.
func (in *Interner) DeclareStruct(info StructInfo) TypeID {
	if ref, ok := in.structIndex[info.Name]; ok {
		in.structs[ref] = info
		return in.Intern(Type{Kind: KindStruct, Ref: ref})
	}
	ref, err := safecast.Conv[uint32](len(in.structs))
	if err != nil {
		panic(fmt.Errorf("struct table overflow: %w", err))
	}
	in.structs = append(in.structs, info)
	in.structIndex[info.Name] = ref
	return in.Intern(Type{Kind: KindStruct, Ref: ref})
}

// Struct returns the registered info behind a struct type.
func (in *Interner) Struct(id TypeID) (*StructInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindStruct || int(t.Ref) >= len(in.structs) {
		return nil, false
	}
	return &in.structs[t.Ref], true
}

// StructByName looks a struct up by its declared name.
func (in *Interner) StructByName(name string) (TypeID, bool) {
	ref, ok := in.structIndex[name]
	if !ok {
		return NoTypeID, false
	}
	return in.Intern(Type{Kind: KindStruct, Ref: ref}), true
}

// DeclareEnum registers an enum and returns its nominal TypeID.
func (in *Interner) DeclareEnum(info EnumInfo) TypeID {
	if ref, ok := in.enumIndex[info.Name]; ok {
		in.enums[ref] = info
		return in.Intern(Type{Kind: KindEnum, Ref: ref})
	}
	ref, err := safecast.Conv[uint32](len(in.enums))
	if err != nil {
		panic(fmt.Errorf("enum table overflow: %w", err))
	}
	in.enums = append(in.enums, info)
	in.enumIndex[info.Name] = ref
	return in.Intern(Type{Kind: KindEnum, Ref: ref})
}

// Enum returns the registered info behind an enum type.
func (in *Interner) Enum(id TypeID) (*EnumInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindEnum || int(t.Ref) >= len(in.enums) {
		return nil, false
	}
	return &in.enums[t.Ref], true
}

// EnumByName looks an enum up by its declared name.
func (in *Interner) EnumByName(name string) (TypeID, bool) {
	ref, ok := in.enumIndex[name]
	if !ok {
		return NoTypeID, false
	}
	return in.Intern(Type{Kind: KindEnum, Ref: ref}), true
}
