package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the primitive types every program needs.
type Builtins struct {
	Invalid TypeID
	Unknown TypeID
	Unit    TypeID
	Null    TypeID
	Bool    TypeID
	String  TypeID
	Int     TypeID
	Float   TypeID
}

type typeKey struct {
	kind Kind
	elem TypeID
	aux  TypeID
	ref  uint32
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Nominal types (host nodes, structs, enums) intern by name through the
// side tables, so equal names always yield equal IDs.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins

	hostNames []string
	hostIndex map[string]uint32

	structs     []StructInfo
	structIndex map[string]uint32

	enums     []EnumInfo
	enumIndex map[string]uint32

	fns []FnInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:       make(map[typeKey]TypeID, 64),
		hostIndex:   make(map[string]uint32, 64),
		structIndex: make(map[string]uint32, 16),
		enumIndex:   make(map[string]uint32, 16),
	}
	// Reserve index 0 of each side table as an invalid sentinel.
	in.hostNames = append(in.hostNames, "")
	in.structs = append(in.structs, StructInfo{})
	in.enums = append(in.enums, EnumInfo{})
	in.fns = append(in.fns, FnInfo{})

	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unknown = in.Intern(Type{Kind: KindUnknown})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Null = in.Intern(Type{Kind: KindNull})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey{kind: t.Kind, elem: t.Elem, aux: t.Aux, ref: t.Ref}
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[typeKey{kind: t.Kind, elem: t.Elem, aux: t.Aux, ref: t.Ref}] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// InternHostNode interns the host-tree node type with the given logical name.
// GenericNodeName is the host-node category of values known only to be
// some node, such as fields declared "node" in the catalog.
const GenericNodeName = "Node"

func (in *Interner) InternHostNode(name string) TypeID {
	ref, ok := in.hostIndex[name]
	if !ok {
		var err error
		ref, err = safecast.Conv[uint32](len(in.hostNames))
		if err != nil {
			panic(fmt.Errorf("host table overflow: %w", err))
		}
		in.hostNames = append(in.hostNames, name)
		in.hostIndex[name] = ref
	}
	return in.Intern(Type{Kind: KindHostNode, Ref: ref})
}

// HostNodeName resolves the logical node name behind a host-node type.
func (in *Interner) HostNodeName(id TypeID) (string, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindHostNode || int(t.Ref) >= len(in.hostNames) {
		return "", false
	}
	return in.hostNames[t.Ref], true
}

// InternFunction interns a function signature.
func (in *Interner) InternFunction(info FnInfo) TypeID {
	// Function identity is structural but signatures are few; search linearly.
	for ref := 1; ref < len(in.fns); ref++ {
		if in.fns[ref].equal(info) {
			refID, err := safecast.Conv[uint32](ref)
			if err != nil {
				panic(fmt.Errorf("fn table overflow: %w", err))
			}
			return in.Intern(Type{Kind: KindFunction, Ref: refID})
		}
	}
	ref, err := safecast.Conv[uint32](len(in.fns))
	if err != nil {
		panic(fmt.Errorf("fn table overflow: %w", err))
	}
	in.fns = append(in.fns, info)
	return in.Intern(Type{Kind: KindFunction, Ref: ref})
}

// Function returns the signature info behind a function type.
func (in *Interner) Function(id TypeID) (FnInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindFunction || int(t.Ref) >= len(in.fns) {
		return FnInfo{}, false
	}
	return in.fns[t.Ref], true
}

// DisplayName renders a human-readable name for diagnostics.
func (in *Interner) DisplayName(id TypeID) string {
	t, ok := in.Lookup(id)
	if !ok {
		return "invalid"
	}
	switch t.Kind {
	case KindList:
		return fmt.Sprintf("Vec<%s>", in.DisplayName(t.Elem))
	case KindOptional:
		return fmt.Sprintf("Option<%s>", in.DisplayName(t.Elem))
	case KindResult:
		return fmt.Sprintf("Result<%s, %s>", in.DisplayName(t.Elem), in.DisplayName(t.Aux))
	case KindMap:
		return fmt.Sprintf("HashMap<%s, %s>", in.DisplayName(t.Aux), in.DisplayName(t.Elem))
	case KindSet:
		return fmt.Sprintf("HashSet<%s>", in.DisplayName(t.Elem))
	case KindHostNode:
		return in.hostNames[t.Ref]
	case KindStruct:
		return in.structs[t.Ref].Name
	case KindEnum:
		return in.enums[t.Ref].Name
	case KindFunction:
		info := in.fns[t.Ref]
		params := ""
		for i, p := range info.Params {
			if i > 0 {
				params += ", "
			}
			params += in.DisplayName(p)
		}
		return fmt.Sprintf("fn(%s) -> %s", params, in.DisplayName(info.Ret))
	default:
		return t.Kind.String()
	}
}

// ContainsUnknown reports whether the type or any of its parameters is the
// inference placeholder. Types answering true here must never reach codegen.
func (in *Interner) ContainsUnknown(id TypeID) bool {
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case KindUnknown:
		return true
	case KindList, KindOptional, KindSet:
		return in.ContainsUnknown(t.Elem)
	case KindResult, KindMap:
		return in.ContainsUnknown(t.Elem) || in.ContainsUnknown(t.Aux)
	}
	return false
}
