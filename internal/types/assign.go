package types

// AssignableTo reports whether a value of type from may flow into a slot of
// type to.
//
// Exact matches always hold. Unknown unifies with anything: it is the
// inference fallback and the checker separately guarantees it never reaches
// codegen. For parametric containers an Unknown parameter on either side
// unifies with any concrete parameter on the other, which covers empty
// container literals whose element type was only partially propagated.
// Optional<T> and bare T are never interchangeable without an explicit
// wrap or unwrap.
func (in *Interner) AssignableTo(from, to TypeID) bool {
	if from == to {
		return true
	}
	ft, fok := in.Lookup(from)
	tt, tok := in.Lookup(to)
	if !fok || !tok {
		return false
	}

	if ft.Kind == KindUnknown || tt.Kind == KindUnknown {
		return true
	}

	switch {
	// null is the absence literal; it fills any Optional slot.
	case ft.Kind == KindNull && tt.Kind == KindOptional:
		return true

	// Numeric widening, matching the host frameworks' number semantics.
	case ft.Kind == KindInt && tt.Kind == KindFloat:
		return true

	// Nominal types flow into the host-node slot of the same logical name.
	case ft.Kind == KindStruct && tt.Kind == KindHostNode:
		info, ok := in.Struct(from)
		if !ok {
			return false
		}
		name, ok := in.HostNodeName(to)
		return ok && info.Name == name
	case ft.Kind == KindEnum && tt.Kind == KindHostNode:
		info, ok := in.Enum(from)
		if !ok {
			return false
		}
		name, ok := in.HostNodeName(to)
		return ok && info.Name == name

	// Concrete node categories are nominal, but the generic node category
	// flows both ways; it is the type of fields declared only as "a node".
	case ft.Kind == KindHostNode && tt.Kind == KindHostNode:
		fname, _ := in.HostNodeName(from)
		tname, _ := in.HostNodeName(to)
		return fname == GenericNodeName || tname == GenericNodeName

	case ft.Kind == KindList && tt.Kind == KindList,
		ft.Kind == KindOptional && tt.Kind == KindOptional,
		ft.Kind == KindSet && tt.Kind == KindSet:
		return in.paramAssignable(ft.Elem, tt.Elem)

	case ft.Kind == KindResult && tt.Kind == KindResult,
		ft.Kind == KindMap && tt.Kind == KindMap:
		return in.paramAssignable(ft.Elem, tt.Elem) && in.paramAssignable(ft.Aux, tt.Aux)
	}

	return false
}

// paramAssignable applies container-parameter unification: Unknown on
// either side matches anything, otherwise ordinary assignability applies.
func (in *Interner) paramAssignable(from, to TypeID) bool {
	if ft, ok := in.Lookup(from); ok && ft.Kind == KindUnknown {
		return true
	}
	if tt, ok := in.Lookup(to); ok && tt.Kind == KindUnknown {
		return true
	}
	return in.AssignableTo(from, to)
}

// Unify picks the more concrete of two mutually assignable types. It is how
// top-down expected types replace bottom-up Unknowns: wherever actual
// contains Unknown and expected does not, the expected side wins.
func (in *Interner) Unify(actual, expected TypeID) TypeID {
	at, aok := in.Lookup(actual)
	et, eok := in.Lookup(expected)
	if !aok {
		return expected
	}
	if !eok {
		return actual
	}
	if at.Kind == KindUnknown {
		return expected
	}
	if et.Kind == KindUnknown {
		return actual
	}
	if at.Kind != et.Kind {
		return actual
	}
	switch at.Kind {
	case KindList:
		return in.Intern(MakeList(in.Unify(at.Elem, et.Elem)))
	case KindOptional:
		return in.Intern(MakeOptional(in.Unify(at.Elem, et.Elem)))
	case KindSet:
		return in.Intern(MakeSet(in.Unify(at.Elem, et.Elem)))
	case KindResult:
		return in.Intern(MakeResult(in.Unify(at.Elem, et.Elem), in.Unify(at.Aux, et.Aux)))
	case KindMap:
		return in.Intern(MakeMap(in.Unify(at.Aux, et.Aux), in.Unify(at.Elem, et.Elem)))
	}
	return actual
}
