package swc

import (
	"fmt"

	"reluxc/internal/ast"
	"reluxc/internal/mapping"
	"reluxc/internal/types"
)

// rustSyn renders a written type annotation as Rust source.
func (g *generator) rustSyn(id ast.TypeSynID) string {
	syn := g.builder.TypeSyns.Get(id)
	if syn == nil {
		return "()"
	}
	switch syn.Kind {
	case ast.TypeSynName:
		data, _ := g.builder.TypeSyns.Name(id)
		return g.rustName(data.Name)
	case ast.TypeSynUnit:
		return "()"
	case ast.TypeSynList:
		elem, _ := g.builder.TypeSyns.Elem(id)
		return fmt.Sprintf("Vec<%s>", g.rustSyn(elem.Elem))
	case ast.TypeSynOptional:
		elem, _ := g.builder.TypeSyns.Elem(id)
		return fmt.Sprintf("Option<%s>", g.rustSyn(elem.Elem))
	case ast.TypeSynSet:
		g.needSet = true
		elem, _ := g.builder.TypeSyns.Elem(id)
		return fmt.Sprintf("HashSet<%s>", g.rustSyn(elem.Elem))
	case ast.TypeSynResult:
		pair, _ := g.builder.TypeSyns.Pair(id)
		return fmt.Sprintf("Result<%s, %s>", g.rustSyn(pair.First), g.rustSyn(pair.Second))
	case ast.TypeSynMap:
		g.needMap = true
		pair, _ := g.builder.TypeSyns.Pair(id)
		return fmt.Sprintf("HashMap<%s, %s>", g.rustSyn(pair.First), g.rustSyn(pair.Second))
	}
	return "()"
}

func (g *generator) rustName(name string) string {
	switch name {
	case "str", "String":
		return "String"
	case "i32", "u32", "int":
		return "i32"
	case "f64", "float":
		return "f64"
	case "bool":
		return "bool"
	case "unit", "()":
		return "()"
	}
	if nm, ok := mapping.Node(name); ok {
		return nm.Swc
	}
	// Plugin-declared struct or enum keeps its name.
	return name
}

// rustType renders an interned semantic type.
func (g *generator) rustType(id types.TypeID) string {
	in := g.dec.Sem.Types
	t, ok := in.Lookup(id)
	if !ok {
		return "()"
	}
	switch t.Kind {
	case types.KindString:
		return "String"
	case types.KindInt:
		return "i32"
	case types.KindFloat:
		return "f64"
	case types.KindBool:
		return "bool"
	case types.KindUnit:
		return "()"
	case types.KindList:
		return fmt.Sprintf("Vec<%s>", g.rustType(t.Elem))
	case types.KindOptional:
		return fmt.Sprintf("Option<%s>", g.rustType(t.Elem))
	case types.KindSet:
		g.needSet = true
		return fmt.Sprintf("HashSet<%s>", g.rustType(t.Elem))
	case types.KindMap:
		g.needMap = true
		return fmt.Sprintf("HashMap<%s, %s>", g.rustType(t.Aux), g.rustType(t.Elem))
	case types.KindResult:
		return fmt.Sprintf("Result<%s, %s>", g.rustType(t.Elem), g.rustType(t.Aux))
	case types.KindHostNode:
		name, _ := in.HostNodeName(id)
		if nm, ok := mapping.Node(name); ok {
			return nm.Swc
		}
		return name
	case types.KindStruct:
		info, _ := in.Struct(id)
		return info.Name
	case types.KindEnum:
		info, _ := in.Enum(id)
		return info.Name
	}
	return "()"
}

// paramType applies the ownership qualifier to a parameter annotation.
func (g *generator) paramType(id ast.TypeSynID, own types.Ownership) string {
	base := g.rustSyn(id)
	switch own {
	case types.OwnBorrowed:
		return "&" + base
	case types.OwnMutBorrowed:
		return "&mut " + base
	}
	return base
}

// defaultValue renders the initial value of one state field.
func (g *generator) defaultValue(id types.TypeID) string {
	t, ok := g.dec.Sem.Types.Lookup(id)
	if !ok {
		return "Default::default()"
	}
	switch t.Kind {
	case types.KindInt:
		return "0"
	case types.KindFloat:
		return "0.0"
	case types.KindBool:
		return "false"
	case types.KindString:
		return "String::new()"
	case types.KindList:
		return "Vec::new()"
	case types.KindMap:
		g.needMap = true
		return "HashMap::new()"
	case types.KindSet:
		g.needSet = true
		return "HashSet::new()"
	case types.KindOptional:
		return "None"
	}
	return "Default::default()"
}
