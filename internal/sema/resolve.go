package sema

import (
	"fmt"

	"reluxc/internal/ast"
	"reluxc/internal/diag"
	"reluxc/internal/mapping"
	"reluxc/internal/source"
	"reluxc/internal/types"
)

// stateStructName is the plugin-body struct that becomes the per-instance
// state aggregate, reachable through the implicit `self` binding.
const stateStructName = "State"

func (c *checker) declareTypes(body []ast.ItemID) {
	// Predeclare names first so struct fields can reference each other.
	for _, itemID := range body {
		item := c.builder.Items.Get(itemID)
		if item == nil {
			continue
		}
		switch item.Kind {
		case ast.ItemStruct:
			data, _ := c.builder.Items.Struct(itemID)
			id := c.types.DeclareStruct(types.StructInfo{Name: data.Name, Span: item.Span})
			c.declareGlobal(&Symbol{Name: data.Name, Kind: SymStruct, Type: id, Span: item.Span})
		case ast.ItemEnum:
			data, _ := c.builder.Items.Enum(itemID)
			id := c.types.DeclareEnum(types.EnumInfo{Name: data.Name, Span: item.Span})
			c.declareGlobal(&Symbol{Name: data.Name, Kind: SymEnum, Type: id, Span: item.Span})
		}
	}

	// Fill in field and variant types.
	for _, itemID := range body {
		item := c.builder.Items.Get(itemID)
		if item == nil {
			continue
		}
		switch item.Kind {
		case ast.ItemStruct:
			data, _ := c.builder.Items.Struct(itemID)
			info := types.StructInfo{Name: data.Name, Span: item.Span}
			for _, f := range data.Fields {
				info.Fields = append(info.Fields, types.Field{
					Name: f.Name,
					Type: c.typeFromSyn(f.Type),
					Span: f.Span,
				})
			}
			id := c.types.DeclareStruct(info)
			if data.Name == stateStructName {
				c.result.StateStruct = id
				c.result.StateItem = itemID
			}
		case ast.ItemEnum:
			data, _ := c.builder.Items.Enum(itemID)
			info := types.EnumInfo{Name: data.Name, Span: item.Span}
			for _, v := range data.Variants {
				variant := types.Variant{Name: v.Name, Span: v.Span}
				for _, p := range v.Params {
					variant.Params = append(variant.Params, c.typeFromSyn(p))
				}
				info.Variants = append(info.Variants, variant)
			}
			c.types.DeclareEnum(info)
		}
	}
}

func (c *checker) declareFns(body []ast.ItemID) {
	seenVisitors := make(map[string]ast.ItemID)
	for _, itemID := range body {
		item := c.builder.Items.Get(itemID)
		if item == nil || item.Kind != ast.ItemFn {
			continue
		}
		data, _ := c.builder.Items.Fn(itemID)

		var owns []types.Ownership
		var params []types.TypeID
		for _, p := range data.Params {
			owns = append(owns, ownershipOf(p.Mode))
			params = append(params, c.typeFromSyn(p.Type))
		}
		// Qualifiers are fixed here, once, and never revised.
		c.result.ParamOwnership[itemID] = owns

		ret := c.types.Builtins().Unit
		if data.Ret.IsValid() {
			ret = c.typeFromSyn(data.Ret)
		}
		fnType := c.types.InternFunction(types.FnInfo{Params: params, Ret: ret})
		c.declareGlobal(&Symbol{Name: data.Name, Kind: SymFn, Type: fnType, Span: item.Span})

		if data.Fn == ast.FnVisitor {
			c.resolveVisitor(itemID, data, item.Span, seenVisitors)
		}
	}
}

func (c *checker) resolveVisitor(itemID ast.ItemID, data *ast.ItemFnData, span source.Span, seen map[string]ast.ItemID) {
	if !mapping.Aligned(data.VisitorOf) {
		diag.ReportError(c.reporter, diag.SemaUnsupportedConstruct, span,
			fmt.Sprintf("node type %q has no validated lowering on both backends", data.VisitorOf))
		return
	}
	key := fmt.Sprintf("%s/%v", data.VisitorOf, data.Mutates)
	if _, dup := seen[key]; dup {
		diag.ReportError(c.reporter, diag.SemaDuplicateVisitor, span,
			fmt.Sprintf("duplicate visitor for node type %q", data.VisitorOf))
		return
	}
	seen[key] = itemID
	c.result.Visitors = append(c.result.Visitors, VisitorInfo{
		Item:     itemID,
		NodeType: data.VisitorOf,
		Mutates:  data.Mutates,
	})
}

func ownershipOf(mode ast.BindMode) types.Ownership {
	switch mode {
	case ast.BindBorrowed:
		return types.OwnBorrowed
	case ast.BindMutBorrowed:
		return types.OwnMutBorrowed
	}
	return types.OwnOwned
}

func (c *checker) declareGlobal(sym *Symbol) {
	if prev, ok := c.global.declare(sym); !ok {
		d := diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.SemaDuplicateSymbol,
			Message:  fmt.Sprintf("%s %q is already declared", sym.Kind, sym.Name),
			Primary:  sym.Span,
		}
		d = d.WithNote(prev.Span, "previous declaration here")
		if c.reporter != nil {
			c.reporter.Report(d)
		}
	}
}

// typeFromSyn interns the semantic type a written annotation denotes.
func (c *checker) typeFromSyn(id ast.TypeSynID) types.TypeID {
	b := c.types.Builtins()
	if !id.IsValid() {
		return b.Unknown
	}
	syn := c.builder.TypeSyns.Get(id)
	if syn == nil {
		return b.Unknown
	}
	switch syn.Kind {
	case ast.TypeSynUnit:
		return b.Unit
	case ast.TypeSynName:
		data, _ := c.builder.TypeSyns.Name(id)
		return c.typeFromName(data.Name, syn.Span)
	case ast.TypeSynList:
		data, _ := c.builder.TypeSyns.Elem(id)
		return c.types.Intern(types.MakeList(c.typeFromSyn(data.Elem)))
	case ast.TypeSynOptional:
		data, _ := c.builder.TypeSyns.Elem(id)
		return c.types.Intern(types.MakeOptional(c.typeFromSyn(data.Elem)))
	case ast.TypeSynSet:
		data, _ := c.builder.TypeSyns.Elem(id)
		return c.types.Intern(types.MakeSet(c.typeFromSyn(data.Elem)))
	case ast.TypeSynResult:
		data, _ := c.builder.TypeSyns.Pair(id)
		return c.types.Intern(types.MakeResult(c.typeFromSyn(data.First), c.typeFromSyn(data.Second)))
	case ast.TypeSynMap:
		data, _ := c.builder.TypeSyns.Pair(id)
		return c.types.Intern(types.MakeMap(c.typeFromSyn(data.First), c.typeFromSyn(data.Second)))
	}
	return b.Unknown
}

func (c *checker) typeFromName(name string, span source.Span) types.TypeID {
	b := c.types.Builtins()
	switch name {
	case "str", "String":
		return b.String
	case "i32", "u32", "int":
		return b.Int
	case "f64", "float":
		return b.Float
	case "bool":
		return b.Bool
	case "unit", "()":
		return b.Unit
	}
	if id, ok := c.types.StructByName(name); ok {
		return id
	}
	if id, ok := c.types.EnumByName(name); ok {
		return id
	}
	if mapping.Aligned(name) {
		return c.types.InternHostNode(name)
	}
	diag.ReportError(c.reporter, diag.SemaUnsupportedConstruct, span,
		fmt.Sprintf("type %q is not a declared type or an aligned host node", name))
	return b.Unknown
}
