package sema

import (
	"fmt"

	"reluxc/internal/ast"
	"reluxc/internal/diag"
	"reluxc/internal/mapping"
	"reluxc/internal/types"
)

// checkPat validates a pattern against the subject type and declares its
// bindings in the arm scope. Binding types land in the PatBinds side table
// for the decorator.
func (c *checker) checkPat(id ast.PatID, subject types.TypeID, sc *scope) {
	pat := c.builder.Pats.Get(id)
	if pat == nil {
		return
	}
	switch pat.Kind {
	case ast.PatWildcard:
		return

	case ast.PatLit:
		data, _ := c.builder.Pats.Lit(id)
		lit := c.litPatType(data.Kind)
		if !c.types.AssignableTo(lit, subject) && !c.types.AssignableTo(subject, lit) {
			diag.ReportError(c.reporter, diag.SemaTypeMismatch, pat.Span,
				fmt.Sprintf("pattern of type %s cannot match %s",
					c.types.DisplayName(lit), c.types.DisplayName(subject)))
		}

	case ast.PatBind:
		data, _ := c.builder.Pats.Bind(id)
		c.result.PatBinds[id] = subject
		sc.declare(&Symbol{
			Name: data.Name,
			Kind: SymLet,
			Type: subject,
			Own:  types.OwnBorrowed,
			Span: pat.Span,
		})

	case ast.PatVariant:
		c.checkVariantPat(id, subject, sc)

	case ast.PatStruct:
		c.checkStructPat(id, subject, sc)

	case ast.PatNode:
		c.checkNodePat(id, subject, sc)
	}
}

func (c *checker) litPatType(kind ast.LitKind) types.TypeID {
	b := c.types.Builtins()
	switch kind {
	case ast.LitString:
		return b.String
	case ast.LitInt:
		return b.Int
	case ast.LitFloat:
		return b.Float
	case ast.LitBool:
		return b.Bool
	case ast.LitNull:
		return b.Null
	}
	return b.Unknown
}

func (c *checker) checkVariantPat(id ast.PatID, subject types.TypeID, sc *scope) {
	pat := c.builder.Pats.Get(id)
	data, _ := c.builder.Pats.Variant(id)

	enumID := subject
	if data.Enum != "" {
		named, ok := c.types.EnumByName(data.Enum)
		if !ok {
			diag.ReportError(c.reporter, diag.SemaUndefinedSymbol, pat.Span,
				fmt.Sprintf("undefined enum %q", data.Enum))
			return
		}
		enumID = named
	}
	info, ok := c.types.Enum(enumID)
	if !ok {
		diag.ReportError(c.reporter, diag.SemaTypeMismatch, pat.Span,
			fmt.Sprintf("variant pattern needs an enum subject, got %s", c.types.DisplayName(subject)))
		return
	}
	if data.Enum != "" && !c.types.AssignableTo(enumID, subject) && !c.types.AssignableTo(subject, enumID) {
		diag.ReportError(c.reporter, diag.SemaTypeMismatch, pat.Span,
			fmt.Sprintf("pattern matches %s but subject is %s",
				info.Name, c.types.DisplayName(subject)))
	}

	variant, ok := info.VariantByName(data.Variant)
	if !ok {
		diag.ReportError(c.reporter, diag.SemaUnknownVariant, pat.Span,
			fmt.Sprintf("enum %s has no variant %q", info.Name, data.Variant))
		return
	}
	if len(data.Params) != len(variant.Params) {
		diag.ReportError(c.reporter, diag.SemaArityMismatch, pat.Span,
			fmt.Sprintf("variant %s.%s carries %d values, pattern binds %d",
				info.Name, data.Variant, len(variant.Params), len(data.Params)))
	}
	for i, sub := range data.Params {
		inner := c.types.Builtins().Unknown
		if i < len(variant.Params) {
			inner = variant.Params[i]
		}
		c.checkPat(sub, inner, sc)
	}
}

func (c *checker) checkStructPat(id ast.PatID, subject types.TypeID, sc *scope) {
	pat := c.builder.Pats.Get(id)
	data, _ := c.builder.Pats.Struct(id)

	structID, ok := c.types.StructByName(data.Name)
	if !ok {
		diag.ReportError(c.reporter, diag.SemaUndefinedSymbol, pat.Span,
			fmt.Sprintf("undefined struct %q", data.Name))
		return
	}
	if !c.types.AssignableTo(structID, subject) && !c.types.AssignableTo(subject, structID) {
		diag.ReportError(c.reporter, diag.SemaTypeMismatch, pat.Span,
			fmt.Sprintf("pattern matches %s but subject is %s",
				data.Name, c.types.DisplayName(subject)))
	}
	info, _ := c.types.Struct(structID)
	for _, f := range data.Fields {
		field, known := info.FieldByName(f.Name)
		if !known {
			diag.ReportError(c.reporter, diag.SemaUnknownField, f.Span,
				fmt.Sprintf("struct %s has no field %q", info.Name, f.Name))
			continue
		}
		c.checkPat(f.Pat, field.Type, sc)
	}
}

// checkNodePat validates a host-node shape pattern: the node category must
// lower on both backends and every field constraint must name a validated
// field of that category.
func (c *checker) checkNodePat(id ast.PatID, subject types.TypeID, sc *scope) {
	pat := c.builder.Pats.Get(id)
	data, _ := c.builder.Pats.Node(id)

	if st, ok := c.types.Lookup(subject); ok &&
		st.Kind != types.KindHostNode && st.Kind != types.KindUnknown {
		diag.ReportError(c.reporter, diag.SemaTypeMismatch, pat.Span,
			fmt.Sprintf("node pattern needs a host node subject, got %s", c.types.DisplayName(subject)))
	}
	if !mapping.Aligned(data.NodeType) {
		diag.ReportError(c.reporter, diag.SemaUnsupportedConstruct, pat.Span,
			fmt.Sprintf("node type %q has no validated lowering on both backends", data.NodeType))
		return
	}

	matched := c.types.InternHostNode(data.NodeType)
	if data.Binding != "" {
		c.result.PatBinds[id] = matched
		sc.declare(&Symbol{
			Name: data.Binding,
			Kind: SymLet,
			Type: matched,
			Own:  types.OwnBorrowed,
			Span: pat.Span,
		})
	}

	for _, f := range data.Fields {
		fm, known := mapping.Field(data.NodeType, f.Name)
		if !known {
			diag.ReportError(c.reporter, diag.SemaUnknownField, f.Span,
				fmt.Sprintf("node type %s has no validated field %q", data.NodeType, f.Name))
			continue
		}
		c.checkPat(f.Pat, c.fieldLogicalType(fm), sc)
	}
}
