package sema

import (
	"fmt"

	"reluxc/internal/ast"
	"reluxc/internal/diag"
	"reluxc/internal/mapping"
	"reluxc/internal/source"
	"reluxc/internal/types"
)

// genericNodeType is the host node type of fields typed only as "some node".
const genericNodeType = types.GenericNodeName

// inferExpr types one expression bottom-up, letting the expected type flow
// down into container literals and null. expected may be NoTypeID. The
// result is recorded in the side table and returned.
func (c *checker) inferExpr(id ast.ExprID, expected types.TypeID, sc *scope) types.TypeID {
	t := c.inferExprInner(id, expected, sc)
	c.result.ExprTypes[id] = t
	return t
}

func (c *checker) inferExprInner(id ast.ExprID, expected types.TypeID, sc *scope) types.TypeID {
	expr := c.builder.Exprs.Get(id)
	if expr == nil {
		return c.types.Builtins().Unknown
	}
	b := c.types.Builtins()

	switch expr.Kind {
	case ast.ExprLit:
		data, _ := c.builder.Exprs.Lit(id)
		switch data.Kind {
		case ast.LitString:
			return b.String
		case ast.LitInt:
			// An int literal in float position is a float literal.
			if et, ok := c.types.Lookup(expected); ok && et.Kind == types.KindFloat {
				return b.Float
			}
			return b.Int
		case ast.LitFloat:
			return b.Float
		case ast.LitBool:
			return b.Bool
		case ast.LitNull:
			return b.Null
		}
		return b.Unknown

	case ast.ExprIdent:
		data, _ := c.builder.Exprs.Ident(id)
		sym, ok := sc.lookup(data.Name)
		if !ok {
			diag.ReportError(c.reporter, diag.SemaUndefinedSymbol, expr.Span,
				fmt.Sprintf("undefined name %q", data.Name))
			return b.Unknown
		}
		return sym.Type

	case ast.ExprBinary:
		return c.inferBinary(id, sc)

	case ast.ExprUnary:
		data, _ := c.builder.Exprs.Unary(id)
		operand := c.inferExpr(data.Operand, types.NoTypeID, sc)
		switch data.Op {
		case ast.OpNot:
			if !c.types.AssignableTo(operand, b.Bool) {
				diag.ReportError(c.reporter, diag.SemaTypeMismatch, expr.Span,
					fmt.Sprintf("operator ! needs bool, got %s", c.types.DisplayName(operand)))
			}
			return b.Bool
		case ast.OpNeg:
			if !c.isNumeric(operand) {
				diag.ReportError(c.reporter, diag.SemaTypeMismatch, expr.Span,
					fmt.Sprintf("operator - needs a number, got %s", c.types.DisplayName(operand)))
				return b.Unknown
			}
			return operand
		}
		return b.Unknown

	case ast.ExprCall:
		return c.inferCall(id, expected, sc)

	case ast.ExprMember:
		return c.inferMember(id, sc)

	case ast.ExprIndex:
		data, _ := c.builder.Exprs.Index(id)
		object := c.inferExpr(data.Object, types.NoTypeID, sc)
		index := c.inferExpr(data.Index, types.NoTypeID, sc)
		ot, ok := c.types.Lookup(object)
		if !ok {
			return b.Unknown
		}
		switch ot.Kind {
		case types.KindList:
			if !c.types.AssignableTo(index, b.Int) {
				diag.ReportError(c.reporter, diag.SemaTypeMismatch, expr.Span,
					fmt.Sprintf("list index must be i32, got %s", c.types.DisplayName(index)))
			}
			return ot.Elem
		case types.KindMap:
			if !c.types.AssignableTo(index, ot.Aux) {
				diag.ReportError(c.reporter, diag.SemaTypeMismatch, expr.Span,
					fmt.Sprintf("map key must be %s, got %s",
						c.types.DisplayName(ot.Aux), c.types.DisplayName(index)))
			}
			return ot.Elem
		case types.KindUnknown:
			return b.Unknown
		}
		diag.ReportError(c.reporter, diag.SemaTypeMismatch, expr.Span,
			fmt.Sprintf("%s cannot be indexed", c.types.DisplayName(object)))
		return b.Unknown

	case ast.ExprStructInit:
		return c.inferStructInit(id, sc)

	case ast.ExprListInit:
		data, _ := c.builder.Exprs.ListInit(id)
		elemExpected := types.NoTypeID
		if et, ok := c.types.Lookup(expected); ok && et.Kind == types.KindList {
			elemExpected = et.Elem
		}
		elem := elemExpected
		if elem == types.NoTypeID {
			elem = b.Unknown
		}
		for _, e := range data.Elems {
			got := c.inferExpr(e, elemExpected, sc)
			elem = c.joinElem(elem, got, c.builder.Exprs.Get(e).Span)
		}
		return c.types.Intern(types.MakeList(elem))

	case ast.ExprMapInit:
		data, _ := c.builder.Exprs.MapInit(id)
		keyExpected, valExpected := types.NoTypeID, types.NoTypeID
		if et, ok := c.types.Lookup(expected); ok && et.Kind == types.KindMap {
			keyExpected, valExpected = et.Aux, et.Elem
		}
		key, val := keyExpected, valExpected
		if key == types.NoTypeID {
			key = b.Unknown
		}
		if val == types.NoTypeID {
			val = b.Unknown
		}
		for _, entry := range data.Entries {
			gotKey := c.inferExpr(entry.Key, keyExpected, sc)
			gotVal := c.inferExpr(entry.Value, valExpected, sc)
			key = c.joinElem(key, gotKey, c.builder.Exprs.Get(entry.Key).Span)
			val = c.joinElem(val, gotVal, c.builder.Exprs.Get(entry.Value).Span)
		}
		return c.types.Intern(types.MakeMap(key, val))

	case ast.ExprSetInit:
		data, _ := c.builder.Exprs.SetInit(id)
		elemExpected := types.NoTypeID
		if et, ok := c.types.Lookup(expected); ok && et.Kind == types.KindSet {
			elemExpected = et.Elem
		}
		elem := elemExpected
		if elem == types.NoTypeID {
			elem = b.Unknown
		}
		for _, e := range data.Elems {
			got := c.inferExpr(e, elemExpected, sc)
			elem = c.joinElem(elem, got, c.builder.Exprs.Get(e).Span)
		}
		return c.types.Intern(types.MakeSet(elem))

	case ast.ExprAssign:
		return c.inferAssign(id, sc)

	case ast.ExprMatches:
		data, _ := c.builder.Exprs.Matches(id)
		subject := c.inferExpr(data.Subject, types.NoTypeID, sc)
		if st, ok := c.types.Lookup(subject); !ok || (st.Kind != types.KindHostNode && st.Kind != types.KindUnknown) {
			diag.ReportError(c.reporter, diag.SemaTypeMismatch, expr.Span,
				fmt.Sprintf("shape test subject must be a host node, got %s", c.types.DisplayName(subject)))
		}
		if !mapping.Aligned(data.NodeType) {
			diag.ReportError(c.reporter, diag.SemaUnsupportedConstruct, expr.Span,
				fmt.Sprintf("node type %q has no validated lowering on both backends", data.NodeType))
		}
		return b.Bool
	}
	return b.Unknown
}

// joinElem unifies successive container element types, reporting when an
// element does not fit the running type.
func (c *checker) joinElem(acc, got types.TypeID, span source.Span) types.TypeID {
	if c.types.AssignableTo(got, acc) {
		return c.types.Unify(got, acc)
	}
	if c.types.AssignableTo(acc, got) {
		return c.types.Unify(acc, got)
	}
	diag.ReportError(c.reporter, diag.SemaTypeMismatch, span,
		fmt.Sprintf("element type %s does not match %s",
			c.types.DisplayName(got), c.types.DisplayName(acc)))
	return acc
}

func (c *checker) inferBinary(id ast.ExprID, sc *scope) types.TypeID {
	expr := c.builder.Exprs.Get(id)
	data, _ := c.builder.Exprs.Binary(id)
	b := c.types.Builtins()

	if data.Op.IsLogical() {
		for _, side := range []ast.ExprID{data.Left, data.Right} {
			t := c.inferExpr(side, b.Bool, sc)
			if !c.types.AssignableTo(t, b.Bool) {
				diag.ReportError(c.reporter, diag.SemaTypeMismatch, c.builder.Exprs.Get(side).Span,
					fmt.Sprintf("operator %s needs bool, got %s", data.Op, c.types.DisplayName(t)))
			}
		}
		return b.Bool
	}

	left := c.inferExpr(data.Left, types.NoTypeID, sc)
	right := c.inferExpr(data.Right, left, sc)

	if data.Op.IsComparison() {
		if !c.types.AssignableTo(right, left) && !c.types.AssignableTo(left, right) {
			diag.ReportError(c.reporter, diag.SemaTypeMismatch, expr.Span,
				fmt.Sprintf("cannot compare %s with %s",
					c.types.DisplayName(left), c.types.DisplayName(right)))
		}
		if data.Op != ast.OpEq && data.Op != ast.OpNe && !c.isNumeric(left) && left != b.String {
			diag.ReportError(c.reporter, diag.SemaTypeMismatch, expr.Span,
				fmt.Sprintf("operator %s needs ordered operands, got %s", data.Op, c.types.DisplayName(left)))
		}
		return b.Bool
	}

	// Arithmetic. + also concatenates strings.
	if data.Op == ast.OpAdd && left == b.String {
		if !c.types.AssignableTo(right, b.String) {
			diag.ReportError(c.reporter, diag.SemaTypeMismatch, expr.Span,
				fmt.Sprintf("cannot concatenate str with %s", c.types.DisplayName(right)))
		}
		return b.String
	}
	if !c.isNumeric(left) || !c.isNumeric(right) {
		diag.ReportError(c.reporter, diag.SemaTypeMismatch, expr.Span,
			fmt.Sprintf("operator %s needs numbers, got %s and %s",
				data.Op, c.types.DisplayName(left), c.types.DisplayName(right)))
		return b.Unknown
	}
	if left == b.Float || right == b.Float {
		return b.Float
	}
	return b.Int
}

func (c *checker) inferMember(id ast.ExprID, sc *scope) types.TypeID {
	expr := c.builder.Exprs.Get(id)
	data, _ := c.builder.Exprs.Member(id)
	b := c.types.Builtins()

	// EnumName.Variant produces an enum value without payload.
	if identData, ok := c.builder.Exprs.Ident(data.Object); ok {
		if sym, found := sc.lookup(identData.Name); found && sym.Kind == SymEnum {
			c.result.ExprTypes[data.Object] = sym.Type
			info, _ := c.types.Enum(sym.Type)
			variant, ok := info.VariantByName(data.Property)
			if !ok {
				diag.ReportError(c.reporter, diag.SemaUnknownVariant, expr.Span,
					fmt.Sprintf("enum %s has no variant %q", info.Name, data.Property))
				return b.Unknown
			}
			if len(variant.Params) != 0 {
				diag.ReportError(c.reporter, diag.SemaArityMismatch, expr.Span,
					fmt.Sprintf("variant %s.%s carries a payload; call it", info.Name, data.Property))
			}
			return sym.Type
		}
	}

	object := c.inferExpr(data.Object, types.NoTypeID, sc)
	return c.memberType(object, data.Property, expr.Span)
}

// memberType resolves field access on structs and host nodes.
func (c *checker) memberType(object types.TypeID, property string, span source.Span) types.TypeID {
	b := c.types.Builtins()
	ot, ok := c.types.Lookup(object)
	if !ok || ot.Kind == types.KindUnknown {
		return b.Unknown
	}

	switch ot.Kind {
	case types.KindStruct:
		info, _ := c.types.Struct(object)
		field, ok := info.FieldByName(property)
		if !ok {
			diag.ReportError(c.reporter, diag.SemaUnknownField, span,
				fmt.Sprintf("struct %s has no field %q", info.Name, property))
			return b.Unknown
		}
		return field.Type

	case types.KindHostNode:
		nodeType, _ := c.types.HostNodeName(object)
		fm, ok := mapping.Field(nodeType, property)
		if !ok {
			diag.ReportError(c.reporter, diag.SemaUnknownField, span,
				fmt.Sprintf("node type %s has no validated field %q", nodeType, property))
			return b.Unknown
		}
		return c.fieldLogicalType(fm)
	}

	diag.ReportError(c.reporter, diag.SemaUnknownField, span,
		fmt.Sprintf("%s has no fields", c.types.DisplayName(object)))
	return b.Unknown
}

// fieldLogicalType maps a catalog entry to the surface type a plugin sees.
func (c *checker) fieldLogicalType(fm *mapping.FieldMapping) types.TypeID {
	b := c.types.Builtins()
	var t types.TypeID
	switch fm.ValueType {
	case "str":
		t = b.String
	case "bool":
		t = b.Bool
	case "f64":
		t = b.Float
	case "node":
		t = c.types.InternHostNode(genericNodeType)
	case "nodelist":
		return c.types.Intern(types.MakeList(c.types.InternHostNode(genericNodeType)))
	default:
		t = b.Unknown
	}
	if fm.Optional {
		return c.types.Intern(types.MakeOptional(t))
	}
	return t
}

func (c *checker) inferStructInit(id ast.ExprID, sc *scope) types.TypeID {
	expr := c.builder.Exprs.Get(id)
	data, _ := c.builder.Exprs.StructInit(id)
	b := c.types.Builtins()

	structID, ok := c.types.StructByName(data.Name)
	if !ok {
		diag.ReportError(c.reporter, diag.SemaUndefinedSymbol, expr.Span,
			fmt.Sprintf("undefined struct %q", data.Name))
		for _, f := range data.Fields {
			c.inferExpr(f.Value, types.NoTypeID, sc)
		}
		return b.Unknown
	}
	info, _ := c.types.Struct(structID)

	covered := make(map[string]bool, len(data.Fields))
	for _, f := range data.Fields {
		field, known := info.FieldByName(f.Name)
		if !known {
			diag.ReportError(c.reporter, diag.SemaUnknownField, f.Span,
				fmt.Sprintf("struct %s has no field %q", info.Name, f.Name))
			c.inferExpr(f.Value, types.NoTypeID, sc)
			continue
		}
		if covered[f.Name] {
			diag.ReportError(c.reporter, diag.SemaDuplicateSymbol, f.Span,
				fmt.Sprintf("field %q is initialized twice", f.Name))
		}
		covered[f.Name] = true
		value := c.inferExpr(f.Value, field.Type, sc)
		if !c.types.AssignableTo(value, field.Type) {
			diag.ReportError(c.reporter, c.mismatchCode(value, field.Type), f.Span,
				fmt.Sprintf("field %q wants %s, got %s",
					f.Name, c.types.DisplayName(field.Type), c.types.DisplayName(value)))
		}
	}
	for _, field := range info.Fields {
		if !covered[field.Name] {
			diag.ReportError(c.reporter, diag.SemaTypeMismatch, expr.Span,
				fmt.Sprintf("struct %s is missing field %q", info.Name, field.Name))
		}
	}
	return structID
}

func (c *checker) inferAssign(id ast.ExprID, sc *scope) types.TypeID {
	expr := c.builder.Exprs.Get(id)
	data, _ := c.builder.Exprs.Assign(id)
	b := c.types.Builtins()

	target := c.inferExpr(data.Target, types.NoTypeID, sc)
	c.checkMutation(data.Target, sc)

	value := c.inferExpr(data.Value, target, sc)
	if data.Op != ast.AssignSet {
		if !(c.isNumeric(target) && c.isNumeric(value)) &&
			!(data.Op == ast.AssignAdd && target == b.String && c.types.AssignableTo(value, b.String)) {
			diag.ReportError(c.reporter, diag.SemaTypeMismatch, expr.Span,
				fmt.Sprintf("operator %s needs numbers, got %s and %s",
					data.Op, c.types.DisplayName(target), c.types.DisplayName(value)))
		}
		return b.Unit
	}
	if !c.types.AssignableTo(value, target) {
		diag.ReportError(c.reporter, c.mismatchCode(value, target), expr.Span,
			fmt.Sprintf("cannot assign %s to %s",
				c.types.DisplayName(value), c.types.DisplayName(target)))
	}
	return b.Unit
}

func (c *checker) isNumeric(id types.TypeID) bool {
	b := c.types.Builtins()
	return id == b.Int || id == b.Float || id == b.Unknown
}
