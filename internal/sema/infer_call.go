package sema

import (
	"fmt"

	"reluxc/internal/ast"
	"reluxc/internal/diag"
	"reluxc/internal/source"
	"reluxc/internal/types"
)

func (c *checker) inferCall(id ast.ExprID, expected types.TypeID, sc *scope) types.TypeID {
	expr := c.builder.Exprs.Get(id)
	data, _ := c.builder.Exprs.Call(id)
	b := c.types.Builtins()

	// Method call: receiver.method(args).
	if member, ok := c.builder.Exprs.Member(data.Callee); ok {
		// EnumName.Variant(payload) constructs an enum value.
		if identData, isIdent := c.builder.Exprs.Ident(member.Object); isIdent {
			if sym, found := sc.lookup(identData.Name); found && sym.Kind == SymEnum {
				return c.inferVariantCall(sym.Type, member.Property, data.Args, expr.Span, sc)
			}
		}
		return c.inferMethodCall(id, member, data.Args, sc)
	}

	identData, isIdent := c.builder.Exprs.Ident(data.Callee)
	if !isIdent {
		callee := c.inferExpr(data.Callee, types.NoTypeID, sc)
		diag.ReportError(c.reporter, diag.SemaNotCallable, expr.Span,
			fmt.Sprintf("%s is not callable", c.types.DisplayName(callee)))
		for _, arg := range data.Args {
			c.inferExpr(arg, types.NoTypeID, sc)
		}
		return b.Unknown
	}

	switch identData.Name {
	case "Some":
		if !c.expectArity(1, data.Args, expr.Span, "Some", sc) {
			return b.Unknown
		}
		inner := types.NoTypeID
		if et, ok := c.types.Lookup(expected); ok && et.Kind == types.KindOptional {
			inner = et.Elem
		}
		value := c.inferExpr(data.Args[0], inner, sc)
		return c.types.Intern(types.MakeOptional(value))
	case "None":
		if !c.expectArity(0, data.Args, expr.Span, "None", sc) {
			return b.Unknown
		}
		if et, ok := c.types.Lookup(expected); ok && et.Kind == types.KindOptional {
			return expected
		}
		return c.types.Intern(types.MakeOptional(b.Unknown))
	case "Ok":
		if !c.expectArity(1, data.Args, expr.Span, "Ok", sc) {
			return b.Unknown
		}
		okInner, errInner := types.NoTypeID, b.Unknown
		if et, ok := c.types.Lookup(expected); ok && et.Kind == types.KindResult {
			okInner, errInner = et.Elem, et.Aux
		}
		value := c.inferExpr(data.Args[0], okInner, sc)
		return c.types.Intern(types.MakeResult(value, errInner))
	case "Err":
		if !c.expectArity(1, data.Args, expr.Span, "Err", sc) {
			return b.Unknown
		}
		okInner, errInner := b.Unknown, types.NoTypeID
		if et, ok := c.types.Lookup(expected); ok && et.Kind == types.KindResult {
			okInner, errInner = et.Elem, et.Aux
		}
		value := c.inferExpr(data.Args[0], errInner, sc)
		return c.types.Intern(types.MakeResult(okInner, value))
	}

	sym, found := sc.lookup(identData.Name)
	if !found {
		diag.ReportError(c.reporter, diag.SemaUndefinedSymbol, expr.Span,
			fmt.Sprintf("undefined function %q", identData.Name))
		for _, arg := range data.Args {
			c.inferExpr(arg, types.NoTypeID, sc)
		}
		return b.Unknown
	}
	fn, isFn := c.types.Function(sym.Type)
	if sym.Kind != SymFn || !isFn {
		diag.ReportError(c.reporter, diag.SemaNotCallable, expr.Span,
			fmt.Sprintf("%s %q is not callable", sym.Kind, identData.Name))
		for _, arg := range data.Args {
			c.inferExpr(arg, types.NoTypeID, sc)
		}
		return b.Unknown
	}
	c.result.ExprTypes[data.Callee] = sym.Type

	if len(data.Args) != len(fn.Params) {
		diag.ReportError(c.reporter, diag.SemaArityMismatch, expr.Span,
			fmt.Sprintf("function %q wants %d arguments, got %d",
				identData.Name, len(fn.Params), len(data.Args)))
	}
	for i, arg := range data.Args {
		if i >= len(fn.Params) {
			c.inferExpr(arg, types.NoTypeID, sc)
			continue
		}
		got := c.inferExpr(arg, fn.Params[i], sc)
		if !c.types.AssignableTo(got, fn.Params[i]) {
			diag.ReportError(c.reporter, c.mismatchCode(got, fn.Params[i]), c.builder.Exprs.Get(arg).Span,
				fmt.Sprintf("argument %d wants %s, got %s",
					i+1, c.types.DisplayName(fn.Params[i]), c.types.DisplayName(got)))
		}
	}
	return fn.Ret
}

func (c *checker) inferVariantCall(enumID types.TypeID, name string, args []ast.ExprID, span source.Span, sc *scope) types.TypeID {
	b := c.types.Builtins()
	info, _ := c.types.Enum(enumID)
	variant, ok := info.VariantByName(name)
	if !ok {
		diag.ReportError(c.reporter, diag.SemaUnknownVariant, span,
			fmt.Sprintf("enum %s has no variant %q", info.Name, name))
		for _, arg := range args {
			c.inferExpr(arg, types.NoTypeID, sc)
		}
		return b.Unknown
	}
	if len(args) != len(variant.Params) {
		diag.ReportError(c.reporter, diag.SemaArityMismatch, span,
			fmt.Sprintf("variant %s.%s wants %d arguments, got %d",
				info.Name, name, len(variant.Params), len(args)))
	}
	for i, arg := range args {
		if i >= len(variant.Params) {
			c.inferExpr(arg, types.NoTypeID, sc)
			continue
		}
		got := c.inferExpr(arg, variant.Params[i], sc)
		if !c.types.AssignableTo(got, variant.Params[i]) {
			diag.ReportError(c.reporter, c.mismatchCode(got, variant.Params[i]), c.builder.Exprs.Get(arg).Span,
				fmt.Sprintf("payload %d wants %s, got %s",
					i+1, c.types.DisplayName(variant.Params[i]), c.types.DisplayName(got)))
		}
	}
	return enumID
}

// methodSig describes one receiver method. Param/Ret use small placeholder
// kinds resolved against the receiver's element types.
type methodSig struct {
	params  []methodType
	ret     methodType
	mutates bool
}

type methodTypeKind uint8

const (
	mtElem methodTypeKind = iota // receiver element (map value for maps)
	mtKey                        // map key
	mtSelf                       // receiver type itself
	mtBool
	mtInt
	mtStr
	mtUnit
	mtOptElem // Option<elem>
)

type methodType struct{ kind methodTypeKind }

var listMethods = map[string]methodSig{
	"push":     {params: []methodType{{mtElem}}, ret: methodType{mtUnit}, mutates: true},
	"pop":      {ret: methodType{mtOptElem}, mutates: true},
	"insert":   {params: []methodType{{mtInt}, {mtElem}}, ret: methodType{mtUnit}, mutates: true},
	"remove":   {params: []methodType{{mtInt}}, ret: methodType{mtElem}, mutates: true},
	"clear":    {ret: methodType{mtUnit}, mutates: true},
	"len":      {ret: methodType{mtInt}},
	"is_empty": {ret: methodType{mtBool}},
	"contains": {params: []methodType{{mtElem}}, ret: methodType{mtBool}},
	"get":      {params: []methodType{{mtInt}}, ret: methodType{mtOptElem}},
	"clone":    {ret: methodType{mtSelf}},
}

var mapMethods = map[string]methodSig{
	"insert":       {params: []methodType{{mtKey}, {mtElem}}, ret: methodType{mtUnit}, mutates: true},
	"remove":       {params: []methodType{{mtKey}}, ret: methodType{mtOptElem}, mutates: true},
	"clear":        {ret: methodType{mtUnit}, mutates: true},
	"get":          {params: []methodType{{mtKey}}, ret: methodType{mtOptElem}},
	"contains_key": {params: []methodType{{mtKey}}, ret: methodType{mtBool}},
	"len":          {ret: methodType{mtInt}},
	"is_empty":     {ret: methodType{mtBool}},
	"clone":        {ret: methodType{mtSelf}},
}

var setMethods = map[string]methodSig{
	"insert":   {params: []methodType{{mtElem}}, ret: methodType{mtBool}, mutates: true},
	"remove":   {params: []methodType{{mtElem}}, ret: methodType{mtBool}, mutates: true},
	"clear":    {ret: methodType{mtUnit}, mutates: true},
	"contains": {params: []methodType{{mtElem}}, ret: methodType{mtBool}},
	"len":      {ret: methodType{mtInt}},
	"is_empty": {ret: methodType{mtBool}},
	"clone":    {ret: methodType{mtSelf}},
}

var strMethods = map[string]methodSig{
	"len":         {ret: methodType{mtInt}},
	"is_empty":    {ret: methodType{mtBool}},
	"contains":    {params: []methodType{{mtStr}}, ret: methodType{mtBool}},
	"starts_with": {params: []methodType{{mtStr}}, ret: methodType{mtBool}},
	"ends_with":   {params: []methodType{{mtStr}}, ret: methodType{mtBool}},
	"to_string":   {ret: methodType{mtStr}},
	"clone":       {ret: methodType{mtSelf}},
}

var optionalMethods = map[string]methodSig{
	"is_some":   {ret: methodType{mtBool}},
	"is_none":   {ret: methodType{mtBool}},
	"unwrap":    {ret: methodType{mtElem}},
	"unwrap_or": {params: []methodType{{mtElem}}, ret: methodType{mtElem}},
	"clone":     {ret: methodType{mtSelf}},
}

// nodeMethods are the traversal operations valid on any host node value.
var nodeMethods = map[string]methodSig{
	"replace_with": {params: []methodType{{mtSelf}}, ret: methodType{mtUnit}, mutates: true},
	"remove":       {ret: methodType{mtUnit}, mutates: true},
	"clone":        {ret: methodType{mtSelf}},
}

func (c *checker) inferMethodCall(id ast.ExprID, member *ast.ExprMemberData, args []ast.ExprID, sc *scope) types.TypeID {
	expr := c.builder.Exprs.Get(id)
	b := c.types.Builtins()

	recv := c.inferExpr(member.Object, types.NoTypeID, sc)
	rt, ok := c.types.Lookup(recv)
	if !ok || rt.Kind == types.KindUnknown {
		for _, arg := range args {
			c.inferExpr(arg, types.NoTypeID, sc)
		}
		return b.Unknown
	}

	var table map[string]methodSig
	switch rt.Kind {
	case types.KindList:
		table = listMethods
	case types.KindMap:
		table = mapMethods
	case types.KindSet:
		table = setMethods
	case types.KindString:
		table = strMethods
	case types.KindOptional:
		table = optionalMethods
	case types.KindHostNode:
		table = nodeMethods
	case types.KindStruct:
		table = map[string]methodSig{"clone": {ret: methodType{mtSelf}}}
	default:
		diag.ReportError(c.reporter, diag.SemaNotCallable, expr.Span,
			fmt.Sprintf("%s has no methods", c.types.DisplayName(recv)))
		for _, arg := range args {
			c.inferExpr(arg, types.NoTypeID, sc)
		}
		return b.Unknown
	}

	sig, found := table[member.Property]
	if !found {
		diag.ReportError(c.reporter, diag.SemaNotCallable, expr.Span,
			fmt.Sprintf("%s has no method %q", c.types.DisplayName(recv), member.Property))
		for _, arg := range args {
			c.inferExpr(arg, types.NoTypeID, sc)
		}
		return b.Unknown
	}

	if sig.mutates {
		c.checkMutation(member.Object, sc)
	}

	if len(args) != len(sig.params) {
		diag.ReportError(c.reporter, diag.SemaArityMismatch, expr.Span,
			fmt.Sprintf("method %q wants %d arguments, got %d",
				member.Property, len(sig.params), len(args)))
	}
	for i, arg := range args {
		if i >= len(sig.params) {
			c.inferExpr(arg, types.NoTypeID, sc)
			continue
		}
		want := c.resolveMethodType(sig.params[i], recv, rt)
		got := c.inferExpr(arg, want, sc)
		if !c.types.AssignableTo(got, want) {
			diag.ReportError(c.reporter, c.mismatchCode(got, want), c.builder.Exprs.Get(arg).Span,
				fmt.Sprintf("argument %d wants %s, got %s",
					i+1, c.types.DisplayName(want), c.types.DisplayName(got)))
		}
	}
	return c.resolveMethodType(sig.ret, recv, rt)
}

func (c *checker) resolveMethodType(mt methodType, recv types.TypeID, rt types.Type) types.TypeID {
	b := c.types.Builtins()
	switch mt.kind {
	case mtElem:
		if rt.Kind == types.KindString || rt.Kind == types.KindHostNode {
			return recv
		}
		return rt.Elem
	case mtKey:
		return rt.Aux
	case mtSelf:
		return recv
	case mtBool:
		return b.Bool
	case mtInt:
		return b.Int
	case mtStr:
		return b.String
	case mtUnit:
		return b.Unit
	case mtOptElem:
		return c.types.Intern(types.MakeOptional(rt.Elem))
	}
	return b.Unknown
}

func (c *checker) expectArity(want int, args []ast.ExprID, span source.Span, name string, sc *scope) bool {
	if len(args) == want {
		return true
	}
	diag.ReportError(c.reporter, diag.SemaArityMismatch, span,
		fmt.Sprintf("%s wants %d arguments, got %d", name, want, len(args)))
	for _, arg := range args {
		c.inferExpr(arg, types.NoTypeID, sc)
	}
	return false
}
