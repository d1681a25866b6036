package babel

import (
	"fmt"
	"strconv"
	"strings"

	"reluxc/internal/ast"
	"reluxc/internal/decorate"
	"reluxc/internal/types"
)

func (g *generator) expr(id ast.ExprID) string {
	if !id.IsValid() {
		return "null"
	}
	expr := g.builder.Exprs.Get(id)
	if expr == nil {
		return "null"
	}
	switch expr.Kind {
	case ast.ExprLit:
		data, _ := g.builder.Exprs.Lit(id)
		return litJS(data.Kind, data.Value)
	case ast.ExprIdent:
		data, _ := g.builder.Exprs.Ident(id)
		if data.Name == "self" {
			return "state"
		}
		return data.Name
	case ast.ExprBinary:
		data, _ := g.builder.Exprs.Binary(id)
		return fmt.Sprintf("(%s %s %s)", g.expr(data.Left), binOpJS(data.Op), g.expr(data.Right))
	case ast.ExprUnary:
		data, _ := g.builder.Exprs.Unary(id)
		return fmt.Sprintf("%s%s", data.Op, g.expr(data.Operand))
	case ast.ExprCall:
		return g.call(id)
	case ast.ExprMember:
		return g.member(id)
	case ast.ExprIndex:
		data, _ := g.builder.Exprs.Index(id)
		obj := g.expr(data.Object)
		idx := g.expr(data.Index)
		if g.typeKind(data.Object) == types.KindMap {
			return fmt.Sprintf("(%s.get(%s) ?? null)", obj, idx)
		}
		return fmt.Sprintf("%s[%s]", obj, idx)
	case ast.ExprStructInit:
		return g.structInit(id)
	case ast.ExprListInit:
		data, _ := g.builder.Exprs.ListInit(id)
		return fmt.Sprintf("[%s]", g.exprList(data.Elems))
	case ast.ExprMapInit:
		data, _ := g.builder.Exprs.MapInit(id)
		if len(data.Entries) == 0 {
			return "new Map()"
		}
		var entries []string
		for _, entry := range data.Entries {
			entries = append(entries, fmt.Sprintf("[%s, %s]", g.expr(entry.Key), g.expr(entry.Value)))
		}
		return fmt.Sprintf("new Map([%s])", strings.Join(entries, ", "))
	case ast.ExprSetInit:
		data, _ := g.builder.Exprs.SetInit(id)
		if len(data.Elems) == 0 {
			return "new Set()"
		}
		return fmt.Sprintf("new Set([%s])", g.exprList(data.Elems))
	case ast.ExprAssign:
		data, _ := g.builder.Exprs.Assign(id)
		return fmt.Sprintf("%s %s %s", g.expr(data.Target), data.Op, g.expr(data.Value))
	case ast.ExprMatches:
		data, _ := g.builder.Exprs.Matches(id)
		low, ok := g.dec.Tests[id]
		if !ok {
			g.fail(&decorate.InternalLoweringError{
				NodeKind: data.NodeType, Backend: decorate.BackendDynamic, Span: expr.Span,
			})
			return "false"
		}
		return fmt.Sprintf("t.%s(%s)", low.Dynamic.FieldPath[0].Name, g.expr(data.Subject))
	}
	return "null"
}

func (g *generator) exprList(ids []ast.ExprID) string {
	var parts []string
	for _, e := range ids {
		parts = append(parts, g.expr(e))
	}
	return strings.Join(parts, ", ")
}

func litJS(kind ast.LitKind, value string) string {
	switch kind {
	case ast.LitString:
		return strconv.Quote(value)
	case ast.LitNull:
		return "null"
	}
	return value
}

func binOpJS(op ast.BinaryOp) string {
	switch op {
	case ast.OpEq:
		return "==="
	case ast.OpNe:
		return "!=="
	}
	return op.String()
}

// member renders a field access. Host-node accesses use the recorded
// dynamic lowering; everything else is plain property access.
func (g *generator) member(id ast.ExprID) string {
	data, _ := g.builder.Exprs.Member(id)

	if low, ok := g.dec.Members[id]; ok {
		return g.expr(data.Object) + pathJS(low.Dynamic.FieldPath)
	}
	// Enum variant without payload: EnumName.Variant is the factory table
	// entry, rendered as-is.
	return g.expr(data.Object) + "." + data.Property
}

func pathJS(steps []decorate.FieldStep) string {
	var sb strings.Builder
	for _, s := range steps {
		if s.Access == decorate.AccessField {
			sb.WriteByte('.')
			sb.WriteString(s.Name)
		}
	}
	return sb.String()
}

func (g *generator) structInit(id ast.ExprID) string {
	data, _ := g.builder.Exprs.StructInit(id)
	structID, ok := g.dec.Sem.Types.StructByName(data.Name)
	if !ok {
		return "null"
	}
	info, _ := g.dec.Sem.Types.Struct(structID)
	byName := make(map[string]ast.ExprID, len(data.Fields))
	for _, f := range data.Fields {
		byName[f.Name] = f.Value
	}
	var args []string
	for _, f := range info.Fields {
		args = append(args, g.expr(byName[f.Name]))
	}
	return fmt.Sprintf("new %s(%s)", data.Name, strings.Join(args, ", "))
}

func (g *generator) typeKind(id ast.ExprID) types.Kind {
	t, ok := g.dec.Sem.Types.Lookup(g.dec.Sem.ExprTypes[id])
	if !ok {
		return types.KindInvalid
	}
	return t.Kind
}

func (g *generator) call(id ast.ExprID) string {
	data, _ := g.builder.Exprs.Call(id)

	if member, ok := g.builder.Exprs.Member(data.Callee); ok {
		// Enum variant construction keeps the factory call shape.
		if identData, isIdent := g.builder.Exprs.Ident(member.Object); isIdent {
			if _, isEnum := g.dec.Sem.Types.EnumByName(identData.Name); isEnum {
				return fmt.Sprintf("%s.%s(%s)", identData.Name, member.Property, g.exprList(data.Args))
			}
		}
		return g.methodCall(member, data.Args)
	}

	identData, _ := g.builder.Exprs.Ident(data.Callee)
	switch identData.Name {
	case "Some":
		return g.expr(data.Args[0])
	case "None":
		return "null"
	case "Ok":
		return fmt.Sprintf("({ ok: true, value: %s })", g.expr(data.Args[0]))
	case "Err":
		return fmt.Sprintf("({ ok: false, error: %s })", g.expr(data.Args[0]))
	}
	return fmt.Sprintf("%s(%s)", identData.Name, g.exprList(data.Args))
}

func (g *generator) methodCall(member *ast.ExprMemberData, args []ast.ExprID) string {
	recv := g.expr(member.Object)
	kind := g.typeKind(member.Object)

	switch kind {
	case types.KindList:
		return g.listMethod(recv, member.Property, args)
	case types.KindMap:
		return g.mapMethod(recv, member.Property, args)
	case types.KindSet:
		return g.setMethod(recv, member.Property, args)
	case types.KindString:
		return g.strMethod(recv, member.Property, args)
	case types.KindOptional:
		return g.optionalMethod(recv, member.Property, args)
	case types.KindHostNode:
		return g.nodeMethod(member, recv, args)
	case types.KindStruct:
		// clone is the only struct method.
		return fmt.Sprintf("{ ...%s }", recv)
	}
	return fmt.Sprintf("%s.%s(%s)", recv, member.Property, g.exprList(args))
}

func (g *generator) listMethod(recv, name string, args []ast.ExprID) string {
	switch name {
	case "push":
		return fmt.Sprintf("%s.push(%s)", recv, g.expr(args[0]))
	case "pop":
		return fmt.Sprintf("(%s.pop() ?? null)", recv)
	case "insert":
		return fmt.Sprintf("%s.splice(%s, 0, %s)", recv, g.expr(args[0]), g.expr(args[1]))
	case "remove":
		return fmt.Sprintf("%s.splice(%s, 1)[0]", recv, g.expr(args[0]))
	case "clear":
		return fmt.Sprintf("(%s.length = 0)", recv)
	case "len":
		return recv + ".length"
	case "is_empty":
		return fmt.Sprintf("(%s.length === 0)", recv)
	case "contains":
		return fmt.Sprintf("%s.includes(%s)", recv, g.expr(args[0]))
	case "get":
		return fmt.Sprintf("(%s[%s] ?? null)", recv, g.expr(args[0]))
	case "clone":
		return fmt.Sprintf("[...%s]", recv)
	}
	return fmt.Sprintf("%s.%s(%s)", recv, name, g.exprList(args))
}

func (g *generator) mapMethod(recv, name string, args []ast.ExprID) string {
	switch name {
	case "insert":
		return fmt.Sprintf("%s.set(%s, %s)", recv, g.expr(args[0]), g.expr(args[1]))
	case "remove":
		g.needMapRemove = true
		return fmt.Sprintf("__mapRemove(%s, %s)", recv, g.expr(args[0]))
	case "get":
		return fmt.Sprintf("(%s.get(%s) ?? null)", recv, g.expr(args[0]))
	case "contains_key":
		return fmt.Sprintf("%s.has(%s)", recv, g.expr(args[0]))
	case "clear":
		return recv + ".clear()"
	case "len":
		return recv + ".size"
	case "is_empty":
		return fmt.Sprintf("(%s.size === 0)", recv)
	case "clone":
		return fmt.Sprintf("new Map(%s)", recv)
	}
	return fmt.Sprintf("%s.%s(%s)", recv, name, g.exprList(args))
}

func (g *generator) setMethod(recv, name string, args []ast.ExprID) string {
	switch name {
	case "insert":
		return fmt.Sprintf("%s.add(%s)", recv, g.expr(args[0]))
	case "remove":
		return fmt.Sprintf("%s.delete(%s)", recv, g.expr(args[0]))
	case "contains":
		return fmt.Sprintf("%s.has(%s)", recv, g.expr(args[0]))
	case "clear":
		return recv + ".clear()"
	case "len":
		return recv + ".size"
	case "is_empty":
		return fmt.Sprintf("(%s.size === 0)", recv)
	case "clone":
		return fmt.Sprintf("new Set(%s)", recv)
	}
	return fmt.Sprintf("%s.%s(%s)", recv, name, g.exprList(args))
}

func (g *generator) strMethod(recv, name string, args []ast.ExprID) string {
	switch name {
	case "len":
		return recv + ".length"
	case "is_empty":
		return fmt.Sprintf("(%s.length === 0)", recv)
	case "contains":
		return fmt.Sprintf("%s.includes(%s)", recv, g.expr(args[0]))
	case "starts_with":
		return fmt.Sprintf("%s.startsWith(%s)", recv, g.expr(args[0]))
	case "ends_with":
		return fmt.Sprintf("%s.endsWith(%s)", recv, g.expr(args[0]))
	case "to_string", "clone":
		return recv
	}
	return fmt.Sprintf("%s.%s(%s)", recv, name, g.exprList(args))
}

func (g *generator) optionalMethod(recv, name string, args []ast.ExprID) string {
	switch name {
	case "is_some":
		return fmt.Sprintf("(%s !== null)", recv)
	case "is_none":
		return fmt.Sprintf("(%s === null)", recv)
	case "unwrap", "clone":
		return recv
	case "unwrap_or":
		return fmt.Sprintf("(%s ?? %s)", recv, g.expr(args[0]))
	}
	return fmt.Sprintf("%s.%s(%s)", recv, name, g.exprList(args))
}

// nodeMethod lowers traversal operations. Whole-node replacement on the
// hook's own node goes through the path.
func (g *generator) nodeMethod(member *ast.ExprMemberData, recv string, args []ast.ExprID) string {
	onHookNode := false
	if identData, ok := g.builder.Exprs.Ident(member.Object); ok {
		onHookNode = g.hookParam != "" && identData.Name == g.hookParam
	}
	switch member.Property {
	case "replace_with":
		if onHookNode {
			return fmt.Sprintf("path.replaceWith(%s)", g.expr(args[0]))
		}
		return fmt.Sprintf("Object.assign(%s, %s)", recv, g.expr(args[0]))
	case "remove":
		if onHookNode {
			return "path.remove()"
		}
	case "clone":
		return fmt.Sprintf("t.cloneNode(%s, true)", recv)
	}
	return fmt.Sprintf("%s.%s(%s)", recv, member.Property, g.exprList(args))
}
