package swc

import (
	"fmt"
	"strconv"
	"strings"

	"reluxc/internal/ast"
	"reluxc/internal/decorate"
	"reluxc/internal/mapping"
	"reluxc/internal/types"
)

func (g *generator) expr(id ast.ExprID) string {
	out := g.exprInner(id)
	if g.dec.Clones[id] {
		out += ".clone()"
	}
	return out
}

func (g *generator) exprInner(id ast.ExprID) string {
	if !id.IsValid() {
		return "()"
	}
	expr := g.builder.Exprs.Get(id)
	if expr == nil {
		return "()"
	}
	switch expr.Kind {
	case ast.ExprLit:
		return g.lit(id)
	case ast.ExprIdent:
		data, _ := g.builder.Exprs.Ident(id)
		return data.Name
	case ast.ExprBinary:
		return g.binary(id)
	case ast.ExprUnary:
		data, _ := g.builder.Exprs.Unary(id)
		return fmt.Sprintf("%s%s", data.Op, g.expr(data.Operand))
	case ast.ExprCall:
		return g.call(id)
	case ast.ExprMember:
		return g.member(id, false)
	case ast.ExprIndex:
		return g.index(id)
	case ast.ExprStructInit:
		return g.structInit(id)
	case ast.ExprListInit:
		data, _ := g.builder.Exprs.ListInit(id)
		return fmt.Sprintf("vec![%s]", g.exprList(data.Elems))
	case ast.ExprMapInit:
		g.needMap = true
		data, _ := g.builder.Exprs.MapInit(id)
		if len(data.Entries) == 0 {
			return "HashMap::new()"
		}
		var entries []string
		for _, entry := range data.Entries {
			entries = append(entries, fmt.Sprintf("(%s, %s)", g.expr(entry.Key), g.expr(entry.Value)))
		}
		return fmt.Sprintf("HashMap::from([%s])", strings.Join(entries, ", "))
	case ast.ExprSetInit:
		g.needSet = true
		data, _ := g.builder.Exprs.SetInit(id)
		if len(data.Elems) == 0 {
			return "HashSet::new()"
		}
		return fmt.Sprintf("HashSet::from([%s])", g.exprList(data.Elems))
	case ast.ExprAssign:
		return g.assign(id)
	case ast.ExprMatches:
		return g.matches(id)
	}
	return "()"
}

func (g *generator) exprList(ids []ast.ExprID) string {
	var parts []string
	for _, e := range ids {
		parts = append(parts, g.expr(e))
	}
	return strings.Join(parts, ", ")
}

// lit renders a literal in its owned form; string literals become owned
// strings because the logical string type is String.
func (g *generator) lit(id ast.ExprID) string {
	data, _ := g.builder.Exprs.Lit(id)
	switch data.Kind {
	case ast.LitString:
		return strconv.Quote(data.Value) + ".to_string()"
	case ast.LitNull:
		return "None"
	case ast.LitFloat:
		if !strings.ContainsAny(data.Value, ".eE") {
			return data.Value + ".0"
		}
	}
	return data.Value
}

// rawLit renders a string literal as a borrowed slice. Comparisons against
// handles and owned strings both accept &str operands.
func (g *generator) rawLit(id ast.ExprID) (string, bool) {
	expr := g.builder.Exprs.Get(id)
	if expr == nil || expr.Kind != ast.ExprLit {
		return "", false
	}
	data, _ := g.builder.Exprs.Lit(id)
	if data.Kind != ast.LitString {
		return "", false
	}
	return strconv.Quote(data.Value), true
}

func (g *generator) binary(id ast.ExprID) string {
	data, _ := g.builder.Exprs.Binary(id)
	switch data.Op {
	case ast.OpEq, ast.OpNe:
		left := g.cmpOperand(data.Left)
		right := g.cmpOperand(data.Right)
		return fmt.Sprintf("(%s %s %s)", left, data.Op, right)
	case ast.OpAdd:
		if g.typeKind(id) == types.KindString {
			return g.concat(data.Left, data.Right)
		}
	}
	return fmt.Sprintf("(%s %s %s)", g.expr(data.Left), data.Op, g.expr(data.Right))
}

func (g *generator) cmpOperand(id ast.ExprID) string {
	if raw, ok := g.rawLit(id); ok {
		return raw
	}
	return g.expr(id)
}

// concat renders string concatenation. The left operand must be owned;
// the right is borrowed.
func (g *generator) concat(left, right ast.ExprID) string {
	l := g.expr(left)
	if raw, ok := g.rawLit(right); ok {
		return fmt.Sprintf("(%s + %s)", l, raw)
	}
	return fmt.Sprintf("(%s + &%s)", l, g.expr(right))
}

func (g *generator) index(id ast.ExprID) string {
	data, _ := g.builder.Exprs.Index(id)
	obj := g.expr(data.Object)
	switch g.typeKind(data.Object) {
	case types.KindMap:
		out := fmt.Sprintf("%s[&%s]", obj, g.expr(data.Index))
		if !g.copyElem(data.Object) {
			out += ".clone()"
		}
		return out
	case types.KindList:
		out := fmt.Sprintf("%s[%s as usize]", obj, g.expr(data.Index))
		if !g.copyElem(data.Object) {
			out += ".clone()"
		}
		return out
	}
	return fmt.Sprintf("%s[%s]", obj, g.expr(data.Index))
}

// copyElem reports whether indexing the container yields a Copy value.
func (g *generator) copyElem(obj ast.ExprID) bool {
	in := g.dec.Sem.Types
	t, ok := in.Lookup(g.dec.Sem.ExprTypes[obj])
	if !ok {
		return false
	}
	elem, ok := in.Lookup(t.Elem)
	if !ok {
		return false
	}
	switch elem.Kind {
	case types.KindInt, types.KindFloat, types.KindBool:
		return true
	}
	return false
}

// member renders a field access. Host-node fields use the recorded static
// lowering; state fields and struct fields are plain accesses.
func (g *generator) member(id ast.ExprID, writeTarget bool) string {
	data, _ := g.builder.Exprs.Member(id)

	low, ok := g.dec.Members[id]
	if !ok {
		return g.expr(data.Object) + "." + data.Property
	}
	out := g.expr(data.Object) + fieldPathRust(low.Static.FieldPath)
	if writeTarget {
		return out
	}
	switch low.Static.Conversion {
	case mapping.ConvHandleToString, mapping.ConvEnumToTag:
		out += ".to_string()"
	}
	return out
}

// fieldPathRust joins field steps. Deref steps vanish because field access
// auto-derefs box and reference layers.
func fieldPathRust(steps []decorate.FieldStep) string {
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
	var fields []string
	for _, f := range data.Fields {
		fields = append(fields, fmt.Sprintf("%s: %s", f.Name, g.expr(f.Value)))
	}
	return fmt.Sprintf("%s { %s }", data.Name, strings.Join(fields, ", "))
}

func (g *generator) assign(id ast.ExprID) string {
	data, _ := g.builder.Exprs.Assign(id)

	target := g.targetExpr(data.Target)
	value := g.expr(data.Value)

	if low, ok := g.dec.Members[data.Target]; ok {
		switch low.Static.Conversion {
		case mapping.ConvStringToHandle:
			value += ".into()"
		case mapping.ConvOptionToNullable:
			if hasDeref(low.Static.FieldPath) {
				value = fmt.Sprintf("%s.map(Box::new)", value)
			}
		}
	}
	return fmt.Sprintf("%s %s %s", target, data.Op, value)
}

func (g *generator) targetExpr(id ast.ExprID) string {
	expr := g.builder.Exprs.Get(id)
	if expr != nil && expr.Kind == ast.ExprMember {
		return g.member(id, true)
	}
	return g.exprInner(id)
}

func hasDeref(steps []decorate.FieldStep) bool {
	for _, s := range steps {
		if s.Access == decorate.AccessDeref {
			return true
		}
	}
	return false
}

func (g *generator) matches(id ast.ExprID) string {
	expr := g.builder.Exprs.Get(id)
	data, _ := g.builder.Exprs.Matches(id)
	low, ok := g.dec.Tests[id]
	if !ok {
		g.fail(&decorate.InternalLoweringError{
			NodeKind: data.NodeType, Backend: decorate.BackendStatic, Span: expr.Span,
		})
		return "false"
	}
	if low.Static.VariantTag == "" {
		// The subject's checked type already is the tested node type.
		return "true"
	}
	return fmt.Sprintf("matches!(%s, %s(..))", g.expr(data.Subject), low.Static.VariantTag)
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
		if identData, isIdent := g.builder.Exprs.Ident(member.Object); isIdent {
			if _, isEnum := g.dec.Sem.Types.EnumByName(identData.Name); isEnum {
				return fmt.Sprintf("%s::%s(%s)", identData.Name, member.Property, g.exprList(data.Args))
			}
		}
		return g.methodCall(member, data.Args)
	}

	identData, _ := g.builder.Exprs.Ident(data.Callee)
	switch identData.Name {
	case "Some":
		return fmt.Sprintf("Some(%s)", g.expr(data.Args[0]))
	case "None":
		return "None"
	case "Ok":
		return fmt.Sprintf("Ok(%s)", g.expr(data.Args[0]))
	case "Err":
		return fmt.Sprintf("Err(%s)", g.expr(data.Args[0]))
	}
	return g.helperCall(identData.Name, data.Args)
}

// helperCall renders a plugin-fn call with the ownership each parameter
// declared.
func (g *generator) helperCall(name string, args []ast.ExprID) string {
	owns := g.fnOwnership(name)
	var parts []string
	for i, a := range args {
		rendered := g.expr(a)
		if i < len(owns) {
			switch owns[i] {
			case types.OwnBorrowed:
				rendered = "&" + rendered
			case types.OwnMutBorrowed:
				rendered = "&mut " + rendered
			}
		}
		parts = append(parts, rendered)
	}
	return fmt.Sprintf("self.%s(%s)", name, strings.Join(parts, ", "))
}

func (g *generator) fnOwnership(name string) []types.Ownership {
	if g.fnOwners == nil {
		g.fnOwners = make(map[string][]types.Ownership)
		container, ok := g.builder.Items.Container(g.dec.Sem.Program.Decl)
		if ok {
			for _, itemID := range container.Body {
				if data, isFn := g.builder.Items.Fn(itemID); isFn {
					g.fnOwners[data.Name] = g.dec.Sem.ParamOwnership[itemID]
				}
			}
		}
	}
	return g.fnOwners[name]
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
	case types.KindStruct, types.KindEnum:
		if member.Property == "clone" {
			return recv + ".clone()"
		}
	}
	return fmt.Sprintf("%s.%s(%s)", recv, member.Property, g.exprList(args))
}

func (g *generator) listMethod(recv, name string, args []ast.ExprID) string {
	switch name {
	case "push":
		return fmt.Sprintf("%s.push(%s)", recv, g.expr(args[0]))
	case "pop":
		return recv + ".pop()"
	case "insert":
		return fmt.Sprintf("%s.insert(%s as usize, %s)", recv, g.expr(args[0]), g.expr(args[1]))
	case "remove":
		return fmt.Sprintf("%s.remove(%s as usize)", recv, g.expr(args[0]))
	case "clear":
		return recv + ".clear()"
	case "len":
		return fmt.Sprintf("(%s.len() as i32)", recv)
	case "is_empty":
		return recv + ".is_empty()"
	case "contains":
		return fmt.Sprintf("%s.contains(&%s)", recv, g.expr(args[0]))
	case "get":
		return fmt.Sprintf("%s.get(%s as usize).cloned()", recv, g.expr(args[0]))
	case "clone":
		return recv + ".clone()"
	}
	return fmt.Sprintf("%s.%s(%s)", recv, name, g.exprList(args))
}

func (g *generator) mapMethod(recv, name string, args []ast.ExprID) string {
	switch name {
	case "insert":
		return fmt.Sprintf("%s.insert(%s, %s)", recv, g.expr(args[0]), g.expr(args[1]))
	case "remove":
		return fmt.Sprintf("%s.remove(&%s)", recv, g.expr(args[0]))
	case "get":
		return fmt.Sprintf("%s.get(&%s).cloned()", recv, g.expr(args[0]))
	case "contains_key":
		return fmt.Sprintf("%s.contains_key(&%s)", recv, g.expr(args[0]))
	case "clear":
		return recv + ".clear()"
	case "len":
		return fmt.Sprintf("(%s.len() as i32)", recv)
	case "is_empty":
		return recv + ".is_empty()"
	case "clone":
		return recv + ".clone()"
	}
	return fmt.Sprintf("%s.%s(%s)", recv, name, g.exprList(args))
}

func (g *generator) setMethod(recv, name string, args []ast.ExprID) string {
	switch name {
	case "insert":
		return fmt.Sprintf("%s.insert(%s)", recv, g.expr(args[0]))
	case "remove":
		return fmt.Sprintf("%s.remove(&%s)", recv, g.expr(args[0]))
	case "contains":
		return fmt.Sprintf("%s.contains(&%s)", recv, g.expr(args[0]))
	case "clear":
		return recv + ".clear()"
	case "len":
		return fmt.Sprintf("(%s.len() as i32)", recv)
	case "is_empty":
		return recv + ".is_empty()"
	case "clone":
		return recv + ".clone()"
	}
	return fmt.Sprintf("%s.%s(%s)", recv, name, g.exprList(args))
}

func (g *generator) strMethod(recv, name string, args []ast.ExprID) string {
	switch name {
	case "len":
		return fmt.Sprintf("(%s.len() as i32)", recv)
	case "is_empty":
		return recv + ".is_empty()"
	case "contains":
		return fmt.Sprintf("%s.contains(%s)", recv, g.strArg(args[0]))
	case "starts_with":
		return fmt.Sprintf("%s.starts_with(%s)", recv, g.strArg(args[0]))
	case "ends_with":
		return fmt.Sprintf("%s.ends_with(%s)", recv, g.strArg(args[0]))
	case "to_string":
		return recv + ".to_string()"
	case "clone":
		return recv + ".clone()"
	}
	return fmt.Sprintf("%s.%s(%s)", recv, name, g.exprList(args))
}

// strArg passes string arguments as slices.
func (g *generator) strArg(id ast.ExprID) string {
	if raw, ok := g.rawLit(id); ok {
		return raw
	}
	return g.expr(id) + ".as_str()"
}

func (g *generator) optionalMethod(recv, name string, args []ast.ExprID) string {
	switch name {
	case "is_some":
		return recv + ".is_some()"
	case "is_none":
		return recv + ".is_none()"
	case "unwrap":
		return recv + ".unwrap()"
	case "unwrap_or":
		return fmt.Sprintf("%s.unwrap_or(%s)", recv, g.expr(args[0]))
	case "clone":
		return recv + ".clone()"
	}
	return fmt.Sprintf("%s.%s(%s)", recv, name, g.exprList(args))
}

// nodeMethod lowers traversal operations on host nodes. Replacing or
// removing the hook's own node writes through the mutable reference.
func (g *generator) nodeMethod(member *ast.ExprMemberData, recv string, args []ast.ExprID) string {
	switch member.Property {
	case "replace_with":
		return fmt.Sprintf("*%s = %s", recv, g.expr(args[0]))
	case "remove":
		g.needTake = true
		return fmt.Sprintf("%s.take()", recv)
	case "clone":
		return recv + ".clone()"
	}
	return fmt.Sprintf("%s.%s(%s)", recv, member.Property, g.exprList(args))
}
