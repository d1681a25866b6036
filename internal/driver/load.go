package driver

import (
	"encoding/json"
	"fmt"
	"os"

	"reluxc/internal/ast"
	"reluxc/internal/source"
)

// The driver consumes programs in a JSON AST form produced by the external
// parser. Every node is an object discriminated by one of the keys "item",
// "stmt", "expr", "pat" or a type shape key, with an optional "span" of two
// byte offsets into the original source file.

// LoadFile reads one JSON AST document and registers its source text (when
// present on disk next to it) in fs for diagnostics.
func LoadFile(fs *source.FileSet, path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	file := fs.Add(path, data)
	return LoadProgram(data, file)
}

// LoadProgram decodes one JSON AST document into a fresh builder.
func LoadProgram(data []byte, file source.FileID) (*ast.Program, error) {
	var doc struct {
		Kind   string            `json:"kind"`
		Name   string            `json:"name"`
		Source string            `json:"source"`
		Items  []json.RawMessage `json:"items"`
		Span   []uint32          `json:"span"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	l := &loader{b: ast.NewBuilder(ast.Hints{}), file: file}

	var kind ast.ItemKind
	switch doc.Kind {
	case "plugin":
		kind = ast.ItemPlugin
	case "writer":
		kind = ast.ItemWriter
	case "module":
		kind = ast.ItemModule
	default:
		return nil, fmt.Errorf("unknown top-level kind %q", doc.Kind)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("top-level %s has no name", doc.Kind)
	}

	body := make([]ast.ItemID, 0, len(doc.Items))
	for _, raw := range doc.Items {
		body = append(body, l.item(raw))
	}
	if l.err != nil {
		return nil, l.err
	}
	span := l.span(doc.Span)
	decl := l.b.Items.NewContainer(kind, span, doc.Name, body)
	return &ast.Program{Builder: l.b, Decl: decl, Span: span}, nil
}

// loader threads the builder and the first decode failure through the
// recursive walk. After a failure it keeps returning zero IDs; the caller
// checks err once at the end.
type loader struct {
	b    *ast.Builder
	file source.FileID
	err  error
}

func (l *loader) fail(format string, args ...any) {
	if l.err == nil {
		l.err = fmt.Errorf(format, args...)
	}
}

func (l *loader) span(raw []uint32) source.Span {
	if len(raw) != 2 {
		return source.Span{File: l.file}
	}
	return source.Span{File: l.file, Start: raw[0], End: raw[1]}
}

func (l *loader) probe(raw json.RawMessage, key string) (string, []uint32) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		l.fail("decode node: %w", err)
		return "", nil
	}
	var kind string
	if k, ok := probe[key]; ok {
		if err := json.Unmarshal(k, &kind); err != nil {
			l.fail("decode %s discriminator: %w", key, err)
			return "", nil
		}
	}
	var span []uint32
	if s, ok := probe["span"]; ok {
		if err := json.Unmarshal(s, &span); err != nil {
			l.fail("decode span: %w", err)
			return "", nil
		}
	}
	return kind, span
}

func (l *loader) unmarshal(raw json.RawMessage, into any, what string) bool {
	if err := json.Unmarshal(raw, into); err != nil {
		l.fail("decode %s: %w", what, err)
		return false
	}
	return true
}

// --- items ---

func (l *loader) item(raw json.RawMessage) ast.ItemID {
	kind, spanRaw := l.probe(raw, "item")
	span := l.span(spanRaw)
	switch kind {
	case "fn":
		return l.fnItem(raw, span)
	case "struct":
		return l.structItem(raw, span)
	case "enum":
		return l.enumItem(raw, span)
	}
	l.fail("unknown item kind %q", kind)
	return ast.NoItemID
}

func (l *loader) fnItem(raw json.RawMessage, span source.Span) ast.ItemID {
	var d struct {
		Name      string `json:"name"`
		Fn        string `json:"fn"`
		VisitorOf string `json:"visitor_of"`
		Mutates   bool   `json:"mutates"`
		Params    []struct {
			Name string          `json:"name"`
			Mode string          `json:"mode"`
			Type json.RawMessage `json:"type"`
			Span []uint32        `json:"span"`
		} `json:"params"`
		Ret  json.RawMessage `json:"ret"`
		Body json.RawMessage `json:"body"`
	}
	if !l.unmarshal(raw, &d, "fn item") {
		return ast.NoItemID
	}
	var fnKind ast.FnKind
	switch d.Fn {
	case "", "helper":
		fnKind = ast.FnHelper
	case "visitor":
		fnKind = ast.FnVisitor
	case "pre":
		fnKind = ast.FnPre
	case "post":
		fnKind = ast.FnPost
	default:
		l.fail("fn %s: unknown fn kind %q", d.Name, d.Fn)
		return ast.NoItemID
	}
	params := make([]ast.Param, 0, len(d.Params))
	for _, p := range d.Params {
		var mode ast.BindMode
		switch p.Mode {
		case "", "own":
			mode = ast.BindOwned
		case "ref":
			mode = ast.BindBorrowed
		case "ref_mut":
			mode = ast.BindMutBorrowed
		default:
			l.fail("fn %s: unknown binding mode %q", d.Name, p.Mode)
			return ast.NoItemID
		}
		params = append(params, ast.Param{
			Name: p.Name,
			Mode: mode,
			Type: l.typeSyn(p.Type),
			Span: l.span(p.Span),
		})
	}
	ret := ast.NoTypeSynID
	if len(d.Ret) > 0 {
		ret = l.typeSyn(d.Ret)
	}
	body := ast.NoStmtID
	if len(d.Body) > 0 {
		body = l.stmt(d.Body)
	}
	return l.b.Items.NewFn(span, ast.ItemFnData{
		Name:      d.Name,
		Fn:        fnKind,
		VisitorOf: d.VisitorOf,
		Mutates:   d.Mutates,
		Params:    params,
		Ret:       ret,
		Body:      body,
	})
}

func (l *loader) structItem(raw json.RawMessage, span source.Span) ast.ItemID {
	var d struct {
		Name   string `json:"name"`
		Fields []struct {
			Name string          `json:"name"`
			Type json.RawMessage `json:"type"`
			Span []uint32        `json:"span"`
		} `json:"fields"`
	}
	if !l.unmarshal(raw, &d, "struct item") {
		return ast.NoItemID
	}
	fields := make([]ast.StructFieldDecl, 0, len(d.Fields))
	for _, f := range d.Fields {
		fields = append(fields, ast.StructFieldDecl{
			Name: f.Name,
			Type: l.typeSyn(f.Type),
			Span: l.span(f.Span),
		})
	}
	return l.b.Items.NewStruct(span, ast.ItemStructData{Name: d.Name, Fields: fields})
}

func (l *loader) enumItem(raw json.RawMessage, span source.Span) ast.ItemID {
	var d struct {
		Name     string `json:"name"`
		Variants []struct {
			Name   string            `json:"name"`
			Params []json.RawMessage `json:"params"`
			Span   []uint32          `json:"span"`
		} `json:"variants"`
	}
	if !l.unmarshal(raw, &d, "enum item") {
		return ast.NoItemID
	}
	variants := make([]ast.EnumVariantDecl, 0, len(d.Variants))
	for _, v := range d.Variants {
		params := make([]ast.TypeSynID, 0, len(v.Params))
		for _, p := range v.Params {
			params = append(params, l.typeSyn(p))
		}
		variants = append(variants, ast.EnumVariantDecl{
			Name:   v.Name,
			Params: params,
			Span:   l.span(v.Span),
		})
	}
	return l.b.Items.NewEnum(span, ast.ItemEnumData{Name: d.Name, Variants: variants})
}

// --- type annotations ---

func (l *loader) typeSyn(raw json.RawMessage) ast.TypeSynID {
	var d struct {
		Name     string            `json:"name"`
		Unit     bool              `json:"unit"`
		List     json.RawMessage   `json:"list"`
		Optional json.RawMessage   `json:"optional"`
		Set      json.RawMessage   `json:"set"`
		Map      []json.RawMessage `json:"map"`
		Result   []json.RawMessage `json:"result"`
		Span     []uint32          `json:"span"`
	}
	if !l.unmarshal(raw, &d, "type") {
		return ast.NoTypeSynID
	}
	span := l.span(d.Span)
	switch {
	case d.Name != "":
		return l.b.TypeSyns.NewName(span, d.Name)
	case d.Unit:
		return l.b.TypeSyns.NewUnit(span)
	case len(d.List) > 0:
		return l.b.TypeSyns.NewList(span, l.typeSyn(d.List))
	case len(d.Optional) > 0:
		return l.b.TypeSyns.NewOptional(span, l.typeSyn(d.Optional))
	case len(d.Set) > 0:
		return l.b.TypeSyns.NewSet(span, l.typeSyn(d.Set))
	case len(d.Map) == 2:
		return l.b.TypeSyns.NewMap(span, l.typeSyn(d.Map[0]), l.typeSyn(d.Map[1]))
	case len(d.Result) == 2:
		return l.b.TypeSyns.NewResult(span, l.typeSyn(d.Result[0]), l.typeSyn(d.Result[1]))
	}
	l.fail("type annotation has no recognized shape")
	return ast.NoTypeSynID
}

// --- statements ---

func (l *loader) stmt(raw json.RawMessage) ast.StmtID {
	kind, spanRaw := l.probe(raw, "stmt")
	span := l.span(spanRaw)
	switch kind {
	case "block":
		var d struct {
			Stmts []json.RawMessage `json:"stmts"`
		}
		if !l.unmarshal(raw, &d, "block") {
			return ast.NoStmtID
		}
		stmts := make([]ast.StmtID, 0, len(d.Stmts))
		for _, s := range d.Stmts {
			stmts = append(stmts, l.stmt(s))
		}
		return l.b.Stmts.NewBlock(span, stmts)
	case "let":
		var d struct {
			Name    string          `json:"name"`
			Mutable bool            `json:"mutable"`
			Type    json.RawMessage `json:"type"`
			Init    json.RawMessage `json:"init"`
		}
		if !l.unmarshal(raw, &d, "let") {
			return ast.NoStmtID
		}
		typ := ast.NoTypeSynID
		if len(d.Type) > 0 {
			typ = l.typeSyn(d.Type)
		}
		return l.b.Stmts.NewLet(span, ast.StmtLetData{
			Name:    d.Name,
			Mutable: d.Mutable,
			Type:    typ,
			Init:    l.expr(d.Init),
		})
	case "expr":
		var d struct {
			Value json.RawMessage `json:"value"`
		}
		if !l.unmarshal(raw, &d, "expr stmt") {
			return ast.NoStmtID
		}
		return l.b.Stmts.NewExpr(span, l.expr(d.Value))
	case "if":
		var d struct {
			Cond json.RawMessage `json:"cond"`
			Then json.RawMessage `json:"then"`
			Else json.RawMessage `json:"else"`
		}
		if !l.unmarshal(raw, &d, "if") {
			return ast.NoStmtID
		}
		els := ast.NoStmtID
		if len(d.Else) > 0 {
			els = l.stmt(d.Else)
		}
		return l.b.Stmts.NewIf(span, ast.StmtIfData{
			Cond: l.expr(d.Cond),
			Then: l.stmt(d.Then),
			Else: els,
		})
	case "match":
		var d struct {
			Subject json.RawMessage `json:"subject"`
			Arms    []struct {
				Pat   json.RawMessage `json:"pat"`
				Guard json.RawMessage `json:"guard"`
				Body  json.RawMessage `json:"body"`
				Span  []uint32        `json:"span"`
			} `json:"arms"`
		}
		if !l.unmarshal(raw, &d, "match") {
			return ast.NoStmtID
		}
		arms := make([]ast.MatchArm, 0, len(d.Arms))
		for _, a := range d.Arms {
			guard := ast.NoExprID
			if len(a.Guard) > 0 {
				guard = l.expr(a.Guard)
			}
			arms = append(arms, ast.MatchArm{
				Pat:   l.pat(a.Pat),
				Guard: guard,
				Body:  l.stmt(a.Body),
				Span:  l.span(a.Span),
			})
		}
		return l.b.Stmts.NewMatch(span, ast.StmtMatchData{
			Subject: l.expr(d.Subject),
			Arms:    arms,
		})
	case "for":
		var d struct {
			Binding string          `json:"binding"`
			Iter    json.RawMessage `json:"iter"`
			Body    json.RawMessage `json:"body"`
		}
		if !l.unmarshal(raw, &d, "for") {
			return ast.NoStmtID
		}
		return l.b.Stmts.NewFor(span, ast.StmtForData{
			Binding: d.Binding,
			Iter:    l.expr(d.Iter),
			Body:    l.stmt(d.Body),
		})
	case "while":
		var d struct {
			Cond json.RawMessage `json:"cond"`
			Body json.RawMessage `json:"body"`
		}
		if !l.unmarshal(raw, &d, "while") {
			return ast.NoStmtID
		}
		return l.b.Stmts.NewWhile(span, ast.StmtWhileData{
			Cond: l.expr(d.Cond),
			Body: l.stmt(d.Body),
		})
	case "return":
		var d struct {
			Value json.RawMessage `json:"value"`
		}
		if !l.unmarshal(raw, &d, "return") {
			return ast.NoStmtID
		}
		value := ast.NoExprID
		if len(d.Value) > 0 {
			value = l.expr(d.Value)
		}
		return l.b.Stmts.NewReturn(span, value)
	case "break":
		return l.b.Stmts.NewBreak(span)
	case "continue":
		return l.b.Stmts.NewContinue(span)
	}
	l.fail("unknown stmt kind %q", kind)
	return ast.NoStmtID
}

// --- expressions ---

func litKind(name string) (ast.LitKind, bool) {
	switch name {
	case "string":
		return ast.LitString, true
	case "int":
		return ast.LitInt, true
	case "float":
		return ast.LitFloat, true
	case "bool":
		return ast.LitBool, true
	case "null":
		return ast.LitNull, true
	}
	return 0, false
}

func binaryOp(name string) (ast.BinaryOp, bool) {
	ops := map[string]ast.BinaryOp{
		"+": ast.OpAdd, "-": ast.OpSub, "*": ast.OpMul, "/": ast.OpDiv,
		"%": ast.OpMod, "==": ast.OpEq, "!=": ast.OpNe, "<": ast.OpLt,
		"<=": ast.OpLe, ">": ast.OpGt, ">=": ast.OpGe,
		"&&": ast.OpAnd, "||": ast.OpOr,
	}
	op, ok := ops[name]
	return op, ok
}

func (l *loader) expr(raw json.RawMessage) ast.ExprID {
	if len(raw) == 0 {
		l.fail("missing expression")
		return ast.NoExprID
	}
	kind, spanRaw := l.probe(raw, "expr")
	span := l.span(spanRaw)
	switch kind {
	case "lit":
		var d struct {
			Lit   string `json:"lit"`
			Value string `json:"value"`
		}
		if !l.unmarshal(raw, &d, "lit") {
			return ast.NoExprID
		}
		lk, ok := litKind(d.Lit)
		if !ok {
			l.fail("unknown literal kind %q", d.Lit)
			return ast.NoExprID
		}
		return l.b.Exprs.NewLit(span, lk, d.Value)
	case "ident":
		var d struct {
			Name string `json:"name"`
		}
		if !l.unmarshal(raw, &d, "ident") {
			return ast.NoExprID
		}
		return l.b.Exprs.NewIdent(span, d.Name)
	case "binary":
		var d struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if !l.unmarshal(raw, &d, "binary") {
			return ast.NoExprID
		}
		op, ok := binaryOp(d.Op)
		if !ok {
			l.fail("unknown binary operator %q", d.Op)
			return ast.NoExprID
		}
		return l.b.Exprs.NewBinary(span, op, l.expr(d.Left), l.expr(d.Right))
	case "unary":
		var d struct {
			Op      string          `json:"op"`
			Operand json.RawMessage `json:"operand"`
		}
		if !l.unmarshal(raw, &d, "unary") {
			return ast.NoExprID
		}
		var op ast.UnaryOp
		switch d.Op {
		case "!":
			op = ast.OpNot
		case "-":
			op = ast.OpNeg
		default:
			l.fail("unknown unary operator %q", d.Op)
			return ast.NoExprID
		}
		return l.b.Exprs.NewUnary(span, op, l.expr(d.Operand))
	case "call":
		var d struct {
			Callee json.RawMessage   `json:"callee"`
			Args   []json.RawMessage `json:"args"`
		}
		if !l.unmarshal(raw, &d, "call") {
			return ast.NoExprID
		}
		args := make([]ast.ExprID, 0, len(d.Args))
		for _, a := range d.Args {
			args = append(args, l.expr(a))
		}
		return l.b.Exprs.NewCall(span, l.expr(d.Callee), args)
	case "member":
		var d struct {
			Object   json.RawMessage `json:"object"`
			Property string          `json:"property"`
		}
		if !l.unmarshal(raw, &d, "member") {
			return ast.NoExprID
		}
		return l.b.Exprs.NewMember(span, l.expr(d.Object), d.Property)
	case "index":
		var d struct {
			Object json.RawMessage `json:"object"`
			Index  json.RawMessage `json:"index"`
		}
		if !l.unmarshal(raw, &d, "index") {
			return ast.NoExprID
		}
		return l.b.Exprs.NewIndex(span, l.expr(d.Object), l.expr(d.Index))
	case "struct":
		var d struct {
			Name   string `json:"name"`
			Fields []struct {
				Name  string          `json:"name"`
				Value json.RawMessage `json:"value"`
				Span  []uint32        `json:"span"`
			} `json:"fields"`
		}
		if !l.unmarshal(raw, &d, "struct init") {
			return ast.NoExprID
		}
		fields := make([]ast.StructInitField, 0, len(d.Fields))
		for _, f := range d.Fields {
			fields = append(fields, ast.StructInitField{
				Name:  f.Name,
				Value: l.expr(f.Value),
				Span:  l.span(f.Span),
			})
		}
		return l.b.Exprs.NewStructInit(span, d.Name, fields)
	case "list", "set":
		var d struct {
			Elems []json.RawMessage `json:"elems"`
		}
		if !l.unmarshal(raw, &d, "collection init") {
			return ast.NoExprID
		}
		elems := make([]ast.ExprID, 0, len(d.Elems))
		for _, e := range d.Elems {
			elems = append(elems, l.expr(e))
		}
		if kind == "set" {
			return l.b.Exprs.NewSetInit(span, elems)
		}
		return l.b.Exprs.NewListInit(span, elems)
	case "map":
		var d struct {
			Entries []struct {
				Key   json.RawMessage `json:"key"`
				Value json.RawMessage `json:"value"`
			} `json:"entries"`
		}
		if !l.unmarshal(raw, &d, "map init") {
			return ast.NoExprID
		}
		entries := make([]ast.MapEntry, 0, len(d.Entries))
		for _, e := range d.Entries {
			entries = append(entries, ast.MapEntry{
				Key:   l.expr(e.Key),
				Value: l.expr(e.Value),
			})
		}
		return l.b.Exprs.NewMapInit(span, entries)
	case "assign":
		var d struct {
			Op     string          `json:"op"`
			Target json.RawMessage `json:"target"`
			Value  json.RawMessage `json:"value"`
		}
		if !l.unmarshal(raw, &d, "assign") {
			return ast.NoExprID
		}
		var op ast.AssignOp
		switch d.Op {
		case "", "=":
			op = ast.AssignSet
		case "+=":
			op = ast.AssignAdd
		case "-=":
			op = ast.AssignSub
		default:
			l.fail("unknown assignment operator %q", d.Op)
			return ast.NoExprID
		}
		return l.b.Exprs.NewAssign(span, op, l.expr(d.Target), l.expr(d.Value))
	case "matches":
		var d struct {
			Subject  json.RawMessage `json:"subject"`
			NodeType string          `json:"node_type"`
		}
		if !l.unmarshal(raw, &d, "matches") {
			return ast.NoExprID
		}
		return l.b.Exprs.NewMatches(span, l.expr(d.Subject), d.NodeType)
	}
	l.fail("unknown expr kind %q", kind)
	return ast.NoExprID
}

// --- patterns ---

func (l *loader) pat(raw json.RawMessage) ast.PatID {
	kind, spanRaw := l.probe(raw, "pat")
	span := l.span(spanRaw)
	switch kind {
	case "wildcard":
		return l.b.Pats.NewWildcard(span)
	case "lit":
		var d struct {
			Lit   string `json:"lit"`
			Value string `json:"value"`
		}
		if !l.unmarshal(raw, &d, "lit pattern") {
			return ast.NoPatID
		}
		lk, ok := litKind(d.Lit)
		if !ok {
			l.fail("unknown literal kind %q in pattern", d.Lit)
			return ast.NoPatID
		}
		return l.b.Pats.NewLit(span, lk, d.Value)
	case "bind":
		var d struct {
			Name string `json:"name"`
		}
		if !l.unmarshal(raw, &d, "bind pattern") {
			return ast.NoPatID
		}
		return l.b.Pats.NewBind(span, d.Name)
	case "variant":
		var d struct {
			Enum    string            `json:"enum"`
			Variant string            `json:"variant"`
			Params  []json.RawMessage `json:"params"`
		}
		if !l.unmarshal(raw, &d, "variant pattern") {
			return ast.NoPatID
		}
		params := make([]ast.PatID, 0, len(d.Params))
		for _, p := range d.Params {
			params = append(params, l.pat(p))
		}
		return l.b.Pats.NewVariant(span, ast.PatVariantData{
			Enum:    d.Enum,
			Variant: d.Variant,
			Params:  params,
		})
	case "struct":
		var d struct {
			Name   string `json:"name"`
			Fields []struct {
				Name string          `json:"name"`
				Pat  json.RawMessage `json:"pat"`
				Span []uint32        `json:"span"`
			} `json:"fields"`
		}
		if !l.unmarshal(raw, &d, "struct pattern") {
			return ast.NoPatID
		}
		return l.b.Pats.NewStruct(span, ast.PatStructData{
			Name:   d.Name,
			Fields: l.fieldConstraints(d.Fields),
		})
	case "node":
		var d struct {
			NodeType string `json:"node_type"`
			Binding  string `json:"binding"`
			Fields   []struct {
				Name string          `json:"name"`
				Pat  json.RawMessage `json:"pat"`
				Span []uint32        `json:"span"`
			} `json:"fields"`
		}
		if !l.unmarshal(raw, &d, "node pattern") {
			return ast.NoPatID
		}
		return l.b.Pats.NewNode(span, ast.PatNodeData{
			NodeType: d.NodeType,
			Binding:  d.Binding,
			Fields:   l.fieldConstraints(d.Fields),
		})
	}
	l.fail("unknown pattern kind %q", kind)
	return ast.NoPatID
}

func (l *loader) fieldConstraints(fields []struct {
	Name string          `json:"name"`
	Pat  json.RawMessage `json:"pat"`
	Span []uint32        `json:"span"`
}) []ast.PatFieldConstraint {
	out := make([]ast.PatFieldConstraint, 0, len(fields))
	for _, f := range fields {
		out = append(out, ast.PatFieldConstraint{
			Name: f.Name,
			Pat:  l.pat(f.Pat),
			Span: l.span(f.Span),
		})
	}
	return out
}
