package ast

import (
	"reluxc/internal/source"
)

type ExprKind uint8

const (
	ExprLit ExprKind = iota
	ExprIdent
	ExprBinary
	ExprUnary
	ExprCall
	ExprMember
	ExprIndex
	ExprStructInit
	ExprListInit
	ExprMapInit
	ExprSetInit
	ExprAssign
	// ExprMatches is the shape test `matches!(subject, NodeType)`.
	ExprMatches
)

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type LitKind uint8

const (
	LitString LitKind = iota
	LitInt
	LitFloat
	LitBool
	LitNull
)

type ExprLitData struct {
	Kind  LitKind
	Value string
}

type ExprIdentData struct {
	Name string
}

type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "&&"
	case OpOr:
		return "||"
	}
	return "?"
}

// IsComparison reports whether the operator yields bool from two operands
// of one type.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// IsLogical reports whether the operator works on bool operands.
func (op BinaryOp) IsLogical() bool {
	return op == OpAnd || op == OpOr
}

type ExprBinaryData struct {
	Op    BinaryOp
	Left  ExprID
	Right ExprID
}

type UnaryOp uint8

const (
	OpNot UnaryOp = iota
	OpNeg
)

func (op UnaryOp) String() string {
	if op == OpNot {
		return "!"
	}
	return "-"
}

type ExprUnaryData struct {
	Op      UnaryOp
	Operand ExprID
}

type ExprCallData struct {
	Callee ExprID
	Args   []ExprID
}

type ExprMemberData struct {
	Object   ExprID
	Property string
}

type ExprIndexData struct {
	Object ExprID
	Index  ExprID
}

type StructInitField struct {
	Name  string
	Value ExprID
	Span  source.Span
}

type ExprStructInitData struct {
	Name   string
	Fields []StructInitField
}

type ExprListInitData struct {
	Elems []ExprID
}

type MapEntry struct {
	Key   ExprID
	Value ExprID
}

type ExprMapInitData struct {
	Entries []MapEntry
}

type ExprSetInitData struct {
	Elems []ExprID
}

type AssignOp uint8

const (
	AssignSet AssignOp = iota
	AssignAdd
	AssignSub
)

func (op AssignOp) String() string {
	switch op {
	case AssignAdd:
		return "+="
	case AssignSub:
		return "-="
	}
	return "="
}

type ExprAssignData struct {
	Op     AssignOp
	Target ExprID
	Value  ExprID
}

type ExprMatchesData struct {
	Subject  ExprID
	NodeType string
}

// Exprs manages allocation of expressions.
type Exprs struct {
	Arena       *Arena[Expr]
	Lits        *Arena[ExprLitData]
	Idents      *Arena[ExprIdentData]
	Binaries    *Arena[ExprBinaryData]
	Unaries     *Arena[ExprUnaryData]
	Calls       *Arena[ExprCallData]
	Members     *Arena[ExprMemberData]
	Indices     *Arena[ExprIndexData]
	StructInits *Arena[ExprStructInitData]
	ListInits   *Arena[ExprListInitData]
	MapInits    *Arena[ExprMapInitData]
	SetInits    *Arena[ExprSetInitData]
	Assigns     *Arena[ExprAssignData]
	MatchTests  *Arena[ExprMatchesData]
}

func NewExprs(capHint uint) *Exprs {
	if capHint == 0 {
		capHint = 1 << 8
	}
	return &Exprs{
		Arena:       NewArena[Expr](capHint),
		Lits:        NewArena[ExprLitData](capHint),
		Idents:      NewArena[ExprIdentData](capHint),
		Binaries:    NewArena[ExprBinaryData](capHint),
		Unaries:     NewArena[ExprUnaryData](capHint),
		Calls:       NewArena[ExprCallData](capHint),
		Members:     NewArena[ExprMemberData](capHint),
		Indices:     NewArena[ExprIndexData](capHint),
		StructInits: NewArena[ExprStructInitData](capHint),
		ListInits:   NewArena[ExprListInitData](capHint),
		MapInits:    NewArena[ExprMapInitData](capHint),
		SetInits:    NewArena[ExprSetInitData](capHint),
		Assigns:     NewArena[ExprAssignData](capHint),
		MatchTests:  NewArena[ExprMatchesData](capHint),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload PayloadID) ExprID {
	return ExprID(e.Arena.Allocate(Expr{Kind: kind, Span: span, Payload: payload}))
}

func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) NewLit(span source.Span, kind LitKind, value string) ExprID {
	payload := e.Lits.Allocate(ExprLitData{Kind: kind, Value: value})
	return e.new(ExprLit, span, PayloadID(payload))
}

func (e *Exprs) Lit(id ExprID) (*ExprLitData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprLit {
		return nil, false
	}
	return e.Lits.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewIdent(span source.Span, name string) ExprID {
	payload := e.Idents.Allocate(ExprIdentData{Name: name})
	return e.new(ExprIdent, span, PayloadID(payload))
}

func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIdent {
		return nil, false
	}
	return e.Idents.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewBinary(span source.Span, op BinaryOp, left, right ExprID) ExprID {
	payload := e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right})
	return e.new(ExprBinary, span, PayloadID(payload))
}

func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprBinary {
		return nil, false
	}
	return e.Binaries.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewUnary(span source.Span, op UnaryOp, operand ExprID) ExprID {
	payload := e.Unaries.Allocate(ExprUnaryData{Op: op, Operand: operand})
	return e.new(ExprUnary, span, PayloadID(payload))
}

func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprUnary {
		return nil, false
	}
	return e.Unaries.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewCall(span source.Span, callee ExprID, args []ExprID) ExprID {
	payload := e.Calls.Allocate(ExprCallData{Callee: callee, Args: args})
	return e.new(ExprCall, span, PayloadID(payload))
}

func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprCall {
		return nil, false
	}
	return e.Calls.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewMember(span source.Span, object ExprID, property string) ExprID {
	payload := e.Members.Allocate(ExprMemberData{Object: object, Property: property})
	return e.new(ExprMember, span, PayloadID(payload))
}

func (e *Exprs) Member(id ExprID) (*ExprMemberData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprMember {
		return nil, false
	}
	return e.Members.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewIndex(span source.Span, object, index ExprID) ExprID {
	payload := e.Indices.Allocate(ExprIndexData{Object: object, Index: index})
	return e.new(ExprIndex, span, PayloadID(payload))
}

func (e *Exprs) Index(id ExprID) (*ExprIndexData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprIndex {
		return nil, false
	}
	return e.Indices.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewStructInit(span source.Span, name string, fields []StructInitField) ExprID {
	payload := e.StructInits.Allocate(ExprStructInitData{Name: name, Fields: fields})
	return e.new(ExprStructInit, span, PayloadID(payload))
}

func (e *Exprs) StructInit(id ExprID) (*ExprStructInitData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprStructInit {
		return nil, false
	}
	return e.StructInits.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewListInit(span source.Span, elems []ExprID) ExprID {
	payload := e.ListInits.Allocate(ExprListInitData{Elems: elems})
	return e.new(ExprListInit, span, PayloadID(payload))
}

func (e *Exprs) ListInit(id ExprID) (*ExprListInitData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprListInit {
		return nil, false
	}
	return e.ListInits.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewMapInit(span source.Span, entries []MapEntry) ExprID {
	payload := e.MapInits.Allocate(ExprMapInitData{Entries: entries})
	return e.new(ExprMapInit, span, PayloadID(payload))
}

func (e *Exprs) MapInit(id ExprID) (*ExprMapInitData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprMapInit {
		return nil, false
	}
	return e.MapInits.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewSetInit(span source.Span, elems []ExprID) ExprID {
	payload := e.SetInits.Allocate(ExprSetInitData{Elems: elems})
	return e.new(ExprSetInit, span, PayloadID(payload))
}

func (e *Exprs) SetInit(id ExprID) (*ExprSetInitData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprSetInit {
		return nil, false
	}
	return e.SetInits.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewAssign(span source.Span, op AssignOp, target, value ExprID) ExprID {
	payload := e.Assigns.Allocate(ExprAssignData{Op: op, Target: target, Value: value})
	return e.new(ExprAssign, span, PayloadID(payload))
}

func (e *Exprs) Assign(id ExprID) (*ExprAssignData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprAssign {
		return nil, false
	}
	return e.Assigns.Get(uint32(expr.Payload)), true
}

func (e *Exprs) NewMatches(span source.Span, subject ExprID, nodeType string) ExprID {
	payload := e.MatchTests.Allocate(ExprMatchesData{Subject: subject, NodeType: nodeType})
	return e.new(ExprMatches, span, PayloadID(payload))
}

func (e *Exprs) Matches(id ExprID) (*ExprMatchesData, bool) {
	expr := e.Get(id)
	if expr == nil || expr.Kind != ExprMatches {
		return nil, false
	}
	return e.MatchTests.Get(uint32(expr.Payload)), true
}
