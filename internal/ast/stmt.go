package ast

import (
	"reluxc/internal/source"
)

type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtLet
	StmtExpr
	StmtIf
	StmtMatch
	StmtFor
	StmtWhile
	StmtReturn
	StmtBreak
	StmtContinue
)

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

type StmtBlockData struct {
	Stmts []StmtID
}

type StmtLetData struct {
	Name    string
	Mutable bool
	// Type is the optional written annotation; NoTypeSynID means inferred.
	Type TypeSynID
	Init ExprID
}

type StmtExprData struct {
	Expr ExprID
}

type StmtIfData struct {
	Cond ExprID
	Then StmtID
	// Else is a block or another if statement; NoStmtID when absent.
	Else StmtID
}

// MatchArm is one arm of a structural or value match.
type MatchArm struct {
	Pat   PatID
	Guard ExprID // NoExprID when the arm has no guard
	Body  StmtID
	Span  source.Span
}

type StmtMatchData struct {
	Subject ExprID
	Arms    []MatchArm
}

type StmtForData struct {
	Binding string
	Iter    ExprID
	Body    StmtID
}

type StmtWhileData struct {
	Cond ExprID
	Body StmtID
}

type StmtReturnData struct {
	Value ExprID // NoExprID for bare return
}

// Stmts manages allocation of statements.
type Stmts struct {
	Arena   *Arena[Stmt]
	Blocks  *Arena[StmtBlockData]
	Lets    *Arena[StmtLetData]
	Exprs   *Arena[StmtExprData]
	Ifs     *Arena[StmtIfData]
	Matches *Arena[StmtMatchData]
	Fors    *Arena[StmtForData]
	Whiles  *Arena[StmtWhileData]
	Returns *Arena[StmtReturnData]
}

func NewStmts(capHint uint) *Stmts {
	if capHint == 0 {
		capHint = 1 << 7
	}
	return &Stmts{
		Arena:   NewArena[Stmt](capHint),
		Blocks:  NewArena[StmtBlockData](capHint),
		Lets:    NewArena[StmtLetData](capHint),
		Exprs:   NewArena[StmtExprData](capHint),
		Ifs:     NewArena[StmtIfData](capHint),
		Matches: NewArena[StmtMatchData](capHint),
		Fors:    NewArena[StmtForData](capHint),
		Whiles:  NewArena[StmtWhileData](capHint),
		Returns: NewArena[StmtReturnData](capHint),
	}
}

func (s *Stmts) new(kind StmtKind, span source.Span, payload PayloadID) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: span, Payload: payload}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) NewBlock(span source.Span, stmts []StmtID) StmtID {
	payload := s.Blocks.Allocate(StmtBlockData{Stmts: stmts})
	return s.new(StmtBlock, span, PayloadID(payload))
}

func (s *Stmts) Block(id StmtID) (*StmtBlockData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtBlock {
		return nil, false
	}
	return s.Blocks.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewLet(span source.Span, data StmtLetData) StmtID {
	payload := s.Lets.Allocate(data)
	return s.new(StmtLet, span, PayloadID(payload))
}

func (s *Stmts) Let(id StmtID) (*StmtLetData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtLet {
		return nil, false
	}
	return s.Lets.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewExpr(span source.Span, expr ExprID) StmtID {
	payload := s.Exprs.Allocate(StmtExprData{Expr: expr})
	return s.new(StmtExpr, span, PayloadID(payload))
}

func (s *Stmts) Expr(id StmtID) (*StmtExprData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtExpr {
		return nil, false
	}
	return s.Exprs.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewIf(span source.Span, data StmtIfData) StmtID {
	payload := s.Ifs.Allocate(data)
	return s.new(StmtIf, span, PayloadID(payload))
}

func (s *Stmts) If(id StmtID) (*StmtIfData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtIf {
		return nil, false
	}
	return s.Ifs.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewMatch(span source.Span, data StmtMatchData) StmtID {
	payload := s.Matches.Allocate(data)
	return s.new(StmtMatch, span, PayloadID(payload))
}

func (s *Stmts) Match(id StmtID) (*StmtMatchData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtMatch {
		return nil, false
	}
	return s.Matches.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewFor(span source.Span, data StmtForData) StmtID {
	payload := s.Fors.Allocate(data)
	return s.new(StmtFor, span, PayloadID(payload))
}

func (s *Stmts) For(id StmtID) (*StmtForData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtFor {
		return nil, false
	}
	return s.Fors.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewWhile(span source.Span, data StmtWhileData) StmtID {
	payload := s.Whiles.Allocate(data)
	return s.new(StmtWhile, span, PayloadID(payload))
}

func (s *Stmts) While(id StmtID) (*StmtWhileData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtWhile {
		return nil, false
	}
	return s.Whiles.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewReturn(span source.Span, value ExprID) StmtID {
	payload := s.Returns.Allocate(StmtReturnData{Value: value})
	return s.new(StmtReturn, span, PayloadID(payload))
}

func (s *Stmts) Return(id StmtID) (*StmtReturnData, bool) {
	stmt := s.Get(id)
	if stmt == nil || stmt.Kind != StmtReturn {
		return nil, false
	}
	return s.Returns.Get(uint32(stmt.Payload)), true
}

func (s *Stmts) NewBreak(span source.Span) StmtID {
	return s.new(StmtBreak, span, NoPayloadID)
}

func (s *Stmts) NewContinue(span source.Span) StmtID {
	return s.new(StmtContinue, span, NoPayloadID)
}
