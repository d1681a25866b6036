package ast

type (
	ItemID    uint32
	StmtID    uint32
	ExprID    uint32
	PatID     uint32
	TypeSynID uint32
	PayloadID uint32
)

const (
	NoItemID    ItemID    = 0
	NoStmtID    StmtID    = 0
	NoExprID    ExprID    = 0
	NoPatID     PatID     = 0
	NoTypeSynID TypeSynID = 0
	NoPayloadID PayloadID = 0
)

func (id ItemID) IsValid() bool    { return id != NoItemID }
func (id StmtID) IsValid() bool    { return id != NoStmtID }
func (id ExprID) IsValid() bool    { return id != NoExprID }
func (id PatID) IsValid() bool     { return id != NoPatID }
func (id TypeSynID) IsValid() bool { return id != NoTypeSynID }
