package hir

import (
	"rill/internal/ast"
	"rill/internal/source"
)

type ExprKind uint8

const (
	ExprLit ExprKind = iota
	ExprPath
	ExprUnary
	ExprBinary
	ExprAssign
	ExprCall
	ExprField
	ExprIndex
	ExprBlock
	ExprIf
	ExprLoop
	ExprMatch
	ExprBreak
	ExprContinue
	ExprReturn
	ExprClosure
	ExprAddrOf
	ExprStructLit
	ExprTuple
	ExprArray
	ExprRepeat
	ExprCast
	ExprYield
	ExprErr
)

// Expr is a lowered expression: a kind tag plus a kind-specific
// payload, matching by construction.
type Expr struct {
	ID   HirID
	Kind ExprKind
	Span source.Span
	Data ExprData
}

// ExprData is implemented by every expression payload.
type ExprData interface {
	exprData()
}

// MatchSource records which surface form a match was desugared from;
// diagnostics and unreachable-code analysis key off it.
type MatchSource uint8

const (
	MatchNormal MatchSource = iota
	MatchIfLet
	MatchWhileLet
	MatchForLoop
	MatchTry
)

// LoopSource records which surface form a loop was desugared from.
type LoopSource uint8

const (
	LoopPlain LoopSource = iota
	LoopWhile
	LoopWhileLet
	LoopForLoop
)

// Destination is a break/continue target. Target is the HirID of the
// enclosing loop or block; IsErr marks an unresolved label, a
// recoverable resolution error.
type Destination struct {
	LabelName source.StringID
	Target    HirID
	IsErr     bool
}

// Arm is one match arm.
type Arm struct {
	Pats  []*Pat
	Guard *Expr
	Body  *Expr
}

type LitData struct {
	Lit ast.LitKind
	Val source.StringID
}

type PathData struct {
	QPath QPath
}

type UnaryData struct {
	Op  ast.UnOp
	Sub *Expr
}

type BinaryData struct {
	Op  ast.BinOp
	Lhs *Expr
	Rhs *Expr
}

type AssignData struct {
	Lhs *Expr
	Rhs *Expr
}

type CallData struct {
	Fn   *Expr
	Args []*Expr
}

type FieldData struct {
	Base *Expr
	Name source.StringID
}

type IndexData struct {
	Base  *Expr
	Index *Expr
}

type BlockData struct {
	Block *Block
}

type IfData struct {
	Cond *Expr
	Then *Expr
	Else *Expr
}

type LoopData struct {
	Body   *Block
	Source LoopSource
}

type MatchData struct {
	Scrutinee *Expr
	Arms      []Arm
	Source    MatchSource
}

type BreakData struct {
	Dest  Destination
	Value *Expr
}

type ContinueData struct {
	Dest Destination
}

type ReturnData struct {
	Value *Expr
}

type ClosureData struct {
	Decl      FnDecl
	Body      BodyID
	IsGenerator bool
}

type AddrOfData struct {
	Mutable bool
	Sub     *Expr
}

type StructLitField struct {
	ID    HirID
	Name  source.StringID
	Value *Expr
	Span  source.Span
}

type StructLitData struct {
	QPath  QPath
	Fields []StructLitField
	Base   *Expr
}

type TupleData struct {
	Items []*Expr
}

type ArrayData struct {
	Items []*Expr
}

type RepeatData struct {
	Elem  *Expr
	Count *Expr
}

type CastData struct {
	Sub *Expr
	Ty  *Ty
}

type YieldData struct {
	Value *Expr
}

// ErrData is the recoverable-error placeholder expression.
type ErrData struct{}

func (LitData) exprData()       {}
func (PathData) exprData()      {}
func (UnaryData) exprData()     {}
func (BinaryData) exprData()    {}
func (AssignData) exprData()    {}
func (CallData) exprData()      {}
func (FieldData) exprData()     {}
func (IndexData) exprData()     {}
func (BlockData) exprData()     {}
func (IfData) exprData()        {}
func (LoopData) exprData()      {}
func (MatchData) exprData()     {}
func (BreakData) exprData()     {}
func (ContinueData) exprData()  {}
func (ReturnData) exprData()    {}
func (ClosureData) exprData()   {}
func (AddrOfData) exprData()    {}
func (StructLitData) exprData() {}
func (TupleData) exprData()     {}
func (ArrayData) exprData()     {}
func (RepeatData) exprData()    {}
func (CastData) exprData()      {}
func (YieldData) exprData()     {}
func (ErrData) exprData()       {}

type StmtKind uint8

const (
	StmtLet StmtKind = iota
	StmtExpr
	StmtSemi
	StmtItem
)

// LetSource records whether a let was written or manufactured.
type LetSource uint8

const (
	LetNormal LetSource = iota
	LetForLoopDesugar
)

type LetStmt struct {
	Pat    *Pat
	Ty     *Ty
	Init   *Expr
	Source LetSource
}

type Stmt struct {
	ID   HirID
	Kind StmtKind
	Span source.Span

	Let  *LetStmt
	Expr *Expr
	Item ItemID
}

// Block is a lowered block. TargetedByBreak is set when a desugared
// `?` breaks to this block (catch scopes).
type Block struct {
	ID              HirID
	Span            source.Span
	Stmts           []Stmt
	Expr            *Expr
	TargetedByBreak bool
}
