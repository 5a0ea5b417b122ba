package ast

import (
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
	ExprIfLet
	ExprWhile
	ExprWhileLet
	ExprForLoop
	ExprLoop
	ExprMatch
	ExprTry
	ExprCatch
	ExprRange
	ExprBreak
	ExprContinue
	ExprReturn
	ExprClosure
	ExprAddrOf
	ExprStructLit
	ExprTuple
	ExprArray
	ExprRepeat
	ExprParen
	ExprYield
)

type LitKind uint8

const (
	LitInt LitKind = iota
	LitFloat
	LitBool
	LitStr
	LitChar
	LitUnit
)

// RangeLimits tells whether a range's high end is included.
type RangeLimits uint8

const (
	RangeHalfOpen RangeLimits = iota
	RangeClosed
)

type UnOp uint8

const (
	UnNeg UnOp = iota
	UnNot
	UnDeref
)

type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinAnd
	BinOr
	BinBitAnd
	BinBitOr
	BinBitXor
	BinShl
	BinShr
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
)

// Label names a loop or catch block target: `'outer: loop { ... }`.
type Label struct {
	ID   NodeID
	Name source.StringID
	Span source.Span
}

// MatchArm is one `pats (if guard) => body` arm.
type MatchArm struct {
	ID    NodeID
	Pats  []PatID
	Guard ExprID
	Body  ExprID
	Span  source.Span
}

// StructLitField is one `name: value` in a struct literal.
type StructLitField struct {
	ID       NodeID
	Name     source.StringID
	Value    ExprID
	Shorthand bool
	Span     source.Span
}

// ClosureParam is one closure formal.
type ClosureParam struct {
	ID   NodeID
	Pat  PatID
	Ty   TyID
	Span source.Span
}

// Expr is a surface expression, a flat union selected by Kind.
type Expr struct {
	ID   NodeID
	Kind ExprKind
	Span source.Span

	// ExprLit
	Lit    LitKind
	LitVal source.StringID

	// ExprPath, ExprStructLit
	Path Path

	// Operators.
	UnOp  UnOp
	BinOp BinOp

	// Generic operand slots; which are meaningful depends on Kind:
	//   ExprUnary/ExprTry/ExprParen/ExprAddrOf/ExprYield: Lhs
	//   ExprBinary/ExprAssign/ExprIndex/ExprRepeat: Lhs, Rhs
	//   ExprField: Lhs + FieldName
	//   ExprIf/ExprWhile: Lhs is the condition
	//   ExprIfLet/ExprWhileLet/ExprForLoop: Lhs is the scrutinee/head
	//   ExprMatch: Lhs is the scrutinee
	//   ExprBreak/ExprReturn: Lhs is the optional value
	//   ExprRange: Lhs, Rhs are the optional endpoints
	Lhs ExprID
	Rhs ExprID

	FieldName source.StringID

	// ExprCall: Lhs is the callee.
	Args []ExprID

	// Block-carrying kinds: ExprBlock, ExprIf (then), ExprIfLet (then),
	// ExprWhile/ExprWhileLet/ExprForLoop/ExprLoop (body), ExprCatch.
	Block BlockID
	// Else arm of ExprIf/ExprIfLet.
	Else ExprID

	// ExprIfLet/ExprWhileLet/ExprForLoop.
	Pat PatID

	// Loop/catch label, and break/continue target label.
	Label Label

	// ExprMatch.
	Arms []MatchArm

	// ExprRange.
	Limits RangeLimits

	// ExprStructLit.
	Fields []StructLitField
	Base   ExprID

	// ExprTuple / ExprArray.
	Items []ExprID

	// ExprClosure: body is an expression, not a block.
	ClosureParams []ClosureParam
	ClosureRet    TyID
	Body          ExprID

	// ExprAddrOf.
	Mutable bool
}
