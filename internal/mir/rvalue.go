package mir

import (
	"rill/internal/ast"
	"rill/internal/def"
	"rill/internal/ty"
)

type OperandKind uint8

const (
	// OperandCopy reads the place, leaving it live.
	OperandCopy OperandKind = iota
	// OperandMove is the last use: the value may be relocated or
	// invalidated afterward, so the distinction is semantic, not a
	// hint.
	OperandMove
	OperandConst
)

type Operand struct {
	Kind  OperandKind
	Place Place
	Const Const
}

type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstUint
	ConstBool
	ConstStr
	ConstUnit
	ConstFn
)

// Const is a literal operand. Text preserves the raw literal spelling;
// evaluation belongs to a later phase.
type Const struct {
	Kind ConstKind
	Ty   ty.TypeID

	Text string
	Bool bool
	Fn   def.DefIndex
}

type BorrowKind uint8

const (
	BorrowShared BorrowKind = iota
	// BorrowShallow only protects the borrowed place itself, not what
	// it points through; match lowering uses it for guards.
	BorrowShallow
	BorrowUnique
	BorrowMut
)

type RvalueKind uint8

const (
	RvalUse RvalueKind = iota
	RvalRepeat
	RvalRef
	RvalLen
	RvalCast
	RvalBinary
	RvalCheckedBinary
	RvalUnary
	RvalDiscriminant
	RvalAggregate
)

// Rvalue is the right side of an assignment.
type Rvalue struct {
	Kind RvalueKind

	Use    Operand
	Repeat RepeatRval
	Ref    RefRval
	// RvalLen, RvalDiscriminant.
	Place     Place
	Cast      CastRval
	Binary    BinaryRval
	Unary     UnaryRval
	Aggregate AggregateRval
}

type RepeatRval struct {
	Elem  Operand
	Count uint64
}

type RefRval struct {
	Borrow BorrowKind
	// TwoPhase marks mutable borrows that start shared and activate
	// on first write.
	TwoPhase bool
	Place    Place
}

type CastRval struct {
	Source Operand
	Ty     ty.TypeID
}

type BinaryRval struct {
	Op  ast.BinOp
	Lhs Operand
	Rhs Operand
}

type UnaryRval struct {
	Op  ast.UnOp
	Sub Operand
}

type AggregateKind uint8

const (
	AggArray AggregateKind = iota
	AggTuple
	AggAdt
	AggClosure
	AggGenerator
)

type AggregateRval struct {
	Kind AggregateKind

	// AggArray.
	ElemTy ty.TypeID
	// AggAdt: the ADT def and variant; AggClosure, AggGenerator: the
	// closure's def.
	Def     def.DefIndex
	Variant uint32

	Operands []Operand
}
