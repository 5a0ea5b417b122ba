package ast

import (
	"rill/internal/source"
)

type PatKind uint8

const (
	PatWild PatKind = iota
	PatIdent
	PatPath
	PatTupleStruct
	PatStruct
	PatTuple
	PatLit
	PatRef
)

type BindingMode uint8

const (
	BindByValue BindingMode = iota
	BindByValueMut
	BindByRef
	BindByRefMut
)

// FieldPat is one `name: pat` in a struct pattern.
type FieldPat struct {
	ID        NodeID
	Name      source.StringID
	Pat       PatID
	Shorthand bool
	Span      source.Span
}

// Pat is a surface pattern, a flat union selected by Kind.
type Pat struct {
	ID   NodeID
	Kind PatKind
	Span source.Span

	// PatIdent.
	Mode BindingMode
	Name source.StringID
	Sub  PatID

	// PatPath, PatTupleStruct, PatStruct.
	Path Path

	// PatTupleStruct, PatTuple.
	Pats []PatID
	// HasRest marks a `..` in the element list.
	HasRest bool

	// PatStruct.
	Fields []FieldPat

	// PatLit.
	Expr ExprID

	// PatRef.
	Mutable bool
}
