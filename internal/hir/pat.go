package hir

import (
	"rill/internal/ast"
	"rill/internal/source"
)

type PatKind uint8

const (
	PatWild PatKind = iota
	PatBinding
	PatPath
	PatTupleStruct
	PatStruct
	PatTuple
	PatLit
	PatRef
)

// FieldPat is one field of a struct pattern.
type FieldPat struct {
	ID   HirID
	Name source.StringID
	Pat  *Pat
	Span source.Span
}

// Pat is a lowered pattern, a flat union selected by Kind.
type Pat struct {
	ID   HirID
	Kind PatKind
	Span source.Span

	// PatBinding. The binding's HirID is the Pat's own ID; local
	// references resolve to it.
	Mode ast.BindingMode
	Name source.StringID
	Sub  *Pat

	// PatPath, PatTupleStruct, PatStruct.
	QPath QPath

	// PatTupleStruct, PatTuple.
	Pats    []*Pat
	HasRest bool

	// PatStruct.
	Fields []FieldPat

	// PatLit.
	Expr *Expr

	// PatRef.
	Mutable bool
}

// EachBinding walks the pattern invoking visit for every binding.
func (p *Pat) EachBinding(visit func(*Pat)) {
	if p == nil {
		return
	}
	if p.Kind == PatBinding {
		visit(p)
	}
	if p.Sub != nil {
		p.Sub.EachBinding(visit)
	}
	for _, sub := range p.Pats {
		sub.EachBinding(visit)
	}
	for i := range p.Fields {
		p.Fields[i].Pat.EachBinding(visit)
	}
}
