package ast

import (
	"rill/internal/source"
)

// Path is a possibly-qualified name reference: `a::b::<T>::c`.
// Paths are stored inline in the node that owns them; resolution results
// are keyed by the owning node's NodeID.
type Path struct {
	Span     source.Span
	Segments []PathSeg
}

// PathSeg is one `name<args>` component.
type PathSeg struct {
	ID   NodeID
	Name source.StringID
	Args GenericArgs
}

// GenericArgs carries the arguments written on one path segment.
// Parenthesized marks `Fn(A, B) -> C` sugar, which is only legal on
// Fn-family trait paths.
type GenericArgs struct {
	Lifetimes     []Lifetime
	Types         []TyID
	Bindings      []TypeBinding
	Parenthesized bool
}

func (a GenericArgs) IsEmpty() bool {
	return len(a.Lifetimes) == 0 && len(a.Types) == 0 && len(a.Bindings) == 0 && !a.Parenthesized
}

// TypeBinding is an associated-type equality constraint: `Item = T`.
type TypeBinding struct {
	ID   NodeID
	Name source.StringID
	Ty   TyID
	Span source.Span
}

// LifetimeKind distinguishes how a lifetime was written.
type LifetimeKind uint8

const (
	// LifetimeNamed is an explicit `'a`.
	LifetimeNamed LifetimeKind = iota
	// LifetimeImplicit is an elided lifetime position (`&T`).
	LifetimeImplicit
	// LifetimeUnderscore is an explicit `'_`.
	LifetimeUnderscore
	// LifetimeStatic is `'static`; never subject to elision.
	LifetimeStatic
)

// Lifetime is a lifetime reference at a use site.
type Lifetime struct {
	ID   NodeID
	Kind LifetimeKind
	Name source.StringID
	Span source.Span
}
