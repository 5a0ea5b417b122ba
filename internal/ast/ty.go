package ast

import (
	"rill/internal/source"
)

type TyKind uint8

const (
	TyPath TyKind = iota
	TyRef
	TyPtr
	TyTuple
	TySlice
	TyArray
	TyBareFn
	TyNever
	TyImplTrait
	TyTraitObject
	TyInfer
	TyParen
)

// Ty is a surface type node, a flat union selected by Kind.
type Ty struct {
	ID   NodeID
	Kind TyKind
	Span source.Span

	Path     Path       // TyPath
	Lifetime Lifetime   // TyRef
	Mutable  bool       // TyRef, TyPtr
	Elem     TyID       // TyRef, TyPtr, TySlice, TyArray, TyParen
	Len      ExprID     // TyArray
	Tuple    []TyID     // TyTuple
	BareFn   BareFnTy   // TyBareFn
	Bounds   []GenericBound // TyImplTrait, TyTraitObject

	// BareForm marks a trait object written without an explicit `dyn`
	// marker; lowering reports a deprecation lint for it.
	BareForm bool
}

// BareFnTy is a function-pointer type.
type BareFnTy struct {
	BinderLifetimes []GenericParamID
	Inputs          []TyID
	Output          TyID
}

type GenericBoundKind uint8

const (
	// BoundTrait is a trait bound, possibly under a `for<'a>` binder.
	BoundTrait GenericBoundKind = iota
	// BoundOutlives is a lifetime bound.
	BoundOutlives
)

type TraitBoundModifier uint8

const (
	BoundModNone TraitBoundModifier = iota
	// BoundModMaybe is `?Trait`; only legal directly on type parameters.
	BoundModMaybe
)

// GenericBound is one element of a bound list.
type GenericBound struct {
	Kind     GenericBoundKind
	Span     source.Span
	Modifier TraitBoundModifier

	// BoundTrait
	BinderLifetimes []GenericParamID
	TraitRef        Path
	TraitRefID      NodeID

	// BoundOutlives
	Lifetime Lifetime
}

type GenericParamKind uint8

const (
	ParamLifetime GenericParamKind = iota
	ParamType
	ParamConst
)

// GenericParam is one formal parameter of an item's generic list, in the
// order written in source. Collection reorders positionally, lowering
// does not.
type GenericParam struct {
	ID     NodeID
	Kind   GenericParamKind
	Name   source.StringID
	Span   source.Span
	Bounds []GenericBound
	// Default is the default type for type params.
	Default TyID
	// ConstTy is the declared type of a const param.
	ConstTy TyID
}

// Generics is the formal generics of an item plus its where clause.
type Generics struct {
	Params []GenericParamID
	Where  []WherePredicate
	Span   source.Span
}

type WherePredicateKind uint8

const (
	WhereBound WherePredicateKind = iota
	WhereRegion
	WhereEq
)

// WherePredicate is one where-clause entry.
type WherePredicate struct {
	ID   NodeID
	Kind WherePredicateKind
	Span source.Span

	// WhereBound: BoundedTy : Bounds, under optional binder lifetimes.
	BinderLifetimes []GenericParamID
	BoundedTy       TyID
	Bounds          []GenericBound

	// WhereRegion: Lifetime : RegionBounds.
	Lifetime     Lifetime
	RegionBounds []Lifetime

	// WhereEq: LhsTy = RhsTy.
	LhsTy TyID
	RhsTy TyID
}
