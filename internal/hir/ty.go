package hir

import (
	"rill/internal/ast"
	"rill/internal/def"
	"rill/internal/resolve"
	"rill/internal/source"
)

// LifetimeName distinguishes how a lowered lifetime is known.
type LifetimeName uint8

const (
	// LtParam refers to a named parameter, in-band or declared.
	LtParam LifetimeName = iota
	// LtImplicit is an elided position left for the resolution pass.
	LtImplicit
	// LtUnderscore is an explicit `'_` left for the resolution pass.
	LtUnderscore
	// LtStatic is `'static`, always terminal, never elided.
	LtStatic
	// LtError replaces a lifetime that failed to lower.
	LtError
)

// Lifetime is a lifetime use site in the lowered tree.
type Lifetime struct {
	ID   HirID
	Span source.Span
	Name LifetimeName
	// Ident is the written name for LtParam.
	Ident source.StringID
}

// IsElided reports whether the later resolution pass must fill this in.
func (lt Lifetime) IsElided() bool {
	return lt.Name == LtImplicit || lt.Name == LtUnderscore
}

// Path is a fully-lowered path along with its resolution.
type Path struct {
	Span     source.Span
	Res      resolve.Resolution
	Segments []PathSeg
}

type PathSeg struct {
	Name source.StringID
	Args GenericArgs
	// InferTypes marks segments that may have types inferred at the use
	// site (no explicit argument list was written).
	InferTypes bool
}

// GenericArgs are the lowered arguments on one path segment.
type GenericArgs struct {
	Lifetimes     []Lifetime
	Types         []*Ty
	Bindings      []TypeBinding
	Parenthesized bool
}

type TypeBinding struct {
	ID   HirID
	Name source.StringID
	Ty   *Ty
	Span source.Span
}

// QPathKind tags a possibly type-relative path.
type QPathKind uint8

const (
	// QPathResolved is a plain path with a resolver answer.
	QPathResolved QPathKind = iota
	// QPathTypeRelative is `<T>::seg`, resolved during type checking.
	QPathTypeRelative
)

type QPath struct {
	Kind QPathKind
	// QPathResolved.
	Path *Path
	// QPathTypeRelative.
	SelfTy *Ty
	Seg    PathSeg
}

// TraitRef is a reference to a trait from a bound or impl header.
type TraitRef struct {
	Path  *Path
	HirID HirID
}

// TraitDefID returns the referenced trait def, or invalid on error
// sentinel resolutions.
func (tr TraitRef) TraitDefID() def.DefIndex {
	if tr.Path == nil || tr.Path.Res.Kind != resolve.ResDef {
		return def.NoDefIndex
	}
	return tr.Path.Res.Def
}

// PolyTraitRef is a trait reference under an optional `for<'a>` binder.
type PolyTraitRef struct {
	BoundParams []GenericParam
	TraitRef    TraitRef
	Span        source.Span
}

type BoundKind uint8

const (
	BoundTrait BoundKind = iota
	BoundOutlives
)

// GenericBound is one lowered bound.
type GenericBound struct {
	Kind     BoundKind
	Modifier ast.TraitBoundModifier
	Trait    PolyTraitRef
	Outlives Lifetime
	Span     source.Span
}

type GenericParamKind uint8

const (
	ParamLifetime GenericParamKind = iota
	ParamType
	ParamConst
)

// GenericParam is a lowered formal generic parameter. Synthetic marks
// parameters minted by desugaring (universal impl-Trait); InBand marks
// lifetime parameters collected from elided or in-band uses.
type GenericParam struct {
	ID        HirID
	Def       def.DefIndex
	Name      source.StringID
	Span      source.Span
	Kind      GenericParamKind
	Bounds    []GenericBound
	Default   *Ty
	ConstTy   *Ty
	Synthetic bool
	InBand    bool
}

type WherePredicateKind uint8

const (
	WhereBound WherePredicateKind = iota
	WhereRegion
	WhereEq
)

type WherePredicate struct {
	Kind WherePredicateKind
	Span source.Span

	BoundParams []GenericParam
	BoundedTy   *Ty
	Bounds      []GenericBound

	Lifetime     Lifetime
	RegionBounds []Lifetime

	LhsTy *Ty
	RhsTy *Ty
}

// Generics is an item's lowered generic parameter list.
type Generics struct {
	Params []GenericParam
	Where  []WherePredicate
	Span   source.Span
}

// LifetimeParamCount counts the lifetime params, used when eliding
// lifetime arguments at use sites.
func (g *Generics) LifetimeParamCount() int {
	n := 0
	for i := range g.Params {
		if g.Params[i].Kind == ParamLifetime {
			n++
		}
	}
	return n
}

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
	TyTraitObject
	TyInfer
	TyErr
)

// Ty is a lowered type node. Return-position impl Trait does not
// appear here; it lowers to a TyPath referencing a synthesized
// existential item.
type Ty struct {
	ID   HirID
	Kind TyKind
	Span source.Span

	QPath    QPath      // TyPath
	Lifetime Lifetime   // TyRef, TyTraitObject (default object lifetime)
	Mutable  bool       // TyRef, TyPtr
	Elem     *Ty        // TyRef, TyPtr, TySlice, TyArray
	Len      *Expr      // TyArray
	Tuple    []*Ty      // TyTuple
	BareFn   *BareFnTy  // TyBareFn
	Bounds   []PolyTraitRef // TyTraitObject
}

type BareFnTy struct {
	BoundParams []GenericParam
	Inputs      []*Ty
	Output      *Ty
}

// FnDecl is a lowered signature. A nil Output means the default unit
// return.
type FnDecl struct {
	Inputs []*Ty
	Output *Ty
}

// FnSig pairs the header qualifiers with the declaration.
type FnSig struct {
	Header ast.FnHeader
	Decl   FnDecl
}
