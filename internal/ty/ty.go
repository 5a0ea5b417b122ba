// Package ty is the demand-driven type and predicate layer: compact
// interned type descriptors plus a memoized, cycle-safe query engine
// over the lowered crate.
package ty

import (
	"rill/internal/def"
	"rill/internal/source"
)

// TypeID is a stable handle into the interner. Zero is invalid.
type TypeID uint32

const NoTypeID TypeID = 0

// ListID is a handle to an interned TypeID slice. Zero is the empty
// list, which is always valid.
type ListID uint32

const EmptyListID ListID = 0

type Kind uint8

const (
	KindError Kind = iota
	KindPrim
	KindParam
	KindAdt
	KindRef
	KindRawPtr
	KindSlice
	KindArray
	KindTuple
	KindNever
	KindFnPtr
	KindDyn
	KindOpaque
	KindProjection
	KindInfer
)

// RegionKind tags a lifetime value.
type RegionKind uint8

const (
	// RegErased stands for an elided lifetime left to later resolution.
	RegErased RegionKind = iota
	// RegEarlyBound names a lifetime parameter of the enclosing item.
	RegEarlyBound
	// RegLateBound names a lifetime under a binder (`for<'a>`, GATs).
	RegLateBound
	RegStatic
	RegError
)

// Region is a lifetime value, compact and comparable.
type Region struct {
	Kind RegionKind
	Name source.StringID
}

// Type is a compact structural descriptor. Composite types refer to
// their parts through interned handles, so the whole descriptor stays
// comparable and the interner can key on it directly.
type Type struct {
	Kind Kind

	// KindAdt, KindOpaque: the definition. KindProjection: the
	// associated-type def. KindParam: the param def (NoDefIndex for the
	// implicit Self). KindDyn: the principal trait def.
	Def def.DefIndex

	// KindRef, KindRawPtr, KindSlice, KindArray.
	Elem TypeID

	// Type arguments (KindAdt, KindOpaque, KindProjection), tuple
	// elements, or fn-pointer inputs+output (output last).
	Args ListID

	// KindParam: name for display. KindPrim: the primitive's name.
	Name source.StringID

	// KindFnPtr: input count (Args holds inputs then output).
	// KindParam: dense index within the owner's generics.
	Index uint32

	// KindRef.
	Region  Region
	Mutable bool
}

// PredicateKind tags one obligation.
type PredicateKind uint8

const (
	// PredError is the sentinel carried by failed predicate queries;
	// consumers treat it as compatible with anything.
	PredError PredicateKind = iota
	// PredTrait is `SelfTy: Trait<Args>`.
	PredTrait
	// PredRegionOutlives is `'a: 'b`.
	PredRegionOutlives
	// PredTypeOutlives is `T: 'a`.
	PredTypeOutlives
	// PredProjection constrains an associated type application.
	PredProjection
)

// TraitRef is a trait applied to a self type plus arguments. Args
// includes the self type at position 0.
type TraitRef struct {
	Def  def.DefIndex
	Args ListID
}

// Predicate is one comparable obligation; GenericPredicates slices
// deduplicate on it directly.
type Predicate struct {
	Kind PredicateKind

	// PredTrait.
	Trait TraitRef

	// PredTypeOutlives (Ty: Region), PredProjection (the projection).
	Ty TypeID

	// PredRegionOutlives: Sub outlives Sup. PredTypeOutlives reuses Sup.
	Sub Region
	Sup Region

	// PredProjection: the equated right-hand side.
	RhsTy TypeID
}

// GenericPredicates is the answer shape of the predicate queries.
// Err marks the cycle/error sentinel set.
type GenericPredicates struct {
	Parent     def.DefIndex
	Predicates []Predicate
	Err        bool
}

// HasPredicate reports membership, treating the error sentinel as
// containing everything.
func (gp *GenericPredicates) HasPredicate(p Predicate) bool {
	if gp.Err {
		return true
	}
	for _, q := range gp.Predicates {
		if q == p {
			return true
		}
	}
	return false
}

type ParamKind uint8

const (
	ParamLifetime ParamKind = iota
	ParamType
	ParamConst
)

// SyntheticKind marks generic params with no surface syntax.
type SyntheticKind uint8

const (
	SynNone SyntheticKind = iota
	SynSelf
	SynImplTrait
	SynClosureKind
	SynClosureSig
	SynClosureUpvars
	SynGenResume
	SynGenYield
	SynGenReturn
	SynGenWitness
	SynGenUpvars
)

// ParamDef is one slot of an item's generics, after reordering into
// the lifetimes-types-consts layout.
type ParamDef struct {
	Def       def.DefIndex
	Name      source.StringID
	Index     uint32
	Kind      ParamKind
	Synthetic SyntheticKind
}

// Generics is the answer shape of GenericsOf: own params in dense
// index order, linked to the parent item's generics for nested defs.
type Generics struct {
	Parent      def.DefIndex
	ParentCount uint32
	HasSelf     bool
	Params      []ParamDef
}

// Count is the total slot count including the parent's.
func (g *Generics) Count() int {
	return int(g.ParentCount) + len(g.Params)
}

// ParamByDef finds an own param slot by its def.
func (g *Generics) ParamByDef(d def.DefIndex) (ParamDef, bool) {
	for _, p := range g.Params {
		if p.Def == d {
			return p, true
		}
	}
	return ParamDef{}, false
}

type AdtKind uint8

const (
	AdtStruct AdtKind = iota
	AdtEnum
	AdtUnion
)

// FieldTy is one field of an ADT variant with its converted type.
type FieldTy struct {
	Def  def.DefIndex
	Name source.StringID
	Ty   TypeID
}

type VariantDef struct {
	Def    def.DefIndex
	Name   source.StringID
	Fields []FieldTy
}

// AdtDef is the answer shape of the AdtDef query.
type AdtDef struct {
	Def      def.DefIndex
	Kind     AdtKind
	Variants []VariantDef
	ReprC    bool
	ReprSimd bool
}

// TraitDef is the answer shape of the TraitDef query.
type TraitDef struct {
	Def         def.DefIndex
	IsAuto      bool
	IsAlias     bool
	HasAutoImpl bool
}

// FnSig is the answer shape of the FnSig query. Inputs and output are
// interned; Args holds inputs then output, as with KindFnPtr.
type FnSig struct {
	Inputs []TypeID
	Output TypeID
	Unsafe bool
	Abi    string
}

type ImplPolarity uint8

const (
	ImplPositive ImplPolarity = iota
	ImplNegative
)

// InlineHint mirrors the #[inline] attribute states.
type InlineHint uint8

const (
	InlineNone InlineHint = iota
	InlineHintAttr
	InlineAlways
	InlineNever
)

// CodegenFnAttrs is the answer shape of the CodegenFnAttrs query.
type CodegenFnAttrs struct {
	Inline      InlineHint
	NoMangle    bool
	LinkName    string
	LinkOrdinal uint16
	HasOrdinal  bool
}
