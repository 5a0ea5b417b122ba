// Package resolve defines the name-resolution contract the lowering
// engine consumes. The real resolver lives with the frontend; this
// package carries the interface plus a table-backed implementation the
// driver and tests feed directly.
package resolve

import (
	"rill/internal/ast"
	"rill/internal/def"
	"rill/internal/source"
)

// DefKind classifies what a resolved definition is.
type DefKind uint8

const (
	KindMod DefKind = iota
	KindStruct
	KindEnum
	KindUnion
	KindVariant
	KindTrait
	KindTraitAlias
	KindTyAlias
	KindExistential
	KindTyParam
	KindConstParam
	KindLifetimeParam
	KindFn
	KindMethod
	KindAssocType
	KindConst
	KindStatic
	KindCtor
	KindField
)

// ResKind tags a Resolution.
type ResKind uint8

const (
	// ResErr is the error sentinel: lowering keeps the tree well-formed
	// and the checker reports nothing further against it.
	ResErr ResKind = iota
	// ResDef names a definition.
	ResDef
	// ResLocal names a local binding by its pattern node.
	ResLocal
	// ResSelfTy is the `Self` type inside traits and impls.
	ResSelfTy
	// ResPrimTy is a builtin primitive type name.
	ResPrimTy
)

// Resolution is the resolver's answer for one path: what the resolvable
// prefix refers to, plus how many trailing segments it could not
// resolve (associated items left for type checking).
type Resolution struct {
	Kind ResKind
	// ResDef.
	DefKind DefKind
	Def     def.DefIndex
	// ResLocal.
	Local ast.NodeID
	// ResPrimTy.
	Prim source.StringID

	// UnresolvedSegments distinguishes `Enum::Variant` (0) from
	// `<T as Trait>::AssocItem` (1+).
	UnresolvedSegments int
}

// ErrResolution is the shared error sentinel value.
func ErrResolution() Resolution {
	return Resolution{Kind: ResErr}
}

// PerNS carries one optional resolution per namespace; `use` items can
// resolve differently in each.
type PerNS struct {
	Type  *Resolution
	Value *Resolution
}

// Resolver is everything lowering needs to ask about names.
type Resolver interface {
	// GetResolution returns the recorded resolution for a path node.
	GetResolution(node ast.NodeID) (Resolution, bool)

	// GetImportResolutions returns per-namespace results for a use item.
	GetImportResolutions(node ast.NodeID) PerNS

	// ResolveStrPath resolves a well-known library path synthesized
	// during desugaring (range constructors, try-operator plumbing).
	ResolveStrPath(span source.Span, crateRoot string, components []string, isValue bool) Resolution

	// ResolveHirPath re-resolves a lowered path, identified by its
	// source node, in the requested namespace. Paths only recorded in
	// the other namespace answer with the error sentinel.
	ResolveHirPath(node ast.NodeID, isValue bool) Resolution

	// Definitions exposes the mutable def table; lowering creates defs
	// for synthesized entities through it.
	Definitions() *def.Table
}
