// Package hir holds the desugared tree and the lowering pass that
// produces it from the surface AST.
//
// Identity scheme: every HIR node carries a HirID composed of the
// owning item's DefIndex plus a dense local counter. Local 0 is the
// owner node itself. An ast NodeID maps to at most one HirID per crate
// pass; nodes manufactured by desugaring get a fresh NodeID first and
// are lowered through the same table.
package hir

import (
	"fmt"

	"rill/internal/def"
)

// HirID identifies one HIR node.
type HirID struct {
	Owner def.DefIndex
	Local uint32
}

// NoHirID is the sentinel returned when lowering the AST's "no node"
// sentinel; it never consumes a counter slot.
var NoHirID = HirID{}

func (id HirID) IsValid() bool {
	return id.Owner.IsValid()
}

func (id HirID) String() string {
	if !id.IsValid() {
		return "HirId(invalid)"
	}
	return fmt.Sprintf("HirId(%s.%d)", id.Owner, id.Local)
}

// BodyID names a function or constant body, by the HirID of its value.
type BodyID struct {
	Hir HirID
}

func (b BodyID) IsValid() bool { return b.Hir.IsValid() }

// ItemID, TraitItemID, and ImplItemID key the crate's item maps.
type ItemID struct{ Hir HirID }

type TraitItemID struct{ Hir HirID }

type ImplItemID struct{ Hir HirID }
