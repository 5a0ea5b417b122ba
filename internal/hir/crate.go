package hir

import (
	"sort"

	"rill/internal/def"
	"rill/internal/source"
)

// Crate is the lowered tree, keyed by hir-id. Go maps iterate in random
// order, so every consumer-facing traversal goes through the sorted
// accessors; body-id order is span-sorted specifically to keep
// diagnostic output stable.
type Crate struct {
	Items      map[ItemID]*Item
	TraitItems map[TraitItemID]*TraitItem
	ImplItems  map[ImplItemID]*ImplItem
	Bodies     map[BodyID]*Body

	// ClosureBodies maps a closure's def to its lowered body, for
	// passes that only hold the def.
	ClosureBodies map[def.DefIndex]BodyID

	// TraitImpls maps a trait def to the items implementing it.
	TraitImpls map[def.DefIndex][]ItemID
	// TraitAutoImpl maps an auto trait def to its synthetic impl.
	TraitAutoImpl map[def.DefIndex]ItemID

	ExportedMacros []MacroDef

	// bodySpans remembers the span each body was lowered from.
	bodySpans map[BodyID]source.Span
}

func NewCrate() *Crate {
	return &Crate{
		Items:         make(map[ItemID]*Item),
		TraitItems:    make(map[TraitItemID]*TraitItem),
		ImplItems:     make(map[ImplItemID]*ImplItem),
		Bodies:        make(map[BodyID]*Body),
		ClosureBodies: make(map[def.DefIndex]BodyID),
		TraitImpls:    make(map[def.DefIndex][]ItemID),
		TraitAutoImpl: make(map[def.DefIndex]ItemID),
		bodySpans:     make(map[BodyID]source.Span),
	}
}

func (c *Crate) AddBody(b *Body, span source.Span) {
	c.Bodies[b.ID] = b
	c.bodySpans[b.ID] = span
}

func (c *Crate) Body(id BodyID) *Body {
	return c.Bodies[id]
}

func hirIDLess(a, b HirID) bool {
	if a.Owner != b.Owner {
		return a.Owner < b.Owner
	}
	return a.Local < b.Local
}

// SortedItemIDs returns item ids in deterministic (owner, local) order.
func (c *Crate) SortedItemIDs() []ItemID {
	ids := make([]ItemID, 0, len(c.Items))
	for id := range c.Items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return hirIDLess(ids[i].Hir, ids[j].Hir) })
	return ids
}

func (c *Crate) SortedTraitItemIDs() []TraitItemID {
	ids := make([]TraitItemID, 0, len(c.TraitItems))
	for id := range c.TraitItems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return hirIDLess(ids[i].Hir, ids[j].Hir) })
	return ids
}

func (c *Crate) SortedImplItemIDs() []ImplItemID {
	ids := make([]ImplItemID, 0, len(c.ImplItems))
	for id := range c.ImplItems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return hirIDLess(ids[i].Hir, ids[j].Hir) })
	return ids
}

// BodyIDsBySpan returns body ids ordered by source span.
func (c *Crate) BodyIDsBySpan() []BodyID {
	ids := make([]BodyID, 0, len(c.Bodies))
	for id := range c.Bodies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		si, sj := c.bodySpans[ids[i]], c.bodySpans[ids[j]]
		if si != sj {
			return si.Before(sj)
		}
		return hirIDLess(ids[i].Hir, ids[j].Hir)
	})
	return ids
}

// ItemByDef finds the item owned by a def, linearly; callers that need
// this hot should keep their own index.
func (c *Crate) ItemByDef(d def.DefIndex) *Item {
	for _, item := range c.Items {
		if item.Def == d {
			return item
		}
	}
	return nil
}
