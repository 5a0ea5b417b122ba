package hir

import (
	"rill/internal/ast"
	"rill/internal/diag"
	"rill/internal/source"
)

// allocateOwnerCounter initializes the local-id counter for a new
// owner. Must run exactly once per owner, before any hir-id under it
// is requested; a second allocation is a fatal internal error.
func (l *Lowerer) allocateOwnerCounter(owner ast.NodeID) {
	if owner == ast.NoNodeID {
		l.ice(diag.IceOwnerNotAllocated, source.Span{}, "owner counter requested for the no-node sentinel")
	}
	if _, dup := l.owners[owner]; dup {
		l.ice(diag.IceOwnerRealloc, source.Span{}, "owner counter for node %d allocated twice", owner)
	}
	l.owners[owner] = &ownerCounter{node: owner, locked: true}
}

// growIDTable makes room for node; fresh ids extend the table past the
// parsed range.
func (l *Lowerer) growIDTable(node ast.NodeID) {
	for int(node) >= len(l.hirIDs) {
		l.hirIDs = append(l.hirIDs, NoHirID)
	}
}

// lowerID maps an ast-id to its hir-id, idempotently. The sentinel
// lowers to the sentinel without consuming a counter slot.
func (l *Lowerer) lowerID(node ast.NodeID) HirID {
	if node == ast.NoNodeID {
		return NoHirID
	}
	l.growIDTable(node)
	if id := l.hirIDs[node]; id.IsValid() {
		return id
	}
	if len(l.ownerStack) == 0 {
		l.ice(diag.IceOwnerNotAllocated, source.Span{}, "hir-id for node %d requested outside any owner scope", node)
	}
	owner := l.ownerStack[len(l.ownerStack)-1]
	if owner.locked {
		l.ice(diag.IceLockedOwnerWrite, source.Span{}, "hir-id for node %d requested while owner %d is locked", node, owner.node)
	}
	id := HirID{Owner: owner.def, Local: owner.next}
	owner.next++
	l.hirIDs[node] = id
	return id
}

// lowerIDWithOwner is lowerID against an explicitly named owner's
// counter; used when a node's hir-id must belong to an item other than
// the one currently being lowered (lifetime params synthesized into a
// sibling's generic list, forward-declared visibility paths).
func (l *Lowerer) lowerIDWithOwner(node ast.NodeID, owner ast.NodeID) HirID {
	if node == ast.NoNodeID {
		return NoHirID
	}
	l.growIDTable(node)
	if id := l.hirIDs[node]; id.IsValid() {
		return id
	}
	c, ok := l.owners[owner]
	if !ok {
		l.ice(diag.IceOwnerNotAllocated, source.Span{}, "explicit owner %d used before allocation", owner)
	}
	if !c.def.IsValid() {
		ownerDef, found := l.defs.OptDefIndex(owner)
		if !found {
			l.ice(diag.IceMissingDefForOwner, source.Span{}, "explicit owner %d has no def", owner)
		}
		c.def = ownerDef
	}
	id := HirID{Owner: c.def, Local: c.next}
	c.next++
	l.hirIDs[node] = id
	return id
}

// withOwnerScope makes owner the current hir-id owner for the duration
// of body. The previous top stays locked; on exit the counter must
// have only grown and the owner def must round-trip unchanged.
func (l *Lowerer) withOwnerScope(owner ast.NodeID, body func()) {
	c, ok := l.owners[owner]
	if !ok {
		l.ice(diag.IceOwnerNotAllocated, source.Span{}, "owner scope for node %d entered before allocation", owner)
	}
	ownerDef, found := l.defs.OptDefIndex(owner)
	if !found {
		l.ice(diag.IceMissingDefForOwner, source.Span{}, "owner node %d has no def", owner)
	}
	if c.def.IsValid() && c.def != ownerDef {
		l.ice(diag.IceMissingDefForOwner, source.Span{}, "owner node %d def changed: %s -> %s", owner, c.def, ownerDef)
	}
	c.def = ownerDef

	entryNext := c.next
	entryDef := c.def
	wasLocked := c.locked

	l.ownerStack = append(l.ownerStack, c)
	c.locked = false

	depth := len(l.ownerStack)
	defer func() {
		if len(l.ownerStack) != depth {
			l.ice(diag.IceScopeImbalance, source.Span{}, "owner stack imbalance under node %d", owner)
		}
		l.ownerStack = l.ownerStack[:depth-1]
		c.locked = wasLocked
		if c.next < entryNext {
			l.ice(diag.IceOwnerCounterShrank, source.Span{}, "owner %d counter shrank: %d -> %d", owner, entryNext, c.next)
		}
		if c.def != entryDef {
			l.ice(diag.IceMissingDefForOwner, source.Span{}, "owner %d def did not round-trip", owner)
		}
	}()

	body()
}

// nextFreshID allocates a brand-new ast-id and immediately lowers it;
// every desugared node with no surface counterpart goes through here.
func (l *Lowerer) nextFreshID() HirID {
	node := l.b.NextNodeID()
	if node == ast.NoNodeID {
		l.ice(diag.IceFreshIDOverflow, source.Span{}, "fresh node id counter wrapped")
	}
	return l.lowerID(node)
}
