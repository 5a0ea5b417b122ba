package ast

import (
	"rill/internal/source"
)

// Crate is the root of one surface tree.
type Crate struct {
	ID    NodeID
	Span  source.Span
	Items []ItemID
}

type Hints struct{ Items, Exprs, Stmts, Pats, Tys uint }

// Builder owns the arenas for one crate and hands out NodeIDs. The
// frontend (or the astpack codec) is the only producer; lowering only
// reads, except for fresh ids minted for desugared nodes.
type Builder struct {
	Crate Crate

	Items         *Arena[ItemID, Item]
	TraitItems    *Arena[TraitItemID, TraitItem]
	ImplItems     *Arena[ImplItemID, ImplItem]
	ForeignItems  *Arena[ForeignItemID, ForeignItem]
	Exprs         *Arena[ExprID, Expr]
	Stmts         *Arena[StmtID, Stmt]
	Blocks        *Arena[BlockID, Block]
	Pats          *Arena[PatID, Pat]
	Tys           *Arena[TyID, Ty]
	GenericParams *Arena[GenericParamID, GenericParam]

	Strings *source.Interner

	nextNode NodeID
}

func NewBuilder(hints Hints) *Builder {
	if hints.Items == 0 {
		hints.Items = 1 << 6
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 7
	}
	if hints.Pats == 0 {
		hints.Pats = 1 << 6
	}
	if hints.Tys == 0 {
		hints.Tys = 1 << 6
	}
	b := &Builder{
		Items:         NewArena[ItemID, Item](hints.Items),
		TraitItems:    NewArena[TraitItemID, TraitItem](hints.Items),
		ImplItems:     NewArena[ImplItemID, ImplItem](hints.Items),
		ForeignItems:  NewArena[ForeignItemID, ForeignItem](hints.Items),
		Exprs:         NewArena[ExprID, Expr](hints.Exprs),
		Stmts:         NewArena[StmtID, Stmt](hints.Stmts),
		Blocks:        NewArena[BlockID, Block](hints.Stmts),
		Pats:          NewArena[PatID, Pat](hints.Pats),
		Tys:           NewArena[TyID, Ty](hints.Tys),
		GenericParams: NewArena[GenericParamID, GenericParam](hints.Tys),
		Strings:       source.NewInterner(),
		nextNode:      0,
	}
	b.Crate.ID = b.NextNodeID()
	return b
}

// NextNodeID mints a fresh crate-wide ast-id. Lowering also calls this
// for nodes manufactured by desugaring.
func (b *Builder) NextNodeID() NodeID {
	b.nextNode++
	return b.nextNode
}

// NodeCount returns the number of ids handed out so far; the lowering
// tables size themselves from it.
func (b *Builder) NodeCount() uint32 {
	return uint32(b.nextNode)
}

func (b *Builder) Name(s string) source.StringID {
	return b.Strings.Intern(s)
}

// AddItem stores the item, assigning its NodeID if unset, and appends
// it to the crate root.
func (b *Builder) AddItem(item Item) ItemID {
	if item.ID == NoNodeID {
		item.ID = b.NextNodeID()
	}
	id := b.Items.Allocate(item)
	b.Crate.Items = append(b.Crate.Items, id)
	return id
}

// AddNestedItem stores an item without attaching it to the crate root.
func (b *Builder) AddNestedItem(item Item) ItemID {
	if item.ID == NoNodeID {
		item.ID = b.NextNodeID()
	}
	return b.Items.Allocate(item)
}

func (b *Builder) AddTraitItem(ti TraitItem) TraitItemID {
	if ti.ID == NoNodeID {
		ti.ID = b.NextNodeID()
	}
	return b.TraitItems.Allocate(ti)
}

func (b *Builder) AddImplItem(ii ImplItem) ImplItemID {
	if ii.ID == NoNodeID {
		ii.ID = b.NextNodeID()
	}
	return b.ImplItems.Allocate(ii)
}

func (b *Builder) AddForeignItem(fi ForeignItem) ForeignItemID {
	if fi.ID == NoNodeID {
		fi.ID = b.NextNodeID()
	}
	return b.ForeignItems.Allocate(fi)
}

func (b *Builder) AddExpr(e Expr) ExprID {
	if e.ID == NoNodeID {
		e.ID = b.NextNodeID()
	}
	return b.Exprs.Allocate(e)
}

func (b *Builder) AddStmt(s Stmt) StmtID {
	if s.ID == NoNodeID {
		s.ID = b.NextNodeID()
	}
	return b.Stmts.Allocate(s)
}

func (b *Builder) AddBlock(bl Block) BlockID {
	if bl.ID == NoNodeID {
		bl.ID = b.NextNodeID()
	}
	return b.Blocks.Allocate(bl)
}

func (b *Builder) AddPat(p Pat) PatID {
	if p.ID == NoNodeID {
		p.ID = b.NextNodeID()
	}
	return b.Pats.Allocate(p)
}

func (b *Builder) AddTy(t Ty) TyID {
	if t.ID == NoNodeID {
		t.ID = b.NextNodeID()
	}
	return b.Tys.Allocate(t)
}

func (b *Builder) AddGenericParam(p GenericParam) GenericParamID {
	if p.ID == NoNodeID {
		p.ID = b.NextNodeID()
	}
	return b.GenericParams.Allocate(p)
}

// PathOf builds a plain path from segment names, minting segment ids.
func (b *Builder) PathOf(span source.Span, names ...string) Path {
	p := Path{Span: span}
	for _, n := range names {
		p.Segments = append(p.Segments, PathSeg{
			ID:   b.NextNodeID(),
			Name: b.Name(n),
		})
	}
	return p
}

// NewLifetime mints a named lifetime reference.
func (b *Builder) NewLifetime(span source.Span, name string) Lifetime {
	kind := LifetimeNamed
	switch name {
	case "'static":
		kind = LifetimeStatic
	case "'_":
		kind = LifetimeUnderscore
	case "":
		kind = LifetimeImplicit
	}
	return Lifetime{
		ID:   b.NextNodeID(),
		Kind: kind,
		Name: b.Name(name),
		Span: span,
	}
}
