package hir

import (
	"fmt"

	"rill/internal/ast"
	"rill/internal/def"
	"rill/internal/diag"
	"rill/internal/resolve"
	"rill/internal/source"
)

// ElisionMode controls what happens to an elided or `'_` lifetime.
type ElisionMode uint8

const (
	// ElisionPassThrough leaves the elision as an implicit marker for
	// the later lifetime-resolution pass.
	ElisionPassThrough ElisionMode = iota
	// ElisionCreateParameter mints a fresh in-band lifetime parameter;
	// active in impl/trait/fn headers.
	ElisionCreateParameter
)

// Options tunes crate-wide lowering behavior from the manifest.
type Options struct {
	// InBandLifetimes lets named lifetimes introduce parameters at
	// first use inside headers.
	InBandLifetimes bool
}

// InternalError is the panic payload for internal invariant
// violations: these indicate a lowering bug, never bad user input.
type InternalError struct {
	Code diag.Code
	Msg  string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal compiler error [%s]: %s", e.Code, e.Msg)
}

type implTraitCtx uint8

const (
	implTraitDisallowed implTraitCtx = iota
	implTraitUniversal
	implTraitExistential
)

// loopScope is one entry of the break/continue target stack.
type loopScope struct {
	id    HirID
	label source.StringID
}

// ownerCounter is the per-owner local-id allocator. It is locked while
// sibling items are being lowered and unlocked only inside the owning
// item's own scope, which stops cross-item id leakage by construction.
type ownerCounter struct {
	node   ast.NodeID
	def    def.DefIndex
	next   uint32
	locked bool
}

// Lowerer carries all mutable lowering state for one crate pass. It is
// created fresh in LowerCrate and never escapes it; every scoped piece
// of state is pushed and popped through the with* combinators.
type Lowerer struct {
	b    *ast.Builder
	res  resolve.Resolver
	defs *def.Table
	rep  diag.Reporter
	opts Options

	crate *Crate

	// hirIDs memoizes NodeID -> HirID; dense, grown on demand because
	// desugaring mints fresh node ids past the parsed range.
	hirIDs []HirID

	owners     map[ast.NodeID]*ownerCounter
	ownerStack []*ownerCounter

	loopScopes        []loopScope
	catchScopes       []HirID
	isInLoopCondition bool
	isGeneratorBody   bool

	elision      ElisionMode
	implTrait    implTraitCtx
	implTraitFn  def.DefIndex

	// inBandDefs accumulates lifetime parameters that need a formal
	// parameter synthesized into the current item's generic list.
	inBandDefs       []GenericParam
	inBandDeclared   map[source.StringID]bool
	collectInBand    bool
	// inBandOwner is the item whose generic list receives collected
	// in-band parameters; hir ids for them are minted against this
	// owner even when a nested owner scope is active.
	inBandOwner ast.NodeID

	// implTraitDefs accumulates universal impl-Trait type parameters
	// for the current function.
	implTraitDefs []GenericParam

	// lifetimeCounts caches, per definition-site node, the number of
	// lifetime generic params; populated by the pre-pass so use sites
	// visited before the definition can elide lifetime arguments.
	lifetimeCounts map[ast.NodeID]int

	// itemOwner is the item whose header/children are being lowered.
	itemOwner def.DefIndex

	freshNameCounter int
}

// LowerCrate transforms the surface crate into HIR. Diagnostics go to
// rep; the returned crate is structurally complete even when errors
// were reported (error sentinels take the place of failed nodes).
func LowerCrate(b *ast.Builder, res resolve.Resolver, rep diag.Reporter, opts Options) *Crate {
	l := &Lowerer{
		b:              b,
		res:            res,
		defs:           res.Definitions(),
		rep:            rep,
		opts:           opts,
		crate:          NewCrate(),
		hirIDs:         make([]HirID, b.NodeCount()+1),
		owners:         make(map[ast.NodeID]*ownerCounter),
		lifetimeCounts: make(map[ast.NodeID]int),
		elision:        ElisionPassThrough,
	}

	l.collectDefs()

	// Pre-pass: allocate every owner counter and cache the lifetime
	// parameter counts of type definitions before any use site is
	// visited.
	l.discoverItems()

	// Main pass: lower each top-level item, headers before children.
	for _, itemID := range b.Crate.Items {
		item := b.Items.Get(itemID)
		if item == nil {
			continue
		}
		l.lowerItem(item)
	}

	return l.crate
}

// ice records an internal-error diagnostic and aborts the pass.
func (l *Lowerer) ice(code diag.Code, span source.Span, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if l.rep != nil {
		l.rep.Report(diag.NewError(code, span, "internal compiler error: "+msg))
	}
	panic(&InternalError{Code: code, Msg: msg})
}

// discoverItems is the id pre-pass: every item, trait item, and impl
// item gets its owner counter before any lowering starts, and type
// definitions get their lifetime param count cached.
func (l *Lowerer) discoverItems() {
	for _, itemID := range l.b.Crate.Items {
		l.discoverItem(itemID)
	}
}

func (l *Lowerer) discoverItem(itemID ast.ItemID) {
	item := l.b.Items.Get(itemID)
	if item == nil {
		return
	}
	l.allocateOwnerCounter(item.ID)

	switch item.Kind {
	case ast.ItemStruct, ast.ItemEnum, ast.ItemUnion, ast.ItemTrait:
		l.lifetimeCounts[item.ID] = l.countLifetimeParams(item.Generics)
	}

	switch item.Kind {
	case ast.ItemTrait:
		for _, tiID := range item.TraitItems {
			if ti := l.b.TraitItems.Get(tiID); ti != nil {
				l.allocateOwnerCounter(ti.ID)
				l.discoverBlock(ti.Body)
				l.discoverExpr(ti.Init)
			}
		}
	case ast.ItemImpl:
		for _, iiID := range item.ImplItems {
			if ii := l.b.ImplItems.Get(iiID); ii != nil {
				l.allocateOwnerCounter(ii.ID)
				l.discoverBlock(ii.Body)
				l.discoverExpr(ii.Init)
			}
		}
	case ast.ItemMod:
		for _, sub := range item.Items {
			l.discoverItem(sub)
		}
	}

	l.discoverBlock(item.Body)
	l.discoverExpr(item.Init)
}

// discoverBlock finds statement-level items nested in bodies; they are
// hir-id owners too.
func (l *Lowerer) discoverBlock(blockID ast.BlockID) {
	block := l.b.Blocks.Get(blockID)
	if block == nil {
		return
	}
	for _, sid := range block.Stmts {
		stmt := l.b.Stmts.Get(sid)
		if stmt == nil {
			continue
		}
		switch stmt.Kind {
		case ast.StmtItem:
			l.discoverItem(stmt.Item)
		case ast.StmtLet:
			l.discoverExpr(stmt.Init)
		case ast.StmtExpr, ast.StmtSemi:
			l.discoverExpr(stmt.Expr)
		}
	}
}

func (l *Lowerer) discoverExpr(exprID ast.ExprID) {
	e := l.b.Exprs.Get(exprID)
	if e == nil {
		return
	}
	for _, sub := range []ast.ExprID{e.Lhs, e.Rhs, e.Else, e.Base, e.Body} {
		l.discoverExpr(sub)
	}
	for _, sub := range e.Args {
		l.discoverExpr(sub)
	}
	for _, sub := range e.Items {
		l.discoverExpr(sub)
	}
	for i := range e.Fields {
		l.discoverExpr(e.Fields[i].Value)
	}
	for i := range e.Arms {
		l.discoverExpr(e.Arms[i].Guard)
		l.discoverExpr(e.Arms[i].Body)
	}
	l.discoverBlock(e.Block)
}

func (l *Lowerer) countLifetimeParams(g ast.Generics) int {
	n := 0
	for _, pid := range g.Params {
		if p := l.b.GenericParams.Get(pid); p != nil && p.Kind == ast.ParamLifetime {
			n++
		}
	}
	return n
}

// freshName mints a name for synthesized parameters.
func (l *Lowerer) freshName(prefix string) source.StringID {
	l.freshNameCounter++
	return l.b.Name(fmt.Sprintf("%s#%d", prefix, l.freshNameCounter))
}
