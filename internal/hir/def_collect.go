package hir

import (
	"rill/internal/ast"
	"rill/internal/def"
	"rill/internal/source"
)

// collectDefs walks the crate creating defs for every
// definition-worthy entity, parents before children, so that every def
// exists before the first hir-id referring to it is minted. Nodes the
// resolver already created defs for are left alone.
func (l *Lowerer) collectDefs() {
	root, ok := l.defs.OptDefIndex(l.b.Crate.ID)
	if !ok {
		if l.defs.Len(def.SpaceLow) == 0 {
			root = l.defs.CreateCrateRoot(l.b.Crate.ID, l.b.Crate.Span)
		} else {
			root = def.CrateRootIndex
		}
	}
	for _, itemID := range l.b.Crate.Items {
		l.collectItemDefs(root, itemID)
	}
}

func itemPathData(item *ast.Item) def.PathDataKind {
	switch item.Kind {
	case ast.ItemFn, ast.ItemConst, ast.ItemStatic:
		return def.DataValueNs
	case ast.ItemImpl:
		return def.DataImpl
	case ast.ItemUse:
		return def.DataMisc
	default:
		return def.DataTypeNs
	}
}

// defFor returns the existing def for node or creates one.
func (l *Lowerer) defFor(parent def.DefIndex, node ast.NodeID, data def.PathData, space def.AddressSpace, span source.Span) def.DefIndex {
	if idx, ok := l.defs.OptDefIndex(node); ok {
		return idx
	}
	return l.defs.CreateDefWithParent(parent, node, data, space, span)
}

func (l *Lowerer) collectItemDefs(parent def.DefIndex, itemID ast.ItemID) {
	item := l.b.Items.Get(itemID)
	if item == nil {
		return
	}
	own := l.defFor(parent, item.ID, def.PathData{Kind: itemPathData(item), Name: item.Name}, def.SpaceLow, item.Span)

	l.collectGenericsDefs(own, item.Generics)

	switch item.Kind {
	case ast.ItemStruct, ast.ItemUnion:
		l.collectVariantDataDefs(own, &item.Data)
	case ast.ItemEnum:
		for i := range item.Variants {
			v := &item.Variants[i]
			vd := l.defFor(own, v.ID, def.PathData{Kind: def.DataEnumVariant, Name: v.Name}, def.SpaceLow, v.Span)
			l.collectVariantDataDefs(vd, &v.Data)
			if v.Disr.IsValid() {
				l.collectExprDefs(vd, v.Disr)
			}
		}
	case ast.ItemTrait:
		for _, tiID := range item.TraitItems {
			ti := l.b.TraitItems.Get(tiID)
			if ti == nil {
				continue
			}
			kind := def.DataTraitItem
			tid := l.defFor(own, ti.ID, def.PathData{Kind: kind, Name: ti.Name}, def.SpaceLow, ti.Span)
			l.collectGenericsDefs(tid, ti.Generics)
			if ti.Body.IsValid() {
				l.collectBlockDefs(tid, ti.Body)
			}
			if ti.Init.IsValid() {
				l.collectExprDefs(tid, ti.Init)
			}
		}
	case ast.ItemImpl:
		for _, iiID := range item.ImplItems {
			ii := l.b.ImplItems.Get(iiID)
			if ii == nil {
				continue
			}
			kind := def.DataValueNs
			if ii.Kind == ast.ImplItemType {
				kind = def.DataTypeNs
			}
			iid := l.defFor(own, ii.ID, def.PathData{Kind: kind, Name: ii.Name}, def.SpaceLow, ii.Span)
			l.collectGenericsDefs(iid, ii.Generics)
			if ii.Body.IsValid() {
				l.collectBlockDefs(iid, ii.Body)
			}
			if ii.Init.IsValid() {
				l.collectExprDefs(iid, ii.Init)
			}
		}
	case ast.ItemForeignMod:
		for _, fiID := range item.ForeignItems {
			fi := l.b.ForeignItems.Get(fiID)
			if fi == nil {
				continue
			}
			kind := def.DataValueNs
			if fi.Kind == ast.ForeignItemType {
				kind = def.DataTypeNs
			}
			l.defFor(own, fi.ID, def.PathData{Kind: kind, Name: fi.Name}, def.SpaceLow, fi.Span)
		}
	case ast.ItemMod:
		for _, sub := range item.Items {
			l.collectItemDefs(own, sub)
		}
	}

	if item.Body.IsValid() {
		l.collectBlockDefs(own, item.Body)
	}
	if item.Init.IsValid() {
		l.collectExprDefs(own, item.Init)
	}
}

func (l *Lowerer) collectVariantDataDefs(parent def.DefIndex, data *ast.VariantData) {
	for i := range data.Fields {
		f := &data.Fields[i]
		l.defFor(parent, f.ID, def.PathData{Kind: def.DataField, Name: f.Name}, def.SpaceLow, f.Span)
	}
}

// collectGenericsDefs creates defs for declared generic parameters in
// the high (type-parameter-like) address space.
func (l *Lowerer) collectGenericsDefs(parent def.DefIndex, g ast.Generics) {
	for _, pid := range g.Params {
		p := l.b.GenericParams.Get(pid)
		if p == nil {
			continue
		}
		kind := def.DataTypeNs
		if p.Kind == ast.ParamLifetime {
			kind = def.DataLifetimeNs
		}
		l.defFor(parent, p.ID, def.PathData{Kind: kind, Name: p.Name}, def.SpaceHigh, p.Span)
	}
}

// collectBlockDefs walks a body block looking for closures and nested
// items, which also need defs.
func (l *Lowerer) collectBlockDefs(parent def.DefIndex, blockID ast.BlockID) {
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
			l.collectItemDefs(parent, stmt.Item)
		case ast.StmtLet:
			if stmt.Init.IsValid() {
				l.collectExprDefs(parent, stmt.Init)
			}
		case ast.StmtExpr, ast.StmtSemi:
			l.collectExprDefs(parent, stmt.Expr)
		}
	}
}

// collectExprDefs recurses through an expression creating closure defs.
func (l *Lowerer) collectExprDefs(parent def.DefIndex, exprID ast.ExprID) {
	e := l.b.Exprs.Get(exprID)
	if e == nil {
		return
	}
	cur := parent
	if e.Kind == ast.ExprClosure {
		cur = l.defFor(parent, e.ID, def.PathData{Kind: def.DataClosureExpr}, def.SpaceLow, e.Span)
	}

	for _, sub := range []ast.ExprID{e.Lhs, e.Rhs, e.Else, e.Base, e.Body} {
		if sub.IsValid() {
			l.collectExprDefs(cur, sub)
		}
	}
	for _, sub := range e.Args {
		l.collectExprDefs(cur, sub)
	}
	for _, sub := range e.Items {
		l.collectExprDefs(cur, sub)
	}
	for i := range e.Fields {
		if e.Fields[i].Value.IsValid() {
			l.collectExprDefs(cur, e.Fields[i].Value)
		}
	}
	for i := range e.Arms {
		if e.Arms[i].Guard.IsValid() {
			l.collectExprDefs(cur, e.Arms[i].Guard)
		}
		l.collectExprDefs(cur, e.Arms[i].Body)
	}
	if e.Block.IsValid() {
		l.collectBlockDefs(cur, e.Block)
	}
}
