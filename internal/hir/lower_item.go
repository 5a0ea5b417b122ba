package hir

import (
	"rill/internal/ast"
	"rill/internal/source"
)

func (l *Lowerer) lowerItem(item *ast.Item) {
	l.withOwnerScope(item.ID, func() {
		ownHir := l.lowerID(item.ID)
		ownDef, _ := l.defs.OptDefIndex(item.ID)

		prevItem := l.itemOwner
		l.itemOwner = ownDef
		defer func() { l.itemOwner = prevItem }()

		out := &Item{
			ID:    ItemID{Hir: ownHir},
			Def:   ownDef,
			Name:  item.Name,
			Span:  item.Span,
			Attrs: item.Attrs,
		}

		switch item.Kind {
		case ast.ItemFn:
			l.lowerFnItem(item, out)
		case ast.ItemStruct:
			out.Kind = ItemStruct
			out.Generics = l.lowerGenerics(item.Generics)
			out.Data = l.lowerVariantData(&item.Data)
		case ast.ItemUnion:
			out.Kind = ItemUnion
			out.Generics = l.lowerGenerics(item.Generics)
			out.Data = l.lowerVariantData(&item.Data)
		case ast.ItemEnum:
			out.Kind = ItemEnum
			out.Generics = l.lowerGenerics(item.Generics)
			for i := range item.Variants {
				out.Variants = append(out.Variants, l.lowerVariant(&item.Variants[i]))
			}
		case ast.ItemTrait:
			l.lowerTraitItemDef(item, out)
		case ast.ItemTraitAlias:
			out.Kind = ItemTraitAlias
			out.Generics = l.lowerGenerics(item.Generics)
			out.Bounds = l.lowerBounds(item.Bounds)
		case ast.ItemImpl:
			l.lowerImplItemDef(item, out)
		case ast.ItemTyAlias:
			out.Kind = ItemTyAlias
			out.Generics = l.lowerGenerics(item.Generics)
			out.Ty = l.lowerTy(item.Ty)
		case ast.ItemExistential:
			out.Kind = ItemExistential
			out.Origin = ExistWritten
			out.Generics = l.lowerGenerics(item.Generics)
			out.Bounds = l.lowerBounds(item.Bounds)
		case ast.ItemConst:
			out.Kind = ItemConst
			out.Ty = l.lowerTy(item.Ty)
			out.Body = l.lowerExprBody(item.Init, item.Span)
		case ast.ItemStatic:
			out.Kind = ItemStatic
			out.Mutable = item.Mutable
			out.Ty = l.lowerTy(item.Ty)
			out.Body = l.lowerExprBody(item.Init, item.Span)
		case ast.ItemMod:
			out.Kind = ItemMod
			for _, sub := range item.Items {
				if subItem := l.b.Items.Get(sub); subItem != nil {
					out.Items = append(out.Items, ItemID{Hir: l.itemHirID(subItem.ID)})
				}
			}
		case ast.ItemForeignMod:
			out.Kind = ItemForeignMod
			out.Abi = item.Abi
			for _, fiID := range item.ForeignItems {
				if fi := l.b.ForeignItems.Get(fiID); fi != nil {
					out.ForeignItems = append(out.ForeignItems, l.lowerForeignItem(fi))
				}
			}
		case ast.ItemUse:
			out.Kind = ItemUse
			out.UseKind = item.UseKind
			out.UsePath = l.lowerUsePath(item)
		}

		l.crate.Items[out.ID] = out
	})

	// Children of mods/traits/impls are their own owners; lower them
	// after the parent's scope has closed so sibling lowering never
	// writes through the parent's counter.
	switch item.Kind {
	case ast.ItemMod:
		for _, sub := range item.Items {
			if subItem := l.b.Items.Get(sub); subItem != nil {
				l.lowerItem(subItem)
			}
		}
	case ast.ItemTrait:
		for _, tiID := range item.TraitItems {
			if ti := l.b.TraitItems.Get(tiID); ti != nil {
				l.lowerTraitChild(ti)
			}
		}
	case ast.ItemImpl:
		for _, iiID := range item.ImplItems {
			if ii := l.b.ImplItems.Get(iiID); ii != nil {
				l.lowerImplChild(ii)
			}
		}
	}
}

// itemHirID returns the (future or existing) hir id of another item:
// local 0 under its own def.
func (l *Lowerer) itemHirID(node ast.NodeID) HirID {
	d, ok := l.defs.OptDefIndex(node)
	if !ok {
		return NoHirID
	}
	return HirID{Owner: d, Local: 0}
}

func (l *Lowerer) lowerFnItem(item *ast.Item, out *Item) {
	out.Kind = ItemFn
	out.Sig.Header = item.Header

	inBand := l.withInBandCollection(item.ID, l.declaredLifetimes(item.Generics), func() {
		l.withElisionMode(ElisionCreateParameter, func() {
			out.Generics = l.lowerGenerics(item.Generics)
			out.Sig.Decl = l.lowerFnDecl(item.ID, item.Decl)
		})
	})
	out.Generics.Params = append(out.Generics.Params, inBand...)

	out.Body = l.lowerFnBody(item.Decl, item.Body, item.Span)
}

func (l *Lowerer) lowerTraitItemDef(item *ast.Item, out *Item) {
	out.Kind = ItemTrait
	out.IsAuto = item.IsAuto

	inBand := l.withInBandCollection(item.ID, l.declaredLifetimes(item.Generics), func() {
		l.withElisionMode(ElisionCreateParameter, func() {
			out.Generics = l.lowerGenerics(item.Generics)
			out.Bounds = l.lowerBounds(item.Bounds)
		})
	})
	out.Generics.Params = append(out.Generics.Params, inBand...)

	for _, tiID := range item.TraitItems {
		if ti := l.b.TraitItems.Get(tiID); ti != nil {
			out.TraitItems = append(out.TraitItems, TraitItemID{Hir: l.itemHirID(ti.ID)})
		}
	}

	if out.IsAuto {
		l.crate.TraitAutoImpl[out.Def] = out.ID
	}
}

func (l *Lowerer) lowerImplItemDef(item *ast.Item, out *Item) {
	out.Kind = ItemImpl
	out.Polarity = item.Polarity

	inBand := l.withInBandCollection(item.ID, l.declaredLifetimes(item.Generics), func() {
		l.withElisionMode(ElisionCreateParameter, func() {
			out.Generics = l.lowerGenerics(item.Generics)
			if len(item.TraitRef.Segments) > 0 {
				tr := l.lowerTraitRef(item.TraitRef, item.TraitRefID)
				out.TraitRef = &tr
			}
			out.SelfTy = l.lowerTy(item.SelfTy)
		})
	})
	out.Generics.Params = append(out.Generics.Params, inBand...)

	for _, iiID := range item.ImplItems {
		if ii := l.b.ImplItems.Get(iiID); ii != nil {
			out.Impls = append(out.Impls, ImplItemID{Hir: l.itemHirID(ii.ID)})
		}
	}

	if out.TraitRef != nil {
		if td := out.TraitRef.TraitDefID(); td.IsValid() {
			l.crate.TraitImpls[td] = append(l.crate.TraitImpls[td], out.ID)
		}
	}
}

func (l *Lowerer) lowerTraitChild(ti *ast.TraitItem) {
	l.withOwnerScope(ti.ID, func() {
		ownHir := l.lowerID(ti.ID)
		ownDef, _ := l.defs.OptDefIndex(ti.ID)

		prevItem := l.itemOwner
		l.itemOwner = ownDef
		defer func() { l.itemOwner = prevItem }()

		out := &TraitItem{
			ID:    TraitItemID{Hir: ownHir},
			Def:   ownDef,
			Name:  ti.Name,
			Span:  ti.Span,
			Attrs: ti.Attrs,
		}

		switch ti.Kind {
		case ast.TraitItemMethod:
			out.Kind = TraitItemMethod
			out.Sig.Header = ti.Header
			inBand := l.withInBandCollection(ti.ID, l.declaredLifetimes(ti.Generics), func() {
				l.withElisionMode(ElisionCreateParameter, func() {
					out.Generics = l.lowerGenerics(ti.Generics)
					out.Sig.Decl = l.lowerFnDecl(ti.ID, ti.Decl)
				})
			})
			out.Generics.Params = append(out.Generics.Params, inBand...)
			if ti.Body.IsValid() {
				out.HasBody = true
				out.Body = l.lowerFnBody(ti.Decl, ti.Body, ti.Span)
			}
		case ast.TraitItemConst:
			out.Kind = TraitItemConst
			out.Ty = l.lowerTy(ti.Ty)
			if ti.Init.IsValid() {
				out.HasBody = true
				out.Body = l.lowerExprBody(ti.Init, ti.Span)
			}
		case ast.TraitItemType:
			out.Kind = TraitItemType
			out.Generics = l.lowerGenerics(ti.Generics)
			out.Bounds = l.lowerBounds(ti.Bounds)
			if ti.Default.IsValid() {
				out.Default = l.lowerTy(ti.Default)
			}
		}

		l.crate.TraitItems[out.ID] = out
	})
}

func (l *Lowerer) lowerImplChild(ii *ast.ImplItem) {
	l.withOwnerScope(ii.ID, func() {
		ownHir := l.lowerID(ii.ID)
		ownDef, _ := l.defs.OptDefIndex(ii.ID)

		prevItem := l.itemOwner
		l.itemOwner = ownDef
		defer func() { l.itemOwner = prevItem }()

		out := &ImplItem{
			ID:    ImplItemID{Hir: ownHir},
			Def:   ownDef,
			Name:  ii.Name,
			Span:  ii.Span,
			Attrs: ii.Attrs,
		}

		switch ii.Kind {
		case ast.ImplItemMethod:
			out.Kind = ImplItemMethod
			out.Sig.Header = ii.Header
			inBand := l.withInBandCollection(ii.ID, l.declaredLifetimes(ii.Generics), func() {
				l.withElisionMode(ElisionCreateParameter, func() {
					out.Generics = l.lowerGenerics(ii.Generics)
					out.Sig.Decl = l.lowerFnDecl(ii.ID, ii.Decl)
				})
			})
			out.Generics.Params = append(out.Generics.Params, inBand...)
			out.Body = l.lowerFnBody(ii.Decl, ii.Body, ii.Span)
		case ast.ImplItemConst:
			out.Kind = ImplItemConst
			out.Ty = l.lowerTy(ii.Ty)
			out.Body = l.lowerExprBody(ii.Init, ii.Span)
		case ast.ImplItemType:
			out.Kind = ImplItemType
			out.Generics = l.lowerGenerics(ii.Generics)
			out.Ty = l.lowerTy(ii.Ty)
		}

		l.crate.ImplItems[out.ID] = out
	})
}

func (l *Lowerer) lowerForeignItem(fi *ast.ForeignItem) ForeignItem {
	ownDef, _ := l.defs.OptDefIndex(fi.ID)
	out := ForeignItem{
		ID:    l.lowerID(fi.ID),
		Def:   ownDef,
		Name:  fi.Name,
		Span:  fi.Span,
		Attrs: fi.Attrs,
	}
	switch fi.Kind {
	case ast.ForeignItemFn:
		out.Kind = ForeignItemFn
		out.Decl = l.lowerFnDecl(fi.ID, fi.Decl)
	case ast.ForeignItemStatic:
		out.Kind = ForeignItemStatic
		out.Ty = l.lowerTy(fi.Ty)
		out.Mutable = fi.Mutable
	case ast.ForeignItemType:
		out.Kind = ForeignItemType
	}
	return out
}

func (l *Lowerer) lowerVariantData(data *ast.VariantData) VariantData {
	out := VariantData{
		ID:   l.lowerID(data.ID),
		Kind: data.Kind,
	}
	for i := range data.Fields {
		f := &data.Fields[i]
		fd, _ := l.defs.OptDefIndex(f.ID)
		out.Fields = append(out.Fields, FieldDef{
			ID:   l.lowerID(f.ID),
			Def:  fd,
			Name: f.Name,
			Ty:   l.lowerTy(f.Ty),
			Span: f.Span,
		})
	}
	return out
}

func (l *Lowerer) lowerVariant(v *ast.Variant) Variant {
	vd, _ := l.defs.OptDefIndex(v.ID)
	out := Variant{
		ID:   l.lowerID(v.ID),
		Def:  vd,
		Name: v.Name,
		Data: l.lowerVariantData(&v.Data),
		Span: v.Span,
	}
	if v.Disr.IsValid() {
		out.Disr = l.lowerExpr(v.Disr)
	}
	return out
}

// lowerFnDecl lowers a signature with impl-Trait context switched per
// position: universal params in inputs, existential items in output.
func (l *Lowerer) lowerFnDecl(fnNode ast.NodeID, decl ast.FnDecl) FnDecl {
	fnDef, _ := l.defs.OptDefIndex(fnNode)
	out := FnDecl{}
	l.withImplTraitCtx(implTraitUniversal, fnDef, func() {
		for _, in := range decl.Inputs {
			out.Inputs = append(out.Inputs, l.lowerTy(in.Ty))
		}
	})
	if decl.Output.IsValid() {
		l.withImplTraitCtx(implTraitExistential, fnDef, func() {
			out.Output = l.lowerTy(decl.Output)
		})
	}
	return out
}

// lowerFnBody lowers parameters and the body block with fresh scope
// stacks; break/continue/? never escape a body.
func (l *Lowerer) lowerFnBody(decl ast.FnDecl, blockID ast.BlockID, span source.Span) BodyID {
	var body *Body
	l.withNewScopes(false, func() {
		b := &Body{}
		for _, in := range decl.Inputs {
			b.Params = append(b.Params, l.lowerPat(in.Pat))
		}
		b.Value = l.lowerBlockExpr(blockID, span)
		b.IsGenerator = l.isGeneratorBody
		b.ID = BodyID{Hir: b.Value.ID}
		body = b
	})
	l.crate.AddBody(body, span)
	return body.ID
}

// lowerExprBody wraps a bare initializer expression as a body.
func (l *Lowerer) lowerExprBody(exprID ast.ExprID, span source.Span) BodyID {
	var body *Body
	l.withNewScopes(false, func() {
		value := l.lowerExpr(exprID)
		if value == nil {
			value = l.errExpr(span)
		}
		body = &Body{ID: BodyID{Hir: value.ID}, Value: value}
	})
	l.crate.AddBody(body, span)
	return body.ID
}

func (l *Lowerer) lowerUsePath(item *ast.Item) *Path {
	perNS := l.res.GetImportResolutions(item.ID)
	res := resolveFirst(perNS)
	return l.lowerPathWithRes(item.UsePath, res)
}
