package collect

import (
	"fmt"

	"rill/internal/diag"
	"rill/internal/hir"
	"rill/internal/source"
)

// paramCandidates is the pool of names tried when suggesting a new
// generic parameter for a placeholder type.
var paramCandidates = [...]string{"T", "K", "L", "A", "B", "C"}

// placeholderWalk gathers every `_` type inside signature position.
// Bodies are never walked; inference is legal there.
type placeholderWalk struct {
	spans []source.Span
}

func (w *placeholderWalk) ty(t *hir.Ty) {
	if t == nil {
		return
	}
	switch t.Kind {
	case hir.TyInfer:
		w.spans = append(w.spans, t.Span)
	case hir.TyPath:
		w.qpath(t.QPath)
	case hir.TyRef, hir.TyPtr, hir.TySlice, hir.TyArray:
		w.ty(t.Elem)
	case hir.TyTuple:
		for _, el := range t.Tuple {
			w.ty(el)
		}
	case hir.TyBareFn:
		if t.BareFn != nil {
			for _, in := range t.BareFn.Inputs {
				w.ty(in)
			}
			w.ty(t.BareFn.Output)
		}
	case hir.TyTraitObject:
		for i := range t.Bounds {
			w.path(t.Bounds[i].TraitRef.Path)
		}
	}
}

func (w *placeholderWalk) qpath(q hir.QPath) {
	switch q.Kind {
	case hir.QPathResolved:
		w.path(q.Path)
	case hir.QPathTypeRelative:
		w.ty(q.SelfTy)
		w.args(q.Seg.Args)
	}
}

func (w *placeholderWalk) path(p *hir.Path) {
	if p == nil {
		return
	}
	for i := range p.Segments {
		w.args(p.Segments[i].Args)
	}
}

func (w *placeholderWalk) args(a hir.GenericArgs) {
	for _, t := range a.Types {
		w.ty(t)
	}
	for i := range a.Bindings {
		w.ty(a.Bindings[i].Ty)
	}
}

func (w *placeholderWalk) generics(g *hir.Generics) {
	for i := range g.Params {
		w.ty(g.Params[i].Default)
		w.ty(g.Params[i].ConstTy)
		w.bounds(g.Params[i].Bounds)
	}
	for i := range g.Where {
		wp := &g.Where[i]
		w.ty(wp.BoundedTy)
		w.bounds(wp.Bounds)
		w.ty(wp.LhsTy)
		w.ty(wp.RhsTy)
	}
}

func (w *placeholderWalk) bounds(bs []hir.GenericBound) {
	for i := range bs {
		if bs[i].Kind == hir.BoundTrait {
			w.path(bs[i].Trait.TraitRef.Path)
		}
	}
}

func (w *placeholderWalk) decl(d hir.FnDecl) {
	for _, in := range d.Inputs {
		w.ty(in)
	}
	w.ty(d.Output)
}

// fieldPlaceholders walks the declared field types of a struct-like
// definition (struct, union, or one enum variant).
func (c *Collector) fieldPlaceholders(w *placeholderWalk, data hir.VariantData) {
	for i := range data.Fields {
		w.ty(data.Fields[i].Ty)
	}
}

func (c *Collector) rejectItemPlaceholders(it *hir.Item) {
	var w placeholderWalk
	w.generics(&it.Generics)
	switch it.Kind {
	case hir.ItemFn:
		w.decl(it.Sig.Decl)
	case hir.ItemStruct, hir.ItemUnion:
		c.fieldPlaceholders(&w, it.Data)
	case hir.ItemEnum:
		for i := range it.Variants {
			c.fieldPlaceholders(&w, it.Variants[i].Data)
		}
	case hir.ItemTrait, hir.ItemTraitAlias, hir.ItemExistential:
		w.bounds(it.Bounds)
	case hir.ItemImpl:
		w.ty(it.SelfTy)
		if it.TraitRef != nil {
			w.path(it.TraitRef.Path)
		}
	case hir.ItemTyAlias, hir.ItemConst, hir.ItemStatic:
		w.ty(it.Ty)
	case hir.ItemForeignMod:
		for i := range it.ForeignItems {
			fi := &it.ForeignItems[i]
			w.decl(fi.Decl)
			w.ty(fi.Ty)
		}
	}
	if len(w.spans) == 0 {
		return
	}

	suggest := false
	switch it.Kind {
	case hir.ItemStruct, hir.ItemEnum, hir.ItemUnion,
		hir.ItemTrait, hir.ItemTraitAlias, hir.ItemImpl:
		// Introducing a fresh parameter is syntactically sound here.
		suggest = true
	}
	c.reportPlaceholders(w.spans, &it.Generics, suggest)
}

func (c *Collector) rejectTraitItemPlaceholders(ti *hir.TraitItem) {
	var w placeholderWalk
	w.generics(&ti.Generics)
	switch ti.Kind {
	case hir.TraitItemMethod:
		w.decl(ti.Sig.Decl)
	case hir.TraitItemConst:
		w.ty(ti.Ty)
	case hir.TraitItemType:
		w.bounds(ti.Bounds)
		w.ty(ti.Default)
	}
	if len(w.spans) > 0 {
		c.reportPlaceholders(w.spans, &ti.Generics, false)
	}
}

func (c *Collector) rejectImplItemPlaceholders(ii *hir.ImplItem) {
	var w placeholderWalk
	w.generics(&ii.Generics)
	switch ii.Kind {
	case hir.ImplItemMethod:
		w.decl(ii.Sig.Decl)
	case hir.ImplItemConst, hir.ImplItemType:
		w.ty(ii.Ty)
	}
	if len(w.spans) > 0 {
		c.reportPlaceholders(w.spans, &ii.Generics, false)
	}
}

// reportPlaceholders raises one diagnostic covering every placeholder
// in the item's signature. When a new parameter would be legal, the
// diagnostic carries a patch naming each placeholder with a fresh,
// non-colliding parameter.
func (c *Collector) reportPlaceholders(spans []source.Span, g *hir.Generics, suggest bool) {
	d := diag.NewError(diag.ColPlaceholderType, spans[0],
		"the placeholder `_` is not allowed within types on item signatures")
	for _, sp := range spans[1:] {
		d = d.WithNote(sp, "not allowed in this position either")
	}
	if suggest {
		name := c.freshParamName(g)
		edits := make([]diag.FixEdit, 0, len(spans)+1)
		if ins, ok := paramInsertion(g, name); ok {
			edits = append(edits, ins)
		}
		for _, sp := range spans {
			edits = append(edits, diag.FixEdit{Span: sp, NewText: name})
		}
		d = d.WithFix(fmt.Sprintf("introduce a type parameter `%s` and use it instead", name), edits...)
	}
	c.rep.Report(d)
}

// freshParamName picks the first candidate not already used by the
// item's own parameters, falling back to a name no source identifier
// can collide with.
func (c *Collector) freshParamName(g *hir.Generics) string {
	used := make(map[string]bool, len(g.Params))
	for i := range g.Params {
		used[c.lookup(g.Params[i].Name)] = true
	}
	for _, cand := range paramCandidates {
		if !used[cand] {
			return cand
		}
	}
	return "ParamName"
}

// paramInsertion builds the edit adding the new parameter to the
// written parameter list. Without a written list there is no anchor to
// patch against, so only the use-site replacements are suggested.
func paramInsertion(g *hir.Generics, name string) (diag.FixEdit, bool) {
	if g.Span.Empty() || g.Span.Len() < 2 {
		return diag.FixEdit{}, false
	}
	// Insert just before the closing `>`.
	at := source.Span{File: g.Span.File, Start: g.Span.End - 1, End: g.Span.End - 1}
	text := ", " + name
	if len(g.Params) == 0 {
		text = name
	}
	return diag.FixEdit{Span: at, NewText: text}, true
}
