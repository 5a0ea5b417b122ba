// Package collect walks a lowered crate once and eagerly triggers the
// item-level queries for every definition: generics, predicates, and
// the kind-specific facts (signatures, ADT layouts, trait data). The
// engine memoizes, so touching a query that something else already
// forced is free. The walk also enforces the signature rules the
// demand-driven engine never checks on its own: placeholder types in
// item signatures, duplicate field names, discriminant overflow, and
// SIMD types crossing an FFI boundary.
//
// Collection runs to completion even in the presence of errors, so one
// pass surfaces every problem in the crate.
package collect

import (
	"fmt"
	"math"
	"strconv"

	"rill/internal/ast"
	"rill/internal/def"
	"rill/internal/diag"
	"rill/internal/hir"
	"rill/internal/resolve"
	"rill/internal/source"
	"rill/internal/ty"
)

type Collector struct {
	crate  *hir.Crate
	defs   *def.Table
	names  *source.Interner
	engine *ty.Engine
	rep    diag.Reporter
}

func New(crate *hir.Crate, defs *def.Table, names *source.Interner, engine *ty.Engine, rep diag.Reporter) *Collector {
	return &Collector{crate: crate, defs: defs, names: names, engine: engine, rep: rep}
}

// Run performs the collection walk over the whole crate.
func (c *Collector) Run() {
	for _, id := range c.crate.SortedItemIDs() {
		c.collectItem(c.crate.Items[id])
	}
	for _, id := range c.crate.SortedTraitItemIDs() {
		c.collectTraitItem(c.crate.TraitItems[id])
	}
	for _, id := range c.crate.SortedImplItemIDs() {
		c.collectImplItem(c.crate.ImplItems[id])
	}
	// Closures are not items but still own generics slots.
	c.defs.Walk(func(d *def.Def) {
		if d.Key.Data.Kind == def.DataClosureExpr {
			c.engine.GenericsOf(d.Index)
		}
	})
}

// collectItem touches the fixed query set for the item's kind.
func (c *Collector) collectItem(it *hir.Item) {
	switch it.Kind {
	case hir.ItemFn:
		c.engine.GenericsOf(it.Def)
		c.engine.PredicatesOf(it.Def)
		c.engine.FnSig(it.Def)
		c.engine.CodegenFnAttrs(it.Def)

	case hir.ItemStruct, hir.ItemUnion:
		c.engine.GenericsOf(it.Def)
		c.engine.PredicatesOf(it.Def)
		c.engine.AdtDef(it.Def)
		c.checkFields(it.Data)

	case hir.ItemEnum:
		c.engine.GenericsOf(it.Def)
		c.engine.PredicatesOf(it.Def)
		c.engine.AdtDef(it.Def)
		for i := range it.Variants {
			c.checkFields(it.Variants[i].Data)
		}
		c.checkDiscriminants(it)

	case hir.ItemTrait, hir.ItemTraitAlias:
		c.engine.GenericsOf(it.Def)
		// PredicatesOf on a trait forces the super-trait closure.
		c.engine.PredicatesOf(it.Def)
		c.engine.TraitDef(it.Def)

	case hir.ItemImpl:
		c.engine.GenericsOf(it.Def)
		c.engine.PredicatesOf(it.Def)
		c.engine.ImplTraitRef(it.Def)
		c.engine.ImplPolarity(it.Def)

	case hir.ItemTyAlias, hir.ItemExistential, hir.ItemConst, hir.ItemStatic:
		c.engine.GenericsOf(it.Def)
		c.engine.PredicatesOf(it.Def)

	case hir.ItemForeignMod:
		c.collectForeign(it)

	case hir.ItemMod, hir.ItemUse:
		// Nothing of their own; nested items are visited by the
		// top-level walk.
	}

	c.touchParamDefaults(it.Def, &it.Generics)
	c.rejectItemPlaceholders(it)
}

func (c *Collector) collectTraitItem(ti *hir.TraitItem) {
	c.engine.GenericsOf(ti.Def)
	c.engine.PredicatesOf(ti.Def)
	if ti.Kind == hir.TraitItemMethod {
		c.engine.FnSig(ti.Def)
		c.engine.CodegenFnAttrs(ti.Def)
	}
	c.touchParamDefaults(ti.Def, &ti.Generics)
	c.rejectTraitItemPlaceholders(ti)
}

func (c *Collector) collectImplItem(ii *hir.ImplItem) {
	c.engine.GenericsOf(ii.Def)
	c.engine.PredicatesOf(ii.Def)
	if ii.Kind == hir.ImplItemMethod {
		c.engine.FnSig(ii.Def)
		c.engine.CodegenFnAttrs(ii.Def)
	}
	c.touchParamDefaults(ii.Def, &ii.Generics)
	c.rejectImplItemPlaceholders(ii)
}

func (c *Collector) collectForeign(it *hir.Item) {
	for i := range it.ForeignItems {
		fi := &it.ForeignItems[i]
		c.engine.GenericsOf(fi.Def)
		c.engine.PredicatesOf(fi.Def)
		if fi.Kind != hir.ForeignItemFn {
			continue
		}
		if c.hasAttr(fi.Attrs, "simd_ffi") {
			continue
		}
		for _, in := range fi.Decl.Inputs {
			c.checkSimdFfi(in)
		}
		c.checkSimdFfi(fi.Decl.Output)
	}
}

// touchParamDefaults gives defaulted generic parameters their own
// predicate entries; a default is a use site that must already know
// the parameter's bounds.
func (c *Collector) touchParamDefaults(owner def.DefIndex, g *hir.Generics) {
	for i := range g.Params {
		p := &g.Params[i]
		if p.Default != nil && p.Def.IsValid() {
			c.engine.TypeParamPredicates(owner, p.Def)
		}
	}
}

func (c *Collector) checkFields(data hir.VariantData) {
	seen := make(map[source.StringID]source.Span, len(data.Fields))
	for _, f := range data.Fields {
		if first, ok := seen[f.Name]; ok {
			c.rep.Report(diag.NewError(diag.ColDuplicateField, f.Span,
				fmt.Sprintf("field `%s` is already declared", c.lookup(f.Name))).
				WithNote(first, "first declaration here"))
			continue
		}
		seen[f.Name] = f.Span
	}
}

// checkDiscriminants walks an enum's variants tracking the running
// discriminant value. An implicit variant after the maximum value has
// nowhere to go; a non-constant written discriminant just resets the
// tracker, the value is someone else's problem.
func (c *Collector) checkDiscriminants(it *hir.Item) {
	var prev uint64
	have := false
	for i := range it.Variants {
		v := &it.Variants[i]
		var cur uint64
		switch {
		case v.Disr != nil:
			n, ok := c.litValue(v.Disr)
			if !ok {
				have = false
				continue
			}
			cur = n
		case i == 0:
			cur = 0
		case !have:
			continue
		default:
			if prev == math.MaxUint64 {
				diag.Error(c.rep, diag.ColDiscriminantOverflow, v.Span,
					fmt.Sprintf("enum discriminant overflowed on variant `%s`", c.lookup(v.Name)))
				have = false
				continue
			}
			cur = prev + 1
		}
		prev, have = cur, true
	}
}

func (c *Collector) litValue(e *hir.Expr) (uint64, bool) {
	lit, ok := e.Data.(hir.LitData)
	if !ok {
		return 0, false
	}
	text, ok := c.names.Lookup(lit.Val)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(text, 0, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// checkSimdFfi reports repr(simd) ADTs used directly in an extern
// declaration. The layout of a vector type is target-dependent, so
// passing one across FFI needs the explicit `#[simd_ffi]` opt-in.
func (c *Collector) checkSimdFfi(t *hir.Ty) {
	if t == nil || t.Kind != hir.TyPath {
		return
	}
	if t.QPath.Kind != hir.QPathResolved || t.QPath.Path == nil {
		return
	}
	res := t.QPath.Path.Res
	if res.Kind != resolve.ResDef {
		return
	}
	switch res.DefKind {
	case resolve.KindStruct, resolve.KindUnion:
	default:
		return
	}
	adt := c.engine.AdtDef(res.Def)
	if adt != nil && adt.ReprSimd {
		diag.Error(c.rep, diag.ColSimdFfi, t.Span,
			"use of SIMD type in a foreign declaration; add `#[simd_ffi]` to opt in")
	}
}

func (c *Collector) hasAttr(attrs []ast.Attr, name string) bool {
	for _, a := range attrs {
		if c.lookup(a.Name) == name {
			return true
		}
	}
	return false
}

func (c *Collector) lookup(s source.StringID) string {
	if str, ok := c.names.Lookup(s); ok {
		return str
	}
	return "<unknown>"
}
