package ty

import (
	"strconv"

	"rill/internal/ast"
	"rill/internal/def"
	"rill/internal/diag"
	"rill/internal/hir"
	"rill/internal/source"
)

// TraitDef resolves the trait-level facts later phases key off.
func (e *Engine) TraitDef(d def.DefIndex) *TraitDef {
	key := cellKey{kind: qTraitDef, def: d}
	v, cycle := e.memo(key, func() any {
		td := &TraitDef{Def: d}
		item := e.items[d]
		if item == nil {
			return td
		}
		td.IsAuto = item.IsAuto
		td.IsAlias = item.Kind == hir.ItemTraitAlias
		_, td.HasAutoImpl = e.crate.TraitAutoImpl[d]
		return td
	})
	if cycle {
		return &TraitDef{Def: d}
	}
	return v.(*TraitDef)
}

// AdtDef resolves a struct/enum/union definition with converted field
// types and repr facts from its attributes.
func (e *Engine) AdtDef(d def.DefIndex) *AdtDef {
	key := cellKey{kind: qAdtDef, def: d}
	v, cycle := e.memo(key, func() any { return e.computeAdtDef(d) })
	if cycle {
		diag.Error(e.rep, diag.TyCyclicQuery, e.spanOf(d),
			"cycle while resolving `"+e.defs.DefPath(d)+"`")
		return &AdtDef{Def: d}
	}
	return v.(*AdtDef)
}

func (e *Engine) computeAdtDef(d def.DefIndex) *AdtDef {
	item := e.items[d]
	adt := &AdtDef{Def: d}
	if item == nil {
		return adt
	}
	switch item.Kind {
	case hir.ItemStruct:
		adt.Kind = AdtStruct
		adt.Variants = []VariantDef{e.variantDef(d, item.Name, item.Data)}
	case hir.ItemUnion:
		adt.Kind = AdtUnion
		adt.Variants = []VariantDef{e.variantDef(d, item.Name, item.Data)}
	case hir.ItemEnum:
		adt.Kind = AdtEnum
		for _, v := range item.Variants {
			adt.Variants = append(adt.Variants, e.variantDef(v.Def, v.Name, v.Data))
		}
	default:
		return adt
	}
	for _, attr := range item.Attrs {
		if e.lookup(attr.Name) != "repr" {
			continue
		}
		for _, arg := range attr.Args {
			switch e.lookup(arg.Name) {
			case "C":
				adt.ReprC = true
			case "simd":
				adt.ReprSimd = true
			}
		}
	}
	return adt
}

func (e *Engine) variantDef(d def.DefIndex, name source.StringID, data hir.VariantData) VariantDef {
	vd := VariantDef{Def: d, Name: name}
	for _, f := range data.Fields {
		vd.Fields = append(vd.Fields, FieldTy{Def: f.Def, Name: f.Name, Ty: e.convTy(f.Ty)})
	}
	return vd
}

// FnSig converts a function's lowered signature; works for free
// functions, trait methods, impl methods, and foreign functions.
func (e *Engine) FnSig(d def.DefIndex) *FnSig {
	key := cellKey{kind: qFnSig, def: d}
	v, cycle := e.memo(key, func() any { return e.computeFnSig(d) })
	if cycle {
		diag.Error(e.rep, diag.TyCyclicQuery, e.spanOf(d),
			"cycle while resolving the signature of `"+e.defs.DefPath(d)+"`")
		return &FnSig{Output: e.in.builtins.Error}
	}
	return v.(*FnSig)
}

func (e *Engine) computeFnSig(d def.DefIndex) *FnSig {
	var sig *hir.FnSig
	switch {
	case e.items[d] != nil && e.items[d].Kind == hir.ItemFn:
		sig = &e.items[d].Sig
	case e.traitItems[d] != nil && e.traitItems[d].Kind == hir.TraitItemMethod:
		sig = &e.traitItems[d].Sig
	case e.implItems[d] != nil && e.implItems[d].Kind == hir.ImplItemMethod:
		sig = &e.implItems[d].Sig
	default:
		return &FnSig{Output: e.in.builtins.Error}
	}
	out := &FnSig{
		Unsafe: sig.Header.Unsafety == ast.Unsafe,
		Abi:    sig.Header.Abi,
		Output: e.in.builtins.Unit,
	}
	for _, in := range sig.Decl.Inputs {
		out.Inputs = append(out.Inputs, e.convTy(in))
	}
	if sig.Decl.Output != nil {
		out.Output = e.convTy(sig.Decl.Output)
	}
	return out
}

// ImplTraitRef resolves the trait an impl implements, or nil for
// inherent impls.
func (e *Engine) ImplTraitRef(d def.DefIndex) *TraitRef {
	key := cellKey{kind: qImplTraitRef, def: d}
	v, cycle := e.memo(key, func() any {
		item := e.items[d]
		if item == nil || item.Kind != hir.ItemImpl || item.TraitRef == nil {
			return (*TraitRef)(nil)
		}
		td := item.TraitRef.TraitDefID()
		if !td.IsValid() {
			return (*TraitRef)(nil)
		}
		selfTy := e.convTy(item.SelfTy)
		return &TraitRef{Def: td, Args: e.in.InternList([]TypeID{selfTy})}
	})
	if cycle {
		return nil
	}
	return v.(*TraitRef)
}

func (e *Engine) ImplPolarity(d def.DefIndex) ImplPolarity {
	key := cellKey{kind: qImplPolarity, def: d}
	v, cycle := e.memo(key, func() any {
		item := e.items[d]
		if item != nil && item.Polarity == ast.ImplNegative {
			return ImplNegative
		}
		return ImplPositive
	})
	if cycle {
		return ImplPositive
	}
	return v.(ImplPolarity)
}

// CodegenFnAttrs collects the codegen-relevant attributes of a
// function def. Malformed arguments produce localized diagnostics and
// a best-effort result; collection never aborts on them.
func (e *Engine) CodegenFnAttrs(d def.DefIndex) *CodegenFnAttrs {
	key := cellKey{kind: qCodegenFnAttrs, def: d}
	v, cycle := e.memo(key, func() any { return e.computeCodegenFnAttrs(d) })
	if cycle {
		return &CodegenFnAttrs{}
	}
	return v.(*CodegenFnAttrs)
}

func (e *Engine) computeCodegenFnAttrs(d def.DefIndex) *CodegenFnAttrs {
	var attrs []ast.Attr
	switch {
	case e.items[d] != nil:
		attrs = e.items[d].Attrs
	case e.traitItems[d] != nil:
		attrs = e.traitItems[d].Attrs
	case e.implItems[d] != nil:
		attrs = e.implItems[d].Attrs
	}

	out := &CodegenFnAttrs{}
	for _, attr := range attrs {
		switch e.lookup(attr.Name) {
		case "inline":
			out.Inline = InlineHintAttr
			for _, arg := range attr.Args {
				switch e.lookup(arg.Name) {
				case "always":
					out.Inline = InlineAlways
				case "never":
					out.Inline = InlineNever
				default:
					diag.Error(e.rep, diag.ColBadAttrArgs, arg.Span,
						"expected one argument: `always` or `never`")
				}
			}
		case "no_mangle":
			out.NoMangle = true
		case "link_name":
			if len(attr.Args) != 1 || attr.Args[0].Value == "" {
				diag.Error(e.rep, diag.ColBadAttrArgs, attr.Span,
					"`link_name` expects one string argument")
				continue
			}
			out.LinkName = attr.Args[0].Value
		case "link_ordinal":
			if len(attr.Args) != 1 {
				diag.Error(e.rep, diag.ColBadAttrArgs, attr.Span,
					"`link_ordinal` expects one integer argument")
				continue
			}
			n, err := strconv.ParseUint(argText(e, attr.Args[0]), 10, 16)
			if err != nil {
				diag.Error(e.rep, diag.ColBadAttrArgs, attr.Args[0].Span,
					"`link_ordinal` argument must fit in an unsigned 16-bit ordinal")
				continue
			}
			out.LinkOrdinal = uint16(n)
			out.HasOrdinal = true
		}
	}
	if out.LinkName != "" && out.HasOrdinal {
		diag.Error(e.rep, diag.ColLinkNameOrdinal, e.spanOf(d),
			"`link_name` and `link_ordinal` cannot be used together")
	}
	return out
}

func argText(e *Engine, arg ast.AttrArg) string {
	if arg.Value != "" {
		return arg.Value
	}
	return e.lookup(arg.Name)
}
