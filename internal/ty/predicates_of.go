package ty

import (
	"rill/internal/ast"
	"rill/internal/def"
	"rill/internal/diag"
	"rill/internal/hir"
	"rill/internal/source"
)

// PredicatesOf resolves the full predicate set of a def: super-trait
// bounds first (trait defs only), then the written predicates, then
// inferred outlives, deduplicated preserving first-insertion order.
func (e *Engine) PredicatesOf(d def.DefIndex) *GenericPredicates {
	key := cellKey{kind: qPredicatesOf, def: d}
	v, cycle := e.memo(key, func() any { return e.computePredicatesOf(d) })
	if cycle {
		diag.Error(e.rep, diag.TyCyclicQuery, e.spanOf(d),
			"cycle while resolving predicates of `"+e.defs.DefPath(d)+"`")
		return &GenericPredicates{Err: true}
	}
	return v.(*GenericPredicates)
}

func (e *Engine) computePredicatesOf(d def.DefIndex) *GenericPredicates {
	var out []Predicate
	errSet := false

	if it := e.items[d]; it != nil && (it.Kind == hir.ItemTrait || it.Kind == hir.ItemTraitAlias) {
		super := e.SuperPredicatesOf(d)
		errSet = errSet || super.Err
		out = append(out, super.Predicates...)
	}

	defined := e.PredicatesDefinedOn(d)
	errSet = errSet || defined.Err
	out = append(out, defined.Predicates...)

	return &GenericPredicates{
		Parent:     e.predicateParent(d),
		Predicates: dedupPredicates(out),
		Err:        errSet,
	}
}

// PredicatesDefinedOn is the written predicates plus the inferred
// outlives constraints, appended after, never replacing.
func (e *Engine) PredicatesDefinedOn(d def.DefIndex) *GenericPredicates {
	key := cellKey{kind: qPredicatesDefinedOn, def: d}
	v, cycle := e.memo(key, func() any {
		explicit := e.ExplicitPredicatesOf(d)
		out := append([]Predicate(nil), explicit.Predicates...)
		out = append(out, e.inferredOutlives(d)...)
		return &GenericPredicates{
			Parent:     explicit.Parent,
			Predicates: dedupPredicates(out),
			Err:        explicit.Err,
		}
	})
	if cycle {
		diag.Error(e.rep, diag.TyCyclicQuery, e.spanOf(d),
			"cycle while resolving predicates of `"+e.defs.DefPath(d)+"`")
		return &GenericPredicates{Err: true}
	}
	return v.(*GenericPredicates)
}

// ExplicitPredicatesOf collects exactly what the source wrote: bounds
// on the item's own generic params, the where clause, and bounds on a
// trait's associated types attached to their projection application.
func (e *Engine) ExplicitPredicatesOf(d def.DefIndex) *GenericPredicates {
	key := cellKey{kind: qExplicitPredicatesOf, def: d}
	v, cycle := e.memo(key, func() any { return e.computeExplicitPredicates(d) })
	if cycle {
		diag.Error(e.rep, diag.TyCyclicQuery, e.spanOf(d),
			"cycle while resolving predicates of `"+e.defs.DefPath(d)+"`")
		return &GenericPredicates{Err: true}
	}
	return v.(*GenericPredicates)
}

func (e *Engine) computeExplicitPredicates(d def.DefIndex) *GenericPredicates {
	var hg *hir.Generics
	var item *hir.Item
	switch {
	case e.items[d] != nil:
		item = e.items[d]
		hg = &item.Generics
	case e.traitItems[d] != nil:
		hg = &e.traitItems[d].Generics
	case e.implItems[d] != nil:
		hg = &e.implItems[d].Generics
	default:
		return &GenericPredicates{Parent: e.predicateParent(d)}
	}

	var out []Predicate
	for _, p := range hg.Params {
		switch p.Kind {
		case hir.ParamType:
			out = append(out, e.boundsToPredicates(e.paramTy(p), p.Bounds, nil)...)
		case hir.ParamLifetime:
			sub := Region{Kind: RegEarlyBound, Name: p.Name}
			for _, b := range p.Bounds {
				if b.Kind == hir.BoundOutlives {
					out = append(out, Predicate{
						Kind: PredRegionOutlives,
						Sub:  sub,
						Sup:  e.convRegion(b.Outlives),
					})
				}
			}
		}
	}

	for _, wp := range hg.Where {
		out = append(out, e.wherePredicate(wp)...)
	}

	if item != nil && (item.Kind == hir.ItemTrait || item.Kind == hir.ItemTraitAlias) {
		out = append(out, e.assocTypePredicates(item)...)
	}

	return &GenericPredicates{
		Parent:     e.predicateParent(d),
		Predicates: dedupPredicates(out),
	}
}

// SuperPredicatesOf resolves a trait's super-trait bounds. Every
// directly named super-trait has its own super-predicates resolved
// first; a trait that reaches itself this way is a cycle, reported
// once at the point of re-entry and propagated as the error sentinel.
func (e *Engine) SuperPredicatesOf(d def.DefIndex) *GenericPredicates {
	key := cellKey{kind: qSuperPredicatesOf, def: d}
	v, cycle := e.memo(key, func() any { return e.computeSuperPredicates(d) })
	if cycle {
		diag.Error(e.rep, diag.TyCyclicSuperTrait, e.spanOf(d),
			"cyclic super-trait reference involving `"+e.defs.DefPath(d)+"`")
		return &GenericPredicates{Err: true}
	}
	return v.(*GenericPredicates)
}

func (e *Engine) computeSuperPredicates(d def.DefIndex) *GenericPredicates {
	item := e.items[d]
	if item == nil || (item.Kind != hir.ItemTrait && item.Kind != hir.ItemTraitAlias) {
		return &GenericPredicates{}
	}
	out := e.boundsToPredicates(e.selfParamTy(), item.Bounds, nil)

	// Validate acyclicity through every directly named super-trait.
	errSet := false
	for _, p := range out {
		if p.Kind != PredTrait || !p.Trait.Def.IsValid() {
			continue
		}
		if _, isTrait := e.items[p.Trait.Def]; !isTrait {
			continue
		}
		if p.Trait.Def == d {
			diag.Error(e.rep, diag.TyCyclicSuperTrait, e.spanOf(d),
				"trait `"+e.defs.DefPath(d)+"` has itself as a super-trait")
			errSet = true
			continue
		}
		if sp := e.SuperPredicatesOf(p.Trait.Def); sp.Err {
			errSet = true
		}
	}
	return &GenericPredicates{Predicates: dedupPredicates(out), Err: errSet}
}

// TypeParamPredicates filters an item's predicates down to those that
// constrain one type parameter, walking to the syntactic parent so
// bounds declared on an enclosing trait or impl are included.
func (e *Engine) TypeParamPredicates(item, param def.DefIndex) *GenericPredicates {
	key := cellKey{kind: qTypeParamPredicates, def: item, aux: param}
	v, cycle := e.memo(key, func() any { return e.computeTypeParamPredicates(item, param) })
	if cycle {
		diag.Error(e.rep, diag.TyCyclicQuery, e.spanOf(item),
			"cycle while resolving bounds of a type parameter of `"+e.defs.DefPath(item)+"`")
		return &GenericPredicates{Err: true}
	}
	return v.(*GenericPredicates)
}

func (e *Engine) computeTypeParamPredicates(item, param def.DefIndex) *GenericPredicates {
	subject := e.in.Intern(Type{Kind: KindParam, Def: param, Name: e.paramName(item, param)})

	explicit := e.ExplicitPredicatesOf(item)
	var out []Predicate
	for _, p := range explicit.Predicates {
		if e.predicateSubject(p) == subject {
			out = append(out, p)
		}
	}
	errSet := explicit.Err

	if parent := e.predicateParent(item); parent.IsValid() {
		inherited := e.TypeParamPredicates(parent, param)
		out = append(out, inherited.Predicates...)
		errSet = errSet || inherited.Err
	}
	return &GenericPredicates{Predicates: dedupPredicates(out), Err: errSet}
}

// predicateSubject is the type a predicate constrains, when it has one.
func (e *Engine) predicateSubject(p Predicate) TypeID {
	switch p.Kind {
	case PredTrait:
		args := e.in.List(p.Trait.Args)
		if len(args) > 0 {
			return args[0]
		}
	case PredTypeOutlives:
		return p.Ty
	}
	return NoTypeID
}

func (e *Engine) paramName(item, param def.DefIndex) source.StringID {
	g := e.GenericsOf(item)
	if pd, ok := g.ParamByDef(param); ok {
		return pd.Name
	}
	if row := e.defs.Get(param); row != nil {
		return row.Key.Data.Name
	}
	return source.NoStringID
}

// boundsToPredicates converts a lowered bound list against a subject
// type. `?Trait` bounds remove a default obligation rather than adding
// one and produce nothing here. lateNames, when non-nil, marks
// lifetime names that are bound under the subject's own binder (GAT
// lifetimes) and therefore lower to late-bound regions.
func (e *Engine) boundsToPredicates(subject TypeID, bounds []hir.GenericBound, lateNames map[source.StringID]bool) []Predicate {
	var out []Predicate
	for _, b := range bounds {
		switch b.Kind {
		case hir.BoundTrait:
			if b.Modifier == ast.BoundModMaybe {
				continue
			}
			td := b.Trait.TraitRef.TraitDefID()
			out = append(out, Predicate{
				Kind:  PredTrait,
				Trait: TraitRef{Def: td, Args: e.in.InternList([]TypeID{subject})},
			})
		case hir.BoundOutlives:
			r := e.convRegion(b.Outlives)
			if lateNames != nil && r.Kind == RegEarlyBound && lateNames[r.Name] {
				r.Kind = RegLateBound
			}
			out = append(out, Predicate{Kind: PredTypeOutlives, Ty: subject, Sup: r})
		}
	}
	return out
}

func (e *Engine) wherePredicate(wp hir.WherePredicate) []Predicate {
	switch wp.Kind {
	case hir.WhereBound:
		return e.boundsToPredicates(e.convTy(wp.BoundedTy), wp.Bounds, nil)
	case hir.WhereRegion:
		sub := e.convRegion(wp.Lifetime)
		var out []Predicate
		for _, r := range wp.RegionBounds {
			out = append(out, Predicate{Kind: PredRegionOutlives, Sub: sub, Sup: e.convRegion(r)})
		}
		return out
	case hir.WhereEq:
		return []Predicate{{
			Kind:  PredProjection,
			Ty:    e.convTy(wp.LhsTy),
			RhsTy: e.convTy(wp.RhsTy),
		}}
	}
	return nil
}

// assocTypePredicates attaches the bounds written on a trait's
// associated types to their projection application with the trait's
// Self substituted in. Generic associated types re-bind only their
// lifetime parameters under the projection's binder; type and const
// GAT parameters are out of scope and rejected.
func (e *Engine) assocTypePredicates(trait *hir.Item) []Predicate {
	var out []Predicate
	for _, tid := range trait.TraitItems {
		ti := e.crate.TraitItems[tid]
		if ti == nil || ti.Kind != hir.TraitItemType || len(ti.Bounds) == 0 {
			continue
		}

		var late map[source.StringID]bool
		for _, p := range ti.Generics.Params {
			if p.Kind == hir.ParamLifetime {
				if late == nil {
					late = make(map[source.StringID]bool)
				}
				late[p.Name] = true
				continue
			}
			diag.Error(e.rep, diag.TyGatArgsUnsupported, p.Span,
				"generic associated types support only lifetime parameters here")
		}

		proj := e.in.Intern(Type{
			Kind: KindProjection,
			Def:  ti.Def,
			Name: ti.Name,
			Args: e.in.InternList([]TypeID{e.selfParamTy()}),
		})
		out = append(out, e.boundsToPredicates(proj, ti.Bounds, late)...)
	}
	return out
}

// inferredOutlives derives `T: 'a` constraints from ADT field types of
// the shape `&'a T`; they append after the written predicates.
func (e *Engine) inferredOutlives(d def.DefIndex) []Predicate {
	item := e.items[d]
	if item == nil {
		return nil
	}
	var fields []hir.FieldDef
	switch item.Kind {
	case hir.ItemStruct, hir.ItemUnion:
		fields = item.Data.Fields
	case hir.ItemEnum:
		for _, v := range item.Variants {
			fields = append(fields, v.Data.Fields...)
		}
	default:
		return nil
	}

	var out []Predicate
	for _, f := range fields {
		t := f.Ty
		if t == nil || t.Kind != hir.TyRef || t.Lifetime.Name != hir.LtParam {
			continue
		}
		elem := t.Elem
		if elem == nil || elem.Kind != hir.TyPath {
			continue
		}
		inner := e.convTy(elem)
		if e.in.MustLookup(inner).Kind != KindParam {
			continue
		}
		out = append(out, Predicate{
			Kind: PredTypeOutlives,
			Ty:   inner,
			Sup:  Region{Kind: RegEarlyBound, Name: t.Lifetime.Ident},
		})
	}
	return out
}

// predicateParent links nested defs to the item whose predicates
// extend theirs.
func (e *Engine) predicateParent(d def.DefIndex) def.DefIndex {
	if e.traitItems[d] != nil || e.implItems[d] != nil {
		return e.defs.Parent(d)
	}
	if row := e.defs.Get(d); row != nil && row.Key.Data.Kind == def.DataClosureExpr {
		return e.enclosingItem(e.defs.Parent(d))
	}
	return def.NoDefIndex
}

// dedupPredicates removes duplicates preserving first-insertion order;
// downstream ambiguity messages depend on the order surviving.
func dedupPredicates(ps []Predicate) []Predicate {
	if len(ps) < 2 {
		return ps
	}
	seen := make(map[Predicate]bool, len(ps))
	out := ps[:0]
	for _, p := range ps {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
