package hir

import (
	"rill/internal/ast"
	"rill/internal/def"
	"rill/internal/diag"
	"rill/internal/resolve"
	"rill/internal/source"
)

func resolveFirst(ns resolve.PerNS) resolve.Resolution {
	if ns.Type != nil {
		return *ns.Type
	}
	if ns.Value != nil {
		return *ns.Value
	}
	return resolve.ErrResolution()
}

// declaredLifetimes collects the lifetime names an item's generic list
// declares explicitly; names outside this set are in-band candidates.
func (l *Lowerer) declaredLifetimes(g ast.Generics) map[source.StringID]bool {
	m := make(map[source.StringID]bool)
	for _, pid := range g.Params {
		if p := l.b.GenericParams.Get(pid); p != nil && p.Kind == ast.ParamLifetime {
			m[p.Name] = true
		}
	}
	return m
}

// withInBandCollection runs body with in-band lifetime collection
// targeted at owner, and returns the parameters to append to owner's
// generic list: collected lifetimes first, then universal impl-Trait
// type parameters.
func (l *Lowerer) withInBandCollection(owner ast.NodeID, declared map[source.StringID]bool, body func()) []GenericParam {
	savedDefs := l.inBandDefs
	savedDeclared := l.inBandDeclared
	savedCollect := l.collectInBand
	savedOwner := l.inBandOwner
	savedImpl := l.implTraitDefs

	l.inBandDefs = nil
	l.inBandDeclared = declared
	l.collectInBand = true
	l.inBandOwner = owner
	l.implTraitDefs = nil

	body()

	out := append(l.inBandDefs, l.implTraitDefs...)

	l.inBandDefs = savedDefs
	l.inBandDeclared = savedDeclared
	l.collectInBand = savedCollect
	l.inBandOwner = savedOwner
	l.implTraitDefs = savedImpl
	return out
}

// inBandLifetimeParam mints (or reuses) an in-band lifetime parameter
// on the collection owner. The parameter's hir id belongs to the owner
// item even when a nested owner scope is active.
func (l *Lowerer) inBandLifetimeParam(ident source.StringID, span source.Span) {
	for i := range l.inBandDefs {
		if l.inBandDefs[i].Name == ident {
			return
		}
	}
	parent, ok := l.defs.OptDefIndex(l.inBandOwner)
	if !ok {
		l.ice(diag.IceMissingDefForOwner, span, "in-band collection owner node %d has no def", l.inBandOwner)
	}
	node := l.b.NextNodeID()
	d := l.defs.CreateDefWithParent(parent, node, def.PathData{
		Kind: def.DataLifetimeNs,
		Name: ident,
	}, def.SpaceHigh, span)
	id := l.lowerIDWithOwner(node, l.inBandOwner)
	l.inBandDefs = append(l.inBandDefs, GenericParam{
		ID:     id,
		Def:    d,
		Name:   ident,
		Span:   span,
		Kind:   ParamLifetime,
		InBand: true,
	})
	l.inBandDeclared[ident] = true
}

// freshElidedLifetime services an elided position in CreateParameter
// mode: a brand-new anonymous parameter joins the owner's generics and
// the use site names it.
func (l *Lowerer) freshElidedLifetime(span source.Span) source.StringID {
	ident := l.freshName("'")
	parent, ok := l.defs.OptDefIndex(l.inBandOwner)
	if !ok {
		l.ice(diag.IceMissingDefForOwner, span, "in-band collection owner node %d has no def", l.inBandOwner)
	}
	node := l.b.NextNodeID()
	d := l.defs.CreateDefWithParent(parent, node, def.PathData{
		Kind: def.DataLifetimeNs,
		Name: ident,
	}, def.SpaceHigh, span)
	id := l.lowerIDWithOwner(node, l.inBandOwner)
	l.inBandDefs = append(l.inBandDefs, GenericParam{
		ID:        id,
		Def:       d,
		Name:      ident,
		Span:      span,
		Kind:      ParamLifetime,
		InBand:    true,
		Synthetic: true,
	})
	return ident
}

func (l *Lowerer) lowerLifetime(lt ast.Lifetime) Lifetime {
	var id HirID
	if lt.ID == ast.NoNodeID {
		id = l.nextFreshID()
	} else {
		id = l.lowerID(lt.ID)
	}

	switch lt.Kind {
	case ast.LifetimeStatic:
		return Lifetime{ID: id, Span: lt.Span, Name: LtStatic}
	case ast.LifetimeNamed:
		if l.collectInBand && l.opts.InBandLifetimes && !l.inBandDeclared[lt.Name] {
			l.inBandLifetimeParam(lt.Name, lt.Span)
		}
		return Lifetime{ID: id, Span: lt.Span, Name: LtParam, Ident: lt.Name}
	case ast.LifetimeImplicit, ast.LifetimeUnderscore:
		return l.elidedLifetime(id, lt.Kind, lt.Span)
	}
	return Lifetime{ID: id, Span: lt.Span, Name: LtError}
}

// elidedLifetime resolves an elision per the ambient mode: a fresh
// parameter in headers, an implicit marker everywhere else.
func (l *Lowerer) elidedLifetime(id HirID, kind ast.LifetimeKind, span source.Span) Lifetime {
	if l.elision == ElisionCreateParameter && l.collectInBand {
		ident := l.freshElidedLifetime(span)
		return Lifetime{ID: id, Span: span, Name: LtParam, Ident: ident}
	}
	if kind == ast.LifetimeUnderscore {
		return Lifetime{ID: id, Span: span, Name: LtUnderscore}
	}
	return Lifetime{ID: id, Span: span, Name: LtImplicit}
}

func (l *Lowerer) lowerGenerics(g ast.Generics) Generics {
	out := Generics{Span: g.Span}
	for _, pid := range g.Params {
		if p := l.b.GenericParams.Get(pid); p != nil {
			out.Params = append(out.Params, l.lowerGenericParam(p))
		}
	}
	for i := range g.Where {
		out.Where = append(out.Where, l.lowerWherePredicate(&g.Where[i]))
	}
	return out
}

func (l *Lowerer) lowerGenericParam(p *ast.GenericParam) GenericParam {
	d, _ := l.defs.OptDefIndex(p.ID)
	out := GenericParam{
		ID:   l.lowerID(p.ID),
		Def:  d,
		Name: p.Name,
		Span: p.Span,
	}
	switch p.Kind {
	case ast.ParamLifetime:
		out.Kind = ParamLifetime
		out.Bounds = l.lowerBounds(p.Bounds)
	case ast.ParamType:
		out.Kind = ParamType
		// `?Trait` is legal only here, directly on a type parameter.
		out.Bounds = l.lowerBoundList(p.Bounds, true)
		if p.Default.IsValid() {
			out.Default = l.lowerTy(p.Default)
		}
	case ast.ParamConst:
		out.Kind = ParamConst
		out.ConstTy = l.lowerTy(p.ConstTy)
	}
	return out
}

// lowerBinderParams lowers `for<'a>` binder lifetimes.
func (l *Lowerer) lowerBinderParams(pids []ast.GenericParamID) []GenericParam {
	var out []GenericParam
	for _, pid := range pids {
		if p := l.b.GenericParams.Get(pid); p != nil {
			out = append(out, l.lowerGenericParam(p))
		}
	}
	return out
}

func (l *Lowerer) lowerBounds(bounds []ast.GenericBound) []GenericBound {
	return l.lowerBoundList(bounds, false)
}

func (l *Lowerer) lowerBoundList(bounds []ast.GenericBound, allowMaybe bool) []GenericBound {
	var out []GenericBound
	for i := range bounds {
		out = append(out, l.lowerBound(&bounds[i], allowMaybe))
	}
	return out
}

func (l *Lowerer) lowerBound(b *ast.GenericBound, allowMaybe bool) GenericBound {
	out := GenericBound{Modifier: b.Modifier, Span: b.Span}
	if b.Modifier == ast.BoundModMaybe && !allowMaybe {
		diag.Error(l.rep, diag.LowMaybeBoundMisplaced, b.Span,
			"`?Trait` bounds are only permitted directly on a type parameter")
	}
	switch b.Kind {
	case ast.BoundTrait:
		out.Kind = BoundTrait
		out.Trait = l.lowerPolyTraitRef(b)
	case ast.BoundOutlives:
		out.Kind = BoundOutlives
		out.Outlives = l.lowerLifetime(b.Lifetime)
	}
	return out
}

// lowerPolyTraitRef lowers a possibly-bindered trait bound. Names the
// binder introduces shadow in-band collection for the subtree.
func (l *Lowerer) lowerPolyTraitRef(b *ast.GenericBound) PolyTraitRef {
	params := l.lowerBinderParams(b.BinderLifetimes)

	var shadowed []source.StringID
	if l.inBandDeclared != nil {
		for i := range params {
			if !l.inBandDeclared[params[i].Name] {
				l.inBandDeclared[params[i].Name] = true
				shadowed = append(shadowed, params[i].Name)
			}
		}
	}

	tr := l.lowerTraitRef(b.TraitRef, b.TraitRefID)

	for _, name := range shadowed {
		delete(l.inBandDeclared, name)
	}

	return PolyTraitRef{BoundParams: params, TraitRef: tr, Span: b.Span}
}

func (l *Lowerer) lowerTraitRef(path ast.Path, node ast.NodeID) TraitRef {
	return TraitRef{
		Path:  l.lowerPath(node, path),
		HirID: l.lowerID(node),
	}
}

func (l *Lowerer) lowerWherePredicate(wp *ast.WherePredicate) WherePredicate {
	out := WherePredicate{Span: wp.Span}
	switch wp.Kind {
	case ast.WhereBound:
		out.Kind = WhereBound
		out.BoundParams = l.lowerBinderParams(wp.BinderLifetimes)
		out.BoundedTy = l.lowerTy(wp.BoundedTy)
		out.Bounds = l.lowerBounds(wp.Bounds)
	case ast.WhereRegion:
		out.Kind = WhereRegion
		out.Lifetime = l.lowerLifetime(wp.Lifetime)
		for _, rb := range wp.RegionBounds {
			out.RegionBounds = append(out.RegionBounds, l.lowerLifetime(rb))
		}
	case ast.WhereEq:
		out.Kind = WhereEq
		out.LhsTy = l.lowerTy(wp.LhsTy)
		out.RhsTy = l.lowerTy(wp.RhsTy)
	}
	return out
}

// parenPolicy grades `Fn(A) -> B` sugar on one path segment: fine on
// Fn-family traits, a lint on method segments, an error anywhere else.
type parenPolicy uint8

const (
	parenOk parenPolicy = iota
	parenWarn
	parenErr
)

func parenPolicyFor(res resolve.Resolution, isResolvedSeg bool) parenPolicy {
	if !isResolvedSeg {
		return parenErr
	}
	if res.Kind != resolve.ResDef {
		return parenErr
	}
	switch res.DefKind {
	case resolve.KindTrait, resolve.KindTraitAlias:
		return parenOk
	case resolve.KindMethod, resolve.KindFn:
		return parenWarn
	}
	return parenErr
}

func (l *Lowerer) lowerPath(node ast.NodeID, path ast.Path) *Path {
	res, ok := l.res.GetResolution(node)
	if !ok {
		diag.Error(l.rep, diag.LowUnresolvedPath, path.Span, "unresolved path")
		res = resolve.ErrResolution()
	}
	return l.lowerPathWithRes(path, res)
}

func (l *Lowerer) lowerPathWithRes(path ast.Path, res resolve.Resolution) *Path {
	out := &Path{Span: path.Span, Res: res}

	resolvedSeg := len(path.Segments) - 1 - res.UnresolvedSegments
	if resolvedSeg < 0 || res.Kind != resolve.ResDef {
		resolvedSeg = len(path.Segments) - 1
	}

	for i := range path.Segments {
		seg := &path.Segments[i]
		isResolved := i == resolvedSeg
		if seg.Args.Parenthesized {
			switch parenPolicyFor(res, isResolved) {
			case parenWarn:
				diag.Warning(l.rep, diag.LowParenGenericArgs, path.Span,
					"parenthesized type parameters are only allowed on Fn-family traits")
			case parenErr:
				diag.Error(l.rep, diag.LowParenGenericArgs, path.Span,
					"parenthesized type parameters may only be used with a trait")
			}
		}
		out.Segments = append(out.Segments, l.lowerPathSeg(seg, path.Span, isResolved, res))
	}
	return out
}

func (l *Lowerer) lowerPathSeg(seg *ast.PathSeg, span source.Span, isResolved bool, res resolve.Resolution) PathSeg {
	out := PathSeg{
		Name:       seg.Name,
		Args:       l.lowerGenericArgs(seg.Args),
		InferTypes: seg.Args.IsEmpty(),
	}

	// A type definition used without lifetime arguments gets an elided
	// slot per declared lifetime param, filled from the pre-pass cache.
	if isResolved && !seg.Args.Parenthesized && len(out.Args.Lifetimes) == 0 &&
		res.Kind == resolve.ResDef {
		switch res.DefKind {
		case resolve.KindStruct, resolve.KindEnum, resolve.KindUnion, resolve.KindTrait:
			n := l.lifetimeCounts[l.defs.NodeOf(res.Def)]
			for j := 0; j < n; j++ {
				lt := l.elidedLifetime(l.nextFreshID(), ast.LifetimeImplicit, span)
				out.Args.Lifetimes = append(out.Args.Lifetimes, lt)
			}
		}
	}
	return out
}

func (l *Lowerer) lowerGenericArgs(a ast.GenericArgs) GenericArgs {
	out := GenericArgs{Parenthesized: a.Parenthesized}
	if a.Parenthesized {
		// Fn(A, B) -> C sugar: the inputs collapse into one tuple
		// argument and the return type becomes an Output binding.
		l.withElisionMode(ElisionPassThrough, func() {
			var elems []*Ty
			var span source.Span
			for _, tid := range a.Types {
				t := l.lowerTy(tid)
				if len(elems) == 0 {
					span = t.Span
				} else {
					span = span.Cover(t.Span)
				}
				elems = append(elems, t)
			}
			out.Types = []*Ty{{ID: l.nextFreshID(), Kind: TyTuple, Tuple: elems, Span: span}}
			for i := range a.Bindings {
				out.Bindings = append(out.Bindings, l.lowerTypeBinding(&a.Bindings[i]))
			}
		})
		return out
	}
	for _, lt := range a.Lifetimes {
		out.Lifetimes = append(out.Lifetimes, l.lowerLifetime(lt))
	}
	for _, tid := range a.Types {
		out.Types = append(out.Types, l.lowerTy(tid))
	}
	for i := range a.Bindings {
		out.Bindings = append(out.Bindings, l.lowerTypeBinding(&a.Bindings[i]))
	}
	return out
}

func (l *Lowerer) lowerTypeBinding(b *ast.TypeBinding) TypeBinding {
	return TypeBinding{
		ID:   l.lowerID(b.ID),
		Name: b.Name,
		Ty:   l.lowerTy(b.Ty),
		Span: b.Span,
	}
}

func (l *Lowerer) lowerTy(tid ast.TyID) *Ty {
	ty := l.b.Tys.Get(tid)
	if ty == nil {
		return nil
	}
	out := &Ty{ID: l.lowerID(ty.ID), Span: ty.Span}

	switch ty.Kind {
	case ast.TyPath:
		out.Kind = TyPath
		out.QPath = QPath{Kind: QPathResolved, Path: l.lowerPath(ty.ID, ty.Path)}
	case ast.TyRef:
		out.Kind = TyRef
		out.Lifetime = l.lowerLifetime(ty.Lifetime)
		out.Mutable = ty.Mutable
		out.Elem = l.lowerTy(ty.Elem)
	case ast.TyPtr:
		out.Kind = TyPtr
		out.Mutable = ty.Mutable
		out.Elem = l.lowerTy(ty.Elem)
	case ast.TyTuple:
		out.Kind = TyTuple
		for _, el := range ty.Tuple {
			out.Tuple = append(out.Tuple, l.lowerTy(el))
		}
	case ast.TySlice:
		out.Kind = TySlice
		out.Elem = l.lowerTy(ty.Elem)
	case ast.TyArray:
		out.Kind = TyArray
		out.Elem = l.lowerTy(ty.Elem)
		out.Len = l.lowerExpr(ty.Len)
	case ast.TyBareFn:
		out.Kind = TyBareFn
		bf := &BareFnTy{BoundParams: l.lowerBinderParams(ty.BareFn.BinderLifetimes)}
		l.withElisionMode(ElisionPassThrough, func() {
			for _, in := range ty.BareFn.Inputs {
				bf.Inputs = append(bf.Inputs, l.lowerTy(in))
			}
			if ty.BareFn.Output.IsValid() {
				bf.Output = l.lowerTy(ty.BareFn.Output)
			}
		})
		out.BareFn = bf
	case ast.TyNever:
		out.Kind = TyNever
	case ast.TyTraitObject:
		out.Kind = TyTraitObject
		if ty.BareForm {
			diag.Warning(l.rep, diag.LowBareTraitObject, ty.Span,
				"trait objects without an explicit `dyn` are deprecated")
		}
		sawLifetime := false
		for i := range ty.Bounds {
			b := &ty.Bounds[i]
			switch b.Kind {
			case ast.BoundTrait:
				out.Bounds = append(out.Bounds, l.lowerPolyTraitRef(b))
			case ast.BoundOutlives:
				out.Lifetime = l.lowerLifetime(b.Lifetime)
				sawLifetime = true
			}
		}
		if !sawLifetime {
			// Object lifetime default, left for the resolution pass.
			out.Lifetime = Lifetime{ID: l.nextFreshID(), Span: ty.Span, Name: LtImplicit}
		}
	case ast.TyImplTrait:
		return l.lowerImplTraitTy(ty, out)
	case ast.TyInfer:
		out.Kind = TyInfer
	case ast.TyParen:
		inner := l.lowerTy(ty.Elem)
		if inner == nil {
			out.Kind = TyErr
			return out
		}
		return inner
	default:
		out.Kind = TyErr
	}
	return out
}

func (l *Lowerer) errTy(span source.Span) *Ty {
	return &Ty{ID: l.nextFreshID(), Kind: TyErr, Span: span}
}

func (l *Lowerer) lowerImplTraitTy(ty *ast.Ty, out *Ty) *Ty {
	switch l.implTrait {
	case implTraitUniversal:
		return l.lowerUniversalImplTrait(ty, out)
	case implTraitExistential:
		return l.lowerExistentialImplTrait(ty, out)
	default:
		diag.Error(l.rep, diag.LowImplTraitDisallowed, ty.Span,
			"`impl Trait` is not allowed in this position")
		out.Kind = TyErr
		return out
	}
}

// lowerUniversalImplTrait turns argument-position `impl Trait` into a
// fresh caller-chosen type parameter on the enclosing function.
func (l *Lowerer) lowerUniversalImplTrait(ty *ast.Ty, out *Ty) *Ty {
	name := l.freshName("impl")
	node := l.b.NextNodeID()
	d := l.defs.CreateDefWithParent(l.implTraitFn, node, def.PathData{
		Kind: def.DataUniversalImplTrait,
		Name: name,
	}, def.SpaceHigh, ty.Span)
	id := l.lowerIDWithOwner(node, l.inBandOwner)

	var bounds []GenericBound
	l.withImplTraitCtx(implTraitDisallowed, def.NoDefIndex, func() {
		bounds = l.lowerBounds(ty.Bounds)
	})

	l.implTraitDefs = append(l.implTraitDefs, GenericParam{
		ID:        id,
		Def:       d,
		Name:      name,
		Span:      ty.Span,
		Kind:      ParamType,
		Bounds:    bounds,
		Synthetic: true,
	})

	out.Kind = TyPath
	out.QPath = QPath{Kind: QPathResolved, Path: &Path{
		Span: ty.Span,
		Res: resolve.Resolution{
			Kind:    resolve.ResDef,
			DefKind: resolve.KindTyParam,
			Def:     d,
		},
		Segments: []PathSeg{{Name: name}},
	}}
	return out
}

// lowerExistentialImplTrait synthesizes a sibling existential item for
// return-position `impl Trait` and references it, passing along every
// named lifetime the bounds capture from the function's scope.
func (l *Lowerer) lowerExistentialImplTrait(ty *ast.Ty, out *Ty) *Ty {
	name := l.freshName("existential")
	exNode := l.b.NextNodeID()
	parent := l.defs.Parent(l.implTraitFn)
	if !parent.IsValid() {
		parent = l.implTraitFn
	}
	exDef := l.defs.CreateDefWithParent(parent, exNode, def.PathData{
		Kind: def.DataExistentialImplTrait,
		Name: name,
	}, def.SpaceLow, ty.Span)
	l.allocateOwnerCounter(exNode)

	// The bounds live inside the new item; their hir ids belong to it.
	var bounds []GenericBound
	l.withOwnerScope(exNode, func() {
		l.lowerID(exNode)
		l.withElisionMode(ElisionPassThrough, func() {
			l.withImplTraitCtx(implTraitDisallowed, def.NoDefIndex, func() {
				bounds = l.lowerBounds(ty.Bounds)
			})
		})
	})

	captured := collectBoundLifetimes(bounds)

	var exParams []GenericParam
	var argLifetimes []Lifetime
	for _, c := range captured {
		pnode := l.b.NextNodeID()
		pdef := l.defs.CreateDefWithParent(exDef, pnode, def.PathData{
			Kind: def.DataLifetimeNs,
			Name: c.Ident,
		}, def.SpaceHigh, c.Span)
		pid := l.lowerIDWithOwner(pnode, exNode)
		exParams = append(exParams, GenericParam{
			ID:     pid,
			Def:    pdef,
			Name:   c.Ident,
			Span:   c.Span,
			Kind:   ParamLifetime,
			InBand: true,
		})
		argLifetimes = append(argLifetimes, Lifetime{
			ID:    l.nextFreshID(),
			Span:  c.Span,
			Name:  LtParam,
			Ident: c.Ident,
		})
	}

	item := &Item{
		ID:       ItemID{Hir: HirID{Owner: exDef, Local: 0}},
		Def:      exDef,
		Kind:     ItemExistential,
		Origin:   ExistReturnImplTrait,
		Name:     name,
		Span:     ty.Span,
		Generics: Generics{Params: exParams, Span: ty.Span},
		Bounds:   bounds,
	}
	l.crate.Items[item.ID] = item

	out.Kind = TyPath
	out.QPath = QPath{Kind: QPathResolved, Path: &Path{
		Span: ty.Span,
		Res: resolve.Resolution{
			Kind:    resolve.ResDef,
			DefKind: resolve.KindExistential,
			Def:     exDef,
		},
		Segments: []PathSeg{{Name: name, Args: GenericArgs{Lifetimes: argLifetimes}}},
	}}
	return out
}

// collectBoundLifetimes walks lowered bounds and returns every named
// lifetime not bound by an enclosing `for<>` binder, in first-use
// order, deduplicated by name.
func collectBoundLifetimes(bounds []GenericBound) []Lifetime {
	c := &lifetimeCollector{seen: make(map[source.StringID]bool)}
	c.visitBounds(bounds)
	return c.out
}

type lifetimeCollector struct {
	seen  map[source.StringID]bool
	bound []map[source.StringID]bool
	out   []Lifetime
}

func (c *lifetimeCollector) isBound(name source.StringID) bool {
	for _, frame := range c.bound {
		if frame[name] {
			return true
		}
	}
	return false
}

func (c *lifetimeCollector) visit(lt Lifetime) {
	if lt.Name != LtParam || c.isBound(lt.Ident) || c.seen[lt.Ident] {
		return
	}
	c.seen[lt.Ident] = true
	c.out = append(c.out, lt)
}

func (c *lifetimeCollector) pushBinder(params []GenericParam) {
	frame := make(map[source.StringID]bool, len(params))
	for i := range params {
		if params[i].Kind == ParamLifetime {
			frame[params[i].Name] = true
		}
	}
	c.bound = append(c.bound, frame)
}

func (c *lifetimeCollector) popBinder() {
	c.bound = c.bound[:len(c.bound)-1]
}

func (c *lifetimeCollector) visitBounds(bounds []GenericBound) {
	for i := range bounds {
		b := &bounds[i]
		switch b.Kind {
		case BoundTrait:
			c.pushBinder(b.Trait.BoundParams)
			if b.Trait.TraitRef.Path != nil {
				c.visitPath(b.Trait.TraitRef.Path)
			}
			c.popBinder()
		case BoundOutlives:
			c.visit(b.Outlives)
		}
	}
}

func (c *lifetimeCollector) visitPath(p *Path) {
	for i := range p.Segments {
		args := &p.Segments[i].Args
		for _, lt := range args.Lifetimes {
			c.visit(lt)
		}
		for _, t := range args.Types {
			c.visitTy(t)
		}
		for j := range args.Bindings {
			c.visitTy(args.Bindings[j].Ty)
		}
	}
}

func (c *lifetimeCollector) visitTy(t *Ty) {
	if t == nil {
		return
	}
	switch t.Kind {
	case TyPath:
		if t.QPath.Path != nil {
			c.visitPath(t.QPath.Path)
		}
		c.visitTy(t.QPath.SelfTy)
	case TyRef:
		c.visit(t.Lifetime)
		c.visitTy(t.Elem)
	case TyPtr, TySlice, TyArray:
		c.visitTy(t.Elem)
	case TyTuple:
		for _, el := range t.Tuple {
			c.visitTy(el)
		}
	case TyBareFn:
		if t.BareFn != nil {
			c.pushBinder(t.BareFn.BoundParams)
			for _, in := range t.BareFn.Inputs {
				c.visitTy(in)
			}
			c.visitTy(t.BareFn.Output)
			c.popBinder()
		}
	case TyTraitObject:
		c.visit(t.Lifetime)
		for i := range t.Bounds {
			c.pushBinder(t.Bounds[i].BoundParams)
			if t.Bounds[i].TraitRef.Path != nil {
				c.visitPath(t.Bounds[i].TraitRef.Path)
			}
			c.popBinder()
		}
	}
}
