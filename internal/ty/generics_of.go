package ty

import (
	"fmt"

	"fortio.org/safecast"

	"rill/internal/def"
	"rill/internal/diag"
	"rill/internal/hir"
)

// GenericsOf resolves a def's generic parameter layout: parent link,
// implicit Self for traits, then own params reordered into the fixed
// lifetimes-types-consts order with dense indices.
func (e *Engine) GenericsOf(d def.DefIndex) *Generics {
	key := cellKey{kind: qGenericsOf, def: d}
	v, cycle := e.memo(key, func() any { return e.computeGenericsOf(d) })
	if cycle {
		diag.Error(e.rep, diag.TyCyclicQuery, e.spanOf(d),
			"cycle while resolving generics of `"+e.defs.DefPath(d)+"`")
		return &Generics{}
	}
	return v.(*Generics)
}

func (e *Engine) computeGenericsOf(d def.DefIndex) *Generics {
	var hg *hir.Generics
	var parent def.DefIndex
	hasSelf := false

	switch {
	case e.items[d] != nil:
		it := e.items[d]
		hg = &it.Generics
		if it.Kind == hir.ItemTrait || it.Kind == hir.ItemTraitAlias {
			hasSelf = true
		}
	case e.traitItems[d] != nil:
		hg = &e.traitItems[d].Generics
		parent = e.defs.Parent(d)
	case e.implItems[d] != nil:
		hg = &e.implItems[d].Generics
		parent = e.defs.Parent(d)
	default:
		if row := e.defs.Get(d); row != nil && row.Key.Data.Kind == def.DataClosureExpr {
			return e.closureGenerics(d)
		}
		return &Generics{}
	}

	g := &Generics{Parent: parent, HasSelf: hasSelf}
	if parent.IsValid() {
		g.ParentCount = e.countOf(parent)
	}

	next := g.ParentCount
	if hasSelf {
		g.Params = append(g.Params, ParamDef{
			Def:       d,
			Name:      e.selfName,
			Index:     next,
			Kind:      ParamType,
			Synthetic: SynSelf,
		})
		next++
	}

	// Source order within one kind is preserved; kinds are layered in
	// the fixed order other passes index by.
	for _, want := range []hir.GenericParamKind{hir.ParamLifetime, hir.ParamType, hir.ParamConst} {
		for _, p := range hg.Params {
			if p.Kind != want {
				continue
			}
			pd := ParamDef{Def: p.Def, Name: p.Name, Index: next, Kind: paramKind(p.Kind)}
			// Desugared impl-Trait params are marked; in-band lifetimes
			// are ordinary slots once collected.
			if p.Kind == hir.ParamType && p.Synthetic {
				pd.Synthetic = SynImplTrait
			}
			g.Params = append(g.Params, pd)
			next++
		}
	}
	return g
}

// closureGenerics appends the synthetic slots substitution machinery
// expects after the enclosing item's params: captured-kind, signature,
// and upvars for a plain closure; resume, yield, return, witness, and
// upvars when the closure's body is a generator.
func (e *Engine) closureGenerics(d def.DefIndex) *Generics {
	parent := e.enclosingItem(e.defs.Parent(d))
	g := &Generics{Parent: parent}
	if parent.IsValid() {
		g.ParentCount = e.countOf(parent)
	}
	slots := []SyntheticKind{SynClosureKind, SynClosureSig, SynClosureUpvars}
	if bid, ok := e.crate.ClosureBodies[d]; ok {
		if b := e.crate.Body(bid); b != nil && b.IsGenerator {
			slots = []SyntheticKind{SynGenResume, SynGenYield, SynGenReturn, SynGenWitness, SynGenUpvars}
		}
	}
	next := g.ParentCount
	for _, syn := range slots {
		g.Params = append(g.Params, ParamDef{
			Def:       d,
			Name:      e.names.Intern(synName(syn)),
			Index:     next,
			Kind:      ParamType,
			Synthetic: syn,
		})
		next++
	}
	return g
}

// enclosingItem walks the def parent chain to the nearest item-like
// ancestor that owns generics.
func (e *Engine) enclosingItem(d def.DefIndex) def.DefIndex {
	for d.IsValid() {
		if e.items[d] != nil || e.traitItems[d] != nil || e.implItems[d] != nil {
			return d
		}
		d = e.defs.Parent(d)
	}
	return def.NoDefIndex
}

func (e *Engine) countOf(d def.DefIndex) uint32 {
	n, err := safecast.Conv[uint32](e.GenericsOf(d).Count())
	if err != nil {
		panic(fmt.Errorf("ty: generics count overflow: %w", err))
	}
	return n
}

func paramKind(k hir.GenericParamKind) ParamKind {
	switch k {
	case hir.ParamLifetime:
		return ParamLifetime
	case hir.ParamConst:
		return ParamConst
	}
	return ParamType
}

func synName(s SyntheticKind) string {
	switch s {
	case SynClosureKind:
		return "<closure-kind>"
	case SynClosureSig:
		return "<closure-sig>"
	case SynClosureUpvars:
		return "<upvars>"
	case SynGenResume:
		return "<resume>"
	case SynGenYield:
		return "<yield>"
	case SynGenReturn:
		return "<return>"
	case SynGenWitness:
		return "<witness>"
	case SynGenUpvars:
		return "<upvars>"
	}
	return "<synthetic>"
}
