package ty

import (
	"rill/internal/def"
	"rill/internal/hir"
	"rill/internal/resolve"
)

// convTy converts a lowered type node into an interned descriptor.
// Conversion is purely structural: parameter references keep their
// def identity, elided lifetimes become erased regions, and anything
// unresolvable becomes the error type so conversion never fails.
func (e *Engine) convTy(t *hir.Ty) TypeID {
	if t == nil {
		return e.in.builtins.Unit
	}
	switch t.Kind {
	case hir.TyPath:
		return e.convPathTy(t)

	case hir.TyRef:
		return e.in.Intern(Type{
			Kind:    KindRef,
			Region:  e.convRegion(t.Lifetime),
			Elem:    e.convTy(t.Elem),
			Mutable: t.Mutable,
		})

	case hir.TyPtr:
		return e.in.Intern(Type{Kind: KindRawPtr, Elem: e.convTy(t.Elem), Mutable: t.Mutable})

	case hir.TySlice:
		return e.in.Intern(Type{Kind: KindSlice, Elem: e.convTy(t.Elem)})

	case hir.TyArray:
		// Array lengths are not evaluated at this layer.
		return e.in.Intern(Type{Kind: KindArray, Elem: e.convTy(t.Elem)})

	case hir.TyTuple:
		ids := make([]TypeID, 0, len(t.Tuple))
		for _, el := range t.Tuple {
			ids = append(ids, e.convTy(el))
		}
		return e.in.Intern(Type{Kind: KindTuple, Args: e.in.InternList(ids)})

	case hir.TyNever:
		return e.in.builtins.Never

	case hir.TyBareFn:
		if t.BareFn == nil {
			return e.in.builtins.Error
		}
		ids := make([]TypeID, 0, len(t.BareFn.Inputs)+1)
		for _, in := range t.BareFn.Inputs {
			ids = append(ids, e.convTy(in))
		}
		ids = append(ids, e.convTy(t.BareFn.Output))
		return e.in.Intern(Type{
			Kind:  KindFnPtr,
			Args:  e.in.InternList(ids),
			Index: uint32(len(t.BareFn.Inputs)),
		})

	case hir.TyTraitObject:
		var principal def.DefIndex
		if len(t.Bounds) > 0 {
			principal = t.Bounds[0].TraitRef.TraitDefID()
		}
		return e.in.Intern(Type{Kind: KindDyn, Def: principal, Region: e.convRegion(t.Lifetime)})

	case hir.TyInfer:
		return e.in.builtins.Infer
	}
	return e.in.builtins.Error
}

func (e *Engine) convPathTy(t *hir.Ty) TypeID {
	if t.QPath.Kind == hir.QPathTypeRelative {
		// `<T>::Assoc` stays a projection with the base as self.
		return e.in.Intern(Type{
			Kind: KindProjection,
			Name: t.QPath.Seg.Name,
			Args: e.in.InternList([]TypeID{e.convTy(t.QPath.SelfTy)}),
		})
	}
	path := t.QPath.Path
	if path == nil {
		return e.in.builtins.Error
	}
	res := path.Res
	switch res.Kind {
	case resolve.ResPrimTy:
		return e.in.Prim(res.Prim)

	case resolve.ResSelfTy:
		return e.in.Intern(Type{Kind: KindParam, Name: e.selfName})

	case resolve.ResDef:
		switch res.DefKind {
		case resolve.KindStruct, resolve.KindEnum, resolve.KindUnion:
			return e.in.Intern(Type{Kind: KindAdt, Def: res.Def, Args: e.convSegArgs(path)})
		case resolve.KindTyParam:
			name := res.Prim
			if len(path.Segments) > 0 {
				name = path.Segments[len(path.Segments)-1].Name
			}
			return e.in.Intern(Type{Kind: KindParam, Def: res.Def, Name: name})
		case resolve.KindExistential:
			return e.in.Intern(Type{Kind: KindOpaque, Def: res.Def, Args: e.convSegArgs(path)})
		case resolve.KindTyAlias:
			// Aliases are not expanded at this layer; keep the reference.
			return e.in.Intern(Type{Kind: KindAdt, Def: res.Def, Args: e.convSegArgs(path)})
		case resolve.KindAssocType:
			args := []TypeID{e.in.builtins.Infer}
			return e.in.Intern(Type{
				Kind: KindProjection,
				Def:  res.Def,
				Args: e.in.InternList(args),
			})
		}
	}
	return e.in.builtins.Error
}

// convSegArgs converts the type arguments of a path's final resolved
// segment into an interned list.
func (e *Engine) convSegArgs(path *hir.Path) ListID {
	if len(path.Segments) == 0 {
		return EmptyListID
	}
	seg := path.Segments[len(path.Segments)-1]
	if len(seg.Args.Types) == 0 {
		return EmptyListID
	}
	ids := make([]TypeID, 0, len(seg.Args.Types))
	for _, a := range seg.Args.Types {
		ids = append(ids, e.convTy(a))
	}
	return e.in.InternList(ids)
}

func (e *Engine) convRegion(lt hir.Lifetime) Region {
	switch lt.Name {
	case hir.LtStatic:
		return Region{Kind: RegStatic}
	case hir.LtParam:
		return Region{Kind: RegEarlyBound, Name: lt.Ident}
	case hir.LtImplicit, hir.LtUnderscore:
		return Region{Kind: RegErased}
	}
	return Region{Kind: RegError}
}

// selfParamTy is the implicit `Self` of a trait.
func (e *Engine) selfParamTy() TypeID {
	return e.in.Intern(Type{Kind: KindParam, Name: e.selfName})
}

// paramTy is a reference to a declared generic type parameter.
func (e *Engine) paramTy(p hir.GenericParam) TypeID {
	return e.in.Intern(Type{Kind: KindParam, Def: p.Def, Name: p.Name})
}
