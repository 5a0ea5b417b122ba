package hir

import (
	"rill/internal/ast"
	"rill/internal/resolve"
)

func (l *Lowerer) lowerPat(pid ast.PatID) *Pat {
	p := l.b.Pats.Get(pid)
	if p == nil {
		return nil
	}
	out := &Pat{ID: l.lowerID(p.ID), Span: p.Span}

	switch p.Kind {
	case ast.PatWild:
		out.Kind = PatWild

	case ast.PatIdent:
		// A lone identifier is a binding unless the resolver says the
		// name is a unit struct or variant in scope.
		if res, ok := l.res.GetResolution(p.ID); ok && res.Kind == resolve.ResDef {
			out.Kind = PatPath
			out.QPath = QPath{Kind: QPathResolved, Path: &Path{
				Span:     p.Span,
				Res:      res,
				Segments: []PathSeg{{Name: p.Name}},
			}}
			break
		}
		out.Kind = PatBinding
		out.Mode = p.Mode
		out.Name = p.Name
		if p.Sub.IsValid() {
			out.Sub = l.lowerPat(p.Sub)
		}

	case ast.PatPath:
		out.Kind = PatPath
		out.QPath = QPath{Kind: QPathResolved, Path: l.lowerPath(p.ID, p.Path)}

	case ast.PatTupleStruct:
		out.Kind = PatTupleStruct
		out.QPath = QPath{Kind: QPathResolved, Path: l.lowerPath(p.ID, p.Path)}
		for _, sub := range p.Pats {
			out.Pats = append(out.Pats, l.lowerPat(sub))
		}
		out.HasRest = p.HasRest

	case ast.PatStruct:
		out.Kind = PatStruct
		out.QPath = QPath{Kind: QPathResolved, Path: l.lowerPath(p.ID, p.Path)}
		for i := range p.Fields {
			f := &p.Fields[i]
			out.Fields = append(out.Fields, FieldPat{
				ID:   l.lowerID(f.ID),
				Name: f.Name,
				Pat:  l.lowerPat(f.Pat),
				Span: f.Span,
			})
		}
		out.HasRest = p.HasRest

	case ast.PatTuple:
		out.Kind = PatTuple
		for _, sub := range p.Pats {
			out.Pats = append(out.Pats, l.lowerPat(sub))
		}
		out.HasRest = p.HasRest

	case ast.PatLit:
		out.Kind = PatLit
		out.Expr = l.lowerExpr(p.Expr)

	case ast.PatRef:
		out.Kind = PatRef
		out.Mutable = p.Mutable
		if p.Sub.IsValid() {
			out.Sub = l.lowerPat(p.Sub)
		}
	}
	return out
}
