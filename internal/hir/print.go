package hir

import (
	"fmt"
	"io"
	"strings"

	"rill/internal/ast"
	"rill/internal/source"
)

// Printer dumps lowered crates to a stable text form; output order is
// deterministic regardless of map iteration.
type Printer struct {
	w      io.Writer
	names  *source.Interner
	indent int
}

func NewPrinter(w io.Writer, names *source.Interner) *Printer {
	return &Printer{w: w, names: names}
}

// Dump writes the whole crate to w.
func Dump(w io.Writer, c *Crate, names *source.Interner) {
	p := NewPrinter(w, names)
	p.PrintCrate(c)
}

// DumpString renders the crate to a string.
func DumpString(c *Crate, names *source.Interner) string {
	var sb strings.Builder
	Dump(&sb, c, names)
	return sb.String()
}

func (p *Printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, "%s", strings.Repeat("  ", p.indent))
	fmt.Fprintf(p.w, format, args...)
	fmt.Fprintf(p.w, "\n")
}

func (p *Printer) name(id source.StringID) string {
	if s, ok := p.names.Lookup(id); ok && s != "" {
		return s
	}
	return "_"
}

func (p *Printer) PrintCrate(c *Crate) {
	for _, id := range c.SortedItemIDs() {
		p.printItem(c, c.Items[id])
	}
	for _, id := range c.SortedTraitItemIDs() {
		p.printTraitItem(c, c.TraitItems[id])
	}
	for _, id := range c.SortedImplItemIDs() {
		p.printImplItem(c, c.ImplItems[id])
	}
}

func itemKindStr(k ItemKind) string {
	switch k {
	case ItemFn:
		return "fn"
	case ItemStruct:
		return "struct"
	case ItemEnum:
		return "enum"
	case ItemUnion:
		return "union"
	case ItemTrait:
		return "trait"
	case ItemTraitAlias:
		return "trait alias"
	case ItemImpl:
		return "impl"
	case ItemTyAlias:
		return "type"
	case ItemExistential:
		return "existential type"
	case ItemConst:
		return "const"
	case ItemStatic:
		return "static"
	case ItemMod:
		return "mod"
	case ItemForeignMod:
		return "extern"
	case ItemUse:
		return "use"
	}
	return "?"
}

func (p *Printer) printItem(c *Crate, it *Item) {
	if it == nil {
		return
	}
	p.line("%s %s %s%s", itemKindStr(it.Kind), p.name(it.Name), it.ID.Hir, p.genericsSuffix(&it.Generics))
	p.indent++
	switch it.Kind {
	case ItemFn:
		p.printSig(&it.Sig)
		p.printBodyRef(c, it.Body)
	case ItemStruct, ItemUnion:
		p.printVariantData(&it.Data)
	case ItemEnum:
		for i := range it.Variants {
			v := &it.Variants[i]
			p.line("variant %s %s", p.name(v.Name), v.ID)
			p.indent++
			p.printVariantData(&v.Data)
			p.indent--
		}
	case ItemTrait, ItemTraitAlias, ItemExistential:
		if len(it.Bounds) > 0 {
			p.line("bounds: %s", p.boundsStr(it.Bounds))
		}
	case ItemImpl:
		if it.TraitRef != nil {
			p.line("trait: %s", p.pathStr(it.TraitRef.Path))
		}
		if it.SelfTy != nil {
			p.line("self: %s", p.tyStr(it.SelfTy))
		}
	case ItemTyAlias:
		p.line("= %s", p.tyStr(it.Ty))
	case ItemConst, ItemStatic:
		p.line(": %s", p.tyStr(it.Ty))
		p.printBodyRef(c, it.Body)
	}
	p.indent--
}

func (p *Printer) printTraitItem(c *Crate, ti *TraitItem) {
	if ti == nil {
		return
	}
	p.line("trait item %s %s%s", p.name(ti.Name), ti.ID.Hir, p.genericsSuffix(&ti.Generics))
	p.indent++
	if ti.Kind == TraitItemMethod {
		p.printSig(&ti.Sig)
	}
	if ti.HasBody {
		p.printBodyRef(c, ti.Body)
	}
	p.indent--
}

func (p *Printer) printImplItem(c *Crate, ii *ImplItem) {
	if ii == nil {
		return
	}
	p.line("impl item %s %s%s", p.name(ii.Name), ii.ID.Hir, p.genericsSuffix(&ii.Generics))
	p.indent++
	if ii.Kind == ImplItemMethod {
		p.printSig(&ii.Sig)
		p.printBodyRef(c, ii.Body)
	}
	if ii.Ty != nil {
		p.line(": %s", p.tyStr(ii.Ty))
	}
	p.indent--
}

func (p *Printer) genericsSuffix(g *Generics) string {
	if len(g.Params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(g.Params))
	for i := range g.Params {
		gp := &g.Params[i]
		n := p.name(gp.Name)
		switch {
		case gp.Synthetic:
			n += "#syn"
		case gp.InBand:
			n += "#inband"
		}
		parts = append(parts, n)
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func (p *Printer) printSig(sig *FnSig) {
	ins := make([]string, 0, len(sig.Decl.Inputs))
	for _, t := range sig.Decl.Inputs {
		ins = append(ins, p.tyStr(t))
	}
	out := "()"
	if sig.Decl.Output != nil {
		out = p.tyStr(sig.Decl.Output)
	}
	p.line("sig: (%s) -> %s", strings.Join(ins, ", "), out)
}

func (p *Printer) printBodyRef(c *Crate, id BodyID) {
	body := c.Body(id)
	if body == nil {
		return
	}
	p.line("body %s:", id.Hir)
	p.indent++
	for _, pat := range body.Params {
		p.line("param %s", p.patStr(pat))
	}
	p.printExpr(body.Value)
	p.indent--
}

func (p *Printer) printVariantData(data *VariantData) {
	for i := range data.Fields {
		f := &data.Fields[i]
		p.line("field %s: %s %s", p.name(f.Name), p.tyStr(f.Ty), f.ID)
	}
}

func (p *Printer) boundsStr(bounds []GenericBound) string {
	parts := make([]string, 0, len(bounds))
	for i := range bounds {
		b := &bounds[i]
		switch b.Kind {
		case BoundTrait:
			s := p.pathStr(b.Trait.TraitRef.Path)
			if b.Modifier == ast.BoundModMaybe {
				s = "?" + s
			}
			parts = append(parts, s)
		case BoundOutlives:
			parts = append(parts, p.lifetimeStr(b.Outlives))
		}
	}
	return strings.Join(parts, " + ")
}

func (p *Printer) lifetimeStr(lt Lifetime) string {
	switch lt.Name {
	case LtStatic:
		return "'static"
	case LtImplicit:
		return "'<implicit>"
	case LtUnderscore:
		return "'_"
	case LtError:
		return "'<error>"
	}
	return "'" + p.name(lt.Ident)
}

func (p *Printer) pathStr(path *Path) string {
	if path == nil {
		return "<err>"
	}
	parts := make([]string, 0, len(path.Segments))
	for i := range path.Segments {
		seg := &path.Segments[i]
		s := p.name(seg.Name)
		if args := p.argsStr(&seg.Args); args != "" {
			s += args
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "::")
}

func (p *Printer) argsStr(a *GenericArgs) string {
	if len(a.Lifetimes) == 0 && len(a.Types) == 0 && len(a.Bindings) == 0 {
		return ""
	}
	var parts []string
	for _, lt := range a.Lifetimes {
		parts = append(parts, p.lifetimeStr(lt))
	}
	for _, t := range a.Types {
		parts = append(parts, p.tyStr(t))
	}
	for i := range a.Bindings {
		parts = append(parts, p.name(a.Bindings[i].Name)+" = "+p.tyStr(a.Bindings[i].Ty))
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func (p *Printer) qpathStr(q *QPath) string {
	if q.Kind == QPathTypeRelative {
		return "<" + p.tyStr(q.SelfTy) + ">::" + p.name(q.Seg.Name)
	}
	return p.pathStr(q.Path)
}

func (p *Printer) tyStr(t *Ty) string {
	if t == nil {
		return "()"
	}
	switch t.Kind {
	case TyPath:
		return p.qpathStr(&t.QPath)
	case TyRef:
		m := ""
		if t.Mutable {
			m = "mut "
		}
		return "&" + p.lifetimeStr(t.Lifetime) + " " + m + p.tyStr(t.Elem)
	case TyPtr:
		m := "const "
		if t.Mutable {
			m = "mut "
		}
		return "*" + m + p.tyStr(t.Elem)
	case TyTuple:
		parts := make([]string, 0, len(t.Tuple))
		for _, el := range t.Tuple {
			parts = append(parts, p.tyStr(el))
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case TySlice:
		return "[" + p.tyStr(t.Elem) + "]"
	case TyArray:
		return "[" + p.tyStr(t.Elem) + "; _]"
	case TyBareFn:
		return "fn(...)"
	case TyNever:
		return "!"
	case TyTraitObject:
		parts := make([]string, 0, len(t.Bounds))
		for i := range t.Bounds {
			parts = append(parts, p.pathStr(t.Bounds[i].TraitRef.Path))
		}
		return "dyn " + strings.Join(parts, " + ")
	case TyInfer:
		return "_"
	case TyErr:
		return "<error>"
	}
	return "?"
}

func (p *Printer) patStr(pat *Pat) string {
	if pat == nil {
		return "<nil>"
	}
	switch pat.Kind {
	case PatWild:
		return "_"
	case PatBinding:
		s := p.name(pat.Name)
		if pat.Sub != nil {
			s += " @ " + p.patStr(pat.Sub)
		}
		return s
	case PatPath:
		return p.qpathStr(&pat.QPath)
	case PatTupleStruct:
		parts := make([]string, 0, len(pat.Pats))
		for _, sub := range pat.Pats {
			parts = append(parts, p.patStr(sub))
		}
		return p.qpathStr(&pat.QPath) + "(" + strings.Join(parts, ", ") + ")"
	case PatStruct:
		return p.qpathStr(&pat.QPath) + " { .. }"
	case PatTuple:
		parts := make([]string, 0, len(pat.Pats))
		for _, sub := range pat.Pats {
			parts = append(parts, p.patStr(sub))
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case PatLit:
		return "<lit>"
	case PatRef:
		return "&" + p.patStr(pat.Sub)
	}
	return "?"
}

func (p *Printer) printExpr(e *Expr) {
	if e == nil {
		p.line("<nil>")
		return
	}
	switch data := e.Data.(type) {
	case LitData:
		p.line("lit %s %s", p.name(data.Val), e.ID)
	case PathData:
		p.line("path %s %s", p.qpathStr(&data.QPath), e.ID)
	case UnaryData:
		p.line("unary %s", e.ID)
		p.nested(data.Sub)
	case BinaryData:
		p.line("binary %s", e.ID)
		p.nested(data.Lhs, data.Rhs)
	case AssignData:
		p.line("assign %s", e.ID)
		p.nested(data.Lhs, data.Rhs)
	case CallData:
		p.line("call %s", e.ID)
		p.nested(append([]*Expr{data.Fn}, data.Args...)...)
	case FieldData:
		p.line("field .%s %s", p.name(data.Name), e.ID)
		p.nested(data.Base)
	case IndexData:
		p.line("index %s", e.ID)
		p.nested(data.Base, data.Index)
	case BlockData:
		p.printBlock(data.Block)
	case IfData:
		p.line("if %s", e.ID)
		p.nested(data.Cond, data.Then, data.Else)
	case LoopData:
		p.line("loop(%s) %s", loopSourceStr(data.Source), e.ID)
		p.indent++
		p.printBlock(data.Body)
		p.indent--
	case MatchData:
		p.line("match(%s) %s", matchSourceStr(data.Source), e.ID)
		p.indent++
		p.printExpr(data.Scrutinee)
		for i := range data.Arms {
			arm := &data.Arms[i]
			pats := make([]string, 0, len(arm.Pats))
			for _, pt := range arm.Pats {
				pats = append(pats, p.patStr(pt))
			}
			p.line("arm %s =>", strings.Join(pats, " | "))
			p.indent++
			p.printExpr(arm.Body)
			p.indent--
		}
		p.indent--
	case BreakData:
		p.line("break -> %s %s", destStr(data.Dest), e.ID)
		p.nested(data.Value)
	case ContinueData:
		p.line("continue -> %s %s", destStr(data.Dest), e.ID)
	case ReturnData:
		p.line("return %s", e.ID)
		p.nested(data.Value)
	case ClosureData:
		p.line("closure body=%s %s", data.Body.Hir, e.ID)
	case AddrOfData:
		p.line("addr-of %s", e.ID)
		p.nested(data.Sub)
	case StructLitData:
		p.line("struct %s %s", p.qpathStr(&data.QPath), e.ID)
		p.indent++
		for i := range data.Fields {
			p.line("%s:", p.name(data.Fields[i].Name))
			p.nested(data.Fields[i].Value)
		}
		p.indent--
	case TupleData:
		p.line("tuple %s", e.ID)
		p.nested(data.Items...)
	case ArrayData:
		p.line("array %s", e.ID)
		p.nested(data.Items...)
	case RepeatData:
		p.line("repeat %s", e.ID)
		p.nested(data.Elem, data.Count)
	case CastData:
		p.line("cast %s", e.ID)
		p.nested(data.Sub)
	case YieldData:
		p.line("yield %s", e.ID)
		p.nested(data.Value)
	case ErrData:
		p.line("<error> %s", e.ID)
	default:
		p.line("expr %s", e.ID)
	}
}

func (p *Printer) nested(exprs ...*Expr) {
	p.indent++
	for _, e := range exprs {
		if e != nil {
			p.printExpr(e)
		}
	}
	p.indent--
}

func (p *Printer) printBlock(b *Block) {
	if b == nil {
		p.line("{}")
		return
	}
	tag := ""
	if b.TargetedByBreak {
		tag = " (catch target)"
	}
	p.line("block %s%s", b.ID, tag)
	p.indent++
	for i := range b.Stmts {
		p.printStmt(&b.Stmts[i])
	}
	if b.Expr != nil {
		p.printExpr(b.Expr)
	}
	p.indent--
}

func (p *Printer) printStmt(s *Stmt) {
	switch s.Kind {
	case StmtLet:
		src := ""
		if s.Let.Source == LetForLoopDesugar {
			src = " (desugared)"
		}
		p.line("let %s%s %s", p.patStr(s.Let.Pat), src, s.ID)
		p.nested(s.Let.Init)
	case StmtExpr, StmtSemi:
		p.printExpr(s.Expr)
	case StmtItem:
		p.line("item %s", s.Item.Hir)
	}
}

func loopSourceStr(s LoopSource) string {
	switch s {
	case LoopWhile:
		return "while"
	case LoopWhileLet:
		return "while let"
	case LoopForLoop:
		return "for"
	}
	return "loop"
}

func matchSourceStr(s MatchSource) string {
	switch s {
	case MatchIfLet:
		return "if let"
	case MatchWhileLet:
		return "while let"
	case MatchForLoop:
		return "for"
	case MatchTry:
		return "?"
	}
	return "match"
}

func destStr(d Destination) string {
	if d.IsErr {
		return "<error>"
	}
	return d.Target.String()
}
