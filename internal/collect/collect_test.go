package collect

import (
	"testing"

	"rill/internal/ast"
	"rill/internal/def"
	"rill/internal/diag"
	"rill/internal/hir"
	"rill/internal/resolve"
	"rill/internal/source"
	"rill/internal/ty"
)

type fixture struct {
	t        *testing.T
	names    *source.Interner
	defs     *def.Table
	crate    *hir.Crate
	bag      *diag.Bag
	nextNode ast.NodeID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:        t,
		names:    source.NewInterner(),
		crate:    hir.NewCrate(),
		bag:      diag.NewBag(64),
		nextNode: 1,
	}
	f.defs = def.NewTable(f.names)
	f.defs.CreateCrateRoot(f.node(), source.Span{})
	return f
}

func (f *fixture) node() ast.NodeID {
	n := f.nextNode
	f.nextNode++
	return n
}

func (f *fixture) name(s string) source.StringID {
	return f.names.Intern(s)
}

func (f *fixture) run() {
	f.t.Helper()
	rep := diag.BagReporter{Bag: f.bag}
	engine := ty.NewEngine(f.crate, f.defs, f.names, rep)
	New(f.crate, f.defs, f.names, engine, rep).Run()
}

func (f *fixture) addItem(kind hir.ItemKind, name string) *hir.Item {
	f.t.Helper()
	d := f.defs.CreateDefWithParent(def.CrateRootIndex, f.node(), def.PathData{
		Kind: def.DataTypeNs,
		Name: f.name(name),
	}, def.SpaceLow, source.Span{})
	it := &hir.Item{
		ID:   hir.ItemID{Hir: hir.HirID{Owner: d}},
		Def:  d,
		Kind: kind,
		Name: f.name(name),
	}
	f.crate.Items[it.ID] = it
	return it
}

func (f *fixture) field(name string, t *hir.Ty, span source.Span) hir.FieldDef {
	f.t.Helper()
	return hir.FieldDef{Name: f.name(name), Ty: t, Span: span}
}

func (f *fixture) diagsWith(code diag.Code) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range f.bag.Items() {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

func sp(start, end uint32) source.Span {
	return source.Span{Start: start, End: end}
}

func inferTy(span source.Span) *hir.Ty {
	return &hir.Ty{Kind: hir.TyInfer, Span: span}
}

func TestStructPlaceholderSuggestsParameter(t *testing.T) {
	f := newFixture(t)
	s := f.addItem(hir.ItemStruct, "S")
	// struct S<T>(u32, _);
	tp := f.defs.CreateDefWithParent(s.Def, f.node(), def.PathData{
		Kind: def.DataTypeNs,
		Name: f.name("T"),
	}, def.SpaceHigh, source.Span{})
	s.Generics = hir.Generics{
		Params: []hir.GenericParam{{Def: tp, Name: f.name("T"), Kind: hir.ParamType}},
		Span:   sp(8, 11),
	}
	hole := sp(17, 18)
	s.Data = hir.VariantData{
		Kind:   ast.VariantTuple,
		Fields: []hir.FieldDef{f.field("0", inferTy(hole), hole)},
	}
	f.run()

	got := f.diagsWith(diag.ColPlaceholderType)
	if len(got) != 1 {
		t.Fatalf("placeholder diagnostics = %d, want 1", len(got))
	}
	d := got[0]
	if d.Primary != hole {
		t.Fatalf("primary span = %v, want %v", d.Primary, hole)
	}
	if len(d.Fixes) != 1 {
		t.Fatalf("fixes = %d, want 1", len(d.Fixes))
	}
	fix := d.Fixes[0]
	if len(fix.Edits) != 2 {
		t.Fatalf("fix edits = %d, want insertion plus replacement", len(fix.Edits))
	}
	// T is taken, so the next candidate is K.
	ins := fix.Edits[0]
	if ins.NewText != ", K" || ins.Span.Start != 10 || !ins.Span.Empty() {
		t.Fatalf("insertion edit = %+v", ins)
	}
	if rep := fix.Edits[1]; rep.Span != hole || rep.NewText != "K" {
		t.Fatalf("replacement edit = %+v", rep)
	}
}

func TestEnumVariantFieldPlaceholder(t *testing.T) {
	f := newFixture(t)
	e := f.addItem(hir.ItemEnum, "E")
	// enum E { V(_) }
	hole := sp(14, 15)
	e.Variants = []hir.Variant{{
		Name: f.name("V"),
		Data: hir.VariantData{
			Kind:   ast.VariantTuple,
			Fields: []hir.FieldDef{f.field("0", inferTy(hole), hole)},
		},
	}}
	f.run()

	got := f.diagsWith(diag.ColPlaceholderType)
	if len(got) != 1 {
		t.Fatalf("placeholder diagnostics = %d, want 1", len(got))
	}
	d := got[0]
	if d.Primary != hole {
		t.Fatalf("primary span = %v, want %v", d.Primary, hole)
	}
	if len(d.Fixes) != 1 {
		t.Fatalf("fixes = %d, want 1", len(d.Fixes))
	}
	// No written parameter list, so the fix carries the replacement only.
	if edits := d.Fixes[0].Edits; len(edits) != 1 || edits[0].Span != hole || edits[0].NewText != "T" {
		t.Fatalf("fix edits = %+v", edits)
	}
}

func TestFnPlaceholderGetsNoFix(t *testing.T) {
	f := newFixture(t)
	fn := f.addItem(hir.ItemFn, "f")
	hole := sp(10, 11)
	fn.Sig.Decl.Inputs = []*hir.Ty{inferTy(hole)}
	f.run()

	got := f.diagsWith(diag.ColPlaceholderType)
	if len(got) != 1 {
		t.Fatalf("placeholder diagnostics = %d, want 1", len(got))
	}
	if len(got[0].Fixes) != 0 {
		t.Fatalf("a function signature cannot grow a parameter silently, got fixes %+v", got[0].Fixes)
	}
}

func TestMultiplePlaceholdersOneDiagnostic(t *testing.T) {
	f := newFixture(t)
	s := f.addItem(hir.ItemStruct, "Pair")
	first, second := sp(12, 13), sp(15, 16)
	s.Data = hir.VariantData{
		Kind: ast.VariantTuple,
		Fields: []hir.FieldDef{
			f.field("0", inferTy(first), first),
			f.field("1", inferTy(second), second),
		},
	}
	f.run()

	got := f.diagsWith(diag.ColPlaceholderType)
	if len(got) != 1 {
		t.Fatalf("placeholder diagnostics = %d, want a single grouped one", len(got))
	}
	if got[0].Primary != first || len(got[0].Notes) != 1 || got[0].Notes[0].Span != second {
		t.Fatalf("diagnostic does not name both holes: %+v", got[0])
	}
}

func TestDuplicateFieldDiagnosed(t *testing.T) {
	f := newFixture(t)
	s := f.addItem(hir.ItemStruct, "S")
	u32 := &hir.Ty{Kind: hir.TyPath, QPath: hir.QPath{
		Kind: hir.QPathResolved,
		Path: &hir.Path{
			Res:      resolve.Resolution{Kind: resolve.ResPrimTy, Prim: f.name("u32")},
			Segments: []hir.PathSeg{{Name: f.name("u32")}},
		},
	}}
	firstSpan, dupSpan := sp(10, 11), sp(20, 21)
	s.Data = hir.VariantData{
		Kind: ast.VariantStruct,
		Fields: []hir.FieldDef{
			f.field("x", u32, firstSpan),
			f.field("x", u32, dupSpan),
		},
	}
	f.run()

	got := f.diagsWith(diag.ColDuplicateField)
	if len(got) != 1 {
		t.Fatalf("duplicate-field diagnostics = %d, want 1", len(got))
	}
	d := got[0]
	if d.Primary != dupSpan {
		t.Fatalf("primary span = %v, want the second declaration %v", d.Primary, dupSpan)
	}
	if len(d.Notes) != 1 || d.Notes[0].Span != firstSpan {
		t.Fatalf("missing note pointing at the first declaration: %+v", d)
	}
}

func TestDiscriminantOverflow(t *testing.T) {
	f := newFixture(t)
	e := f.addItem(hir.ItemEnum, "E")
	max := &hir.Expr{
		Kind: hir.ExprLit,
		Data: hir.LitData{Lit: ast.LitInt, Val: f.name("18446744073709551615")},
	}
	overflowSpan := sp(30, 31)
	e.Variants = []hir.Variant{
		{Name: f.name("A"), Disr: max, Span: sp(10, 11)},
		{Name: f.name("B"), Span: overflowSpan},
	}
	f.run()

	got := f.diagsWith(diag.ColDiscriminantOverflow)
	if len(got) != 1 {
		t.Fatalf("overflow diagnostics = %d, want 1", len(got))
	}
	if got[0].Primary != overflowSpan {
		t.Fatalf("primary span = %v, want the implicit variant %v", got[0].Primary, overflowSpan)
	}
}

func TestImplicitDiscriminantsInRangeAreFine(t *testing.T) {
	f := newFixture(t)
	e := f.addItem(hir.ItemEnum, "E")
	ten := &hir.Expr{
		Kind: hir.ExprLit,
		Data: hir.LitData{Lit: ast.LitInt, Val: f.name("10")},
	}
	e.Variants = []hir.Variant{
		{Name: f.name("A")},
		{Name: f.name("B"), Disr: ten},
		{Name: f.name("C")},
	}
	f.run()

	if got := f.diagsWith(diag.ColDiscriminantOverflow); len(got) != 0 {
		t.Fatalf("unexpected overflow diagnostics: %+v", got)
	}
}

func TestSimdTypeInForeignDeclaration(t *testing.T) {
	f := newFixture(t)
	v4 := f.addItem(hir.ItemStruct, "V4")
	v4.Attrs = []ast.Attr{{
		Name: f.name("repr"),
		Args: []ast.AttrArg{{Name: f.name("simd")}},
	}}

	useV4 := func() *hir.Ty {
		return &hir.Ty{Kind: hir.TyPath, Span: sp(40, 42), QPath: hir.QPath{
			Kind: hir.QPathResolved,
			Path: &hir.Path{
				Res: resolve.Resolution{
					Kind:    resolve.ResDef,
					DefKind: resolve.KindStruct,
					Def:     v4.Def,
				},
				Segments: []hir.PathSeg{{Name: v4.Name}},
			},
		}}
	}

	fm := f.addItem(hir.ItemForeignMod, "")
	fm.Abi = "C"
	fi := hir.ForeignItem{
		Def:  f.defs.CreateDefWithParent(fm.Def, f.node(), def.PathData{Kind: def.DataValueNs, Name: f.name("ext")}, def.SpaceLow, source.Span{}),
		Kind: hir.ForeignItemFn,
		Name: f.name("ext"),
		Decl: hir.FnDecl{Inputs: []*hir.Ty{useV4()}},
	}
	fm.ForeignItems = []hir.ForeignItem{fi}
	f.run()

	if got := f.diagsWith(diag.ColSimdFfi); len(got) != 1 {
		t.Fatalf("simd-ffi diagnostics = %d, want 1", len(got))
	}
}

func TestSimdFfiOptInSilencesDiagnostic(t *testing.T) {
	f := newFixture(t)
	v4 := f.addItem(hir.ItemStruct, "V4")
	v4.Attrs = []ast.Attr{{
		Name: f.name("repr"),
		Args: []ast.AttrArg{{Name: f.name("simd")}},
	}}

	fm := f.addItem(hir.ItemForeignMod, "")
	fm.Abi = "C"
	fm.ForeignItems = []hir.ForeignItem{{
		Def:   f.defs.CreateDefWithParent(fm.Def, f.node(), def.PathData{Kind: def.DataValueNs, Name: f.name("ext")}, def.SpaceLow, source.Span{}),
		Kind:  hir.ForeignItemFn,
		Name:  f.name("ext"),
		Attrs: []ast.Attr{{Name: f.name("simd_ffi")}},
		Decl: hir.FnDecl{Inputs: []*hir.Ty{{Kind: hir.TyPath, QPath: hir.QPath{
			Kind: hir.QPathResolved,
			Path: &hir.Path{
				Res: resolve.Resolution{
					Kind:    resolve.ResDef,
					DefKind: resolve.KindStruct,
					Def:     v4.Def,
				},
				Segments: []hir.PathSeg{{Name: v4.Name}},
			},
		}}}},
	}}
	f.run()

	if got := f.diagsWith(diag.ColSimdFfi); len(got) != 0 {
		t.Fatalf("opt-in should silence the diagnostic, got %+v", got)
	}
}

func TestCollectionContinuesPastErrors(t *testing.T) {
	f := newFixture(t)

	bad := f.addItem(hir.ItemStruct, "Bad")
	hole := sp(5, 6)
	bad.Data = hir.VariantData{
		Kind:   ast.VariantTuple,
		Fields: []hir.FieldDef{f.field("0", inferTy(hole), hole)},
	}

	alsoBad := f.addItem(hir.ItemStruct, "AlsoBad")
	u8 := &hir.Ty{Kind: hir.TyPath, QPath: hir.QPath{
		Kind: hir.QPathResolved,
		Path: &hir.Path{
			Res:      resolve.Resolution{Kind: resolve.ResPrimTy, Prim: f.name("u8")},
			Segments: []hir.PathSeg{{Name: f.name("u8")}},
		},
	}}
	alsoBad.Data = hir.VariantData{
		Kind: ast.VariantStruct,
		Fields: []hir.FieldDef{
			f.field("a", u8, sp(20, 21)),
			f.field("a", u8, sp(30, 31)),
		},
	}
	f.run()

	if got := f.diagsWith(diag.ColPlaceholderType); len(got) != 1 {
		t.Fatalf("placeholder diagnostics = %d, want 1", len(got))
	}
	if got := f.diagsWith(diag.ColDuplicateField); len(got) != 1 {
		t.Fatalf("duplicate-field diagnostics = %d, want 1", len(got))
	}
}
