package resolve

import (
	"testing"

	"rill/internal/def"
	"rill/internal/source"
)

func newResolver() *TableResolver {
	in := source.NewInterner()
	tbl := def.NewTable(in)
	tbl.CreateCrateRoot(1, source.Span{})
	return NewTableResolver(tbl, in)
}

func TestStrPathStable(t *testing.T) {
	r := newResolver()
	a := r.ResolveStrPath(source.Span{}, "std", []string{"ops", "Range"}, false)
	b := r.ResolveStrPath(source.Span{}, "std", []string{"ops", "Range"}, false)
	if a.Def != b.Def {
		t.Errorf("same path minted two defs: %v vs %v", a.Def, b.Def)
	}
}

func TestStrPathSharesPrefix(t *testing.T) {
	r := newResolver()
	r.ResolveStrPath(source.Span{}, "std", []string{"ops", "Range"}, false)
	before := r.defs.Len(def.SpaceLow)
	r.ResolveStrPath(source.Span{}, "std", []string{"ops", "RangeTo"}, false)
	after := r.defs.Len(def.SpaceLow)
	if after != before+1 {
		t.Errorf("prefix not shared: %d defs added", after-before)
	}
}

func TestValueAndTypeNamespacesDistinct(t *testing.T) {
	r := newResolver()
	ty := r.ResolveStrPath(source.Span{}, "std", []string{"ops", "Try"}, false)
	val := r.ResolveStrPath(source.Span{}, "std", []string{"ops", "Try"}, true)
	if ty.Def == val.Def {
		t.Error("type and value namespaces share a def")
	}
	if ty.DefKind != KindStruct || val.DefKind != KindFn {
		t.Errorf("def kinds = %v/%v", ty.DefKind, val.DefKind)
	}
}

func TestResolveHirPathByNamespace(t *testing.T) {
	r := newResolver()
	tyRes := Resolution{Kind: ResDef, DefKind: KindStruct, Def: def.MakeDefIndex(def.SpaceLow, 3)}
	valRes := Resolution{Kind: ResDef, DefKind: KindFn, Def: def.MakeDefIndex(def.SpaceLow, 4)}
	r.RecordImport(5, PerNS{Type: &tyRes, Value: &valRes})
	r.RecordImport(6, PerNS{Type: &tyRes})
	r.Record(7, valRes)

	if got := r.ResolveHirPath(5, false); got.Def != tyRes.Def {
		t.Errorf("type namespace = %+v", got)
	}
	if got := r.ResolveHirPath(5, true); got.Def != valRes.Def {
		t.Errorf("value namespace = %+v", got)
	}
	if got := r.ResolveHirPath(6, true); got.Kind != ResErr {
		t.Errorf("type-only import answered in the value namespace: %+v", got)
	}
	// A plain recorded path resolves the same way either side.
	if got := r.ResolveHirPath(7, false); got.Def != valRes.Def {
		t.Errorf("recorded path = %+v", got)
	}
	if got := r.ResolveHirPath(8, true); got.Kind != ResErr {
		t.Errorf("unrecorded node must yield the sentinel, got %+v", got)
	}
}

func TestRecordedResolutions(t *testing.T) {
	r := newResolver()
	res := Resolution{Kind: ResLocal, Local: 42}
	r.Record(7, res)
	got, ok := r.GetResolution(7)
	if !ok || got.Local != 42 {
		t.Errorf("GetResolution = %+v %v", got, ok)
	}
	if _, ok := r.GetResolution(8); ok {
		t.Error("unrecorded node resolved")
	}
}
