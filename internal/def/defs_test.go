package def

import (
	"testing"

	"rill/internal/ast"
	"rill/internal/source"
)

func TestDefIndexPacking(t *testing.T) {
	lo := MakeDefIndex(SpaceLow, 7)
	hi := MakeDefIndex(SpaceHigh, 7)
	if lo == hi {
		t.Fatal("spaces collide")
	}
	if lo.Space() != SpaceLow || hi.Space() != SpaceHigh {
		t.Errorf("space round-trip failed: %v %v", lo.Space(), hi.Space())
	}
	if lo.ArrayIndex() != 7 || hi.ArrayIndex() != 7 {
		t.Errorf("array index round-trip failed: %d %d", lo.ArrayIndex(), hi.ArrayIndex())
	}
	if NoDefIndex.IsValid() {
		t.Error("sentinel counts as valid")
	}
}

func newTable() (*Table, *source.Interner) {
	in := source.NewInterner()
	return NewTable(in), in
}

func TestCreateAndLookup(t *testing.T) {
	tbl, in := newTable()
	root := tbl.CreateCrateRoot(1, source.Span{})
	if root != CrateRootIndex {
		t.Fatalf("crate root index = %v", root)
	}

	item := tbl.CreateDefWithParent(root, 2, PathData{Kind: DataTypeNs, Name: in.Intern("Foo")}, SpaceLow, source.Span{})
	got, ok := tbl.OptDefIndex(2)
	if !ok || got != item {
		t.Errorf("OptDefIndex(2) = %v %v", got, ok)
	}
	if tbl.Parent(item) != root {
		t.Errorf("parent of item = %v", tbl.Parent(item))
	}
	if _, ok := tbl.OptDefIndex(99); ok {
		t.Error("unknown node resolved")
	}
}

func TestDoubleDefPanics(t *testing.T) {
	tbl, in := newTable()
	root := tbl.CreateCrateRoot(1, source.Span{})
	tbl.CreateDefWithParent(root, 2, PathData{Kind: DataTypeNs, Name: in.Intern("Foo")}, SpaceLow, source.Span{})

	defer func() {
		if recover() == nil {
			t.Error("second def for the same node did not panic")
		}
	}()
	tbl.CreateDefWithParent(root, 2, PathData{Kind: DataValueNs, Name: in.Intern("foo")}, SpaceLow, source.Span{})
}

func TestDisambiguation(t *testing.T) {
	tbl, _ := newTable()
	root := tbl.CreateCrateRoot(1, source.Span{})
	a := tbl.CreateDefWithParent(root, 2, PathData{Kind: DataImpl}, SpaceLow, source.Span{})
	b := tbl.CreateDefWithParent(root, 3, PathData{Kind: DataImpl}, SpaceLow, source.Span{})
	if tbl.DefKey(a).Data.Disambiguator == tbl.DefKey(b).Data.Disambiguator {
		t.Error("sibling impls share a disambiguator")
	}
	if tbl.DefPath(b) != "crate::impl#1" {
		t.Errorf("DefPath = %q", tbl.DefPath(b))
	}
}

func TestHighSpaceSynthetics(t *testing.T) {
	tbl, in := newTable()
	root := tbl.CreateCrateRoot(1, source.Span{})
	lt := tbl.CreateDefWithParent(root, ast.NoNodeID, PathData{Kind: DataLifetimeNs, Name: in.Intern("'a")}, SpaceHigh, source.Span{})
	if lt.Space() != SpaceHigh {
		t.Errorf("synthetic lifetime in space %v", lt.Space())
	}
	if tbl.Len(SpaceHigh) != 1 || tbl.Len(SpaceLow) != 1 {
		t.Errorf("space lens = %d/%d", tbl.Len(SpaceLow), tbl.Len(SpaceHigh))
	}
}
