package driver

import (
	"reflect"
	"testing"

	"rill/internal/def"
	"rill/internal/source"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	key := PackDigest([]byte("crate contents"))
	put := &DefPathPayload{
		Schema: defPathSchemaVersion,
		Crate:  "demo",
		Rows: []DefPathRow{
			{Index: 1, Kind: 1, Name: "demo"},
			{Index: 2, Parent: 1, Kind: 4, Name: "Widget", Disambiguator: 0},
		},
	}
	if err := cache.Put(key, put); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := cache.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("entry missing after put")
	}
	if got.Crate != put.Crate || !reflect.DeepEqual(got.Rows, put.Rows) {
		t.Errorf("payload changed across the cache:\n got %+v\nwant %+v", got, put)
	}
}

func TestDiskCacheMissIsNotAnError(t *testing.T) {
	cache, err := OpenDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, ok, err := cache.Get(PackDigest([]byte("never stored")))
	if err != nil {
		t.Fatalf("miss reported as error: %v", err)
	}
	if ok || got != nil {
		t.Errorf("phantom hit: %+v", got)
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	cache, err := OpenDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := PackDigest([]byte("x"))
	if err := cache.Put(key, &DefPathPayload{Schema: defPathSchemaVersion}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if _, ok, _ := cache.Get(key); ok {
		t.Error("entry survived DropAll")
	}
	// The cache stays usable after a drop.
	if err := cache.Put(key, &DefPathPayload{Schema: defPathSchemaVersion}); err != nil {
		t.Fatalf("put after drop: %v", err)
	}
	if _, ok, _ := cache.Get(key); !ok {
		t.Error("cache dead after DropAll")
	}
}

func TestSnapshotDefPaths(t *testing.T) {
	names := source.NewInterner()
	defs := def.NewTable(names)
	root := defs.CreateCrateRoot(1, source.Span{})
	defs.CreateDefWithParent(root, 2, def.PathData{
		Kind: def.DataTypeNs,
		Name: names.Intern("Widget"),
	}, def.SpaceLow, source.Span{})

	p := SnapshotDefPaths("demo", defs, names)
	if p.Schema != defPathSchemaVersion || p.Crate != "demo" {
		t.Fatalf("header = %+v", p)
	}
	if len(p.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(p.Rows))
	}
	if p.Rows[1].Name != "Widget" {
		t.Errorf("row name = %q", p.Rows[1].Name)
	}
	if p.Rows[1].Parent != uint32(root) {
		t.Errorf("row parent = %d, want %d", p.Rows[1].Parent, root)
	}
}
