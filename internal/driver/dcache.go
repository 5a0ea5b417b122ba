package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"rill/internal/def"
	"rill/internal/source"
)

// Schema version for the cached payload; bump on layout changes so
// stale entries miss instead of misdecoding.
const defPathSchemaVersion uint16 = 1

// Digest keys cache entries by astpack content.
type Digest [sha256.Size]byte

// PackDigest hashes astpack bytes.
func PackDigest(data []byte) Digest {
	return sha256.Sum256(data)
}

// DefPathRow is one definition flattened for storage: enough to check
// that a def-id means the same path it meant last run.
type DefPathRow struct {
	Index         uint32
	Space         uint8
	Parent        uint32
	Kind          uint8
	Name          string
	Disambiguator uint32
}

// DefPathPayload is the cached def-path table of one crate.
type DefPathPayload struct {
	Schema uint16
	Crate  string
	Rows   []DefPathRow
}

// SnapshotDefPaths flattens a def table in creation order.
func SnapshotDefPaths(crate string, defs *def.Table, names *source.Interner) *DefPathPayload {
	p := &DefPathPayload{Schema: defPathSchemaVersion, Crate: crate}
	defs.Walk(func(d *def.Def) {
		name := ""
		if s, ok := names.Lookup(d.Key.Data.Name); ok {
			name = s
		}
		p.Rows = append(p.Rows, DefPathRow{
			Index:         d.Index.ArrayIndex(),
			Space:         uint8(d.Index.Space()),
			Parent:        uint32(d.Key.Parent),
			Kind:          uint8(d.Key.Data.Kind),
			Name:          name,
			Disambiguator: d.Key.Data.Disambiguator,
		})
	})
	return p
}

// DiskCache persists def-path payloads keyed by astpack digest, so a
// rebuild from identical input reproduces identical def-ids and a
// changed input is detected instead of silently renumbered.
// Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// OpenDiskCache initializes a cache rooted at dir, creating it as
// needed.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(filepath.Join(dir, "defs"), 0o755); err != nil {
		return nil, fmt.Errorf("driver: open cache: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "defs", hex.EncodeToString(key[:])+".mp")
}

// Put writes a payload atomically: encode to a temp file, then rename
// into place.
func (c *DiskCache) Put(key Digest, payload *DefPathPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Get reads a payload; a missing entry or a schema mismatch is a miss,
// not an error.
func (c *DiskCache) Get(key Digest) (*DefPathPayload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload DefPathPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != defPathSchemaVersion {
		return nil, false, nil
	}
	return &payload, true, nil
}

// DropAll removes every cached entry, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.RemoveAll(filepath.Join(c.dir, "defs")); err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(c.dir, "defs"), 0o755)
}
