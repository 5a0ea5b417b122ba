package source

import (
	"slices"

	"golang.org/x/text/unicode/norm"
)

type StringID uint32

const NoStringID StringID = 0

// Interner deduplicates identifier and path-segment names. Names are
// NFC-normalized before interning so that def-path hashing does not
// depend on the encoding the frontend happened to emit.
type Interner struct {
	byID  []string
	index map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": 0},
	}
}

// Intern returns the stable id for s, inserting it on first sight.
func (in *Interner) Intern(s string) StringID {
	if !norm.NFC.IsNormalString(s) {
		s = norm.NFC.String(s)
	}
	if id, ok := in.index[s]; ok {
		return id
	}
	cpy := string([]byte(s))
	id := StringID(len(in.byID))
	in.byID = append(in.byID, cpy)
	in.index[cpy] = id
	return id
}

// Lookup returns the string for an id.
func (in *Interner) Lookup(id StringID) (string, bool) {
	if !in.Has(id) {
		return "", false
	}
	return in.byID[id], true
}

// MustLookup panics on an unknown id.
func (in *Interner) MustLookup(id StringID) string {
	s, ok := in.Lookup(id)
	if !ok {
		panic("source: invalid string ID")
	}
	return s
}

func (in *Interner) Has(id StringID) bool {
	return int(id) < len(in.byID)
}

func (in *Interner) Len() int {
	return len(in.byID)
}

// Snapshot returns a copy of the full table, in id order. Used by the
// astpack codec and the def-path disk cache.
func (in *Interner) Snapshot() []string {
	return slices.Clone(in.byID)
}

// Restore rebuilds an interner from a snapshot, preserving ids.
func Restore(table []string) *Interner {
	in := &Interner{
		byID:  slices.Clone(table),
		index: make(map[string]StringID, len(table)),
	}
	if len(in.byID) == 0 {
		in.byID = []string{""}
	}
	for i, s := range in.byID {
		in.index[s] = StringID(i)
	}
	return in
}
