package mir

import (
	"encoding/binary"
	"fmt"

	"fortio.org/safecast"

	"rill/internal/ty"
)

type ProjKind uint8

const (
	ProjDeref ProjKind = iota
	ProjField
	ProjIndex
	ProjConstantIndex
	ProjSubslice
	ProjDowncast
)

// ProjElem is one step of a place projection.
type ProjElem struct {
	Kind ProjKind

	// ProjField.
	Field   uint32
	FieldTy ty.TypeID

	// ProjIndex: the index lives in a local.
	Index Local

	// ProjConstantIndex.
	Offset    uint32
	MinLength uint32
	FromEnd   bool

	// ProjSubslice.
	From uint32
	To   uint32

	// ProjDowncast.
	Variant uint32
}

// ProjectionID is a handle to an interned projection sequence. Zero is
// the empty projection.
type ProjectionID uint32

const NoProjection ProjectionID = 0

// ProjInterner structurally shares projection sequences: two places
// spelling the same projection hold the same ID and the same backing
// slice. Sharing saves memory only; nothing relies on identity.
type ProjInterner struct {
	seqs  [][]ProjElem
	index map[string]ProjectionID
}

func NewProjInterner() *ProjInterner {
	return &ProjInterner{
		seqs:  [][]ProjElem{nil},
		index: map[string]ProjectionID{"": NoProjection},
	}
}

func (in *ProjInterner) Intern(elems []ProjElem) ProjectionID {
	key := projKey(elems)
	if id, ok := in.index[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.seqs))
	if err != nil {
		panic(fmt.Errorf("mir: projection table overflow: %w", err))
	}
	id := ProjectionID(n)
	owned := make([]ProjElem, len(elems))
	copy(owned, elems)
	in.seqs = append(in.seqs, owned)
	in.index[key] = id
	return id
}

// Elems returns the shared backing slice; callers must not mutate it.
func (in *ProjInterner) Elems(id ProjectionID) []ProjElem {
	return in.seqs[id]
}

func projKey(elems []ProjElem) string {
	buf := make([]byte, 0, len(elems)*29)
	var tmp [4]byte
	put := func(v uint32) {
		binary.LittleEndian.PutUint32(tmp[:], v)
		buf = append(buf, tmp[:]...)
	}
	for _, e := range elems {
		buf = append(buf, byte(e.Kind))
		put(e.Field)
		put(uint32(e.FieldTy))
		put(uint32(e.Index))
		put(e.Offset)
		put(e.MinLength)
		if e.FromEnd {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		put(e.From)
		put(e.To)
		put(e.Variant)
	}
	return string(buf)
}

// Place names a memory location: a local plus an interned projection
// path off it.
type Place struct {
	Local Local
	Proj  ProjectionID
}

// PlaceOf is the bare-local place.
func PlaceOf(l Local) Place {
	return Place{Local: l, Proj: NoProjection}
}

// IsPrefixOf reports whether p's projection path is a leading prefix
// of other's on the same local. A prefix place covers the memory its
// extensions name, which is the aliasing relation borrow analyses
// consume.
func (p Place) IsPrefixOf(other Place, in *ProjInterner) bool {
	if p.Local != other.Local {
		return false
	}
	pe, oe := in.Elems(p.Proj), in.Elems(other.Proj)
	if len(pe) > len(oe) {
		return false
	}
	for i := range pe {
		if pe[i] != oe[i] {
			return false
		}
	}
	return true
}
