package ty

import (
	"encoding/binary"
	"fmt"

	"fortio.org/safecast"

	"rill/internal/source"
)

// Builtins stores TypeIDs the engine reaches for constantly.
type Builtins struct {
	Error TypeID
	Unit  TypeID
	Never TypeID
	Infer TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Composite descriptors embed the handles of their parts, so two
// structurally equal types always share one TypeID and equality on
// handles is O(1).
type Interner struct {
	types []Type
	index map[Type]TypeID

	lists     [][]TypeID
	listIndex map[string]ListID

	preds     [][]Predicate
	predIndex map[string]PredsID

	builtins Builtins
}

// PredsID is a handle to an interned predicate slice. Zero is the
// empty slice.
type PredsID uint32

const EmptyPredsID PredsID = 0

func NewInterner() *Interner {
	in := &Interner{
		index:     make(map[Type]TypeID, 64),
		listIndex: make(map[string]ListID, 16),
		predIndex: make(map[string]PredsID, 16),
	}
	in.lists = append(in.lists, nil)
	in.preds = append(in.preds, nil)
	in.types = append(in.types, Type{}) // reserve 0 as invalid sentinel
	in.builtins.Error = in.Intern(Type{Kind: KindError})
	in.builtins.Unit = in.Intern(Type{Kind: KindTuple, Args: EmptyListID})
	in.builtins.Never = in.Intern(Type{Kind: KindNever})
	in.builtins.Infer = in.Intern(Type{Kind: KindInfer})
	return in
}

func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if id, ok := in.index[t]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("ty: type table overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics on an invalid TypeID.
func (in *Interner) MustLookup(id TypeID) Type {
	t, ok := in.Lookup(id)
	if !ok {
		panic(fmt.Errorf("ty: invalid TypeID %d", id))
	}
	return t
}

// InternList stores a TypeID slice, returning a shared handle.
func (in *Interner) InternList(ids []TypeID) ListID {
	if len(ids) == 0 {
		return EmptyListID
	}
	key := listKey(ids)
	if id, ok := in.listIndex[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.lists))
	if err != nil {
		panic(fmt.Errorf("ty: list table overflow: %w", err))
	}
	id := ListID(n)
	stored := make([]TypeID, len(ids))
	copy(stored, ids)
	in.lists = append(in.lists, stored)
	in.listIndex[key] = id
	return id
}

// List returns the interned slice; callers must not mutate it.
func (in *Interner) List(id ListID) []TypeID {
	if int(id) >= len(in.lists) {
		return nil
	}
	return in.lists[id]
}

// InternPreds stores a predicate slice, returning a shared handle so
// downstream passes can compare predicate sets by handle.
func (in *Interner) InternPreds(ps []Predicate) PredsID {
	if len(ps) == 0 {
		return EmptyPredsID
	}
	key := predsKey(ps)
	if id, ok := in.predIndex[key]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(in.preds))
	if err != nil {
		panic(fmt.Errorf("ty: predicate table overflow: %w", err))
	}
	id := PredsID(n)
	stored := make([]Predicate, len(ps))
	copy(stored, ps)
	in.preds = append(in.preds, stored)
	in.predIndex[key] = id
	return id
}

// Preds returns the interned predicate slice.
func (in *Interner) Preds(id PredsID) []Predicate {
	if int(id) >= len(in.preds) {
		return nil
	}
	return in.preds[id]
}

func listKey(ids []TypeID) string {
	buf := make([]byte, 0, len(ids)*4)
	var tmp [4]byte
	for _, id := range ids {
		binary.LittleEndian.PutUint32(tmp[:], uint32(id))
		buf = append(buf, tmp[:]...)
	}
	return string(buf)
}

func predsKey(ps []Predicate) string {
	buf := make([]byte, 0, len(ps)*28)
	var tmp [4]byte
	put := func(v uint32) {
		binary.LittleEndian.PutUint32(tmp[:], v)
		buf = append(buf, tmp[:]...)
	}
	for _, p := range ps {
		buf = append(buf, byte(p.Kind))
		put(uint32(p.Trait.Def))
		put(uint32(p.Trait.Args))
		put(uint32(p.Ty))
		buf = append(buf, byte(p.Sub.Kind))
		put(uint32(p.Sub.Name))
		buf = append(buf, byte(p.Sup.Kind))
		put(uint32(p.Sup.Name))
		put(uint32(p.RhsTy))
	}
	return string(buf)
}

// Prim interns a primitive type by name.
func (in *Interner) Prim(name source.StringID) TypeID {
	return in.Intern(Type{Kind: KindPrim, Name: name})
}
