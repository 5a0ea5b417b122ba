// Package def maintains the durable identity table for definitions.
//
// A DefIndex is stable across incremental recompilation because it is
// derived from the definition's path (parent chain plus a disambiguated
// path component), not from visit order alone. Every def is created
// before any HIR id referring to it is emitted; hir-id owner resolution
// requires the def to exist already.
package def

import (
	"fmt"

	"fortio.org/safecast"

	"rill/internal/ast"
	"rill/internal/source"
)

// AddressSpace separates ordinary items from type-parameter-like
// synthetic entries (in-band lifetimes, desugared impl-Trait params).
type AddressSpace uint8

const (
	// SpaceLow holds ordinary items.
	SpaceLow AddressSpace = 0
	// SpaceHigh holds type-parameter-like synthetic defs.
	SpaceHigh AddressSpace = 1
)

// DefIndex packs an address space and a 1-based per-space index.
// Zero is the invalid sentinel.
type DefIndex uint32

const NoDefIndex DefIndex = 0

// CrateRootIndex is the def of the crate root, always the first def
// created in the low space.
const CrateRootIndex DefIndex = 1

const spaceBit = 1 << 31

func MakeDefIndex(space AddressSpace, arrayIndex uint32) DefIndex {
	if arrayIndex >= spaceBit {
		panic(fmt.Errorf("def: index %d overflows address space", arrayIndex))
	}
	idx := DefIndex(arrayIndex + 1)
	if space == SpaceHigh {
		idx |= spaceBit
	}
	return idx
}

func (i DefIndex) IsValid() bool { return i != NoDefIndex }

func (i DefIndex) Space() AddressSpace {
	if i&spaceBit != 0 {
		return SpaceHigh
	}
	return SpaceLow
}

// ArrayIndex returns the 0-based position inside the space's table.
func (i DefIndex) ArrayIndex() uint32 {
	return uint32(i&^spaceBit) - 1
}

func (i DefIndex) String() string {
	if !i.IsValid() {
		return "DefIndex(invalid)"
	}
	tag := "lo"
	if i.Space() == SpaceHigh {
		tag = "hi"
	}
	return fmt.Sprintf("DefIndex(%s:%d)", tag, i.ArrayIndex())
}

// PathDataKind classifies the path component a def contributes.
type PathDataKind uint8

const (
	DataCrateRoot PathDataKind = iota
	DataTypeNs
	DataValueNs
	DataLifetimeNs
	DataField
	DataEnumVariant
	DataImpl
	DataTraitItem
	DataClosureExpr
	DataExistentialImplTrait
	DataUniversalImplTrait
	DataAnonConst
	DataMisc
)

func (k PathDataKind) String() string {
	switch k {
	case DataCrateRoot:
		return "crate"
	case DataTypeNs:
		return "type"
	case DataValueNs:
		return "value"
	case DataLifetimeNs:
		return "lifetime"
	case DataField:
		return "field"
	case DataEnumVariant:
		return "variant"
	case DataImpl:
		return "impl"
	case DataTraitItem:
		return "trait-item"
	case DataClosureExpr:
		return "closure"
	case DataExistentialImplTrait:
		return "opaque"
	case DataUniversalImplTrait:
		return "impl-param"
	case DataAnonConst:
		return "const"
	case DataMisc:
		return "misc"
	}
	return "unknown"
}

// PathData is one disambiguated path component.
type PathData struct {
	Kind PathDataKind
	Name source.StringID
	// Disambiguator separates same-named siblings (impls, closures).
	Disambiguator uint32
}

// Key is a def's parent link plus its own path component. Two defs
// never share a key; the table disambiguates on creation.
type Key struct {
	Parent DefIndex
	Data   PathData
}

// Def is one row of the definitions table.
type Def struct {
	Index DefIndex
	Key   Key
	Node  ast.NodeID
	Span  source.Span
}

// Table is the crate's definitions map.
type Table struct {
	spaces   [2][]Def
	nodeToDef map[ast.NodeID]DefIndex
	// nextDisambig tracks used (parent, kind, name) triples.
	nextDisambig map[Key]uint32
	strings      *source.Interner
}

func NewTable(strings *source.Interner) *Table {
	t := &Table{
		nodeToDef:    make(map[ast.NodeID]DefIndex),
		nextDisambig: make(map[Key]uint32),
		strings:      strings,
	}
	return t
}

// CreateCrateRoot installs the root def. Must be the first creation.
func (t *Table) CreateCrateRoot(node ast.NodeID, span source.Span) DefIndex {
	if len(t.spaces[SpaceLow]) != 0 {
		panic("def: crate root created twice")
	}
	return t.CreateDefWithParent(NoDefIndex, node, PathData{Kind: DataCrateRoot}, SpaceLow, span)
}

// CreateDefWithParent allocates a def under parent. Creating a second
// def for the same node is an internal invariant violation.
func (t *Table) CreateDefWithParent(parent DefIndex, node ast.NodeID, data PathData, space AddressSpace, span source.Span) DefIndex {
	if node != ast.NoNodeID {
		if prev, dup := t.nodeToDef[node]; dup {
			panic(fmt.Errorf("def: node %d already has def %s", node, prev))
		}
	}
	// Assign the next free disambiguator for this (parent, data) shape.
	probe := Key{Parent: parent, Data: PathData{Kind: data.Kind, Name: data.Name}}
	data.Disambiguator = t.nextDisambig[probe]
	t.nextDisambig[probe]++

	arr, err := safecast.Conv[uint32](len(t.spaces[space]))
	if err != nil {
		panic(fmt.Errorf("def: table overflow: %w", err))
	}
	index := MakeDefIndex(space, arr)
	t.spaces[space] = append(t.spaces[space], Def{
		Index: index,
		Key:   Key{Parent: parent, Data: data},
		Node:  node,
		Span:  span,
	})
	if node != ast.NoNodeID {
		t.nodeToDef[node] = index
	}
	return index
}

// OptDefIndex returns the def created for a node, if any.
func (t *Table) OptDefIndex(node ast.NodeID) (DefIndex, bool) {
	idx, ok := t.nodeToDef[node]
	return idx, ok
}

// LocalDefID returns the def for a node, panicking when missing; used
// where lowering has already guaranteed creation order.
func (t *Table) LocalDefID(node ast.NodeID) DefIndex {
	idx, ok := t.nodeToDef[node]
	if !ok {
		panic(fmt.Errorf("def: no def for node %d", node))
	}
	return idx
}

// Get returns the table row for an index, or nil.
func (t *Table) Get(index DefIndex) *Def {
	if !index.IsValid() {
		return nil
	}
	space := index.Space()
	arr := index.ArrayIndex()
	if int(arr) >= len(t.spaces[space]) {
		return nil
	}
	return &t.spaces[space][arr]
}

// DefKey returns the key for an index.
func (t *Table) DefKey(index DefIndex) Key {
	d := t.Get(index)
	if d == nil {
		panic(fmt.Errorf("def: unknown index %s", index))
	}
	return d.Key
}

// Parent returns the parent def, or NoDefIndex for the crate root.
func (t *Table) Parent(index DefIndex) DefIndex {
	return t.DefKey(index).Parent
}

// NodeOf returns the AST node a def was created for.
func (t *Table) NodeOf(index DefIndex) ast.NodeID {
	d := t.Get(index)
	if d == nil {
		return ast.NoNodeID
	}
	return d.Node
}

// Len reports the def count of one space.
func (t *Table) Len(space AddressSpace) int {
	return len(t.spaces[space])
}

// DefPath renders the full path of a def, root first, with
// disambiguators on colliding components: `crate::foo::impl#1::bar`.
func (t *Table) DefPath(index DefIndex) string {
	d := t.Get(index)
	if d == nil {
		return "<unknown>"
	}
	var prefix string
	if d.Key.Parent.IsValid() {
		prefix = t.DefPath(d.Key.Parent) + "::"
	}
	return prefix + t.component(d.Key.Data)
}

func (t *Table) component(data PathData) string {
	name := ""
	if data.Name != source.NoStringID && t.strings != nil {
		name, _ = t.strings.Lookup(data.Name)
	}
	if name == "" {
		name = data.Kind.String()
	}
	if data.Disambiguator != 0 {
		return fmt.Sprintf("%s#%d", name, data.Disambiguator)
	}
	return name
}

// Walk visits every def in both spaces in creation order.
func (t *Table) Walk(visit func(*Def)) {
	for space := range t.spaces {
		for i := range t.spaces[space] {
			visit(&t.spaces[space][i])
		}
	}
}
