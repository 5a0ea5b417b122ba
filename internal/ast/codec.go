package ast

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"rill/internal/source"
)

// astpackSchemaVersion is bumped whenever the payload layout changes;
// packs with a different schema are rejected, never reinterpreted.
const astpackSchemaVersion uint16 = 1

// astpackPayload mirrors the Builder's arenas plus the string table.
// The frontend serializes a parsed crate into this form; the middle
// tier decodes it and resumes as if the Builder had been populated
// in-process.
type astpackPayload struct {
	Schema   uint16
	NextNode NodeID

	Crate Crate

	Items        []Item
	TraitItems   []TraitItem
	ImplItems    []ImplItem
	ForeignItems []ForeignItem
	Exprs        []Expr
	Stmts        []Stmt
	Blocks       []Block
	Pats         []Pat
	Tys          []Ty
	GenericParams []GenericParam

	Strings []string
}

// EncodePack serializes the builder's crate into astpack bytes.
func EncodePack(b *Builder) ([]byte, error) {
	payload := astpackPayload{
		Schema:       astpackSchemaVersion,
		NextNode:     b.nextNode,
		Crate:        b.Crate,
		Items:        b.Items.Slice(),
		TraitItems:   b.TraitItems.Slice(),
		ImplItems:    b.ImplItems.Slice(),
		ForeignItems: b.ForeignItems.Slice(),
		Exprs:        b.Exprs.Slice(),
		Stmts:        b.Stmts.Slice(),
		Blocks:       b.Blocks.Slice(),
		Pats:         b.Pats.Slice(),
		Tys:          b.Tys.Slice(),
		GenericParams: b.GenericParams.Slice(),
		Strings:      b.Strings.Snapshot(),
	}
	data, err := msgpack.Marshal(&payload)
	if err != nil {
		return nil, fmt.Errorf("ast: encode astpack: %w", err)
	}
	return data, nil
}

// DecodePack rebuilds a Builder from astpack bytes.
func DecodePack(data []byte) (*Builder, error) {
	var payload astpackPayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("ast: decode astpack: %w", err)
	}
	if payload.Schema != astpackSchemaVersion {
		return nil, fmt.Errorf("ast: astpack schema %d, want %d", payload.Schema, astpackSchemaVersion)
	}
	b := NewBuilder(Hints{})
	b.Crate = payload.Crate
	b.nextNode = payload.NextNode
	b.Items.SetSlice(payload.Items)
	b.TraitItems.SetSlice(payload.TraitItems)
	b.ImplItems.SetSlice(payload.ImplItems)
	b.ForeignItems.SetSlice(payload.ForeignItems)
	b.Exprs.SetSlice(payload.Exprs)
	b.Stmts.SetSlice(payload.Stmts)
	b.Blocks.SetSlice(payload.Blocks)
	b.Pats.SetSlice(payload.Pats)
	b.Tys.SetSlice(payload.Tys)
	b.GenericParams.SetSlice(payload.GenericParams)
	b.Strings = source.Restore(payload.Strings)
	return b, nil
}
