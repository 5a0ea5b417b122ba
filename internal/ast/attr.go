package ast

import (
	"rill/internal/source"
)

// AttrArg is one argument of an attribute: `name = "value"` or a bare
// word (Value left empty).
type AttrArg struct {
	Name  source.StringID
	Value string
	Span  source.Span
}

// Attr is an item attribute: `#[name(args)]`. Collection consumes the
// codegen-relevant ones (inline, no_mangle, link_name, link_ordinal,
// repr); everything else passes through untouched.
type Attr struct {
	ID   NodeID
	Name source.StringID
	Args []AttrArg
	Span source.Span
}
