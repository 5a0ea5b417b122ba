package ast

import (
	"rill/internal/source"
)

type ItemKind uint8

const (
	ItemFn ItemKind = iota
	ItemStruct
	ItemEnum
	ItemUnion
	ItemTrait
	ItemTraitAlias
	ItemImpl
	ItemTyAlias
	ItemExistential
	ItemConst
	ItemStatic
	ItemMod
	ItemForeignMod
	ItemUse
)

// FnParam is one formal parameter of a function.
type FnParam struct {
	ID   NodeID
	Pat  PatID
	Ty   TyID
	Span source.Span
}

// FnDecl is a function's declared signature. Output of 0 means the
// default unit return.
type FnDecl struct {
	Inputs []FnParam
	Output TyID
}

type Unsafety uint8

const (
	Safe Unsafety = iota
	Unsafe
)

type Constness uint8

const (
	NotConst Constness = iota
	Const
)

// FnHeader carries the qualifiers written before `fn`.
type FnHeader struct {
	Unsafety  Unsafety
	Constness Constness
	Abi       string
}

type VariantKind uint8

const (
	// VariantStruct is `{ field: Ty, ... }`.
	VariantStruct VariantKind = iota
	// VariantTuple is `(Ty, ...)`.
	VariantTuple
	// VariantUnit has no fields.
	VariantUnit
)

// FieldDef is one field of a struct, union, or enum variant. Tuple
// fields have a positional name ("0", "1", ...).
type FieldDef struct {
	ID   NodeID
	Name source.StringID
	Ty   TyID
	Span source.Span
}

// VariantData is the field list of a struct-like definition.
type VariantData struct {
	ID     NodeID
	Kind   VariantKind
	Fields []FieldDef
}

// Variant is one enum variant.
type Variant struct {
	ID   NodeID
	Name source.StringID
	Data VariantData
	// Disr is the explicit discriminant expression, if any.
	Disr ExprID
	Span source.Span
}

type ImplPolarity uint8

const (
	ImplPositive ImplPolarity = iota
	// ImplNegative is `impl !Trait for T`.
	ImplNegative
)

type UseKind uint8

const (
	// UseSingle is `use a::b::c;` or `use a::b as d;`.
	UseSingle UseKind = iota
	// UseGlob is `use a::b::*;`.
	UseGlob
)

// Item is a top-level (or module-nested) definition, a flat union
// selected by Kind.
type Item struct {
	ID    NodeID
	Kind  ItemKind
	Name  source.StringID
	Span  source.Span
	Attrs []Attr

	Generics Generics

	// ItemFn.
	Header FnHeader
	Decl   FnDecl
	Body   BlockID

	// ItemStruct, ItemUnion.
	Data VariantData
	// ItemEnum.
	Variants []Variant

	// ItemTrait, ItemTraitAlias, ItemExistential: bound list
	// (supertraits for traits, bounds for the others).
	Bounds []GenericBound
	IsAuto bool
	// ItemTrait.
	TraitItems []TraitItemID

	// ItemImpl.
	Polarity  ImplPolarity
	TraitRef  Path
	TraitRefID NodeID
	SelfTy    TyID
	ImplItems []ImplItemID

	// ItemTyAlias, ItemConst, ItemStatic.
	Ty   TyID
	Init ExprID
	// ItemStatic.
	Mutable bool

	// ItemMod.
	Items []ItemID

	// ItemForeignMod.
	Abi          string
	ForeignItems []ForeignItemID

	// ItemUse.
	UsePath Path
	UseKind UseKind
	Rename  source.StringID
}

type TraitItemKind uint8

const (
	TraitItemMethod TraitItemKind = iota
	TraitItemConst
	TraitItemType
)

// TraitItem is an associated item declared inside a trait.
type TraitItem struct {
	ID    NodeID
	Kind  TraitItemKind
	Name  source.StringID
	Span  source.Span
	Attrs []Attr

	Generics Generics

	// TraitItemMethod.
	Header FnHeader
	Decl   FnDecl
	// Body is the default body, if provided.
	Body BlockID

	// TraitItemConst.
	Ty   TyID
	Init ExprID

	// TraitItemType: own bounds and optional default.
	Bounds  []GenericBound
	Default TyID
}

type ImplItemKind uint8

const (
	ImplItemMethod ImplItemKind = iota
	ImplItemConst
	ImplItemType
)

// ImplItem is an associated item inside an impl block.
type ImplItem struct {
	ID    NodeID
	Kind  ImplItemKind
	Name  source.StringID
	Span  source.Span
	Attrs []Attr

	Generics Generics

	Header FnHeader
	Decl   FnDecl
	Body   BlockID

	Ty   TyID
	Init ExprID
}

type ForeignItemKind uint8

const (
	ForeignItemFn ForeignItemKind = iota
	ForeignItemStatic
	ForeignItemType
)

// ForeignItem is a declaration inside an `extern { ... }` block.
type ForeignItem struct {
	ID    NodeID
	Kind  ForeignItemKind
	Name  source.StringID
	Span  source.Span
	Attrs []Attr

	Generics Generics
	Decl     FnDecl

	Ty      TyID
	Mutable bool
}
