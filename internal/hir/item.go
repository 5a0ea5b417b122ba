package hir

import (
	"rill/internal/ast"
	"rill/internal/def"
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

// FieldDef is a lowered struct/union/variant field.
type FieldDef struct {
	ID   HirID
	Def  def.DefIndex
	Name source.StringID
	Ty   *Ty
	Span source.Span
}

type VariantData struct {
	ID     HirID
	Kind   ast.VariantKind
	Fields []FieldDef
}

type Variant struct {
	ID   HirID
	Def  def.DefIndex
	Name source.StringID
	Data VariantData
	Disr *Expr
	Span source.Span
}

// ExistOrigin records why an existential item exists.
type ExistOrigin uint8

const (
	// ExistWritten is a surface `existential type` item.
	ExistWritten ExistOrigin = iota
	// ExistReturnImplTrait was synthesized from return-position
	// `impl Trait`.
	ExistReturnImplTrait
)

// Item is a lowered item, a flat union selected by Kind. Its HirID is
// always {owner, 0}.
type Item struct {
	ID    ItemID
	Def   def.DefIndex
	Kind  ItemKind
	Name  source.StringID
	Span  source.Span
	Attrs []ast.Attr

	Generics Generics

	// ItemFn.
	Sig  FnSig
	Body BodyID

	// ItemStruct, ItemUnion.
	Data VariantData
	// ItemEnum.
	Variants []Variant

	// ItemTrait, ItemTraitAlias, ItemExistential.
	Bounds []GenericBound
	IsAuto bool
	// ItemTrait.
	TraitItems []TraitItemID

	// ItemImpl.
	Polarity ast.ImplPolarity
	TraitRef *TraitRef
	SelfTy   *Ty
	Impls    []ImplItemID

	// ItemTyAlias, ItemConst, ItemStatic.
	Ty      *Ty
	Mutable bool

	// ItemExistential.
	Origin ExistOrigin

	// ItemMod.
	Items []ItemID

	// ItemForeignMod.
	Abi          string
	ForeignItems []ForeignItem

	// ItemUse.
	UsePath *Path
	UseKind ast.UseKind
}

type TraitItemKind uint8

const (
	TraitItemMethod TraitItemKind = iota
	TraitItemConst
	TraitItemType
)

type TraitItem struct {
	ID    TraitItemID
	Def   def.DefIndex
	Kind  TraitItemKind
	Name  source.StringID
	Span  source.Span
	Attrs []ast.Attr

	Generics Generics

	Sig FnSig
	// Body is valid only when a default body was provided.
	Body    BodyID
	HasBody bool

	Ty *Ty

	Bounds  []GenericBound
	Default *Ty
}

type ImplItemKind uint8

const (
	ImplItemMethod ImplItemKind = iota
	ImplItemConst
	ImplItemType
)

type ImplItem struct {
	ID    ImplItemID
	Def   def.DefIndex
	Kind  ImplItemKind
	Name  source.StringID
	Span  source.Span
	Attrs []ast.Attr

	Generics Generics

	Sig  FnSig
	Body BodyID

	Ty *Ty
}

type ForeignItemKind uint8

const (
	ForeignItemFn ForeignItemKind = iota
	ForeignItemStatic
	ForeignItemType
)

// ForeignItem is a declaration from an extern block, stored inline in
// its owning ItemForeignMod.
type ForeignItem struct {
	ID    HirID
	Def   def.DefIndex
	Kind  ForeignItemKind
	Name  source.StringID
	Span  source.Span
	Attrs []ast.Attr

	Decl FnDecl

	Ty      *Ty
	Mutable bool
}

// Body is an owned function or constant body.
type Body struct {
	ID          BodyID
	Params      []*Pat
	Value       *Expr
	IsGenerator bool
}

// MacroDef is an exported macro, carried through lowering unexpanded.
type MacroDef struct {
	Name source.StringID
	Span source.Span
}
