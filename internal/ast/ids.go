package ast

type (
	// NodeID is the crate-wide ast-id: a dense counter assigned to every
	// node the frontend produces, in creation order. Lowering maps each
	// NodeID to at most one HIR id.
	NodeID uint32

	// Per-class arena indices.
	ItemID        uint32
	TraitItemID   uint32
	ImplItemID    uint32
	ForeignItemID uint32
	ExprID        uint32
	StmtID        uint32
	BlockID       uint32
	PatID         uint32
	TyID          uint32
	GenericParamID uint32
)

const (
	NoNodeID        NodeID         = 0
	NoItemID        ItemID         = 0
	NoTraitItemID   TraitItemID    = 0
	NoImplItemID    ImplItemID     = 0
	NoForeignItemID ForeignItemID  = 0
	NoExprID        ExprID         = 0
	NoStmtID        StmtID         = 0
	NoBlockID       BlockID        = 0
	NoPatID         PatID          = 0
	NoTyID          TyID           = 0
	NoGenericParamID GenericParamID = 0
)

func (id NodeID) IsValid() bool         { return id != NoNodeID }
func (id ItemID) IsValid() bool         { return id != NoItemID }
func (id TraitItemID) IsValid() bool    { return id != NoTraitItemID }
func (id ImplItemID) IsValid() bool     { return id != NoImplItemID }
func (id ForeignItemID) IsValid() bool  { return id != NoForeignItemID }
func (id ExprID) IsValid() bool         { return id != NoExprID }
func (id StmtID) IsValid() bool         { return id != NoStmtID }
func (id BlockID) IsValid() bool        { return id != NoBlockID }
func (id PatID) IsValid() bool          { return id != NoPatID }
func (id TyID) IsValid() bool           { return id != NoTyID }
func (id GenericParamID) IsValid() bool { return id != NoGenericParamID }
