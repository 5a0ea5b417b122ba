package ast

import (
	"rill/internal/source"
)

type StmtKind uint8

const (
	// StmtLet is `let PAT (: TY)? (= INIT)?;`.
	StmtLet StmtKind = iota
	// StmtExpr is a trailing expression without a semicolon.
	StmtExpr
	// StmtSemi is an expression statement with a semicolon.
	StmtSemi
	// StmtItem is a nested item declaration.
	StmtItem
)

type Stmt struct {
	ID   NodeID
	Kind StmtKind
	Span source.Span

	Pat  PatID
	Ty   TyID
	Init ExprID

	Expr ExprID

	Item ItemID
}

// Block is a `{ ... }` region. Its own NodeID doubles as the target of
// labeled breaks out of catch blocks.
type Block struct {
	ID    NodeID
	Span  source.Span
	Stmts []StmtID
}
