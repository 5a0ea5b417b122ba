package mir

import (
	"fmt"

	"rill/internal/def"
	"rill/internal/source"
	"rill/internal/ty"
)

// BodyBuilder allocates the pieces of a Body in the required layout:
// return place first, then parameters, then everything else. Argument
// slots lock once the first non-argument local exists.
type BodyBuilder struct {
	body       *Body
	argsClosed bool
}

func NewBodyBuilder(d def.DefIndex, span source.Span, retTy ty.TypeID) *BodyBuilder {
	b := &Body{
		Def:   d,
		Span:  span,
		Phase: MirPhaseBuild,
		Scopes: []SourceScopeData{{Span: span}},
		Locals: []LocalDecl{{
			Mutable: true,
			Ty:      retTy,
			Span:    span,
			Scope:   OutermostScope,
		}},
	}
	return &BodyBuilder{body: b}
}

// AddArg appends a parameter slot. Arguments must all be declared
// before any variable or temporary; the index layout is what gives
// LocalKind its meaning.
func (bb *BodyBuilder) AddArg(name source.StringID, t ty.TypeID, mutable bool, span source.Span) Local {
	if bb.argsClosed {
		panic(fmt.Errorf("mir: argument declared after non-argument local in %v", bb.body.Def))
	}
	bb.body.ArgCount++
	return bb.addLocal(LocalDecl{
		Mutable: mutable,
		Ty:      t,
		UserVar: true,
		Name:    name,
		Span:    span,
		Scope:   OutermostScope,
	})
}

// AddVar appends a user-variable slot.
func (bb *BodyBuilder) AddVar(name source.StringID, t ty.TypeID, mutable bool, span source.Span, scope SourceScope) Local {
	bb.argsClosed = true
	return bb.addLocal(LocalDecl{
		Mutable: mutable,
		Ty:      t,
		UserVar: true,
		Name:    name,
		Span:    span,
		Scope:   scope,
	})
}

// AddTemp appends a compiler temporary.
func (bb *BodyBuilder) AddTemp(t ty.TypeID, span source.Span, scope SourceScope) Local {
	bb.argsClosed = true
	return bb.addLocal(LocalDecl{
		Mutable: true,
		Ty:      t,
		Span:    span,
		Scope:   scope,
	})
}

func (bb *BodyBuilder) addLocal(decl LocalDecl) Local {
	l := Local(len(bb.body.Locals))
	bb.body.Locals = append(bb.body.Locals, decl)
	return l
}

// NewBlock appends an empty, unterminated block.
func (bb *BodyBuilder) NewBlock(cleanup bool) BasicBlock {
	id := BasicBlock(len(bb.body.Blocks))
	bb.body.Blocks = append(bb.body.Blocks, BasicBlockData{IsCleanup: cleanup})
	return id
}

// NewScope appends a child scope under parent.
func (bb *BodyBuilder) NewScope(parent SourceScope, span source.Span) SourceScope {
	id := SourceScope(len(bb.body.Scopes))
	bb.body.Scopes = append(bb.body.Scopes, SourceScopeData{
		Span:      span,
		Parent:    parent,
		HasParent: true,
	})
	return id
}

// Push appends a statement to block.
func (bb *BodyBuilder) Push(block BasicBlock, s Statement) {
	d := &bb.body.Blocks[block]
	d.Statements = append(d.Statements, s)
}

// Assign pushes a plain assignment statement.
func (bb *BodyBuilder) Assign(block BasicBlock, place Place, rv Rvalue, span source.Span) {
	bb.Push(block, Statement{
		Kind:   StmtAssign,
		Span:   span,
		Assign: AssignStmt{Place: place, Rval: rv},
	})
}

// Terminate sets the block's terminator. Re-terminating a block is a
// construction bug.
func (bb *BodyBuilder) Terminate(block BasicBlock, t Terminator) {
	d := &bb.body.Blocks[block]
	if d.Terminated() {
		panic(fmt.Errorf("mir: bb%d terminated twice", block))
	}
	d.Terminator = t
}

// Body hands the built body over.
func (bb *BodyBuilder) Body() *Body {
	return bb.body
}
