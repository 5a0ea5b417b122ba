package hir

import (
	"rill/internal/ast"
	"rill/internal/diag"
	"rill/internal/resolve"
	"rill/internal/source"
)

// newExpr builds a desugared node with a fresh hir id.
func (l *Lowerer) newExpr(kind ExprKind, span source.Span, data ExprData) *Expr {
	return &Expr{ID: l.nextFreshID(), Kind: kind, Span: span, Data: data}
}

func (l *Lowerer) errExpr(span source.Span) *Expr {
	return l.newExpr(ExprErr, span, ErrData{})
}

// stdPath builds a path expression (or type path) to a well-known
// library item, resolved through the resolver's string-path hook.
func (l *Lowerer) stdPath(span source.Span, isValue bool, components ...string) QPath {
	res := l.res.ResolveStrPath(span, "std", components, isValue)
	segs := make([]PathSeg, len(components))
	for i, c := range components {
		segs[i] = PathSeg{Name: l.b.Name(c), InferTypes: true}
	}
	return QPath{Kind: QPathResolved, Path: &Path{Span: span, Res: res, Segments: segs}}
}

func (l *Lowerer) stdPathExpr(span source.Span, components ...string) *Expr {
	return l.newExpr(ExprPath, span, PathData{QPath: l.stdPath(span, true, components...)})
}

// freshBinding mints a by-value binding pattern with no surface
// counterpart, returning the ast node local references resolve to.
func (l *Lowerer) freshBinding(span source.Span, name source.StringID, mode ast.BindingMode) (*Pat, ast.NodeID) {
	node := l.b.NextNodeID()
	p := &Pat{ID: l.lowerID(node), Kind: PatBinding, Span: span, Mode: mode, Name: name}
	return p, node
}

// localRef references a binding minted by freshBinding.
func (l *Lowerer) localRef(span source.Span, name source.StringID, node ast.NodeID) *Expr {
	return l.newExpr(ExprPath, span, PathData{QPath: QPath{Kind: QPathResolved, Path: &Path{
		Span:     span,
		Res:      resolve.Resolution{Kind: resolve.ResLocal, Local: node},
		Segments: []PathSeg{{Name: name}},
	}}})
}

func (l *Lowerer) wildPat(span source.Span) *Pat {
	return &Pat{ID: l.nextFreshID(), Kind: PatWild, Span: span}
}

func (l *Lowerer) unitExpr(span source.Span) *Expr {
	return l.newExpr(ExprTuple, span, TupleData{})
}

func (l *Lowerer) blockAsExpr(blk *Block, span source.Span) *Expr {
	return l.newExpr(ExprBlock, span, BlockData{Block: blk})
}

func (l *Lowerer) lowerExpr(eid ast.ExprID) *Expr {
	e := l.b.Exprs.Get(eid)
	if e == nil {
		return nil
	}
	id := l.lowerID(e.ID)
	span := e.Span

	switch e.Kind {
	case ast.ExprLit:
		return &Expr{ID: id, Kind: ExprLit, Span: span, Data: LitData{Lit: e.Lit, Val: e.LitVal}}

	case ast.ExprPath:
		return &Expr{ID: id, Kind: ExprPath, Span: span, Data: PathData{
			QPath: QPath{Kind: QPathResolved, Path: l.lowerPath(e.ID, e.Path)},
		}}

	case ast.ExprUnary:
		return &Expr{ID: id, Kind: ExprUnary, Span: span, Data: UnaryData{Op: e.UnOp, Sub: l.lowerExpr(e.Lhs)}}

	case ast.ExprBinary:
		return &Expr{ID: id, Kind: ExprBinary, Span: span, Data: BinaryData{
			Op: e.BinOp, Lhs: l.lowerExpr(e.Lhs), Rhs: l.lowerExpr(e.Rhs),
		}}

	case ast.ExprAssign:
		return &Expr{ID: id, Kind: ExprAssign, Span: span, Data: AssignData{
			Lhs: l.lowerExpr(e.Lhs), Rhs: l.lowerExpr(e.Rhs),
		}}

	case ast.ExprCall:
		var args []*Expr
		for _, a := range e.Args {
			args = append(args, l.lowerExpr(a))
		}
		return &Expr{ID: id, Kind: ExprCall, Span: span, Data: CallData{Fn: l.lowerExpr(e.Lhs), Args: args}}

	case ast.ExprField:
		return &Expr{ID: id, Kind: ExprField, Span: span, Data: FieldData{Base: l.lowerExpr(e.Lhs), Name: e.FieldName}}

	case ast.ExprIndex:
		return &Expr{ID: id, Kind: ExprIndex, Span: span, Data: IndexData{Base: l.lowerExpr(e.Lhs), Index: l.lowerExpr(e.Rhs)}}

	case ast.ExprBlock:
		return &Expr{ID: id, Kind: ExprBlock, Span: span, Data: BlockData{Block: l.lowerBlock(e.Block, false)}}

	case ast.ExprIf:
		data := IfData{Cond: l.lowerExpr(e.Lhs), Then: l.blockAsExpr(l.lowerBlock(e.Block, false), span)}
		if e.Else.IsValid() {
			data.Else = l.lowerExpr(e.Else)
		}
		return &Expr{ID: id, Kind: ExprIf, Span: span, Data: data}

	case ast.ExprIfLet:
		return l.lowerIfLet(e, id)

	case ast.ExprWhile:
		return l.lowerWhile(e, id)

	case ast.ExprWhileLet:
		return l.lowerWhileLet(e, id)

	case ast.ExprForLoop:
		return l.lowerForLoop(e, id)

	case ast.ExprLoop:
		var body *Block
		l.withLoopScope(id, e.Label.Name, func() {
			body = l.lowerBlock(e.Block, false)
		})
		return &Expr{ID: id, Kind: ExprLoop, Span: span, Data: LoopData{Body: body, Source: LoopPlain}}

	case ast.ExprMatch:
		scrut := l.lowerExpr(e.Lhs)
		var arms []Arm
		for i := range e.Arms {
			arms = append(arms, l.lowerArm(&e.Arms[i]))
		}
		return &Expr{ID: id, Kind: ExprMatch, Span: span, Data: MatchData{Scrutinee: scrut, Arms: arms, Source: MatchNormal}}

	case ast.ExprTry:
		return l.lowerTry(e, id)

	case ast.ExprCatch:
		return l.lowerCatch(e, id)

	case ast.ExprRange:
		return l.lowerRange(e, id)

	case ast.ExprBreak:
		data := BreakData{Dest: l.lowerJumpDest(e.Label, span, "break")}
		if e.Lhs.IsValid() {
			data.Value = l.lowerExpr(e.Lhs)
		}
		return &Expr{ID: id, Kind: ExprBreak, Span: span, Data: data}

	case ast.ExprContinue:
		return &Expr{ID: id, Kind: ExprContinue, Span: span, Data: ContinueData{
			Dest: l.lowerJumpDest(e.Label, span, "continue"),
		}}

	case ast.ExprReturn:
		data := ReturnData{}
		if e.Lhs.IsValid() {
			data.Value = l.lowerExpr(e.Lhs)
		}
		return &Expr{ID: id, Kind: ExprReturn, Span: span, Data: data}

	case ast.ExprClosure:
		return l.lowerClosure(e, id)

	case ast.ExprAddrOf:
		return &Expr{ID: id, Kind: ExprAddrOf, Span: span, Data: AddrOfData{Mutable: e.Mutable, Sub: l.lowerExpr(e.Lhs)}}

	case ast.ExprStructLit:
		return l.lowerStructLit(e, id)

	case ast.ExprTuple:
		var items []*Expr
		for _, it := range e.Items {
			items = append(items, l.lowerExpr(it))
		}
		return &Expr{ID: id, Kind: ExprTuple, Span: span, Data: TupleData{Items: items}}

	case ast.ExprArray:
		var items []*Expr
		for _, it := range e.Items {
			items = append(items, l.lowerExpr(it))
		}
		return &Expr{ID: id, Kind: ExprArray, Span: span, Data: ArrayData{Items: items}}

	case ast.ExprRepeat:
		return &Expr{ID: id, Kind: ExprRepeat, Span: span, Data: RepeatData{
			Elem: l.lowerExpr(e.Lhs), Count: l.lowerExpr(e.Rhs),
		}}

	case ast.ExprParen:
		inner := l.lowerExpr(e.Lhs)
		if inner == nil {
			return l.errExpr(span)
		}
		return inner

	case ast.ExprYield:
		l.isGeneratorBody = true
		data := YieldData{}
		if e.Lhs.IsValid() {
			data.Value = l.lowerExpr(e.Lhs)
		}
		return &Expr{ID: id, Kind: ExprYield, Span: span, Data: data}
	}

	return l.errExpr(span)
}

func (l *Lowerer) lowerArm(arm *ast.MatchArm) Arm {
	out := Arm{}
	for _, pid := range arm.Pats {
		out.Pats = append(out.Pats, l.lowerPat(pid))
	}
	if arm.Guard.IsValid() {
		out.Guard = l.lowerExpr(arm.Guard)
	}
	out.Body = l.lowerExpr(arm.Body)
	return out
}

// lowerIfLet desugars `if let PAT = EXPR { THEN } else { ELSE }` into
// `match EXPR { PAT => THEN, _ => ELSE }`.
func (l *Lowerer) lowerIfLet(e *ast.Expr, id HirID) *Expr {
	scrut := l.lowerExpr(e.Lhs)
	thenArm := Arm{
		Pats: []*Pat{l.lowerPat(e.Pat)},
		Body: l.blockAsExpr(l.lowerBlock(e.Block, false), e.Span),
	}
	elseArm := Arm{Pats: []*Pat{l.wildPat(e.Span)}}
	if e.Else.IsValid() {
		elseArm.Body = l.lowerExpr(e.Else)
	} else {
		elseArm.Body = l.blockAsExpr(&Block{ID: l.nextFreshID(), Span: e.Span}, e.Span)
	}
	return &Expr{ID: id, Kind: ExprMatch, Span: e.Span, Data: MatchData{
		Scrutinee: scrut,
		Arms:      []Arm{thenArm, elseArm},
		Source:    MatchIfLet,
	}}
}

// lowerWhile desugars `while COND { BODY }` into
// `loop { if COND { BODY } else { break } }`, with the condition marked
// so unlabeled break/continue inside it are rejected.
func (l *Lowerer) lowerWhile(e *ast.Expr, id HirID) *Expr {
	var ifExpr *Expr
	l.withLoopScope(id, e.Label.Name, func() {
		var cond *Expr
		l.withLoopCondition(func() { cond = l.lowerExpr(e.Lhs) })
		thenExpr := l.blockAsExpr(l.lowerBlock(e.Block, false), e.Span)
		brk := l.newExpr(ExprBreak, e.Span, BreakData{Dest: Destination{LabelName: e.Label.Name, Target: id}})
		elseExpr := l.blockAsExpr(&Block{ID: l.nextFreshID(), Span: e.Span, Expr: brk}, e.Span)
		ifExpr = l.newExpr(ExprIf, e.Span, IfData{Cond: cond, Then: thenExpr, Else: elseExpr})
	})
	body := &Block{ID: l.nextFreshID(), Span: e.Span, Expr: ifExpr}
	return &Expr{ID: id, Kind: ExprLoop, Span: e.Span, Data: LoopData{Body: body, Source: LoopWhile}}
}

// lowerWhileLet desugars `while let PAT = EXPR { BODY }` into
// `loop { match EXPR { PAT => BODY, _ => break } }`. The scrutinee
// lowers inside the loop scope, so `break` in the condition targets
// this loop.
func (l *Lowerer) lowerWhileLet(e *ast.Expr, id HirID) *Expr {
	var match *Expr
	l.withLoopScope(id, e.Label.Name, func() {
		scrut := l.lowerExpr(e.Lhs)
		bodyArm := Arm{
			Pats: []*Pat{l.lowerPat(e.Pat)},
			Body: l.blockAsExpr(l.lowerBlock(e.Block, false), e.Span),
		}
		brk := l.newExpr(ExprBreak, e.Span, BreakData{Dest: Destination{LabelName: e.Label.Name, Target: id}})
		breakArm := Arm{Pats: []*Pat{l.wildPat(e.Span)}, Body: brk}
		match = l.newExpr(ExprMatch, e.Span, MatchData{
			Scrutinee: scrut,
			Arms:      []Arm{bodyArm, breakArm},
			Source:    MatchWhileLet,
		})
	})
	body := &Block{ID: l.nextFreshID(), Span: e.Span, Expr: match}
	return &Expr{ID: id, Kind: ExprLoop, Span: e.Span, Data: LoopData{Body: body, Source: LoopWhileLet}}
}

// lowerForLoop desugars `for PAT in HEAD { BODY }` into
//
//	{
//	    let mut iter = IntoIterator::into_iter(HEAD);
//	    loop {
//	        let PAT = match Iterator::next(&mut iter) {
//	            Some(val) => val,
//	            None => break,
//	        };
//	        BODY
//	    };
//	}
//
// The head is evaluated once, outside the loop scope; the whole block
// evaluates to unit.
func (l *Lowerer) lowerForLoop(e *ast.Expr, id HirID) *Expr {
	span := e.Span
	head := l.lowerExpr(e.Lhs)

	intoIter := l.stdPathExpr(span, "iter", "IntoIterator", "into_iter")
	intoCall := l.newExpr(ExprCall, span, CallData{Fn: intoIter, Args: []*Expr{head}})

	iterName := l.freshName("iter")
	iterPat, iterNode := l.freshBinding(span, iterName, ast.BindByValueMut)
	iterLet := Stmt{ID: l.nextFreshID(), Kind: StmtLet, Span: span, Let: &LetStmt{
		Pat:    iterPat,
		Init:   intoCall,
		Source: LetForLoopDesugar,
	}}

	loopID := l.nextFreshID()
	var loopBody *Block
	l.withLoopScope(loopID, e.Label.Name, func() {
		next := l.stdPathExpr(span, "iter", "Iterator", "next")
		iterRef := l.newExpr(ExprAddrOf, span, AddrOfData{
			Mutable: true,
			Sub:     l.localRef(span, iterName, iterNode),
		})
		nextCall := l.newExpr(ExprCall, span, CallData{Fn: next, Args: []*Expr{iterRef}})

		valName := l.freshName("val")
		valPat, valNode := l.freshBinding(span, valName, ast.BindByValue)
		somePat := &Pat{
			ID:    l.nextFreshID(),
			Kind:  PatTupleStruct,
			Span:  span,
			QPath: l.stdPath(span, true, "option", "Option", "Some"),
			Pats:  []*Pat{valPat},
		}
		nonePat := &Pat{
			ID:    l.nextFreshID(),
			Kind:  PatPath,
			Span:  span,
			QPath: l.stdPath(span, true, "option", "Option", "None"),
		}
		brk := l.newExpr(ExprBreak, span, BreakData{Dest: Destination{Target: loopID}})
		match := l.newExpr(ExprMatch, span, MatchData{
			Scrutinee: nextCall,
			Arms: []Arm{
				{Pats: []*Pat{somePat}, Body: l.localRef(span, valName, valNode)},
				{Pats: []*Pat{nonePat}, Body: brk},
			},
			Source: MatchForLoop,
		})

		patLet := Stmt{ID: l.nextFreshID(), Kind: StmtLet, Span: span, Let: &LetStmt{
			Pat:    l.lowerPat(e.Pat),
			Init:   match,
			Source: LetForLoopDesugar,
		}}

		bodyExpr := l.blockAsExpr(l.lowerBlock(e.Block, false), span)
		bodyStmt := Stmt{ID: l.nextFreshID(), Kind: StmtSemi, Span: span, Expr: bodyExpr}

		loopBody = &Block{ID: l.nextFreshID(), Span: span, Stmts: []Stmt{patLet, bodyStmt}}
	})
	loop := &Expr{ID: loopID, Kind: ExprLoop, Span: span, Data: LoopData{Body: loopBody, Source: LoopForLoop}}
	loopStmt := Stmt{ID: l.nextFreshID(), Kind: StmtSemi, Span: span, Expr: loop}

	outer := &Block{ID: l.nextFreshID(), Span: span, Stmts: []Stmt{iterLet, loopStmt}}
	return &Expr{ID: id, Kind: ExprBlock, Span: span, Data: BlockData{Block: outer}}
}

// lowerTry desugars `EXPR?` into
//
//	match Try::into_result(EXPR) {
//	    Ok(val) => val,
//	    Err(err) => <break-to-catch or return> Try::from_error(From::from(err)),
//	}
//
// The break-vs-return choice is made here, against the catch-scope
// stack as it stands at this point of the walk.
func (l *Lowerer) lowerTry(e *ast.Expr, id HirID) *Expr {
	span := e.Span
	sub := l.lowerExpr(e.Lhs)

	intoResult := l.stdPathExpr(span, "ops", "Try", "into_result")
	scrut := l.newExpr(ExprCall, span, CallData{Fn: intoResult, Args: []*Expr{sub}})

	okName := l.freshName("val")
	okBind, okNode := l.freshBinding(span, okName, ast.BindByValue)
	okPat := &Pat{
		ID:    l.nextFreshID(),
		Kind:  PatTupleStruct,
		Span:  span,
		QPath: l.stdPath(span, true, "result", "Result", "Ok"),
		Pats:  []*Pat{okBind},
	}
	okArm := Arm{Pats: []*Pat{okPat}, Body: l.localRef(span, okName, okNode)}

	errName := l.freshName("err")
	errBind, errNode := l.freshBinding(span, errName, ast.BindByValue)
	errPat := &Pat{
		ID:    l.nextFreshID(),
		Kind:  PatTupleStruct,
		Span:  span,
		QPath: l.stdPath(span, true, "result", "Result", "Err"),
		Pats:  []*Pat{errBind},
	}
	from := l.newExpr(ExprCall, span, CallData{
		Fn:   l.stdPathExpr(span, "convert", "From", "from"),
		Args: []*Expr{l.localRef(span, errName, errNode)},
	})
	fromError := l.newExpr(ExprCall, span, CallData{
		Fn:   l.stdPathExpr(span, "ops", "Try", "from_error"),
		Args: []*Expr{from},
	})

	var escape *Expr
	if n := len(l.catchScopes); n > 0 {
		escape = l.newExpr(ExprBreak, span, BreakData{
			Dest:  Destination{Target: l.catchScopes[n-1]},
			Value: fromError,
		})
	} else {
		escape = l.newExpr(ExprReturn, span, ReturnData{Value: fromError})
	}
	errArm := Arm{Pats: []*Pat{errPat}, Body: escape}

	return &Expr{ID: id, Kind: ExprMatch, Span: span, Data: MatchData{
		Scrutinee: scrut,
		Arms:      []Arm{okArm, errArm},
		Source:    MatchTry,
	}}
}

// lowerCatch lowers a catch block: its block becomes the break target
// for every `?` lowered inside it.
func (l *Lowerer) lowerCatch(e *ast.Expr, id HirID) *Expr {
	astBlock := l.b.Blocks.Get(e.Block)
	if astBlock == nil {
		return l.errExpr(e.Span)
	}
	bid := l.lowerID(astBlock.ID)
	var blk *Block
	l.withCatchScope(bid, func() {
		blk = l.lowerBlock(e.Block, true)
	})
	return &Expr{ID: id, Kind: ExprBlock, Span: e.Span, Data: BlockData{Block: blk}}
}

// lowerRange maps the range forms onto the library range types: four
// half-open/unbounded struct literals, RangeToInclusive for `..=b`,
// and a RangeInclusive::new call for `a..=b`. A closed range with no
// end cannot be represented and is a hard error.
func (l *Lowerer) lowerRange(e *ast.Expr, id HirID) *Expr {
	span := e.Span
	hasStart := e.Lhs.IsValid()
	hasEnd := e.Rhs.IsValid()

	if e.Limits == ast.RangeClosed {
		if !hasEnd {
			diag.Error(l.rep, diag.LowInclusiveRangeNoEnd, span, "inclusive range with no end")
			return l.errExpr(span)
		}
		if hasStart {
			newFn := l.stdPathExpr(span, "ops", "RangeInclusive", "new")
			return &Expr{ID: id, Kind: ExprCall, Span: span, Data: CallData{
				Fn:   newFn,
				Args: []*Expr{l.lowerExpr(e.Lhs), l.lowerExpr(e.Rhs)},
			}}
		}
		return l.rangeStructLit(id, span, "RangeToInclusive", nil, l.lowerExpr(e.Rhs))
	}

	switch {
	case hasStart && hasEnd:
		return l.rangeStructLit(id, span, "Range", l.lowerExpr(e.Lhs), l.lowerExpr(e.Rhs))
	case hasStart:
		return l.rangeStructLit(id, span, "RangeFrom", l.lowerExpr(e.Lhs), nil)
	case hasEnd:
		return l.rangeStructLit(id, span, "RangeTo", nil, l.lowerExpr(e.Rhs))
	default:
		return l.rangeStructLit(id, span, "RangeFull", nil, nil)
	}
}

func (l *Lowerer) rangeStructLit(id HirID, span source.Span, name string, start, end *Expr) *Expr {
	var fields []StructLitField
	if start != nil {
		fields = append(fields, StructLitField{
			ID: l.nextFreshID(), Name: l.b.Name("start"), Value: start, Span: span,
		})
	}
	if end != nil {
		fields = append(fields, StructLitField{
			ID: l.nextFreshID(), Name: l.b.Name("end"), Value: end, Span: span,
		})
	}
	return &Expr{ID: id, Kind: ExprStructLit, Span: span, Data: StructLitData{
		QPath:  l.stdPath(span, false, "ops", name),
		Fields: fields,
	}}
}

// lowerJumpDest resolves a break/continue target against the loop
// scope stack. Unresolved labels and jumps with no enclosing loop
// produce the error destination, a recoverable condition.
func (l *Lowerer) lowerJumpDest(label ast.Label, span source.Span, what string) Destination {
	if label.Name != source.NoStringID {
		for i := len(l.loopScopes) - 1; i >= 0; i-- {
			if l.loopScopes[i].label == label.Name {
				return Destination{LabelName: label.Name, Target: l.loopScopes[i].id}
			}
		}
		diag.Error(l.rep, diag.LowUnresolvedLabel, label.Span, "use of undeclared label")
		return Destination{LabelName: label.Name, IsErr: true}
	}
	if l.isInLoopCondition {
		diag.Error(l.rep, diag.LowBreakInLoopCondition, span,
			"`"+what+"` without a label is not allowed inside a loop condition")
		return Destination{IsErr: true}
	}
	if len(l.loopScopes) == 0 {
		diag.Error(l.rep, diag.LowBreakOutsideLoop, span, "`"+what+"` outside of a loop")
		return Destination{IsErr: true}
	}
	return Destination{Target: l.loopScopes[len(l.loopScopes)-1].id}
}

func (l *Lowerer) lowerClosure(e *ast.Expr, id HirID) *Expr {
	decl := FnDecl{}
	l.withElisionMode(ElisionPassThrough, func() {
		l.withImplTraitCtx(implTraitDisallowed, l.implTraitFn, func() {
			for _, p := range e.ClosureParams {
				if p.Ty.IsValid() {
					decl.Inputs = append(decl.Inputs, l.lowerTy(p.Ty))
				} else {
					decl.Inputs = append(decl.Inputs, &Ty{ID: l.nextFreshID(), Kind: TyInfer, Span: p.Span})
				}
			}
			if e.ClosureRet.IsValid() {
				decl.Output = l.lowerTy(e.ClosureRet)
			}
		})
	})

	var body *Body
	l.withNewScopes(false, func() {
		b := &Body{}
		for _, p := range e.ClosureParams {
			b.Params = append(b.Params, l.lowerPat(p.Pat))
		}
		b.Value = l.lowerExpr(e.Body)
		if b.Value == nil {
			b.Value = l.errExpr(e.Span)
		}
		b.IsGenerator = l.isGeneratorBody
		b.ID = BodyID{Hir: b.Value.ID}
		body = b
	})
	l.crate.AddBody(body, e.Span)
	if d, ok := l.defs.OptDefIndex(e.ID); ok {
		l.crate.ClosureBodies[d] = body.ID
	}

	return &Expr{ID: id, Kind: ExprClosure, Span: e.Span, Data: ClosureData{
		Decl:        decl,
		Body:        body.ID,
		IsGenerator: body.IsGenerator,
	}}
}

func (l *Lowerer) lowerStructLit(e *ast.Expr, id HirID) *Expr {
	data := StructLitData{
		QPath: QPath{Kind: QPathResolved, Path: l.lowerPath(e.ID, e.Path)},
	}
	for i := range e.Fields {
		f := &e.Fields[i]
		data.Fields = append(data.Fields, StructLitField{
			ID:    l.lowerID(f.ID),
			Name:  f.Name,
			Value: l.lowerExpr(f.Value),
			Span:  f.Span,
		})
	}
	if e.Base.IsValid() {
		data.Base = l.lowerExpr(e.Base)
	}
	return &Expr{ID: id, Kind: ExprStructLit, Span: e.Span, Data: data}
}

func (l *Lowerer) lowerBlock(bid ast.BlockID, targeted bool) *Block {
	b := l.b.Blocks.Get(bid)
	if b == nil {
		return &Block{ID: l.nextFreshID(), TargetedByBreak: targeted}
	}
	out := &Block{ID: l.lowerID(b.ID), Span: b.Span, TargetedByBreak: targeted}
	for i, sid := range b.Stmts {
		s := l.b.Stmts.Get(sid)
		if s == nil {
			continue
		}
		if s.Kind == ast.StmtExpr && i == len(b.Stmts)-1 {
			out.Expr = l.lowerExpr(s.Expr)
			continue
		}
		out.Stmts = append(out.Stmts, l.lowerStmt(s))
	}
	return out
}

func (l *Lowerer) lowerBlockExpr(bid ast.BlockID, span source.Span) *Expr {
	blk := l.lowerBlock(bid, false)
	if !blk.Span.Empty() {
		span = blk.Span
	}
	return l.newExpr(ExprBlock, span, BlockData{Block: blk})
}

func (l *Lowerer) lowerStmt(s *ast.Stmt) Stmt {
	out := Stmt{ID: l.lowerID(s.ID), Span: s.Span}
	switch s.Kind {
	case ast.StmtLet:
		out.Kind = StmtLet
		ls := &LetStmt{Pat: l.lowerPat(s.Pat)}
		if s.Ty.IsValid() {
			ls.Ty = l.lowerTy(s.Ty)
		}
		if s.Init.IsValid() {
			ls.Init = l.lowerExpr(s.Init)
		}
		out.Let = ls
	case ast.StmtExpr:
		out.Kind = StmtExpr
		out.Expr = l.lowerExpr(s.Expr)
	case ast.StmtSemi:
		out.Kind = StmtSemi
		out.Expr = l.lowerExpr(s.Expr)
	case ast.StmtItem:
		out.Kind = StmtItem
		if item := l.b.Items.Get(s.Item); item != nil {
			out.Item = ItemID{Hir: l.itemHirID(item.ID)}
			l.lowerItem(item)
		}
	}
	return out
}
