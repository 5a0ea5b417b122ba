package hir

import (
	"testing"

	"rill/internal/ast"
	"rill/internal/def"
	"rill/internal/diag"
	"rill/internal/resolve"
	"rill/internal/source"
)

type fixture struct {
	b    *ast.Builder
	defs *def.Table
	res  *resolve.TableResolver
	bag  *diag.Bag
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := ast.NewBuilder(ast.Hints{})
	defs := def.NewTable(b.Strings)
	return &fixture{
		b:    b,
		defs: defs,
		res:  resolve.NewTableResolver(defs, b.Strings),
		bag:  diag.NewBag(128),
	}
}

func (f *fixture) lower(opts Options) *Crate {
	return LowerCrate(f.b, f.res, diag.BagReporter{Bag: f.bag}, opts)
}

func (f *fixture) intLit(v string) ast.ExprID {
	return f.b.AddExpr(ast.Expr{Kind: ast.ExprLit, Lit: ast.LitInt, LitVal: f.b.Name(v)})
}

// localUse builds a path expression resolving to a binding pattern.
func (f *fixture) localUse(name string, patNode ast.NodeID) ast.ExprID {
	node := f.b.NextNodeID()
	f.res.Record(node, resolve.Resolution{Kind: resolve.ResLocal, Local: patNode})
	return f.b.AddExpr(ast.Expr{
		ID:   node,
		Kind: ast.ExprPath,
		Path: f.b.PathOf(source.Span{}, name),
	})
}

// errCall builds `name()` with the callee resolving to the shared
// error sentinel, which lowers without complaint.
func (f *fixture) errCall(name string) ast.ExprID {
	node := f.b.NextNodeID()
	f.res.Record(node, resolve.ErrResolution())
	callee := f.b.AddExpr(ast.Expr{
		ID:   node,
		Kind: ast.ExprPath,
		Path: f.b.PathOf(source.Span{}, name),
	})
	return f.b.AddExpr(ast.Expr{Kind: ast.ExprCall, Lhs: callee})
}

func (f *fixture) fnWith(name string, stmts ...ast.StmtID) ast.ItemID {
	blk := f.b.AddBlock(ast.Block{Stmts: stmts})
	return f.b.AddItem(ast.Item{Kind: ast.ItemFn, Name: f.b.Name(name), Body: blk})
}

func (f *fixture) onlyFn(t *testing.T, c *Crate) *Item {
	t.Helper()
	for _, id := range c.SortedItemIDs() {
		if c.Items[id].Kind == ItemFn {
			return c.Items[id]
		}
	}
	t.Fatal("no fn item lowered")
	return nil
}

func fnBodyBlock(t *testing.T, c *Crate, it *Item) *Block {
	t.Helper()
	body := c.Body(it.Body)
	if body == nil {
		t.Fatal("fn has no body")
	}
	bd, ok := body.Value.Data.(BlockData)
	if !ok {
		t.Fatalf("fn body value is %T, want BlockData", body.Value.Data)
	}
	return bd.Block
}

func asMatch(t *testing.T, e *Expr, src MatchSource) MatchData {
	t.Helper()
	md, ok := e.Data.(MatchData)
	if !ok {
		t.Fatalf("expr is %v, want match", e.Kind)
	}
	if md.Source != src {
		t.Fatalf("match source = %d, want %d", md.Source, src)
	}
	return md
}

func lastSegName(f *fixture, q QPath) string {
	if q.Path == nil || len(q.Path.Segments) == 0 {
		return ""
	}
	s, _ := f.b.Strings.Lookup(q.Path.Segments[len(q.Path.Segments)-1].Name)
	return s
}

func TestForLoopDesugar(t *testing.T) {
	f := newFixture(t)

	rng := f.b.AddExpr(ast.Expr{
		Kind:   ast.ExprRange,
		Lhs:    f.intLit("0"),
		Rhs:    f.intLit("3"),
		Limits: ast.RangeHalfOpen,
	})
	patNode := f.b.NextNodeID()
	xPat := f.b.AddPat(ast.Pat{ID: patNode, Kind: ast.PatIdent, Name: f.b.Name("x")})
	use := f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: f.localUse("x", patNode)})
	body := f.b.AddBlock(ast.Block{Stmts: []ast.StmtID{use}})
	forE := f.b.AddExpr(ast.Expr{Kind: ast.ExprForLoop, Lhs: rng, Pat: xPat, Block: body})
	f.fnWith("walk", f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: forE}))

	c := f.lower(Options{})
	if f.bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", f.bag.Items())
	}

	blk := fnBodyBlock(t, c, f.onlyFn(t, c))
	outer, ok := blk.Stmts[0].Expr.Data.(BlockData)
	if !ok {
		t.Fatalf("for loop lowered to %v, want block", blk.Stmts[0].Expr.Kind)
	}

	// The desugared block is { let iter = into_iter(range); loop; }
	// and evaluates to unit.
	if outer.Block.Expr != nil {
		t.Fatal("for-loop block must evaluate to unit")
	}
	if len(outer.Block.Stmts) != 2 {
		t.Fatalf("for-loop block has %d stmts, want 2", len(outer.Block.Stmts))
	}

	iterLet := outer.Block.Stmts[0]
	if iterLet.Kind != StmtLet || iterLet.Let.Source != LetForLoopDesugar {
		t.Fatal("first stmt must be the desugared iterator let")
	}
	call, ok := iterLet.Let.Init.Data.(CallData)
	if !ok {
		t.Fatal("iterator let must be initialized with into_iter call")
	}
	if got := lastSegName(f, call.Fn.Data.(PathData).QPath); got != "into_iter" {
		t.Fatalf("iterator init calls %q, want into_iter", got)
	}
	if _, ok := call.Args[0].Data.(StructLitData); !ok {
		t.Fatal("into_iter argument must be the lowered range literal")
	}

	loop, ok := outer.Block.Stmts[1].Expr.Data.(LoopData)
	if !ok || loop.Source != LoopForLoop {
		t.Fatal("second stmt must be the for-loop loop")
	}

	patLet := loop.Body.Stmts[0]
	if patLet.Kind != StmtLet || patLet.Let.Source != LetForLoopDesugar {
		t.Fatal("loop must rebind the pattern each iteration")
	}
	if patLet.Let.Pat.Kind != PatBinding {
		t.Fatal("rebinding must carry the surface pattern")
	}
	md := asMatch(t, patLet.Let.Init, MatchForLoop)
	if len(md.Arms) != 2 {
		t.Fatalf("next() match has %d arms, want 2", len(md.Arms))
	}
	next, ok := md.Scrutinee.Data.(CallData)
	if !ok {
		t.Fatal("match scrutinee must be the next() call")
	}
	if got := lastSegName(f, next.Fn.Data.(PathData).QPath); got != "next" {
		t.Fatalf("scrutinee calls %q, want next", got)
	}
	if md.Arms[0].Pats[0].Kind != PatTupleStruct {
		t.Fatal("first arm must destructure Some(val)")
	}
	brk, ok := md.Arms[1].Body.Data.(BreakData)
	if !ok {
		t.Fatal("None arm must break")
	}
	if brk.Dest.Target != outer.Block.Stmts[1].Expr.ID {
		t.Fatal("None arm must break out of the for loop itself")
	}
}

func TestTryWithoutCatchReturns(t *testing.T) {
	f := newFixture(t)

	try := f.b.AddExpr(ast.Expr{Kind: ast.ExprTry, Lhs: f.errCall("foo")})
	f.fnWith("run", f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: try}))

	c := f.lower(Options{})
	blk := fnBodyBlock(t, c, f.onlyFn(t, c))
	md := asMatch(t, blk.Stmts[0].Expr, MatchTry)

	scrut := md.Scrutinee.Data.(CallData)
	if got := lastSegName(f, scrut.Fn.Data.(PathData).QPath); got != "into_result" {
		t.Fatalf("try scrutinee calls %q, want into_result", got)
	}

	// Ok(v) => v
	if md.Arms[0].Pats[0].Kind != PatTupleStruct {
		t.Fatal("Ok arm must destructure")
	}
	if _, ok := md.Arms[0].Body.Data.(PathData); !ok {
		t.Fatal("Ok arm must yield the bound value")
	}

	// Err(e) => return from_error(from(e))
	ret, ok := md.Arms[1].Body.Data.(ReturnData)
	if !ok {
		t.Fatalf("Err arm with no enclosing catch must return, got %v", md.Arms[1].Body.Kind)
	}
	fe := ret.Value.Data.(CallData)
	if got := lastSegName(f, fe.Fn.Data.(PathData).QPath); got != "from_error" {
		t.Fatalf("Err arm returns %q(..), want from_error", got)
	}
	inner := fe.Args[0].Data.(CallData)
	if got := lastSegName(f, inner.Fn.Data.(PathData).QPath); got != "from" {
		t.Fatalf("error converts through %q, want from", got)
	}
}

func TestTryInsideCatchBreaks(t *testing.T) {
	f := newFixture(t)

	try := f.b.AddExpr(ast.Expr{Kind: ast.ExprTry, Lhs: f.errCall("foo")})
	tryStmt := f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: try})
	catchBlkNode := f.b.NextNodeID()
	catchBlk := f.b.AddBlock(ast.Block{ID: catchBlkNode, Stmts: []ast.StmtID{tryStmt}})
	catch := f.b.AddExpr(ast.Expr{Kind: ast.ExprCatch, Block: catchBlk})
	f.fnWith("run", f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: catch}))

	c := f.lower(Options{})
	blk := fnBodyBlock(t, c, f.onlyFn(t, c))
	catchData, ok := blk.Stmts[0].Expr.Data.(BlockData)
	if !ok {
		t.Fatal("catch must lower to a block expression")
	}
	if !catchData.Block.TargetedByBreak {
		t.Fatal("catch block must be marked as a break target")
	}

	md := asMatch(t, catchData.Block.Stmts[0].Expr, MatchTry)
	brk, ok := md.Arms[1].Body.Data.(BreakData)
	if !ok {
		t.Fatalf("Err arm inside catch must break, got %v", md.Arms[1].Body.Kind)
	}
	if brk.Dest.Target != catchData.Block.ID {
		t.Fatalf("break target = %s, want catch block %s", brk.Dest.Target, catchData.Block.ID)
	}
	if brk.Value == nil {
		t.Fatal("break to catch must carry the converted error")
	}
}

func TestInclusiveRangeLowersToCall(t *testing.T) {
	f := newFixture(t)

	rng := f.b.AddExpr(ast.Expr{
		Kind:   ast.ExprRange,
		Lhs:    f.intLit("1"),
		Rhs:    f.intLit("5"),
		Limits: ast.RangeClosed,
	})
	f.fnWith("run", f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: rng}))

	c := f.lower(Options{})
	blk := fnBodyBlock(t, c, f.onlyFn(t, c))
	call, ok := blk.Stmts[0].Expr.Data.(CallData)
	if !ok {
		t.Fatalf("a..=b lowered to %v, want constructor call", blk.Stmts[0].Expr.Kind)
	}
	if got := lastSegName(f, call.Fn.Data.(PathData).QPath); got != "new" {
		t.Fatalf("closed range constructs via %q, want new", got)
	}
	if len(call.Args) != 2 {
		t.Fatalf("closed range call has %d args, want 2", len(call.Args))
	}
}

func TestHalfOpenRangesAreStructLiterals(t *testing.T) {
	cases := []struct {
		name     string
		hasStart bool
		hasEnd   bool
		limits   ast.RangeLimits
		want     string
	}{
		{"full", true, true, ast.RangeHalfOpen, "Range"},
		{"from", true, false, ast.RangeHalfOpen, "RangeFrom"},
		{"to", false, true, ast.RangeHalfOpen, "RangeTo"},
		{"unbounded", false, false, ast.RangeHalfOpen, "RangeFull"},
		{"to_inclusive", false, true, ast.RangeClosed, "RangeToInclusive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			e := ast.Expr{Kind: ast.ExprRange, Limits: tc.limits}
			if tc.hasStart {
				e.Lhs = f.intLit("1")
			}
			if tc.hasEnd {
				e.Rhs = f.intLit("9")
			}
			rng := f.b.AddExpr(e)
			f.fnWith("run", f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: rng}))

			c := f.lower(Options{})
			if f.bag.HasErrors() {
				t.Fatalf("unexpected errors: %v", f.bag.Items())
			}
			blk := fnBodyBlock(t, c, f.onlyFn(t, c))
			sl, ok := blk.Stmts[0].Expr.Data.(StructLitData)
			if !ok {
				t.Fatalf("range lowered to %v, want struct literal", blk.Stmts[0].Expr.Kind)
			}
			if got := lastSegName(f, sl.QPath); got != tc.want {
				t.Fatalf("range type = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestInclusiveRangeWithNoEndIsHardError(t *testing.T) {
	f := newFixture(t)

	rng := f.b.AddExpr(ast.Expr{
		Kind:   ast.ExprRange,
		Lhs:    f.intLit("1"),
		Limits: ast.RangeClosed,
	})
	f.fnWith("run", f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: rng}))

	c := f.lower(Options{})
	if !f.bag.HasErrors() {
		t.Fatal("inclusive range with no end must be a hard error")
	}
	found := false
	for _, d := range f.bag.Items() {
		if d.Code == diag.LowInclusiveRangeNoEnd {
			found = true
		}
	}
	if !found {
		t.Fatal("missing the inclusive-range diagnostic")
	}
	blk := fnBodyBlock(t, c, f.onlyFn(t, c))
	if blk.Stmts[0].Expr.Kind != ExprErr {
		t.Fatalf("failed range must lower to the error expression, got %v", blk.Stmts[0].Expr.Kind)
	}
}

func TestIfLetDesugarsToMatch(t *testing.T) {
	f := newFixture(t)

	patNode := f.b.NextNodeID()
	pat := f.b.AddPat(ast.Pat{ID: patNode, Kind: ast.PatIdent, Name: f.b.Name("v")})
	ifLet := f.b.AddExpr(ast.Expr{
		Kind:  ast.ExprIfLet,
		Lhs:   f.errCall("peek"),
		Pat:   pat,
		Block: f.b.AddBlock(ast.Block{}),
	})
	f.fnWith("run", f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: ifLet}))

	c := f.lower(Options{})
	blk := fnBodyBlock(t, c, f.onlyFn(t, c))
	md := asMatch(t, blk.Stmts[0].Expr, MatchIfLet)
	if len(md.Arms) != 2 {
		t.Fatalf("if-let match has %d arms, want 2", len(md.Arms))
	}
	if md.Arms[0].Pats[0].Kind != PatBinding {
		t.Fatal("first arm must carry the written pattern")
	}
	if md.Arms[1].Pats[0].Kind != PatWild {
		t.Fatal("second arm must be the wildcard fallback")
	}
}

func TestWhileDesugarsToLoopWithGuardedBreak(t *testing.T) {
	f := newFixture(t)

	cond := f.b.AddExpr(ast.Expr{Kind: ast.ExprLit, Lit: ast.LitBool, LitVal: f.b.Name("true")})
	while := f.b.AddExpr(ast.Expr{Kind: ast.ExprWhile, Lhs: cond, Block: f.b.AddBlock(ast.Block{})})
	f.fnWith("run", f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: while}))

	c := f.lower(Options{})
	blk := fnBodyBlock(t, c, f.onlyFn(t, c))
	loop, ok := blk.Stmts[0].Expr.Data.(LoopData)
	if !ok || loop.Source != LoopWhile {
		t.Fatal("while must become a loop marked LoopWhile")
	}
	ifd, ok := loop.Body.Expr.Data.(IfData)
	if !ok {
		t.Fatal("while loop body must be the condition if")
	}
	elseBlk := ifd.Else.Data.(BlockData)
	brk, ok := elseBlk.Block.Expr.Data.(BreakData)
	if !ok {
		t.Fatal("while else arm must break")
	}
	if brk.Dest.Target != blk.Stmts[0].Expr.ID {
		t.Fatal("while break must target its own loop")
	}
}

func TestWhileLetScrutineeSharesLoopScope(t *testing.T) {
	f := newFixture(t)

	// while let v = (break) {} — the break in the condition targets
	// the while-let loop itself.
	brkE := f.b.AddExpr(ast.Expr{Kind: ast.ExprBreak})
	patNode := f.b.NextNodeID()
	pat := f.b.AddPat(ast.Pat{ID: patNode, Kind: ast.PatIdent, Name: f.b.Name("v")})
	wl := f.b.AddExpr(ast.Expr{
		Kind:  ast.ExprWhileLet,
		Lhs:   brkE,
		Pat:   pat,
		Block: f.b.AddBlock(ast.Block{}),
	})
	f.fnWith("run", f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: wl}))

	c := f.lower(Options{})
	if f.bag.HasErrors() {
		t.Fatalf("break in while-let condition must be legal: %v", f.bag.Items())
	}
	blk := fnBodyBlock(t, c, f.onlyFn(t, c))
	loop := blk.Stmts[0].Expr.Data.(LoopData)
	if loop.Source != LoopWhileLet {
		t.Fatal("while-let must be marked LoopWhileLet")
	}
	md := asMatch(t, loop.Body.Expr, MatchWhileLet)
	brk, ok := md.Scrutinee.Data.(BreakData)
	if !ok {
		t.Fatal("scrutinee must be the lowered break")
	}
	if brk.Dest.Target != blk.Stmts[0].Expr.ID {
		t.Fatal("scrutinee break must target the while-let loop")
	}
}

func TestBreakOutsideLoopIsRecoverable(t *testing.T) {
	f := newFixture(t)

	brk := f.b.AddExpr(ast.Expr{Kind: ast.ExprBreak})
	f.fnWith("run", f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: brk}))

	c := f.lower(Options{})
	if !f.bag.HasErrors() {
		t.Fatal("break outside a loop must be reported")
	}
	blk := fnBodyBlock(t, c, f.onlyFn(t, c))
	bd := blk.Stmts[0].Expr.Data.(BreakData)
	if !bd.Dest.IsErr {
		t.Fatal("destination must carry the error sentinel")
	}
}

func TestUnresolvedLabelIsRecoverable(t *testing.T) {
	f := newFixture(t)

	brk := f.b.AddExpr(ast.Expr{
		Kind:  ast.ExprBreak,
		Label: ast.Label{ID: f.b.NextNodeID(), Name: f.b.Name("'missing")},
	})
	loopBlk := f.b.AddBlock(ast.Block{Stmts: []ast.StmtID{
		f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: brk}),
	}})
	loop := f.b.AddExpr(ast.Expr{Kind: ast.ExprLoop, Block: loopBlk})
	f.fnWith("run", f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: loop}))

	f.lower(Options{})
	found := false
	for _, d := range f.bag.Items() {
		if d.Code == diag.LowUnresolvedLabel {
			found = true
		}
	}
	if !found {
		t.Fatal("undeclared label must be diagnosed")
	}
}

func TestLabeledBreakFindsOuterLoop(t *testing.T) {
	f := newFixture(t)

	outerLabel := f.b.Name("'outer")
	brk := f.b.AddExpr(ast.Expr{
		Kind:  ast.ExprBreak,
		Label: ast.Label{ID: f.b.NextNodeID(), Name: outerLabel},
	})
	innerBlk := f.b.AddBlock(ast.Block{Stmts: []ast.StmtID{
		f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: brk}),
	}})
	inner := f.b.AddExpr(ast.Expr{Kind: ast.ExprLoop, Block: innerBlk})
	outerBlk := f.b.AddBlock(ast.Block{Stmts: []ast.StmtID{
		f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: inner}),
	}})
	outer := f.b.AddExpr(ast.Expr{
		Kind:  ast.ExprLoop,
		Block: outerBlk,
		Label: ast.Label{ID: f.b.NextNodeID(), Name: outerLabel},
	})
	f.fnWith("run", f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: outer}))

	c := f.lower(Options{})
	if f.bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", f.bag.Items())
	}
	blk := fnBodyBlock(t, c, f.onlyFn(t, c))
	outerE := blk.Stmts[0].Expr
	innerLoop := outerE.Data.(LoopData).Body.Stmts[0].Expr
	bd := innerLoop.Data.(LoopData).Body.Stmts[0].Expr.Data.(BreakData)
	if bd.Dest.Target != outerE.ID {
		t.Fatalf("labeled break target = %s, want outer loop %s", bd.Dest.Target, outerE.ID)
	}
}

func TestExistentialImplTraitCapturesOnlyUsedLifetimes(t *testing.T) {
	f := newFixture(t)

	// fn f<'a, 'b>() -> impl Trait + 'a
	pa := f.b.AddGenericParam(ast.GenericParam{Kind: ast.ParamLifetime, Name: f.b.Name("'a")})
	pb := f.b.AddGenericParam(ast.GenericParam{Kind: ast.ParamLifetime, Name: f.b.Name("'b")})

	traitRefNode := f.b.NextNodeID()
	f.res.Record(traitRefNode, resolve.ErrResolution())
	retTy := f.b.AddTy(ast.Ty{
		Kind: ast.TyImplTrait,
		Bounds: []ast.GenericBound{
			{
				Kind:       ast.BoundTrait,
				TraitRef:   f.b.PathOf(source.Span{}, "Trait"),
				TraitRefID: traitRefNode,
			},
			{
				Kind:     ast.BoundOutlives,
				Lifetime: f.b.NewLifetime(source.Span{}, "'a"),
			},
		},
	})

	blk := f.b.AddBlock(ast.Block{})
	f.b.AddItem(ast.Item{
		Kind:     ast.ItemFn,
		Name:     f.b.Name("f"),
		Generics: ast.Generics{Params: []ast.GenericParamID{pa, pb}},
		Decl:     ast.FnDecl{Output: retTy},
		Body:     blk,
	})

	c := f.lower(Options{})
	if f.bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", f.bag.Items())
	}

	var exist *Item
	for _, id := range c.SortedItemIDs() {
		if c.Items[id].Kind == ItemExistential {
			exist = c.Items[id]
		}
	}
	if exist == nil {
		t.Fatal("return-position impl Trait must synthesize an existential item")
	}
	if exist.Origin != ExistReturnImplTrait {
		t.Fatal("synthesized item must record its origin")
	}

	if len(exist.Generics.Params) != 1 {
		t.Fatalf("existential captures %d lifetimes, want exactly 'a", len(exist.Generics.Params))
	}
	got, _ := f.b.Strings.Lookup(exist.Generics.Params[0].Name)
	if got != "'a" {
		t.Fatalf("captured lifetime = %q, want 'a", got)
	}

	fn := f.onlyFn(t, c)
	out := fn.Sig.Decl.Output
	if out == nil || out.Kind != TyPath {
		t.Fatal("fn return type must reference the existential item")
	}
	if out.QPath.Path.Res.Def != exist.Def {
		t.Fatal("return path must resolve to the synthesized item")
	}
	args := out.QPath.Path.Segments[len(out.QPath.Path.Segments)-1].Args
	if len(args.Lifetimes) != 1 {
		t.Fatalf("existential reference passes %d lifetimes, want 1", len(args.Lifetimes))
	}
	lg, _ := f.b.Strings.Lookup(args.Lifetimes[0].Ident)
	if lg != "'a" {
		t.Fatalf("existential instantiated with %q, want 'a", lg)
	}
}

func TestUniversalImplTraitAppendsTypeParam(t *testing.T) {
	f := newFixture(t)

	traitRefNode := f.b.NextNodeID()
	f.res.Record(traitRefNode, resolve.ErrResolution())
	argTy := f.b.AddTy(ast.Ty{
		Kind: ast.TyImplTrait,
		Bounds: []ast.GenericBound{{
			Kind:       ast.BoundTrait,
			TraitRef:   f.b.PathOf(source.Span{}, "Trait"),
			TraitRefID: traitRefNode,
		}},
	})
	param := ast.FnParam{
		ID:  f.b.NextNodeID(),
		Pat: f.b.AddPat(ast.Pat{Kind: ast.PatIdent, Name: f.b.Name("x")}),
		Ty:  argTy,
	}
	f.b.AddItem(ast.Item{
		Kind: ast.ItemFn,
		Name: f.b.Name("f"),
		Decl: ast.FnDecl{Inputs: []ast.FnParam{param}},
		Body: f.b.AddBlock(ast.Block{}),
	})

	c := f.lower(Options{})
	if f.bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", f.bag.Items())
	}
	fn := f.onlyFn(t, c)
	if len(fn.Generics.Params) != 1 {
		t.Fatalf("fn gained %d generic params, want 1", len(fn.Generics.Params))
	}
	gp := fn.Generics.Params[0]
	if gp.Kind != ParamType || !gp.Synthetic {
		t.Fatal("argument impl Trait must append a synthetic type parameter")
	}
	in := fn.Sig.Decl.Inputs[0]
	if in.Kind != TyPath || in.QPath.Path.Res.Def != gp.Def {
		t.Fatal("input type must reference the fresh parameter")
	}
}

func TestInBandLifetimeCollection(t *testing.T) {
	f := newFixture(t)

	// fn f(x: &'a str) with no declared 'a; in-band mode mints it.
	strNode := f.b.NextNodeID()
	f.res.Record(strNode, resolve.Resolution{Kind: resolve.ResPrimTy, Prim: f.b.Name("str")})
	elem := f.b.AddTy(ast.Ty{ID: strNode, Kind: ast.TyPath, Path: f.b.PathOf(source.Span{}, "str")})
	refTy := f.b.AddTy(ast.Ty{
		Kind:     ast.TyRef,
		Lifetime: f.b.NewLifetime(source.Span{}, "'a"),
		Elem:     elem,
	})
	param := ast.FnParam{
		ID:  f.b.NextNodeID(),
		Pat: f.b.AddPat(ast.Pat{Kind: ast.PatIdent, Name: f.b.Name("x")}),
		Ty:  refTy,
	}
	f.b.AddItem(ast.Item{
		Kind: ast.ItemFn,
		Name: f.b.Name("f"),
		Decl: ast.FnDecl{Inputs: []ast.FnParam{param}},
		Body: f.b.AddBlock(ast.Block{}),
	})

	c := f.lower(Options{InBandLifetimes: true})
	if f.bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", f.bag.Items())
	}
	fn := f.onlyFn(t, c)
	if len(fn.Generics.Params) != 1 {
		t.Fatalf("fn gained %d generic params, want in-band 'a", len(fn.Generics.Params))
	}
	gp := fn.Generics.Params[0]
	if gp.Kind != ParamLifetime || !gp.InBand {
		t.Fatal("undeclared 'a must become an in-band lifetime param")
	}
	if gp.Def.Space() != def.SpaceHigh {
		t.Fatal("synthetic params live in the high address space")
	}
}

func TestElidedLifetimeCreatesParameterInHeaders(t *testing.T) {
	f := newFixture(t)

	// fn f(x: &str): the elided lifetime becomes a fresh parameter.
	strNode := f.b.NextNodeID()
	f.res.Record(strNode, resolve.Resolution{Kind: resolve.ResPrimTy, Prim: f.b.Name("str")})
	elem := f.b.AddTy(ast.Ty{ID: strNode, Kind: ast.TyPath, Path: f.b.PathOf(source.Span{}, "str")})
	refTy := f.b.AddTy(ast.Ty{
		Kind:     ast.TyRef,
		Lifetime: ast.Lifetime{ID: f.b.NextNodeID(), Kind: ast.LifetimeImplicit},
		Elem:     elem,
	})
	param := ast.FnParam{
		ID:  f.b.NextNodeID(),
		Pat: f.b.AddPat(ast.Pat{Kind: ast.PatIdent, Name: f.b.Name("x")}),
		Ty:  refTy,
	}
	f.b.AddItem(ast.Item{
		Kind: ast.ItemFn,
		Name: f.b.Name("f"),
		Decl: ast.FnDecl{Inputs: []ast.FnParam{param}},
		Body: f.b.AddBlock(ast.Block{}),
	})

	c := f.lower(Options{})
	fn := f.onlyFn(t, c)
	if len(fn.Generics.Params) != 1 {
		t.Fatalf("fn gained %d generic params, want the fresh elided lifetime", len(fn.Generics.Params))
	}
	gp := fn.Generics.Params[0]
	if gp.Kind != ParamLifetime || !gp.Synthetic {
		t.Fatal("elided header lifetime must mint a synthetic parameter")
	}
	in := fn.Sig.Decl.Inputs[0]
	if in.Lifetime.Name != LtParam || in.Lifetime.Ident != gp.Name {
		t.Fatal("the use site must name the minted parameter")
	}
}

func TestElidedLifetimePassesThroughInBodies(t *testing.T) {
	f := newFixture(t)

	// let x: &str = ...; inside a body the elision stays implicit.
	strNode := f.b.NextNodeID()
	f.res.Record(strNode, resolve.Resolution{Kind: resolve.ResPrimTy, Prim: f.b.Name("str")})
	elem := f.b.AddTy(ast.Ty{ID: strNode, Kind: ast.TyPath, Path: f.b.PathOf(source.Span{}, "str")})
	refTy := f.b.AddTy(ast.Ty{
		Kind:     ast.TyRef,
		Lifetime: ast.Lifetime{ID: f.b.NextNodeID(), Kind: ast.LifetimeImplicit},
		Elem:     elem,
	})
	let := f.b.AddStmt(ast.Stmt{
		Kind: ast.StmtLet,
		Pat:  f.b.AddPat(ast.Pat{Kind: ast.PatIdent, Name: f.b.Name("x")}),
		Ty:   refTy,
	})
	f.fnWith("run", let)

	c := f.lower(Options{})
	fn := f.onlyFn(t, c)
	if len(fn.Generics.Params) != 0 {
		t.Fatal("body elision must not mint parameters")
	}
	blk := fnBodyBlock(t, c, fn)
	ls := blk.Stmts[0].Let
	if ls.Ty.Lifetime.Name != LtImplicit {
		t.Fatalf("body elision = %v, want implicit marker", ls.Ty.Lifetime.Name)
	}
}

func TestHirIDsUniqueAcrossCrate(t *testing.T) {
	f := newFixture(t)

	rng := f.b.AddExpr(ast.Expr{
		Kind:   ast.ExprRange,
		Lhs:    f.intLit("0"),
		Rhs:    f.intLit("3"),
		Limits: ast.RangeHalfOpen,
	})
	patNode := f.b.NextNodeID()
	xPat := f.b.AddPat(ast.Pat{ID: patNode, Kind: ast.PatIdent, Name: f.b.Name("x")})
	use := f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: f.localUse("x", patNode)})
	body := f.b.AddBlock(ast.Block{Stmts: []ast.StmtID{use}})
	forE := f.b.AddExpr(ast.Expr{Kind: ast.ExprForLoop, Lhs: rng, Pat: xPat, Block: body})
	f.fnWith("first", f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: forE}))

	try := f.b.AddExpr(ast.Expr{Kind: ast.ExprTry, Lhs: f.errCall("foo")})
	f.fnWith("second", f.b.AddStmt(ast.Stmt{Kind: ast.StmtSemi, Expr: try}))

	c := f.lower(Options{})
	if f.bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", f.bag.Items())
	}

	seen := make(map[HirID]string)
	record := func(id HirID, what string) {
		if !id.IsValid() {
			return
		}
		if prev, dup := seen[id]; dup {
			t.Fatalf("hir id %s assigned to both %s and %s", id, prev, what)
		}
		seen[id] = what
	}
	for _, id := range c.SortedItemIDs() {
		record(c.Items[id].ID.Hir, "item")
	}
	var walkExpr func(e *Expr)
	var walkBlock func(b *Block)
	var walkPat func(p *Pat)
	walkPat = func(p *Pat) {
		if p == nil {
			return
		}
		record(p.ID, "pat")
		walkPat(p.Sub)
		for _, sub := range p.Pats {
			walkPat(sub)
		}
	}
	walkExpr = func(e *Expr) {
		if e == nil {
			return
		}
		record(e.ID, "expr")
		switch data := e.Data.(type) {
		case BlockData:
			walkBlock(data.Block)
		case LoopData:
			walkBlock(data.Body)
		case IfData:
			walkExpr(data.Cond)
			walkExpr(data.Then)
			walkExpr(data.Else)
		case MatchData:
			walkExpr(data.Scrutinee)
			for i := range data.Arms {
				for _, p := range data.Arms[i].Pats {
					walkPat(p)
				}
				walkExpr(data.Arms[i].Guard)
				walkExpr(data.Arms[i].Body)
			}
		case CallData:
			walkExpr(data.Fn)
			for _, a := range data.Args {
				walkExpr(a)
			}
		case BreakData:
			walkExpr(data.Value)
		case ReturnData:
			walkExpr(data.Value)
		case StructLitData:
			for i := range data.Fields {
				walkExpr(data.Fields[i].Value)
			}
			walkExpr(data.Base)
		case AddrOfData:
			walkExpr(data.Sub)
		case UnaryData:
			walkExpr(data.Sub)
		case BinaryData:
			walkExpr(data.Lhs)
			walkExpr(data.Rhs)
		case TupleData:
			for _, it := range data.Items {
				walkExpr(it)
			}
		}
	}
	walkBlock = func(b *Block) {
		if b == nil {
			return
		}
		record(b.ID, "block")
		for i := range b.Stmts {
			s := &b.Stmts[i]
			record(s.ID, "stmt")
			if s.Let != nil {
				walkPat(s.Let.Pat)
				walkExpr(s.Let.Init)
			}
			walkExpr(s.Expr)
		}
		walkExpr(b.Expr)
	}
	for _, id := range c.BodyIDsBySpan() {
		body := c.Body(id)
		for _, p := range body.Params {
			walkPat(p)
		}
		walkExpr(body.Value)
	}
	if len(seen) == 0 {
		t.Fatal("walk visited nothing")
	}
}
