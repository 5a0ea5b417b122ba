package mir

import (
	"strings"
	"testing"

	"rill/internal/def"
	"rill/internal/source"
)

// diamondBody builds bb0 -> {bb1, bb2} -> bb3 -> return.
func diamondBody() *Body {
	bb := NewBodyBuilder(def.NoDefIndex, source.Span{}, 1)
	entry := bb.NewBlock(false)
	left := bb.NewBlock(false)
	right := bb.NewBlock(false)
	join := bb.NewBlock(false)
	bb.Terminate(entry, Terminator{Kind: TermSwitchInt, SwitchInt: SwitchIntTerm{
		Disc:    intConst("0"),
		Values:  []uint64{0},
		Targets: []BasicBlock{left, right},
	}})
	bb.Terminate(left, gotoTerm(join))
	bb.Terminate(right, gotoTerm(join))
	bb.Terminate(join, retTerm())
	return bb.Body()
}

// loopBody builds bb0 -> bb1 -> {bb1, bb2}; bb2 returns.
func loopBody() *Body {
	bb := NewBodyBuilder(def.NoDefIndex, source.Span{}, 1)
	entry := bb.NewBlock(false)
	header := bb.NewBlock(false)
	exit := bb.NewBlock(false)
	bb.Terminate(entry, gotoTerm(header))
	bb.Terminate(header, Terminator{Kind: TermSwitchInt, SwitchInt: SwitchIntTerm{
		Disc:    intConst("0"),
		Values:  []uint64{0},
		Targets: []BasicBlock{header, exit},
	}})
	bb.Terminate(exit, retTerm())
	return bb.Body()
}

func TestDominatorsOnDiamond(t *testing.T) {
	b := diamondBody()
	dom := b.Dominators()

	cases := []struct {
		a, c BasicBlock
		want bool
	}{
		{0, 0, true},
		{0, 1, true},
		{0, 2, true},
		{0, 3, true},
		{1, 3, false}, // the right arm bypasses the left
		{2, 3, false},
		{3, 1, false},
	}
	for _, tc := range cases {
		if got := dom.Dominates(tc.a, tc.c); got != tc.want {
			t.Errorf("Dominates(bb%d, bb%d) = %t, want %t", tc.a, tc.c, got, tc.want)
		}
	}
}

func TestLocationDominates(t *testing.T) {
	b := diamondBody()
	dom := b.Dominators()

	early := Location{Block: 0, Statement: 0}
	late := Location{Block: 0, Statement: 0}
	if !early.Dominates(late, dom) {
		t.Fatal("a location must dominate itself")
	}
	if !early.Dominates(Location{Block: 3, Statement: 0}, dom) {
		t.Fatal("entry must dominate the join block")
	}
	if (Location{Block: 1}).Dominates(Location{Block: 3}, dom) {
		t.Fatal("one arm of a diamond must not dominate the join")
	}
	if !(Location{Block: 0, Statement: 0}).Dominates(Location{Block: 0, Statement: 5}, dom) {
		t.Fatal("same-block ordering must use statement indices")
	}
}

func TestIsPredecessorOfTerminatesOnLoops(t *testing.T) {
	b := loopBody()

	from := Location{Block: 0, Statement: 0}
	to := Location{Block: 2, Statement: 0}
	if !from.IsPredecessorOf(to, b) {
		t.Fatal("entry must reach the exit block")
	}
	// Same-block queries answer by statement index alone, so a
	// location never precedes itself even with a back edge around.
	h := Location{Block: 1, Statement: 0}
	if h.IsPredecessorOf(h, b) {
		t.Fatal("a location must not precede itself")
	}
	// The back edge still matters for distinct statements.
	if !h.IsPredecessorOf(Location{Block: 1, Statement: 1}, b) {
		t.Fatal("earlier statement must precede a later one in the same block")
	}
	if to.IsPredecessorOf(from, b) {
		t.Fatal("exit must not reach entry")
	}
}

func TestExpandStatementsPreservesOtherIndices(t *testing.T) {
	mk := func(n uint32) Statement {
		return Statement{Kind: StmtSetDiscriminant, SetDiscriminant: SetDiscriminantStmt{Variant: n}}
	}
	d := BasicBlockData{Statements: []Statement{mk(0), mk(1), mk(2), mk(3)}}

	d.ExpandStatements(func(s *Statement) []Statement {
		if s.SetDiscriminant.Variant == 1 {
			return []Statement{mk(10), mk(11), mk(12)}
		}
		return nil
	})

	want := []uint32{0, 10, 11, 12, 2, 3}
	if len(d.Statements) != len(want) {
		t.Fatalf("len = %d, want %d", len(d.Statements), len(want))
	}
	for i, w := range want {
		if d.Statements[i].SetDiscriminant.Variant != w {
			t.Fatalf("statement %d = %d, want %d", i, d.Statements[i].SetDiscriminant.Variant, w)
		}
	}
}

func TestExpandStatementsMultipleSites(t *testing.T) {
	mk := func(n uint32) Statement {
		return Statement{Kind: StmtSetDiscriminant, SetDiscriminant: SetDiscriminantStmt{Variant: n}}
	}
	d := BasicBlockData{Statements: []Statement{mk(0), mk(1), mk(2)}}

	d.ExpandStatements(func(s *Statement) []Statement {
		switch s.SetDiscriminant.Variant {
		case 0:
			return []Statement{mk(100), mk(101)}
		case 2:
			return []Statement{} // becomes a single nop
		}
		return nil
	})

	if len(d.Statements) != 4 {
		t.Fatalf("len = %d, want 4", len(d.Statements))
	}
	got := []uint32{
		d.Statements[0].SetDiscriminant.Variant,
		d.Statements[1].SetDiscriminant.Variant,
		d.Statements[2].SetDiscriminant.Variant,
	}
	if got[0] != 100 || got[1] != 101 || got[2] != 1 {
		t.Fatalf("statements = %v", got)
	}
	if d.Statements[3].Kind != StmtNop {
		t.Fatalf("empty expansion must leave a nop, got %v", d.Statements[3].Kind)
	}
}

func TestMakeNopKeepsPosition(t *testing.T) {
	span := source.Span{Start: 3, End: 9}
	s := Statement{Kind: StmtAssign, Span: span, Scope: 2}
	s.MakeNop()
	if s.Kind != StmtNop || s.Span != span || s.Scope != 2 {
		t.Fatalf("MakeNop() = %+v", s)
	}
}

func TestProjectionInterningShares(t *testing.T) {
	in := NewProjInterner()
	a := in.Intern([]ProjElem{{Kind: ProjDeref}, {Kind: ProjField, Field: 1}})
	b := in.Intern([]ProjElem{{Kind: ProjDeref}, {Kind: ProjField, Field: 1}})
	c := in.Intern([]ProjElem{{Kind: ProjDeref}, {Kind: ProjField, Field: 2}})
	if a != b {
		t.Fatalf("equal projections interned differently: %d vs %d", a, b)
	}
	if a == c {
		t.Fatal("distinct projections shared an ID")
	}
	if got := in.Elems(NoProjection); len(got) != 0 {
		t.Fatalf("empty projection has elems %v", got)
	}
}

func TestPlacePrefixAliasing(t *testing.T) {
	in := NewProjInterner()
	base := Place{Local: 1, Proj: NoProjection}
	field := Place{Local: 1, Proj: in.Intern([]ProjElem{{Kind: ProjField, Field: 0}})}
	deep := Place{Local: 1, Proj: in.Intern([]ProjElem{{Kind: ProjField, Field: 0}, {Kind: ProjDeref}})}
	other := Place{Local: 2, Proj: NoProjection}

	if !base.IsPrefixOf(field, in) || !field.IsPrefixOf(deep, in) {
		t.Fatal("prefix relation broken")
	}
	if field.IsPrefixOf(base, in) {
		t.Fatal("an extension is not a prefix of its base")
	}
	if base.IsPrefixOf(other, in) {
		t.Fatal("places on different locals never alias by prefix")
	}
}

func TestDumpBodyMentionsEdgesByLabel(t *testing.T) {
	b := diamondBody()
	var sb strings.Builder
	if err := DumpBody(&sb, b, source.NewInterner(), NewProjInterner()); err != nil {
		t.Fatalf("DumpBody() = %v", err)
	}
	out := sb.String()
	for _, want := range []string{"bb0", "switchInt", "otherwise: bb2", "0: bb1", "return"} {
		if !strings.Contains(out, want) {
			t.Fatalf("dump missing %q:\n%s", want, out)
		}
	}
}
