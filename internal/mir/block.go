package mir

// BasicBlockData is one block: an ordered run of statements and the
// single terminator that ends it. A zero-valued terminator (TermNone)
// is legal only while the body is still being built.
type BasicBlockData struct {
	Statements []Statement
	Terminator Terminator
	// IsCleanup marks blocks on the unwind path.
	IsCleanup bool
}

// Terminated reports whether construction has given the block its
// terminator.
func (d *BasicBlockData) Terminated() bool {
	return d.Terminator.Kind != TermNone
}

// ExpandStatements replaces selected statements in place with a run of
// new ones. expand returns nil to leave a statement alone; an empty
// replacement becomes a single Nop so every other statement keeps its
// index semantics. The vector grows to its final size first and the
// tail is spliced backward, so an expansion never shifts a site that
// has not been processed yet.
func (d *BasicBlockData) ExpandStatements(expand func(*Statement) []Statement) {
	type site struct {
		index int
		repl  []Statement
	}
	var sites []site
	extra := 0
	for i := range d.Statements {
		repl := expand(&d.Statements[i])
		if repl == nil {
			continue
		}
		if len(repl) == 0 {
			nop := d.Statements[i]
			nop.MakeNop()
			repl = []Statement{nop}
		}
		sites = append(sites, site{index: i, repl: repl})
		extra += len(repl) - 1
	}
	if len(sites) == 0 {
		return
	}

	old := len(d.Statements)
	d.Statements = append(d.Statements, make([]Statement, extra)...)

	write := len(d.Statements)
	read := old
	for k := len(sites) - 1; k >= 0; k-- {
		s := sites[k]
		for read > s.index+1 {
			read--
			write--
			d.Statements[write] = d.Statements[read]
		}
		for j := len(s.repl) - 1; j >= 0; j-- {
			write--
			d.Statements[write] = s.repl[j]
		}
		read--
	}
}
