package mir

// Predecessors builds the reverse edge lists, one slice per block.
func (b *Body) Predecessors() [][]BasicBlock {
	preds := make([][]BasicBlock, len(b.Blocks))
	for bb := range b.Blocks {
		for _, succ := range b.Blocks[bb].Terminator.Successors() {
			preds[succ] = append(preds[succ], BasicBlock(bb))
		}
	}
	return preds
}

// ReversePostorder returns the blocks reachable from entry, each
// before any of its unvisited successors.
func (b *Body) ReversePostorder() []BasicBlock {
	visited := make([]bool, len(b.Blocks))
	var post []BasicBlock
	var walk func(bb BasicBlock)
	walk = func(bb BasicBlock) {
		visited[bb] = true
		for _, succ := range b.Blocks[bb].Terminator.Successors() {
			if !visited[succ] {
				walk(succ)
			}
		}
		post = append(post, bb)
	}
	if len(b.Blocks) > 0 {
		walk(StartBlock)
	}
	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}

// Dominators is the precomputed immediate-dominator tree of a body.
// Unreachable blocks have no dominator.
type Dominators struct {
	idom []BasicBlock
}

// Dominators computes the dominator tree with the iterative
// intersection algorithm over reverse postorder.
func (b *Body) Dominators() *Dominators {
	n := len(b.Blocks)
	idom := make([]BasicBlock, n)
	for i := range idom {
		idom[i] = NoBlock
	}
	if n == 0 {
		return &Dominators{idom: idom}
	}

	rpo := b.ReversePostorder()
	rpoNum := make([]int, n)
	for i := range rpoNum {
		rpoNum[i] = -1
	}
	for i, bb := range rpo {
		rpoNum[bb] = i
	}
	preds := b.Predecessors()

	intersect := func(a, c BasicBlock) BasicBlock {
		for a != c {
			for rpoNum[a] > rpoNum[c] {
				a = idom[a]
			}
			for rpoNum[c] > rpoNum[a] {
				c = idom[c]
			}
		}
		return a
	}

	idom[StartBlock] = StartBlock
	changed := true
	for changed {
		changed = false
		for _, bb := range rpo {
			if bb == StartBlock {
				continue
			}
			newIdom := NoBlock
			for _, p := range preds[bb] {
				if rpoNum[p] < 0 || idom[p] == NoBlock {
					continue
				}
				if newIdom == NoBlock {
					newIdom = p
				} else {
					newIdom = intersect(newIdom, p)
				}
			}
			if newIdom != NoBlock && idom[bb] != newIdom {
				idom[bb] = newIdom
				changed = true
			}
		}
	}
	return &Dominators{idom: idom}
}

// IsReachable reports whether entry reaches bb.
func (d *Dominators) IsReachable(bb BasicBlock) bool {
	return d.idom[bb] != NoBlock
}

// Dominates reports whether every path from entry to b passes through
// a. A block dominates itself.
func (d *Dominators) Dominates(a, b BasicBlock) bool {
	if !d.IsReachable(b) {
		return false
	}
	for {
		if a == b {
			return true
		}
		next := d.idom[b]
		if next == b || next == NoBlock {
			return false
		}
		b = next
	}
}

// Dominates reports whether execution must pass l before reaching
// other. Within one block the statement indices order; across blocks
// the dominator tree answers.
func (l Location) Dominates(other Location, dom *Dominators) bool {
	if l.Block == other.Block {
		return l.Statement <= other.Statement
	}
	return dom.Dominates(l.Block, other.Block)
}

// IsPredecessorOf reports whether some path reaches other after l:
// statement order within one block, reverse breadth-first search over
// the predecessor relation otherwise. The visited set keeps the search
// linear even through loops.
func (l Location) IsPredecessorOf(other Location, b *Body) bool {
	if l.Block == other.Block {
		return l.Statement < other.Statement
	}

	preds := b.Predecessors()
	visited := make(map[BasicBlock]bool, len(b.Blocks))
	queue := []BasicBlock{other.Block}
	for len(queue) > 0 {
		bb := queue[0]
		queue = queue[1:]
		if visited[bb] {
			continue
		}
		visited[bb] = true
		for _, p := range preds[bb] {
			if p == l.Block {
				return true
			}
			if !visited[p] {
				queue = append(queue, p)
			}
		}
	}
	return false
}
