package ty

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"rill/internal/def"
	"rill/internal/diag"
	"rill/internal/hir"
	"rill/internal/source"
)

type queryKind uint8

const (
	qGenericsOf queryKind = iota
	qExplicitPredicatesOf
	qPredicatesDefinedOn
	qPredicatesOf
	qSuperPredicatesOf
	qTypeParamPredicates
	qTraitDef
	qAdtDef
	qFnSig
	qImplTraitRef
	qImplPolarity
	qCodegenFnAttrs
)

// cellKey identifies one memoized result: most queries key on a single
// def, TypeParamPredicates on a (item, param) pair.
type cellKey struct {
	kind queryKind
	def  def.DefIndex
	aux  def.DefIndex
}

func (k cellKey) String() string {
	return fmt.Sprintf("%d:%d:%d", k.kind, k.def, k.aux)
}

// Engine answers the type and predicate queries over one lowered
// crate. Every query is memoized by key. A query chain that reaches
// back into a key it is already computing is a detected cycle and
// yields the error sentinel instead of recursing; a different
// goroutine asking for an in-flight key is not a cycle and instead
// waits for and shares the winner's result through singleflight.
type Engine struct {
	crate *hir.Crate
	defs  *def.Table
	names *source.Interner
	rep   diag.Reporter
	in    *Interner

	mu     sync.Mutex
	cells  map[cellKey]any
	group  singleflight.Group
	active sync.Map // goroutine id -> map[cellKey]struct{} of keys on that call chain

	items      map[def.DefIndex]*hir.Item
	traitItems map[def.DefIndex]*hir.TraitItem
	implItems  map[def.DefIndex]*hir.ImplItem

	selfName source.StringID
}

func NewEngine(crate *hir.Crate, defs *def.Table, names *source.Interner, rep diag.Reporter) *Engine {
	e := &Engine{
		crate:      crate,
		defs:       defs,
		names:      names,
		rep:        rep,
		in:         NewInterner(),
		cells:      make(map[cellKey]any),
		items:      make(map[def.DefIndex]*hir.Item),
		traitItems: make(map[def.DefIndex]*hir.TraitItem),
		implItems:  make(map[def.DefIndex]*hir.ImplItem),
		selfName:   names.Intern("Self"),
	}
	for _, id := range crate.SortedItemIDs() {
		it := crate.Items[id]
		e.items[it.Def] = it
	}
	for _, id := range crate.SortedTraitItemIDs() {
		ti := crate.TraitItems[id]
		e.traitItems[ti.Def] = ti
	}
	for _, id := range crate.SortedImplItemIDs() {
		ii := crate.ImplItems[id]
		e.implItems[ii.Def] = ii
	}
	return e
}

// Interner exposes the engine's type interner to downstream passes.
func (e *Engine) Interner() *Interner {
	return e.in
}

// memo computes-or-returns the cached value for key. The second result
// is true when the request re-entered a key its own call chain is
// already computing, the cycle case; the caller substitutes its error
// sentinel. Cycle detection is per goroutine: queries recurse on the
// goroutine that asked, so only that goroutine's in-flight keys count.
// A second goroutine landing on an in-flight key parks inside
// singleflight and comes back with the winner's value.
func (e *Engine) memo(key cellKey, compute func() any) (any, bool) {
	inFlight := e.inFlightKeys()
	if _, ok := inFlight[key]; ok {
		return nil, true
	}

	e.mu.Lock()
	if val, ok := e.cells[key]; ok {
		e.mu.Unlock()
		return val, false
	}
	e.mu.Unlock()

	inFlight[key] = struct{}{}
	defer func() {
		delete(inFlight, key)
		if len(inFlight) == 0 {
			e.active.Delete(goroutineID())
		}
	}()

	val, _, _ := e.group.Do(key.String(), func() (any, error) {
		v := compute()
		e.mu.Lock()
		e.cells[key] = v
		e.mu.Unlock()
		return v, nil
	})
	return val, false
}

// inFlightKeys returns the set of keys the calling goroutine's query
// chain is currently computing, creating it on first use.
func (e *Engine) inFlightKeys() map[cellKey]struct{} {
	gid := goroutineID()
	if v, ok := e.active.Load(gid); ok {
		return v.(map[cellKey]struct{})
	}
	m := make(map[cellKey]struct{})
	e.active.Store(gid, m)
	return m
}

// goroutineID parses the current goroutine's id out of its stack
// header ("goroutine N [running]:"). The runtime exposes no direct
// accessor; the header format has been stable across releases.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	header := strings.Fields(string(buf[:n]))
	if len(header) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(header[1], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// spanOf returns the best span for diagnostics against a def.
func (e *Engine) spanOf(d def.DefIndex) source.Span {
	if row := e.defs.Get(d); row != nil {
		return row.Span
	}
	return source.Span{}
}

func (e *Engine) lookup(s source.StringID) string {
	if str, ok := e.names.Lookup(s); ok {
		return str
	}
	return "<unknown>"
}
