package hir

import (
	"rill/internal/def"
	"rill/internal/diag"
	"rill/internal/source"
)

// withLoopScope runs body with id as the innermost break/continue
// target. The loop-condition flag is cleared for the loop body.
func (l *Lowerer) withLoopScope(id HirID, label source.StringID, body func()) {
	wasCond := l.isInLoopCondition
	l.isInLoopCondition = false
	l.loopScopes = append(l.loopScopes, loopScope{id: id, label: label})
	depth := len(l.loopScopes)
	defer func() {
		if len(l.loopScopes) != depth {
			l.ice(diag.IceScopeImbalance, source.Span{}, "loop scope stack imbalance")
		}
		l.loopScopes = l.loopScopes[:depth-1]
		l.isInLoopCondition = wasCond
	}()
	body()
}

// withLoopCondition marks body as a loop condition, where unlabeled
// break/continue are illegal.
func (l *Lowerer) withLoopCondition(body func()) {
	was := l.isInLoopCondition
	l.isInLoopCondition = true
	defer func() { l.isInLoopCondition = was }()
	body()
}

// withCatchScope runs body with id as the innermost `?` break target.
func (l *Lowerer) withCatchScope(id HirID, body func()) {
	l.catchScopes = append(l.catchScopes, id)
	depth := len(l.catchScopes)
	defer func() {
		if len(l.catchScopes) != depth {
			l.ice(diag.IceScopeImbalance, source.Span{}, "catch scope stack imbalance")
		}
		l.catchScopes = l.catchScopes[:depth-1]
	}()
	body()
}

// withNewScopes runs body with fresh, empty loop/catch stacks: break,
// continue, and `?` never cross a closure or body boundary implicitly.
func (l *Lowerer) withNewScopes(isGenerator bool, body func()) {
	savedLoops := l.loopScopes
	savedCatches := l.catchScopes
	savedCond := l.isInLoopCondition
	savedGen := l.isGeneratorBody

	l.loopScopes = nil
	l.catchScopes = nil
	l.isInLoopCondition = false
	l.isGeneratorBody = isGenerator

	defer func() {
		l.loopScopes = savedLoops
		l.catchScopes = savedCatches
		l.isInLoopCondition = savedCond
		l.isGeneratorBody = savedGen
	}()
	body()
}

// withElisionMode switches how elided lifetimes lower inside body.
func (l *Lowerer) withElisionMode(mode ElisionMode, body func()) {
	was := l.elision
	l.elision = mode
	defer func() { l.elision = was }()
	body()
}

// withImplTraitCtx selects how `impl Trait` types lower inside body:
// universal params in argument position, existential items in return
// position, error elsewhere.
func (l *Lowerer) withImplTraitCtx(ctx implTraitCtx, fn def.DefIndex, body func()) {
	wasCtx := l.implTrait
	wasFn := l.implTraitFn
	l.implTrait = ctx
	l.implTraitFn = fn
	defer func() {
		l.implTrait = wasCtx
		l.implTraitFn = wasFn
	}()
	body()
}
