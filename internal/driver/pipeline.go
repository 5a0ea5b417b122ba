package driver

import (
	"errors"
	"fmt"

	"rill/internal/ast"
	"rill/internal/collect"
	"rill/internal/def"
	"rill/internal/diag"
	"rill/internal/hir"
	"rill/internal/resolve"
	"rill/internal/ty"
)

// Result is one crate's middle-tier output: the lowered tree, the def
// table, the query engine over both, and everything diagnosed along
// the way.
type Result struct {
	Crate  *hir.Crate
	Defs   *def.Table
	Engine *ty.Engine
	Bag    *diag.Bag
}

// Options tunes one pipeline run.
type Options struct {
	// MaxDiagnostics caps the bag; zero means the default.
	MaxDiagnostics int
	// Features come from the manifest.
	InBandLifetimes bool
}

// OptionsFrom derives pipeline options from a loaded manifest.
func OptionsFrom(m *Manifest) Options {
	return Options{InBandLifetimes: m.Config.Features.InBandLifetimes}
}

const defaultMaxDiagnostics = 256

// Run lowers one decoded crate and collects it. Lowering panics only
// on internal invariant violations; those surface as an error here,
// with the partial diagnostics preserved in the result.
func Run(b *ast.Builder, res resolve.Resolver, opts Options) (result *Result, err error) {
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = defaultMaxDiagnostics
	}
	bag := diag.NewBag(maxDiags)
	rep := diag.BagReporter{Bag: bag}
	result = &Result{Defs: res.Definitions(), Bag: bag}

	defer func() {
		if r := recover(); r != nil {
			var ice *hir.InternalError
			rerr, ok := r.(error)
			if ok && errors.As(rerr, &ice) {
				err = fmt.Errorf("driver: lowering aborted: %w", ice)
				return
			}
			panic(r)
		}
	}()

	result.Crate = hir.LowerCrate(b, res, rep, hir.Options{
		InBandLifetimes: opts.InBandLifetimes,
	})
	result.Engine = ty.NewEngine(result.Crate, result.Defs, b.Strings, rep)
	collect.New(result.Crate, result.Defs, b.Strings, result.Engine, rep).Run()
	return result, nil
}

// RunPack runs the pipeline over a freshly decoded astpack with an
// empty resolver table.
func RunPack(pack PackResult, opts Options) (*Result, error) {
	res := resolve.NewTableResolver(def.NewTable(pack.Builder.Strings), pack.Builder.Strings)
	return Run(pack.Builder, res, opts)
}
