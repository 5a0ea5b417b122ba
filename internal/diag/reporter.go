package diag

import "rill/internal/source"

// Reporter is the sink contract phases report through. The middle tier
// never inspects what a reporter does with a diagnostic.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter writes into a Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(d)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// MultiReporter fans out to several sinks.
type MultiReporter []Reporter

func (m MultiReporter) Report(d Diagnostic) {
	for _, r := range m {
		if r != nil {
			r.Report(d)
		}
	}
}

// Error is a convenience for the common report-an-error path.
func Error(r Reporter, code Code, primary source.Span, msg string) {
	if r != nil {
		r.Report(NewError(code, primary, msg))
	}
}

// Warning reports a lint-level diagnostic.
func Warning(r Reporter, code Code, primary source.Span, msg string) {
	if r != nil {
		r.Report(NewWarning(code, primary, msg))
	}
}
