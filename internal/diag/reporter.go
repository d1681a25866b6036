package diag

import "reluxc/internal/source"

// Reporter is the minimal sink contract compiler phases report through.
type Reporter interface {
	Report(d Diagnostic)
}

// BagReporter stores every diagnostic in a Bag.
type BagReporter struct {
	Bag *Bag
}

func NewBagReporter(bag *Bag) *BagReporter {
	return &BagReporter{Bag: bag}
}

func (r *BagReporter) Report(d Diagnostic) {
	r.Bag.Add(d)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(Diagnostic) {}

// ReportError emits an error-severity diagnostic through r.
func ReportError(r Reporter, code Code, primary source.Span, msg string) {
	if r == nil {
		return
	}
	r.Report(Diagnostic{
		Severity: SevError,
		Code:     code,
		Message:  msg,
		Primary:  primary,
	})
}

// ReportWarning emits a warning-severity diagnostic through r.
func ReportWarning(r Reporter, code Code, primary source.Span, msg string) {
	if r == nil {
		return
	}
	r.Report(Diagnostic{
		Severity: SevWarning,
		Code:     code,
		Message:  msg,
		Primary:  primary,
	})
}
