package diag

import (
	"testing"

	"reluxc/internal/source"
)

func errAt(code Code, start, end uint32) Diagnostic {
	return Diagnostic{
		Severity: SevError,
		Code:     code,
		Message:  code.String(),
		Primary:  source.Span{Start: start, End: end},
	}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	if !b.Add(errAt(SemaTypeMismatch, 0, 1)) {
		t.Fatalf("first add must succeed")
	}
	if !b.Add(errAt(SemaTypeMismatch, 1, 2)) {
		t.Fatalf("second add must succeed")
	}
	if b.Add(errAt(SemaTypeMismatch, 2, 3)) {
		t.Fatalf("add past limit must be rejected")
	}
	if b.Len() != 2 {
		t.Fatalf("len = %d, want 2", b.Len())
	}
}

func TestBagSortDeterministic(t *testing.T) {
	b := NewBag(10)
	b.Add(errAt(SemaUndefinedSymbol, 20, 25))
	b.Add(errAt(SemaTypeMismatch, 5, 8))
	b.Add(Diagnostic{Severity: SevWarning, Code: SemaInfo, Primary: source.Span{Start: 5, End: 8}})
	b.Sort()

	items := b.Items()
	if items[0].Code != SemaTypeMismatch {
		t.Fatalf("first item = %s, want TYPE_MISMATCH (same span, error outranks warning)", items[0].Code)
	}
	if items[2].Code != SemaUndefinedSymbol {
		t.Fatalf("last item = %s, want UNDEFINED_SYMBOL", items[2].Code)
	}
}

func TestBagDedup(t *testing.T) {
	b := NewBag(10)
	b.Add(errAt(SemaUnsupportedConstruct, 3, 9))
	b.Add(errAt(SemaUnsupportedConstruct, 3, 9))
	b.Add(errAt(SemaUnsupportedConstruct, 4, 9))
	b.Dedup()
	if b.Len() != 2 {
		t.Fatalf("len after dedup = %d, want 2", b.Len())
	}
}

func TestHasErrorsIgnoresWarnings(t *testing.T) {
	b := NewBag(4)
	b.Add(Diagnostic{Severity: SevWarning, Code: SemaInfo})
	if b.HasErrors() {
		t.Fatalf("warnings must not count as errors")
	}
	b.Add(errAt(SemaIllegalMutation, 0, 1))
	if !b.HasErrors() {
		t.Fatalf("expected HasErrors after adding an error")
	}
}

func TestInternalCodeRange(t *testing.T) {
	if SemaTypeMismatch.IsInternal() {
		t.Fatalf("semantic codes are not internal")
	}
	if !InternalLowering.IsInternal() {
		t.Fatalf("internal lowering code must be internal")
	}
}
