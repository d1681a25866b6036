package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"reluxc/internal/diag"
	"reluxc/internal/source"
)

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Add("plugin/main.rlx", []byte("plugin rename_foo {\n  let x = nope;\n}\n"))
	bag := diag.NewBag(16)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.SemaUndefinedSymbol,
		Message:  "undefined symbol `nope`",
		Primary:  source.Span{File: file, Start: 30, End: 34},
	}.WithHint("declare it with `let` first"))
	bag.Add(diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.SemaInfo,
		Message:  "binding `x` is never read",
		Primary:  source.Span{File: file, Start: 26, End: 27},
	})
	bag.Sort()
	return bag, fs
}

func TestPrettyFormat(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, DefaultPrettyOpts())
	out := buf.String()

	for _, want := range []string{
		"plugin/main.rlx:2:11: ERROR UNDEFINED_SYMBOL: undefined symbol `nope`",
		"plugin/main.rlx:2:7: WARNING SEMA_INFO: binding `x` is never read",
		"  let x = nope;",
		"hint: declare it with `let` first",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestPrettyUnderlineCoversSpan(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, DefaultPrettyOpts())
	// `nope` is four bytes, so the caret line is ^ plus three tildes,
	// padded to start under column 11.
	want := "  " + strings.Repeat(" ", 10) + "^~~~"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("missing underline %q\n%s", want, buf.String())
	}
}

func TestPrettyBasenamePaths(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	opts := DefaultPrettyOpts()
	opts.PathMode = PathModeBasename
	Pretty(&buf, bag, fs, opts)
	if !strings.Contains(buf.String(), "main.rlx:2:11:") {
		t.Errorf("expected basename path\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "plugin/main.rlx") {
		t.Errorf("full path leaked through basename mode\n%s", buf.String())
	}
}

func TestJSONReport(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, PayloadOpts{}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var rep Report
	if err := json.Unmarshal(buf.Bytes(), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.Errors != 1 || rep.Warnings != 1 {
		t.Errorf("counts = %d errors, %d warnings", rep.Errors, rep.Warnings)
	}
	if len(rep.Diagnostics) != 2 {
		t.Fatalf("len(diagnostics) = %d", len(rep.Diagnostics))
	}
	first := rep.Diagnostics[1]
	if first.Code != "UNDEFINED_SYMBOL" || first.CodeNum != 3001 {
		t.Errorf("code = %s (%d)", first.Code, first.CodeNum)
	}
	if first.Location.Start.Line != 2 || first.Location.Start.Col != 11 {
		t.Errorf("start = %+v", first.Location.Start)
	}
}

func TestReportTruncationKeepsCounts(t *testing.T) {
	bag, fs := sampleBag(t)
	rep := BuildReport(bag, fs, PayloadOpts{Max: 1})
	if len(rep.Diagnostics) != 1 {
		t.Fatalf("len(diagnostics) = %d", len(rep.Diagnostics))
	}
	if rep.Errors != 1 || rep.Warnings != 1 {
		t.Errorf("truncation dropped counts: %d errors, %d warnings", rep.Errors, rep.Warnings)
	}
}

func TestMsgpackRoundTrip(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := Msgpack(&buf, bag, fs, PayloadOpts{}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	rep, err := DecodeReport(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rep.Diagnostics) != 2 {
		t.Fatalf("len(diagnostics) = %d", len(rep.Diagnostics))
	}
	if rep.Diagnostics[1].Message != "undefined symbol `nope`" {
		t.Errorf("message = %q", rep.Diagnostics[1].Message)
	}
	if rep.Diagnostics[1].Hint == "" {
		t.Error("hint lost in round trip")
	}
}
