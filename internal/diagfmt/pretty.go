package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"reluxc/internal/diag"
	"reluxc/internal/source"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
	noteColor = color.New(color.FgBlue)
	hintColor = color.New(color.FgGreen)
	spotColor = color.New(color.FgHiRed, color.Bold)
)

// Pretty renders every diagnostic in the bag as
//
//	<path>:<line>:<col>: <severity> <CODE>: <message>
//
// followed by the offending source line with a caret underline, then notes
// and the hint. Callers sort the bag first for a stable report.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		prettyOne(w, d, fs, opts)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	sev := severityLabel(d.Severity, opts.Color)
	fmt.Fprintf(w, "%s: %s %s: %s\n", location(fs, d.Primary, opts.PathMode), sev, d.Code, d.Message)
	writeContext(w, fs, d.Primary, opts)
	if opts.ShowNotes {
		for _, n := range d.Notes {
			label := "note"
			if opts.Color {
				label = noteColor.Sprint(label)
			}
			fmt.Fprintf(w, "%s: %s: %s\n", location(fs, n.Span, opts.PathMode), label, n.Msg)
			writeContext(w, fs, n.Span, opts)
		}
	}
	if opts.ShowHints && d.Hint != "" {
		label := "hint"
		if opts.Color {
			label = hintColor.Sprint(label)
		}
		fmt.Fprintf(w, "  %s: %s\n", label, d.Hint)
	}
}

func severityLabel(s diag.Severity, colored bool) string {
	label := s.String()
	if !colored {
		return label
	}
	switch s {
	case diag.SevError:
		return errColor.Sprint(label)
	case diag.SevWarning:
		return warnColor.Sprint(label)
	}
	return infoColor.Sprint(label)
}

func location(fs *source.FileSet, span source.Span, mode PathMode) string {
	path := "<input>"
	if f := fs.Get(span.File); f != nil && f.Path != "" {
		path = f.Path
		if mode == PathModeBasename {
			path = filepath.Base(path)
		}
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}

// writeContext prints the source line the span starts on, then a caret line
// underlining the spanned text. Widths are computed over display cells so
// the underline stays aligned under tabs and wide runes.
func writeContext(w io.Writer, fs *source.FileSet, span source.Span, opts PrettyOpts) {
	f := fs.Get(span.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(span)
	line := f.Line(start.Line)
	if line == "" {
		return
	}
	fmt.Fprintf(w, "  %s\n", line)

	col := int(start.Col)
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}
	pad := runewidth.StringWidth(line[:col-1])

	spanned := 1
	if end.Line == start.Line && int(end.Col) > col {
		limit := len(line) + 1
		ec := int(end.Col)
		if ec > limit {
			ec = limit
		}
		spanned = runewidth.StringWidth(line[col-1 : ec-1])
		if spanned < 1 {
			spanned = 1
		}
	}
	marker := "^" + strings.Repeat("~", spanned-1)
	if opts.Color {
		marker = spotColor.Sprint(marker)
	}
	fmt.Fprintf(w, "  %s%s\n", strings.Repeat(" ", pad), marker)
}
