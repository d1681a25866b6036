package diagfmt

import (
	"path/filepath"

	"reluxc/internal/diag"
	"reluxc/internal/source"
)

// Position is a 1-based line/column pair.
type Position struct {
	Line uint32 `json:"line" msgpack:"line"`
	Col  uint32 `json:"col" msgpack:"col"`
}

// Location names a span in display form.
type Location struct {
	Path  string   `json:"path" msgpack:"path"`
	Start Position `json:"start" msgpack:"start"`
	End   Position `json:"end" msgpack:"end"`
}

// NoteEntry is one secondary annotation of a diagnostic.
type NoteEntry struct {
	Location Location `json:"location" msgpack:"location"`
	Message  string   `json:"message" msgpack:"message"`
}

// Entry is one diagnostic in wire form.
type Entry struct {
	Severity string      `json:"severity" msgpack:"severity"`
	Code     string      `json:"code" msgpack:"code"`
	CodeNum  uint16      `json:"code_num" msgpack:"code_num"`
	Message  string      `json:"message" msgpack:"message"`
	Location Location    `json:"location" msgpack:"location"`
	Notes    []NoteEntry `json:"notes,omitempty" msgpack:"notes,omitempty"`
	Hint     string      `json:"hint,omitempty" msgpack:"hint,omitempty"`
}

// Report is the machine-readable form of one bag. Truncated reports keep
// the full counts so consumers can tell data was dropped.
type Report struct {
	Errors      int     `json:"errors" msgpack:"errors"`
	Warnings    int     `json:"warnings" msgpack:"warnings"`
	Diagnostics []Entry `json:"diagnostics" msgpack:"diagnostics"`
}

// BuildReport converts a bag into wire form. The bag is not modified.
func BuildReport(bag *diag.Bag, fs *source.FileSet, opts PayloadOpts) Report {
	items := bag.Items()
	rep := Report{Diagnostics: make([]Entry, 0, len(items))}
	for _, d := range items {
		switch d.Severity {
		case diag.SevError:
			rep.Errors++
		case diag.SevWarning:
			rep.Warnings++
		}
		if opts.Max > 0 && len(rep.Diagnostics) >= opts.Max {
			continue
		}
		entry := Entry{
			Severity: d.Severity.String(),
			Code:     d.Code.String(),
			CodeNum:  uint16(d.Code),
			Message:  d.Message,
			Location: wireLocation(fs, d.Primary, opts.PathMode),
			Hint:     d.Hint,
		}
		for _, n := range d.Notes {
			entry.Notes = append(entry.Notes, NoteEntry{
				Location: wireLocation(fs, n.Span, opts.PathMode),
				Message:  n.Msg,
			})
		}
		rep.Diagnostics = append(rep.Diagnostics, entry)
	}
	return rep
}

func wireLocation(fs *source.FileSet, span source.Span, mode PathMode) Location {
	path := ""
	if f := fs.Get(span.File); f != nil {
		path = f.Path
		if mode == PathModeBasename && path != "" {
			path = filepath.Base(path)
		}
	}
	start, end := fs.Resolve(span)
	return Location{
		Path:  path,
		Start: Position{Line: start.Line, Col: start.Col},
		End:   Position{Line: end.Line, Col: end.Col},
	}
}
