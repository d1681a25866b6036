// Package diagfmt renders accumulated diagnostics for humans and tools:
// a colored pretty format with source context, a JSON payload, and a
// msgpack payload for editor integrations.
package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeFull prints paths exactly as registered in the file set.
	PathModeFull PathMode = iota
	// PathModeBasename prints only the final path element.
	PathModeBasename
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	ShowNotes bool
	ShowHints bool
}

// DefaultPrettyOpts shows everything without color.
func DefaultPrettyOpts() PrettyOpts {
	return PrettyOpts{ShowNotes: true, ShowHints: true}
}

// PayloadOpts configures the machine-readable formats.
type PayloadOpts struct {
	PathMode PathMode
	// Max truncates the emitted list; zero means no limit. The bag itself
	// is never modified.
	Max int
}
