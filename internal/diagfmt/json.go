package diagfmt

import (
	"encoding/json"
	"io"

	"reluxc/internal/diag"
	"reluxc/internal/source"
)

// JSON writes the report as indented JSON followed by a newline.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PayloadOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildReport(bag, fs, opts))
}
