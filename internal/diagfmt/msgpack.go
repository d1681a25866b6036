package diagfmt

import (
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"reluxc/internal/diag"
	"reluxc/internal/source"
)

// Msgpack writes the report in msgpack encoding for editor integrations
// that poll diagnostics over a pipe.
func Msgpack(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PayloadOpts) error {
	enc := msgpack.NewEncoder(w)
	return enc.Encode(BuildReport(bag, fs, opts))
}

// DecodeReport reads one msgpack-encoded report back. Round-trip decoding
// is what the editor side of the pipe does.
func DecodeReport(r io.Reader) (Report, error) {
	var rep Report
	err := msgpack.NewDecoder(r).Decode(&rep)
	return rep, err
}
