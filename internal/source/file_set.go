package source

import (
	"bytes"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileID uniquely identifies a source file within a FileSet.
type FileID uint32

// File holds the content and line index of a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	// LineIdx stores the byte offset of every '\n' in Content.
	LineIdx []uint32
}

// LineCol is a 1-based human-readable position.
type LineCol struct {
	Line uint32
	Col  uint32
}

// FileSet manages loaded source files and resolves spans to line/column
// positions for diagnostic rendering.
type FileSet struct {
	files []File
	index map[string]FileID
}

func NewFileSet() *FileSet {
	return &FileSet{
		index: make(map[string]FileID),
	}
}

// Add stores normalized content under path and returns its FileID.
func (fs *FileSet) Add(path string, content []byte) FileID {
	lenFiles, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file count overflow: %w", err))
	}
	id := FileID(lenFiles)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
	})
	fs.index[path] = id
	return id
}

// Load reads a file from disk, normalizes CRLF and BOM, and adds it.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	return fs.Add(path, content), nil
}

// Get returns the file metadata for the given ID.
func (fs *FileSet) Get(id FileID) *File {
	if int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// Lookup returns the FileID registered for path.
func (fs *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fs.index[path]
	return id, ok
}

func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Resolve converts a span into start and end line/column positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	if int(span.File) >= len(fs.files) {
		return LineCol{Line: 1, Col: 1}, LineCol{Line: 1, Col: 1}
	}
	f := &fs.files[span.File]
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// Line returns the text of the 1-based line number, without the newline.
func (f *File) Line(n uint32) string {
	if n == 0 {
		return ""
	}
	lenIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index overflow: %w", err))
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	var start uint32
	switch {
	case n == 1:
		start = 0
	case n-2 < lenIdx:
		start = f.LineIdx[n-2] + 1
	default:
		return ""
	}

	end := lenContent
	if n-1 < lenIdx {
		end = f.LineIdx[n-1]
	}
	if start >= lenContent || start > end {
		return ""
	}
	return string(f.Content[start:end])
}

func buildLineIndex(content []byte) []uint32 {
	var idx []uint32
	for i, b := range content {
		if b == '\n' {
			off, err := safecast.Conv[uint32](i)
			if err != nil {
				panic(fmt.Errorf("offset overflow: %w", err))
			}
			idx = append(idx, off)
		}
	}
	return idx
}

func toLineCol(lineIdx []uint32, offset uint32) LineCol {
	line := uint32(1)
	lineStart := uint32(0)
	for _, nl := range lineIdx {
		if offset <= nl {
			break
		}
		line++
		lineStart = nl + 1
	}
	return LineCol{Line: line, Col: offset - lineStart + 1}
}
