package source

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"sort"

	"fortio.org/safecast"
)

// FileSet manages the source files a crate was built from. The middle
// tier never reads files itself; the frontend registers them so
// diagnostics can be rendered with source context.
type FileSet struct {
	files []File
	index map[string]FileID
}

func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores a file, computes its line index and content hash, and
// returns a fresh FileID. A path may be registered more than once; each
// registration gets its own id.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	lenFiles, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("source: file count overflow: %w", err))
	}
	id := FileID(lenFiles)
	normalized := filepath.ToSlash(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	if _, seen := fs.index[normalized]; !seen {
		fs.index[normalized] = id
	}
	return id
}

// Get returns the file for an id, or nil if the id is unknown.
func (fs *FileSet) Get(id FileID) *File {
	if int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// Lookup returns the id registered first for a path.
func (fs *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fs.index[filepath.ToSlash(path)]
	return id, ok
}

func (fs *FileSet) Len() int {
	return len(fs.files)
}

// Position resolves a byte offset in a file to a 1-based line/column.
func (fs *FileSet) Position(file FileID, offset uint32) LineCol {
	f := fs.Get(file)
	if f == nil {
		return LineCol{Line: 1, Col: 1}
	}
	// LineIdx[i] is the byte offset where line i+1 starts.
	line := sort.Search(len(f.LineIdx), func(i int) bool {
		return f.LineIdx[i] > offset
	})
	if line == 0 {
		return LineCol{Line: 1, Col: offset + 1}
	}
	lineNo, err := safecast.Conv[uint32](line)
	if err != nil {
		panic(fmt.Errorf("source: line number overflow: %w", err))
	}
	return LineCol{
		Line: lineNo + 1,
		Col:  offset - f.LineIdx[line-1] + 1,
	}
}

// Line returns the raw bytes of a 1-based line, without the newline.
func (fs *FileSet) Line(file FileID, line uint32) []byte {
	f := fs.Get(file)
	if f == nil || line == 0 || int(line) > len(f.LineIdx)+1 {
		return nil
	}
	var start uint32
	if line > 1 {
		start = f.LineIdx[line-2]
	}
	end := uint32(len(f.Content))
	if int(line) <= len(f.LineIdx) {
		end = f.LineIdx[line-1]
	}
	for end > start && (f.Content[end-1] == '\n' || f.Content[end-1] == '\r') {
		end--
	}
	return f.Content[start:end]
}

// buildLineIndex records the byte offset following each '\n'.
func buildLineIndex(content []byte) []uint32 {
	var idx []uint32
	for i, b := range content {
		if b == '\n' {
			idx = append(idx, uint32(i)+1)
		}
	}
	return idx
}
