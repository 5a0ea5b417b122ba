package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"rill/internal/diag"
	"rill/internal/source"
)

func oneDiagBag(d diag.Diagnostic) *diag.Bag {
	bag := diag.NewBag(10)
	bag.Add(d)
	return bag
}

func TestPrettyHeaderAndUnderline(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("struct Holder {\n    value: _,\n}\n")
	fileID := fs.Add("src/holder.rl", content, source.FileVirtual)

	// The hole is the '_' on line 2, column 12.
	hole := source.Span{File: fileID, Start: 27, End: 28}
	bag := oneDiagBag(diag.NewError(diag.ColPlaceholderType, hole,
		"the placeholder `_` is not allowed within types on item signatures"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	out := buf.String()

	if !strings.Contains(out, "src/holder.rl:2:12: ERROR R4001:") {
		t.Errorf("header missing or misplaced:\n%s", out)
	}
	if !strings.Contains(out, "    2 |     value: _,") {
		t.Errorf("source line missing:\n%s", out)
	}
	// Underline sits under the hole: 11 bytes of line prefix, then ^.
	if !strings.Contains(out, "      | "+strings.Repeat(" ", 11)+"^\n") {
		t.Errorf("underline misaligned:\n%s", out)
	}
}

func TestPrettyMultiByteUnderlineUsesCellWidth(t *testing.T) {
	fs := source.NewFileSet()
	// The CJK rune is 3 bytes but 2 cells wide.
	content := []byte("let 宽 = _;\n")
	fileID := fs.Add("w.rl", content, source.FileVirtual)

	hole := source.Span{File: fileID, Start: 10, End: 11}
	bag := oneDiagBag(diag.NewError(diag.ColPlaceholderType, hole, "placeholder"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	out := buf.String()

	// "let 宽 = " is 9 cells, so the caret needs 9 spaces of padding.
	if !strings.Contains(out, "      | "+strings.Repeat(" ", 9)+"^\n") {
		t.Errorf("wide rune broke caret alignment:\n%s", out)
	}
}

func TestPrettyNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("struct S { x: u32, x: u32 }\n")
	fileID := fs.Add("dup.rl", content, source.FileVirtual)

	first := source.Span{File: fileID, Start: 11, End: 12}
	second := source.Span{File: fileID, Start: 19, End: 20}
	d := diag.NewError(diag.ColDuplicateField, second, "field `x` is already declared").
		WithNote(first, "first declaration here").
		WithFix("rename the duplicate field", diag.FixEdit{Span: second, NewText: "y"})

	var buf bytes.Buffer
	Pretty(&buf, oneDiagBag(d), fs, PrettyOpts{ShowNotes: true, ShowFixes: true})
	out := buf.String()

	if !strings.Contains(out, "note: dup.rl:1:12: first declaration here") {
		t.Errorf("note missing:\n%s", out)
	}
	if !strings.Contains(out, "help: rename the duplicate field") {
		t.Errorf("fix title missing:\n%s", out)
	}
	if !strings.Contains(out, `replace with "y"`) {
		t.Errorf("fix edit missing:\n%s", out)
	}

	buf.Reset()
	Pretty(&buf, oneDiagBag(d), fs, PrettyOpts{})
	if strings.Contains(buf.String(), "note:") || strings.Contains(buf.String(), "help:") {
		t.Errorf("notes/fixes shown when disabled:\n%s", buf.String())
	}
}

func TestPrettyContextLines(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("line one\nline two\nline three\nline four\n")
	fileID := fs.Add("ctx.rl", content, source.FileVirtual)

	span := source.Span{File: fileID, Start: 14, End: 17} // "two"
	bag := oneDiagBag(diag.NewWarning(diag.ColInfo, span, "something"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1})
	out := buf.String()

	for _, want := range []string{"1 | line one", "2 | line two", "3 | line three"} {
		if !strings.Contains(out, want) {
			t.Errorf("context line %q missing:\n%s", want, out)
		}
	}
	if strings.Contains(out, "line four") {
		t.Errorf("context overshoots:\n%s", out)
	}
}

func TestDisplayPathModes(t *testing.T) {
	long := "/very/long/absolute/path/to/some/nested/dir/file.rl"
	tests := []struct {
		name string
		mode PathMode
		base string
		path string
		want string
	}{
		{"absolute", PathModeAbsolute, "", long, long},
		{"basename", PathModeBasename, "", long, "file.rl"},
		{"relative inside base", PathModeRelative, "/home/u/proj", "/home/u/proj/src/a.rl", "src/a.rl"},
		{"relative outside base", PathModeRelative, "/home/u/proj", "/etc/a.rl", "/etc/a.rl"},
		{"auto short", PathModeAuto, "", "src/a.rl", "src/a.rl"},
		{"auto long", PathModeAuto, "", long, "file.rl"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displayPath(tt.path, tt.mode, tt.base); got != tt.want {
				t.Errorf("displayPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
