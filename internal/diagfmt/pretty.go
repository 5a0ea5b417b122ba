// Package diagfmt renders accumulated diagnostics for humans and
// machines. It only reads the bag; sorting is the caller's job.
package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"rill/internal/diag"
	"rill/internal/source"
)

// autoPathLimit is the length past which PathModeAuto falls back to the
// basename.
const autoPathLimit = 40

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	codeColor    = color.New(color.Bold)
	gutterColor  = color.New(color.FgBlue)
	noteColor    = color.New(color.FgCyan)
	fixColor     = color.New(color.FgGreen)
)

// Pretty renders every diagnostic in the bag. For each one it prints
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// followed by the source line with a ^~~~ underline, then notes and
// suggested fixes when enabled.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := &prettyPrinter{w: w, fs: fs, opts: opts}
	for _, d := range bag.Items() {
		p.diagnostic(&d)
	}
}

type prettyPrinter struct {
	w    io.Writer
	fs   *source.FileSet
	opts PrettyOpts
}

func (p *prettyPrinter) paint(c *color.Color, s string) string {
	if !p.opts.Color {
		return s
	}
	return c.Sprint(s)
}

func (p *prettyPrinter) severity(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return p.paint(errorColor, sev.String())
	case diag.SevWarning:
		return p.paint(warningColor, sev.String())
	default:
		return p.paint(infoColor, sev.String())
	}
}

func (p *prettyPrinter) location(span source.Span) string {
	f := p.fs.Get(span.File)
	if f == nil {
		return fmt.Sprintf("<unknown>:%d", span.Start)
	}
	pos := p.fs.Position(span.File, span.Start)
	path := displayPath(f.Path, p.opts.PathMode, p.opts.BaseDir)
	return fmt.Sprintf("%s:%d:%d", path, pos.Line, pos.Col)
}

func (p *prettyPrinter) diagnostic(d *diag.Diagnostic) {
	fmt.Fprintf(p.w, "%s: %s %s: %s\n",
		p.location(d.Primary),
		p.severity(d.Severity),
		p.paint(codeColor, d.Code.String()),
		d.Message)
	p.sourceContext(d.Primary, d.Severity)

	if p.opts.ShowNotes {
		for _, note := range d.Notes {
			fmt.Fprintf(p.w, "  %s %s: %s\n",
				p.paint(noteColor, "note:"), p.location(note.Span), note.Msg)
			p.sourceContext(note.Span, diag.SevInfo)
		}
	}
	if p.opts.ShowFixes {
		for _, fix := range d.Fixes {
			fmt.Fprintf(p.w, "  %s %s\n", p.paint(fixColor, "help:"), fix.Title)
			for _, edit := range fix.Edits {
				if edit.Span.Empty() {
					fmt.Fprintf(p.w, "    %s: insert %q\n", p.location(edit.Span), edit.NewText)
				} else {
					fmt.Fprintf(p.w, "    %s: replace with %q\n", p.location(edit.Span), edit.NewText)
				}
			}
		}
	}
}

// sourceContext prints the primary line with an underline, plus
// opts.Context surrounding lines.
func (p *prettyPrinter) sourceContext(span source.Span, sev diag.Severity) {
	f := p.fs.Get(span.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	pos := p.fs.Position(span.File, span.Start)

	first := pos.Line
	if extra := uint32(max(p.opts.Context, 0)); extra < first {
		first -= extra
	} else {
		first = 1
	}
	last := pos.Line + uint32(max(p.opts.Context, 0))

	for ln := first; ln <= last; ln++ {
		text := p.fs.Line(span.File, ln)
		if text == nil && ln != pos.Line {
			continue
		}
		fmt.Fprintf(p.w, "%s %s\n", p.paint(gutterColor, fmt.Sprintf("%5d |", ln)), text)
		if ln == pos.Line {
			p.underline(span, pos, text, sev)
		}
	}
}

// underline writes the ^~~~ marker under the span's slice of line.
// Widths use terminal cells, not bytes, so wide runes stay aligned.
func (p *prettyPrinter) underline(span source.Span, pos source.LineCol, line []byte, sev diag.Severity) {
	col := int(pos.Col) - 1
	if col > len(line) {
		col = len(line)
	}
	prefix := runewidth.StringWidth(string(line[:col]))

	end := col + int(span.Len())
	if span.Len() == 0 {
		end = col + 1
	}
	if end > len(line) {
		end = len(line)
	}
	width := 1
	if end > col {
		width = runewidth.StringWidth(string(line[col:end]))
		if width < 1 {
			width = 1
		}
	}

	marker := "^" + strings.Repeat("~", width-1)
	c := infoColor
	switch sev {
	case diag.SevError:
		c = errorColor
	case diag.SevWarning:
		c = warningColor
	}
	fmt.Fprintf(p.w, "%s %s%s\n",
		p.paint(gutterColor, "      |"),
		strings.Repeat(" ", prefix),
		p.paint(c, marker))
}

func displayPath(path string, mode PathMode, baseDir string) string {
	switch mode {
	case PathModeAbsolute:
		return path
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeRelative:
		if baseDir != "" {
			if rel, err := filepath.Rel(baseDir, path); err == nil && !strings.HasPrefix(rel, "..") {
				return rel
			}
		}
		return path
	default:
		if len(path) > autoPathLimit {
			return filepath.Base(path)
		}
		return path
	}
}
