// Package diag renders checker errors for a terminal, grouping them by
// source file and colorizing the position/message the way the
// teacher's internal/errors.Report did for its own diagnostics.
package diag

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/vela-lang/vela/internal/token"
)

var (
	fileColor = color.New(color.FgCyan, color.Bold)
	errColor  = color.New(color.FgRed, color.Bold)
)

// Diagnostic is one reportable checker failure, reduced to the fields a
// renderer needs: its source position and message. Every error type in
// internal/types implements error, so any of them can be wrapped here
// via FromError.
type Diagnostic struct {
	At      token.Token
	Message string
}

// FromError builds a Diagnostic from one of internal/types' error kinds
// by way of its Error() string and an explicit position, since the
// error interface alone doesn't expose a typed accessor.
func FromError(at token.Token, err error) Diagnostic {
	return Diagnostic{At: at, Message: err.Error()}
}

// Report collects diagnostics for a single checking run and renders them
// grouped by file in position order, mirroring the teacher's
// multi-file report grouping.
type Report struct {
	diagnostics []Diagnostic
}

// NewReport creates an empty report.
func NewReport() *Report { return &Report{} }

// Add appends one diagnostic.
func (r *Report) Add(d Diagnostic) { r.diagnostics = append(r.diagnostics, d) }

// Empty reports whether nothing has been added.
func (r *Report) Empty() bool { return len(r.diagnostics) == 0 }

// Len returns the diagnostic count.
func (r *Report) Len() int { return len(r.diagnostics) }

// Write renders every diagnostic to w, grouped by file path and ordered
// by row then column within each file.
func (r *Report) Write(w io.Writer, useColor bool) {
	sorted := append([]Diagnostic{}, r.diagnostics...)
	sort.SliceStable(sorted, func(i, j int) bool {
		fi, fj := filePath(sorted[i].At), filePath(sorted[j].At)
		if fi != fj {
			return fi < fj
		}
		if sorted[i].At.Row != sorted[j].At.Row {
			return sorted[i].At.Row < sorted[j].At.Row
		}
		return sorted[i].At.Col < sorted[j].At.Col
	})

	lastFile := ""
	for _, d := range sorted {
		path := filePath(d.At)
		if path != lastFile {
			if useColor {
				fileColor.Fprintln(w, path)
			} else {
				fmt.Fprintln(w, path)
			}
			lastFile = path
		}
		loc := fmt.Sprintf("  %d:%d:", d.At.Row, d.At.Col)
		if useColor {
			errColor.Fprintf(w, "%s %s\n", loc, d.Message)
		} else {
			fmt.Fprintf(w, "%s %s\n", loc, d.Message)
		}
	}
}

func filePath(t token.Token) string {
	if t.File == nil {
		return "<unknown>"
	}
	return t.File.Path
}
