// Package token defines the source-location value types the scanner and
// parser collaborators attach to every node they produce. The type
// checker never constructs these itself (scanning/parsing is out of
// scope); it only carries them through to error records so diagnostics
// can be rendered at their cause.
package token

import "fmt"

// File is an opaque, pointer-identified source file descriptor. Two
// tokens from the same file share the same *File pointer.
type File struct {
	Path string
}

// Token is a tuple {source_text, file_descriptor, row_column_index}.
type Token struct {
	Text string
	File *File
	Row  int // 1-based
	Col  int // 1-based
}

// Zero is the absence of a token (e.g. for synthesized equations that
// have no single source cause).
var Zero = Token{}

func (t Token) IsZero() bool {
	return t.File == nil && t.Text == "" && t.Row == 0 && t.Col == 0
}

func (t Token) String() string {
	if t.File == nil {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", t.File.Path, t.Row, t.Col)
}
