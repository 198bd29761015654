package source

import "fmt"

// Pos holds the offset/line/column data for a single rune in a source code
// document. Offset is a byte offset starting at 0, Line and Col start at 1
// and Col counts runes, not bytes
type Pos struct {
	Offset int
	Line   int
	Col    int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Before reports whether p comes strictly before q in the document
func (p Pos) Before(q Pos) bool {
	return p.Offset < q.Offset
}

// Span holds a Start and End position in a source code document. End is the
// position just past the last rune so that an empty span has Start == End
type Span struct {
	Start Pos
	End   Pos
}

// Cover returns the smallest span containing both a and b
func Cover(a, b Span) Span {
	out := a
	if b.Start.Before(out.Start) {
		out.Start = b.Start
	}
	if out.End.Before(b.End) {
		out.End = b.End
	}
	return out
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}
