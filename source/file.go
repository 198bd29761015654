package source

import "strings"

// File represents a chunk of source code to be processed by the front-end. The
// "Contents" field is a raw string representation of the file's contents. The
// "Lines" field is a cached slice of the file's contents split after '\n' so
// that error messages aren't required to repeatedly split the contents.
type File struct {
	Filename string
	Contents string
	Lines    []string
}

// NewFile builds a File and caches its lines
func NewFile(filename, contents string) *File {
	return &File{
		Filename: filename,
		Contents: contents,
		Lines:    strings.SplitAfter(contents, "\n"),
	}
}

// Text returns the exact source text covered by a span
func (f *File) Text(span Span) string {
	start, end := span.Start.Offset, span.End.Offset
	if start < 0 {
		start = 0
	}
	if end > len(f.Contents) {
		end = len(f.Contents)
	}
	if start >= end {
		return ""
	}
	return f.Contents[start:end]
}

// Line returns the 1-indexed line without its trailing newline, or "" when
// the line does not exist
func (f *File) Line(n int) string {
	if n < 1 || n > len(f.Lines) {
		return ""
	}
	return strings.TrimRight(f.Lines[n-1], "\r\n")
}
