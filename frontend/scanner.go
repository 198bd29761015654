package frontend

import (
	"unicode/utf8"

	"github.com/Heartless-Veteran/Aegis/source"
)

/**
 * # Handling of Line & File terminations
 *
 * The first character in each line is considered to be in column 1. A newline
 * at the end of a line with `N` characters is considered to be in column
 * `N + 1`.
 *
 * Once the document is exhausted `Peek()` and `Next()` keep returning the
 * position just past the last rune with the eof flag set, so callers never
 * have to guard against scanning past the end.
 */

// Scanner structs hold the state of a scanner instance which consumes source
// code runes one at a time. Since source code documents can be Unicode, the
// scanner must keep track of each rune's byte offset. The scanner also records
// line and column data which it emits along with each rune.
type Scanner struct {
	File     *source.File
	nextByte int // initialized to 0
	nextLine int // ...  ...  ...  1
	nextCol  int // ...  ...  ...  1
}

// NewScanner is a basic constructor function for Scanners which populates
// private fields with the appropriate starting values
func NewScanner(file *source.File) *Scanner {
	s := &Scanner{File: file}
	s.Reset()
	return s
}

// Reset rewinds the scanner to the top of the document
func (s *Scanner) Reset() {
	s.nextByte = 0
	s.nextLine = 1
	s.nextCol = 1
}

// Pos is the position of the next rune
func (s *Scanner) Pos() source.Pos {
	return source.Pos{Offset: s.nextByte, Line: s.nextLine, Col: s.nextCol}
}

// Rest returns the unread part of the document
func (s *Scanner) Rest() string {
	return s.File.Contents[s.nextByte:]
}

// Peek returns the next rune and its position without advancing the Scanner
func (s *Scanner) Peek() (r rune, pos source.Pos, eof bool) {
	pos = s.Pos()

	if s.nextByte >= len(s.File.Contents) {
		return 0, pos, true
	}

	r, _ = utf8.DecodeRuneInString(s.File.Contents[s.nextByte:])
	return r, pos, false
}

// PeekSecond returns the rune after the next one, or 0 when there is none
func (s *Scanner) PeekSecond() rune {
	if s.nextByte >= len(s.File.Contents) {
		return 0
	}

	_, width := utf8.DecodeRuneInString(s.File.Contents[s.nextByte:])
	if s.nextByte+width >= len(s.File.Contents) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(s.File.Contents[s.nextByte+width:])
	return r
}

// Next returns the next rune and its position and advances the Scanner
// permanently
func (s *Scanner) Next() (r rune, pos source.Pos, eof bool) {
	pos = s.Pos()

	if s.nextByte >= len(s.File.Contents) {
		return 0, pos, true
	}

	// Extract the next rune from the document buffer
	runeValue, runeWidth := utf8.DecodeRuneInString(s.File.Contents[s.nextByte:])

	// Update `nextLine`, `nextCol`
	if runeValue == '\n' {
		s.nextLine++
		s.nextCol = 1
	} else {
		s.nextCol++
	}

	// Update `nextByte` to account for byte width of this rune
	s.nextByte += runeWidth

	return runeValue, pos, false
}
