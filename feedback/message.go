package feedback

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Heartless-Veteran/Aegis/source"
	"github.com/fatih/color"
)

const (
	warningColors = iota
	errorColors   = iota
	helperColors  = iota
	noColors      = iota
)

// Message is the interface for all Warnings and Errors that can be emitted
// by the stages of the pipeline
type Message interface {
	Make(withColor bool) string
	Diagnostic() Diagnostic
}

// Diagnostic is the plain data view of a Message, used by tools that key off
// stable codes instead of rendered text
type Diagnostic struct {
	Code     Code
	Severity Severity
	Phase    Phase
	Message  string
	Span     source.Span
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s %s[%s] %s: %s", d.Span.Start, d.Severity, d.Code, d.Phase, d.Message)
}

// Selection represents a region of the source code file along with a
// corresponding description that supplies information as to why an warning or
// error occured
type Selection struct {
	Description string
	Span        source.Span
}

// Warning messages are emitted by the pipeline to highlight issues which might
// need to be addressed by the source code author
type Warning struct {
	Code Code
	File *source.File
	What Selection
	Why  []Selection
}

// Make takes a Warning and produces a fully rendered message with the option of
// using colors to make elements of the message more clear. The rendered message
// is returned as a single string and can be then output to stdout or some other
// destination
func (w Warning) Make(withColor bool) string {
	return makeMessage(w.Code, w.File, w.What, w.Why, warningColors, withColor)
}

// Diagnostic returns the data view of the warning
func (w Warning) Diagnostic() Diagnostic {
	return Diagnostic{
		Code:     w.Code,
		Severity: SeverityWarning,
		Phase:    w.Code.Phase(),
		Message:  w.What.Description,
		Span:     w.What.Span,
	}
}

// Error messages are more serious than warnings and make the program invalid.
// This includes illegal syntax, undefined variables or type errors
type Error struct {
	Code Code
	File *source.File
	What Selection
	Why  []Selection
}

// Make takes an Error and produces a fully rendered message with the option of
// using colors to make elements of the message more clear
func (e Error) Make(withColor bool) string {
	return makeMessage(e.Code, e.File, e.What, e.Why, errorColors, withColor)
}

// Diagnostic returns the data view of the error
func (e Error) Diagnostic() Diagnostic {
	return Diagnostic{
		Code:     e.Code,
		Severity: SeverityError,
		Phase:    e.Code.Phase(),
		Message:  e.What.Description,
		Span:     e.What.Span,
	}
}

// palette holds the color functions for one rendering. Colors are decided per
// call so concurrent renderings never fight over package state
type palette struct {
	yellow, yellowBold func(a ...interface{}) string
	red, redBold       func(a ...interface{}) string
	blue               func(a ...interface{}) string
}

func newPalette(withColor bool) palette {
	mk := func(attrs ...color.Attribute) func(a ...interface{}) string {
		c := color.New(attrs...)
		if withColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}

	return palette{
		yellow:     mk(color.FgYellow),
		yellowBold: mk(color.FgYellow, color.Bold),
		red:        mk(color.FgRed),
		redBold:    mk(color.FgRed, color.Bold),
		blue:       mk(color.FgBlue),
	}
}

// makeMessage is a utility function which takes any Message and a corresponding
// File to make a rendered message of the form:
//
//	<message type>[<code>]: <classification>
//	  --> <filename>:<line number>:<column number>
//	   |
//	 1 | <offending line of source code>
//	   |  ^^^^^^^^^ <message detailing error>
func makeMessage(code Code, file *source.File, what Selection, why []Selection, colorScheme int, withColor bool) string {
	pal := newPalette(withColor)

	var lines []string

	maxLineNum := getMaxLineNum(append([]Selection{what}, why...)...)
	placeValues := utf8.RuneCountInString(fmt.Sprintf("%d", maxLineNum))

	if colorScheme == warningColors {
		lines = append(lines, pal.yellowBold(fmt.Sprintf("warning[%s]: %s", code, code.Title())))
	} else {
		lines = append(lines, pal.redBold(fmt.Sprintf("error[%s]: %s", code, code.Title())))
	}

	if file == nil {
		lines = append(lines, fmt.Sprintf(" %s%s %s: %s",
			mulStr(" ", placeValues), pal.blue("-->"), what.Span.Start, what.Description))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf(" %s%s %s:%d:%d",
		mulStr(" ", placeValues),
		pal.blue("-->"),
		file.Filename,
		what.Span.Start.Line,
		what.Span.Start.Col))

	lines = append(lines, pal.blue(fmt.Sprintf(" %s |", mulStr(" ", placeValues))))

	prevLastLine := 0
	for _, sel := range why {
		if prevLastLine > 0 && prevLastLine+1 < sel.Span.Start.Line {
			lines = append(lines, fmt.Sprintf(" %s%s", mulStr(" ", placeValues), pal.blue("...")))
		}

		lines = append(lines, sourceCodeSelection(pal, file, sel, helperColors, placeValues)...)
		prevLastLine = lastLine(sel.Span)
	}

	if prevLastLine > 0 && prevLastLine+1 < what.Span.Start.Line {
		lines = append(lines, fmt.Sprintf(" %s%s", mulStr(" ", placeValues), pal.blue("...")))
	}

	lines = append(lines, sourceCodeSelection(pal, file, what, colorScheme, placeValues)...)
	return strings.Join(lines, "\n")
}

// lastLine is the last line a span touches. A span that ends exactly at the
// start of a line does not include that line
func lastLine(span source.Span) int {
	if span.End.Line > span.Start.Line && span.End.Col == 1 {
		return span.End.Line - 1
	}
	if span.End.Line < span.Start.Line {
		return span.Start.Line
	}
	return span.End.Line
}

// sourceCodeSelection is a utility function which, given a File and a Selection
// extracts an offending line of source code from the source file and renders
// the line along with its line number and the description set to accompany that
// line of source code
func sourceCodeSelection(pal palette, file *source.File, sel Selection, colorScheme int, placeValues int) (lines []string) {
	first, last := sel.Span.Start.Line, lastLine(sel.Span)

	// Every selection's margin is shifted to the widest margin needed by the
	// largest line number in ANY included selection so excerpts stay aligned
	numMargFmt := fmt.Sprintf("%%%dd", placeValues)
	emptyMargFmt := mulStr(" ", placeValues)

	for lineNum := first; lineNum <= last; lineNum++ {
		srcLine := file.Line(lineNum)
		lineNumFmt := fmt.Sprintf(numMargFmt, lineNum)

		focusStart := 1
		if lineNum == first {
			focusStart = sel.Span.Start.Col
		}

		focusEnd := utf8.RuneCountInString(srcLine) + 1
		if lineNum == sel.Span.End.Line {
			focusEnd = sel.Span.End.Col
		}

		prefix, focus, suffix := highlightSourceLine(srcLine, focusStart, focusEnd)

		switch colorScheme {
		case warningColors:
			focus = pal.yellow(focus)
		case errorColors:
			focus = pal.red(focus)
		case helperColors:
			focus = pal.blue(focus)
		}

		lines = append(lines, fmt.Sprintf(" %s %s %s%s%s", pal.blue(lineNumFmt), pal.blue("|"), prefix, focus, suffix))
	}

	if sel.Description == "" {
		return lines
	}

	var underlineChar string
	var desc string

	switch colorScheme {
	case warningColors:
		underlineChar = pal.yellow("^")
		desc = pal.yellow(sel.Description)
	case errorColors:
		underlineChar = pal.red("^")
		desc = pal.red(sel.Description)
	default:
		underlineChar = pal.blue("-")
		desc = pal.blue(sel.Description)
	}

	leftPad := mulStr(" ", sel.Span.Start.Col-1)

	width := sel.Span.End.Col - sel.Span.Start.Col
	if first != last || sel.Span.End.Line != first {
		width = utf8.RuneCountInString(file.Line(first)) - sel.Span.Start.Col + 1
	}

	// Underline width must be at least 1 character wide
	if width < 1 {
		width = 1
	}

	lines = append(lines, fmt.Sprintf(" %s %s %s%s %s", emptyMargFmt, pal.blue("|"), leftPad, mulStr(underlineChar, width), desc))

	return lines
}

// getMaxLineNum returns the largest line number present in a collection of
// Selection structs
func getMaxLineNum(selections ...Selection) (max int) {
	max = 1

	for _, sel := range selections {
		if l := lastLine(sel.Span); l > max {
			max = l
		}
	}

	return max
}

// highlightSourceLine takes a line of source code and 2 column numbers and
// returns the segment before the first column, the segment from the first
// column up to (not including) the second, and the rest of the line
func highlightSourceLine(line string, start, end int) (prefix, focus, suffix string) {
	nextByte := 0

	for i := 1; i < end && nextByte < len(line); i++ {
		runeValue, runeWidth := utf8.DecodeRuneInString(line[nextByte:])
		nextByte += runeWidth

		if i < start {
			prefix += string(runeValue)
		} else {
			focus += string(runeValue)
		}
	}

	suffix = line[nextByte:]

	return prefix, focus, suffix
}

// mulStr repeats a string "n" times
func mulStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(s, n)
}
