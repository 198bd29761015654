package feedback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Heartless-Veteran/Aegis/source"
)

func span(line, from, to int) source.Span {
	return source.Span{
		Start: source.Pos{Line: line, Col: from},
		End:   source.Pos{Line: line, Col: to},
	}
}

func TestErrorMake(t *testing.T) {
	file := source.NewFile("todo.aegis", "let's x = 1\nprint(y)\n")

	msg := Error{
		Code: UndefinedVariable,
		File: file,
		What: Selection{Description: "undefined variable `y`", Span: span(2, 7, 8)},
	}

	expected := strings.Join([]string{
		"error[E006]: undefined variable",
		"  --> todo.aegis:2:7",
		"   |",
		" 2 | print(y)",
		"   |       ^ undefined variable `y`",
	}, "\n")

	assert.Equal(t, expected, msg.Make(false))
}

func TestWarningMakeWithWhy(t *testing.T) {
	file := source.NewFile("app.aegis", "let's a = 1\nlet's b = 2\nlet's c = 3\nlet's a = 4\n")

	msg := Warning{
		Code: NonExhaustiveWhen,
		File: file,
		What: Selection{Description: "second", Span: span(4, 7, 8)},
		Why:  []Selection{{Description: "first", Span: span(1, 7, 8)}},
	}

	expected := strings.Join([]string{
		"warning[W003]: non-exhaustive when",
		"  --> app.aegis:4:7",
		"   |",
		" 1 | let's a = 1",
		"   |       - first",
		"  ...",
		" 4 | let's a = 4",
		"   |       ^ second",
	}, "\n")

	assert.Equal(t, expected, msg.Make(false))
}

func TestDiagnosticView(t *testing.T) {
	msg := Error{Code: MissingField, What: Selection{Description: "missing field `title`", Span: span(3, 1, 4)}}

	d := msg.Diagnostic()
	assert.Equal(t, MissingField, d.Code)
	assert.Equal(t, SeverityError, d.Severity)
	assert.Equal(t, Semantic, d.Phase)
	assert.Equal(t, "3:1 error[E012] semantic: missing field `title`", d.String())
}
