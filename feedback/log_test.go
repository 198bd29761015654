package feedback

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Heartless-Veteran/Aegis/source"
)

func errAt(code Code, line int) Error {
	pos := source.Pos{Line: line, Col: 1}
	return Error{Code: code, What: Selection{Description: fmt.Sprintf("line %d", line), Span: source.Span{Start: pos, End: pos}}}
}

func TestLogKeepsReportOrder(t *testing.T) {
	log := NewLog(10)
	log.Add(errAt(UnexpectedToken, 1))
	log.Add(Warning{Code: UnknownUIElement})
	log.Add(errAt(UndefinedVariable, 3))
	log.Add(nil)

	require.Equal(t, 3, log.Len())
	assert.Equal(t, UnexpectedToken, log.Messages()[0].Diagnostic().Code)
	assert.Equal(t, SeverityWarning, log.Messages()[1].Diagnostic().Severity)
	assert.Equal(t, UndefinedVariable, log.Messages()[2].Diagnostic().Code)
	assert.True(t, log.HasErrors())
}

func TestLogWarningsAreNotErrors(t *testing.T) {
	log := NewLog(0)
	log.Add(Warning{Code: NonExhaustiveWhen})
	assert.False(t, log.HasErrors())
}

func TestLogCapsEachPhase(t *testing.T) {
	log := NewLog(3)

	for i := 1; i <= 6; i++ {
		log.Add(errAt(TypeMismatch, i))
	}
	log.Add(errAt(UnexpectedToken, 7))

	msgs := log.Messages()
	require.Len(t, msgs, 5)

	for _, msg := range msgs[:3] {
		assert.Equal(t, TypeMismatch, msg.Diagnostic().Code)
	}

	marker := msgs[3].Diagnostic()
	assert.Equal(t, TooManyDiagnostics, marker.Code)
	assert.Equal(t, Semantic, marker.Phase)
	assert.Equal(t, 4, marker.Span.Start.Line)

	assert.Equal(t, UnexpectedToken, msgs[4].Diagnostic().Code, "the syntax phase has its own budget")
	assert.Equal(t, 6, log.Reported(Semantic))
	assert.Equal(t, 1, log.Reported(Syntax))
}

func TestCodePhases(t *testing.T) {
	tests := []struct {
		code  Code
		phase Phase
	}{
		{IllegalCharacter, Lexical},
		{UnterminatedString, Lexical},
		{UnexpectedToken, Syntax},
		{MissingDelimiter, Syntax},
		{TypeMismatch, Semantic},
		{UndefinedVariable, Semantic},
		{DuplicateDeclaration, Semantic},
		{UnknownUIProperty, Semantic},
	}

	for _, test := range tests {
		assert.Equal(t, test.phase, test.code.Phase(), string(test.code))
	}
}
