package feedback

// Phase identifies the pipeline stage that produced a message
type Phase int

// Pipeline phases in the order they run
const (
	Lexical Phase = iota
	Syntax
	Semantic
	numPhases
)

func (p Phase) String() string {
	switch p {
	case Lexical:
		return "lexical"
	case Syntax:
		return "syntax"
	case Semantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Severity separates errors, which make a program invalid, from warnings
type Severity int

// Severities
const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Code is a stable diagnostic identifier. Downstream tools key off these
// values so existing codes must never be renumbered
type Code string

// Diagnostic codes
const (
	IllegalCharacter     Code = "E001"
	UnterminatedString   Code = "E002"
	UnexpectedToken      Code = "E003"
	MissingDelimiter     Code = "E004"
	TypeMismatch         Code = "E005"
	UndefinedVariable    Code = "E006"
	DuplicateDeclaration Code = "E007"
	UndefinedFunction    Code = "E008"
	ArgumentMismatch     Code = "E009"
	AwaitOutsideAsync    Code = "E010"
	UnknownField         Code = "E011"
	MissingField         Code = "E012"
	UndefinedType        Code = "E013"
	InvalidEscape        Code = "E015"
	InvalidAssignment    Code = "E016"
	ReturnOutsideFunc    Code = "E017"
	TooManyDiagnostics   Code = "E099"
	NestingTooDeep       Code = "E100"

	UnknownUIProperty Code = "W001"
	UnknownUIEvent    Code = "W002"
	NonExhaustiveWhen Code = "W003"
	UnknownUIElement  Code = "W004"
)

type codeInfo struct {
	phase Phase
	title string
}

var codeTable = map[Code]codeInfo{
	IllegalCharacter:     {Lexical, "illegal character"},
	UnterminatedString:   {Lexical, "unterminated string"},
	InvalidEscape:        {Lexical, "invalid escape sequence"},
	UnexpectedToken:      {Syntax, "unexpected token"},
	MissingDelimiter:     {Syntax, "missing delimiter"},
	NestingTooDeep:       {Syntax, "nesting too deep"},
	TypeMismatch:         {Semantic, "type mismatch"},
	UndefinedVariable:    {Semantic, "undefined variable"},
	DuplicateDeclaration: {Semantic, "duplicate declaration"},
	UndefinedFunction:    {Semantic, "undefined function"},
	ArgumentMismatch:     {Semantic, "argument mismatch"},
	AwaitOutsideAsync:    {Semantic, "await outside async"},
	UnknownField:         {Semantic, "unknown field"},
	MissingField:         {Semantic, "missing field"},
	UndefinedType:        {Semantic, "undefined type"},
	InvalidAssignment:    {Semantic, "invalid assignment"},
	ReturnOutsideFunc:    {Semantic, "return outside function"},
	UnknownUIProperty:    {Semantic, "unknown UI property"},
	UnknownUIEvent:       {Semantic, "unknown UI event"},
	NonExhaustiveWhen:    {Semantic, "non-exhaustive when"},
	UnknownUIElement:     {Semantic, "unknown UI element"},
	TooManyDiagnostics:   {Semantic, "too many diagnostics"},
}

// Phase returns the pipeline phase a code belongs to. The cap marker has no
// fixed phase; the Log stamps it with the phase it caps
func (c Code) Phase() Phase {
	return codeTable[c].phase
}

// Title is the short human classification printed in message headers
func (c Code) Title() string {
	if info, ok := codeTable[c]; ok {
		return info.title
	}
	return string(c)
}
