package frontend

import "strings"

// Grammar holds a collection of helper methods for classifying runes and
// keywords based on a given language specification. Operators are listed
// longest first so the lexer can apply the longest-match rule by trying them
// in order
type Grammar struct {
	Operators       []string
	PunctuatorRunes []rune
	Keywords        []string
	Booleans        []string
}

// aegisGrammar is the lexical grammar of the Aegis language
var aegisGrammar = &Grammar{
	Operators: []string{
		"==", "!=", "<=", ">=", "=>", "->", "&&", "||",
		"=", "+", "-", "*", "/", "%", "<", ">", "!", ".",
	},
	PunctuatorRunes: []rune{'(', ')', '[', ']', '{', '}', ',', ':'},
	Keywords: []string{
		"let's", "track", "app", "when", "if", "else", "for", "in", "is",
		"show", "change", "contract", "enum", "return", "async", "await",
		"nothing", "and", "or", "not", "ask_js",
	},
	Booleans: []string{"true", "false"},
}

func (g *Grammar) isCommentStart(r rune) (matches bool) {
	return (r == '#')
}

func (g *Grammar) isLineBreak(r rune) (matches bool) {
	return (r == '\n')
}

func (g *Grammar) isWhitespace(r rune) (matches bool) {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n' || r == '\f' || r == '\v'
}

func (g *Grammar) isAlphabetical(r rune) (matches bool) {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func (g *Grammar) isNumeric(r rune) (matches bool) {
	return (r >= '0' && r <= '9')
}

// isWordRune reports whether r may continue an identifier. The apostrophe is
// what makes `let's` a single word
func (g *Grammar) isWordRune(r rune) (matches bool) {
	return g.isAlphabetical(r) || g.isNumeric(r) || r == '\''
}

// isOperatorStart returns true if some operator begins with the given rune
func (g *Grammar) isOperatorStart(r rune) (matches bool) {
	for _, op := range g.Operators {
		if rune(op[0]) == r {
			return true
		}
	}

	return false
}

// matchOperator returns the longest operator that prefixes s
func (g *Grammar) matchOperator(s string) (op string, ok bool) {
	for _, candidate := range g.Operators {
		if strings.HasPrefix(s, candidate) {
			return candidate, true
		}
	}

	return "", false
}

// isPunctuatorRune returns true if a given rune is included in the Grammar's list
// of valid punctuation runes
func (g *Grammar) isPunctuatorRune(r rune) (matches bool) {
	for i, l := 0, len(g.PunctuatorRunes); i < l; i++ {
		if g.PunctuatorRunes[i] == r {
			return true
		}
	}

	return false
}

// isKeyword returns true if a given string is included in the Grammar's list
// of valid keywords
func (g *Grammar) isKeyword(s string) (matches bool) {
	for i, l := 0, len(g.Keywords); i < l; i++ {
		if g.Keywords[i] == s {
			return true
		}
	}

	return false
}

func (g *Grammar) isBoolean(s string) (matches bool) {
	for _, b := range g.Booleans {
		if b == s {
			return true
		}
	}

	return false
}
