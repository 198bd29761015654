package feedback

import (
	"fmt"

	"github.com/Heartless-Veteran/Aegis/source"
)

// DefaultLimit is the number of diagnostics kept per phase when no explicit
// limit is configured
const DefaultLimit = 100

// Log accumulates the messages of one compilation in the order they were
// reported. Each phase keeps at most limit messages; the first message past
// the limit is replaced by a single TooManyDiagnostics marker and any later
// ones are dropped. A Log belongs to exactly one compilation
type Log struct {
	limit    int
	counts   [numPhases]int
	errors   int
	messages []Message
}

// NewLog returns an empty Log. A limit <= 0 selects DefaultLimit
func NewLog(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{limit: limit}
}

// Add records a message, applying the per-phase cap
func (l *Log) Add(msg Message) {
	if msg == nil {
		return
	}

	d := msg.Diagnostic()
	phase := d.Phase
	n := l.counts[phase]
	l.counts[phase]++

	switch {
	case n < l.limit:
		l.messages = append(l.messages, msg)
		if d.Severity == SeverityError {
			l.errors++
		}
	case n == l.limit:
		l.messages = append(l.messages, limitError{
			Error: Error{
				Code: TooManyDiagnostics,
				File: fileOf(msg),
				What: Selection{
					Description: fmt.Sprintf("too many %s diagnostics, further ones are suppressed", phase),
					Span:        d.Span,
				},
			},
			phase: phase,
		})
		l.errors++
	}
}

// Messages returns the recorded messages in report order
func (l *Log) Messages() []Message {
	return l.messages
}

// Len is the number of recorded messages, including a cap marker
func (l *Log) Len() int {
	return len(l.messages)
}

// HasErrors reports whether any recorded message is an error
func (l *Log) HasErrors() bool {
	return l.errors > 0
}

// Reported is the number of messages reported for a phase, including the
// suppressed ones
func (l *Log) Reported(phase Phase) int {
	return l.counts[phase]
}

// limitError is the cap marker. It reports the phase it caps rather than a
// fixed phase of its own
type limitError struct {
	Error
	phase Phase
}

func (e limitError) Diagnostic() Diagnostic {
	d := e.Error.Diagnostic()
	d.Phase = e.phase
	return d
}

func fileOf(msg Message) *source.File {
	switch m := msg.(type) {
	case Error:
		return m.File
	case Warning:
		return m.File
	case limitError:
		return m.File
	}
	return nil
}
