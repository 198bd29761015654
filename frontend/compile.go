package frontend

import (
	"io"
	"log/slog"
	"time"

	"github.com/Heartless-Veteran/Aegis/feedback"
	"github.com/Heartless-Veteran/Aegis/source"
)

// DefaultMaxDepth bounds how deeply expressions and blocks may nest before
// the parser gives up on a statement with a NestingTooDeep diagnostic
const DefaultMaxDepth = 256

// Options configure one compilation. The zero value selects the defaults
type Options struct {
	// MaxDiagnostics caps the diagnostics kept per phase
	MaxDiagnostics int

	// MaxDepth bounds nesting of expressions, blocks and UI trees
	MaxDepth int

	// UI is the element schema UI trees are checked against
	UI *UISchema

	// Logger receives phase timings. Nothing is logged when it is nil
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxDiagnostics <= 0 {
		o.MaxDiagnostics = feedback.DefaultLimit
	}

	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}

	if o.UI == nil {
		o.UI = DefaultUISchema()
	}

	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return o
}

// Compile runs the whole front end over a file. The returned Program is
// annotated with types and symbols as far as analysis got; it is returned
// even when the messages contain errors
func Compile(file *source.File, opts Options) (prog *Program, msgs []feedback.Message) {
	opts = opts.withDefaults()
	log := feedback.NewLog(opts.MaxDiagnostics)

	start := time.Now()
	prog = parse(file, log, opts)
	opts.Logger.Debug("parsed",
		"file", file.Filename,
		"decls", len(prog.Decls),
		"diagnostics", log.Len(),
		"elapsed", time.Since(start))

	start = time.Now()
	check(file, prog, log, opts)
	opts.Logger.Debug("checked",
		"file", file.Filename,
		"diagnostics", log.Len(),
		"elapsed", time.Since(start))

	return prog, log.Messages()
}
