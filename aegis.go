package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/Heartless-Veteran/Aegis/config"
	"github.com/Heartless-Veteran/Aegis/feedback"
	"github.com/Heartless-Veteran/Aegis/frontend"
	"github.com/Heartless-Veteran/Aegis/source"
)

const sourceExtension = ".aegis"

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}

	noColorFlag = cli.BoolFlag{
		Name:  "no-color",
		Usage: "hide colors in error and warning messages",
	}

	verboseFlag = cli.BoolFlag{
		Name:  "verbose",
		Usage: "log compiler phases and timings to stderr",
	}

	jobsFlag = cli.IntFlag{
		Name:  "jobs, j",
		Usage: "number of files compiled at the same time",
		Value: 4,
	}

	rawFlag = cli.BoolFlag{
		Name:  "raw",
		Usage: "dump the Go representation of the tree instead of S-expressions",
	}

	typedFlag = cli.BoolFlag{
		Name:  "typed",
		Usage: "check the program and annotate expressions with their types",
	}
)

// session is the state shared by every command of one invocation
type session struct {
	cfg    config.Config
	logger *slog.Logger
	out    io.Writer
	color  bool
}

func newSession(c *cli.Context) (*session, error) {
	cfg := config.Defaults

	if file := c.GlobalString(configFileFlag.Name); file != "" {
		var err error
		if cfg, err = config.Load(file); err != nil {
			return nil, err
		}
	}

	if c.GlobalBool(noColorFlag.Name) {
		cfg.Output.Color = config.ColorNever
	}

	s := &session{cfg: cfg}

	switch cfg.Output.Color {
	case config.ColorAlways:
		s.color = true
	case config.ColorAuto:
		fd := os.Stdout.Fd()
		s.color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}

	if s.color {
		s.out = colorable.NewColorableStdout()
	} else {
		s.out = colorable.NewNonColorable(os.Stdout)
	}

	level := slog.LevelWarn
	if c.GlobalBool(verboseFlag.Name) {
		level = slog.LevelDebug
	}
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return s, nil
}

func (s *session) options() frontend.Options {
	opts := s.cfg.Options()
	opts.Logger = s.logger
	return opts
}

// readSourceFiles loads every argument with the source extension. Arguments
// that cannot be used are reported and skipped
func (s *session) readSourceFiles(args []string) (files []*source.File) {
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			s.logger.Error("could not resolve path", "path", arg, "err", err)
			continue
		}

		if ext := path.Ext(abs); ext != sourceExtension {
			s.logger.Error("unsupported file extension", "path", abs, "ext", ext)
			continue
		}

		buf, err := ioutil.ReadFile(abs)
		if err != nil {
			s.logger.Error("could not read file", "err", err)
			continue
		}

		files = append(files, source.NewFile(abs, string(buf)))
	}

	return files
}

func (s *session) printMessages(file *source.File, msgs []feedback.Message) {
	if len(msgs) == 0 {
		return
	}

	fmt.Fprintf(s.out, "# %s\n", file.Filename)
	for _, msg := range msgs {
		fmt.Fprintln(s.out, msg.Make(s.color))
	}
}

func checkCommand(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}

	files := s.readSourceFiles(c.Args())
	results := make([][]feedback.Message, len(files))

	var g errgroup.Group
	g.SetLimit(max(c.GlobalInt(jobsFlag.Name), 1))

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			start := time.Now()
			_, results[i] = frontend.Compile(file, s.options())
			s.logger.Info("compiled", "file", file.Filename, "messages", len(results[i]), "elapsed", time.Since(start))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for i, file := range files {
		s.printMessages(file, results[i])

		for _, msg := range results[i] {
			if msg.Diagnostic().Severity == feedback.SeverityError {
				failed++
				break
			}
		}
	}

	if failed > 0 {
		return cli.NewExitError(fmt.Sprintf("%d of %d file(s) failed to compile", failed, len(files)), 1)
	}

	return nil
}

func tokensCommand(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}

	for _, file := range s.readSourceFiles(c.Args()) {
		toks, msgs := frontend.Tokenize(file)

		fmt.Fprintf(s.out, "# %s\n", file.Filename)

		table := tablewriter.NewWriter(s.out)
		table.SetHeader([]string{"Position", "Kind", "Symbol", "Lexeme", "Line start"})
		table.SetAutoWrapText(false)

		for _, tok := range toks {
			lineStart := ""
			if tok.LineStart {
				lineStart = "yes"
			}

			table.Append([]string{
				tok.Span.Start.String(),
				tok.Kind.String(),
				string(tok.Symbol),
				strconv.Quote(tok.Lexeme),
				lineStart,
			})
		}

		table.Render()
		s.printMessages(file, msgs)
	}

	return nil
}

func astCommand(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}

	for _, file := range s.readSourceFiles(c.Args()) {
		var (
			prog *frontend.Program
			msgs []feedback.Message
		)

		if c.Bool(typedFlag.Name) {
			prog, msgs = frontend.Compile(file, s.options())
		} else {
			prog, msgs = frontend.Parse(file, s.options())
		}

		fmt.Fprintf(s.out, "# %s\n", file.Filename)

		switch {
		case c.Bool(rawFlag.Name):
			cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
			cfg.Fdump(s.out, prog)
		case c.Bool(typedFlag.Name):
			fmt.Fprintln(s.out, frontend.StringifyTypedAST(prog))
		default:
			fmt.Fprintln(s.out, frontend.StringifyAST(prog))
		}

		s.printMessages(file, msgs)
	}

	return nil
}

func dumpConfigCommand(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}

	out, err := s.cfg.Marshal()
	if err != nil {
		return fmt.Errorf("could not encode configuration: %w", err)
	}

	_, err = os.Stdout.Write(out)
	return err
}

func main() {
	app := cli.NewApp()
	app.Name = "aegis"
	app.Usage = "check Aegis programs"

	app.Flags = []cli.Flag{
		configFileFlag,
		noColorFlag,
		verboseFlag,
		jobsFlag,
	}

	app.Commands = []cli.Command{
		{
			Name:      "check",
			Aliases:   []string{"c"},
			Usage:     "Check syntax and types of file(s) and report every diagnostic",
			ArgsUsage: "<file.aegis>...",
			Action:    checkCommand,
		},
		{
			Name:      "tokens",
			Aliases:   []string{"t"},
			Usage:     "Print the token stream of file(s)",
			ArgsUsage: "<file.aegis>...",
			Action:    tokensCommand,
		},
		{
			Name:      "ast",
			Usage:     "Print the syntax tree of file(s)",
			ArgsUsage: "<file.aegis>...",
			Flags:     []cli.Flag{rawFlag, typedFlag},
			Action:    astCommand,
		},
		{
			Name:   "dumpconfig",
			Usage:  "Show configuration values",
			Action: dumpConfigCommand,
		},
	}

	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
