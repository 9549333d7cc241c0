package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/tokenseq/seqvm/pkg/parser"
	"github.com/tokenseq/seqvm/pkg/seqvm"
	"github.com/tokenseq/seqvm/pkg/types"
)

// session feeds tokens to one execution context at a time.
type session struct {
	vm    *seqvm.ThompsonsVM
	unit  *parser.Unit
	ctx   *seqvm.ExecutionContext
	out   io.Writer
	table bool
}

func newSession(vm *seqvm.ThompsonsVM, unit *parser.Unit, out io.Writer) *session {
	vm.Output = out
	return &session{
		vm:   vm,
		unit: unit,
		ctx:  vm.CreateContext(unit.Program),
		out:  out,
	}
}

func (s *session) reset() {
	s.ctx = s.vm.CreateContext(s.unit.Program)
}

// feed runs one step and reports it.
func (s *session) feed(tok types.Token) (seqvm.MatchResult, error) {
	if _, err := s.vm.Execute(s.ctx, tok); err != nil {
		return s.ctx.Result(), err
	}
	fmt.Fprintf(s.out, "step %d: %s -> %s (%d threads)\n",
		s.ctx.Steps(), types.Quote(tok), s.ctx.Result(), s.ctx.NumThreads())
	if s.table && s.ctx.NumThreads() > 0 {
		fmt.Fprintln(s.out, threadTable(s.ctx))
	}
	return s.ctx.Result(), nil
}

// feedAll feeds words in order until the context has a result.
func (s *session) feedAll(words []string) (seqvm.MatchResult, error) {
	for _, tok := range parseTokens(words) {
		if s.ctx.Terminated() {
			break
		}
		if _, err := s.feed(tok); err != nil {
			return s.ctx.Result(), err
		}
	}
	return s.ctx.Result(), nil
}

// repl reads one token per line. It returns the result of the context
// live when input ends.
func (s *session) repl(r io.Reader) (seqvm.MatchResult, error) {
	fmt.Fprintf(s.out, "seqvm: %s (%s)\n", unitTitle(s.unit), s.unit.Type)
	fmt.Fprintln(s.out, "One token per line; 'help' for commands")

	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprint(s.out, "seq> ")
		flush(s.out)
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		switch line {
		case "quit", "exit":
			return s.ctx.Result(), nil
		case "help":
			printHelp(s.out)
		case "reset":
			s.reset()
			fmt.Fprintln(s.out, "Reset")
		case "threads":
			fmt.Fprintln(s.out, threadTable(s.ctx))
		case "disasm":
			fmt.Fprintln(s.out, programTable(s.unit))
		case "debug":
			s.vm.Debug = !s.vm.Debug
			fmt.Fprintf(s.out, "Debug: %v\n", s.vm.Debug)
		default:
			if s.ctx.Terminated() {
				fmt.Fprintf(s.out, "Already %s; 'reset' to start over\n", s.ctx.Result())
				continue
			}
			if _, err := s.feed(types.Parse(line)); err != nil {
				fmt.Fprintf(s.out, "Error: %v\n", err)
			}
		}
	}
	fmt.Fprintln(s.out)
	return s.ctx.Result(), scanner.Err()
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `Commands:
  quit     - Exit
  reset    - Start a new match attempt
  threads  - Show live threads
  disasm   - Show the program
  debug    - Toggle instruction trace
  help     - Show this help

Anything else is fed as a token: integers become numbered tokens,
other words named tokens. Quote a word to feed a command name as a
token, e.g. "reset".
`)
}
