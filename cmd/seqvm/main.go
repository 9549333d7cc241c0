// seqvm runs sequence programs written in .seq assembly against a stream
// of tokens.
//
// Usage:
//
//	seqvm [-debug] [-disasm] [-table] file.seq [tokens...]
//
// Tokens come from the command line (or -tokens) when given, otherwise one
// per line from stdin. The exit status is 0 on ACCEPT, 1 on REJECT or
// error and 2 when the input ends before a result.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tebeka/atexit"

	"github.com/tokenseq/seqvm/pkg/parser"
	"github.com/tokenseq/seqvm/pkg/seqvm"
	"github.com/tokenseq/seqvm/pkg/types"
)

func main() {
	debug := flag.Bool("debug", false, "Trace every executed instruction")
	disasm := flag.Bool("disasm", false, "Disassemble instead of run")
	showTable := flag.Bool("table", false, "Print live threads after every step")
	tokens := flag.String("tokens", "", "Whitespace separated tokens to feed")
	flag.Parse()

	out := bufio.NewWriter(os.Stdout)
	flushOnExit(out)

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: seqvm [-debug] [-disasm] [-table] [-tokens \"t1 t2\"] <file.seq> [tokens...]")
		atexit.Exit(1)
	}

	unit, err := parser.AssembleFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Assembly error: %v\n", err)
		atexit.Exit(1)
	}

	if *disasm {
		if *showTable {
			fmt.Fprintln(out, programTable(unit))
		} else {
			fmt.Fprintf(out, "; %s (%s)\n", unitTitle(unit), unit.Type.Name())
			fmt.Fprint(out, unit.Program)
		}
		atexit.Exit(0)
	}

	vm := seqvm.New()
	vm.Debug = *debug

	s := newSession(vm, unit, out)
	s.table = *showTable

	input := append(strings.Fields(*tokens), args[1:]...)
	var res seqvm.MatchResult
	if len(input) > 0 {
		res, err = s.feedAll(input)
	} else {
		res, err = s.repl(os.Stdin)
	}
	if err != nil {
		out.Flush()
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Exit(exitCode(res))
}

// flushOnExit flushes out when the program leaves through atexit.Exit.
func flushOnExit(out *bufio.Writer) atexit.HandlerID {
	return atexit.Register(func() {
		if err := out.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	})
}

// flush pushes buffered output to the terminal, e.g. before blocking on
// input.
func flush(w io.Writer) {
	if f, ok := w.(interface{ Flush() error }); ok {
		f.Flush()
	}
}

func exitCode(res seqvm.MatchResult) int {
	switch res {
	case seqvm.Accept:
		return 0
	case seqvm.Reject:
		return 1
	}
	return 2
}

func unitTitle(u *parser.Unit) string {
	if u.Name != "" {
		return u.Name
	}
	return "sequence"
}

// parseTokens converts command line words to tokens.
func parseTokens(words []string) []types.Token {
	toks := make([]types.Token, len(words))
	for i, w := range words {
		toks[i] = types.Parse(w)
	}
	return toks
}
