package seqvm

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/tokenseq/seqvm/pkg/types"
)

// ThompsonsVM runs compiled sequences against tokens that arrive one at a
// time. Every live thread is advanced on each token, so no input is ever
// re-read and a context can be suspended indefinitely between tokens.
//
// The VM holds no match state; all of it lives in the ExecutionContext.
type ThompsonsVM struct {
	// Debug traces every executed instruction to Output.
	Debug bool

	// Output writer (default: os.Stdout, also used when nil)
	Output io.Writer
}

// New creates a new VM
func New() *ThompsonsVM {
	return &ThompsonsVM{Output: os.Stdout}
}

// CreateContext starts a matching attempt: one thread at instruction 0.
func (vm *ThompsonsVM) CreateContext(prog *CompiledSequence) *ExecutionContext {
	return newContext(prog)
}

// visit is a thread state within one step. Two threads in the same state
// behave identically from then on, so only the first is kept.
type visit struct {
	ic      int
	pending bool
}

// Execute advances ctx by one token and returns it.
//
// Threads are taken from a queue in order. A thread spawned by SPLIT is
// queued right after the thread that spawned it, so every state reachable
// without consuming input is explored before the step ends. A thread that
// has consumed the token blocks at its next MATCH.
//
// The first thread to reach ACCEPT ends the step; threads not yet examined
// are kept as they are. If no thread survives the step, the result is
// Reject.
//
// Execute fails with ErrTerminated once the context has a result.
func (vm *ThompsonsVM) Execute(ctx *ExecutionContext, tok types.Token) (*ExecutionContext, error) {
	if ctx.result != Undefined {
		return ctx, fmt.Errorf("%w: %s", ErrTerminated, ctx.result)
	}
	if tok == nil {
		return ctx, ErrNilToken
	}

	ctx.steps++
	vm.tracef("step %d: token %s, %d threads\n", ctx.steps, types.Quote(tok), len(ctx.threads))

	// Threads carried over from the last step all see the token. Threads
	// spawned during this step inherit their parent's input instead, so a
	// SPLIT after a successful MATCH does not feed the same token twice.
	queue := slices.Clone(ctx.threads)
	for _, t := range queue {
		t.input = tok
	}
	survivors := make([]*ThreadContext, 0, len(queue))
	seen := make(map[visit]struct{})

	for i := 0; i < len(queue); i++ {
		t := queue[i]
		t.status = Running

		spawned := vm.run(ctx, t, seen)

		if t.result == Accept {
			rest := queue[i+1:]
			for _, r := range rest {
				r.input = nil
			}
			ctx.result = Accept
			ctx.threads = append(survivors, rest...)
			vm.tracef("  t%d accepted\n", t.id)
			return ctx, nil
		}
		if t.status == Blocked {
			survivors = append(survivors, t)
		}
		if len(spawned) > 0 {
			queue = slices.Insert(queue, i+1, spawned...)
		}
	}

	ctx.threads = survivors
	if len(survivors) == 0 {
		ctx.result = Reject
		vm.tracef("  no threads left\n")
	}
	return ctx, nil
}

// run executes t until it blocks or dies and returns the threads it
// spawned, in spawn order.
func (vm *ThompsonsVM) run(ctx *ExecutionContext, t *ThreadContext, seen map[visit]struct{}) []*ThreadContext {
	var spawned []*ThreadContext

	for t.status == Running {
		key := visit{ic: t.ic, pending: t.input != nil}
		if _, dup := seen[key]; dup {
			vm.tracef("  t%d [%03d] duplicate, dropped\n", t.id, t.ic)
			t.kill(Undefined)
			break
		}
		seen[key] = struct{}{}

		in := ctx.prog.insts[t.ic]
		if vm.Debug {
			input := "-"
			if t.input != nil {
				input = types.Quote(t.input)
			}
			fmt.Fprintf(vm.output(), "  t%d [%03d] %s input=%s\n", t.id, t.ic, in, input)
		}

		switch in.Op {
		case OpSplit:
			t.ic = in.X
			child := ctx.spawn(in.Y)
			child.input = t.input
			spawned = append(spawned, child)

		case OpJump:
			t.ic = in.X

		case OpMatch:
			if t.input == nil {
				// Already consumed this step's token.
				t.status = Blocked
				break
			}
			tok := t.input
			t.input = nil
			if !tok.Equal(in.Token) {
				t.kill(Reject)
				break
			}
			t.ic++

		case OpAccept:
			t.kill(Accept)
		}
	}

	return spawned
}

func (vm *ThompsonsVM) tracef(format string, args ...any) {
	if vm.Debug {
		fmt.Fprintf(vm.output(), format, args...)
	}
}

func (vm *ThompsonsVM) output() io.Writer {
	if vm.Output == nil {
		return os.Stdout
	}
	return vm.Output
}

// Run feeds toks to ctx in order, stopping early once the context has a
// result. It returns the context's result after the last token fed.
func (vm *ThompsonsVM) Run(ctx *ExecutionContext, toks ...types.Token) (MatchResult, error) {
	for _, tok := range toks {
		if ctx.Terminated() {
			break
		}
		if _, err := vm.Execute(ctx, tok); err != nil {
			return ctx.result, err
		}
	}
	return ctx.result, nil
}

// Match runs prog over toks in a fresh context.
func (vm *ThompsonsVM) Match(prog *CompiledSequence, toks ...types.Token) (MatchResult, error) {
	return vm.Run(vm.CreateContext(prog), toks...)
}
