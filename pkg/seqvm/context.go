package seqvm

import (
	"fmt"

	"github.com/tokenseq/seqvm/pkg/types"
)

// MatchResult is the outcome of a thread or of a whole matching attempt.
type MatchResult uint8

const (
	Undefined MatchResult = iota // still matching
	Accept
	Reject
)

func (r MatchResult) String() string {
	switch r {
	case Undefined:
		return "UNDEFINED"
	case Accept:
		return "ACCEPT"
	case Reject:
		return "REJECT"
	}
	return "?"
}

// ThreadStatus is the run state of a thread within one step.
type ThreadStatus uint8

const (
	Running ThreadStatus = iota
	Blocked              // waiting for the next token
	Killed               // finished, to be discarded
)

func (s ThreadStatus) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Blocked:
		return "BLOCKED"
	case Killed:
		return "KILLED"
	}
	return "?"
}

// ThreadContext is one candidate match path: a program counter plus the
// token it has yet to consume in the current step. It is a logical
// thread, not a goroutine.
type ThreadContext struct {
	id     int
	ic     int
	input  types.Token
	status ThreadStatus
	result MatchResult
}

func newThread(id, ic int) *ThreadContext {
	return &ThreadContext{id: id, ic: ic, status: Blocked}
}

// ID identifies the thread within its ExecutionContext.
func (t *ThreadContext) ID() int { return t.id }

// IC returns the instruction counter.
func (t *ThreadContext) IC() int { return t.ic }

// Status returns the thread's run state.
func (t *ThreadContext) Status() ThreadStatus { return t.status }

// Result returns the thread's outcome.
func (t *ThreadContext) Result() MatchResult { return t.result }

func (t *ThreadContext) String() string {
	return fmt.Sprintf("t%d{ic=%d status=%s result=%s}", t.id, t.ic, t.status, t.result)
}

// kill ends the thread with the given result.
func (t *ThreadContext) kill(r MatchResult) {
	t.result = r
	t.status = Killed
}

// ThreadInfo is a read-only snapshot of a live thread.
type ThreadInfo struct {
	ID     int
	IC     int
	Status ThreadStatus
}

// ExecutionContext is the state of one matching attempt. It is created by
// ThompsonsVM.CreateContext and advanced by ThompsonsVM.Execute, one token
// per call. A context must not be used from more than one goroutine at a
// time.
type ExecutionContext struct {
	prog    *CompiledSequence
	threads []*ThreadContext
	result  MatchResult
	steps   int
	nextID  int
}

func newContext(prog *CompiledSequence) *ExecutionContext {
	ctx := &ExecutionContext{prog: prog}
	ctx.threads = []*ThreadContext{ctx.spawn(0)}
	return ctx
}

func (ctx *ExecutionContext) spawn(ic int) *ThreadContext {
	t := newThread(ctx.nextID, ic)
	ctx.nextID++
	return t
}

// Program returns the program the context runs.
func (ctx *ExecutionContext) Program() *CompiledSequence { return ctx.prog }

// Result returns the overall outcome so far.
func (ctx *ExecutionContext) Result() MatchResult { return ctx.result }

// Terminated reports whether the context has reached Accept or Reject.
func (ctx *ExecutionContext) Terminated() bool { return ctx.result != Undefined }

// Steps returns how many tokens have been executed.
func (ctx *ExecutionContext) Steps() int { return ctx.steps }

// NumThreads returns the number of live threads.
func (ctx *ExecutionContext) NumThreads() int { return len(ctx.threads) }

// Threads returns a snapshot of the live threads in iteration order.
func (ctx *ExecutionContext) Threads() []ThreadInfo {
	out := make([]ThreadInfo, len(ctx.threads))
	for i, t := range ctx.threads {
		out[i] = ThreadInfo{ID: t.id, IC: t.ic, Status: t.status}
	}
	return out
}
