package seqvm

import "fmt"

// Label is a compile-time placeholder for an instruction index. It is
// resolved once, when the instruction it tags is appended; references made
// before that are patched by the Compiler that owns the instruction. A
// resolved label belongs to that Compiler and cannot be a target in
// another.
type Label struct {
	name     string
	index    int
	resolved bool
	owner    *Compiler
}

// NewLabel creates an unresolved label. The name is only used in
// disassembly and error messages and may be empty.
func NewLabel(name string) *Label {
	return &Label{name: name, index: -1}
}

// Name returns the label's name.
func (l *Label) Name() string { return l.name }

// Index returns the resolved instruction index.
func (l *Label) Index() (int, bool) {
	return l.index, l.resolved
}

// Resolved reports whether the label has been bound.
func (l *Label) Resolved() bool { return l.resolved }

func (l *Label) setIndex(c *Compiler, idx int) error {
	if l.resolved {
		return ErrLabelRedefined
	}
	l.index = idx
	l.resolved = true
	l.owner = c
	return nil
}

func (l *Label) String() string {
	if l.name != "" {
		return l.name
	}
	if l.resolved {
		return fmt.Sprintf("L%d", l.index)
	}
	return fmt.Sprintf("L?%p", l)
}

func (l *Label) target() {}

// Target is an operand of SPLIT or JUMP: either an Index or a *Label.
type Target interface {
	target()
}

// Index is an absolute instruction index used as a target.
type Index int

func (Index) target() {}
