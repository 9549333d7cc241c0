package seqvm

import (
	"github.com/tokenseq/seqvm/pkg/types"
)

// Compiler assembles a sequence program. Appends return the Compiler so
// programs read top to bottom:
//
//	prog, err := seqvm.NewSequence().
//		Match(a).
//		Match(b).
//		Accept().
//		Compile()
//
// The first assembly error is kept; later appends are ignored and Compile
// reports it.
type Compiler struct {
	insts  []Inst
	fixups map[*Label][]fixup
	err    error
	prog   *CompiledSequence
}

// fixup records an operand that refers to a label not yet resolved.
type fixup struct {
	pos     int // instruction index
	operand int // 0 = X, 1 = Y
}

// NewSequence creates an empty Compiler.
func NewSequence() *Compiler {
	return &Compiler{
		insts:  make([]Inst, 0, 16),
		fixups: make(map[*Label][]fixup),
	}
}

// Match appends MATCH tok.
func (c *Compiler) Match(tok types.Token) *Compiler {
	return c.MatchAt(nil, tok)
}

// MatchAt appends MATCH tok and binds l to it.
func (c *Compiler) MatchAt(l *Label, tok types.Token) *Compiler {
	if tok == nil {
		c.fail(ErrNilToken, len(c.insts), "")
		return c
	}
	return c.emit(l, Inst{Op: OpMatch, Token: tok})
}

// Split appends SPLIT t1, t2.
func (c *Compiler) Split(t1, t2 Target) *Compiler {
	return c.SplitAt(nil, t1, t2)
}

// SplitAt appends SPLIT t1, t2 and binds l to it.
func (c *Compiler) SplitAt(l *Label, t1, t2 Target) *Compiler {
	return c.emit(l, Inst{Op: OpSplit}, t1, t2)
}

// Jump appends JUMP t.
func (c *Compiler) Jump(t Target) *Compiler {
	return c.JumpAt(nil, t)
}

// JumpAt appends JUMP t and binds l to it.
func (c *Compiler) JumpAt(l *Label, t Target) *Compiler {
	return c.emit(l, Inst{Op: OpJump}, t)
}

// Accept appends ACCEPT.
func (c *Compiler) Accept() *Compiler {
	return c.AcceptAt(nil)
}

// AcceptAt appends ACCEPT and binds l to it.
func (c *Compiler) AcceptAt(l *Label) *Compiler {
	return c.emit(l, Inst{Op: OpAccept})
}

// Len returns the number of instructions appended so far.
func (c *Compiler) Len() int { return len(c.insts) }

// Err returns the first assembly error, if any.
func (c *Compiler) Err() error { return c.err }

func (c *Compiler) emit(def *Label, in Inst, targets ...Target) *Compiler {
	if c.err != nil {
		return c
	}
	pos := len(c.insts)
	if c.prog != nil {
		c.fail(ErrCompiled, pos, "")
		return c
	}

	// The defining label takes the index of the instruction being
	// appended, so a target naming it resolves directly.
	if def != nil {
		if err := c.resolve(def, pos); err != nil {
			return c
		}
		in.Label = def.name
	}

	slots := in.targets()
	for i, t := range targets {
		switch t := t.(type) {
		case Index:
			*slots[i] = int(t)
		case *Label:
			if t == nil {
				c.fail(ErrNilLabel, pos, "")
				return c
			}
			if idx, ok := t.Index(); ok {
				if t.owner != c {
					c.fail(ErrForeignLabel, pos, t.String())
					return c
				}
				*slots[i] = idx
				continue
			}
			*slots[i] = -1
			c.fixups[t] = append(c.fixups[t], fixup{pos: pos, operand: i})
		default:
			c.fail(ErrNilLabel, pos, "")
			return c
		}
	}

	c.insts = append(c.insts, in)
	return c
}

// resolve binds l to pos and patches every operand waiting on it.
func (c *Compiler) resolve(l *Label, pos int) error {
	if err := l.setIndex(c, pos); err != nil {
		c.fail(err, pos, l.name)
		return err
	}
	for _, f := range c.fixups[l] {
		*c.insts[f.pos].targets()[f.operand] = pos
	}
	delete(c.fixups, l)
	return nil
}

func (c *Compiler) fail(err error, pos int, label string) {
	if c.err == nil {
		c.err = &AsmError{Err: err, Index: pos, Label: label}
	}
}

// Compile freezes the program. It fails if any label was referenced but
// never defined, if a target falls outside the program, or if the last
// instruction is a MATCH (a thread would run past the end). Calling
// Compile again returns the same program.
func (c *Compiler) Compile() (*CompiledSequence, error) {
	if c.prog != nil {
		return c.prog, nil
	}
	if c.err != nil {
		return nil, c.err
	}

	// Report the earliest dangling reference so errors are stable.
	var (
		dangling *Label
		first    = -1
	)
	for l, fs := range c.fixups {
		for _, f := range fs {
			if first < 0 || f.pos < first {
				first, dangling = f.pos, l
			}
		}
	}
	if dangling != nil {
		c.fail(ErrUndefinedLabel, first, dangling.String())
		return nil, c.err
	}

	if len(c.insts) == 0 {
		c.fail(ErrEmptyProgram, -1, "")
		return nil, c.err
	}
	for pc := range c.insts {
		for _, t := range c.insts[pc].targets() {
			if *t < 0 || *t >= len(c.insts) {
				c.fail(ErrTargetRange, pc, "")
				return nil, c.err
			}
		}
	}
	if c.insts[len(c.insts)-1].Op == OpMatch {
		c.fail(ErrFallthrough, len(c.insts)-1, "")
		return nil, c.err
	}

	insts := make([]Inst, len(c.insts))
	copy(insts, c.insts)
	c.prog = &CompiledSequence{insts: insts}
	return c.prog, nil
}

// MustCompile is like Compile but panics on error.
func (c *Compiler) MustCompile() *CompiledSequence {
	prog, err := c.Compile()
	if err != nil {
		panic(err)
	}
	return prog
}
