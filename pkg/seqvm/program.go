package seqvm

import (
	"fmt"
	"strings"
)

// CompiledSequence is an immutable sequence program. It holds no match
// state, so one program can drive any number of ExecutionContexts,
// including from different goroutines.
type CompiledSequence struct {
	insts []Inst
}

// Len returns the number of instructions.
func (p *CompiledSequence) Len() int { return len(p.insts) }

// Inst returns the instruction at pc.
func (p *CompiledSequence) Inst(pc int) Inst { return p.insts[pc] }

// Insts returns a copy of the instruction list.
func (p *CompiledSequence) Insts() []Inst {
	out := make([]Inst, len(p.insts))
	copy(out, p.insts)
	return out
}

// Labels maps each label name defined in the program to its index.
func (p *CompiledSequence) Labels() map[string]int {
	labels := make(map[string]int)
	for pc, in := range p.insts {
		if in.Label != "" {
			labels[in.Label] = pc
		}
	}
	return labels
}

// String disassembles the program, one "index: instruction" per line.
func (p *CompiledSequence) String() string {
	var sb strings.Builder
	for pc, in := range p.insts {
		fmt.Fprintf(&sb, "%d: %s\n", pc, in)
	}
	return sb.String()
}
