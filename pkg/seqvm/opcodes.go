// Package seqvm implements incremental sequence matching on a small
// bytecode VM. Programs are assembled with a Compiler and run by a
// ThompsonsVM, which advances every live match attempt one token at a
// time instead of backtracking.
package seqvm

import (
	"fmt"

	"github.com/tokenseq/seqvm/pkg/types"
)

// Opcode identifies an instruction kind. The set is closed.
type Opcode uint8

const (
	OpMatch  Opcode = iota // consume one token, compare by equality
	OpSplit                // fork: continue at X, spawn a thread at Y
	OpJump                 // continue at X
	OpAccept               // success
)

// OpName returns the mnemonic of an opcode
func OpName(op Opcode) string {
	switch op {
	case OpMatch:
		return "MATCH"
	case OpSplit:
		return "SPLIT"
	case OpJump:
		return "JUMP"
	case OpAccept:
		return "ACCEPT"
	}
	return "?"
}

func (op Opcode) String() string { return OpName(op) }

// Inst is a single instruction of a compiled sequence. Targets are
// absolute instruction indices.
type Inst struct {
	Op Opcode

	// Token is the operand of OpMatch.
	Token types.Token

	// X is the target of OpJump and the first target of OpSplit.
	X int
	// Y is the second target of OpSplit.
	Y int

	// Label names the label defined at this instruction, if any. It
	// carries no behaviour.
	Label string
}

// String renders the instruction in disassembly form.
func (in Inst) String() string {
	switch in.Op {
	case OpMatch:
		return fmt.Sprintf("MATCH %s", types.Quote(in.Token))
	case OpSplit:
		return fmt.Sprintf("SPLIT %d, %d", in.X, in.Y)
	case OpJump:
		return fmt.Sprintf("JUMP %d", in.X)
	case OpAccept:
		return "ACCEPT"
	}
	return fmt.Sprintf("?%02X", uint8(in.Op))
}

// targets returns the operand slots holding instruction indices.
func (in *Inst) targets() []*int {
	switch in.Op {
	case OpSplit:
		return []*int{&in.X, &in.Y}
	case OpJump:
		return []*int{&in.X}
	}
	return nil
}
