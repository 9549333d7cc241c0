package parser

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/tokenseq/seqvm/pkg/seqvm"
	"github.com/tokenseq/seqvm/pkg/types"
)

// Unit is an assembled .seq source
type Unit struct {
	Name    string
	Type    types.SequenceType
	Program *seqvm.CompiledSequence
}

// Error is an assembly error tied to a source position
type Error struct {
	Pos lexer.Position
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Pos, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

var (
	ErrUnknownDirective = errors.New("unknown directive")
	ErrBadOperator      = errors.New("unknown sequence operator")
)

// Assemble parses and assembles source
func Assemble(filename, source string) (*Unit, error) {
	src, err := ParseNamed(filename, source)
	if err != nil {
		return nil, err
	}
	return src.Unit()
}

// AssembleFile reads and assembles the .seq file at path
func AssembleFile(path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Assemble(path, string(data))
}

// Unit assembles the parsed source into a compiled program.
func (s *Source) Unit() (*Unit, error) {
	u := &Unit{Type: types.FollowedBy}
	for _, d := range s.Directives {
		if err := u.directive(d); err != nil {
			return nil, err
		}
	}

	labels := make(map[string]*seqvm.Label)
	defined := make(map[string]lexer.Position)
	var refs []reference

	label := func(name string) *seqvm.Label {
		l, ok := labels[name]
		if !ok {
			l = seqvm.NewLabel(name)
			labels[name] = l
		}
		return l
	}
	target := func(t *Target) seqvm.Target {
		if t.Index != nil {
			return seqvm.Index(*t.Index)
		}
		refs = append(refs, reference{name: *t.Label, pos: t.Pos})
		return label(*t.Label)
	}

	c := seqvm.NewSequence()
	for _, line := range s.Lines {
		var def *seqvm.Label
		if line.Label != nil {
			name := *line.Label
			if prev, ok := defined[name]; ok {
				return nil, &Error{Pos: line.Pos, Err: fmt.Errorf("%w %q (first defined at %s)", seqvm.ErrLabelRedefined, name, prev)}
			}
			defined[name] = line.Pos
			def = label(name)
		}

		in := line.Instr
		switch {
		case in.Match != nil:
			c.MatchAt(def, in.Match.Token())
		case in.Split != nil:
			c.SplitAt(def, target(in.Split.First), target(in.Split.Second))
		case in.Jump != nil:
			c.JumpAt(def, target(in.Jump))
		case in.Accept:
			c.AcceptAt(def)
		}
	}

	for _, r := range refs {
		if _, ok := defined[r.name]; !ok {
			return nil, &Error{Pos: r.pos, Err: fmt.Errorf("%w %q", seqvm.ErrUndefinedLabel, r.name)}
		}
	}

	prog, err := c.Compile()
	if err != nil {
		return nil, s.position(err)
	}
	u.Program = prog
	return u, nil
}

type reference struct {
	name string
	pos  lexer.Position
}

// position attaches the source position of the offending instruction.
func (s *Source) position(err error) error {
	var asmErr *seqvm.AsmError
	if errors.As(err, &asmErr) && asmErr.Index >= 0 && asmErr.Index < len(s.Lines) {
		return &Error{Pos: s.Lines[asmErr.Index].Pos, Err: err}
	}
	return &Error{Pos: s.Pos, Err: err}
}

func (u *Unit) directive(d *Directive) error {
	switch strings.ToLower(d.Name) {
	case ".sequence":
		t, ok := types.ResolveSequenceType(d.Value)
		if !ok {
			return &Error{Pos: d.Pos, Err: fmt.Errorf("%w %q", ErrBadOperator, d.Value)}
		}
		u.Type = t
	case ".name":
		name := d.Value
		if unquoted, err := strconv.Unquote(name); err == nil {
			name = unquoted
		}
		u.Name = name
	default:
		return &Error{Pos: d.Pos, Err: fmt.Errorf("%w %s", ErrUnknownDirective, d.Name)}
	}
	return nil
}

// Token converts the operand to the token it matches.
func (o *Operand) Token() types.Token {
	switch {
	case o.Int != nil:
		return types.Int(*o.Int)
	case o.String != nil:
		s, err := strconv.Unquote(*o.String)
		if err != nil {
			s = strings.Trim(*o.String, `"`)
		}
		return types.Symbol(s)
	case o.Ident != nil:
		return types.Symbol(*o.Ident)
	}
	return nil
}

var reLabel = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

// Format renders a unit back to .seq source. Targets are written as
// label names where the program defines one that assembly can read back;
// other labels are dropped and their targets written as indices.
func Format(u *Unit) string {
	var sb strings.Builder
	if u.Name != "" {
		fmt.Fprintf(&sb, ".name %s\n", strconv.Quote(u.Name))
	}
	fmt.Fprintf(&sb, ".sequence %s\n", u.Type)

	insts := u.Program.Insts()
	count := make(map[string]int)
	for _, in := range insts {
		count[in.Label]++
	}
	names := make(map[int]string)
	for pc, in := range insts {
		if reLabel.MatchString(in.Label) && count[in.Label] == 1 {
			names[pc] = in.Label
		}
	}
	ref := func(pc int) string {
		if name, ok := names[pc]; ok {
			return name
		}
		return strconv.Itoa(pc)
	}

	for pc, in := range insts {
		if name, ok := names[pc]; ok {
			fmt.Fprintf(&sb, "%s:\t", name)
		} else {
			sb.WriteString("\t")
		}
		switch in.Op {
		case seqvm.OpMatch:
			fmt.Fprintf(&sb, "match %s\n", types.Quote(in.Token))
		case seqvm.OpSplit:
			fmt.Fprintf(&sb, "split %s, %s\n", ref(in.X), ref(in.Y))
		case seqvm.OpJump:
			fmt.Fprintf(&sb, "jump %s\n", ref(in.X))
		case seqvm.OpAccept:
			sb.WriteString("accept\n")
		}
	}
	return sb.String()
}
