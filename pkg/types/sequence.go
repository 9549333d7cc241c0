package types

// SequenceType tags a sequence description with the operator that joined
// its elements. The matcher itself never interprets it; it is carried
// along so tools can report which operator a program was built for.
type SequenceType int

const (
	FollowedBy              SequenceType = iota // ->
	StrictlyFollowedBy                          // =>
	LooselyFollowedBy                           // ~>
	IndependentlyFollowedBy                     // \\
)

var sequenceOperators = [...]string{
	FollowedBy:              "->",
	StrictlyFollowedBy:      "=>",
	LooselyFollowedBy:       "~>",
	IndependentlyFollowedBy: `\\`,
}

// String returns the rule-language operator for the type.
func (t SequenceType) String() string {
	if t < 0 || int(t) >= len(sequenceOperators) {
		return "?"
	}
	return sequenceOperators[t]
}

// Name returns a descriptive name, e.g. "followed-by".
func (t SequenceType) Name() string {
	switch t {
	case FollowedBy:
		return "followed-by"
	case StrictlyFollowedBy:
		return "strictly-followed-by"
	case LooselyFollowedBy:
		return "loosely-followed-by"
	case IndependentlyFollowedBy:
		return "independently-followed-by"
	}
	return "unknown"
}

// ResolveSequenceType maps an operator back to its type.
func ResolveSequenceType(op string) (SequenceType, bool) {
	for t, s := range sequenceOperators {
		if s == op {
			return SequenceType(t), true
		}
	}
	return 0, false
}
