// Package parser reads sequence assembly (.seq) using Participle v2.
// Grammar is defined as Go structs with tags.
//
// A source is a list of directives followed by instructions:
//
//	; T1 | T2
//	.sequence ->
//	        split L1, L2
//	L1:     match 1
//	        jump L3
//	L2:     match 2
//	L3:     accept
package parser

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// AST node types - parsed from source, assembled into a CompiledSequence

// Source is the top-level AST node
type Source struct {
	Pos        lexer.Position
	Directives []*Directive `@@*`
	Lines      []*Line      `@@*`
}

// Directive: .name value
type Directive struct {
	Pos   lexer.Position
	Name  string `@Directive`
	Value string `@(Operator | String | Ident | Int)`
}

// Line is an instruction, optionally preceded by the label it defines
type Line struct {
	Pos   lexer.Position
	Label *string `(@Ident ":")?`
	Instr *Instr  `@@`
}

// Instr: match <operand> | split <target>, <target> | jump <target> | accept
type Instr struct {
	Pos    lexer.Position
	Match  *Operand `  "match" @@`
	Split  *Split   `| "split" @@`
	Jump   *Target  `| "jump" @@`
	Accept bool     `| @"accept"`
}

// Operand is the token a match compares against
type Operand struct {
	Int    *int64  `  @Int`
	String *string `| @String`
	Ident  *string `| @Ident`
}

// Split holds both targets of a split
type Split struct {
	First  *Target `@@ ","`
	Second *Target `@@`
}

// Target is an instruction index or a label name
type Target struct {
	Pos   lexer.Position
	Index *int    `  @Int`
	Label *string `| @Ident`
}

// Sequence assembly lexer definition
var seqLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Skip whitespace and comments
	{Name: "Comment", Pattern: `;[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s]+`},

	{Name: "Directive", Pattern: `\.[a-zA-Z]+`},

	// Sequence operators: -> => ~> \\
	{Name: "Operator", Pattern: `->|=>|~>|\\\\`},

	// Literals
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},

	// Identifiers (mnemonics, labels and symbolic tokens)
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_-]*`},

	{Name: "Punct", Pattern: `[:,]`},
})

// Parser is the sequence assembly parser
var Parser = participle.MustBuild[Source](
	participle.Lexer(seqLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

// Parse parses sequence assembly into a Source AST
func Parse(source string) (*Source, error) {
	return Parser.ParseString("", source)
}

// ParseNamed parses sequence assembly, reporting positions against filename
func ParseNamed(filename, source string) (*Source, error) {
	return Parser.ParseString(filename, source)
}
