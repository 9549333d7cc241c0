// Package types defines the token values consumed by sequence programs.
// A token is an opaque unit of input identity: the matcher only ever asks
// whether two tokens are equal.
package types

import (
	"fmt"
	"strconv"
)

// Token is the interface all matchable input implements.
type Token interface {
	// String returns a human-readable representation
	String() string
	// Equal reports whether other denotes the same token
	Equal(other Token) bool
}

// Int is a numbered token, e.g. the sequence number of an event.
type Int int64

func (n Int) String() string { return strconv.FormatInt(int64(n), 10) }

func (n Int) Equal(other Token) bool {
	if o, ok := other.(Int); ok {
		return n == o
	}
	return false
}

// Symbol is a named token.
type Symbol string

func (s Symbol) String() string { return string(s) }

func (s Symbol) Equal(other Token) bool {
	if o, ok := other.(Symbol); ok {
		return s == o
	}
	return false
}

// Parse turns text into a token: decimal integers become Int, anything
// else a Symbol. A double-quoted Go string literal is unquoted and always
// yields a Symbol.
func Parse(text string) Token {
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		if s, err := strconv.Unquote(text); err == nil {
			return Symbol(s)
		}
		return Symbol(text[1 : len(text)-1])
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return Int(n)
	}
	return Symbol(text)
}

// Quote renders a token the way Parse reads it back.
func Quote(tok Token) string {
	switch t := tok.(type) {
	case Int:
		return t.String()
	case Symbol:
		if _, err := strconv.ParseInt(string(t), 10, 64); err == nil || !isIdent(string(t)) {
			return strconv.Quote(string(t))
		}
		return string(t)
	case nil:
		return "<nil>"
	}
	return fmt.Sprintf("%v", tok)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && (r == '-' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}
