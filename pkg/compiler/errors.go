package compiler

import (
	"fmt"
	"strconv"
)

// LexError reports source text the lexer cannot tokenise.
type LexError struct {
	Line int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error on line %d: %s", e.Line, e.Msg)
}

// ParseError reports a token slice that does not form exactly one expression.
type ParseError struct {
	Line int // 0 when the failing slice is empty
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error on line %d: %s", e.Line, e.Msg)
	}
	return "parse error: " + e.Msg
}

// UnknownFunctionError reports a call to a name missing from the
// FunctionTable.
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("call to unknown function %q", e.Name)
}

// InternalError marks a broken compiler invariant, such as a tree shape the
// parser should never produce. It is never caused by user input alone and
// always aborts compilation.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "internal compiler error: " + e.Msg
}

// StatementError attaches the failing statement to an error from any stage.
type StatementError struct {
	Index int    // 0-based statement index
	Text  string // statement source text
	Err   error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %d (%s): %v", e.Index, e.Text, e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }

func quoteRune(r rune) string {
	return strconv.QuoteRune(r)
}
