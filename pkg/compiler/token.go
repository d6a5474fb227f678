package compiler

import (
	"fmt"
	"strconv"
)

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	ILLEGAL TokenType = iota

	// Literals
	NUMBER     // numeric literal, value in Token.Num
	IDENTIFIER // variable / function name

	// Operators, operator in Token.BinOp / Token.UnOp
	BINARY_OP
	UNARY_OP

	// Paired delimiters
	LBRACE   // {
	RBRACE   // }
	LBRACKET // [
	RBRACKET // ]
	LPAREN   // (
	RPAREN   // )

	// Punctuation
	COMMA     // ,
	SEMICOLON // ;
	ASSIGN    // =

	// Verbatim spans, payload in Token.Text
	PREPROC    // #...#
	INLINE_ASM // $...$

	// Reserved control keywords
	IF
	WHILE
	ELSE
)

var tokenNames = [...]string{
	ILLEGAL:    "ILLEGAL",
	NUMBER:     "NUMBER",
	IDENTIFIER: "IDENTIFIER",
	BINARY_OP:  "BINARY_OP",
	UNARY_OP:   "UNARY_OP",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	LBRACKET:   "LBRACKET",
	RBRACKET:   "RBRACKET",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	COMMA:      "COMMA",
	SEMICOLON:  "SEMICOLON",
	ASSIGN:     "ASSIGN",
	PREPROC:    "PREPROC",
	INLINE_ASM: "INLINE_ASM",
	IF:         "IF",
	WHILE:      "WHILE",
	ELSE:       "ELSE",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer. Only the payload
// field matching Type is meaningful.
type Token struct {
	Type  TokenType
	Num   float64 // NUMBER
	Text  string  // IDENTIFIER, PREPROC, INLINE_ASM
	BinOp BinOp   // BINARY_OP
	UnOp  UnOp    // UNARY_OP
	Line  int     // 1-based source line
	Pos   int     // rune offset of the token's first character
}

func numToken(v float64) Token       { return Token{Type: NUMBER, Num: v} }
func identToken(s string) Token      { return Token{Type: IDENTIFIER, Text: s} }
func binToken(op BinOp) Token        { return Token{Type: BINARY_OP, BinOp: op} }
func unToken(op UnOp) Token          { return Token{Type: UNARY_OP, UnOp: op} }
func simpleToken(tt TokenType) Token { return Token{Type: tt} }

func (t Token) String() string {
	switch t.Type {
	case NUMBER:
		return fmt.Sprintf("%s(%s)", t.Type, formatNum(t.Num))
	case IDENTIFIER:
		return fmt.Sprintf("%s(%s)", t.Type, t.Text)
	case PREPROC, INLINE_ASM:
		return fmt.Sprintf("%s(%q)", t.Type, t.Text)
	case BINARY_OP:
		return fmt.Sprintf("%s(%s)", t.Type, t.BinOp)
	case UNARY_OP:
		return fmt.Sprintf("%s(%s)", t.Type, t.UnOp)
	}
	return t.Type.String()
}

// formatNum renders a literal in its canonical decimal form: 20 not 20.0,
// 0.5 not 5e-01.
func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
