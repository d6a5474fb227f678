package compiler

import "strings"

// Statement is one ';'-terminated slice of the token stream.
type Statement struct {
	Index  int    // position among the non-empty statements
	Line   int    // line of the first token
	Text   string // trimmed source text, without the ';'
	Tokens []Token
}

// SplitStatements cuts tokens at each SEMICOLON. Empty statements are
// dropped; a final statement without a ';' is kept. src is the text the
// tokens were lexed from and is used only to fill Statement.Text.
func SplitStatements(tokens []Token, src string) []Statement {
	runes := []rune(src)
	var stmts []Statement

	start := 0
	flush := func(end, endPos int) {
		if end > start {
			first := tokens[start]
			stmts = append(stmts, Statement{
				Index:  len(stmts),
				Line:   first.Line,
				Text:   sliceText(runes, first.Pos, endPos),
				Tokens: tokens[start:end],
			})
		}
		start = end + 1
	}

	for i, tok := range tokens {
		if tok.Type == SEMICOLON {
			flush(i, tok.Pos)
		}
	}
	if start < len(tokens) {
		flush(len(tokens), len(runes))
	}
	return stmts
}

func sliceText(runes []rune, from, to int) string {
	if from < 0 || from > len(runes) || to > len(runes) || from > to {
		return ""
	}
	return strings.TrimSpace(string(runes[from:to]))
}

// IsAssignment reports whether the statement has the form name = expr.
func (s Statement) IsAssignment() bool {
	return len(s.Tokens) >= 2 && s.Tokens[0].Type == IDENTIFIER && s.Tokens[1].Type == ASSIGN
}

// IsInline reports whether the statement is a lone $...$ span.
func (s Statement) IsInline() bool {
	return len(s.Tokens) == 1 && s.Tokens[0].Type == INLINE_ASM
}

// skipReason explains why a statement is not compiled, or returns "".
func (s Statement) skipReason() string {
	switch {
	case s.IsAssignment(), s.IsInline():
		return ""
	case s.Tokens[0].Type == PREPROC:
		return "preprocessor directives are not supported"
	case s.Tokens[0].Type == IF, s.Tokens[0].Type == WHILE, s.Tokens[0].Type == ELSE:
		return "control flow is not supported"
	}
	return "not an assignment"
}
