package compiler

import (
	"math"
	"strings"
)

// Lexer turns source text into tokens. Punctuation is matched through a
// pending buffer: an unclassified rune is parked in pending and resolved on
// the next step, using lookahead for the multi-rune operators.
type Lexer struct {
	sc      *Scanner
	pending string
	pendAt  Token // line and offset of the pending rune
	tokens  []Token
}

func newLexer(src string) *Lexer {
	return &Lexer{sc: NewScanner(src)}
}

// Lex tokenises src. It fails only on an unterminated #...# or $...$ span or
// on a character that cannot begin any token; the tokens lexed before the
// failure are returned alongside the error.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	if err := l.run(); err != nil {
		return l.tokens, err
	}
	return fixNegativeLiterals(l.tokens), nil
}

func (l *Lexer) emit(tok Token, line, pos int) {
	tok.Line, tok.Pos = line, pos
	l.tokens = append(l.tokens, tok)
}

func (l *Lexer) run() error {
	for {
		if l.pending != "" {
			tok, ok, err := l.resolvePending()
			if err != nil {
				return err
			}
			if !ok {
				r := []rune(l.pending)[0]
				return &LexError{Line: l.pendAt.Line, Msg: "unexpected character " + quoteRune(r)}
			}
			l.emit(tok, l.pendAt.Line, l.pendAt.Pos)
			l.pending = ""
			continue
		}

		line, pos := l.sc.Line(), l.sc.Pos()
		r := l.sc.Next()
		switch {
		case r == EOFRune:
			return nil
		case isDigit(r):
			l.sc.Back()
			if err := l.number(false, line, pos); err != nil {
				return err
			}
		case r == '-':
			if err := l.lexMinus(line, pos); err != nil {
				return err
			}
		case isIdentChar(r):
			l.sc.Back()
			word := l.sc.Identifier()
			if kw, ok := lookupKeyword(word); ok {
				l.emit(kw, line, pos)
			} else {
				l.emit(identToken(word), line, pos)
			}
		case r == ' ' || r == '\t':
			l.pending = ""
		case r == '\n' || r == '\r':
		default:
			l.pending += string(r)
			l.pendAt = Token{Line: line, Pos: pos}
		}
	}
}

// lexMinus runs after a '-' has been consumed. A digit after any spaces folds
// the sign into the literal; anything else leaves a subtraction operator.
func (l *Lexer) lexMinus(line, pos int) error {
	l.sc.SkipSpaces()
	if isDigit(l.sc.Peek()) {
		return l.number(true, line, pos)
	}
	l.emit(binToken(Sub), line, pos)
	return nil
}

// number emits the literal at the cursor. A literal too large for a float64
// has no text form the target reads as a number, so it is rejected.
func (l *Lexer) number(negative bool, line, pos int) error {
	v := l.sc.Number(negative)
	if math.IsInf(v, 0) {
		return &LexError{Line: line, Msg: "number literal out of range"}
	}
	l.emit(numToken(v), line, pos)
	return nil
}

// accept consumes the next rune if it is r.
func (l *Lexer) accept(r rune) bool {
	if l.sc.Peek() == r {
		l.sc.Next()
		return true
	}
	return false
}

// resolvePending classifies the pending buffer as a keyword, a span or a
// punctuation token. ok is false when nothing matches.
func (l *Lexer) resolvePending() (tok Token, ok bool, err error) {
	if kw, found := lookupKeyword(l.pending); found {
		return kw, true, nil
	}

	switch l.pending {
	case "#":
		text, err := l.scanSpan('#')
		return Token{Type: PREPROC, Text: text}, err == nil, err
	case "$":
		text, err := l.scanSpan('$')
		return Token{Type: INLINE_ASM, Text: text}, err == nil, err
	case "+":
		return binToken(Add), true, nil
	case "-":
		return binToken(Sub), true, nil
	case "*":
		return binToken(Mul), true, nil
	case "/":
		if l.accept('/') {
			return binToken(IDiv), true, nil
		}
		return binToken(Div), true, nil
	case "%":
		return binToken(Mod), true, nil
	case "&":
		if l.accept('/') {
			return binToken(LAnd), true, nil
		}
		return binToken(BAnd), true, nil
	case "|":
		return binToken(BOr), true, nil
	case "^":
		if l.accept('^') {
			return binToken(Pow), true, nil
		}
		return binToken(BXor), true, nil
	case "=":
		if l.accept('=') {
			if l.accept('=') {
				return binToken(StrictEq), true, nil
			}
			return binToken(Eq), true, nil
		}
		return simpleToken(ASSIGN), true, nil
	case "!":
		if l.accept('=') {
			return binToken(NotEq), true, nil
		}
		return Token{}, false, nil
	case ">":
		if l.accept('=') {
			return binToken(GreaterEq), true, nil
		}
		if l.accept('>') {
			return binToken(Shr), true, nil
		}
		return binToken(Greater), true, nil
	case "<":
		if l.accept('=') {
			return binToken(LessEq), true, nil
		}
		if l.accept('<') {
			return binToken(Shl), true, nil
		}
		return binToken(Less), true, nil
	case "{":
		return simpleToken(LBRACE), true, nil
	case "}":
		return simpleToken(RBRACE), true, nil
	case "[":
		return simpleToken(LBRACKET), true, nil
	case "]":
		return simpleToken(RBRACKET), true, nil
	case "(":
		return simpleToken(LPAREN), true, nil
	case ")":
		return simpleToken(RPAREN), true, nil
	case ",":
		return simpleToken(COMMA), true, nil
	case ";":
		return simpleToken(SEMICOLON), true, nil
	case "~":
		return unToken(Flip), true, nil
	}
	return Token{}, false, nil
}

// scanSpan collects everything up to the next unescaped fence. The opening
// fence must already have been consumed. A backslash always takes the rune
// after it, and both are kept in the payload as written.
func (l *Lexer) scanSpan(fence rune) (string, error) {
	startLine := l.pendAt.Line
	var b strings.Builder
	for {
		r := l.sc.Next()
		switch r {
		case EOFRune:
			return "", &LexError{
				Line: startLine,
				Msg:  "unterminated " + quoteRune(fence) + " span",
			}
		case fence:
			return b.String(), nil
		case '\\':
			next := l.sc.Next()
			if next == EOFRune {
				return "", &LexError{
					Line: startLine,
					Msg:  "unterminated " + quoteRune(fence) + " span",
				}
			}
			b.WriteRune('\\')
			b.WriteRune(next)
		default:
			b.WriteRune(r)
		}
	}
}

// fixNegativeLiterals splits a negative literal that directly follows an
// operand back into a subtraction. The lexer folds "- 10" into one literal,
// so without this pass "20-10" would read as the two operands 20 and -10.
func fixNegativeLiterals(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Type == NUMBER && math.Signbit(tok.Num) && len(out) > 0 && endsOperand(out[len(out)-1]) {
			sub := binToken(Sub)
			sub.Line, sub.Pos = tok.Line, tok.Pos
			out = append(out, sub)
			tok.Num = -tok.Num
		}
		out = append(out, tok)
	}
	return out
}

func endsOperand(tok Token) bool {
	switch tok.Type {
	case NUMBER, IDENTIFIER, RPAREN:
		return true
	}
	return false
}
