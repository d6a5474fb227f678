package compiler

// EOFRune is returned by Scanner.Next once the input is exhausted.
const EOFRune rune = -1

// Scanner is a cursor over the source runes. Every read moves the cursor
// forward; the only way back is Back, which undoes exactly one Next.
type Scanner struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
}

// NewScanner returns a Scanner positioned at the start of src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: []rune(src), line: 1}
}

// Pos returns the index of the next rune to consume.
func (s *Scanner) Pos() int { return s.pos }

// Line returns the 1-based line of the next rune to consume.
func (s *Scanner) Line() int { return s.line }

// AtEnd reports whether every rune has been consumed.
func (s *Scanner) AtEnd() bool { return s.pos >= len(s.src) }

// Next consumes one rune and returns it, or EOFRune at end of input.
func (s *Scanner) Next() rune {
	if s.pos >= len(s.src) {
		return EOFRune
	}
	r := s.src[s.pos]
	s.pos++
	if r == '\n' {
		s.line++
	}
	return r
}

// Back un-reads the rune returned by the previous Next. It is a no-op at the
// start of input.
func (s *Scanner) Back() {
	if s.pos == 0 {
		return
	}
	s.pos--
	if s.src[s.pos] == '\n' {
		s.line--
	}
}

// Peek returns the next rune without consuming it.
func (s *Scanner) Peek() rune {
	if s.pos >= len(s.src) {
		return EOFRune
	}
	return s.src[s.pos]
}

// SkipSpaces consumes a run of space characters.
func (s *Scanner) SkipSpaces() {
	for s.Peek() == ' ' {
		s.Next()
	}
}

// Identifier consumes the longest run of identifier characters starting at
// the cursor. It returns "" when the cursor is not on one.
func (s *Scanner) Identifier() string {
	start := s.pos
	for s.pos < len(s.src) && isIdentChar(s.src[s.pos]) {
		s.pos++
	}
	return string(s.src[start:s.pos])
}

// Number consumes a decimal literal starting at the cursor. The integer part
// accumulates as v*10+digit; after a '.' each further digit adds digit/10^n.
// With negative set the result is negated last, so Number(true) on "0"
// yields negative zero.
func (s *Scanner) Number(negative bool) float64 {
	var out float64
	for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
		out = out*10 + float64(s.src[s.pos]-'0')
		s.pos++
	}
	if s.pos < len(s.src) && s.src[s.pos] == '.' {
		s.pos++
		var frac float64
		div := 1.0
		for s.pos < len(s.src) && isDigit(s.src[s.pos]) {
			div *= 10
			frac += float64(s.src[s.pos]-'0') / div
			s.pos++
		}
		out += frac
	}
	if negative {
		return -out
	}
	return out
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}
