package compiler

import (
	"fmt"
	"slices"
)

// Parse builds the tree for one expression from its tokens.
//
// Parsing runs in two phases. flatten walks the tokens once, turning
// literals, identifiers, calls, parenthesised groups and unary applications
// into finished subtrees, and binary operators into pending items. merge then
// folds the pending operators into Binary nodes one precedence tier at a
// time, tightest first, left to right within a tier.
//
//	6 / 2 * (1 + sq(2, 4))
//	flatten: [6] / [2] * [(1 add sq(2, 4))]
//	merge:   ((6 div 2) mul (1 add sq(2, 4)))
func Parse(tokens []Token) (Expr, error) {
	p := &exprParser{tokens: tokens}
	items, err := p.flatten()
	if err != nil {
		return nil, err
	}
	return merge(items, lineOf(tokens))
}

// item is one element of a flattened expression: either a finished subtree
// or a binary operator still waiting for its operands.
type item struct {
	node Expr  // nil for a pending operator
	op   BinOp // valid when node is nil
	line int
}

func (it item) pending() bool { return it.node == nil }

func (it item) String() string {
	if it.pending() {
		return it.op.String()
	}
	return it.node.String()
}

type exprParser struct {
	tokens []Token
	pos    int
}

func (p *exprParser) errorf(line int, format string, args ...any) error {
	return &ParseError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (p *exprParser) flatten() ([]item, error) {
	var items []item
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		switch {
		case tok.Type == BINARY_OP:
			items = append(items, item{op: tok.BinOp, line: tok.Line})
			p.pos++
		case startsOperand(tok):
			node, err := p.operand()
			if err != nil {
				return nil, err
			}
			items = append(items, item{node: node, line: tok.Line})
		default:
			// Commas, braces and the like carry no value at this level.
			p.pos++
		}
	}
	return items, nil
}

func startsOperand(tok Token) bool {
	switch tok.Type {
	case NUMBER, IDENTIFIER, UNARY_OP, LPAREN, INLINE_ASM:
		return true
	}
	return false
}

// operand consumes exactly one operand starting at p.pos. A unary operator
// is resolved here against the operand right after it, so unary operators
// never reach the tier merge.
func (p *exprParser) operand() (Expr, error) {
	tok := p.tokens[p.pos]
	switch tok.Type {
	case NUMBER:
		p.pos++
		return Num(tok.Num), nil
	case IDENTIFIER:
		if p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].Type == LPAREN {
			return p.call()
		}
		p.pos++
		return Ident(tok.Text), nil
	case INLINE_ASM:
		p.pos++
		return &InlineRaw{Text: tok.Text}, nil
	case LPAREN:
		return p.group()
	case UNARY_OP:
		p.pos++
		if p.pos >= len(p.tokens) || !startsOperand(p.tokens[p.pos]) {
			return nil, p.errorf(tok.Line, "operator %s is missing its operand", tok.UnOp)
		}
		inner, err := p.operand()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: tok.UnOp, Operand: inner}, nil
	}
	return nil, &InternalError{Msg: fmt.Sprintf("operand called on %s", tok)}
}

// closing finds the RPAREN matching the LPAREN at open, along with the
// positions of the commas at the top nesting level between them.
func (p *exprParser) closing(open int) (closeAt int, commas []int, ok bool) {
	depth := 0
	for i := open + 1; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case LPAREN:
			depth++
		case RPAREN:
			if depth == 0 {
				return i, commas, true
			}
			depth--
		case COMMA:
			if depth == 0 {
				commas = append(commas, i)
			}
		}
	}
	return 0, nil, false
}

// call parses IDENTIFIER "(" [expr ("," expr)*] ")".
func (p *exprParser) call() (Expr, error) {
	name := p.tokens[p.pos]
	open := p.pos + 1
	closeAt, commas, ok := p.closing(open)
	if !ok {
		return nil, p.errorf(name.Line, "call to %s is missing its closing ')'", name.Text)
	}
	p.pos = closeAt + 1

	c := &Call{Name: name.Text}
	if len(commas) == 0 && closeAt == open+1 {
		return c, nil
	}
	bounds := append(append([]int{open}, commas...), closeAt)
	for i := 0; i+1 < len(bounds); i++ {
		arg := p.tokens[bounds[i]+1 : bounds[i+1]]
		if len(arg) == 0 {
			return nil, p.errorf(name.Line, "argument %d of %s is empty", i+1, name.Text)
		}
		expr, err := Parse(arg)
		if err != nil {
			return nil, err
		}
		c.Args = append(c.Args, expr)
	}
	return c, nil
}

// group parses "(" expr ")" into the single tree for expr.
func (p *exprParser) group() (Expr, error) {
	open := p.tokens[p.pos]
	closeAt, _, ok := p.closing(p.pos)
	if !ok {
		return nil, p.errorf(open.Line, "unmatched '('")
	}
	inner := p.tokens[p.pos+1 : closeAt]
	p.pos = closeAt + 1
	if len(inner) == 0 {
		return nil, p.errorf(open.Line, "empty parentheses")
	}
	return Parse(inner)
}

// merge folds pending operators into Binary nodes, tier by tier.
func merge(items []item, line int) (Expr, error) {
	if len(items) == 0 {
		return nil, &ParseError{Line: line, Msg: "empty expression"}
	}
	if err := checkAlternation(items); err != nil {
		return nil, err
	}

	for _, tier := range precedenceTiers {
		for k := 1; k < len(items)-1; {
			op := items[k]
			if !op.pending() || !slices.Contains(tier, op.op) {
				k += 2
				continue
			}
			folded := item{
				node: &Binary{Left: items[k-1].node, Op: op.op, Right: items[k+1].node},
				line: items[k-1].line,
			}
			// k now holds the operator after the folded pair, if any.
			items = slices.Replace(items, k-1, k+2, folded)
		}
	}

	if len(items) != 1 {
		return nil, &ParseError{Line: line, Msg: fmt.Sprintf("expression left %d unmerged parts", len(items))}
	}
	return items[0].node, nil
}

// checkAlternation verifies items run operand, operator, operand, ...,
// operand, which is what every tier merge relies on.
func checkAlternation(items []item) error {
	for i, it := range items {
		wantOperand := i%2 == 0
		switch {
		case wantOperand && it.pending() && i == 0:
			return &ParseError{Line: it.line, Msg: fmt.Sprintf("operator %s is missing its left operand", it.op)}
		case wantOperand && it.pending():
			return &ParseError{Line: it.line, Msg: fmt.Sprintf("operators %s and %s are adjacent", items[i-1].op, it.op)}
		case !wantOperand && !it.pending():
			return &ParseError{Line: it.line, Msg: fmt.Sprintf("missing operator between %s and %s", items[i-1], it)}
		}
	}
	if last := items[len(items)-1]; last.pending() {
		return &ParseError{Line: last.line, Msg: fmt.Sprintf("operator %s is missing its right operand", last.op)}
	}
	return nil
}

func lineOf(tokens []Token) int {
	if len(tokens) == 0 {
		return 0
	}
	return tokens[0].Line
}
