package compiler

import (
	"fmt"
	"strings"
)

// Expr is implemented by every node of a finished expression tree. The
// parser's unresolved operators live in a separate type and can never appear
// here.
type Expr interface {
	exprNode()
	String() string
}

// Value is a leaf: a variable read or a numeric constant.
//
//	x = y + 2;
//	    ^   ^  Value{Name: "y"}, Value{Num: 2}
type Value struct {
	Name string // identifier; empty for a numeric literal
	Num  float64
}

// Ident returns a Value reading the variable name.
func Ident(name string) *Value { return &Value{Name: name} }

// Num returns a Value holding the constant v.
func Num(v float64) *Value { return &Value{Num: v} }

// IsIdent reports whether v names a variable rather than a constant.
func (v *Value) IsIdent() bool { return v.Name != "" }

// Text is the operand text the renderer prints for v.
func (v *Value) Text() string {
	if v.IsIdent() {
		return v.Name
	}
	return formatNum(v.Num)
}

func (*Value) exprNode()        {}
func (v *Value) String() string { return v.Text() }

// Binary represents Left Op Right.
//
//	a - b * c
//	^ ^ ^^^^^
//	| | Right (Binary b mul c)
//	| Op
//	Left
type Binary struct {
	Left  Expr
	Op    BinOp
	Right Expr
}

func (*Binary) exprNode() {}
func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// Unary represents Op Operand, e.g. sqrt x.
type Unary struct {
	Op      UnOp
	Operand Expr
}

func (*Unary) exprNode()        {}
func (u *Unary) String() string { return fmt.Sprintf("(%s %s)", u.Op, u.Operand) }

// Call represents name(args). Arguments keep their source order.
type Call struct {
	Name string
	Args []Expr
}

func (*Call) exprNode() {}
func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Name, strings.Join(args, ", "))
}

// InlineRaw carries target text written between $ fences, passed through
// unchanged.
type InlineRaw struct {
	Text string
}

func (*InlineRaw) exprNode()        {}
func (r *InlineRaw) String() string { return fmt.Sprintf("$%s$", r.Text) }
