package compiler

import "fmt"

// BinOp is a binary operator. Declaration order follows precedence: an
// operator declared earlier never binds looser than one declared later.
type BinOp int

const (
	Pow BinOp = iota

	Mul
	Div
	IDiv
	Mod

	Add
	Sub

	Shl
	Shr

	Less
	LessEq
	Greater
	GreaterEq

	Eq
	NotEq
	StrictEq

	BAnd

	BXor

	BOr

	LAnd

	Max
	Min
	Angle
	Len
	Noise
)

var binOpCodes = [...]string{
	Pow:       "pow",
	Mul:       "mul",
	Div:       "div",
	IDiv:      "idiv",
	Mod:       "mod",
	Add:       "add",
	Sub:       "sub",
	Shl:       "shl",
	Shr:       "shr",
	Less:      "lessThan",
	LessEq:    "lessThanEq",
	Greater:   "greaterThan",
	GreaterEq: "greaterThanEq",
	Eq:        "equal",
	NotEq:     "notEqual",
	StrictEq:  "strictEqual",
	BAnd:      "and",
	BXor:      "xor",
	BOr:       "or",
	LAnd:      "land",
	Max:       "max",
	Min:       "min",
	Angle:     "angle",
	Len:       "len",
	Noise:     "noise",
}

// Code returns the opcode name the target machine uses for op.
func (op BinOp) Code() string {
	if int(op) >= 0 && int(op) < len(binOpCodes) {
		return binOpCodes[op]
	}
	return fmt.Sprintf("BinOp(%d)", int(op))
}

func (op BinOp) String() string { return op.Code() }

// precedenceTiers lists the binary operators grouped by binding strength,
// tightest first. Operators in one tier merge left to right.
var precedenceTiers = [][]BinOp{
	{Pow},
	{Mul, Div, IDiv, Mod},
	{Add, Sub},
	{Shl, Shr},
	{Less, LessEq, Greater, GreaterEq},
	{Eq, NotEq, StrictEq},
	{BAnd},
	{BXor},
	{BOr},
	{LAnd},
	{Max, Min, Angle, Len, Noise},
}

// Tier returns the index of op's precedence tier; lower binds tighter.
func (op BinOp) Tier() int {
	for i, tier := range precedenceTiers {
		for _, member := range tier {
			if member == op {
				return i
			}
		}
	}
	return -1
}

// UnOp is a prefix operator. Unary operators have no tier: each binds to the
// single operand that follows it.
type UnOp int

const (
	Flip UnOp = iota
	Abs
	Log
	Log10
	Floor
	Ceil
	Sqrt
	Rand
	Sin
	Cos
	Tan
	Asin
	Acos
	Atan
)

var unOpCodes = [...]string{
	Flip:  "not",
	Abs:   "abs",
	Log:   "log",
	Log10: "log10",
	Floor: "floor",
	Ceil:  "ceil",
	Sqrt:  "sqrt",
	Rand:  "rand",
	Sin:   "sin",
	Cos:   "cos",
	Tan:   "tan",
	Asin:  "asin",
	Acos:  "acos",
	Atan:  "atan",
}

// Code returns the opcode name the target machine uses for op.
func (op UnOp) Code() string {
	if int(op) >= 0 && int(op) < len(unOpCodes) {
		return unOpCodes[op]
	}
	return fmt.Sprintf("UnOp(%d)", int(op))
}

func (op UnOp) String() string { return op.Code() }

// keywords maps reserved words to the token they lex as. Several of them are
// spelled like identifiers but act as operators.
var keywords = map[string]Token{
	"ang":   binToken(Angle),
	"max":   binToken(Max),
	"min":   binToken(Min),
	"len":   binToken(Len),
	"noise": binToken(Noise),

	"if":    simpleToken(IF),
	"while": simpleToken(WHILE),
	"else":  simpleToken(ELSE),

	"abs":   unToken(Abs),
	"ln":    unToken(Log),
	"log":   unToken(Log10),
	"floor": unToken(Floor),
	"ciel":  unToken(Ceil),
	"ceil":  unToken(Ceil),
	"sqrt":  unToken(Sqrt),
	"rand":  unToken(Rand),
	"sin":   unToken(Sin),
	"cos":   unToken(Cos),
	"tan":   unToken(Tan),
	"asin":  unToken(Asin),
	"acos":  unToken(Acos),
	"atan":  unToken(Atan),
}

// lookupKeyword reports whether word is reserved and, if so, its token.
func lookupKeyword(word string) (Token, bool) {
	tok, ok := keywords[word]
	return tok, ok
}
