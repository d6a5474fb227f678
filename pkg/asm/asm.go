// Package asm reads processor logic text into instructions. It resolves
// labels in two passes, so a label may be used before the line that
// defines it.
package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Kind classifies an assembled instruction.
type Kind int

const (
	KindSet Kind = iota
	KindOp
	KindJump
	KindEnd
	KindNoop
	// KindRaw is an instruction this package does not model. It still
	// occupies one slot, so offsets stay correct when linking.
	KindRaw
)

var kindNames = [...]string{
	KindSet:  "set",
	KindOp:   "op",
	KindJump: "jump",
	KindEnd:  "end",
	KindNoop: "noop",
	KindRaw:  "raw",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// opArity is the number of meaningful source operands of each op code.
var opArity = map[string]int{
	"add": 2, "sub": 2, "mul": 2, "div": 2, "idiv": 2, "mod": 2, "pow": 2,
	"equal": 2, "notEqual": 2, "land": 2, "lessThan": 2, "lessThanEq": 2,
	"greaterThan": 2, "greaterThanEq": 2, "strictEqual": 2,
	"shl": 2, "shr": 2, "or": 2, "and": 2, "xor": 2,
	"max": 2, "min": 2, "angle": 2, "len": 2, "noise": 2,

	"not": 1, "abs": 1, "log": 1, "log10": 1, "floor": 1, "ceil": 1,
	"sqrt": 1, "rand": 1, "sin": 1, "cos": 1, "tan": 1,
	"asin": 1, "acos": 1, "atan": 1,
}

// jumpConditions lists the comparisons a jump accepts.
var jumpConditions = map[string]bool{
	"always":        true,
	"equal":         true,
	"notEqual":      true,
	"lessThan":      true,
	"lessThanEq":    true,
	"greaterThan":   true,
	"greaterThanEq": true,
	"strictEqual":   true,
}

// OpArity reports how many source operands op code takes.
func OpArity(code string) (int, bool) {
	n, ok := opArity[code]
	return n, ok
}

// Instruction is one executable line.
//
//	set x 5             Kind: KindSet,  Args: [x 5]
//	op add x x 1        Kind: KindOp,   Code: add, Args: [x x 1]
//	jump loop lessThan i 10
//	                    Kind: KindJump, Code: lessThan, Args: [i 10], Target: <loop>
type Instruction struct {
	Kind   Kind
	Code   string   // op code, jump condition, or raw mnemonic
	Args   []string // operands as written, jump target excluded
	Target int      // resolved jump destination
	Line   int      // 1-based source line
	Text   string   // the trimmed source line
}

// Program is the result of assembling logic text.
type Program struct {
	Instructions []Instruction
	Labels       map[string]int // label -> instruction index
}

type Assembler struct {
	labels map[string]int
}

type parsedLine struct {
	lineNo   int
	labels   []string
	mnemonic string
	operands []string
	text     string
}

func NewAssembler() *Assembler {
	return &Assembler{
		labels: make(map[string]int),
	}
}

func Assemble(code string) (*Program, error) {
	return NewAssembler().Assemble(code)
}

func (a *Assembler) Assemble(code string) (*Program, error) {
	lines := strings.Split(code, "\n")

	parsed := make([]parsedLine, 0, len(lines))
	for i, raw := range lines {
		p, err := parseLine(raw, i+1)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, p)
	}

	if err := a.pass1(parsed); err != nil {
		return nil, err
	}
	instrs, err := a.pass2(parsed)
	if err != nil {
		return nil, err
	}

	labels := make(map[string]int, len(a.labels))
	for k, v := range a.labels {
		labels[k] = v
	}
	return &Program{Instructions: instrs, Labels: labels}, nil
}

// pass1 assigns every label the index of the next instruction.
func (a *Assembler) pass1(lines []parsedLine) error {
	address := 0
	for _, p := range lines {
		for _, lbl := range p.labels {
			if _, exists := a.labels[lbl]; exists {
				return fmt.Errorf("duplicate label '%s' on line %d", lbl, p.lineNo)
			}
			a.labels[lbl] = address
		}
		if p.mnemonic != "" {
			address++
		}
	}
	return nil
}

func (a *Assembler) pass2(lines []parsedLine) ([]Instruction, error) {
	var program []Instruction

	for _, p := range lines {
		if p.mnemonic == "" {
			continue
		}
		ops := p.operands
		in := Instruction{Line: p.lineNo, Text: p.text}

		switch p.mnemonic {
		case "set":
			if len(ops) != 2 {
				return nil, fmt.Errorf("set expects 2 operands on line %d", p.lineNo)
			}
			in.Kind = KindSet
			in.Args = ops

		case "op":
			if len(ops) < 3 {
				return nil, fmt.Errorf("op expects a code, a destination and operands on line %d", p.lineNo)
			}
			arity, ok := opArity[ops[0]]
			if !ok {
				return nil, fmt.Errorf("unknown op code '%s' on line %d", ops[0], p.lineNo)
			}
			// dest + operands; a unary op may carry a placeholder second operand.
			if n := len(ops) - 2; n != arity && !(arity == 1 && n == 2) {
				return nil, fmt.Errorf("op %s expects %d operands on line %d", ops[0], arity, p.lineNo)
			}
			in.Kind = KindOp
			in.Code = ops[0]
			in.Args = ops[1:]

		case "jump":
			if len(ops) < 2 {
				return nil, fmt.Errorf("jump expects a target and a condition on line %d", p.lineNo)
			}
			target, err := a.resolveTarget(ops[0], p.lineNo)
			if err != nil {
				return nil, err
			}
			cond := ops[1]
			if !jumpConditions[cond] {
				return nil, fmt.Errorf("unknown jump condition '%s' on line %d", cond, p.lineNo)
			}
			if cond != "always" && len(ops) != 4 {
				return nil, fmt.Errorf("jump %s expects 2 operands on line %d", cond, p.lineNo)
			}
			in.Kind = KindJump
			in.Code = cond
			in.Target = target
			in.Args = ops[2:]

		case "end":
			in.Kind = KindEnd

		case "noop":
			in.Kind = KindNoop

		default:
			in.Kind = KindRaw
			in.Code = p.mnemonic
			in.Args = ops
		}

		program = append(program, in)
	}

	return program, nil
}

func parseLine(raw string, lineNo int) (parsedLine, error) {
	p := parsedLine{lineNo: lineNo}

	line := strings.TrimSpace(stripComments(raw))
	if line == "" {
		return p, nil
	}

	for {
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			break
		}

		beforeColon := strings.TrimSpace(line[:colon])
		if strings.ContainsAny(beforeColon, " \t") {
			break
		}

		if !isIdentifier(beforeColon) {
			return p, fmt.Errorf("invalid label '%s' on line %d", beforeColon, lineNo)
		}

		p.labels = append(p.labels, beforeColon)
		line = strings.TrimSpace(line[colon+1:])
		if line == "" {
			return p, nil
		}
	}

	fields := strings.Fields(line)
	p.mnemonic = fields[0]
	if len(fields) > 1 {
		p.operands = fields[1:]
	}
	p.text = line
	return p, nil
}

// stripComments drops a trailing # comment.
func stripComments(line string) string {
	if cut := strings.IndexByte(line, '#'); cut >= 0 {
		return line[:cut]
	}
	return line
}

func (a *Assembler) resolveTarget(token string, lineNo int) (int, error) {
	if value, err := strconv.Atoi(token); err == nil {
		if value < 0 {
			return 0, fmt.Errorf("negative jump target on line %d: %s", lineNo, token)
		}
		return value, nil
	}

	if addr, ok := a.labels[token]; ok {
		return addr, nil
	}

	if isIdentifier(token) {
		return 0, fmt.Errorf("undefined label '%s' on line %d", token, lineNo)
	}

	return 0, fmt.Errorf("invalid jump target '%s' on line %d", token, lineNo)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return true
}
