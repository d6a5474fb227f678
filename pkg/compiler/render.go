package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// Render formats instructions as target text, one per line, using the
// default target.
func Render(ir []Instr, funcs *FunctionTable) (string, error) {
	return DefaultTarget().Render(ir, funcs)
}

// Render formats instructions as target text, one per line, with no
// trailing newline.
func (t Target) Render(ir []Instr, funcs *FunctionTable) (string, error) {
	lines := make([]string, 0, len(ir))
	for _, in := range ir {
		line, err := t.RenderInstr(in, funcs)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// RenderInstr formats a single instruction.
//
//	Bop         op <opcode> <dest> <left> <right>
//	Uop         op <opcode> <dest> <operand> _
//	Set         set <dest> <src>
//	CallJump    set <counter> <entry offset>
//	InlineLogic <text>
func (t Target) RenderInstr(in Instr, funcs *FunctionTable) (string, error) {
	switch i := in.(type) {
	case *Bop:
		return fmt.Sprintf("op %s %s %s %s", i.Op.Code(), i.Dest, i.Left, i.Right), nil
	case *Uop:
		return fmt.Sprintf("op %s %s %s _", i.Op.Code(), i.Dest, i.Operand), nil
	case *Set:
		return fmt.Sprintf("set %s %s", i.Dest, i.Src), nil
	case *CallJump:
		off, ok := funcs.Lookup(i.Name)
		if !ok {
			return "", &UnknownFunctionError{Name: i.Name}
		}
		return fmt.Sprintf("set %s %s", t.Counter, strconv.Itoa(off)), nil
	case *InlineLogic:
		return i.Text, nil
	}
	return "", &InternalError{Msg: fmt.Sprintf("cannot render %T", in)}
}
