package compiler

import (
	"fmt"
	"strconv"
)

// Target names the conventions of the machine the compiler emits for.
type Target struct {
	// Counter is the program-counter variable. Writing it jumps.
	Counter string
	// ReturnSlot receives the return address before a call jumps away.
	ReturnSlot string
	// ArgPrefix names argument slots: argument i of every call lands in
	// ArgPrefix followed by i, whatever the nesting depth.
	ArgPrefix string
	// ReturnOffset is added to the counter to form the return address.
	ReturnOffset int
}

// DefaultTarget returns the conventions of a stock logic processor.
func DefaultTarget() Target {
	return Target{
		Counter:      "@counter",
		ReturnSlot:   "ret",
		ArgPrefix:    "s",
		ReturnOffset: 2,
	}
}

// ArgSlot returns the slot argument i of a call is written to.
func (t Target) ArgSlot(i int) string {
	return t.ArgPrefix + strconv.Itoa(i)
}

// Lower flattens e into instructions that leave its value in dest, using
// the default target.
func Lower(e Expr, dest VarStorage, funcs *FunctionTable) ([]Instr, error) {
	return DefaultTarget().Lower(e, dest, funcs)
}

// Lower flattens e into instructions that leave its value in dest.
//
// Leaf operands are forwarded as text and never moved into a slot first.
// The right operand of a Binary is computed into dest.Next(), so nothing
// emitted for it can overwrite the left value already held in dest.
//
// Calls have no return stack: the return address goes to ReturnSlot and the
// jump overwrites the counter. Recursive or reentrant calls therefore clobber
// the caller's return address and are not supported.
func (t Target) Lower(e Expr, dest VarStorage, funcs *FunctionTable) ([]Instr, error) {
	lw := &lowerer{target: t, funcs: funcs}
	if err := lw.expr(e, dest); err != nil {
		return nil, err
	}
	return lw.out, nil
}

type lowerer struct {
	target Target
	funcs  *FunctionTable
	out    []Instr
}

func (lw *lowerer) emit(in Instr) {
	lw.out = append(lw.out, in)
}

func (lw *lowerer) expr(e Expr, dest VarStorage) error {
	switch n := e.(type) {
	case *Value:
		lw.emit(&Set{Dest: dest.String(), Src: n.Text()})

	case *Binary:
		left, err := lw.operand(n.Left, dest)
		if err != nil {
			return err
		}
		right, err := lw.operand(n.Right, dest.Next())
		if err != nil {
			return err
		}
		lw.emit(&Bop{Op: n.Op, Dest: dest.String(), Left: left, Right: right})

	case *Unary:
		// A non-leaf operand goes to dest.Next(), not dest, so the Uop
		// reads the slot its operand was written to.
		operand, err := lw.operand(n.Operand, dest.Next())
		if err != nil {
			return err
		}
		lw.emit(&Uop{Op: n.Op, Dest: dest.String(), Operand: operand})

	case *Call:
		if _, ok := lw.funcs.Lookup(n.Name); !ok {
			return &UnknownFunctionError{Name: n.Name}
		}
		for i, arg := range n.Args {
			if err := lw.expr(arg, Named(lw.target.ArgSlot(i))); err != nil {
				return err
			}
		}
		lw.emit(&Bop{
			Op:    Add,
			Dest:  lw.target.ReturnSlot,
			Left:  lw.target.Counter,
			Right: strconv.Itoa(lw.target.ReturnOffset),
		})
		lw.emit(&CallJump{Name: n.Name})

	case *InlineRaw:
		lw.emit(&InlineLogic{Text: n.Text})

	case nil:
		return &InternalError{Msg: "nil expression reached lowering"}

	default:
		return &InternalError{Msg: fmt.Sprintf("unexpected node %T reached lowering", e)}
	}
	return nil
}

// operand returns the text naming e's value. A leaf is used as written;
// anything else is computed into slot first.
func (lw *lowerer) operand(e Expr, slot VarStorage) (string, error) {
	if v, ok := e.(*Value); ok {
		return v.Text(), nil
	}
	if err := lw.expr(e, slot); err != nil {
		return "", err
	}
	return slot.String(), nil
}
