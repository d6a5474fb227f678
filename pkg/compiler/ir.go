package compiler

import "fmt"

// VarStorage names where a computed value is written: a persistent named
// slot or a numbered transient register. It is a value type; lowering passes
// it down explicitly and never mutates one in place.
type VarStorage struct {
	Name     string // named slot; empty for a register
	Register int
}

// Named returns the storage for the persistent slot name.
func Named(name string) VarStorage { return VarStorage{Name: name} }

// Register returns the storage for transient register r.
func Register(r int) VarStorage { return VarStorage{Register: r} }

// IsRegister reports whether s is a transient register.
func (s VarStorage) IsRegister() bool { return s.Name == "" }

// Next returns the slot used for a nested sub-computation: register 0 below
// a named slot, register r+1 below register r.
func (s VarStorage) Next() VarStorage {
	if !s.IsRegister() {
		return Register(0)
	}
	return Register(s.Register + 1)
}

func (s VarStorage) String() string {
	if !s.IsRegister() {
		return s.Name
	}
	return fmt.Sprintf("r%d", s.Register)
}

// Instr is one flat IR instruction. Operands are already rendered text:
// a literal, a variable name or a register name.
type Instr interface {
	instrNode()
	String() string
}

// Bop computes Dest = Left Op Right.
type Bop struct {
	Op          BinOp
	Dest        string
	Left, Right string
}

// Uop computes Dest = Op Operand.
type Uop struct {
	Op      UnOp
	Dest    string
	Operand string
}

// Set copies Src into Dest.
type Set struct {
	Dest, Src string
}

// CallJump transfers control to the entry offset of function Name.
type CallJump struct {
	Name string
}

// InlineLogic is target text emitted verbatim.
type InlineLogic struct {
	Text string
}

func (*Bop) instrNode()         {}
func (*Uop) instrNode()         {}
func (*Set) instrNode()         {}
func (*CallJump) instrNode()    {}
func (*InlineLogic) instrNode() {}

func (i *Bop) String() string {
	return fmt.Sprintf("Bop(%s %s %s %s)", i.Op, i.Dest, i.Left, i.Right)
}
func (i *Uop) String() string         { return fmt.Sprintf("Uop(%s %s %s)", i.Op, i.Dest, i.Operand) }
func (i *Set) String() string         { return fmt.Sprintf("Set(%s %s)", i.Dest, i.Src) }
func (i *CallJump) String() string    { return fmt.Sprintf("CallJump(%s)", i.Name) }
func (i *InlineLogic) String() string { return fmt.Sprintf("InlineLogic(%q)", i.Text) }
