package compiler

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func sqTable(t *testing.T) *FunctionTable {
	t.Helper()
	funcs := NewFunctionTable()
	if err := funcs.Define("sq", 10); err != nil {
		t.Fatal(err)
	}
	if err := funcs.Define("f", 20); err != nil {
		t.Fatal(err)
	}
	return funcs
}

func lowerSource(t *testing.T, src string, dest VarStorage, funcs *FunctionTable) ([]Instr, error) {
	t.Helper()
	expr, err := parseSource(t, src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return Lower(expr, dest, funcs)
}

func irStrings(ir []Instr) []string {
	out := make([]string, len(ir))
	for i, in := range ir {
		out[i] = in.String()
	}
	return out
}

func TestLower(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Value",
			input:    "5",
			expected: []string{"Set(x 5)"},
		},
		{
			name:     "Leaf Operands Forwarded",
			input:    "y + 2",
			expected: []string{"Bop(add x y 2)"},
		},
		{
			name:  "Both Sides Computed",
			input: "(a + b) * (c - d)",
			expected: []string{
				"Bop(add x a b)",
				"Bop(sub r0 c d)",
				"Bop(mul x x r0)",
			},
		},
		{
			name:  "Right Nesting Uses Deeper Registers",
			input: "a * (b + c * d)",
			expected: []string{
				"Bop(mul r1 c d)",
				"Bop(add r0 b r1)",
				"Bop(mul x a r0)",
			},
		},
		{
			name:  "Left Nesting Reuses Destination",
			input: "a * b + c",
			expected: []string{
				"Bop(mul x a b)",
				"Bop(add x x c)",
			},
		},
		{
			name:     "Unary Leaf",
			input:    "abs y",
			expected: []string{"Uop(abs x y)"},
		},
		{
			name:  "Unary Computed Operand",
			input: "sqrt (y + 1)",
			expected: []string{
				"Bop(add r0 y 1)",
				"Uop(sqrt x r0)",
			},
		},
		{
			name:  "Call Arguments In Order",
			input: "sq(2, y + 1)",
			expected: []string{
				"Set(s0 2)",
				"Bop(add s1 y 1)",
				"Bop(add ret @counter 2)",
				"CallJump(sq)",
			},
		},
		{
			name:  "Call Without Arguments",
			input: "f()",
			expected: []string{
				"Bop(add ret @counter 2)",
				"CallJump(f)",
			},
		},
		{
			name:     "Inline",
			input:    "$sensor x block1 @copper$",
			expected: []string{`InlineLogic("sensor x block1 @copper")`},
		},
		{
			name:     "Decimal Literal Text",
			input:    "y * 0.5",
			expected: []string{"Bop(mul x y 0.5)"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ir, err := lowerSource(t, tc.input, Named("x"), sqTable(t))
			if err != nil {
				t.Fatalf("Lower() error = %v", err)
			}
			if got := irStrings(ir); !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Lower(%q)\n got %q\nwant %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestLowerIsIdempotent(t *testing.T) {
	expr, err := parseSource(t, "a * (b + sq(c, 2)) - abs (d ^^ 2)")
	if err != nil {
		t.Fatal(err)
	}
	funcs := sqTable(t)
	first, err := Lower(expr, Named("x"), funcs)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Lower(expr, Named("x"), funcs)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("lowering twice differs:\n%v\n%v", irStrings(first), irStrings(second))
	}
}

// Nothing emitted for the right operand of a Binary may write the
// Binary's own destination.
func TestLowerRightOperandNeverWritesDestination(t *testing.T) {
	inputs := []string{
		"(a + b) * (c - d)",
		"a - (b * (c + (d / e)))",
		"(a + b) * ((c + d) * (e + f))",
		"x + abs (y * 2)",
	}
	for _, src := range inputs {
		expr, err := parseSource(t, src)
		if err != nil {
			t.Fatal(err)
		}
		checkDisjoint(t, src, expr, Named("x"))
	}
}

func checkDisjoint(t *testing.T, src string, e Expr, dest VarStorage) {
	t.Helper()
	b, ok := e.(*Binary)
	if !ok {
		return
	}
	if _, leaf := b.Right.(*Value); !leaf {
		ir, err := Lower(b.Right, dest.Next(), nil)
		if err != nil {
			t.Fatal(err)
		}
		for _, in := range ir {
			if destOf(in) == dest.String() {
				t.Errorf("%s: right operand of %s writes %s via %s", src, b, dest, in)
			}
		}
	}
	checkDisjoint(t, src, b.Left, dest)
	checkDisjoint(t, src, b.Right, dest.Next())
}

func destOf(in Instr) string {
	switch i := in.(type) {
	case *Bop:
		return i.Dest
	case *Uop:
		return i.Dest
	case *Set:
		return i.Dest
	}
	return ""
}

func TestLowerNeverSetsLeafOperands(t *testing.T) {
	ir, err := lowerSource(t, "a + 1 * b - abs c", Named("x"), nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, in := range ir {
		if _, ok := in.(*Set); ok {
			t.Errorf("unexpected Set for a leaf operand: %s", in)
		}
	}
}

func TestLowerCustomTarget(t *testing.T) {
	target := Target{Counter: "@pc", ReturnSlot: "back", ArgPrefix: "arg", ReturnOffset: 1}
	expr, err := parseSource(t, "sq(a, b)")
	if err != nil {
		t.Fatal(err)
	}
	ir, err := target.Lower(expr, Named("x"), sqTable(t))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Set(arg0 a)", "Set(arg1 b)", "Bop(add back @pc 1)", "CallJump(sq)"}
	if got := irStrings(ir); !reflect.DeepEqual(got, want) {
		t.Errorf("got %q; want %q", got, want)
	}
}

func TestLowerUnknownFunction(t *testing.T) {
	_, err := lowerSource(t, "1 + nope(2)", Named("x"), sqTable(t))
	var uerr *UnknownFunctionError
	if !errors.As(err, &uerr) {
		t.Fatalf("error = %v; want *UnknownFunctionError", err)
	}
	if uerr.Name != "nope" {
		t.Errorf("Name = %q; want nope", uerr.Name)
	}
}

type bogusExpr struct{}

func (bogusExpr) exprNode()      {}
func (bogusExpr) String() string { return "bogus" }

func TestLowerInternalErrors(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
	}{
		{"Nil", nil},
		{"Unknown Node", bogusExpr{}},
		{"Nil Operand", &Binary{Left: Ident("a"), Op: Add, Right: &Unary{Op: Abs}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Lower(tc.expr, Named("x"), nil)
			var ierr *InternalError
			if !errors.As(err, &ierr) {
				t.Fatalf("error = %v; want *InternalError", err)
			}
			if !strings.Contains(err.Error(), "internal compiler error") {
				t.Errorf("message %q lacks prefix", err)
			}
		})
	}
}

func TestVarStorage(t *testing.T) {
	x := Named("x")
	if x.IsRegister() || x.String() != "x" {
		t.Errorf("Named(x) = %+v", x)
	}
	r0 := x.Next()
	if !r0.IsRegister() || r0.String() != "r0" {
		t.Errorf("Named(x).Next() = %s; want r0", r0)
	}
	if got := r0.Next().Next().String(); got != "r2" {
		t.Errorf("r0.Next().Next() = %s; want r2", got)
	}
	if Register(4) != Register(3).Next() {
		t.Error("Register(3).Next() != Register(4)")
	}
}
