package compiler_test

import (
	"math"
	"testing"

	"github.com/MakeNowJust/heredoc"

	"mindc/pkg/compiler"
	"mindc/pkg/proc"
)

// compileAndRun compiles src and executes the output on the emulator.
func compileAndRun(t *testing.T, src string, opts compiler.Options) *proc.Processor {
	t.Helper()
	res, err := compiler.Compile(src, opts)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	p, err := proc.Load(res.Output)
	if err != nil {
		t.Fatalf("Load failed: %v\n%s", err, res.Output)
	}
	if err := p.Run(); err != nil {
		t.Fatalf("Run failed: %v\n%s", err, res.Output)
	}
	return p
}

func expectVar(t *testing.T, p *proc.Processor, name string, want float64) {
	t.Helper()
	if got := p.Get(name); math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v; want %v", name, got, want)
	}
}

func TestIntegration_Arithmetic(t *testing.T) {
	src := heredoc.Doc(`
		a = 6/2*(1+4);
		b = 20-10-3;
		c = 2 ^^ 3 ^^ 2;
		d = (a + b) * (b - 2) - (a - 1) * 2;
		e = 7 // 2 + 7 % 4;
		f = 1 << 4 | 3;
		g = a > b &/ b >= 7;
		h = 3 max 4 + 1;
		i = abs (2 - 9) + floor 2.7;
		j = ~0;
		k = sqrt 16 * -2;
	`)
	p := compileAndRun(t, src, compiler.Options{})

	expectVar(t, p, "a", 15)
	expectVar(t, p, "b", 7)
	expectVar(t, p, "c", 64)
	expectVar(t, p, "d", 22*5-14*2)
	expectVar(t, p, "e", 3+3)
	expectVar(t, p, "f", 19)
	expectVar(t, p, "g", 1)
	expectVar(t, p, "h", 5)
	expectVar(t, p, "i", 9)
	expectVar(t, p, "j", -1)
	expectVar(t, p, "k", -8)
}

// Deep right nesting exercises several registers without clobbering.
func TestIntegration_RegisterChain(t *testing.T) {
	src := "x = 1 - (2 - (3 - (4 - (5 - 6))));"
	p := compileAndRun(t, src, compiler.Options{})
	expectVar(t, p, "x", 1-(2-(3-(4-(5-6)))))
}

func TestIntegration_Statements(t *testing.T) {
	src := heredoc.Doc(`
		x = 2;
		x = x * x + 1;
		$op add y x 100$;
		z = y - x
	`)
	p := compileAndRun(t, src, compiler.Options{})
	expectVar(t, p, "x", 5)
	expectVar(t, p, "y", 105)
	expectVar(t, p, "z", 100)
}

// The callee squares s0 in place and returns through ret.
func TestIntegration_LibraryCall(t *testing.T) {
	lib := heredoc.Doc(`
		sq:
		op mul s0 s0 s0
		set @counter ret
		hyp:
		op len s0 s0 s1
		set @counter ret
	`)
	src := heredoc.Doc(`
		a = 3;
		r = sq(a + 4);
		$op add b s0 1$;
		r = hyp(3, 4);
		$set c s0$;
	`)
	p := compileAndRun(t, src, compiler.Options{Library: lib})
	expectVar(t, p, "b", 50)
	expectVar(t, p, "c", 5)
}
