// Package proc executes logic text one instruction at a time, the way a
// logic processor does: a single program counter, named float variables and
// no stack. It is used to check that compiled code and call linkage behave.
//
// Reading the counter variable yields the address of the instruction being
// executed, not the address after it. A stock processor increments first and
// reads one higher; the compiler's return offset of 2 assumes this model, so
// code built for stock hardware needs a return offset of 3.
package proc

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"

	"mindc/pkg/asm"
)

const (
	DefaultCounter  = "@counter"
	DefaultMaxSteps = 100000

	// equalEpsilon is the tolerance of the equal and notEqual comparisons.
	equalEpsilon = 0.000001
)

// ErrStepLimit is returned by Run when MaxSteps instructions have executed
// without the program halting.
var ErrStepLimit = errors.New("step limit reached")

type Processor struct {
	Vars map[string]float64

	Counter int
	Halted  bool
	Steps   int

	// MaxSteps bounds Run. Zero means DefaultMaxSteps.
	MaxSteps int

	// CounterName is the variable that reads and writes Counter.
	CounterName string

	program []asm.Instruction
	rng     *rand.Rand
}

func NewProcessor(prog *asm.Program) *Processor {
	return &Processor{
		Vars:        make(map[string]float64),
		CounterName: DefaultCounter,
		program:     prog.Instructions,
		rng:         rand.New(rand.NewSource(1)),
	}
}

// Load assembles code and returns a processor ready to run it.
func Load(code string) (*Processor, error) {
	prog, err := asm.Assemble(code)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	return NewProcessor(prog), nil
}

// Seed resets the generator behind op rand.
func (p *Processor) Seed(seed int64) {
	p.rng = rand.New(rand.NewSource(seed))
}

// Get returns the value of a variable; unset variables read as 0.
func (p *Processor) Get(name string) float64 {
	return p.Vars[name]
}

// Set assigns a variable before or between runs.
func (p *Processor) Set(name string, v float64) {
	p.Vars[name] = v
}

// Names returns the variables written so far, sorted.
func (p *Processor) Names() []string {
	names := make([]string, 0, len(p.Vars))
	for k := range p.Vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Current returns the instruction Step would execute next.
func (p *Processor) Current() (asm.Instruction, bool) {
	if p.Halted || p.Counter < 0 || p.Counter >= len(p.program) {
		return asm.Instruction{}, false
	}
	return p.program[p.Counter], true
}

// Step executes the instruction at Counter. Running off the end of the
// program halts.
func (p *Processor) Step() error {
	if p.Halted {
		return nil
	}
	if p.Counter < 0 || p.Counter >= len(p.program) {
		p.Halted = true
		return nil
	}

	at := p.Counter
	in := &p.program[at]
	next := at + 1
	p.Steps++

	switch in.Kind {
	case asm.KindSet:
		v, err := p.value(in.Args[1], at)
		if err != nil {
			return p.fault(in, err)
		}
		p.write(in.Args[0], v, &next)

	case asm.KindOp:
		a, err := p.value(in.Args[1], at)
		if err != nil {
			return p.fault(in, err)
		}
		var b float64
		if arity, _ := asm.OpArity(in.Code); arity == 2 {
			if b, err = p.value(in.Args[2], at); err != nil {
				return p.fault(in, err)
			}
		}
		r, err := p.apply(in.Code, a, b)
		if err != nil {
			return p.fault(in, err)
		}
		p.write(in.Args[0], r, &next)

	case asm.KindJump:
		taken := true
		if in.Code != "always" {
			a, err := p.value(in.Args[0], at)
			if err != nil {
				return p.fault(in, err)
			}
			b, err := p.value(in.Args[1], at)
			if err != nil {
				return p.fault(in, err)
			}
			r, err := p.apply(in.Code, a, b)
			if err != nil {
				return p.fault(in, err)
			}
			taken = r != 0
		}
		if taken {
			next = in.Target
		}

	case asm.KindEnd:
		p.Halted = true
		return nil

	case asm.KindNoop:

	default:
		return p.fault(in, fmt.Errorf("unsupported instruction %q", in.Code))
	}

	p.Counter = next
	return nil
}

// Run steps until the program halts or the step limit is hit.
func (p *Processor) Run() error {
	limit := p.MaxSteps
	if limit <= 0 {
		limit = DefaultMaxSteps
	}
	for start := p.Steps; !p.Halted; {
		if p.Steps-start >= limit {
			return fmt.Errorf("%w after %d instructions (counter %d)", ErrStepLimit, limit, p.Counter)
		}
		if err := p.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) fault(in *asm.Instruction, err error) error {
	p.Halted = true
	return fmt.Errorf("line %d (%s): %w", in.Line, in.Text, err)
}

// write stores v; a write to the counter variable becomes the next address.
func (p *Processor) write(dest string, v float64, next *int) {
	if dest == p.CounterName {
		*next = int(v)
		return
	}
	p.Vars[dest] = v
}

func (p *Processor) value(operand string, at int) (float64, error) {
	switch operand {
	case p.CounterName:
		return float64(at), nil
	case "true":
		return 1, nil
	case "false", "null", "_":
		return 0, nil
	}
	if c := operand[0]; c == '-' || c == '.' || (c >= '0' && c <= '9') {
		v, err := strconv.ParseFloat(operand, 64)
		if err != nil {
			return 0, fmt.Errorf("bad number %q", operand)
		}
		return v, nil
	}
	return p.Vars[operand], nil
}

func (p *Processor) apply(code string, a, b float64) (float64, error) {
	switch code {
	case "add":
		return a + b, nil
	case "sub":
		return a - b, nil
	case "mul":
		return a * b, nil
	case "div":
		return a / b, nil
	case "idiv":
		return math.Floor(a / b), nil
	case "mod":
		return math.Mod(a, b), nil
	case "pow":
		return math.Pow(a, b), nil

	case "equal":
		return boolVal(math.Abs(a-b) < equalEpsilon), nil
	case "notEqual":
		return boolVal(math.Abs(a-b) >= equalEpsilon), nil
	case "strictEqual":
		return boolVal(a == b), nil
	case "land":
		return boolVal(a != 0 && b != 0), nil
	case "lessThan":
		return boolVal(a < b), nil
	case "lessThanEq":
		return boolVal(a <= b), nil
	case "greaterThan":
		return boolVal(a > b), nil
	case "greaterThanEq":
		return boolVal(a >= b), nil

	case "shl":
		return float64(int64(a) << uint64(int64(b))), nil
	case "shr":
		return float64(int64(a) >> uint64(int64(b))), nil
	case "or":
		return float64(int64(a) | int64(b)), nil
	case "and":
		return float64(int64(a) & int64(b)), nil
	case "xor":
		return float64(int64(a) ^ int64(b)), nil
	case "not":
		return float64(^int64(a)), nil

	case "max":
		return math.Max(a, b), nil
	case "min":
		return math.Min(a, b), nil
	case "angle":
		deg := math.Atan2(b, a) * 180 / math.Pi
		if deg < 0 {
			deg += 360
		}
		return deg, nil
	case "len":
		return math.Hypot(a, b), nil

	case "abs":
		return math.Abs(a), nil
	case "log":
		return math.Log(a), nil
	case "log10":
		return math.Log10(a), nil
	case "floor":
		return math.Floor(a), nil
	case "ceil":
		return math.Ceil(a), nil
	case "sqrt":
		return math.Sqrt(a), nil
	case "rand":
		return p.rng.Float64() * a, nil
	case "sin":
		return math.Sin(a * math.Pi / 180), nil
	case "cos":
		return math.Cos(a * math.Pi / 180), nil
	case "tan":
		return math.Tan(a * math.Pi / 180), nil
	case "asin":
		return math.Asin(a) * 180 / math.Pi, nil
	case "acos":
		return math.Acos(a) * 180 / math.Pi, nil
	case "atan":
		return math.Atan(a) * 180 / math.Pi, nil
	}
	return 0, fmt.Errorf("op %s is not supported", code)
}

func boolVal(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
