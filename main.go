package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc"
	udiff "github.com/aymanbagabas/go-udiff"
	"github.com/charmbracelet/lipgloss"

	"mindc/pkg/compiler"
	"mindc/pkg/config"
	"mindc/pkg/proc"
	"mindc/pkg/utils"
)

var usage = heredoc.Doc(`
	Usage: mindc [flags] <source> [output]

	Compiles a mindc script into processor logic text. The output defaults to
	the source path with a .msm extension. Settings come from -config, or from
	mindc.toml / mindc.yaml next to the source.

	Flags:
`)

// funcFlags collects repeated -func name=offset flags.
type funcFlags map[string]int

func (f funcFlags) String() string {
	parts := make([]string, 0, len(f))
	for name, off := range f {
		parts = append(parts, name+"="+strconv.Itoa(off))
	}
	return strings.Join(parts, ",")
}

func (f funcFlags) Set(value string) error {
	name, offset, ok := strings.Cut(value, "=")
	if !ok || name == "" {
		return fmt.Errorf("want name=offset, got %q", value)
	}
	off, err := strconv.Atoi(offset)
	if err != nil || off < 0 {
		return fmt.Errorf("bad entry offset in %q", value)
	}
	f[name] = off
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	diag := newDiagnostics(stderr)

	flags := flag.NewFlagSet("mindc", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}

	funcs := funcFlags{}
	inPath := flags.String("in", "", "source file path")
	outPath := flags.String("out", "", "output file path (default: source with .msm extension)")
	cfgPath := flags.String("config", "", "config file (.toml, .yaml or .yml)")
	flags.Var(funcs, "func", "function entry as name=offset (repeatable)")
	libPath := flags.String("lib", "", "logic library to link; each label becomes a function")
	keepGoing := flags.Bool("keep-going", false, "compile the remaining statements after an error")
	check := flags.Bool("check", false, "compare with the existing output instead of writing it")
	runProgram := flags.Bool("run", false, "execute the result on the emulator and print variables")
	steps := flags.Int("steps", proc.DefaultMaxSteps, "instruction limit for -run")
	verbose := flags.Bool("v", false, "log skipped statements and linking")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	rest := flags.Args()
	source := *inPath
	if source == "" && len(rest) > 0 {
		source, rest = rest[0], rest[1:]
	}
	output := *outPath
	if output == "" && len(rest) > 0 {
		output, rest = rest[0], rest[1:]
	}
	if source == "" || len(rest) > 0 {
		flags.Usage()
		return 2
	}
	if output == "" {
		output = utils.DefaultOutputPath(source)
	}

	src, err := os.ReadFile(source)
	if err != nil {
		diag.fail(fmt.Errorf("failed to read source file %q: %w", source, err))
		return 1
	}

	opts, err := buildOptions(source, *cfgPath, *libPath, funcs)
	if err != nil {
		diag.fail(err)
		return 1
	}
	opts.KeepGoing = opts.KeepGoing || *keepGoing
	if *verbose {
		opts.Logger = log.New(stderr, "mindc: ", 0)
	}

	res, err := compiler.Compile(string(src), opts)
	status := 0
	if err != nil {
		diag.fail(err)
		if res == nil {
			return 1
		}
		status = 1
	}
	for _, st := range res.Skipped {
		diag.warn(fmt.Sprintf("line %d: skipped %q", st.Line, st.Text))
	}

	if *check {
		existing, err := os.ReadFile(output)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			diag.fail(fmt.Errorf("failed to read output file %q: %w", output, err))
			return 1
		}
		if string(existing) != res.Output {
			fmt.Fprint(stdout, udiff.Unified(output, "compiled", string(existing), res.Output))
			return 1
		}
		fmt.Fprintf(stdout, "%s is up to date\n", output)
	} else {
		if err := os.WriteFile(output, []byte(res.Output), 0o644); err != nil {
			diag.fail(fmt.Errorf("failed to write output file %q: %w", output, err))
			return 1
		}
		fmt.Fprintf(stdout, "compiled %d statements (%d skipped) -> %s\n", len(res.Compiled), len(res.Skipped), output)
	}

	if *runProgram {
		if err := runOutput(stdout, res.Output, opts.Target.Counter, *steps); err != nil {
			diag.fail(fmt.Errorf("run failed: %w", err))
			return 1
		}
	}
	return status
}

// buildOptions layers config file, -func flags and -lib, in that order.
func buildOptions(source, cfgPath, libPath string, funcs funcFlags) (compiler.Options, error) {
	var (
		cfg config.Config
		err error
	)
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
	} else {
		var dir string
		if _, dir, err = utils.GetPathInfo(source); err == nil {
			cfg, _, err = config.Discover(dir)
		}
	}
	if err != nil {
		return compiler.Options{}, err
	}

	for name, off := range funcs {
		if cfg.Functions == nil {
			cfg.Functions = map[string]int{}
		}
		cfg.Functions[name] = off
	}
	opts, err := cfg.Options()
	if err != nil {
		return compiler.Options{}, err
	}

	if libPath != "" {
		lib, err := os.ReadFile(libPath)
		if err != nil {
			return compiler.Options{}, fmt.Errorf("read library %q: %w", libPath, err)
		}
		opts.Library = string(lib)
	}
	return opts, nil
}

func runOutput(stdout io.Writer, text, counter string, steps int) error {
	p, err := proc.Load(text)
	if err != nil {
		return err
	}
	if counter != "" {
		p.CounterName = counter
	}
	p.MaxSteps = steps
	if err := p.Run(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "run complete: %d instructions\n", p.Steps)
	for _, name := range p.Names() {
		fmt.Fprintf(stdout, "  %s = %s\n", name, strconv.FormatFloat(p.Get(name), 'g', -1, 64))
	}
	return nil
}

// diagnostics writes styled error and warning lines. Colour is only used
// when w is a terminal.
type diagnostics struct {
	w        io.Writer
	errLabel lipgloss.Style
	warnText lipgloss.Style
}

func newDiagnostics(w io.Writer) *diagnostics {
	r := lipgloss.NewRenderer(w)
	return &diagnostics{
		w:        w,
		errLabel: r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		warnText: r.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// fail prints err, one line per joined error.
func (d *diagnostics) fail(err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Fprintf(d.w, "%s %s\n", d.errLabel.Render("error:"), line)
	}
}

func (d *diagnostics) warn(msg string) {
	fmt.Fprintln(d.w, d.warnText.Render("warning: "+msg))
}
