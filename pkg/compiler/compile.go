package compiler

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"mindc/pkg/asm"
)

// Options controls a Compile run. The zero value compiles for the default
// target with no functions and stops at the first error.
type Options struct {
	// Target overrides DefaultTarget when its Counter is set.
	Target Target
	// Functions holds entry offsets of callees that already exist at
	// fixed addresses on the processor.
	Functions *FunctionTable
	// Library is logic text with a label per function. It is linked in
	// front of the compiled statements.
	Library string
	// KeepGoing collects statement errors instead of stopping at the
	// first one. A failing statement emits nothing.
	KeepGoing bool
	// Logger receives warnings about skipped statements. Nil discards.
	Logger *log.Logger
}

func (o Options) target() Target {
	if o.Target.Counter == "" {
		return DefaultTarget()
	}
	return o.Target
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return o.Logger
}

// Result is the outcome of Compile.
type Result struct {
	Output    string
	Compiled  []Statement
	Skipped   []Statement
	Functions *FunctionTable
}

// Compile translates a whole script into logic text.
//
// Lex errors abort the run before any statement is compiled. Statement
// errors are wrapped in *StatementError; with KeepGoing they are joined and
// returned together with the partial Result. An *InternalError always aborts.
func Compile(src string, opts Options) (*Result, error) {
	logger := opts.logger()
	target := opts.target()

	funcs := NewFunctionTable()
	if err := funcs.Merge(opts.Functions); err != nil {
		return nil, err
	}

	res := &Result{Functions: funcs}
	var out strings.Builder

	if strings.TrimSpace(opts.Library) != "" {
		text, err := LinkLibrary(opts.Library, funcs)
		if err != nil {
			return nil, err
		}
		out.WriteString(text)
		logger.Printf("linked library: %d functions", funcs.Len())
	}

	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, st := range SplitStatements(tokens, src) {
		if reason := st.skipReason(); reason != "" {
			logger.Printf("skipping statement %d on line %d (%s): %s", st.Index, st.Line, st.Text, reason)
			res.Skipped = append(res.Skipped, st)
			continue
		}

		block, err := target.compileStatement(st, funcs)
		if err != nil {
			serr := &StatementError{Index: st.Index, Text: st.Text, Err: err}
			var ierr *InternalError
			if !opts.KeepGoing || errors.As(err, &ierr) {
				return nil, serr
			}
			logger.Printf("%v", serr)
			errs = append(errs, serr)
			continue
		}

		out.WriteString(block)
		out.WriteString("\n")
		res.Compiled = append(res.Compiled, st)
	}

	res.Output = out.String()
	return res, errors.Join(errs...)
}

func (t Target) compileStatement(st Statement, funcs *FunctionTable) (string, error) {
	if st.IsInline() {
		return st.Tokens[0].Text, nil
	}

	expr, err := Parse(st.Tokens[2:])
	if err != nil {
		return "", err
	}
	ir, err := t.Lower(expr, Named(st.Tokens[0].Text), funcs)
	if err != nil {
		return "", err
	}
	return t.Render(ir, funcs)
}

// LinkLibrary assembles lib, defines a function for each of its labels and
// returns the text to emit. A jump over the library comes first so execution
// starts at the compiled statements, which shifts every label by one.
func LinkLibrary(lib string, funcs *FunctionTable) (string, error) {
	prog, err := asm.Assemble(lib)
	if err != nil {
		return "", fmt.Errorf("library: %w", err)
	}

	for name, idx := range prog.Labels {
		if err := funcs.Define(name, idx+1); err != nil {
			return "", fmt.Errorf("library: %w", err)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "jump %d always\n", len(prog.Instructions)+1)
	for _, line := range strings.Split(lib, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
