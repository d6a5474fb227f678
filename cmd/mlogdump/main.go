package main

import (
	"fmt"
	"os"
	"path/filepath"

	"mindc/pkg/compiler"
	"mindc/pkg/config"
)

const testSource = `x = 10;
y = x * (x - 4) + abs -3;
$print y$;
`

func main() {
	src := testSource
	baseDir := "."
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
		baseDir = filepath.Dir(os.Args[1])
	}

	cfg, handle, err := config.Discover(baseDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	if handle.Path != "" {
		fmt.Printf("Config: %s\n\n", handle.Path)
	}
	opts, err := cfg.Options()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	funcs := compiler.NewFunctionTable()
	if err := funcs.Merge(opts.Functions); err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	if opts.Library != "" {
		text, err := compiler.LinkLibrary(opts.Library, funcs)
		if err != nil {
			fmt.Fprintln(os.Stderr, "link error:", err)
			os.Exit(1)
		}
		fmt.Printf("Library:\n%s\n", text)
	}

	fmt.Printf("Source:\n%s\n", src)

	// Lex
	tokens, err := compiler.Lex(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, "lex error:", err)
		os.Exit(1)
	}

	fmt.Printf("Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Printf("  %3d:%-3d %s\n", tok.Line, tok.Pos, tok)
	}
	fmt.Println()

	// Per statement: tree, IR, logic
	target := opts.Target
	for _, st := range compiler.SplitStatements(tokens, src) {
		fmt.Printf("Statement %d (line %d): %s\n", st.Index, st.Line, st.Text)

		switch {
		case st.IsInline():
			fmt.Printf("  inline: %s\n\n", st.Tokens[0].Text)
			continue
		case !st.IsAssignment():
			fmt.Printf("  skipped\n\n")
			continue
		}

		tree, err := compiler.Parse(st.Tokens[2:])
		if err != nil {
			fmt.Printf("  parse error: %v\n\n", err)
			continue
		}
		fmt.Println("  tree:", tree)

		ir, err := target.Lower(tree, compiler.Named(st.Tokens[0].Text), funcs)
		if err != nil {
			fmt.Printf("  lowering error: %v\n\n", err)
			continue
		}
		fmt.Println("  ir:")
		for _, in := range ir {
			fmt.Println("   ", in)
		}

		text, err := target.Render(ir, funcs)
		if err != nil {
			fmt.Printf("  render error: %v\n\n", err)
			continue
		}
		fmt.Printf("  logic:\n%s\n\n", text)
	}

	fmt.Print(funcs)
}
