package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"mindc/pkg/compiler"
	"mindc/pkg/config"
	"mindc/pkg/proc"
	"mindc/pkg/utils"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: mlogrun <file.mind|file.msm> [--show-logic] [--trace]")
		os.Exit(2)
	}
	filename := os.Args[1]
	showLogic, trace := false, false
	for _, arg := range os.Args[2:] {
		switch arg {
		case "--show-logic":
			showLogic = true
		case "--trace":
			trace = true
		}
	}

	fullPath, baseDir, err := utils.GetPathInfo(filename)
	if err != nil {
		log.Fatalf("Bad path: %v", err)
	}
	sourceBytes, err := os.ReadFile(fullPath)
	if err != nil {
		log.Fatalf("Failed to read source file: %v", err)
	}

	cfg, _, err := config.Discover(baseDir)
	if err != nil {
		log.Fatalf("Config failed: %v", err)
	}

	logic := string(sourceBytes)
	if filepath.Ext(fullPath) != utils.OutputExt {
		fmt.Println("Compiling source file:", fullPath)

		opts, err := cfg.Options()
		if err != nil {
			log.Fatalf("Config failed: %v", err)
		}
		opts.Logger = log.New(os.Stderr, "mindc: ", 0)

		res, err := compiler.Compile(logic, opts)
		if err != nil {
			log.Fatalf("Compilation failed: %v", err)
		}
		logic = res.Output
	}

	if showLogic {
		fmt.Print("Logic:\n", logic, "\n")
	}

	vm, err := proc.Load(logic)
	if err != nil {
		log.Fatalf("Load failed: %v", err)
	}
	vm.CounterName = cfg.Target().Counter

	for !vm.Halted {
		if vm.Steps >= proc.DefaultMaxSteps {
			log.Fatalf("Step limit reached at counter %d", vm.Counter)
		}
		if in, ok := vm.Current(); ok && trace {
			fmt.Printf("%04d  %3d  %s\n", vm.Steps, vm.Counter, in.Text)
		}
		if err := vm.Step(); err != nil {
			log.Fatalf("Run failed: %v", err)
		}
	}

	fmt.Printf("run complete: %d instructions\n", vm.Steps)
	for _, name := range vm.Names() {
		fmt.Printf("  %s = %s\n", name, strconv.FormatFloat(vm.Get(name), 'g', -1, 64))
	}
}
