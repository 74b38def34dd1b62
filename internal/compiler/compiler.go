// Package compiler orchestrates the whole pipeline from a surface AST to
// GAS assembly text: typecheck, the typed.ExprT source-to-source passes,
// explicate-control, then the per-function tail (select-instructions
// through patch-instructions) fanned out across Options.Threads workers,
// mirroring the teacher's ir.Optimise parallel fan-out.
package compiler

import (
	"fmt"
	"os"
	"sync"

	"github.com/davecgh/go-spew/spew"

	"rfunc/internal/ast"
	"rfunc/internal/cfun"
	"rfunc/internal/passes"
	"rfunc/internal/typecheck"
	"rfunc/internal/util"
	"rfunc/internal/x86"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// funcResult is one function's pipeline tail output, carried back to the
// main goroutine through a channel instead of a shared map, so workers never
// touch each other's memory.
type funcResult struct {
	name string
	ap   *x86.AllocatedProgram
}

// ---------------------
// ----- functions -----
// ---------------------

// Compile runs every pass in order and returns the final assembly text for
// prog, or the first error encountered. Verbose dumps every pass's output to
// stderr, one section per pass name, when opt.Verbose is set.
func Compile(opt util.Options, prog *ast.Program) (string, error) {
	dump := func(pass string, v interface{}) {
		if !opt.Verbose {
			return
		}
		fmt.Fprintf(os.Stderr, "===== %s =====\n", pass)
		spew.Fdump(os.Stderr, v)
	}

	typed1, err := typecheck.Check(prog)
	if err != nil {
		return "", err
	}
	dump("typecheck", typed1)

	var cfunProg *cfun.Program
	err = guard("explicate-control", func() error {
		shrunk := passes.Shrink(typed1)
		dump("shrink", shrunk)

		unique := passes.Uniquify(shrunk)
		dump("uniquify", unique)

		revealed := passes.RevealFunctions(unique)
		dump("reveal-functions", revealed)

		limited := passes.LimitFunctions(revealed)
		dump("limit-functions", limited)

		exposed := passes.ExposeAllocation(limited)
		dump("expose-allocation", exposed)

		atomic := passes.RemoveComplexOperands(exposed)
		dump("remove-complex-operands", atomic)

		cfunProg = cfun.ExplicateControl(atomic)
		dump("explicate-control", cfunProg)
		return nil
	})
	if err != nil {
		return "", err
	}

	allocated, err := compileFunctionsParallel(opt, cfunProg, dump)
	if err != nil {
		return "", err
	}

	out, err := x86.PrintX86(allocated)
	if err != nil {
		return "", err
	}
	dump("print-x86", out)

	return out, nil
}

// compileFunctionsParallel runs select-instructions through
// patch-instructions for every Cfun def, splitting the def list into
// opt.Threads chunks exactly as the teacher's ir.Optimise splits its
// function list across worker goroutines.
func compileFunctionsParallel(opt util.Options, p *cfun.Program, dump func(string, interface{})) (map[string]*x86.AllocatedProgram, error) {
	t := opt.Threads
	if t < 1 {
		t = util.DefaultThreads
	}
	if t > len(p.Defs) {
		t = len(p.Defs)
	}
	if t < 1 {
		return map[string]*x86.AllocatedProgram{}, nil
	}

	n := len(p.Defs) / t
	res := len(p.Defs) % t

	results := make(chan funcResult, len(p.Defs))
	errs := util.NewPerror(t)
	wg := sync.WaitGroup{}

	start := 0
	end := n
	for i1 := 0; i1 < t; i1++ {
		if i1 < res {
			end++
		}
		wg.Add(1)
		go func(defs []cfun.Def) {
			defer wg.Done()
			for _, d1 := range defs {
				ap, err := compileOneFunction(d1, dump)
				if err != nil {
					errs.Append(err)
					continue
				}
				results <- funcResult{name: d1.Name, ap: ap}
			}
		}(p.Defs[start:end])
		start = end
		end += n
	}

	wg.Wait()
	close(results)
	errs.Stop()

	if errs.Len() > 0 {
		return nil, errs.ErrorOrNil()
	}

	out := make(map[string]*x86.AllocatedProgram, len(p.Defs))
	for r1 := range results {
		out[r1.name] = r1.ap
	}
	return out, nil
}

// compileOneFunction runs one def through select-instructions,
// uncover-live, build-interference, allocate-registers and
// patch-instructions. Each stage's exported entry point accepts a
// multi-function map, so a single def is wrapped in a one-entry map and
// unwrapped again on the way out.
func compileOneFunction(d cfun.Def, dump func(string, interface{})) (*x86.AllocatedProgram, error) {
	var ap *x86.AllocatedProgram
	err := guard("select-instructions/uncover-live/build-interference/allocate-registers/patch-instructions", func() error {
		selected := x86.SelectInstructions(&cfun.Program{Defs: []cfun.Def{d}})
		dump("select-instructions:"+d.Name, selected)

		_, liveAfter := x86.UncoverLive(selected)
		dump("uncover-live:"+d.Name, liveAfter)

		graphs := x86.BuildInterference(selected, liveAfter)
		dump("build-interference:"+d.Name, graphs)

		allocated := x86.AllocateRegisters(selected, graphs)
		dump("allocate-registers:"+d.Name, allocated)

		patched := x86.PatchInstructions(allocated)
		dump("patch-instructions:"+d.Name, patched)

		ap = patched[d.Name]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ap, nil
}
