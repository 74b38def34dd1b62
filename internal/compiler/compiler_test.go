package compiler

import (
	"strings"
	"testing"

	"rfunc/internal/ast"
	"rfunc/internal/types"
	"rfunc/internal/util"
)

func TestCompileLiteralProgram(t *testing.T) {
	util.ResetGensym()
	prog := &ast.Program{Body: ast.IntLit{Val: 42}}
	out, err := Compile(util.Options{Threads: 1}, prog)
	if err != nil {
		t.Fatalf("Compile returned error: %s", err)
	}
	if !strings.Contains(out, ".globl main") {
		t.Fatalf("output missing main label:\n%s", out)
	}
	if !strings.Contains(out, "print_int") {
		t.Fatalf("output missing print_int call:\n%s", out)
	}
}

func TestCompileRejectsIllTypedProgram(t *testing.T) {
	util.ResetGensym()
	prog := &ast.Program{
		Body: ast.Prim{Op: "+", Args: []ast.Expr{ast.IntLit{Val: 1}, ast.BoolLit{Val: true}}},
	}
	_, err := Compile(util.Options{Threads: 1}, prog)
	if err == nil {
		t.Fatalf("expected a type error for (+ 1 #t)")
	}
}

func TestCompileWithFunctionDefAndMultipleThreads(t *testing.T) {
	util.ResetGensym()
	prog := &ast.Program{
		Defs: []ast.Def{
			{
				Name:       "add",
				Args:       []ast.Param{{Name: "x", Type: types.IntT()}, {Name: "y", Type: types.IntT()}},
				OutputType: types.IntT(),
				Body:       ast.Prim{Op: "+", Args: []ast.Expr{ast.Var{Name: "x"}, ast.Var{Name: "y"}}},
			},
		},
		Body: ast.Funcall{Fun: ast.Var{Name: "add"}, Args: []ast.Expr{ast.IntLit{Val: 1}, ast.IntLit{Val: 2}}},
	}
	out, err := Compile(util.Options{Threads: 4}, prog)
	if err != nil {
		t.Fatalf("Compile returned error: %s", err)
	}
	if !strings.Contains(out, ".globl add") {
		t.Fatalf("output missing add's label:\n%s", out)
	}
	if !strings.Contains(out, ".globl main") {
		t.Fatalf("output missing main's label:\n%s", out)
	}
}
