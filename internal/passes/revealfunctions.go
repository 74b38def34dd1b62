package passes

import (
	"fmt"

	"rfunc/internal/typed"
	"rfunc/internal/types"
)

// RevealFunctions rewrites every Var that names a top-level function into a
// FunRef, exposing function values as first-class code pointers for the
// remaining passes (limit-functions, expose-allocation, explicate-control).
func RevealFunctions(p *typed.Program) *typed.Program {
	topLevel := map[string]bool{}
	for _, d1 := range p.Defs {
		topLevel[d1.Name] = true
	}

	newDefs := make([]typed.Def, len(p.Defs))
	for i1, d1 := range p.Defs {
		newDefs[i1] = typed.Def{
			Name:       d1.Name,
			Args:       d1.Args,
			OutputType: d1.OutputType,
			Body:       revealFunctionsExp(d1.Body, topLevel),
		}
	}
	return &typed.Program{Defs: newDefs, Body: revealFunctionsExp(p.Body, topLevel)}
}

func revealFunctionsExp(e typed.ExprT, topLevel map[string]bool) typed.ExprT {
	switch n := e.(type) {
	case typed.IntLit, typed.BoolLit, typed.VoidLit, typed.GlobalVal:
		return n

	case typed.Var:
		if topLevel[n.Name] && n.Typ.Kind == types.Fun {
			return typed.FunRef{Name: n.Name, Typ: n.Typ}
		}
		return n

	case typed.Let:
		return typed.Let{Var: n.Var, Bound: revealFunctionsExp(n.Bound, topLevel), Body: revealFunctionsExp(n.Body, topLevel), Typ: n.Typ}

	case typed.Prim:
		newArgs := make([]typed.ExprT, len(n.Args))
		for i1, a1 := range n.Args {
			newArgs[i1] = revealFunctionsExp(a1, topLevel)
		}
		return typed.Prim{Op: n.Op, Args: newArgs, Typ: n.Typ}

	case typed.If:
		return typed.If{
			Test: revealFunctionsExp(n.Test, topLevel),
			Then: revealFunctionsExp(n.Then, topLevel),
			Else: revealFunctionsExp(n.Else, topLevel),
			Typ:  n.Typ,
		}

	case typed.Funcall:
		newArgs := make([]typed.ExprT, len(n.Args))
		for i1, a1 := range n.Args {
			newArgs[i1] = revealFunctionsExp(a1, topLevel)
		}
		return typed.Funcall{Fun: revealFunctionsExp(n.Fun, topLevel), Args: newArgs, Typ: n.Typ}

	default:
		panic(fmt.Sprintf("reveal-functions: unexpected node %T", e))
	}
}
