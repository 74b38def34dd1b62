package passes

import (
	"fmt"

	"github.com/samber/lo"

	"rfunc/internal/typed"
	"rfunc/internal/types"
	"rfunc/internal/util"
)

// maxDirectArgs is the largest argument count the calling convention passes
// in registers (per spec.md §4.6 and the x86-64 System V register budget of
// six argument-passing registers).
const maxDirectArgs = 6

// LimitFunctions rewrites every def (and every call) with more than six
// arguments so the trailing arguments are packed into a single vector
// parameter/argument, keeping every def and call within the register budget.
func LimitFunctions(p *typed.Program) *typed.Program {
	newDefs := make([]typed.Def, len(p.Defs))
	for i1, d1 := range p.Defs {
		newDefs[i1] = limitFunctionsDef(d1)
	}
	return &typed.Program{Defs: newDefs, Body: limitFunctionsExp(p.Body, map[string]typed.ExprT{})}
}

func limitFunctionsDef(d typed.Def) typed.Def {
	if len(d.Args) <= maxDirectArgs {
		return typed.Def{Name: d.Name, Args: d.Args, OutputType: d.OutputType, Body: limitFunctionsExp(d.Body, map[string]typed.ExprT{})}
	}

	firstFive := d.Args[:5]
	rest := d.Args[5:]

	restTypes := lo.Map(rest, func(a1 typed.Param, _ int) types.RfunType { return a1.Type })
	vecType := types.VectorT(restTypes...)
	vecName := util.GensymNew("args_vec")

	env := map[string]typed.ExprT{}
	for i1, a1 := range rest {
		env[a1.Name] = typed.Prim{
			Op:  "vectorRef",
			Args: []typed.ExprT{typed.Var{Name: vecName, Typ: vecType}, typed.IntLit{Val: int64(i1)}},
			Typ: restTypes[i1],
		}
	}

	newArgs := append(append([]typed.Param{}, firstFive...), typed.Param{Name: vecName, Type: vecType})
	return typed.Def{Name: d.Name, Args: newArgs, OutputType: d.OutputType, Body: limitFunctionsExp(d.Body, env)}
}

func limitFunctionsExp(e typed.ExprT, env map[string]typed.ExprT) typed.ExprT {
	switch n := e.(type) {
	case typed.IntLit, typed.BoolLit, typed.VoidLit, typed.GlobalVal, typed.FunRef:
		return n

	case typed.Var:
		if repl, ok := env[n.Name]; ok {
			return repl
		}
		return n

	case typed.Let:
		return typed.Let{Var: n.Var, Bound: limitFunctionsExp(n.Bound, env), Body: limitFunctionsExp(n.Body, env), Typ: n.Typ}

	case typed.Prim:
		newArgs := make([]typed.ExprT, len(n.Args))
		for i1, a1 := range n.Args {
			newArgs[i1] = limitFunctionsExp(a1, env)
		}
		return typed.Prim{Op: n.Op, Args: newArgs, Typ: n.Typ}

	case typed.If:
		return typed.If{Test: limitFunctionsExp(n.Test, env), Then: limitFunctionsExp(n.Then, env), Else: limitFunctionsExp(n.Else, env), Typ: n.Typ}

	case typed.Funcall:
		newFun := limitFunctionsExp(n.Fun, env)
		newArgs := make([]typed.ExprT, len(n.Args))
		for i1, a1 := range n.Args {
			newArgs[i1] = limitFunctionsExp(a1, env)
		}
		if len(newArgs) <= maxDirectArgs {
			return typed.Funcall{Fun: newFun, Args: newArgs, Typ: n.Typ}
		}

		firstFive := newArgs[:5]
		rest := newArgs[5:]
		var restTypes []types.RfunType
		if fr, ok := newFun.(typed.FunRef); ok && fr.Typ.Kind == types.Fun {
			restTypes = lo.Map(rest, func(_ typed.ExprT, i1 int) types.RfunType { return fr.Typ.Args[5+i1] })
		} else {
			restTypes = lo.Map(rest, func(a1 typed.ExprT, _ int) types.RfunType { return typeOf(a1) })
		}
		vecExp := typed.Prim{Op: "vector", Args: rest, Typ: types.VectorT(restTypes...)}
		return typed.Funcall{Fun: newFun, Args: append(append([]typed.ExprT{}, firstFive...), vecExp), Typ: n.Typ}

	default:
		panic(fmt.Sprintf("limit-functions: unexpected node %T", e))
	}
}

// typeOf extracts the static type already computed by typecheck for e.
func typeOf(e typed.ExprT) types.RfunType { return e.Type() }
