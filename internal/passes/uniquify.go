package passes

import (
	"fmt"

	"rfunc/internal/typed"
	"rfunc/internal/util"
)

// Uniquify alpha-renames every let-bound variable and function parameter to
// a fresh gensym'd name, so that no two bindings anywhere in the program
// share a name. References to top-level function names are left untouched:
// the env maps each top-level name to itself, and reveal-functions later
// turns those references into FunRefs.
func Uniquify(p *typed.Program) *typed.Program {
	topLevel := map[string]string{}
	for _, d1 := range p.Defs {
		topLevel[d1.Name] = d1.Name
	}

	newDefs := make([]typed.Def, len(p.Defs))
	for i1, d1 := range p.Defs {
		newDefs[i1] = uniquifyDef(d1, topLevel)
	}
	return &typed.Program{Defs: newDefs, Body: uniquifyExp(p.Body, topLevel)}
}

func uniquifyDef(d typed.Def, topLevel map[string]string) typed.Def {
	env := map[string]string{}
	newArgs := make([]typed.Param, len(d.Args))
	for i1, a1 := range d.Args {
		fresh := util.GensymNew(a1.Name)
		env[a1.Name] = fresh
		newArgs[i1] = typed.Param{Name: fresh, Type: a1.Type}
	}
	return typed.Def{Name: d.Name, Args: newArgs, OutputType: d.OutputType, Body: uniquifyExp(d.Body, merge(topLevel, env))}
}

// merge overlays env atop base, without mutating either.
func merge(base, env map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(env))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range env {
		out[k] = v
	}
	return out
}

func uniquifyExp(e typed.ExprT, env map[string]string) typed.ExprT {
	switch n := e.(type) {
	case typed.IntLit, typed.BoolLit, typed.VoidLit, typed.GlobalVal:
		return n

	case typed.Var:
		if fresh, ok := env[n.Name]; ok {
			return typed.Var{Name: fresh, Typ: n.Typ}
		}
		return n

	case typed.Let:
		newBound := uniquifyExp(n.Bound, env)
		fresh := util.GensymNew(n.Var)
		inner := merge(env, map[string]string{n.Var: fresh})
		return typed.Let{Var: fresh, Bound: newBound, Body: uniquifyExp(n.Body, inner), Typ: n.Typ}

	case typed.Prim:
		newArgs := make([]typed.ExprT, len(n.Args))
		for i1, a1 := range n.Args {
			newArgs[i1] = uniquifyExp(a1, env)
		}
		return typed.Prim{Op: n.Op, Args: newArgs, Typ: n.Typ}

	case typed.If:
		return typed.If{Test: uniquifyExp(n.Test, env), Then: uniquifyExp(n.Then, env), Else: uniquifyExp(n.Else, env), Typ: n.Typ}

	case typed.Funcall:
		newArgs := make([]typed.ExprT, len(n.Args))
		for i1, a1 := range n.Args {
			newArgs[i1] = uniquifyExp(a1, env)
		}
		return typed.Funcall{Fun: uniquifyExp(n.Fun, env), Args: newArgs, Typ: n.Typ}

	default:
		panic(fmt.Sprintf("uniquify: unexpected node %T", e))
	}
}
