// Package passes implements the source-to-source rewrites of §4.2-§4.7:
// shrink, uniquify, reveal-functions, limit-functions, expose-allocation and
// remove-complex-operands. Each pass walks typed.ExprT with a type switch and
// produces a new typed.ExprT tree; none of them change a node's Type().
package passes

import (
	"fmt"

	"rfunc/internal/typed"
	"rfunc/internal/types"
)

// Shrink eliminates the derived comparison and boolean operators (>, >=,
// <=, &&, ||), rewriting them in terms of <, not and If. Everything else
// passes through unchanged.
func Shrink(p *typed.Program) *typed.Program {
	newDefs := make([]typed.Def, len(p.Defs))
	for i1, d1 := range p.Defs {
		newDefs[i1] = shrinkDef(d1)
	}
	return &typed.Program{Defs: newDefs, Body: shrinkExp(p.Body)}
}

func shrinkDef(d typed.Def) typed.Def {
	return typed.Def{Name: d.Name, Args: d.Args, OutputType: d.OutputType, Body: shrinkExp(d.Body)}
}

func shrinkExp(e typed.ExprT) typed.ExprT {
	switch n := e.(type) {
	case typed.IntLit, typed.BoolLit, typed.VoidLit, typed.Var, typed.GlobalVal, typed.FunRef:
		return n

	case typed.Let:
		return typed.Let{Var: n.Var, Bound: shrinkExp(n.Bound), Body: shrinkExp(n.Body), Typ: n.Typ}

	case typed.Prim:
		newArgs := make([]typed.ExprT, len(n.Args))
		for i1, a1 := range n.Args {
			newArgs[i1] = shrinkExp(a1)
		}
		switch n.Op {
		case "+", "not", "==", "<", "vector", "vectorRef", "vectorSet", "neg":
			return typed.Prim{Op: n.Op, Args: newArgs, Typ: n.Typ}
		case ">":
			return typed.Prim{Op: "<", Args: []typed.ExprT{newArgs[1], newArgs[0]}, Typ: types.BoolT()}
		case "<=":
			return typed.Prim{
				Op:  "not",
				Args: []typed.ExprT{typed.Prim{Op: "<", Args: []typed.ExprT{newArgs[1], newArgs[0]}, Typ: types.BoolT()}},
				Typ: types.BoolT(),
			}
		case ">=":
			return typed.Prim{
				Op:  "not",
				Args: []typed.ExprT{typed.Prim{Op: "<", Args: newArgs, Typ: types.BoolT()}},
				Typ: types.BoolT(),
			}
		case "&&":
			return typed.If{Test: newArgs[0], Then: newArgs[1], Else: typed.BoolLit{Val: false}, Typ: types.BoolT()}
		case "||":
			return typed.If{Test: newArgs[0], Then: typed.BoolLit{Val: true}, Else: newArgs[1], Typ: types.BoolT()}
		default:
			panic(fmt.Sprintf("shrink: unknown primitive %q", n.Op))
		}

	case typed.If:
		return typed.If{Test: shrinkExp(n.Test), Then: shrinkExp(n.Then), Else: shrinkExp(n.Else), Typ: n.Typ}

	case typed.Funcall:
		newArgs := make([]typed.ExprT, len(n.Args))
		for i1, a1 := range n.Args {
			newArgs[i1] = shrinkExp(a1)
		}
		return typed.Funcall{Fun: shrinkExp(n.Fun), Args: newArgs, Typ: n.Typ}

	default:
		panic(fmt.Sprintf("shrink: unexpected node %T", e))
	}
}
