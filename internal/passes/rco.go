package passes

import (
	"fmt"

	"rfunc/internal/typed"
	"rfunc/internal/util"
)

// RemoveComplexOperands puts every def body and the program body into
// A-Normal Form: every operand to a Prim or Funcall is atomic (a literal or a
// Var); anything compound is first bound to a fresh temporary via a Let. The
// test of an If in expression position is normalized the same way but is not
// itself atomized, so it may remain a Prim over atoms (or a Let ending in
// one) for explicate-control to branch on.
func RemoveComplexOperands(p *typed.Program) *typed.Program {
	newDefs := make([]typed.Def, len(p.Defs))
	for i1, d1 := range p.Defs {
		newDefs[i1] = typed.Def{Name: d1.Name, Args: d1.Args, OutputType: d1.OutputType, Body: rcoExp(d1.Body)}
	}
	return &typed.Program{Defs: newDefs, Body: rcoExp(p.Body)}
}

// rcoAtm reduces e to an atomic expression, recording any bindings it had to
// introduce along the way into bindings.
func rcoAtm(e typed.ExprT, bindings *util.Bindings) typed.ExprT {
	switch n := e.(type) {
	case typed.IntLit, typed.BoolLit, typed.Var:
		return n

	case typed.GlobalVal:
		v := util.GensymNew("tmp")
		bindings.Add(v, n)
		return typed.Var{Name: v, Typ: n.Type()}

	case typed.Let:
		newBound := rcoExp(n.Bound)
		bindings.Add(n.Var, newBound)
		return rcoAtm(n.Body, bindings)

	case typed.Prim:
		newArgs := make([]typed.ExprT, len(n.Args))
		for i1, a1 := range n.Args {
			newArgs[i1] = rcoAtm(a1, bindings)
		}
		v := util.GensymNew("tmp")
		bindings.Add(v, typed.Prim{Op: n.Op, Args: newArgs, Typ: n.Typ})
		return typed.Var{Name: v, Typ: n.Typ}

	case typed.If:
		newIf := typed.If{Test: rcoAtm(n.Test, bindings), Then: rcoAtm(n.Then, bindings), Else: rcoAtm(n.Else, bindings), Typ: n.Typ}
		v := util.GensymNew("tmp")
		bindings.Add(v, newIf)
		return typed.Var{Name: v, Typ: n.Typ}

	case typed.FunRef:
		v := util.GensymNew("tmp")
		bindings.Add(v, n)
		return typed.Var{Name: v, Typ: n.Typ}

	case typed.Funcall:
		newArgs := make([]typed.ExprT, len(n.Args))
		for i1, a1 := range n.Args {
			newArgs[i1] = rcoAtm(a1, bindings)
		}
		newFuncall := typed.Funcall{Fun: rcoAtm(n.Fun, bindings), Args: newArgs, Typ: n.Typ}
		v := util.GensymNew("tmp")
		bindings.Add(v, newFuncall)
		return typed.Var{Name: v, Typ: n.Typ}

	default:
		panic(fmt.Sprintf("remove-complex-operands (atom): unexpected node %T", e))
	}
}

// rcoExp normalizes e in expression (non-atomic) position: it may itself be
// compound, but every argument nested inside it must be atomic.
func rcoExp(e typed.ExprT) typed.ExprT {
	switch n := e.(type) {
	case typed.IntLit, typed.BoolLit, typed.VoidLit, typed.Var, typed.GlobalVal:
		return n

	case typed.Let:
		return typed.Let{Var: n.Var, Bound: rcoExp(n.Bound), Body: rcoExp(n.Body), Typ: n.Typ}

	case typed.Prim:
		bindings := &util.Bindings{}
		newArgs := make([]typed.ExprT, len(n.Args))
		for i1, a1 := range n.Args {
			newArgs[i1] = rcoAtm(a1, bindings)
		}
		return mkLet(bindings, typed.Prim{Op: n.Op, Args: newArgs, Typ: n.Typ})

	case typed.If:
		return typed.If{Test: rcoExp(n.Test), Then: rcoExp(n.Then), Else: rcoExp(n.Else), Typ: n.Typ}

	case typed.Funcall:
		bindings := &util.Bindings{}
		newFun := rcoAtm(n.Fun, bindings)
		newArgs := make([]typed.ExprT, len(n.Args))
		for i1, a1 := range n.Args {
			newArgs[i1] = rcoAtm(a1, bindings)
		}
		return mkLet(bindings, typed.Funcall{Fun: newFun, Args: newArgs, Typ: n.Typ})

	case typed.FunRef:
		return n

	default:
		panic(fmt.Sprintf("remove-complex-operands: unexpected node %T", e))
	}
}
