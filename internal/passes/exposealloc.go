package passes

import (
	"fmt"

	"rfunc/internal/typed"
	"rfunc/internal/types"
	"rfunc/internal/util"
)

// vectorHeaderBytes is the size, in bytes, of a vector's length/tag word
// (see spec.md's tag-encoding glossary entry); each element is one more
// 8-byte word.
const vectorHeaderBytes = 8

// ExposeAllocation rewrites every 'vector' literal into an explicit
// allocation sequence: evaluate the elements into temporaries, conditionally
// call the collector if there isn't enough space, allocate the vector, then
// vectorSet each element in. Every other node passes through unchanged.
func ExposeAllocation(p *typed.Program) *typed.Program {
	newDefs := make([]typed.Def, len(p.Defs))
	for i1, d1 := range p.Defs {
		newDefs[i1] = typed.Def{Name: d1.Name, Args: d1.Args, OutputType: d1.OutputType, Body: exposeAllocExp(d1.Body)}
	}
	return &typed.Program{Defs: newDefs, Body: exposeAllocExp(p.Body)}
}

func exposeAllocExp(e typed.ExprT) typed.ExprT {
	switch n := e.(type) {
	case typed.IntLit, typed.BoolLit, typed.VoidLit, typed.Var, typed.GlobalVal, typed.FunRef:
		return n

	case typed.Let:
		return typed.Let{Var: n.Var, Bound: exposeAllocExp(n.Bound), Body: exposeAllocExp(n.Body), Typ: n.Typ}

	case typed.Prim:
		newArgs := make([]typed.ExprT, len(n.Args))
		for i1, a1 := range n.Args {
			newArgs[i1] = exposeAllocExp(a1)
		}
		if n.Op != "vector" {
			return typed.Prim{Op: n.Op, Args: newArgs, Typ: n.Typ}
		}
		return exposeVector(n.Typ, newArgs)

	case typed.If:
		return typed.If{Test: exposeAllocExp(n.Test), Then: exposeAllocExp(n.Then), Else: exposeAllocExp(n.Else), Typ: n.Typ}

	case typed.Funcall:
		newArgs := make([]typed.ExprT, len(n.Args))
		for i1, a1 := range n.Args {
			newArgs[i1] = exposeAllocExp(a1)
		}
		return typed.Funcall{Fun: exposeAllocExp(n.Fun), Args: newArgs, Typ: n.Typ}

	default:
		panic(fmt.Sprintf("expose-allocation: unexpected node %T", e))
	}
}

// exposeVector lowers a 'vector' literal of vecType over already-rewritten
// element expressions into the allocate/collect/vectorSet sequence.
func exposeVector(vecType types.RfunType, elems []typed.ExprT) typed.ExprT {
	bindings := &util.Bindings{}

	varNames := make([]string, len(elems))
	for i1, a1 := range elems {
		v := util.GensymNew("v")
		varNames[i1] = v
		bindings.Add(v, a1)
	}

	totalBytes := int64(vectorHeaderBytes + vectorHeaderBytes*len(elems))
	collectCheck := typed.If{
		Test: typed.Prim{
			Op: "<",
			Args: []typed.ExprT{
				typed.Prim{Op: "+", Args: []typed.ExprT{typed.GlobalVal{Name: "free_ptr"}, typed.IntLit{Val: totalBytes}}, Typ: types.IntT()},
				typed.GlobalVal{Name: "fromspace_end"},
			},
			Typ: types.BoolT(),
		},
		Then: typed.VoidLit{},
		Else: typed.Prim{Op: "collect", Args: []typed.ExprT{typed.IntLit{Val: totalBytes}}, Typ: types.VoidT()},
		Typ:  types.VoidT(),
	}
	bindings.Add(util.GensymNew("_"), collectCheck)

	vecName := util.GensymNew("vec")
	bindings.Add(vecName, typed.Prim{Op: "allocate", Args: []typed.ExprT{typed.IntLit{Val: int64(len(elems))}}, Typ: vecType})

	for i1, v := range varNames {
		elemT := vecType.Elems[i1]
		set := typed.Prim{
			Op: "vectorSet",
			Args: []typed.ExprT{
				typed.Var{Name: vecName, Typ: vecType},
				typed.IntLit{Val: int64(i1)},
				typed.Var{Name: v, Typ: elemT},
			},
			Typ: types.VoidT(),
		}
		bindings.Add(util.GensymNew("_"), set)
	}

	return mkLet(bindings, typed.Var{Name: vecName, Typ: vecType})
}
