package cfun

import (
	"fmt"

	"rfunc/internal/typed"
	"rfunc/internal/types"
	"rfunc/internal/util"
)

// ExplicateControl flattens a typed Rfun program's tree-shaped control flow
// (If, nested Let) into a per-function CFG of labeled blocks, synthesizing a
// zero-argument "main" def from the program's top-level body, per spec.md
// §4.8.
func ExplicateControl(p *typed.Program) *Program {
	newDefs := make([]Def, 0, len(p.Defs)+1)
	for _, d1 := range p.Defs {
		newDefs = append(newDefs, explicateDef(d1.Name, d1.Args, d1.OutputType, d1.Body))
	}
	newDefs = append(newDefs, explicateDef("main", nil, types.IntT(), p.Body))
	return &Program{Defs: newDefs}
}

func explicateDef(name string, args []typed.Param, outputType types.RfunType, body typed.ExprT) Def {
	cfgArgs := make([]Param, len(args))
	for i1, a1 := range args {
		cfgArgs[i1] = Param{Name: a1.Name, Type: a1.Type}
	}

	b := &builder{cfg: map[string]Tail{}}
	b.cfg["start"] = b.ecTail(body)
	return Def{Name: name, Args: cfgArgs, OutputType: outputType, Blocks: b.cfg}
}

// builder threads the block map under construction through the three
// mutually recursive helpers (ecTail, ecAssign, ecPred), mirroring the
// nested-closure shape of the original algorithm with an explicit receiver
// instead of captured Python closures.
type builder struct {
	cfg map[string]Tail
}

func ecAtm(e typed.ExprT) Atm {
	switch n := e.(type) {
	case typed.IntLit:
		return Int{Val: n.Val}
	case typed.BoolLit:
		return Bool{Val: n.Val}
	case typed.VoidLit:
		return Void{}
	case typed.Var:
		return Var{Name: n.Name, Typ: n.Typ}
	case typed.GlobalVal:
		return GlobalVal{Name: n.Name}
	default:
		panic(fmt.Sprintf("explicate-control (atom): unexpected node %T", e))
	}
}

func ecExp(e typed.ExprT) Exp {
	switch n := e.(type) {
	case typed.Prim:
		args := make([]Atm, len(n.Args))
		for i1, a1 := range n.Args {
			args[i1] = ecAtm(a1)
		}
		return Prim{Op: n.Op, Args: args, Typ: n.Typ}
	case typed.FunRef:
		return FunRef{Label: n.Name}
	default:
		return AtmExp{A: ecAtm(e)}
	}
}

func (b *builder) ecAssign(x string, e typed.ExprT, k Tail) Tail {
	switch n := e.(type) {
	case typed.IntLit, typed.BoolLit, typed.VoidLit, typed.GlobalVal:
		return Seq{Stmt: Assign{Var: x, Exp: ecExp(n), IsVec: false}, Next: k}

	case typed.Var:
		return Seq{Stmt: Assign{Var: x, Exp: ecExp(n), IsVec: n.Typ.IsVector()}, Next: k}

	case typed.Prim:
		if n.Op == "collect" {
			amount := n.Args[0].(typed.IntLit)
			return Seq{Stmt: Collect{Amount: amount.Val}, Next: k}
		}
		return Seq{Stmt: Assign{Var: x, Exp: ecExp(n), IsVec: n.Typ.IsVector()}, Next: k}

	case typed.Let:
		return b.ecAssign(n.Var, n.Bound, b.ecAssign(x, n.Body, k))

	case typed.If:
		finallyLabel := util.GensymNew("label")
		b.cfg[finallyLabel] = k
		b2 := b.ecAssign(x, n.Then, Goto{Label: finallyLabel})
		b3 := b.ecAssign(x, n.Else, Goto{Label: finallyLabel})
		return b.ecPred(n.Test, b2, b3)

	case typed.Funcall:
		args := make([]Atm, len(n.Args))
		for i1, a1 := range n.Args {
			args[i1] = ecAtm(a1)
		}
		call := Call{Fun: ecAtm(n.Fun), Args: args, Typ: n.Typ}
		return Seq{Stmt: Assign{Var: x, Exp: call, IsVec: n.Typ.IsVector()}, Next: k}

	case typed.FunRef:
		return Seq{Stmt: Assign{Var: x, Exp: ecExp(n), IsVec: n.Typ.IsVector()}, Next: k}

	default:
		panic(fmt.Sprintf("explicate-control (assign): unexpected node %T", e))
	}
}

func (b *builder) ecPred(test typed.ExprT, b1, b2 Tail) Tail {
	switch n := test.(type) {
	case typed.BoolLit:
		if n.Val {
			return b1
		}
		return b2

	case typed.Var:
		thenLabel := util.GensymNew("label")
		elseLabel := util.GensymNew("label")
		b.cfg[thenLabel] = b1
		b.cfg[elseLabel] = b2
		return If{
			Test:      Prim{Op: "==", Args: []Atm{Var{Name: n.Name, Typ: n.Typ}, Bool{Val: true}}, Typ: types.BoolT()},
			ThenLabel: thenLabel,
			ElseLabel: elseLabel,
		}

	case typed.Prim:
		if n.Op == "not" {
			return b.ecPred(n.Args[0], b2, b1)
		}
		thenLabel := util.GensymNew("label")
		elseLabel := util.GensymNew("label")
		b.cfg[thenLabel] = b1
		b.cfg[elseLabel] = b2
		prim := ecExp(n).(Prim)
		return If{Test: prim, ThenLabel: thenLabel, ElseLabel: elseLabel}

	case typed.Let:
		bodyBlock := b.ecPred(n.Body, b1, b2)
		return b.ecAssign(n.Var, n.Bound, bodyBlock)

	case typed.If:
		label1 := util.GensymNew("label")
		label2 := util.GensymNew("label")
		b.cfg[label1] = b1
		b.cfg[label2] = b2
		newB2 := b.ecPred(n.Then, Goto{Label: label1}, Goto{Label: label2})
		newB3 := b.ecPred(n.Else, Goto{Label: label1}, Goto{Label: label2})
		return b.ecPred(n.Test, newB2, newB3)

	default:
		panic(fmt.Sprintf("explicate-control (pred): unexpected node %T", test))
	}
}

func (b *builder) ecTail(e typed.ExprT) Tail {
	switch n := e.(type) {
	case typed.IntLit, typed.BoolLit, typed.Var, typed.Prim:
		return Return{Exp: ecExp(n)}

	case typed.Let:
		return b.ecAssign(n.Var, n.Bound, b.ecTail(n.Body))

	case typed.If:
		b1 := b.ecTail(n.Then)
		b2 := b.ecTail(n.Else)
		return b.ecPred(n.Test, b1, b2)

	case typed.Funcall:
		args := make([]Atm, len(n.Args))
		for i1, a1 := range n.Args {
			args[i1] = ecAtm(a1)
		}
		return TailCall{Fun: ecAtm(n.Fun), Args: args, Typ: n.Typ}

	default:
		panic(fmt.Sprintf("explicate-control (tail): unexpected node %T", e))
	}
}
