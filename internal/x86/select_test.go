package x86

import (
	"testing"

	"rfunc/internal/cfun"
	"rfunc/internal/types"
	"rfunc/internal/util"
)

func TestSelectInstructionsAssignAtom(t *testing.T) {
	d := cfun.Def{
		Name: "main",
		Blocks: map[string]cfun.Tail{
			"start": cfun.Seq{
				Stmt: cfun.Assign{Var: "x", Exp: cfun.AtmExp{A: cfun.Int{Val: 5}}},
				Next: cfun.Return{Exp: cfun.AtmExp{A: cfun.Var{Name: "x", Typ: types.IntT()}}},
			},
		},
	}
	out := SelectInstructions(&cfun.Program{Defs: []cfun.Def{d}})
	prog, ok := out["main"]
	if !ok {
		t.Fatalf("no program for main: %#v", out)
	}
	instrs, ok := prog.Blocks["main_start"]
	if !ok {
		t.Fatalf("select-instructions did not rename start to main_start: %#v", prog.Blocks)
	}
	mov, ok := instrs[0].(Movq)
	if !ok {
		t.Fatalf("first instruction = %#v, want Movq", instrs[0])
	}
	if mov.Src.(Int).Val != 5 {
		t.Fatalf("Movq.Src = %#v, want Int{5}", mov.Src)
	}
	if mov.Dst.(Var).Name != "x" {
		t.Fatalf("Movq.Dst = %#v, want Var{x}", mov.Dst)
	}
}

func TestSelectInstructionsParameterPrologue(t *testing.T) {
	d := cfun.Def{
		Name: "f",
		Args: []cfun.Param{{Name: "a", Type: types.IntT()}, {Name: "b", Type: types.IntT()}},
		Blocks: map[string]cfun.Tail{
			"start": cfun.Return{Exp: cfun.AtmExp{A: cfun.Var{Name: "a", Typ: types.IntT()}}},
		},
	}
	out := SelectInstructions(&cfun.Program{Defs: []cfun.Def{d}})
	instrs := out["f"].Blocks["f_start"]
	if len(instrs) < 2 {
		t.Fatalf("expected a prologue move per parameter, got %d instructions: %#v", len(instrs), instrs)
	}
	mov0, ok := instrs[0].(Movq)
	if !ok || mov0.Src.(Reg).Name != "rdi" || mov0.Dst.(Var).Name != "a" {
		t.Fatalf("first prologue move = %#v, want rdi -> a", instrs[0])
	}
	mov1, ok := instrs[1].(Movq)
	if !ok || mov1.Src.(Reg).Name != "rsi" || mov1.Dst.(Var).Name != "b" {
		t.Fatalf("second prologue move = %#v, want rsi -> b", instrs[1])
	}
}

func TestSelectInstructionsVectorVarUsesVecVar(t *testing.T) {
	vecType := types.VectorT(types.IntT())
	d := cfun.Def{
		Name: "f",
		Args: []cfun.Param{{Name: "v", Type: vecType}},
		Blocks: map[string]cfun.Tail{
			"start": cfun.Return{Exp: cfun.AtmExp{A: cfun.Var{Name: "v", Typ: vecType}}},
		},
	}
	out := SelectInstructions(&cfun.Program{Defs: []cfun.Def{d}})
	mov0 := out["f"].Blocks["f_start"][0].(Movq)
	if _, ok := mov0.Dst.(VecVar); !ok {
		t.Fatalf("parameter prologue move for vector arg used %T, want VecVar", mov0.Dst)
	}
}

func TestSelectInstructionsIfUsesTranslatedConditionCode(t *testing.T) {
	d := cfun.Def{
		Name: "main",
		Blocks: map[string]cfun.Tail{
			"start": cfun.If{
				Test:      cfun.Prim{Op: "==", Args: []cfun.Atm{cfun.Int{Val: 1}, cfun.Int{Val: 1}}, Typ: types.BoolT()},
				ThenLabel: "then",
				ElseLabel: "else",
			},
			"then": cfun.Return{Exp: cfun.AtmExp{A: cfun.Int{Val: 1}}},
			"else": cfun.Return{Exp: cfun.AtmExp{A: cfun.Int{Val: 0}}},
		},
	}
	out := SelectInstructions(&cfun.Program{Defs: []cfun.Def{d}})
	start := out["main"].Blocks["main_start"]
	jmpif, ok := start[1].(JmpIf)
	if !ok {
		t.Fatalf("second instruction = %#v, want JmpIf", start[1])
	}
	if jmpif.Cc != "e" {
		t.Fatalf("JmpIf.Cc = %q, want %q (translated from ==)", jmpif.Cc, "e")
	}
}

func TestSelectInstructionsAllocateBuildsTag(t *testing.T) {
	util.ResetGensym()
	vecType := types.VectorT(types.IntT(), types.VectorT(types.IntT()))
	d := cfun.Def{
		Name: "main",
		Blocks: map[string]cfun.Tail{
			"start": cfun.Seq{
				Stmt: cfun.Assign{Var: "v", IsVec: true, Exp: cfun.Prim{Op: "allocate", Typ: vecType}},
				Next: cfun.Return{Exp: cfun.AtmExp{A: cfun.Void{}}},
			},
		},
	}
	out := SelectInstructions(&cfun.Program{Defs: []cfun.Def{d}})
	instrs := out["main"].Blocks["main_start"]
	var tagMov *Movq
	for _, in1 := range instrs {
		if mov, ok := in1.(Movq); ok {
			if _, ok := mov.Dst.(Deref); ok {
				tagMov = &mov
			}
		}
	}
	if tagMov == nil {
		t.Fatalf("no tag-store instruction found in %#v", instrs)
	}
	want := mkTag(vecType.Elems)
	if tagMov.Src.(Int).Val != want {
		t.Fatalf("tag = %d, want %d", tagMov.Src.(Int).Val, want)
	}
}
