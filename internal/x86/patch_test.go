package x86

import "testing"

func wrap(instrs []Instr) map[string]*AllocatedProgram {
	return map[string]*AllocatedProgram{
		"f": {Program: &Program{Blocks: map[string][]Instr{"f_start": instrs}}},
	}
}

func TestPatchInstructionsMovqDerefToDeref(t *testing.T) {
	src := Deref{Offset: -8, Reg: "rbp"}
	dst := Deref{Offset: -16, Reg: "rbp"}
	out := PatchInstructions(wrap([]Instr{Movq{Src: src, Dst: dst}}))
	instrs := out["f"].Program.Blocks["f_start"]
	if len(instrs) != 2 {
		t.Fatalf("got %d instructions, want 2 (routed through %%rax)", len(instrs))
	}
	first := instrs[0].(Movq)
	if first.Src != src || first.Dst != (Reg{Name: "rax"}) {
		t.Fatalf("first instruction = %#v, want Movq{src, %%rax}", first)
	}
	second := instrs[1].(Movq)
	if second.Src != (Reg{Name: "rax"}) || second.Dst != dst {
		t.Fatalf("second instruction = %#v, want Movq{%%rax, dst}", second)
	}
}

func TestPatchInstructionsCmpqImmediateSecondOperand(t *testing.T) {
	out := PatchInstructions(wrap([]Instr{Cmpq{Src: Var{Name: "x"}, Dst: Int{Val: 3}}}))
	instrs := out["f"].Program.Blocks["f_start"]
	if len(instrs) != 2 {
		t.Fatalf("got %d instructions, want 2", len(instrs))
	}
	if _, ok := instrs[0].(Movq); !ok {
		t.Fatalf("first instruction = %#v, want Movq loading the immediate", instrs[0])
	}
	cmp := instrs[1].(Cmpq)
	if cmp.Dst != (Reg{Name: "rax"}) {
		t.Fatalf("cmpq destination = %#v, want %%rax", cmp.Dst)
	}
}

func TestPatchInstructionsPassesThroughSingleMemoryOperand(t *testing.T) {
	instr := Movq{Src: Int{Val: 1}, Dst: Deref{Offset: -8, Reg: "rbp"}}
	out := PatchInstructions(wrap([]Instr{instr}))
	instrs := out["f"].Program.Blocks["f_start"]
	if len(instrs) != 1 {
		t.Fatalf("instruction with only one memory operand should pass through unchanged, got %d instrs", len(instrs))
	}
}

func TestPatchInstructionsTailJmpRoutesThroughRax(t *testing.T) {
	out := PatchInstructions(wrap([]Instr{TailJmp{Target: Deref{Offset: -8, Reg: "rbp"}, NumArgs: 2}}))
	instrs := out["f"].Program.Blocks["f_start"]
	if len(instrs) != 2 {
		t.Fatalf("got %d instructions, want 2", len(instrs))
	}
	tj := instrs[1].(TailJmp)
	if tj.Target != (Reg{Name: "rax"}) {
		t.Fatalf("patched TailJmp target = %#v, want %%rax", tj.Target)
	}
	if tj.NumArgs != 2 {
		t.Fatalf("NumArgs = %d, want preserved 2", tj.NumArgs)
	}
}
