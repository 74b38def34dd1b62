package x86

import "fmt"

// isDeref reports whether a is a memory operand: a Deref or a RIP-relative
// GlobalVal.
func isDeref(a Arg) bool {
	switch a.(type) {
	case Deref, GlobalVal:
		return true
	default:
		return false
	}
}

func isInt(a Arg) bool {
	_, ok := a.(Int)
	return ok
}

// PatchInstructions repairs every instruction with two memory operands or an
// illegal immediate destination, routing the repair through %rax, per
// spec.md §4.13.
func PatchInstructions(programs map[string]*AllocatedProgram) map[string]*AllocatedProgram {
	out := make(map[string]*AllocatedProgram, len(programs))
	for name, ap := range programs {
		newBlocks := make(map[string][]Instr, len(ap.Program.Blocks))
		for label, instrs := range ap.Program.Blocks {
			newBlocks[label] = patchBlock(instrs)
		}
		out[name] = &AllocatedProgram{
			Program:         &Program{Blocks: newBlocks},
			StackBytes:      ap.StackBytes,
			RootStackSpills: ap.RootStackSpills,
		}
	}
	return out
}

func patchBlock(instrs []Instr) []Instr {
	out := make([]Instr, 0, len(instrs))
	for _, instr := range instrs {
		out = append(out, patchInstr(instr)...)
	}
	return out
}

func patchInstr(e Instr) []Instr {
	switch n := e.(type) {
	case Movq:
		if isDeref(n.Src) && isDeref(n.Dst) {
			return []Instr{Movq{Src: n.Src, Dst: Reg{Name: "rax"}}, Movq{Src: Reg{Name: "rax"}, Dst: n.Dst}}
		}
		return []Instr{n}
	case Addq:
		if isDeref(n.Src) && isDeref(n.Dst) {
			return []Instr{Movq{Src: n.Src, Dst: Reg{Name: "rax"}}, Addq{Src: Reg{Name: "rax"}, Dst: n.Dst}}
		}
		return []Instr{n}
	case Cmpq:
		if isInt(n.Dst) {
			return []Instr{Movq{Src: n.Dst, Dst: Reg{Name: "rax"}}, Cmpq{Src: n.Src, Dst: Reg{Name: "rax"}}}
		}
		return []Instr{n}
	case Leaq:
		if isDeref(n.Dst) {
			return []Instr{Leaq{Src: n.Src, Dst: Reg{Name: "rax"}}, Movq{Src: Reg{Name: "rax"}, Dst: n.Dst}}
		}
		return []Instr{n}
	case Callq, Retq, Jmp, JmpIf, Set, Movzbq, Xorq, Negq:
		return []Instr{n}
	case TailJmp:
		return []Instr{Movq{Src: n.Target, Dst: Reg{Name: "rax"}}, TailJmp{Target: Reg{Name: "rax"}, NumArgs: n.NumArgs}}
	case IndirectCallq:
		return []Instr{Movq{Src: n.Target, Dst: Reg{Name: "rax"}}, IndirectCallq{Target: Reg{Name: "rax"}, NumArgs: n.NumArgs}}
	default:
		panic(fmt.Sprintf("patch-instructions: unexpected instruction %T", e))
	}
}
