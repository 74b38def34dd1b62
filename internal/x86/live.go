package x86

import "fmt"

// LiveSet is a set of pseudo-variables (Var or VecVar) live at some program
// point.
type LiveSet map[Arg]bool

func union(a, b LiveSet) LiveSet {
	out := make(LiveSet, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func diff(a, b LiveSet) LiveSet {
	out := make(LiveSet, len(a))
	for k := range a {
		if !b[k] {
			out[k] = true
		}
	}
	return out
}

func varsArgLive(a Arg) LiveSet {
	switch a.(type) {
	case Var, VecVar:
		return LiveSet{a: true}
	default:
		return LiveSet{}
	}
}

// UncoverLive computes, for every function in programs, the live-after set
// of every instruction in every block, per spec.md §4.10. The input
// programs are returned unchanged; liveAfter maps each block label, across
// all functions, to its slice of live-after sets (one per instruction, same
// order).
func UncoverLive(programs map[string]*Program) (map[string]*Program, map[string][]LiveSet) {
	liveAfter := make(map[string][]LiveSet)
	for name, prog := range programs {
		perLabel := uncoverLiveFn(name, prog)
		for label, sets := range perLabel {
			liveAfter[label] = sets
		}
	}
	return programs, liveAfter
}

// uncoverLiveFn analyzes one function's blocks, returning live-after sets
// keyed by block label. Cross-block references (Jmp/JmpIf) are resolved by
// analyzing the target block first if it hasn't been visited yet; this
// terminates because explicate-control only ever produces an acyclic label
// graph within one function.
func uncoverLiveFn(name string, prog *Program) map[string][]LiveSet {
	labelLive := map[string]LiveSet{
		"conclusion":        {},
		name + "_conclusion": {},
	}
	liveAfterSets := map[string][]LiveSet{}

	var ulBlock func(label string)
	ulBlock = func(label string) {
		instrs := prog.Blocks[label]
		current := LiveSet{}
		local := make([]LiveSet, len(instrs))
		for i1 := len(instrs) - 1; i1 >= 0; i1-- {
			local[i1] = current
			current = ulInstr(instrs[i1], current, prog, labelLive, ulBlock)
		}
		liveAfterSets[label] = local
		labelLive[label] = current
	}

	for label := range prog.Blocks {
		ulBlock(label)
	}
	return liveAfterSets
}

func ulInstr(e Instr, liveAfter LiveSet, prog *Program, labelLive map[string]LiveSet, ulBlock func(string)) LiveSet {
	switch n := e.(type) {
	case Movq:
		return union(diff(liveAfter, varsArgLive(n.Dst)), varsArgLive(n.Src))
	case Movzbq:
		return union(diff(liveAfter, varsArgLive(n.Dst)), varsArgLive(n.Src))
	case Leaq:
		return union(diff(liveAfter, varsArgLive(n.Dst)), varsArgLive(n.Src))
	case Addq:
		return union(liveAfter, union(varsArgLive(n.Src), varsArgLive(n.Dst)))
	case Xorq:
		return union(liveAfter, union(varsArgLive(n.Src), varsArgLive(n.Dst)))
	case Cmpq:
		return union(liveAfter, union(varsArgLive(n.Src), varsArgLive(n.Dst)))
	case TailJmp:
		return union(liveAfter, varsArgLive(n.Target))
	case IndirectCallq:
		return union(liveAfter, varsArgLive(n.Target))
	case Negq:
		return union(liveAfter, varsArgLive(n.Dst))
	case Callq, Retq, Set:
		return liveAfter
	case Jmp:
		if _, ok := labelLive[n.Label]; !ok {
			ulBlock(n.Label)
		}
		return union(liveAfter, labelLive[n.Label])
	case JmpIf:
		if _, ok := labelLive[n.Label]; !ok {
			ulBlock(n.Label)
		}
		return union(liveAfter, labelLive[n.Label])
	default:
		panic(fmt.Sprintf("uncover-live: unexpected instruction %T", e))
	}
}
