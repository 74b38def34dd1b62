package x86

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// Color is a graph-coloring color: a non-negative integer, per spec.md
// §4.12.
type Color int

func varsArgRegalloc(a Arg) LiveSet {
	switch a.(type) {
	case Var, VecVar:
		return LiveSet{a: true}
	default:
		return LiveSet{}
	}
}

func varsInstrRegalloc(e Instr) LiveSet {
	switch n := e.(type) {
	case Movq:
		return union(varsArgRegalloc(n.Src), varsArgRegalloc(n.Dst))
	case Addq:
		return union(varsArgRegalloc(n.Src), varsArgRegalloc(n.Dst))
	case Cmpq:
		return union(varsArgRegalloc(n.Src), varsArgRegalloc(n.Dst))
	case Movzbq:
		return union(varsArgRegalloc(n.Src), varsArgRegalloc(n.Dst))
	case Xorq:
		return union(varsArgRegalloc(n.Src), varsArgRegalloc(n.Dst))
	case Leaq:
		return union(varsArgRegalloc(n.Src), varsArgRegalloc(n.Dst))
	case Set:
		return varsArgRegalloc(n.Dst)
	case TailJmp:
		return varsArgRegalloc(n.Target)
	case IndirectCallq:
		return varsArgRegalloc(n.Target)
	case Callq, Retq, Jmp, JmpIf, Negq:
		return LiveSet{}
	default:
		panic(fmt.Sprintf("allocate-registers (vars): unexpected instruction %T", e))
	}
}

// colorGraph runs DSATUR greedy saturation coloring over localVars, using
// graph to both precolor the fixed register nodes (registerLocations, in
// order) and propagate saturation to variable neighbors.
func colorGraph(localVars []Arg, graph *Graph, registerLocations []Arg) map[Arg]Color {
	coloring := map[Arg]Color{}
	saturation := make(map[Arg]map[Color]bool, len(localVars))
	for _, v := range localVars {
		saturation[v] = map[Color]bool{}
	}

	for color, reg := range registerLocations {
		for neighbor := range graph.Neighbors(reg) {
			if isVarLike(neighbor) {
				if saturation[neighbor] == nil {
					saturation[neighbor] = map[Color]bool{}
				}
				saturation[neighbor][Color(color)] = true
			}
		}
	}

	toColor := append([]Arg{}, localVars...)
	for len(toColor) > 0 {
		// Pick the variable with maximum saturation; break ties by a stable
		// sort key so repeated runs over the same input are deterministic.
		slices.SortFunc(toColor, func(a, b Arg) int { return strings.Compare(fmt.Sprintf("%#v", a), fmt.Sprintf("%#v", b)) })
		best := 0
		for i1 := range toColor {
			if len(saturation[toColor[i1]]) > len(saturation[toColor[best]]) {
				best = i1
			}
		}
		x := toColor[best]
		toColor = append(toColor[:best], toColor[best+1:]...)

		xColor := Color(0)
		for saturation[x][xColor] {
			xColor++
		}
		coloring[x] = xColor

		for y := range graph.Neighbors(x) {
			if isVarLike(y) {
				if saturation[y] == nil {
					saturation[y] = map[Color]bool{}
				}
				saturation[y][xColor] = true
			}
		}
	}

	return coloring
}

// align rounds n up to the next multiple of 16, per spec.md §4.12's stack
// alignment requirement.
func align(n int64) int64 {
	if n%16 == 0 {
		return n
	}
	return n + (16 - n%16)
}

// AllocatedProgram is the result of allocate-registers for one function:
// the program with every Var/VecVar replaced by its physical home, plus the
// aligned regular-stack byte count and the root-stack spill count.
type AllocatedProgram struct {
	Program         *Program
	StackBytes      int64
	RootStackSpills int
}

// AllocateRegisters assigns a physical home to every pseudo-variable in
// every function, spilling scalars to the regular stack and vectors to the
// root stack, per spec.md §4.12.
func AllocateRegisters(programs map[string]*Program, graphs map[string]*Graph) map[string]*AllocatedProgram {
	registerLocations := make([]Arg, 0, len(CallerSavedRegisters)+len(CalleeSavedRegisters))
	for _, r := range CallerSavedRegisters {
		registerLocations = append(registerLocations, Reg{Name: r})
	}
	for _, r := range CalleeSavedRegisters {
		registerLocations = append(registerLocations, Reg{Name: r})
	}

	out := make(map[string]*AllocatedProgram, len(programs))
	for name, prog := range programs {
		out[name] = allocateRegistersFn(prog, graphs[name], registerLocations)
	}
	return out
}

func allocateRegistersFn(prog *Program, graph *Graph, registerLocations []Arg) *AllocatedProgram {
	localVarSet := LiveSet{}
	for _, instrs := range prog.Blocks {
		for _, instr := range instrs {
			for v := range varsInstrRegalloc(instr) {
				localVarSet[v] = true
			}
		}
	}
	localVars := make([]Arg, 0, len(localVarSet))
	for v := range localVarSet {
		localVars = append(localVars, v)
	}

	coloring := colorGraph(localVars, graph, registerLocations)

	colorMap := map[Color]Arg{}
	vecColorMap := map[Color]Arg{}
	for color, reg := range registerLocations {
		colorMap[Color(color)] = reg
		vecColorMap[Color(color)] = reg
	}

	var stackSpills, rootStackSpills int64
	for _, v := range localVars {
		color := coloring[v]
		switch v.(type) {
		case VecVar:
			if _, ok := vecColorMap[color]; !ok {
				rootStackSpills++
				offset := rootStackSpills + 1
				vecColorMap[color] = Deref{Offset: -(offset * 8), Reg: "r15"}
			}
		case Var:
			if _, ok := colorMap[color]; !ok {
				stackSpills++
				offset := stackSpills + 1
				colorMap[color] = Deref{Offset: -(offset * 8), Reg: "rbp"}
			}
		}
	}

	homes := map[Arg]Arg{}
	for _, v := range localVars {
		color := coloring[v]
		switch v.(type) {
		case VecVar:
			homes[v] = vecColorMap[color]
		case Var:
			homes[v] = colorMap[color]
		}
	}

	newBlocks := make(map[string][]Instr, len(prog.Blocks))
	for label, instrs := range prog.Blocks {
		newInstrs := make([]Instr, len(instrs))
		for i1, instr := range instrs {
			newInstrs[i1] = ahInstr(instr, homes)
		}
		newBlocks[label] = newInstrs
	}

	return &AllocatedProgram{
		Program:         &Program{Blocks: newBlocks},
		StackBytes:      align(8 * stackSpills),
		RootStackSpills: int(rootStackSpills),
	}
}

func ahArg(a Arg, homes map[Arg]Arg) Arg {
	switch a.(type) {
	case Var, VecVar:
		return homes[a]
	default:
		return a
	}
}

func ahInstr(e Instr, homes map[Arg]Arg) Instr {
	switch n := e.(type) {
	case Movq:
		return Movq{Src: ahArg(n.Src, homes), Dst: ahArg(n.Dst, homes)}
	case Addq:
		return Addq{Src: ahArg(n.Src, homes), Dst: ahArg(n.Dst, homes)}
	case Cmpq:
		return Cmpq{Src: ahArg(n.Src, homes), Dst: ahArg(n.Dst, homes)}
	case Movzbq:
		return Movzbq{Src: ahArg(n.Src, homes), Dst: ahArg(n.Dst, homes)}
	case Xorq:
		return Xorq{Src: ahArg(n.Src, homes), Dst: ahArg(n.Dst, homes)}
	case Set:
		return Set{Cc: n.Cc, Dst: ahArg(n.Dst, homes)}
	case Callq, Retq, Jmp, JmpIf:
		return e
	case Leaq:
		return Leaq{Src: ahArg(n.Src, homes), Dst: ahArg(n.Dst, homes)}
	case TailJmp:
		return TailJmp{Target: ahArg(n.Target, homes), NumArgs: n.NumArgs}
	case IndirectCallq:
		return IndirectCallq{Target: ahArg(n.Target, homes), NumArgs: n.NumArgs}
	case Negq:
		return Negq{Dst: ahArg(n.Dst, homes)}
	default:
		panic(fmt.Sprintf("allocate-registers (homes): unexpected instruction %T", e))
	}
}
