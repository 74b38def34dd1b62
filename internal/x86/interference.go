package x86

import (
	"fmt"
	"sort"
	"strings"
)

// Graph is an undirected interference graph: an edge between two Args means
// they must not be assigned the same physical location.
type Graph struct {
	adj map[Arg]map[Arg]bool
}

// NewGraph returns an empty interference graph.
func NewGraph() *Graph {
	return &Graph{adj: map[Arg]map[Arg]bool{}}
}

// AddEdge records that a and b interfere. A self-edge is a no-op.
func (g *Graph) AddEdge(a, b Arg) {
	if a == b {
		return
	}
	if g.adj[a] == nil {
		g.adj[a] = map[Arg]bool{}
	}
	if g.adj[b] == nil {
		g.adj[b] = map[Arg]bool{}
	}
	g.adj[a][b] = true
	g.adj[b][a] = true
}

// Neighbors returns the set of Args that interfere with a.
func (g *Graph) Neighbors(a Arg) map[Arg]bool {
	if n, ok := g.adj[a]; ok {
		return n
	}
	return map[Arg]bool{}
}

// String renders the graph's Var/VecVar nodes and their neighbors, for
// verbose-mode diagnostics (spec.md's supplemented pass-tracing feature).
func (g *Graph) String() string {
	nodeName := func(a Arg) string {
		switch n := a.(type) {
		case Var:
			return n.Name
		case VecVar:
			return n.Name
		default:
			return printArg(a)
		}
	}
	var lines []string
	for k, neighbors := range g.adj {
		if !isVarLike(k) {
			continue
		}
		var names []string
		for n := range neighbors {
			names = append(names, nodeName(n))
		}
		sort.Strings(names)
		lines = append(lines, fmt.Sprintf("%s: %s", nodeName(k), strings.Join(names, ", ")))
	}
	sort.Strings(lines)
	return fmt.Sprintf("InterferenceGraph (\n  %s\n )\n", strings.Join(lines, "\n  "))
}

func isVarLike(a Arg) bool {
	switch a.(type) {
	case Var, VecVar:
		return true
	default:
		return false
	}
}

func varsArgBI(a Arg) LiveSet {
	switch a.(type) {
	case Var, VecVar, Reg:
		return LiveSet{a: true}
	default:
		return LiveSet{}
	}
}

func writesOf(e Instr) LiveSet {
	switch n := e.(type) {
	case Movq:
		return varsArgBI(n.Dst)
	case Addq:
		return varsArgBI(n.Dst)
	case Movzbq:
		return varsArgBI(n.Dst)
	case Xorq:
		return varsArgBI(n.Dst)
	case Leaq:
		return varsArgBI(n.Dst)
	case Callq, Retq, Jmp:
		return LiveSet{}
	default:
		panic(fmt.Sprintf("build-interference (writes): unexpected instruction %T", e))
	}
}

// BuildInterference constructs one interference graph per function, from
// the pseudo-x86 programs and the live-after sets uncover-live produced
// (spec.md §4.11).
func BuildInterference(programs map[string]*Program, liveAfter map[string][]LiveSet) map[string]*Graph {
	callerSaved := make([]Arg, len(CallerSavedRegisters))
	for i1, r := range CallerSavedRegisters {
		callerSaved[i1] = Reg{Name: r}
	}
	calleeSaved := make([]Arg, len(CalleeSavedRegisters))
	for i1, r := range CalleeSavedRegisters {
		calleeSaved[i1] = Reg{Name: r}
	}

	out := make(map[string]*Graph, len(programs))
	for name, prog := range programs {
		g := NewGraph()
		for label, instrs := range prog.Blocks {
			sets := liveAfter[label]
			for i1, instr := range instrs {
				biInstr(instr, sets[i1], g, callerSaved, calleeSaved)
			}
		}
		out[name] = g
	}
	return out
}

func biInstr(e Instr, liveAfter LiveSet, g *Graph, callerSaved, calleeSaved []Arg) {
	switch e.(type) {
	case Movq, Addq, Movzbq, Xorq, Leaq:
		for v1 := range writesOf(e) {
			for v2 := range liveAfter {
				g.AddEdge(v1, v2)
			}
		}
	case Callq, TailJmp, IndirectCallq:
		for v := range liveAfter {
			for _, r := range callerSaved {
				g.AddEdge(v, r)
			}
			if _, ok := v.(VecVar); ok {
				for _, r := range calleeSaved {
					g.AddEdge(v, r)
				}
			}
		}
	case Retq, Jmp, Cmpq, JmpIf, Set, Negq:
		// No edges.
	default:
		panic(fmt.Sprintf("build-interference: unexpected instruction %T", e))
	}
}
