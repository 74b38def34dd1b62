package x86

import "testing"

func TestUncoverLiveMovqChainsLiveness(t *testing.T) {
	// x = 1; y = x; return y  -->  x live between the two movqs, y live after
	// the second until it is moved into %rax.
	prog := &Program{
		Blocks: map[string][]Instr{
			"f_start": {
				Movq{Src: Int{Val: 1}, Dst: Var{Name: "x"}},
				Movq{Src: Var{Name: "x"}, Dst: Var{Name: "y"}},
				Movq{Src: Var{Name: "y"}, Dst: Reg{Name: "rax"}},
				Jmp{Label: "f_conclusion"},
			},
		},
	}
	_, liveAfter := UncoverLive(map[string]*Program{"f": prog})
	sets := liveAfter["f_start"]
	if len(sets) != 4 {
		t.Fatalf("got %d live-after sets, want 4", len(sets))
	}
	if !sets[0][Var{Name: "x"}] {
		t.Fatalf("x should be live after instruction 0 (it's used by instruction 1): %v", sets[0])
	}
	if sets[0][Var{Name: "y"}] {
		t.Fatalf("y should not be live before it is assigned: %v", sets[0])
	}
	if !sets[1][Var{Name: "y"}] {
		t.Fatalf("y should be live after instruction 1: %v", sets[1])
	}
	if sets[1][Var{Name: "x"}] {
		t.Fatalf("x should be dead after instruction 1, it was consumed: %v", sets[1])
	}
}

func TestUncoverLiveJmpCrossesBlocks(t *testing.T) {
	prog := &Program{
		Blocks: map[string][]Instr{
			"f_start": {
				Movq{Src: Int{Val: 1}, Dst: Var{Name: "x"}},
				Jmp{Label: "f_next"},
			},
			"f_next": {
				Movq{Src: Var{Name: "x"}, Dst: Reg{Name: "rax"}},
			},
		},
	}
	_, liveAfter := UncoverLive(map[string]*Program{"f": prog})
	startSets := liveAfter["f_start"]
	if !startSets[0][Var{Name: "x"}] {
		t.Fatalf("x should be live across the jmp into f_next, where it is used: %v", startSets[0])
	}
}
