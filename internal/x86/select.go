package x86

import (
	"fmt"

	"rfunc/internal/cfun"
	"rfunc/internal/types"
	"rfunc/internal/util"
)

// opCc maps a Cfun comparison op to the condition-code suffix used by Set
// when materializing its boolean result into a register.
var opCc = map[string]string{
	"==": "e",
	">":  "g",
	"<":  "l",
}

// SelectInstructions lowers every def of a Cfun program into a pseudo-x86
// Program (one per function, keyed by function name), per spec.md §4.9.
func SelectInstructions(p *cfun.Program) map[string]*Program {
	out := make(map[string]*Program, len(p.Defs))
	for _, d1 := range p.Defs {
		out[d1.Name] = selectDef(d1)
	}
	return out
}

func selectDef(d cfun.Def) *Program {
	s := &selector{defName: d.Name}

	blocks := map[string][]Instr{}
	for label, tail := range d.Blocks {
		outLabel := label
		if label == "start" {
			outLabel = d.Name + "_start"
		}
		blocks[outLabel] = s.siTail(tail)
	}

	for label := range blocks {
		if label == d.Name+"_start" && label != "main_start" {
			prologue := make([]Instr, 0, len(d.Args))
			for i1, a1 := range d.Args {
				dst := mkVar(a1.Name, a1.Type.IsVector())
				prologue = append(prologue, Movq{Src: Reg{Name: ParameterRegisters[i1]}, Dst: dst})
			}
			blocks[label] = append(prologue, blocks[label]...)
		}
	}

	return &Program{Blocks: blocks}
}

// selector carries the enclosing def's name, needed to build the
// "<name>_conclusion" jump target emitted by every Return.
type selector struct {
	defName string
}

func mkVar(name string, isVec bool) Arg {
	if isVec {
		return VecVar{Name: name}
	}
	return Var{Name: name}
}

func siAtm(a cfun.Atm) Arg {
	switch n := a.(type) {
	case cfun.Int:
		return Int{Val: n.Val}
	case cfun.Bool:
		if n.Val {
			return Int{Val: 1}
		}
		return Int{Val: 0}
	case cfun.Var:
		return mkVar(n.Name, n.Typ.IsVector())
	case cfun.GlobalVal:
		return GlobalVal{Name: n.Name}
	case cfun.Void:
		return Int{Val: 0}
	default:
		panic(fmt.Sprintf("select-instructions (atom): unexpected node %T", a))
	}
}

// mkTag builds a vector tag integer per spec.md §4.9's bit layout: a
// forwarding bit, a 6-bit length field, then one pointer-mask bit per
// element (set iff that element is itself a Vector).
func mkTag(elemTypes []types.RfunType) int64 {
	var pointerMask int64
	for _, t := range elemTypes {
		pointerMask <<= 1
		if t.Kind == types.Vector {
			pointerMask++
		}
	}
	maskAndLen := (pointerMask << 6) + int64(len(elemTypes))
	return (maskAndLen << 1) + 1
}

func siStmt(e cfun.Stmt) []Instr {
	switch n := e.(type) {
	case cfun.Collect:
		return []Instr{
			Movq{Src: Reg{Name: "r15"}, Dst: Reg{Name: "rdi"}},
			Movq{Src: Int{Val: n.Amount}, Dst: Reg{Name: "rsi"}},
			Callq{Label: "collect"},
		}

	case cfun.Assign:
		dst := mkVar(n.Var, n.IsVec)
		switch exp := n.Exp.(type) {
		case cfun.AtmExp:
			return []Instr{Movq{Src: siAtm(exp.A), Dst: dst}}

		case cfun.Prim:
			return siPrim(exp, dst)

		case cfun.FunRef:
			return []Instr{Leaq{Src: FunRef{Label: exp.Label}, Dst: dst}}

		case cfun.Call:
			instrs := make([]Instr, 0, len(exp.Args)+2)
			for i1, a1 := range exp.Args {
				instrs = append(instrs, Movq{Src: siAtm(a1), Dst: Reg{Name: ParameterRegisters[i1]}})
			}
			instrs = append(instrs, IndirectCallq{Target: siAtm(exp.Fun), NumArgs: len(exp.Args)})
			instrs = append(instrs, Movq{Src: Reg{Name: "rax"}, Dst: dst})
			return instrs

		default:
			panic(fmt.Sprintf("select-instructions (assign): unexpected exp %T", exp))
		}

	default:
		panic(fmt.Sprintf("select-instructions (stmt): unexpected node %T", e))
	}
}

func siPrim(exp cfun.Prim, dst Arg) []Instr {
	switch exp.Op {
	case "+":
		return []Instr{
			Movq{Src: siAtm(exp.Args[0]), Dst: dst},
			Addq{Src: siAtm(exp.Args[1]), Dst: dst},
		}
	case "neg":
		return []Instr{
			Movq{Src: siAtm(exp.Args[0]), Dst: dst},
			Negq{Dst: dst},
		}
	case "==", "<":
		return []Instr{
			Cmpq{Src: siAtm(exp.Args[1]), Dst: siAtm(exp.Args[0])},
			Set{Cc: opCc[exp.Op], Dst: ByteReg{Name: "al"}},
			Movzbq{Src: ByteReg{Name: "al"}, Dst: dst},
		}
	case "not":
		return []Instr{
			Movq{Src: siAtm(exp.Args[0]), Dst: dst},
			Xorq{Src: Int{Val: 1}, Dst: dst},
		}
	case "allocate":
		tag := mkTag(exp.Typ.Elems)
		totalBytes := int64(8 + 8*len(exp.Typ.Elems))
		return []Instr{
			Movq{Src: GlobalVal{Name: "free_ptr"}, Dst: dst},
			Addq{Src: Int{Val: totalBytes}, Dst: GlobalVal{Name: "free_ptr"}},
			Movq{Src: dst, Dst: Reg{Name: "r11"}},
			Movq{Src: Int{Val: tag}, Dst: Deref{Offset: 0, Reg: "r11"}},
		}
	case "vectorSet":
		idx := exp.Args[1].(cfun.Int)
		offset := 8 * (idx.Val + 1)
		return []Instr{
			Movq{Src: siAtm(exp.Args[0]), Dst: Reg{Name: "r11"}},
			Movq{Src: siAtm(exp.Args[2]), Dst: Deref{Offset: offset, Reg: "r11"}},
			Movq{Src: Int{Val: 0}, Dst: dst},
		}
	case "vectorRef":
		idx := exp.Args[1].(cfun.Int)
		offset := 8 * (idx.Val + 1)
		return []Instr{
			Movq{Src: siAtm(exp.Args[0]), Dst: Reg{Name: "r11"}},
			Movq{Src: Deref{Offset: offset, Reg: "r11"}, Dst: dst},
		}
	default:
		panic(fmt.Sprintf("select-instructions (prim): unknown op %q", exp.Op))
	}
}

func (s *selector) siTail(e cfun.Tail) []Instr {
	switch n := e.(type) {
	case cfun.Return:
		retVar := util.GensymNew("retvar")
		instrs := siStmt(cfun.Assign{Var: retVar, Exp: n.Exp, IsVec: false})
		instrs = append(instrs,
			Movq{Src: mkVar(retVar, false), Dst: Reg{Name: "rax"}},
			Jmp{Label: s.defName + "_conclusion"},
		)
		return instrs

	case cfun.Seq:
		return append(siStmt(n.Stmt), s.siTail(n.Next)...)

	case cfun.If:
		e1, e2 := n.Test.Args[0], n.Test.Args[1]
		return []Instr{
			Cmpq{Src: siAtm(e2), Dst: siAtm(e1)},
			JmpIf{Cc: opCc[n.Test.Op], Label: n.ThenLabel},
			Jmp{Label: n.ElseLabel},
		}

	case cfun.Goto:
		return []Instr{Jmp{Label: n.Label}}

	case cfun.TailCall:
		instrs := make([]Instr, 0, len(n.Args)+1)
		for i1, a1 := range n.Args {
			instrs = append(instrs, Movq{Src: siAtm(a1), Dst: Reg{Name: ParameterRegisters[i1]}})
		}
		instrs = append(instrs, TailJmp{Target: siAtm(n.Fun), NumArgs: len(n.Args)})
		return instrs

	default:
		panic(fmt.Sprintf("select-instructions (tail): unexpected node %T", e))
	}
}
