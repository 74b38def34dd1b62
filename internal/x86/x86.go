// Package x86 implements the pseudo-x86-64 intermediate representation and
// the six passes that lower a Cfun program down to printable GAS assembly:
// select-instructions, uncover-live, build-interference, allocate-registers,
// patch-instructions and print-x86 (spec.md §4.9-§4.14). Grounded on the
// teacher's backend/regfile and backend/lir packages, which play the same
// "final IR tier plus register allocation" role for LIR->ARM/RISC-V.
package x86

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Arg is an x86 operand: an immediate, a register, a pseudo-variable, a
// stack/root-stack dereference, or a RIP-relative symbol. Every concrete
// variant is a comparable struct, so Arg values can be used directly as map
// keys (the interference graph and home maps both do this) without a
// separate hashing step.
type Arg interface {
	isArg()
}

// Int is a signed 64-bit immediate.
type Int struct{ Val int64 }

// Reg names a physical general-purpose register ("rax", "r11", ...).
type Reg struct{ Name string }

// ByteReg names the low byte of a register ("al"), used only as the
// destination of Set.
type ByteReg struct{ Name string }

// Var is a scalar pseudo-variable, not yet assigned a physical home.
type Var struct{ Name string }

// VecVar is a Vector-typed pseudo-variable. It is never spilled to the
// regular stack: a spilled VecVar goes to the root stack, where the GC can
// find it. A VecVar live across a call interferes with every allocatable
// register and so always spills; one that is not may sit in any register.
type VecVar struct{ Name string }

// Deref is a memory operand Offset(%Reg).
type Deref struct {
	Offset int64
	Reg    string
}

// GlobalVal is a RIP-relative reference to a runtime-provided symbol.
type GlobalVal struct{ Name string }

// FunRef is a RIP-relative reference to a top-level function's code.
type FunRef struct{ Label string }

func (Int) isArg()       {}
func (Reg) isArg()       {}
func (ByteReg) isArg()   {}
func (Var) isArg()       {}
func (VecVar) isArg()    {}
func (Deref) isArg()     {}
func (GlobalVal) isArg() {}
func (FunRef) isArg()    {}

// Instr is one pseudo-x86-64 instruction.
type Instr interface {
	isInstr()
}

type Movq struct{ Src, Dst Arg }
type Addq struct{ Src, Dst Arg }
type Cmpq struct{ Src, Dst Arg }
type Movzbq struct{ Src, Dst Arg }
type Xorq struct{ Src, Dst Arg }
type Negq struct{ Dst Arg }
type Leaq struct{ Src, Dst Arg }

// Set stores the flag tested by Cc ("e", "l", "g", ...) into Dst, a ByteReg.
type Set struct {
	Cc  string
	Dst Arg
}

// Callq calls the named external symbol.
type Callq struct{ Label string }

// IndirectCallq calls the code pointer in Target; NumArgs records how many
// parameter registers carry arguments into the call. Uncover-live and
// build-interference do not read it.
type IndirectCallq struct {
	Target  Arg
	NumArgs int
}

type Retq struct{}
type Jmp struct{ Label string }

// JmpIf jumps to Label if the flags satisfy Cc, already a GAS
// condition-code suffix ("e", "l", ...) by the time select-instructions
// builds this node.
type JmpIf struct {
	Cc    string
	Label string
}

// TailJmp transfers control to Target in tail position; NumArgs mirrors
// IndirectCallq's.
type TailJmp struct {
	Target  Arg
	NumArgs int
}

func (Movq) isInstr()          {}
func (Addq) isInstr()          {}
func (Cmpq) isInstr()          {}
func (Movzbq) isInstr()        {}
func (Xorq) isInstr()          {}
func (Negq) isInstr()          {}
func (Leaq) isInstr()          {}
func (Set) isInstr()           {}
func (Callq) isInstr()         {}
func (IndirectCallq) isInstr() {}
func (Retq) isInstr()          {}
func (Jmp) isInstr()           {}
func (JmpIf) isInstr()         {}
func (TailJmp) isInstr()       {}

// Program is one function's pseudo-x86 body: a map from block label to its
// straight-line instruction list.
type Program struct {
	Blocks map[string][]Instr
}
