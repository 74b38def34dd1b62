package x86

import (
	"fmt"
	"sort"
	"strings"

	"github.com/klauspost/asmfmt"
	"github.com/samber/lo"
)

// printArg renders one operand in GAS AT&T syntax. Var/VecVar should never
// reach here: allocate-registers replaces every occurrence with a physical
// home before patch-instructions and print-x86 run.
func printArg(a Arg) string {
	switch n := a.(type) {
	case Int:
		return fmt.Sprintf("$%d", n.Val)
	case Reg:
		return "%" + n.Name
	case ByteReg:
		return "%" + n.Name
	case Deref:
		return fmt.Sprintf("%d(%%%s)", n.Offset, n.Reg)
	case GlobalVal:
		return n.Name + "(%rip)"
	case FunRef:
		return n.Label + "(%rip)"
	case Var:
		panic(fmt.Sprintf("print-x86: unallocated variable %q reached printing", n.Name))
	case VecVar:
		panic(fmt.Sprintf("print-x86: unallocated vector variable %q reached printing", n.Name))
	default:
		panic(fmt.Sprintf("print-x86: unexpected arg %T", a))
	}
}

func prologue(name string, ap *AllocatedProgram) string {
	var b strings.Builder
	fmt.Fprintf(&b, ".globl %s\n", name)
	fmt.Fprintf(&b, "%s:\n", name)
	b.WriteString("\tpushq\t%rbp\n")
	b.WriteString("\tmovq\t%rsp, %rbp\n")
	b.WriteString("\tpushq\t%rbx\n")
	b.WriteString("\tpushq\t%r12\n")
	b.WriteString("\tpushq\t%r13\n")
	b.WriteString("\tpushq\t%r14\n")
	fmt.Fprintf(&b, "\tsubq\t$%d, %%rsp\n", ap.StackBytes)

	if name == "main" {
		fmt.Fprintf(&b, "\tmovq\t$%d, %%rdi\n", RootStackSize)
		fmt.Fprintf(&b, "\tmovq\t$%d, %%rsi\n", HeapSize)
		b.WriteString("\tcallq\tinitialize\n")
		b.WriteString("\tmovq\trootstack_begin(%rip), %r15\n")
		for i1 := 0; i1 < ap.RootStackSpills; i1++ {
			b.WriteString("\tmovq\t$0, (%r15)\n")
			b.WriteString("\taddq\t$8, %r15\n")
		}
	}

	fmt.Fprintf(&b, "\tjmp\t%s_start\n", name)
	return b.String()
}

func epilogue(name string, ap *AllocatedProgram) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s_conclusion:\n", name)
	if name == "main" {
		b.WriteString("\tmovq\t%rax, %rdi\n")
		b.WriteString("\tcallq\tprint_int\n")
		b.WriteString("\tmovq\t$0, %rax\n")
	}
	fmt.Fprintf(&b, "\taddq\t$%d, %%rsp\n", ap.StackBytes)
	b.WriteString("\tsubq\t$0, %r15\n")
	b.WriteString("\tpopq\t%r14\n")
	b.WriteString("\tpopq\t%r13\n")
	b.WriteString("\tpopq\t%r12\n")
	b.WriteString("\tpopq\t%rbx\n")
	b.WriteString("\tpopq\t%rbp\n")
	b.WriteString("\tretq\n")
	return b.String()
}

// bareEpilogue is the epilogue's register-restoring body only, without its
// label or trailing retq, for use inline before a TailJmp in a non-main
// function (spec.md §4.14's last paragraph).
func bareEpilogue(ap *AllocatedProgram) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\taddq\t$%d, %%rsp\n", ap.StackBytes)
	b.WriteString("\tsubq\t$0, %r15\n")
	b.WriteString("\tpopq\t%r14\n")
	b.WriteString("\tpopq\t%r13\n")
	b.WriteString("\tpopq\t%r12\n")
	b.WriteString("\tpopq\t%rbx\n")
	b.WriteString("\tpopq\t%rbp\n")
	return b.String()
}

func printInstr(name string, ap *AllocatedProgram, e Instr) string {
	switch n := e.(type) {
	case Movq:
		return fmt.Sprintf("\tmovq\t%s, %s\n", printArg(n.Src), printArg(n.Dst))
	case Addq:
		return fmt.Sprintf("\taddq\t%s, %s\n", printArg(n.Src), printArg(n.Dst))
	case Cmpq:
		return fmt.Sprintf("\tcmpq\t%s, %s\n", printArg(n.Src), printArg(n.Dst))
	case Movzbq:
		return fmt.Sprintf("\tmovzbq\t%s, %s\n", printArg(n.Src), printArg(n.Dst))
	case Xorq:
		return fmt.Sprintf("\txorq\t%s, %s\n", printArg(n.Src), printArg(n.Dst))
	case Negq:
		return fmt.Sprintf("\tnegq\t%s\n", printArg(n.Dst))
	case Leaq:
		return fmt.Sprintf("\tleaq\t%s, %s\n", printArg(n.Src), printArg(n.Dst))
	case Set:
		return fmt.Sprintf("\tset%s\t%s\n", n.Cc, printArg(n.Dst))
	case Callq:
		return fmt.Sprintf("\tcallq\t%s\n", n.Label)
	case IndirectCallq:
		return fmt.Sprintf("\tcallq\t*%s\n", printArg(n.Target))
	case Retq:
		return "\tretq\n"
	case Jmp:
		return fmt.Sprintf("\tjmp\t%s\n", n.Label)
	case JmpIf:
		return fmt.Sprintf("\tj%s\t%s\n", n.Cc, n.Label)
	case TailJmp:
		if name == "main" {
			return fmt.Sprintf("\tcallq\t*%s\n\tjmp\tmain_conclusion\n", printArg(n.Target))
		}
		return fmt.Sprintf("%s\tjmp\t*%s\n", bareEpilogue(ap), printArg(n.Target))
	default:
		panic(fmt.Sprintf("print-x86: unexpected instruction %T", e))
	}
}

func printFunc(name string, ap *AllocatedProgram) string {
	var b strings.Builder
	b.WriteString(prologue(name, ap))

	labels := make([]string, 0, len(ap.Program.Blocks))
	for label := range ap.Program.Blocks {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		fmt.Fprintf(&b, "%s:\n", label)
		for _, instr := range ap.Program.Blocks[label] {
			b.WriteString(printInstr(name, ap, instr))
		}
	}

	b.WriteString(epilogue(name, ap))
	return b.String()
}

// PrintX86 renders every function's allocated, patched program into one GAS
// assembly text, ordering functions deterministically and running the
// result through asmfmt for canonical indentation, per spec.md §4.14.
func PrintX86(programs map[string]*AllocatedProgram) (string, error) {
	names := lo.Keys(programs)
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(".text\n")
	for _, name := range names {
		b.WriteString(printFunc(name, programs[name]))
	}

	out, err := asmfmt.Format(strings.NewReader(b.String()))
	if err != nil {
		return "", fmt.Errorf("asmfmt: %w", err)
	}
	return string(out), nil
}
