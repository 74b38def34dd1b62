package x86

// ---------------------
// ----- Constants -----
// ---------------------

// ParameterRegisters is the System V AMD64 integer argument-passing order
// (spec.md §6); at most six arguments may pass in registers, which is why
// limit-functions exists.
var ParameterRegisters = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

// CallerSavedRegisters are the caller-saved registers available for general
// allocation. %rax is excluded: patch-instructions and the call/tail-call
// lowering both reserve it as a scratch/return register. %r11 is excluded:
// select-instructions uses it as the scratch register for vector field
// access.
var CallerSavedRegisters = []string{"rdx", "rcx", "rsi", "rdi", "r8", "r9", "r10"}

// CalleeSavedRegisters are the callee-saved registers available for general
// allocation. %rbp is excluded (frame pointer) and %r15 is excluded (the
// reserved root-stack pointer).
var CalleeSavedRegisters = []string{"rbx", "r12", "r13", "r14"}

// RootStackSize and HeapSize are the byte sizes passed to the runtime's
// initialize entry point at main's prologue.
const (
	RootStackSize = 1 << 16
	HeapSize      = 1 << 16
)
