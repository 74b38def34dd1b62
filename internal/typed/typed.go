// Package typed defines RfunExpT, the typed Rfun intermediate
// representation produced by typecheck and rebuilt as a new tree by every
// subsequent source-to-source pass (shrink, uniquify, reveal-functions,
// limit-functions, expose-allocation, remove-complex-operands). Every node
// carries its result type, set once by typecheck and never altered
// afterwards except by passes that introduce brand new nodes (which compute
// the type themselves).
package typed

import "rfunc/internal/types"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// ExprT is the typed expression sum type.
type ExprT interface {
	isExprT()
	Type() types.RfunType
}

// IntLit is an integer literal, always Int-typed.
type IntLit struct {
	Val int64
}

// BoolLit is a boolean literal, always Bool-typed.
type BoolLit struct {
	Val bool
}

// VoidLit is the unit value, always Void-typed. Introduced only by
// expose-allocation (the "no collection needed" branch of the GC check);
// typecheck gives vectorSet a Void-typed Prim, not a VoidLit.
type VoidLit struct{}

// Var is a reference to a let-bound variable or function parameter.
type Var struct {
	Name string
	Typ  types.RfunType
}

// GlobalVal labels a runtime-provided symbol (free_ptr, fromspace_end,
// rootstack_begin). Always Int-typed. Introduced only by expose-allocation.
type GlobalVal struct {
	Name string
}

// Prim is a primitive operator application. Op ranges over "+", "neg", "not",
// "==", "<", "vector", "vectorRef", "vectorSet", plus "allocate" and
// "collect" once expose-allocation has run.
type Prim struct {
	Op   string
	Args []ExprT
	Typ  types.RfunType
}

// Let binds Var to Bound, then evaluates Body with the binding in scope.
type Let struct {
	Var   string
	Bound ExprT
	Body  ExprT
	Typ   types.RfunType // Equal to Body.Type().
}

// If is a conditional expression used as a value.
type If struct {
	Test, Then, Else ExprT
	Typ              types.RfunType
}

// Funcall applies Fun to Args.
type Funcall struct {
	Fun  ExprT
	Args []ExprT
	Typ  types.RfunType
}

// FunRef names a top-level function as a first-class, code-pointer value.
// Introduced by reveal-functions from a Var that resolves to a top-level
// function name.
type FunRef struct {
	Name string
	Typ  types.RfunType
}

func (IntLit) isExprT()    {}
func (BoolLit) isExprT()   {}
func (VoidLit) isExprT()   {}
func (Var) isExprT()       {}
func (GlobalVal) isExprT() {}
func (Prim) isExprT()      {}
func (Let) isExprT()       {}
func (If) isExprT()        {}
func (Funcall) isExprT()   {}
func (FunRef) isExprT()    {}

func (IntLit) Type() types.RfunType    { return types.IntT() }
func (BoolLit) Type() types.RfunType   { return types.BoolT() }
func (VoidLit) Type() types.RfunType   { return types.VoidT() }
func (v Var) Type() types.RfunType     { return v.Typ }
func (GlobalVal) Type() types.RfunType { return types.IntT() }
func (p Prim) Type() types.RfunType    { return p.Typ }
func (l Let) Type() types.RfunType     { return l.Typ }
func (i If) Type() types.RfunType      { return i.Typ }
func (f Funcall) Type() types.RfunType { return f.Typ }
func (f FunRef) Type() types.RfunType  { return f.Typ }

// Param is a single (name, type) function parameter.
type Param struct {
	Name string
	Type types.RfunType
}

// Def is a top-level typed function definition.
type Def struct {
	Name       string
	Args       []Param
	OutputType types.RfunType
	Body       ExprT
}

// Program is a typed Rfun compilation unit.
type Program struct {
	Defs []Def
	Body ExprT
}
