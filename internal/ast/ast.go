// Package ast defines the surface Rfun abstract syntax tree: the contract
// produced by the external textual parser (out of scope for this module, per
// spec.md §1/§6). Every Expr variant below is a sealed family dispatched by a
// type switch, never by open virtual dispatch, so that adding a new surface
// node kind forces every pass that type-switches over Expr to be revisited.
package ast

import "rfunc/internal/types"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Expr is the untyped surface expression sum type.
type Expr interface {
	isExpr()
}

// IntLit is an integer literal.
type IntLit struct {
	Val int64
}

// BoolLit is a boolean literal.
type BoolLit struct {
	Val bool
}

// Var is a reference to a let-bound variable, function parameter, or
// top-level function name.
type Var struct {
	Name string
}

// Prim is a primitive operator application. Op is one of "+", "neg", "not",
// "==", "<", "vector", "vectorRef", "vectorSet", or one of the derived
// operators ">" / ">=" / "<=" / "&&" / "||" that shrink later removes. The
// allocate and collect operators never appear at this tier; they only exist
// after expose-allocation.
type Prim struct {
	Op   string
	Args []Expr
}

// Let binds Var to Bound, then evaluates Body with the binding in scope.
type Let struct {
	Var   string
	Bound Expr
	Body  Expr
}

// If is a conditional expression.
type If struct {
	Test, Then, Else Expr
}

// Funcall applies Fun (a Var naming a top-level function, or any Fun-typed
// expression) to Args.
type Funcall struct {
	Fun  Expr
	Args []Expr
}

func (IntLit) isExpr()  {}
func (BoolLit) isExpr() {}
func (Var) isExpr()     {}
func (Prim) isExpr()    {}
func (Let) isExpr()     {}
func (If) isExpr()      {}
func (Funcall) isExpr() {}

// Param is a single (name, type) function parameter; the source annotates
// every parameter with its type, since Rfun has no type inference.
type Param struct {
	Name string
	Type types.RfunType
}

// Def is a top-level function definition.
type Def struct {
	Name       string
	Args       []Param
	OutputType types.RfunType
	Body       Expr
}

// Program is a whole Rfun compilation unit: a list of mutually-recursive
// top-level defs, plus the top-level body expression ("main").
type Program struct {
	Defs []Def
	Body Expr
}
