// Package typecheck implements §4.1: it assigns a type to every node of a
// surface Rfun program and rejects ill-typed programs. Any type mismatch is
// fatal; the compiler aborts with a diagnostic naming the offending node,
// per spec.md §7.
package typecheck

import (
	"github.com/hashicorp/go-multierror"

	"rfunc/internal/ast"
	"rfunc/internal/types"
	"rfunc/internal/typed"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// env maps in-scope names to their RfunType.
type env map[string]types.RfunType

// ---------------------
// ----- Constants -----
// ---------------------

// primArgTypes gives the fixed argument types of every fixed-arity primitive
// that isn't handled specially (==, vector, vectorRef, vectorSet).
var primArgTypes = map[string][]types.RfunType{
	"+":   {types.IntT(), types.IntT()},
	"not": {types.BoolT()},
	"neg": {types.IntT()},
	"||":  {types.BoolT(), types.BoolT()},
	"&&":  {types.BoolT(), types.BoolT()},
	">":   {types.IntT(), types.IntT()},
	">=":  {types.IntT(), types.IntT()},
	"<":   {types.IntT(), types.IntT()},
	"<=":  {types.IntT(), types.IntT()},
}

// primOutputTypes gives the fixed result type of the same primitives.
var primOutputTypes = map[string]types.RfunType{
	"+":   types.IntT(),
	"not": types.BoolT(),
	"neg": types.IntT(),
	"||":  types.BoolT(),
	"&&":  types.BoolT(),
	">":   types.BoolT(),
	">=":  types.BoolT(),
	"<":   types.BoolT(),
	"<=":  types.BoolT(),
}

// ---------------------
// ----- functions -----
// ---------------------

// Check typechecks p, returning the typed program if, and only if, every
// node is well typed.
func Check(p *ast.Program) (*typed.Program, error) {
	global := env{}
	for _, d1 := range p.Defs {
		argTypes := make([]types.RfunType, len(d1.Args))
		for i1, a1 := range d1.Args {
			argTypes[i1] = a1.Type
		}
		global[d1.Name] = types.FunT(argTypes, d1.OutputType)
	}

	var errs *multierror.Error
	newDefs := make([]typed.Def, 0, len(p.Defs))
	for _, d1 := range p.Defs {
		nd, err := checkDef(d1, global)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		newDefs = append(newDefs, nd)
	}

	_, newBody, err := checkExpr(p.Body, env{}, global)
	if err != nil {
		errs = multierror.Append(errs, err)
	}

	if errs.ErrorOrNil() != nil {
		return nil, errs.ErrorOrNil()
	}
	return &typed.Program{Defs: newDefs, Body: newBody}, nil
}

// checkDef typechecks a single top-level definition. The body is checked
// under an environment containing only its parameters, per spec.md §4.1.
func checkDef(d ast.Def, global env) (typed.Def, error) {
	local := env{}
	args := make([]typed.Param, len(d.Args))
	for i1, a1 := range d.Args {
		local[a1.Name] = a1.Type
		args[i1] = typed.Param{Name: a1.Name, Type: a1.Type}
	}

	bodyType, newBody, err := checkExpr(d.Body, local, global)
	if err != nil {
		return typed.Def{}, err
	}
	if !bodyType.Equal(d.OutputType) {
		return typed.Def{}, newError(describe(d.Body),
			"function %q declares return type %s but body has type %s", d.Name, d.OutputType, bodyType)
	}
	return typed.Def{Name: d.Name, Args: args, OutputType: d.OutputType, Body: newBody}, nil
}

// lookup resolves name in local first, falling back to the top-level env.
func lookup(name string, local, global env) (types.RfunType, bool) {
	if t, ok := local[name]; ok {
		return t, true
	}
	t, ok := global[name]
	return t, ok
}

// checkExpr typechecks e, returning its type and its typed-tier translation.
func checkExpr(e ast.Expr, local, global env) (types.RfunType, typed.ExprT, error) {
	switch n := e.(type) {
	case ast.IntLit:
		return types.IntT(), typed.IntLit{Val: n.Val}, nil

	case ast.BoolLit:
		return types.BoolT(), typed.BoolLit{Val: n.Val}, nil

	case ast.Var:
		t, ok := lookup(n.Name, local, global)
		if !ok {
			return types.RfunType{}, nil, newError(n.Name, "undefined variable %q", n.Name)
		}
		return t, typed.Var{Name: n.Name, Typ: t}, nil

	case ast.Prim:
		return checkPrim(n, local, global)

	case ast.Let:
		t1, newBound, err := checkExpr(n.Bound, local, global)
		if err != nil {
			return types.RfunType{}, nil, err
		}
		inner := env{}
		for k, v := range local {
			inner[k] = v
		}
		inner[n.Var] = t1
		t2, newBody, err := checkExpr(n.Body, inner, global)
		if err != nil {
			return types.RfunType{}, nil, err
		}
		return t2, typed.Let{Var: n.Var, Bound: newBound, Body: newBody, Typ: t2}, nil

	case ast.If:
		t1, newTest, err := checkExpr(n.Test, local, global)
		if err != nil {
			return types.RfunType{}, nil, err
		}
		if !t1.Equal(types.BoolT()) {
			return types.RfunType{}, nil, newError(describe(n.Test), "if test must be Bool, got %s", t1)
		}
		t2, newThen, err := checkExpr(n.Then, local, global)
		if err != nil {
			return types.RfunType{}, nil, err
		}
		t3, newElse, err := checkExpr(n.Else, local, global)
		if err != nil {
			return types.RfunType{}, nil, err
		}
		if !t2.Equal(t3) {
			return types.RfunType{}, nil, newError(describe(n), "if arms have mismatched types %s and %s", t2, t3)
		}
		return t2, typed.If{Test: newTest, Then: newThen, Else: newElse, Typ: t2}, nil

	case ast.Funcall:
		return checkFuncall(n, local, global)

	default:
		return types.RfunType{}, nil, newError("<unknown>", "unexpected surface node %T", e)
	}
}

// checkPrim typechecks a primitive application.
func checkPrim(n ast.Prim, local, global env) (types.RfunType, typed.ExprT, error) {
	switch n.Op {
	case "==":
		if len(n.Args) != 2 {
			return types.RfunType{}, nil, newError(describe(n), "== takes 2 arguments, got %d", len(n.Args))
		}
		t1, e1, err := checkExpr(n.Args[0], local, global)
		if err != nil {
			return types.RfunType{}, nil, err
		}
		t2, e2, err := checkExpr(n.Args[1], local, global)
		if err != nil {
			return types.RfunType{}, nil, err
		}
		if !t1.Equal(t2) {
			return types.RfunType{}, nil, newError(describe(n), "== requires operands of equal type, got %s and %s", t1, t2)
		}
		return types.BoolT(), typed.Prim{Op: "==", Args: []typed.ExprT{e1, e2}, Typ: types.BoolT()}, nil

	case "vector":
		newArgs := make([]typed.ExprT, len(n.Args))
		elemTypes := make([]types.RfunType, len(n.Args))
		for i1, a1 := range n.Args {
			t, e, err := checkExpr(a1, local, global)
			if err != nil {
				return types.RfunType{}, nil, err
			}
			newArgs[i1] = e
			elemTypes[i1] = t
		}
		t := types.VectorT(elemTypes...)
		return t, typed.Prim{Op: "vector", Args: newArgs, Typ: t}, nil

	case "vectorRef":
		if len(n.Args) != 2 {
			return types.RfunType{}, nil, newError(describe(n), "vectorRef takes 2 arguments, got %d", len(n.Args))
		}
		t1, e1, err := checkExpr(n.Args[0], local, global)
		if err != nil {
			return types.RfunType{}, nil, err
		}
		idxLit, ok := n.Args[1].(ast.IntLit)
		if !ok {
			return types.RfunType{}, nil, newError(describe(n), "vectorRef index must be an integer literal")
		}
		if t1.Kind != types.Vector {
			return types.RfunType{}, nil, newError(describe(n), "vectorRef target must be a Vector, got %s", t1)
		}
		if idxLit.Val < 0 || int(idxLit.Val) >= len(t1.Elems) {
			return types.RfunType{}, nil, newError(describe(n), "vectorRef index %d out of range for %s", idxLit.Val, t1)
		}
		elemT := t1.Elems[idxLit.Val]
		return elemT, typed.Prim{
			Op:   "vectorRef",
			Args: []typed.ExprT{e1, typed.IntLit{Val: idxLit.Val}},
			Typ:  elemT,
		}, nil

	case "vectorSet":
		if len(n.Args) != 3 {
			return types.RfunType{}, nil, newError(describe(n), "vectorSet takes 3 arguments, got %d", len(n.Args))
		}
		t1, e1, err := checkExpr(n.Args[0], local, global)
		if err != nil {
			return types.RfunType{}, nil, err
		}
		idxLit, ok := n.Args[1].(ast.IntLit)
		if !ok {
			return types.RfunType{}, nil, newError(describe(n), "vectorSet index must be an integer literal")
		}
		if t1.Kind != types.Vector {
			return types.RfunType{}, nil, newError(describe(n), "vectorSet target must be a Vector, got %s", t1)
		}
		if idxLit.Val < 0 || int(idxLit.Val) >= len(t1.Elems) {
			return types.RfunType{}, nil, newError(describe(n), "vectorSet index %d out of range for %s", idxLit.Val, t1)
		}
		t3, e3, err := checkExpr(n.Args[2], local, global)
		if err != nil {
			return types.RfunType{}, nil, err
		}
		elemT := t1.Elems[idxLit.Val]
		if !elemT.Equal(t3) {
			return types.RfunType{}, nil, newError(describe(n), "vectorSet element type %s does not match stored type %s", t3, elemT)
		}
		return types.VoidT(), typed.Prim{
			Op:   "vectorSet",
			Args: []typed.ExprT{e1, typed.IntLit{Val: idxLit.Val}, e3},
			Typ:  types.VoidT(),
		}, nil

	default:
		argTypes, ok := primArgTypes[n.Op]
		if !ok {
			return types.RfunType{}, nil, newError(describe(n), "unknown primitive operator %q", n.Op)
		}
		if len(n.Args) != len(argTypes) {
			return types.RfunType{}, nil, newError(describe(n), "%s takes %d arguments, got %d", n.Op, len(argTypes), len(n.Args))
		}
		newArgs := make([]typed.ExprT, len(n.Args))
		for i1, a1 := range n.Args {
			t, e, err := checkExpr(a1, local, global)
			if err != nil {
				return types.RfunType{}, nil, err
			}
			if !t.Equal(argTypes[i1]) {
				return types.RfunType{}, nil, newError(describe(n),
					"%s argument %d must have type %s, got %s", n.Op, i1, argTypes[i1], t)
			}
			newArgs[i1] = e
		}
		outT := primOutputTypes[n.Op]
		return outT, typed.Prim{Op: n.Op, Args: newArgs, Typ: outT}, nil
	}
}

// checkFuncall typechecks a function call. The canonical rule (per spec.md
// §9's Open Question resolution) is: the callee expression must have Fun
// type, and each argument's type must equal the corresponding declared
// parameter type — nothing more.
func checkFuncall(n ast.Funcall, local, global env) (types.RfunType, typed.ExprT, error) {
	tFun, newFun, err := checkExpr(n.Fun, local, global)
	if err != nil {
		return types.RfunType{}, nil, err
	}
	if tFun.Kind != types.Fun {
		return types.RfunType{}, nil, newError(describe(n.Fun), "callee is not a function, got %s", tFun)
	}
	if len(n.Args) != len(tFun.Args) {
		return types.RfunType{}, nil, newError(describe(n), "call expects %d arguments, got %d", len(tFun.Args), len(n.Args))
	}
	newArgs := make([]typed.ExprT, len(n.Args))
	for i1, a1 := range n.Args {
		t, e, err := checkExpr(a1, local, global)
		if err != nil {
			return types.RfunType{}, nil, err
		}
		if !t.Equal(tFun.Args[i1]) {
			return types.RfunType{}, nil, newError(describe(a1),
				"call argument %d must have type %s, got %s", i1, tFun.Args[i1], t)
		}
		newArgs[i1] = e
	}
	return *tFun.Ret, typed.Funcall{Fun: newFun, Args: newArgs, Typ: *tFun.Ret}, nil
}
