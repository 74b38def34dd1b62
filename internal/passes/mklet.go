package passes

import (
	"rfunc/internal/typed"
	"rfunc/internal/util"
)

// mkLet builds a nested Let expression from an insertion-ordered list of
// bindings, wrapping body in the innermost position. The first binding
// collected ends up as the outermost Let, matching mk_let's reversed-wrap
// order in the original algorithm.
func mkLet(bindings *util.Bindings, body typed.ExprT) typed.ExprT {
	pairs := bindings.Pairs()
	result := body
	for i1 := len(pairs) - 1; i1 >= 0; i1-- {
		rhs := pairs[i1].V.(typed.ExprT)
		result = typed.Let{Var: pairs[i1].Name, Bound: rhs, Body: result, Typ: result.Type()}
	}
	return result
}
