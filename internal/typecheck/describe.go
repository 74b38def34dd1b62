package typecheck

import (
	"fmt"
	"strings"

	"rfunc/internal/ast"
)

// describe renders a short textual form of a surface expression for use in
// diagnostics, naming the offending node per spec.md §7.
func describe(e ast.Expr) string {
	switch n := e.(type) {
	case ast.IntLit:
		return fmt.Sprintf("%d", n.Val)
	case ast.BoolLit:
		return fmt.Sprintf("%t", n.Val)
	case ast.Var:
		return n.Name
	case ast.Prim:
		args := make([]string, len(n.Args))
		for i1, a1 := range n.Args {
			args[i1] = describe(a1)
		}
		return fmt.Sprintf("(%s %s)", n.Op, strings.Join(args, " "))
	case ast.Let:
		return fmt.Sprintf("(let ([%s %s]) ...)", n.Var, describe(n.Bound))
	case ast.If:
		return fmt.Sprintf("(if %s ...)", describe(n.Test))
	case ast.Funcall:
		return fmt.Sprintf("(%s ...)", describe(n.Fun))
	default:
		return "<unknown node>"
	}
}
