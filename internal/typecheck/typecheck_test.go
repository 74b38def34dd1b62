package typecheck

import (
	"testing"

	"rfunc/internal/ast"
	"rfunc/internal/types"
)

func TestCheckLiterals(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expr
		want types.RfunType
	}{
		{"int", ast.IntLit{Val: 42}, types.IntT()},
		{"bool", ast.BoolLit{Val: true}, types.BoolT()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &ast.Program{Body: tt.expr}
			got, err := Check(p)
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if !got.Body.Type().Equal(tt.want) {
				t.Errorf("Body.Type() = %s, want %s", got.Body.Type(), tt.want)
			}
		})
	}
}

func TestCheckPrimArithmetic(t *testing.T) {
	expr := ast.Prim{Op: "+", Args: []ast.Expr{ast.IntLit{Val: 1}, ast.IntLit{Val: 2}}}
	p := &ast.Program{Body: expr}
	got, err := Check(p)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !got.Body.Type().Equal(types.IntT()) {
		t.Errorf("Body.Type() = %s, want Int", got.Body.Type())
	}
}

func TestCheckPrimArityMismatch(t *testing.T) {
	expr := ast.Prim{Op: "+", Args: []ast.Expr{ast.IntLit{Val: 1}}}
	p := &ast.Program{Body: expr}
	if _, err := Check(p); err == nil {
		t.Fatal("expected an arity error, got nil")
	}
}

func TestCheckPrimTypeMismatch(t *testing.T) {
	expr := ast.Prim{Op: "+", Args: []ast.Expr{ast.IntLit{Val: 1}, ast.BoolLit{Val: true}}}
	p := &ast.Program{Body: expr}
	if _, err := Check(p); err == nil {
		t.Fatal("expected a type mismatch error, got nil")
	}
}

func TestCheckEquality(t *testing.T) {
	expr := ast.Prim{Op: "==", Args: []ast.Expr{ast.IntLit{Val: 1}, ast.IntLit{Val: 1}}}
	p := &ast.Program{Body: expr}
	got, err := Check(p)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !got.Body.Type().Equal(types.BoolT()) {
		t.Errorf("Body.Type() = %s, want Bool", got.Body.Type())
	}
}

func TestCheckEqualityMismatchedOperandTypes(t *testing.T) {
	expr := ast.Prim{Op: "==", Args: []ast.Expr{ast.IntLit{Val: 1}, ast.BoolLit{Val: true}}}
	p := &ast.Program{Body: expr}
	if _, err := Check(p); err == nil {
		t.Fatal("expected an error, got nil")
	}
}

func TestCheckLet(t *testing.T) {
	expr := ast.Let{
		Var:   "x",
		Bound: ast.IntLit{Val: 10},
		Body:  ast.Prim{Op: "+", Args: []ast.Expr{ast.Var{Name: "x"}, ast.IntLit{Val: 1}}},
	}
	p := &ast.Program{Body: expr}
	got, err := Check(p)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !got.Body.Type().Equal(types.IntT()) {
		t.Errorf("Body.Type() = %s, want Int", got.Body.Type())
	}
}

func TestCheckLetUndefinedVariable(t *testing.T) {
	expr := ast.Let{
		Var:   "x",
		Bound: ast.IntLit{Val: 10},
		Body:  ast.Var{Name: "y"},
	}
	p := &ast.Program{Body: expr}
	if _, err := Check(p); err == nil {
		t.Fatal("expected an undefined variable error, got nil")
	}
}

func TestCheckIf(t *testing.T) {
	expr := ast.If{
		Test: ast.BoolLit{Val: true},
		Then: ast.IntLit{Val: 1},
		Else: ast.IntLit{Val: 2},
	}
	p := &ast.Program{Body: expr}
	got, err := Check(p)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !got.Body.Type().Equal(types.IntT()) {
		t.Errorf("Body.Type() = %s, want Int", got.Body.Type())
	}
}

func TestCheckIfNonBoolTest(t *testing.T) {
	expr := ast.If{
		Test: ast.IntLit{Val: 1},
		Then: ast.IntLit{Val: 1},
		Else: ast.IntLit{Val: 2},
	}
	p := &ast.Program{Body: expr}
	if _, err := Check(p); err == nil {
		t.Fatal("expected a non-Bool test error, got nil")
	}
}

func TestCheckIfMismatchedArms(t *testing.T) {
	expr := ast.If{
		Test: ast.BoolLit{Val: true},
		Then: ast.IntLit{Val: 1},
		Else: ast.BoolLit{Val: false},
	}
	p := &ast.Program{Body: expr}
	if _, err := Check(p); err == nil {
		t.Fatal("expected a mismatched-arms error, got nil")
	}
}

func TestCheckVector(t *testing.T) {
	expr := ast.Prim{Op: "vector", Args: []ast.Expr{ast.IntLit{Val: 1}, ast.BoolLit{Val: true}}}
	p := &ast.Program{Body: expr}
	got, err := Check(p)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	want := types.VectorT(types.IntT(), types.BoolT())
	if !got.Body.Type().Equal(want) {
		t.Errorf("Body.Type() = %s, want %s", got.Body.Type(), want)
	}
}

func TestCheckVectorRef(t *testing.T) {
	expr := ast.Prim{
		Op: "vectorRef",
		Args: []ast.Expr{
			ast.Prim{Op: "vector", Args: []ast.Expr{ast.IntLit{Val: 1}, ast.BoolLit{Val: true}}},
			ast.IntLit{Val: 1},
		},
	}
	p := &ast.Program{Body: expr}
	got, err := Check(p)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !got.Body.Type().Equal(types.BoolT()) {
		t.Errorf("Body.Type() = %s, want Bool", got.Body.Type())
	}
}

func TestCheckVectorRefNonLiteralIndex(t *testing.T) {
	expr := ast.Prim{
		Op: "vectorRef",
		Args: []ast.Expr{
			ast.Prim{Op: "vector", Args: []ast.Expr{ast.IntLit{Val: 1}}},
			ast.Var{Name: "i"},
		},
	}
	p := &ast.Program{Body: expr}
	if _, err := Check(p); err == nil {
		t.Fatal("expected a non-literal-index error, got nil")
	}
}

func TestCheckVectorRefOutOfRange(t *testing.T) {
	expr := ast.Prim{
		Op: "vectorRef",
		Args: []ast.Expr{
			ast.Prim{Op: "vector", Args: []ast.Expr{ast.IntLit{Val: 1}}},
			ast.IntLit{Val: 5},
		},
	}
	p := &ast.Program{Body: expr}
	if _, err := Check(p); err == nil {
		t.Fatal("expected an out-of-range error, got nil")
	}
}

func TestCheckVectorSet(t *testing.T) {
	expr := ast.Prim{
		Op: "vectorSet",
		Args: []ast.Expr{
			ast.Prim{Op: "vector", Args: []ast.Expr{ast.IntLit{Val: 1}}},
			ast.IntLit{Val: 0},
			ast.IntLit{Val: 99},
		},
	}
	p := &ast.Program{Body: expr}
	got, err := Check(p)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !got.Body.Type().Equal(types.VoidT()) {
		t.Errorf("Body.Type() = %s, want Void", got.Body.Type())
	}
}

func TestCheckVectorSetWrongElementType(t *testing.T) {
	expr := ast.Prim{
		Op: "vectorSet",
		Args: []ast.Expr{
			ast.Prim{Op: "vector", Args: []ast.Expr{ast.IntLit{Val: 1}}},
			ast.IntLit{Val: 0},
			ast.BoolLit{Val: true},
		},
	}
	p := &ast.Program{Body: expr}
	if _, err := Check(p); err == nil {
		t.Fatal("expected an element type mismatch error, got nil")
	}
}

func TestCheckDefsAndFuncall(t *testing.T) {
	p := &ast.Program{
		Defs: []ast.Def{
			{
				Name:       "add1",
				Args:       []ast.Param{{Name: "x", Type: types.IntT()}},
				OutputType: types.IntT(),
				Body:       ast.Prim{Op: "+", Args: []ast.Expr{ast.Var{Name: "x"}, ast.IntLit{Val: 1}}},
			},
		},
		Body: ast.Funcall{
			Fun:  ast.Var{Name: "add1"},
			Args: []ast.Expr{ast.IntLit{Val: 41}},
		},
	}
	got, err := Check(p)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !got.Body.Type().Equal(types.IntT()) {
		t.Errorf("Body.Type() = %s, want Int", got.Body.Type())
	}
}

func TestCheckMutualRecursion(t *testing.T) {
	// isEven(x) calls isOdd(x), isOdd(x) calls isEven(x): well-typed mutual
	// recursion, exercising the two-pass top-level environment.
	p := &ast.Program{
		Defs: []ast.Def{
			{
				Name:       "isEven",
				Args:       []ast.Param{{Name: "x", Type: types.IntT()}},
				OutputType: types.BoolT(),
				Body: ast.If{
					Test: ast.Prim{Op: "==", Args: []ast.Expr{ast.Var{Name: "x"}, ast.IntLit{Val: 0}}},
					Then: ast.BoolLit{Val: true},
					Else: ast.Funcall{Fun: ast.Var{Name: "isOdd"}, Args: []ast.Expr{ast.Var{Name: "x"}}},
				},
			},
			{
				Name:       "isOdd",
				Args:       []ast.Param{{Name: "x", Type: types.IntT()}},
				OutputType: types.BoolT(),
				Body: ast.If{
					Test: ast.Prim{Op: "==", Args: []ast.Expr{ast.Var{Name: "x"}, ast.IntLit{Val: 0}}},
					Then: ast.BoolLit{Val: false},
					Else: ast.Funcall{Fun: ast.Var{Name: "isEven"}, Args: []ast.Expr{ast.Var{Name: "x"}}},
				},
			},
		},
		Body: ast.Funcall{Fun: ast.Var{Name: "isEven"}, Args: []ast.Expr{ast.IntLit{Val: 4}}},
	}
	if _, err := Check(p); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
}

func TestCheckFuncallArityMismatch(t *testing.T) {
	p := &ast.Program{
		Defs: []ast.Def{
			{
				Name:       "add1",
				Args:       []ast.Param{{Name: "x", Type: types.IntT()}},
				OutputType: types.IntT(),
				Body:       ast.Prim{Op: "+", Args: []ast.Expr{ast.Var{Name: "x"}, ast.IntLit{Val: 1}}},
			},
		},
		Body: ast.Funcall{Fun: ast.Var{Name: "add1"}, Args: []ast.Expr{ast.IntLit{Val: 1}, ast.IntLit{Val: 2}}},
	}
	if _, err := Check(p); err == nil {
		t.Fatal("expected an arity mismatch error, got nil")
	}
}

func TestCheckFuncallArgTypeMismatch(t *testing.T) {
	p := &ast.Program{
		Defs: []ast.Def{
			{
				Name:       "add1",
				Args:       []ast.Param{{Name: "x", Type: types.IntT()}},
				OutputType: types.IntT(),
				Body:       ast.Prim{Op: "+", Args: []ast.Expr{ast.Var{Name: "x"}, ast.IntLit{Val: 1}}},
			},
		},
		Body: ast.Funcall{Fun: ast.Var{Name: "add1"}, Args: []ast.Expr{ast.BoolLit{Val: true}}},
	}
	if _, err := Check(p); err == nil {
		t.Fatal("expected an argument type mismatch error, got nil")
	}
}

func TestCheckFuncallOnNonFunction(t *testing.T) {
	p := &ast.Program{
		Body: ast.Funcall{Fun: ast.IntLit{Val: 1}, Args: nil},
	}
	if _, err := Check(p); err == nil {
		t.Fatal("expected a non-function callee error, got nil")
	}
}

func TestCheckDefBodyTypeMismatch(t *testing.T) {
	p := &ast.Program{
		Defs: []ast.Def{
			{
				Name:       "bad",
				Args:       nil,
				OutputType: types.BoolT(),
				Body:       ast.IntLit{Val: 1},
			},
		},
		Body: ast.IntLit{Val: 0},
	}
	if _, err := Check(p); err == nil {
		t.Fatal("expected a declared-return-type mismatch error, got nil")
	}
}

func TestCheckAggregatesErrorsAcrossDefs(t *testing.T) {
	p := &ast.Program{
		Defs: []ast.Def{
			{Name: "bad1", OutputType: types.BoolT(), Body: ast.IntLit{Val: 1}},
			{Name: "bad2", OutputType: types.IntT(), Body: ast.BoolLit{Val: true}},
		},
		Body: ast.IntLit{Val: 0},
	}
	_, err := Check(p)
	if err == nil {
		t.Fatal("expected aggregated errors, got nil")
	}
}
