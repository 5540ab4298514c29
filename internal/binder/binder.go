// Package binder computes the defines/uses of a cell's expression for
// diagnostic annotation. It does not build or maintain a dependency
// graph: the front-ends simply re-evaluate every cell top-to-bottom,
// so this is advisory only.
package binder

import "quanta/internal/ast"

// Bind returns the symbol(s) an expression defines (at most one, for
// an Assign or Function) and the set of symbols it reads.
func Bind(expr ast.Expr) (defines []string, uses []string) {
	useSet := make(map[string]struct{})
	switch e := expr.(type) {
	case *ast.Assign:
		defines = append(defines, e.Name)
		collectUses(e.Expr, useSet)
	case *ast.Function:
		defines = append(defines, e.Name)
		collectUses(e, useSet)
	default:
		collectUses(expr, useSet)
	}
	for name := range useSet {
		uses = append(uses, name)
	}
	return defines, uses
}

func collectUses(expr ast.Expr, out map[string]struct{}) {
	switch e := expr.(type) {
	case *ast.Ident:
		out[e.Name] = struct{}{}
	case *ast.Unary:
		collectUses(e.Expr, out)
	case *ast.Binary:
		collectUses(e.Left, out)
		collectUses(e.Right, out)
	case *ast.Call:
		collectUses(e.Callee, out)
		for _, a := range e.Args {
			collectUses(a, out)
		}
	case *ast.Array:
		for _, el := range e.Elements {
			collectUses(el, out)
		}
	case *ast.Record:
		for _, f := range e.Fields {
			collectUses(f.Value, out)
		}
	case *ast.Assign:
		collectUses(e.Expr, out)
	case *ast.Function:
		collectUses(e.Body, out)
		for _, p := range e.Params {
			delete(out, p)
		}
	}
}
