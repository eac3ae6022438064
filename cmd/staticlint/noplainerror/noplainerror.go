// Package noplainerror запрещает http.Error в пакете handlers:
// ответы API всегда идут в JSON-конверте.
package noplainerror

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer сообщает о вызовах net/http.Error в пакете handlers.
var Analyzer = &analysis.Analyzer{
	Name:     "noplainerror",
	Doc:      "reports http.Error calls in JSON handlers; use the envelope writer instead",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (any, error) {
	if pass.Pkg.Name() != "handlers" {
		return nil, nil
	}

	ins := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	ins.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return
		}
		fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
		if !ok || fn.Pkg() == nil {
			return
		}
		if fn.Pkg().Path() == "net/http" && fn.Name() == "Error" {
			pass.Reportf(call.Pos(), "http.Error writes text/plain; answer with the JSON envelope")
		}
	})
	return nil, nil
}
