// Package initorder defines an Analyzer that checks the order of the
// interrupt bring-up calls inside a function.
//
// # Analyzer initorder
//
// initorder: report interrupt lines unmasked before their handler state is
// ready
//
// Within one function the calls
//
//	src.ConfigureTrigger(edge)
//	src.EnableInterrupt()
//	cell.Install(cs, src)     // resource.Cell
//	core.SetVector(irq, h)
//	ctl.Unmask(irq)
//
// must appear in the order of the bring-up plan. A call that appears before
// one of its prerequisites present in the same function is reported, most
// importantly an Unmask ahead of the Install of the resource the handler
// borrows.
package initorder

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"

	"omibyte.io/exti/bringup"
)

const Doc = `report interrupt lines unmasked before their handler state is ready

Within one function, the bring-up calls ConfigureTrigger, EnableInterrupt,
resource.Cell.Install, SetVector and Unmask must appear in bring-up order.`

var Analyzer = &analysis.Analyzer{
	Name:     "initorder",
	Doc:      Doc,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// resourcePkg is the import path suffix of the package defining Cell.
const resourcePkg = "exti/resource"

var methods = map[string]bringup.Step{
	"ConfigureTrigger": bringup.ConfigureTrigger,
	"EnableInterrupt":  bringup.EnableSource,
	"Install":          bringup.InstallResource,
	"SetVector":        bringup.SetVector,
	"Unmask":           bringup.Unmask,
}

type call struct {
	step bringup.Step
	pos  token.Pos
}

func run(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	plan := bringup.Default()

	nodeFilter := []ast.Node{
		(*ast.FuncDecl)(nil),
	}
	inspect.Preorder(nodeFilter, func(n ast.Node) {
		decl := n.(*ast.FuncDecl)
		if decl.Body == nil {
			return
		}

		var calls []call
		ast.Inspect(decl.Body, func(n ast.Node) bool {
			if c, ok := n.(*ast.CallExpr); ok {
				if step, ok := stepOf(pass.TypesInfo, c); ok {
					calls = append(calls, call{step: step, pos: c.Pos()})
				}
			}
			return true
		})

		first := map[bringup.Step]token.Pos{}
		for _, c := range calls {
			if _, ok := first[c.step]; !ok {
				first[c.step] = c.pos
			}
		}
		for _, c := range calls {
			var missing []string
			for _, prev := range plan.Prerequisites(c.step) {
				if pos, ok := first[prev]; ok && pos > c.pos {
					missing = append(missing, string(prev))
				}
			}
			if len(missing) > 0 {
				pass.Reportf(c.pos, "%s before %s", c.step, strings.Join(missing, ", "))
			}
		}
	})
	return nil, nil
}

// stepOf maps a method call to the bring-up step it performs.
func stepOf(info *types.Info, c *ast.CallExpr) (bringup.Step, bool) {
	fn, ok := typeutil.Callee(info, c).(*types.Func)
	if !ok {
		return "", false
	}
	sig := fn.Type().(*types.Signature)
	if sig.Recv() == nil {
		return "", false
	}
	step, ok := methods[fn.Name()]
	if !ok {
		return "", false
	}
	if step == bringup.InstallResource && !isCell(sig.Recv().Type()) {
		return "", false
	}
	return step, true
}

func isCell(t types.Type) bool {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	obj := named.Origin().Obj()
	return obj.Name() == "Cell" && obj.Pkg() != nil && strings.HasSuffix(obj.Pkg().Path(), resourcePkg)
}
