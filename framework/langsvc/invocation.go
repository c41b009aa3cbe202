package langsvc

import (
	"github.com/lexcodex/pqlsp/framework/ast"
	"github.com/lexcodex/pqlsp/framework/inspection"
)

// SignatureContext names the function being called at the cursor and, when
// the cursor is inside the argument list, which argument it sits in.
type SignatureContext struct {
	FunctionName    string `json:"functionName"`
	ArgumentOrdinal *int   `json:"argumentOrdinal,omitempty"`
}

// CurrentInvokeExpression returns the innermost inspected node when it is an
// invocation. Outer nodes are never considered.
func CurrentInvokeExpression(inspected *inspection.Inspected) (*ast.InvokeExpression, bool) {
	if inspected == nil || len(inspected.Nodes) == 0 {
		return nil, false
	}
	invoke, ok := inspected.Nodes[0].(*ast.InvokeExpression)
	if !ok || invoke == nil {
		return nil, false
	}
	return invoke, true
}

// InvocationContext extracts the signature context of an invocation. Calls
// without a callee name have none.
func InvocationContext(expr *ast.InvokeExpression) (SignatureContext, bool) {
	if expr == nil || expr.Name == "" {
		return SignatureContext{}, false
	}
	sc := SignatureContext{FunctionName: expr.Name}
	if expr.Arguments != nil {
		ordinal := expr.Arguments.PositionArgumentIndex
		sc.ArgumentOrdinal = &ordinal
	}
	return sc, true
}

// ResolveInvocationContext combines CurrentInvokeExpression and
// InvocationContext. A false result means signature help should not be
// shown at all.
func ResolveInvocationContext(inspected *inspection.Inspected) (SignatureContext, bool) {
	invoke, ok := CurrentInvokeExpression(inspected)
	if !ok {
		return SignatureContext{}, false
	}
	return InvocationContext(invoke)
}
