package langsvc

import (
	"fmt"

	"go.lsp.dev/protocol"

	"github.com/lexcodex/pqlsp/framework/ast"
)

// SymbolKindForExpression maps an expression to the symbol kind shown in
// outlines. Kinds without a dedicated mapping, including ones added upstream
// later and nil, fall back to SymbolKindVariable.
func SymbolKindForExpression(node ast.Node) protocol.SymbolKind {
	switch n := node.(type) {
	case *ast.Constant:
		return protocol.SymbolKindConstant
	case *ast.FunctionExpression:
		return protocol.SymbolKindFunction
	case *ast.ListExpression:
		return protocol.SymbolKindArray
	case *ast.LiteralExpression:
		return SymbolKindForLiteral(n.LiteralKind)
	case *ast.MetadataExpression:
		return protocol.SymbolKindTypeParameter
	case *ast.RecordExpression:
		return protocol.SymbolKindStruct
	default:
		return protocol.SymbolKindVariable
	}
}

// SymbolKindForLiteral maps every literal kind to a symbol kind. The table
// test over ast.LiteralKinds() fails when a kind is added without a case
// here; reaching the end means a LiteralKind was built outside the declared
// set.
func SymbolKindForLiteral(kind ast.LiteralKind) protocol.SymbolKind {
	switch kind {
	case ast.LiteralKindList:
		return protocol.SymbolKindArray
	case ast.LiteralKindLogical:
		return protocol.SymbolKindBoolean
	case ast.LiteralKindNull:
		return protocol.SymbolKindNull
	case ast.LiteralKindNumeric:
		return protocol.SymbolKindNumber
	case ast.LiteralKindRecord:
		return protocol.SymbolKindStruct
	case ast.LiteralKindStr:
		return protocol.SymbolKindString
	}
	panic(fmt.Sprintf("langsvc: literal kind %q is not handled", string(kind)))
}
