package langsvc

import (
	"go.lsp.dev/protocol"

	"github.com/lexcodex/pqlsp/framework/ast"
)

// DocumentSymbol describes one named binding. Ranges are the parser's own;
// NameRange always lies within FullRange.
type DocumentSymbol struct {
	Name      string              `json:"name"`
	Kind      protocol.SymbolKind `json:"kind"`
	FullRange ast.TokenRange      `json:"fullRange"`
	NameRange ast.TokenRange      `json:"nameRange"`
}

// SymbolsForContainer returns one symbol per binding of container, in
// declaration order. Nested containers are not visited.
func SymbolsForContainer(container ast.BindingContainer) []DocumentSymbol {
	bindings := container.Bindings()
	symbols := make([]DocumentSymbol, 0, len(bindings))
	for _, pair := range bindings {
		symbols = append(symbols, SymbolForPairedExpression(pair))
	}
	return symbols
}

// SymbolsForLetExpression lists the variables of a let block.
func SymbolsForLetExpression(let *ast.LetExpression) []DocumentSymbol {
	return SymbolsForContainer(let)
}

// SymbolsForSection lists the members of a section.
func SymbolsForSection(section *ast.Section) []DocumentSymbol {
	return SymbolsForContainer(section)
}

// SymbolForPairedExpression builds the symbol for a single `key = value`. A
// missing key yields an unnamed symbol with an empty name range.
func SymbolForPairedExpression(pair *ast.IdentifierPairedExpression) DocumentSymbol {
	if pair == nil {
		return DocumentSymbol{Kind: SymbolKindForExpression(nil)}
	}
	sym := DocumentSymbol{
		Kind:      SymbolKindForExpression(pair.Value),
		FullRange: pair.TokenRange,
	}
	if pair.Key != nil {
		sym.Name = pair.Key.Literal
		sym.NameRange = pair.Key.TokenRange
	}
	return sym
}
