package server

import (
	"go.lsp.dev/protocol"

	"github.com/lexcodex/pqlsp/framework/ast"
	"github.com/lexcodex/pqlsp/framework/langsvc"
)

const unnamedSymbol = "<unnamed>"

// TokenRangeToRange converts parser positions to LSP positions. Negative
// coordinates clamp to zero.
func TokenRangeToRange(r ast.TokenRange) protocol.Range {
	return protocol.Range{
		Start: tokenPosition(r.PositionStart),
		End:   tokenPosition(r.PositionEnd),
	}
}

func tokenPosition(p ast.TokenPosition) protocol.Position {
	return protocol.Position{Line: clampUint32(p.LineNumber), Character: clampUint32(p.LineCodeUnit)}
}

func clampUint32(v int) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}

// RootContainer returns the binding container that defines a document's
// top-level symbols: a section document or a let expression.
func RootContainer(root ast.Node) (ast.BindingContainer, bool) {
	switch n := root.(type) {
	case *ast.Section:
		return n, n != nil
	case *ast.LetExpression:
		return n, n != nil
	default:
		return nil, false
	}
}

// BuildOutline returns the hierarchical document outline for root. Bindings
// whose value is itself a let or record expression get that container's
// bindings as children.
func BuildOutline(root ast.Node) []protocol.DocumentSymbol {
	container, ok := RootContainer(root)
	if !ok {
		return []protocol.DocumentSymbol{}
	}
	return outline(container)
}

func outline(container ast.BindingContainer) []protocol.DocumentSymbol {
	bindings := container.Bindings()
	symbols := langsvc.SymbolsForContainer(container)
	out := make([]protocol.DocumentSymbol, 0, len(symbols))
	for i, sym := range symbols {
		ds := ToProtocolSymbol(sym)
		if nested, ok := bindings[i].Value.(ast.BindingContainer); ok {
			if children := outline(nested); len(children) > 0 {
				ds.Children = children
			}
		}
		out = append(out, ds)
	}
	return out
}

// ToProtocolSymbol converts a flat symbol to its LSP form.
func ToProtocolSymbol(sym langsvc.DocumentSymbol) protocol.DocumentSymbol {
	name := sym.Name
	if name == "" {
		name = unnamedSymbol
	}
	return protocol.DocumentSymbol{
		Name:           name,
		Kind:           sym.Kind,
		Range:          TokenRangeToRange(sym.FullRange),
		SelectionRange: TokenRangeToRange(sym.NameRange),
	}
}
