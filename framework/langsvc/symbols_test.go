package langsvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/lexcodex/pqlsp/framework/ast"
)

func span(line, start, end int) ast.TokenRange {
	return ast.TokenRange{
		PositionStart: ast.TokenPosition{LineNumber: line, LineCodeUnit: start},
		PositionEnd:   ast.TokenPosition{LineNumber: line, LineCodeUnit: end},
	}
}

// binding builds `name = value` on one line with the key at column 4.
func binding(line int, name string, value ast.Node) *ast.IdentifierPairedExpression {
	keyEnd := 4 + len(name)
	return &ast.IdentifierPairedExpression{
		TokenRange: span(line, 4, keyEnd+10),
		Key:        &ast.Identifier{Literal: name, TokenRange: span(line, 4, keyEnd)},
		Value:      value,
	}
}

func TestSymbolsForLetExpression(t *testing.T) {
	let := &ast.LetExpression{
		Variables: []*ast.IdentifierPairedExpression{
			binding(1, "a", &ast.LiteralExpression{Literal: "1", LiteralKind: ast.LiteralKindNumeric}),
			binding(2, "b", &ast.FunctionExpression{}),
		},
	}
	symbols := SymbolsForLetExpression(let)
	require.Len(t, symbols, 2)
	assert.Equal(t, "a", symbols[0].Name)
	assert.Equal(t, protocol.SymbolKindNumber, symbols[0].Kind)
	assert.Equal(t, "b", symbols[1].Name)
	assert.Equal(t, protocol.SymbolKindFunction, symbols[1].Kind)

	assert.Equal(t, let.Variables[0].TokenRange, symbols[0].FullRange)
	assert.Equal(t, let.Variables[0].Key.TokenRange, symbols[0].NameRange)
}

func TestSymbolsForSectionKeepsDeclarationOrder(t *testing.T) {
	names := []string{"Zeta", "Alpha", "Mid"}
	section := &ast.Section{Name: &ast.Identifier{Literal: "Queries"}}
	for i, name := range names {
		section.Members = append(section.Members, &ast.SectionMember{
			IsShared:             i%2 == 0,
			NamePairedExpression: binding(i+1, name, &ast.RecordExpression{}),
		})
	}
	symbols := SymbolsForSection(section)
	require.Len(t, symbols, len(names))
	for i, sym := range symbols {
		assert.Equal(t, names[i], sym.Name)
		assert.Equal(t, protocol.SymbolKindStruct, sym.Kind)
	}
}

func TestSymbolsForEmptyContainer(t *testing.T) {
	assert.Empty(t, SymbolsForLetExpression(&ast.LetExpression{}))
	assert.NotNil(t, SymbolsForLetExpression(&ast.LetExpression{}))
	assert.Empty(t, SymbolsForSection(&ast.Section{}))
	assert.Empty(t, SymbolsForContainer(&ast.RecordExpression{}))
}

func TestSymbolsDoNotRecurse(t *testing.T) {
	inner := &ast.LetExpression{
		Variables: []*ast.IdentifierPairedExpression{
			binding(2, "hidden", &ast.Constant{}),
		},
	}
	outer := &ast.LetExpression{
		Variables: []*ast.IdentifierPairedExpression{binding(1, "nested", inner)},
	}
	symbols := SymbolsForLetExpression(outer)
	require.Len(t, symbols, 1)
	assert.Equal(t, "nested", symbols[0].Name)
	assert.Equal(t, protocol.SymbolKindVariable, symbols[0].Kind)
}

func TestNameRangeWithinFullRange(t *testing.T) {
	node, err := ast.Decode([]byte(`{
	  "kind": "LetExpression",
	  "variables": [
	    {"kind": "IdentifierPairedExpression",
	     "tokenRange": {"positionStart": {"lineNumber": 1, "lineCodeUnit": 4}, "positionEnd": {"lineNumber": 3, "lineCodeUnit": 1}},
	     "key": {"kind": "Identifier", "literal": "Source",
	       "tokenRange": {"positionStart": {"lineNumber": 1, "lineCodeUnit": 4}, "positionEnd": {"lineNumber": 1, "lineCodeUnit": 10}}},
	     "value": {"kind": "ListExpression"}},
	    {"kind": "IdentifierPairedExpression",
	     "tokenRange": {"positionStart": {"lineNumber": 4, "lineCodeUnit": 4}, "positionEnd": {"lineNumber": 4, "lineCodeUnit": 20}},
	     "key": {"kind": "Identifier", "literal": "Flag",
	       "tokenRange": {"positionStart": {"lineNumber": 4, "lineCodeUnit": 4}, "positionEnd": {"lineNumber": 4, "lineCodeUnit": 8}}},
	     "value": {"kind": "LiteralExpression", "literal": "true", "literalKind": "Logical"}}
	  ]
	}`))
	require.NoError(t, err)
	symbols := SymbolsForContainer(node.(ast.BindingContainer))
	require.Len(t, symbols, 2)
	for _, sym := range symbols {
		assert.True(t, sym.FullRange.Contains(sym.NameRange), "%s: name range escapes full range", sym.Name)
	}
	assert.Equal(t, protocol.SymbolKindArray, symbols[0].Kind)
	assert.Equal(t, protocol.SymbolKindBoolean, symbols[1].Kind)
}

func TestSymbolsIdempotent(t *testing.T) {
	let := &ast.LetExpression{
		Variables: []*ast.IdentifierPairedExpression{
			binding(1, "x", &ast.MetadataExpression{}),
			binding(2, "y", &ast.ListExpression{}),
		},
	}
	assert.Equal(t, SymbolsForLetExpression(let), SymbolsForLetExpression(let))
}

func TestSymbolsSkipIncompleteBindings(t *testing.T) {
	let := &ast.LetExpression{
		Variables: []*ast.IdentifierPairedExpression{
			nil,
			binding(1, "x", &ast.ListExpression{}),
			{TokenRange: span(2, 4, 12), Value: &ast.RecordExpression{}},
		},
	}
	record := &ast.RecordExpression{Fields: []*ast.IdentifierPairedExpression{nil, binding(3, "f", nil)}}

	symbols := SymbolsForLetExpression(let)
	require.Len(t, symbols, 1)
	assert.Equal(t, "x", symbols[0].Name)
	require.Len(t, SymbolsForContainer(record), 1)

	assert.Equal(t, protocol.SymbolKindVariable, SymbolForPairedExpression(nil).Kind)
	keyless := SymbolForPairedExpression(&ast.IdentifierPairedExpression{TokenRange: span(2, 4, 12), Value: &ast.ListExpression{}})
	assert.Empty(t, keyless.Name)
	assert.Equal(t, protocol.SymbolKindArray, keyless.Kind)
}
