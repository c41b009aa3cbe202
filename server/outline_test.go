package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/lexcodex/pqlsp/framework/ast"
	"github.com/lexcodex/pqlsp/framework/langsvc"
)

func TestBuildOutlineSection(t *testing.T) {
	outline := BuildOutline(decodeTree(t, sectionDocument))
	require.Len(t, outline, 2)

	source := outline[0]
	assert.Equal(t, "Source", source.Name)
	assert.Equal(t, protocol.SymbolKindVariable, source.Kind)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 7},
		End:   protocol.Position{Line: 1, Character: 45},
	}, source.Range)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 7},
		End:   protocol.Position{Line: 1, Character: 13},
	}, source.SelectionRange)

	require.Len(t, source.Children, 2)
	assert.Equal(t, "a", source.Children[0].Name)
	assert.Equal(t, protocol.SymbolKindNumber, source.Children[0].Kind)
	assert.Empty(t, source.Children[0].Children)
	assert.Equal(t, "b", source.Children[1].Name)
	assert.Equal(t, protocol.SymbolKindStruct, source.Children[1].Kind)
	require.Len(t, source.Children[1].Children, 1)
	assert.Equal(t, "x", source.Children[1].Children[0].Name)
	assert.Equal(t, protocol.SymbolKindString, source.Children[1].Children[0].Kind)

	helper := outline[1]
	assert.Equal(t, "Helper", helper.Name)
	assert.Equal(t, protocol.SymbolKindFunction, helper.Kind)
	assert.Nil(t, helper.Children)
}

func TestBuildOutlineLetRootIgnoresInExpression(t *testing.T) {
	root := &ast.LetExpression{
		Variables: []*ast.IdentifierPairedExpression{
			{Key: &ast.Identifier{Literal: "only"}, Value: &ast.ListExpression{}},
		},
		Expression: &ast.RecordExpression{Fields: []*ast.IdentifierPairedExpression{
			{Key: &ast.Identifier{Literal: "ignored"}},
		}},
	}
	outline := BuildOutline(root)
	require.Len(t, outline, 1)
	assert.Equal(t, "only", outline[0].Name)
	assert.Equal(t, protocol.SymbolKindArray, outline[0].Kind)
}

func TestBuildOutlineOtherRoots(t *testing.T) {
	for _, root := range []ast.Node{
		nil,
		&ast.RecordExpression{Fields: []*ast.IdentifierPairedExpression{{Key: &ast.Identifier{Literal: "f"}}}},
		&ast.OpaqueNode{RawKind: "NotImplementedExpression"},
		(*ast.Section)(nil),
	} {
		outline := BuildOutline(root)
		assert.NotNil(t, outline)
		assert.Empty(t, outline)
	}
}

func TestToProtocolSymbolNamesEmptyKey(t *testing.T) {
	sym := ToProtocolSymbol(langsvc.DocumentSymbol{Kind: protocol.SymbolKindVariable})
	assert.Equal(t, "<unnamed>", sym.Name)
}

func TestTokenRangeToRangeClampsNegative(t *testing.T) {
	r := TokenRangeToRange(ast.TokenRange{
		PositionStart: ast.TokenPosition{LineNumber: -1, LineCodeUnit: -4},
		PositionEnd:   ast.TokenPosition{LineNumber: 3, LineCodeUnit: 9},
	})
	assert.Equal(t, protocol.Position{}, r.Start)
	assert.Equal(t, protocol.Position{Line: 3, Character: 9}, r.End)
}

// generalizedDocument mixes a plain member with a record whose fields use
// generalized identifiers and an entry kind the decoder does not model.
const generalizedDocument = `{
  "kind": "Section",
  "members": [
    {"kind": "SectionMember", "namePairedExpression": {"kind": "IdentifierPairedExpression",
      "key": {"kind": "Identifier", "literal": "A"},
      "value": {"kind": "LiteralExpression", "literal": "1", "literalKind": "Numeric"}}},
    {"kind": "SectionMember", "namePairedExpression": {"kind": "IdentifierPairedExpression",
      "key": {"kind": "Identifier", "literal": "B"},
      "value": {"kind": "RecordExpression", "fields": [
        {"kind": "GeneralizedIdentifierPairedExpression",
         "key": {"kind": "GeneralizedIdentifier", "literal": "Column Name"},
         "value": {"kind": "LiteralExpression", "literal": "\"v\"", "literalKind": "Str"}},
        {"kind": "Csv"}
      ]}}}
  ]
}`

func TestBuildOutlineKeepsSiblingsOfGeneralizedFields(t *testing.T) {
	outline := BuildOutline(decodeTree(t, generalizedDocument))
	require.Len(t, outline, 2)
	assert.Equal(t, "A", outline[0].Name)
	assert.Equal(t, protocol.SymbolKindNumber, outline[0].Kind)
	assert.Equal(t, "B", outline[1].Name)
	require.Len(t, outline[1].Children, 1)
	assert.Equal(t, "Column Name", outline[1].Children[0].Name)
	assert.Equal(t, protocol.SymbolKindString, outline[1].Children[0].Kind)
}
