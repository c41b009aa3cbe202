package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexcodex/pqlsp/framework/ast"
	"github.com/lexcodex/pqlsp/framework/inspection"
	"github.com/lexcodex/pqlsp/framework/library"
)

// sectionDocument is
//
//	section Section1;
//	shared Source = let a = 1, b = [x = "v"] in b;
//	Helper = (x) => x;
const sectionDocument = `{
  "kind": "Section",
  "name": {"kind": "Identifier", "literal": "Section1"},
  "members": [
    {"kind": "SectionMember", "isShared": true,
     "namePairedExpression": {"kind": "IdentifierPairedExpression",
       "tokenRange": {"positionStart": {"lineNumber": 1, "lineCodeUnit": 7}, "positionEnd": {"lineNumber": 1, "lineCodeUnit": 45}},
       "key": {"kind": "Identifier", "literal": "Source",
         "tokenRange": {"positionStart": {"lineNumber": 1, "lineCodeUnit": 7}, "positionEnd": {"lineNumber": 1, "lineCodeUnit": 13}}},
       "value": {"kind": "LetExpression",
         "variables": [
           {"kind": "IdentifierPairedExpression",
            "key": {"kind": "Identifier", "literal": "a"},
            "value": {"kind": "LiteralExpression", "literal": "1", "literalKind": "Numeric"}},
           {"kind": "IdentifierPairedExpression",
            "key": {"kind": "Identifier", "literal": "b"},
            "value": {"kind": "RecordExpression", "fields": [
              {"kind": "IdentifierPairedExpression",
               "key": {"kind": "Identifier", "literal": "x"},
               "value": {"kind": "LiteralExpression", "literal": "\"v\"", "literalKind": "Str"}}
            ]}}
         ],
         "expression": {"kind": "IdentifierExpression", "identifier": {"kind": "Identifier", "literal": "b"}}}}},
    {"kind": "SectionMember",
     "namePairedExpression": {"kind": "IdentifierPairedExpression",
       "key": {"kind": "Identifier", "literal": "Helper"},
       "value": {"kind": "FunctionExpression",
         "parameters": [{"name": {"kind": "Identifier", "literal": "x"}}],
         "body": {"kind": "IdentifierExpression", "identifier": {"kind": "Identifier", "literal": "x"}}}}}
  ]
}`

// addColumnInspection places the cursor in the third argument of
// Table.AddColumn inside a let.
const addColumnInspection = `{"nodes": [
  {"kind": "InvokeExpression", "name": "Table.AddColumn",
   "arguments": {"numArguments": 3, "positionArgumentIndex": 2}},
  {"kind": "LetExpression", "variables": []}
]}`

func decodeTree(t *testing.T, data string) ast.Node {
	t.Helper()
	root, err := ast.Decode([]byte(data))
	require.NoError(t, err)
	return root
}

func decodeInspection(t *testing.T, data string) *inspection.Inspected {
	t.Helper()
	inspected, err := inspection.Decode([]byte(data))
	require.NoError(t, err)
	return inspected
}

func testLibrary() *library.MemoryLibrary {
	return library.NewMemoryLibrary(library.FunctionSignature{
		Name:          "Table.AddColumn",
		Documentation: "Adds a column to a table.",
		Parameters: []library.Parameter{
			{Name: "table", Type: "table"},
			{Name: "newColumnName", Type: "text"},
			{Name: "columnGenerator", Type: "function", Documentation: "Computes the value for each row."},
			{Name: "columnType", Type: "type", Optional: true},
		},
		ReturnType: "table",
	})
}

// stubParser returns a fixed tree for any text.
type stubParser struct {
	language string
	tree     string
	texts    []string
}

func (p *stubParser) Language() string { return p.language }

func (p *stubParser) Parse(_ context.Context, text string) (*ast.ParseResult, error) {
	p.texts = append(p.texts, text)
	root, err := ast.Decode([]byte(p.tree))
	if err != nil {
		return nil, err
	}
	return &ast.ParseResult{Root: root}, nil
}

// stubInspector returns a fixed inspection and records the position it was
// asked about.
type stubInspector struct {
	result   string
	position ast.TokenPosition
}

func (i *stubInspector) Inspect(_ context.Context, _ string, pos ast.TokenPosition) (*inspection.Inspected, error) {
	i.position = pos
	return inspection.Decode([]byte(i.result))
}
