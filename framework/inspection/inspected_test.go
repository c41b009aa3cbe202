package inspection

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexcodex/pqlsp/framework/ast"
)

func TestDecodePreservesOrder(t *testing.T) {
	data := []byte(`{"nodes": [
		{"kind": "InvokeExpression", "name": "Table.AddColumn", "arguments": {"numArguments": 3, "positionArgumentIndex": 2}},
		{"kind": "LetExpression"},
		{"kind": "Section"}
	]}`)
	inspected, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, inspected.Nodes, 3)
	require.Equal(t, ast.NodeKindInvokeExpression, inspected.Nodes[0].Kind())
	require.Equal(t, ast.NodeKindLetExpression, inspected.Nodes[1].Kind())
	require.Equal(t, ast.NodeKindSection, inspected.Nodes[2].Kind())
}

func TestDecodeEmpty(t *testing.T) {
	inspected, err := Decode([]byte(`{"nodes": []}`))
	require.NoError(t, err)
	require.Empty(t, inspected.Nodes)

	inspected, err = Decode([]byte(`{}`))
	require.NoError(t, err)
	require.Empty(t, inspected.Nodes)
}

func TestDecodeReportsBadNode(t *testing.T) {
	_, err := Decode([]byte(`{"nodes": [{"kind": "LiteralExpression", "literalKind": "Duration"}]}`))
	require.ErrorIs(t, err, ast.ErrUnknownLiteralKind)

	_, err = Decode([]byte(`{"nodes": [null]}`))
	require.Error(t, err)
}
