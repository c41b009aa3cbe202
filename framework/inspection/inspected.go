package inspection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lexcodex/pqlsp/framework/ast"
)

// Inspected is the chain of nodes enclosing a cursor position, innermost
// first, as reported by the scope inspector.
type Inspected struct {
	Nodes []ast.Node
}

// Inspector computes the enclosing node chain for a position in a document.
type Inspector interface {
	Inspect(ctx context.Context, text string, pos ast.TokenPosition) (*Inspected, error)
}

type rawInspected struct {
	Nodes []json.RawMessage `json:"nodes"`
}

// Decode reads an inspection result of the form {"nodes": [...]}. Node order
// is preserved as given.
func Decode(data []byte) (*Inspected, error) {
	var raw rawInspected
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("inspection result: %w", err)
	}
	inspected := &Inspected{Nodes: make([]ast.Node, 0, len(raw.Nodes))}
	for i, rawNode := range raw.Nodes {
		node, err := ast.Decode(rawNode)
		if err != nil {
			return nil, fmt.Errorf("inspection node %d: %w", i, err)
		}
		inspected.Nodes = append(inspected.Nodes, node)
	}
	return inspected, nil
}
