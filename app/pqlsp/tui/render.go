package tui

import (
	"fmt"
	"strings"

	"go.lsp.dev/protocol"
)

// RenderOutline draws symbols as an indented tree, one symbol per line.
func RenderOutline(symbols []protocol.DocumentSymbol) string {
	if len(symbols) == 0 {
		return dimStyle.Render("(no symbols)")
	}
	var b strings.Builder
	renderLevel(&b, symbols, "")
	return strings.TrimRight(b.String(), "\n")
}

func renderLevel(b *strings.Builder, symbols []protocol.DocumentSymbol, prefix string) {
	for i, sym := range symbols {
		last := i == len(symbols)-1
		branch, indent := "├─ ", "│  "
		if last {
			branch, indent = "└─ ", "   "
		}
		b.WriteString(dimStyle.Render(prefix + branch))
		b.WriteString(symbolLine(sym))
		b.WriteString("\n")
		renderLevel(b, sym.Children, prefix+indent)
	}
}

func symbolLine(sym protocol.DocumentSymbol) string {
	return fmt.Sprintf("%s %s %s",
		nameStyle.Render(sym.Name),
		kindStyle.Render(sym.Kind.String()),
		rangeStyle.Render(formatRange(sym.Range)),
	)
}

// formatRange renders a range 1-based, the way editors display positions.
func formatRange(r protocol.Range) string {
	if r.Start.Line == r.End.Line {
		return fmt.Sprintf("%d:%d-%d", r.Start.Line+1, r.Start.Character+1, r.End.Character+1)
	}
	return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line+1, r.Start.Character+1, r.End.Line+1, r.End.Character+1)
}
