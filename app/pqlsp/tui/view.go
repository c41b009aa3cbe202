package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the header, outline body and status bar.
func (m Model) View() string {
	if !m.ready {
		return "loading outline..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		headerStyle.Render(m.title),
		m.view.View(),
		m.renderStatusBar(),
	)
}

func (m Model) renderRows() string {
	if len(m.rows) == 0 {
		return dimStyle.Render("(no symbols)")
	}
	lines := make([]string, len(m.rows))
	for i, r := range m.rows {
		marker := "  "
		if r.hasChildren {
			marker = "▸ "
			if r.expanded {
				marker = "▾ "
			}
		}
		line := strings.Repeat("  ", r.depth) + dimStyle.Render(marker) + symbolLine(r.symbol)
		if i == m.cursor {
			line = selectedStyle.Render(strings.Repeat("  ", r.depth) + marker + r.symbol.Name)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderStatusBar() string {
	if m.filtering {
		return filterBarStyle.Width(m.width).Render(m.filter.View())
	}
	status := fmt.Sprintf("%d symbols", len(m.rows))
	if sym, ok := m.Selected(); ok {
		status = fmt.Sprintf("%s │ %s %s │ %d/%d", sym.Name, sym.Kind.String(), formatRange(sym.Range), m.cursor+1, len(m.rows))
	}
	if q := m.filter.Value(); q != "" {
		status += " │ filter: " + q
	}
	return statusStyle.Width(m.width).Render(status + dimStyle.Render("  ↑↓ move · enter toggle · / filter · q quit"))
}
