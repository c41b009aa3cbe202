package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.lsp.dev/protocol"
)

// row is one visible line of the flattened outline.
type row struct {
	symbol      protocol.DocumentSymbol
	path        string
	depth       int
	hasChildren bool
	expanded    bool
}

// Model is the interactive outline browser.
type Model struct {
	title   string
	symbols []protocol.DocumentSymbol

	// expanded is keyed by symbol path, e.g. "/0/2".
	expanded map[string]bool
	rows     []row
	cursor   int

	filter    textinput.Model
	filtering bool

	view   viewport.Model
	width  int
	height int
	ready  bool
}

// NewModel builds a browser over symbols with the top level expanded.
func NewModel(title string, symbols []protocol.DocumentSymbol) Model {
	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "filter by name"

	m := Model{
		title:    title,
		symbols:  symbols,
		expanded: make(map[string]bool),
		filter:   input,
		view:     viewport.New(0, 0),
	}
	for i := range symbols {
		m.expanded[pathKey("", i)] = true
	}
	m.rebuild()
	return m
}

// Run opens the browser full-screen until the user quits or ctx ends.
func Run(ctx context.Context, title string, symbols []protocol.DocumentSymbol) error {
	program := tea.NewProgram(NewModel(title, symbols), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// Selected returns the symbol under the cursor.
func (m Model) Selected() (protocol.DocumentSymbol, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return protocol.DocumentSymbol{}, false
	}
	return m.rows[m.cursor].symbol, true
}

func pathKey(parent string, index int) string {
	return parent + "/" + strconv.Itoa(index)
}

// rebuild re-flattens the tree after an expansion or filter change and keeps
// the cursor on a visible row.
func (m *Model) rebuild() {
	m.rows = nil
	m.flatten(m.symbols, "", 0, strings.ToLower(strings.TrimSpace(m.filter.Value())))
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.refreshView()
}

func (m *Model) flatten(symbols []protocol.DocumentSymbol, parent string, depth int, query string) {
	for i, sym := range symbols {
		if query != "" && !matches(sym, query) {
			continue
		}
		path := pathKey(parent, i)
		// A filter shows every ancestor of a match regardless of expansion.
		open := m.expanded[path] || query != ""
		m.rows = append(m.rows, row{
			symbol:      sym,
			path:        path,
			depth:       depth,
			hasChildren: len(sym.Children) > 0,
			expanded:    open,
		})
		if open {
			m.flatten(sym.Children, path, depth+1, query)
		}
	}
}

func matches(sym protocol.DocumentSymbol, query string) bool {
	if strings.Contains(strings.ToLower(sym.Name), query) {
		return true
	}
	for _, child := range sym.Children {
		if matches(child, query) {
			return true
		}
	}
	return false
}

func (m *Model) toggle() {
	if m.cursor >= len(m.rows) || !m.rows[m.cursor].hasChildren {
		return
	}
	path := m.rows[m.cursor].path
	m.expanded[path] = !m.expanded[path]
	m.rebuild()
}

// collapse closes the current node, or moves to its parent when it is
// already closed.
func (m *Model) collapse() {
	if m.cursor >= len(m.rows) {
		return
	}
	current := m.rows[m.cursor]
	if current.hasChildren && m.expanded[current.path] {
		m.expanded[current.path] = false
		m.rebuild()
		return
	}
	for i := m.cursor - 1; i >= 0; i-- {
		if m.rows[i].depth < current.depth {
			m.moveTo(i)
			return
		}
	}
}

func (m *Model) moveTo(index int) {
	if len(m.rows) == 0 {
		m.cursor = 0
		return
	}
	m.cursor = max(0, min(index, len(m.rows)-1))
	m.refreshView()
}

// refreshView re-renders the rows and scrolls the cursor into view.
func (m *Model) refreshView() {
	if !m.ready {
		return
	}
	m.view.SetContent(m.renderRows())
	switch {
	case m.cursor < m.view.YOffset:
		m.view.SetYOffset(m.cursor)
	case m.cursor >= m.view.YOffset+m.view.Height:
		m.view.SetYOffset(m.cursor - m.view.Height + 1)
	}
}
