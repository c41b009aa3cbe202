package ast

import (
	"context"
	"sort"
	"sync"
)

// Parser converts document text into a syntax tree. Implementations live
// outside this package; see tools.ProcessParser.
type Parser interface {
	Parse(ctx context.Context, text string) (*ParseResult, error)
	Language() string
}

// ParseResult captures the root node and any recoverable parse errors.
type ParseResult struct {
	Root   Node
	Errors []ParseError
}

// ParseError represents parser warnings/errors.
type ParseError struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
	Level   string `json:"level"`
}

// ParserRegistry keeps parser implementations keyed by language.
type ParserRegistry struct {
	mu      sync.RWMutex
	parsers map[string]Parser
}

// NewParserRegistry constructs a registry.
func NewParserRegistry() *ParserRegistry {
	return &ParserRegistry{parsers: make(map[string]Parser)}
}

// Register adds a parser keyed by its Language.
func (pr *ParserRegistry) Register(parser Parser) {
	if parser == nil {
		return
	}
	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.parsers[parser.Language()] = parser
}

// GetParser retrieves a parser by language identifier.
func (pr *ParserRegistry) GetParser(language string) (Parser, bool) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	parser, ok := pr.parsers[language]
	return parser, ok
}

// SupportedLanguages returns all registered languages, sorted.
func (pr *ParserRegistry) SupportedLanguages() []string {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	langs := make([]string, 0, len(pr.parsers))
	for lang := range pr.parsers {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
