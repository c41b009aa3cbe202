package ast

import (
	"path"
	"strings"
	"sync"
)

// PowerQuery is the language identifier editors send for M documents.
const PowerQuery = "powerquery"

// LanguageDetector maps document names to language identifiers for clients
// that open documents without a usable languageId.
type LanguageDetector struct {
	mu         sync.RWMutex
	extensions map[string]string
}

// NewLanguageDetector seeds the Power Query extensions.
func NewLanguageDetector() *LanguageDetector {
	return &LanguageDetector{extensions: map[string]string{
		".pq":  PowerQuery,
		".pqm": PowerQuery,
		".m":   PowerQuery,
	}}
}

// Register maps an extension (with or without the leading dot) to language.
func (ld *LanguageDetector) Register(ext, language string) {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	ld.mu.Lock()
	defer ld.mu.Unlock()
	ld.extensions[ext] = language
}

// Detect resolves a file path or URI by extension, ignoring case.
func (ld *LanguageDetector) Detect(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	ext := strings.ToLower(path.Ext(name))
	ld.mu.RLock()
	defer ld.mu.RUnlock()
	language, ok := ld.extensions[ext]
	return language, ok
}
