package library

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned by Lookup when the library has no entry for a name.
var ErrNotFound = errors.New("function not found")

// Parameter describes one formal parameter of a library function.
type Parameter struct {
	Name          string `yaml:"name" json:"name"`
	Type          string `yaml:"type,omitempty" json:"type,omitempty"`
	Optional      bool   `yaml:"optional,omitempty" json:"optional,omitempty"`
	Documentation string `yaml:"documentation,omitempty" json:"documentation,omitempty"`
}

// Label renders the parameter as it appears inside a signature label.
func (p Parameter) Label() string {
	var b strings.Builder
	if p.Optional {
		b.WriteString("optional ")
	}
	b.WriteString(p.Name)
	if p.Type != "" {
		b.WriteString(" as ")
		b.WriteString(p.Type)
	}
	return b.String()
}

// FunctionSignature is the documented shape of a callable library function.
type FunctionSignature struct {
	Name          string      `yaml:"name" json:"name"`
	Documentation string      `yaml:"documentation,omitempty" json:"documentation,omitempty"`
	Parameters    []Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	ReturnType    string      `yaml:"return_type,omitempty" json:"returnType,omitempty"`
}

// Label renders `Name(a as t, optional b as u) as r`.
func (f FunctionSignature) Label() string {
	params := make([]string, 0, len(f.Parameters))
	for _, p := range f.Parameters {
		params = append(params, p.Label())
	}
	label := f.Name + "(" + strings.Join(params, ", ") + ")"
	if f.ReturnType != "" {
		label += " as " + f.ReturnType
	}
	return label
}

// Library resolves function names to signatures.
type Library interface {
	Lookup(ctx context.Context, name string) (*FunctionSignature, error)
}

// MemoryLibrary is an in-memory Library, typically loaded from YAML.
type MemoryLibrary struct {
	mu        sync.RWMutex
	functions map[string]FunctionSignature
}

// NewMemoryLibrary builds a library from the given signatures. Later entries
// replace earlier ones with the same name.
func NewMemoryLibrary(signatures ...FunctionSignature) *MemoryLibrary {
	lib := &MemoryLibrary{functions: make(map[string]FunctionSignature, len(signatures))}
	for _, sig := range signatures {
		lib.Add(sig)
	}
	return lib
}

// Add registers or replaces a signature. Unnamed signatures are ignored.
func (m *MemoryLibrary) Add(sig FunctionSignature) {
	if sig.Name == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.functions[sig.Name] = sig
}

// Lookup implements Library.
func (m *MemoryLibrary) Lookup(_ context.Context, name string) (*FunctionSignature, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sig, ok := m.functions[name]
	if !ok {
		return nil, ErrNotFound
	}
	return &sig, nil
}

// Signatures returns every signature sorted by name.
func (m *MemoryLibrary) Signatures() []FunctionSignature {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]FunctionSignature, 0, len(m.functions))
	for _, sig := range m.functions {
		out = append(out, sig)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Chain consults each library in order and returns the first hit.
type Chain []Library

// Lookup implements Library. Errors other than ErrNotFound stop the search.
func (c Chain) Lookup(ctx context.Context, name string) (*FunctionSignature, error) {
	for _, lib := range c {
		if lib == nil {
			continue
		}
		sig, err := lib.Lookup(ctx, name)
		if err == nil {
			return sig, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}
