package library

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogue is the on-disk YAML shape:
//
//	functions:
//	  - name: Table.AddColumn
//	    documentation: Adds a column ...
//	    parameters:
//	      - {name: table, type: table}
//	    return_type: table
type catalogue struct {
	Functions []FunctionSignature `yaml:"functions"`
}

// ParseYAML decodes a signature catalogue.
func ParseYAML(data []byte) ([]FunctionSignature, error) {
	var cat catalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse library: %w", err)
	}
	for i, sig := range cat.Functions {
		if sig.Name == "" {
			return nil, fmt.Errorf("parse library: function %d has no name", i)
		}
	}
	return cat.Functions, nil
}

// LoadYAML reads a catalogue file into a MemoryLibrary.
func LoadYAML(path string) (*MemoryLibrary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sigs, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewMemoryLibrary(sigs...), nil
}
