package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lexcodex/pqlsp/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or change keys in the config file",
	}
	cmd.AddCommand(newConfigGetCmd(), newConfigSetCmd())
	return cmd
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a value by dotted key, e.g. parser.command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			doc, err := readConfigMap(path)
			if err != nil {
				return err
			}
			value, ok := lookupKey(doc, args[0])
			if !ok {
				return fmt.Errorf("key %s not set in %s", args[0], path)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatValue(value))
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a value by dotted key; the value is read as YAML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			doc, err := readConfigMap(path)
			if err != nil {
				return err
			}
			var value interface{}
			if err := yaml.Unmarshal([]byte(args[1]), &value); err != nil {
				return fmt.Errorf("value %q: %w", args[1], err)
			}
			if err := assignKey(doc, args[0], value); err != nil {
				return err
			}
			data, err := yaml.Marshal(doc)
			if err != nil {
				return err
			}
			// Reject edits the typed config cannot read back.
			var typed config.Config
			if err := yaml.Unmarshal(data, &typed); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
			return nil
		},
	}
}

func configPath() (string, error) {
	if flagConfig != "" {
		return flagConfig, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return cfg.ConfigPath, nil
}

// readConfigMap reads the config file as a generic tree. A missing file
// reads as empty.
func readConfigMap(path string) (map[string]interface{}, error) {
	doc := map[string]interface{}{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func lookupKey(doc map[string]interface{}, key string) (interface{}, bool) {
	var current interface{} = doc
	for _, part := range strings.Split(key, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if current, ok = m[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

func assignKey(doc map[string]interface{}, key string, value interface{}) error {
	parts := strings.Split(key, ".")
	current := doc
	for _, part := range parts[:len(parts)-1] {
		if part == "" {
			return fmt.Errorf("invalid key %q", key)
		}
		switch next := current[part].(type) {
		case map[string]interface{}:
			current = next
		case nil:
			child := map[string]interface{}{}
			current[part] = child
			current = child
		default:
			return fmt.Errorf("%s is not a section", part)
		}
	}
	last := parts[len(parts)-1]
	if last == "" {
		return fmt.Errorf("invalid key %q", key)
	}
	current[last] = value
	return nil
}

func formatValue(v interface{}) string {
	switch value := v.(type) {
	case []interface{}:
		items := make([]string, len(value))
		for i, item := range value {
			items[i] = formatValue(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case map[string]interface{}:
		data, _ := yaml.Marshal(value)
		return strings.TrimSpace(string(data))
	default:
		return fmt.Sprint(value)
	}
}
