package config

import (
	"bytes"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/recents/internal/atomicfile"
)

// SettableKeys lists the keys accepted by SetValue, in display order.
var SettableKeys = []string{
	"data_dir",
	"persist_cleanup",
	"debug",
	"log_file",
	"log_level",
	"tracing.enabled",
	"tracing.exporter",
	"tracing.file_path",
	"tracing.otlp_endpoint",
	"tracing.sample_rate",
}

// SetValue sets a single dotted key in the config file and saves it.
// Comments and unrelated keys are preserved by editing the yaml.Node tree.
// The edited document is validated before anything is written; a value
// that would leave the file invalid is rejected and the file is unchanged.
func SetValue(configPath, key, value string) error {
	if !slices.Contains(SettableKeys, key) {
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(SettableKeys, ", "))
	}

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level must be a mapping")
	}

	if err := setPath(doc.Content[0], strings.Split(key, "."), value); err != nil {
		return err
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := checkDocument(buf.Bytes()); err != nil {
		return fmt.Errorf("not setting %s=%s: %w", key, value, err)
	}
	if err := atomicfile.Write(configPath, buf.Bytes()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// checkDocument decodes data the way Load does, without environment
// overrides, and validates the result.
func checkDocument(data []byte) error {
	v := viper.New()
	setDefaultValues(v)
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return Validate(cfg)
}

// setPath walks/creates nested mappings for parts and sets the leaf scalar.
func setPath(mapping *yaml.Node, parts []string, value string) error {
	name := parts[0]
	var child *yaml.Node
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == name {
			child = mapping.Content[i+1]
			break
		}
	}

	if len(parts) == 1 {
		leaf := &yaml.Node{Kind: yaml.ScalarNode, Value: value}
		if child == nil {
			mapping.Content = append(mapping.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: name}, leaf)
			return nil
		}
		if child.Kind != yaml.ScalarNode {
			return fmt.Errorf("config key %q is not a scalar", name)
		}
		child.Value = value
		child.Tag = ""
		child.Style = 0
		return nil
	}

	if child == nil {
		child = &yaml.Node{Kind: yaml.MappingNode}
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: name}, child)
	}
	if child.Kind != yaml.MappingNode {
		return fmt.Errorf("config key %q is not a mapping", name)
	}
	return setPath(child, parts[1:], value)
}
