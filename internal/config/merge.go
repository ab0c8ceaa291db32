package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ShallowMergeYAML overlays the YAML file at overlayPath onto target. Each
// top-level section present in the file is decoded over the current value of
// that section, so keys it omits keep their previous values. Unknown
// top-level keys are ignored.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("merging config: nil target")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var doc yaml.Node
	if err = yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}
	if len(doc.Content) == 0 {
		return nil
	}

	root := doc.Content[0]
	switch {
	case root.Kind == yaml.ScalarNode && root.Tag == "!!null":
		return nil
	case root.Kind != yaml.MappingNode:
		return fmt.Errorf("overlay %s: top level must be a mapping", overlayPath)
	}

	sections := target.sections()
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		apply, ok := sections[key]
		if !ok {
			continue
		}
		if err = apply(root.Content[i+1]); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// sections maps each top-level key to a decoder for its Config field.
func (c *Config) sections() map[string]func(*yaml.Node) error {
	return map[string]func(*yaml.Node) error{
		"output":   decodeOver(&c.Output),
		"logging":  decodeOver(&c.Logging),
		"matching": decodeOver(&c.Matching),
		"forecast": decodeOver(&c.Forecast),
		"factors":  decodeOver(&c.Factors),
		"dataset":  decodeOver(&c.Dataset),
	}
}

// decodeOver returns a decoder that writes to field only on success.
func decodeOver[T any](field *T) func(*yaml.Node) error {
	return func(n *yaml.Node) error {
		v := *field
		if err := n.Decode(&v); err != nil {
			return err
		}
		*field = v
		return nil
	}
}
