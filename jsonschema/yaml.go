package jsonschema

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	skillet "github.com/reoring/skillet"
)

// ImportYAML imports a wire document written in YAML. Mapping order is kept,
// so property order matches the source text.
func ImportYAML(data []byte) (*skillet.Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("jsonschema: parse yaml: %w", err)
	}
	tree, err := fromYAML(&doc, nil)
	if err != nil {
		return nil, err
	}
	return importTree(tree)
}

func fromYAML(n *yaml.Node, path []string) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return fromYAML(n.Content[0], path)
	case yaml.AliasNode:
		return fromYAML(n.Alias, path)
	case yaml.MappingNode:
		o := &object{}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("jsonschema: yaml line %d: mapping keys must be scalars", k.Line)
			}
			v, err := fromYAML(n.Content[i+1], append(path, k.Value))
			if err != nil {
				return nil, err
			}
			if !o.set(k.Value, v) {
				return nil, duplicateKey(path, k.Value)
			}
		}
		return o, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := fromYAML(c, append(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("jsonschema: yaml line %d: %w", n.Line, err)
		}
		return fromGo(v), nil
	}
	return nil, fmt.Errorf("jsonschema: yaml line %d: unsupported node", n.Line)
}
