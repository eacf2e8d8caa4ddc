package gridfile

import (
	"fmt"
	"strconv"

	"github.com/vk/experimentor/internal/grid"
	"gopkg.in/yaml.v3"
)

// decodeYAML decodes a YAML or JSON grid file. The document is walked as a
// yaml.Node tree so that mapping order survives decoding.
func decodeYAML(filename string, src []byte) (grid.Grid, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse grid file %s: %w", filename, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, fmt.Errorf("grid file %s is empty", filename)
	}

	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s:%s: grid must be a list of parameter sets", filename, nodePos(root))
	}

	g := make(grid.Grid, 0, len(root.Content))
	for i, item := range root.Content {
		item = resolveAlias(item)
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%s:%s: parameter set %d must be a mapping", filename, nodePos(item), i)
		}
		set, err := decodeMapping(filename, item, i)
		if err != nil {
			return nil, err
		}
		g = append(g, set)
	}
	return g, nil
}

func decodeMapping(filename string, node *yaml.Node, setIndex int) (grid.Params, error) {
	params := make(grid.Params, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], resolveAlias(node.Content[i+1])
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%s:%s: parameter keys must be scalars", filename, nodePos(keyNode))
		}
		key := keyNode.Value
		if err := checkUniqueKey(params, key, filename, setIndex, nodePos(keyNode)); err != nil {
			return nil, err
		}

		value, err := decodeValue(filename, valueNode, setIndex)
		if err != nil {
			return nil, err
		}
		params = append(params, grid.Param{Key: key, Value: value})
	}
	return params, nil
}

func decodeValue(filename string, node *yaml.Node, setIndex int) (any, error) {
	switch node.Kind {
	case yaml.MappingNode:
		return decodeMapping(filename, node, setIndex)
	case yaml.ScalarNode:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, fmt.Errorf("%s:%s: %w", filename, nodePos(node), err)
		}
		return normalizeScalar(v), nil
	default:
		return nil, fmt.Errorf("%s:%s: parameter values must be scalars or mappings", filename, nodePos(node))
	}
}

// normalizeScalar narrows the integer types produced by yaml.v3 to int64.
func normalizeScalar(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case uint64:
		return float64(n)
	default:
		return v
	}
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func nodePos(node *yaml.Node) string {
	return strconv.Itoa(node.Line) + ":" + strconv.Itoa(node.Column)
}
