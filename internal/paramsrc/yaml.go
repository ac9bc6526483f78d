package paramsrc

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hwparam/internal/ir"
	"github.com/roach88/hwparam/internal/value"
)

func loadYAML(path string, data []byte) ([]ParamSet, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), File: path}
	}
	if len(doc.Content) == 0 {
		return nil, &LoadError{Code: ErrCodeInvalidLayout, Message: "params section is required", File: path}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, yamlError(path, root, ErrCodeInvalidLayout, "top level must be a mapping")
	}

	paramsNode := lookup(root, "params")
	if paramsNode == nil {
		return nil, yamlError(path, root, ErrCodeInvalidLayout, "params section is required")
	}
	if paramsNode.Kind != yaml.MappingNode {
		return nil, yamlError(path, paramsNode, ErrCodeInvalidLayout, "params must be a mapping of parameter sets")
	}
	typesNode := lookup(root, "types")

	var sets []ParamSet
	for i := 0; i+1 < len(paramsNode.Content); i += 2 {
		key, node := paramsNode.Content[i], paramsNode.Content[i+1]
		name := key.Value

		v, err := fromYAML(path, node)
		if err != nil {
			return nil, err
		}
		m, ok := v.(value.Map)
		if !ok {
			return nil, yamlError(path, node, ErrCodeInvalidLayout, fmt.Sprintf("params.%s must be a mapping", name))
		}

		types, err := yamlTypes(path, typesNode, name)
		if err != nil {
			return nil, err
		}

		ps := ParamSet{Name: name, Source: path, Params: m, Types: types}
		if err := checkTypes(ps); err != nil {
			return nil, err
		}
		sets = append(sets, ps)
	}
	return sets, nil
}

func yamlTypes(path string, typesNode *yaml.Node, name string) (map[string]ir.IntegerType, error) {
	if typesNode == nil {
		return nil, nil
	}
	node := lookup(typesNode, name)
	if node == nil {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, yamlError(path, node, ErrCodeInvalidLayout, fmt.Sprintf("types.%s must be a mapping", name))
	}

	types := make(map[string]ir.IntegerType)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return nil, yamlError(path, val, ErrCodeInvalidType, fmt.Sprintf("types.%s.%s must be a string", name, key.Value))
		}
		t, err := ir.ParseIntegerType(val.Value)
		if err != nil {
			return nil, yamlError(path, val, ErrCodeInvalidType, err.Error())
		}
		types[key.Value] = t
	}
	return types, nil
}

// fromYAML converts a node tree. Mapping order is kept; floats and other
// untagged scalars become Opaque.
func fromYAML(path string, n *yaml.Node) (value.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromYAML(path, n.Alias)

	case yaml.SequenceNode:
		list := value.List{}
		for _, c := range n.Content {
			elem, err := fromYAML(path, c)
			if err != nil {
				return nil, err
			}
			list = append(list, elem)
		}
		return list, nil

	case yaml.MappingNode:
		fields := make([]value.Field, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return nil, yamlError(path, key, ErrCodeInvalidLayout, "mapping keys must be scalars")
			}
			elem, err := fromYAML(path, val)
			if err != nil {
				return nil, err
			}
			fields = append(fields, value.F(key.Value, elem))
		}
		m, err := value.NewMap(fields...)
		if err != nil {
			return nil, yamlError(path, n, ErrCodeInvalidLayout, err.Error())
		}
		return m, nil

	case yaml.ScalarNode:
		return scalarFromYAML(path, n)

	default:
		return nil, yamlError(path, n, ErrCodeLoadFailed, "unexpected document node")
	}
}

func scalarFromYAML(path string, n *yaml.Node) (value.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return value.Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, yamlError(path, n, ErrCodeLoadFailed, err.Error())
		}
		return value.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, yamlError(path, n, ErrCodeInvalidValue, fmt.Sprintf("integer out of range: %s", n.Value))
		}
		return value.Int(i), nil
	case "!!str":
		return value.String(n.Value), nil
	default:
		var x any
		if err := n.Decode(&x); err != nil {
			return nil, yamlError(path, n, ErrCodeLoadFailed, err.Error())
		}
		return value.Of(x), nil
	}
}

// lookup returns the value node under key in a mapping, or nil.
func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func yamlError(path string, n *yaml.Node, code, msg string) *LoadError {
	return &LoadError{Code: code, Message: msg, File: path, Line: n.Line, Col: n.Column}
}
