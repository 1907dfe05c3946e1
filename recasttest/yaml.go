package recasttest

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zoobzio/recast"
)

// ErrUnsupportedNode is returned for YAML constructs with no Map equivalent.
var ErrUnsupportedNode = errors.New("unsupported yaml node")

// ParseMap decodes a YAML mapping document into a Map, keeping key order.
// Scalars take their canonical Map form: !!int int64 (uint64 when too
// large), !!float float64, !!bool, !!null nil and !!binary []byte. Strings
// and timestamps stay strings.
// Sequences become []any and nested mappings *Map.
func ParseMap(data []byte) (*recast.Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, fmt.Errorf("%w: expected a single document", ErrUnsupportedNode)
	}
	v, err := nodeValue(doc.Content[0], map[*yaml.Node]bool{})
	if err != nil {
		return nil, err
	}
	m, ok := v.(*recast.Map)
	if !ok {
		return nil, fmt.Errorf("%w: document root is %T, not a mapping", ErrUnsupportedNode, v)
	}
	return m, nil
}

// expanding holds the anchors whose aliases are being resolved; an alias
// back into one of them is a cycle.
func nodeValue(n *yaml.Node, expanding map[*yaml.Node]bool) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		if expanding[n.Alias] {
			return nil, fmt.Errorf("%w: alias *%s at line %d refers to itself", ErrUnsupportedNode, n.Value, n.Line)
		}
		expanding[n.Alias] = true
		defer delete(expanding, n.Alias)
		return nodeValue(n.Alias, expanding)
	case yaml.MappingNode:
		m := recast.NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: non-scalar key at line %d", ErrUnsupportedNode, key.Line)
			}
			v, err := nodeValue(n.Content[i+1], expanding)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key.Value, err)
			}
			if key.Value == recast.IdentifierKey {
				id, ok := v.(string)
				if !ok {
					return nil, fmt.Errorf("%w: identifier must be a string at line %d", ErrUnsupportedNode, key.Line)
				}
				m.SetIdentifier(id)
				continue
			}
			m.Set(key.Value, v)
		}
		return m, nil
	case yaml.SequenceNode:
		out := make([]any, len(n.Content))
		for i, item := range n.Content {
			v, err := nodeValue(item, expanding)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	case yaml.ScalarNode:
		return scalarValue(n)
	}
	return nil, fmt.Errorf("%w: kind %d at line %d", ErrUnsupportedNode, n.Kind, n.Line)
}

func scalarValue(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return b, nil
	case "!!int":
		s := strings.ReplaceAll(n.Value, "_", "")
		if i, err := strconv.ParseInt(s, 0, 64); err == nil {
			return i, nil
		}
		u, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return u, nil
	case "!!float":
		switch strings.ToLower(n.Value) {
		case ".inf", "+.inf":
			return math.Inf(1), nil
		case "-.inf":
			return math.Inf(-1), nil
		case ".nan":
			return math.NaN(), nil
		}
		return strconv.ParseFloat(n.Value, 64)
	case "!!binary":
		return base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
	case "!!str", "!!timestamp":
		return n.Value, nil
	}
	return nil, fmt.Errorf("%w: tag %s at line %d", ErrUnsupportedNode, n.ShortTag(), n.Line)
}
