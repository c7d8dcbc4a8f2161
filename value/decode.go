package value

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Decode parses a YAML (or JSON) document into graph values. Mapping key order
// is kept as Object key order.
func Decode(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	return decoder{anchors: map[*yaml.Node]any{}}.node(&doc)
}

// DecodeObject is Decode for documents whose root must be a mapping.
func DecodeObject(data []byte) (*Object, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	o, ok := v.(*Object)
	if !ok {
		return nil, fmt.Errorf("decoding model: root is %T, want a mapping", v)
	}
	return o, nil
}

// decoder resolves aliases to the value decoded for their anchor, so anchored
// mappings and sequences become shared references.
type decoder struct {
	anchors map[*yaml.Node]any
}

func (d decoder) node(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.node(n.Content[0])
	case yaml.AliasNode:
		if v, ok := d.anchors[n.Alias]; ok {
			return v, nil
		}
		return d.node(n.Alias)
	case yaml.MappingNode:
		o := NewObject()
		if n.Anchor != "" {
			d.anchors[n] = o
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			var key string
			if err := n.Content[i].Decode(&key); err != nil {
				return nil, fmt.Errorf("line %d: mapping key: %w", n.Content[i].Line, err)
			}
			v, err := d.node(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			o.Store(key, v)
		}
		return o, nil
	case yaml.SequenceNode:
		l := NewList()
		if n.Anchor != "" {
			d.anchors[n] = l
		}
		for _, c := range n.Content {
			v, err := d.node(c)
			if err != nil {
				return nil, err
			}
			l.AppendRaw(v)
		}
		return l, nil
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: scalar: %w", n.Line, err)
		}
		if !IsScalar(v) {
			return String(v), nil
		}
		return v, nil
	}
	return nil, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
}

// From converts plain Go trees (map[string]any, []any, scalars) into graph
// values. Map keys are sorted since Go maps carry no order. Values that are
// already graph values are returned as is.
func From(v any) (any, error) {
	switch v := v.(type) {
	case *Object, *List:
		return v, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		o := NewObject()
		for _, k := range keys {
			c, err := From(v[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			o.Store(k, c)
		}
		return o, nil
	case []any:
		l := NewList()
		for i, item := range v {
			c, err := From(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			l.AppendRaw(c)
		}
		return l, nil
	}
	if IsScalar(v) {
		return v, nil
	}
	return nil, fmt.Errorf("unsupported type %T", v)
}

// Plain converts graph values back into map[string]any / []any trees.
// Shared or cyclic references are emitted once; later visits yield nil.
func Plain(v any) any {
	return plain(v, map[any]bool{})
}

func plain(v any, seen map[any]bool) any {
	switch v := v.(type) {
	case *Object:
		if seen[v] {
			return nil
		}
		seen[v] = true
		m := make(map[string]any, v.Len())
		for _, k := range v.keys {
			m[k] = plain(v.fields[k], seen)
		}
		return m
	case *List:
		if seen[v] {
			return nil
		}
		seen[v] = true
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = plain(item, seen)
		}
		return out
	}
	return v
}

// FromNode converts an already parsed YAML node, e.g. a field of a larger
// document, into graph values.
func FromNode(n *yaml.Node) (any, error) {
	if n == nil || n.Kind == 0 {
		return nil, nil
	}
	return decoder{anchors: map[*yaml.Node]any{}}.node(n)
}
