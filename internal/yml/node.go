// Package yml provides helpers over yaml.v3 document nodes.
package yml

import (
	"gopkg.in/yaml.v3"
)

// Node is a yaml.v3 node.
type Node yaml.Node

// Lookup returns the value node of a mapping key, nil when missing.
func (n *Node) Lookup(name string) *Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return (*Node)(n.Content[0]).Lookup(name)
	}
	if n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == name {
			return (*Node)(n.Content[i+1])
		}
	}
	return nil
}

// Walk visits n and all its descendants depth first.
func (n *Node) Walk(visit func(node *Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, child := range n.Content {
		(*Node)(child).Walk(visit)
	}
}

// MapStrings rewrites every string scalar value with fn. Mapping keys are
// left untouched.
func (n *Node) MapStrings(fn func(string) string) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.MappingNode:
		for i := 1; i < len(n.Content); i += 2 {
			(*Node)(n.Content[i]).MapStrings(fn)
		}
		return
	case yaml.ScalarNode:
		if n.Tag == "!!str" || n.Tag == "" {
			n.Value = fn(n.Value)
		}
		return
	}
	for _, child := range n.Content {
		(*Node)(child).MapStrings(fn)
	}
}

// Decode decodes n into dest.
func (n *Node) Decode(dest interface{}) error {
	return (*yaml.Node)(n).Decode(dest)
}

// Parse parses a YAML document.
func Parse(data []byte) (*Node, error) {
	node := &yaml.Node{}
	if err := yaml.Unmarshal(data, node); err != nil {
		return nil, err
	}
	return (*Node)(node), nil
}
