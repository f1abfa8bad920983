package model

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/viant/structology/conv"
	"github.com/viant/toolbox"
)

// Node is a generic management model value: an object, a list or a scalar.
// The zero Node is undefined.
type Node struct {
	value interface{}
}

// Property is a named value of an object node.
type Property struct {
	Name  string
	Value Node
}

// NewNode wraps a decoded JSON value.
func NewNode(value interface{}) Node {
	if node, ok := value.(Node); ok {
		return node
	}
	return Node{value: value}
}

// Value returns the underlying value.
func (n Node) Value() interface{} {
	return n.value
}

// IsDefined returns true if the node holds a value.
func (n Node) IsDefined() bool {
	return n.value != nil
}

// Get returns the child node at the given key path, undefined if any
// element of the path is missing.
func (n Node) Get(path ...string) Node {
	current := n.value
	for _, key := range path {
		object, ok := current.(map[string]interface{})
		if !ok {
			return Node{}
		}
		if current, ok = object[key]; !ok {
			return Node{}
		}
	}
	return Node{value: current}
}

// Has returns true when the object node has the key.
func (n Node) Has(key string) bool {
	object, ok := n.value.(map[string]interface{})
	if !ok {
		return false
	}
	_, ok = object[key]
	return ok
}

// Index returns the list element at i, undefined when out of range.
func (n Node) Index(i int) Node {
	list, ok := n.value.([]interface{})
	if !ok || i < 0 || i >= len(list) {
		return Node{}
	}
	return Node{value: list[i]}
}

// AsString returns the scalar as string, an empty string when undefined.
func (n Node) AsString() string {
	if n.value == nil {
		return ""
	}
	return toolbox.AsString(n.value)
}

// AsInt returns the scalar as int.
func (n Node) AsInt() int {
	if n.value == nil {
		return 0
	}
	return toolbox.AsInt(n.value)
}

// AsBool returns the scalar as bool.
func (n Node) AsBool() bool {
	if n.value == nil {
		return false
	}
	return toolbox.AsBoolean(n.value)
}

// AsList returns list elements, nil for a non list node.
func (n Node) AsList() []Node {
	list, ok := n.value.([]interface{})
	if !ok {
		return nil
	}
	ret := make([]Node, 0, len(list))
	for _, item := range list {
		ret = append(ret, Node{value: item})
	}
	return ret
}

// AsStrings returns list elements as strings.
func (n Node) AsStrings() []string {
	items := n.AsList()
	ret := make([]string, 0, len(items))
	for _, item := range items {
		ret = append(ret, item.AsString())
	}
	return ret
}

// Keys returns sorted object keys.
func (n Node) Keys() []string {
	object, ok := n.value.(map[string]interface{})
	if !ok {
		return nil
	}
	ret := make([]string, 0, len(object))
	for k := range object {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// AsProperties returns object entries sorted by name.
func (n Node) AsProperties() []Property {
	object, ok := n.value.(map[string]interface{})
	if !ok {
		return nil
	}
	ret := make([]Property, 0, len(object))
	for _, key := range n.Keys() {
		ret = append(ret, Property{Name: key, Value: Node{value: object[key]}})
	}
	return ret
}

// Decode converts the node into dest. Dash separated keys are matched with
// camel case fields, so runtime-name populates RuntimeName.
func (n Node) Decode(dest interface{}) error {
	options := conv.DefaultOptions()
	options.IgnoreUnmapped = true
	converter := conv.NewConverter(options)
	return converter.Convert(camelKeys(n.value), dest)
}

// MarshalJSON encodes the node value.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.value)
}

// UnmarshalJSON decodes any JSON value.
func (n *Node) UnmarshalJSON(data []byte) error {
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	n.value = value
	return nil
}

// String returns the JSON representation.
func (n Node) String() string {
	data, err := json.Marshal(n.value)
	if err != nil {
		return toolbox.AsString(n.value)
	}
	return string(data)
}

func camelKeys(value interface{}) interface{} {
	switch actual := value.(type) {
	case map[string]interface{}:
		ret := make(map[string]interface{}, len(actual))
		for k, v := range actual {
			ret[camelCase(k)] = camelKeys(v)
		}
		return ret
	case []interface{}:
		ret := make([]interface{}, len(actual))
		for i, v := range actual {
			ret[i] = camelKeys(v)
		}
		return ret
	}
	return value
}

func camelCase(key string) string {
	if !strings.Contains(key, "-") {
		return key
	}
	parts := strings.Split(key, "-")
	builder := strings.Builder{}
	builder.WriteString(parts[0])
	for _, part := range parts[1:] {
		if part == "" {
			continue
		}
		builder.WriteString(strings.ToUpper(part[:1]))
		builder.WriteString(part[1:])
	}
	return builder.String()
}
