package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/viant/toolbox"
)

// Operation is a single management operation addressed to a resource.
type Operation struct {
	Name    string
	Address Address
	Params  map[string]interface{}
}

// NewOperation creates an operation without parameters.
func NewOperation(address Address, name string) *Operation {
	return &Operation{Name: name, Address: address}
}

// Param returns the named parameter as a Node.
func (o *Operation) Param(name string) Node {
	if o.Params == nil {
		return Node{}
	}
	return NewNode(o.Params[name])
}

// String returns the CLI representation.
func (o *Operation) String() string {
	builder := strings.Builder{}
	if !o.Address.IsRoot() {
		builder.WriteString(o.Address.String())
	}
	builder.WriteByte(':')
	builder.WriteString(o.Name)
	if len(o.Params) == 0 {
		return builder.String()
	}
	names := make([]string, 0, len(o.Params))
	for name := range o.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	builder.WriteByte('(')
	for i, name := range names {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(name)
		builder.WriteByte('=')
		switch value := o.Params[name].(type) {
		case string:
			builder.WriteString(value)
		case []*Operation:
			builder.WriteString(fmt.Sprintf("[%d steps]", len(value)))
		default:
			data, err := json.Marshal(value)
			if err != nil {
				builder.WriteString(toolbox.AsString(value))
				continue
			}
			builder.Write(data)
		}
	}
	builder.WriteByte(')')
	return builder.String()
}

// MarshalJSON encodes the operation in DMR JSON: operation, address and
// parameters flattened into one object.
func (o *Operation) MarshalJSON() ([]byte, error) {
	payload := make(map[string]interface{}, len(o.Params)+2)
	for k, v := range o.Params {
		payload[k] = v
	}
	payload[AttrOperation] = o.Name
	address := o.Address
	if address == nil {
		address = Root()
	}
	payload[AttrAddress] = address
	return json.Marshal(payload)
}

// UnmarshalJSON decodes a DMR JSON operation.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	raw, ok := payload[AttrOperation]
	if !ok {
		return fmt.Errorf("operation name was missing")
	}
	if err := json.Unmarshal(raw, &o.Name); err != nil {
		return fmt.Errorf("invalid operation name: %w", err)
	}
	o.Address = Root()
	if raw, ok = payload[AttrAddress]; ok {
		if err := json.Unmarshal(raw, &o.Address); err != nil {
			return err
		}
	}
	delete(payload, AttrOperation)
	delete(payload, AttrAddress)
	if len(payload) == 0 {
		return nil
	}
	o.Params = make(map[string]interface{}, len(payload))
	for k, raw := range payload {
		if k == AttrSteps {
			var steps []*Operation
			if err := json.Unmarshal(raw, &steps); err != nil {
				return fmt.Errorf("invalid steps: %w", err)
			}
			o.Params[k] = steps
			continue
		}
		var value interface{}
		if err := json.Unmarshal(raw, &value); err != nil {
			return err
		}
		o.Params[k] = value
	}
	return nil
}

// Builder builds operations.
type Builder struct {
	operation *Operation
}

// NewBuilder starts an operation for the address.
func NewBuilder(address Address, name string) *Builder {
	return &Builder{operation: &Operation{Name: name, Address: address}}
}

// Param sets a parameter.
func (b *Builder) Param(name string, value interface{}) *Builder {
	if b.operation.Params == nil {
		b.operation.Params = map[string]interface{}{}
	}
	if node, ok := value.(Node); ok {
		value = node.Value()
	}
	b.operation.Params[name] = value
	return b
}

// Payload copies all entries of an object (map or object Node) as parameters.
func (b *Builder) Payload(payload interface{}) *Builder {
	switch actual := payload.(type) {
	case map[string]interface{}:
		for k, v := range actual {
			b.Param(k, v)
		}
	case Node:
		for _, property := range actual.AsProperties() {
			b.Param(property.Name, property.Value.Value())
		}
	}
	return b
}

// Build returns the operation.
func (b *Builder) Build() *Operation {
	return b.operation
}
