package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Segment is one key=value element of an address.
type Segment struct {
	Key   string
	Value string
}

// String returns key=value.
func (s Segment) String() string {
	return s.Key + "=" + s.Value
}

// Address is an ordered resource address, the root address is empty.
type Address []Segment

// Root returns the root address.
func Root() Address {
	return Address{}
}

// NewAddress creates an address from key, value pairs. A trailing key
// without value is ignored.
func NewAddress(pairs ...string) Address {
	ret := make(Address, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		ret = append(ret, Segment{Key: pairs[i], Value: pairs[i+1]})
	}
	return ret
}

// Add returns a copy of the address extended with key=value.
func (a Address) Add(key, value string) Address {
	ret := make(Address, len(a), len(a)+1)
	copy(ret, a)
	return append(ret, Segment{Key: key, Value: value})
}

// Append returns a copy of the address extended with all segments of other.
func (a Address) Append(other Address) Address {
	ret := make(Address, len(a), len(a)+len(other))
	copy(ret, a)
	return append(ret, other...)
}

// IsRoot returns true for the root address.
func (a Address) IsRoot() bool {
	return len(a) == 0
}

// Last returns the last segment, zero value for the root address.
func (a Address) Last() Segment {
	if len(a) == 0 {
		return Segment{}
	}
	return a[len(a)-1]
}

// Parent returns the address without the last segment.
func (a Address) Parent() Address {
	if len(a) == 0 {
		return a
	}
	ret := make(Address, len(a)-1)
	copy(ret, a[:len(a)-1])
	return ret
}

// Value returns the value of the first segment with the given key.
func (a Address) Value(key string) string {
	for _, segment := range a {
		if segment.Key == key {
			return segment.Value
		}
	}
	return ""
}

// Equal returns true when both addresses have the same segments.
func (a Address) Equal(other Address) bool {
	if len(a) != len(other) {
		return false
	}
	for i := range a {
		if a[i] != other[i] {
			return false
		}
	}
	return true
}

// String returns the CLI representation, for example /subsystem=logging.
func (a Address) String() string {
	if len(a) == 0 {
		return "/"
	}
	builder := strings.Builder{}
	for _, segment := range a {
		builder.WriteByte('/')
		builder.WriteString(segment.String())
	}
	return builder.String()
}

// MarshalJSON encodes the address as a DMR list of single key objects.
func (a Address) MarshalJSON() ([]byte, error) {
	items := make([]map[string]string, 0, len(a))
	for _, segment := range a {
		items = append(items, map[string]string{segment.Key: segment.Value})
	}
	return json.Marshal(items)
}

// UnmarshalJSON decodes a DMR list of single key objects.
func (a *Address) UnmarshalJSON(data []byte) error {
	var items []map[string]string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("invalid address %s: %w", data, err)
	}
	ret := make(Address, 0, len(items))
	for _, item := range items {
		if len(item) != 1 {
			return fmt.Errorf("invalid address segment: %v", item)
		}
		for k, v := range item {
			ret = append(ret, Segment{Key: k, Value: v})
		}
	}
	*a = ret
	return nil
}

// NodeAddress converts a DMR address node into an Address.
func NodeAddress(node Node) Address {
	var ret Address
	for _, item := range node.AsList() {
		for _, property := range item.AsProperties() {
			ret = append(ret, Segment{Key: property.Name, Value: property.Value.AsString()})
		}
	}
	return ret
}
