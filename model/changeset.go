package model

import "sort"

// FromChangeSet creates the operation applying attribute changes to a
// resource: write-attribute for values, undefine-attribute for nil or empty
// values. Several changes are combined into one composite, ordered by name.
// It returns nil for an empty change set.
func FromChangeSet(address Address, changes map[string]interface{}) *Operation {
	if len(changes) == 0 {
		return nil
	}
	names := make([]string, 0, len(changes))
	for name := range changes {
		names = append(names, name)
	}
	sort.Strings(names)
	composite := NewComposite()
	for _, name := range names {
		composite.Add(attributeOperation(address, name, changes[name]))
	}
	if composite.Len() == 1 {
		return composite.Operations()[0]
	}
	return composite.Operation()
}

func attributeOperation(address Address, name string, value interface{}) *Operation {
	if isUndefined(value) {
		return NewBuilder(address, OpUndefineAttribute).Param(AttrName, name).Build()
	}
	return NewBuilder(address, OpWriteAttribute).Param(AttrName, name).Param(AttrValue, value).Build()
}

func isUndefined(value interface{}) bool {
	switch actual := value.(type) {
	case nil:
		return true
	case string:
		return actual == ""
	case []string:
		return len(actual) == 0
	case []interface{}:
		return len(actual) == 0
	case Node:
		return !actual.IsDefined()
	}
	return false
}
