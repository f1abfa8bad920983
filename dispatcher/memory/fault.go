package memory

import (
	"github.com/viant/mgmtflow/model"
)

// Fault returns a failure description for operations it rejects, or an
// empty string.
type Fault func(operation *model.Operation) string

// FailOperation rejects every operation with the given name.
func FailOperation(name, description string) Fault {
	return func(operation *model.Operation) string {
		if operation.Name == name {
			return description
		}
		return ""
	}
}

// FailAddress rejects any operation with the given name on address.
func FailAddress(address model.Address, name, description string) Fault {
	return func(operation *model.Operation) string {
		if operation.Name == name && operation.Address.Equal(address) {
			return description
		}
		return ""
	}
}
