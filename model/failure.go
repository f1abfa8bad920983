package model

import (
	"errors"
	"regexp"
	"strings"
)

var codeExpr = regexp.MustCompile(`WFLY[A-Z]*[0-9]+`)

// Failure is the error returned for an operation the server rejected.
type Failure struct {
	Operation   *Operation
	Description string
}

// NewFailure creates a failure from a failure-description node. Structured
// descriptions (composite failures) are kept as JSON text.
func NewFailure(operation *Operation, description Node) *Failure {
	text := ""
	if _, ok := description.Value().(string); ok || !description.IsDefined() {
		text = description.AsString()
	} else {
		text = description.String()
	}
	if text == "" {
		text = "operation failed"
	}
	return &Failure{Operation: operation, Description: text}
}

// Error returns the failure description prefixed by the operation.
func (f *Failure) Error() string {
	if f.Operation == nil {
		return f.Description
	}
	return f.Operation.Address.String() + ":" + f.Operation.Name + " failed: " + f.Description
}

// Code returns the first WFLY message code of the description.
func (f *Failure) Code() string {
	return codeExpr.FindString(f.Description)
}

// Contains returns true when the description mentions code.
func (f *Failure) Contains(code string) bool {
	return strings.Contains(f.Description, code)
}

// HasCode returns true when err is a Failure mentioning code.
func HasCode(err error, code string) bool {
	var failure *Failure
	if !errors.As(err, &failure) {
		return false
	}
	return failure.Contains(code)
}
