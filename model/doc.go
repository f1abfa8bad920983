// Package model defines the management model types exchanged with a
// management endpoint: resource addresses, operations, composite batches
// and the generic DMR value tree returned by the server.
//
// Operations are built with a Builder or parsed from the CLI syntax:
//
//	op, err := model.ParseOperation("/deployment=app.war:read-resource(include-runtime=true)")
//
// Composite batches are executed in a single round trip and answered with a
// CompositeResult whose steps are aligned with the submission order.
package model
