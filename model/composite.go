package model

// Composite batches operations into a single composite operation executed in
// one round trip. The response steps are aligned with the order of Add.
type Composite struct {
	operations []*Operation
}

// NewComposite creates a composite with the given operations.
func NewComposite(operations ...*Operation) *Composite {
	ret := &Composite{}
	for _, operation := range operations {
		ret.Add(operation)
	}
	return ret
}

// Add appends an operation, nil operations are ignored.
func (c *Composite) Add(operation *Operation) *Composite {
	if operation != nil {
		c.operations = append(c.operations, operation)
	}
	return c
}

// Len returns the number of steps.
func (c *Composite) Len() int {
	return len(c.operations)
}

// IsEmpty returns true when no step was added.
func (c *Composite) IsEmpty() bool {
	return len(c.operations) == 0
}

// Operations returns the steps in submission order.
func (c *Composite) Operations() []*Operation {
	return c.operations
}

// Operation returns the composite operation sent to the server.
func (c *Composite) Operation() *Operation {
	steps := make([]*Operation, len(c.operations))
	copy(steps, c.operations)
	return NewBuilder(Root(), OpComposite).Param(AttrSteps, steps).Build()
}
