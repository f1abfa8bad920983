package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Result is the outcome of a single operation.
type Result struct {
	Outcome            string `json:"outcome"`
	Result             Node   `json:"result,omitempty"`
	FailureDescription Node   `json:"failure-description,omitempty"`
	RolledBack         bool   `json:"rolled-back,omitempty"`
}

// IsSuccess returns true when the outcome is success.
func (r *Result) IsSuccess() bool {
	return r != nil && r.Outcome == OutcomeSuccess
}

// Failure returns the failure of an unsuccessful result, nil otherwise.
func (r *Result) Failure(operation *Operation) error {
	if r.IsSuccess() {
		return nil
	}
	return NewFailure(operation, r.FailureDescription)
}

// NewResult creates a successful result.
func NewResult(value interface{}) *Result {
	return &Result{Outcome: OutcomeSuccess, Result: NewNode(value)}
}

// NewFailedResult creates a failed result.
func NewFailedResult(description string) *Result {
	return &Result{Outcome: OutcomeFailed, FailureDescription: NewNode(description)}
}

// CompositeResult holds the step results of a composite operation, aligned
// with the order in which the steps were added.
type CompositeResult struct {
	steps []*Result
}

// NewCompositeResult creates a composite result from ordered steps.
func NewCompositeResult(steps ...*Result) *CompositeResult {
	return &CompositeResult{steps: steps}
}

// Step returns the result of the i-th step (0-based), nil when out of range.
func (c *CompositeResult) Step(i int) *Result {
	if c == nil || i < 0 || i >= len(c.steps) {
		return nil
	}
	return c.steps[i]
}

// Len returns the number of steps.
func (c *CompositeResult) Len() int {
	if c == nil {
		return 0
	}
	return len(c.steps)
}

// Steps returns all step results.
func (c *CompositeResult) Steps() []*Result {
	return c.steps
}

// StepKey returns the response key of the i-th step (0-based): step-1, step-2, ...
func StepKey(i int) string {
	return "step-" + strconv.Itoa(i+1)
}

// CompositeResultOf reads step-1 .. step-n entries of a composite response
// result. Missing steps are reported as undefined results.
func CompositeResultOf(node Node, n int) (*CompositeResult, error) {
	ret := &CompositeResult{steps: make([]*Result, n)}
	for i := 0; i < n; i++ {
		step := node.Get(StepKey(i))
		if !step.IsDefined() {
			ret.steps[i] = &Result{}
			continue
		}
		data, err := json.Marshal(step.Value())
		if err != nil {
			return nil, err
		}
		result := &Result{}
		if err = json.Unmarshal(data, result); err != nil {
			return nil, fmt.Errorf("invalid %v: %w", StepKey(i), err)
		}
		ret.steps[i] = result
	}
	return ret, nil
}

// Node returns the step results as a step-1 .. step-n object.
func (c *CompositeResult) Node() Node {
	object := make(map[string]interface{}, c.Len())
	for i, step := range c.steps {
		entry := map[string]interface{}{AttrOutcome: step.Outcome}
		if step.Result.IsDefined() {
			entry[AttrResult] = step.Result.Value()
		}
		if step.FailureDescription.IsDefined() {
			entry[AttrFailureDescription] = step.FailureDescription.Value()
		}
		object[StepKey(i)] = entry
	}
	return NewNode(object)
}
