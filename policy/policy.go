// Package policy gates management operations before they reach the server.
// A nil *Policy executes everything.
package policy

import (
	"context"
	"strings"

	"github.com/viant/mgmtflow/model"
)

// Execution modes.
const (
	ModeAsk  = "ask"  // ask before every write operation
	ModeAuto = "auto" // execute automatically (default)
	ModeDeny = "deny" // reject every write operation
)

// AskFunc is invoked in ModeAsk. Returning true approves the operation.
// Implementations may mutate the policy, e.g. switch to ModeAuto after the
// first approval.
type AskFunc func(ctx context.Context, action string, operation *model.Operation, p *Policy) bool

// Policy holds the approval settings.
//
// AllowList and BlockList apply in every mode and match an action name
// ("deployment:remove") or a bare operation name ("remove").
type Policy struct {
	Mode      string
	AllowList []string
	BlockList []string
	Ask       AskFunc
}

// Config is the serialisable part of a Policy.
type Config struct {
	Mode      string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowList []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	BlockList []string `json:"block,omitempty" yaml:"block,omitempty"`
}

// Validate reports an unknown mode.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Mode {
	case "", ModeAuto, ModeAsk, ModeDeny:
		return nil
	}
	return &ModeError{Mode: c.Mode}
}

// IsZero returns true when nothing is configured.
func (c *Config) IsZero() bool {
	return c.Mode == "" && len(c.AllowList) == 0 && len(c.BlockList) == 0
}

// ToConfig converts a runtime Policy into a persistable Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{
		Mode:      p.Mode,
		AllowList: append([]string(nil), p.AllowList...),
		BlockList: append([]string(nil), p.BlockList...),
	}
}

// FromConfig converts a Config back to a Policy without AskFunc.
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{
		Mode:      c.Mode,
		AllowList: append([]string(nil), c.AllowList...),
		BlockList: append([]string(nil), c.BlockList...),
	}
}

// Action returns "<resource-type>:<operation>" or the bare operation name
// for the root address.
func Action(operation *model.Operation) string {
	if operation.Address.IsRoot() {
		return operation.Name
	}
	return operation.Address.Last().Key + ":" + operation.Name
}

// IsReadOnly returns true for operations without side effects.
func IsReadOnly(operation *model.Operation) bool {
	return strings.HasPrefix(operation.Name, "read-")
}

// IsAllowed evaluates BlockList then AllowList. Matching is case-insensitive.
func (p *Policy) IsAllowed(operation *model.Operation) bool {
	if p == nil {
		return true
	}
	action := strings.ToLower(Action(operation))
	name := strings.ToLower(operation.Name)
	matches := func(candidate string) bool {
		candidate = strings.ToLower(candidate)
		return candidate == action || candidate == name
	}
	for _, b := range p.BlockList {
		if matches(b) {
			return false
		}
	}
	if len(p.AllowList) == 0 {
		return true
	}
	for _, a := range p.AllowList {
		if matches(a) {
			return true
		}
	}
	return false
}

// Check returns nil when operation may run.
func (p *Policy) Check(ctx context.Context, operation *model.Operation) error {
	if p == nil {
		return nil
	}
	if !p.IsAllowed(operation) {
		return &DeniedError{Action: Action(operation), Reason: "blocked by policy"}
	}
	if IsReadOnly(operation) {
		return nil
	}
	switch p.Mode {
	case ModeDeny:
		return &DeniedError{Action: Action(operation), Reason: "write operations are denied"}
	case ModeAsk:
		if p.Ask == nil || !p.Ask(ctx, Action(operation), operation, p) {
			return &DeniedError{Action: Action(operation), Reason: "not approved"}
		}
	}
	return nil
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext returns the policy embedded in ctx or nil.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
