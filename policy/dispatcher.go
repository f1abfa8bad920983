package policy

import (
	"context"

	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/model"
)

// Guard checks every operation against a policy before delegating. A
// policy embedded in the call context takes precedence over the default.
type Guard struct {
	dispatcher dispatcher.Dispatcher
	policy     *Policy
}

// NewGuard wraps d.
func NewGuard(d dispatcher.Dispatcher, p *Policy) *Guard {
	return &Guard{dispatcher: d, policy: p}
}

func (g *Guard) policyOf(ctx context.Context) *Policy {
	if p := FromContext(ctx); p != nil {
		return p
	}
	return g.policy
}

// Execute implements dispatcher.Dispatcher.
func (g *Guard) Execute(ctx context.Context, operation *model.Operation) (model.Node, error) {
	if err := g.policyOf(ctx).Check(ctx, operation); err != nil {
		return model.Node{}, err
	}
	return g.dispatcher.Execute(ctx, operation)
}

// ExecuteComposite rejects the whole composite when any step is denied.
func (g *Guard) ExecuteComposite(ctx context.Context, composite *model.Composite) (*model.CompositeResult, error) {
	p := g.policyOf(ctx)
	for _, operation := range composite.Operations() {
		if err := p.Check(ctx, operation); err != nil {
			return nil, err
		}
	}
	return g.dispatcher.ExecuteComposite(ctx, composite)
}

// Upload implements dispatcher.Dispatcher.
func (g *Guard) Upload(ctx context.Context, attachment *dispatcher.Attachment, operation *model.Operation) (model.Node, error) {
	if err := g.policyOf(ctx).Check(ctx, operation); err != nil {
		return model.Node{}, err
	}
	return g.dispatcher.Upload(ctx, attachment, operation)
}
