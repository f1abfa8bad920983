package mgmtflow

import (
	"context"
	"fmt"

	"github.com/viant/mgmtflow/changeset"
	"github.com/viant/mgmtflow/flow"
	"github.com/viant/mgmtflow/model"
	"github.com/viant/mgmtflow/tasks/accesscontrol"
	"github.com/viant/mgmtflow/tasks/deployment"
	"github.com/viant/mgmtflow/tasks/patching"
	"github.com/viant/mgmtflow/tasks/subsystem"
	"github.com/viant/mgmtflow/tasks/topology"
)

var resultKey = flow.Key[model.Node]("mgmtflow.result")

// Deployments returns the deployment recipes bound to this service.
func (s *Service) Deployments(ctx context.Context) (*deployment.Recipes, error) {
	env, err := s.Environment(ctx)
	if err != nil {
		return nil, err
	}
	return deployment.NewRecipes(env, s.dispatcher,
		deployment.WithRunner(s),
		deployment.WithMessages(s.messages),
		deployment.WithProgress(func() flow.Progress { return s.tracker("deployment") }),
		deployment.WithLogger(s.logger),
	), nil
}

// Execute runs a single operation as a journaled chain.
func (s *Service) Execute(ctx context.Context, operation *model.Operation) (model.Node, error) {
	task := flow.Named(operation.Name, flow.TaskFunc(func(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
		result, err := s.dispatcher.Execute(ctx, operation)
		if err != nil {
			return nil, err
		}
		return resultKey.Resolve(fctx, result), nil
	}))
	fctx, err := s.Run(ctx, "exec", flow.NewContext(nil), task)
	if err != nil {
		return model.Node{}, err
	}
	ret, _ := resultKey.Get(fctx)
	return ret, nil
}

// Subsystems lists the runtime subsystems of the server at address.
func (s *Service) Subsystems(ctx context.Context, address model.Address) ([]*subsystem.Subsystem, error) {
	env, err := s.Environment(ctx)
	if err != nil {
		return nil, err
	}
	fctx, err := s.Run(ctx, "subsystems", flow.NewContext(s.tracker("subsystems")), subsystem.NewRead(env, s.dispatcher, address))
	if err != nil {
		return nil, err
	}
	ret, _ := subsystem.SubsystemsKey.Get(fctx)
	return ret, nil
}

// Patches reads the patch inventory of every running host.
func (s *Service) Patches(ctx context.Context) ([]*topology.Host, error) {
	env, err := s.Environment(ctx)
	if err != nil {
		return nil, err
	}
	fctx, err := s.Run(ctx, "patches", flow.NewContext(s.tracker("patches")), patching.Patches(env, s.dispatcher)...)
	if err != nil {
		return nil, err
	}
	ret, _ := topology.HostsKey.Get(fctx)
	return ret, nil
}

// Assign adds the role mapping when missing and then the assignment.
func (s *Service) Assign(ctx context.Context, assignment *accesscontrol.Assignment) error {
	_, err := s.Run(ctx, "access-control.assign", flow.NewContext(nil), accesscontrol.Assign(s.dispatcher, assignment)...)
	return err
}

// Unassign removes assignments in a single round trip.
func (s *Service) Unassign(ctx context.Context, assignments ...*accesscontrol.Assignment) error {
	_, err := s.Run(ctx, "access-control.unassign", flow.NewContext(nil), accesscontrol.NewRemoveAssignments(s.dispatcher, assignments...))
	return err
}

// PreviewChange reads the attributes at address and previews changes.
func (s *Service) PreviewChange(ctx context.Context, address model.Address, changes map[string]interface{}) (*changeset.Diff, error) {
	operation := model.NewBuilder(address, model.OpReadResource).
		Param(model.AttrAttributesOnly, true).
		Build()
	current, err := s.dispatcher.Execute(ctx, operation)
	if err != nil {
		return nil, fmt.Errorf("failed to read %v: %w", address, err)
	}
	return changeset.Preview(address, current, changes)
}

// ApplyChange writes changes at address; an empty change set does nothing.
func (s *Service) ApplyChange(ctx context.Context, address model.Address, changes map[string]interface{}) error {
	operation := model.FromChangeSet(address, changes)
	if operation == nil {
		return nil
	}
	_, err := s.Execute(ctx, operation)
	return err
}
