package accesscontrol

import (
	"context"

	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/flow"
	"github.com/viant/mgmtflow/model"
)

// CheckRoleMapping pushes StatusExists when the role mapping can be read.
// Any failure reading it pushes StatusNotFound.
type CheckRoleMapping struct {
	dispatcher dispatcher.Dispatcher
	role       *Role
}

// NewCheckRoleMapping creates the task.
func NewCheckRoleMapping(d dispatcher.Dispatcher, role *Role) *CheckRoleMapping {
	return &CheckRoleMapping{dispatcher: d, role: role}
}

// Name returns the task name.
func (t *CheckRoleMapping) Name() string { return "check-role-mapping" }

// Apply reads the role mapping.
func (t *CheckRoleMapping) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	operation := model.NewOperation(RoleMappingAddress(t.role), model.OpReadResource)
	if _, err := t.dispatcher.Execute(ctx, operation); err != nil {
		return flow.PushStatus(fctx, flow.StatusNotFound), nil
	}
	return flow.PushStatus(fctx, flow.StatusExists), nil
}

// conditional pops the status and reports whether the predicate holds. An
// empty stack never holds.
func conditional(fctx *flow.Context, predicate flow.StatusPredicate) bool {
	status, ok := flow.PopStatus(fctx)
	if !ok {
		return false
	}
	return predicate == nil || predicate(status)
}

// AddRoleMapping adds the role mapping when the predicate holds for the
// status on the stack.
type AddRoleMapping struct {
	dispatcher dispatcher.Dispatcher
	role       *Role
	predicate  flow.StatusPredicate
}

// NewAddRoleMapping creates the task.
func NewAddRoleMapping(d dispatcher.Dispatcher, role *Role, predicate flow.StatusPredicate) *AddRoleMapping {
	return &AddRoleMapping{dispatcher: d, role: role, predicate: predicate}
}

// Name returns the task name.
func (t *AddRoleMapping) Name() string { return "add-role-mapping" }

// Apply adds the role mapping.
func (t *AddRoleMapping) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	if !conditional(fctx, t.predicate) {
		return flow.Continue(fctx)
	}
	operation := model.NewOperation(RoleMappingAddress(t.role), model.OpAdd)
	if _, err := t.dispatcher.Execute(ctx, operation); err != nil {
		return nil, err
	}
	return flow.Continue(fctx)
}

// RemoveRoleMapping removes the role mapping when the predicate holds for
// the status on the stack.
type RemoveRoleMapping struct {
	dispatcher dispatcher.Dispatcher
	role       *Role
	predicate  flow.StatusPredicate
}

// NewRemoveRoleMapping creates the task.
func NewRemoveRoleMapping(d dispatcher.Dispatcher, role *Role, predicate flow.StatusPredicate) *RemoveRoleMapping {
	return &RemoveRoleMapping{dispatcher: d, role: role, predicate: predicate}
}

// Name returns the task name.
func (t *RemoveRoleMapping) Name() string { return "remove-role-mapping" }

// Apply removes the role mapping.
func (t *RemoveRoleMapping) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	if !conditional(fctx, t.predicate) {
		return flow.Continue(fctx)
	}
	operation := model.NewOperation(RoleMappingAddress(t.role), model.OpRemove)
	if _, err := t.dispatcher.Execute(ctx, operation); err != nil {
		return nil, err
	}
	return flow.Continue(fctx)
}

// ModifyIncludeAll writes the include-all attribute of a role mapping.
type ModifyIncludeAll struct {
	dispatcher dispatcher.Dispatcher
	role       *Role
	includeAll bool
}

// NewModifyIncludeAll creates the task.
func NewModifyIncludeAll(d dispatcher.Dispatcher, role *Role, includeAll bool) *ModifyIncludeAll {
	return &ModifyIncludeAll{dispatcher: d, role: role, includeAll: includeAll}
}

// Name returns the task name.
func (t *ModifyIncludeAll) Name() string { return "modify-include-all" }

// Apply writes the attribute.
func (t *ModifyIncludeAll) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	operation := model.NewBuilder(RoleMappingAddress(t.role), model.OpWriteAttribute).
		Param(model.AttrName, model.AttrIncludeAll).
		Param(model.AttrValue, t.includeAll).
		Build()
	if _, err := t.dispatcher.Execute(ctx, operation); err != nil {
		return nil, err
	}
	return flow.Continue(fctx)
}

// AddAssignment includes or excludes a principal.
type AddAssignment struct {
	dispatcher dispatcher.Dispatcher
	assignment *Assignment
}

// NewAddAssignment creates the task.
func NewAddAssignment(d dispatcher.Dispatcher, assignment *Assignment) *AddAssignment {
	return &AddAssignment{dispatcher: d, assignment: assignment}
}

// Name returns the task name.
func (t *AddAssignment) Name() string { return "add-assignment" }

// Apply adds the include or exclude resource.
func (t *AddAssignment) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	principal := t.assignment.Principal
	builder := model.NewBuilder(AssignmentAddress(t.assignment), model.OpAdd).
		Param(model.AttrName, principal.Name).
		Param(model.AttrType, string(principal.Type))
	if principal.Realm != "" {
		builder.Param(model.AttrRealm, principal.Realm)
	}
	if _, err := t.dispatcher.Execute(ctx, builder.Build()); err != nil {
		return nil, err
	}
	return flow.Continue(fctx)
}

// RemoveAssignments removes assignments: nothing for none, a single remove
// for one and a composite otherwise.
type RemoveAssignments struct {
	dispatcher  dispatcher.Dispatcher
	assignments []*Assignment
}

// NewRemoveAssignments creates the task.
func NewRemoveAssignments(d dispatcher.Dispatcher, assignments ...*Assignment) *RemoveAssignments {
	return &RemoveAssignments{dispatcher: d, assignments: assignments}
}

// Name returns the task name.
func (t *RemoveAssignments) Name() string { return "remove-assignments" }

// Apply removes the assignments.
func (t *RemoveAssignments) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	switch len(t.assignments) {
	case 0:
		return flow.Continue(fctx)
	case 1:
		operation := model.NewOperation(AssignmentAddress(t.assignments[0]), model.OpRemove)
		if _, err := t.dispatcher.Execute(ctx, operation); err != nil {
			return nil, err
		}
	default:
		composite := model.NewComposite()
		for _, assignment := range t.assignments {
			composite.Add(model.NewOperation(AssignmentAddress(assignment), model.OpRemove))
		}
		if _, err := t.dispatcher.ExecuteComposite(ctx, composite); err != nil {
			return nil, err
		}
	}
	return flow.Continue(fctx)
}

// AddScopedRole defines a host or server group scoped role.
type AddScopedRole struct {
	dispatcher dispatcher.Dispatcher
	role       *Role
	payload    map[string]interface{}
}

// NewAddScopedRole creates the task. The payload typically carries
// base-role and hosts or server-groups.
func NewAddScopedRole(d dispatcher.Dispatcher, role *Role, payload map[string]interface{}) *AddScopedRole {
	return &AddScopedRole{dispatcher: d, role: role, payload: payload}
}

// Name returns the task name.
func (t *AddScopedRole) Name() string { return "add-scoped-role" }

// Apply adds the scoped role.
func (t *AddScopedRole) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	if !t.role.IsScoped() {
		return nil, ErrNotScoped
	}
	operation := model.NewBuilder(ScopedRoleAddress(t.role), model.OpAdd).
		Payload(t.payload).
		Build()
	if _, err := t.dispatcher.Execute(ctx, operation); err != nil {
		return nil, err
	}
	return flow.Continue(fctx)
}

// ModifyScopedRole writes changed attributes of a scoped role.
type ModifyScopedRole struct {
	dispatcher dispatcher.Dispatcher
	role       *Role
	changes    map[string]interface{}
}

// NewModifyScopedRole creates the task.
func NewModifyScopedRole(d dispatcher.Dispatcher, role *Role, changes map[string]interface{}) *ModifyScopedRole {
	return &ModifyScopedRole{dispatcher: d, role: role, changes: changes}
}

// Name returns the task name.
func (t *ModifyScopedRole) Name() string { return "modify-scoped-role" }

// Apply writes the changes, if any.
func (t *ModifyScopedRole) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	if !t.role.IsScoped() {
		return nil, ErrNotScoped
	}
	operation := model.FromChangeSet(ScopedRoleAddress(t.role), t.changes)
	if operation == nil {
		return flow.Continue(fctx)
	}
	if _, err := t.dispatcher.Execute(ctx, operation); err != nil {
		return nil, err
	}
	return flow.Continue(fctx)
}

// RemoveScopedRole removes a scoped role definition.
type RemoveScopedRole struct {
	dispatcher dispatcher.Dispatcher
	role       *Role
}

// NewRemoveScopedRole creates the task.
func NewRemoveScopedRole(d dispatcher.Dispatcher, role *Role) *RemoveScopedRole {
	return &RemoveScopedRole{dispatcher: d, role: role}
}

// Name returns the task name.
func (t *RemoveScopedRole) Name() string { return "remove-scoped-role" }

// Apply removes the scoped role.
func (t *RemoveScopedRole) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	if !t.role.IsScoped() {
		return nil, ErrNotScoped
	}
	operation := model.NewOperation(ScopedRoleAddress(t.role), model.OpRemove)
	if _, err := t.dispatcher.Execute(ctx, operation); err != nil {
		return nil, err
	}
	return flow.Continue(fctx)
}

// Assign returns the chain adding a role mapping when missing and then the
// assignment.
func Assign(d dispatcher.Dispatcher, assignment *Assignment) []flow.Task {
	return []flow.Task{
		NewCheckRoleMapping(d, assignment.Role),
		NewAddRoleMapping(d, assignment.Role, flow.IfNotFound),
		NewAddAssignment(d, assignment),
	}
}
