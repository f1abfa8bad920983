// Package deployment provides tasks and recipes uploading, deploying and
// inspecting deployments.
package deployment

import (
	"context"

	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/flow"
	"github.com/viant/mgmtflow/model"
	"github.com/viant/mgmtflow/tasks/topology"
)

// CheckDeployment pushes StatusExists when a deployment with the name
// exists, StatusNotFound otherwise.
type CheckDeployment struct {
	dispatcher dispatcher.Dispatcher
	name       string
}

// NewCheckDeployment creates the task.
func NewCheckDeployment(d dispatcher.Dispatcher, name string) *CheckDeployment {
	return &CheckDeployment{dispatcher: d, name: name}
}

// Name returns the task name.
func (t *CheckDeployment) Name() string { return "check-deployment" }

// Apply reads the deployment names.
func (t *CheckDeployment) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	operation := model.NewBuilder(model.Root(), model.OpReadChildrenNames).
		Param(model.AttrChildType, model.ResDeployment).
		Build()
	result, err := t.dispatcher.Execute(ctx, operation)
	if err != nil {
		return nil, err
	}
	for _, name := range result.AsStrings() {
		if name == t.name {
			return flow.PushStatus(fctx, flow.StatusExists), nil
		}
	}
	return flow.PushStatus(fctx, flow.StatusNotFound), nil
}

// UploadOrReplace creates a deployment, or replaces it when StatusExists is
// on top of the stack. An empty stack or any other status creates it. The
// outcome is recorded in UploadStatistics; a failed upload is recorded and
// does not fail the chain.
type UploadOrReplace struct {
	env         *model.Environment
	dispatcher  dispatcher.Dispatcher
	name        string
	runtimeName string
	attachment  *dispatcher.Attachment
	enabled     bool
}

// NewUploadOrReplace creates the task.
func NewUploadOrReplace(env *model.Environment, d dispatcher.Dispatcher, name, runtimeName string, attachment *dispatcher.Attachment, enabled bool) *UploadOrReplace {
	return &UploadOrReplace{env: env, dispatcher: d, name: name, runtimeName: runtimeName, attachment: attachment, enabled: enabled}
}

// Name returns the task name.
func (t *UploadOrReplace) Name() string { return "upload-or-replace" }

// Apply uploads the attachment.
func (t *UploadOrReplace) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	status, _ := flow.PopStatus(fctx)
	replace := status == flow.StatusExists

	var operation *model.Operation
	if replace {
		// enabled stays undefined so the state of the existing deployment is retained
		operation = model.NewBuilder(model.Root(), model.OpFullReplaceDeployment).
			Param(model.AttrName, t.name).
			Param(model.AttrRuntimeName, t.runtimeName).
			Build()
	} else {
		operation = model.NewBuilder(model.NewAddress(model.ResDeployment, t.name), model.OpAdd).
			Param(model.AttrRuntimeName, t.runtimeName).
			Param(model.AttrEnabled, t.enabled).
			Build()
	}
	dispatcher.InputStream(operation)

	_, err := t.dispatcher.Upload(ctx, t.attachment, operation)
	statistics, ok := UploadStatisticsKey.Get(fctx)
	if !ok {
		statistics = NewUploadStatistics(t.env)
		UploadStatisticsKey.Set(fctx, statistics)
	}
	switch {
	case err != nil:
		statistics.recordFailed(t.name)
	case replace:
		statistics.recordReplaced(t.name)
	default:
		statistics.recordAdded(t.name)
	}
	return fctx, nil
}

// AddServerGroupDeployment deploys content to a server group. In standalone
// mode it stores an empty ServerGroupDeploymentsKey list instead.
type AddServerGroupDeployment struct {
	env         *model.Environment
	dispatcher  dispatcher.Dispatcher
	name        string
	runtimeName string
	serverGroup string
}

// NewAddServerGroupDeployment creates the task.
func NewAddServerGroupDeployment(env *model.Environment, d dispatcher.Dispatcher, name, runtimeName, serverGroup string) *AddServerGroupDeployment {
	return &AddServerGroupDeployment{env: env, dispatcher: d, name: name, runtimeName: runtimeName, serverGroup: serverGroup}
}

// Name returns the task name.
func (t *AddServerGroupDeployment) Name() string { return "add-server-group-deployment" }

// Apply adds the server group deployment.
func (t *AddServerGroupDeployment) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	if t.env.IsStandalone() {
		return ServerGroupDeploymentsKey.Resolve(fctx, []*ServerGroupDeployment{}), nil
	}
	address := model.NewAddress(model.ResServerGroup, t.serverGroup, model.ResDeployment, t.name)
	operation := model.NewBuilder(address, model.OpAdd).
		Param(model.AttrRuntimeName, t.runtimeName).
		Param(model.AttrEnabled, true).
		Build()
	if _, err := t.dispatcher.Execute(ctx, operation); err != nil {
		return nil, err
	}
	return flow.Continue(fctx)
}

// ReadServerGroupDeployments stores the deployments of a server group (or a
// single one) under ServerGroupDeploymentsKey. Standalone stores an empty list.
type ReadServerGroupDeployments struct {
	env         *model.Environment
	dispatcher  dispatcher.Dispatcher
	serverGroup string
	deployment  string
}

// NewReadServerGroupDeployments creates the task; an empty deployment reads all.
func NewReadServerGroupDeployments(env *model.Environment, d dispatcher.Dispatcher, serverGroup, deployment string) *ReadServerGroupDeployments {
	return &ReadServerGroupDeployments{env: env, dispatcher: d, serverGroup: serverGroup, deployment: deployment}
}

// Name returns the task name.
func (t *ReadServerGroupDeployments) Name() string { return "read-server-group-deployments" }

// Apply reads the deployments.
func (t *ReadServerGroupDeployments) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	if t.env.IsStandalone() {
		return ServerGroupDeploymentsKey.Resolve(fctx, []*ServerGroupDeployment{}), nil
	}
	if t.deployment != "" {
		address := model.NewAddress(model.ResServerGroup, t.serverGroup, model.ResDeployment, t.deployment)
		operation := model.NewBuilder(address, model.OpReadResource).Param(model.AttrIncludeRuntime, true).Build()
		result, err := t.dispatcher.Execute(ctx, operation)
		if err != nil {
			return nil, err
		}
		deployments := []*ServerGroupDeployment{newServerGroupDeployment(t.serverGroup, t.deployment, result)}
		return ServerGroupDeploymentsKey.Resolve(fctx, deployments), nil
	}
	operation := model.NewBuilder(model.NewAddress(model.ResServerGroup, t.serverGroup), model.OpReadChildrenResources).
		Param(model.AttrChildType, model.ResDeployment).
		Param(model.AttrIncludeRuntime, true).
		Build()
	result, err := t.dispatcher.Execute(ctx, operation)
	if err != nil {
		return nil, err
	}
	deployments := []*ServerGroupDeployment{}
	for _, property := range result.AsProperties() {
		deployments = append(deployments, newServerGroupDeployment(t.serverGroup, property.Name, property.Value))
	}
	return ServerGroupDeploymentsKey.Resolve(fctx, deployments), nil
}

// LoadContent reads the content repository together with the server group
// deployments in one composite and pushes []*Content onto the stack.
type LoadContent struct {
	dispatcher  dispatcher.Dispatcher
	serverGroup string
}

// NewLoadContent creates the task; serverGroup "*" (or empty) matches any group.
func NewLoadContent(d dispatcher.Dispatcher, serverGroup string) *LoadContent {
	if serverGroup == "" {
		serverGroup = "*"
	}
	return &LoadContent{dispatcher: d, serverGroup: serverGroup}
}

// Name returns the task name.
func (t *LoadContent) Name() string { return "load-content" }

// Apply reads the content.
func (t *LoadContent) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	contentOp := model.NewBuilder(model.Root(), model.OpReadChildrenResources).
		Param(model.AttrChildType, model.ResDeployment).
		Build()
	deploymentsOp := model.NewBuilder(model.NewAddress(model.ResServerGroup, t.serverGroup, model.ResDeployment, "*"), model.OpReadResource).
		Param(model.AttrIncludeRuntime, true).
		Build()
	result, err := t.dispatcher.ExecuteComposite(ctx, model.NewComposite(contentOp, deploymentsOp))
	if err != nil {
		return nil, err
	}
	var contents []*Content
	byName := map[string]*Content{}
	if step := result.Step(0); step != nil {
		for _, property := range step.Result.AsProperties() {
			content := newContent(property.Name, property.Value)
			byName[content.Name] = content
			contents = append(contents, content)
		}
	}
	if step := result.Step(1); step != nil {
		for _, item := range step.Result.AsList() {
			address := model.NodeAddress(item.Get(model.AttrAddress))
			deployment := newServerGroupDeployment(address.Value(model.ResServerGroup), address.Value(model.ResDeployment), item.Get(model.AttrResult))
			if content, ok := byName[deployment.Name]; ok {
				content.Deployments = append(content.Deployments, deployment)
			}
		}
	}
	if contents == nil {
		contents = []*Content{}
	}
	return fctx.Resolve(contents), nil
}

// LoadDeploymentsFromRunningServer reads the deployments of the first running
// server (topology.ServersKey) and links them to the entries stored under
// ServerGroupDeploymentsKey. It does nothing in standalone mode or when
// either list is missing or empty.
type LoadDeploymentsFromRunningServer struct {
	env        *model.Environment
	dispatcher dispatcher.Dispatcher
}

// NewLoadDeploymentsFromRunningServer creates the task.
func NewLoadDeploymentsFromRunningServer(env *model.Environment, d dispatcher.Dispatcher) *LoadDeploymentsFromRunningServer {
	return &LoadDeploymentsFromRunningServer{env: env, dispatcher: d}
}

// Name returns the task name.
func (t *LoadDeploymentsFromRunningServer) Name() string {
	return "load-deployments-from-running-server"
}

// Apply reads the running server deployments.
func (t *LoadDeploymentsFromRunningServer) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	if t.env.IsStandalone() {
		return flow.Continue(fctx)
	}
	deployments, _ := ServerGroupDeploymentsKey.Get(fctx)
	servers, _ := topology.ServersKey.Get(fctx)
	if len(deployments) == 0 || len(servers) == 0 {
		return flow.Continue(fctx)
	}
	reference := servers[0]
	operation := model.NewBuilder(reference.Address, model.OpReadChildrenResources).
		Param(model.AttrChildType, model.ResDeployment).
		Param(model.AttrIncludeRuntime, true).
		Param(model.AttrRecursiveDepth, 1).
		Build()
	result, err := t.dispatcher.Execute(ctx, operation)
	if err != nil {
		return nil, err
	}
	byName := map[string]*Deployment{}
	for _, property := range result.AsProperties() {
		byName[property.Name] = newDeployment(reference, property.Name, property.Value)
	}
	for _, deployment := range deployments {
		deployment.Deployment = byName[deployment.Name]
	}
	return flow.Continue(fctx)
}

// AddUnmanagedDeployment adds a deployment whose content lives outside the
// content repository. payload carries the add parameters (content path,
// archive, runtime-name...).
type AddUnmanagedDeployment struct {
	dispatcher dispatcher.Dispatcher
	name       string
	payload    map[string]interface{}
}

// NewAddUnmanagedDeployment creates the task.
func NewAddUnmanagedDeployment(d dispatcher.Dispatcher, name string, payload map[string]interface{}) *AddUnmanagedDeployment {
	return &AddUnmanagedDeployment{dispatcher: d, name: name, payload: payload}
}

// Name returns the task name.
func (t *AddUnmanagedDeployment) Name() string { return "add-unmanaged-deployment" }

// Apply adds the deployment.
func (t *AddUnmanagedDeployment) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	operation := model.NewBuilder(model.NewAddress(model.ResDeployment, t.name), model.OpAdd).
		Payload(t.payload).
		Build()
	if _, err := t.dispatcher.Execute(ctx, operation); err != nil {
		return nil, err
	}
	return flow.Continue(fctx)
}

// Toggle deploys or undeploys a deployment.
type Toggle struct {
	dispatcher dispatcher.Dispatcher
	name       string
	operation  string
}

// NewEnableDeployment creates a task deploying name.
func NewEnableDeployment(d dispatcher.Dispatcher, name string) *Toggle {
	return &Toggle{dispatcher: d, name: name, operation: model.OpDeploy}
}

// NewDisableDeployment creates a task undeploying name.
func NewDisableDeployment(d dispatcher.Dispatcher, name string) *Toggle {
	return &Toggle{dispatcher: d, name: name, operation: model.OpUndeploy}
}

// Name returns the task name.
func (t *Toggle) Name() string { return t.operation + "-deployment" }

// Apply runs deploy or undeploy.
func (t *Toggle) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	operation := model.NewOperation(model.NewAddress(model.ResDeployment, t.name), t.operation)
	if _, err := t.dispatcher.Execute(ctx, operation); err != nil {
		return nil, err
	}
	return flow.Continue(fctx)
}

// ExplodeDeployment explodes an archive deployment.
type ExplodeDeployment struct {
	dispatcher dispatcher.Dispatcher
	name       string
}

// NewExplodeDeployment creates the task.
func NewExplodeDeployment(d dispatcher.Dispatcher, name string) *ExplodeDeployment {
	return &ExplodeDeployment{dispatcher: d, name: name}
}

// Name returns the task name.
func (t *ExplodeDeployment) Name() string { return "explode-deployment" }

// Apply runs explode.
func (t *ExplodeDeployment) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	operation := model.NewOperation(model.NewAddress(model.ResDeployment, t.name), model.OpExplode)
	if _, err := t.dispatcher.Execute(ctx, operation); err != nil {
		return nil, err
	}
	return flow.Continue(fctx)
}

// ExplodeSubdeployments undeploys a deployment and explodes its
// subdeployments in one composite. Without explicit subdeployments their
// names are read first.
type ExplodeSubdeployments struct {
	dispatcher     dispatcher.Dispatcher
	name           string
	subdeployments []string
}

// NewExplodeSubdeployments creates the task.
func NewExplodeSubdeployments(d dispatcher.Dispatcher, name string, subdeployments ...string) *ExplodeSubdeployments {
	return &ExplodeSubdeployments{dispatcher: d, name: name, subdeployments: subdeployments}
}

// Name returns the task name.
func (t *ExplodeSubdeployments) Name() string { return "explode-subdeployments" }

// Apply runs the composite.
func (t *ExplodeSubdeployments) Apply(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
	address := model.NewAddress(model.ResDeployment, t.name)
	subdeployments := t.subdeployments
	if len(subdeployments) == 0 {
		operation := model.NewBuilder(address, model.OpReadChildrenNames).Param(model.AttrChildType, model.ResSubdeployment).Build()
		result, err := t.dispatcher.Execute(ctx, operation)
		if err != nil {
			return nil, err
		}
		subdeployments = result.AsStrings()
	}
	composite := model.NewComposite(model.NewOperation(address, model.OpUndeploy))
	for _, subdeployment := range subdeployments {
		composite.Add(model.NewBuilder(address, model.OpExplode).Param(model.AttrPath, subdeployment).Build())
	}
	if _, err := t.dispatcher.ExecuteComposite(ctx, composite); err != nil {
		return nil, err
	}
	return flow.Continue(fctx)
}
