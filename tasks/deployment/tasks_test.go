package deployment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/dispatcher/memory"
	"github.com/viant/mgmtflow/dispatcher/mock"
	"github.com/viant/mgmtflow/flow"
	"github.com/viant/mgmtflow/model"
	"github.com/viant/mgmtflow/tasks/topology"
)

var standalone = &model.Environment{Standalone: true}

func attachment(name string) *dispatcher.Attachment {
	return &dispatcher.Attachment{Name: name, Data: []byte("PK" + name)}
}

func TestCheckDeployment_UploadOrReplace(t *testing.T) {
	testCases := []struct {
		description   string
		existing      []string
		expectOp      string
		expectEnabled interface{}
		expectStats   UploadStatistics
	}{
		{
			description:   "existing deployment is replaced",
			existing:      []string{"app.war", "other.war"},
			expectOp:      model.OpFullReplaceDeployment,
			expectEnabled: nil,
			expectStats:   UploadStatistics{standalone: true, Replaced: []string{"app.war"}},
		},
		{
			description:   "missing deployment is added",
			existing:      []string{"other.war"},
			expectOp:      model.OpAdd,
			expectEnabled: true,
			expectStats:   UploadStatistics{standalone: true, Added: []string{"app.war"}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			names := make([]interface{}, 0, len(tc.existing))
			for _, name := range tc.existing {
				names = append(names, name)
			}
			srv := &mock.Service{OnExecute: mock.Reply(names)}
			fctx, err := flow.Sequential(context.Background(), flow.NewContext(nil),
				NewCheckDeployment(srv, "app.war"),
				NewUploadOrReplace(standalone, srv, "app.war", "app.war", attachment("app.war"), true))
			require.NoError(t, err)
			assert.True(t, fctx.StackIsEmpty(), "status is consumed")
			uploads := srv.Uploads()
			require.Len(t, uploads, 1)
			assert.Equal(t, tc.expectOp, uploads[0].Name)
			assert.Equal(t, tc.expectEnabled, uploads[0].Param(model.AttrEnabled).Value())
			assert.Equal(t, 0, uploads[0].Param(model.AttrContent).Index(0).Get(model.AttrInputStreamIndex).AsInt())
			statistics, ok := UploadStatisticsKey.Get(fctx)
			require.True(t, ok)
			assert.Equal(t, tc.expectStats, *statistics)
		})
	}
}

func TestUploadOrReplace_EmptyStack(t *testing.T) {
	srv := &mock.Service{}
	_, err := flow.Sequential(context.Background(), flow.NewContext(nil),
		NewUploadOrReplace(standalone, srv, "a.war", "a.war", attachment("a.war"), false))
	require.NoError(t, err)
	assert.Equal(t, model.OpAdd, srv.Uploads()[0].Name)
	assert.Equal(t, false, srv.Uploads()[0].Param(model.AttrEnabled).Value())
}

func TestUploadOrReplace_FailureRecorded(t *testing.T) {
	srv := &mock.Service{OnUpload: func(ctx context.Context, a *dispatcher.Attachment, operation *model.Operation) (model.Node, error) {
		if a.Name == "bad.war" {
			return mock.Fail("WFLYCTL0158: corrupted")(ctx, operation)
		}
		return model.Node{}, nil
	}}
	var applied []string
	spy := flow.TaskFunc(func(ctx context.Context, fctx *flow.Context) (*flow.Context, error) {
		applied = append(applied, "after")
		return fctx, nil
	})
	fctx, err := flow.Sequential(context.Background(), flow.NewContext(nil),
		NewUploadOrReplace(standalone, srv, "bad.war", "bad.war", attachment("bad.war"), true),
		NewUploadOrReplace(standalone, srv, "good.war", "good.war", attachment("good.war"), true),
		spy)
	require.NoError(t, err, "an upload failure does not fail the chain")
	assert.Equal(t, []string{"after"}, applied)
	statistics, _ := UploadStatisticsKey.Get(fctx)
	assert.Equal(t, []string{"bad.war"}, statistics.Failed)
	assert.Equal(t, []string{"good.war"}, statistics.Added)
}

func TestAddServerGroupDeployment(t *testing.T) {
	srv := memory.New(memory.WithResource(model.NewAddress(model.ResServerGroup, "main"), nil),
		memory.WithResource(model.NewAddress(model.ResDeployment, "a.war"), nil))
	fctx, err := flow.Sequential(context.Background(), flow.NewContext(nil),
		NewAddServerGroupDeployment(&model.Environment{}, srv, "a.war", "a.war", "main"))
	require.NoError(t, err)
	enabled, ok := srv.Attribute(model.NewAddress(model.ResServerGroup, "main", model.ResDeployment, "a.war"), model.AttrEnabled)
	assert.True(t, ok)
	assert.Equal(t, true, enabled)
	assert.False(t, fctx.Has(string(ServerGroupDeploymentsKey)))

	fctx, err = flow.Sequential(context.Background(), flow.NewContext(nil),
		NewAddServerGroupDeployment(standalone, srv, "a.war", "a.war", "main"))
	require.NoError(t, err)
	deployments, ok := ServerGroupDeploymentsKey.Get(fctx)
	assert.True(t, ok)
	assert.Empty(t, deployments)
}

func domainServer() (*model.Environment, *memory.Service) {
	env := &model.Environment{}
	srv := memory.New(
		memory.WithEnvironment(env),
		memory.WithResource(model.NewAddress(model.ResDeployment, "a.war"), map[string]interface{}{
			model.AttrRuntimeName: "a.war", model.AttrContent: []interface{}{map[string]interface{}{"hash": "01"}}}),
		memory.WithResource(model.NewAddress(model.ResDeployment, "b.war"), map[string]interface{}{model.AttrRuntimeName: "b.war"}),
		memory.WithResource(model.NewAddress(model.ResServerGroup, "main", model.ResDeployment, "a.war"), map[string]interface{}{
			model.AttrRuntimeName: "a.war", model.AttrEnabled: true}),
		memory.WithResource(model.NewAddress(model.ResServerGroup, "other", model.ResDeployment, "a.war"), map[string]interface{}{
			model.AttrRuntimeName: "a.war", model.AttrEnabled: false}),
		memory.WithResource(model.NewAddress(model.ResHost, "primary"), map[string]interface{}{model.AttrMaster: true, model.AttrHostState: "running"}),
		memory.WithResource(model.NewAddress(model.ResHost, "primary", model.ResServer, "one"), map[string]interface{}{
			model.AttrServerState: "running", model.ResServerGroup: "main"}),
		memory.WithResource(model.NewAddress(model.ResHost, "primary", model.ResServer, "one", model.ResDeployment, "a.war"), map[string]interface{}{
			model.AttrRuntimeName: "a.war", model.AttrEnabled: true, model.AttrStatus: "OK"}),
		memory.WithResource(model.NewAddress(model.ResHost, "primary", model.ResServer, "one", model.ResDeployment, "a.war", model.ResSubdeployment, "web.war"), nil),
	)
	return env, srv
}

func TestLoadContent(t *testing.T) {
	_, srv := domainServer()
	fctx, err := flow.Sequential(context.Background(), flow.NewContext(nil), NewLoadContent(srv, ""))
	require.NoError(t, err)
	assert.Equal(t, 1, srv.CallCount(), "content and deployments are read in one composite")
	value, err := fctx.Pop()
	require.NoError(t, err)
	contents := value.([]*Content)
	require.Len(t, contents, 2)
	assert.Equal(t, "a.war", contents[0].Name)
	assert.True(t, contents[0].Managed)
	require.Len(t, contents[0].Deployments, 2)
	assert.Equal(t, "main", contents[0].Deployments[0].ServerGroup)
	assert.True(t, contents[0].Deployments[0].Enabled)
	assert.Empty(t, contents[1].Deployments)
}

func TestServerGroupDeploymentsFromRunningServer(t *testing.T) {
	env, srv := domainServer()
	tasks := []flow.Task{NewReadServerGroupDeployments(env, srv, "main", "")}
	tasks = append(tasks, topology.Servers(env, srv)...)
	tasks = append(tasks, NewLoadDeploymentsFromRunningServer(env, srv))
	fctx, err := flow.Sequential(context.Background(), flow.NewContext(nil), tasks...)
	require.NoError(t, err)
	deployments, ok := ServerGroupDeploymentsKey.Get(fctx)
	require.True(t, ok)
	require.Len(t, deployments, 1)
	assert.Equal(t, "a.war", deployments[0].RuntimeName)
	require.NotNil(t, deployments[0].Deployment)
	assert.Equal(t, "OK", deployments[0].Deployment.Status)
	assert.Equal(t, []string{"web.war"}, deployments[0].Deployment.Subdeployments)
	assert.Equal(t, "/host=primary/server=one", deployments[0].Deployment.Server.String())

	single, err := flow.Sequential(context.Background(), flow.NewContext(nil), NewReadServerGroupDeployments(env, srv, "other", "a.war"))
	require.NoError(t, err)
	deployments, _ = ServerGroupDeploymentsKey.Get(single)
	require.Len(t, deployments, 1)
	assert.False(t, deployments[0].Enabled)
}

func TestLoadDeploymentsFromRunningServer_Skips(t *testing.T) {
	env, srv := domainServer()
	_, err := flow.Sequential(context.Background(), flow.NewContext(nil), NewLoadDeploymentsFromRunningServer(env, srv))
	require.NoError(t, err)
	_, err = flow.Sequential(context.Background(), flow.NewContext(nil), NewLoadDeploymentsFromRunningServer(standalone, srv))
	require.NoError(t, err)
	assert.Equal(t, 0, srv.CallCount())
}

func TestToggleAndUnmanaged(t *testing.T) {
	srv := memory.New()
	address := model.NewAddress(model.ResDeployment, "ext.war")
	_, err := flow.Sequential(context.Background(), flow.NewContext(nil),
		NewAddUnmanagedDeployment(srv, "ext.war", map[string]interface{}{
			model.AttrContent: []interface{}{map[string]interface{}{model.AttrPath: "/opt/ext.war", model.AttrArchive: true}},
		}),
		NewEnableDeployment(srv, "ext.war"))
	require.NoError(t, err)
	enabled, _ := srv.Attribute(address, model.AttrEnabled)
	assert.Equal(t, true, enabled)

	_, err = flow.Sequential(context.Background(), flow.NewContext(nil), NewDisableDeployment(srv, "ext.war"))
	require.NoError(t, err)
	enabled, _ = srv.Attribute(address, model.AttrEnabled)
	assert.Equal(t, false, enabled)
	assert.Equal(t, "undeploy-deployment", NewDisableDeployment(srv, "x").Name())
}

func TestExplodeSubdeployments(t *testing.T) {
	srv := memory.New(
		memory.WithResource(model.NewAddress(model.ResDeployment, "app.ear"), map[string]interface{}{model.AttrEnabled: true}),
		memory.WithResource(model.NewAddress(model.ResDeployment, "app.ear", model.ResSubdeployment, "web.war"), nil),
		memory.WithResource(model.NewAddress(model.ResDeployment, "app.ear", model.ResSubdeployment, "ejb.jar"), nil),
	)
	_, err := flow.Sequential(context.Background(), flow.NewContext(nil), NewExplodeSubdeployments(srv, "app.ear"))
	require.NoError(t, err)
	calls := srv.Calls()
	require.Len(t, calls, 2)
	steps := calls[1].Operation.Params[model.AttrSteps].([]*model.Operation)
	require.Len(t, steps, 3)
	assert.Equal(t, model.OpUndeploy, steps[0].Name)
	assert.Equal(t, "ejb.jar", steps[1].Param(model.AttrPath).AsString())
}
