package mgmtflow_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mgmtflow"
	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/dispatcher/memory"
	"github.com/viant/mgmtflow/dispatcher/mock"
	"github.com/viant/mgmtflow/flow"
	"github.com/viant/mgmtflow/internal/dao"
	"github.com/viant/mgmtflow/journal"
	"github.com/viant/mgmtflow/message"
	"github.com/viant/mgmtflow/model"
	"github.com/viant/mgmtflow/policy"
	"github.com/viant/mgmtflow/tasks/accesscontrol"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newService(t *testing.T, options ...mgmtflow.Option) (*mgmtflow.Service, *memory.Service) {
	t.Helper()
	srv := memory.New(
		memory.WithResource(accesscontrol.AuthorizationAddress(), map[string]interface{}{"provider": "rbac"}),
		memory.WithResource(model.NewAddress(model.ResSubsystem, "undertow"), nil),
		memory.WithResource(model.NewAddress(model.ResCoreService, model.ResPatching), map[string]interface{}{"version": "7.4.0.GA"}),
	)
	options = append([]mgmtflow.Option{mgmtflow.WithDispatcher(srv), mgmtflow.WithLogger(quietLogger())}, options...)
	service, err := mgmtflow.New(context.Background(), options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = service.Close() })
	return service, srv
}

func TestService_Environment(t *testing.T) {
	service, srv := newService(t)
	env, err := service.Environment(context.Background())
	require.NoError(t, err)
	assert.True(t, env.IsStandalone())
	assert.Equal(t, 22, env.ManagementVersion.Major)
	_, err = service.Environment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, srv.CallCount(), "environment is read once")
}

func TestService_EnvironmentRetriesAfterFailure(t *testing.T) {
	calls := 0
	srv := &mock.Service{OnExecute: func(ctx context.Context, operation *model.Operation) (model.Node, error) {
		calls++
		if calls == 1 {
			return model.Node{}, errors.New("connection reset")
		}
		return model.NewNode(map[string]interface{}{model.AttrLaunchType: "DOMAIN", model.AttrManagementMajor: 5}), nil
	}}
	service, err := mgmtflow.New(context.Background(), mgmtflow.WithDispatcher(srv), mgmtflow.WithLogger(quietLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = service.Close() })

	_, err = service.Environment(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")

	env, err := service.Environment(context.Background())
	require.NoError(t, err)
	assert.False(t, env.IsStandalone())
	assert.Equal(t, 5, env.ManagementVersion.Major)

	_, err = service.Environment(context.Background())
	require.NoError(t, err)
	assert.Len(t, srv.Executed(), 2, "a successful read is kept")
}

func TestService_DeploymentsAreJournaled(t *testing.T) {
	messages := message.NewService()
	collector := &message.Collector{}
	messages.Subscribe(func(msg *message.Message) { _ = collector.Publish(context.Background(), msg) })
	registry := prometheus.NewRegistry()
	service, srv := newService(t, mgmtflow.WithMessages(messages), mgmtflow.WithMetrics(registry, registry))

	recipes, err := service.Deployments(context.Background())
	require.NoError(t, err)
	stats, err := recipes.Upload(context.Background(), &dispatcher.Attachment{Name: "app.war", Data: []byte("PK")})
	require.NoError(t, err)
	assert.Equal(t, []string{"app.war"}, stats.Added)
	assert.True(t, srv.Exists(model.NewAddress(model.ResDeployment, "app.war")))

	runs, err := service.Journal().List(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "deployment.upload", runs[0].Flow)
	assert.Equal(t, flow.StateSucceeded, runs[0].State)
	assert.Equal(t, 2, runs[0].Completed)

	count, err := testutil.GatherAndCount(registry, "mgmtflow_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	messages.Close()
	require.NotNil(t, collector.Last())
	assert.Equal(t, message.LevelSuccess, collector.Last().Level)
}

func TestService_Execute(t *testing.T) {
	testCases := []struct {
		description string
		operation   *model.Operation
		expectErr   bool
		expectState flow.State
	}{
		{
			description: "read",
			operation:   model.NewBuilder(model.Root(), model.OpReadChildrenNames).Param(model.AttrChildType, model.ResSubsystem).Build(),
			expectState: flow.StateSucceeded,
		},
		{
			description: "failure",
			operation:   model.NewOperation(model.NewAddress(model.ResDeployment, "missing.war"), model.OpRemove),
			expectErr:   true,
			expectState: flow.StateFailed,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			service, _ := newService(t)
			result, err := service.Execute(context.Background(), tc.operation)
			if tc.expectErr {
				require.Error(t, err)
				assert.True(t, model.HasCode(err, "WFLYCTL0216"))
			} else {
				require.NoError(t, err)
				assert.Equal(t, []string{"undertow"}, result.AsStrings())
			}
			runs, err := service.Journal().List(context.Background(), dao.NewParameter(journal.StateParameter, string(tc.expectState)))
			require.NoError(t, err)
			require.Len(t, runs, 1)
			assert.Equal(t, "exec", runs[0].Flow)
		})
	}
}

func TestService_SubsystemsPatches(t *testing.T) {
	service, _ := newService(t)
	subsystems, err := service.Subsystems(context.Background(), model.Root())
	require.NoError(t, err)
	var names []string
	for _, item := range subsystems {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"server-runtime-status", "management-operations", "undertow"}, names)

	hosts, err := service.Patches(context.Background())
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, "7.4.0.GA", hosts[0].Patching.Get("version").AsString())
}

func TestService_AccessControl(t *testing.T) {
	service, srv := newService(t)
	role := &accesscontrol.Role{Name: "Monitor", Type: accesscontrol.RoleStandard}
	assignment := &accesscontrol.Assignment{
		Principal: &accesscontrol.Principal{Type: accesscontrol.PrincipalUser, Name: "alice"},
		Role:      role,
		Include:   true,
	}
	require.NoError(t, service.Assign(context.Background(), assignment))
	assert.True(t, srv.Exists(accesscontrol.AssignmentAddress(assignment)))

	address := accesscontrol.RoleMappingAddress(role)
	diff, err := service.PreviewChange(context.Background(), address, map[string]interface{}{model.AttrIncludeAll: true})
	require.NoError(t, err)
	assert.Equal(t, 1, diff.Added)
	assert.Contains(t, diff.Patch, "+include-all = true")

	require.NoError(t, service.ApplyChange(context.Background(), address, map[string]interface{}{model.AttrIncludeAll: true}))
	value, ok := srv.Attribute(address, model.AttrIncludeAll)
	require.True(t, ok)
	assert.Equal(t, true, value)

	require.NoError(t, service.Unassign(context.Background(), assignment))
	assert.False(t, srv.Exists(accesscontrol.AssignmentAddress(assignment)))
}

func TestService_Journals(t *testing.T) {
	testCases := []struct {
		description string
		kind        string
	}{
		{description: "fs", kind: mgmtflow.JournalFS},
		{description: "sqlite", kind: mgmtflow.JournalSQLite},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			config := mgmtflow.DefaultConfig()
			config.Journal = mgmtflow.JournalConfig{Kind: tc.kind, URL: filepath.Join(t.TempDir(), "journal")}
			service, _ := newService(t, mgmtflow.WithConfig(config))
			_, err := service.Execute(context.Background(), model.NewOperation(model.Root(), model.OpReadResource))
			require.NoError(t, err)
			runs, err := service.Journal().List(context.Background())
			require.NoError(t, err)
			require.Len(t, runs, 1)
			assert.Equal(t, flow.StateSucceeded, runs[0].State)
		})
	}
}

func TestService_Policy(t *testing.T) {
	config := mgmtflow.DefaultConfig()
	config.Policy = policy.Config{BlockList: []string{"deployment:remove"}}
	service, srv := newService(t, mgmtflow.WithConfig(config))
	ctx := context.Background()

	_, err := service.Execute(ctx, model.NewOperation(model.NewAddress(model.ResDeployment, "app.war"), model.OpAdd))
	require.NoError(t, err)
	_, err = service.Execute(ctx, model.NewOperation(model.NewAddress(model.ResDeployment, "app.war"), model.OpRemove))
	assert.ErrorIs(t, err, policy.ErrDenied)
	assert.True(t, srv.Exists(model.NewAddress(model.ResDeployment, "app.war")))
}

func TestService_Tracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	service, _ := newService(t, mgmtflow.WithTracingExporter("mgmtflow", "test", exporter))
	_, err := service.Execute(context.Background(), model.NewOperation(model.Root(), model.OpReadResource))
	require.NoError(t, err)
	var names []string
	for _, span := range exporter.GetSpans() {
		names = append(names, span.Name)
	}
	assert.Equal(t, []string{"task read-resource", "run exec"}, names)
}

func TestService_ExtensionsReady(t *testing.T) {
	service, _ := newService(t)
	assert.True(t, service.Extensions().IsReady())
}
