package accesscontrol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mgmtflow/dispatcher/memory"
	"github.com/viant/mgmtflow/dispatcher/mock"
	"github.com/viant/mgmtflow/flow"
	"github.com/viant/mgmtflow/model"
)

var (
	monitor  = &Role{Name: "Monitor", Type: RoleStandard}
	operator = &Role{Name: "Operator", Type: RoleStandard}
	hostRole = &Role{Name: "master-monitor", Type: RoleHost, BaseRole: "Monitor", Scope: []string{"master"}}
	sgRole   = &Role{Name: "main-deployer", Type: RoleServerGroup, BaseRole: "Deployer", Scope: []string{"main-server-group"}}
)

func authorization() memory.Option {
	return memory.WithResource(AuthorizationAddress(), map[string]interface{}{"provider": "rbac"})
}

func TestAddresses(t *testing.T) {
	testCases := []struct {
		description string
		address     model.Address
		expect      string
	}{
		{
			description: "role mapping",
			address:     RoleMappingAddress(monitor),
			expect:      "/core-service=management/access=authorization/role-mapping=Monitor",
		},
		{
			description: "host scoped role",
			address:     ScopedRoleAddress(hostRole),
			expect:      "/core-service=management/access=authorization/host-scoped-role=master-monitor",
		},
		{
			description: "server group scoped role",
			address:     ScopedRoleAddress(sgRole),
			expect:      "/core-service=management/access=authorization/server-group-scoped-role=main-deployer",
		},
		{
			description: "include with realm",
			address: AssignmentAddress(&Assignment{
				Principal: &Principal{Type: PrincipalUser, Name: "admin", Realm: "ManagementRealm"},
				Role:      monitor,
				Include:   true,
			}),
			expect: "/core-service=management/access=authorization/role-mapping=Monitor/include=user-admin@ManagementRealm",
		},
		{
			description: "exclude without realm",
			address: AssignmentAddress(&Assignment{
				Principal: &Principal{Type: PrincipalGroup, Name: "ops"},
				Role:      monitor,
			}),
			expect: "/core-service=management/access=authorization/role-mapping=Monitor/exclude=group-ops",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.address.String())
		})
	}
}

func TestCheckRoleMapping_AddRoleMapping(t *testing.T) {
	testCases := []struct {
		description string
		existing    bool
		predicate   flow.StatusPredicate
		expectCalls int
		expectExist bool
	}{
		{description: "missing mapping is added", existing: false, predicate: flow.IfNotFound, expectCalls: 2, expectExist: true},
		{description: "existing mapping is left alone", existing: true, predicate: flow.IfNotFound, expectCalls: 1, expectExist: true},
		{description: "IfExists on a missing mapping is a no-op", existing: false, predicate: flow.IfExists, expectCalls: 1, expectExist: false},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			options := []memory.Option{authorization()}
			if tc.existing {
				options = append(options, memory.WithResource(RoleMappingAddress(monitor), nil))
			}
			srv := memory.New(options...)
			fctx, err := flow.Sequential(context.Background(), flow.NewContext(nil),
				NewCheckRoleMapping(srv, monitor),
				NewAddRoleMapping(srv, monitor, tc.predicate))
			require.NoError(t, err)
			assert.True(t, fctx.StackIsEmpty())
			assert.Equal(t, tc.expectCalls, srv.CallCount())
			assert.Equal(t, tc.expectExist, srv.Exists(RoleMappingAddress(monitor)))
		})
	}
}

func TestCheckRoleMapping_AnyFailureIsNotFound(t *testing.T) {
	srv := &mock.Service{OnExecute: mock.Fail("WFLYCTL0313: Unauthorized to execute operation")}
	fctx, err := flow.Sequential(context.Background(), flow.NewContext(nil), NewCheckRoleMapping(srv, monitor))
	require.NoError(t, err)
	status, ok := flow.PopStatus(fctx)
	require.True(t, ok)
	assert.Equal(t, flow.StatusNotFound, status)
}

func TestConditionalTasks_EmptyStack(t *testing.T) {
	srv := &mock.Service{}
	fctx := flow.NewContext(nil)
	actual, err := flow.Sequential(context.Background(), fctx,
		NewAddRoleMapping(srv, monitor, flow.IfNotFound),
		NewRemoveRoleMapping(srv, monitor, flow.IfExists))
	require.NoError(t, err)
	assert.Same(t, fctx, actual)
	assert.Empty(t, srv.Executed())
}

func TestRemoveRoleMapping(t *testing.T) {
	srv := memory.New(authorization(), memory.WithResource(RoleMappingAddress(operator), nil))
	_, err := flow.Sequential(context.Background(), flow.NewContext(nil),
		NewCheckRoleMapping(srv, operator),
		NewRemoveRoleMapping(srv, operator, flow.IfExists))
	require.NoError(t, err)
	assert.False(t, srv.Exists(RoleMappingAddress(operator)))
}

func TestModifyIncludeAll(t *testing.T) {
	srv := memory.New(authorization(), memory.WithResource(RoleMappingAddress(operator), nil))
	_, err := flow.Sequential(context.Background(), flow.NewContext(nil), NewModifyIncludeAll(srv, operator, true))
	require.NoError(t, err)
	value, ok := srv.Attribute(RoleMappingAddress(operator), model.AttrIncludeAll)
	require.True(t, ok)
	assert.Equal(t, true, value)
}

func TestAssign(t *testing.T) {
	assignment := &Assignment{
		Principal: &Principal{Type: PrincipalUser, Name: "alice", Realm: "ManagementRealm"},
		Role:      monitor,
		Include:   true,
	}
	srv := memory.New(authorization())
	_, err := flow.Sequential(context.Background(), flow.NewContext(nil), Assign(srv, assignment)...)
	require.NoError(t, err)
	address := AssignmentAddress(assignment)
	require.True(t, srv.Exists(address))
	for name, expect := range map[string]interface{}{
		model.AttrName:  "alice",
		model.AttrType:  "USER",
		model.AttrRealm: "ManagementRealm",
	} {
		value, ok := srv.Attribute(address, name)
		assert.True(t, ok, name)
		assert.Equal(t, expect, value, name)
	}
}

func TestRemoveAssignments(t *testing.T) {
	assignment := func(name string) *Assignment {
		return &Assignment{Principal: &Principal{Type: PrincipalUser, Name: name}, Role: monitor, Include: true}
	}
	testCases := []struct {
		description     string
		assignments     []*Assignment
		expectExecuted  int
		expectComposite int
	}{
		{description: "none", expectExecuted: 0, expectComposite: 0},
		{description: "single", assignments: []*Assignment{assignment("a")}, expectExecuted: 1, expectComposite: 0},
		{description: "several", assignments: []*Assignment{assignment("a"), assignment("b"), assignment("c")}, expectExecuted: 0, expectComposite: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			srv := &mock.Service{}
			_, err := flow.Sequential(context.Background(), flow.NewContext(nil), NewRemoveAssignments(srv, tc.assignments...))
			require.NoError(t, err)
			assert.Len(t, srv.Executed(), tc.expectExecuted)
			composites := srv.Composites()
			require.Len(t, composites, tc.expectComposite)
			if tc.expectComposite > 0 {
				assert.Equal(t, len(tc.assignments), composites[0].Len())
				for _, operation := range composites[0].Operations() {
					assert.Equal(t, model.OpRemove, operation.Name)
				}
			}
		})
	}
}

func TestScopedRoleLifecycle(t *testing.T) {
	srv := memory.New(authorization())
	payload := map[string]interface{}{"base-role": "Monitor", "hosts": []interface{}{"master"}}
	_, err := flow.Sequential(context.Background(), flow.NewContext(nil),
		NewAddScopedRole(srv, hostRole, payload),
		NewModifyScopedRole(srv, hostRole, map[string]interface{}{"base-role": "Operator"}),
		NewModifyScopedRole(srv, hostRole, nil))
	require.NoError(t, err)
	address := ScopedRoleAddress(hostRole)
	value, ok := srv.Attribute(address, "base-role")
	require.True(t, ok)
	assert.Equal(t, "Operator", value)
	assert.Equal(t, 2, srv.CallCount(), "an empty change set is not sent")

	_, err = flow.Sequential(context.Background(), flow.NewContext(nil), NewRemoveScopedRole(srv, hostRole))
	require.NoError(t, err)
	assert.False(t, srv.Exists(address))
}

func TestScopedRoleTasks_RejectStandardRole(t *testing.T) {
	srv := &mock.Service{}
	tasks := []flow.Task{
		NewAddScopedRole(srv, monitor, nil),
		NewModifyScopedRole(srv, monitor, map[string]interface{}{"base-role": "Operator"}),
		NewRemoveScopedRole(srv, monitor),
	}
	for _, task := range tasks {
		t.Run(flow.NameOf(task), func(t *testing.T) {
			_, err := flow.Sequential(context.Background(), flow.NewContext(nil), task)
			assert.ErrorIs(t, err, ErrNotScoped)
		})
	}
	assert.Empty(t, srv.Executed())
}
