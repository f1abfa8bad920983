package policy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/dispatcher/memory"
	"github.com/viant/mgmtflow/model"
	"github.com/viant/mgmtflow/policy"
)

var (
	readRoot      = model.NewOperation(model.Root(), model.OpReadResource)
	removeApp     = model.NewOperation(model.NewAddress(model.ResDeployment, "app.war"), model.OpRemove)
	deployApp     = model.NewOperation(model.NewAddress(model.ResDeployment, "app.war"), model.OpDeploy)
	addDeployment = model.NewOperation(model.NewAddress(model.ResDeployment, "app.war"), model.OpAdd)
)

func TestPolicy_Check(t *testing.T) {
	testCases := []struct {
		description string
		policy      *policy.Policy
		operation   *model.Operation
		expectErr   bool
	}{
		{description: "nil policy", operation: removeApp},
		{description: "auto", policy: &policy.Policy{Mode: policy.ModeAuto}, operation: removeApp},
		{description: "deny write", policy: &policy.Policy{Mode: policy.ModeDeny}, operation: removeApp, expectErr: true},
		{description: "deny read", policy: &policy.Policy{Mode: policy.ModeDeny}, operation: readRoot},
		{description: "block by action", policy: &policy.Policy{BlockList: []string{"Deployment:Remove"}}, operation: removeApp, expectErr: true},
		{description: "block by name", policy: &policy.Policy{BlockList: []string{"remove"}}, operation: removeApp, expectErr: true},
		{description: "allow list miss", policy: &policy.Policy{AllowList: []string{"deploy"}}, operation: removeApp, expectErr: true},
		{description: "allow list hit", policy: &policy.Policy{AllowList: []string{"deploy"}}, operation: deployApp},
		{description: "ask without func", policy: &policy.Policy{Mode: policy.ModeAsk}, operation: deployApp, expectErr: true},
		{
			description: "ask approved",
			policy: &policy.Policy{Mode: policy.ModeAsk, Ask: func(ctx context.Context, action string, operation *model.Operation, p *policy.Policy) bool {
				return action == "deployment:deploy"
			}},
			operation: deployApp,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			err := tc.policy.Check(context.Background(), tc.operation)
			if tc.expectErr {
				assert.True(t, errors.Is(err, policy.ErrDenied), err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPolicy_AskCanSwitchMode(t *testing.T) {
	asked := 0
	p := &policy.Policy{Mode: policy.ModeAsk, Ask: func(ctx context.Context, action string, operation *model.Operation, p *policy.Policy) bool {
		asked++
		p.Mode = policy.ModeAuto
		return true
	}}
	require.NoError(t, p.Check(context.Background(), deployApp))
	require.NoError(t, p.Check(context.Background(), removeApp))
	assert.Equal(t, 1, asked)
}

func TestConfig(t *testing.T) {
	config := &policy.Config{Mode: policy.ModeDeny, BlockList: []string{"remove"}}
	assert.NoError(t, config.Validate())
	assert.Equal(t, config, policy.ToConfig(policy.FromConfig(config)))
	assert.Error(t, (&policy.Config{Mode: "sometimes"}).Validate())
	assert.Nil(t, policy.FromConfig(nil))
}

func TestGuard(t *testing.T) {
	srv := memory.New()
	guard := policy.NewGuard(srv, &policy.Policy{Mode: policy.ModeDeny})
	ctx := context.Background()

	_, err := guard.Execute(ctx, readRoot)
	require.NoError(t, err)

	_, err = guard.ExecuteComposite(ctx, model.NewComposite(readRoot, addDeployment))
	assert.ErrorIs(t, err, policy.ErrDenied)

	_, err = guard.Upload(ctx, &dispatcher.Attachment{Name: "app.war", Data: []byte("PK")}, addDeployment)
	assert.ErrorIs(t, err, policy.ErrDenied)
	assert.Equal(t, 1, srv.CallCount(), "denied operations never reach the server")

	ctx = policy.WithPolicy(ctx, &policy.Policy{Mode: policy.ModeAuto})
	_, err = guard.Execute(ctx, addDeployment)
	require.NoError(t, err)
	assert.True(t, srv.Exists(model.NewAddress(model.ResDeployment, "app.war")))
}
