package mock

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mgmtflow/dispatcher"
	"github.com/viant/mgmtflow/model"
)

var _ dispatcher.Dispatcher = &Service{}

func TestService(t *testing.T) {
	ctx := context.Background()
	srv := &Service{OnExecute: Reply([]interface{}{"a.war"})}
	result, err := srv.Execute(ctx, model.NewOperation(model.Root(), model.OpReadChildrenNames))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.war"}, result.AsStrings())

	composite, err := srv.ExecuteComposite(ctx, model.NewComposite(model.NewOperation(model.Root(), model.OpReadResource), model.NewOperation(model.Root(), model.OpReadResource)))
	require.NoError(t, err)
	assert.Equal(t, 2, composite.Len())
	assert.True(t, composite.Step(1).IsSuccess())

	srv.OnUpload = func(ctx context.Context, attachment *dispatcher.Attachment, operation *model.Operation) (model.Node, error) {
		return Fail("WFLYCTL0158: upload failed")(ctx, operation)
	}
	_, err = srv.Upload(ctx, &dispatcher.Attachment{Name: "a.war"}, model.NewOperation(model.Root(), model.OpFullReplaceDeployment))
	assert.True(t, model.HasCode(err, "WFLYCTL0158"))
	assert.Equal(t, 3, srv.Calls())
	assert.Len(t, srv.Executed(), 1)
	assert.Len(t, srv.Composites(), 1)
	assert.Len(t, srv.Uploads(), 1)
}

func TestService_CompositeStepOrder(t *testing.T) {
	testCases := []struct {
		description string
		steps       int
	}{
		{description: "single step", steps: 1},
		{description: "three steps", steps: 3},
		{description: "five steps", steps: 5},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			srv := &Service{OnComposite: func(ctx context.Context, composite *model.Composite) (*model.CompositeResult, error) {
				response := map[string]interface{}{}
				for i, operation := range composite.Operations() {
					response[model.StepKey(i)] = map[string]interface{}{
						model.AttrOutcome: model.OutcomeSuccess,
						model.AttrResult:  "value of " + operation.Param(model.AttrName).AsString(),
					}
				}
				return model.CompositeResultOf(model.NewNode(response), composite.Len())
			}}
			composite := model.NewComposite()
			for i := 0; i < tc.steps; i++ {
				composite.Add(model.NewBuilder(model.NewAddress(model.ResDeployment, fmt.Sprintf("app%d.war", i)), model.OpReadAttribute).
					Param(model.AttrName, fmt.Sprintf("attr-%d", i)).
					Build())
			}

			result, err := srv.ExecuteComposite(context.Background(), composite)
			require.NoError(t, err)
			assert.Equal(t, 1, srv.Calls())
			require.Equal(t, tc.steps, result.Len())
			for i := 0; i < tc.steps; i++ {
				step := result.Step(i)
				require.NotNil(t, step)
				assert.True(t, step.IsSuccess())
				assert.Equal(t, fmt.Sprintf("value of attr-%d", i), step.Result.AsString())
			}
			assert.Nil(t, result.Step(tc.steps))
		})
	}
}
