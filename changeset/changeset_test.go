package changeset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mgmtflow/model"
)

func TestPreview(t *testing.T) {
	address := model.NewAddress(model.ResCoreService, model.ResManagement, model.ResAccess, model.ResAuthorization, model.ResHostScopedRole, "ops")
	current := model.NewNode(map[string]interface{}{
		"base-role": "Monitor",
		"hosts":     []interface{}{"master"},
	})
	testCases := []struct {
		description   string
		changes       map[string]interface{}
		expectEmpty   bool
		expectAdded   int
		expectRemoved int
		expectOp      string
		expectPatch   []string
	}{
		{
			description: "no change",
			changes:     map[string]interface{}{"base-role": "Monitor"},
			expectEmpty: true,
		},
		{
			description:   "modified attribute",
			changes:       map[string]interface{}{"base-role": "Operator"},
			expectAdded:   1,
			expectRemoved: 1,
			expectOp:      model.OpWriteAttribute,
			expectPatch:   []string{`-base-role = "Monitor"`, `+base-role = "Operator"`, "--- a/core-service=management"},
		},
		{
			description:   "undefined attribute",
			changes:       map[string]interface{}{"hosts": nil},
			expectRemoved: 1,
			expectOp:      model.OpUndefineAttribute,
			expectPatch:   []string{`-hosts = ["master"]`},
		},
		{
			description:   "several changes",
			changes:       map[string]interface{}{"base-role": "Deployer", "hosts": []interface{}{"master", "slave"}},
			expectAdded:   2,
			expectRemoved: 2,
			expectOp:      model.OpComposite,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			diff, err := Preview(address, current, tc.changes)
			require.NoError(t, err)
			assert.Equal(t, tc.expectEmpty, diff.IsEmpty())
			if tc.expectEmpty {
				assert.Nil(t, diff.Operation)
				return
			}
			assert.Equal(t, tc.expectAdded, diff.Added)
			assert.Equal(t, tc.expectRemoved, diff.Removed)
			assert.Equal(t, 1, diff.Hunks)
			require.NotNil(t, diff.Operation)
			assert.Equal(t, tc.expectOp, diff.Operation.Name)
			for _, fragment := range tc.expectPatch {
				assert.Contains(t, diff.Patch, fragment)
			}
		})
	}
}

func TestPreview_RootResource(t *testing.T) {
	diff, err := Preview(model.Root(), model.Node{}, map[string]interface{}{"name": "dev"})
	require.NoError(t, err)
	assert.Contains(t, diff.Patch, "+++ b/root")
	assert.Equal(t, 1, diff.Added)
}
