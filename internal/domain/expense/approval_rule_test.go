package expense

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApprovalRule(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates active rule requiring all approvers by default", func(t *testing.T) {
		rule, err := NewApprovalRule(tenantID, "Large travel", "Travel", approvers(uuid.New(), uuid.New()))
		require.NoError(t, err)
		assert.True(t, rule.IsActive)
		assert.True(t, rule.RequireAllApprovers)
		assert.Nil(t, rule.MinAmount)
		assert.Nil(t, rule.MaxAmount)
		assert.NotEmpty(t, rule.GetDomainEvents())
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewApprovalRule(tenantID, "", "Travel", nil)
		require.Error(t, err)
	})

	t.Run("fails with nil approver id", func(t *testing.T) {
		_, err := NewApprovalRule(tenantID, "r", "Travel", []RuleApprover{{ApproverID: uuid.Nil}})
		require.Error(t, err)
	})
}

func TestApprovalRuleConfiguration(t *testing.T) {
	rule, err := NewApprovalRule(uuid.New(), "r", "Travel", approvers(uuid.New()))
	require.NoError(t, err)

	t.Run("amount range rejects inverted bounds", func(t *testing.T) {
		err := rule.SetAmountRange(dec(500), dec(100))
		require.Error(t, err)
	})

	t.Run("amount range rejects negative minimum", func(t *testing.T) {
		err := rule.SetAmountRange(dec(-1), nil)
		require.Error(t, err)
	})

	t.Run("percentage must be within 0 and 100", func(t *testing.T) {
		assert.Error(t, rule.SetPercentageThreshold(decimal.NewFromInt(101)))
		assert.Error(t, rule.SetPercentageThreshold(decimal.NewFromInt(-1)))
		assert.NoError(t, rule.SetPercentageThreshold(decimal.NewFromInt(100)))
	})

	t.Run("specific approver must be set", func(t *testing.T) {
		assert.Error(t, rule.SetSpecificApprover(uuid.Nil))
		assert.NoError(t, rule.SetSpecificApprover(uuid.New()))
	})

	t.Run("deactivate and activate toggle matching eligibility", func(t *testing.T) {
		rule.Deactivate()
		assert.False(t, rule.AppliesTo("Travel", decimal.NewFromInt(10)))
		rule.Activate()
		assert.True(t, rule.AppliesTo("Travel", decimal.NewFromInt(10)))
	})
}

func TestApprovalRuleWindowWidth(t *testing.T) {
	rule, err := NewApprovalRule(uuid.New(), "r", "Travel", approvers(uuid.New()))
	require.NoError(t, err)

	assert.Nil(t, rule.WindowWidth())

	require.NoError(t, rule.SetAmountRange(dec(100), dec(350)))
	w := rule.WindowWidth()
	require.NotNil(t, w)
	assert.True(t, w.Equal(decimal.NewFromInt(250)))

	require.NoError(t, rule.SetAmountRange(dec(100), nil))
	assert.Nil(t, rule.WindowWidth())
}

func TestApprovalRuleCanEverComplete(t *testing.T) {
	tenantID := uuid.New()

	t.Run("rule with approvers always can", func(t *testing.T) {
		rule, err := NewApprovalRule(tenantID, "r", "Travel", approvers(uuid.New()))
		require.NoError(t, err)
		assert.True(t, rule.CanEverComplete(false))
	})

	t.Run("empty rule needs a reachable manager step", func(t *testing.T) {
		rule, err := NewApprovalRule(tenantID, "r", "Travel", nil)
		require.NoError(t, err)
		rule.IsManagerFirst = true
		assert.True(t, rule.CanEverComplete(true))
		assert.False(t, rule.CanEverComplete(false))
	})

	t.Run("empty rule without manager step never completes", func(t *testing.T) {
		rule, err := NewApprovalRule(tenantID, "r", "Travel", nil)
		require.NoError(t, err)
		assert.False(t, rule.CanEverComplete(true))
	})
}

func TestRuleApproversJSONB(t *testing.T) {
	list := RuleApprovers(approvers(uuid.New(), uuid.New()))

	raw, err := list.Value()
	require.NoError(t, err)

	var restored RuleApprovers
	require.NoError(t, restored.Scan(raw))
	assert.Equal(t, list, restored)

	t.Run("scan rejects unsupported types", func(t *testing.T) {
		var out RuleApprovers
		assert.Error(t, out.Scan(42))
	})
}
