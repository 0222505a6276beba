package expense

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRule(t *testing.T, tenantID uuid.UUID, category string, min, max *decimal.Decimal) *ApprovalRule {
	t.Helper()
	rule, err := NewApprovalRule(tenantID, "rule "+category, category, []RuleApprover{
		{ApproverID: uuid.New(), StepNumber: 0, Required: true},
	})
	require.NoError(t, err)
	require.NoError(t, rule.SetAmountRange(min, max))
	return rule
}

func TestSelectRule(t *testing.T) {
	tenantID := uuid.New()

	t.Run("returns nil when nothing matches", func(t *testing.T) {
		rules := []ApprovalRule{*newTestRule(t, tenantID, "Travel", dec(100), dec(500))}
		assert.Nil(t, SelectRule(rules, "Meals", decimal.NewFromInt(200)))
		assert.Nil(t, SelectRule(rules, "Travel", decimal.NewFromInt(600)))
	})

	t.Run("amount bounds are inclusive on both ends", func(t *testing.T) {
		rules := []ApprovalRule{*newTestRule(t, tenantID, "Travel", dec(100), dec(500))}
		assert.NotNil(t, SelectRule(rules, "Travel", decimal.NewFromInt(100)))
		assert.NotNil(t, SelectRule(rules, "Travel", decimal.NewFromInt(500)))
		assert.Nil(t, SelectRule(rules, "Travel", decimal.NewFromFloat(99.99)))
		assert.Nil(t, SelectRule(rules, "Travel", decimal.NewFromFloat(500.01)))
	})

	t.Run("open-ended bounds match everything past the set bound", func(t *testing.T) {
		rules := []ApprovalRule{*newTestRule(t, tenantID, "Travel", dec(1000), nil)}
		assert.NotNil(t, SelectRule(rules, "Travel", decimal.NewFromInt(1000000)))
		assert.Nil(t, SelectRule(rules, "Travel", decimal.NewFromInt(999)))
	})

	t.Run("wildcard category matches any category", func(t *testing.T) {
		rules := []ApprovalRule{*newTestRule(t, tenantID, CategoryAll, nil, nil)}
		assert.NotNil(t, SelectRule(rules, "Meals", decimal.NewFromInt(10)))
		assert.NotNil(t, SelectRule(rules, "Travel", decimal.NewFromInt(10)))
	})

	t.Run("inactive rules never match", func(t *testing.T) {
		rule := newTestRule(t, tenantID, "Travel", nil, nil)
		rule.Deactivate()
		assert.Nil(t, SelectRule([]ApprovalRule{*rule}, "Travel", decimal.NewFromInt(10)))
	})

	t.Run("narrowest amount window wins", func(t *testing.T) {
		wide := newTestRule(t, tenantID, "Travel", dec(0), dec(10000))
		narrow := newTestRule(t, tenantID, "Travel", dec(100), dec(500))
		open := newTestRule(t, tenantID, "Travel", dec(50), nil)

		got := SelectRule([]ApprovalRule{*wide, *open, *narrow}, "Travel", decimal.NewFromInt(200))
		require.NotNil(t, got)
		assert.Equal(t, narrow.ID, got.ID)
	})

	t.Run("bounded window beats open-ended window", func(t *testing.T) {
		open := newTestRule(t, tenantID, "Travel", dec(0), nil)
		bounded := newTestRule(t, tenantID, "Travel", dec(0), dec(100000))

		got := SelectRule([]ApprovalRule{*open, *bounded}, "Travel", decimal.NewFromInt(200))
		require.NotNil(t, got)
		assert.Equal(t, bounded.ID, got.ID)
	})

	t.Run("equal windows fall back to oldest rule", func(t *testing.T) {
		older := newTestRule(t, tenantID, "Travel", dec(0), dec(500))
		older.CreatedAt = time.Now().Add(-time.Hour)
		newer := newTestRule(t, tenantID, "Travel", dec(0), dec(500))

		got := SelectRule([]ApprovalRule{*newer, *older}, "Travel", decimal.NewFromInt(200))
		require.NotNil(t, got)
		assert.Equal(t, older.ID, got.ID)
	})

	t.Run("selection is deterministic across input orderings", func(t *testing.T) {
		ts := time.Now()
		a := newTestRule(t, tenantID, "Travel", dec(0), dec(500))
		b := newTestRule(t, tenantID, "Travel", dec(0), dec(500))
		a.CreatedAt, b.CreatedAt = ts, ts

		first := SelectRule([]ApprovalRule{*a, *b}, "Travel", decimal.NewFromInt(10))
		second := SelectRule([]ApprovalRule{*b, *a}, "Travel", decimal.NewFromInt(10))
		require.NotNil(t, first)
		require.NotNil(t, second)
		assert.Equal(t, first.ID, second.ID)
	})
}

func TestRuleMatcherMatch(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("consults exact category and wildcard rules", func(t *testing.T) {
		repo := newMemRuleRepo()
		travel := newTestRule(t, tenantID, "Travel", dec(0), dec(100))
		fallback := newTestRule(t, tenantID, CategoryAll, nil, nil)
		require.NoError(t, repo.Save(ctx, travel))
		require.NoError(t, repo.Save(ctx, fallback))

		matcher := NewRuleMatcher(repo)

		got, err := matcher.Match(ctx, tenantID, "Travel", decimal.NewFromInt(50))
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, travel.ID, got.ID)

		// Above the travel rule's band only the wildcard still applies
		got, err = matcher.Match(ctx, tenantID, "Travel", decimal.NewFromInt(5000))
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, fallback.ID, got.ID)
	})

	t.Run("other tenants' rules are invisible", func(t *testing.T) {
		repo := newMemRuleRepo()
		require.NoError(t, repo.Save(ctx, newTestRule(t, uuid.New(), "Travel", nil, nil)))

		matcher := NewRuleMatcher(repo)
		got, err := matcher.Match(ctx, tenantID, "Travel", decimal.NewFromInt(50))
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
