package cache

import (
	"context"
	"testing"
	"time"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRuleRepo records how often each method is hit
type countingRuleRepo struct {
	expense.ApprovalRuleRepository

	findActiveCalls int
	rules           []expense.ApprovalRule
	saveCalls       int
	deleteCalls     int
}

func (r *countingRuleRepo) FindActiveByCategory(ctx context.Context, tenantID uuid.UUID, category string) ([]expense.ApprovalRule, error) {
	r.findActiveCalls++
	return r.rules, nil
}

func (r *countingRuleRepo) Save(ctx context.Context, rule *expense.ApprovalRule) error {
	r.saveCalls++
	return nil
}

func (r *countingRuleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.deleteCalls++
	return nil
}

func newCacheTestRule(t *testing.T, tenantID uuid.UUID, category string) *expense.ApprovalRule {
	t.Helper()
	rule, err := expense.NewApprovalRule(tenantID, "rule "+category, category, []expense.RuleApprover{
		{ApproverID: uuid.New(), StepNumber: 0, Required: true},
	})
	require.NoError(t, err)
	return rule
}

func TestCachedApprovalRuleRepository(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("serves repeated category reads from cache", func(t *testing.T) {
		inner := &countingRuleRepo{rules: []expense.ApprovalRule{*newCacheTestRule(t, tenantID, "Travel")}}
		repo := NewCachedApprovalRuleRepository(inner, time.Minute, nil)

		first, err := repo.FindActiveByCategory(ctx, tenantID, "Travel")
		require.NoError(t, err)
		second, err := repo.FindActiveByCategory(ctx, tenantID, "Travel")
		require.NoError(t, err)

		assert.Equal(t, 1, inner.findActiveCalls)
		assert.Len(t, first, 1)
		assert.Equal(t, first[0].ID, second[0].ID)
	})

	t.Run("caches per tenant and category", func(t *testing.T) {
		inner := &countingRuleRepo{}
		repo := NewCachedApprovalRuleRepository(inner, time.Minute, nil)

		_, err := repo.FindActiveByCategory(ctx, tenantID, "Travel")
		require.NoError(t, err)
		_, err = repo.FindActiveByCategory(ctx, tenantID, "Meals")
		require.NoError(t, err)
		_, err = repo.FindActiveByCategory(ctx, uuid.New(), "Travel")
		require.NoError(t, err)

		assert.Equal(t, 3, inner.findActiveCalls)
		assert.Equal(t, 3, repo.Size())
	})

	t.Run("expired snapshots are re-read", func(t *testing.T) {
		inner := &countingRuleRepo{}
		repo := NewCachedApprovalRuleRepository(inner, time.Nanosecond, nil)

		_, err := repo.FindActiveByCategory(ctx, tenantID, "Travel")
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
		_, err = repo.FindActiveByCategory(ctx, tenantID, "Travel")
		require.NoError(t, err)

		assert.Equal(t, 2, inner.findActiveCalls)
	})

	t.Run("zero TTL disables caching", func(t *testing.T) {
		inner := &countingRuleRepo{}
		repo := NewCachedApprovalRuleRepository(inner, 0, nil)

		_, err := repo.FindActiveByCategory(ctx, tenantID, "Travel")
		require.NoError(t, err)
		_, err = repo.FindActiveByCategory(ctx, tenantID, "Travel")
		require.NoError(t, err)

		assert.Equal(t, 2, inner.findActiveCalls)
		assert.Equal(t, 0, repo.Size())
	})

	t.Run("saving a rule invalidates the tenant's snapshots", func(t *testing.T) {
		inner := &countingRuleRepo{}
		repo := NewCachedApprovalRuleRepository(inner, time.Minute, nil)

		otherTenant := uuid.New()
		_, err := repo.FindActiveByCategory(ctx, tenantID, "Travel")
		require.NoError(t, err)
		_, err = repo.FindActiveByCategory(ctx, otherTenant, "Travel")
		require.NoError(t, err)

		require.NoError(t, repo.Save(ctx, newCacheTestRule(t, tenantID, "Travel")))
		assert.Equal(t, 1, inner.saveCalls)
		assert.Equal(t, 1, repo.Size())

		_, err = repo.FindActiveByCategory(ctx, tenantID, "Travel")
		require.NoError(t, err)
		assert.Equal(t, 3, inner.findActiveCalls)

		// The other tenant's snapshot survived the write
		_, err = repo.FindActiveByCategory(ctx, otherTenant, "Travel")
		require.NoError(t, err)
		assert.Equal(t, 3, inner.findActiveCalls)
	})

	t.Run("deleting a rule clears the whole cache", func(t *testing.T) {
		inner := &countingRuleRepo{}
		repo := NewCachedApprovalRuleRepository(inner, time.Minute, nil)

		_, err := repo.FindActiveByCategory(ctx, tenantID, "Travel")
		require.NoError(t, err)
		_, err = repo.FindActiveByCategory(ctx, uuid.New(), "Meals")
		require.NoError(t, err)
		require.Equal(t, 2, repo.Size())

		require.NoError(t, repo.Delete(ctx, uuid.New()))
		assert.Equal(t, 1, inner.deleteCalls)
		assert.Equal(t, 0, repo.Size())
	})

	t.Run("callers cannot mutate the cached snapshot", func(t *testing.T) {
		inner := &countingRuleRepo{rules: []expense.ApprovalRule{*newCacheTestRule(t, tenantID, "Travel")}}
		repo := NewCachedApprovalRuleRepository(inner, time.Minute, nil)

		first, err := repo.FindActiveByCategory(ctx, tenantID, "Travel")
		require.NoError(t, err)
		first[0].Name = "mutated"

		second, err := repo.FindActiveByCategory(ctx, tenantID, "Travel")
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", second[0].Name)
	})
}
