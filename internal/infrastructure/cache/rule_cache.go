package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ruleCacheEntry holds one cached FindActiveByCategory result
type ruleCacheEntry struct {
	rules     []expense.ApprovalRule
	expiresAt time.Time
}

// CachedApprovalRuleRepository decorates an ApprovalRuleRepository with a
// process-local TTL cache for the matching hot path. Every expense
// submission and decision re-reads the active rules for its category, so
// those snapshots are cached; writes invalidate eagerly.
//
// The cache holds domain aggregates in memory rather than serialized
// copies, so it is deliberately per-process. Stale reads across instances
// are bounded by the TTL
type CachedApprovalRuleRepository struct {
	inner  expense.ApprovalRuleRepository
	ttl    time.Duration
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[string]ruleCacheEntry
}

// NewCachedApprovalRuleRepository wraps the given repository with a TTL
// cache for FindActiveByCategory. A non-positive ttl disables caching
func NewCachedApprovalRuleRepository(inner expense.ApprovalRuleRepository, ttl time.Duration, logger *zap.Logger) *CachedApprovalRuleRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedApprovalRuleRepository{
		inner:   inner,
		ttl:     ttl,
		logger:  logger,
		entries: make(map[string]ruleCacheEntry),
	}
}

func ruleCacheKey(tenantID uuid.UUID, category string) string {
	return fmt.Sprintf("%s:%s", tenantID, category)
}

// FindActiveByCategory serves from the cache when a fresh snapshot exists,
// otherwise reads through and caches the result
func (r *CachedApprovalRuleRepository) FindActiveByCategory(ctx context.Context, tenantID uuid.UUID, category string) ([]expense.ApprovalRule, error) {
	if r.ttl <= 0 {
		return r.inner.FindActiveByCategory(ctx, tenantID, category)
	}

	key := ruleCacheKey(tenantID, category)

	r.mu.RLock()
	entry, ok := r.entries[key]
	r.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		r.logger.Debug("rule cache hit", zap.String("key", key))
		return cloneRules(entry.rules), nil
	}

	rules, err := r.inner.FindActiveByCategory(ctx, tenantID, category)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.entries[key] = ruleCacheEntry{
		rules:     cloneRules(rules),
		expiresAt: time.Now().Add(r.ttl),
	}
	r.mu.Unlock()

	return rules, nil
}

// Save persists the rule and drops the tenant's cached snapshots
func (r *CachedApprovalRuleRepository) Save(ctx context.Context, rule *expense.ApprovalRule) error {
	if err := r.inner.Save(ctx, rule); err != nil {
		return err
	}
	r.invalidateTenant(rule.TenantID)
	return nil
}

// Delete removes the rule and drops all cached snapshots. The delete
// operation is keyed by rule ID only, so the owning tenant is unknown here
func (r *CachedApprovalRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidateAll()
	return nil
}

// FindByID delegates to the underlying repository
func (r *CachedApprovalRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.ApprovalRule, error) {
	return r.inner.FindByID(ctx, id)
}

// FindByIDForTenant delegates to the underlying repository
func (r *CachedApprovalRuleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*expense.ApprovalRule, error) {
	return r.inner.FindByIDForTenant(ctx, tenantID, id)
}

// FindAllForTenant delegates to the underlying repository. List queries
// are paginated and filtered, so they bypass the snapshot cache
func (r *CachedApprovalRuleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter expense.RuleFilter) ([]expense.ApprovalRule, error) {
	return r.inner.FindAllForTenant(ctx, tenantID, filter)
}

// CountForTenant delegates to the underlying repository
func (r *CachedApprovalRuleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter expense.RuleFilter) (int64, error) {
	return r.inner.CountForTenant(ctx, tenantID, filter)
}

// Size returns the number of cached snapshots (for testing/monitoring)
func (r *CachedApprovalRuleRepository) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *CachedApprovalRuleRepository) invalidateTenant(tenantID uuid.UUID) {
	prefix := tenantID.String() + ":"

	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(r.entries, key)
		}
	}
}

func (r *CachedApprovalRuleRepository) invalidateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]ruleCacheEntry)
}

// cloneRules copies the slice so callers cannot mutate the cached snapshot
func cloneRules(rules []expense.ApprovalRule) []expense.ApprovalRule {
	if rules == nil {
		return nil
	}
	out := make([]expense.ApprovalRule, len(rules))
	copy(out, rules)
	return out
}

// Ensure CachedApprovalRuleRepository implements ApprovalRuleRepository
var _ expense.ApprovalRuleRepository = (*CachedApprovalRuleRepository)(nil)
