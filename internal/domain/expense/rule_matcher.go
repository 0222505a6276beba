package expense

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RuleMatcher selects the approval rule governing an expense. It only
// reads; callers decide what a nil match means (the engine treats it as
// auto-approval).
type RuleMatcher struct {
	rules ApprovalRuleRepository
}

// NewRuleMatcher creates a rule matcher backed by the given rule store
func NewRuleMatcher(rules ApprovalRuleRepository) *RuleMatcher {
	return &RuleMatcher{rules: rules}
}

// Match returns the rule governing an expense of the given category and
// normalized amount, or nil when no active rule covers it. Candidates are
// the tenant's active rules for the exact category plus wildcard rules;
// the amount band is inclusive on both ends.
//
// When several rules apply, the most specific one wins: the narrowest
// amount band first (a bounded band always beats an open-ended one), then
// the oldest rule, then the smallest ID. The ordering is total, so the
// same rule set and expense always select the same rule.
func (m *RuleMatcher) Match(ctx context.Context, tenantID uuid.UUID, category string, amount decimal.Decimal) (*ApprovalRule, error) {
	rules, err := m.rules.FindActiveByCategory(ctx, tenantID, category)
	if err != nil {
		return nil, err
	}
	return SelectRule(rules, category, amount), nil
}

// SelectRule applies the matching and tie-break ordering to an already
// loaded rule set. Split out so the engine can reuse a snapshot it holds.
func SelectRule(rules []ApprovalRule, category string, amount decimal.Decimal) *ApprovalRule {
	var matched []*ApprovalRule
	for i := range rules {
		if rules[i].AppliesTo(category, amount) {
			matched = append(matched, &rules[i])
		}
	}
	if len(matched) == 0 {
		return nil
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if c := compareWindows(matched[i].WindowWidth(), matched[j].WindowWidth()); c != 0 {
			return c < 0
		}
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	return matched[0]
}

// compareWindows orders amount bands by specificity. Bounded windows sort
// before open-ended ones, narrower before wider.
func compareWindows(a, b *decimal.Decimal) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Cmp(*b)
	}
}
