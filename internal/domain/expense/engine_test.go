package expense

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =========================================================================
// In-memory doubles. The engine's flows are stateful (every decision reads
// back the previous writer's state), so these keep real state instead of
// scripting call-by-call expectations.
// =========================================================================

type memExpenseRepo struct {
	mu       sync.Mutex
	expenses map[uuid.UUID]*ExpenseRecord
}

func newMemExpenseRepo() *memExpenseRepo {
	return &memExpenseRepo{expenses: make(map[uuid.UUID]*ExpenseRecord)}
}

func (r *memExpenseRepo) FindByID(ctx context.Context, id uuid.UUID) (*ExpenseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.expenses[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *memExpenseRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ExpenseRecord, error) {
	e, err := r.FindByID(ctx, id)
	if err != nil || e == nil || e.TenantID != tenantID {
		return nil, err
	}
	return e, nil
}

func (r *memExpenseRepo) FindByExpenseNumber(ctx context.Context, tenantID uuid.UUID, number string) (*ExpenseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.expenses {
		if e.TenantID == tenantID && e.ExpenseNumber == number {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memExpenseRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ExpenseFilter) ([]ExpenseRecord, error) {
	return nil, nil
}

func (r *memExpenseRepo) FindByEmployee(ctx context.Context, tenantID, employeeID uuid.UUID, filter ExpenseFilter) ([]ExpenseRecord, error) {
	return nil, nil
}

func (r *memExpenseRepo) Save(ctx context.Context, e *ExpenseRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.expenses[e.ID] = &cp
	return nil
}

func (r *memExpenseRepo) SaveWithLock(ctx context.Context, e *ExpenseRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.expenses[e.ID]; ok && cur.Version != e.Version {
		return shared.ErrConcurrencyConflict
	}
	e.Version++
	cp := *e
	r.expenses[e.ID] = &cp
	return nil
}

func (r *memExpenseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.expenses, id)
	return nil
}

func (r *memExpenseRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ExpenseFilter) (int64, error) {
	return int64(len(r.expenses)), nil
}

func (r *memExpenseRepo) ExistsByExpenseNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	e, _ := r.FindByExpenseNumber(ctx, tenantID, number)
	return e != nil, nil
}

func (r *memExpenseRepo) GenerateExpenseNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return "EXP-TEST-001", nil
}

type memRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*ApprovalRequest
}

func newMemRequestRepo() *memRequestRepo {
	return &memRequestRepo{requests: make(map[uuid.UUID]*ApprovalRequest)}
}

func (r *memRequestRepo) FindByID(ctx context.Context, id uuid.UUID) (*ApprovalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *memRequestRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ApprovalRequest, error) {
	req, err := r.FindByID(ctx, id)
	if err != nil || req == nil || req.TenantID != tenantID {
		return nil, err
	}
	return req, nil
}

func (r *memRequestRepo) FindByExpense(ctx context.Context, tenantID, expenseID uuid.UUID) ([]ApprovalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ApprovalRequest
	for _, req := range r.requests {
		if req.TenantID == tenantID && req.ExpenseID == expenseID {
			out = append(out, *req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StepNumber < out[j].StepNumber })
	return out, nil
}

func (r *memRequestRepo) FindPendingByApprover(ctx context.Context, tenantID, approverID uuid.UUID, filter shared.Filter) ([]ApprovalRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ApprovalRequest
	for _, req := range r.requests {
		if req.TenantID == tenantID && req.ApproverID == approverID && req.IsPending() {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *memRequestRepo) CountByExpense(ctx context.Context, tenantID, expenseID uuid.UUID) (int64, error) {
	reqs, _ := r.FindByExpense(ctx, tenantID, expenseID)
	return int64(len(reqs)), nil
}

func (r *memRequestRepo) CountPendingByApprover(ctx context.Context, tenantID, approverID uuid.UUID) (int64, error) {
	reqs, _ := r.FindPendingByApprover(ctx, tenantID, approverID, shared.Filter{})
	return int64(len(reqs)), nil
}

func (r *memRequestRepo) ExistsByExpense(ctx context.Context, tenantID, expenseID uuid.UUID) (bool, error) {
	n, _ := r.CountByExpense(ctx, tenantID, expenseID)
	return n > 0, nil
}

func (r *memRequestRepo) Save(ctx context.Context, req *ApprovalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *memRequestRepo) SaveWithLock(ctx context.Context, req *ApprovalRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.requests[req.ID]; ok && cur.Version != req.Version {
		return shared.ErrConcurrencyConflict
	}
	req.Version++
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *memRequestRepo) CreateBatch(ctx context.Context, reqs []*ApprovalRequest) error {
	for _, req := range reqs {
		if err := r.Save(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

type memRuleRepo struct {
	mu    sync.Mutex
	rules map[uuid.UUID]*ApprovalRule
}

func newMemRuleRepo() *memRuleRepo {
	return &memRuleRepo{rules: make(map[uuid.UUID]*ApprovalRule)}
}

func (r *memRuleRepo) FindByID(ctx context.Context, id uuid.UUID) (*ApprovalRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.rules[id]
	if !ok {
		return nil, nil
	}
	cp := *rule
	return &cp, nil
}

func (r *memRuleRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ApprovalRule, error) {
	rule, err := r.FindByID(ctx, id)
	if err != nil || rule == nil || rule.TenantID != tenantID {
		return nil, err
	}
	return rule, nil
}

func (r *memRuleRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter RuleFilter) ([]ApprovalRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ApprovalRule
	for _, rule := range r.rules {
		if rule.TenantID == tenantID {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (r *memRuleRepo) FindActiveByCategory(ctx context.Context, tenantID uuid.UUID, category string) ([]ApprovalRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ApprovalRule
	for _, rule := range r.rules {
		if rule.TenantID == tenantID && rule.IsActive && (rule.Category == category || rule.Category == CategoryAll) {
			out = append(out, *rule)
		}
	}
	return out, nil
}

func (r *memRuleRepo) Save(ctx context.Context, rule *ApprovalRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rule
	r.rules[rule.ID] = &cp
	return nil
}

func (r *memRuleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rules, id)
	return nil
}

func (r *memRuleRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter RuleFilter) (int64, error) {
	return int64(len(r.rules)), nil
}

type memDirectory struct {
	managers map[uuid.UUID]*Manager
}

func (d *memDirectory) ManagerOf(ctx context.Context, tenantID, employeeID uuid.UUID) (*Manager, error) {
	return d.managers[employeeID], nil
}

type noopLocker struct{}

func (noopLocker) WithLock(ctx context.Context, expenseID uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// =========================================================================
// Fixture
// =========================================================================

type engineFixture struct {
	engine    *ApprovalEngine
	expenses  *memExpenseRepo
	requests  *memRequestRepo
	rules     *memRuleRepo
	directory *memDirectory
	tenantID  uuid.UUID
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	expenses := newMemExpenseRepo()
	requests := newMemRequestRepo()
	rules := newMemRuleRepo()
	directory := &memDirectory{managers: make(map[uuid.UUID]*Manager)}
	return &engineFixture{
		engine:    NewApprovalEngine(expenses, requests, NewRuleMatcher(rules), directory, noopLocker{}),
		expenses:  expenses,
		requests:  requests,
		rules:     rules,
		directory: directory,
		tenantID:  uuid.New(),
	}
}

func (f *engineFixture) submitExpense(t *testing.T, employeeID uuid.UUID, category string, amount float64) *ExpenseRecord {
	t.Helper()
	money, err := valueobject.NewMoneyFromFloat(amount, valueobject.USD)
	require.NoError(t, err)
	exp, err := NewExpenseRecord(
		f.tenantID, employeeID, "EXP-2026-0001", category,
		"Team offsite dinner", "Blue Bottle", money, money, time.Now(),
	)
	require.NoError(t, err)
	require.NoError(t, f.expenses.Save(context.Background(), exp))
	return exp
}

func (f *engineFixture) addRule(t *testing.T, configure func(*ApprovalRule)) *ApprovalRule {
	t.Helper()
	rule, err := NewApprovalRule(f.tenantID, "Default policy", "Meals", []RuleApprover{})
	require.NoError(t, err)
	configure(rule)
	require.NoError(t, f.rules.Save(context.Background(), rule))
	return rule
}

func (f *engineFixture) requestFor(t *testing.T, expenseID, approverID uuid.UUID) *ApprovalRequest {
	t.Helper()
	reqs, err := f.requests.FindByExpense(context.Background(), f.tenantID, expenseID)
	require.NoError(t, err)
	for i := range reqs {
		if reqs[i].ApproverID == approverID {
			return &reqs[i]
		}
	}
	t.Fatalf("no request for approver %s", approverID)
	return nil
}

func (f *engineFixture) currentExpense(t *testing.T, id uuid.UUID) *ExpenseRecord {
	t.Helper()
	exp, err := f.expenses.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, exp)
	return exp
}

func approvers(ids ...uuid.UUID) []RuleApprover {
	out := make([]RuleApprover, 0, len(ids))
	for i, id := range ids {
		out = append(out, RuleApprover{ApproverID: id, StepNumber: i, Required: true})
	}
	return out
}

func dec(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

// =========================================================================
// InitiateFlow
// =========================================================================

func TestInitiateFlow(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	t.Run("auto-approves when no rule matches", func(t *testing.T) {
		f := newEngineFixture(t)
		exp := f.submitExpense(t, employeeID, "Meals", 40)

		require.NoError(t, f.engine.InitiateFlow(ctx, exp.ID, employeeID))

		got := f.currentExpense(t, exp.ID)
		assert.Equal(t, ExpenseStatusApproved, got.Status)
		n, _ := f.requests.CountByExpense(ctx, f.tenantID, exp.ID)
		assert.Zero(t, n)
	})

	t.Run("creates pending requests for every rule approver", func(t *testing.T) {
		f := newEngineFixture(t)
		a1, a2 := uuid.New(), uuid.New()
		f.addRule(t, func(r *ApprovalRule) { r.Approvers = approvers(a1, a2) })
		exp := f.submitExpense(t, employeeID, "Meals", 40)

		require.NoError(t, f.engine.InitiateFlow(ctx, exp.ID, employeeID))

		reqs, err := f.requests.FindByExpense(ctx, f.tenantID, exp.ID)
		require.NoError(t, err)
		require.Len(t, reqs, 2)
		assert.Equal(t, a1, reqs[0].ApproverID)
		assert.Equal(t, 0, reqs[0].StepNumber)
		assert.Equal(t, a2, reqs[1].ApproverID)
		assert.Equal(t, 1, reqs[1].StepNumber)
		for _, r := range reqs {
			assert.Equal(t, ApprovalStatusPending, r.Status)
		}
		got := f.currentExpense(t, exp.ID)
		assert.Equal(t, ExpenseStatusPending, got.Status)
		assert.Equal(t, 0, got.CurrentApprovalStep)
	})

	t.Run("puts the approver-flagged manager at step zero", func(t *testing.T) {
		f := newEngineFixture(t)
		managerID, a1 := uuid.New(), uuid.New()
		f.directory.managers[employeeID] = &Manager{ID: managerID, IsManagerApprover: true}
		f.addRule(t, func(r *ApprovalRule) {
			r.Approvers = approvers(a1)
			r.IsManagerFirst = true
		})
		exp := f.submitExpense(t, employeeID, "Meals", 40)

		require.NoError(t, f.engine.InitiateFlow(ctx, exp.ID, employeeID))

		reqs, err := f.requests.FindByExpense(ctx, f.tenantID, exp.ID)
		require.NoError(t, err)
		require.Len(t, reqs, 2)
		assert.Equal(t, managerID, reqs[0].ApproverID)
		assert.Equal(t, 0, reqs[0].StepNumber)
		assert.Equal(t, a1, reqs[1].ApproverID)
		assert.Equal(t, 1, reqs[1].StepNumber)
	})

	t.Run("skips the manager step when the manager is not an approver", func(t *testing.T) {
		f := newEngineFixture(t)
		managerID, a1 := uuid.New(), uuid.New()
		f.directory.managers[employeeID] = &Manager{ID: managerID, IsManagerApprover: false}
		f.addRule(t, func(r *ApprovalRule) {
			r.Approvers = approvers(a1)
			r.IsManagerFirst = true
		})
		exp := f.submitExpense(t, employeeID, "Meals", 40)

		require.NoError(t, f.engine.InitiateFlow(ctx, exp.ID, employeeID))

		reqs, err := f.requests.FindByExpense(ctx, f.tenantID, exp.ID)
		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, a1, reqs[0].ApproverID)
		assert.Equal(t, 0, reqs[0].StepNumber)
	})

	t.Run("fails the second initiation for the same expense", func(t *testing.T) {
		f := newEngineFixture(t)
		f.addRule(t, func(r *ApprovalRule) { r.Approvers = approvers(uuid.New()) })
		exp := f.submitExpense(t, employeeID, "Meals", 40)

		require.NoError(t, f.engine.InitiateFlow(ctx, exp.ID, employeeID))
		err := f.engine.InitiateFlow(ctx, exp.ID, employeeID)
		assert.ErrorIs(t, err, ErrAlreadyInitiated)
	})

	t.Run("rejects a rule that can never be satisfied", func(t *testing.T) {
		f := newEngineFixture(t)
		f.addRule(t, func(r *ApprovalRule) {
			r.Approvers = nil
			r.IsManagerFirst = true
		})
		exp := f.submitExpense(t, employeeID, "Meals", 40)

		err := f.engine.InitiateFlow(ctx, exp.ID, employeeID)
		assert.ErrorIs(t, err, ErrInvalidRuleConfig)
		got := f.currentExpense(t, exp.ID)
		assert.Equal(t, ExpenseStatusPending, got.Status)
	})

	t.Run("fails for an unknown expense", func(t *testing.T) {
		f := newEngineFixture(t)
		err := f.engine.InitiateFlow(ctx, uuid.New(), employeeID)
		assert.ErrorIs(t, err, ErrExpenseNotFound)
	})

	t.Run("matches against amount bounds inclusively", func(t *testing.T) {
		f := newEngineFixture(t)
		f.addRule(t, func(r *ApprovalRule) {
			r.Approvers = approvers(uuid.New())
			r.MinAmount = dec(100)
			r.MaxAmount = dec(500)
		})
		exp := f.submitExpense(t, employeeID, "Meals", 500)

		require.NoError(t, f.engine.InitiateFlow(ctx, exp.ID, employeeID))

		got := f.currentExpense(t, exp.ID)
		assert.Equal(t, ExpenseStatusPending, got.Status)
	})

	t.Run("creates only the first request under sequential creation", func(t *testing.T) {
		f := newEngineFixture(t)
		a1, a2 := uuid.New(), uuid.New()
		f.addRule(t, func(r *ApprovalRule) {
			r.Approvers = approvers(a1, a2)
			r.SequentialCreation = true
		})
		exp := f.submitExpense(t, employeeID, "Meals", 40)

		require.NoError(t, f.engine.InitiateFlow(ctx, exp.ID, employeeID))

		reqs, err := f.requests.FindByExpense(ctx, f.tenantID, exp.ID)
		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, a1, reqs[0].ApproverID)
	})
}

// =========================================================================
// ProcessDecision
// =========================================================================

func TestProcessDecision(t *testing.T) {
	ctx := context.Background()
	employeeID := uuid.New()

	t.Run("rejection finalizes the expense immediately", func(t *testing.T) {
		f := newEngineFixture(t)
		a1, a2 := uuid.New(), uuid.New()
		f.addRule(t, func(r *ApprovalRule) { r.Approvers = approvers(a1, a2) })
		exp := f.submitExpense(t, employeeID, "Meals", 40)
		require.NoError(t, f.engine.InitiateFlow(ctx, exp.ID, employeeID))

		res, err := f.engine.ProcessDecision(ctx, f.requestFor(t, exp.ID, a1).ID, ActionReject, "over budget")
		require.NoError(t, err)
		assert.Equal(t, ExpenseStatusRejected, res.Status)
		assert.Equal(t, "Expense rejected", res.Message)

		got := f.currentExpense(t, exp.ID)
		assert.Equal(t, ExpenseStatusRejected, got.Status)
	})

	t.Run("require-all approves only after every approver approves", func(t *testing.T) {
		f := newEngineFixture(t)
		a1, a2 := uuid.New(), uuid.New()
		f.addRule(t, func(r *ApprovalRule) { r.Approvers = approvers(a1, a2) })
		exp := f.submitExpense(t, employeeID, "Meals", 40)
		require.NoError(t, f.engine.InitiateFlow(ctx, exp.ID, employeeID))

		res, err := f.engine.ProcessDecision(ctx, f.requestFor(t, exp.ID, a1).ID, ActionApprove, "")
		require.NoError(t, err)
		assert.Equal(t, ExpenseStatusPending, res.Status)
		assert.Equal(t, "Approved. Awaiting additional approvals.", res.Message)
		assert.Equal(t, 1, f.currentExpense(t, exp.ID).CurrentApprovalStep)

		res, err = f.engine.ProcessDecision(ctx, f.requestFor(t, exp.ID, a2).ID, ActionApprove, "")
		require.NoError(t, err)
		assert.Equal(t, ExpenseStatusApproved, res.Status)
		assert.Equal(t, "Expense fully approved", res.Message)
	})

	t.Run("specific approver short-circuits the flow", func(t *testing.T) {
		f := newEngineFixture(t)
		a1, a2, cfo := uuid.New(), uuid.New(), uuid.New()
		f.addRule(t, func(r *ApprovalRule) {
			r.Approvers = approvers(a1, cfo, a2)
			r.SpecificApproverID = &cfo
		})
		exp := f.submitExpense(t, employeeID, "Meals", 40)
		require.NoError(t, f.engine.InitiateFlow(ctx, exp.ID, employeeID))

		res, err := f.engine.ProcessDecision(ctx, f.requestFor(t, exp.ID, cfo).ID, ActionApprove, "fine by me")
		require.NoError(t, err)
		assert.Equal(t, ExpenseStatusApproved, res.Status)
		assert.Equal(t, "Expense auto-approved by specific approver", res.Message)
	})

	t.Run("percentage quorum approves at the inclusive threshold", func(t *testing.T) {
		f := newEngineFixture(t)
		a1, a2, a3 := uuid.New(), uuid.New(), uuid.New()
		f.addRule(t, func(r *ApprovalRule) {
			r.Approvers = approvers(a1, a2, a3)
			r.RequireAllApprovers = false
			require.NoError(t, r.SetPercentageThreshold(decimal.NewFromInt(60)))
		})
		exp := f.submitExpense(t, employeeID, "Meals", 40)
		require.NoError(t, f.engine.InitiateFlow(ctx, exp.ID, employeeID))

		res, err := f.engine.ProcessDecision(ctx, f.requestFor(t, exp.ID, a1).ID, ActionApprove, "")
		require.NoError(t, err)
		assert.Equal(t, ExpenseStatusPending, res.Status)

		// 2 of 3 approved is 66.67%, above the 60% threshold
		res, err = f.engine.ProcessDecision(ctx, f.requestFor(t, exp.ID, a2).ID, ActionApprove, "")
		require.NoError(t, err)
		assert.Equal(t, ExpenseStatusApproved, res.Status)
		assert.Equal(t, "Expense approved (67% approval reached)", res.Message)
	})

	t.Run("percentage quorum counts exactly at the threshold", func(t *testing.T) {
		f := newEngineFixture(t)
		a1, a2 := uuid.New(), uuid.New()
		f.addRule(t, func(r *ApprovalRule) {
			r.Approvers = approvers(a1, a2)
			r.RequireAllApprovers = false
			require.NoError(t, r.SetPercentageThreshold(decimal.NewFromInt(50)))
		})
		exp := f.submitExpense(t, employeeID, "Meals", 40)
		require.NoError(t, f.engine.InitiateFlow(ctx, exp.ID, employeeID))

		res, err := f.engine.ProcessDecision(ctx, f.requestFor(t, exp.ID, a1).ID, ActionApprove, "")
		require.NoError(t, err)
		assert.Equal(t, ExpenseStatusApproved, res.Status)
		assert.Equal(t, "Expense approved (50% approval reached)", res.Message)
	})

	t.Run("deciding a request twice fails", func(t *testing.T) {
		f := newEngineFixture(t)
		a1, a2 := uuid.New(), uuid.New()
		f.addRule(t, func(r *ApprovalRule) { r.Approvers = approvers(a1, a2) })
		exp := f.submitExpense(t, employeeID, "Meals", 40)
		require.NoError(t, f.engine.InitiateFlow(ctx, exp.ID, employeeID))

		reqID := f.requestFor(t, exp.ID, a1).ID
		_, err := f.engine.ProcessDecision(ctx, reqID, ActionApprove, "")
		require.NoError(t, err)

		_, err = f.engine.ProcessDecision(ctx, reqID, ActionApprove, "")
		assert.ErrorIs(t, err, ErrAlreadyProcessed)
	})

	t.Run("deciding against a finalized expense fails", func(t *testing.T) {
		f := newEngineFixture(t)
		a1, a2 := uuid.New(), uuid.New()
		f.addRule(t, func(r *ApprovalRule) { r.Approvers = approvers(a1, a2) })
		exp := f.submitExpense(t, employeeID, "Meals", 40)
		require.NoError(t, f.engine.InitiateFlow(ctx, exp.ID, employeeID))

		_, err := f.engine.ProcessDecision(ctx, f.requestFor(t, exp.ID, a1).ID, ActionReject, "")
		require.NoError(t, err)

		_, err = f.engine.ProcessDecision(ctx, f.requestFor(t, exp.ID, a2).ID, ActionApprove, "")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "EXPENSE_FINALIZED", domainErr.Code)
	})

	t.Run("fails for an unknown request", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.engine.ProcessDecision(ctx, uuid.New(), ActionApprove, "")
		assert.ErrorIs(t, err, ErrRequestNotFound)
	})

	t.Run("rejects an unknown action", func(t *testing.T) {
		f := newEngineFixture(t)
		_, err := f.engine.ProcessDecision(ctx, uuid.New(), DecisionAction("MAYBE"), "")
		require.Error(t, err)
	})

	t.Run("manager-first flow walks manager then rule approvers", func(t *testing.T) {
		f := newEngineFixture(t)
		managerID, a1 := uuid.New(), uuid.New()
		f.directory.managers[employeeID] = &Manager{ID: managerID, IsManagerApprover: true}
		f.addRule(t, func(r *ApprovalRule) {
			r.Approvers = approvers(a1)
			r.IsManagerFirst = true
		})
		exp := f.submitExpense(t, employeeID, "Meals", 40)
		require.NoError(t, f.engine.InitiateFlow(ctx, exp.ID, employeeID))

		res, err := f.engine.ProcessDecision(ctx, f.requestFor(t, exp.ID, managerID).ID, ActionApprove, "")
		require.NoError(t, err)
		assert.Equal(t, ExpenseStatusPending, res.Status)
		assert.Equal(t, 1, f.currentExpense(t, exp.ID).CurrentApprovalStep)

		res, err = f.engine.ProcessDecision(ctx, f.requestFor(t, exp.ID, a1).ID, ActionApprove, "")
		require.NoError(t, err)
		assert.Equal(t, ExpenseStatusApproved, res.Status)
		assert.Equal(t, "Expense fully approved", res.Message)
	})

	t.Run("sequential creation materializes the next request after each approval", func(t *testing.T) {
		f := newEngineFixture(t)
		a1, a2, a3 := uuid.New(), uuid.New(), uuid.New()
		f.addRule(t, func(r *ApprovalRule) {
			r.Approvers = approvers(a1, a2, a3)
			r.SequentialCreation = true
		})
		exp := f.submitExpense(t, employeeID, "Meals", 40)
		require.NoError(t, f.engine.InitiateFlow(ctx, exp.ID, employeeID))

		res, err := f.engine.ProcessDecision(ctx, f.requestFor(t, exp.ID, a1).ID, ActionApprove, "")
		require.NoError(t, err)
		assert.Equal(t, ExpenseStatusPending, res.Status)

		reqs, err := f.requests.FindByExpense(ctx, f.tenantID, exp.ID)
		require.NoError(t, err)
		require.Len(t, reqs, 2)
		assert.Equal(t, a2, reqs[1].ApproverID)
		assert.Equal(t, 1, reqs[1].StepNumber)

		res, err = f.engine.ProcessDecision(ctx, f.requestFor(t, exp.ID, a2).ID, ActionApprove, "")
		require.NoError(t, err)
		assert.Equal(t, ExpenseStatusPending, res.Status)

		res, err = f.engine.ProcessDecision(ctx, f.requestFor(t, exp.ID, a3).ID, ActionApprove, "")
		require.NoError(t, err)
		assert.Equal(t, ExpenseStatusApproved, res.Status)
		assert.Equal(t, "Expense fully approved", res.Message)
	})

	t.Run("sequential percentage quorum runs against the planned flow size", func(t *testing.T) {
		f := newEngineFixture(t)
		a1, a2, a3, a4 := uuid.New(), uuid.New(), uuid.New(), uuid.New()
		f.addRule(t, func(r *ApprovalRule) {
			r.Approvers = approvers(a1, a2, a3, a4)
			r.RequireAllApprovers = false
			r.SequentialCreation = true
			require.NoError(t, r.SetPercentageThreshold(decimal.NewFromInt(50)))
		})
		exp := f.submitExpense(t, employeeID, "Meals", 40)
		require.NoError(t, f.engine.InitiateFlow(ctx, exp.ID, employeeID))

		// 1 of 4 planned approvers is 25%, below threshold even though the
		// ledger only holds one row so far
		res, err := f.engine.ProcessDecision(ctx, f.requestFor(t, exp.ID, a1).ID, ActionApprove, "")
		require.NoError(t, err)
		assert.Equal(t, ExpenseStatusPending, res.Status)

		res, err = f.engine.ProcessDecision(ctx, f.requestFor(t, exp.ID, a2).ID, ActionApprove, "")
		require.NoError(t, err)
		assert.Equal(t, ExpenseStatusApproved, res.Status)
		assert.Equal(t, "Expense approved (50% approval reached)", res.Message)
	})
}
