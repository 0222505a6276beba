package expense

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DecisionResult reports the expense state after a decision was applied
type DecisionResult struct {
	Status  ExpenseStatus `json:"status"`
	Message string        `json:"message"`
}

// ApprovalEngine drives the approval lifecycle of an expense: it starts
// the flow when an expense is submitted and recomputes the outcome after
// every decision. All mutations for one expense run under that expense's
// lock, so concurrent decisions serialize and each one sees the previous
// writer's state.
type ApprovalEngine struct {
	expenses  ExpenseRecordRepository
	requests  ApprovalRequestRepository
	matcher   *RuleMatcher
	directory EmployeeDirectory
	locker    ExpenseLocker
}

// NewApprovalEngine creates the approval engine
func NewApprovalEngine(
	expenses ExpenseRecordRepository,
	requests ApprovalRequestRepository,
	matcher *RuleMatcher,
	directory EmployeeDirectory,
	locker ExpenseLocker,
) *ApprovalEngine {
	return &ApprovalEngine{
		expenses:  expenses,
		requests:  requests,
		matcher:   matcher,
		directory: directory,
		locker:    locker,
	}
}

// InitiateFlow starts the approval flow for a freshly submitted expense.
// The governing rule is matched against the expense's converted amount.
// No rule means the expense is auto-approved. With a rule, the manager
// approval (when configured and resolvable) becomes step 0 and the rule's
// approvers follow in their configured order. All requests are created
// PENDING up-front unless the rule asks for sequential creation, in which
// case only the first one is.
//
// Starting the flow twice for one expense fails with ErrAlreadyInitiated.
func (e *ApprovalEngine) InitiateFlow(ctx context.Context, expenseID, employeeID uuid.UUID) error {
	return e.locker.WithLock(ctx, expenseID, func(ctx context.Context) error {
		expense, err := e.expenses.FindByID(ctx, expenseID)
		if err != nil {
			return err
		}
		if expense == nil {
			return ErrExpenseNotFound
		}
		if !expense.IsPending() {
			return ErrAlreadyInitiated
		}

		exists, err := e.requests.ExistsByExpense(ctx, expense.TenantID, expense.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyInitiated
		}

		rule, err := e.matcher.Match(ctx, expense.TenantID, expense.Category, expense.ConvertedAmount)
		if err != nil {
			return err
		}

		if rule == nil {
			if err := expense.MarkApproved(); err != nil {
				return err
			}
			return e.expenses.SaveWithLock(ctx, expense)
		}

		manager, err := e.resolveManager(ctx, expense.TenantID, employeeID, rule)
		if err != nil {
			return err
		}
		if !rule.CanEverComplete(manager != nil) {
			return ErrInvalidRuleConfig
		}

		planned := plannedApprovers(rule, manager)

		toCreate := planned
		if rule.SequentialCreation {
			toCreate = planned[:1]
		}

		requests := make([]*ApprovalRequest, 0, len(toCreate))
		for _, p := range toCreate {
			req, err := NewApprovalRequest(expense.TenantID, expense.ID, p.ApproverID, p.StepNumber)
			if err != nil {
				return err
			}
			requests = append(requests, req)
		}
		if err := e.requests.CreateBatch(ctx, requests); err != nil {
			return err
		}

		if err := expense.AdvanceStep(0); err != nil {
			return err
		}
		return e.expenses.SaveWithLock(ctx, expense)
	})
}

// ProcessDecision applies one approver's verdict and recomputes the
// expense outcome. A rejection is final immediately. An approval is
// checked against the governing rule's completion conditions in fixed
// priority order: specific approver, then percentage quorum, then
// require-all; when none fires the expense stays pending and the current
// step pointer advances to the next undecided request.
func (e *ApprovalEngine) ProcessDecision(ctx context.Context, requestID uuid.UUID, action DecisionAction, comments string) (*DecisionResult, error) {
	if !action.IsValid() {
		return nil, fmt.Errorf("invalid decision action: %s", action)
	}

	// Pre-read only to learn which expense to lock; state is re-read
	// under the lock.
	preview, err := e.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if preview == nil {
		return nil, ErrRequestNotFound
	}

	var result *DecisionResult
	err = e.locker.WithLock(ctx, preview.ExpenseID, func(ctx context.Context) error {
		request, err := e.requests.FindByID(ctx, requestID)
		if err != nil {
			return err
		}
		if request == nil {
			return ErrRequestNotFound
		}
		if request.Status.IsDecided() {
			return ErrAlreadyProcessed
		}

		expense, err := e.expenses.FindByID(ctx, request.ExpenseID)
		if err != nil {
			return err
		}
		if expense == nil {
			return ErrExpenseNotFound
		}
		if expense.Status.IsTerminal() {
			return ErrExpenseFinalized(expense.Status)
		}

		if err := request.Decide(action, comments); err != nil {
			return err
		}
		if err := e.requests.SaveWithLock(ctx, request); err != nil {
			return err
		}

		result, err = e.recomputeOutcome(ctx, expense, action)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// recomputeOutcome evaluates the expense against its rule after a
// decision was recorded. Runs under the expense lock.
func (e *ApprovalEngine) recomputeOutcome(ctx context.Context, expense *ExpenseRecord, action DecisionAction) (*DecisionResult, error) {
	if action == ActionReject {
		if err := expense.MarkRejected(); err != nil {
			return nil, err
		}
		if err := e.expenses.SaveWithLock(ctx, expense); err != nil {
			return nil, err
		}
		return &DecisionResult{Status: ExpenseStatusRejected, Message: "Expense rejected"}, nil
	}

	ledger, err := e.requests.FindByExpense(ctx, expense.TenantID, expense.ID)
	if err != nil {
		return nil, err
	}

	rule, err := e.matcher.Match(ctx, expense.TenantID, expense.Category, expense.ConvertedAmount)
	if err != nil {
		return nil, err
	}

	if rule == nil {
		// The rule set changed since initiation and nothing governs
		// this expense anymore. Approve, matching initiation behavior.
		return e.approve(ctx, expense, "Expense fully approved")
	}

	if rule.SpecificApproverID != nil {
		for i := range ledger {
			if ledger[i].ApproverID == *rule.SpecificApproverID && ledger[i].IsApproved() {
				return e.approve(ctx, expense, "Expense auto-approved by specific approver")
			}
		}
	}

	approvedCount := 0
	for i := range ledger {
		if ledger[i].IsApproved() {
			approvedCount++
		}
	}
	total := len(ledger)
	if rule.SequentialCreation {
		// Requests are created one at a time, so quorum math runs
		// against the planned flow size, not the ledger size.
		total = plannedTotal(rule, ledger)
	}

	if rule.MinApprovalPercentage != nil && rule.MinApprovalPercentage.IsPositive() && total > 0 {
		pct := decimal.NewFromInt(int64(approvedCount)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(total)))
		if pct.GreaterThanOrEqual(*rule.MinApprovalPercentage) {
			msg := fmt.Sprintf("Expense approved (%s%% approval reached)", pct.Round(0).String())
			return e.approve(ctx, expense, msg)
		}
	}

	if rule.RequireAllApprovers && approvedCount == total {
		return e.approve(ctx, expense, "Expense fully approved")
	}

	if rule.SequentialCreation {
		created, err := e.createNextRequest(ctx, expense, rule, ledger)
		if err != nil {
			return nil, err
		}
		if created != nil {
			ledger = append(ledger, *created)
		}
	}

	for i := range ledger {
		if ledger[i].IsPending() {
			if err := expense.AdvanceStep(ledger[i].StepNumber); err != nil {
				return nil, err
			}
			if err := e.expenses.SaveWithLock(ctx, expense); err != nil {
				return nil, err
			}
			break
		}
	}

	return &DecisionResult{Status: ExpenseStatusPending, Message: "Approved. Awaiting additional approvals."}, nil
}

func (e *ApprovalEngine) approve(ctx context.Context, expense *ExpenseRecord, message string) (*DecisionResult, error) {
	if err := expense.MarkApproved(); err != nil {
		return nil, err
	}
	if err := e.expenses.SaveWithLock(ctx, expense); err != nil {
		return nil, err
	}
	return &DecisionResult{Status: ExpenseStatusApproved, Message: message}, nil
}

// createNextRequest appends the next planned request under sequential
// creation, or nothing when the planned flow is exhausted.
func (e *ApprovalEngine) createNextRequest(ctx context.Context, expense *ExpenseRecord, rule *ApprovalRule, ledger []ApprovalRequest) (*ApprovalRequest, error) {
	seen := make(map[uuid.UUID]bool, len(ledger))
	maxStep := -1
	for i := range ledger {
		seen[ledger[i].ApproverID] = true
		if ledger[i].StepNumber > maxStep {
			maxStep = ledger[i].StepNumber
		}
	}
	for _, a := range orderedApprovers(rule) {
		if seen[a.ApproverID] {
			continue
		}
		req, err := NewApprovalRequest(expense.TenantID, expense.ID, a.ApproverID, maxStep+1)
		if err != nil {
			return nil, err
		}
		if err := e.requests.Save(ctx, req); err != nil {
			return nil, err
		}
		return req, nil
	}
	return nil, nil
}

// resolveManager returns the manager to put at step 0, or nil when the
// rule does not ask for one or the employee's manager is not an approver.
func (e *ApprovalEngine) resolveManager(ctx context.Context, tenantID, employeeID uuid.UUID, rule *ApprovalRule) (*Manager, error) {
	if !rule.IsManagerFirst {
		return nil, nil
	}
	manager, err := e.directory.ManagerOf(ctx, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	if manager == nil || !manager.IsManagerApprover {
		return nil, nil
	}
	return manager, nil
}

// plannedStep pairs an approver with the step the flow assigns to them
type plannedStep struct {
	ApproverID uuid.UUID
	StepNumber int
}

// plannedApprovers lays out the full flow for a rule: the manager first
// when present, then the rule's approvers in their configured order.
func plannedApprovers(rule *ApprovalRule, manager *Manager) []plannedStep {
	planned := make([]plannedStep, 0, len(rule.Approvers)+1)
	step := 0
	if manager != nil {
		planned = append(planned, plannedStep{ApproverID: manager.ID, StepNumber: step})
		step++
	}
	for _, a := range orderedApprovers(rule) {
		planned = append(planned, plannedStep{ApproverID: a.ApproverID, StepNumber: step})
		step++
	}
	return planned
}

// plannedTotal derives the full flow size from the rule and the ledger
// rows created so far. Ledger rows whose approver is not in the rule are
// the manager-first step and extend the plan by one each.
func plannedTotal(rule *ApprovalRule, ledger []ApprovalRequest) int {
	inRule := make(map[uuid.UUID]bool, len(rule.Approvers))
	for _, a := range rule.Approvers {
		inRule[a.ApproverID] = true
	}
	total := len(rule.Approvers)
	for i := range ledger {
		if !inRule[ledger[i].ApproverID] {
			total++
		}
	}
	return total
}

// orderedApprovers returns the rule's approvers sorted by their configured
// step number, preserving declaration order on ties.
func orderedApprovers(rule *ApprovalRule) []RuleApprover {
	out := make([]RuleApprover, len(rule.Approvers))
	copy(out, rule.Approvers)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StepNumber < out[j].StepNumber
	})
	return out
}
