package expense

import (
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ApprovalStatus represents the status of a single approval request
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

// IsValid checks if the status is a valid ApprovalStatus
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of ApprovalStatus
func (s ApprovalStatus) String() string {
	return string(s)
}

// IsDecided returns true once the request left PENDING
func (s ApprovalStatus) IsDecided() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

// DecisionAction is an approver's verdict on a request
type DecisionAction string

const (
	ActionApprove DecisionAction = "APPROVE"
	ActionReject  DecisionAction = "REJECT"
)

// IsValid checks if the action is a valid DecisionAction
func (a DecisionAction) IsValid() bool {
	return a == ActionApprove || a == ActionReject
}

// ApprovalRequest is one approver's vote against one expense.
// StepNumber is assigned at creation and never mutated; it reflects the
// submission order of approvers for the governing rule and is used for
// ordering and the advisory current-step pointer only.
type ApprovalRequest struct {
	shared.TenantAggregateRoot
	ExpenseID  uuid.UUID      `json:"expense_id"`
	ApproverID uuid.UUID      `json:"approver_id"`
	StepNumber int            `json:"step_number"`
	Status     ApprovalStatus `json:"status"`
	Comments   string         `json:"comments"`
	DecidedAt  *time.Time     `json:"decided_at"`
}

// NewApprovalRequest creates a pending approval request
func NewApprovalRequest(tenantID, expenseID, approverID uuid.UUID, stepNumber int) (*ApprovalRequest, error) {
	if expenseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_EXPENSE", "Expense ID cannot be empty")
	}
	if approverID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_APPROVER", "Approver ID cannot be empty")
	}
	if stepNumber < 0 {
		return nil, shared.NewDomainError("INVALID_STEP", "Step number must be non-negative")
	}

	req := &ApprovalRequest{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ExpenseID:           expenseID,
		ApproverID:          approverID,
		StepNumber:          stepNumber,
		Status:              ApprovalStatusPending,
	}

	req.AddDomainEvent(NewApprovalRequestCreatedEvent(req))

	return req, nil
}

// Decide records the approver's verdict. A request is decided exactly once;
// re-deciding fails with ALREADY_PROCESSED.
func (r *ApprovalRequest) Decide(action DecisionAction, comments string) error {
	if r.Status.IsDecided() {
		return ErrAlreadyProcessed
	}
	if !action.IsValid() {
		return shared.NewDomainError("INVALID_ACTION", "Action must be APPROVE or REJECT")
	}

	now := time.Now()
	if action == ActionApprove {
		r.Status = ApprovalStatusApproved
	} else {
		r.Status = ApprovalStatusRejected
	}
	r.Comments = comments
	r.DecidedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewApprovalRequestDecidedEvent(r))

	return nil
}

// IsPending returns true if the request still awaits a decision
func (r *ApprovalRequest) IsPending() bool {
	return r.Status == ApprovalStatusPending
}

// IsApproved returns true if the approver approved
func (r *ApprovalRequest) IsApproved() bool {
	return r.Status == ApprovalStatusApproved
}
