package expense

import (
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ApprovalRequestCreatedEvent is raised when the flow creates a pending request
type ApprovalRequestCreatedEvent struct {
	shared.BaseDomainEvent
	RequestID  uuid.UUID `json:"request_id"`
	ExpenseID  uuid.UUID `json:"expense_id"`
	ApproverID uuid.UUID `json:"approver_id"`
	StepNumber int       `json:"step_number"`
}

// EventType returns the event type name
func (e *ApprovalRequestCreatedEvent) EventType() string {
	return "ApprovalRequestCreated"
}

// NewApprovalRequestCreatedEvent creates a new ApprovalRequestCreatedEvent
func NewApprovalRequestCreatedEvent(req *ApprovalRequest) *ApprovalRequestCreatedEvent {
	return &ApprovalRequestCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ApprovalRequestCreated", "ApprovalRequest", req.ID, req.TenantID),
		RequestID:       req.ID,
		ExpenseID:       req.ExpenseID,
		ApproverID:      req.ApproverID,
		StepNumber:      req.StepNumber,
	}
}

// ApprovalRequestDecidedEvent is raised when an approver records a verdict
type ApprovalRequestDecidedEvent struct {
	shared.BaseDomainEvent
	RequestID  uuid.UUID      `json:"request_id"`
	ExpenseID  uuid.UUID      `json:"expense_id"`
	ApproverID uuid.UUID      `json:"approver_id"`
	Status     ApprovalStatus `json:"status"`
	DecidedAt  time.Time      `json:"decided_at"`
}

// EventType returns the event type name
func (e *ApprovalRequestDecidedEvent) EventType() string {
	return "ApprovalRequestDecided"
}

// NewApprovalRequestDecidedEvent creates a new ApprovalRequestDecidedEvent
func NewApprovalRequestDecidedEvent(req *ApprovalRequest) *ApprovalRequestDecidedEvent {
	decidedAt := time.Now()
	if req.DecidedAt != nil {
		decidedAt = *req.DecidedAt
	}
	return &ApprovalRequestDecidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ApprovalRequestDecided", "ApprovalRequest", req.ID, req.TenantID),
		RequestID:       req.ID,
		ExpenseID:       req.ExpenseID,
		ApproverID:      req.ApproverID,
		Status:          req.Status,
		DecidedAt:       decidedAt,
	}
}

// ApprovalRuleCreatedEvent is raised when an admin creates a rule
type ApprovalRuleCreatedEvent struct {
	shared.BaseDomainEvent
	RuleID   uuid.UUID `json:"rule_id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
}

// EventType returns the event type name
func (e *ApprovalRuleCreatedEvent) EventType() string {
	return "ApprovalRuleCreated"
}

// NewApprovalRuleCreatedEvent creates a new ApprovalRuleCreatedEvent
func NewApprovalRuleCreatedEvent(rule *ApprovalRule) *ApprovalRuleCreatedEvent {
	return &ApprovalRuleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ApprovalRuleCreated", "ApprovalRule", rule.ID, rule.TenantID),
		RuleID:          rule.ID,
		Name:            rule.Name,
		Category:        rule.Category,
	}
}
