package expense

import (
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseSubmittedEvent is raised when an employee submits a new expense
type ExpenseSubmittedEvent struct {
	shared.BaseDomainEvent
	ExpenseID       uuid.UUID       `json:"expense_id"`
	ExpenseNumber   string          `json:"expense_number"`
	EmployeeID      uuid.UUID       `json:"employee_id"`
	Category        string          `json:"category"`
	Amount          decimal.Decimal `json:"amount"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	ExpenseDate     time.Time       `json:"expense_date"`
}

// EventType returns the event type name
func (e *ExpenseSubmittedEvent) EventType() string {
	return "ExpenseSubmitted"
}

// NewExpenseSubmittedEvent creates a new ExpenseSubmittedEvent
func NewExpenseSubmittedEvent(exp *ExpenseRecord) *ExpenseSubmittedEvent {
	return &ExpenseSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExpenseSubmitted", "ExpenseRecord", exp.ID, exp.TenantID),
		ExpenseID:       exp.ID,
		ExpenseNumber:   exp.ExpenseNumber,
		EmployeeID:      exp.EmployeeID,
		Category:        exp.Category,
		Amount:          exp.Amount,
		ConvertedAmount: exp.ConvertedAmount,
		ExpenseDate:     exp.ExpenseDate,
	}
}

// ExpenseApprovedEvent is raised when an expense reaches APPROVED
type ExpenseApprovedEvent struct {
	shared.BaseDomainEvent
	ExpenseID     uuid.UUID       `json:"expense_id"`
	ExpenseNumber string          `json:"expense_number"`
	EmployeeID    uuid.UUID       `json:"employee_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *ExpenseApprovedEvent) EventType() string {
	return "ExpenseApproved"
}

// NewExpenseApprovedEvent creates a new ExpenseApprovedEvent
func NewExpenseApprovedEvent(exp *ExpenseRecord) *ExpenseApprovedEvent {
	return &ExpenseApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExpenseApproved", "ExpenseRecord", exp.ID, exp.TenantID),
		ExpenseID:       exp.ID,
		ExpenseNumber:   exp.ExpenseNumber,
		EmployeeID:      exp.EmployeeID,
		Amount:          exp.Amount,
	}
}

// ExpenseRejectedEvent is raised when an expense reaches REJECTED
type ExpenseRejectedEvent struct {
	shared.BaseDomainEvent
	ExpenseID     uuid.UUID       `json:"expense_id"`
	ExpenseNumber string          `json:"expense_number"`
	EmployeeID    uuid.UUID       `json:"employee_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *ExpenseRejectedEvent) EventType() string {
	return "ExpenseRejected"
}

// NewExpenseRejectedEvent creates a new ExpenseRejectedEvent
func NewExpenseRejectedEvent(exp *ExpenseRecord) *ExpenseRejectedEvent {
	return &ExpenseRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ExpenseRejected", "ExpenseRecord", exp.ID, exp.TenantID),
		ExpenseID:       exp.ID,
		ExpenseNumber:   exp.ExpenseNumber,
		EmployeeID:      exp.EmployeeID,
		Amount:          exp.Amount,
	}
}
