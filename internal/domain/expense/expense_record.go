package expense

import (
	"fmt"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryAll matches every expense category when used on an approval rule
const CategoryAll = "*"

// ExpenseStatus represents the status of an expense record
type ExpenseStatus string

const (
	ExpenseStatusPending  ExpenseStatus = "PENDING"  // Submitted, in the approval flow
	ExpenseStatusApproved ExpenseStatus = "APPROVED" // Final: approved
	ExpenseStatusRejected ExpenseStatus = "REJECTED" // Final: rejected
)

// IsValid checks if the status is a valid ExpenseStatus
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpenseStatusPending, ExpenseStatusApproved, ExpenseStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of ExpenseStatus
func (s ExpenseStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the expense is in a terminal state.
// Terminal statuses are monotone: once reached they never change.
func (s ExpenseStatus) IsTerminal() bool {
	return s == ExpenseStatusApproved || s == ExpenseStatusRejected
}

// ExpenseRecord is the aggregate root for a submitted expense.
// Amount is the figure in the currency the employee paid in;
// ConvertedAmount is the same figure normalized to the company's
// default currency, which is what approval rules are matched against.
type ExpenseRecord struct {
	shared.TenantAggregateRoot
	ExpenseNumber       string               `json:"expense_number"`
	EmployeeID          uuid.UUID            `json:"employee_id"`
	Category            string               `json:"category"`
	Description         string               `json:"description"`
	MerchantName        string               `json:"merchant_name"`
	Amount              decimal.Decimal      `json:"amount"`
	OriginalCurrency    valueobject.Currency `json:"original_currency"`
	ConvertedAmount     decimal.Decimal      `json:"converted_amount"`
	ExpenseDate         time.Time            `json:"expense_date"`
	ReceiptURL          string               `json:"receipt_url"`
	Status              ExpenseStatus        `json:"status"`
	CurrentApprovalStep int                  `json:"current_approval_step"`
	DecidedAt           *time.Time           `json:"decided_at"`
}

// NewExpenseRecord creates a submitted expense in PENDING status
func NewExpenseRecord(
	tenantID uuid.UUID,
	employeeID uuid.UUID,
	expenseNumber string,
	category string,
	description string,
	merchantName string,
	amount valueobject.Money,
	convertedAmount valueobject.Money,
	expenseDate time.Time,
) (*ExpenseRecord, error) {
	if employeeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_EMPLOYEE", "Employee ID cannot be empty")
	}
	if expenseNumber == "" {
		return nil, shared.NewDomainError("INVALID_EXPENSE_NUMBER", "Expense number cannot be empty")
	}
	if category == "" || category == CategoryAll {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Expense category is not valid")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if convertedAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Converted amount cannot be negative")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(description) > 500 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}

	exp := &ExpenseRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ExpenseNumber:       expenseNumber,
		EmployeeID:          employeeID,
		Category:            category,
		Description:         description,
		MerchantName:        merchantName,
		Amount:              amount.Amount(),
		OriginalCurrency:    amount.Currency(),
		ConvertedAmount:     convertedAmount.Amount(),
		ExpenseDate:         expenseDate,
		Status:              ExpenseStatusPending,
		CurrentApprovalStep: 0,
	}

	exp.AddDomainEvent(NewExpenseSubmittedEvent(exp))

	return exp, nil
}

// MarkApproved transitions the expense to APPROVED
func (e *ExpenseRecord) MarkApproved() error {
	if e.Status.IsTerminal() {
		return ErrExpenseFinalized(e.Status)
	}

	now := time.Now()
	e.Status = ExpenseStatusApproved
	e.DecidedAt = &now
	e.UpdatedAt = now

	e.AddDomainEvent(NewExpenseApprovedEvent(e))

	return nil
}

// MarkRejected transitions the expense to REJECTED
func (e *ExpenseRecord) MarkRejected() error {
	if e.Status.IsTerminal() {
		return ErrExpenseFinalized(e.Status)
	}

	now := time.Now()
	e.Status = ExpenseStatusRejected
	e.DecidedAt = &now
	e.UpdatedAt = now

	e.AddDomainEvent(NewExpenseRejectedEvent(e))

	return nil
}

// AdvanceStep moves the advisory current-step pointer.
// The pointer only tracks which request is next for display; it does not
// gate which approver may act.
func (e *ExpenseRecord) AdvanceStep(step int) error {
	if e.Status.IsTerminal() {
		return ErrExpenseFinalized(e.Status)
	}
	if step < 0 {
		return shared.NewDomainError("INVALID_STEP", fmt.Sprintf("Step number must be non-negative, got %d", step))
	}
	e.CurrentApprovalStep = step
	e.UpdatedAt = time.Now()
	return nil
}

// SetReceiptURL attaches a receipt reference
func (e *ExpenseRecord) SetReceiptURL(url string) {
	e.ReceiptURL = url
	e.UpdatedAt = time.Now()
}

// ConvertedMoney returns the normalized amount with the given company currency
func (e *ExpenseRecord) ConvertedMoney(companyCurrency valueobject.Currency) valueobject.Money {
	m, _ := valueobject.NewMoney(e.ConvertedAmount, companyCurrency)
	return m
}

// IsPending returns true if the expense is still in the approval flow
func (e *ExpenseRecord) IsPending() bool {
	return e.Status == ExpenseStatusPending
}

// IsApproved returns true if the expense is approved
func (e *ExpenseRecord) IsApproved() bool {
	return e.Status == ExpenseStatusApproved
}

// IsRejected returns true if the expense is rejected
func (e *ExpenseRecord) IsRejected() bool {
	return e.Status == ExpenseStatusRejected
}
