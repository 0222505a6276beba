package expense

import (
	"fmt"

	"github.com/expenseflow/backend/internal/domain/shared"
)

// Engine error taxonomy. All of these are deterministic validation failures
// detected before any mutation; the HTTP layer maps them to 4xx responses.
var (
	// ErrExpenseNotFound is returned when the expense does not exist
	ErrExpenseNotFound = shared.NewDomainError("NOT_FOUND", "Expense not found")

	// ErrRequestNotFound is returned when the approval request does not exist
	ErrRequestNotFound = shared.NewDomainError("NOT_FOUND", "Approval request not found")

	// ErrAlreadyProcessed is returned when re-deciding a finalized request
	ErrAlreadyProcessed = shared.NewDomainError("ALREADY_PROCESSED", "Approval request already processed")

	// ErrAlreadyInitiated is returned when a flow is started twice for one expense
	ErrAlreadyInitiated = shared.NewDomainError("ALREADY_INITIATED", "Approval flow already initiated for this expense")

	// ErrInvalidRuleConfig is returned when the governing rule can never be satisfied
	ErrInvalidRuleConfig = shared.NewDomainError("INVALID_RULE_CONFIG", "Approval rule has no approvers and can never be satisfied")
)

// ErrExpenseFinalized is returned for decisions against a terminal expense
func ErrExpenseFinalized(status ExpenseStatus) *shared.DomainError {
	return shared.NewDomainError("EXPENSE_FINALIZED", fmt.Sprintf("Expense is already %s and accepts no further decisions", status))
}
