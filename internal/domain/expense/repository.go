package expense

import (
	"context"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseFilter defines filtering options for expense queries
type ExpenseFilter struct {
	shared.Filter
	EmployeeID *uuid.UUID       // Filter by submitting employee
	Category   *string          // Filter by expense category
	Status     *ExpenseStatus   // Filter by status
	FromDate   *time.Time       // Filter by expense date range start
	ToDate     *time.Time       // Filter by expense date range end
	MinAmount  *decimal.Decimal // Filter by minimum converted amount
	MaxAmount  *decimal.Decimal // Filter by maximum converted amount
}

// ExpenseRecordRepository defines the interface for expense record persistence
type ExpenseRecordRepository interface {
	// FindByID finds an expense record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ExpenseRecord, error)

	// FindByIDForTenant finds an expense record by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ExpenseRecord, error)

	// FindByExpenseNumber finds by expense number for a tenant
	FindByExpenseNumber(ctx context.Context, tenantID uuid.UUID, expenseNumber string) (*ExpenseRecord, error)

	// FindAllForTenant finds all expense records for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ExpenseFilter) ([]ExpenseRecord, error)

	// FindByEmployee finds expense records submitted by an employee
	FindByEmployee(ctx context.Context, tenantID, employeeID uuid.UUID, filter ExpenseFilter) ([]ExpenseRecord, error)

	// Save creates or updates an expense record
	Save(ctx context.Context, expense *ExpenseRecord) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, expense *ExpenseRecord) error

	// Delete soft deletes an expense record
	Delete(ctx context.Context, id uuid.UUID) error

	// CountForTenant counts expense records for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ExpenseFilter) (int64, error)

	// ExistsByExpenseNumber checks if an expense number exists for a tenant
	ExistsByExpenseNumber(ctx context.Context, tenantID uuid.UUID, expenseNumber string) (bool, error)

	// GenerateExpenseNumber generates a unique expense number for a tenant
	GenerateExpenseNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// ApprovalRequestRepository defines the interface for approval request persistence
type ApprovalRequestRepository interface {
	// FindByID finds an approval request by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ApprovalRequest, error)

	// FindByIDForTenant finds an approval request by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ApprovalRequest, error)

	// FindByExpense finds all requests for an expense ordered by step number
	FindByExpense(ctx context.Context, tenantID, expenseID uuid.UUID) ([]ApprovalRequest, error)

	// FindPendingByApprover finds pending requests assigned to an approver
	FindPendingByApprover(ctx context.Context, tenantID, approverID uuid.UUID, filter shared.Filter) ([]ApprovalRequest, error)

	// CountByExpense counts all requests created for an expense
	CountByExpense(ctx context.Context, tenantID, expenseID uuid.UUID) (int64, error)

	// CountPendingByApprover counts pending requests assigned to an approver
	CountPendingByApprover(ctx context.Context, tenantID, approverID uuid.UUID) (int64, error)

	// ExistsByExpense checks if any request exists for an expense
	ExistsByExpense(ctx context.Context, tenantID, expenseID uuid.UUID) (bool, error)

	// Save creates or updates an approval request
	Save(ctx context.Context, request *ApprovalRequest) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, request *ApprovalRequest) error

	// CreateBatch inserts a set of requests atomically
	CreateBatch(ctx context.Context, requests []*ApprovalRequest) error
}

// RuleFilter defines filtering options for approval rule queries
type RuleFilter struct {
	shared.Filter
	Category *string // Filter by rule category
	IsActive *bool   // Filter by active state
}

// ApprovalRuleRepository defines the interface for approval rule persistence
type ApprovalRuleRepository interface {
	// FindByID finds an approval rule by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ApprovalRule, error)

	// FindByIDForTenant finds an approval rule by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ApprovalRule, error)

	// FindAllForTenant finds all approval rules for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter RuleFilter) ([]ApprovalRule, error)

	// FindActiveByCategory finds active rules whose category is an exact match
	// or the wildcard category
	FindActiveByCategory(ctx context.Context, tenantID uuid.UUID, category string) ([]ApprovalRule, error)

	// Save creates or updates an approval rule
	Save(ctx context.Context, rule *ApprovalRule) error

	// Delete soft deletes an approval rule
	Delete(ctx context.Context, id uuid.UUID) error

	// CountForTenant counts approval rules for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter RuleFilter) (int64, error)
}

// Manager describes the manager resolved for an employee when a flow starts
type Manager struct {
	ID                uuid.UUID
	IsManagerApprover bool
}

// EmployeeDirectory resolves reporting lines for the approval flow.
// Implemented by the identity module so the engine does not depend on it.
type EmployeeDirectory interface {
	// ManagerOf returns the manager of an employee, or nil when the
	// employee has no manager assigned
	ManagerOf(ctx context.Context, tenantID, employeeID uuid.UUID) (*Manager, error)
}

// ExpenseLocker serializes flow mutations per expense. All initiation and
// decision processing for one expense runs under its lock.
type ExpenseLocker interface {
	WithLock(ctx context.Context, expenseID uuid.UUID, fn func(ctx context.Context) error) error
}
