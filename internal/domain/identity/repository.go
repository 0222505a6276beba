package identity

import (
	"context"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EmployeeFilter defines filtering options for employee queries
type EmployeeFilter struct {
	shared.Filter
	Role     *EmployeeRole // Filter by role
	IsActive *bool         // Filter by active state
}

// EmployeeRepository defines the interface for employee persistence
type EmployeeRepository interface {
	// FindByID finds an employee by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Employee, error)

	// FindByIDForTenant finds an employee by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Employee, error)

	// FindByEmail finds an employee by email within a tenant
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*Employee, error)

	// FindAllForTenant finds all employees for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter EmployeeFilter) ([]Employee, error)

	// FindReports finds the employees reporting to a manager
	FindReports(ctx context.Context, tenantID, managerID uuid.UUID) ([]Employee, error)

	// Save creates or updates an employee
	Save(ctx context.Context, employee *Employee) error

	// Delete soft deletes an employee
	Delete(ctx context.Context, id uuid.UUID) error

	// CountForTenant counts employees for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter EmployeeFilter) (int64, error)

	// ExistsByEmail checks if an email is already registered within a tenant
	ExistsByEmail(ctx context.Context, tenantID uuid.UUID, email string) (bool, error)
}

// CompanyRepository defines the interface for company persistence
type CompanyRepository interface {
	// FindByID finds a company by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)

	// FindAll lists companies
	FindAll(ctx context.Context, filter shared.Filter) ([]Company, error)

	// Save creates or updates a company
	Save(ctx context.Context, company *Company) error

	// Delete soft deletes a company
	Delete(ctx context.Context, id uuid.UUID) error
}
