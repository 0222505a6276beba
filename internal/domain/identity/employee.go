package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EmployeeRole represents the role of an employee within a company
type EmployeeRole string

const (
	RoleAdmin    EmployeeRole = "ADMIN"    // Company administrator, manages rules and employees
	RoleManager  EmployeeRole = "MANAGER"  // Approves expenses of direct reports
	RoleEmployee EmployeeRole = "EMPLOYEE" // Submits expenses
)

// IsValid checks if the role is a valid EmployeeRole
func (r EmployeeRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// String returns the string representation of EmployeeRole
func (r EmployeeRole) String() string {
	return string(r)
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Employee represents a person in a company's expense flow.
// ManagerID points at the direct manager; IsManagerApprover marks whether
// that person's manager approval counts as the first approval step.
type Employee struct {
	shared.TenantAggregateRoot
	Name              string       `json:"name"`
	Email             string       `json:"email"`
	Role              EmployeeRole `json:"role"`
	ManagerID         *uuid.UUID   `json:"manager_id"`
	IsManagerApprover bool         `json:"is_manager_approver"`
	IsActive          bool         `json:"is_active"`
}

// NewEmployee creates an active employee
func NewEmployee(tenantID uuid.UUID, name, email string, role EmployeeRole) (*Employee, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Employee name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Employee name cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be ADMIN, MANAGER or EMPLOYEE")
	}

	emp := &Employee{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Email:               email,
		Role:                role,
		IsActive:            true,
	}

	emp.AddDomainEvent(NewEmployeeCreatedEvent(emp))

	return emp, nil
}

// AssignManager sets the employee's direct manager
func (e *Employee) AssignManager(managerID uuid.UUID) error {
	if managerID == uuid.Nil {
		return shared.NewDomainError("INVALID_MANAGER", "Manager ID cannot be empty")
	}
	if managerID == e.ID {
		return shared.NewDomainError("INVALID_MANAGER", "Employee cannot be their own manager")
	}

	e.ManagerID = &managerID
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// ClearManager removes the reporting line
func (e *Employee) ClearManager() {
	e.ManagerID = nil
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
}

// SetManagerApprover toggles whether this person's manager approval counts
// as an approval step for their reports
func (e *Employee) SetManagerApprover(enabled bool) {
	e.IsManagerApprover = enabled
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
}

// ChangeRole updates the employee's role
func (e *Employee) ChangeRole(role EmployeeRole) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be ADMIN, MANAGER or EMPLOYEE")
	}

	e.Role = role
	e.UpdatedAt = time.Now()
	e.IncrementVersion()

	return nil
}

// Deactivate removes the employee from active flows without deleting history
func (e *Employee) Deactivate() {
	e.IsActive = false
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
}

// Activate restores a deactivated employee
func (e *Employee) Activate() {
	e.IsActive = true
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
}

// IsManager returns true for managers and admins
func (e *Employee) IsManager() bool {
	return e.Role == RoleManager || e.Role == RoleAdmin
}
