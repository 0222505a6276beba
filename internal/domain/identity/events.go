package identity

import (
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EmployeeCreatedEvent is raised when an employee joins a company
type EmployeeCreatedEvent struct {
	shared.BaseDomainEvent
	EmployeeID uuid.UUID    `json:"employee_id"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Role       EmployeeRole `json:"role"`
}

// EventType returns the event type name
func (e *EmployeeCreatedEvent) EventType() string {
	return "EmployeeCreated"
}

// NewEmployeeCreatedEvent creates a new EmployeeCreatedEvent
func NewEmployeeCreatedEvent(emp *Employee) *EmployeeCreatedEvent {
	return &EmployeeCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("EmployeeCreated", "Employee", emp.ID, emp.TenantID),
		EmployeeID:      emp.ID,
		Name:            emp.Name,
		Email:           emp.Email,
		Role:            emp.Role,
	}
}

// CompanyCreatedEvent is raised when a company signs up
type CompanyCreatedEvent struct {
	shared.BaseDomainEvent
	CompanyID uuid.UUID `json:"company_id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
}

// EventType returns the event type name
func (e *CompanyCreatedEvent) EventType() string {
	return "CompanyCreated"
}

// NewCompanyCreatedEvent creates a new CompanyCreatedEvent
func NewCompanyCreatedEvent(c *Company) *CompanyCreatedEvent {
	return &CompanyCreatedEvent{
		// A company is its own tenant
		BaseDomainEvent: shared.NewBaseDomainEvent("CompanyCreated", "Company", c.ID, c.ID),
		CompanyID:       c.ID,
		Name:            c.Name,
		Currency:        c.DefaultCurrency.String(),
	}
}
