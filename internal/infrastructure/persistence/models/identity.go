package models

import (
	"github.com/expenseflow/backend/internal/domain/identity"
	"github.com/expenseflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// EmployeeModel is the persistence model for the Employee aggregate root.
type EmployeeModel struct {
	TenantAggregateModel
	Name              string                `gorm:"type:varchar(200);not null"`
	Email             string                `gorm:"type:varchar(320);not null;uniqueIndex:idx_employee_tenant_email,priority:2"`
	Role              identity.EmployeeRole `gorm:"type:varchar(20);not null;index"`
	ManagerID         *uuid.UUID            `gorm:"type:uuid;index"`
	IsManagerApprover bool                  `gorm:"not null;default:false"`
	IsActive          bool                  `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (EmployeeModel) TableName() string {
	return "employees"
}

// ToDomain converts the persistence model to a domain Employee aggregate.
func (m *EmployeeModel) ToDomain() *identity.Employee {
	return &identity.Employee{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Name:                m.Name,
		Email:               m.Email,
		Role:                m.Role,
		ManagerID:           m.ManagerID,
		IsManagerApprover:   m.IsManagerApprover,
		IsActive:            m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Employee aggregate.
func (m *EmployeeModel) FromDomain(e *identity.Employee) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.Name = e.Name
	m.Email = e.Email
	m.Role = e.Role
	m.ManagerID = e.ManagerID
	m.IsManagerApprover = e.IsManagerApprover
	m.IsActive = e.IsActive
}

// EmployeeModelFromDomain creates a new persistence model from domain.
func EmployeeModelFromDomain(e *identity.Employee) *EmployeeModel {
	m := &EmployeeModel{}
	m.FromDomain(e)
	return m
}

// CompanyModel is the persistence model for the Company aggregate root.
// Companies are the tenant roots, so the model is not tenant-scoped itself.
type CompanyModel struct {
	AggregateModel
	Name            string `gorm:"type:varchar(200);not null"`
	Country         string `gorm:"type:varchar(100)"`
	DefaultCurrency string `gorm:"type:varchar(3);not null"`
	IsActive        bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the persistence model to a domain Company aggregate.
func (m *CompanyModel) ToDomain() *identity.Company {
	return &identity.Company{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Country:           m.Country,
		DefaultCurrency:   valueobject.Currency(m.DefaultCurrency),
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Company aggregate.
func (m *CompanyModel) FromDomain(c *identity.Company) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Country = c.Country
	m.DefaultCurrency = string(c.DefaultCurrency)
	m.IsActive = c.IsActive
}

// CompanyModelFromDomain creates a new persistence model from domain.
func CompanyModelFromDomain(c *identity.Company) *CompanyModel {
	m := &CompanyModel{}
	m.FromDomain(c)
	return m
}
