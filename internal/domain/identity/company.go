package identity

import (
	"strings"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/domain/shared/valueobject"
)

// Company is the tenant root of the system. Each company has a default
// currency; every submitted expense is normalized into it before approval
// rules are matched.
type Company struct {
	shared.BaseAggregateRoot
	Name            string               `json:"name"`
	Country         string               `json:"country"`
	DefaultCurrency valueobject.Currency `json:"default_currency"`
	IsActive        bool                 `json:"is_active"`
}

// NewCompany creates an active company with the given default currency.
// An empty currency falls back to the system default.
func NewCompany(name, country string, currency valueobject.Currency) (*Company, error) {
	name = strings.TrimSpace(name)
	country = strings.TrimSpace(country)

	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Company name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Company name cannot exceed 200 characters")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	company := &Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Country:           country,
		DefaultCurrency:   currency,
		IsActive:          true,
	}

	company.AddDomainEvent(NewCompanyCreatedEvent(company))

	return company, nil
}

// Rename updates the company name
func (c *Company) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Company name cannot be empty")
	}

	c.Name = name
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetDefaultCurrency changes the currency expenses are normalized into.
// Existing expenses keep their converted amounts; only new submissions
// use the new currency.
func (c *Company) SetDefaultCurrency(currency valueobject.Currency) error {
	if currency == "" {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}

	c.DefaultCurrency = currency
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Deactivate suspends the company
func (c *Company) Deactivate() {
	c.IsActive = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
