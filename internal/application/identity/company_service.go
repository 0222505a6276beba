package identity

import (
	"context"
	"time"

	"github.com/expenseflow/backend/internal/domain/identity"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompanyService provides application-level company administration
type CompanyService struct {
	companyRepo identity.CompanyRepository
	logger      *zap.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo identity.CompanyRepository, logger *zap.Logger) *CompanyService {
	return &CompanyService{companyRepo: companyRepo, logger: logger}
}

// CreateCompanyRequest represents a request to register a company
type CreateCompanyRequest struct {
	Name     string `json:"name" binding:"required"`
	Country  string `json:"country"`
	Currency string `json:"currency"`
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Country         string    `json:"country"`
	DefaultCurrency string    `json:"default_currency"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateCompany registers a new company tenant
func (s *CompanyService) CreateCompany(ctx context.Context, req CreateCompanyRequest) (*CompanyResponse, error) {
	company, err := identity.NewCompany(req.Name, req.Country, valueobject.Currency(req.Currency))
	if err != nil {
		return nil, err
	}

	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, err
	}

	s.logger.Info("company created",
		zap.String("company_id", company.ID.String()),
		zap.String("currency", company.DefaultCurrency.String()),
	)

	return toCompanyResponse(company), nil
}

// GetCompany gets a company by ID
func (s *CompanyService) GetCompany(ctx context.Context, id uuid.UUID) (*CompanyResponse, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Company not found")
	}
	return toCompanyResponse(company), nil
}

func toCompanyResponse(c *identity.Company) *CompanyResponse {
	return &CompanyResponse{
		ID:              c.ID,
		Name:            c.Name,
		Country:         c.Country,
		DefaultCurrency: c.DefaultCurrency.String(),
		IsActive:        c.IsActive,
		CreatedAt:       c.CreatedAt,
	}
}
