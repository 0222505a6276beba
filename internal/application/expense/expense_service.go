package expense

import (
	"context"
	"time"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/identity"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CurrencyConverter normalizes a monetary amount into another currency.
// Implemented by infrastructure/currency.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount valueobject.Money, to valueobject.Currency) (valueobject.Money, error)
}

// ExpenseService provides application-level expense submission and queries
type ExpenseService struct {
	expenseRepo expense.ExpenseRecordRepository
	companyRepo identity.CompanyRepository
	engine      *expense.ApprovalEngine
	converter   CurrencyConverter
	logger      *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo expense.ExpenseRecordRepository,
	companyRepo identity.CompanyRepository,
	engine *expense.ApprovalEngine,
	converter CurrencyConverter,
	logger *zap.Logger,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		companyRepo: companyRepo,
		engine:      engine,
		converter:   converter,
		logger:      logger,
	}
}

// SubmitExpenseRequest represents a request to submit a new expense
type SubmitExpenseRequest struct {
	Category     string          `json:"category" binding:"required"`
	Description  string          `json:"description" binding:"required"`
	MerchantName string          `json:"merchant_name"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Currency     string          `json:"currency" binding:"required"`
	ExpenseDate  time.Time       `json:"expense_date" binding:"required"`
	ReceiptURL   string          `json:"receipt_url"`
}

// ExpenseResponse represents an expense record in API responses
type ExpenseResponse struct {
	ID                  uuid.UUID       `json:"id"`
	ExpenseNumber       string          `json:"expense_number"`
	EmployeeID          uuid.UUID       `json:"employee_id"`
	Category            string          `json:"category"`
	Description         string          `json:"description"`
	MerchantName        string          `json:"merchant_name,omitempty"`
	Amount              decimal.Decimal `json:"amount"`
	Currency            string          `json:"currency"`
	ConvertedAmount     decimal.Decimal `json:"converted_amount"`
	Status              string          `json:"status"`
	CurrentApprovalStep int             `json:"current_approval_step"`
	ExpenseDate         time.Time       `json:"expense_date"`
	ReceiptURL          string          `json:"receipt_url,omitempty"`
	DecidedAt           *time.Time      `json:"decided_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
}

// ExpenseListFilter defines filtering options for expense list queries
type ExpenseListFilter struct {
	Category string     `form:"category"`
	Status   string     `form:"status"`
	FromDate *time.Time `form:"from_date"`
	ToDate   *time.Time `form:"to_date"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

// SubmitExpense records a new expense, normalizes its amount into the
// company default currency and starts the approval flow. The expense may
// come back already finalized when no rule governs it.
func (s *ExpenseService) SubmitExpense(ctx context.Context, tenantID, employeeID uuid.UUID, req SubmitExpenseRequest) (*ExpenseResponse, error) {
	company, err := s.companyRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Company not found")
	}

	amount, err := valueobject.NewMoney(req.Amount, valueobject.Currency(req.Currency))
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}

	converted, err := s.converter.Convert(ctx, amount, company.DefaultCurrency)
	if err != nil {
		return nil, err
	}

	expenseNumber, err := s.expenseRepo.GenerateExpenseNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	record, err := expense.NewExpenseRecord(
		tenantID,
		employeeID,
		expenseNumber,
		req.Category,
		req.Description,
		req.MerchantName,
		amount,
		converted,
		req.ExpenseDate,
	)
	if err != nil {
		return nil, err
	}
	if req.ReceiptURL != "" {
		record.SetReceiptURL(req.ReceiptURL)
	}

	if err := s.expenseRepo.Save(ctx, record); err != nil {
		return nil, err
	}

	if err := s.engine.InitiateFlow(ctx, record.ID, employeeID); err != nil {
		return nil, err
	}

	// Re-read: initiation may have auto-approved the expense
	record, err = s.expenseRepo.FindByIDForTenant(ctx, tenantID, record.ID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, expense.ErrExpenseNotFound
	}

	s.logger.Info("expense submitted",
		zap.String("expense_id", record.ID.String()),
		zap.String("expense_number", record.ExpenseNumber),
		zap.String("status", record.Status.String()),
	)

	return toExpenseResponse(record), nil
}

// GetExpense gets an expense by ID
func (s *ExpenseService) GetExpense(ctx context.Context, tenantID, id uuid.UUID) (*ExpenseResponse, error) {
	record, err := s.expenseRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, expense.ErrExpenseNotFound
	}
	return toExpenseResponse(record), nil
}

// ListExpenses lists a tenant's expenses with filtering and pagination
func (s *ExpenseService) ListExpenses(ctx context.Context, tenantID uuid.UUID, filter ExpenseListFilter) (*shared.Paginated[ExpenseResponse], error) {
	domainFilter := toDomainFilter(filter)

	records, err := s.expenseRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.expenseRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	return paginate(records, total, domainFilter.Filter), nil
}

// ListEmployeeExpenses lists the expenses one employee submitted
func (s *ExpenseService) ListEmployeeExpenses(ctx context.Context, tenantID, employeeID uuid.UUID, filter ExpenseListFilter) (*shared.Paginated[ExpenseResponse], error) {
	domainFilter := toDomainFilter(filter)
	domainFilter.EmployeeID = &employeeID

	records, err := s.expenseRepo.FindByEmployee(ctx, tenantID, employeeID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.expenseRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	return paginate(records, total, domainFilter.Filter), nil
}

func toDomainFilter(filter ExpenseListFilter) expense.ExpenseFilter {
	out := expense.ExpenseFilter{
		Filter: shared.Filter{Page: filter.Page, PageSize: filter.PageSize},
	}
	if out.Page < 1 {
		out.Page = 1
	}
	if out.PageSize < 1 || out.PageSize > 100 {
		out.PageSize = 20
	}
	if filter.Category != "" {
		out.Category = &filter.Category
	}
	if filter.Status != "" {
		status := expense.ExpenseStatus(filter.Status)
		out.Status = &status
	}
	out.FromDate = filter.FromDate
	out.ToDate = filter.ToDate
	return out
}

func paginate(records []expense.ExpenseRecord, total int64, filter shared.Filter) *shared.Paginated[ExpenseResponse] {
	items := make([]ExpenseResponse, 0, len(records))
	for i := range records {
		items = append(items, *toExpenseResponse(&records[i]))
	}
	totalPages := int(total) / filter.Limit()
	if int(total)%filter.Limit() > 0 {
		totalPages++
	}
	return &shared.Paginated[ExpenseResponse]{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}
}

func toExpenseResponse(e *expense.ExpenseRecord) *ExpenseResponse {
	return &ExpenseResponse{
		ID:                  e.ID,
		ExpenseNumber:       e.ExpenseNumber,
		EmployeeID:          e.EmployeeID,
		Category:            e.Category,
		Description:         e.Description,
		MerchantName:        e.MerchantName,
		Amount:              e.Amount,
		Currency:            e.OriginalCurrency.String(),
		ConvertedAmount:     e.ConvertedAmount,
		Status:              e.Status.String(),
		CurrentApprovalStep: e.CurrentApprovalStep,
		ExpenseDate:         e.ExpenseDate,
		ReceiptURL:          e.ReceiptURL,
		DecidedAt:           e.DecidedAt,
		CreatedAt:           e.CreatedAt,
	}
}
