package expense

import (
	"context"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/identity"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock repositories and ports
// =============================================================================

// MockExpenseRepository is a mock for expense.ExpenseRecordRepository
type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.ExpenseRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.ExpenseRecord), args.Error(1)
}

func (m *MockExpenseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*expense.ExpenseRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.ExpenseRecord), args.Error(1)
}

func (m *MockExpenseRepository) FindByExpenseNumber(ctx context.Context, tenantID uuid.UUID, number string) (*expense.ExpenseRecord, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.ExpenseRecord), args.Error(1)
}

func (m *MockExpenseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter expense.ExpenseFilter) ([]expense.ExpenseRecord, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]expense.ExpenseRecord), args.Error(1)
}

func (m *MockExpenseRepository) FindByEmployee(ctx context.Context, tenantID, employeeID uuid.UUID, filter expense.ExpenseFilter) ([]expense.ExpenseRecord, error) {
	args := m.Called(ctx, tenantID, employeeID, filter)
	return args.Get(0).([]expense.ExpenseRecord), args.Error(1)
}

func (m *MockExpenseRepository) Save(ctx context.Context, e *expense.ExpenseRecord) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepository) SaveWithLock(ctx context.Context, e *expense.ExpenseRecord) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExpenseRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter expense.ExpenseFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpenseRepository) ExistsByExpenseNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	args := m.Called(ctx, tenantID, number)
	return args.Bool(0), args.Error(1)
}

func (m *MockExpenseRepository) GenerateExpenseNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

// MockRequestRepository is a mock for expense.ApprovalRequestRepository
type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.ApprovalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.ApprovalRequest), args.Error(1)
}

func (m *MockRequestRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*expense.ApprovalRequest, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.ApprovalRequest), args.Error(1)
}

func (m *MockRequestRepository) FindByExpense(ctx context.Context, tenantID, expenseID uuid.UUID) ([]expense.ApprovalRequest, error) {
	args := m.Called(ctx, tenantID, expenseID)
	return args.Get(0).([]expense.ApprovalRequest), args.Error(1)
}

func (m *MockRequestRepository) FindPendingByApprover(ctx context.Context, tenantID, approverID uuid.UUID, filter shared.Filter) ([]expense.ApprovalRequest, error) {
	args := m.Called(ctx, tenantID, approverID, filter)
	return args.Get(0).([]expense.ApprovalRequest), args.Error(1)
}

func (m *MockRequestRepository) CountByExpense(ctx context.Context, tenantID, expenseID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, expenseID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRequestRepository) CountPendingByApprover(ctx context.Context, tenantID, approverID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, approverID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRequestRepository) ExistsByExpense(ctx context.Context, tenantID, expenseID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, expenseID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestRepository) Save(ctx context.Context, r *expense.ApprovalRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRequestRepository) SaveWithLock(ctx context.Context, r *expense.ApprovalRequest) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRequestRepository) CreateBatch(ctx context.Context, rs []*expense.ApprovalRequest) error {
	args := m.Called(ctx, rs)
	return args.Error(0)
}

// MockRuleRepository is a mock for expense.ApprovalRuleRepository
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.ApprovalRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.ApprovalRule), args.Error(1)
}

func (m *MockRuleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*expense.ApprovalRule, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.ApprovalRule), args.Error(1)
}

func (m *MockRuleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter expense.RuleFilter) ([]expense.ApprovalRule, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]expense.ApprovalRule), args.Error(1)
}

func (m *MockRuleRepository) FindActiveByCategory(ctx context.Context, tenantID uuid.UUID, category string) ([]expense.ApprovalRule, error) {
	args := m.Called(ctx, tenantID, category)
	return args.Get(0).([]expense.ApprovalRule), args.Error(1)
}

func (m *MockRuleRepository) Save(ctx context.Context, r *expense.ApprovalRule) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRuleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter expense.RuleFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockCompanyRepository is a mock for identity.CompanyRepository
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Company, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.Company), args.Error(1)
}

func (m *MockCompanyRepository) Save(ctx context.Context, c *identity.Company) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockConverter is a mock for CurrencyConverter
type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) Convert(ctx context.Context, amount valueobject.Money, to valueobject.Currency) (valueobject.Money, error) {
	args := m.Called(ctx, amount, to)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

// MockDirectory is a mock for expense.EmployeeDirectory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) ManagerOf(ctx context.Context, tenantID, employeeID uuid.UUID) (*expense.Manager, error) {
	args := m.Called(ctx, tenantID, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Manager), args.Error(1)
}

// passthroughLocker runs the critical section inline
type passthroughLocker struct{}

func (passthroughLocker) WithLock(ctx context.Context, expenseID uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
