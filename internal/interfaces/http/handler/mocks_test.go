package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/expenseflow/backend/internal/domain/expense"
)

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
