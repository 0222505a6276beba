package expense

import (
	"context"
	"testing"
	"time"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type approvalServiceFixture struct {
	service     *ApprovalService
	expenseRepo *MockExpenseRepository
	requestRepo *MockRequestRepository
	ruleRepo    *MockRuleRepository
}

func newApprovalServiceFixture() *approvalServiceFixture {
	expenseRepo := new(MockExpenseRepository)
	requestRepo := new(MockRequestRepository)
	ruleRepo := new(MockRuleRepository)
	directory := new(MockDirectory)

	engine := expense.NewApprovalEngine(
		expenseRepo, requestRepo, expense.NewRuleMatcher(ruleRepo), directory, passthroughLocker{},
	)

	return &approvalServiceFixture{
		service:     NewApprovalService(requestRepo, expenseRepo, engine, zap.NewNop()),
		expenseRepo: expenseRepo,
		requestRepo: requestRepo,
		ruleRepo:    ruleRepo,
	}
}

func pendingExpense(t *testing.T, tenantID uuid.UUID) *expense.ExpenseRecord {
	t.Helper()
	amount, _ := valueobject.NewMoneyFromFloat(250, valueobject.USD)
	record, err := expense.NewExpenseRecord(tenantID, uuid.New(), "EXP-77", "Travel",
		"Client visit", "", amount, amount, time.Now())
	require.NoError(t, err)
	return record
}

func TestDecide(t *testing.T) {
	ctx := context.Background()

	t.Run("rejection finalizes the expense", func(t *testing.T) {
		f := newApprovalServiceFixture()
		tenantID := uuid.New()
		approverID := uuid.New()
		record := pendingExpense(t, tenantID)

		request, err := expense.NewApprovalRequest(tenantID, record.ID, approverID, 0)
		require.NoError(t, err)

		f.requestRepo.On("FindByIDForTenant", mock.Anything, tenantID, request.ID).Return(request, nil)
		f.requestRepo.On("FindByID", mock.Anything, request.ID).Return(request, nil)
		f.expenseRepo.On("FindByID", mock.Anything, record.ID).Return(record, nil)
		f.requestRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)
		f.expenseRepo.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(e *expense.ExpenseRecord) bool {
			return e.Status == expense.ExpenseStatusRejected
		})).Return(nil)

		resp, err := f.service.Decide(ctx, tenantID, approverID, request.ID, DecideRequest{Action: "REJECT", Comments: "no receipt"})
		require.NoError(t, err)
		assert.Equal(t, "REJECTED", resp.Status)
		assert.Equal(t, "Expense rejected", resp.Message)
	})

	t.Run("deciding another approver's request reads as not found", func(t *testing.T) {
		f := newApprovalServiceFixture()
		tenantID := uuid.New()
		record := pendingExpense(t, tenantID)
		request, err := expense.NewApprovalRequest(tenantID, record.ID, uuid.New(), 0)
		require.NoError(t, err)

		f.requestRepo.On("FindByIDForTenant", mock.Anything, tenantID, request.ID).Return(request, nil)

		_, err = f.service.Decide(ctx, tenantID, uuid.New(), request.ID, DecideRequest{Action: "APPROVE"})
		assert.ErrorIs(t, err, expense.ErrRequestNotFound)
	})

	t.Run("unknown request fails", func(t *testing.T) {
		f := newApprovalServiceFixture()
		tenantID := uuid.New()
		id := uuid.New()
		f.requestRepo.On("FindByIDForTenant", mock.Anything, tenantID, id).Return(nil, nil)

		_, err := f.service.Decide(ctx, tenantID, uuid.New(), id, DecideRequest{Action: "APPROVE"})
		assert.ErrorIs(t, err, expense.ErrRequestNotFound)
	})
}

func TestListPending(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the approver's queue", func(t *testing.T) {
		f := newApprovalServiceFixture()
		tenantID := uuid.New()
		approverID := uuid.New()

		request, err := expense.NewApprovalRequest(tenantID, uuid.New(), approverID, 0)
		require.NoError(t, err)

		f.requestRepo.On("FindPendingByApprover", mock.Anything, tenantID, approverID, mock.Anything).
			Return([]expense.ApprovalRequest{*request}, nil)
		f.requestRepo.On("CountPendingByApprover", mock.Anything, tenantID, approverID).Return(int64(1), nil)

		resp, err := f.service.ListPending(ctx, tenantID, approverID, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "PENDING", resp.Items[0].Status)
		assert.Equal(t, int64(1), resp.Total)
	})
}

func TestListByExpense(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the approval trail", func(t *testing.T) {
		f := newApprovalServiceFixture()
		tenantID := uuid.New()
		record := pendingExpense(t, tenantID)

		first, err := expense.NewApprovalRequest(tenantID, record.ID, uuid.New(), 0)
		require.NoError(t, err)
		second, err := expense.NewApprovalRequest(tenantID, record.ID, uuid.New(), 1)
		require.NoError(t, err)

		f.expenseRepo.On("FindByIDForTenant", mock.Anything, tenantID, record.ID).Return(record, nil)
		f.requestRepo.On("FindByExpense", mock.Anything, tenantID, record.ID).
			Return([]expense.ApprovalRequest{*first, *second}, nil)

		items, err := f.service.ListByExpense(ctx, tenantID, record.ID)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, 0, items[0].StepNumber)
		assert.Equal(t, 1, items[1].StepNumber)
	})

	t.Run("fails for an unknown expense", func(t *testing.T) {
		f := newApprovalServiceFixture()
		tenantID := uuid.New()
		id := uuid.New()
		f.expenseRepo.On("FindByIDForTenant", mock.Anything, tenantID, id).Return(nil, nil)

		_, err := f.service.ListByExpense(ctx, tenantID, id)
		assert.ErrorIs(t, err, expense.ErrExpenseNotFound)
	})
}
