package expense

import (
	"context"
	"time"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApprovalService provides application-level decision processing and
// approval queue queries
type ApprovalService struct {
	requestRepo expense.ApprovalRequestRepository
	expenseRepo expense.ExpenseRecordRepository
	engine      *expense.ApprovalEngine
	logger      *zap.Logger
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(
	requestRepo expense.ApprovalRequestRepository,
	expenseRepo expense.ExpenseRecordRepository,
	engine *expense.ApprovalEngine,
	logger *zap.Logger,
) *ApprovalService {
	return &ApprovalService{
		requestRepo: requestRepo,
		expenseRepo: expenseRepo,
		engine:      engine,
		logger:      logger,
	}
}

// DecideRequest represents an approver's verdict on a pending request
type DecideRequest struct {
	Action   string `json:"action" binding:"required,oneof=APPROVE REJECT"`
	Comments string `json:"comments"`
}

// DecisionResponse reports the expense state after a decision
type DecisionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ApprovalRequestResponse represents an approval request in API responses
type ApprovalRequestResponse struct {
	ID         uuid.UUID  `json:"id"`
	ExpenseID  uuid.UUID  `json:"expense_id"`
	ApproverID uuid.UUID  `json:"approver_id"`
	StepNumber int        `json:"step_number"`
	Status     string     `json:"status"`
	Comments   string     `json:"comments,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Decide applies an approver's verdict to a request. The approver must own
// the request; deciding someone else's request fails with NOT_FOUND rather
// than leaking its existence.
func (s *ApprovalService) Decide(ctx context.Context, tenantID, approverID, requestID uuid.UUID, req DecideRequest) (*DecisionResponse, error) {
	request, err := s.requestRepo.FindByIDForTenant(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil || request.ApproverID != approverID {
		return nil, expense.ErrRequestNotFound
	}

	result, err := s.engine.ProcessDecision(ctx, requestID, expense.DecisionAction(req.Action), req.Comments)
	if err != nil {
		return nil, err
	}

	s.logger.Info("approval decision processed",
		zap.String("request_id", requestID.String()),
		zap.String("approver_id", approverID.String()),
		zap.String("action", req.Action),
		zap.String("expense_status", result.Status.String()),
	)

	return &DecisionResponse{Status: result.Status.String(), Message: result.Message}, nil
}

// ListPending lists the requests awaiting a given approver's decision
func (s *ApprovalService) ListPending(ctx context.Context, tenantID, approverID uuid.UUID, filter shared.Filter) (*shared.Paginated[ApprovalRequestResponse], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	requests, err := s.requestRepo.FindPendingByApprover(ctx, tenantID, approverID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.requestRepo.CountPendingByApprover(ctx, tenantID, approverID)
	if err != nil {
		return nil, err
	}

	items := make([]ApprovalRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, *toApprovalRequestResponse(&requests[i]))
	}

	totalPages := int(total) / filter.Limit()
	if int(total)%filter.Limit() > 0 {
		totalPages++
	}
	return &shared.Paginated[ApprovalRequestResponse]{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// ListByExpense returns the full approval trail of one expense in step order
func (s *ApprovalService) ListByExpense(ctx context.Context, tenantID, expenseID uuid.UUID) ([]ApprovalRequestResponse, error) {
	record, err := s.expenseRepo.FindByIDForTenant(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, expense.ErrExpenseNotFound
	}

	requests, err := s.requestRepo.FindByExpense(ctx, tenantID, expenseID)
	if err != nil {
		return nil, err
	}

	items := make([]ApprovalRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, *toApprovalRequestResponse(&requests[i]))
	}
	return items, nil
}

func toApprovalRequestResponse(r *expense.ApprovalRequest) *ApprovalRequestResponse {
	return &ApprovalRequestResponse{
		ID:         r.ID,
		ExpenseID:  r.ExpenseID,
		ApproverID: r.ApproverID,
		StepNumber: r.StepNumber,
		Status:     r.Status.String(),
		Comments:   r.Comments,
		DecidedAt:  r.DecidedAt,
		CreatedAt:  r.CreatedAt,
	}
}
