package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormApprovalRequestRepository implements expense.ApprovalRequestRepository using GORM
type GormApprovalRequestRepository struct {
	db *gorm.DB
}

// NewGormApprovalRequestRepository creates a new GormApprovalRequestRepository
func NewGormApprovalRequestRepository(db *gorm.DB) *GormApprovalRequestRepository {
	return &GormApprovalRequestRepository{db: db}
}

// FindByID finds an approval request by its ID
func (r *GormApprovalRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.ApprovalRequest, error) {
	var model models.ApprovalRequestModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds an approval request by ID for a specific tenant
func (r *GormApprovalRequestRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*expense.ApprovalRequest, error) {
	var model models.ApprovalRequestModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExpense finds all requests for an expense ordered by step number.
// Ties on step number break on creation time so the ledger reads in
// submission order.
func (r *GormApprovalRequestRepository) FindByExpense(ctx context.Context, tenantID, expenseID uuid.UUID) ([]expense.ApprovalRequest, error) {
	var requestModels []models.ApprovalRequestModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND expense_id = ?", tenantID, expenseID).
		Order("step_number ASC, created_at ASC").
		Find(&requestModels).Error; err != nil {
		return nil, err
	}
	requests := make([]expense.ApprovalRequest, len(requestModels))
	for i, model := range requestModels {
		requests[i] = *model.ToDomain()
	}
	return requests, nil
}

// FindPendingByApprover finds pending requests assigned to an approver
func (r *GormApprovalRequestRepository) FindPendingByApprover(ctx context.Context, tenantID, approverID uuid.UUID, filter shared.Filter) ([]expense.ApprovalRequest, error) {
	var requestModels []models.ApprovalRequestModel
	query := r.db.WithContext(ctx).Model(&models.ApprovalRequestModel{}).
		Where("tenant_id = ? AND approver_id = ? AND status = ?", tenantID, approverID, expense.ApprovalStatusPending)

	sortField := ValidateSortField(filter.OrderBy, ApprovalRequestSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		offset := (filter.Page - 1) * filter.PageSize
		if offset > 0 {
			query = query.Offset(offset)
		}
	}

	if err := query.Find(&requestModels).Error; err != nil {
		return nil, err
	}
	requests := make([]expense.ApprovalRequest, len(requestModels))
	for i, model := range requestModels {
		requests[i] = *model.ToDomain()
	}
	return requests, nil
}

// CountByExpense counts all requests created for an expense
func (r *GormApprovalRequestRepository) CountByExpense(ctx context.Context, tenantID, expenseID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ApprovalRequestModel{}).
		Where("tenant_id = ? AND expense_id = ?", tenantID, expenseID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountPendingByApprover counts pending requests assigned to an approver
func (r *GormApprovalRequestRepository) CountPendingByApprover(ctx context.Context, tenantID, approverID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ApprovalRequestModel{}).
		Where("tenant_id = ? AND approver_id = ? AND status = ?", tenantID, approverID, expense.ApprovalStatusPending).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByExpense checks if any request exists for an expense
func (r *GormApprovalRequestRepository) ExistsByExpense(ctx context.Context, tenantID, expenseID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ApprovalRequestModel{}).
		Where("tenant_id = ? AND expense_id = ?", tenantID, expenseID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an approval request
func (r *GormApprovalRequestRepository) Save(ctx context.Context, request *expense.ApprovalRequest) error {
	model := models.ApprovalRequestModelFromDomain(request)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves the approval request with optimistic locking
func (r *GormApprovalRequestRepository) SaveWithLock(ctx context.Context, request *expense.ApprovalRequest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.ApprovalRequestModel
		if err := tx.Select("version").Where("id = ?", request.GetID()).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				model := models.ApprovalRequestModelFromDomain(request)
				return tx.Create(model).Error
			}
			return err
		}

		expectedVersion := request.GetVersion() - 1
		if current.Version != expectedVersion {
			return shared.ErrConcurrencyConflict
		}

		model := models.ApprovalRequestModelFromDomain(request)
		result := tx.Model(model).
			Where("id = ? AND version = ?", request.GetID(), expectedVersion).
			Save(model)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
}

// CreateBatch inserts a set of requests atomically
func (r *GormApprovalRequestRepository) CreateBatch(ctx context.Context, requests []*expense.ApprovalRequest) error {
	if len(requests) == 0 {
		return nil
	}
	requestModels := make([]*models.ApprovalRequestModel, len(requests))
	for i, req := range requests {
		requestModels[i] = models.ApprovalRequestModelFromDomain(req)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&requestModels).Error
	})
}
