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

// GormApprovalRuleRepository implements expense.ApprovalRuleRepository using GORM
type GormApprovalRuleRepository struct {
	db *gorm.DB
}

// NewGormApprovalRuleRepository creates a new GormApprovalRuleRepository
func NewGormApprovalRuleRepository(db *gorm.DB) *GormApprovalRuleRepository {
	return &GormApprovalRuleRepository{db: db}
}

// FindByID finds an approval rule by its ID
func (r *GormApprovalRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.ApprovalRule, error) {
	var model models.ApprovalRuleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds an approval rule by ID for a specific tenant
func (r *GormApprovalRuleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*expense.ApprovalRule, error) {
	var model models.ApprovalRuleModel
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

// FindAllForTenant finds all approval rules for a tenant with filtering
func (r *GormApprovalRuleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter expense.RuleFilter) ([]expense.ApprovalRule, error) {
	var ruleModels []models.ApprovalRuleModel
	query := r.db.WithContext(ctx).Model(&models.ApprovalRuleModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	sortField := ValidateSortField(filter.OrderBy, ApprovalRuleSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		offset := (filter.Page - 1) * filter.PageSize
		if offset > 0 {
			query = query.Offset(offset)
		}
	}

	if err := query.Find(&ruleModels).Error; err != nil {
		return nil, err
	}
	rules := make([]expense.ApprovalRule, len(ruleModels))
	for i, model := range ruleModels {
		rules[i] = *model.ToDomain()
	}
	return rules, nil
}

// FindActiveByCategory finds active rules whose category is an exact match or
// the wildcard category
func (r *GormApprovalRuleRepository) FindActiveByCategory(ctx context.Context, tenantID uuid.UUID, category string) ([]expense.ApprovalRule, error) {
	var ruleModels []models.ApprovalRuleModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = ? AND category IN ?", tenantID, true, []string{category, expense.CategoryAll}).
		Order("created_at ASC").
		Find(&ruleModels).Error; err != nil {
		return nil, err
	}
	rules := make([]expense.ApprovalRule, len(ruleModels))
	for i, model := range ruleModels {
		rules[i] = *model.ToDomain()
	}
	return rules, nil
}

// Save creates or updates an approval rule
func (r *GormApprovalRuleRepository) Save(ctx context.Context, rule *expense.ApprovalRule) error {
	model := models.ApprovalRuleModelFromDomain(rule)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete soft deletes an approval rule
func (r *GormApprovalRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ApprovalRuleModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts approval rules for a tenant with filtering
func (r *GormApprovalRuleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter expense.RuleFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ApprovalRuleModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilterWithoutPagination applies filter conditions without sorting or pagination
func (r *GormApprovalRuleRepository) applyFilterWithoutPagination(query *gorm.DB, filter expense.RuleFilter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}
