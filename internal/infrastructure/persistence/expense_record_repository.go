package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/expenseflow/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExpenseRecordRepository implements expense.ExpenseRecordRepository using GORM
type GormExpenseRecordRepository struct {
	db *gorm.DB
}

// NewGormExpenseRecordRepository creates a new GormExpenseRecordRepository
func NewGormExpenseRecordRepository(db *gorm.DB) *GormExpenseRecordRepository {
	return &GormExpenseRecordRepository{db: db}
}

// FindByID finds an expense record by its ID
func (r *GormExpenseRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.ExpenseRecord, error) {
	var model models.ExpenseRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds an expense record by ID for a specific tenant
func (r *GormExpenseRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*expense.ExpenseRecord, error) {
	var model models.ExpenseRecordModel
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

// FindByExpenseNumber finds by expense number for a tenant
func (r *GormExpenseRecordRepository) FindByExpenseNumber(ctx context.Context, tenantID uuid.UUID, expenseNumber string) (*expense.ExpenseRecord, error) {
	var model models.ExpenseRecordModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND expense_number = ?", tenantID, expenseNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all expense records for a tenant with filtering
func (r *GormExpenseRecordRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter expense.ExpenseFilter) ([]expense.ExpenseRecord, error) {
	var expenseModels []models.ExpenseRecordModel
	query := r.db.WithContext(ctx).Model(&models.ExpenseRecordModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	expenses := make([]expense.ExpenseRecord, len(expenseModels))
	for i, model := range expenseModels {
		expenses[i] = *model.ToDomain()
	}
	return expenses, nil
}

// FindByEmployee finds expense records submitted by an employee
func (r *GormExpenseRecordRepository) FindByEmployee(ctx context.Context, tenantID, employeeID uuid.UUID, filter expense.ExpenseFilter) ([]expense.ExpenseRecord, error) {
	var expenseModels []models.ExpenseRecordModel
	query := r.db.WithContext(ctx).Model(&models.ExpenseRecordModel{}).
		Where("tenant_id = ? AND employee_id = ?", tenantID, employeeID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	expenses := make([]expense.ExpenseRecord, len(expenseModels))
	for i, model := range expenseModels {
		expenses[i] = *model.ToDomain()
	}
	return expenses, nil
}

// Save creates or updates an expense record
func (r *GormExpenseRecordRepository) Save(ctx context.Context, exp *expense.ExpenseRecord) error {
	model := models.ExpenseRecordModelFromDomain(exp)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves the expense record with optimistic locking
func (r *GormExpenseRecordRepository) SaveWithLock(ctx context.Context, exp *expense.ExpenseRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.ExpenseRecordModel
		if err := tx.Select("version").Where("id = ?", exp.GetID()).First(&current).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// New record, just save
				model := models.ExpenseRecordModelFromDomain(exp)
				return tx.Create(model).Error
			}
			return err
		}

		// Domain model already incremented the version
		expectedVersion := exp.GetVersion() - 1
		if current.Version != expectedVersion {
			return shared.ErrConcurrencyConflict
		}

		model := models.ExpenseRecordModelFromDomain(exp)
		result := tx.Model(model).
			Where("id = ? AND version = ?", exp.GetID(), expectedVersion).
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

// Delete soft deletes an expense record
func (r *GormExpenseRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ExpenseRecordModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts expense records for a tenant with filtering
func (r *GormExpenseRecordRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter expense.ExpenseFilter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ExpenseRecordModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByExpenseNumber checks if an expense number exists for a tenant
func (r *GormExpenseRecordRepository) ExistsByExpenseNumber(ctx context.Context, tenantID uuid.UUID, expenseNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ExpenseRecordModel{}).
		Where("tenant_id = ? AND expense_number = ?", tenantID, expenseNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateExpenseNumber generates a new expense number for the tenant
func (r *GormExpenseRecordRepository) GenerateExpenseNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	var count int64
	yearMonth := time.Now().Format("200601")

	// Count expenses this month
	if err := r.db.WithContext(ctx).Model(&models.ExpenseRecordModel{}).
		Where("tenant_id = ? AND expense_number LIKE ?", tenantID, fmt.Sprintf("EXP-%s-%%", yearMonth)).
		Count(&count).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("EXP-%s-%05d", yearMonth, count+1), nil
}

// applyFilter applies filter conditions, sorting and pagination to a query
func (r *GormExpenseRecordRepository) applyFilter(query *gorm.DB, filter expense.ExpenseFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Whitelist sort fields to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, ExpenseRecordSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		offset := (filter.Page - 1) * filter.PageSize
		if offset > 0 {
			query = query.Offset(offset)
		}
	}

	return query
}

// applyFilterWithoutPagination applies filter conditions without sorting or pagination
func (r *GormExpenseRecordRepository) applyFilterWithoutPagination(query *gorm.DB, filter expense.ExpenseFilter) *gorm.DB {
	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("(expense_number ILIKE ? OR description ILIKE ? OR merchant_name ILIKE ?)", searchPattern, searchPattern, searchPattern)
	}

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if filter.FromDate != nil {
		query = query.Where("expense_date >= ?", filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("expense_date <= ?", filter.ToDate)
	}

	// Amount bounds filter against the normalized amount, same as rule matching
	if filter.MinAmount != nil {
		query = query.Where("converted_amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("converted_amount <= ?", *filter.MaxAmount)
	}

	return query
}
