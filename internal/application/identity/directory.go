package identity

import (
	"context"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// Directory adapts the employee repository to the approval engine's
// manager lookup. The engine only needs the reporting line, not the
// whole employee aggregate.
type Directory struct {
	employeeRepo identity.EmployeeRepository
}

// NewDirectory creates the employee directory adapter
func NewDirectory(employeeRepo identity.EmployeeRepository) *Directory {
	return &Directory{employeeRepo: employeeRepo}
}

// ManagerOf resolves an employee's direct manager. A missing employee,
// an unset reporting line or a deactivated manager all resolve to nil.
func (d *Directory) ManagerOf(ctx context.Context, tenantID, employeeID uuid.UUID) (*expense.Manager, error) {
	emp, err := d.employeeRepo.FindByIDForTenant(ctx, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil || emp.ManagerID == nil {
		return nil, nil
	}

	manager, err := d.employeeRepo.FindByIDForTenant(ctx, tenantID, *emp.ManagerID)
	if err != nil {
		return nil, err
	}
	if manager == nil || !manager.IsActive {
		return nil, nil
	}

	return &expense.Manager{ID: manager.ID, IsManagerApprover: manager.IsManagerApprover}, nil
}
