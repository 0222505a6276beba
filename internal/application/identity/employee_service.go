package identity

import (
	"context"
	"time"

	"github.com/expenseflow/backend/internal/domain/identity"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EmployeeService provides application-level employee administration
type EmployeeService struct {
	employeeRepo identity.EmployeeRepository
	logger       *zap.Logger
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(employeeRepo identity.EmployeeRepository, logger *zap.Logger) *EmployeeService {
	return &EmployeeService{employeeRepo: employeeRepo, logger: logger}
}

// CreateEmployeeRequest represents a request to add an employee
type CreateEmployeeRequest struct {
	Name              string     `json:"name" binding:"required"`
	Email             string     `json:"email" binding:"required,email"`
	Role              string     `json:"role" binding:"required,oneof=ADMIN MANAGER EMPLOYEE"`
	ManagerID         *uuid.UUID `json:"manager_id"`
	IsManagerApprover bool       `json:"is_manager_approver"`
}

// UpdateEmployeeRequest represents a request to update an employee
type UpdateEmployeeRequest struct {
	Role              string     `json:"role" binding:"required,oneof=ADMIN MANAGER EMPLOYEE"`
	ManagerID         *uuid.UUID `json:"manager_id"`
	IsManagerApprover bool       `json:"is_manager_approver"`
}

// EmployeeResponse represents an employee in API responses
type EmployeeResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Role              string     `json:"role"`
	ManagerID         *uuid.UUID `json:"manager_id,omitempty"`
	IsManagerApprover bool       `json:"is_manager_approver"`
	IsActive          bool       `json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
}

// CreateEmployee adds an employee to a company
func (s *EmployeeService) CreateEmployee(ctx context.Context, tenantID uuid.UUID, req CreateEmployeeRequest) (*EmployeeResponse, error) {
	exists, err := s.employeeRepo.ExistsByEmail(ctx, tenantID, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An employee with this email already exists")
	}

	emp, err := identity.NewEmployee(tenantID, req.Name, req.Email, identity.EmployeeRole(req.Role))
	if err != nil {
		return nil, err
	}
	if req.ManagerID != nil {
		if err := s.assignManager(ctx, tenantID, emp, *req.ManagerID); err != nil {
			return nil, err
		}
	}
	emp.SetManagerApprover(req.IsManagerApprover)

	if err := s.employeeRepo.Save(ctx, emp); err != nil {
		return nil, err
	}

	s.logger.Info("employee created",
		zap.String("employee_id", emp.ID.String()),
		zap.String("role", emp.Role.String()),
	)

	return toEmployeeResponse(emp), nil
}

// GetEmployee gets an employee by ID
func (s *EmployeeService) GetEmployee(ctx context.Context, tenantID, id uuid.UUID) (*EmployeeResponse, error) {
	emp, err := s.findEmployee(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toEmployeeResponse(emp), nil
}

// ListEmployees lists a company's employees
func (s *EmployeeService) ListEmployees(ctx context.Context, tenantID uuid.UUID, filter identity.EmployeeFilter) (*shared.Paginated[EmployeeResponse], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	employees, err := s.employeeRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.employeeRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]EmployeeResponse, 0, len(employees))
	for i := range employees {
		items = append(items, *toEmployeeResponse(&employees[i]))
	}

	totalPages := int(total) / filter.Limit()
	if int(total)%filter.Limit() > 0 {
		totalPages++
	}
	return &shared.Paginated[EmployeeResponse]{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdateEmployee updates an employee's role and reporting line
func (s *EmployeeService) UpdateEmployee(ctx context.Context, tenantID, id uuid.UUID, req UpdateEmployeeRequest) (*EmployeeResponse, error) {
	emp, err := s.findEmployee(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if err := emp.ChangeRole(identity.EmployeeRole(req.Role)); err != nil {
		return nil, err
	}
	if req.ManagerID != nil {
		if err := s.assignManager(ctx, tenantID, emp, *req.ManagerID); err != nil {
			return nil, err
		}
	} else {
		emp.ClearManager()
	}
	emp.SetManagerApprover(req.IsManagerApprover)

	if err := s.employeeRepo.Save(ctx, emp); err != nil {
		return nil, err
	}
	return toEmployeeResponse(emp), nil
}

// DeactivateEmployee removes an employee from active flows
func (s *EmployeeService) DeactivateEmployee(ctx context.Context, tenantID, id uuid.UUID) error {
	emp, err := s.findEmployee(ctx, tenantID, id)
	if err != nil {
		return err
	}
	emp.Deactivate()
	return s.employeeRepo.Save(ctx, emp)
}

func (s *EmployeeService) assignManager(ctx context.Context, tenantID uuid.UUID, emp *identity.Employee, managerID uuid.UUID) error {
	manager, err := s.employeeRepo.FindByIDForTenant(ctx, tenantID, managerID)
	if err != nil {
		return err
	}
	if manager == nil {
		return shared.NewDomainError("NOT_FOUND", "Manager not found")
	}
	return emp.AssignManager(managerID)
}

func (s *EmployeeService) findEmployee(ctx context.Context, tenantID, id uuid.UUID) (*identity.Employee, error) {
	emp, err := s.employeeRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Employee not found")
	}
	return emp, nil
}

func toEmployeeResponse(e *identity.Employee) *EmployeeResponse {
	return &EmployeeResponse{
		ID:                e.ID,
		Name:              e.Name,
		Email:             e.Email,
		Role:              e.Role.String(),
		ManagerID:         e.ManagerID,
		IsManagerApprover: e.IsManagerApprover,
		IsActive:          e.IsActive,
		CreatedAt:         e.CreatedAt,
	}
}
