package expense

import (
	"context"
	"time"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RuleService provides application-level approval rule administration
type RuleService struct {
	ruleRepo expense.ApprovalRuleRepository
	logger   *zap.Logger
}

// NewRuleService creates a new RuleService
func NewRuleService(ruleRepo expense.ApprovalRuleRepository, logger *zap.Logger) *RuleService {
	return &RuleService{ruleRepo: ruleRepo, logger: logger}
}

// RuleApproverRequest names one approver inside a rule definition
type RuleApproverRequest struct {
	ApproverID uuid.UUID `json:"approver_id" binding:"required"`
	StepNumber int       `json:"step_number"`
	Required   bool      `json:"required"`
}

// CreateRuleRequest represents a request to create an approval rule
type CreateRuleRequest struct {
	Name                  string                `json:"name" binding:"required"`
	Category              string                `json:"category" binding:"required"`
	MinAmount             *decimal.Decimal      `json:"min_amount"`
	MaxAmount             *decimal.Decimal      `json:"max_amount"`
	Approvers             []RuleApproverRequest `json:"approvers"`
	RequireAllApprovers   *bool                 `json:"require_all_approvers"`
	MinApprovalPercentage *decimal.Decimal      `json:"min_approval_percentage"`
	SpecificApproverID    *uuid.UUID            `json:"specific_approver_id"`
	IsManagerFirst        bool                  `json:"is_manager_first"`
	SequentialCreation    bool                  `json:"sequential_creation"`
}

// UpdateRuleRequest represents a request to update an approval rule
type UpdateRuleRequest struct {
	Name                  string                `json:"name" binding:"required"`
	MinAmount             *decimal.Decimal      `json:"min_amount"`
	MaxAmount             *decimal.Decimal      `json:"max_amount"`
	Approvers             []RuleApproverRequest `json:"approvers"`
	RequireAllApprovers   *bool                 `json:"require_all_approvers"`
	MinApprovalPercentage *decimal.Decimal      `json:"min_approval_percentage"`
	SpecificApproverID    *uuid.UUID            `json:"specific_approver_id"`
	IsManagerFirst        bool                  `json:"is_manager_first"`
	SequentialCreation    bool                  `json:"sequential_creation"`
}

// RuleResponse represents an approval rule in API responses
type RuleResponse struct {
	ID                    uuid.UUID             `json:"id"`
	Name                  string                `json:"name"`
	Category              string                `json:"category"`
	MinAmount             *decimal.Decimal      `json:"min_amount,omitempty"`
	MaxAmount             *decimal.Decimal      `json:"max_amount,omitempty"`
	Approvers             []RuleApproverRequest `json:"approvers"`
	RequireAllApprovers   bool                  `json:"require_all_approvers"`
	MinApprovalPercentage *decimal.Decimal      `json:"min_approval_percentage,omitempty"`
	SpecificApproverID    *uuid.UUID            `json:"specific_approver_id,omitempty"`
	IsManagerFirst        bool                  `json:"is_manager_first"`
	SequentialCreation    bool                  `json:"sequential_creation"`
	IsActive              bool                  `json:"is_active"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// RuleListFilter defines filtering options for rule list queries
type RuleListFilter struct {
	Category string `form:"category"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// CreateRule creates a new approval rule
func (s *RuleService) CreateRule(ctx context.Context, tenantID uuid.UUID, req CreateRuleRequest) (*RuleResponse, error) {
	rule, err := expense.NewApprovalRule(tenantID, req.Name, req.Category, toRuleApprovers(req.Approvers))
	if err != nil {
		return nil, err
	}

	if err := applyRuleConfig(rule, req.MinAmount, req.MaxAmount, req.RequireAllApprovers,
		req.MinApprovalPercentage, req.SpecificApproverID, req.IsManagerFirst, req.SequentialCreation); err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	s.logger.Info("approval rule created",
		zap.String("rule_id", rule.ID.String()),
		zap.String("category", rule.Category),
	)

	return toRuleResponse(rule), nil
}

// GetRule gets an approval rule by ID
func (s *RuleService) GetRule(ctx context.Context, tenantID, id uuid.UUID) (*RuleResponse, error) {
	rule, err := s.findRule(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return toRuleResponse(rule), nil
}

// ListRules lists a tenant's approval rules
func (s *RuleService) ListRules(ctx context.Context, tenantID uuid.UUID, filter RuleListFilter) (*shared.Paginated[RuleResponse], error) {
	domainFilter := expense.RuleFilter{
		Filter: shared.Filter{Page: filter.Page, PageSize: filter.PageSize},
	}
	if domainFilter.Page < 1 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize < 1 || domainFilter.PageSize > 100 {
		domainFilter.PageSize = 20
	}
	if filter.Category != "" {
		domainFilter.Category = &filter.Category
	}
	domainFilter.IsActive = filter.IsActive

	rules, err := s.ruleRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.ruleRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]RuleResponse, 0, len(rules))
	for i := range rules {
		items = append(items, *toRuleResponse(&rules[i]))
	}

	totalPages := int(total) / domainFilter.Limit()
	if int(total)%domainFilter.Limit() > 0 {
		totalPages++
	}
	return &shared.Paginated[RuleResponse]{
		Items:      items,
		Total:      total,
		Page:       domainFilter.Page,
		PageSize:   domainFilter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// UpdateRule updates an approval rule's configuration. Running flows keep
// the requests they already created; only future evaluations see the change.
func (s *RuleService) UpdateRule(ctx context.Context, tenantID, id uuid.UUID, req UpdateRuleRequest) (*RuleResponse, error) {
	rule, err := s.findRule(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	rule.Name = req.Name
	rule.Approvers = toRuleApprovers(req.Approvers)

	if err := applyRuleConfig(rule, req.MinAmount, req.MaxAmount, req.RequireAllApprovers,
		req.MinApprovalPercentage, req.SpecificApproverID, req.IsManagerFirst, req.SequentialCreation); err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	return toRuleResponse(rule), nil
}

// ActivateRule makes a rule eligible for matching again
func (s *RuleService) ActivateRule(ctx context.Context, tenantID, id uuid.UUID) (*RuleResponse, error) {
	return s.toggleRule(ctx, tenantID, id, true)
}

// DeactivateRule removes a rule from matching without deleting it
func (s *RuleService) DeactivateRule(ctx context.Context, tenantID, id uuid.UUID) (*RuleResponse, error) {
	return s.toggleRule(ctx, tenantID, id, false)
}

// DeleteRule soft deletes an approval rule
func (s *RuleService) DeleteRule(ctx context.Context, tenantID, id uuid.UUID) error {
	rule, err := s.findRule(ctx, tenantID, id)
	if err != nil {
		return err
	}
	return s.ruleRepo.Delete(ctx, rule.ID)
}

func (s *RuleService) toggleRule(ctx context.Context, tenantID, id uuid.UUID, active bool) (*RuleResponse, error) {
	rule, err := s.findRule(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if active {
		rule.Activate()
	} else {
		rule.Deactivate()
	}
	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}
	return toRuleResponse(rule), nil
}

func (s *RuleService) findRule(ctx context.Context, tenantID, id uuid.UUID) (*expense.ApprovalRule, error) {
	rule, err := s.ruleRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Approval rule not found")
	}
	return rule, nil
}

func applyRuleConfig(
	rule *expense.ApprovalRule,
	minAmount, maxAmount *decimal.Decimal,
	requireAll *bool,
	percentage *decimal.Decimal,
	specificApproverID *uuid.UUID,
	isManagerFirst, sequentialCreation bool,
) error {
	if err := rule.SetAmountRange(minAmount, maxAmount); err != nil {
		return err
	}
	if requireAll != nil {
		rule.RequireAllApprovers = *requireAll
	}
	if percentage != nil {
		if err := rule.SetPercentageThreshold(*percentage); err != nil {
			return err
		}
	} else {
		rule.MinApprovalPercentage = nil
	}
	if specificApproverID != nil {
		if err := rule.SetSpecificApprover(*specificApproverID); err != nil {
			return err
		}
	} else {
		rule.SpecificApproverID = nil
	}
	rule.IsManagerFirst = isManagerFirst
	rule.SequentialCreation = sequentialCreation
	return nil
}

func toRuleApprovers(in []RuleApproverRequest) []expense.RuleApprover {
	out := make([]expense.RuleApprover, 0, len(in))
	for _, a := range in {
		out = append(out, expense.RuleApprover{
			ApproverID: a.ApproverID,
			StepNumber: a.StepNumber,
			Required:   a.Required,
		})
	}
	return out
}

func toRuleResponse(r *expense.ApprovalRule) *RuleResponse {
	approvers := make([]RuleApproverRequest, 0, len(r.Approvers))
	for _, a := range r.Approvers {
		approvers = append(approvers, RuleApproverRequest{
			ApproverID: a.ApproverID,
			StepNumber: a.StepNumber,
			Required:   a.Required,
		})
	}
	return &RuleResponse{
		ID:                    r.ID,
		Name:                  r.Name,
		Category:              r.Category,
		MinAmount:             r.MinAmount,
		MaxAmount:             r.MaxAmount,
		Approvers:             approvers,
		RequireAllApprovers:   r.RequireAllApprovers,
		MinApprovalPercentage: r.MinApprovalPercentage,
		SpecificApproverID:    r.SpecificApproverID,
		IsManagerFirst:        r.IsManagerFirst,
		SequentialCreation:    r.SequentialCreation,
		IsActive:              r.IsActive,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}
