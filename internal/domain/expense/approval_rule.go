package expense

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/expenseflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RuleApprover is one entry in a rule's ordered approver list
type RuleApprover struct {
	ApproverID uuid.UUID `json:"approver_id"`
	StepNumber int       `json:"step_number"`
	Required   bool      `json:"required"`
}

// RuleApprovers is a slice of RuleApprover that implements GORM Scanner/Valuer for JSONB storage
type RuleApprovers []RuleApprover

// Value implements driver.Valuer interface for GORM to write to JSONB
func (a RuleApprovers) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (a *RuleApprovers) Scan(value interface{}) error {
	if value == nil {
		*a = RuleApprovers{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into RuleApprovers", value)
	}
	return json.Unmarshal(data, a)
}

// ApprovalRule is company policy mapping an expense category and amount band
// to a required approver set and completion condition. The completion fields
// are independent checks evaluated in fixed priority order by the engine
// (specific approver, then percentage, then require-all); a rule may set any
// combination of them.
type ApprovalRule struct {
	shared.TenantAggregateRoot
	Name                  string           `json:"name"`
	Category              string           `json:"category"` // CategoryAll matches every category
	MinAmount             *decimal.Decimal `json:"min_amount"`
	MaxAmount             *decimal.Decimal `json:"max_amount"`
	Approvers             RuleApprovers    `json:"approvers"`
	RequireAllApprovers   bool             `json:"require_all_approvers"`
	MinApprovalPercentage *decimal.Decimal `json:"min_approval_percentage"`
	SpecificApproverID    *uuid.UUID       `json:"specific_approver_id"`
	IsManagerFirst        bool             `json:"is_manager_first"`
	SequentialCreation    bool             `json:"sequential_creation"` // create step N+1 only after step N approves
	IsActive              bool             `json:"is_active"`
}

// NewApprovalRule creates an active approval rule
func NewApprovalRule(
	tenantID uuid.UUID,
	name string,
	category string,
	approvers []RuleApprover,
) (*ApprovalRule, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Rule name cannot be empty")
	}
	if category == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Rule category cannot be empty")
	}
	for _, a := range approvers {
		if a.ApproverID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_APPROVER", "Rule approver ID cannot be empty")
		}
	}

	rule := &ApprovalRule{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Category:            category,
		Approvers:           approvers,
		RequireAllApprovers: true,
		IsActive:            true,
	}

	rule.AddDomainEvent(NewApprovalRuleCreatedEvent(rule))

	return rule, nil
}

// SetAmountRange sets the inclusive amount band the rule applies to
func (r *ApprovalRule) SetAmountRange(min, max *decimal.Decimal) error {
	if min != nil && min.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT_RANGE", "Minimum amount cannot be negative")
	}
	if min != nil && max != nil && max.LessThan(*min) {
		return shared.NewDomainError("INVALID_AMOUNT_RANGE", "Maximum amount cannot be below minimum amount")
	}
	r.MinAmount = min
	r.MaxAmount = max
	r.UpdatedAt = time.Now()
	return nil
}

// SetPercentageThreshold sets the quorum percentage (0-100, inclusive threshold)
func (r *ApprovalRule) SetPercentageThreshold(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_PERCENTAGE", "Approval percentage must be between 0 and 100")
	}
	r.MinApprovalPercentage = &pct
	r.UpdatedAt = time.Now()
	return nil
}

// SetSpecificApprover names an approver whose single approval suffices
func (r *ApprovalRule) SetSpecificApprover(approverID uuid.UUID) error {
	if approverID == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Specific approver ID cannot be empty")
	}
	r.SpecificApproverID = &approverID
	r.UpdatedAt = time.Now()
	return nil
}

// Activate makes the rule eligible for matching
func (r *ApprovalRule) Activate() {
	r.IsActive = true
	r.UpdatedAt = time.Now()
}

// Deactivate removes the rule from matching without deleting it
func (r *ApprovalRule) Deactivate() {
	r.IsActive = false
	r.UpdatedAt = time.Now()
}

// AppliesTo reports whether the rule governs an expense of the given
// category and normalized amount. Both range bounds are inclusive;
// an unset bound is open.
func (r *ApprovalRule) AppliesTo(category string, amount decimal.Decimal) bool {
	if !r.IsActive {
		return false
	}
	if r.Category != CategoryAll && r.Category != category {
		return false
	}
	if r.MinAmount != nil && amount.LessThan(*r.MinAmount) {
		return false
	}
	if r.MaxAmount != nil && amount.GreaterThan(*r.MaxAmount) {
		return false
	}
	return true
}

// WindowWidth returns the width of the rule's amount band, or nil when the
// band is open-ended on either side. Used for most-specific-rule tie-breaking.
func (r *ApprovalRule) WindowWidth() *decimal.Decimal {
	if r.MinAmount == nil || r.MaxAmount == nil {
		return nil
	}
	w := r.MaxAmount.Sub(*r.MinAmount)
	return &w
}

// CanEverComplete reports whether the rule has at least one path to a
// terminal decision. A rule with no approvers, no manager-first step and no
// specific approver can never be satisfied; the engine surfaces that as a
// configuration error instead of silently auto-approving.
func (r *ApprovalRule) CanEverComplete(managerStepAvailable bool) bool {
	if len(r.Approvers) > 0 {
		return true
	}
	if r.IsManagerFirst && managerStepAvailable {
		return true
	}
	return false
}
