package models

import (
	"time"

	"github.com/expenseflow/backend/internal/domain/expense"
	"github.com/expenseflow/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseRecordModel is the persistence model for the ExpenseRecord aggregate root.
type ExpenseRecordModel struct {
	TenantAggregateModel
	ExpenseNumber       string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_expense_tenant_number,priority:2"`
	EmployeeID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	Category            string                `gorm:"type:varchar(50);not null;index"`
	Description         string                `gorm:"type:varchar(500);not null"`
	MerchantName        string                `gorm:"type:varchar(200)"`
	Amount              decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	OriginalCurrency    string                `gorm:"type:varchar(3);not null"`
	ConvertedAmount     decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	ExpenseDate         time.Time             `gorm:"not null;index"`
	ReceiptURL          string                `gorm:"type:text"`
	Status              expense.ExpenseStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	CurrentApprovalStep int                   `gorm:"not null;default:0"`
	DecidedAt           *time.Time
}

// TableName returns the table name for GORM
func (ExpenseRecordModel) TableName() string {
	return "expense_records"
}

// ToDomain converts the persistence model to a domain ExpenseRecord aggregate.
func (m *ExpenseRecordModel) ToDomain() *expense.ExpenseRecord {
	return &expense.ExpenseRecord{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		ExpenseNumber:       m.ExpenseNumber,
		EmployeeID:          m.EmployeeID,
		Category:            m.Category,
		Description:         m.Description,
		MerchantName:        m.MerchantName,
		Amount:              m.Amount,
		OriginalCurrency:    valueobject.Currency(m.OriginalCurrency),
		ConvertedAmount:     m.ConvertedAmount,
		ExpenseDate:         m.ExpenseDate,
		ReceiptURL:          m.ReceiptURL,
		Status:              m.Status,
		CurrentApprovalStep: m.CurrentApprovalStep,
		DecidedAt:           m.DecidedAt,
	}
}

// FromDomain populates the persistence model from a domain ExpenseRecord aggregate.
func (m *ExpenseRecordModel) FromDomain(e *expense.ExpenseRecord) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.ExpenseNumber = e.ExpenseNumber
	m.EmployeeID = e.EmployeeID
	m.Category = e.Category
	m.Description = e.Description
	m.MerchantName = e.MerchantName
	m.Amount = e.Amount
	m.OriginalCurrency = string(e.OriginalCurrency)
	m.ConvertedAmount = e.ConvertedAmount
	m.ExpenseDate = e.ExpenseDate
	m.ReceiptURL = e.ReceiptURL
	m.Status = e.Status
	m.CurrentApprovalStep = e.CurrentApprovalStep
	m.DecidedAt = e.DecidedAt
}

// ExpenseRecordModelFromDomain creates a new persistence model from domain.
func ExpenseRecordModelFromDomain(e *expense.ExpenseRecord) *ExpenseRecordModel {
	m := &ExpenseRecordModel{}
	m.FromDomain(e)
	return m
}

// ApprovalRequestModel is the persistence model for the ApprovalRequest aggregate root.
// The unique index over (expense_id, approver_id, step_number) prevents duplicate
// ledger rows for the same approver step.
type ApprovalRequestModel struct {
	TenantAggregateModel
	ExpenseID  uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_request_expense_approver_step,priority:1;index"`
	ApproverID uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_request_expense_approver_step,priority:2;index"`
	StepNumber int                    `gorm:"not null;uniqueIndex:idx_request_expense_approver_step,priority:3"`
	Status     expense.ApprovalStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Comments   string                 `gorm:"type:varchar(500)"`
	DecidedAt  *time.Time
}

// TableName returns the table name for GORM
func (ApprovalRequestModel) TableName() string {
	return "approval_requests"
}

// ToDomain converts the persistence model to a domain ApprovalRequest aggregate.
func (m *ApprovalRequestModel) ToDomain() *expense.ApprovalRequest {
	return &expense.ApprovalRequest{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		ExpenseID:           m.ExpenseID,
		ApproverID:          m.ApproverID,
		StepNumber:          m.StepNumber,
		Status:              m.Status,
		Comments:            m.Comments,
		DecidedAt:           m.DecidedAt,
	}
}

// FromDomain populates the persistence model from a domain ApprovalRequest aggregate.
func (m *ApprovalRequestModel) FromDomain(r *expense.ApprovalRequest) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.ExpenseID = r.ExpenseID
	m.ApproverID = r.ApproverID
	m.StepNumber = r.StepNumber
	m.Status = r.Status
	m.Comments = r.Comments
	m.DecidedAt = r.DecidedAt
}

// ApprovalRequestModelFromDomain creates a new persistence model from domain.
func ApprovalRequestModelFromDomain(r *expense.ApprovalRequest) *ApprovalRequestModel {
	m := &ApprovalRequestModel{}
	m.FromDomain(r)
	return m
}

// ApprovalRuleModel is the persistence model for the ApprovalRule aggregate root.
// Approvers are stored as a JSONB document; the completion condition fields
// are nullable so an unset condition stays unset.
type ApprovalRuleModel struct {
	TenantAggregateModel
	Name                  string                `gorm:"type:varchar(200);not null"`
	Category              string                `gorm:"type:varchar(50);not null;index"`
	MinAmount             *decimal.Decimal      `gorm:"type:decimal(18,4)"`
	MaxAmount             *decimal.Decimal      `gorm:"type:decimal(18,4)"`
	Approvers             expense.RuleApprovers `gorm:"type:jsonb;not null;default:'[]'"`
	RequireAllApprovers   bool                  `gorm:"not null;default:true"`
	MinApprovalPercentage *decimal.Decimal      `gorm:"type:decimal(5,2)"`
	SpecificApproverID    *uuid.UUID            `gorm:"type:uuid"`
	IsManagerFirst        bool                  `gorm:"not null;default:false"`
	SequentialCreation    bool                  `gorm:"not null;default:false"`
	IsActive              bool                  `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ApprovalRuleModel) TableName() string {
	return "approval_rules"
}

// ToDomain converts the persistence model to a domain ApprovalRule aggregate.
func (m *ApprovalRuleModel) ToDomain() *expense.ApprovalRule {
	return &expense.ApprovalRule{
		TenantAggregateRoot:   m.ToDomainTenantAggregateRoot(),
		Name:                  m.Name,
		Category:              m.Category,
		MinAmount:             m.MinAmount,
		MaxAmount:             m.MaxAmount,
		Approvers:             m.Approvers,
		RequireAllApprovers:   m.RequireAllApprovers,
		MinApprovalPercentage: m.MinApprovalPercentage,
		SpecificApproverID:    m.SpecificApproverID,
		IsManagerFirst:        m.IsManagerFirst,
		SequentialCreation:    m.SequentialCreation,
		IsActive:              m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain ApprovalRule aggregate.
func (m *ApprovalRuleModel) FromDomain(r *expense.ApprovalRule) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Name = r.Name
	m.Category = r.Category
	m.MinAmount = r.MinAmount
	m.MaxAmount = r.MaxAmount
	m.Approvers = r.Approvers
	m.RequireAllApprovers = r.RequireAllApprovers
	m.MinApprovalPercentage = r.MinApprovalPercentage
	m.SpecificApproverID = r.SpecificApproverID
	m.IsManagerFirst = r.IsManagerFirst
	m.SequentialCreation = r.SequentialCreation
	m.IsActive = r.IsActive
}

// ApprovalRuleModelFromDomain creates a new persistence model from domain.
func ApprovalRuleModelFromDomain(r *expense.ApprovalRule) *ApprovalRuleModel {
	m := &ApprovalRuleModel{}
	m.FromDomain(r)
	return m
}
