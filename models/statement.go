package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatementDraft         = "draft"
	StatementPendingReview = "pending_review"
	StatementIssued        = "issued"
	StatementVoid          = "void"
)

// statementTransitions is the full transition table for the statement state
// machine. Any move not listed here is rejected. There is no way out of
// "issued": corrections go through adjustment items or credit memos so the
// audit trail survives.
var statementTransitions = map[string][]string{
	StatementDraft:         {StatementPendingReview, StatementIssued, StatementVoid},
	StatementPendingReview: {StatementIssued, StatementVoid},
	StatementIssued:        {},
	StatementVoid:          {},
}

// BillingStatement is a statement of account (SOA) generated from an
// engagement for one billing period.
type BillingStatement struct {
	Id string `json:"id" gorm:"primaryKey"`

	// Assigned only at issuance; null until then, unique forever after.
	Number *string `json:"number" gorm:"uniqueIndex"`

	ClientID     string     `json:"client_id" gorm:"not null;index"`
	Client       Client     `json:"client" gorm:"foreignKey:ClientID;references:Id"`
	EngagementID string     `json:"engagement_id" gorm:"not null;index"`
	Engagement   Engagement `json:"engagement" gorm:"foreignKey:EngagementID;references:Id"`

	Period   string `json:"period" gorm:"type:VARCHAR(7);not null"`
	Currency string `json:"currency" gorm:"type:VARCHAR(3);default:PHP"`
	Notes    string `json:"notes"`
	Status   string `json:"status" gorm:"type:VARCHAR(20);default:draft"`

	IssueDate *time.Time `json:"issue_date"`
	DueDate   *time.Time `json:"due_date"`

	Items []BillingItem `json:"items" gorm:"foreignKey:StatementID;constraint:OnDelete:CASCADE"`

	SubTotal   decimal.Decimal `json:"sub_total" gorm:"type:numeric(12,2);default:0"`
	PaidToDate decimal.Decimal `json:"paid_to_date" gorm:"type:numeric(12,2);default:0"`
	Balance    decimal.Decimal `json:"balance" gorm:"type:numeric(12,2);default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *BillingStatement) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	s.Id = uuid.NewString()
	return
}

// CanTransition consults the transition table.
func (s *BillingStatement) CanTransition(to string) bool {
	for _, allowed := range statementTransitions[s.Status] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *BillingStatement) IsIssued() bool {
	return s.Status == StatementIssued
}

// Live reports whether the statement counts toward the per-period
// uniqueness rule. Void statements don't.
func (s *BillingStatement) Live() bool {
	return s.Status != StatementVoid
}

// BillingItem is one line of a statement, immutable once the statement is
// issued. LineTotal is qty times unit price in exact decimal.
type BillingItem struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	StatementID string          `json:"-" gorm:"not null;index"`
	Description string          `json:"description" gorm:"not null"`
	Qty         decimal.Decimal `json:"qty" gorm:"type:numeric(10,2);default:1"`
	Unit        string          `json:"unit" gorm:"type:VARCHAR(50)"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);default:0"`
	LineTotal   decimal.Decimal `json:"line_total" gorm:"type:numeric(12,2);default:0"`
	CreatedAt   time.Time       `json:"created_at"`
}
