package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	EngagementRetainer = "retainer"
	EngagementSpecial  = "special"

	EngagementActive    = "active"
	EngagementSuspended = "suspended"
	EngagementEnded     = "ended"
)

// Engagement is a client relationship producing billable work: a monthly
// retainer or a one-off special engagement.
type Engagement struct {
	Id       string `json:"id" gorm:"primaryKey"`
	ClientID string `json:"client_id" gorm:"not null;index:idx_engagements_client_title_type,unique,priority:1"`
	Client   Client `json:"client" gorm:"foreignKey:ClientID;references:Id"`

	Type    string `json:"type" gorm:"type:VARCHAR(20);not null;index:idx_engagements_client_title_type,unique,priority:3"`
	Title   string `json:"title" gorm:"not null;index:idx_engagements_client_title_type,unique,priority:2"`
	Summary string `json:"summary"`
	Status  string `json:"status" gorm:"type:VARCHAR(20);default:active"`

	StartDate time.Time  `json:"start_date" gorm:"not null"`
	EndDate   *time.Time `json:"end_date"`

	BaseFee            decimal.Decimal `json:"base_fee" gorm:"type:numeric(12,2);default:0"`
	DefaultDescription string          `json:"default_description"`
	// Day of month on which a retainer draft is normally cut.
	BillingDay int `json:"billing_day" gorm:"default:1"`

	// Watermark: YYYY-MM of the latest generated retainer draft.
	LastGeneratedPeriod string `json:"last_generated_period" gorm:"type:VARCHAR(7)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (engagement *Engagement) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	engagement.Id = uuid.NewString()
	return
}

func (engagement *Engagement) IsActive() bool {
	return engagement.Status == EngagementActive
}

func (engagement *Engagement) IsRetainer() bool {
	return engagement.Type == EngagementRetainer
}
