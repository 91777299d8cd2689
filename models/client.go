package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ClientActive   = "active"
	ClientInactive = "inactive"
)

// Client is a billed party. Clients are deactivated, never hard-deleted,
// while statements or payments reference them.
type Client struct {
	Id             string         `json:"id" gorm:"primaryKey"`
	Name           string         `json:"name" gorm:"not null;unique"`
	NormalizedName string         `json:"-" gorm:"index"`
	Status         string         `json:"status" gorm:"type:VARCHAR(20);default:active"`
	BillingAddress string         `json:"billing_address"`
	TIN            string         `json:"tin" gorm:"type:VARCHAR(20)"`
	Group          string         `json:"group"`
	Tags           datatypes.JSON `json:"tags" gorm:"type:jsonb"`
	Aliases        datatypes.JSON `json:"aliases" gorm:"type:jsonb"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (client *Client) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	client.Id = uuid.NewString()
	return
}

// BeforeSave keeps the dedupe key in sync with the display name.
func (client *Client) BeforeSave(tx *gorm.DB) (err error) {
	client.NormalizedName = strings.ToLower(strings.TrimSpace(client.Name))
	return
}

func (client *Client) IsActive() bool {
	return client.Status == ClientActive
}
