package services

import (
	"errors"
	"strings"
	"time"

	"billing-backend/errs"
	"billing-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateEngagementInput carries the fields a back-office user supplies when
// opening an engagement.
type CreateEngagementInput struct {
	ClientID           string          `json:"client_id"`
	Type               string          `json:"type"`
	Title              string          `json:"title"`
	Summary            string          `json:"summary"`
	StartDate          time.Time       `json:"start_date"`
	EndDate            *time.Time      `json:"end_date"`
	BaseFee            decimal.Decimal `json:"base_fee"`
	DefaultDescription string          `json:"default_description"`
	BillingDay         int             `json:"billing_day"`
}

// CreateEngagement opens an engagement for an active client.
func CreateEngagement(db *gorm.DB, in CreateEngagementInput, actorID string) (*models.Engagement, error) {
	if in.Type != models.EngagementRetainer && in.Type != models.EngagementSpecial {
		return nil, errs.Validation("type", "type must be retainer or special")
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, errs.Validation("title", "title is required")
	}
	if in.Type == models.EngagementRetainer && in.BaseFee.IsNegative() {
		return nil, errs.Validation("base_fee", "retainer base fee must be non-negative")
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return nil, errs.Validation("end_date", "end date must not precede start date")
	}
	if in.BillingDay < 0 || in.BillingDay > 28 {
		return nil, errs.Validation("billing_day", "billing day must be between 1 and 28")
	}

	var engagement *models.Engagement
	err := db.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, "id = ?", in.ClientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("client", in.ClientID)
			}
			return errs.Database("load client", err)
		}
		if !client.IsActive() {
			return errs.Validation("client_id", "client %s is not active", client.Name)
		}

		e := models.Engagement{
			ClientID:           client.Id,
			Type:               in.Type,
			Title:              strings.TrimSpace(in.Title),
			Summary:            in.Summary,
			Status:             models.EngagementActive,
			StartDate:          in.StartDate,
			EndDate:            in.EndDate,
			BaseFee:            in.BaseFee,
			DefaultDescription: in.DefaultDescription,
			BillingDay:         in.BillingDay,
		}
		if e.BillingDay == 0 {
			e.BillingDay = 1
		}
		if err := tx.Create(&e).Error; err != nil {
			return errs.Database("create engagement", err)
		}
		LogAction(tx, actorID, "engagement.create", "engagement", e.Id, nil, e, nil)
		engagement = &e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return engagement, nil
}

// UpdateEngagementInput is a partial patch; nil fields stay untouched.
type UpdateEngagementInput struct {
	Title              *string          `json:"title"`
	Summary            *string          `json:"summary"`
	Status             *string          `json:"status"`
	BaseFee            *decimal.Decimal `json:"base_fee"`
	DefaultDescription *string          `json:"default_description"`
	BillingDay         *int             `json:"billing_day"`
}

// UpdateEngagement patches mutable fields. Status may only move between
// active and suspended here; ending goes through EndEngagement.
func UpdateEngagement(db *gorm.DB, id string, in UpdateEngagementInput, actorID string) (*models.Engagement, error) {
	var engagement models.Engagement
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&engagement, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("engagement", id)
			}
			return errs.Database("load engagement", err)
		}
		before := engagement

		if in.Status != nil {
			to := *in.Status
			if to != models.EngagementActive && to != models.EngagementSuspended {
				return errs.Validation("status", "status may only be set to active or suspended")
			}
			if engagement.Status == models.EngagementEnded {
				return errs.InvalidTransition(id, engagement.Status, to)
			}
			engagement.Status = to
		}
		if in.Title != nil {
			if strings.TrimSpace(*in.Title) == "" {
				return errs.Validation("title", "title is required")
			}
			engagement.Title = strings.TrimSpace(*in.Title)
		}
		if in.Summary != nil {
			engagement.Summary = *in.Summary
		}
		if in.BaseFee != nil {
			if engagement.IsRetainer() && in.BaseFee.IsNegative() {
				return errs.Validation("base_fee", "retainer base fee must be non-negative")
			}
			engagement.BaseFee = *in.BaseFee
		}
		if in.DefaultDescription != nil {
			engagement.DefaultDescription = *in.DefaultDescription
		}
		if in.BillingDay != nil {
			if *in.BillingDay < 1 || *in.BillingDay > 28 {
				return errs.Validation("billing_day", "billing day must be between 1 and 28")
			}
			engagement.BillingDay = *in.BillingDay
		}

		if err := tx.Save(&engagement).Error; err != nil {
			return errs.Database("update engagement", err)
		}
		LogAction(tx, actorID, "engagement.update", "engagement", engagement.Id, before, engagement, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &engagement, nil
}

// EndEngagement closes the engagement. No statements can be generated from
// it afterwards.
func EndEngagement(db *gorm.DB, id string, endDate time.Time, actorID string) (*models.Engagement, error) {
	var engagement models.Engagement
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&engagement, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("engagement", id)
			}
			return errs.Database("load engagement", err)
		}
		if engagement.Status == models.EngagementEnded {
			return errs.InvalidTransition(id, engagement.Status, models.EngagementEnded)
		}
		if endDate.Before(engagement.StartDate) {
			return errs.Validation("end_date", "end date must not precede start date")
		}
		before := engagement
		engagement.Status = models.EngagementEnded
		engagement.EndDate = &endDate
		if err := tx.Save(&engagement).Error; err != nil {
			return errs.Database("end engagement", err)
		}
		LogAction(tx, actorID, "engagement.end", "engagement", engagement.Id, before, engagement, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &engagement, nil
}
