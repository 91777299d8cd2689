package services

import (
	"errors"
	"strings"

	"billing-backend/errs"
	"billing-backend/models"
	"billing-backend/utils"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemInput is one caller-supplied line for a special engagement.
type ItemInput struct {
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// GenerateForPeriod turns an engagement plus a billing period into a draft
// statement. Idempotent per (engagement, period): a second call fails with
// a duplicate-period error while a live statement exists for the pair.
//
// Retainer engagements produce a single line at the base fee; special
// engagements take the caller's itemization verbatim after validation.
func GenerateForPeriod(db *gorm.DB, engagementID, period string, items []ItemInput, actorID string) (*models.BillingStatement, error) {
	if _, _, err := utils.ParsePeriod(period); err != nil {
		return nil, errs.Validation("period", "%v", err)
	}

	var statement *models.BillingStatement
	err := db.Transaction(func(tx *gorm.DB) error {
		// Lock the engagement row: serializes generation per engagement and
		// keeps the watermark advance consistent with the statement insert.
		var engagement models.Engagement
		if err := forUpdate(tx).First(&engagement, "id = ?", engagementID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("engagement", engagementID)
			}
			return errs.Database("load engagement", err)
		}
		if !engagement.IsActive() {
			return errs.Validation("engagement_id", "engagement is %s, statements can only be generated from active engagements", engagement.Status)
		}

		var live int64
		if err := tx.Model(&models.BillingStatement{}).
			Where("engagement_id = ? AND period = ? AND status <> ?", engagementID, period, models.StatementVoid).
			Count(&live).Error; err != nil {
			return errs.Database("check period uniqueness", err)
		}
		if live > 0 {
			return errs.DuplicatePeriod(engagementID, period)
		}

		lines, subtotal, err := buildItems(&engagement, period, items)
		if err != nil {
			return err
		}

		s := models.BillingStatement{
			ClientID:     engagement.ClientID,
			EngagementID: engagement.Id,
			Period:       period,
			Currency:     "PHP",
			Status:       models.StatementDraft,
			Items:        lines,
			SubTotal:     subtotal,
			PaidToDate:   decimal.Zero,
			Balance:      subtotal,
		}
		if err := tx.Create(&s).Error; err != nil {
			return errs.Database("create statement", err)
		}

		if utils.PeriodBefore(engagement.LastGeneratedPeriod, period) {
			engagement.LastGeneratedPeriod = period
			if err := tx.Model(&engagement).Update("last_generated_period", period).Error; err != nil {
				return errs.Database("advance watermark", err)
			}
		}

		LogAction(tx, actorID, "statement.generate", "billing_statement", s.Id, nil, s, map[string]any{"period": period})
		statement = &s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return statement, nil
}

func buildItems(engagement *models.Engagement, period string, items []ItemInput) ([]models.BillingItem, decimal.Decimal, error) {
	if engagement.IsRetainer() {
		description := engagement.DefaultDescription
		if description == "" {
			description = "Retainer services for " + period
		}
		line := models.BillingItem{
			Description: description,
			Qty:         decimal.NewFromInt(1),
			Unit:        "month",
			UnitPrice:   engagement.BaseFee,
			LineTotal:   engagement.BaseFee,
		}
		return []models.BillingItem{line}, engagement.BaseFee, nil
	}

	if len(items) == 0 {
		return nil, decimal.Zero, errs.Validation("items", "special engagements require at least one line item")
	}
	lines := make([]models.BillingItem, 0, len(items))
	subtotal := decimal.Zero
	for i, in := range items {
		if strings.TrimSpace(in.Description) == "" {
			return nil, decimal.Zero, errs.Validation("items", "description is required at index %d", i)
		}
		if !in.Qty.IsPositive() {
			return nil, decimal.Zero, errs.Validation("items", "qty must be positive at index %d", i)
		}
		if in.UnitPrice.IsNegative() {
			return nil, decimal.Zero, errs.Validation("items", "unit price must be non-negative at index %d", i)
		}
		lineTotal := in.Qty.Mul(in.UnitPrice)
		subtotal = subtotal.Add(lineTotal)
		lines = append(lines, models.BillingItem{
			Description: strings.TrimSpace(in.Description),
			Qty:         in.Qty,
			Unit:        in.Unit,
			UnitPrice:   in.UnitPrice,
			LineTotal:   lineTotal,
		})
	}
	return lines, subtotal, nil
}

// CycleResult reports one engagement's outcome of a retainer cycle run.
type CycleResult struct {
	EngagementID string `json:"engagement_id"`
	StatementID  string `json:"statement_id,omitempty"`
	Outcome      string `json:"outcome"` // "created" | "failed"
	Error        string `json:"error,omitempty"`
	Code         string `json:"code,omitempty"`
}

// RunCycle generates retainer drafts for every active retainer engagement of
// an active client whose watermark precedes the period. Each engagement is
// its own transaction: one failure never blocks the rest, and the caller
// gets a per-engagement result list.
func RunCycle(db *gorm.DB, period, actorID string) ([]CycleResult, error) {
	if _, _, err := utils.ParsePeriod(period); err != nil {
		return nil, errs.Validation("period", "%v", err)
	}

	var engagements []models.Engagement
	err := db.
		Joins("JOIN clients ON clients.id = engagements.client_id AND clients.status = ?", models.ClientActive).
		Where("engagements.type = ? AND engagements.status = ?", models.EngagementRetainer, models.EngagementActive).
		Where("engagements.last_generated_period = '' OR engagements.last_generated_period < ?", period).
		Order("engagements.created_at").
		Find(&engagements).Error
	if err != nil {
		return nil, errs.Database("list retainer engagements", err)
	}

	results := make([]CycleResult, 0, len(engagements))
	for _, engagement := range engagements {
		statement, genErr := GenerateForPeriod(db, engagement.Id, period, nil, actorID)
		if genErr != nil {
			r := CycleResult{EngagementID: engagement.Id, Outcome: "failed", Error: genErr.Error()}
			if de, ok := errs.As(genErr); ok {
				r.Code = de.Code
			}
			results = append(results, r)
			continue
		}
		results = append(results, CycleResult{
			EngagementID: engagement.Id,
			StatementID:  statement.Id,
			Outcome:      "created",
		})
	}
	return results, nil
}
