package services

import (
	"time"

	"billing-backend/errs"
	"billing-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Aging bucket labels, oldest last. "current" means the due date has not
// passed as of the report date.
const (
	BucketCurrent = "current"
	Bucket1To30   = "1-30"
	Bucket31To60  = "31-60"
	Bucket61To90  = "61-90"
	Bucket90Plus  = "90+"
)

var agingBuckets = []string{BucketCurrent, Bucket1To30, Bucket31To60, Bucket61To90, Bucket90Plus}

// AgingRow is one statement's contribution to the aging report.
type AgingRow struct {
	StatementID string          `json:"statement_id"`
	Number      string          `json:"number"`
	ClientName  string          `json:"client_name"`
	DueDate     time.Time       `json:"due_date"`
	DaysPastDue int             `json:"days_past_due"`
	Bucket      string          `json:"bucket"`
	Balance     decimal.Decimal `json:"balance"`
}

// AgingReport buckets outstanding balances of issued statements by how
// overdue they are relative to asOf.
type AgingReport struct {
	AsOf    time.Time                  `json:"as_of"`
	Buckets map[string]decimal.Decimal `json:"buckets"`
	Total   decimal.Decimal            `json:"total"`
	Rows    []AgingRow                 `json:"rows"`
}

// Aging recomputes the aging report from current ledger state. Statements
// with zero balance are excluded; only issued statements age.
func Aging(db *gorm.DB, asOf time.Time) (*AgingReport, error) {
	var statements []models.BillingStatement
	err := db.Preload("Client").
		Where("status = ? AND balance > 0", models.StatementIssued).
		Order("due_date").
		Find(&statements).Error
	if err != nil {
		return nil, errs.Database("load issued statements", err)
	}

	report := &AgingReport{
		AsOf:    asOf,
		Buckets: make(map[string]decimal.Decimal, len(agingBuckets)),
		Total:   decimal.Zero,
		Rows:    make([]AgingRow, 0, len(statements)),
	}
	for _, b := range agingBuckets {
		report.Buckets[b] = decimal.Zero
	}

	day := asOf.Truncate(24 * time.Hour)
	for _, s := range statements {
		if s.DueDate == nil {
			continue
		}
		due := s.DueDate.Truncate(24 * time.Hour)
		daysPast := int(day.Sub(due).Hours() / 24)
		bucket := bucketFor(daysPast)

		number := ""
		if s.Number != nil {
			number = *s.Number
		}
		report.Rows = append(report.Rows, AgingRow{
			StatementID: s.Id,
			Number:      number,
			ClientName:  s.Client.Name,
			DueDate:     *s.DueDate,
			DaysPastDue: max(daysPast, 0),
			Bucket:      bucket,
			Balance:     s.Balance,
		})
		report.Buckets[bucket] = report.Buckets[bucket].Add(s.Balance)
		report.Total = report.Total.Add(s.Balance)
	}
	return report, nil
}

func bucketFor(daysPastDue int) string {
	switch {
	case daysPastDue <= 0:
		return BucketCurrent
	case daysPastDue <= 30:
		return Bucket1To30
	case daysPastDue <= 60:
		return Bucket31To60
	case daysPastDue <= 90:
		return Bucket61To90
	default:
		return Bucket90Plus
	}
}

// CollectionsRow is one (date, method) cell of the collections register.
type CollectionsRow struct {
	PaymentDate time.Time       `json:"payment_date"`
	Method      string          `json:"method"`
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
}

// CollectionsRegister sums payments by date and method over an optional
// date range.
func CollectionsRegister(db *gorm.DB, start, end *time.Time) ([]CollectionsRow, error) {
	if start != nil && end != nil && end.Before(*start) {
		return nil, errs.Validation("range", "end of range precedes start")
	}

	q := db.Model(&models.Payment{}).Order("payment_date, method")
	if start != nil {
		q = q.Where("payment_date >= ?", *start)
	}
	if end != nil {
		q = q.Where("payment_date <= ?", *end)
	}

	var payments []models.Payment
	if err := q.Find(&payments).Error; err != nil {
		return nil, errs.Database("load payments", err)
	}

	// Summed in Go with exact decimals; row order follows the query order.
	rows := make([]CollectionsRow, 0)
	for _, p := range payments {
		date := p.PaymentDate.Truncate(24 * time.Hour)
		if n := len(rows); n > 0 && rows[n-1].PaymentDate.Equal(date) && rows[n-1].Method == p.Method {
			rows[n-1].Count++
			rows[n-1].Total = rows[n-1].Total.Add(p.AmountReceived)
			continue
		}
		rows = append(rows, CollectionsRow{
			PaymentDate: date,
			Method:      p.Method,
			Count:       1,
			Total:       p.AmountReceived,
		})
	}
	return rows, nil
}

// UnappliedCreditRow is one client's money received but not yet applied.
type UnappliedCreditRow struct {
	ClientID   string          `json:"client_id"`
	ClientName string          `json:"client_name"`
	Total      decimal.Decimal `json:"total"`
}

// UnappliedCredits sums remaining-unallocated per client across all
// payments with something left to apply.
func UnappliedCredits(db *gorm.DB) ([]UnappliedCreditRow, error) {
	var payments []models.Payment
	err := db.Preload("Client").
		Where("remaining_unallocated > 0").
		Order("client_id, created_at").
		Find(&payments).Error
	if err != nil {
		return nil, errs.Database("load payments", err)
	}

	rows := make([]UnappliedCreditRow, 0)
	for _, p := range payments {
		if n := len(rows); n > 0 && rows[n-1].ClientID == p.ClientID {
			rows[n-1].Total = rows[n-1].Total.Add(p.RemainingUnallocated)
			continue
		}
		rows = append(rows, UnappliedCreditRow{
			ClientID:   p.ClientID,
			ClientName: p.Client.Name,
			Total:      p.RemainingUnallocated,
		})
	}
	return rows, nil
}
