package services

import (
	"testing"
	"time"

	"billing-backend/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Client{},
		&models.Engagement{},
		&models.BillingStatement{},
		&models.BillingItem{},
		&models.Payment{},
		&models.PaymentAllocation{},
		&models.Sequence{},
		&models.AuditLog{},
	))
	return db
}

func money(t *testing.T, s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func makeClient(t *testing.T, db *gorm.DB, name string) *models.Client {
	client := models.Client{Name: name, Status: models.ClientActive}
	require.NoError(t, db.Create(&client).Error)
	return &client
}

func makeRetainer(t *testing.T, db *gorm.DB, clientID, title, fee string) *models.Engagement {
	engagement := models.Engagement{
		ClientID:   clientID,
		Type:       models.EngagementRetainer,
		Title:      title,
		Status:     models.EngagementActive,
		StartDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseFee:    money(t, fee),
		BillingDay: 1,
	}
	require.NoError(t, db.Create(&engagement).Error)
	return &engagement
}

func makeSpecial(t *testing.T, db *gorm.DB, clientID, title string) *models.Engagement {
	engagement := models.Engagement{
		ClientID:  clientID,
		Type:      models.EngagementSpecial,
		Title:     title,
		Status:    models.EngagementActive,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&engagement).Error)
	return &engagement
}

// makeIssued generates a draft for the engagement and issues it with the
// given dates, returning the refreshed statement.
func makeIssued(t *testing.T, db *gorm.DB, engagementID, period string, issueDate, dueDate time.Time) *models.BillingStatement {
	draft, err := GenerateForPeriod(db, engagementID, period, nil, "tester")
	require.NoError(t, err)
	issued, err := IssueStatement(db, draft.Id, issueDate, dueDate, "tester")
	require.NoError(t, err)
	return issued
}

func reloadStatement(t *testing.T, db *gorm.DB, id string) *models.BillingStatement {
	var s models.BillingStatement
	require.NoError(t, db.First(&s, "id = ?", id).Error)
	return &s
}

func reloadPayment(t *testing.T, db *gorm.DB, id string) *models.Payment {
	var p models.Payment
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return &p
}
