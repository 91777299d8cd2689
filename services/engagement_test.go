package services

import (
	"testing"
	"time"

	"billing-backend/errs"
	"billing-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEngagement(t *testing.T) {
	db := setupTestDB(t)
	client := makeClient(t, db, "Acme Trading")

	engagement, err := CreateEngagement(db, CreateEngagementInput{
		ClientID:  client.Id,
		Type:      models.EngagementRetainer,
		Title:     "  Monthly bookkeeping  ",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseFee:   money(t, "15000.00"),
	}, "tester")
	require.NoError(t, err)

	assert.Equal(t, "Monthly bookkeeping", engagement.Title)
	assert.Equal(t, models.EngagementActive, engagement.Status)
	assert.Equal(t, 1, engagement.BillingDay)
	assert.Equal(t, "", engagement.LastGeneratedPeriod)
}

func TestCreateEngagementValidation(t *testing.T) {
	db := setupTestDB(t)
	client := makeClient(t, db, "Acme Trading")
	inactive := makeClient(t, db, "Dormant Corp")
	require.NoError(t, db.Model(inactive).Update("status", models.ClientInactive).Error)

	base := CreateEngagementInput{
		ClientID:  client.Id,
		Type:      models.EngagementRetainer,
		Title:     "Monthly bookkeeping",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseFee:   money(t, "15000.00"),
	}

	in := base
	in.Type = "hourly"
	_, err := CreateEngagement(db, in, "tester")
	require.Error(t, err)
	de, _ := errs.As(err)
	assert.Equal(t, "type", de.Field)

	in = base
	in.Title = "   "
	_, err = CreateEngagement(db, in, "tester")
	require.Error(t, err)
	de, _ = errs.As(err)
	assert.Equal(t, "title", de.Field)

	in = base
	end := in.StartDate.AddDate(0, 0, -1)
	in.EndDate = &end
	_, err = CreateEngagement(db, in, "tester")
	require.Error(t, err)
	de, _ = errs.As(err)
	assert.Equal(t, "end_date", de.Field)

	in = base
	in.BillingDay = 31
	_, err = CreateEngagement(db, in, "tester")
	require.Error(t, err)
	de, _ = errs.As(err)
	assert.Equal(t, "billing_day", de.Field)

	in = base
	in.ClientID = inactive.Id
	_, err = CreateEngagement(db, in, "tester")
	require.Error(t, err)
	de, _ = errs.As(err)
	assert.Equal(t, "client_id", de.Field)
}

func TestUpdateEngagementStatus(t *testing.T) {
	db := setupTestDB(t)
	client := makeClient(t, db, "Acme Trading")
	engagement := makeRetainer(t, db, client.Id, "Monthly bookkeeping", "15000.00")

	suspended := models.EngagementSuspended
	updated, err := UpdateEngagement(db, engagement.Id, UpdateEngagementInput{Status: &suspended}, "tester")
	require.NoError(t, err)
	assert.Equal(t, models.EngagementSuspended, updated.Status)

	active := models.EngagementActive
	updated, err = UpdateEngagement(db, engagement.Id, UpdateEngagementInput{Status: &active}, "tester")
	require.NoError(t, err)
	assert.Equal(t, models.EngagementActive, updated.Status)

	// Ending is not a patch; it has its own operation.
	ended := models.EngagementEnded
	_, err = UpdateEngagement(db, engagement.Id, UpdateEngagementInput{Status: &ended}, "tester")
	require.Error(t, err)
	de, _ := errs.As(err)
	assert.Equal(t, errs.CodeValidation, de.Code)
}

func TestUpdateEngagementFields(t *testing.T) {
	db := setupTestDB(t)
	client := makeClient(t, db, "Acme Trading")
	engagement := makeRetainer(t, db, client.Id, "Monthly bookkeeping", "15000.00")

	fee := money(t, "18000.00")
	day := 15
	updated, err := UpdateEngagement(db, engagement.Id, UpdateEngagementInput{BaseFee: &fee, BillingDay: &day}, "tester")
	require.NoError(t, err)
	assert.True(t, updated.BaseFee.Equal(fee))
	assert.Equal(t, 15, updated.BillingDay)

	negative := money(t, "-1.00")
	_, err = UpdateEngagement(db, engagement.Id, UpdateEngagementInput{BaseFee: &negative}, "tester")
	require.Error(t, err)
	de, _ := errs.As(err)
	assert.Equal(t, "base_fee", de.Field)
}

func TestEndEngagement(t *testing.T) {
	db := setupTestDB(t)
	client := makeClient(t, db, "Acme Trading")
	engagement := makeRetainer(t, db, client.Id, "Monthly bookkeeping", "15000.00")

	endDate := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	ended, err := EndEngagement(db, engagement.Id, endDate, "tester")
	require.NoError(t, err)
	assert.Equal(t, models.EngagementEnded, ended.Status)
	require.NotNil(t, ended.EndDate)

	// Ended engagements generate nothing further.
	_, err = GenerateForPeriod(db, engagement.Id, "2026-07", nil, "tester")
	require.Error(t, err)
	de, _ := errs.As(err)
	assert.Equal(t, errs.CodeValidation, de.Code)

	_, err = EndEngagement(db, engagement.Id, endDate, "tester")
	require.Error(t, err)
	de, _ = errs.As(err)
	assert.Equal(t, errs.CodeInvalidTransition, de.Code)

	_, err = EndEngagement(db, engagement.Id, engagement.StartDate.AddDate(0, 0, -1), "tester")
	require.Error(t, err)
}
