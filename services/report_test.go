package services

import (
	"testing"
	"time"

	"billing-backend/errs"
	"billing-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgingBuckets(t *testing.T) {
	db := setupTestDB(t)
	client := makeClient(t, db, "Acme Trading")
	asOf := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		title  string
		fee    string
		due    time.Time
		bucket string
	}{
		{"Bookkeeping", "1000.00", asOf.AddDate(0, 0, 10), BucketCurrent},
		{"Payroll", "2000.00", asOf.AddDate(0, 0, -10), Bucket1To30},
		{"Tax compliance", "3000.00", asOf.AddDate(0, 0, -45), Bucket31To60},
		{"Advisory", "4000.00", asOf.AddDate(0, 0, -75), Bucket61To90},
		{"Audit support", "5000.00", asOf.AddDate(0, 0, -120), Bucket90Plus},
	}
	for _, c := range cases {
		engagement := makeRetainer(t, db, client.Id, c.title, c.fee)
		makeIssued(t, db, engagement.Id, "2026-01", c.due.AddDate(0, 0, -14), c.due)
	}

	report, err := Aging(db, asOf)
	require.NoError(t, err)

	require.Len(t, report.Rows, 5)
	byBucket := map[string]AgingRow{}
	for _, row := range report.Rows {
		byBucket[row.Bucket] = row
	}
	for _, c := range cases {
		assert.True(t, report.Buckets[c.bucket].Equal(money(t, c.fee)), c.title)
		assert.True(t, byBucket[c.bucket].Balance.Equal(money(t, c.fee)), c.title)
	}
	assert.True(t, report.Total.Equal(money(t, "15000.00")))

	// Rows come back oldest due date first.
	assert.Equal(t, Bucket90Plus, report.Rows[0].Bucket)
	assert.Equal(t, 120, report.Rows[0].DaysPastDue)
	assert.Equal(t, BucketCurrent, report.Rows[4].Bucket)
	assert.Equal(t, 0, report.Rows[4].DaysPastDue)
	assert.Equal(t, "Acme Trading", report.Rows[0].ClientName)
}

func TestAgingExcludesSettledAndUnissued(t *testing.T) {
	db := setupTestDB(t)
	client := makeClient(t, db, "Acme Trading")
	asOf := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	issueDate := asOf.AddDate(0, 0, -30)

	paid := makeRetainer(t, db, client.Id, "Bookkeeping", "5000.00")
	settled := makeIssued(t, db, paid.Id, "2026-01", issueDate, issueDate.AddDate(0, 0, 14))
	payment, err := RecordPayment(db, paymentInput(t, client.Id, "5000.00", "INV-0101"), "tester")
	require.NoError(t, err)
	_, err = Allocate(db, payment.Id, settled.Id, money(t, "5000.00"), "tester")
	require.NoError(t, err)

	unissued := makeRetainer(t, db, client.Id, "Payroll", "2000.00")
	_, err = GenerateForPeriod(db, unissued.Id, "2026-01", nil, "tester")
	require.NoError(t, err)

	outstanding := makeRetainer(t, db, client.Id, "Tax compliance", "3000.00")
	makeIssued(t, db, outstanding.Id, "2026-01", issueDate, issueDate.AddDate(0, 0, 14))

	report, err := Aging(db, asOf)
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)
	assert.True(t, report.Total.Equal(money(t, "3000.00")))
}

func TestCollectionsRegister(t *testing.T) {
	db := setupTestDB(t)
	client := makeClient(t, db, "Acme Trading")

	feb10 := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	feb12 := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)
	record := func(date time.Time, amount, method, invoiceNo string) {
		in := paymentInput(t, client.Id, amount, invoiceNo)
		in.PaymentDate = date
		in.Method = method
		_, err := RecordPayment(db, in, "tester")
		require.NoError(t, err)
	}
	record(feb10, "1000.00", models.MethodCash, "INV-0101")
	record(feb10, "2500.00", models.MethodCash, "INV-0102")
	record(feb10, "4000.00", models.MethodGCash, "INV-0103")
	record(feb12, "3000.00", models.MethodCash, "INV-0104")

	rows, err := CollectionsRegister(db, nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, models.MethodCash, rows[0].Method)
	assert.Equal(t, 2, rows[0].Count)
	assert.True(t, rows[0].Total.Equal(money(t, "3500.00")))
	assert.Equal(t, models.MethodGCash, rows[1].Method)
	assert.True(t, rows[1].Total.Equal(money(t, "4000.00")))
	assert.True(t, rows[2].PaymentDate.Equal(feb12))

	// Range filter keeps only the later date.
	rows, err = CollectionsRegister(db, &feb12, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Total.Equal(money(t, "3000.00")))

	_, err = CollectionsRegister(db, &feb12, &feb10)
	require.Error(t, err)
	de, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, errs.CodeValidation, de.Code)
}

func TestUnappliedCredits(t *testing.T) {
	db := setupTestDB(t)
	acme := makeClient(t, db, "Acme Trading")
	beta := makeClient(t, db, "Beta Holdings")

	engagement := makeRetainer(t, db, acme.Id, "Monthly bookkeeping", "5000.00")
	issueDate := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	statement := makeIssued(t, db, engagement.Id, "2026-01", issueDate, issueDate.AddDate(0, 0, 14))

	// Acme: 6,000 received, 5,000 applied, 1,000 floating; plus an untouched 500.
	partial, err := RecordPayment(db, paymentInput(t, acme.Id, "6000.00", "INV-0101"), "tester")
	require.NoError(t, err)
	_, err = Allocate(db, partial.Id, statement.Id, money(t, "5000.00"), "tester")
	require.NoError(t, err)
	_, err = RecordPayment(db, paymentInput(t, acme.Id, "500.00", "INV-0102"), "tester")
	require.NoError(t, err)

	// Beta: fully unapplied.
	_, err = RecordPayment(db, paymentInput(t, beta.Id, "2000.00", "INV-0900"), "tester")
	require.NoError(t, err)

	rows, err := UnappliedCredits(db)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	totals := map[string]string{}
	for _, row := range rows {
		totals[row.ClientName] = row.Total.StringFixed(2)
	}
	assert.Equal(t, "1500.00", totals["Acme Trading"])
	assert.Equal(t, "2000.00", totals["Beta Holdings"])
}
