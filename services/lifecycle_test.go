package services

import (
	"testing"
	"time"

	"billing-backend/errs"
	"billing-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitForReviewThenIssue(t *testing.T) {
	db := setupTestDB(t)
	client := makeClient(t, db, "Acme Trading")
	engagement := makeRetainer(t, db, client.Id, "Monthly bookkeeping", "15000.00")
	draft, err := GenerateForPeriod(db, engagement.Id, "2026-01", nil, "tester")
	require.NoError(t, err)

	pending, err := SubmitForReview(db, draft.Id, "tester")
	require.NoError(t, err)
	assert.Equal(t, models.StatementPendingReview, pending.Status)

	issueDate := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	dueDate := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	issued, err := IssueStatement(db, draft.Id, issueDate, dueDate, "tester")
	require.NoError(t, err)
	assert.Equal(t, models.StatementIssued, issued.Status)
	require.NotNil(t, issued.Number)
	assert.Equal(t, "SOA-2026-0001", *issued.Number)
}

func TestIssueDirectlyFromDraft(t *testing.T) {
	db := setupTestDB(t)
	client := makeClient(t, db, "Acme Trading")
	engagement := makeRetainer(t, db, client.Id, "Monthly bookkeeping", "15000.00")
	draft, err := GenerateForPeriod(db, engagement.Id, "2026-01", nil, "tester")
	require.NoError(t, err)

	issueDate := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	issued, err := IssueStatement(db, draft.Id, issueDate, issueDate.AddDate(0, 0, 14), "tester")
	require.NoError(t, err)
	assert.Equal(t, models.StatementIssued, issued.Status)
}

func TestIssuedIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	client := makeClient(t, db, "Acme Trading")
	engagement := makeRetainer(t, db, client.Id, "Monthly bookkeeping", "15000.00")
	issueDate := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	issued := makeIssued(t, db, engagement.Id, "2026-01", issueDate, issueDate.AddDate(0, 0, 14))

	_, err := IssueStatement(db, issued.Id, issueDate, issueDate.AddDate(0, 0, 14), "tester")
	require.Error(t, err)
	de, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, errs.CodeInvalidTransition, de.Code)

	_, err = SubmitForReview(db, issued.Id, "tester")
	require.Error(t, err)
	de, _ = errs.As(err)
	assert.Equal(t, errs.CodeInvalidTransition, de.Code)

	_, err = VoidStatement(db, issued.Id, "mistake", "tester")
	require.Error(t, err)
	de, _ = errs.As(err)
	assert.Equal(t, errs.CodeInvalidTransition, de.Code)

	// The assigned number survives the failed attempts.
	refreshed := reloadStatement(t, db, issued.Id)
	require.NotNil(t, refreshed.Number)
	assert.Equal(t, *issued.Number, *refreshed.Number)
}

func TestIssueRejectsDueBeforeIssue(t *testing.T) {
	db := setupTestDB(t)
	client := makeClient(t, db, "Acme Trading")
	engagement := makeRetainer(t, db, client.Id, "Monthly bookkeeping", "15000.00")
	draft, err := GenerateForPeriod(db, engagement.Id, "2026-01", nil, "tester")
	require.NoError(t, err)

	issueDate := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err = IssueStatement(db, draft.Id, issueDate, issueDate.AddDate(0, 0, -1), "tester")
	require.Error(t, err)
	de, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, errs.CodeValidation, de.Code)
	assert.Equal(t, "due_date", de.Field)

	refreshed := reloadStatement(t, db, draft.Id)
	assert.Equal(t, models.StatementDraft, refreshed.Status)
	assert.Nil(t, refreshed.Number)
}

func TestStatementNumbersIncrement(t *testing.T) {
	db := setupTestDB(t)
	client := makeClient(t, db, "Acme Trading")
	engagement := makeRetainer(t, db, client.Id, "Monthly bookkeeping", "15000.00")

	issueDate := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	first := makeIssued(t, db, engagement.Id, "2026-01", issueDate, issueDate.AddDate(0, 0, 14))
	second := makeIssued(t, db, engagement.Id, "2026-02", issueDate, issueDate.AddDate(0, 0, 14))

	assert.Equal(t, "SOA-2026-0001", *first.Number)
	assert.Equal(t, "SOA-2026-0002", *second.Number)
}

func TestIssueBatchPartialFailure(t *testing.T) {
	db := setupTestDB(t)
	client := makeClient(t, db, "Acme Trading")
	engagement := makeRetainer(t, db, client.Id, "Monthly bookkeeping", "15000.00")

	a, err := GenerateForPeriod(db, engagement.Id, "2026-01", nil, "tester")
	require.NoError(t, err)
	b, err := GenerateForPeriod(db, engagement.Id, "2026-02", nil, "tester")
	require.NoError(t, err)

	issueDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	results := IssueBatch(db, []string{a.Id, "no-such-id", b.Id}, issueDate, issueDate.AddDate(0, 0, 14), "tester")
	require.Len(t, results, 3)

	assert.Equal(t, "issued", results[0].Outcome)
	assert.Equal(t, "SOA-2026-0001", results[0].Number)
	assert.Equal(t, "failed", results[1].Outcome)
	assert.Equal(t, errs.CodeNotFound, results[1].Code)
	assert.Equal(t, "issued", results[2].Outcome)
	assert.Equal(t, "SOA-2026-0002", results[2].Number)

	// The failure in the middle did not roll back its neighbors.
	assert.Equal(t, models.StatementIssued, reloadStatement(t, db, a.Id).Status)
	assert.Equal(t, models.StatementIssued, reloadStatement(t, db, b.Id).Status)
}

func TestVoidStatement(t *testing.T) {
	db := setupTestDB(t)
	client := makeClient(t, db, "Acme Trading")
	engagement := makeRetainer(t, db, client.Id, "Monthly bookkeeping", "15000.00")
	draft, err := GenerateForPeriod(db, engagement.Id, "2026-01", nil, "tester")
	require.NoError(t, err)

	_, err = VoidStatement(db, draft.Id, "", "tester")
	require.Error(t, err)
	de, _ := errs.As(err)
	assert.Equal(t, errs.CodeValidation, de.Code)

	voided, err := VoidStatement(db, draft.Id, "wrong fee", "tester")
	require.NoError(t, err)
	assert.Equal(t, models.StatementVoid, voided.Status)
	assert.Contains(t, voided.Notes, "Voided: wrong fee")

	// Void is terminal.
	_, err = SubmitForReview(db, draft.Id, "tester")
	require.Error(t, err)
	de, _ = errs.As(err)
	assert.Equal(t, errs.CodeInvalidTransition, de.Code)
}
