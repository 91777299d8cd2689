package services

import (
	"errors"
	"strings"
	"time"

	"billing-backend/errs"
	"billing-backend/models"

	"gorm.io/gorm"
)

// SubmitForReview moves a draft to the optional human checkpoint. No side
// effects beyond the status flag.
func SubmitForReview(db *gorm.DB, id, actorID string) (*models.BillingStatement, error) {
	var statement models.BillingStatement
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockStatement(tx, id, &statement); err != nil {
			return err
		}
		if !statement.CanTransition(models.StatementPendingReview) {
			return errs.InvalidTransition(id, statement.Status, models.StatementPendingReview)
		}
		statement.Status = models.StatementPendingReview
		if err := tx.Model(&statement).Update("status", statement.Status).Error; err != nil {
			return errs.Database("submit statement for review", err)
		}
		LogAction(tx, actorID, "statement.submit_for_review", "billing_statement", id, nil, statement, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &statement, nil
}

// IssueStatement finalizes a draft or pending-review statement: assigns the
// next number from the SOA series, stamps the caller-supplied dates, and
// freezes subtotal and items. Issued is terminal.
func IssueStatement(db *gorm.DB, id string, issueDate, dueDate time.Time, actorID string) (*models.BillingStatement, error) {
	if dueDate.Before(issueDate) {
		return nil, errs.Validation("due_date", "due date must not precede issue date")
	}

	var statement models.BillingStatement
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockStatement(tx, id, &statement); err != nil {
			return err
		}
		if !statement.CanTransition(models.StatementIssued) {
			return errs.InvalidTransition(id, statement.Status, models.StatementIssued)
		}

		number, err := nextStatementNumber(tx, issueDate)
		if err != nil {
			return err
		}

		before := statement
		statement.Number = &number
		statement.IssueDate = &issueDate
		statement.DueDate = &dueDate
		statement.Status = models.StatementIssued
		if err := tx.Model(&statement).Updates(map[string]any{
			"number":     number,
			"issue_date": issueDate,
			"due_date":   dueDate,
			"status":     models.StatementIssued,
		}).Error; err != nil {
			return errs.Database("issue statement", err)
		}
		LogAction(tx, actorID, "statement.issue", "billing_statement", id, before, statement, map[string]any{"number": number})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &statement, nil
}

// nextStatementNumber draws from the SOA sequence under its row lock.
// The fiscal year is keyed to the issue date so batch issuance is
// reproducible regardless of wall-clock time.
func nextStatementNumber(tx *gorm.DB, issueDate time.Time) (string, error) {
	var seq models.Sequence
	err := forUpdate(tx).
		Where("code = ?", models.SequenceCodeSOA).
		First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = models.Sequence{
			Code:      models.SequenceCodeSOA,
			Name:      "Statement of Account",
			Prefix:    "SOA-",
			Padding:   4,
			ResetRule: models.SequenceResetAnnual,
		}
		if err := tx.Create(&seq).Error; err != nil {
			return "", errs.Database("create sequence", err)
		}
	} else if err != nil {
		return "", errs.Database("load sequence", err)
	}

	number := seq.Next(issueDate)
	if err := tx.Save(&seq).Error; err != nil {
		return "", errs.Database("advance sequence", err)
	}
	return number, nil
}

// BatchResult reports one statement's outcome of a batch issue.
type BatchResult struct {
	ID      string `json:"id"`
	Number  string `json:"number,omitempty"`
	Outcome string `json:"outcome"` // "issued" | "failed"
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// IssueBatch issues every id independently. Each statement's issuance is its
// own committed transaction; the batch as a whole is not all-or-nothing.
func IssueBatch(db *gorm.DB, ids []string, issueDate, dueDate time.Time, actorID string) []BatchResult {
	results := make([]BatchResult, 0, len(ids))
	for _, id := range ids {
		statement, err := IssueStatement(db, id, issueDate, dueDate, actorID)
		if err != nil {
			r := BatchResult{ID: id, Outcome: "failed", Error: err.Error()}
			if de, ok := errs.As(err); ok {
				r.Code = de.Code
			}
			results = append(results, r)
			continue
		}
		results = append(results, BatchResult{ID: id, Number: *statement.Number, Outcome: "issued"})
	}
	return results
}

// VoidStatement retires a draft or pending-review statement. Issued
// statements are never voided; corrections there go through adjustment
// items or a credit memo.
func VoidStatement(db *gorm.DB, id, reason, actorID string) (*models.BillingStatement, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, errs.Validation("reason", "a reason is required to void a statement")
	}
	var statement models.BillingStatement
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockStatement(tx, id, &statement); err != nil {
			return err
		}
		if !statement.CanTransition(models.StatementVoid) {
			return errs.InvalidTransition(id, statement.Status, models.StatementVoid)
		}
		if statement.PaidToDate.IsPositive() {
			return errs.Validation("id", "statement has allocations and cannot be voided")
		}
		before := statement
		statement.Status = models.StatementVoid
		note := "Voided: " + reason
		if statement.Notes != "" {
			note = statement.Notes + "\n" + note
		}
		statement.Notes = note
		if err := tx.Model(&statement).Updates(map[string]any{
			"status": models.StatementVoid,
			"notes":  note,
		}).Error; err != nil {
			return errs.Database("void statement", err)
		}
		LogAction(tx, actorID, "statement.void", "billing_statement", id, before, statement, map[string]any{"reason": reason})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &statement, nil
}

func lockStatement(tx *gorm.DB, id string, out *models.BillingStatement) error {
	err := forUpdate(tx).First(out, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound("statement", id)
	}
	if err != nil {
		return errs.Database("load statement", err)
	}
	return nil
}
