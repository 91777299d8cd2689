package services

import (
	"errors"

	"billing-backend/errs"
	"billing-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Allocate applies amount from a payment to a statement. Both bound checks
// happen after locking, and either both writes commit or neither does.
// Nothing is ever clamped: an out-of-bounds request fails whole.
//
// All allocation is explicit. There is deliberately no oldest-first or any
// other automatic settlement: the ledger records human reconciliation
// decisions, it does not infer them.
func Allocate(db *gorm.DB, paymentID, statementID string, amount decimal.Decimal, actorID string) (*models.PaymentAllocation, error) {
	var allocation *models.PaymentAllocation
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		allocation, err = allocateLocked(tx, paymentID, statementID, amount, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return allocation, nil
}

// allocateLocked does the work inside the caller's transaction. Lock order
// is fixed globally: payment before statement. Every code path that touches
// both aggregates must follow it or risk deadlock.
func allocateLocked(tx *gorm.DB, paymentID, statementID string, amount decimal.Decimal, actorID string) (*models.PaymentAllocation, error) {
	if !amount.IsPositive() {
		return nil, errs.Validation("amount", "allocation amount must be positive")
	}

	var payment models.Payment
	if err := lockPayment(tx, paymentID, &payment); err != nil {
		return nil, err
	}
	var statement models.BillingStatement
	if err := lockStatement(tx, statementID, &statement); err != nil {
		return nil, err
	}

	if !statement.IsIssued() {
		return nil, errs.Validation("statement_id", "only issued statements can receive allocations")
	}
	if statement.ClientID != payment.ClientID {
		return nil, errs.Validation("statement_id", "payment and statement belong to different clients")
	}
	if amount.GreaterThan(payment.RemainingUnallocated) {
		return nil, errs.OverAllocation(paymentID,
			"amount %s exceeds payment remaining-unallocated %s",
			amount.StringFixed(2), payment.RemainingUnallocated.StringFixed(2))
	}
	if amount.GreaterThan(statement.Balance) {
		return nil, errs.OverAllocation(statementID,
			"amount %s exceeds statement balance %s",
			amount.StringFixed(2), statement.Balance.StringFixed(2))
	}

	// One edge per (payment, statement): topping up goes through reversal
	// and a fresh allocation. The unique pair index backstops this check.
	var existing int64
	if err := tx.Model(&models.PaymentAllocation{}).
		Where("payment_id = ? AND statement_id = ?", payment.Id, statement.Id).
		Count(&existing).Error; err != nil {
		return nil, errs.Database("check allocation uniqueness", err)
	}
	if existing > 0 {
		return nil, errs.Validation("statement_id",
			"payment already allocates to this statement; reverse the existing allocation and allocate the combined amount")
	}

	allocation := models.PaymentAllocation{
		PaymentID:     payment.Id,
		StatementID:   statement.Id,
		AmountApplied: amount,
	}
	if err := tx.Create(&allocation).Error; err != nil {
		return nil, errs.Database("create allocation", err)
	}

	payment.RemainingUnallocated = payment.RemainingUnallocated.Sub(amount)
	if err := tx.Model(&payment).Update("remaining_unallocated", payment.RemainingUnallocated).Error; err != nil {
		return nil, errs.Database("update payment remaining", err)
	}

	statement.PaidToDate = statement.PaidToDate.Add(amount)
	statement.Balance = statement.SubTotal.Sub(statement.PaidToDate)
	if err := tx.Model(&statement).Updates(map[string]any{
		"paid_to_date": statement.PaidToDate,
		"balance":      statement.Balance,
	}).Error; err != nil {
		return nil, errs.Database("update statement balance", err)
	}

	LogAction(tx, actorID, "allocation.create", "payment_allocation", allocation.PaymentID,
		nil, allocation, map[string]any{"statement_id": statementID, "amount": amount.StringFixed(2)})
	return &allocation, nil
}

// ReverseAllocation undoes a prior allocation, restoring the statement
// balance and the payment's remaining amount. This is the only correction
// path: allocations are never edited in place.
func ReverseAllocation(db *gorm.DB, allocationID uint, actorID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var allocation models.PaymentAllocation
		if err := tx.First(&allocation, "id = ?", allocationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("allocation", "")
			}
			return errs.Database("load allocation", err)
		}

		// Same fixed lock order as Allocate.
		var payment models.Payment
		if err := lockPayment(tx, allocation.PaymentID, &payment); err != nil {
			return err
		}
		var statement models.BillingStatement
		if err := lockStatement(tx, allocation.StatementID, &statement); err != nil {
			return err
		}

		if err := tx.Delete(&allocation).Error; err != nil {
			return errs.Database("delete allocation", err)
		}

		payment.RemainingUnallocated = payment.RemainingUnallocated.Add(allocation.AmountApplied)
		if err := tx.Model(&payment).Update("remaining_unallocated", payment.RemainingUnallocated).Error; err != nil {
			return errs.Database("restore payment remaining", err)
		}

		statement.PaidToDate = statement.PaidToDate.Sub(allocation.AmountApplied)
		statement.Balance = statement.SubTotal.Sub(statement.PaidToDate)
		if err := tx.Model(&statement).Updates(map[string]any{
			"paid_to_date": statement.PaidToDate,
			"balance":      statement.Balance,
		}).Error; err != nil {
			return errs.Database("restore statement balance", err)
		}

		LogAction(tx, actorID, "allocation.reverse", "payment_allocation", allocation.PaymentID,
			allocation, nil, map[string]any{"statement_id": allocation.StatementID})
		return nil
	})
}

// AllocationsForPayment lists a payment's allocations in creation order.
func AllocationsForPayment(db *gorm.DB, paymentID string) ([]models.PaymentAllocation, error) {
	var allocations []models.PaymentAllocation
	if err := db.Where("payment_id = ?", paymentID).Order("id").Find(&allocations).Error; err != nil {
		return nil, errs.Database("list allocations", err)
	}
	return allocations, nil
}
