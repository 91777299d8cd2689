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

// AllocationRequest is one caller-ordered application of a payment to a
// statement, used when allocations ride along with payment recording.
type AllocationRequest struct {
	StatementID string          `json:"statement_id"`
	Amount      decimal.Decimal `json:"amount"`
}

// RecordPaymentInput carries a manually-entered payment.
type RecordPaymentInput struct {
	ClientID        string              `json:"client_id"`
	PaymentDate     time.Time           `json:"payment_date"`
	Amount          decimal.Decimal     `json:"amount"`
	Method          string              `json:"method"`
	ManualInvoiceNo string              `json:"manual_invoice_no"`
	ReferenceNo     string              `json:"reference_no"`
	Notes           string              `json:"notes"`
	Allocations     []AllocationRequest `json:"allocations"`
}

// RecordPayment writes a received payment, optionally applying allocations
// in caller order within the same transaction. The whole call commits or
// none of it does: a failed allocation rolls the payment back too.
func RecordPayment(db *gorm.DB, in RecordPaymentInput, actorID string) (*models.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, errs.Validation("amount", "amount received must be positive")
	}
	if !models.ValidPaymentMethod(in.Method) {
		return nil, errs.Validation("method", "unrecognized payment method %q", in.Method)
	}
	invoiceNo := strings.TrimSpace(in.ManualInvoiceNo)
	if invoiceNo == "" {
		return nil, errs.Validation("manual_invoice_no", "manual invoice number is required")
	}

	var payment *models.Payment
	err := db.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.First(&client, "id = ?", in.ClientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("client", in.ClientID)
			}
			return errs.Database("load client", err)
		}

		// The manual invoice number is the statutory identifier; a collision
		// within a client must never slip through. The partial unique index
		// backstops this check under race.
		var dup int64
		if err := tx.Model(&models.Payment{}).
			Where("client_id = ? AND manual_invoice_no = ?", client.Id, invoiceNo).
			Count(&dup).Error; err != nil {
			return errs.Database("check invoice uniqueness", err)
		}
		if dup > 0 {
			return errs.DuplicateInvoice(client.Id, invoiceNo)
		}

		p := models.Payment{
			ClientID:             client.Id,
			PaymentDate:          in.PaymentDate,
			AmountReceived:       in.Amount,
			Currency:             "PHP",
			Method:               in.Method,
			ManualInvoiceNo:      invoiceNo,
			ReferenceNo:          in.ReferenceNo,
			Notes:                in.Notes,
			Status:               models.PaymentRecorded,
			RemainingUnallocated: in.Amount,
			RecordedByID:         actorID,
		}
		if err := tx.Create(&p).Error; err != nil {
			return errs.Database("create payment", err)
		}

		// Apply riding allocations strictly in caller order so that an
		// insufficient-balance failure is deterministic.
		for _, req := range in.Allocations {
			if _, err := allocateLocked(tx, p.Id, req.StatementID, req.Amount, actorID); err != nil {
				return err
			}
		}
		if len(in.Allocations) > 0 {
			if err := tx.First(&p, "id = ?", p.Id).Error; err != nil {
				return errs.Database("reload payment", err)
			}
		}

		LogAction(tx, actorID, "payment.record", "payment", p.Id, nil, p, nil)
		payment = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// VerifyPayment is the one-way recorded -> verified transition.
func VerifyPayment(db *gorm.DB, id, actorID string) (*models.Payment, error) {
	var payment models.Payment
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockPayment(tx, id, &payment); err != nil {
			return err
		}
		if payment.IsVerified() {
			return errs.InvalidTransition(id, payment.Status, models.PaymentVerified)
		}
		now := time.Now().UTC()
		payment.Status = models.PaymentVerified
		payment.VerifiedByID = &actorID
		payment.VerifiedAt = &now
		if err := tx.Model(&payment).Updates(map[string]any{
			"status":         models.PaymentVerified,
			"verified_by_id": actorID,
			"verified_at":    now,
		}).Error; err != nil {
			return errs.Database("verify payment", err)
		}
		LogAction(tx, actorID, "payment.verify", "payment", id, nil, payment, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// DeletePayment removes a payment that nothing references yet. Once any
// allocation draws from it, the payment is permanent; corrections reverse
// the allocations instead.
func DeletePayment(db *gorm.DB, id, actorID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := lockPayment(tx, id, &payment); err != nil {
			return err
		}
		var allocated int64
		if err := tx.Model(&models.PaymentAllocation{}).Where("payment_id = ?", id).Count(&allocated).Error; err != nil {
			return errs.Database("count allocations", err)
		}
		if allocated > 0 || !payment.RemainingUnallocated.Equal(payment.AmountReceived) {
			return errs.Validation("id", "payment has allocations and cannot be deleted")
		}
		if err := tx.Delete(&payment).Error; err != nil {
			return errs.Database("delete payment", err)
		}
		LogAction(tx, actorID, "payment.delete", "payment", id, payment, nil, nil)
		return nil
	})
}

func lockPayment(tx *gorm.DB, id string, out *models.Payment) error {
	err := forUpdate(tx).First(out, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NotFound("payment", id)
	}
	if err != nil {
		return errs.Database("load payment", err)
	}
	return nil
}
