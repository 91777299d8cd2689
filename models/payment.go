package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentRecorded = "recorded"
	PaymentVerified = "verified"
)

// Recognized payment methods. The named bank transfers follow the
// accounting office's actual settlement channels.
const (
	MethodCash        = "cash"
	MethodCheck       = "check"
	MethodBPITransfer = "bpi_transfer"
	MethodBDOTransfer = "bdo_transfer"
	MethodLBPTransfer = "lbp_transfer"
	MethodGCash       = "gcash"
)

var paymentMethods = map[string]bool{
	MethodCash:        true,
	MethodCheck:       true,
	MethodBPITransfer: true,
	MethodBDOTransfer: true,
	MethodLBPTransfer: true,
	MethodGCash:       true,
}

// ValidPaymentMethod reports whether method is one of the enumerated channels.
func ValidPaymentMethod(method string) bool {
	return paymentMethods[method]
}

// Payment is money received from a client, recorded independently of any
// statement. The manual invoice number is the statutory identifier and is
// unique per client.
type Payment struct {
	Id       string `json:"id" gorm:"primaryKey"`
	ClientID string `json:"client_id" gorm:"not null;index:idx_payments_client_invoice_no,unique,priority:1"`
	Client   Client `json:"client" gorm:"foreignKey:ClientID;references:Id"`

	PaymentDate     time.Time       `json:"payment_date" gorm:"not null;index"`
	AmountReceived  decimal.Decimal `json:"amount_received" gorm:"type:numeric(12,2);not null"`
	Currency        string          `json:"currency" gorm:"type:VARCHAR(3);default:PHP"`
	Method          string          `json:"method" gorm:"type:VARCHAR(20);not null"`
	ManualInvoiceNo string          `json:"manual_invoice_no" gorm:"type:VARCHAR(50);not null;index:idx_payments_client_invoice_no,unique,priority:2"`
	ReferenceNo     string          `json:"reference_no" gorm:"type:VARCHAR(100)"`
	Notes           string          `json:"notes"`
	Status          string          `json:"status" gorm:"type:VARCHAR(20);default:recorded"`

	// Denormalized: amount_received minus the sum of allocations.
	// Maintained under the payment's row lock so it never goes negative.
	RemainingUnallocated decimal.Decimal `json:"remaining_unallocated" gorm:"type:numeric(12,2);not null"`

	Allocations []PaymentAllocation `json:"allocations" gorm:"foreignKey:PaymentID"`

	RecordedByID string     `json:"recorded_by" gorm:"type:VARCHAR(64)"`
	VerifiedByID *string    `json:"verified_by" gorm:"type:VARCHAR(64)"`
	VerifiedAt   *time.Time `json:"verified_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (payment *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	payment.Id = uuid.NewString()
	return
}

func (payment *Payment) IsVerified() bool {
	return payment.Status == PaymentVerified
}

// PaymentAllocation applies part of a payment against one statement.
// Rows are append-only: corrections reverse an allocation and create a new
// one, never edit in place.
type PaymentAllocation struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	PaymentID     string          `json:"payment_id" gorm:"not null;index:idx_allocations_payment_statement,unique,priority:1"`
	StatementID   string          `json:"statement_id" gorm:"not null;index:idx_allocations_payment_statement,unique,priority:2"`
	AmountApplied decimal.Decimal `json:"amount_applied" gorm:"type:numeric(12,2);not null"`
	CreatedAt     time.Time       `json:"created_at"`
}
