package database

import (
	"fmt"

	"billing-backend/models"

	"gorm.io/gorm"
)

// Migrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/index tags)
// - Money column types (NUMERIC(12,2))
// - Uniqueness: statement number, (engagement, period) among live statements,
//   (client, manual_invoice_no)
// - CHECK constraints guarding the ledger invariants at the storage layer
func Migrate() error {
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&models.User{},
			&models.Client{},
			&models.Engagement{},
			&models.BillingStatement{},
			&models.BillingItem{},
			&models.Payment{},
			&models.PaymentAllocation{},
			&models.Sequence{},
			&models.AuditLog{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		// --- Enforce money columns as NUMERIC(12,2) (idempotent ALTERs) ---
		alters := []string{
			`ALTER TABLE engagements        ALTER COLUMN base_fee              TYPE numeric(12,2)`,
			`ALTER TABLE billing_statements ALTER COLUMN sub_total             TYPE numeric(12,2)`,
			`ALTER TABLE billing_statements ALTER COLUMN paid_to_date          TYPE numeric(12,2)`,
			`ALTER TABLE billing_statements ALTER COLUMN balance               TYPE numeric(12,2)`,
			`ALTER TABLE billing_items      ALTER COLUMN unit_price            TYPE numeric(12,2)`,
			`ALTER TABLE billing_items      ALTER COLUMN line_total            TYPE numeric(12,2)`,
			`ALTER TABLE payments           ALTER COLUMN amount_received       TYPE numeric(12,2)`,
			`ALTER TABLE payments           ALTER COLUMN remaining_unallocated TYPE numeric(12,2)`,
			`ALTER TABLE payment_allocations ALTER COLUMN amount_applied       TYPE numeric(12,2)`,
		}
		for _, stmt := range alters {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("money type migration failed on: %s - %w", stmt, err)
			}
		}

		// --- Partial unique index: one live statement per (engagement, period) ---
		// Void statements drop out of the uniqueness rule so a voided draft can
		// be regenerated.
		indexes := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_statements_engagement_period_live
			   ON billing_statements (engagement_id, period) WHERE status <> 'void'`,
			`CREATE INDEX IF NOT EXISTS idx_statements_status_due ON billing_statements (status, due_date)`,
			`CREATE INDEX IF NOT EXISTS idx_allocations_statement ON payment_allocations (statement_id)`,
			`CREATE INDEX IF NOT EXISTS idx_payments_date_method ON payments (payment_date, method)`,
		}
		for _, stmt := range indexes {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
			}
		}

		// --- CHECK constraints: the storage layer backstops the engine ---
		checks := []string{
			// Statement balance never negative, paid never above subtotal
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'billing_statements'::regclass
					  AND conname  = 'chk_statements_balance_nonneg'
				) THEN
					ALTER TABLE billing_statements
					ADD CONSTRAINT chk_statements_balance_nonneg
					CHECK (balance >= 0 AND paid_to_date >= 0 AND paid_to_date <= sub_total);
				END IF;
			END $$;`,
			// Payment amounts positive, remaining within [0, amount]
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'payments'::regclass
					  AND conname  = 'chk_payments_amounts'
				) THEN
					ALTER TABLE payments
					ADD CONSTRAINT chk_payments_amounts
					CHECK (amount_received > 0 AND remaining_unallocated >= 0 AND remaining_unallocated <= amount_received);
				END IF;
			END $$;`,
			// Allocations strictly positive
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'payment_allocations'::regclass
					  AND conname  = 'chk_allocations_amount_pos'
				) THEN
					ALTER TABLE payment_allocations
					ADD CONSTRAINT chk_allocations_amount_pos
					CHECK (amount_applied > 0);
				END IF;
			END $$;`,
			// Number assigned iff issued
			`DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM pg_constraint
					WHERE conrelid = 'billing_statements'::regclass
					  AND conname  = 'chk_statements_number_iff_issued'
				) THEN
					ALTER TABLE billing_statements
					ADD CONSTRAINT chk_statements_number_iff_issued
					CHECK ((status = 'issued') = (number IS NOT NULL));
				END IF;
			END $$;`,
		}
		for _, stmt := range checks {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed: %w", err)
			}
		}

		return nil
	})
}
