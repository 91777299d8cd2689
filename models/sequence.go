package models

import (
	"fmt"
	"time"
)

const (
	SequenceResetNone   = "none"
	SequenceResetAnnual = "annual"
)

// SequenceCodeSOA is the single statement-number series. Numbering policy:
// one ledger-wide fiscal-year series, SOA-YYYY-NNNN, strictly increasing
// within a year, unique across all time via the statements.number column.
const SequenceCodeSOA = "SOA"

// Sequence is a persisted number series. Callers must hold the row lock
// (SELECT ... FOR UPDATE) while calling Next and saving the result.
type Sequence struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Code         string     `json:"code" gorm:"type:VARCHAR(50);not null;uniqueIndex"`
	Name         string     `json:"name"`
	Prefix       string     `json:"prefix" gorm:"type:VARCHAR(20);default:SOA-"`
	Padding      int        `json:"padding" gorm:"default:4"`
	CurrentValue int        `json:"current_value" gorm:"default:0"`
	ResetRule    string     `json:"reset_rule" gorm:"type:VARCHAR(10);default:annual"`
	LastResetAt  *time.Time `json:"last_reset_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Next advances the counter and formats the next number for today.
// Annual series embed the year and restart at 1 when it rolls over, so
// numbers are never reused; non-resetting series count continuously and
// carry no year in the formatted value.
func (s *Sequence) Next(today time.Time) string {
	if s.ResetRule != SequenceResetAnnual {
		s.CurrentValue++
		return fmt.Sprintf("%s%0*d", s.Prefix, s.Padding, s.CurrentValue)
	}
	if s.LastResetAt != nil && s.LastResetAt.Year() != today.Year() {
		s.CurrentValue = 0
	}
	s.CurrentValue++
	if s.LastResetAt == nil || s.LastResetAt.Year() != today.Year() {
		t := today
		s.LastResetAt = &t
	}
	return fmt.Sprintf("%s%d-%0*d", s.Prefix, today.Year(), s.Padding, s.CurrentValue)
}
