package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate adds a SELECT ... FOR UPDATE row lock. SQLite serializes writers
// at the database level and rejects the FOR UPDATE syntax, so the clause is
// only emitted on dialects that support it.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
