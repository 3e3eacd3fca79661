// Package repo holds the gorm-backed stores for the quest catalog and
// player quest instances. Every method accepts an optional transaction and
// falls back to the base handle when tx is nil.
package repo

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func pick(base, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return base
}

// forUpdate adds a row lock where the dialect supports it. SQLite
// serializes writers on its own and rejects FOR UPDATE.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
