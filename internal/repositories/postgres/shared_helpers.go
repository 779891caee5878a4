package postgres

import (
	"gorm.io/gorm"
)

// getDB returns the transaction handle when one is provided, otherwise the
// base connection. Every repository method accepts an optional tx so the same
// code serves both transactional and standalone calls.
func getDB(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// applyPagination applies limit/offset with sane defaults.
func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}
