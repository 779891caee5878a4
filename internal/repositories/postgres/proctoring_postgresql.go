package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
)

// ProctoringPostgreSQL stores suspicious events. The table is append-only,
// events are never updated or removed once written.
type ProctoringPostgreSQL struct {
	db *gorm.DB
}

func NewProctoringPostgreSQL(db *gorm.DB) repositories.ProctoringRepository {
	return &ProctoringPostgreSQL{db: db}
}

func (r *ProctoringPostgreSQL) Create(ctx context.Context, tx *gorm.DB, event *models.SuspiciousEvent) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to record suspicious event: %w", err)
	}
	return nil
}

func (r *ProctoringPostgreSQL) ListBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*models.SuspiciousEvent, error) {
	db := getDB(r.db, tx)

	var events []*models.SuspiciousEvent
	err := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list suspicious events: %w", err)
	}
	return events, nil
}

func (r *ProctoringPostgreSQL) CountBySession(ctx context.Context, tx *gorm.DB, sessionID uint) (int64, error) {
	db := getDB(r.db, tx)

	var count int64
	err := db.WithContext(ctx).
		Model(&models.SuspiciousEvent{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count suspicious events: %w", err)
	}
	return count, nil
}
