package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

func (r *ResultPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	db := getDB(r.db, tx)

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_score", "max_score", "percentage", "passed",
				"needs_manual_grading", "finalized_at", "is_published", "updated_at",
			}),
		}).
		Create(result).Error
	if err != nil {
		return fmt.Errorf("failed to upsert result: %w", err)
	}
	return nil
}

func (r *ResultPostgreSQL) GetBySession(ctx context.Context, tx *gorm.DB, sessionID uint) (*models.Result, error) {
	db := getDB(r.db, tx)

	var result models.Result
	err := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultPostgreSQL) ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.Result, error) {
	db := getDB(r.db, tx)

	var results []*models.Result
	err := db.WithContext(ctx).
		Joins("JOIN exam_sessions ON exam_sessions.id = results.session_id").
		Where("exam_sessions.exam_id = ?", examID).
		Preload("Session").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list results for exam: %w", err)
	}
	return results, nil
}

func (r *ResultPostgreSQL) SetPublishedByExam(ctx context.Context, tx *gorm.DB, examID uint, published bool) (int64, error) {
	db := getDB(r.db, tx)

	result := db.WithContext(ctx).
		Model(&models.Result{}).
		Where("session_id IN (?)",
			db.WithContext(ctx).
				Model(&models.ExamSession{}).
				Select("id").
				Where("exam_id = ?", examID),
		).
		Updates(map[string]interface{}{
			"is_published": published,
			"finalized_at": time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to publish results for exam: %w", result.Error)
	}
	return result.RowsAffected, nil
}
