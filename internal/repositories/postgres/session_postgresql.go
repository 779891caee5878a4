package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

func (r *SessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSession, error) {
	db := getDB(r.db, tx)

	var session models.ExamSession
	err := db.WithContext(ctx).
		Preload("Answers").
		First(&session, id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionPostgreSQL) GetByStudentAndExam(ctx context.Context, tx *gorm.DB, studentID string, examID uint) ([]*models.ExamSession, error) {
	db := getDB(r.db, tx)

	var sessions []*models.ExamSession
	err := db.WithContext(ctx).
		Where("student_id = ? AND exam_id = ?", studentID, examID).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions for student: %w", err)
	}
	return sessions, nil
}

func (r *SessionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// UpdateStatusIf performs the conditional transition that guards against
// concurrent submits: only a session still in one of the expected states is
// updated, and RowsAffected tells the caller whether it won the race.
func (r *SessionPostgreSQL) UpdateStatusIf(ctx context.Context, tx *gorm.DB, id uint, expected []models.SessionStatus, updates map[string]interface{}) (int64, error) {
	db := getDB(r.db, tx)

	result := db.WithContext(ctx).
		Model(&models.ExamSession{}).
		Where("id = ? AND status IN ?", id, expected).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update session status: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *SessionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SessionFilters) ([]*models.ExamSession, int64, error) {
	db := getDB(r.db, tx)

	query := db.WithContext(ctx).Model(&models.ExamSession{})
	if filters.ExamID != nil {
		query = query.Where("exam_id = ?", *filters.ExamID)
	}
	if filters.StudentID != "" {
		query = query.Where("student_id = ?", filters.StudentID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	var sessions []*models.ExamSession
	err := applyPagination(query, filters.Limit, filters.Offset).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, total, nil
}
