package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
)

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

// answerConflict targets the unique (session_id, question_id) pair so a
// re-submitted answer replaces the previous one.
var answerConflict = clause.OnConflict{
	Columns: []clause.Column{{Name: "session_id"}, {Name: "question_id"}},
	DoUpdates: clause.AssignmentColumns([]string{
		"response", "auto_score", "manual_score", "needs_manual_grading",
		"graded_by", "graded_at", "updated_at",
	}),
}

func (r *AnswerPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	db := getDB(r.db, tx)

	if err := db.WithContext(ctx).Clauses(answerConflict).Create(answer).Error; err != nil {
		return fmt.Errorf("failed to upsert answer: %w", err)
	}
	return nil
}

func (r *AnswerPostgreSQL) UpsertBatch(ctx context.Context, tx *gorm.DB, answers []*models.Answer) error {
	if len(answers) == 0 {
		return nil
	}

	db := getDB(r.db, tx)

	if err := db.WithContext(ctx).Clauses(answerConflict).CreateInBatches(answers, 100).Error; err != nil {
		return fmt.Errorf("failed to upsert answers: %w", err)
	}
	return nil
}

func (r *AnswerPostgreSQL) GetBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*models.Answer, error) {
	db := getDB(r.db, tx)

	var answers []*models.Answer
	err := db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("question_id ASC").
		Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get answers for session: %w", err)
	}
	return answers, nil
}

func (r *AnswerPostgreSQL) GetBySessionAndQuestion(ctx context.Context, tx *gorm.DB, sessionID, questionID uint) (*models.Answer, error) {
	db := getDB(r.db, tx)

	var answer models.Answer
	err := db.WithContext(ctx).
		Where("session_id = ? AND question_id = ?", sessionID, questionID).
		First(&answer).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}
