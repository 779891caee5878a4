package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
)

// PostgreSQLRepository wires the entity repositories together over a shared
// gorm connection. The user repository is injected because users live in
// Casdoor, not postgres.
type PostgreSQLRepository struct {
	db *gorm.DB

	exam       repositories.ExamRepository
	question   repositories.QuestionRepository
	session    repositories.SessionRepository
	answer     repositories.AnswerRepository
	result     repositories.ResultRepository
	proctoring repositories.ProctoringRepository
	enrollment repositories.EnrollmentRepository
	user       repositories.UserRepository
}

func NewPostgreSQLRepository(db *gorm.DB, userRepo repositories.UserRepository) repositories.Repository {
	return &PostgreSQLRepository{
		db:         db,
		exam:       NewExamPostgreSQL(db),
		question:   NewQuestionPostgreSQL(db),
		session:    NewSessionPostgreSQL(db),
		answer:     NewAnswerPostgreSQL(db),
		result:     NewResultPostgreSQL(db),
		proctoring: NewProctoringPostgreSQL(db),
		enrollment: NewEnrollmentPostgreSQL(db),
		user:       userRepo,
	}
}

func (r *PostgreSQLRepository) Exam() repositories.ExamRepository             { return r.exam }
func (r *PostgreSQLRepository) Question() repositories.QuestionRepository    { return r.question }
func (r *PostgreSQLRepository) Session() repositories.SessionRepository      { return r.session }
func (r *PostgreSQLRepository) Answer() repositories.AnswerRepository        { return r.answer }
func (r *PostgreSQLRepository) Result() repositories.ResultRepository        { return r.result }
func (r *PostgreSQLRepository) Proctoring() repositories.ProctoringRepository {
	return r.proctoring
}
func (r *PostgreSQLRepository) Enrollment() repositories.EnrollmentRepository {
	return r.enrollment
}
func (r *PostgreSQLRepository) User() repositories.UserRepository { return r.user }

// WithTransaction runs fn with a Repository whose entity repositories are all
// bound to the same transaction.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repo repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := NewPostgreSQLRepository(tx, r.user)
		return fn(txRepo)
	})
}

func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

// ===== REPOSITORY MANAGER =====

type PostgreSQLRepositoryManager struct {
	db   *gorm.DB
	repo repositories.Repository
}

func NewRepositoryManager(db *gorm.DB, userRepo repositories.UserRepository) repositories.RepositoryManager {
	return &PostgreSQLRepositoryManager{
		db:   db,
		repo: NewPostgreSQLRepository(db, userRepo),
	}
}

// Initialize migrates the schema.
func (m *PostgreSQLRepositoryManager) Initialize(ctx context.Context) error {
	err := m.db.WithContext(ctx).AutoMigrate(
		&models.Course{},
		&models.Enrollment{},
		&models.Question{},
		&models.Exam{},
		&models.ExamRules{},
		&models.ExamQuestion{},
		&models.ExamSession{},
		&models.Answer{},
		&models.Result{},
		&models.SuspiciousEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// At most one in-progress session per (exam, student). AutoMigrate
	// cannot express a partial index, so it is created by hand; the insert
	// of a second concurrent session fails with a unique violation.
	err = m.db.WithContext(ctx).Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_exam_student_in_progress
		 ON exam_sessions (exam_id, student_id)
		 WHERE status IN ('pending', 'active')`).Error
	if err != nil {
		return fmt.Errorf("failed to create in-progress session index: %w", err)
	}

	return nil
}

func (m *PostgreSQLRepositoryManager) GetRepository() repositories.Repository {
	return m.repo
}

func (m *PostgreSQLRepositoryManager) HealthCheck(ctx context.Context) error {
	return m.repo.Ping(ctx)
}

func (m *PostgreSQLRepositoryManager) Shutdown(ctx context.Context) error {
	return m.repo.Close()
}
