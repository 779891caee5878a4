package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/examstack/exam-service/internal/models"
)

// IsNotFoundError reports whether err means the record does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ===== FILTERS =====

type ExamFilters struct {
	CourseID  *uint
	Published *bool
	CreatedBy string
	Limit     int
	Offset    int
}

type SessionFilters struct {
	ExamID    *uint
	StudentID string
	Status    *models.SessionStatus
	Limit     int
	Offset    int
}

type UserFilters struct {
	Query  string
	Limit  int
	Offset int
}

// ===== EXAM =====

type ExamRepository interface {
	Create(ctx context.Context, tx *gorm.DB, exam *models.Exam) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error)
	// GetWithQuestions loads the exam with its rules and ordered questions.
	GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Exam, error)
	Update(ctx context.Context, tx *gorm.DB, exam *models.Exam) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters ExamFilters) ([]*models.Exam, int64, error)
	SetPublished(ctx context.Context, tx *gorm.DB, id uint, published bool) error
	UpsertRules(ctx context.Context, tx *gorm.DB, rules *models.ExamRules) error
}

// ===== QUESTION =====

type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Question, error)
	AttachToExam(ctx context.Context, tx *gorm.DB, examID, questionID uint, position int) error
	DetachFromExam(ctx context.Context, tx *gorm.DB, examID, questionID uint) error
}

// ===== SESSION =====

type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamSession, error)
	// GetByStudentAndExam returns every session the student has for the exam,
	// newest first.
	GetByStudentAndExam(ctx context.Context, tx *gorm.DB, studentID string, examID uint) ([]*models.ExamSession, error)
	Update(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error
	// UpdateStatusIf performs a conditional status transition and reports how
	// many rows changed. Zero rows means the session was not in any of the
	// expected states.
	UpdateStatusIf(ctx context.Context, tx *gorm.DB, id uint, expected []models.SessionStatus, updates map[string]interface{}) (int64, error)
	List(ctx context.Context, tx *gorm.DB, filters SessionFilters) ([]*models.ExamSession, int64, error)
}

// ===== ANSWER =====

type AnswerRepository interface {
	Upsert(ctx context.Context, tx *gorm.DB, answer *models.Answer) error
	UpsertBatch(ctx context.Context, tx *gorm.DB, answers []*models.Answer) error
	GetBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*models.Answer, error)
	GetBySessionAndQuestion(ctx context.Context, tx *gorm.DB, sessionID, questionID uint) (*models.Answer, error)
}

// ===== RESULT =====

type ResultRepository interface {
	// Upsert creates or replaces the single result row for a session.
	Upsert(ctx context.Context, tx *gorm.DB, result *models.Result) error
	GetBySession(ctx context.Context, tx *gorm.DB, sessionID uint) (*models.Result, error)
	ListByExam(ctx context.Context, tx *gorm.DB, examID uint) ([]*models.Result, error)
	// SetPublishedByExam flips visibility for every result of an exam and
	// returns the number of rows touched.
	SetPublishedByExam(ctx context.Context, tx *gorm.DB, examID uint, published bool) (int64, error)
}

// ===== PROCTORING =====

// ProctoringRepository is append-only: events are evidence and are never
// updated or deleted.
type ProctoringRepository interface {
	Create(ctx context.Context, tx *gorm.DB, event *models.SuspiciousEvent) error
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*models.SuspiciousEvent, error)
	CountBySession(ctx context.Context, tx *gorm.DB, sessionID uint) (int64, error)
}

// ===== ENROLLMENT =====

type EnrollmentRepository interface {
	IsEnrolled(ctx context.Context, tx *gorm.DB, courseID uint, studentID string) (bool, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Enrollment, error)
}

// ===== USER =====

// UserRepository is read-only: this service does not own user data.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
}
