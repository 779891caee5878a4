package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/examstack/exam-service/internal/models"
)

// ===== REQUEST DTOS =====

type StartSessionRequest struct {
	ExamID    uint    `json:"exam_id" validate:"required"`
	IPAddress *string `json:"ip_address,omitempty"`
}

// AnswerSubmission is one answer inside a submit payload. Response stays raw
// JSON because its shape depends on the question type.
type AnswerSubmission struct {
	QuestionID uint            `json:"question_id" validate:"required"`
	Response   json.RawMessage `json:"response"`
}

type SubmitSessionRequest struct {
	Answers []AnswerSubmission `json:"answers" validate:"dive"`
}

type SaveAnswerRequest struct {
	QuestionID uint            `json:"question_id" validate:"required"`
	Response   json.RawMessage `json:"response"`
}

type TerminateSessionRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ManualGrade is a grader's score for a single answer.
type ManualGrade struct {
	QuestionID uint    `json:"question_id" validate:"required"`
	Score      float64 `json:"score" validate:"min=0"`
}

// ApplyManualGradesRequest carries the grader's per-answer scores together
// with the recomputed aggregate. The aggregate values are trusted as given.
type ApplyManualGradesRequest struct {
	Grades     []ManualGrade `json:"grades" validate:"required,min=1,dive"`
	TotalScore float64       `json:"total_score" validate:"min=0"`
	Percentage float64       `json:"percentage" validate:"pass_threshold"`
	Passed     bool          `json:"passed"`
}

type RecordEventRequest struct {
	Type          models.SuspiciousEventType `json:"type" validate:"required"`
	Severity      int                        `json:"severity" validate:"severity_range"`
	Data          json.RawMessage            `json:"data,omitempty"`
	ScreenshotURL *string                    `json:"screenshot_url,omitempty"`
}

type CreateExamRequest struct {
	CourseID uint       `json:"course_id" validate:"required"`
	Title    string     `json:"title" validate:"required,exam_title"`
	Duration int        `json:"duration" validate:"required,exam_duration"`
	StartAt  *time.Time `json:"start_at,omitempty"`
	EndAt    *time.Time `json:"end_at,omitempty"`
}

// CreateQuestionRequest carries a new question for the course bank. Content
// is validated against the schema of the declared question type.
type CreateQuestionRequest struct {
	CourseID uint                `json:"course_id" validate:"required"`
	Type     models.QuestionType `json:"type" validate:"required,question_type"`
	Text     string              `json:"text" validate:"required"`
	Points   int                 `json:"points" validate:"points_range"`
	Content  json.RawMessage     `json:"content" validate:"required"`
}

type AttachQuestionRequest struct {
	QuestionID uint `json:"question_id" validate:"required"`
	Position   int  `json:"position" validate:"min=0"`
}

type UpdateExamRulesRequest struct {
	MaxAttempts   int     `json:"max_attempts" validate:"max_attempts"`
	PassThreshold float64 `json:"pass_threshold" validate:"pass_threshold"`
}

// ===== RESPONSE DTOS =====

type SessionResponse struct {
	Session *models.ExamSession `json:"session"`
	// Resumed is true when the session was an existing in-progress one.
	Resumed bool `json:"resumed"`
}

type ResultResponse struct {
	Result  *models.Result   `json:"result"`
	Answers []*models.Answer `json:"answers,omitempty"`
	// SuspiciousEventCount is filled on grader views only.
	SuspiciousEventCount int64 `json:"suspicious_event_count,omitempty"`
}

type ExamResultsOverview struct {
	ExamID       uint             `json:"exam_id"`
	Results      []*models.Result `json:"results"`
	Submitted    int              `json:"submitted"`
	Passed       int              `json:"passed"`
	PendingGrade int              `json:"pending_grade"`
	AverageScore float64          `json:"average_score"`
}

// ===== SERVICE INTERFACES =====

type SessionService interface {
	// Start creates a new session or resumes an in-progress one, enforcing
	// enrollment and attempt limits.
	Start(ctx context.Context, studentID string, req StartSessionRequest) (*SessionResponse, error)
	// SaveAnswer persists one answer mid-session without grading it.
	SaveAnswer(ctx context.Context, studentID string, sessionID uint, req SaveAnswerRequest) error
	// Submit grades every exam question, persists answers and the aggregated
	// result, and closes the session. It is strict: a second submit fails.
	Submit(ctx context.Context, studentID string, sessionID uint, req SubmitSessionRequest) (*ResultResponse, error)
	// Terminate force-closes a session. Idempotent on already-closed sessions.
	Terminate(ctx context.Context, actorID string, sessionID uint, req TerminateSessionRequest) error
	Get(ctx context.Context, actorID string, actorRole models.UserRole, sessionID uint) (*models.ExamSession, error)
	ListByExam(ctx context.Context, examID uint, limit, offset int) ([]*models.ExamSession, int64, error)
}

type ResultService interface {
	// GetForStudent returns the student's own result, only when published.
	GetForStudent(ctx context.Context, studentID string, sessionID uint) (*ResultResponse, error)
	// GetForGrader returns a result regardless of publication state.
	GetForGrader(ctx context.Context, sessionID uint) (*ResultResponse, error)
	ApplyManualGrades(ctx context.Context, graderID string, sessionID uint, req ApplyManualGradesRequest) (*models.Result, error)
	// Publish flips visibility for every result of an exam.
	Publish(ctx context.Context, examID uint, published bool) (int64, error)
	Overview(ctx context.Context, examID uint) (*ExamResultsOverview, error)
	// ExportResults renders the exam's results as an XLSX workbook.
	ExportResults(ctx context.Context, examID uint) ([]byte, error)
}

type ProctoringService interface {
	Record(ctx context.Context, sessionID uint, req RecordEventRequest) (*models.SuspiciousEvent, error)
	List(ctx context.Context, sessionID uint) ([]*models.SuspiciousEvent, error)
}

type ExamService interface {
	Create(ctx context.Context, creatorID string, req CreateExamRequest) (*models.Exam, error)
	Get(ctx context.Context, examID uint) (*models.Exam, error)
	GetWithQuestions(ctx context.Context, examID uint) (*models.Exam, error)
	SetPublished(ctx context.Context, actorID string, examID uint, published bool) error
	UpdateRules(ctx context.Context, actorID string, examID uint, req UpdateExamRulesRequest) (*models.ExamRules, error)
}

type QuestionService interface {
	// Create validates the content payload against the question type's schema
	// before storing it.
	Create(ctx context.Context, creatorID string, req CreateQuestionRequest) (*models.Question, error)
	Get(ctx context.Context, questionID uint) (*models.Question, error)
	ListByCourse(ctx context.Context, courseID uint) ([]*models.Question, error)
	// AttachToExam links a bank question into an exam at a position. Rejected
	// once the exam is published.
	AttachToExam(ctx context.Context, actorID string, examID uint, req AttachQuestionRequest) error
	DetachFromExam(ctx context.Context, actorID string, examID, questionID uint) error
}
