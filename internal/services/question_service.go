package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"gorm.io/datatypes"

	"github.com/examstack/exam-service/internal/cache"
	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(
	repo repositories.Repository,
	cacheManager *cache.CacheManager,
	logger *slog.Logger,
	v *validator.Validator,
) QuestionService {
	return &questionService{
		repo:      repo,
		cache:     cacheManager,
		logger:    logger,
		validator: v,
	}
}

func (s *questionService) Create(ctx context.Context, creatorID string, req CreateQuestionRequest) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := validateQuestionContent(req.Type, req.Content); err != nil {
		return nil, err
	}

	question := &models.Question{
		CourseID:  req.CourseID,
		Type:      req.Type,
		Text:      req.Text,
		Points:    req.Points,
		Content:   datatypes.JSON(req.Content),
		CreatedBy: creatorID,
	}
	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "question created",
		"question_id", question.ID,
		"course_id", req.CourseID,
		"type", req.Type,
		"created_by", creatorID,
	)

	return question, nil
}

func (s *questionService) Get(ctx context.Context, questionID uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return question, nil
}

func (s *questionService) ListByCourse(ctx context.Context, courseID uint) ([]*models.Question, error) {
	return s.repo.Question().ListByCourse(ctx, nil, courseID)
}

// AttachToExam links a question into an exam. Once an exam is published its
// question set is frozen, so students on different attempts see the same exam.
func (s *questionService) AttachToExam(ctx context.Context, actorID string, examID uint, req AttachQuestionRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	exam, err := s.lockExamForEdit(ctx, actorID, examID)
	if err != nil {
		return err
	}

	if _, err := s.repo.Question().GetByID(ctx, nil, req.QuestionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return err
	}

	if err := s.repo.Question().AttachToExam(ctx, nil, examID, req.QuestionID, req.Position); err != nil {
		return err
	}

	s.cache.InvalidateExam(ctx, examID)

	s.logger.InfoContext(ctx, "question attached to exam",
		"exam_id", exam.ID,
		"question_id", req.QuestionID,
		"position", req.Position,
		"actor_id", actorID,
	)

	return nil
}

func (s *questionService) DetachFromExam(ctx context.Context, actorID string, examID, questionID uint) error {
	if _, err := s.lockExamForEdit(ctx, actorID, examID); err != nil {
		return err
	}

	if err := s.repo.Question().DetachFromExam(ctx, nil, examID, questionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return err
	}

	s.cache.InvalidateExam(ctx, examID)

	s.logger.InfoContext(ctx, "question detached from exam",
		"exam_id", examID,
		"question_id", questionID,
		"actor_id", actorID,
	)

	return nil
}

// lockExamForEdit loads the exam and verifies the actor may change its
// question set: the actor owns it (or is admin) and it is not yet published.
func (s *questionService) lockExamForEdit(ctx context.Context, actorID string, examID uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, nil, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	if err := requireExamOwnerOrAdmin(ctx, s.repo, actorID, exam); err != nil {
		return nil, err
	}

	if exam.Published {
		return nil, &BusinessRuleError{
			Rule:    "exam_locked",
			Message: "cannot change questions of a published exam",
			Err:     ErrExamLocked,
		}
	}

	return exam, nil
}

// ===== CONTENT VALIDATION =====

// validateQuestionContent checks that the content payload matches the schema
// of the question type, so every stored question is gradable at submit time.
func validateQuestionContent(questionType models.QuestionType, content json.RawMessage) error {
	switch questionType {
	case models.MultipleChoice:
		var schema models.MultipleChoiceContent
		if err := json.Unmarshal(content, &schema); err != nil {
			return contentError("must be a valid multiple choice payload")
		}
		if len(schema.Options) < 2 {
			return contentError("must offer at least two options")
		}
		if schema.CorrectAnswer == "" {
			return contentError("must declare a correct answer")
		}

	case models.MultipleSelect:
		var schema models.MultipleSelectContent
		if err := json.Unmarshal(content, &schema); err != nil {
			return contentError("must be a valid multiple select payload")
		}
		if len(schema.Options) < 2 {
			return contentError("must offer at least two options")
		}
		if len(schema.CorrectAnswers) == 0 {
			return contentError("must declare at least one correct answer")
		}

	case models.TrueFalse:
		var schema models.TrueFalseContent
		if err := json.Unmarshal(content, &schema); err != nil {
			return contentError("must be a valid true/false payload")
		}
		answer := strings.ToLower(strings.TrimSpace(schema.CorrectAnswer))
		if answer != "true" && answer != "false" {
			return contentError("correct answer must be true or false")
		}

	case models.ShortAnswer:
		var schema models.ShortAnswerContent
		if err := json.Unmarshal(content, &schema); err != nil {
			return contentError("must be a valid short answer payload")
		}
		if strings.TrimSpace(schema.CorrectAnswer) == "" {
			return contentError("must declare a correct answer")
		}

	case models.Numerical:
		var schema models.NumericalContent
		if err := json.Unmarshal(content, &schema); err != nil {
			return contentError("must be a valid numerical payload")
		}

	case models.Essay:
		var schema models.EssayContent
		if err := json.Unmarshal(content, &schema); err != nil {
			return contentError("must be a valid essay payload")
		}

	case models.Code:
		var schema models.CodeContent
		if err := json.Unmarshal(content, &schema); err != nil {
			return contentError("must be a valid code payload")
		}

	default:
		return contentError("unknown question type")
	}

	return nil
}

func contentError(message string) error {
	return validator.ValidationErrors{{
		Field:   "Content",
		Message: message,
		Rule:    "question_content",
	}}
}
