package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/examstack/exam-service/internal/cache"
	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
)

type examService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	logger    *slog.Logger
	validator *validator.Validator
}

func NewExamService(
	repo repositories.Repository,
	cacheManager *cache.CacheManager,
	logger *slog.Logger,
	v *validator.Validator,
) ExamService {
	return &examService{
		repo:      repo,
		cache:     cacheManager,
		logger:    logger,
		validator: v,
	}
}

func (s *examService) Create(ctx context.Context, creatorID string, req CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exam := &models.Exam{
		CourseID:  req.CourseID,
		Title:     req.Title,
		Duration:  req.Duration,
		StartAt:   req.StartAt,
		EndAt:     req.EndAt,
		CreatedBy: creatorID,
	}
	if err := s.repo.Exam().Create(ctx, nil, exam); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "exam created",
		"exam_id", exam.ID, "course_id", req.CourseID, "created_by", creatorID)

	return exam, nil
}

func (s *examService) Get(ctx context.Context, examID uint) (*models.Exam, error) {
	var exam models.Exam
	err := s.cache.Exam.CacheOrExecute(ctx, &exam, cache.ExamCacheTTL, func() (interface{}, error) {
		stored, err := s.repo.Exam().GetByID(ctx, nil, examID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrExamNotFound
			}
			return nil, err
		}
		return stored, nil
	}, fmt.Sprintf("%d", examID))
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (s *examService) GetWithQuestions(ctx context.Context, examID uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetWithQuestions(ctx, nil, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return exam, nil
}

func (s *examService) SetPublished(ctx context.Context, actorID string, examID uint, published bool) error {
	exam, err := s.repo.Exam().GetByID(ctx, nil, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrExamNotFound
		}
		return err
	}

	if err := requireExamOwnerOrAdmin(ctx, s.repo, actorID, exam); err != nil {
		return err
	}

	if err := s.repo.Exam().SetPublished(ctx, nil, examID, published); err != nil {
		return err
	}

	s.cache.InvalidateExam(ctx, examID)

	s.logger.InfoContext(ctx, "exam publication changed",
		"exam_id", examID, "published", published, "actor_id", actorID)

	return nil
}

func (s *examService) UpdateRules(ctx context.Context, actorID string, examID uint, req UpdateExamRulesRequest) (*models.ExamRules, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

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

	rules := &models.ExamRules{
		ExamID:        examID,
		MaxAttempts:   req.MaxAttempts,
		PassThreshold: req.PassThreshold,
	}
	if err := s.repo.Exam().UpsertRules(ctx, nil, rules); err != nil {
		return nil, err
	}

	s.cache.InvalidateExam(ctx, examID)

	return rules, nil
}

// requireExamOwnerOrAdmin guards mutations of an exam and everything hanging
// off it. Owners always pass; everyone else needs the admin role.
func requireExamOwnerOrAdmin(ctx context.Context, repo repositories.Repository, actorID string, exam *models.Exam) error {
	if exam.CreatedBy == actorID {
		return nil
	}

	isAdmin, err := repo.User().HasRole(ctx, actorID, models.RoleAdmin)
	if err == nil && isAdmin {
		return nil
	}

	return NewPermissionError(actorID, exam.ID, "exam", "update", "not the exam owner")
}
