package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/examstack/exam-service/internal/cache"
	"github.com/examstack/exam-service/internal/events"
	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
)

// Aggregate computes the result row for a session from its score totals.
// Percentage is rounded to two decimals; a max score of zero yields zero
// instead of dividing. FinalizedAt is set immediately unless manual grading
// is still pending.
func Aggregate(totalScore, maxScore, passThreshold float64, needsManualGrading bool) models.Result {
	var percentage float64
	if maxScore > 0 {
		percentage = round2(totalScore / maxScore * 100)
	}

	result := models.Result{
		TotalScore:         totalScore,
		MaxScore:           maxScore,
		Percentage:         percentage,
		Passed:             percentage >= passThreshold,
		NeedsManualGrading: needsManualGrading,
	}

	if !needsManualGrading {
		now := time.Now()
		result.FinalizedAt = &now
	}

	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ===== SERVICE =====

type resultService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewResultService(
	repo repositories.Repository,
	cacheManager *cache.CacheManager,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) ResultService {
	return &resultService{
		repo:      repo,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// GetForStudent returns the student's own result, and only once published.
// An unpublished result looks the same as a missing one to the student.
func (s *resultService) GetForStudent(ctx context.Context, studentID string, sessionID uint) (*ResultResponse, error) {
	session, err := s.repo.Session().GetByID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.StudentID != studentID {
		return nil, NewPermissionError(studentID, sessionID, "result", "read", "not the session owner")
	}

	result, err := s.getResult(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !result.IsPublished {
		return nil, ErrResultNotFound
	}

	answers, err := s.repo.Answer().GetBySession(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}

	return &ResultResponse{Result: result, Answers: answers}, nil
}

func (s *resultService) GetForGrader(ctx context.Context, sessionID uint) (*ResultResponse, error) {
	result, err := s.getResult(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	answers, err := s.repo.Answer().GetBySession(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}

	eventCount, err := s.repo.Proctoring().CountBySession(ctx, nil, sessionID)
	if err != nil {
		return nil, err
	}

	return &ResultResponse{
		Result:               result,
		Answers:              answers,
		SuspiciousEventCount: eventCount,
	}, nil
}

// ApplyManualGrades records a grader's scores for the session's manually
// graded answers and replaces the aggregate with the caller-supplied totals.
// The totals are trusted as given; recomputing them here would discard any
// partial credit policy the grader applied. FinalizedAt is always set, even
// when some answers remain ungraded.
func (s *resultService) ApplyManualGrades(ctx context.Context, graderID string, sessionID uint, req ApplyManualGradesRequest) (*models.Result, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	session, err := s.repo.Session().GetByID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var updated *models.Result
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		now := time.Now()

		for _, grade := range req.Grades {
			answer, err := txRepo.Answer().GetBySessionAndQuestion(ctx, nil, sessionID, grade.QuestionID)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					return ErrQuestionNotFound
				}
				return err
			}

			score := grade.Score
			answer.ManualScore = &score
			answer.GradedBy = &graderID
			answer.GradedAt = &now
			if err := txRepo.Answer().Upsert(ctx, nil, answer); err != nil {
				return err
			}
		}

		result, err := txRepo.Result().GetBySession(ctx, nil, sessionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrResultNotFound
			}
			return err
		}

		result.TotalScore = req.TotalScore
		result.Percentage = req.Percentage
		result.Passed = req.Passed
		result.NeedsManualGrading = false
		result.FinalizedAt = &now

		if err := txRepo.Result().Upsert(ctx, nil, result); err != nil {
			return err
		}

		updated = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateResult(ctx, sessionID, session.ExamID)

	if err := s.publisher.Publish(ctx, events.NewManualGradesAppliedEvent(
		sessionID, session.ExamID, session.StudentID, graderID)); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "error", err)
	}

	s.logger.InfoContext(ctx, "manual grades applied",
		"session_id", sessionID,
		"grader_id", graderID,
		"total_score", updated.TotalScore,
		"percentage", updated.Percentage,
	)

	return updated, nil
}

// Publish flips result visibility for an entire exam at once.
func (s *resultService) Publish(ctx context.Context, examID uint, published bool) (int64, error) {
	if _, err := s.repo.Exam().GetByID(ctx, nil, examID); err != nil {
		if repositories.IsNotFoundError(err) {
			return 0, ErrExamNotFound
		}
		return 0, err
	}

	count, err := s.repo.Result().SetPublishedByExam(ctx, nil, examID, published)
	if err != nil {
		return 0, err
	}

	s.cache.SafeInvalidatePattern(ctx, s.cache.Result, fmt.Sprintf("exam:%d:*", examID))
	s.cache.SafeInvalidatePattern(ctx, s.cache.Result, "session:*")

	if err := s.publisher.Publish(ctx, events.NewResultPublishedEvent(examID, published, int(count))); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "error", err)
	}

	s.logger.InfoContext(ctx, "results publication changed",
		"exam_id", examID, "published", published, "count", count)

	return count, nil
}

func (s *resultService) Overview(ctx context.Context, examID uint) (*ExamResultsOverview, error) {
	results, err := s.repo.Result().ListByExam(ctx, nil, examID)
	if err != nil {
		return nil, err
	}

	overview := &ExamResultsOverview{
		ExamID:  examID,
		Results: results,
	}

	var scoreSum float64
	for _, result := range results {
		overview.Submitted++
		if result.Passed {
			overview.Passed++
		}
		if result.NeedsManualGrading {
			overview.PendingGrade++
		}
		scoreSum += result.Percentage
	}
	if overview.Submitted > 0 {
		overview.AverageScore = round2(scoreSum / float64(overview.Submitted))
	}

	return overview, nil
}

// ExportResults renders the exam's results as an XLSX workbook for faculty.
func (s *resultService) ExportResults(ctx context.Context, examID uint) ([]byte, error) {
	exam, err := s.repo.Exam().GetByID(ctx, nil, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	results, err := s.repo.Result().ListByExam(ctx, nil, examID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Session ID", "Student ID", "Total Score", "Max Score", "Percentage", "Passed", "Pending Manual Grading", "Finalized At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, result := range results {
		finalized := ""
		if result.FinalizedAt != nil {
			finalized = result.FinalizedAt.Format(time.RFC3339)
		}

		values := []interface{}{
			result.SessionID,
			result.Session.StudentID,
			result.TotalScore,
			result.MaxScore,
			result.Percentage,
			result.Passed,
			result.NeedsManualGrading,
			finalized,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render results export: %w", err)
	}

	s.logger.InfoContext(ctx, "results exported",
		"exam_id", examID, "exam_title", exam.Title, "rows", len(results))

	return buf.Bytes(), nil
}

func (s *resultService) getResult(ctx context.Context, sessionID uint) (*models.Result, error) {
	var result models.Result
	err := s.cache.Result.CacheOrExecute(ctx, &result, cache.ResultCacheTTL, func() (interface{}, error) {
		stored, err := s.repo.Result().GetBySession(ctx, nil, sessionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, ErrResultNotFound
			}
			return nil, err
		}
		return stored, nil
	}, "session", fmt.Sprintf("%d", sessionID))
	if err != nil {
		return nil, err
	}
	return &result, nil
}
