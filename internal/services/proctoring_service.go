package services

import (
	"context"
	"log/slog"

	"gorm.io/datatypes"

	"github.com/examstack/exam-service/internal/events"
	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
)

// flagSeverityThreshold is the severity at or above which a recorded event
// also raises a proctoring.flagged notification for invigilators.
const flagSeverityThreshold = 4

type proctoringService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewProctoringService(
	repo repositories.Repository,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) ProctoringService {
	return &proctoringService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// Record appends a suspicious event to the session's evidence log. Events on
// closed sessions are still accepted: a screenshot upload may land after the
// session was terminated.
func (s *proctoringService) Record(ctx context.Context, sessionID uint, req RecordEventRequest) (*models.SuspiciousEvent, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Session().GetByID(ctx, nil, sessionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	event := &models.SuspiciousEvent{
		SessionID:     sessionID,
		Type:          req.Type,
		Severity:      req.Severity,
		Data:          datatypes.JSON(req.Data),
		ScreenshotURL: req.ScreenshotURL,
	}
	if err := s.repo.Proctoring().Create(ctx, nil, event); err != nil {
		return nil, err
	}

	if req.Severity >= flagSeverityThreshold {
		if err := s.publisher.Publish(ctx, events.NewProctoringFlaggedEvent(
			sessionID, string(req.Type), req.Severity)); err != nil {
			s.logger.WarnContext(ctx, "failed to publish event", "error", err)
		}
	}

	s.logger.InfoContext(ctx, "suspicious event recorded",
		"session_id", sessionID,
		"type", req.Type,
		"severity", req.Severity,
	)

	return event, nil
}

func (s *proctoringService) List(ctx context.Context, sessionID uint) ([]*models.SuspiciousEvent, error) {
	if _, err := s.repo.Session().GetByID(ctx, nil, sessionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return s.repo.Proctoring().ListBySession(ctx, nil, sessionID)
}
