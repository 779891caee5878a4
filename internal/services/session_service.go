package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/examstack/exam-service/internal/cache"
	"github.com/examstack/exam-service/internal/events"
	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"github.com/examstack/exam-service/internal/validator"
)

type sessionService struct {
	repo      repositories.Repository
	cache     *cache.CacheManager
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSessionService(
	repo repositories.Repository,
	cacheManager *cache.CacheManager,
	publisher events.EventPublisher,
	logger *slog.Logger,
	v *validator.Validator,
) SessionService {
	return &sessionService{
		repo:      repo,
		cache:     cacheManager,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// Start creates a new session or resumes an in-progress one. The check and
// the create run inside one transaction so two concurrent starts cannot both
// pass the attempt limit.
func (s *sessionService) Start(ctx context.Context, studentID string, req StartSessionRequest) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exam, err := s.repo.Exam().GetByID(ctx, nil, req.ExamID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	if !exam.Published {
		return nil, ErrExamNotPublished
	}

	enrolled, err := s.repo.Enrollment().IsEnrolled(ctx, nil, exam.CourseID, studentID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	response, err := s.startAttempt(ctx, studentID, req, exam)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a create race: the partial unique index on in-progress
		// sessions rejected the insert. The winner's session is committed
		// by now, so a second pass resumes it.
		response, err = s.startAttempt(ctx, studentID, req, exam)
	}
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.NewSessionStartedEvent(
		response.Session.ID, req.ExamID, studentID, response.Resumed))

	s.logger.InfoContext(ctx, "session started",
		"session_id", response.Session.ID,
		"exam_id", req.ExamID,
		"student_id", studentID,
		"resumed", response.Resumed,
	)

	return response, nil
}

func (s *sessionService) startAttempt(ctx context.Context, studentID string, req StartSessionRequest, exam *models.Exam) (*SessionResponse, error) {
	var response *SessionResponse
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		prior, err := txRepo.Session().GetByStudentAndExam(ctx, nil, studentID, req.ExamID)
		if err != nil {
			return err
		}

		decision := ResolveAttempt(exam.Rules, prior)
		switch decision.Action {
		case AttemptResume:
			response = &SessionResponse{Session: decision.Session, Resumed: true}
			return nil
		case AttemptReject:
			return ErrAttemptsExhausted
		}

		now := time.Now()
		session := &models.ExamSession{
			ExamID:    req.ExamID,
			StudentID: studentID,
			Status:    models.SessionActive,
			StartedAt: &now,
			IPAddress: req.IPAddress,
		}
		if err := txRepo.Session().Create(ctx, nil, session); err != nil {
			return err
		}

		response = &SessionResponse{Session: session}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// SaveAnswer stores a response mid-session without grading it. Grading only
// happens at submit time, so a saved answer can be overwritten freely.
func (s *sessionService) SaveAnswer(ctx context.Context, studentID string, sessionID uint, req SaveAnswerRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	session, err := s.getOwnedSession(ctx, studentID, sessionID)
	if err != nil {
		return err
	}
	if !session.Status.IsInProgress() {
		return ErrSessionNotActive
	}

	answer := &models.Answer{
		SessionID:  sessionID,
		QuestionID: req.QuestionID,
		Response:   datatypes.JSON(req.Response),
	}
	if err := s.repo.Answer().Upsert(ctx, nil, answer); err != nil {
		return err
	}

	s.cache.InvalidateSession(ctx, sessionID, session.ExamID)
	return nil
}

// Submit closes the session and grades it. Every question on the exam is
// graded, answered or not, so MaxScore always reflects the full exam. The
// status flip is a conditional update: under a double submit exactly one
// caller wins and the other gets ErrAlreadySubmitted.
func (s *sessionService) Submit(ctx context.Context, studentID string, sessionID uint, req SubmitSessionRequest) (*ResultResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	session, err := s.getOwnedSession(ctx, studentID, sessionID)
	if err != nil {
		return nil, err
	}

	exam, err := s.repo.Exam().GetWithQuestions(ctx, nil, session.ExamID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}

	// Answers saved during the session are the base; the submit payload
	// overrides them, so a client that saved incrementally need not resend.
	responses := mergeResponses(session.Answers, req.Answers)

	var result *models.Result
	var answers []*models.Answer
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		now := time.Now()
		rows, err := txRepo.Session().UpdateStatusIf(ctx, nil, sessionID,
			[]models.SessionStatus{models.SessionPending, models.SessionActive},
			map[string]interface{}{
				"status":       models.SessionSubmitted,
				"submitted_at": now,
			})
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadySubmitted
		}

		graded := gradeSubmission(exam, responses)
		answers = graded.Answers
		for _, answer := range answers {
			answer.SessionID = sessionID
		}
		if err := txRepo.Answer().UpsertBatch(ctx, nil, answers); err != nil {
			return err
		}

		aggregate := Aggregate(graded.TotalScore, graded.MaxScore,
			exam.Rules.EffectivePassThreshold(), graded.NeedsManualGrading)
		aggregate.SessionID = sessionID
		if err := txRepo.Result().Upsert(ctx, nil, &aggregate); err != nil {
			return err
		}

		result = &aggregate
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateSession(ctx, sessionID, session.ExamID)
	s.cache.InvalidateResult(ctx, sessionID, session.ExamID)

	s.publishEvent(ctx, events.NewSessionSubmittedEvent(events.SessionSubmittedData{
		SessionID:          sessionID,
		ExamID:             session.ExamID,
		StudentID:          studentID,
		TotalScore:         result.TotalScore,
		MaxScore:           result.MaxScore,
		Percentage:         result.Percentage,
		Passed:             result.Passed,
		NeedsManualGrading: result.NeedsManualGrading,
	}))
	if result.NeedsManualGrading {
		s.publishEvent(ctx, events.NewManualGradingNeededEvent(sessionID, session.ExamID, studentID))
	}

	s.logger.InfoContext(ctx, "session submitted",
		"session_id", sessionID,
		"exam_id", session.ExamID,
		"total_score", result.TotalScore,
		"max_score", result.MaxScore,
		"percentage", result.Percentage,
		"needs_manual_grading", result.NeedsManualGrading,
	)

	return &ResultResponse{Result: result, Answers: answers}, nil
}

// Terminate force-closes a session, typically on time expiry or a proctoring
// violation. Terminating an already-closed session is a no-op: a submitted
// session's result stays untouched.
func (s *sessionService) Terminate(ctx context.Context, actorID string, sessionID uint, req TerminateSessionRequest) error {
	session, err := s.repo.Session().GetByID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSessionNotFound
		}
		return err
	}

	if session.Status.IsTerminal() {
		return nil
	}

	updates := map[string]interface{}{
		"status": models.SessionTerminated,
	}
	if req.Reason != "" {
		updates["termination_reason"] = req.Reason
	}

	rows, err := s.repo.Session().UpdateStatusIf(ctx, nil, sessionID,
		[]models.SessionStatus{models.SessionPending, models.SessionActive}, updates)
	if err != nil {
		return err
	}
	if rows == 0 {
		// Lost a race against a submit or another terminate; both leave the
		// session terminal, which is all this call guarantees.
		return nil
	}

	s.cache.InvalidateSession(ctx, sessionID, session.ExamID)

	s.publishEvent(ctx, events.NewSessionTerminatedEvent(
		sessionID, session.ExamID, session.StudentID, req.Reason))

	s.logger.InfoContext(ctx, "session terminated",
		"session_id", sessionID,
		"actor_id", actorID,
		"reason", req.Reason,
	)

	return nil
}

func (s *sessionService) Get(ctx context.Context, actorID string, actorRole models.UserRole, sessionID uint) (*models.ExamSession, error) {
	session, err := s.repo.Session().GetByID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	// Students see only their own sessions; faculty and admin see all.
	if actorRole == models.RoleStudent && session.StudentID != actorID {
		return nil, NewPermissionError(actorID, sessionID, "session", "read", "not the session owner")
	}

	return session, nil
}

func (s *sessionService) ListByExam(ctx context.Context, examID uint, limit, offset int) ([]*models.ExamSession, int64, error) {
	return s.repo.Session().List(ctx, nil, repositories.SessionFilters{
		ExamID: &examID,
		Limit:  limit,
		Offset: offset,
	})
}

// ===== HELPERS =====

func (s *sessionService) getOwnedSession(ctx context.Context, studentID string, sessionID uint) (*models.ExamSession, error) {
	session, err := s.repo.Session().GetByID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.StudentID != studentID {
		return nil, NewPermissionError(studentID, sessionID, "session", "write", "not the session owner")
	}
	return session, nil
}

func (s *sessionService) publishEvent(ctx context.Context, event *events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		// Event delivery is best-effort; the state change already committed.
		s.logger.WarnContext(ctx, "failed to publish event",
			"event_type", event.Type, "error", err)
	}
}
