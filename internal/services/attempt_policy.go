package services

import (
	"github.com/examstack/exam-service/internal/models"
)

// AttemptAction is the outcome of evaluating a start request against the
// student's prior sessions.
type AttemptAction int

const (
	// AttemptCreate allows a fresh session.
	AttemptCreate AttemptAction = iota
	// AttemptResume returns an existing in-progress session instead of
	// creating a new one.
	AttemptResume
	// AttemptReject refuses the request because completed attempts already
	// reached the exam's limit.
	AttemptReject
)

// AttemptDecision pairs the action with the session to resume, when any.
type AttemptDecision struct {
	Action  AttemptAction
	Session *models.ExamSession
}

// ResolveAttempt decides how a start request is handled given the student's
// prior sessions for the exam. An in-progress session always wins: the
// student resumes it and no attempt is consumed. Only completed sessions
// count against the attempt limit; when the exam carries no rules the limit
// defaults to one.
func ResolveAttempt(rules *models.ExamRules, prior []*models.ExamSession) AttemptDecision {
	var completed int
	for _, session := range prior {
		if session.Status.IsInProgress() {
			return AttemptDecision{Action: AttemptResume, Session: session}
		}
		if session.Status.IsTerminal() {
			completed++
		}
	}

	if completed >= rules.EffectiveMaxAttempts() {
		return AttemptDecision{Action: AttemptReject}
	}

	return AttemptDecision{Action: AttemptCreate}
}
