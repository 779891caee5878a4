package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/examstack/exam-service/internal/models"
)

func session(id uint, status models.SessionStatus) *models.ExamSession {
	return &models.ExamSession{ID: id, Status: status}
}

func TestResolveAttempt_NoHistory(t *testing.T) {
	decision := ResolveAttempt(nil, nil)
	assert.Equal(t, AttemptCreate, decision.Action)
}

func TestResolveAttempt_ResumeInProgress(t *testing.T) {
	prior := []*models.ExamSession{
		session(1, models.SessionActive),
	}

	decision := ResolveAttempt(nil, prior)
	assert.Equal(t, AttemptResume, decision.Action)
	assert.Equal(t, uint(1), decision.Session.ID)
}

func TestResolveAttempt_ResumeWinsOverExhaustion(t *testing.T) {
	// Even with completed attempts at the limit, an in-progress session is
	// resumed rather than rejected.
	rules := &models.ExamRules{MaxAttempts: 1}
	prior := []*models.ExamSession{
		session(2, models.SessionActive),
		session(1, models.SessionSubmitted),
	}

	decision := ResolveAttempt(rules, prior)
	assert.Equal(t, AttemptResume, decision.Action)
	assert.Equal(t, uint(2), decision.Session.ID)
}

func TestResolveAttempt_PendingAlsoResumes(t *testing.T) {
	prior := []*models.ExamSession{session(3, models.SessionPending)}

	decision := ResolveAttempt(nil, prior)
	assert.Equal(t, AttemptResume, decision.Action)
}

func TestResolveAttempt_DefaultSingleAttempt(t *testing.T) {
	// No rules record means one attempt.
	prior := []*models.ExamSession{session(1, models.SessionSubmitted)}

	decision := ResolveAttempt(nil, prior)
	assert.Equal(t, AttemptReject, decision.Action)
}

func TestResolveAttempt_SecondAttemptAllowed(t *testing.T) {
	rules := &models.ExamRules{MaxAttempts: 2}
	prior := []*models.ExamSession{session(1, models.SessionSubmitted)}

	decision := ResolveAttempt(rules, prior)
	assert.Equal(t, AttemptCreate, decision.Action)
}

func TestResolveAttempt_LimitReached(t *testing.T) {
	rules := &models.ExamRules{MaxAttempts: 2}
	prior := []*models.ExamSession{
		session(1, models.SessionSubmitted),
		session(2, models.SessionTerminated),
	}

	decision := ResolveAttempt(rules, prior)
	assert.Equal(t, AttemptReject, decision.Action)
}

func TestResolveAttempt_TerminatedCountsAsCompleted(t *testing.T) {
	prior := []*models.ExamSession{session(1, models.SessionTerminated)}

	decision := ResolveAttempt(nil, prior)
	assert.Equal(t, AttemptReject, decision.Action)
}

func TestResolveAttempt_ZeroMaxAttemptsFallsBackToOne(t *testing.T) {
	rules := &models.ExamRules{MaxAttempts: 0}

	decision := ResolveAttempt(rules, nil)
	assert.Equal(t, AttemptCreate, decision.Action)

	decision = ResolveAttempt(rules, []*models.ExamSession{session(1, models.SessionSubmitted)})
	assert.Equal(t, AttemptReject, decision.Action)
}
