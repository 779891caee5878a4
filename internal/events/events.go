package events

import (
	"time"

	"github.com/google/uuid"
)

// ===== EVENT TYPES =====

type EventType string

const (
	SessionStartedEvent      EventType = "session.started"
	SessionSubmittedEvent    EventType = "session.submitted"
	SessionTerminatedEvent   EventType = "session.terminated"
	ResultPublishedEvent     EventType = "result.published"
	ManualGradingNeededEvent EventType = "grading.manual_required"
	ManualGradesAppliedEvent EventType = "grading.manual_applied"
	ProctoringFlaggedEvent   EventType = "proctoring.flagged"
)

// Event is the envelope every message on the bus shares.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

func newEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "exam-service",
		Version:   "1.0",
		Data:      data,
	}
}

// ===== PAYLOADS =====

type SessionStartedData struct {
	SessionID uint   `json:"session_id"`
	ExamID    uint   `json:"exam_id"`
	StudentID string `json:"student_id"`
	Resumed   bool   `json:"resumed"`
}

type SessionSubmittedData struct {
	SessionID          uint    `json:"session_id"`
	ExamID             uint    `json:"exam_id"`
	StudentID          string  `json:"student_id"`
	TotalScore         float64 `json:"total_score"`
	MaxScore           float64 `json:"max_score"`
	Percentage         float64 `json:"percentage"`
	Passed             bool    `json:"passed"`
	NeedsManualGrading bool    `json:"needs_manual_grading"`
}

type SessionTerminatedData struct {
	SessionID uint   `json:"session_id"`
	ExamID    uint   `json:"exam_id"`
	StudentID string `json:"student_id"`
	Reason    string `json:"reason,omitempty"`
}

type ResultPublishedData struct {
	ExamID    uint `json:"exam_id"`
	Published bool `json:"published"`
	Count     int  `json:"count"`
}

type ManualGradingData struct {
	SessionID uint   `json:"session_id"`
	ExamID    uint   `json:"exam_id"`
	StudentID string `json:"student_id"`
	GradedBy  string `json:"graded_by,omitempty"`
}

type ProctoringFlaggedData struct {
	SessionID uint   `json:"session_id"`
	EventType string `json:"event_type"`
	Severity  int    `json:"severity"`
}

// ===== FACTORIES =====

func NewSessionStartedEvent(sessionID, examID uint, studentID string, resumed bool) *Event {
	return newEvent(SessionStartedEvent, SessionStartedData{
		SessionID: sessionID,
		ExamID:    examID,
		StudentID: studentID,
		Resumed:   resumed,
	})
}

func NewSessionSubmittedEvent(data SessionSubmittedData) *Event {
	return newEvent(SessionSubmittedEvent, data)
}

func NewSessionTerminatedEvent(sessionID, examID uint, studentID, reason string) *Event {
	return newEvent(SessionTerminatedEvent, SessionTerminatedData{
		SessionID: sessionID,
		ExamID:    examID,
		StudentID: studentID,
		Reason:    reason,
	})
}

func NewResultPublishedEvent(examID uint, published bool, count int) *Event {
	return newEvent(ResultPublishedEvent, ResultPublishedData{
		ExamID:    examID,
		Published: published,
		Count:     count,
	})
}

func NewManualGradingNeededEvent(sessionID, examID uint, studentID string) *Event {
	return newEvent(ManualGradingNeededEvent, ManualGradingData{
		SessionID: sessionID,
		ExamID:    examID,
		StudentID: studentID,
	})
}

func NewManualGradesAppliedEvent(sessionID, examID uint, studentID, gradedBy string) *Event {
	return newEvent(ManualGradesAppliedEvent, ManualGradingData{
		SessionID: sessionID,
		ExamID:    examID,
		StudentID: studentID,
		GradedBy:  gradedBy,
	})
}

func NewProctoringFlaggedEvent(sessionID uint, eventType string, severity int) *Event {
	return newEvent(ProctoringFlaggedEvent, ProctoringFlaggedData{
		SessionID: sessionID,
		EventType: eventType,
		Severity:  severity,
	})
}
