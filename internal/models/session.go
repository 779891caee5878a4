package models

import (
	"time"

	"gorm.io/datatypes"
)

type SessionStatus string

const (
	SessionPending    SessionStatus = "pending"
	SessionActive     SessionStatus = "active"
	SessionSubmitted  SessionStatus = "submitted"
	SessionTerminated SessionStatus = "terminated"
)

// IsTerminal reports whether the status is one a session never leaves.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionSubmitted || s == SessionTerminated
}

// IsInProgress reports whether the session can still accept answers.
func (s SessionStatus) IsInProgress() bool {
	return s == SessionPending || s == SessionActive
}

// ExamSession is one student's timed run through an exam. At most one
// session per (exam, student) may be pending or active at a time.
type ExamSession struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	ExamID    uint          `json:"exam_id" gorm:"not null;index:idx_exam_student"`
	StudentID string        `json:"student_id" gorm:"not null;index:idx_exam_student;size:255"`
	Status    SessionStatus `json:"status" gorm:"not null;default:active;index"`

	StartedAt   *time.Time `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at"`

	IPAddress         *string `json:"ip_address" gorm:"size:45"`
	TerminationReason *string `json:"termination_reason" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Exam    Exam              `json:"exam" gorm:"foreignKey:ExamID"`
	Student User              `json:"student" gorm:"foreignKey:StudentID"`
	Answers []Answer          `json:"answers" gorm:"foreignKey:SessionID"`
	Events  []SuspiciousEvent `json:"events" gorm:"foreignKey:SessionID"`
	Result  *Result           `json:"result" gorm:"foreignKey:SessionID"`
}

// Answer holds one student response per (session, question). AutoScore is
// set by the scoring engine at submission; ManualScore only ever by faculty.
type Answer struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	SessionID  uint `json:"session_id" gorm:"not null;uniqueIndex:idx_session_question"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_session_question"`

	Response datatypes.JSON `json:"response" gorm:"type:jsonb"`

	AutoScore          float64    `json:"auto_score"`
	ManualScore        *float64   `json:"manual_score"`
	NeedsManualGrading bool       `json:"needs_manual_grading"`
	GradedBy           *string    `json:"graded_by" gorm:"size:255"`
	GradedAt           *time.Time `json:"graded_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Session  ExamSession `json:"session" gorm:"foreignKey:SessionID"`
	Question Question    `json:"question" gorm:"foreignKey:QuestionID"`
	Grader   *User       `json:"grader" gorm:"foreignKey:GradedBy"`
}

func (ExamSession) TableName() string {
	return "exam_sessions"
}

func (Answer) TableName() string {
	return "answers"
}
