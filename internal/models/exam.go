package models

import (
	"time"

	"gorm.io/gorm"
)

type Exam struct {
	ID       uint       `json:"id" gorm:"primaryKey"`
	CourseID uint       `json:"course_id" gorm:"not null;index"`
	Title    string     `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Duration int        `json:"duration" gorm:"not null" validate:"required,min=5,max=300"` // minutes
	StartAt  *time.Time `json:"start_at"`
	EndAt    *time.Time `json:"end_at"` // expected after StartAt; not enforced here, caller's responsibility

	Published bool `json:"published" gorm:"default:false;index"`

	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Course    Course         `json:"course" gorm:"foreignKey:CourseID"`
	Rules     *ExamRules     `json:"rules" gorm:"foreignKey:ExamID"`
	Questions []ExamQuestion `json:"questions" gorm:"foreignKey:ExamID"`
	Sessions  []ExamSession  `json:"sessions" gorm:"foreignKey:ExamID"`
	Creator   User           `json:"creator" gorm:"foreignKey:CreatedBy"`
}

const DefaultPassThreshold = 60.0

// ExamRules caps attempts and sets the pass threshold. When an exam has no
// rules record the defaults apply: one attempt, 60% to pass.
type ExamRules struct {
	ExamID        uint    `json:"exam_id" gorm:"primaryKey"`
	MaxAttempts   int     `json:"max_attempts" gorm:"not null;default:1" validate:"min=1,max=10"`
	PassThreshold float64 `json:"pass_threshold" gorm:"not null;default:60" validate:"min=0,max=100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Exam) TableName() string {
	return "exams"
}

func (ExamRules) TableName() string {
	return "exam_rules"
}

// EffectiveMaxAttempts returns the attempt cap, defaulting to 1 when no
// rules record exists.
func (r *ExamRules) EffectiveMaxAttempts() int {
	if r == nil || r.MaxAttempts < 1 {
		return 1
	}
	return r.MaxAttempts
}

// EffectivePassThreshold returns the pass threshold percentage, defaulting
// to 60 when no rules record exists.
func (r *ExamRules) EffectivePassThreshold() float64 {
	if r == nil {
		return DefaultPassThreshold
	}
	return r.PassThreshold
}
