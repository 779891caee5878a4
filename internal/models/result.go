package models

import "time"

// Result is the cached aggregate for one session, exactly one row per
// session (upsert semantics). FinalizedAt stays nil while any essay or code
// answer awaits manual grading; IsPublished gates student visibility.
type Result struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	SessionID uint `json:"session_id" gorm:"not null;uniqueIndex"`

	TotalScore float64 `json:"total_score"`
	MaxScore   float64 `json:"max_score"`
	Percentage float64 `json:"percentage"` // 0-100, two decimals
	Passed     bool    `json:"passed"`

	NeedsManualGrading bool       `json:"needs_manual_grading"`
	FinalizedAt        *time.Time `json:"finalized_at"`
	IsPublished        bool       `json:"is_published" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Session ExamSession `json:"session" gorm:"foreignKey:SessionID"`
}

func (Result) TableName() string {
	return "results"
}
