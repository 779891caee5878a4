package models

import (
	"time"

	"gorm.io/datatypes"
)

type SuspiciousEventType string

const (
	EventTabSwitch      SuspiciousEventType = "tab_switch"
	EventWindowBlur     SuspiciousEventType = "window_blur"
	EventFullscreenExit SuspiciousEventType = "fullscreen_exit"
	EventMultipleFaces  SuspiciousEventType = "multiple_faces"
	EventNoFace         SuspiciousEventType = "no_face"
	EventCopyPaste      SuspiciousEventType = "copy_paste"
	EventForcedEnd      SuspiciousEventType = "forced_end"
)

// SuspiciousEvent is append-only. Rows are never mutated or deleted; the
// count per session surfaces on faculty result views.
type SuspiciousEvent struct {
	ID        uint                `json:"id" gorm:"primaryKey"`
	SessionID uint                `json:"session_id" gorm:"not null;index"`
	Type      SuspiciousEventType `json:"type" gorm:"not null;index"`
	Severity  int                 `json:"severity" gorm:"default:1"` // 1-5, low to critical

	Data          datatypes.JSON `json:"data" gorm:"type:jsonb"`
	ScreenshotURL *string        `json:"screenshot_url" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Session ExamSession `json:"session" gorm:"foreignKey:SessionID"`
}

func (SuspiciousEvent) TableName() string {
	return "suspicious_events"
}
