package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Code        string  `json:"code" gorm:"not null;uniqueIndex;size:20"`
	Title       string  `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text"`

	CreatedBy string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Exams       []Exam       `json:"exams" gorm:"foreignKey:CourseID"`
	Enrollments []Enrollment `json:"enrollments" gorm:"foreignKey:CourseID"`
	Questions   []Question   `json:"questions" gorm:"foreignKey:CourseID"`
}

// Enrollment links a student to a course. Starting an exam session requires
// an active enrollment in the exam's course.
type Enrollment struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	CourseID  uint   `json:"course_id" gorm:"not null;uniqueIndex:idx_course_student"`
	StudentID string `json:"student_id" gorm:"not null;uniqueIndex:idx_course_student;size:255"`
	Active    bool   `json:"active" gorm:"default:true;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Course  Course `json:"course" gorm:"foreignKey:CourseID"`
	Student User   `json:"student" gorm:"foreignKey:StudentID"`
}

func (Course) TableName() string {
	return "courses"
}

func (Enrollment) TableName() string {
	return "enrollments"
}
