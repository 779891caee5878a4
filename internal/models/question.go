package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	MultipleSelect QuestionType = "multiple_select"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
	Numerical      QuestionType = "numerical"
	Essay          QuestionType = "essay"
	Code           QuestionType = "code"
)

// Question is immutable once its course's exam is published. Content is a
// type-specific payload stored as JSONB; the schemas below describe the
// shape each question type carries.
type Question struct {
	ID       uint         `json:"id" gorm:"primaryKey"`
	CourseID uint         `json:"course_id" gorm:"not null;index"`
	Type     QuestionType `json:"type" gorm:"not null;index"`
	Text     string       `json:"text" gorm:"type:text;not null" validate:"required"`
	Points   int          `json:"points" gorm:"not null;default:1" validate:"min=1,max=100"`

	Content datatypes.JSON `json:"content" gorm:"type:jsonb"`

	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Course  Course `json:"course" gorm:"foreignKey:CourseID"`
	Creator User   `json:"creator" gorm:"foreignKey:CreatedBy"`
}

// ExamQuestion orders questions inside an exam. Exams reference questions,
// they do not own them.
type ExamQuestion struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	ExamID     uint `json:"exam_id" gorm:"not null;uniqueIndex:idx_exam_question"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_exam_question"`
	Position   int  `json:"position" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Exam     Exam     `json:"exam" gorm:"foreignKey:ExamID"`
	Question Question `json:"question" gorm:"foreignKey:QuestionID"`
}

func (Question) TableName() string {
	return "questions"
}

func (ExamQuestion) TableName() string {
	return "exam_questions"
}

// ===== QUESTION CONTENT SCHEMAS =====

type MultipleChoiceContent struct {
	Options       []string `json:"options" validate:"min=2,max=10"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
}

type MultipleSelectContent struct {
	Options        []string `json:"options" validate:"min=2,max=10"`
	CorrectAnswers []string `json:"correct_answers" validate:"min=1"`
}

type TrueFalseContent struct {
	CorrectAnswer string `json:"correct_answer" validate:"required"`
}

type ShortAnswerContent struct {
	CorrectAnswer string `json:"correct_answer" validate:"required"`
	CaseSensitive bool   `json:"case_sensitive"`
}

type NumericalContent struct {
	CorrectValue float64 `json:"correct_value"`
}

// EssayContent and CodeContent carry no answer key; both types are graded
// manually by faculty.
type EssayContent struct {
	MinWords        *int    `json:"min_words"`
	MaxWords        *int    `json:"max_words"`
	SuggestedLength *string `json:"suggested_length"`
}

type CodeContent struct {
	Language       string  `json:"language"`
	StarterCode    *string `json:"starter_code"`
	ExpectedOutput *string `json:"expected_output"`
}
