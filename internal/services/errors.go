package services

import (
	"errors"
	"fmt"

	"github.com/examstack/exam-service/internal/validator"
)

// ===== SENTINEL ERRORS =====

var (
	// Not found
	ErrExamNotFound     = errors.New("exam not found")
	ErrSessionNotFound  = errors.New("exam session not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrResultNotFound   = errors.New("result not found")
	ErrUserNotFound     = errors.New("user not found")

	// Access
	ErrForbidden   = errors.New("access denied")
	ErrNotEnrolled = errors.New("student is not enrolled in this course")

	// Session lifecycle conflicts
	ErrAttemptsExhausted = errors.New("maximum attempts reached for this exam")
	ErrAlreadySubmitted  = errors.New("session has already been submitted or terminated")
	ErrSessionNotActive  = errors.New("session is not active")

	// Exam state
	ErrExamNotPublished = errors.New("exam is not published")
	ErrExamLocked       = errors.New("exam is published and its questions are locked")

	ErrValidationFailed = errors.New("validation failed")
)

// ===== STRUCTURED ERRORS =====

// PermissionError carries who tried to do what to which resource.
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// BusinessRuleError marks a domain rule violation that maps to a conflict at
// the API boundary.
type BusinessRuleError struct {
	Rule    string
	Message string
	Err     error
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

func (e *BusinessRuleError) Unwrap() error {
	return e.Err
}

// ===== CLASSIFIERS =====

func IsNotFound(err error) bool {
	return errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrResultNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrNotEnrolled)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrAttemptsExhausted) ||
		errors.Is(err, ErrAlreadySubmitted) ||
		errors.Is(err, ErrSessionNotActive) ||
		errors.Is(err, ErrExamLocked)
}

func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}
