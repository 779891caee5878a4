package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type examForm struct {
	Title       string  `validate:"required,exam_title"`
	Duration    int     `validate:"required,exam_duration"`
	MaxAttempts int     `validate:"max_attempts"`
	Threshold   float64 `validate:"pass_threshold"`
}

func TestValidator_Valid(t *testing.T) {
	v := New()

	err := v.Validate(examForm{
		Title:       "Midterm Exam",
		Duration:    90,
		MaxAttempts: 2,
		Threshold:   60,
	})
	assert.NoError(t, err)
}

func TestValidator_CollectsFieldErrors(t *testing.T) {
	v := New()

	err := v.Validate(examForm{
		Title:       "Midterm",
		Duration:    600, // over the 300 minute cap
		MaxAttempts: 50,  // over the 10 attempt cap
		Threshold:   60,
	})
	require.Error(t, err)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)

	fields := make(map[string]string, len(verrs))
	for _, ve := range verrs {
		fields[ve.Field] = ve.Rule
	}
	assert.Equal(t, "exam_duration", fields["Duration"])
	assert.Equal(t, "max_attempts", fields["MaxAttempts"])
}

func TestValidator_QuestionType(t *testing.T) {
	v := New()

	type form struct {
		Type string `validate:"question_type"`
	}

	assert.NoError(t, v.Validate(form{Type: "multiple_choice"}))
	assert.NoError(t, v.Validate(form{Type: "code"}))
	assert.Error(t, v.Validate(form{Type: "matching"}))
}

func TestValidator_SeverityRange(t *testing.T) {
	v := New()

	type form struct {
		Severity int `validate:"severity_range"`
	}

	assert.NoError(t, v.Validate(form{Severity: 1}))
	assert.NoError(t, v.Validate(form{Severity: 5}))
	assert.Error(t, v.Validate(form{Severity: 0}))
	assert.Error(t, v.Validate(form{Severity: 6}))
}
