package validator

import (
	"strings"

	"github.com/examstack/exam-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with the service's business rules.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := &Validator{validate: validator.New()}
	v.registerBusinessRules()
	return v
}

// Validate validates a struct and returns ValidationErrors, nil when valid.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (v *Validator) registerBusinessRules() {
	v.validate.RegisterValidation("exam_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	v.validate.RegisterValidation("exam_duration", func(fl validator.FieldLevel) bool {
		duration := fl.Field().Int()
		return duration >= 5 && duration <= 300
	})

	v.validate.RegisterValidation("max_attempts", func(fl validator.FieldLevel) bool {
		attempts := fl.Field().Int()
		return attempts >= 1 && attempts <= 10
	})

	v.validate.RegisterValidation("pass_threshold", func(fl validator.FieldLevel) bool {
		threshold := fl.Field().Float()
		return threshold >= 0 && threshold <= 100
	})

	v.validate.RegisterValidation("points_range", func(fl validator.FieldLevel) bool {
		points := fl.Field().Int()
		return points >= 1 && points <= 100
	})

	v.validate.RegisterValidation("severity_range", func(fl validator.FieldLevel) bool {
		severity := fl.Field().Int()
		return severity >= 1 && severity <= 5
	})

	v.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		qType := models.QuestionType(fl.Field().String())
		switch qType {
		case models.MultipleChoice, models.MultipleSelect, models.TrueFalse,
			models.ShortAnswer, models.Numerical, models.Essay, models.Code:
			return true
		}
		return false
	})
}
