package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/examstack/exam-service/internal/models"
)

func raw(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestGradeAnswer_MultipleChoice(t *testing.T) {
	content := raw(t, models.MultipleChoiceContent{
		Options:       []string{"A", "B", "C", "D"},
		CorrectAnswer: "B",
	})

	tests := []struct {
		name     string
		response json.RawMessage
		want     float64
	}{
		{"correct answer", raw(t, "B"), 2},
		{"wrong answer", raw(t, "A"), 0},
		{"case matters", raw(t, "b"), 0},
		{"missing response", nil, 0},
		{"non-string response", raw(t, 7), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GradeAnswer(models.MultipleChoice, content, tt.response, 2)
			assert.Equal(t, tt.want, got.AutoScore)
			assert.False(t, got.NeedsManualGrading)
		})
	}
}

func TestGradeAnswer_MultipleSelect(t *testing.T) {
	content := raw(t, models.MultipleSelectContent{
		Options:        []string{"a", "b", "c", "d"},
		CorrectAnswers: []string{"a", "b"},
	})

	tests := []struct {
		name     string
		response json.RawMessage
		want     float64
	}{
		{"exact match", raw(t, []string{"a", "b"}), 3},
		{"order does not matter", raw(t, []string{"b", "a"}), 3},
		{"subset gets nothing", raw(t, []string{"a"}), 0},
		{"extra selection forfeits", raw(t, []string{"a", "b", "c"}), 0},
		{"wrong set", raw(t, []string{"c", "d"}), 0},
		{"empty selection", raw(t, []string{}), 0},
		{"not an array", raw(t, "a"), 0},
		{"missing response", nil, 0},
		{"duplicates collapse", raw(t, []string{"a", "a", "b"}), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GradeAnswer(models.MultipleSelect, content, tt.response, 3)
			assert.Equal(t, tt.want, got.AutoScore)
		})
	}
}

func TestGradeAnswer_TrueFalse(t *testing.T) {
	content := raw(t, models.TrueFalseContent{CorrectAnswer: "true"})

	tests := []struct {
		name     string
		response json.RawMessage
		want     float64
	}{
		{"exact match", raw(t, "true"), 1},
		{"case insensitive", raw(t, "TRUE"), 1},
		{"wrong", raw(t, "false"), 0},
		{"missing", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GradeAnswer(models.TrueFalse, content, tt.response, 1)
			assert.Equal(t, tt.want, got.AutoScore)
		})
	}
}

func TestGradeAnswer_ShortAnswer(t *testing.T) {
	t.Run("case insensitive by default", func(t *testing.T) {
		content := raw(t, models.ShortAnswerContent{CorrectAnswer: "Photosynthesis"})

		assert.Equal(t, 2.0, GradeAnswer(models.ShortAnswer, content, raw(t, "photosynthesis"), 2).AutoScore)
		assert.Equal(t, 2.0, GradeAnswer(models.ShortAnswer, content, raw(t, "  Photosynthesis  "), 2).AutoScore)
		assert.Equal(t, 0.0, GradeAnswer(models.ShortAnswer, content, raw(t, "respiration"), 2).AutoScore)
	})

	t.Run("case sensitive when flagged", func(t *testing.T) {
		content := raw(t, models.ShortAnswerContent{CorrectAnswer: "pH", CaseSensitive: true})

		assert.Equal(t, 2.0, GradeAnswer(models.ShortAnswer, content, raw(t, "pH"), 2).AutoScore)
		assert.Equal(t, 0.0, GradeAnswer(models.ShortAnswer, content, raw(t, "ph"), 2).AutoScore)
	})

	t.Run("missing answer key scores zero without error", func(t *testing.T) {
		content := raw(t, models.ShortAnswerContent{})
		assert.Equal(t, 0.0, GradeAnswer(models.ShortAnswer, content, raw(t, "anything"), 2).AutoScore)
	})

	t.Run("missing response scores zero", func(t *testing.T) {
		content := raw(t, models.ShortAnswerContent{CorrectAnswer: "x"})
		assert.Equal(t, 0.0, GradeAnswer(models.ShortAnswer, content, nil, 2).AutoScore)
	})
}

func TestGradeAnswer_Numerical(t *testing.T) {
	content := raw(t, models.NumericalContent{CorrectValue: 3.0})

	tests := []struct {
		name     string
		response json.RawMessage
		want     float64
	}{
		{"exact", raw(t, 3.0), 2},
		{"within tolerance", raw(t, 3.009), 2},
		{"just outside tolerance", raw(t, 3.02), 0},
		{"exactly at tolerance is outside", raw(t, 3.01), 0},
		{"numeric string accepted", raw(t, "3.005"), 2},
		{"non-numeric", raw(t, "three"), 0},
		{"missing", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GradeAnswer(models.Numerical, content, tt.response, 2)
			assert.Equal(t, tt.want, got.AutoScore)
		})
	}
}

func TestGradeAnswer_ManualTypes(t *testing.T) {
	for _, questionType := range []models.QuestionType{models.Essay, models.Code} {
		t.Run(string(questionType), func(t *testing.T) {
			got := GradeAnswer(questionType, raw(t, models.EssayContent{}), raw(t, "some answer"), 5)
			assert.Equal(t, 0.0, got.AutoScore)
			assert.True(t, got.NeedsManualGrading)
		})
	}

	t.Run("unanswered essay still flags manual grading", func(t *testing.T) {
		got := GradeAnswer(models.Essay, raw(t, models.EssayContent{}), nil, 5)
		assert.True(t, got.NeedsManualGrading)
	})
}

func TestGradeAnswer_UnknownType(t *testing.T) {
	got := GradeAnswer(models.QuestionType("matching"), raw(t, "{}"), raw(t, "x"), 5)
	assert.Equal(t, 0.0, got.AutoScore)
	assert.False(t, got.NeedsManualGrading)
}

func TestGradeAnswer_MalformedContent(t *testing.T) {
	malformed := json.RawMessage(`{"broken`)

	for _, questionType := range []models.QuestionType{
		models.MultipleChoice, models.MultipleSelect, models.TrueFalse,
		models.ShortAnswer, models.Numerical,
	} {
		got := GradeAnswer(questionType, malformed, raw(t, "x"), 5)
		assert.Equal(t, 0.0, got.AutoScore, "type %s", questionType)
	}
}

func TestGradeAnswer_NeverExceedsPoints(t *testing.T) {
	content := raw(t, models.MultipleChoiceContent{CorrectAnswer: "A"})
	got := GradeAnswer(models.MultipleChoice, content, raw(t, "A"), 10)
	assert.Equal(t, 10.0, got.AutoScore)
	assert.LessOrEqual(t, got.AutoScore, 10.0)
}
