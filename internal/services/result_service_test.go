package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/examstack/exam-service/internal/models"
)

func TestAggregate_PassFail(t *testing.T) {
	result := Aggregate(45, 60, 60, false)
	assert.Equal(t, 75.0, result.Percentage)
	assert.True(t, result.Passed)
	require.NotNil(t, result.FinalizedAt)
}

func TestAggregate_BelowThreshold(t *testing.T) {
	result := Aggregate(30, 60, 60, false)
	assert.Equal(t, 50.0, result.Percentage)
	assert.False(t, result.Passed)
}

func TestAggregate_ExactThresholdPasses(t *testing.T) {
	result := Aggregate(36, 60, 60, false)
	assert.Equal(t, 60.0, result.Percentage)
	assert.True(t, result.Passed)
}

func TestAggregate_ZeroMaxScore(t *testing.T) {
	result := Aggregate(0, 0, 60, false)
	assert.Equal(t, 0.0, result.Percentage)
	assert.False(t, result.Passed)
}

func TestAggregate_RoundsToTwoDecimals(t *testing.T) {
	// 1/3 = 33.333... rounds to 33.33
	result := Aggregate(1, 3, 60, false)
	assert.Equal(t, 33.33, result.Percentage)

	// 2/3 = 66.666... rounds to 66.67
	result = Aggregate(2, 3, 60, false)
	assert.Equal(t, 66.67, result.Percentage)
}

func TestAggregate_ManualGradingDefersFinalization(t *testing.T) {
	result := Aggregate(2, 5, 60, true)
	assert.Equal(t, 40.0, result.Percentage)
	assert.False(t, result.Passed)
	assert.True(t, result.NeedsManualGrading)
	assert.Nil(t, result.FinalizedAt)
}

func TestGradeSubmission_MixedExam(t *testing.T) {
	mcContent, _ := json.Marshal(models.MultipleChoiceContent{
		Options:       []string{"A", "B", "C"},
		CorrectAnswer: "B",
	})
	essayContent, _ := json.Marshal(models.EssayContent{})

	exam := &models.Exam{
		ID: 1,
		Questions: []models.ExamQuestion{
			{
				QuestionID: 10,
				Position:   1,
				Question: models.Question{
					ID: 10, Type: models.MultipleChoice, Points: 2,
					Content: datatypes.JSON(mcContent),
				},
			},
			{
				QuestionID: 11,
				Position:   2,
				Question: models.Question{
					ID: 11, Type: models.Essay, Points: 3,
					Content: datatypes.JSON(essayContent),
				},
			},
		},
	}

	responses := map[uint]json.RawMessage{
		10: json.RawMessage(`"B"`),
		11: json.RawMessage(`"my essay text"`),
	}

	graded := gradeSubmission(exam, responses)
	require.Len(t, graded.Answers, 2)
	assert.Equal(t, 2.0, graded.TotalScore)
	assert.Equal(t, 5.0, graded.MaxScore)
	assert.True(t, graded.NeedsManualGrading)

	// Composing with the aggregator gives the final result shape.
	result := Aggregate(graded.TotalScore, graded.MaxScore, 60, graded.NeedsManualGrading)
	assert.Equal(t, 40.0, result.Percentage)
	assert.False(t, result.Passed)
	assert.Nil(t, result.FinalizedAt)
}

func TestGradeSubmission_UnansweredQuestionsCountTowardMax(t *testing.T) {
	mcContent, _ := json.Marshal(models.MultipleChoiceContent{CorrectAnswer: "A"})

	exam := &models.Exam{
		Questions: []models.ExamQuestion{
			{QuestionID: 1, Question: models.Question{ID: 1, Type: models.MultipleChoice, Points: 4, Content: datatypes.JSON(mcContent)}},
			{QuestionID: 2, Question: models.Question{ID: 2, Type: models.MultipleChoice, Points: 6, Content: datatypes.JSON(mcContent)}},
		},
	}

	// Only the first question is answered.
	graded := gradeSubmission(exam, map[uint]json.RawMessage{
		1: json.RawMessage(`"A"`),
	})

	require.Len(t, graded.Answers, 2)
	assert.Equal(t, 4.0, graded.TotalScore)
	assert.Equal(t, 10.0, graded.MaxScore)
	assert.False(t, graded.NeedsManualGrading)
}

func TestGradeSubmission_EmptyExam(t *testing.T) {
	graded := gradeSubmission(&models.Exam{}, nil)
	assert.Empty(t, graded.Answers)
	assert.Equal(t, 0.0, graded.MaxScore)

	result := Aggregate(graded.TotalScore, graded.MaxScore, 60, graded.NeedsManualGrading)
	assert.Equal(t, 0.0, result.Percentage)
}
