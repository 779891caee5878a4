package services

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/examstack/exam-service/internal/models"
)

// numericTolerance is the strict bound for numerical answers:
// |response - correct| < tolerance.
const numericTolerance = 0.01

// ScoreResult is the outcome of grading a single answer.
type ScoreResult struct {
	AutoScore          float64
	NeedsManualGrading bool
}

// GradeAnswer grades one response against a question's content. It is pure
// and total: malformed content, malformed responses and unknown question
// types all score zero instead of returning an error, so one broken question
// can never block a submission.
func GradeAnswer(questionType models.QuestionType, content, response json.RawMessage, points int) ScoreResult {
	switch questionType {
	case models.MultipleChoice:
		return gradeMultipleChoice(content, response, points)
	case models.MultipleSelect:
		return gradeMultipleSelect(content, response, points)
	case models.TrueFalse:
		return gradeTrueFalse(content, response, points)
	case models.ShortAnswer:
		return gradeShortAnswer(content, response, points)
	case models.Numerical:
		return gradeNumerical(content, response, points)
	case models.Essay, models.Code:
		// Needs a human grader; auto score stays zero until then.
		return ScoreResult{AutoScore: 0, NeedsManualGrading: true}
	default:
		return ScoreResult{}
	}
}

func gradeMultipleChoice(content, response json.RawMessage, points int) ScoreResult {
	var c models.MultipleChoiceContent
	if err := json.Unmarshal(content, &c); err != nil {
		return ScoreResult{}
	}

	answer, ok := decodeString(response)
	if !ok || c.CorrectAnswer == "" {
		return ScoreResult{}
	}

	if answer == c.CorrectAnswer {
		return ScoreResult{AutoScore: float64(points)}
	}
	return ScoreResult{}
}

// gradeMultipleSelect awards full points only for exact set equality with the
// correct answers. Order and duplicates are irrelevant; there is no partial
// credit, and extra selections forfeit everything.
func gradeMultipleSelect(content, response json.RawMessage, points int) ScoreResult {
	var c models.MultipleSelectContent
	if err := json.Unmarshal(content, &c); err != nil {
		return ScoreResult{}
	}
	if len(c.CorrectAnswers) == 0 {
		return ScoreResult{}
	}

	var selected []string
	if err := json.Unmarshal(response, &selected); err != nil {
		return ScoreResult{}
	}

	selectedSet := make(map[string]bool, len(selected))
	for _, s := range selected {
		selectedSet[s] = true
	}

	correctSet := make(map[string]bool, len(c.CorrectAnswers))
	for _, s := range c.CorrectAnswers {
		correctSet[s] = true
	}

	if len(selectedSet) != len(correctSet) {
		return ScoreResult{}
	}
	for s := range correctSet {
		if !selectedSet[s] {
			return ScoreResult{}
		}
	}

	return ScoreResult{AutoScore: float64(points)}
}

func gradeTrueFalse(content, response json.RawMessage, points int) ScoreResult {
	var c models.TrueFalseContent
	if err := json.Unmarshal(content, &c); err != nil {
		return ScoreResult{}
	}

	answer, ok := decodeString(response)
	if !ok || c.CorrectAnswer == "" {
		return ScoreResult{}
	}

	if strings.EqualFold(answer, c.CorrectAnswer) {
		return ScoreResult{AutoScore: float64(points)}
	}
	return ScoreResult{}
}

func gradeShortAnswer(content, response json.RawMessage, points int) ScoreResult {
	var c models.ShortAnswerContent
	if err := json.Unmarshal(content, &c); err != nil {
		return ScoreResult{}
	}
	if c.CorrectAnswer == "" {
		return ScoreResult{}
	}

	answer, ok := decodeString(response)
	if !ok {
		return ScoreResult{}
	}

	given := strings.TrimSpace(answer)
	expected := strings.TrimSpace(c.CorrectAnswer)

	var match bool
	if c.CaseSensitive {
		match = given == expected
	} else {
		match = strings.EqualFold(given, expected)
	}

	if match {
		return ScoreResult{AutoScore: float64(points)}
	}
	return ScoreResult{}
}

func gradeNumerical(content, response json.RawMessage, points int) ScoreResult {
	var c models.NumericalContent
	if err := json.Unmarshal(content, &c); err != nil {
		return ScoreResult{}
	}

	value, ok := decodeNumber(response)
	if !ok {
		return ScoreResult{}
	}

	if math.Abs(value-c.CorrectValue) < numericTolerance {
		return ScoreResult{AutoScore: float64(points)}
	}
	return ScoreResult{}
}

// decodeString accepts a JSON string response.
func decodeString(response json.RawMessage) (string, bool) {
	if len(response) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(response, &s); err != nil {
		return "", false
	}
	return s, true
}

// decodeNumber accepts either a JSON number or a numeric string, since
// browser clients serialize form inputs both ways.
func decodeNumber(response json.RawMessage) (float64, bool) {
	if len(response) == 0 {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(response, &f); err == nil {
		return f, true
	}

	var s string
	if err := json.Unmarshal(response, &s); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return parsed, true
		}
	}

	return 0, false
}
