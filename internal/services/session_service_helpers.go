package services

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/examstack/exam-service/internal/models"
)

// GradedSubmission is the outcome of grading a full submission.
type GradedSubmission struct {
	Answers            []*models.Answer
	TotalScore         float64
	MaxScore           float64
	NeedsManualGrading bool
}

// gradeSubmission grades every question on the exam against the student's
// responses. Questions without a response are graded with a nil response so
// they still count toward MaxScore and, for essay and code questions, still
// flag manual grading.
func gradeSubmission(exam *models.Exam, responses map[uint]json.RawMessage) GradedSubmission {
	graded := GradedSubmission{
		Answers: make([]*models.Answer, 0, len(exam.Questions)),
	}

	for _, examQuestion := range exam.Questions {
		question := examQuestion.Question
		response := responses[question.ID]

		score := GradeAnswer(question.Type, json.RawMessage(question.Content), response, question.Points)

		answer := &models.Answer{
			QuestionID:         question.ID,
			Response:           datatypes.JSON(response),
			AutoScore:          score.AutoScore,
			NeedsManualGrading: score.NeedsManualGrading,
		}
		graded.Answers = append(graded.Answers, answer)

		graded.TotalScore += score.AutoScore
		graded.MaxScore += float64(question.Points)
		if score.NeedsManualGrading {
			graded.NeedsManualGrading = true
		}
	}

	return graded
}

// mergeResponses overlays the submit payload on top of answers saved earlier
// in the session.
func mergeResponses(saved []models.Answer, submitted []AnswerSubmission) map[uint]json.RawMessage {
	responses := make(map[uint]json.RawMessage, len(saved)+len(submitted))
	for _, answer := range saved {
		if len(answer.Response) > 0 {
			responses[answer.QuestionID] = json.RawMessage(answer.Response)
		}
	}
	for _, submission := range submitted {
		responses[submission.QuestionID] = submission.Response
	}
	return responses
}
