package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examstack/exam-service/internal/cache"
	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/validator"
)

func newTestQuestionService(repo *fakeRepo) QuestionService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewQuestionService(repo, cache.NewCacheManager(nil, logger), logger, validator.New())
}

func TestValidateQuestionContent(t *testing.T) {
	tests := []struct {
		name         string
		questionType models.QuestionType
		content      string
		wantErr      bool
	}{
		{
			name:         "valid multiple choice",
			questionType: models.MultipleChoice,
			content:      `{"options":["A","B","C"],"correct_answer":"B"}`,
		},
		{
			name:         "multiple choice without correct answer",
			questionType: models.MultipleChoice,
			content:      `{"options":["A","B"]}`,
			wantErr:      true,
		},
		{
			name:         "multiple choice with one option",
			questionType: models.MultipleChoice,
			content:      `{"options":["A"],"correct_answer":"A"}`,
			wantErr:      true,
		},
		{
			name:         "valid multiple select",
			questionType: models.MultipleSelect,
			content:      `{"options":["A","B","C"],"correct_answers":["A","C"]}`,
		},
		{
			name:         "multiple select without correct answers",
			questionType: models.MultipleSelect,
			content:      `{"options":["A","B"],"correct_answers":[]}`,
			wantErr:      true,
		},
		{
			name:         "valid true/false",
			questionType: models.TrueFalse,
			content:      `{"correct_answer":"True"}`,
		},
		{
			name:         "true/false with a non-boolean answer",
			questionType: models.TrueFalse,
			content:      `{"correct_answer":"maybe"}`,
			wantErr:      true,
		},
		{
			name:         "short answer without answer key",
			questionType: models.ShortAnswer,
			content:      `{"case_sensitive":true}`,
			wantErr:      true,
		},
		{
			name:         "valid numerical",
			questionType: models.Numerical,
			content:      `{"correct_value":3.14}`,
		},
		{
			name:         "valid essay without constraints",
			questionType: models.Essay,
			content:      `{}`,
		},
		{
			name:         "malformed payload",
			questionType: models.MultipleChoice,
			content:      `not json`,
			wantErr:      true,
		},
		{
			name:         "unknown question type",
			questionType: models.QuestionType("oral_exam"),
			content:      `{}`,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateQuestionContent(tt.questionType, json.RawMessage(tt.content))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuestionCreate_RejectsContentMismatch(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestQuestionService(repo)

	_, err := svc.Create(context.Background(), "fac-1", CreateQuestionRequest{
		CourseID: 2,
		Type:     models.TrueFalse,
		Text:     "The sky is green.",
		Points:   1,
		Content:  json.RawMessage(`{"correct_answer":"green"}`),
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Empty(t, repo.question.questions)
}

func TestQuestionCreate_StoresValidQuestion(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestQuestionService(repo)

	question, err := svc.Create(context.Background(), "fac-1", CreateQuestionRequest{
		CourseID: 2,
		Type:     models.MultipleChoice,
		Text:     "pick one",
		Points:   5,
		Content:  json.RawMessage(`{"options":["A","B"],"correct_answer":"A"}`),
	})
	require.NoError(t, err)
	assert.NotZero(t, question.ID)
	assert.Equal(t, "fac-1", question.CreatedBy)
}

func TestAttachToExam_RejectedOnPublishedExam(t *testing.T) {
	repo := newFakeRepo()
	repo.exam.exams[1] = publishedExam(1, 2)
	repo.question.questions[10] = &models.Question{ID: 10, CourseID: 2, Type: models.Essay}

	svc := newTestQuestionService(repo)

	err := svc.AttachToExam(context.Background(), "fac-1", 1, AttachQuestionRequest{QuestionID: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExamLocked)
	assert.True(t, IsConflict(err))
	assert.Empty(t, repo.question.attached)
}

func TestAttachToExam_RejectsNonOwner(t *testing.T) {
	repo := newFakeRepo()
	exam := publishedExam(1, 2)
	exam.Published = false
	repo.exam.exams[1] = exam
	repo.question.questions[10] = &models.Question{ID: 10, CourseID: 2, Type: models.Essay}

	svc := newTestQuestionService(repo)

	err := svc.AttachToExam(context.Background(), "fac-2", 1, AttachQuestionRequest{QuestionID: 10})
	require.Error(t, err)
	assert.True(t, IsForbidden(err))
}

func TestAttachToExam_LinksQuestion(t *testing.T) {
	repo := newFakeRepo()
	exam := publishedExam(1, 2)
	exam.Published = false
	repo.exam.exams[1] = exam
	repo.question.questions[10] = &models.Question{ID: 10, CourseID: 2, Type: models.Essay}

	svc := newTestQuestionService(repo)

	err := svc.AttachToExam(context.Background(), "fac-1", 1, AttachQuestionRequest{QuestionID: 10, Position: 3})
	require.NoError(t, err)

	require.Len(t, repo.question.attached, 1)
	assert.Equal(t, uint(10), repo.question.attached[0].QuestionID)
	assert.Equal(t, 3, repo.question.attached[0].Position)
}
