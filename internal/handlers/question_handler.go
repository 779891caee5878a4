package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
)

type QuestionHandler struct {
	BaseHandler
	questions services.QuestionService
}

func NewQuestionHandler(questions services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler: NewBaseHandler(logger),
		questions:   questions,
	}
}

// Create handles POST /questions.
func (h *QuestionHandler) Create(c *gin.Context) {
	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	question, err := h.questions.Create(c.Request.Context(), GetUserIDFromContext(c), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, question)
}

// Get handles GET /questions/:id.
func (h *QuestionHandler) Get(c *gin.Context) {
	questionID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	question, err := h.questions.Get(c.Request.Context(), questionID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, question)
}

// ListByCourse handles GET /courses/:id/questions.
func (h *QuestionHandler) ListByCourse(c *gin.Context) {
	courseID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	questions, err := h.questions.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, questions)
}

// Attach handles POST /exams/:id/questions.
func (h *QuestionHandler) Attach(c *gin.Context) {
	examID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	var req services.AttachQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.questions.AttachToExam(c.Request.Context(), GetUserIDFromContext(c), examID, req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Detach handles DELETE /exams/:id/questions/:questionID.
func (h *QuestionHandler) Detach(c *gin.Context) {
	examID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}
	questionID, ok := h.parseUintParam(c, "questionID")
	if !ok {
		return
	}

	if err := h.questions.DetachFromExam(c.Request.Context(), GetUserIDFromContext(c), examID, questionID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
