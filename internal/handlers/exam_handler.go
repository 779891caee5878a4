package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
)

type ExamHandler struct {
	BaseHandler
	exams services.ExamService
}

func NewExamHandler(exams services.ExamService, logger utils.Logger) *ExamHandler {
	return &ExamHandler{
		BaseHandler: NewBaseHandler(logger),
		exams:       exams,
	}
}

// Create handles POST /exams.
func (h *ExamHandler) Create(c *gin.Context) {
	var req services.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	exam, err := h.exams.Create(c.Request.Context(), GetUserIDFromContext(c), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, exam)
}

// Get handles GET /exams/:id.
func (h *ExamHandler) Get(c *gin.Context) {
	examID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	exam, err := h.exams.Get(c.Request.Context(), examID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, exam)
}

// GetWithQuestions handles GET /exams/:id/questions.
func (h *ExamHandler) GetWithQuestions(c *gin.Context) {
	examID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	exam, err := h.exams.GetWithQuestions(c.Request.Context(), examID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, exam)
}

// SetPublished handles POST /exams/:id/publish.
func (h *ExamHandler) SetPublished(c *gin.Context) {
	examID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	published, err := strconv.ParseBool(c.DefaultQuery("published", "true"))
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid published parameter", nil)
		return
	}

	if err := h.exams.SetPublished(c.Request.Context(), GetUserIDFromContext(c), examID, published); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateRules handles PUT /exams/:id/rules.
func (h *ExamHandler) UpdateRules(c *gin.Context) {
	examID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateExamRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	rules, err := h.exams.UpdateRules(c.Request.Context(), GetUserIDFromContext(c), examID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, rules)
}
