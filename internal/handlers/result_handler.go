package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
)

type ResultHandler struct {
	BaseHandler
	results services.ResultService
}

func NewResultHandler(results services.ResultService, logger utils.Logger) *ResultHandler {
	return &ResultHandler{
		BaseHandler: NewBaseHandler(logger),
		results:     results,
	}
}

// GetMine handles GET /sessions/:id/result for students; only published
// results are visible.
func (h *ResultHandler) GetMine(c *gin.Context) {
	sessionID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	result, err := h.results.GetForStudent(c.Request.Context(), GetUserIDFromContext(c), sessionID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, result)
}

// GetForGrading handles GET /grading/sessions/:id for faculty.
func (h *ResultHandler) GetForGrading(c *gin.Context) {
	sessionID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	result, err := h.results.GetForGrader(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, result)
}

// ApplyManualGrades handles PUT /grading/sessions/:id.
func (h *ResultHandler) ApplyManualGrades(c *gin.Context) {
	sessionID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	var req services.ApplyManualGradesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.results.ApplyManualGrades(c.Request.Context(), GetUserIDFromContext(c), sessionID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, result)
}

// Publish handles POST /exams/:id/results/publish.
func (h *ResultHandler) Publish(c *gin.Context) {
	examID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	published, err := strconv.ParseBool(c.DefaultQuery("published", "true"))
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid published parameter", nil)
		return
	}

	count, err := h.results.Publish(c.Request.Context(), examID, published)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, gin.H{"updated": count, "published": published})
}

// Overview handles GET /exams/:id/results.
func (h *ResultHandler) Overview(c *gin.Context) {
	examID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	overview, err := h.results.Overview(c.Request.Context(), examID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, overview)
}

// Export handles GET /exams/:id/results/export, streaming an XLSX workbook.
func (h *ResultHandler) Export(c *gin.Context) {
	examID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	data, err := h.results.ExportResults(c.Request.Context(), examID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("exam-%d-results.xlsx", examID)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
