package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
)

type ProctoringHandler struct {
	BaseHandler
	proctoring services.ProctoringService
}

func NewProctoringHandler(proctoring services.ProctoringService, logger utils.Logger) *ProctoringHandler {
	return &ProctoringHandler{
		BaseHandler: NewBaseHandler(logger),
		proctoring:  proctoring,
	}
}

// Record handles POST /sessions/:id/events. Exam clients report tab
// switches, focus loss and similar signals here during the exam.
func (h *ProctoringHandler) Record(c *gin.Context) {
	sessionID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	var req services.RecordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	event, err := h.proctoring.Record(c.Request.Context(), sessionID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, event)
}

// List handles GET /sessions/:id/events for faculty review.
func (h *ProctoringHandler) List(c *gin.Context) {
	sessionID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	events, err := h.proctoring.List(c.Request.Context(), sessionID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, events)
}
