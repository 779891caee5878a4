package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	sessions services.SessionService
}

func NewSessionHandler(sessions services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler: NewBaseHandler(logger),
		sessions:    sessions,
	}
}

// Start handles POST /sessions. Returns 201 for a fresh session and 200 when
// an in-progress session is resumed.
func (h *SessionHandler) Start(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.IPAddress == nil {
		ip := c.ClientIP()
		req.IPAddress = &ip
	}

	response, err := h.sessions.Start(c.Request.Context(), GetUserIDFromContext(c), req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if response.Resumed {
		status = http.StatusOK
	}
	h.RespondWithSuccess(c, status, response)
}

// SaveAnswer handles PUT /sessions/:id/answers.
func (h *SessionHandler) SaveAnswer(c *gin.Context) {
	sessionID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	var req services.SaveAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.sessions.SaveAnswer(c.Request.Context(), GetUserIDFromContext(c), sessionID, req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Submit handles POST /sessions/:id/submit.
func (h *SessionHandler) Submit(c *gin.Context) {
	sessionID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	var req services.SubmitSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.sessions.Submit(c.Request.Context(), GetUserIDFromContext(c), sessionID, req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, result)
}

// Terminate handles POST /sessions/:id/terminate. Faculty and proctoring
// automation use it to force-close a session.
func (h *SessionHandler) Terminate(c *gin.Context) {
	sessionID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	var req services.TerminateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.sessions.Terminate(c.Request.Context(), GetUserIDFromContext(c), sessionID, req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Get handles GET /sessions/:id.
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	session, err := h.sessions.Get(c.Request.Context(),
		GetUserIDFromContext(c), GetUserRoleFromContext(c), sessionID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, session)
}

// ListByExam handles GET /exams/:id/sessions for faculty.
func (h *SessionHandler) ListByExam(c *gin.Context) {
	examID, ok := h.parseUintParam(c, "id")
	if !ok {
		return
	}

	limit, offset := parsePagination(c)
	sessions, total, err := h.sessions.ListByExam(c.Request.Context(), examID, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.RespondWithPage(c, sessions, PaginationMeta{Total: total, Limit: limit, Offset: offset})
}
