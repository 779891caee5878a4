package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/examstack/exam-service/internal/services"
	"github.com/examstack/exam-service/internal/utils"
	"github.com/examstack/exam-service/internal/validator"
)

// ===== RESPONSE TYPES =====

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

type SuccessResponse struct {
	Data interface{} `json:"data"`
	Meta interface{} `json:"meta,omitempty"`
}

type PaginationMeta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// ===== BASE HANDLER =====

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) RespondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{Data: data})
}

func (h *BaseHandler) RespondWithPage(c *gin.Context, data interface{}, meta PaginationMeta) {
	c.JSON(http.StatusOK, SuccessResponse{Data: data, Meta: meta})
}

func (h *BaseHandler) RespondWithError(c *gin.Context, status int, message string, details interface{}) {
	c.JSON(status, ErrorResponse{Message: message, Details: details})
}

// HandleServiceError maps service errors onto HTTP status codes:
// not-found 404, permission 403, lifecycle conflicts 409, validation 400.
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	logger := utils.GetLoggerFromContext(c)

	switch {
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, err.Error(), nil)

	case services.IsForbidden(err):
		h.RespondWithError(c, http.StatusForbidden, err.Error(), nil)

	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, err.Error(), nil)

	case services.IsValidation(err):
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			h.RespondWithError(c, http.StatusBadRequest, "validation failed", verrs)
			return
		}
		h.RespondWithError(c, http.StatusBadRequest, err.Error(), nil)

	case errors.Is(err, services.ErrExamNotPublished):
		h.RespondWithError(c, http.StatusConflict, err.Error(), nil)

	default:
		logger.LogError(err, "unhandled service error")
		h.RespondWithError(c, http.StatusInternalServerError, "internal server error", nil)
	}
}

// parseUintParam reads a numeric path parameter, responding 400 itself on
// failure. Callers should return immediately when ok is false.
func (h *BaseHandler) parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid "+name+" parameter", nil)
		return 0, false
	}
	return uint(value), true
}

// parsePagination reads limit/offset query parameters with defaults.
func parsePagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}
