package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"transporte/internal/domain"
	"transporte/internal/http/middleware"
	"transporte/internal/utils"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Message   string `json:"message"`
}

func respondError(c *gin.Context, status int, code, message string) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: middleware.GetRequestID(c),
		Message:   message,
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case domain.IsInvalidSeat(err):
		respondError(c, http.StatusBadRequest, "invalid_seat", err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case domain.IsPermission(err):
		respondError(c, http.StatusForbidden, "forbidden", err.Error())
	case domain.IsSeatTaken(err):
		respondError(c, http.StatusConflict, "seat_taken", err.Error())
	case domain.IsNoCapacity(err):
		respondError(c, http.StatusConflict, "no_capacity", err.Error())
	case domain.IsInvalidState(err):
		respondError(c, http.StatusConflict, "invalid_state", err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error())
	default:
		utils.LogError(c.Request.Context(), "http", "unhandled_error", err, zap.String("path", c.FullPath()))
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
