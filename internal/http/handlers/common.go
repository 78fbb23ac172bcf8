package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"transporte/internal/domain"
	"transporte/internal/services"
)

// Handler serves the HTTP API on top of the application services.
type Handler struct {
	svc  services.Services
	ping func(context.Context) error
}

// New builds the handler set. ping may be nil when no database is used.
func New(svc services.Services, ping func(context.Context) error) *Handler {
	return &Handler{svc: svc, ping: ping}
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "empty_body", "request body is empty")
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_payload", "invalid payload: "+err.Error())
		return false
	}
	return true
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (domain.ID, bool) {
	raw := strings.TrimSpace(c.Param(name))
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_id", "invalid "+name+": "+raw)
		return 0, false
	}
	return domain.ID(v), true
}

func queryBool(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}
