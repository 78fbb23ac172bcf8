package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transporte/internal/http/middleware"
)

// ManifestReport returns the manifest data with totals as JSON.
func (h *Handler) ManifestReport(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	doc, err := h.svc.Manifests.Report(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// ManifestPDF renders the assigned driver's printable manifest (inline).
func (h *Handler) ManifestPDF(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	caller, _ := middleware.Caller(c)
	doc, err := h.svc.Manifests.ManifestDocument(c.Request.Context(), id, caller.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	pdfBytes, filename, err := h.svc.Docs.RenderManifestPDF(doc)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
