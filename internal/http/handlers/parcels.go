package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transporte/internal/domain/models"
	"transporte/internal/http/middleware"
	"transporte/internal/services"
)

type contactRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type parcelRequest struct {
	Sender      contactRequest `json:"sender"`
	Recipient   contactRequest `json:"recipient"`
	Description string         `json:"description"`
	WeightKg    float64        `json:"weightKg"`
}

func (r parcelRequest) input() services.ParcelInput {
	return services.ParcelInput{
		Sender:      models.Contact{Name: r.Sender.Name, Phone: r.Sender.Phone},
		Recipient:   models.Contact{Name: r.Recipient.Name, Phone: r.Recipient.Phone},
		Description: r.Description,
		WeightKg:    r.WeightKg,
	}
}

func (h *Handler) ListParcels(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	out, err := h.svc.Parcels.ListByDeparture(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ShipParcel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req parcelRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	p, err := h.svc.Parcels.Ship(c.Request.Context(), id, req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) MarkParcelInTransit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Parcels.MarkInTransit(c.Request.Context(), id, middleware.DriverID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeliverParcel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Parcels.Deliver(c.Request.Context(), id, middleware.DriverID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
