package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"transporte/internal/domain"
	"transporte/internal/http/middleware"
	"transporte/internal/services"
	"transporte/internal/utils"
)

type departureRequest struct {
	RouteID     domain.ID `json:"routeId" binding:"required,gt=0"`
	VehicleID   domain.ID `json:"vehicleId" binding:"required,gt=0"`
	DriverID    domain.ID `json:"driverId" binding:"required,gt=0"`
	ScheduledAt string    `json:"scheduledAt" binding:"required"`
}

func (h *Handler) ListDepartures(c *gin.Context) {
	out, err := h.svc.Departures.List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateDeparture(c *gin.Context) {
	var req departureRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	at, err := utils.ParseDateTime(req.ScheduledAt)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "scheduledAt: expected RFC3339 or YYYY-MM-DD HH:MM")
		return
	}
	dep, err := h.svc.Departures.Create(c.Request.Context(), services.DepartureInput{
		RouteID:     req.RouteID,
		VehicleID:   req.VehicleID,
		DriverID:    req.DriverID,
		ScheduledAt: at,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dep)
}

// ListDeparturesForDay defaults to today; ?date=YYYY-MM-DD picks another day.
func (h *Handler) ListDeparturesForDay(c *gin.Context) {
	day := h.svc.Departures.Clock.Now()
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "date: expected YYYY-MM-DD")
			return
		}
		day = parsed
	}
	out, err := h.svc.Departures.ListForDay(c.Request.Context(), day)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ListUpcomingDepartures(c *gin.Context) {
	out, err := h.svc.Departures.ListUpcoming(c.Request.Context(), h.svc.Departures.Clock.Now())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetDeparture(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	trip, err := h.svc.Departures.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if driver := middleware.DriverID(c); driver != 0 && trip.Departure.DriverID != driver {
		RespondDomainError(c, domain.PermissionError{Action: "view this departure"})
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *Handler) CancelDeparture(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	dep, err := h.svc.Departures.Cancel(c.Request.Context(), id, queryBool(c, "force"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dep)
}

func (h *Handler) MarkDepartureUnderway(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	dep, err := h.svc.Departures.MarkUnderway(c.Request.Context(), id, middleware.DriverID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dep)
}

func (h *Handler) MarkDepartureCompleted(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	dep, err := h.svc.Departures.MarkCompleted(c.Request.Context(), id, middleware.DriverID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, dep)
}

// MyDepartures lists the calling driver's departures from today on.
func (h *Handler) MyDepartures(c *gin.Context) {
	caller, _ := middleware.Caller(c)
	from := utils.StartOfDay(h.svc.Departures.Clock.Now())
	out, err := h.svc.Departures.ListForDriver(c.Request.Context(), caller.UserID, from)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
