package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transporte/internal/domain/models"
	"transporte/internal/http/middleware"
)

type passengerRequest struct {
	Name       string `json:"name"`
	NationalID string `json:"nationalId"`
	Phone      string `json:"phone"`
}

func (p passengerRequest) passenger() models.Passenger {
	return models.Passenger{Name: p.Name, NationalID: p.NationalID, Phone: p.Phone}
}

// Seat number and passenger fields are validated by SeatService.
type seatRequest struct {
	SeatNumber int              `json:"seatNumber"`
	Passenger  passengerRequest `json:"passenger"`
}

func (h *Handler) SeatMap(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	m, err := h.svc.Seats.SeatMap(c.Request.Context(), id, middleware.DriverID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) SellSeat(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req seatRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	caller, _ := middleware.Caller(c)
	res, err := h.svc.Seats.Sell(c.Request.Context(), id, req.SeatNumber, req.Passenger.passenger(), caller.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) DriverHold(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req seatRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	caller, _ := middleware.Caller(c)
	res, err := h.svc.Seats.DriverHold(c.Request.Context(), id, req.SeatNumber, req.Passenger.passenger(), caller.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) CheckIn(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.Seats.CheckIn(c.Request.Context(), id, middleware.DriverID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) MarkNoShow(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.Seats.MarkNoShow(c.Request.Context(), id, middleware.DriverID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
