package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
	"transporte/internal/services"
)

type routeRequest struct {
	Name             string       `json:"name" binding:"required"`
	Origin           string       `json:"origin" binding:"required"`
	Destination      string       `json:"destination" binding:"required"`
	DistanceKm       float64      `json:"distanceKm" binding:"gte=0"`
	EstimatedMinutes int          `json:"estimatedMinutes" binding:"gte=0"`
	FarePerSeat      models.Money `json:"farePerSeat"`
	PerKgRate        models.Money `json:"perKgRate"`
	Active           *bool        `json:"active"`
}

func (r routeRequest) input() services.RouteInput {
	return services.RouteInput{
		Name:             r.Name,
		Origin:           r.Origin,
		Destination:      r.Destination,
		DistanceKm:       r.DistanceKm,
		EstimatedMinutes: r.EstimatedMinutes,
		FarePerSeat:      r.FarePerSeat,
		PerKgRate:        r.PerKgRate,
		Active:           r.Active,
	}
}

// routeView adds the estimated duration in minutes to the route payload.
type routeView struct {
	models.Route
	EstimatedMinutes int `json:"estimatedMinutes"`
}

func viewRoute(r models.Route) routeView {
	return routeView{Route: r, EstimatedMinutes: r.EstimatedMinutes()}
}

func (h *Handler) ListRoutes(c *gin.Context) {
	routes, err := h.svc.Routes.List(c.Request.Context(), queryBool(c, "active"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	out := make([]routeView, 0, len(routes))
	for _, r := range routes {
		out = append(out, viewRoute(r))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateRoute(c *gin.Context) {
	var req routeRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	route, err := h.svc.Routes.Create(c.Request.Context(), req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewRoute(route))
}

func (h *Handler) UpdateRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req routeRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	route, err := h.svc.Routes.Update(c.Request.Context(), id, req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewRoute(route))
}

func (h *Handler) ToggleRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	route, err := h.svc.Routes.ToggleActive(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewRoute(route))
}

func (h *Handler) DeleteRoute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Routes.Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type vehicleRequest struct {
	Plate    string    `json:"plate" binding:"required"`
	Brand    string    `json:"brand"`
	Model    string    `json:"model"`
	Year     int       `json:"year"`
	Capacity int       `json:"capacity" binding:"required,gt=0"`
	DriverID domain.ID `json:"driverId"`
	Status   string    `json:"status"`
}

func (r vehicleRequest) input() services.VehicleInput {
	return services.VehicleInput{
		Plate:    r.Plate,
		Brand:    r.Brand,
		Model:    r.Model,
		Year:     r.Year,
		Capacity: r.Capacity,
		DriverID: r.DriverID,
		Status:   models.VehicleStatus(r.Status),
	}
}

func (h *Handler) ListVehicles(c *gin.Context) {
	vehicles, err := h.svc.Vehicles.List(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

func (h *Handler) CreateVehicle(c *gin.Context) {
	var req vehicleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	v, err := h.svc.Vehicles.Create(c.Request.Context(), req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *Handler) UpdateVehicle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req vehicleRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	v, err := h.svc.Vehicles.Update(c.Request.Context(), id, req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) DeleteVehicle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Vehicles.Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type driverRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type driverUpdateRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password"`
}

func (h *Handler) ListDrivers(c *gin.Context) {
	drivers, err := h.svc.Drivers.ListDrivers(c.Request.Context(), queryBool(c, "active"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, drivers)
}

func (h *Handler) RegisterDriver(c *gin.Context) {
	var req driverRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.svc.Drivers.RegisterDriver(c.Request.Context(), services.DriverInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) UpdateDriver(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req driverUpdateRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := h.svc.Drivers.UpdateDriver(c.Request.Context(), id, services.DriverUpdate{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) ToggleDriver(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	u, err := h.svc.Drivers.ToggleDriverActive(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
