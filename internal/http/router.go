package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	intconfig "transporte/internal/config"
	"transporte/internal/domain"
	h "transporte/internal/http/handlers"
	"transporte/internal/http/middleware"
	"transporte/internal/metrics"
	"transporte/internal/utils"
)

// Options are the collaborators the router needs besides the handlers.
type Options struct {
	Auth     middleware.TokenParser
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

func NewRouter(env intconfig.Env, hd *h.Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSOrigins))
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.L().Warn("failed to set trusted proxies")
	}

	r.NoRoute(h.NotFound)

	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.GET("/health", hd.Health)
	api.POST("/auth/login", hd.Login)

	authed := api.Group("", middleware.RequireAuth(opts.Auth))
	admin := authed.Group("", middleware.RequireRoles(domain.RoleAdmin))
	driver := authed.Group("", middleware.RequireRoles(domain.RoleDriver))
	crew := authed.Group("", middleware.RequireRoles(domain.RoleAdmin, domain.RoleDriver))

	// Drivers
	admin.GET("/drivers", hd.ListDrivers)
	admin.POST("/drivers", hd.RegisterDriver)
	admin.PUT("/drivers/:id", hd.UpdateDriver)
	admin.PUT("/drivers/:id/toggle-status", hd.ToggleDriver)

	// Routes
	admin.GET("/routes", hd.ListRoutes)
	admin.POST("/routes", hd.CreateRoute)
	admin.PUT("/routes/:id", hd.UpdateRoute)
	admin.PUT("/routes/:id/toggle-status", hd.ToggleRoute)
	admin.DELETE("/routes/:id", hd.DeleteRoute)

	// Fleet
	admin.GET("/vehicles", hd.ListVehicles)
	admin.POST("/vehicles", hd.CreateVehicle)
	admin.PUT("/vehicles/:id", hd.UpdateVehicle)
	admin.DELETE("/vehicles/:id", hd.DeleteVehicle)

	// Departures
	admin.GET("/departures", hd.ListDepartures)
	admin.POST("/departures", hd.CreateDeparture)
	admin.GET("/departures/today", hd.ListDeparturesForDay)
	admin.GET("/departures/available", hd.ListUpcomingDepartures)
	admin.PUT("/departures/:id/cancel", hd.CancelDeparture)
	crew.GET("/departures/:id", hd.GetDeparture)
	crew.PUT("/departures/:id/underway", hd.MarkDepartureUnderway)
	crew.PUT("/departures/:id/complete", hd.MarkDepartureCompleted)
	driver.GET("/me/departures", hd.MyDepartures)

	// Seats
	crew.GET("/departures/:id/seats", hd.SeatMap)
	admin.POST("/departures/:id/seats", hd.SellSeat)
	driver.POST("/departures/:id/driver-holds", hd.DriverHold)
	crew.PUT("/seats/:id/check-in", hd.CheckIn)
	crew.PUT("/seats/:id/no-show", hd.MarkNoShow)

	// Parcels
	admin.GET("/departures/:id/parcels", hd.ListParcels)
	admin.POST("/departures/:id/parcels", hd.ShipParcel)
	crew.PUT("/parcels/:id/in-transit", hd.MarkParcelInTransit)
	crew.PUT("/parcels/:id/deliver", hd.DeliverParcel)

	// Manifests
	admin.GET("/departures/:id/manifest", hd.ManifestReport)
	driver.GET("/departures/:id/manifest/pdf", hd.ManifestPDF)

	return r
}
