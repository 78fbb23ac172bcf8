package services

import (
	"context"
	"time"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
	"transporte/internal/events"
	"transporte/internal/metrics"
	"transporte/internal/repositories"
	"transporte/internal/utils"
)

// Deps are the collaborators shared by every service.
type Deps struct {
	Store     repositories.Store
	Bus       *events.Bus
	Metrics   *metrics.Metrics
	Clock     utils.Clock
	JWTSecret string
	JWTTTL    time.Duration
}

// Services bundles the application services wired to one store.
type Services struct {
	Routes     RouteService
	Vehicles   VehicleService
	Drivers    DriverService
	Departures DepartureService
	Seats      SeatService
	Parcels    ParcelService
	Manifests  ManifestService
	Docs       DocsService
	Auth       AuthService
}

func New(d Deps) Services {
	locks := newKeyedLocks()
	trips := tripLoader{store: d.Store}
	seats := SeatService{
		Store: d.Store, Bus: d.Bus, Metrics: d.Metrics, Clock: d.Clock,
		locks: locks, trips: trips,
	}
	return Services{
		Routes:   RouteService{Store: d.Store},
		Vehicles: VehicleService{Store: d.Store},
		Drivers:  DriverService{Store: d.Store},
		Departures: DepartureService{
			Store: d.Store, Bus: d.Bus, Metrics: d.Metrics, Clock: d.Clock,
			locks: locks, trips: trips,
		},
		Seats:     seats,
		Parcels:   ParcelService{Store: d.Store, Bus: d.Bus, Metrics: d.Metrics, Clock: d.Clock, locks: locks, trips: trips},
		Manifests: ManifestService{Store: d.Store, Clock: d.Clock, trips: trips},
		Docs:      DocsService{Metrics: d.Metrics, Clock: d.Clock},
		Auth:      AuthService{Store: d.Store, Secret: []byte(d.JWTSecret), TTL: d.JWTTTL, Clock: d.Clock},
	}
}

// tripLoader resolves a departure together with its route, vehicle and driver.
type tripLoader struct {
	store repositories.Store
}

func (l tripLoader) Load(ctx context.Context, id domain.ID) (models.Trip, error) {
	dep, err := l.store.Departures.GetByID(ctx, id)
	if err != nil {
		return models.Trip{}, err
	}
	return l.resolve(ctx, dep)
}

func (l tripLoader) resolve(ctx context.Context, dep models.Departure) (models.Trip, error) {
	trip := models.Trip{Departure: dep}
	var err error
	if trip.Route, err = l.store.Routes.GetByID(ctx, dep.RouteID); err != nil {
		return trip, err
	}
	if trip.Vehicle, err = l.store.Vehicles.GetByID(ctx, dep.VehicleID); err != nil {
		return trip, err
	}
	if trip.Driver, err = l.store.Users.GetByID(ctx, dep.DriverID); err != nil {
		return trip, err
	}
	return trip, nil
}

// requireDriver fails unless actor drives trip. A zero actor means an admin
// acting on the driver's behalf.
func requireDriver(actor domain.ID, trip models.Trip, action string) error {
	if actor != 0 && actor != trip.Departure.DriverID {
		return domain.PermissionError{Action: action}
	}
	return nil
}
