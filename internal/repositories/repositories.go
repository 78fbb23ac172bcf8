package repositories

import (
	"context"
	"time"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
)

type RouteRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Route, error)
	GetByID(ctx context.Context, id domain.ID) (models.Route, error)
	Create(ctx context.Context, r models.Route) (models.Route, error)
	Update(ctx context.Context, r models.Route) (models.Route, error)
	Delete(ctx context.Context, id domain.ID) error
}

type VehicleRepository interface {
	List(ctx context.Context) ([]models.Vehicle, error)
	GetByID(ctx context.Context, id domain.ID) (models.Vehicle, error)
	Create(ctx context.Context, v models.Vehicle) (models.Vehicle, error)
	Update(ctx context.Context, v models.Vehicle) (models.Vehicle, error)
	Delete(ctx context.Context, id domain.ID) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id domain.ID) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	ListByRole(ctx context.Context, role domain.Role, activeOnly bool) ([]models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	Update(ctx context.Context, u models.User) (models.User, error)
}

// DepartureFilter narrows departure listings; zero values mean "any".
type DepartureFilter struct {
	From      time.Time
	To        time.Time
	Statuses  []models.DepartureStatus
	VehicleID domain.ID
	DriverID  domain.ID
	RouteID   domain.ID
	Ascending bool
}

type DepartureRepository interface {
	GetByID(ctx context.Context, id domain.ID) (models.Departure, error)
	List(ctx context.Context, f DepartureFilter) ([]models.Departure, error)
	// Create enforces one live departure per vehicle and day.
	Create(ctx context.Context, d models.Departure) (models.Departure, error)
	UpdateStatus(ctx context.Context, id domain.ID, status models.DepartureStatus) error
	ExistsActiveForVehicleDay(ctx context.Context, vehicleID domain.ID, day time.Time) (bool, error)
	CountByRoute(ctx context.Context, routeID domain.ID) (int, error)
	CountActiveByVehicle(ctx context.Context, vehicleID domain.ID) (int, error)
}

type SeatRepository interface {
	// ListByDeparture is ordered by seat number.
	ListByDeparture(ctx context.Context, departureID domain.ID) ([]models.SeatAssignment, error)
	CountByDeparture(ctx context.Context, departureID domain.ID) (int, error)
	GetByID(ctx context.Context, id domain.ID) (models.SeatAssignment, error)
	// Create inserts atomically: SeatTakenError on a duplicate seat,
	// NoCapacityError when the departure already holds capacity assignments.
	Create(ctx context.Context, a models.SeatAssignment, capacity int) (models.SeatAssignment, error)
	UpdateStatus(ctx context.Context, id domain.ID, status models.SeatStatus) error
}

type ParcelRepository interface {
	// ListByDeparture is ordered newest first.
	ListByDeparture(ctx context.Context, departureID domain.ID) ([]models.Parcel, error)
	GetByID(ctx context.Context, id domain.ID) (models.Parcel, error)
	Create(ctx context.Context, p models.Parcel) (models.Parcel, error)
	Update(ctx context.Context, p models.Parcel) error
}

// Store bundles one implementation of every repository.
type Store struct {
	Routes     RouteRepository
	Vehicles   VehicleRepository
	Users      UserRepository
	Departures DepartureRepository
	Seats      SeatRepository
	Parcels    ParcelRepository
}

func hasStatus(list []models.DepartureStatus, s models.DepartureStatus) bool {
	if len(list) == 0 {
		return true
	}
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
