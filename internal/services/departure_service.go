package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
	"transporte/internal/events"
	"transporte/internal/metrics"
	"transporte/internal/repositories"
	"transporte/internal/utils"
)

// upcomingWindow is how far ahead ListUpcoming looks.
const upcomingWindow = 7 * 24 * time.Hour

// DepartureService schedules departures and drives their lifecycle.
type DepartureService struct {
	Store   repositories.Store
	Bus     *events.Bus
	Metrics *metrics.Metrics
	Clock   utils.Clock

	locks *keyedLocks
	trips tripLoader
}

type DepartureInput struct {
	RouteID     domain.ID
	VehicleID   domain.ID
	DriverID    domain.ID
	ScheduledAt time.Time
}

// Create schedules a departure after checking every reference.
func (s DepartureService) Create(ctx context.Context, in DepartureInput) (models.Departure, error) {
	if in.ScheduledAt.IsZero() {
		return models.Departure{}, domain.ValidationError{Field: "scheduledAt", Msg: "departure time is required"}
	}

	route, err := s.Store.Routes.GetByID(ctx, in.RouteID)
	if err != nil {
		return models.Departure{}, err
	}
	if !route.Active {
		return models.Departure{}, domain.ValidationError{Field: "routeId", Msg: "route is not active"}
	}

	vehicle, err := s.Store.Vehicles.GetByID(ctx, in.VehicleID)
	if err != nil {
		return models.Departure{}, err
	}
	if vehicle.Status != models.VehicleActive {
		return models.Departure{}, domain.ValidationError{Field: "vehicleId", Msg: "vehicle is not active"}
	}

	driver, err := s.Store.Users.GetByID(ctx, in.DriverID)
	if err != nil {
		return models.Departure{}, err
	}
	if !driver.IsDriver() || !driver.Active {
		return models.Departure{}, domain.ValidationError{Field: "driverId", Msg: "user is not an active driver"}
	}

	// Keyed on the negated vehicle id so it never collides with a departure id.
	unlock := s.locks.Lock(-in.VehicleID)
	defer unlock()

	busy, err := s.Store.Departures.ExistsActiveForVehicleDay(ctx, in.VehicleID, in.ScheduledAt)
	if err != nil {
		return models.Departure{}, err
	}
	if busy {
		return models.Departure{}, domain.ValidationError{Field: "vehicleId", Msg: "vehicle already has a departure that day"}
	}

	dep, err := s.Store.Departures.Create(ctx, models.Departure{
		RouteID:     in.RouteID,
		VehicleID:   in.VehicleID,
		DriverID:    in.DriverID,
		ScheduledAt: in.ScheduledAt,
		Status:      models.DepartureScheduled,
	})
	if err != nil {
		return dep, err
	}
	utils.LogEvent(ctx, "departure", "create", "departure scheduled",
		zap.Int64("departure_id", int64(dep.ID)),
		zap.String("day", dep.Day()),
	)
	s.Metrics.DepartureMoved(string(models.DepartureScheduled))
	return dep, nil
}

// Cancel cancels a departure. With paid or boarded passengers it needs force.
func (s DepartureService) Cancel(ctx context.Context, id domain.ID, force bool) (models.Departure, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	dep, err := s.Store.Departures.GetByID(ctx, id)
	if err != nil {
		return dep, err
	}
	switch dep.Status {
	case models.DepartureCancelled:
		return dep, nil
	case models.DepartureCompleted:
		return dep, domain.InvalidStateError{Resource: "departure", From: string(dep.Status), To: string(models.DepartureCancelled)}
	}

	if !force {
		seats, err := s.Store.Seats.ListByDeparture(ctx, id)
		if err != nil {
			return dep, err
		}
		for _, a := range seats {
			if a.Status == models.SeatPaid || a.Status == models.SeatBoarded {
				return dep, domain.InvalidStateError{
					Resource: "departure",
					Msg:      "departure has paid passengers; cancel with force to confirm",
				}
			}
		}
	}

	return s.moveTo(ctx, dep, models.DepartureCancelled, zap.Bool("force", force))
}

func (s DepartureService) MarkUnderway(ctx context.Context, id domain.ID, actor domain.ID) (models.Departure, error) {
	return s.advance(ctx, id, actor, models.DepartureUnderway)
}

func (s DepartureService) MarkCompleted(ctx context.Context, id domain.ID, actor domain.ID) (models.Departure, error) {
	return s.advance(ctx, id, actor, models.DepartureCompleted)
}

// advance moves forward only; repeating the current status is a no-op.
func (s DepartureService) advance(ctx context.Context, id, actor domain.ID, next models.DepartureStatus) (models.Departure, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	dep, err := s.Store.Departures.GetByID(ctx, id)
	if err != nil {
		return dep, err
	}
	if actor != 0 && actor != dep.DriverID {
		return dep, domain.PermissionError{Action: "update this departure"}
	}
	if dep.Status == next {
		return dep, nil
	}
	if !dep.Status.CanAdvanceTo(next) {
		return dep, domain.InvalidStateError{Resource: "departure", From: string(dep.Status), To: string(next)}
	}
	return s.moveTo(ctx, dep, next)
}

func (s DepartureService) moveTo(ctx context.Context, dep models.Departure, next models.DepartureStatus, fields ...zap.Field) (models.Departure, error) {
	from := dep.Status
	if err := s.Store.Departures.UpdateStatus(ctx, dep.ID, next); err != nil {
		return dep, err
	}
	dep.Status = next
	dep.UpdatedAt = s.Clock.Now()

	fields = append(fields,
		zap.Int64("departure_id", int64(dep.ID)),
		zap.String("from", string(from)),
		zap.String("to", string(next)),
	)
	utils.LogEvent(ctx, "departure", "status", "departure status changed", fields...)
	s.Metrics.DepartureMoved(string(next))
	s.Bus.Emit(ctx, events.Event{Topic: events.TopicDepartureStatus, DepartureID: dep.ID, EntityID: dep.ID, Status: string(next)})
	return dep, nil
}

// ListUpcoming returns bookable departures in [now, now+7d] that still have
// seats, latest first.
func (s DepartureService) ListUpcoming(ctx context.Context, now time.Time) ([]models.DepartureSummary, error) {
	deps, err := s.Store.Departures.List(ctx, repositories.DepartureFilter{
		From:     now,
		To:       now.Add(upcomingWindow).Add(time.Nanosecond),
		Statuses: []models.DepartureStatus{models.DepartureScheduled, models.DepartureUnderway},
	})
	if err != nil {
		return nil, err
	}
	out := []models.DepartureSummary{}
	for _, d := range deps {
		sum, err := s.summarize(ctx, d)
		if err != nil {
			return nil, err
		}
		if sum.Available > 0 {
			out = append(out, sum)
		}
	}
	return out, nil
}

// List returns every departure, latest first.
func (s DepartureService) List(ctx context.Context) ([]models.DepartureSummary, error) {
	deps, err := s.Store.Departures.List(ctx, repositories.DepartureFilter{})
	if err != nil {
		return nil, err
	}
	return s.summarizeAll(ctx, deps)
}

// ListForDay returns the departures of one calendar day in time order.
func (s DepartureService) ListForDay(ctx context.Context, day time.Time) ([]models.DepartureSummary, error) {
	start := utils.StartOfDay(day)
	deps, err := s.Store.Departures.List(ctx, repositories.DepartureFilter{
		From:      start,
		To:        start.AddDate(0, 0, 1),
		Ascending: true,
	})
	if err != nil {
		return nil, err
	}
	return s.summarizeAll(ctx, deps)
}

// ListForDriver returns the driver's live departures from the given time on.
func (s DepartureService) ListForDriver(ctx context.Context, driverID domain.ID, from time.Time) ([]models.DepartureSummary, error) {
	deps, err := s.Store.Departures.List(ctx, repositories.DepartureFilter{
		From:      from,
		DriverID:  driverID,
		Statuses:  []models.DepartureStatus{models.DepartureScheduled, models.DepartureUnderway, models.DepartureCompleted},
		Ascending: true,
	})
	if err != nil {
		return nil, err
	}
	return s.summarizeAll(ctx, deps)
}

func (s DepartureService) Get(ctx context.Context, id domain.ID) (models.Trip, error) {
	return s.trips.Load(ctx, id)
}

func (s DepartureService) summarizeAll(ctx context.Context, deps []models.Departure) ([]models.DepartureSummary, error) {
	out := make([]models.DepartureSummary, 0, len(deps))
	for _, d := range deps {
		sum, err := s.summarize(ctx, d)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s DepartureService) summarize(ctx context.Context, d models.Departure) (models.DepartureSummary, error) {
	trip, err := s.trips.resolve(ctx, d)
	if err != nil {
		return models.DepartureSummary{}, err
	}
	occupied, err := s.Store.Seats.CountByDeparture(ctx, d.ID)
	if err != nil {
		return models.DepartureSummary{}, err
	}
	return models.DepartureSummary{
		Departure: d,
		Route:     trip.Route.Label(),
		Plate:     trip.Vehicle.Plate,
		Driver:    trip.Driver.DisplayName(),
		Capacity:  trip.Capacity(),
		Occupied:  occupied,
		Available: remaining(trip.Capacity(), occupied),
	}, nil
}

func remaining(capacity, occupied int) int {
	if occupied >= capacity {
		return 0
	}
	return capacity - occupied
}
