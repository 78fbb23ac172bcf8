package services

import (
	"context"
	"iter"
	"strings"

	"go.uber.org/zap"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
	"transporte/internal/events"
	"transporte/internal/metrics"
	"transporte/internal/repositories"
	"transporte/internal/utils"
)

const nationalIDDigits = 8

// SeatService assigns seats. Every mutation for a departure runs under that
// departure's lock; the store's atomic insert covers other processes.
type SeatService struct {
	Store   repositories.Store
	Bus     *events.Bus
	Metrics *metrics.Metrics
	Clock   utils.Clock

	locks *keyedLocks
	trips tripLoader
}

func normalizePassenger(p models.Passenger) models.Passenger {
	return models.Passenger{
		Name:       utils.TitleName(p.Name),
		NationalID: strings.TrimSpace(p.NationalID),
		Phone:      strings.TrimSpace(p.Phone),
	}
}

// Sell books a seat for a paying passenger at the route fare. sellerID is
// recorded as ReservedBy.
func (s SeatService) Sell(ctx context.Context, departureID domain.ID, seat int, p models.Passenger, sellerID domain.ID) (models.SeatSaleResult, error) {
	unlock := s.locks.Lock(departureID)
	defer unlock()

	trip, err := s.trips.Load(ctx, departureID)
	if err != nil {
		return models.SeatSaleResult{}, err
	}
	if err := acceptsBookings(trip); err != nil {
		return models.SeatSaleResult{}, err
	}
	p = normalizePassenger(p)
	if p.Name == "" {
		return models.SeatSaleResult{}, domain.ValidationError{Field: "passenger.name", Msg: "passenger name is required"}
	}
	if p.NationalID == "" {
		return models.SeatSaleResult{}, domain.ValidationError{Field: "passenger.nationalId", Msg: "national id is required"}
	}

	res, err := s.assign(ctx, trip, models.SeatAssignment{
		DepartureID: departureID,
		SeatNumber:  seat,
		Passenger:   p,
		Price:       trip.Route.FarePerSeat,
		Kind:        models.SeatSold,
		Status:      models.SeatPaid,
		ReservedBy:  sellerID,
	})
	if err != nil {
		return res, err
	}
	s.Metrics.SeatSold()
	s.Bus.Emit(ctx, events.Event{Topic: events.TopicSeatSold, DepartureID: departureID, EntityID: res.Assignment.ID, Status: string(res.Assignment.Status), ActorID: sellerID})
	return res, nil
}

// DriverHold lets the departure's own driver keep a seat for a passenger
// picked up on the road. Holds are free.
func (s SeatService) DriverHold(ctx context.Context, departureID domain.ID, seat int, p models.Passenger, driverID domain.ID) (models.SeatSaleResult, error) {
	unlock := s.locks.Lock(departureID)
	defer unlock()

	trip, err := s.trips.Load(ctx, departureID)
	if err != nil {
		return models.SeatSaleResult{}, err
	}
	if driverID == 0 || driverID != trip.Departure.DriverID {
		s.Metrics.SeatRejected("permission")
		return models.SeatSaleResult{}, domain.PermissionError{Action: "hold seats on this departure"}
	}
	p = normalizePassenger(p)
	if !utils.IsDigits(p.NationalID, nationalIDDigits) {
		return models.SeatSaleResult{}, domain.ValidationError{Field: "passenger.nationalId", Msg: "national id must be exactly 8 digits"}
	}
	if err := acceptsBookings(trip); err != nil {
		return models.SeatSaleResult{}, err
	}
	if p.Name == "" {
		return models.SeatSaleResult{}, domain.ValidationError{Field: "passenger.name", Msg: "passenger name is required"}
	}

	res, err := s.assign(ctx, trip, models.SeatAssignment{
		DepartureID: departureID,
		SeatNumber:  seat,
		Passenger:   p,
		Price:       0,
		Kind:        models.SeatDriverHold,
		Status:      models.SeatPaid,
		ReservedBy:  driverID,
	})
	if err != nil {
		return res, err
	}
	s.Metrics.SeatHeld()
	s.Bus.Emit(ctx, events.Event{Topic: events.TopicSeatHeld, DepartureID: departureID, EntityID: res.Assignment.ID, ActorID: driverID})
	return res, nil
}

func acceptsBookings(trip models.Trip) error {
	if !trip.Departure.Status.AcceptsBookings() {
		return domain.InvalidStateError{
			Resource: "departure",
			Msg:      "departure is " + string(trip.Departure.Status) + " and no longer accepts bookings",
		}
	}
	return nil
}

// assign runs the shared seat checks in order: taken, range, capacity.
// Callers hold the departure lock.
func (s SeatService) assign(ctx context.Context, trip models.Trip, a models.SeatAssignment) (models.SeatSaleResult, error) {
	current, err := s.Store.Seats.ListByDeparture(ctx, trip.Departure.ID)
	if err != nil {
		return models.SeatSaleResult{}, err
	}
	for _, existing := range current {
		if existing.SeatNumber == a.SeatNumber {
			s.Metrics.SeatRejected("seat_taken")
			return models.SeatSaleResult{}, domain.SeatTakenError{DepartureID: trip.Departure.ID, Seat: a.SeatNumber}
		}
	}
	capacity := trip.Capacity()
	if a.SeatNumber < 1 || a.SeatNumber > capacity {
		s.Metrics.SeatRejected("invalid_seat")
		return models.SeatSaleResult{}, domain.InvalidSeatError{Seat: a.SeatNumber, Capacity: capacity}
	}
	if remaining(capacity, len(current)) <= 0 {
		s.Metrics.SeatRejected("no_capacity")
		return models.SeatSaleResult{}, domain.NoCapacityError{DepartureID: trip.Departure.ID}
	}

	created, err := s.Store.Seats.Create(ctx, a, capacity)
	if err != nil {
		return models.SeatSaleResult{}, err
	}
	utils.LogEvent(ctx, "seat", string(a.Kind), "seat assigned",
		zap.Int64("departure_id", int64(a.DepartureID)),
		zap.Int("seat", a.SeatNumber),
		zap.Int64("assignment_id", int64(created.ID)),
	)
	return models.SeatSaleResult{
		Assignment:        created,
		CapacityRemaining: remaining(capacity, len(current)+1),
	}, nil
}

// CheckIn boards a passenger. Boarding twice is harmless; a no-show cannot board.
func (s SeatService) CheckIn(ctx context.Context, assignmentID, driverID domain.ID) (models.SeatAssignment, error) {
	return s.setStatus(ctx, assignmentID, driverID, models.SeatBoarded, models.SeatNoShow)
}

// MarkNoShow records that the passenger never turned up.
func (s SeatService) MarkNoShow(ctx context.Context, assignmentID, driverID domain.ID) (models.SeatAssignment, error) {
	return s.setStatus(ctx, assignmentID, driverID, models.SeatNoShow, models.SeatBoarded)
}

func (s SeatService) setStatus(ctx context.Context, assignmentID, driverID domain.ID, next, blocked models.SeatStatus) (models.SeatAssignment, error) {
	a, err := s.Store.Seats.GetByID(ctx, assignmentID)
	if err != nil {
		return a, err
	}

	unlock := s.locks.Lock(a.DepartureID)
	defer unlock()

	trip, err := s.trips.Load(ctx, a.DepartureID)
	if err != nil {
		return a, err
	}
	if err := requireDriver(driverID, trip, "update passengers of this departure"); err != nil {
		return a, err
	}
	// Re-read under the lock.
	if a, err = s.Store.Seats.GetByID(ctx, assignmentID); err != nil {
		return a, err
	}
	switch a.Status {
	case next:
		return a, nil
	case blocked:
		return a, domain.InvalidStateError{Resource: "seat", From: string(a.Status), To: string(next)}
	}

	if err := s.Store.Seats.UpdateStatus(ctx, a.ID, next); err != nil {
		return a, err
	}
	a.Status = next
	utils.LogEvent(ctx, "seat", "status", "seat status changed",
		zap.Int64("assignment_id", int64(a.ID)),
		zap.String("status", string(next)),
	)
	s.Bus.Emit(ctx, events.Event{Topic: events.TopicSeatStatus, DepartureID: a.DepartureID, EntityID: a.ID, Status: string(next), ActorID: driverID})
	return a, nil
}

// AvailableSeats yields free seat numbers in ascending order. Each range
// reads the current state again.
func (s SeatService) AvailableSeats(ctx context.Context, departureID domain.ID) (iter.Seq[int], error) {
	trip, err := s.trips.Load(ctx, departureID)
	if err != nil {
		return nil, err
	}
	capacity := trip.Capacity()
	return func(yield func(int) bool) {
		assigned, err := s.Store.Seats.ListByDeparture(ctx, departureID)
		if err != nil {
			utils.LogError(ctx, "seat", "available_seats", err)
			return
		}
		taken := make(map[int]bool, len(assigned))
		for _, a := range assigned {
			taken[a.SeatNumber] = true
		}
		for n := 1; n <= capacity; n++ {
			if taken[n] {
				continue
			}
			if !yield(n) {
				return
			}
		}
	}, nil
}

// CapacityRemaining is the vehicle capacity minus every assignment, held or sold.
func (s SeatService) CapacityRemaining(ctx context.Context, departureID domain.ID) (int, error) {
	trip, err := s.trips.Load(ctx, departureID)
	if err != nil {
		return 0, err
	}
	n, err := s.Store.Seats.CountByDeparture(ctx, departureID)
	if err != nil {
		return 0, err
	}
	return remaining(trip.Capacity(), n), nil
}

// SeatMap shows every seat of the departure. Drivers only see their own.
func (s SeatService) SeatMap(ctx context.Context, departureID, driverID domain.ID) (models.SeatMap, error) {
	trip, err := s.trips.Load(ctx, departureID)
	if err != nil {
		return models.SeatMap{}, err
	}
	if err := requireDriver(driverID, trip, "view this departure"); err != nil {
		return models.SeatMap{}, err
	}
	assigned, err := s.Store.Seats.ListByDeparture(ctx, departureID)
	if err != nil {
		return models.SeatMap{}, err
	}

	m := models.SeatMap{
		DepartureID: departureID,
		Capacity:    trip.Capacity(),
		Occupied:    make([]int, 0, len(assigned)),
		Available:   []int{},
		Assignments: assigned,
	}
	taken := make(map[int]bool, len(assigned))
	for _, a := range assigned {
		taken[a.SeatNumber] = true
		m.Occupied = append(m.Occupied, a.SeatNumber)
	}
	for n := 1; n <= m.Capacity; n++ {
		if !taken[n] {
			m.Available = append(m.Available, n)
		}
	}
	return m, nil
}
