package services

import (
	"context"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
	"transporte/internal/repositories"
	"transporte/internal/utils"
)

// ManifestService builds passenger rosters and trip figures. It only reads.
type ManifestService struct {
	Store repositories.Store
	Clock utils.Clock

	trips tripLoader
}

// Roster lists every assignment, sold or held, by seat number.
func (s ManifestService) Roster(ctx context.Context, departureID domain.ID) ([]models.RosterEntry, error) {
	if _, err := s.Store.Departures.GetByID(ctx, departureID); err != nil {
		return nil, err
	}
	seats, err := s.Store.Seats.ListByDeparture(ctx, departureID)
	if err != nil {
		return nil, err
	}
	return rosterOf(seats), nil
}

func rosterOf(seats []models.SeatAssignment) []models.RosterEntry {
	out := make([]models.RosterEntry, 0, len(seats))
	for _, a := range seats {
		out = append(out, models.RosterEntry{
			AssignmentID: a.ID,
			SeatNumber:   a.SeatNumber,
			Passenger:    a.Passenger,
			Price:        a.Price,
			Status:       a.Status,
			Kind:         a.Kind,
		})
	}
	return out
}

// Revenue sums sold seats only; driver holds bring no money.
func (s ManifestService) Revenue(ctx context.Context, departureID domain.ID) (models.Money, error) {
	if _, err := s.Store.Departures.GetByID(ctx, departureID); err != nil {
		return 0, err
	}
	seats, err := s.Store.Seats.ListByDeparture(ctx, departureID)
	if err != nil {
		return 0, err
	}
	return revenueOf(seats), nil
}

func revenueOf(seats []models.SeatAssignment) models.Money {
	var total models.Money
	for _, a := range seats {
		if a.GeneratesRevenue() {
			total += a.Price
		}
	}
	return total
}

// Occupancy is the share of seats assigned, in percent with two decimals.
func (s ManifestService) Occupancy(ctx context.Context, departureID domain.ID) (float64, error) {
	trip, err := s.trips.Load(ctx, departureID)
	if err != nil {
		return 0, err
	}
	n, err := s.Store.Seats.CountByDeparture(ctx, departureID)
	if err != nil {
		return 0, err
	}
	return utils.Percent(n, trip.Capacity()), nil
}

// ManifestDocument is the driver's copy; only the assigned driver gets it.
func (s ManifestService) ManifestDocument(ctx context.Context, departureID, driverID domain.ID) (models.ManifestDocument, error) {
	trip, err := s.trips.Load(ctx, departureID)
	if err != nil {
		return models.ManifestDocument{}, err
	}
	if driverID == 0 || driverID != trip.Departure.DriverID {
		return models.ManifestDocument{}, domain.PermissionError{Action: "view the manifest of this departure"}
	}
	return s.build(ctx, trip)
}

// Report is the admin view of the same document.
func (s ManifestService) Report(ctx context.Context, departureID domain.ID) (models.ManifestDocument, error) {
	trip, err := s.trips.Load(ctx, departureID)
	if err != nil {
		return models.ManifestDocument{}, err
	}
	return s.build(ctx, trip)
}

func (s ManifestService) build(ctx context.Context, trip models.Trip) (models.ManifestDocument, error) {
	seats, err := s.Store.Seats.ListByDeparture(ctx, trip.Departure.ID)
	if err != nil {
		return models.ManifestDocument{}, err
	}
	parcels, err := s.Store.Parcels.ListByDeparture(ctx, trip.Departure.ID)
	if err != nil {
		return models.ManifestDocument{}, err
	}

	return models.ManifestDocument{
		Trip: models.TripInfo{
			DepartureID: trip.Departure.ID,
			Route:       trip.Route.Label(),
			RouteName:   trip.Route.Name,
			ScheduledAt: trip.Departure.ScheduledAt,
			Vehicle:     trip.Vehicle.Label(),
			Plate:       trip.Vehicle.Plate,
			Driver:      trip.Driver.DisplayName(),
			DriverID:    trip.Driver.ID,
			Capacity:    trip.Capacity(),
			Status:      trip.Departure.Status,
		},
		Roster:      rosterOf(seats),
		Parcels:     parcels,
		Stats:       statsOf(trip.Capacity(), seats, parcels),
		GeneratedAt: s.Clock.Now(),
	}, nil
}

func statsOf(capacity int, seats []models.SeatAssignment, parcels []models.Parcel) models.ManifestStats {
	st := models.ManifestStats{
		Passengers:        len(seats),
		Revenue:           revenueOf(seats),
		Occupancy:         utils.Percent(len(seats), capacity),
		CapacityRemaining: remaining(capacity, len(seats)),
		Parcels:           len(parcels),
	}
	for _, a := range seats {
		switch a.Kind {
		case models.SeatSold:
			st.Sold++
		case models.SeatDriverHold:
			st.DriverHolds++
		}
		switch a.Status {
		case models.SeatBoarded:
			st.Boarded++
		case models.SeatNoShow:
			st.NoShows++
		}
		if a.SeatNumber > capacity {
			st.OverCapacitySeats = append(st.OverCapacitySeats, a.SeatNumber)
		}
	}
	st.Inconsistent = len(st.OverCapacitySeats) > 0 || len(seats) > capacity

	var weight float64
	for _, p := range parcels {
		weight += p.WeightKg
		st.ParcelRevenue += p.Price
	}
	st.ParcelWeightKg = utils.Round2(weight)
	return st
}
