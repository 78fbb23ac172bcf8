package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
	"transporte/internal/events"
	"transporte/internal/metrics"
	"transporte/internal/repositories"
	"transporte/internal/utils"
)

// ParcelService records parcels carried on a departure. Parcels never use seats.
type ParcelService struct {
	Store   repositories.Store
	Bus     *events.Bus
	Metrics *metrics.Metrics
	Clock   utils.Clock

	locks *keyedLocks
	trips tripLoader
}

type ParcelInput struct {
	Sender      models.Contact
	Recipient   models.Contact
	Description string
	WeightKg    float64
}

func normalizeContact(c models.Contact) models.Contact {
	return models.Contact{Name: utils.TitleName(c.Name), Phone: strings.TrimSpace(c.Phone)}
}

func (s ParcelService) Ship(ctx context.Context, departureID domain.ID, in ParcelInput) (models.Parcel, error) {
	in.Sender = normalizeContact(in.Sender)
	in.Recipient = normalizeContact(in.Recipient)
	in.Description = utils.NormalizeSpace(in.Description)
	switch {
	case in.Sender.Name == "":
		return models.Parcel{}, domain.ValidationError{Field: "sender.name", Msg: "sender name is required"}
	case in.Recipient.Name == "":
		return models.Parcel{}, domain.ValidationError{Field: "recipient.name", Msg: "recipient name is required"}
	case in.Description == "":
		return models.Parcel{}, domain.ValidationError{Field: "description", Msg: "description is required"}
	case in.WeightKg <= 0:
		return models.Parcel{}, domain.ValidationError{Field: "weightKg", Msg: "weight must be greater than zero"}
	}

	trip, err := s.trips.Load(ctx, departureID)
	if err != nil {
		return models.Parcel{}, err
	}
	if !trip.Departure.Status.AcceptsBookings() {
		return models.Parcel{}, domain.InvalidStateError{
			Resource: "departure",
			Msg:      "departure is " + string(trip.Departure.Status) + " and no longer accepts parcels",
		}
	}

	weight := models.RoundKg(in.WeightKg)
	p, err := s.Store.Parcels.Create(ctx, models.Parcel{
		DepartureID: departureID,
		Sender:      in.Sender,
		Recipient:   in.Recipient,
		Description: in.Description,
		WeightKg:    weight,
		Price:       trip.Route.PerKgRate.MulWeight(weight),
		Status:      models.ParcelShipped,
		CreatedAt:   s.Clock.Now(),
	})
	if err != nil {
		return p, err
	}
	utils.LogEvent(ctx, "parcel", "ship", "parcel registered",
		zap.Int64("parcel_id", int64(p.ID)),
		zap.Int64("departure_id", int64(departureID)),
		zap.Float64("weight_kg", weight),
	)
	s.Metrics.ParcelShipped()
	s.Bus.Emit(ctx, events.Event{Topic: events.TopicParcelShipped, DepartureID: departureID, EntityID: p.ID, Status: string(p.Status)})
	return p, nil
}

// lockedParcel loads the parcel, checks that actor drives its departure and
// holds the departure's lock. A zero actor is an admin.
func (s ParcelService) lockedParcel(ctx context.Context, id, actor domain.ID, action string) (models.Parcel, func(), error) {
	p, err := s.Store.Parcels.GetByID(ctx, id)
	if err != nil {
		return p, nil, err
	}
	unlock := s.locks.Lock(p.DepartureID)
	if p, err = s.Store.Parcels.GetByID(ctx, id); err != nil {
		unlock()
		return p, nil, err
	}
	if actor != 0 {
		trip, err := s.trips.Load(ctx, p.DepartureID)
		if err == nil {
			err = requireDriver(actor, trip, action)
		}
		if err != nil {
			unlock()
			return p, nil, err
		}
	}
	return p, unlock, nil
}

// Deliver hands the parcel over. Delivering twice is rejected.
func (s ParcelService) Deliver(ctx context.Context, id, actor domain.ID) (models.Parcel, error) {
	p, unlock, err := s.lockedParcel(ctx, id, actor, "deliver parcels of this departure")
	if err != nil {
		return p, err
	}
	defer unlock()
	if p.Status == models.ParcelDelivered {
		return p, domain.InvalidStateError{Resource: "parcel", Msg: "parcel was already delivered"}
	}
	now := s.Clock.Now()
	p.Status = models.ParcelDelivered
	p.DeliveredAt = &now
	if err := s.Store.Parcels.Update(ctx, p); err != nil {
		return p, err
	}
	s.Metrics.ParcelDelivered()
	s.emitStatus(ctx, p)
	return p, nil
}

func (s ParcelService) MarkInTransit(ctx context.Context, id, actor domain.ID) (models.Parcel, error) {
	p, unlock, err := s.lockedParcel(ctx, id, actor, "move parcels of this departure")
	if err != nil {
		return p, err
	}
	defer unlock()
	switch p.Status {
	case models.ParcelInTransit:
		return p, nil
	case models.ParcelDelivered:
		return p, domain.InvalidStateError{Resource: "parcel", From: string(p.Status), To: string(models.ParcelInTransit)}
	}
	p.Status = models.ParcelInTransit
	if err := s.Store.Parcels.Update(ctx, p); err != nil {
		return p, err
	}
	s.emitStatus(ctx, p)
	return p, nil
}

func (s ParcelService) emitStatus(ctx context.Context, p models.Parcel) {
	utils.LogEvent(ctx, "parcel", "status", "parcel status changed",
		zap.Int64("parcel_id", int64(p.ID)),
		zap.String("status", string(p.Status)),
	)
	s.Bus.Emit(ctx, events.Event{Topic: events.TopicParcelStatus, DepartureID: p.DepartureID, EntityID: p.ID, Status: string(p.Status)})
}

func (s ParcelService) ListByDeparture(ctx context.Context, departureID domain.ID) ([]models.Parcel, error) {
	if _, err := s.Store.Departures.GetByID(ctx, departureID); err != nil {
		return nil, err
	}
	return s.Store.Parcels.ListByDeparture(ctx, departureID)
}
