package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
	"transporte/internal/repositories"
	"transporte/internal/utils"
)

type RouteService struct {
	Store repositories.Store
}

// RouteInput is the editable part of a route.
type RouteInput struct {
	Name             string
	Origin           string
	Destination      string
	DistanceKm       float64
	EstimatedMinutes int
	FarePerSeat      models.Money
	PerKgRate        models.Money
	Active           *bool
}

func (in RouteInput) validate() error {
	switch {
	case in.Name == "":
		return domain.ValidationError{Field: "name", Msg: "name is required"}
	case in.Origin == "":
		return domain.ValidationError{Field: "origin", Msg: "origin is required"}
	case in.Destination == "":
		return domain.ValidationError{Field: "destination", Msg: "destination is required"}
	case in.FarePerSeat <= 0:
		return domain.ValidationError{Field: "farePerSeat", Msg: "fare must be greater than zero"}
	case in.PerKgRate < 0:
		return domain.ValidationError{Field: "perKgRate", Msg: "per kg rate cannot be negative"}
	case in.DistanceKm < 0:
		return domain.ValidationError{Field: "distanceKm", Msg: "distance cannot be negative"}
	case in.EstimatedMinutes < 0:
		return domain.ValidationError{Field: "estimatedMinutes", Msg: "duration cannot be negative"}
	}
	return nil
}

func (in RouteInput) normalized() RouteInput {
	in.Name = utils.NormalizeSpace(in.Name)
	in.Origin = utils.NormalizeSpace(in.Origin)
	in.Destination = utils.NormalizeSpace(in.Destination)
	return in
}

func (in RouteInput) apply(r models.Route) models.Route {
	r.Name = in.Name
	r.Origin = in.Origin
	r.Destination = in.Destination
	r.DistanceKm = in.DistanceKm
	r.EstimatedDuration = time.Duration(in.EstimatedMinutes) * time.Minute
	r.FarePerSeat = in.FarePerSeat
	r.PerKgRate = in.PerKgRate
	if in.Active != nil {
		r.Active = *in.Active
	}
	return r
}

func (s RouteService) List(ctx context.Context, activeOnly bool) ([]models.Route, error) {
	return s.Store.Routes.List(ctx, activeOnly)
}

func (s RouteService) Get(ctx context.Context, id domain.ID) (models.Route, error) {
	return s.Store.Routes.GetByID(ctx, id)
}

func (s RouteService) Create(ctx context.Context, in RouteInput) (models.Route, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return models.Route{}, err
	}
	route, err := s.Store.Routes.Create(ctx, in.apply(models.Route{Active: true}))
	if err != nil {
		return route, err
	}
	utils.LogEvent(ctx, "route", "create", "route created", zap.Int64("route_id", int64(route.ID)))
	return route, nil
}

func (s RouteService) Update(ctx context.Context, id domain.ID, in RouteInput) (models.Route, error) {
	in = in.normalized()
	if err := in.validate(); err != nil {
		return models.Route{}, err
	}
	current, err := s.Store.Routes.GetByID(ctx, id)
	if err != nil {
		return current, err
	}
	return s.Store.Routes.Update(ctx, in.apply(current))
}

// ToggleActive flips the active flag; inactive routes cannot get new departures.
func (s RouteService) ToggleActive(ctx context.Context, id domain.ID) (models.Route, error) {
	current, err := s.Store.Routes.GetByID(ctx, id)
	if err != nil {
		return current, err
	}
	current.Active = !current.Active
	return s.Store.Routes.Update(ctx, current)
}

func (s RouteService) Delete(ctx context.Context, id domain.ID) error {
	if _, err := s.Store.Routes.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.Store.Departures.CountByRoute(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ConflictError{Resource: "route", Msg: "route has departures; deactivate it instead"}
	}
	if err := s.Store.Routes.Delete(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(ctx, "route", "delete", "route deleted", zap.Int64("route_id", int64(id)))
	return nil
}
