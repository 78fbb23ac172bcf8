package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
	"transporte/internal/repositories"
	"transporte/internal/utils"
)

type VehicleService struct {
	Store repositories.Store
}

type VehicleInput struct {
	Plate    string
	Brand    string
	Model    string
	Year     int
	Capacity int
	DriverID domain.ID
	Status   models.VehicleStatus
}

func (s VehicleService) validate(ctx context.Context, in *VehicleInput) error {
	in.Plate = strings.ToUpper(strings.TrimSpace(in.Plate))
	in.Brand = utils.NormalizeSpace(in.Brand)
	in.Model = utils.NormalizeSpace(in.Model)
	if in.Status == "" {
		in.Status = models.VehicleActive
	}

	switch {
	case in.Plate == "":
		return domain.ValidationError{Field: "plate", Msg: "plate is required"}
	case in.Capacity <= 0:
		return domain.ValidationError{Field: "capacity", Msg: "capacity must be greater than zero"}
	case !in.Status.Valid():
		return domain.ValidationError{Field: "status", Msg: "unknown vehicle status"}
	case in.Year < 0:
		return domain.ValidationError{Field: "year", Msg: "year cannot be negative"}
	}

	if in.DriverID != 0 {
		driver, err := s.Store.Users.GetByID(ctx, in.DriverID)
		if err != nil {
			if domain.IsNotFound(err) {
				return domain.ValidationError{Field: "driverId", Msg: "driver does not exist", Err: err}
			}
			return err
		}
		if !driver.IsDriver() || !driver.Active {
			return domain.ValidationError{Field: "driverId", Msg: "assigned user must be an active driver"}
		}
	}
	return nil
}

func (s VehicleService) List(ctx context.Context) ([]models.Vehicle, error) {
	return s.Store.Vehicles.List(ctx)
}

func (s VehicleService) Get(ctx context.Context, id domain.ID) (models.Vehicle, error) {
	return s.Store.Vehicles.GetByID(ctx, id)
}

func (s VehicleService) Create(ctx context.Context, in VehicleInput) (models.Vehicle, error) {
	if err := s.validate(ctx, &in); err != nil {
		return models.Vehicle{}, err
	}
	v, err := s.Store.Vehicles.Create(ctx, models.Vehicle{
		Plate: in.Plate, Brand: in.Brand, Model: in.Model, Year: in.Year,
		Capacity: in.Capacity, DriverID: in.DriverID, Status: in.Status,
	})
	if err != nil {
		return v, err
	}
	utils.LogEvent(ctx, "vehicle", "create", "vehicle registered", zap.String("plate", v.Plate))
	return v, nil
}

// Update may shrink capacity below existing bookings; manifests flag those seats.
func (s VehicleService) Update(ctx context.Context, id domain.ID, in VehicleInput) (models.Vehicle, error) {
	if _, err := s.Store.Vehicles.GetByID(ctx, id); err != nil {
		return models.Vehicle{}, err
	}
	if err := s.validate(ctx, &in); err != nil {
		return models.Vehicle{}, err
	}
	return s.Store.Vehicles.Update(ctx, models.Vehicle{
		ID: id, Plate: in.Plate, Brand: in.Brand, Model: in.Model, Year: in.Year,
		Capacity: in.Capacity, DriverID: in.DriverID, Status: in.Status,
	})
}

func (s VehicleService) Delete(ctx context.Context, id domain.ID) error {
	if _, err := s.Store.Vehicles.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.Store.Departures.CountActiveByVehicle(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ConflictError{Resource: "vehicle", Msg: "vehicle has departures that are not cancelled"}
	}
	return s.Store.Vehicles.Delete(ctx, id)
}
