package services

import (
	"testing"
	"time"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
)

func TestRouteCreateValidation(t *testing.T) {
	f := newFixture(t, 4)

	bad := []RouteInput{
		{Origin: "A", Destination: "B", FarePerSeat: 100},
		{Name: "R", Destination: "B", FarePerSeat: 100},
		{Name: "R", Origin: "A", FarePerSeat: 100},
		{Name: "R", Origin: "A", Destination: "B"},
		{Name: "R", Origin: "A", Destination: "B", FarePerSeat: 100, PerKgRate: -1},
		{Name: "R", Origin: "A", Destination: "B", FarePerSeat: 100, DistanceKm: -3},
	}
	for i, in := range bad {
		if _, err := f.svc.Routes.Create(f.ctx, in); !domain.IsValidation(err) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}

	r, err := f.svc.Routes.Create(f.ctx, RouteInput{
		Name: " Luya  express ", Origin: "Luya", Destination: "Chachapoyas",
		EstimatedMinutes: 90, FarePerSeat: 800,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !r.Active || r.Name != "Luya express" || r.EstimatedDuration != 90*time.Minute {
		t.Fatalf("unexpected route %+v", r)
	}

	r, err = f.svc.Routes.ToggleActive(f.ctx, r.ID)
	if err != nil || r.Active {
		t.Fatalf("toggle: %+v %v", r, err)
	}
}

func TestRouteDeleteReferenced(t *testing.T) {
	f := newFixture(t, 4)
	if err := f.svc.Routes.Delete(f.ctx, f.route.ID); !domain.IsConflict(err) {
		t.Fatalf("deleted route with departures: %v", err)
	}
	if err := f.svc.Routes.Delete(f.ctx, 404); !domain.IsNotFound(err) {
		t.Fatalf("unknown route: %v", err)
	}

	spare, err := f.svc.Routes.Create(f.ctx, RouteInput{Name: "X", Origin: "A", Destination: "B", FarePerSeat: 100})
	f.must(err)
	if err := f.svc.Routes.Delete(f.ctx, spare.ID); err != nil {
		t.Fatalf("delete unused route: %v", err)
	}
}

func TestVehicleDeleteKeepsCancelledDeparturesReadable(t *testing.T) {
	f := newFixture(t, 4)
	if _, err := f.svc.Departures.Cancel(f.ctx, f.dep.ID, false); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := f.svc.Vehicles.Delete(f.ctx, f.vehicle.ID); !domain.IsConflict(err) {
		t.Fatalf("deleted vehicle still referenced by a cancelled departure: %v", err)
	}

	list, err := f.svc.Departures.List(f.ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list after delete attempt: %v %v", list, err)
	}
	if _, err := f.svc.Manifests.Report(f.ctx, f.dep.ID); err != nil {
		t.Fatalf("report after delete attempt: %v", err)
	}

	spare, err := f.svc.Vehicles.Create(f.ctx, VehicleInput{Plate: "Z9Z-999", Capacity: 10})
	f.must(err)
	if err := f.svc.Vehicles.Delete(f.ctx, spare.ID); err != nil {
		t.Fatalf("delete unused vehicle: %v", err)
	}
}

func TestVehicleRules(t *testing.T) {
	f := newFixture(t, 4)
	admin := f.user("jefe", domain.RoleAdmin)

	cases := []struct {
		name  string
		in    VehicleInput
		check func(error) bool
	}{
		{"no plate", VehicleInput{Capacity: 4}, domain.IsValidation},
		{"zero capacity", VehicleInput{Plate: "B2B-000"}, domain.IsValidation},
		{"bad status", VehicleInput{Plate: "B2B-000", Capacity: 4, Status: "parked"}, domain.IsValidation},
		{"admin as driver", VehicleInput{Plate: "B2B-000", Capacity: 4, DriverID: admin.ID}, domain.IsValidation},
		{"missing driver", VehicleInput{Plate: "B2B-000", Capacity: 4, DriverID: 404}, domain.IsValidation},
		{"duplicate plate", VehicleInput{Plate: "m1a-234", Capacity: 4}, domain.IsConflict},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Vehicles.Create(f.ctx, tt.in); !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}

	v, err := f.svc.Vehicles.Create(f.ctx, VehicleInput{Plate: " c3c-333 ", Capacity: 12, DriverID: f.other.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.Plate != "C3C-333" || v.Status != models.VehicleActive {
		t.Fatalf("unexpected vehicle %+v", v)
	}

	if err := f.svc.Vehicles.Delete(f.ctx, f.vehicle.ID); !domain.IsConflict(err) {
		t.Fatalf("deleted vehicle with live departure: %v", err)
	}
	if err := f.svc.Vehicles.Delete(f.ctx, v.ID); err != nil {
		t.Fatalf("delete idle vehicle: %v", err)
	}
}

func TestDriverDirectory(t *testing.T) {
	f := newFixture(t, 4)

	if _, err := f.svc.Drivers.RegisterDriver(f.ctx, DriverInput{Username: "lucia", Password: "123"}); !domain.IsValidation(err) {
		t.Fatalf("short password accepted: %v", err)
	}
	d, err := f.svc.Drivers.RegisterDriver(f.ctx, DriverInput{Username: " Lucia ", Password: "secreto1", FullName: "lucia vargas"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if d.Username != "lucia" || d.FullName != "Lucia Vargas" || !d.Active || d.PasswordHash == "secreto1" {
		t.Fatalf("unexpected driver %+v", d)
	}
	if _, err := f.svc.Drivers.RegisterDriver(f.ctx, DriverInput{Username: "lucia", Password: "secreto2"}); !domain.IsConflict(err) {
		t.Fatalf("duplicate username: %v", err)
	}

	d, err = f.svc.Drivers.ToggleDriverActive(f.ctx, d.ID)
	if err != nil || d.Active {
		t.Fatalf("toggle: %+v %v", d, err)
	}
	active, _ := f.svc.Drivers.ListDrivers(f.ctx, true)
	all, _ := f.svc.Drivers.ListDrivers(f.ctx, false)
	if len(all) != len(active)+1 {
		t.Fatalf("inactive driver filtering broken: all=%d active=%d", len(all), len(active))
	}

	admin := f.user("boss", domain.RoleAdmin)
	if _, err := f.svc.Drivers.UpdateDriver(f.ctx, admin.ID, DriverUpdate{FullName: "x"}); !domain.IsNotFound(err) {
		t.Fatalf("admin edited as driver: %v", err)
	}
}
