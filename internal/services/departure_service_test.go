package services

import (
	"testing"
	"time"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
)

func TestCreateDepartureValidatesReferences(t *testing.T) {
	f := newFixture(t, 10)

	inactive, err := f.store.Routes.Create(f.ctx, models.Route{Name: "Old", Origin: "A", Destination: "B", FarePerSeat: 100, Active: false})
	f.must(err)
	workshop, err := f.store.Vehicles.Create(f.ctx, models.Vehicle{Plate: "W0R-111", Capacity: 8, Status: models.VehicleMaintenance})
	f.must(err)
	admin := f.user("admin", domain.RoleAdmin)
	spare, err := f.store.Vehicles.Create(f.ctx, models.Vehicle{Plate: "S9A-222", Capacity: 8, Status: models.VehicleActive})
	f.must(err)

	at := testNow.AddDate(0, 0, 1)
	tests := []struct {
		name  string
		in    DepartureInput
		check func(error) bool
	}{
		{"unknown route", DepartureInput{RouteID: 99, VehicleID: spare.ID, DriverID: f.driver.ID, ScheduledAt: at}, domain.IsNotFound},
		{"inactive route", DepartureInput{RouteID: inactive.ID, VehicleID: spare.ID, DriverID: f.driver.ID, ScheduledAt: at}, domain.IsValidation},
		{"vehicle in maintenance", DepartureInput{RouteID: f.route.ID, VehicleID: workshop.ID, DriverID: f.driver.ID, ScheduledAt: at}, domain.IsValidation},
		{"admin as driver", DepartureInput{RouteID: f.route.ID, VehicleID: spare.ID, DriverID: admin.ID, ScheduledAt: at}, domain.IsValidation},
		{"unknown driver", DepartureInput{RouteID: f.route.ID, VehicleID: spare.ID, DriverID: 99, ScheduledAt: at}, domain.IsNotFound},
		{"missing time", DepartureInput{RouteID: f.route.ID, VehicleID: spare.ID, DriverID: f.driver.ID}, domain.IsValidation},
		{"vehicle busy that day", DepartureInput{RouteID: f.route.ID, VehicleID: f.vehicle.ID, DriverID: f.other.ID, ScheduledAt: testNow.Add(6 * time.Hour)}, domain.IsValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Departures.Create(f.ctx, tt.in); !tt.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}

	dep, err := f.svc.Departures.Create(f.ctx, DepartureInput{RouteID: f.route.ID, VehicleID: f.vehicle.ID, DriverID: f.driver.ID, ScheduledAt: at})
	if err != nil {
		t.Fatalf("next day should be free: %v", err)
	}
	if dep.Status != models.DepartureScheduled {
		t.Fatalf("status = %s", dep.Status)
	}
}

func TestCancelledDepartureFreesVehicleDay(t *testing.T) {
	f := newFixture(t, 10)
	if _, err := f.svc.Departures.Cancel(f.ctx, f.dep.ID, false); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err := f.svc.Departures.Create(f.ctx, DepartureInput{
		RouteID: f.route.ID, VehicleID: f.vehicle.ID, DriverID: f.driver.ID, ScheduledAt: testNow.Add(4 * time.Hour),
	})
	if err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}
}

func TestCancelPolicy(t *testing.T) {
	f := newFixture(t, 10)
	f.must(errOnly(f.sell(1)))

	if _, err := f.svc.Departures.Cancel(f.ctx, f.dep.ID, false); !domain.IsInvalidState(err) {
		t.Fatalf("cancel with paid passengers and no force: %v", err)
	}
	dep, err := f.svc.Departures.Cancel(f.ctx, f.dep.ID, true)
	if err != nil || dep.Status != models.DepartureCancelled {
		t.Fatalf("forced cancel: %+v %v", dep, err)
	}
	if _, err := f.svc.Departures.Cancel(f.ctx, f.dep.ID, false); err != nil {
		t.Fatalf("repeat cancel should succeed: %v", err)
	}
	if _, err := f.svc.Departures.MarkUnderway(f.ctx, f.dep.ID, 0); !domain.IsInvalidState(err) {
		t.Fatalf("cancelled departure moved: %v", err)
	}
	if _, err := f.sell(2); !domain.IsInvalidState(err) {
		t.Fatalf("sold on cancelled departure: %v", err)
	}
}

func TestCancelCompletedRejected(t *testing.T) {
	f := newFixture(t, 10)
	if _, err := f.svc.Departures.MarkCompleted(f.ctx, f.dep.ID, 0); err != nil {
		t.Fatalf("skip to completed: %v", err)
	}
	if _, err := f.svc.Departures.Cancel(f.ctx, f.dep.ID, true); !domain.IsInvalidState(err) {
		t.Fatalf("completed departure cancelled: %v", err)
	}
}

func TestLifecycleForwardOnly(t *testing.T) {
	f := newFixture(t, 10)

	if _, err := f.svc.Departures.MarkUnderway(f.ctx, f.dep.ID, f.other.ID); !domain.IsPermission(err) {
		t.Fatalf("other driver moved departure: %v", err)
	}
	dep, err := f.svc.Departures.MarkUnderway(f.ctx, f.dep.ID, f.driver.ID)
	if err != nil || dep.Status != models.DepartureUnderway {
		t.Fatalf("underway: %+v %v", dep, err)
	}
	if _, err := f.svc.Departures.MarkUnderway(f.ctx, f.dep.ID, f.driver.ID); err != nil {
		t.Fatalf("repeat underway: %v", err)
	}
	if dep, err = f.svc.Departures.MarkCompleted(f.ctx, f.dep.ID, 0); err != nil || dep.Status != models.DepartureCompleted {
		t.Fatalf("complete: %+v %v", dep, err)
	}
	if _, err := f.svc.Departures.MarkUnderway(f.ctx, f.dep.ID, 0); !domain.IsInvalidState(err) {
		t.Fatalf("moved backwards: %v", err)
	}
}

func TestListUpcoming(t *testing.T) {
	f := newFixture(t, 1)

	mk := func(plate string, capacity int, at time.Time) models.Departure {
		v, err := f.store.Vehicles.Create(f.ctx, models.Vehicle{Plate: plate, Capacity: capacity, Status: models.VehicleActive})
		f.must(err)
		d, err := f.svc.Departures.Create(f.ctx, DepartureInput{RouteID: f.route.ID, VehicleID: v.ID, DriverID: f.other.ID, ScheduledAt: at})
		f.must(err)
		return d
	}
	soon := mk("A1A-001", 10, testNow.Add(24*time.Hour))
	later := mk("A1A-002", 10, testNow.Add(72*time.Hour))
	edge := mk("A1A-003", 10, testNow.Add(upcomingWindow))
	mk("A1A-004", 10, testNow.Add(8*24*time.Hour))
	mk("A1A-005", 10, testNow.Add(-time.Hour))
	cancelled := mk("A1A-006", 10, testNow.Add(48*time.Hour))
	_, err := f.svc.Departures.Cancel(f.ctx, cancelled.ID, false)
	f.must(err)

	// The fixture departure has one seat; filling it hides it.
	f.must(errOnly(f.sell(1)))

	got, err := f.svc.Departures.ListUpcoming(f.ctx, testNow)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	want := []domain.ID{edge.ID, later.ID, soon.ID}
	if len(got) != len(want) {
		t.Fatalf("got %d departures, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].Departure.ID != id {
			t.Fatalf("position %d: got %d want %d", i, got[i].Departure.ID, id)
		}
	}
	if got[0].Available != 10 || got[0].Plate != "A1A-003" {
		t.Fatalf("unexpected summary %+v", got[0])
	}
}

func TestListForDayAndDriver(t *testing.T) {
	f := newFixture(t, 4)
	f.must(errOnly(f.sell(2)))

	day, err := f.svc.Departures.ListForDay(f.ctx, testNow)
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if len(day) != 1 || day[0].Occupied != 1 || day[0].Available != 3 {
		t.Fatalf("unexpected day view %+v", day)
	}
	if other, _ := f.svc.Departures.ListForDay(f.ctx, testNow.AddDate(0, 0, 1)); len(other) != 0 {
		t.Fatalf("next day should be empty, got %d", len(other))
	}

	mine, err := f.svc.Departures.ListForDriver(f.ctx, f.driver.ID, testNow)
	if err != nil || len(mine) != 1 {
		t.Fatalf("driver departures: %v %v", mine, err)
	}
	theirs, _ := f.svc.Departures.ListForDriver(f.ctx, f.other.ID, testNow)
	if len(theirs) != 0 {
		t.Fatalf("other driver sees %d departures", len(theirs))
	}

	trip, err := f.svc.Departures.Get(f.ctx, f.dep.ID)
	if err != nil || trip.Vehicle.Plate != "M1A-234" || trip.Driver.ID != f.driver.ID {
		t.Fatalf("get: %+v %v", trip, err)
	}
}
