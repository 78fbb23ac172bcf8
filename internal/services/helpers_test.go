package services

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
	"transporte/internal/metrics"
	"transporte/internal/repositories"
)

var testNow = time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)

type fixture struct {
	t       *testing.T
	ctx     context.Context
	store   repositories.Store
	svc     Services
	route   models.Route
	vehicle models.Vehicle
	driver  models.User
	other   models.User
	dep     models.Departure
}

// newFixture seeds one route, one vehicle of the given capacity, two drivers
// and a scheduled departure two hours after testNow.
func newFixture(t *testing.T, capacity int) *fixture {
	t.Helper()
	f := &fixture{t: t, ctx: context.Background(), store: repositories.NewMemoryStore().Store()}
	f.svc = New(Deps{
		Store:     f.store,
		Metrics:   metrics.New(prometheus.NewRegistry()),
		Clock:     func() time.Time { return testNow },
		JWTSecret: "test-secret",
		JWTTTL:    time.Hour,
	})

	var err error
	f.route, err = f.store.Routes.Create(f.ctx, models.Route{
		Name: "Chachapoyas - Lamud", Origin: "Chachapoyas", Destination: "Lamud",
		FarePerSeat: 1500, PerKgRate: 250, Active: true,
	})
	f.must(err)
	f.driver = f.user("rosa", domain.RoleDriver)
	f.other = f.user("pedro", domain.RoleDriver)
	f.vehicle, err = f.store.Vehicles.Create(f.ctx, models.Vehicle{
		Plate: "M1A-234", Capacity: capacity, DriverID: f.driver.ID, Status: models.VehicleActive,
	})
	f.must(err)
	f.dep, err = f.svc.Departures.Create(f.ctx, DepartureInput{
		RouteID: f.route.ID, VehicleID: f.vehicle.ID, DriverID: f.driver.ID,
		ScheduledAt: testNow.Add(2 * time.Hour),
	})
	f.must(err)
	return f
}

func (f *fixture) must(err error) {
	f.t.Helper()
	if err != nil {
		f.t.Fatalf("fixture: %v", err)
	}
}

func (f *fixture) user(username string, role domain.Role) models.User {
	f.t.Helper()
	u, err := f.store.Users.Create(f.ctx, models.User{Username: username, FullName: username, Role: role, Active: true, PasswordHash: "x"})
	f.must(err)
	return u
}

func (f *fixture) sell(seat int) (models.SeatSaleResult, error) {
	return f.svc.Seats.Sell(f.ctx, f.dep.ID, seat, models.Passenger{Name: "ana quispe", NationalID: "44556677"}, 0)
}

func (f *fixture) hold(seat int) (models.SeatSaleResult, error) {
	return f.svc.Seats.DriverHold(f.ctx, f.dep.ID, seat, models.Passenger{Name: "juan tuesta", NationalID: "12345678"}, f.driver.ID)
}

func (f *fixture) setStatus(status models.DepartureStatus) {
	f.t.Helper()
	f.must(f.store.Departures.UpdateStatus(f.ctx, f.dep.ID, status))
}

func (f *fixture) setCapacity(capacity int) {
	f.t.Helper()
	f.vehicle.Capacity = capacity
	_, err := f.store.Vehicles.Update(f.ctx, f.vehicle)
	f.must(err)
}

func collect(seq func(func(int) bool)) []int {
	out := []int{}
	seq(func(n int) bool {
		out = append(out, n)
		return true
	})
	return out
}
