package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
)

func seedDeparture(t *testing.T, st Store, capacity int) (models.Departure, models.Vehicle) {
	t.Helper()
	ctx := context.Background()
	route, err := st.Routes.Create(ctx, models.Route{Name: "Chachapoyas - Luya", Origin: "Chachapoyas", Destination: "Luya", FarePerSeat: 1500, Active: true})
	if err != nil {
		t.Fatalf("create route: %v", err)
	}
	driver, err := st.Users.Create(ctx, models.User{Username: "rosa", Role: domain.RoleDriver, Active: true, PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create driver: %v", err)
	}
	vehicle, err := st.Vehicles.Create(ctx, models.Vehicle{Plate: "ABC-123", Capacity: capacity, DriverID: driver.ID, Status: models.VehicleActive})
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	dep, err := st.Departures.Create(ctx, models.Departure{
		RouteID: route.ID, VehicleID: vehicle.ID, DriverID: driver.ID,
		ScheduledAt: time.Date(2026, 3, 10, 6, 30, 0, 0, time.Local), Status: models.DepartureScheduled,
	})
	if err != nil {
		t.Fatalf("create departure: %v", err)
	}
	return dep, vehicle
}

func TestMemorySeatCreateRejectsTakenSeat(t *testing.T) {
	st := NewMemoryStore().Store()
	dep, v := seedDeparture(t, st, 4)
	ctx := context.Background()

	seat := models.SeatAssignment{DepartureID: dep.ID, SeatNumber: 2, Kind: models.SeatSold, Status: models.SeatPaid}
	if _, err := st.Seats.Create(ctx, seat, v.Capacity); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := st.Seats.Create(ctx, seat, v.Capacity)
	if !domain.IsSeatTaken(err) {
		t.Fatalf("expected seat taken, got %v", err)
	}
}

func TestMemorySeatCreateRejectsWhenFull(t *testing.T) {
	st := NewMemoryStore().Store()
	dep, _ := seedDeparture(t, st, 1)
	ctx := context.Background()

	if _, err := st.Seats.Create(ctx, models.SeatAssignment{DepartureID: dep.ID, SeatNumber: 1}, 1); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := st.Seats.Create(ctx, models.SeatAssignment{DepartureID: dep.ID, SeatNumber: 2}, 1)
	if !domain.IsNoCapacity(err) {
		t.Fatalf("expected no capacity, got %v", err)
	}
}

func TestMemorySeatCreateConcurrentSameSeat(t *testing.T) {
	st := NewMemoryStore().Store()
	dep, v := seedDeparture(t, st, 10)
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.Seats.Create(ctx, models.SeatAssignment{DepartureID: dep.ID, SeatNumber: 7}, v.Capacity)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

func TestMemoryDepartureOnePerVehicleDay(t *testing.T) {
	st := NewMemoryStore().Store()
	dep, _ := seedDeparture(t, st, 4)
	ctx := context.Background()

	again := dep
	again.ID = 0
	again.ScheduledAt = dep.ScheduledAt.Add(5 * time.Hour)
	if _, err := st.Departures.Create(ctx, again); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := st.Departures.UpdateStatus(ctx, dep.ID, models.DepartureCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := st.Departures.Create(ctx, again); err != nil {
		t.Fatalf("cancelled departure should free the day: %v", err)
	}
}

func TestMemoryDepartureListOrdering(t *testing.T) {
	st := NewMemoryStore().Store()
	dep, v := seedDeparture(t, st, 4)
	ctx := context.Background()

	later := dep
	later.ID = 0
	later.ScheduledAt = dep.ScheduledAt.AddDate(0, 0, 1)
	later, err := st.Departures.Create(ctx, later)
	if err != nil {
		t.Fatalf("create later: %v", err)
	}

	desc, _ := st.Departures.List(ctx, DepartureFilter{VehicleID: v.ID})
	if len(desc) != 2 || desc[0].ID != later.ID {
		t.Fatalf("expected newest first, got %+v", desc)
	}
	asc, _ := st.Departures.List(ctx, DepartureFilter{Ascending: true})
	if asc[0].ID != dep.ID {
		t.Fatalf("expected oldest first, got %+v", asc)
	}
	none, _ := st.Departures.List(ctx, DepartureFilter{Statuses: []models.DepartureStatus{models.DepartureCompleted}})
	if len(none) != 0 {
		t.Fatalf("expected no completed departures, got %d", len(none))
	}
}

func TestMemoryVehiclePlateUnique(t *testing.T) {
	st := NewMemoryStore().Store()
	ctx := context.Background()
	if _, err := st.Vehicles.Create(ctx, models.Vehicle{Plate: "XYZ-999", Capacity: 10}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := st.Vehicles.Create(ctx, models.Vehicle{Plate: "xyz-999", Capacity: 12}); !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestMemoryVehicleDeleteReferenced(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore().Store()
	v, err := s.Vehicles.Create(ctx, models.Vehicle{Plate: "ABC-123", Capacity: 4, Status: models.VehicleActive})
	if err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	if _, err := s.Departures.Create(ctx, models.Departure{
		RouteID: 1, VehicleID: v.ID, DriverID: 2, ScheduledAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local),
		Status: models.DepartureCancelled,
	}); err != nil {
		t.Fatalf("create departure: %v", err)
	}

	if err := s.Vehicles.Delete(ctx, v.ID); !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := s.Vehicles.GetByID(ctx, v.ID); err != nil {
		t.Fatalf("vehicle gone after rejected delete: %v", err)
	}
}

func TestMemoryUserUpdateKeepsPassword(t *testing.T) {
	st := NewMemoryStore().Store()
	ctx := context.Background()
	u, _ := st.Users.Create(ctx, models.User{Username: "luis", Role: domain.RoleDriver, PasswordHash: "hash", Active: true})

	u.PasswordHash = ""
	u.Active = false
	if _, err := st.Users.Update(ctx, u); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := st.Users.GetByID(ctx, u.ID)
	if got.PasswordHash != "hash" || got.Active {
		t.Fatalf("unexpected user after update: %+v", got)
	}
}
