package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
)

// MemoryStore keeps every aggregate in process memory. It honours the same
// uniqueness rules as the MySQL schema, so services behave identically on it.
type MemoryStore struct {
	mu         sync.RWMutex
	nextID     int64
	routes     map[domain.ID]models.Route
	vehicles   map[domain.ID]models.Vehicle
	users      map[domain.ID]models.User
	departures map[domain.ID]models.Departure
	seats      map[domain.ID]models.SeatAssignment
	parcels    map[domain.ID]models.Parcel
	now        func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		routes:     map[domain.ID]models.Route{},
		vehicles:   map[domain.ID]models.Vehicle{},
		users:      map[domain.ID]models.User{},
		departures: map[domain.ID]models.Departure{},
		seats:      map[domain.ID]models.SeatAssignment{},
		parcels:    map[domain.ID]models.Parcel{},
		now:        time.Now,
	}
}

// Store exposes the memory implementations through the repository interfaces.
func (s *MemoryStore) Store() Store {
	return Store{
		Routes:     memRoutes{s},
		Vehicles:   memVehicles{s},
		Users:      memUsers{s},
		Departures: memDepartures{s},
		Seats:      memSeats{s},
		Parcels:    memParcels{s},
	}
}

func (s *MemoryStore) id() domain.ID {
	s.nextID++
	return domain.ID(s.nextID)
}

type memRoutes struct{ s *MemoryStore }

func (m memRoutes) List(_ context.Context, activeOnly bool) ([]models.Route, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := []models.Route{}
	for _, r := range m.s.routes {
		if activeOnly && !r.Active {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m memRoutes) GetByID(_ context.Context, id domain.ID) (models.Route, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	r, ok := m.s.routes[id]
	if !ok {
		return r, domain.NotFoundError{Resource: "route"}
	}
	return r, nil
}

func (m memRoutes) Create(_ context.Context, r models.Route) (models.Route, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	r.ID = m.s.id()
	m.s.routes[r.ID] = r
	return r, nil
}

func (m memRoutes) Update(_ context.Context, r models.Route) (models.Route, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.routes[r.ID]; !ok {
		return r, domain.NotFoundError{Resource: "route"}
	}
	m.s.routes[r.ID] = r
	return r, nil
}

func (m memRoutes) Delete(_ context.Context, id domain.ID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.routes[id]; !ok {
		return domain.NotFoundError{Resource: "route"}
	}
	for _, d := range m.s.departures {
		if d.RouteID == id {
			return domain.ConflictError{Resource: "route", Msg: "route has departures"}
		}
	}
	delete(m.s.routes, id)
	return nil
}

type memVehicles struct{ s *MemoryStore }

func (m memVehicles) List(_ context.Context) ([]models.Vehicle, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := make([]models.Vehicle, 0, len(m.s.vehicles))
	for _, v := range m.s.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Plate < out[j].Plate })
	return out, nil
}

func (m memVehicles) GetByID(_ context.Context, id domain.ID) (models.Vehicle, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	v, ok := m.s.vehicles[id]
	if !ok {
		return v, domain.NotFoundError{Resource: "vehicle"}
	}
	return v, nil
}

func (m memVehicles) plateTaken(plate string, except domain.ID) bool {
	for _, v := range m.s.vehicles {
		if v.ID != except && strings.EqualFold(v.Plate, plate) {
			return true
		}
	}
	return false
}

func (m memVehicles) Create(_ context.Context, v models.Vehicle) (models.Vehicle, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.plateTaken(v.Plate, 0) {
		return v, domain.ConflictError{Resource: "vehicle", Msg: "plate already registered"}
	}
	v.ID = m.s.id()
	m.s.vehicles[v.ID] = v
	return v, nil
}

func (m memVehicles) Update(_ context.Context, v models.Vehicle) (models.Vehicle, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.vehicles[v.ID]; !ok {
		return v, domain.NotFoundError{Resource: "vehicle"}
	}
	if m.plateTaken(v.Plate, v.ID) {
		return v, domain.ConflictError{Resource: "vehicle", Msg: "plate already registered"}
	}
	m.s.vehicles[v.ID] = v
	return v, nil
}

func (m memVehicles) Delete(_ context.Context, id domain.ID) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.vehicles[id]; !ok {
		return domain.NotFoundError{Resource: "vehicle"}
	}
	for _, d := range m.s.departures {
		if d.VehicleID == id {
			return domain.ConflictError{Resource: "vehicle", Msg: "vehicle has departures"}
		}
	}
	delete(m.s.vehicles, id)
	return nil
}

type memUsers struct{ s *MemoryStore }

func (m memUsers) GetByID(_ context.Context, id domain.ID) (models.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	u, ok := m.s.users[id]
	if !ok {
		return u, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}

func (m memUsers) GetByUsername(_ context.Context, username string) (models.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, u := range m.s.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return models.User{}, domain.NotFoundError{Resource: "user"}
}

func (m memUsers) ListByRole(_ context.Context, role domain.Role, activeOnly bool) ([]models.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := []models.User{}
	for _, u := range m.s.users {
		if u.Role != role || (activeOnly && !u.Active) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memUsers) Create(_ context.Context, u models.User) (models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return u, domain.ConflictError{Resource: "user", Msg: "username already registered"}
		}
	}
	u.ID = m.s.id()
	m.s.users[u.ID] = u
	return u, nil
}

func (m memUsers) Update(_ context.Context, u models.User) (models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	existing, ok := m.s.users[u.ID]
	if !ok {
		return u, domain.NotFoundError{Resource: "user"}
	}
	if u.PasswordHash == "" {
		u.PasswordHash = existing.PasswordHash
	}
	u.Username, u.Role = existing.Username, existing.Role
	m.s.users[u.ID] = u
	return u, nil
}

type memDepartures struct{ s *MemoryStore }

func (m memDepartures) GetByID(_ context.Context, id domain.ID) (models.Departure, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	d, ok := m.s.departures[id]
	if !ok {
		return d, domain.NotFoundError{Resource: "departure"}
	}
	return d, nil
}

func (m memDepartures) List(_ context.Context, f DepartureFilter) ([]models.Departure, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := []models.Departure{}
	for _, d := range m.s.departures {
		switch {
		case !f.From.IsZero() && d.ScheduledAt.Before(f.From):
			continue
		case !f.To.IsZero() && !d.ScheduledAt.Before(f.To):
			continue
		case f.VehicleID != 0 && d.VehicleID != f.VehicleID:
			continue
		case f.DriverID != 0 && d.DriverID != f.DriverID:
			continue
		case f.RouteID != 0 && d.RouteID != f.RouteID:
			continue
		case !hasStatus(f.Statuses, d.Status):
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ID < out[j].ID
		}
		if f.Ascending {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ScheduledAt.After(out[j].ScheduledAt)
	})
	return out, nil
}

func (m memDepartures) activeOnDay(vehicleID domain.ID, day string) bool {
	for _, d := range m.s.departures {
		if d.VehicleID == vehicleID && d.Status != models.DepartureCancelled && d.Day() == day {
			return true
		}
	}
	return false
}

func (m memDepartures) Create(_ context.Context, d models.Departure) (models.Departure, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if m.activeOnDay(d.VehicleID, d.Day()) {
		return d, domain.ValidationError{Field: "vehicle", Msg: "vehicle already has a departure that day"}
	}
	now := m.s.now()
	d.ID = m.s.id()
	d.CreatedAt, d.UpdatedAt = now, now
	m.s.departures[d.ID] = d
	return d, nil
}

func (m memDepartures) UpdateStatus(_ context.Context, id domain.ID, status models.DepartureStatus) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	d, ok := m.s.departures[id]
	if !ok {
		return domain.NotFoundError{Resource: "departure"}
	}
	d.Status = status
	d.UpdatedAt = m.s.now()
	m.s.departures[id] = d
	return nil
}

func (m memDepartures) ExistsActiveForVehicleDay(_ context.Context, vehicleID domain.ID, day time.Time) (bool, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return m.activeOnDay(vehicleID, models.DayOf(day)), nil
}

func (m memDepartures) CountByRoute(_ context.Context, routeID domain.ID) (int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	n := 0
	for _, d := range m.s.departures {
		if d.RouteID == routeID {
			n++
		}
	}
	return n, nil
}

func (m memDepartures) CountActiveByVehicle(_ context.Context, vehicleID domain.ID) (int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	n := 0
	for _, d := range m.s.departures {
		if d.VehicleID == vehicleID && d.Status != models.DepartureCancelled {
			n++
		}
	}
	return n, nil
}

type memSeats struct{ s *MemoryStore }

func (m memSeats) ListByDeparture(_ context.Context, departureID domain.ID) ([]models.SeatAssignment, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := []models.SeatAssignment{}
	for _, a := range m.s.seats {
		if a.DepartureID == departureID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (m memSeats) countLocked(departureID domain.ID) int {
	n := 0
	for _, a := range m.s.seats {
		if a.DepartureID == departureID {
			n++
		}
	}
	return n
}

func (m memSeats) CountByDeparture(_ context.Context, departureID domain.ID) (int, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return m.countLocked(departureID), nil
}

func (m memSeats) GetByID(_ context.Context, id domain.ID) (models.SeatAssignment, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	a, ok := m.s.seats[id]
	if !ok {
		return a, domain.NotFoundError{Resource: "seat assignment"}
	}
	return a, nil
}

func (m memSeats) Create(_ context.Context, a models.SeatAssignment, capacity int) (models.SeatAssignment, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.departures[a.DepartureID]; !ok {
		return a, domain.NotFoundError{Resource: "departure"}
	}
	for _, existing := range m.s.seats {
		if existing.DepartureID == a.DepartureID && existing.SeatNumber == a.SeatNumber {
			return a, domain.SeatTakenError{DepartureID: a.DepartureID, Seat: a.SeatNumber}
		}
	}
	if m.countLocked(a.DepartureID) >= capacity {
		return a, domain.NoCapacityError{DepartureID: a.DepartureID}
	}
	a.ID = m.s.id()
	a.CreatedAt = m.s.now()
	m.s.seats[a.ID] = a
	return a, nil
}

func (m memSeats) UpdateStatus(_ context.Context, id domain.ID, status models.SeatStatus) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.seats[id]
	if !ok {
		return domain.NotFoundError{Resource: "seat assignment"}
	}
	a.Status = status
	m.s.seats[id] = a
	return nil
}

type memParcels struct{ s *MemoryStore }

func (m memParcels) ListByDeparture(_ context.Context, departureID domain.ID) ([]models.Parcel, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	out := []models.Parcel{}
	for _, p := range m.s.parcels {
		if p.DepartureID == departureID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m memParcels) GetByID(_ context.Context, id domain.ID) (models.Parcel, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	p, ok := m.s.parcels[id]
	if !ok {
		return p, domain.NotFoundError{Resource: "parcel"}
	}
	return p, nil
}

func (m memParcels) Create(_ context.Context, p models.Parcel) (models.Parcel, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.departures[p.DepartureID]; !ok {
		return p, domain.NotFoundError{Resource: "departure"}
	}
	p.ID = m.s.id()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.s.now()
	}
	m.s.parcels[p.ID] = p
	return p, nil
}

func (m memParcels) Update(_ context.Context, p models.Parcel) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.parcels[p.ID]; !ok {
		return domain.NotFoundError{Resource: "parcel"}
	}
	m.s.parcels[p.ID] = p
	return nil
}
