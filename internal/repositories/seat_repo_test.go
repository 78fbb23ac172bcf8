package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
)

var (
	lockDeparture = regexp.QuoteMeta(`SELECT id FROM departures WHERE id = ? FOR UPDATE`)
	seatTakenSQL  = `SELECT COUNT\(\*\) FROM seat_assignments WHERE departure_id = \? AND seat_number = \?`
	seatCountSQL  = `SELECT COUNT\(\*\) FROM seat_assignments WHERE departure_id = \?\s*$`
)

func TestSeatRepoCreateInsertsWhenFree(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(lockDeparture).WithArgs(int64(3)).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(seatTakenSQL).WithArgs(int64(3), 5).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(seatCountSQL).WithArgs(int64(3)).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))
	mock.ExpectExec(`INSERT INTO seat_assignments`).WillReturnResult(sqlmock.NewResult(41, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`FROM seat_assignments WHERE id = \?`).WithArgs(int64(41)).WillReturnRows(
		sqlmock.NewRows([]string{"id", "departure_id", "seat_number", "passenger_name", "national_id", "phone", "price_cents", "kind", "status", "reserved_by", "created_at"}).
			AddRow(41, 3, 5, "Ana Quispe", "12345678", "", 1500, "sold", "paid", 0, time.Now()),
	)

	repo := SeatRepo{DB: db}
	a, err := repo.Create(context.Background(), models.SeatAssignment{
		DepartureID: 3, SeatNumber: 5, Passenger: models.Passenger{Name: "Ana Quispe", NationalID: "12345678"},
		Price: 1500, Kind: models.SeatSold, Status: models.SeatPaid,
	}, 20)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ID != 41 || a.Price != 1500 {
		t.Fatalf("unexpected assignment %+v", a)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSeatRepoCreateSeatTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(lockDeparture).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(seatTakenSQL).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectRollback()

	_, err = SeatRepo{DB: db}.Create(context.Background(), models.SeatAssignment{DepartureID: 3, SeatNumber: 5}, 20)
	if !domain.IsSeatTaken(err) {
		t.Fatalf("expected seat taken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSeatRepoCreateFull(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(lockDeparture).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(seatTakenSQL).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(seatCountSQL).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(20))
	mock.ExpectRollback()

	_, err = SeatRepo{DB: db}.Create(context.Background(), models.SeatAssignment{DepartureID: 3, SeatNumber: 5}, 20)
	if !domain.IsNoCapacity(err) {
		t.Fatalf("expected no capacity, got %v", err)
	}
}

func TestSeatRepoCreateDuplicateKeyIsSeatTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(lockDeparture).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(seatTakenSQL).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(seatCountSQL).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO seat_assignments`).WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	_, err = SeatRepo{DB: db}.Create(context.Background(), models.SeatAssignment{DepartureID: 3, SeatNumber: 5}, 20)
	if !domain.IsSeatTaken(err) {
		t.Fatalf("expected seat taken, got %v", err)
	}
}

func TestRouteRepoDeleteReferencedIsConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM routes WHERE id = ?`)).WithArgs(int64(9)).
		WillReturnError(&mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})

	if err := (RouteRepo{DB: db}).Delete(context.Background(), 9); !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestBuildDepartureQuery(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	q, args := buildDepartureQuery(DepartureFilter{
		From:      from,
		Statuses:  []models.DepartureStatus{models.DepartureScheduled, models.DepartureUnderway},
		DriverID:  4,
		Ascending: true,
	})
	want := "SELECT " + departureColumns + " FROM departures WHERE scheduled_at >= ? AND status IN (?, ?) AND driver_id = ? ORDER BY scheduled_at ASC, id ASC"
	if q != want {
		t.Fatalf("query mismatch:\n got %s\nwant %s", q, want)
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(args))
	}
}
