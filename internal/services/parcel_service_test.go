package services

import (
	"testing"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
)

func shipInput(weight float64) ParcelInput {
	return ParcelInput{
		Sender:      models.Contact{Name: "maria lopez", Phone: "987654321"},
		Recipient:   models.Contact{Name: "carlos diaz"},
		Description: "caja de  cafe",
		WeightKg:    weight,
	}
}

func TestShipPricesByWeight(t *testing.T) {
	f := newFixture(t, 4)

	p, err := f.svc.Parcels.Ship(f.ctx, f.dep.ID, shipInput(3.333))
	if err != nil {
		t.Fatalf("ship: %v", err)
	}
	// 3.33 kg at 2.50 per kg.
	if p.Price.String() != "8.33" || p.WeightKg != 3.33 {
		t.Fatalf("price=%s weight=%v", p.Price, p.WeightKg)
	}
	if p.Status != models.ParcelShipped || p.Sender.Name != "Maria Lopez" || p.Description != "caja de cafe" {
		t.Fatalf("unexpected parcel %+v", p)
	}
	left, _ := f.svc.Seats.CapacityRemaining(f.ctx, f.dep.ID)
	if left != 4 {
		t.Fatalf("parcels must not use seats, remaining=%d", left)
	}
}

func TestShipValidation(t *testing.T) {
	f := newFixture(t, 4)

	bad := []ParcelInput{
		shipInput(0),
		shipInput(-1),
		{Recipient: models.Contact{Name: "x"}, Description: "d", WeightKg: 1},
		{Sender: models.Contact{Name: "x"}, Description: "d", WeightKg: 1},
		{Sender: models.Contact{Name: "x"}, Recipient: models.Contact{Name: "y"}, WeightKg: 1},
	}
	for i, in := range bad {
		if _, err := f.svc.Parcels.Ship(f.ctx, f.dep.ID, in); !domain.IsValidation(err) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}

	f.setStatus(models.DepartureCompleted)
	if _, err := f.svc.Parcels.Ship(f.ctx, f.dep.ID, shipInput(1)); !domain.IsInvalidState(err) {
		t.Fatalf("shipped on completed departure: %v", err)
	}
}

func TestParcelLifecycle(t *testing.T) {
	f := newFixture(t, 4)
	p, err := f.svc.Parcels.Ship(f.ctx, f.dep.ID, shipInput(2))
	f.must(err)

	if p, err = f.svc.Parcels.MarkInTransit(f.ctx, p.ID, f.driver.ID); err != nil || p.Status != models.ParcelInTransit {
		t.Fatalf("in transit: %+v %v", p, err)
	}
	if _, err = f.svc.Parcels.MarkInTransit(f.ctx, p.ID, f.driver.ID); err != nil {
		t.Fatalf("repeat in transit: %v", err)
	}
	p, err = f.svc.Parcels.Deliver(f.ctx, p.ID, 0)
	if err != nil || p.Status != models.ParcelDelivered || p.DeliveredAt == nil || !p.DeliveredAt.Equal(testNow) {
		t.Fatalf("deliver: %+v %v", p, err)
	}
	if _, err := f.svc.Parcels.Deliver(f.ctx, p.ID, 0); !domain.IsInvalidState(err) {
		t.Fatalf("delivered twice: %v", err)
	}
	if _, err := f.svc.Parcels.MarkInTransit(f.ctx, p.ID, f.driver.ID); !domain.IsInvalidState(err) {
		t.Fatalf("delivered parcel back in transit: %v", err)
	}
}

func TestParcelStatusOnlyByAssignedDriver(t *testing.T) {
	f := newFixture(t, 4)
	p, err := f.svc.Parcels.Ship(f.ctx, f.dep.ID, shipInput(2))
	f.must(err)

	if _, err := f.svc.Parcels.MarkInTransit(f.ctx, p.ID, f.other.ID); !domain.IsPermission(err) {
		t.Fatalf("other driver moved parcel: %v", err)
	}
	if _, err := f.svc.Parcels.Deliver(f.ctx, p.ID, f.other.ID); !domain.IsPermission(err) {
		t.Fatalf("other driver delivered parcel: %v", err)
	}
	stored, err := f.store.Parcels.GetByID(f.ctx, p.ID)
	if err != nil || stored.Status != models.ParcelShipped {
		t.Fatalf("parcel changed after rejection: %+v %v", stored, err)
	}

	if _, err := f.svc.Parcels.Deliver(f.ctx, p.ID, f.driver.ID); err != nil {
		t.Fatalf("assigned driver deliver: %v", err)
	}
}

func TestListParcelsNewestFirst(t *testing.T) {
	f := newFixture(t, 4)
	first, err := f.svc.Parcels.Ship(f.ctx, f.dep.ID, shipInput(1))
	f.must(err)
	second, err := f.svc.Parcels.Ship(f.ctx, f.dep.ID, shipInput(2))
	f.must(err)

	list, err := f.svc.Parcels.ListByDeparture(f.ctx, f.dep.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %v %v", list, err)
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %d then %d", list[0].ID, list[1].ID)
	}
	if _, err := f.svc.Parcels.ListByDeparture(f.ctx, 404); !domain.IsNotFound(err) {
		t.Fatalf("unknown departure: %v", err)
	}
}
