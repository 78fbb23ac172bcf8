package services

import (
	"bytes"
	"strconv"
	"testing"

	"transporte/internal/domain"
	"transporte/internal/domain/models"
)

func TestRevenueExcludesDriverHolds(t *testing.T) {
	f := newFixture(t, 20)
	f.must(errOnly(f.sell(1)))
	f.must(errOnly(f.sell(2)))
	f.must(errOnly(f.hold(3)))

	rev, err := f.svc.Manifests.Revenue(f.ctx, f.dep.ID)
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if rev.String() != "30.00" {
		t.Fatalf("revenue = %s, want 30.00", rev)
	}

	roster, err := f.svc.Manifests.Roster(f.ctx, f.dep.ID)
	if err != nil || len(roster) != 3 {
		t.Fatalf("roster: %v %v", roster, err)
	}
	if roster[2].Kind != models.SeatDriverHold || roster[0].SeatNumber != 1 {
		t.Fatalf("roster order/kind wrong: %+v", roster)
	}
}

func TestOccupancy(t *testing.T) {
	f := newFixture(t, 3)
	f.must(errOnly(f.sell(1)))

	first, err := f.svc.Manifests.Occupancy(f.ctx, f.dep.ID)
	if err != nil {
		t.Fatalf("occupancy: %v", err)
	}
	second, _ := f.svc.Manifests.Occupancy(f.ctx, f.dep.ID)
	if first != 33.33 || second != first {
		t.Fatalf("occupancy = %v then %v, want 33.33 twice", first, second)
	}
}

func TestManifestDocumentOnlyForAssignedDriver(t *testing.T) {
	f := newFixture(t, 10)
	f.must(errOnly(f.sell(4)))

	if _, err := f.svc.Manifests.ManifestDocument(f.ctx, f.dep.ID, f.other.ID); !domain.IsPermission(err) {
		t.Fatalf("other driver got manifest: %v", err)
	}
	if _, err := f.svc.Manifests.ManifestDocument(f.ctx, f.dep.ID, 0); !domain.IsPermission(err) {
		t.Fatalf("anonymous caller got manifest: %v", err)
	}
	doc, err := f.svc.Manifests.ManifestDocument(f.ctx, f.dep.ID, f.driver.ID)
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if doc.Trip.Plate != "M1A-234" || doc.Stats.Passengers != 1 || doc.Stats.Revenue != 1500 || doc.Stats.Inconsistent {
		t.Fatalf("unexpected document %+v", doc)
	}
}

func TestReportFlagsSeatsBeyondCapacity(t *testing.T) {
	f := newFixture(t, 6)
	f.must(errOnly(f.sell(5)))
	f.must(errOnly(f.sell(6)))
	_, err := f.svc.Parcels.Ship(f.ctx, f.dep.ID, shipInput(1.5))
	f.must(err)
	f.setCapacity(5)

	doc, err := f.svc.Manifests.Report(f.ctx, f.dep.ID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	st := doc.Stats
	if !st.Inconsistent || len(st.OverCapacitySeats) != 1 || st.OverCapacitySeats[0] != 6 {
		t.Fatalf("over capacity not reported: %+v", st)
	}
	if len(doc.Roster) != 2 {
		t.Fatalf("over capacity seat hidden from roster: %+v", doc.Roster)
	}
	if st.Parcels != 1 || st.ParcelWeightKg != 1.5 || st.ParcelRevenue.String() != "3.75" {
		t.Fatalf("parcel totals wrong: %+v", st)
	}
}

func TestRenderManifestPDF(t *testing.T) {
	f := newFixture(t, 10)
	f.must(errOnly(f.sell(1)))
	f.must(errOnly(f.hold(2)))

	doc, err := f.svc.Manifests.ManifestDocument(f.ctx, f.dep.ID, f.driver.ID)
	f.must(err)

	pdf, name, err := f.svc.Docs.RenderManifestPDF(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if name != "MANIFIESTO_"+strconv.FormatInt(int64(f.dep.ID), 10)+"_20260310_0800.pdf" {
		t.Fatalf("filename = %q", name)
	}
}
