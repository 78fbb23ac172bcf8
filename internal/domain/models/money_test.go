package models

import (
	"encoding/json"
	"testing"
)

func TestMoneyString(t *testing.T) {
	cases := map[Money]string{
		1500: "15.00",
		5:    "0.05",
		-250: "-2.50",
		0:    "0.00",
	}
	for in, want := range cases {
		if got := in.String(); got != want {
			t.Fatalf("Money(%d).String() = %q, want %q", int64(in), got, want)
		}
	}
}

func TestMoneyMulWeightRoundsToCent(t *testing.T) {
	rate := Money(350) // 3.50 per kg
	if got := rate.MulWeight(2.25); got != 788 {
		t.Fatalf("2.25kg at 3.50 = %s, want 7.88", got)
	}
	if got := rate.MulWeight(0); got != 0 {
		t.Fatalf("zero weight priced at %s", got)
	}
}

func TestMoneyJSON(t *testing.T) {
	var payload struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":15.5,"b":"2.05"}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.A != 1550 || payload.B != 205 {
		t.Fatalf("unexpected values %d %d", payload.A, payload.B)
	}
	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":15.50,"b":2.05}` {
		t.Fatalf("unexpected json %s", out)
	}
}

func TestDepartureStatusTransitions(t *testing.T) {
	if !DepartureScheduled.CanAdvanceTo(DepartureUnderway) {
		t.Fatal("scheduled -> underway should be allowed")
	}
	if !DepartureScheduled.CanAdvanceTo(DepartureCompleted) {
		t.Fatal("scheduled -> completed should be allowed")
	}
	if DepartureCompleted.CanAdvanceTo(DepartureUnderway) {
		t.Fatal("completed -> underway should be rejected")
	}
	if DepartureCancelled.CanAdvanceTo(DepartureUnderway) {
		t.Fatal("cancelled is terminal")
	}
	if DepartureUnderway.CanAdvanceTo(DepartureUnderway) {
		t.Fatal("repeating a state is not an advance")
	}
}
