package model

import "testing"

func TestBookingStatus_Transitions(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		ok       bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusPending, BookingStatusCompleted, false},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusCompleted, true},
		{BookingStatusConfirmed, BookingStatusPending, false},
		{BookingStatusCancelled, BookingStatusPending, false},
		{BookingStatusCancelled, BookingStatusCancelled, false},
		{BookingStatusCompleted, BookingStatusCancelled, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.ok {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestBookingStatus_Flags(t *testing.T) {
	for _, s := range ActiveBookingStatuses() {
		if s.Terminal() {
			t.Fatalf("%s holds the slot but is terminal", s)
		}
	}
	if !BookingStatusCancelled.Terminal() || BookingStatusPending.Terminal() {
		t.Fatal("unexpected terminal flags")
	}
	if BookingStatus("archived").Valid() {
		t.Fatal("unknown status must be invalid")
	}
}
