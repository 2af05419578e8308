package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pverdier/tripsched/core/model"
)

// FakePort is an in-memory Port for tests and dry runs. Busy intervals and
// non-working days are fixed at construction; Err, when set, is returned by
// every call.
type FakePort struct {
	Busy       []model.BusyInterval
	NonWorking []time.Time
	Err        error

	mu       sync.Mutex
	created  []CreatedReservation
	writeSeq int
}

// CreatedReservation records one write accepted by the fake.
type CreatedReservation struct {
	Window  model.DateWindow
	Details ReservationDetails
}

func (f *FakePort) Availability(_ context.Context, from, to time.Time) (Availability, error) {
	if f.Err != nil {
		return Availability{}, f.Err
	}
	var av Availability
	for _, b := range f.Busy {
		if b.Overlaps(from, to) {
			av.Busy = append(av.Busy, b)
		}
	}
	for _, d := range f.NonWorking {
		if !d.Before(from) && d.Before(to) {
			av.NonWorking = append(av.NonWorking, d)
		}
	}
	return av, nil
}

func (f *FakePort) CreateReservation(_ context.Context, w model.DateWindow, d ReservationDetails) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, CreatedReservation{Window: w, Details: d})
	f.writeSeq++
	return fmt.Sprintf("fake-event-%d", f.writeSeq), nil
}

// Created returns the reservations written so far.
func (f *FakePort) Created() []CreatedReservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]CreatedReservation, len(f.created))
	copy(out, f.created)
	return out
}
