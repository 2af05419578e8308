package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/pverdier/tripsched/core/events"
	"github.com/pverdier/tripsched/internal/eventbus"
)

// watchProgress subscribes to the bus and narrates pipeline stages on w while
// a planning run is in flight. The returned stop function unsubscribes and
// waits for the printer to drain, so callers can stop before writing their
// own final output.
func watchProgress(bus eventbus.EventBus, w io.Writer) (stop func()) {
	sub := bus.Subscribe(64)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for e := range sub {
			switch ev := e.(type) {
			case events.RunStartedEvent:
				fmt.Fprintf(w, "planning %s, %d nights, budget %s\n",
					ev.Request.Destination, ev.Request.Nights, ev.Request.Budget)
			case events.WindowsEvent:
				fmt.Fprintf(w, "%d candidate windows, %d clear after calendar check\n",
					ev.Generated, ev.Available)
			case events.FetchEvent:
				if !ev.Complete {
					fmt.Fprintf(w, "no complete offer set for %s\n", ev.Window)
				}
			case events.RankedEvent:
				if ev.Best == nil {
					fmt.Fprintln(w, "no feasible plan within budget")
				} else {
					fmt.Fprintf(w, "%d options ranked, best %s at %s\n",
						ev.Bundles, ev.Best.Bundle.Window, ev.Best.Bundle.TotalCost())
				}
			case events.ReservationEvent:
				fmt.Fprintf(w, "reservation %s confirmed for %s\n",
					ev.Reservation.ProviderRef, ev.TotalCost)
			}
		}
	}()
	return func() {
		bus.Unsubscribe(sub)
		wg.Wait()
	}
}
