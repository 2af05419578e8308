// Package notify defines the outbound notification capability used to
// announce committed reservations to interested systems.
package notify

import (
	"context"

	"github.com/pverdier/tripsched/core/model"
)

// Publisher announces a committed reservation. Implementations must not
// block the planning run on slow consumers.
type Publisher interface {
	PublishReservation(ctx context.Context, r model.Reservation, cost model.Money) error
	Close() error
}

// NopPublisher discards notifications.
type NopPublisher struct{}

func (NopPublisher) PublishReservation(context.Context, model.Reservation, model.Money) error {
	return nil
}
func (NopPublisher) Close() error { return nil }
