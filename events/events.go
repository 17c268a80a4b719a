package events

import (
	"context"
	"errors"
	"time"
)

type Type string

const (
	SessionOpened        Type = "session.opened"
	SessionClosed        Type = "session.closed"
	OrderPlaced          Type = "order.placed"
	OrderStatusChanged   Type = "order.status_changed"
	PaymentCompleted     Type = "payment.completed"
	PaymentRequested     Type = "payment.requested"
	ServiceRequested     Type = "service.requested"
	ServiceStatusChanged Type = "service.status_changed"
	GameFinished         Type = "game.finished"
	CoasterUpdated       Type = "coaster.updated"
)

// Event is a post-commit notification scoped to one restaurant.
type Event struct {
	Type         Type        `json:"event"`
	RestaurantID string      `json:"restaurant_id"`
	Data         interface{} `json:"data"`
	OccurredAt   time.Time   `json:"occurred_at"`
}

func New(t Type, restaurantID string, data interface{}) Event {
	return Event{Type: t, RestaurantID: restaurantID, Data: data, OccurredAt: time.Now().UTC()}
}

//go:generate mockgen -package=mocks -destination=mocks/mock_notifier.go github.com/bierdeckel/bierdeckel-api/events Notifier
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Multi delivers an event to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }
