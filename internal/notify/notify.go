// Package notify fans detected changes out to the configured channels.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/spysage/monitor-cli/internal/model"
)

// Event is a change paired with the competitor it belongs to.
type Event struct {
	Change         model.Change
	CompetitorName string
}

// Notifier delivers an event to a single destination.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, ev Event) error
}

// Delivery records the outcome of one channel's attempt.
type Delivery struct {
	Channel string
	Err     error
}

// Dispatcher sends events to every registered notifier. A failure in
// one channel never blocks delivery to the others.
type Dispatcher struct {
	notifiers []Notifier
}

func NewDispatcher(notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{notifiers: notifiers}
}

func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) []Delivery {
	deliveries := make([]Delivery, 0, len(d.notifiers))
	for _, n := range d.notifiers {
		err := n.Notify(ctx, ev)
		if err != nil {
			zap.L().Warn("notification failed",
				zap.String("channel", n.Name()),
				zap.String("competitor", ev.CompetitorName),
				zap.Error(err))
		}
		deliveries = append(deliveries, Delivery{Channel: n.Name(), Err: err})
	}
	return deliveries
}
