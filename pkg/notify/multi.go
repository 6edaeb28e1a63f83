package notify

import (
	"context"
	"errors"

	"fleet-tracking/internal/models"
)

// Target is the shared shape of the notifier transports in this package.
type Target interface {
	Notify(ctx context.Context, event *models.TrackingEvent) error
}

// Multi fans one event out to several transports. An attempt counts as
// failed if any transport fails, so the dispatcher's retry budget covers
// all of them.
type Multi struct {
	targets []Target
}

// NewMulti builds a composite notifier; nil targets are skipped.
func NewMulti(targets ...Target) *Multi {
	m := &Multi{}
	for _, t := range targets {
		if t != nil {
			m.targets = append(m.targets, t)
		}
	}
	return m
}

// Notify delivers the event to every configured transport.
func (m *Multi) Notify(ctx context.Context, event *models.TrackingEvent) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
