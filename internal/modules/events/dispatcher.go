package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fleet-tracking/internal/models"

	"github.com/google/uuid"
)

// Notifier forwards a tracking event to the external notification service.
// Delivery is best-effort; the event log remains the source of truth.
type Notifier interface {
	Notify(ctx context.Context, event *models.TrackingEvent) error
}

// DispatchConfig bounds the best-effort notification delivery.
type DispatchConfig struct {
	// Retries is the number of delivery attempts per event.
	Retries int
	// Backoff is the base delay between attempts; attempt n waits n*Backoff.
	Backoff time.Duration
	// AttemptTimeout caps each individual attempt.
	AttemptTimeout time.Duration
	// QueueSize is the capacity of the dispatch queue. A full queue drops
	// the notification (never blocks ingest); the event stays logged.
	QueueSize int
}

// Dispatcher appends tracking events to the log and forwards them to the
// notification service asynchronously, so a slow or unavailable channel
// never blocks position ingestion.
type Dispatcher struct {
	repo     RepositoryInterface
	notifier Notifier
	logger   *slog.Logger
	cfg      DispatchConfig

	queue chan *models.TrackingEvent
	done  chan struct{}
	wg    sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Call Start before emitting and Stop
// to drain the queue on shutdown.
func NewDispatcher(repo RepositoryInterface, notifier Notifier, logger *slog.Logger, cfg DispatchConfig) *Dispatcher {
	if cfg.Retries < 1 {
		cfg.Retries = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 64
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 5 * time.Second
	}
	return &Dispatcher{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		cfg:      cfg,
		queue:    make(chan *models.TrackingEvent, cfg.QueueSize),
		done:     make(chan struct{}),
	}
}

// Start launches the delivery worker.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.deliverLoop()
}

// Stop closes the queue and waits for in-flight deliveries to finish.
func (d *Dispatcher) Stop() {
	close(d.done)
	d.wg.Wait()
}

// Emit appends the event to the log and queues it for notification
// delivery. The append is synchronous: once Emit returns nil the event is
// durably recorded. Notification failures are never surfaced here.
func (d *Dispatcher) Emit(ctx context.Context, event *models.TrackingEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.EmittedBy == "" {
		event.EmittedBy = models.EmittedBySystem
	}

	if err := d.repo.Append(ctx, event); err != nil {
		return fmt.Errorf("dispatcher.Emit: %w", err)
	}

	select {
	case d.queue <- event:
	default:
		d.logger.Warn("notification queue full, dropping delivery",
			"shipment_id", event.ShipmentID, "event_type", event.Type)
	}
	return nil
}

// ListEvents returns the shipment's event log ordered by timestamp
// ascending. Repeated calls with no new events return the same sequence.
func (d *Dispatcher) ListEvents(ctx context.Context, shipmentID string) ([]*models.TrackingEvent, error) {
	return d.repo.ListByShipmentID(ctx, shipmentID)
}

func (d *Dispatcher) deliverLoop() {
	defer d.wg.Done()
	for {
		select {
		case ev := <-d.queue:
			d.deliver(ev)
		case <-d.done:
			// Drain whatever is already queued, then exit.
			for {
				select {
				case ev := <-d.queue:
					d.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

// deliver tries the notifier with bounded retries and per-attempt
// timeouts. Exhausting the budget logs a dispatch failure; the event
// itself is already recorded.
func (d *Dispatcher) deliver(event *models.TrackingEvent) {
	if d.notifier == nil {
		return
	}
	var lastErr error
	for attempt := 1; attempt <= d.cfg.Retries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.AttemptTimeout)
		lastErr = d.notifier.Notify(ctx, event)
		cancel()
		if lastErr == nil {
			return
		}
		if attempt < d.cfg.Retries {
			time.Sleep(time.Duration(attempt) * d.cfg.Backoff)
		}
	}
	d.logger.Error("notification dispatch failed",
		"shipment_id", event.ShipmentID,
		"event_type", event.Type,
		"attempts", d.cfg.Retries,
		"error", lastErr)
}
