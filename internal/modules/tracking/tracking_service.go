package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fleet-tracking/internal/geo"
	"fleet-tracking/internal/models"
	"fleet-tracking/internal/modules/events"
	"fleet-tracking/internal/modules/routes"
	"fleet-tracking/pkg/utils"
)

// ServiceInterface defines the tracking engine operations.
type ServiceInterface interface {
	SubmitPosition(ctx context.Context, shipmentID string, req models.PositionReportRequest) (models.IngestResult, error)
	GetLiveState(ctx context.Context, shipmentID string) (models.LiveState, error)
	GetETA(ctx context.Context, shipmentID string) (models.ETAEstimate, error)
	GetRouteMonitoring(ctx context.Context, shipmentID string) (models.RouteMonitoring, error)
	ListDeviations(ctx context.Context, shipmentID string) ([]*models.DeviationRecord, error)
	StartTracking(ctx context.Context, shipmentID string) error
	StopTracking(ctx context.Context, shipmentID string) error
	ConfirmDelivered(ctx context.Context, shipmentID string, note string) error
}

// ServiceConfig carries the ingest tunables.
type ServiceConfig struct {
	// MaxSpeedKMH is the plausibility cap; faster readings are accepted
	// but flagged suspect.
	MaxSpeedKMH float64
	// StalenessWindow is how long a shipment may go without reports
	// before the sweep marks its tracking stale.
	StalenessWindow time.Duration
	// SweepInterval is the cadence of the staleness sweep.
	SweepInterval time.Duration
}

// Service implements the tracking engine: position ingest, live state,
// ETA estimation and deviation detection.
type Service struct {
	store      *Store
	routeSvc   routes.ServiceInterface
	dispatcher *events.Dispatcher
	devRepo    DeviationRepositoryInterface
	estimator  Estimator
	detector   Detector
	logger     *slog.Logger
	cfg        ServiceConfig
}

// NewService wires the tracking engine together.
func NewService(
	store *Store,
	routeSvc routes.ServiceInterface,
	dispatcher *events.Dispatcher,
	devRepo DeviationRepositoryInterface,
	estimator Estimator,
	detector Detector,
	logger *slog.Logger,
	cfg ServiceConfig,
) *Service {
	if cfg.MaxSpeedKMH <= 0 {
		cfg.MaxSpeedKMH = 200
	}
	return &Service{
		store:      store,
		routeSvc:   routeSvc,
		dispatcher: dispatcher,
		devRepo:    devRepo,
		estimator:  estimator,
		detector:   detector,
		logger:     logger,
		cfg:        cfg,
	}
}

// SubmitPosition validates and applies one position report. Validation
// order: shipment/route existence, coordinate range, timestamp
// monotonicity, speed plausibility. Stale reports are dropped without an
// error; implausible speeds are accepted flagged suspect. On acceptance
// the live state update, progress/ETA recomputation and deviation check
// happen atomically with respect to readers.
func (s *Service) SubmitPosition(ctx context.Context, shipmentID string, req models.PositionReportRequest) (models.IngestResult, error) {
	route, err := s.routeSvc.GetRoute(ctx, shipmentID)
	if err != nil {
		return models.IngestResult{}, models.ErrUnknownShipment
	}

	pos := geo.Point{Lat: req.Latitude, Lon: req.Longitude}
	if !pos.Valid() {
		return models.IngestResult{}, models.ErrInvalidCoordinates
	}

	e := s.store.entry(shipmentID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Active {
		return models.IngestResult{}, models.ErrTrackingInactive
	}

	last := e.state.Position.Timestamp
	if !last.IsZero() && req.Timestamp.Before(last) {
		// Out-of-order report: drop and log, nothing for the caller to
		// retry.
		s.logger.Debug("report dropped",
			"shipment_id", shipmentID,
			"report_ts", req.Timestamp,
			"last_ts", last,
			"reason", models.ErrStaleReport)
		return models.IngestResult{Accepted: false, Reason: "stale_report"}, nil
	}

	report := models.PositionReport{
		ShipmentID:     shipmentID,
		DeviceTag:      req.DeviceTag,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		SpeedKMH:       req.SpeedKMH,
		HeadingDeg:     req.HeadingDeg,
		AltitudeM:      req.AltitudeM,
		AccuracyM:      req.AccuracyM,
		BatteryLevel:   req.BatteryLevel,
		SignalStrength: req.SignalStrength,
		Timestamp:      req.Timestamp,
	}
	if report.DeviceTag == "" {
		if report.DeviceTag = e.state.Position.DeviceTag; report.DeviceTag == "" {
			// Diagnostics-only tag; device identity lives in the
			// external registry.
			if tag, err := utils.GenerateSecureToken(8); err == nil {
				report.DeviceTag = "dev_" + tag
			}
		}
	}

	result := models.IngestResult{Accepted: true}
	if report.SpeedKMH < 0 || report.SpeedKMH > s.cfg.MaxSpeedKMH {
		report.Suspect = true
		result.Suspect = true
		result.Reason = "implausible_reading"
		s.logger.Warn("report accepted as suspect",
			"shipment_id", shipmentID,
			"speed_kmh", report.SpeedKMH,
			"reason", models.ErrImplausibleReading)
	}

	firstReport := e.state.UpdatedAt.IsZero()
	now := time.Now()

	e.history.push(report)
	e.state.Position = report
	e.state.UpdatedAt = now
	e.state.Stale = false
	e.sentStaleAlert = false

	est, ok := s.estimator.Estimate(routes.Path(route), route.DistanceKM, e.history.snapshot(), report, now)
	if !ok {
		// Projection failed on a malformed route. The report was valid,
		// so keep the last-known-good progress/ETA and surface the
		// problem to logs only.
		s.logger.Error("internal inconsistency: projection failed, keeping prior estimates",
			"shipment_id", shipmentID,
			"route_id", route.ID)
		return result, nil
	}

	e.state.ProgressPct = est.progressPct
	e.state.DistanceRemainingKM = est.remainingKM
	e.eta = est.eta

	s.applyDeviation(ctx, e, est.projection.CrossKM, report)
	s.emitMilestones(ctx, e, report, firstReport)

	return result, nil
}

// applyDeviation runs the deviation state machine and persists/announces
// its transitions. Called with the entry write lock held.
func (s *Service) applyDeviation(ctx context.Context, e *shipmentEntry, crossKM float64, report models.PositionReport) {
	tr := s.detector.observe(e, crossKM, report)

	switch {
	case tr.opened:
		rec := e.deviation
		if err := s.devRepo.Save(ctx, rec); err != nil {
			s.logger.Error("failed to persist deviation record", "shipment_id", rec.ShipmentID, "error", err)
		}
		// One alert per open record; re-emission only after close+reopen.
		lat, lon := report.Latitude, report.Longitude
		s.emit(ctx, &models.TrackingEvent{
			ShipmentID: report.ShipmentID,
			Type:       models.EventException,
			Note:       fmt.Sprintf("route deviation: %.1f km off planned route", rec.DistanceKM),
			Latitude:   &lat,
			Longitude:  &lon,
			Timestamp:  report.Timestamp,
		})
	case tr.closed != nil:
		if err := s.devRepo.Save(ctx, tr.closed); err != nil {
			s.logger.Error("failed to persist resolved deviation", "shipment_id", tr.closed.ShipmentID, "error", err)
		}
		s.logger.Info("route deviation resolved",
			"shipment_id", tr.closed.ShipmentID,
			"deviation_min", tr.closed.DurationMin(report.Timestamp))
	case e.deviation != nil:
		// Still deviating: keep the stored record in step.
		if err := s.devRepo.Save(ctx, e.deviation); err != nil {
			s.logger.Error("failed to update deviation record", "shipment_id", e.deviation.ShipmentID, "error", err)
		}
	}
}

// emitMilestones raises the one-shot lifecycle events driven by ingest.
// Called with the entry write lock held.
func (s *Service) emitMilestones(ctx context.Context, e *shipmentEntry, report models.PositionReport, firstReport bool) {
	if firstReport && !e.sentInTransit {
		e.sentInTransit = true
		s.emit(ctx, &models.TrackingEvent{
			ShipmentID: report.ShipmentID,
			Type:       models.EventInTransit,
			Note:       "first position report received",
			Timestamp:  report.Timestamp,
		})
	}
	if e.state.ProgressPct >= 90 && !e.sentOutForDelivery {
		e.sentOutForDelivery = true
		s.emit(ctx, &models.TrackingEvent{
			ShipmentID: report.ShipmentID,
			Type:       models.EventOutForDelivery,
			Note:       "vehicle approaching destination",
			Timestamp:  report.Timestamp,
		})
	}
}

func (s *Service) emit(ctx context.Context, event *models.TrackingEvent) {
	if err := s.dispatcher.Emit(ctx, event); err != nil {
		s.logger.Error("failed to record tracking event",
			"shipment_id", event.ShipmentID,
			"event_type", event.Type,
			"error", err)
	}
}

// GetLiveState returns the live tracking snapshot for a shipment.
func (s *Service) GetLiveState(_ context.Context, shipmentID string) (models.LiveState, error) {
	state, ok := s.store.Get(shipmentID)
	if !ok {
		return models.LiveState{}, models.ErrNotFound
	}
	return state, nil
}

// GetETA returns the current arrival estimate. Absence of tracking data
// is reported as ErrNotFound, not an internal error.
func (s *Service) GetETA(_ context.Context, shipmentID string) (models.ETAEstimate, error) {
	eta, ok := s.store.GetETA(shipmentID)
	if !ok {
		return models.ETAEstimate{}, models.ErrNotFound
	}
	return eta, nil
}

// GetRouteMonitoring returns the deviation projection for a shipment.
func (s *Service) GetRouteMonitoring(_ context.Context, shipmentID string) (models.RouteMonitoring, error) {
	mon, ok := s.store.GetMonitoring(shipmentID, time.Now())
	if !ok {
		return models.RouteMonitoring{}, models.ErrNotFound
	}
	return mon, nil
}

// ListDeviations returns the shipment's deviation history, oldest first.
func (s *Service) ListDeviations(ctx context.Context, shipmentID string) ([]*models.DeviationRecord, error) {
	return s.devRepo.ListByShipmentID(ctx, shipmentID)
}

// StartTracking creates the live state ahead of the first report and
// records that pickup is scheduled.
func (s *Service) StartTracking(ctx context.Context, shipmentID string) error {
	if _, err := s.routeSvc.GetRoute(ctx, shipmentID); err != nil {
		return models.ErrUnknownShipment
	}
	e := s.store.entry(shipmentID)
	e.mu.Lock()
	alreadyStarted := e.sentInTransit || !e.state.UpdatedAt.IsZero()
	e.state.Active = true
	e.mu.Unlock()

	if !alreadyStarted {
		s.emit(ctx, &models.TrackingEvent{
			ShipmentID: shipmentID,
			Type:       models.EventPickupScheduled,
			Note:       "tracking started",
		})
	}
	return nil
}

// StopTracking deactivates tracking without a delivery event.
func (s *Service) StopTracking(_ context.Context, shipmentID string) error {
	if !s.store.Deactivate(shipmentID) {
		return models.ErrNotFound
	}
	s.logger.Info("tracking stopped", "shipment_id", shipmentID)
	return nil
}

// ConfirmDelivered handles the booking service's delivery confirmation:
// tracking goes inactive and a delivered event is emitted.
func (s *Service) ConfirmDelivered(ctx context.Context, shipmentID string, note string) error {
	if !s.store.Deactivate(shipmentID) {
		return models.ErrNotFound
	}
	if note == "" {
		note = "delivery confirmed"
	}
	s.emit(ctx, &models.TrackingEvent{
		ShipmentID: shipmentID,
		Type:       models.EventDelivered,
		Note:       note,
	})
	return nil
}

// RunStalenessSweep periodically marks shipments stale when no report has
// arrived within the configured window. It blocks until ctx is done.
func (s *Service) RunStalenessSweep(ctx context.Context) {
	if s.cfg.StalenessWindow <= 0 || s.cfg.SweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx, time.Now())
		}
	}
}

func (s *Service) sweepOnce(ctx context.Context, now time.Time) {
	for _, id := range s.store.shipmentIDs() {
		e, ok := s.store.lookup(id)
		if !ok {
			continue
		}
		e.mu.Lock()
		quiet := e.state.Active && !e.state.UpdatedAt.IsZero() &&
			now.Sub(e.state.UpdatedAt) > s.cfg.StalenessWindow
		raise := quiet && !e.sentStaleAlert
		if quiet {
			e.state.Stale = true
			e.sentStaleAlert = true
		}
		e.mu.Unlock()

		if raise {
			s.emit(ctx, &models.TrackingEvent{
				ShipmentID: id,
				Type:       models.EventDelayed,
				Note:       "no position reports received recently",
			})
		}
	}
}
