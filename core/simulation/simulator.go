package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/powersplit/core/logger"
	"github.com/kilianp07/powersplit/core/metrics"
	"github.com/kilianp07/powersplit/core/model"
	"github.com/kilianp07/powersplit/core/monitoring"
	"github.com/kilianp07/powersplit/core/policy"
	"github.com/kilianp07/powersplit/core/storage"
)

// Simulator runs policies over trips.
type Simulator struct {
	cfg  Config
	log  logger.Logger
	sink metrics.Sink
	now  func() time.Time
}

// New returns a Simulator. A nil logger or sink discards output.
func New(cfg Config, log logger.Logger, sink metrics.Sink) *Simulator {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Simulator{cfg: cfg, log: log, sink: sink, now: time.Now}
}

// Config returns the effective configuration.
func (s *Simulator) Config() Config { return s.cfg }

// Run evaluates every policy on every accepted trip and returns one Results
// per policy, in order. Each policy instance must appear once; policies run
// concurrently up to Config.Parallelism while each one's trips stay
// sequential. The context is checked between trips.
func (s *Simulator) Run(ctx context.Context, policies []policy.Policy, trips []model.Trip) ([]*Results, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("simulation config: %w", err)
	}
	runID := uuid.NewString()
	kept, skipped := s.cfg.Filter(trips)
	for _, sk := range skipped {
		s.log.Warnf("skipping trip %s: %s", sk.TripID, sk.Reason)
		if rec, ok := s.sink.(metrics.TripSkippedRecorder); ok {
			s.report(rec.RecordTripSkipped(metrics.TripSkippedEvent{RunID: runID, TripID: sk.TripID, Reason: sk.Reason, Time: s.now()}))
		}
	}
	s.log.Infof("run %s: %d policies over %d trips (%d skipped)", runID, len(policies), len(kept), len(skipped))

	results := make([]*Results, len(policies))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Parallelism)
	for i, p := range policies {
		g.Go(func() error {
			defer monitoring.Recover()
			r, err := s.runPolicy(ctx, runID, p, kept)
			if err != nil {
				return fmt.Errorf("policy %s: %w", p.Name(), err)
			}
			r.Skipped = skipped
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Simulator) runPolicy(ctx context.Context, runID string, p policy.Policy, trips []model.Trip) (*Results, error) {
	start := s.now()
	log := s.log.With("policy", p.Name())
	res := &Results{Policy: p.Name(), RunID: runID, Trips: make([]TripResult, 0, len(trips))}
	defer p.ClearState()

	for _, trip := range trips {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tr, sample, err := s.runTrip(p, trip)
		if err != nil {
			log.Errorf("trip %s aborted at sample %d: %v", trip.Features.ID, sample, err)
			res.Aborted = append(res.Aborted, AbortedTrip{TripID: trip.Features.ID, Sample: sample, Error: err.Error()})
			monitoring.CaptureException(err, map[string]string{
				"run_id":  runID,
				"policy":  p.Name(),
				"trip_id": trip.Features.ID,
			})
			if rec, ok := s.sink.(metrics.TripAbortedRecorder); ok {
				s.report(rec.RecordTripAborted(metrics.TripAbortedEvent{
					RunID: runID, Policy: p.Name(), TripID: trip.Features.ID, Sample: sample, Error: err.Error(), Time: s.now(),
				}))
			}
			continue
		}
		log.Debugw("trip complete", map[string]any{
			"trip_id":         tr.TripID,
			"samples":         tr.Samples,
			"current_squared": tr.BatteryCurrentSquaredIntegral,
			"peak_current":    tr.PeakBatteryCurrent,
		})
		s.report(s.sink.RecordTrip(metrics.TripEvent{
			RunID:                 runID,
			Policy:                p.Name(),
			TripID:                tr.TripID,
			Samples:               tr.Samples,
			BatteryCurrentSquared: tr.BatteryCurrentSquaredIntegral,
			PeakBatteryCurrent:    tr.PeakBatteryCurrent,
			BatteryEnergyWh:       tr.BatteryEnergyWh,
			CapacitorEnergyWh:     tr.CapacitorEnergyWh,
			FinalBatteryCharge:    tr.FinalBatteryCharge,
			FinalCapacitorCharge:  tr.FinalCapacitorCharge,
			Time:                  s.now(),
		}))
		res.Trips = append(res.Trips, tr)
	}

	res.Duration = s.now().Sub(start)
	log.Infof("completed %d trips, %d aborted, current squared sum %.1f A²s", len(res.Trips), len(res.Aborted), res.CurrentSquaredSum())
	if rec, ok := s.sink.(metrics.RunSummaryRecorder); ok {
		s.report(rec.RecordRunSummary(metrics.RunSummaryEvent{
			RunID:             runID,
			Policy:            p.Name(),
			Trips:             len(res.Trips),
			Aborted:           len(res.Aborted),
			CurrentSquaredSum: res.CurrentSquaredSum(),
			Duration:          res.Duration,
			Time:              s.now(),
		}))
	}
	return res, nil
}

// runTrip simulates one trip on fresh storage. On failure it returns the
// index of the offending sample.
func (s *Simulator) runTrip(p policy.Policy, trip model.Trip) (TripResult, int, error) {
	tr := TripResult{TripID: trip.Features.ID}
	battery, capacitor, err := s.newStorage()
	if err != nil {
		return tr, 0, err
	}
	if tp, ok := p.(policy.TripParser); ok {
		if err := tp.ParseTrip(trip); err != nil {
			return tr, 0, fmt.Errorf("parse trip: %w", err)
		}
	}
	if err := p.BeginTrip(trip.Features, battery.Clone(), capacitor.Clone()); err != nil {
		return tr, 0, fmt.Errorf("begin trip: %w", err)
	}
	defer p.EndTrip(trip)

	if s.cfg.RecordFlows {
		tr.Flows = make([]model.Allocation, 0, trip.Len())
	}
	for i, smp := range trip.Samples {
		lo, hi := capacitor.MinDrawable(smp.PeriodMS), capacitor.MaxDrawable(smp.PeriodMS)
		a, err := p.CalculatePowerFlows(smp)
		if err != nil {
			return tr, i, err
		}
		if err := a.Check(smp.PowerDemand, lo, hi, s.cfg.Tolerance); err != nil {
			return tr, i, err
		}
		if err := capacitor.DrawPower(a.CapacitorDraw(), smp.PeriodMS); err != nil {
			return tr, i, fmt.Errorf("capacitor: %w", err)
		}
		if err := battery.DrawPower(a.BatteryDraw(), smp.PeriodMS); err != nil {
			return tr, i, err
		}
		tr.BatteryEnergyWh += a.BatteryDraw() * smp.Hours()
		tr.CapacitorEnergyWh += a.CapacitorDraw() * smp.Hours()
		if tr.Flows != nil {
			tr.Flows = append(tr.Flows, a)
		}
	}

	h := battery.History()
	tr.Samples = trip.Len()
	tr.BatteryCurrentSquaredIntegral = h.CurrentSquaredIntegral()
	tr.PeakBatteryCurrent = h.PeakCurrent()
	tr.FinalBatteryCharge = battery.Charge()
	tr.FinalCapacitorCharge = capacitor.Charge()
	return tr, 0, nil
}

func (s *Simulator) newStorage() (storage.Model, storage.Model, error) {
	battery, err := storage.NewBattery(s.cfg.Battery)
	if err != nil {
		return nil, nil, err
	}
	return battery, storage.NewCapacitor(s.cfg.Capacitor), nil
}

// report logs sink failures. Metrics never fail a run.
func (s *Simulator) report(err error) {
	if err != nil {
		s.log.Warnf("metrics sink: %v", err)
	}
}
