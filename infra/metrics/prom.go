package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/powersplit/core/metrics"
)

// PromSink records simulation events in Prometheus metrics.
type PromSink struct {
	trips          *prometheus.CounterVec
	currentSquared *prometheus.HistogramVec
	peakCurrent    *prometheus.HistogramVec
	runSum         *prometheus.GaugeVec
}

// NewPromSink registers simulation metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	trips := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "powersplit_trips_total",
		Help: "Trips processed, by policy and outcome",
	}, []string{"policy", "outcome"})
	currentSquared := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "powersplit_trip_battery_current_squared",
		Help:    "Battery current squared integrated over a trip in A²·s",
		Buckets: prometheus.ExponentialBuckets(1e3, 4, 10),
	}, []string{"policy"})
	peakCurrent := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "powersplit_trip_peak_battery_current_amps",
		Help:    "Largest battery current magnitude seen during a trip",
		Buckets: prometheus.LinearBuckets(25, 25, 12),
	}, []string{"policy"})
	runSum := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "powersplit_run_current_squared_sum",
		Help: "Battery current squared summed over every trip of the last run",
	}, []string{"policy"})

	var err error
	if trips, err = register(reg, trips); err != nil {
		return nil, err
	}
	if currentSquared, err = register(reg, currentSquared); err != nil {
		return nil, err
	}
	if peakCurrent, err = register(reg, peakCurrent); err != nil {
		return nil, err
	}
	if runSum, err = register(reg, runSum); err != nil {
		return nil, err
	}
	return &PromSink{trips: trips, currentSquared: currentSquared, peakCurrent: peakCurrent, runSum: runSum}, nil
}

// register adds c to reg, reusing an identical collector registered earlier.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordTrip counts the trip and observes its battery stress.
func (s *PromSink) RecordTrip(ev coremetrics.TripEvent) error {
	s.trips.WithLabelValues(ev.Policy, "completed").Inc()
	s.currentSquared.WithLabelValues(ev.Policy).Observe(ev.BatteryCurrentSquared)
	s.peakCurrent.WithLabelValues(ev.Policy).Observe(ev.PeakBatteryCurrent)
	return nil
}

// RecordTripSkipped counts filtered trips. They belong to no policy.
func (s *PromSink) RecordTripSkipped(coremetrics.TripSkippedEvent) error {
	s.trips.WithLabelValues("", "skipped").Inc()
	return nil
}

// RecordTripAborted counts trips a policy could not finish.
func (s *PromSink) RecordTripAborted(ev coremetrics.TripAbortedEvent) error {
	s.trips.WithLabelValues(ev.Policy, "aborted").Inc()
	return nil
}

// RecordRunSummary sets the run gauge for the policy.
func (s *PromSink) RecordRunSummary(ev coremetrics.RunSummaryEvent) error {
	s.runSum.WithLabelValues(ev.Policy).Set(ev.CurrentSquaredSum)
	return nil
}
