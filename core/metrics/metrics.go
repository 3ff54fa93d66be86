package metrics

import (
	"sync"
	"time"
)

// TripEvent summarises one trip completed by a policy.
type TripEvent struct {
	RunID  string
	Policy string
	TripID string
	// Samples is the number of samples simulated.
	Samples int
	// BatteryCurrentSquared is Σ I²·Δt in A²·s.
	BatteryCurrentSquared float64
	PeakBatteryCurrent    float64
	BatteryEnergyWh       float64
	CapacitorEnergyWh     float64
	FinalBatteryCharge    float64
	FinalCapacitorCharge  float64
	Time                  time.Time
}

// Sink records simulation results for observability purposes.
type Sink interface {
	RecordTrip(ev TripEvent) error
}

// TripSkippedEvent is emitted when a trip is filtered out before simulation.
type TripSkippedEvent struct {
	RunID  string
	TripID string
	Reason string
	Time   time.Time
}

// TripSkippedRecorder records filtered trips.
type TripSkippedRecorder interface {
	RecordTripSkipped(ev TripSkippedEvent) error
}

// TripAbortedEvent is emitted when a policy's trip is abandoned midway.
type TripAbortedEvent struct {
	RunID  string
	Policy string
	TripID string
	// Sample is the index of the sample that failed.
	Sample int
	Error  string
	Time   time.Time
}

// TripAbortedRecorder records aborted trips.
type TripAbortedRecorder interface {
	RecordTripAborted(ev TripAbortedEvent) error
}

// RunSummaryEvent aggregates all trips of one policy.
type RunSummaryEvent struct {
	RunID             string
	Policy            string
	Trips             int
	Aborted           int
	CurrentSquaredSum float64
	Duration          time.Duration
	Time              time.Time
}

// RunSummaryRecorder records per-policy summaries.
type RunSummaryRecorder interface {
	RecordRunSummary(ev RunSummaryEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordTrip(TripEvent) error               { return nil }
func (NopSink) RecordTripSkipped(TripSkippedEvent) error { return nil }
func (NopSink) RecordTripAborted(TripAbortedEvent) error { return nil }
func (NopSink) RecordRunSummary(RunSummaryEvent) error   { return nil }

// MemorySink keeps every event in memory. It is safe for concurrent use.
type MemorySink struct {
	mu        sync.Mutex
	Trips     []TripEvent
	Skipped   []TripSkippedEvent
	Aborted   []TripAbortedEvent
	Summaries []RunSummaryEvent
}

func (m *MemorySink) RecordTrip(ev TripEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Trips = append(m.Trips, ev)
	return nil
}

func (m *MemorySink) RecordTripSkipped(ev TripSkippedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Skipped = append(m.Skipped, ev)
	return nil
}

func (m *MemorySink) RecordTripAborted(ev TripAbortedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Aborted = append(m.Aborted, ev)
	return nil
}

func (m *MemorySink) RecordRunSummary(ev RunSummaryEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Summaries = append(m.Summaries, ev)
	return nil
}
