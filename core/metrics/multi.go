package metrics

import "errors"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTrip forwards the event to all sinks and joins their errors.
func (m *MultiSink) RecordTrip(ev TripEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		errs = append(errs, s.RecordTrip(ev))
	}
	return errors.Join(errs...)
}

// RecordTripSkipped forwards skip events when supported by the sink.
func (m *MultiSink) RecordTripSkipped(ev TripSkippedEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(TripSkippedRecorder); ok {
			errs = append(errs, rec.RecordTripSkipped(ev))
		}
	}
	return errors.Join(errs...)
}

// RecordTripAborted forwards abort events when supported by the sink.
func (m *MultiSink) RecordTripAborted(ev TripAbortedEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(TripAbortedRecorder); ok {
			errs = append(errs, rec.RecordTripAborted(ev))
		}
	}
	return errors.Join(errs...)
}

// RecordRunSummary forwards summaries when supported by the sink.
func (m *MultiSink) RecordRunSummary(ev RunSummaryEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(RunSummaryRecorder); ok {
			errs = append(errs, rec.RecordRunSummary(ev))
		}
	}
	return errors.Join(errs...)
}
