package metrics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/powersplit/core/factory"
	coremetrics "github.com/kilianp07/powersplit/core/metrics"
)

func TestPromSink_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	_ = sink.RecordTrip(coremetrics.TripEvent{Policy: "knn", BatteryCurrentSquared: 5000, PeakBatteryCurrent: 30})
	_ = sink.RecordTrip(coremetrics.TripEvent{Policy: "knn", BatteryCurrentSquared: 7000, PeakBatteryCurrent: 80})
	_ = sink.RecordTripAborted(coremetrics.TripAbortedEvent{Policy: "knn"})
	_ = sink.RecordTripSkipped(coremetrics.TripSkippedEvent{TripID: "x"})
	_ = sink.RecordRunSummary(coremetrics.RunSummaryEvent{Policy: "knn", CurrentSquaredSum: 12000})

	if v := testutil.ToFloat64(sink.trips.WithLabelValues("knn", "completed")); v != 2 {
		t.Fatalf("completed = %v", v)
	}
	if v := testutil.ToFloat64(sink.trips.WithLabelValues("knn", "aborted")); v != 1 {
		t.Fatalf("aborted = %v", v)
	}
	if v := testutil.ToFloat64(sink.trips.WithLabelValues("", "skipped")); v != 1 {
		t.Fatalf("skipped = %v", v)
	}
	if v := testutil.ToFloat64(sink.runSum.WithLabelValues("knn")); v != 12000 {
		t.Fatalf("run sum = %v", v)
	}
	if n := testutil.CollectAndCount(sink.currentSquared); n != 1 {
		t.Fatalf("expected one histogram series, got %d", n)
	}
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	_ = first.RecordTrip(coremetrics.TripEvent{Policy: "p"})
	_ = second.RecordTrip(coremetrics.TripEvent{Policy: "p"})
	if v := testutil.ToFloat64(second.trips.WithLabelValues("p", "completed")); v != 2 {
		t.Fatalf("expected shared counter, got %v", v)
	}
}

func TestStartPromServer_StopsOnCancel(t *testing.T) {
	reg := prometheus.NewRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- StartPromServer(ctx, "127.0.0.1:0", reg, nil) }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("server error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestFactory_Builtins(t *testing.T) {
	types := strings.Join(coremetrics.SinkTypes(), ",")
	for _, want := range []string{"influx", "prometheus"} {
		if !strings.Contains(types, want) {
			t.Fatalf("sink %s not registered: %s", want, types)
		}
	}
	if _, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "influx", Conf: map[string]any{"url": "http://x"}}}); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}
