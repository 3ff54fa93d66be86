package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/powersplit/core/metrics"
)

func captureServer(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, strings.TrimSpace(string(data)))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), bodies...)
	}
}

func TestInfluxSink_RecordTrip(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()
	ev := coremetrics.TripEvent{
		RunID:                 "run1",
		Policy:                "Omniscient Policy",
		TripID:                "trip1",
		Samples:               120,
		BatteryCurrentSquared: 1234.56789,
		PeakBatteryCurrent:    42,
		BatteryEnergyWh:       10.5,
		CapacitorEnergyWh:     -0.25,
		FinalBatteryCharge:    49989.5,
		FinalCapacitorCharge:  25.25,
		Time:                  now,
	}
	if err := sink.RecordTrip(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("trip_result").
		AddTag("run_id", "run1").
		AddTag("policy", "Omniscient Policy").
		AddTag("trip_id", "trip1").
		AddField("samples", 120).
		AddField("battery_current_squared", 1234.568).
		AddField("peak_battery_current", 42.0).
		AddField("battery_energy_wh", 10.5).
		AddField("capacitor_energy_wh", -0.25).
		AddField("final_battery_wh", 49989.5).
		AddField("final_capacitor_wh", 25.25).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	got := bodies()
	if len(got) != 1 || got[0] != expected {
		t.Errorf("unexpected body: %#v", got)
	}
}

func TestInfluxSink_RecordTripAbortedAndSummary(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()
	if err := sink.RecordTripAborted(coremetrics.TripAbortedEvent{
		RunID: "r", Policy: "p", TripID: "t", Sample: 3, Error: "power flow infeasible", Time: now,
	}); err != nil {
		t.Fatalf("abort: %v", err)
	}
	if err := sink.RecordRunSummary(coremetrics.RunSummaryEvent{
		RunID: "r", Policy: "p", Trips: 2, Aborted: 1, CurrentSquaredSum: 10, Duration: 1500 * time.Millisecond, Time: now,
	}); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if err := sink.RecordTripSkipped(coremetrics.TripSkippedEvent{RunID: "r", TripID: "s", Reason: "too short", Time: now}); err != nil {
		t.Fatalf("skip: %v", err)
	}

	p1 := write.NewPointWithMeasurement("trip_aborted").
		AddTag("run_id", "r").
		AddTag("policy", "p").
		AddTag("trip_id", "t").
		AddField("sample", 3).
		AddField("error", "power flow infeasible").
		SetTime(now)
	p2 := write.NewPointWithMeasurement("run_summary").
		AddTag("run_id", "r").
		AddTag("policy", "p").
		AddField("trips", 2).
		AddField("aborted", 1).
		AddField("current_squared_sum", 10.0).
		AddField("duration_ms", int64(1500)).
		SetTime(now)
	got := bodies()
	if len(got) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(got))
	}
	if got[0] != strings.TrimSpace(write.PointToLineProtocol(p1, time.Nanosecond)) {
		t.Errorf("unexpected abort body: %s", got[0])
	}
	if got[1] != strings.TrimSpace(write.PointToLineProtocol(p2, time.Nanosecond)) {
		t.Errorf("unexpected summary body: %s", got[1])
	}
	if !strings.HasPrefix(got[2], "trip_skipped,run_id=r,trip_id=s ") {
		t.Errorf("unexpected skip body: %s", got[2])
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
