package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/powersplit/core/metrics"
	"github.com/kilianp07/powersplit/infra/logger"
)

// InfluxSink writes simulation events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordTrip writes one point per completed trip.
func (s *InfluxSink) RecordTrip(ev coremetrics.TripEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("trip_result").
		AddTag("run_id", ev.RunID).
		AddTag("policy", ev.Policy).
		AddTag("trip_id", ev.TripID).
		AddField("samples", ev.Samples).
		AddField("battery_current_squared", round3(ev.BatteryCurrentSquared)).
		AddField("peak_battery_current", round3(ev.PeakBatteryCurrent)).
		AddField("battery_energy_wh", round3(ev.BatteryEnergyWh)).
		AddField("capacitor_energy_wh", round3(ev.CapacitorEnergyWh)).
		AddField("final_battery_wh", round3(ev.FinalBatteryCharge)).
		AddField("final_capacitor_wh", round3(ev.FinalCapacitorCharge)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTripSkipped records a trip dropped by the filter.
func (s *InfluxSink) RecordTripSkipped(ev coremetrics.TripSkippedEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("trip_skipped").
		AddTag("run_id", ev.RunID).
		AddTag("trip_id", ev.TripID).
		AddField("reason", ev.Reason).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTripAborted records a trip a policy could not finish.
func (s *InfluxSink) RecordTripAborted(ev coremetrics.TripAbortedEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("trip_aborted").
		AddTag("run_id", ev.RunID).
		AddTag("policy", ev.Policy).
		AddTag("trip_id", ev.TripID).
		AddField("sample", ev.Sample).
		AddField("error", ev.Error).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRunSummary records the aggregate of a policy's run.
func (s *InfluxSink) RecordRunSummary(ev coremetrics.RunSummaryEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("run_summary").
		AddTag("run_id", ev.RunID).
		AddTag("policy", ev.Policy).
		AddField("trips", ev.Trips).
		AddField("aborted", ev.Aborted).
		AddField("current_squared_sum", round3(ev.CurrentSquaredSum)).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
