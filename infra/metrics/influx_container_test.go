//go:build integration

package metrics

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	coremetrics "github.com/kilianp07/powersplit/core/metrics"
)

const (
	testOrg    = "powersplit"
	testBucket = "trips"
	testToken  = "integration-token"
)

func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "admin",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "adminpassword",
			"DOCKER_INFLUXDB_INIT_ORG":         testOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      testBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": testToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(90 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}
	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := cont.MappedPort(ctx, "8086")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	return cont, fmt.Sprintf("http://%s:%s", host, port.Port())
}

func TestInfluxSinkWithContainer(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()
	cont, url := startInflux(ctx, t)
	defer func() { _ = cont.Terminate(ctx) }()

	sink := NewInfluxSinkWithFallback(url, testToken, testOrg, testBucket)
	influx, ok := sink.(*InfluxSink)
	if !ok {
		t.Fatalf("expected influx sink, got %T", sink)
	}
	defer influx.Close()

	now := time.Now()
	if err := influx.RecordTrip(coremetrics.TripEvent{
		RunID: "run", Policy: "Omniscient", TripID: "t1", Samples: 60,
		BatteryCurrentSquared: 1234.5678, PeakBatteryCurrent: 42, Time: now,
	}); err != nil {
		t.Fatalf("record trip: %v", err)
	}
	if err := influx.RecordRunSummary(coremetrics.RunSummaryEvent{
		RunID: "run", Policy: "Omniscient", Trips: 1, CurrentSquaredSum: 1234.5678, Time: now,
	}); err != nil {
		t.Fatalf("record summary: %v", err)
	}

	client := influxdb2.NewClient(url, testToken)
	defer client.Close()
	flux := fmt.Sprintf(`from(bucket:"%s")
  |> range(start: -1h)
  |> filter(fn: (r) => r._measurement == "trip_result" and r._field == "battery_current_squared")`, testBucket)
	res, err := client.QueryAPI(testOrg).Query(ctx, flux)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer res.Close()
	found := false
	for res.Next() {
		rec := res.Record()
		if rec.ValueByKey("trip_id") == "t1" && rec.Value() == 1234.568 {
			found = true
		}
	}
	if res.Err() != nil {
		t.Fatalf("query result: %v", res.Err())
	}
	if !found {
		t.Fatal("trip_result point not found")
	}
}
