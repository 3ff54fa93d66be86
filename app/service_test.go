package app

import (
	"bytes"
	"context"
	"math"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powersplit/config"
	"github.com/kilianp07/powersplit/core/factory"
	"github.com/kilianp07/powersplit/core/model"
	"github.com/kilianp07/powersplit/infra/tripio"
)

func urbanTrip(id string, phase float64) model.Trip {
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	samples := make([]model.Sample, 60)
	for i := range samples {
		x := float64(i)/5 + phase
		samples[i] = model.Sample{
			Time:           start.Add(time.Duration(i) * time.Second),
			PeriodMS:       1000,
			Latitude:       45.5 + float64(i)*1e-4,
			Longitude:      -73.6,
			Speed:          10 + 5*math.Sin(x),
			Acceleration:   math.Cos(x),
			PlanarDistance: 20,
			PowerDemand:    8000 * math.Sin(x),
		}
	}
	return model.NewTrip(id, "driver", model.DefaultVehicle(), samples)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	history := filepath.Join(dir, "history.csv")
	trips := filepath.Join(dir, "trips.csv")
	require.NoError(t, tripio.WriteFile(history, []model.Trip{urbanTrip("h1", 0), urbanTrip("h2", 1)}))
	require.NoError(t, tripio.WriteFile(trips, []model.Trip{urbanTrip("t1", 0.5), urbanTrip("t2", 2)}))

	cfg := config.Default()
	cfg.History.Path = history
	cfg.History.Seed = 7
	// leave room for regenerative braking
	cfg.Simulation.Battery.InitialWh = 40000
	cfg.Trips.Path = trips
	cfg.Export.Path = filepath.Join(dir, "results.json")
	cfg.Export.SummaryPath = filepath.Join(dir, "summary.csv")
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "memory"}}
	cfg.Policies = []factory.ModuleConfig{
		{Type: "nocap"},
		{Type: "knn", Conf: map[string]any{"k": 3, "horizon": 10}},
		{Type: "omniscient", Conf: map[string]any{"lookahead": 30}},
	}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return &cfg
}

func TestServiceRun(t *testing.T) {
	cfg := testConfig(t)
	var logs bytes.Buffer
	svc, err := New(cfg, &logs)
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	require.NotNil(t, svc.Tree())
	assert.Equal(t, 120, svc.Tree().Len())
	require.Len(t, svc.Policies(), 3)

	results, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Len(t, r.Trips, 2, r.Policy)
		assert.Empty(t, r.Aborted, r.Policy)
	}

	for _, p := range []string{cfg.Export.Path, cfg.Export.SummaryPath} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	assert.Contains(t, logs.String(), "indexed 120 samples")
}

func TestServiceRequiresHistoryForKnn(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.Path = ""
	_, err := New(cfg, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestServiceRequiresTrips(t *testing.T) {
	cfg := testConfig(t)
	cfg.Trips.Path = ""
	svc, err := New(cfg, &bytes.Buffer{})
	require.NoError(t, err)
	_, err = svc.Run(context.Background())
	assert.Error(t, err)
}

func TestServiceRejectsBadSentryDSN(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sentry.DSN = "not a dsn"
	_, err := New(cfg, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestServiceRunStopsMetricsServer(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	cfg := testConfig(t)
	cfg.Metrics.PrometheusAddr = addr
	svc, err := New(cfg, &bytes.Buffer{})
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.Run(context.Background())
	require.NoError(t, err)

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err == nil {
		conn.Close()
		t.Fatalf("metrics server still listening on %s after Run", addr)
	}
}
