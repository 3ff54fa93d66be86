package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powersplit/core/model"
	"github.com/kilianp07/powersplit/infra/tripio"
)

func cruiseTrip(id string) model.Trip {
	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	samples := make([]model.Sample, 30)
	for i := range samples {
		samples[i] = model.Sample{
			Time:           start.Add(time.Duration(i) * time.Second),
			PeriodMS:       1000,
			Speed:          20,
			PlanarDistance: 20,
			PowerDemand:    5000 + 100*float64(i%5),
		}
	}
	return model.NewTrip(id, "driver", model.DefaultVehicle(), samples)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSimulateCommand(t *testing.T) {
	dir := t.TempDir()
	trips := filepath.Join(dir, "trips.csv")
	require.NoError(t, tripio.WriteFile(trips, []model.Trip{cruiseTrip("a"), cruiseTrip("b")}))
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("trips:\n  path: \""+trips+"\"\npolicies:\n  - type: nocap\n"), 0o644))

	out, err := execute(t, "simulate", "-c", cfgFile)
	require.NoError(t, err)
	assert.Contains(t, out, "POLICY")
	assert.Contains(t, out, "No Capacitor")
}

func TestSimulateCommandMissingConfig(t *testing.T) {
	_, err := execute(t, "simulate", "-c", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
