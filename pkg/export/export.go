package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kilianp07/powersplit/core/simulation"
)

// WriteJSON writes the results of a run to w in JSON format.
func WriteJSON(w io.Writer, results []*simulation.Results) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// WriteCSV writes one row per completed trip and policy.
func WriteCSV(w io.Writer, results []*simulation.Results) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"run_id", "policy", "trip_id", "samples", "battery_current_squared",
		"peak_battery_current", "battery_energy_wh", "capacitor_energy_wh",
		"final_battery_wh", "final_capacitor_wh",
	}); err != nil {
		return err
	}
	for _, r := range results {
		for _, t := range r.Trips {
			rec := []string{
				r.RunID,
				r.Policy,
				t.TripID,
				strconv.Itoa(t.Samples),
				formatFloat(t.BatteryCurrentSquaredIntegral),
				formatFloat(t.PeakBatteryCurrent),
				formatFloat(t.BatteryEnergyWh),
				formatFloat(t.CapacitorEnergyWh),
				formatFloat(t.FinalBatteryCharge),
				formatFloat(t.FinalCapacitorCharge),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV writes one row per policy.
func WriteSummaryCSV(w io.Writer, results []*simulation.Results) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"policy", "trips", "aborted", "samples", "current_squared_sum",
		"mean_current_squared", "std_current_squared", "max_peak_current",
	}); err != nil {
		return err
	}
	for _, r := range results {
		s := r.Summary()
		rec := []string{
			s.Policy,
			strconv.Itoa(s.Trips),
			strconv.Itoa(s.Aborted),
			strconv.Itoa(s.Samples),
			formatFloat(s.CurrentSquaredSum),
			formatFloat(s.MeanCurrentSquared),
			formatFloat(s.StdCurrentSquared),
			formatFloat(s.MaxPeakCurrent),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile picks the format from the extension of path: .json, or .csv for
// per-trip rows.
func WriteFile(path string, results []*simulation.Results) error {
	var write func(io.Writer, []*simulation.Results) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		write = WriteJSON
	case ".csv":
		write = WriteCSV
	default:
		return fmt.Errorf("unsupported export format: %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}
