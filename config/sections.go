package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Feature sets accepted by HistoryConfig.
const (
	FeaturesFull  = "full"
	FeaturesPower = "power"
)

// HistoryConfig describes the recorded trips the neighbour index is built from.
type HistoryConfig struct {
	// Path to a trip CSV file. Empty disables neighbour-driven policies.
	Path string `json:"path"`
	// Features selects the feature set: "full" or "power".
	Features string `json:"features"`
	// Seed makes the index shape reproducible. Zero picks a random seed.
	Seed uint64 `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *HistoryConfig) SetDefaults() {
	if c.Features == "" {
		c.Features = FeaturesFull
	}
}

// Validate checks mandatory fields.
func (c HistoryConfig) Validate() error {
	if c.Features != FeaturesFull && c.Features != FeaturesPower {
		return fmt.Errorf("unknown feature set %s", c.Features)
	}
	return nil
}

// TripsConfig points at the trips to simulate.
type TripsConfig struct {
	Path string `json:"path"`
}

// ExportConfig controls where results are written.
type ExportConfig struct {
	// Path of the results file, .csv or .json. Empty disables export.
	Path string `json:"path"`
	// SummaryPath optionally receives one CSV row per policy.
	SummaryPath string `json:"summary_path"`
}

// Validate checks the file extensions.
func (c ExportConfig) Validate() error {
	if c.Path != "" {
		switch strings.ToLower(filepath.Ext(c.Path)) {
		case ".csv", ".json":
		default:
			return fmt.Errorf("unsupported export format: %s", c.Path)
		}
	}
	if c.SummaryPath != "" && strings.ToLower(filepath.Ext(c.SummaryPath)) != ".csv" {
		return fmt.Errorf("summary must be a .csv file: %s", c.SummaryPath)
	}
	return nil
}
