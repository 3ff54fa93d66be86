package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kilianp07/powersplit/config"
	"github.com/kilianp07/powersplit/core/features"
	"github.com/kilianp07/powersplit/core/kdtree"
	coremetrics "github.com/kilianp07/powersplit/core/metrics"
	"github.com/kilianp07/powersplit/core/model"
	coremon "github.com/kilianp07/powersplit/core/monitoring"
	"github.com/kilianp07/powersplit/core/policy"
	"github.com/kilianp07/powersplit/core/prediction"
	"github.com/kilianp07/powersplit/core/simulation"
	"github.com/kilianp07/powersplit/infra/logger"
	"github.com/kilianp07/powersplit/infra/metrics"
	"github.com/kilianp07/powersplit/infra/monitoring"
	"github.com/kilianp07/powersplit/infra/tripio"
	"github.com/kilianp07/powersplit/pkg/export"
)

// Service wires configuration, history index, policies and sinks together.
type Service struct {
	cfg      *config.Config
	log      logger.Logger
	sink     coremetrics.Sink
	sim      *simulation.Simulator
	history  *prediction.History
	tree     *kdtree.Tree
	policies []policy.Policy
}

// New creates a Service from the configuration. Logs go to w.
func New(cfg *config.Config, w io.Writer) (*Service, error) {
	if w == nil {
		w = os.Stdout
	}
	logg := logger.NewWithConfig("service", cfg.Logging, w)
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, err
	}
	coremon.Init(mon)
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	svc := &Service{cfg: cfg, log: logg, sink: sink}

	if cfg.History.Path != "" {
		if err := svc.loadHistory(); err != nil {
			return nil, err
		}
	}
	svc.policies, err = policy.NewRegistry(policy.Deps{Tree: svc.tree, Series: svc.Series()}).CreateAll(cfg.Policies)
	if err != nil {
		return nil, fmt.Errorf("policies: %w", err)
	}
	svc.sim = simulation.New(cfg.Simulation, logg.With("component", "simulation"), sink)
	return svc, nil
}

func (s *Service) loadHistory() error {
	trips, err := tripio.ReadFile(s.cfg.History.Path, s.cfg.Vehicle)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	s.history = prediction.NewHistory(trips)
	var opts []kdtree.Option
	if s.cfg.History.Seed != 0 {
		opts = append(opts, kdtree.WithSeed(s.cfg.History.Seed))
	}
	s.tree = kdtree.New(s.history.Points, featureSet(s.cfg.History.Features), opts...)
	s.log.Infof("indexed %d samples from %d trips, depth %d", s.tree.Len(), len(trips), s.tree.Depth())
	return nil
}

// Series returns the ground-truth demand series of the history, nil when no
// history is configured.
func (s *Service) Series() []float64 {
	if s.history == nil {
		return nil
	}
	return s.history.Series
}

func featureSet(name string) features.FeatureSet {
	if name == config.FeaturesPower {
		return features.PowerDemandFeatureSet()
	}
	return features.FullFeatureSet{}
}

// Tree returns the history index, nil when no history is configured.
func (s *Service) Tree() *kdtree.Tree { return s.tree }

// Policies returns the configured policies.
func (s *Service) Policies() []policy.Policy { return s.policies }

// Simulator returns the configured simulator.
func (s *Service) Simulator() *simulation.Simulator { return s.sim }

// Trips loads the trips to simulate.
func (s *Service) Trips() ([]model.Trip, error) {
	if s.cfg.Trips.Path == "" {
		return nil, errors.New("trips.path is required")
	}
	return tripio.ReadFile(s.cfg.Trips.Path, s.cfg.Vehicle)
}

// Run simulates every configured policy and writes the configured exports.
// The metrics endpoint, when configured, is served only while Run executes.
func (s *Service) Run(ctx context.Context) ([]*simulation.Results, error) {
	trips, err := s.Trips()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		served := make(chan struct{})
		go func() {
			defer close(served)
			if err := metrics.StartPromServer(ctx, addr, nil, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
		defer func() {
			cancel()
			<-served
		}()
	}
	results, err := s.sim.Run(ctx, s.policies, trips)
	if err != nil {
		return nil, err
	}
	if err := s.export(results); err != nil {
		return results, err
	}
	return results, nil
}

func (s *Service) export(results []*simulation.Results) error {
	if p := s.cfg.Export.Path; p != "" {
		if err := export.WriteFile(p, results); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		s.log.Infof("results written to %s", p)
	}
	if p := s.cfg.Export.SummaryPath; p != "" {
		f, err := os.Create(p)
		if err != nil {
			return fmt.Errorf("export summary: %w", err)
		}
		if err := export.WriteSummaryCSV(f, results); err != nil {
			f.Close()
			return fmt.Errorf("export summary: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	defer coremon.Flush(2 * time.Second)
	var errs []error
	closeSink := func(sink coremetrics.Sink) {
		if c, ok := sink.(interface{ Close() }); ok {
			c.Close()
		}
		if c, ok := sink.(io.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	if m, ok := s.sink.(*coremetrics.MultiSink); ok {
		for _, sink := range m.Sinks {
			closeSink(sink)
		}
	} else {
		closeSink(s.sink)
	}
	return errors.Join(errs...)
}
