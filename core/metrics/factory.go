package metrics

import "github.com/kilianp07/powersplit/core/factory"

var sinkRegistry = factory.NewRegistry[Sink]()

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[Sink]) error {
	return sinkRegistry.Register(name, f)
}

// NewMetricsSink creates a Sink from the provided configuration.
func NewMetricsSink(cfgs []factory.ModuleConfig) (Sink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return sinkRegistry.Create(cfgs[0])
	}
	sinks, err := sinkRegistry.CreateAll(cfgs)
	if err != nil {
		return nil, err
	}
	return NewMultiSink(sinks...), nil
}

// SinkTypes lists the registered sink types.
func SinkTypes() []string { return sinkRegistry.Names() }

func init() {
	_ = RegisterMetricsSink("nop", func(map[string]any) (Sink, error) {
		return NopSink{}, nil
	})
	_ = RegisterMetricsSink("memory", func(map[string]any) (Sink, error) {
		return &MemorySink{}, nil
	})
}
