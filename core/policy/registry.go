package policy

import (
	"fmt"

	"github.com/kilianp07/powersplit/core/factory"
	"github.com/kilianp07/powersplit/core/kdtree"
	"github.com/kilianp07/powersplit/core/prediction"
)

// Deps are the shared resources policies may be built with.
type Deps struct {
	// Tree and Series back neighbour-driven policies. They are read-only and
	// shared between every policy built from the same Deps.
	Tree   *kdtree.Tree
	Series []float64
}

// NewRegistry returns a registry with the built-in policies: "nocap",
// "naive", "knn" and "omniscient".
func NewRegistry(deps Deps) *factory.Registry[Policy] {
	reg := factory.NewRegistry[Policy]()
	_ = reg.Register("nocap", func(conf map[string]any) (Policy, error) {
		var c struct {
			Name string `json:"name"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		p := NewNoCapPolicy()
		if c.Name != "" {
			p.name = c.Name
		}
		return p, nil
	})

	_ = reg.Register("naive", func(conf map[string]any) (Policy, error) {
		var c struct {
			Name       string  `json:"name"`
			ThresholdW float64 `json:"threshold_w"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.ThresholdW < 0 {
			return nil, fmt.Errorf("threshold must not be negative")
		}
		p := NewNaiveBufferPolicy(c.ThresholdW)
		if c.Name != "" {
			p.name = c.Name
		}
		return p, nil
	})

	_ = reg.Register("knn", func(conf map[string]any) (Policy, error) {
		var c KnnConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		c.SetDefaults()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if deps.Tree == nil {
			return nil, fmt.Errorf("knn policy requires a history index")
		}
		return NewKnnPolicy(c, prediction.NewKnnPredictor(deps.Tree, deps.Series, c.K)), nil
	})

	_ = reg.Register("omniscient", func(conf map[string]any) (Policy, error) {
		var c struct {
			Name      string `json:"name"`
			Lookahead int    `json:"lookahead"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Lookahead <= 0 {
			return nil, fmt.Errorf("omniscient policy needs a positive lookahead")
		}
		p := NewOmniscientPolicy(c.Lookahead)
		if c.Name != "" {
			p.name = c.Name
		}
		return p, nil
	})
	return reg
}

// Build instantiates a single policy from its module configuration.
func Build(cfg factory.ModuleConfig, deps Deps) (Policy, error) {
	return NewRegistry(deps).Create(cfg)
}
