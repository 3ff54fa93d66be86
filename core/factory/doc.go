// Package factory provides a small generic registry used to instantiate
// policies and metrics sinks from configuration. Modules are defined by a
// type string and a map of raw settings. Factories decode the settings into
// typed structs and return the concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[policy.Policy]()
//	reg.Register("omniscient", func(conf map[string]any) (policy.Policy, error) {
//	    var c struct{ Lookahead int `json:"lookahead"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return policy.NewOmniscientPolicy(c.Lookahead), nil
//	})
//	p, err := reg.Create(factory.ModuleConfig{Type: "omniscient", Conf: map[string]any{"lookahead": 60}})
package factory
