package policy

import (
	"fmt"
	"math"

	"github.com/kilianp07/powersplit/core/model"
	"github.com/kilianp07/powersplit/core/prediction"
	"github.com/kilianp07/powersplit/core/storage"
)

// KnnPolicy sets the battery output to the demand predicted over the
// horizon from similar historical samples, corrected so the capacitor drifts
// back to a target state of charge.
type KnnPolicy struct {
	name      string
	predictor prediction.Predictor
	horizon   int
	targetSoC float64
	tracker

	predictions int
	fallbacks   int
}

// KnnConfig configures a KnnPolicy.
type KnnConfig struct {
	Name string `json:"name"`
	// K is the neighbour count used when the policy builds its own predictor.
	K int `json:"k"`
	// Horizon is the number of future samples averaged.
	Horizon int `json:"horizon"`
	// TargetSoC is the capacitor charge fraction the policy steers towards.
	TargetSoC float64 `json:"target_soc"`
}

// SetDefaults applies sane defaults.
func (c *KnnConfig) SetDefaults() {
	if c.K == 0 {
		c.K = 7
	}
	if c.Horizon == 0 {
		c.Horizon = 30
	}
	if c.TargetSoC == 0 {
		c.TargetSoC = 0.5
	}
	if c.Name == "" {
		c.Name = fmt.Sprintf("KNN k=%d", c.K)
	}
}

// Validate checks mandatory fields.
func (c KnnConfig) Validate() error {
	if c.K <= 0 || c.Horizon <= 0 {
		return fmt.Errorf("knn policy needs positive k and horizon")
	}
	if c.TargetSoC < 0 || c.TargetSoC > 1 {
		return fmt.Errorf("target soc %.2f outside [0, 1]", c.TargetSoC)
	}
	return nil
}

// NewKnnPolicy returns a policy driven by p.
func NewKnnPolicy(cfg KnnConfig, p prediction.Predictor) *KnnPolicy {
	cfg.SetDefaults()
	return &KnnPolicy{name: cfg.Name, predictor: p, horizon: cfg.Horizon, targetSoC: cfg.TargetSoC}
}

func (p *KnnPolicy) Name() string { return p.name }

func (p *KnnPolicy) BeginTrip(_ model.TripFeatures, battery, capacitor storage.Model) error {
	return p.begin(battery, capacitor)
}

// CalculatePowerFlows predicts the coming demand and allocates against it.
// Without any prediction the current demand is used.
func (p *KnnPolicy) CalculatePowerFlows(s model.Sample) (model.Allocation, error) {
	if !p.active() {
		return model.Allocation{}, ErrNoTrip
	}
	p.predictions++
	target, ok := p.predictor.Predict(s, p.horizon).Mean()
	if !ok {
		p.fallbacks++
		target = s.PowerDemand
	}
	target = math.Max(0, target) + p.socCorrection(s.PeriodMS)

	lo, hi := p.capacitorRange(s.PeriodMS)
	a := allocate(s.PowerDemand, lo, hi, target, p.battery.MaxDrawable(s.PeriodMS))
	if err := p.apply(a, s.PeriodMS); err != nil {
		return a, err
	}
	return a, nil
}

// socCorrection is the power that would bring the capacitor to its target
// charge over the horizon.
func (p *KnnPolicy) socCorrection(periodMS int) float64 {
	span := float64(p.horizon*periodMS) / model.MSPerHour
	if span <= 0 {
		return 0
	}
	deficit := p.targetSoC*p.capacitor.MaxCharge() - p.capacitor.Charge()
	return deficit / span
}

// Fallbacks returns how many samples had no usable prediction since the
// last ClearState.
func (p *KnnPolicy) Fallbacks() (fallbacks, total int) { return p.fallbacks, p.predictions }

func (p *KnnPolicy) EndTrip(model.Trip) { p.end() }

func (p *KnnPolicy) ClearState() {
	p.end()
	p.predictions, p.fallbacks = 0, 0
}
