package prediction

import (
	"github.com/kilianp07/powersplit/core/features"
	"github.com/kilianp07/powersplit/core/model"
)

// MockPredictor returns a deterministic forecast.
type MockPredictor struct {
	Forecast []float64
}

// Predict returns the configured forecast cut or padded to horizon. Offsets
// beyond the forecast are reported as missing.
func (m MockPredictor) Predict(_ model.Sample, horizon int) features.Prediction {
	if horizon <= 0 {
		return features.Prediction{}
	}
	p := features.Prediction{Values: make([]float64, horizon), Counts: make([]int, horizon)}
	for i := 0; i < horizon; i++ {
		if i < len(m.Forecast) {
			p.Values[i] = m.Forecast[i]
			p.Counts[i] = 1
		} else {
			p.Truncated++
		}
	}
	return p
}
