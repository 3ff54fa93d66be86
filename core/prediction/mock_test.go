package prediction

import (
	"testing"

	"github.com/kilianp07/powersplit/core/model"
)

func TestMockPredictor(t *testing.T) {
	m := MockPredictor{Forecast: []float64{100, 200}}
	p := m.Predict(model.Sample{}, 3)
	if len(p.Values) != 3 || p.Values[0] != 100 || p.Values[1] != 200 {
		t.Fatalf("unexpected forecast %v", p.Values)
	}
	if p.Valid() != 2 || p.Truncated != 1 {
		t.Fatalf("expected 2 valid offsets and 1 truncation, got %d %d", p.Valid(), p.Truncated)
	}
	if got := m.Predict(model.Sample{}, 0); len(got.Values) != 0 {
		t.Fatalf("expected empty prediction for zero horizon")
	}
}
