package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/powersplit/core/factory"
	"github.com/kilianp07/powersplit/core/features"
	"github.com/kilianp07/powersplit/core/prediction"
)

func TestRegistryBuildsPolicies(t *testing.T) {
	h := prediction.NewHistory(nil)
	h.Add(demandTrip(1, 2, 3, 4, 5))
	pred := prediction.NewKnnPredictorFromHistory(h, features.PowerDemandFeatureSet(), 2)
	reg := NewRegistry(Deps{Tree: pred.Tree(), Series: h.Series})
	assert.Equal(t, []string{"knn", "naive", "nocap", "omniscient"}, reg.Names())

	ps, err := reg.CreateAll([]factory.ModuleConfig{
		{Type: "nocap"},
		{Type: "naive", Conf: map[string]any{"threshold_w": 500}},
		{Type: "knn", Conf: map[string]any{"k": 3, "horizon": "10"}},
		{Type: "omniscient", Conf: map[string]any{"lookahead": 60, "name": "Oracle"}},
	})
	require.NoError(t, err)
	require.Len(t, ps, 4)
	assert.Equal(t, "No Capacitor", ps[0].Name())
	assert.Equal(t, "Naive Buffer", ps[1].Name())
	assert.Equal(t, "KNN k=3", ps[2].Name())
	assert.Equal(t, "Oracle", ps[3].Name())
	_, ok := ps[3].(TripParser)
	assert.True(t, ok)
}

func TestRegistryRejectsBadConfig(t *testing.T) {
	reg := NewRegistry(Deps{})
	_, err := reg.Create(factory.ModuleConfig{Type: "knn"})
	assert.Error(t, err, "knn without index")
	_, err = reg.Create(factory.ModuleConfig{Type: "omniscient"})
	assert.Error(t, err, "missing lookahead")
	_, err = reg.Create(factory.ModuleConfig{Type: "naive", Conf: map[string]any{"threshold_w": -1}})
	assert.Error(t, err)
	_, err = reg.Create(factory.ModuleConfig{Type: "nocap", Conf: map[string]any{"bogus": 1}})
	assert.Error(t, err)
}
