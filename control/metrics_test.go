package control

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricsRegistrySetAndSnapshot(t *testing.T) {
	mr := NewMetricsRegistry()
	mr.Set("conns", 3)
	snap := mr.GetSnapshot()
	require.Equal(t, 3, snap["conns"])
}

func TestMetricsRegistrySamplerEvaluatesFresh(t *testing.T) {
	mr := NewMetricsRegistry()
	count := 0
	mr.RegisterSampler("calls", func() any {
		count++
		return count
	})

	first := mr.GetSnapshot()
	second := mr.GetSnapshot()
	require.Equal(t, 1, first["calls"])
	require.Equal(t, 2, second["calls"], "sampler must be re-evaluated on every GetSnapshot")
}

func TestMetricsRegistryMergesPushedAndSampled(t *testing.T) {
	mr := NewMetricsRegistry()
	mr.Set("pushed", "a")
	mr.RegisterSampler("sampled", func() any { return "b" })
	snap := mr.GetSnapshot()
	require.Equal(t, "a", snap["pushed"])
	require.Equal(t, "b", snap["sampled"])
}
