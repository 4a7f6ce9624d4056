package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigStoreSetAndSnapshot(t *testing.T) {
	cs := NewConfigStore()
	cs.SetConfig("cache.static", map[string]any{"ttl_seconds": 30})
	snap := cs.GetSnapshot("cache.static")
	require.Equal(t, 30, snap["ttl_seconds"])
}

func TestConfigStoreMergesAcrossCalls(t *testing.T) {
	cs := NewConfigStore()
	cs.SetConfig("ep", map[string]any{"a": 1})
	cs.SetConfig("ep", map[string]any{"b": 2})
	snap := cs.GetSnapshot("ep")
	require.Equal(t, 1, snap["a"])
	require.Equal(t, 2, snap["b"])
}

func TestConfigStoreNamesAreIndependent(t *testing.T) {
	cs := NewConfigStore()
	cs.SetConfig("a", map[string]any{"x": 1})
	cs.SetConfig("b", map[string]any{"x": 2})
	require.Equal(t, 1, cs.GetSnapshot("a")["x"])
	require.Equal(t, 2, cs.GetSnapshot("b")["x"])
}

func TestConfigStoreOnReloadFiresForMatchingName(t *testing.T) {
	cs := NewConfigStore()
	got := make(chan map[string]any, 1)
	cs.OnReload("cache.static", func(cfg map[string]any) { got <- cfg })

	cs.SetConfig("cache.static", map[string]any{"ttl_seconds": 60})

	select {
	case cfg := <-got:
		require.Equal(t, 60, cfg["ttl_seconds"])
	case <-time.After(time.Second):
		t.Fatal("reload listener never fired")
	}
}

func TestConfigStoreOnReloadIgnoresOtherNames(t *testing.T) {
	cs := NewConfigStore()
	fired := make(chan struct{}, 1)
	cs.OnReload("other", func(map[string]any) { fired <- struct{}{} })

	cs.SetConfig("cache.static", map[string]any{"ttl_seconds": 60})

	select {
	case <-fired:
		t.Fatal("listener for a different name must not fire")
	case <-time.After(50 * time.Millisecond):
	}
}
