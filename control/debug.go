// control/debug.go
// Author: momentics <momentics@gmail.com>
//
// Runtime debug handler and probe reflector for internal inspection.

package control

import (
	"sync"
	"time"

	"github.com/momentics/netcore/util"
)

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// NewDebugProbesWithPlatform creates a probe registry pre-populated with
// the build-tag-selected platform probes (control/platform_linux.go,
// control/platform_windows.go).
func NewDebugProbesWithPlatform() *DebugProbes {
	dp := NewDebugProbes()
	RegisterPlatformProbes(dp)
	return dp
}

// RegisterUptimeProbe adds a "process.uptime" probe reporting the
// human-readable elapsed time since start (e.g. "2.50s", "1.30ms").
func RegisterUptimeProbe(dp *DebugProbes, start time.Time) {
	dp.RegisterProbe("process.uptime", func() any {
		return util.FormatDuration(time.Since(start))
	})
}

// RegisterProbe inserts a named debug hook.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// DumpState returns output of all probes.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any)
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}
