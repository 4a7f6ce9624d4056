package control

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebugProbesDumpState(t *testing.T) {
	dp := NewDebugProbes()
	dp.RegisterProbe("answer", func() any { return 42 })
	out := dp.DumpState()
	require.Equal(t, 42, out["answer"])
}

func TestRegisterUptimeProbeReportsElapsed(t *testing.T) {
	dp := NewDebugProbes()
	start := time.Now().Add(-5 * time.Second)
	RegisterUptimeProbe(dp, start)
	out := dp.DumpState()
	require.Contains(t, out["process.uptime"], "s")
}

func TestNewDebugProbesWithPlatformRegistersPlatformProbe(t *testing.T) {
	dp := NewDebugProbesWithPlatform()
	out := dp.DumpState()
	require.Contains(t, out, "platform.cpus")
}
